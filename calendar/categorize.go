package calendar

import "time"

// =============================================================================
// CATEGORY - Billing category of a day
// =============================================================================

// Category decides which rate family applies to a day.
type Category string

const (
	CategoryWeekday       Category = "weekday"
	CategorySaturday      Category = "saturday"
	CategorySunday        Category = "sunday"
	CategoryPublicHoliday Category = "publicHoliday"
)

// Categories in display order.
var Categories = []Category{CategoryWeekday, CategorySaturday, CategorySunday, CategoryPublicHoliday}

func (c Category) Valid() bool {
	switch c {
	case CategoryWeekday, CategorySaturday, CategorySunday, CategoryPublicHoliday:
		return true
	}
	return false
}

// Label is the human-readable name used in descriptions and documents.
func (c Category) Label() string {
	switch c {
	case CategoryWeekday:
		return "Weekday"
	case CategorySaturday:
		return "Saturday"
	case CategorySunday:
		return "Sunday"
	case CategoryPublicHoliday:
		return "Public Holiday"
	}
	return string(c)
}

// CategoryOf classifies a single date. Public holidays win over weekends.
func CategoryOf(date Date, cal HolidayCalendar, manual []ManualHoliday) Category {
	if cal != nil && cal.IsHoliday(date, manual) {
		return CategoryPublicHoliday
	}
	if cal == nil && holidayInManual(date, manual) {
		return CategoryPublicHoliday
	}
	switch date.Weekday() {
	case time.Sunday:
		return CategorySunday
	case time.Saturday:
		return CategorySaturday
	default:
		return CategoryWeekday
	}
}

func holidayInManual(date Date, manual []ManualHoliday) bool {
	for _, m := range manual {
		if m.Date == date {
			return true
		}
	}
	return false
}

// =============================================================================
// DAY RECORD
// =============================================================================

// DayRecord is one calendar day of the service period. Category is fixed at
// creation; Excluded is the only field callers change afterwards.
type DayRecord struct {
	Date     Date     `json:"date"`
	Category Category `json:"category"`
	Excluded bool     `json:"excluded"`
}

// Categorize produces one record per day of [start, end], ascending, none
// excluded. Fails with ErrInvalidRange when Period.Validate rejects the range.
func Categorize(cal HolidayCalendar, start, end Date, manual []ManualHoliday) (DayRecords, error) {
	period := Period{Start: start, End: end}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	days := period.Days()
	records := make(DayRecords, len(days))
	for i, d := range days {
		records[i] = DayRecord{Date: d, Category: CategoryOf(d, cal, manual)}
	}
	return records, nil
}

// =============================================================================
// DAY RECORDS - Exclusion toggles and summaries
// =============================================================================

// DayRecords is an ascending run of DayRecord.
type DayRecords []DayRecord

// Toggle flips the exclusion flag of date and reports whether date was found.
// Toggling twice restores the original state.
func (r DayRecords) Toggle(date Date) bool {
	for i := range r {
		if r[i].Date == date {
			r[i].Excluded = !r[i].Excluded
			return true
		}
	}
	return false
}

// Exclude marks every listed date excluded. Dates outside the records are ignored.
func (r DayRecords) Exclude(dates ...Date) {
	set := make(map[Date]struct{}, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	for i := range r {
		if _, ok := set[r[i].Date]; ok {
			r[i].Excluded = true
		}
	}
}

// ExcludedDates lists excluded days in ascending order.
func (r DayRecords) ExcludedDates() []Date {
	var out []Date
	for _, rec := range r {
		if rec.Excluded {
			out = append(out, rec.Date)
		}
	}
	return out
}

// CountByCategory counts non-excluded days per category.
func (r DayRecords) CountByCategory() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	for _, rec := range r {
		if !rec.Excluded {
			counts[rec.Category]++
		}
	}
	return counts
}

// Clone returns an independent copy, so a caller can toggle without
// touching a shared slice.
func (r DayRecords) Clone() DayRecords {
	out := make(DayRecords, len(r))
	copy(out, r)
	return out
}
