/*
aggregate.go - Line-Item Aggregator

PURPOSE:
  Walks the day records once, resolving each billable day's schedule and
  adding its quantities to a bucket. Each non-empty bucket becomes one line
  item priced against the catalog snapshot.

BUCKETS:
  weekday day     -> weekday (daytime), weekdayEvening, weekdaySleepover
  Saturday        -> saturday   (daytime + evening + sleepover)
  Sunday          -> sunday     (daytime + evening + sleepover)
  public holiday  -> publicHoliday (daytime + evening + sleepover)

  Only weekdays split, matching the granularity of the rate schedule.

SKIPPED DAYS:
  Excluded days and zero-hour days are treated identically: no hours, no
  travel day.

MISSING RATES:
  A bucket with quantity but no catalog entry yields a Warning instead of a
  line item. The rest of the invoice is still produced.

SEE ALSO:
  - travel.go: the travel line item
  - schedule.go: ResolveDaySchedule
*/
package invoice

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/brightsupport/invoice-engine/calendar"
	"github.com/brightsupport/invoice-engine/catalog"
)

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator produces line items from day records. The zero value uses the
// uniform travel breakdown.
type Aggregator struct {
	Travel TravelMode

	// NewRand returns the random source for one randomized breakdown. Nil
	// means a freshly seeded source per call.
	NewRand func() *rand.Rand
}

// Input is everything one aggregation pass reads.
type Input struct {
	Days           calendar.DayRecords
	Default        DaySchedule
	Overrides      ScheduleOverrides
	TravelKmPerDay decimal.Decimal
}

// billedDay is a day that survived exclusion and the zero-hour rule.
type billedDay struct {
	date     calendar.Date
	category calendar.Category
	schedule DaySchedule
}

type bucket struct {
	category catalog.Category
	unit     string
	quantity decimal.Decimal
	dates    []calendar.Date
}

func (b *bucket) add(date calendar.Date, q decimal.Decimal) {
	if !q.IsPositive() {
		return
	}
	b.quantity = b.quantity.Add(q)
	b.dates = append(b.dates, date)
}

// Aggregate returns line items in rate-card order, travel last.
func (a Aggregator) Aggregate(snapshot *catalog.Catalog, in Input) ([]LineItem, []Warning) {
	billed := billedDays(in)

	buckets := map[catalog.Category]*bucket{}
	for _, cat := range catalog.Categories {
		unit := "hour"
		if cat == catalog.WeekdaySleepover {
			unit = "unit"
		}
		buckets[cat] = &bucket{category: cat, unit: unit, quantity: decimal.Zero}
	}

	for _, day := range billed {
		s := day.schedule
		switch day.category {
		case calendar.CategoryWeekday:
			buckets[catalog.Weekday].add(day.date, s.Daytime)
			buckets[catalog.WeekdayEvening].add(day.date, s.Evening)
			buckets[catalog.WeekdaySleepover].add(day.date, s.Sleepover)
		case calendar.CategorySaturday:
			buckets[catalog.Saturday].add(day.date, s.TotalHours())
		case calendar.CategorySunday:
			buckets[catalog.Sunday].add(day.date, s.TotalHours())
		case calendar.CategoryPublicHoliday:
			buckets[catalog.PublicHoliday].add(day.date, s.TotalHours())
		}
	}

	var (
		items    []LineItem
		warnings []Warning
	)
	for _, cat := range catalog.Categories {
		if cat == catalog.Travel {
			continue
		}
		b := buckets[cat]
		if b.quantity.IsZero() {
			continue
		}
		entry, ok := snapshot.Resolve(cat)
		if !ok {
			warnings = append(warnings, missingEntry(cat, b.quantity))
			continue
		}
		items = append(items, LineItem{
			ServiceCode: entry.Code,
			Description: describe(entry, len(b.dates), b.quantity, b.unit),
			Quantity:    b.quantity,
			UnitRate:    entry.Rate,
			Total:       lineTotal(b.quantity, entry.Rate),
			Category:    cat,
			Dates:       FormatDates(b.dates),
		})
	}

	travel, ok, warn := a.travelItem(snapshot, billed, in)
	if warn != nil {
		warnings = append(warnings, *warn)
	}
	if ok {
		items = append(items, travel)
	}
	return items, warnings
}

func billedDays(in Input) []billedDay {
	var out []billedDay
	for _, rec := range in.Days {
		if rec.Excluded {
			continue
		}
		s := ResolveDaySchedule(rec.Date, in.Default, in.Overrides)
		if s.IsZero() {
			continue
		}
		out = append(out, billedDay{date: rec.Date, category: rec.Category, schedule: s})
	}
	return out
}

// lineTotal is quantity x rate rounded to cents.
func lineTotal(quantity, rate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(rate).Round(2)
}

// describe builds "<description> - <summary>":
//
//	1 day  x 8 hours     when one day contributed
//	5 days x 8 hours     when the per-day average is whole
//	37.5 hours total     otherwise
func describe(entry catalog.Entry, days int, quantity decimal.Decimal, unit string) string {
	desc := entry.Description
	if desc == "" {
		desc = entry.Category.Label()
	}
	if days == 1 {
		return fmt.Sprintf("%s - 1 day × %s", desc, measure(quantity, unit))
	}
	avg := quantity.Div(decimal.NewFromInt(int64(days)))
	if avg.Equal(avg.Truncate(0)) {
		return fmt.Sprintf("%s - %s × %s", desc, plural(days, "day"), measure(avg, unit))
	}
	return fmt.Sprintf("%s - %s total", desc, measure(quantity, unit))
}

// measure is plural for decimals: "1 hour", "0.5 hours", "8 hours".
func measure(q decimal.Decimal, unit string) string {
	if q.Equal(decimal.NewFromInt(1)) {
		return "1 " + unit
	}
	return FormatQuantity(q) + " " + unit + "s"
}

func missingEntry(cat catalog.Category, quantity decimal.Decimal) Warning {
	return Warning{
		Kind:     MissingCatalogEntry,
		Category: cat,
		Quantity: quantity,
		Message:  fmt.Sprintf("no catalog entry for %s; %s not billed", cat.Label(), FormatQuantity(quantity)),
	}
}
