package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/brightsupport/invoice-engine/calendar"
)

// =============================================================================
// DAY SCHEDULE
// =============================================================================

// DaySchedule is the work for one day. TravelKm, when set, replaces the
// per-day travel default for that day only.
type DaySchedule struct {
	Daytime   decimal.Decimal  `json:"daytime"`
	Evening   decimal.Decimal  `json:"evening"`
	Sleepover decimal.Decimal  `json:"sleepover"`
	TravelKm  *decimal.Decimal `json:"travel_km,omitempty"`
}

// Hours builds a schedule without a travel override.
func Hours(daytime, evening, sleepover float64) DaySchedule {
	return DaySchedule{
		Daytime:   decimal.NewFromFloat(daytime),
		Evening:   decimal.NewFromFloat(evening),
		Sleepover: decimal.NewFromFloat(sleepover),
	}
}

// WithTravel returns a copy carrying a travel override of km.
func (s DaySchedule) WithTravel(km decimal.Decimal) DaySchedule {
	s.TravelKm = &km
	return s
}

// TotalHours sums daytime, evening and sleepover.
func (s DaySchedule) TotalHours() decimal.Decimal {
	return s.Daytime.Add(s.Evening).Add(s.Sleepover)
}

// IsZero reports a zero-hour day. Such a day is not billed and does not
// count for travel, whatever its travel override says.
func (s DaySchedule) IsZero() bool {
	return s.TotalHours().IsZero()
}

func (s DaySchedule) validate(date calendar.Date) error {
	check := func(field string, v decimal.Decimal) error {
		if v.IsNegative() {
			return &ScheduleError{Date: date, Field: field, Value: v.String()}
		}
		return nil
	}
	if err := check("daytime", s.Daytime); err != nil {
		return err
	}
	if err := check("evening", s.Evening); err != nil {
		return err
	}
	if err := check("sleepover", s.Sleepover); err != nil {
		return err
	}
	if s.TravelKm != nil {
		return check("travel_km", *s.TravelKm)
	}
	return nil
}

// =============================================================================
// OVERRIDES
// =============================================================================

// ScheduleOverrides maps a date to the schedule that replaces the default on
// that day. JSON keys are ISO dates.
type ScheduleOverrides map[calendar.Date]DaySchedule

// Validate checks every override for negative values.
func (o ScheduleOverrides) Validate() error {
	for date, s := range o {
		if err := s.validate(date); err != nil {
			return err
		}
	}
	return nil
}

// HasTravel reports whether any override carries a travel distance.
func (o ScheduleOverrides) HasTravel() bool {
	for _, s := range o {
		if s.TravelKm != nil {
			return true
		}
	}
	return false
}

// ResolveDaySchedule returns the override for date if present, else def.
func ResolveDaySchedule(date calendar.Date, def DaySchedule, overrides ScheduleOverrides) DaySchedule {
	if s, ok := overrides[date]; ok {
		return s
	}
	return def
}
