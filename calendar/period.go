package calendar

import "fmt"

// MaxPeriodDays bounds a single service period.
const MaxPeriodDays = 366

// =============================================================================
// PERIOD - Inclusive service period
// =============================================================================

// Period is the service period of an invoice, [Start, End] inclusive.
type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Validate fails with a *RangeError when either bound is missing, End
// precedes Start, or the period is longer than MaxPeriodDays.
func (p Period) Validate() error {
	switch {
	case p.Start.IsZero():
		return &RangeError{Start: p.Start, End: p.End, Reason: "start date is required"}
	case p.End.IsZero():
		return &RangeError{Start: p.Start, End: p.End, Reason: "end date is required"}
	case p.End.Before(p.Start):
		return &RangeError{Start: p.Start, End: p.End, Reason: "end precedes start"}
	case p.Len() > MaxPeriodDays:
		return &RangeError{Start: p.Start, End: p.End, Reason: fmt.Sprintf("longer than %d days", MaxPeriodDays)}
	}
	return nil
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Len is the number of calendar days in the period, 0 when a bound is
// missing or End precedes Start.
func (p Period) Len() int {
	if p.Start.IsZero() || p.End.IsZero() || p.End.Before(p.Start) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Days returns every day in the period in ascending order.
func (p Period) Days() []Date {
	days := make([]Date, 0, p.Len())
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
