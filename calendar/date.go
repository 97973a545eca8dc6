/*
Package calendar provides the date model, regional holiday table and day
categorization used by invoice calculation.

PURPOSE:
  Every billing decision starts from a calendar day: which rate applies,
  whether the day is billed at all, which schedule override it picks up.
  This package owns that vocabulary and nothing else. It has no knowledge
  of rates, catalogs or invoices.

KEY CONCEPTS IN THIS FILE (date.go):
  - Date: a calendar date with no time-of-day and no location. Comparable,
    so it can key a map directly.
  - ISO form: "2006-01-02" is the one canonical text form. Parsing and
    formatting go through it so override maps never miss on timezone drift.

SEE ALSO:
  - period.go: inclusive date ranges
  - holidays.go: static regional table + manual holidays
  - categorize.go: DayRecord and the Day Categorizer
*/
package calendar

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar date without time component
// =============================================================================

const (
	ISOLayout     = "2006-01-02"
	ShortLayout   = "02/01/06"
	DisplayLayout = "02/01/2006"
	HeaderLayout  = "02 January 2006"
	RangeLayout   = "02Jan06"
)

// Date is a calendar day. The zero value is not a valid date; use IsZero.
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate normalizes out-of-range values the way time.Date does
// (e.g. January 32 becomes February 1).
func NewDate(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime takes the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

func Today() Date { return FromTime(time.Now()) }

// ParseDate accepts only the ISO form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return FromTime(t), nil
}

// MustParseDate panics on malformed input. Use in tests and static tables.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Properties
func (d Date) Year() int                   { return d.year }
func (d Date) Month() time.Month           { return d.month }
func (d Date) Day() int                    { return d.day }
func (d Date) IsZero() bool                { return d.year == 0 && d.month == 0 && d.day == 0 }
func (d Date) Time() time.Time             { return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC) }
func (d Date) Weekday() time.Weekday       { return d.Time().Weekday() }
func (d Date) IsWeekend() bool             { return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday }
func (d Date) Format(layout string) string { return d.Time().Format(layout) }

// String returns the canonical ISO key.
func (d Date) String() string { return d.Format(ISOLayout) }

// Comparison
func (d Date) Compare(other Date) int        { return d.Time().Compare(other.Time()) }
func (d Date) Before(other Date) bool        { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool         { return d.Compare(other) > 0 }
func (d Date) Equal(other Date) bool         { return d == other }
func (d Date) BeforeOrEqual(other Date) bool { return d.Compare(other) <= 0 }
func (d Date) AfterOrEqual(other Date) bool  { return d.Compare(other) >= 0 }

// Arithmetic
func (d Date) AddDays(n int) Date { return FromTime(d.Time().AddDate(0, 0, n)) }

// DaysBetween returns to - from in whole days.
func DaysBetween(from, to Date) int {
	return int(to.Time().Sub(from.Time()).Hours() / 24)
}

// =============================================================================
// JSON / TEXT
// =============================================================================

func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}
