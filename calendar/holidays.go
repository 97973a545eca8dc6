/*
holidays.go - Regional public holiday table and manual holidays

PURPOSE:
  Answers "is this date a public holiday?" for the configured region.
  Two sources are consulted:
  1. The static table (versioned data, embedded from data/holidays_*.json)
  2. Manual holidays supplied by the caller for the current session

  Equality is by calendar day only. A manual holiday carrying a time of day
  in the caller's zone is reduced to its Date before it reaches this file.

DATA COMPLETENESS:
  The table covers a handful of years around the current one. A year with no
  entries is a data gap, not an error: dates in it simply are not holidays
  unless a manual holiday says so.

SEE ALSO:
  - categorize.go: the only consumer inside this package
*/
package calendar

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed data/*.json
var holidayData embed.FS

// DefaultRegion is the region the embedded table is published for.
const DefaultRegion = "VIC"

// =============================================================================
// HOLIDAY TYPES
// =============================================================================

// Holiday is one static table entry.
type Holiday struct {
	Date   Date   `json:"date"`
	Name   string `json:"name"`
	Region string `json:"state"`
}

// ManualHoliday is a caller-supplied, session-scoped holiday. Never persisted
// into the static table.
type ManualHoliday struct {
	Date Date   `json:"date"`
	Name string `json:"name"`
}

// HolidayCalendar is what the Day Categorizer needs from a holiday source.
type HolidayCalendar interface {
	// IsHoliday reports whether date is in the static table for the
	// calendar's region or matches any manual holiday by calendar day.
	IsHoliday(date Date, manual []ManualHoliday) bool
}

// =============================================================================
// CALENDAR - Static table keyed by date
// =============================================================================

// Calendar is an immutable lookup table for one region.
type Calendar struct {
	region string
	table  map[Date]Holiday
}

var _ HolidayCalendar = (*Calendar)(nil)

// NewCalendar keeps the entries whose region matches (case-insensitive).
// Entries with an empty region are treated as belonging to every region.
func NewCalendar(region string, holidays []Holiday) *Calendar {
	c := &Calendar{region: strings.ToUpper(region), table: make(map[Date]Holiday)}
	for _, h := range holidays {
		if h.Region != "" && !strings.EqualFold(h.Region, region) {
			continue
		}
		if _, exists := c.table[h.Date]; exists {
			continue
		}
		c.table[h.Date] = h
	}
	return c
}

// LoadCalendar builds a Calendar from the embedded table for region.
func LoadCalendar(region string) (*Calendar, error) {
	holidays, err := StaticHolidays()
	if err != nil {
		return nil, err
	}
	return NewCalendar(region, holidays), nil
}

// StaticHolidays returns every entry of every embedded table.
func StaticHolidays() ([]Holiday, error) {
	files, err := holidayData.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("failed to read holiday tables: %w", err)
	}

	var all []Holiday
	for _, f := range files {
		raw, err := holidayData.ReadFile("data/" + f.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Name(), err)
		}
		var entries []Holiday
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", f.Name(), err)
		}
		all = append(all, entries...)
	}
	return all, nil
}

func (c *Calendar) Region() string { return c.region }

// IsHoliday implements HolidayCalendar.
func (c *Calendar) IsHoliday(date Date, manual []ManualHoliday) bool {
	_, ok := c.HolidayName(date, manual)
	return ok
}

// HolidayName returns the static entry's name first, then the first
// matching manual holiday's name.
func (c *Calendar) HolidayName(date Date, manual []ManualHoliday) (string, bool) {
	if c != nil {
		if h, ok := c.table[date]; ok {
			return h.Name, true
		}
	}
	for _, m := range manual {
		if m.Date == date {
			return m.Name, true
		}
	}
	return "", false
}

// Holidays lists the static entries in year, ascending.
func (c *Calendar) Holidays(year int) []Holiday {
	var out []Holiday
	for d, h := range c.table {
		if d.Year() == year {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
