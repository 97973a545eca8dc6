package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/brightsupport/invoice-engine/calendar"
	"github.com/brightsupport/invoice-engine/invoice"
)

// parseOverride reads "2025-01-03=4,2,0" or "2025-01-03=4,2,0,40": daytime,
// evening and sleepover, plus an optional travel distance for that day.
func parseOverride(s string) (calendar.Date, invoice.DaySchedule, error) {
	rawDate, rawValues, ok := strings.Cut(s, "=")
	if !ok {
		return calendar.Date{}, invoice.DaySchedule{}, fmt.Errorf("override %q: want DATE=daytime,evening,sleepover[,km]", s)
	}
	date, err := calendar.ParseDate(strings.TrimSpace(rawDate))
	if err != nil {
		return calendar.Date{}, invoice.DaySchedule{}, fmt.Errorf("override %q: %w", s, err)
	}

	fields := strings.Split(rawValues, ",")
	if len(fields) != 3 && len(fields) != 4 {
		return calendar.Date{}, invoice.DaySchedule{}, fmt.Errorf("override %q: want 3 or 4 values, got %d", s, len(fields))
	}
	values := make([]decimal.Decimal, len(fields))
	for i, f := range fields {
		if values[i], err = parseDecimal(f); err != nil {
			return calendar.Date{}, invoice.DaySchedule{}, fmt.Errorf("override %q: %w", s, err)
		}
	}

	schedule := invoice.DaySchedule{Daytime: values[0], Evening: values[1], Sleepover: values[2]}
	if len(values) == 4 {
		schedule = schedule.WithTravel(values[3])
	}
	return date, schedule, nil
}

func parseOverrides(raw []string) (invoice.ScheduleOverrides, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	overrides := make(invoice.ScheduleOverrides, len(raw))
	for _, s := range raw {
		date, schedule, err := parseOverride(s)
		if err != nil {
			return nil, err
		}
		overrides[date] = schedule
	}
	return overrides, nil
}

// parseHoliday reads "2025-01-06=Community Day". The name is optional.
func parseHoliday(s string) (calendar.ManualHoliday, error) {
	rawDate, name, _ := strings.Cut(s, "=")
	date, err := calendar.ParseDate(strings.TrimSpace(rawDate))
	if err != nil {
		return calendar.ManualHoliday{}, fmt.Errorf("holiday %q: %w", s, err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Public holiday"
	}
	return calendar.ManualHoliday{Date: date, Name: name}, nil
}

func parseHolidays(raw []string) ([]calendar.ManualHoliday, error) {
	var out []calendar.ManualHoliday
	for _, s := range raw {
		h, err := parseHoliday(s)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func parseDates(raw []string) ([]calendar.Date, error) {
	var out []calendar.Date
	for _, s := range raw {
		d, err := calendar.ParseDate(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", s)
	}
	return d, nil
}
