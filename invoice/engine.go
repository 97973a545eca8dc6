/*
engine.go - One calculation pass

PURPOSE:
  Runs the whole pipeline for a request:

    1. Categorize the period (holiday calendar + manual holidays)
    2. Apply exclusions
    3. Load ONE catalog snapshot
    4. Assemble the invoice (aggregation, travel, totals)
    5. Validate the result

  Nothing is cached between calls. The only I/O is the catalog load, done
  once, before any pricing; its failure is returned as-is with no retry.

CONCURRENCY:
  An Engine holds no mutable state. Calculate may be called concurrently;
  each call gets its own random source for the travel breakdown.
*/
package invoice

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/brightsupport/invoice-engine/calendar"
	"github.com/brightsupport/invoice-engine/catalog"
)

// Engine wires the calendar, the catalog and the configured parameters.
type Engine struct {
	Calendar calendar.HolidayCalendar
	Catalog  catalog.Loader
	TaxRate  decimal.Decimal
	Travel   TravelMode
	NewRand  func() *rand.Rand
}

// Request is one calculation's input.
type Request struct {
	Number          string                   `json:"invoice_number"`
	Date            calendar.Date            `json:"invoice_date"`
	Start           calendar.Date            `json:"start_date"`
	End             calendar.Date            `json:"end_date"`
	Client          ClientInfo               `json:"client"`
	DefaultSchedule DaySchedule              `json:"default_schedule"`
	Overrides       ScheduleOverrides        `json:"schedule_overrides,omitempty"`
	TravelKmPerDay  decimal.Decimal          `json:"travel_km_per_day"`
	ManualHolidays  []calendar.ManualHoliday `json:"manual_holidays,omitempty"`
	ExcludedDates   []calendar.Date          `json:"excluded_dates,omitempty"`
}

// Calculation is the outcome of a successful pass.
type Calculation struct {
	Invoice    *Invoice   `json:"invoice"`
	Warnings   []Warning  `json:"warnings"`
	Validation Validation `json:"validation"`
}

// Days categorizes the period and applies exclusions.
func (e *Engine) Days(start, end calendar.Date, manual []calendar.ManualHoliday, excluded []calendar.Date) (calendar.DayRecords, error) {
	days, err := calendar.Categorize(e.Calendar, start, end, manual)
	if err != nil {
		return nil, err
	}
	days.Exclude(excluded...)
	return days, nil
}

// Calculate runs one pass. Errors are preconditions (range, client,
// schedule) or a failed catalog load.
func (e *Engine) Calculate(ctx context.Context, req Request) (*Calculation, error) {
	days, err := e.Days(req.Start, req.End, req.ManualHolidays, req.ExcludedDates)
	if err != nil {
		return nil, err
	}

	snapshot, err := e.Catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("calculate invoice: %w", err)
	}

	assembler := Assembler{
		Aggregator: Aggregator{Travel: e.Travel, NewRand: e.NewRand},
		TaxRate:    e.TaxRate,
	}
	inv, warnings, err := assembler.Build(snapshot, BuildInput{
		Number:          req.Number,
		Date:            req.Date,
		Start:           req.Start,
		End:             req.End,
		Client:          req.Client,
		DefaultSchedule: req.DefaultSchedule,
		TravelKmPerDay:  req.TravelKmPerDay,
		Days:            days,
		Overrides:       req.Overrides,
	})
	if err != nil {
		return nil, err
	}
	if warnings == nil {
		warnings = []Warning{}
	}

	return &Calculation{
		Invoice:    inv,
		Warnings:   warnings,
		Validation: e.Validator().Validate(inv),
	}, nil
}

// Validator returns a validator using the engine's tax rate.
func (e *Engine) Validator() Validator {
	return Validator{TaxRate: e.TaxRate}
}
