package invoice

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/brightsupport/invoice-engine/calendar"
	"github.com/brightsupport/invoice-engine/catalog"
)

// =============================================================================
// ASSEMBLER
// =============================================================================

// Assembler builds an Invoice from one aggregation pass.
type Assembler struct {
	Aggregator Aggregator
	// TaxRate is a fraction (0.1 for 10%). Zero by default.
	TaxRate decimal.Decimal
}

// BuildInput is the assembler's full argument list.
type BuildInput struct {
	Number          string
	Date            calendar.Date
	Start           calendar.Date
	End             calendar.Date
	Client          ClientInfo
	DefaultSchedule DaySchedule
	TravelKmPerDay  decimal.Decimal
	Days            calendar.DayRecords
	Overrides       ScheduleOverrides
}

// Missing lists the blank required fields, nil when complete.
func (c ClientInfo) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.NDISNumber) == "" {
		missing = append(missing, "ndis_number")
	}
	return missing
}

// Build assembles the invoice. It fails only on preconditions: incomplete
// client details, an invalid period, or negative schedule values. Missing
// catalog entries come back as warnings.
func (a Assembler) Build(snapshot *catalog.Catalog, in BuildInput) (*Invoice, []Warning, error) {
	if missing := in.Client.Missing(); len(missing) > 0 {
		return nil, nil, &IncompleteClientError{Missing: missing}
	}
	period := calendar.Period{Start: in.Start, End: in.End}
	if err := period.Validate(); err != nil {
		return nil, nil, err
	}
	if err := in.DefaultSchedule.validate(calendar.Date{}); err != nil {
		return nil, nil, err
	}
	if err := in.Overrides.Validate(); err != nil {
		return nil, nil, err
	}
	if in.TravelKmPerDay.IsNegative() {
		return nil, nil, &ScheduleError{Field: "travel_km_per_day", Value: in.TravelKmPerDay.String()}
	}

	items, warnings := a.Aggregator.Aggregate(snapshot, Input{
		Days:           in.Days,
		Default:        in.DefaultSchedule,
		Overrides:      in.Overrides,
		TravelKmPerDay: in.TravelKmPerDay,
	})
	if items == nil {
		items = []LineItem{}
	}

	subtotal := decimal.Zero
	for _, li := range items {
		subtotal = subtotal.Add(li.Total)
	}
	tax := subtotal.Mul(a.TaxRate).Round(2)

	excluded := in.Days.ExcludedDates()
	if excluded == nil {
		excluded = []calendar.Date{}
	}

	inv := &Invoice{
		Number:          in.Number,
		Date:            in.Date,
		Start:           in.Start,
		End:             in.End,
		Client:          in.Client,
		DefaultSchedule: in.DefaultSchedule,
		Overrides:       in.Overrides,
		TravelKmPerDay:  in.TravelKmPerDay,
		Days:            in.Days.Clone(),
		ExcludedDates:   excluded,
		LineItems:       items,
		Subtotal:        subtotal,
		Tax:             tax,
		Total:           subtotal.Add(tax),
	}
	return inv, warnings, nil
}
