/*
Package invoice turns a service period, a work schedule and a rate card into
a priced invoice, and independently re-checks the arithmetic of any invoice.

PURPOSE:
  One calculation pass is a pure function of its inputs:

    DayRecords + DaySchedule (+ overrides) + catalog snapshot
        -> line items (+ non-fatal warnings)
        -> Invoice (subtotal, tax, total)

  The Validator then re-derives every figure from the line items and reports
  discrepancies as findings instead of failing.

KEY CONCEPTS:
  - DaySchedule: daytime hours, evening hours, sleepover units and an
    optional per-day travel distance for one day.
  - ScheduleOverrides: sparse map from calendar.Date to DaySchedule. Keyed by
    the date value itself, so no string formatting sits on the lookup path.
  - Zero-hour day: a day whose resolved schedule sums to zero. It is billed
    exactly like an excluded day (not at all) and does not count for travel.

AMOUNTS:
  All hours, km, rates and money use decimal.Decimal. Line totals are
  quantity x rate rounded to cents; subtotal/tax/total derive from those.

SEE ALSO:
  - schedule.go: resolution of a day's schedule
  - aggregate.go: bucket accumulation and line items
  - travel.go: travel distance and daily breakdown
  - assemble.go: Invoice construction
  - validate.go: consistency checks
  - engine.go: one full calculation pass
*/
package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/brightsupport/invoice-engine/calendar"
	"github.com/brightsupport/invoice-engine/catalog"
)

// =============================================================================
// CLIENT
// =============================================================================

// ClientInfo identifies the participant being billed. Name and NDISNumber are
// required.
type ClientInfo struct {
	Name             string `json:"name"`
	NDISNumber       string `json:"ndis_number"`
	Address          string `json:"address,omitempty"`
	PlanManager      string `json:"plan_manager,omitempty"`
	PlanManagerEmail string `json:"plan_manager_email,omitempty"`
}

// =============================================================================
// LINE ITEMS
// =============================================================================

// TravelDay is one row of the travel log.
type TravelDay struct {
	Date calendar.Date   `json:"date"`
	Km   decimal.Decimal `json:"km"`
}

// LineItem is one priced row, tied to exactly one catalog category.
type LineItem struct {
	ServiceCode    string           `json:"service_code"`
	Description    string           `json:"description"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitRate       decimal.Decimal  `json:"unit_rate"`
	Total          decimal.Decimal  `json:"total"`
	Category       catalog.Category `json:"category"`
	Dates          string           `json:"dates,omitempty"`
	DailyBreakdown []TravelDay      `json:"daily_breakdown,omitempty"`
}

// IsTravel reports whether Quantity is km rather than hours.
func (li LineItem) IsTravel() bool { return li.Category == catalog.Travel }

// =============================================================================
// INVOICE
// =============================================================================

// Invoice is the assembled document. Renderers read it verbatim and never
// recompute totals.
type Invoice struct {
	Number          string              `json:"invoice_number"`
	Date            calendar.Date       `json:"invoice_date"`
	Start           calendar.Date       `json:"start_date"`
	End             calendar.Date       `json:"end_date"`
	Client          ClientInfo          `json:"client"`
	DefaultSchedule DaySchedule         `json:"default_schedule"`
	Overrides       ScheduleOverrides   `json:"schedule_overrides,omitempty"`
	TravelKmPerDay  decimal.Decimal     `json:"travel_km_per_day"`
	Days            calendar.DayRecords `json:"days"`
	ExcludedDates   []calendar.Date     `json:"excluded_dates"`
	LineItems       []LineItem          `json:"line_items"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Tax             decimal.Decimal     `json:"tax"`
	Total           decimal.Decimal     `json:"total"`
}

// Period is the service period.
func (inv *Invoice) Period() calendar.Period {
	return calendar.Period{Start: inv.Start, End: inv.End}
}

// =============================================================================
// WARNINGS - Non-fatal, returned beside the invoice
// =============================================================================

type WarningKind string

const (
	// MissingCatalogEntry: a bucket had quantity but the catalog has no
	// entry for its category. The line item was omitted.
	MissingCatalogEntry WarningKind = "missingCatalogEntry"
)

type Warning struct {
	Kind     WarningKind      `json:"kind"`
	Category catalog.Category `json:"category"`
	Quantity decimal.Decimal  `json:"quantity"`
	Message  string           `json:"message"`
}
