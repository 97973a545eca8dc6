/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Engine types that
  already carry JSON tags (invoice.Invoice, invoice.Validation,
  calendar.DayRecords) are returned as-is; the types here cover request
  bodies with optional fields and the few response wrappers.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

AMOUNTS:
  Decimal fields accept JSON numbers or numeric strings on input and are
  always written as strings ("67.56") on output, so no figure passes
  through a float64 on the wire.

SEE ALSO:
  - handlers.go: Uses these types
  - invoice/engine.go: invoice.Request, the engine-side request
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/brightsupport/invoice-engine/calendar"
	"github.com/brightsupport/invoice-engine/catalog"
	"github.com/brightsupport/invoice-engine/invoice"
)

// =============================================================================
// CALENDAR
// =============================================================================

// HolidaysResponse lists the static table for one year.
type HolidaysResponse struct {
	Year     int                `json:"year"`
	Region   string             `json:"region"`
	Holidays []calendar.Holiday `json:"holidays"`
}

// DaysRequest categorizes a service period.
type DaysRequest struct {
	Start          calendar.Date            `json:"start_date"`
	End            calendar.Date            `json:"end_date"`
	ManualHolidays []calendar.ManualHoliday `json:"manual_holidays,omitempty"`
	ExcludedDates  []calendar.Date          `json:"excluded_dates,omitempty"`
}

// DaysResponse is the categorized period with per-category counts of the
// days that will be billed.
type DaysResponse struct {
	Days     calendar.DayRecords       `json:"days"`
	Counts   map[calendar.Category]int `json:"counts"`
	Billable int                       `json:"billable"`
	Excluded []calendar.Date           `json:"excluded_dates"`
}

// =============================================================================
// INVOICES
// =============================================================================

// CalculateRequest is the body of /api/invoices/calculate and /pdf.
// Optional fields fall back to the server's configured defaults.
type CalculateRequest struct {
	InvoiceNumber   string                    `json:"invoice_number,omitempty"`
	InvoiceDate     *calendar.Date            `json:"invoice_date,omitempty"`
	Start           calendar.Date             `json:"start_date"`
	End             calendar.Date             `json:"end_date"`
	Client          invoice.ClientInfo        `json:"client"`
	DefaultSchedule *invoice.DaySchedule      `json:"default_schedule,omitempty"`
	Overrides       invoice.ScheduleOverrides `json:"schedule_overrides,omitempty"`
	TravelKmPerDay  *decimal.Decimal          `json:"travel_km_per_day,omitempty"`
	TravelBreakdown string                    `json:"travel_breakdown,omitempty"`
	ManualHolidays  []calendar.ManualHoliday  `json:"manual_holidays,omitempty"`
	ExcludedDates   []calendar.Date           `json:"excluded_dates,omitempty"`
}

// ValidationResponse adds the display report to a verdict.
type ValidationResponse struct {
	invoice.Validation
	Report string `json:"report,omitempty"`
}

// NumberDTO is a freshly allocated invoice number.
type NumberDTO struct {
	InvoiceNumber string        `json:"invoice_number"`
	InvoiceDate   calendar.Date `json:"invoice_date"`
}

// =============================================================================
// CATALOG
// =============================================================================

// CatalogResponse is a (possibly filtered) view of the current catalog.
type CatalogResponse struct {
	Entries []catalog.EntryJSON `json:"entries"`
	Count   int                 `json:"count"`
}

func catalogResponse(entries []catalog.Entry) CatalogResponse {
	return CatalogResponse{Entries: catalog.EntriesJSON(entries), Count: len(entries)}
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a canned demo calculation.
type ScenarioDTO struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Request     CalculateRequest `json:"request"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
