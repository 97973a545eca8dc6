/*
scenarios.go - Canned demo calculations

PURPOSE:

	Provides pre-built calculation requests that exercise specific billing
	features end to end: weekday splits, weekend and public holiday rates,
	sleepovers, travel overrides and randomized travel logs. They run
	against the live catalog and holiday table, nothing is written.

AVAILABLE SCENARIOS:

	standard-week:     Mon-Sun at 8h/day with default travel
	new-year-week:     Week containing New Year's Day (public holiday rate)
	evening-shifts:    Weekday daytime/evening split plus Saturday
	sleepover-week:    Evening and sleepover buckets across a full week
	easter-randomized: Easter long weekend with a randomized travel log
	custom-days:       Per-day overrides, a manual holiday and exclusions

USAGE VIA API:

	GET  /api/scenarios
	POST /api/scenarios/easter-randomized/calculate

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Build the CalculateRequest inline; leave optional fields nil to pick
    up the server defaults

SEE ALSO:
  - handlers.go: CalculateInvoice, which runs the same pipeline
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/brightsupport/invoice-engine/calendar"
	"github.com/brightsupport/invoice-engine/invoice"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var demoClient = invoice.ClientInfo{
	Name:             "Demo Participant",
	NDISNumber:       "430000000",
	Address:          "1 Example Street, Melbourne VIC 3000",
	PlanManager:      "Example Plan Management",
	PlanManagerEmail: "accounts@planmanager.example",
}

func date(s string) calendar.Date { return calendar.MustParseDate(s) }

func schedule(daytime, evening, sleepover float64) *invoice.DaySchedule {
	s := invoice.Hours(daytime, evening, sleepover)
	return &s
}

func km(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var scenarios = []ScenarioDTO{
	{
		ID:          "standard-week",
		Name:        "Standard Week",
		Description: "Monday to Sunday at 8 hours a day with 27.5 km of travel per day",
		Category:    "standard",
		Request: CalculateRequest{
			Start:           date("2025-03-03"),
			End:             date("2025-03-09"),
			Client:          demoClient,
			DefaultSchedule: schedule(8, 0, 0),
			TravelKmPerDay:  km("27.5"),
		},
	},
	{
		ID:          "new-year-week",
		Name:        "New Year Week",
		Description: "1-7 January: New Year's Day is billed at the public holiday rate",
		Category:    "holidays",
		Request: CalculateRequest{
			Start:           date("2025-01-01"),
			End:             date("2025-01-07"),
			Client:          demoClient,
			DefaultSchedule: schedule(8, 0, 0),
			TravelKmPerDay:  km("27.5"),
		},
	},
	{
		ID:          "evening-shifts",
		Name:        "Evening Shifts",
		Description: "Weekdays split into daytime and evening hours; Saturday sums both",
		Category:    "standard",
		Request: CalculateRequest{
			Start:           date("2025-05-05"),
			End:             date("2025-05-10"),
			Client:          demoClient,
			DefaultSchedule: schedule(6, 3.5, 0),
			TravelKmPerDay:  km("20"),
		},
	},
	{
		ID:          "sleepover-week",
		Name:        "Sleepover Week",
		Description: "Daytime, evening and one sleepover unit every night",
		Category:    "standard",
		Request: CalculateRequest{
			Start:           date("2025-06-16"),
			End:             date("2025-06-22"),
			Client:          demoClient,
			DefaultSchedule: schedule(6, 4, 1),
			TravelKmPerDay:  km("15"),
		},
	},
	{
		ID:          "easter-randomized",
		Name:        "Easter Long Weekend",
		Description: "Good Friday to Easter Monday with a randomized daily travel log",
		Category:    "travel",
		Request: CalculateRequest{
			Start:           date("2025-04-17"),
			End:             date("2025-04-22"),
			Client:          demoClient,
			DefaultSchedule: schedule(8, 0, 0),
			TravelKmPerDay:  km("27.5"),
			TravelBreakdown: string(invoice.TravelRandomized),
		},
	},
	{
		ID:          "custom-days",
		Name:        "Custom Days",
		Description: "Per-day overrides with travel, a manual holiday and two excluded days",
		Category:    "holidays",
		Request: CalculateRequest{
			Start:           date("2025-08-04"),
			End:             date("2025-08-17"),
			Client:          demoClient,
			DefaultSchedule: schedule(8, 0, 0),
			TravelKmPerDay:  km("27.5"),
			Overrides: invoice.ScheduleOverrides{
				date("2025-08-05"): invoice.Hours(4, 2, 0).WithTravel(decimal.NewFromInt(40)),
				date("2025-08-07"): invoice.Hours(0, 0, 0),
				date("2025-08-09"): invoice.Hours(10, 0, 1),
			},
			ManualHolidays: []calendar.ManualHoliday{
				{Date: date("2025-08-15"), Name: "Community Day"},
			},
			ExcludedDates: []calendar.Date{date("2025-08-16"), date("2025-08-17")},
		},
	},
}

func findScenario(id string) (ScenarioDTO, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return ScenarioDTO{}, false
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetScenario returns one scenario with its request body.
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	s, ok := findScenario(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown scenario", nil)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// CalculateScenario runs a scenario's request through the engine.
func (h *Handler) CalculateScenario(w http.ResponseWriter, r *http.Request) {
	s, ok := findScenario(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown scenario", nil)
		return
	}

	calc, ok := h.calculate(w, r, s.Request)
	if !ok {
		return
	}
	h.log.Debug().Str("scenario", s.ID).Str("total", calc.Invoice.Total.String()).Msg("scenario calculated")
	writeJSON(w, http.StatusOK, calc)
}
