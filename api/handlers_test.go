/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Calendar endpoints (holidays, day categorization)
- Invoice calculation, validation and PDF rendering
- Catalog administration and error status mapping
- Demo scenarios
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightsupport/invoice-engine/api"
	"github.com/brightsupport/invoice-engine/calendar"
	"github.com/brightsupport/invoice-engine/catalog"
	"github.com/brightsupport/invoice-engine/export"
	"github.com/brightsupport/invoice-engine/invoice"
	"github.com/brightsupport/invoice-engine/store/memory"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	cal, err := calendar.LoadCalendar("VIC")
	require.NoError(t, err)

	store := memory.New()
	manager := catalog.NewManager(store)
	engine := &invoice.Engine{Calendar: cal, Catalog: manager}

	h := api.NewHandler(api.Options{
		Engine:    engine,
		Catalog:   manager,
		Calendar:  cal,
		Sequences: store,
		Defaults: api.Defaults{
			Schedule:       invoice.Hours(8, 0, 0),
			TravelKmPerDay: decimal.RequireFromString("27.5"),
		},
		Company: export.Company{Name: "Bright Support"},
	})
	return api.NewRouter(h)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func client() invoice.ClientInfo {
	return invoice.ClientInfo{Name: "Jane Citizen", NDISNumber: "430000000"}
}

func newYearWeek() api.CalculateRequest {
	return api.CalculateRequest{
		Start:  calendar.MustParseDate("2025-01-01"),
		End:    calendar.MustParseDate("2025-01-07"),
		Client: client(),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// =============================================================================
// CALENDAR
// =============================================================================

func TestHealth(t *testing.T) {
	rec := do(t, newRouter(t), http.MethodGet, "/api/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "VIC", body["region"])
}

func TestListHolidays(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodGet, "/api/holidays?year=2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[api.HolidaysResponse](t, rec)
	assert.Equal(t, 2025, resp.Year)
	assert.Len(t, resp.Holidays, 13)
	assert.Equal(t, "New Year's Day", resp.Holidays[0].Name)

	rec = do(t, router, http.MethodGet, "/api/holidays?year=1800", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[api.HolidaysResponse](t, rec).Holidays)

	rec = do(t, router, http.MethodGet, "/api/holidays?year=twenty", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategorizeDays(t *testing.T) {
	router := newRouter(t)

	// GIVEN: the week of New Year's Day with the Sunday excluded
	req := api.DaysRequest{
		Start:         calendar.MustParseDate("2025-01-01"),
		End:           calendar.MustParseDate("2025-01-07"),
		ExcludedDates: []calendar.Date{calendar.MustParseDate("2025-01-05")},
	}

	// WHEN: categorizing
	rec := do(t, router, http.MethodPost, "/api/days", req)

	// THEN: every day is returned and only billed days are counted
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[api.DaysResponse](t, rec)
	assert.Len(t, resp.Days, 7)
	assert.Equal(t, calendar.CategoryPublicHoliday, resp.Days[0].Category)
	assert.Equal(t, 4, resp.Counts[calendar.CategoryWeekday])
	assert.Equal(t, 1, resp.Counts[calendar.CategorySaturday])
	assert.Equal(t, 0, resp.Counts[calendar.CategorySunday])
	assert.Equal(t, 1, resp.Counts[calendar.CategoryPublicHoliday])
	assert.Equal(t, 6, resp.Billable)
	assert.Equal(t, []calendar.Date{calendar.MustParseDate("2025-01-05")}, resp.Excluded)
}

func TestCategorizeDays_InvalidRange(t *testing.T) {
	rec := do(t, newRouter(t), http.MethodPost, "/api/days", api.DaysRequest{
		Start: calendar.MustParseDate("2025-01-07"),
		End:   calendar.MustParseDate("2025-01-01"),
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_range", decode[api.ErrorResponse](t, rec).Code)

	// Omitted dates are rejected, not read as year zero
	rec = do(t, newRouter(t), http.MethodPost, "/api/days", map[string]any{"end_date": "2025-01-07"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_range", decode[api.ErrorResponse](t, rec).Code)
}

// =============================================================================
// INVOICES
// =============================================================================

func TestCalculateInvoice_UsesDefaults(t *testing.T) {
	// GIVEN: a request that leaves schedule and travel to the server defaults
	router := newRouter(t)

	// WHEN: calculating the week of New Year's Day
	rec := do(t, router, http.MethodPost, "/api/invoices/calculate", newYearWeek())

	// THEN: every category is priced and the result validates
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	calc := decode[invoice.Calculation](t, rec)

	byCategory := map[catalog.Category]invoice.LineItem{}
	for _, li := range calc.Invoice.LineItems {
		byCategory[li.Category] = li
	}
	assert.True(t, byCategory[catalog.Weekday].Quantity.Equal(dec("32")))
	assert.True(t, byCategory[catalog.PublicHoliday].Total.Equal(dec("1200.80")))
	assert.True(t, byCategory[catalog.Travel].Quantity.Equal(dec("192.5")))
	assert.True(t, calc.Invoice.Subtotal.Equal(dec("5296.50")), calc.Invoice.Subtotal.String())
	assert.True(t, calc.Validation.IsValid)
	assert.Empty(t, calc.Warnings)
}

func TestCalculateInvoice_Errors(t *testing.T) {
	router := newRouter(t)

	noClient := newYearWeek()
	noClient.Client = invoice.ClientInfo{Name: "Jane Citizen"}

	backwards := newYearWeek()
	backwards.Start, backwards.End = backwards.End, backwards.Start

	negative := newYearWeek()
	negative.DefaultSchedule = &invoice.DaySchedule{Daytime: dec("-1")}

	badMode := newYearWeek()
	badMode.TravelBreakdown = "chaotic"

	noStart := newYearWeek()
	noStart.Start = calendar.Date{}

	tooLong := newYearWeek()
	tooLong.End = calendar.MustParseDate("2026-06-30")

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"malformed body", "{not json", http.StatusBadRequest, ""},
		{"incomplete client", noClient, http.StatusBadRequest, "incomplete_client"},
		{"invalid range", backwards, http.StatusBadRequest, "invalid_range"},
		{"missing start date", noStart, http.StatusBadRequest, "invalid_range"},
		{"period too long", tooLong, http.StatusBadRequest, "invalid_range"},
		{"negative hours", negative, http.StatusBadRequest, "invalid_schedule"},
		{"unknown travel mode", badMode, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/invoices/calculate", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode[api.ErrorResponse](t, rec).Code)
		})
	}
}

func TestCalculateInvoice_MissingCatalogEntryIsAWarning(t *testing.T) {
	// GIVEN: the travel entry has been deleted
	router := newRouter(t)
	rec := do(t, router, http.MethodDelete, "/api/catalog/travel", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// WHEN: calculating with travel
	rec = do(t, router, http.MethodPost, "/api/invoices/calculate", newYearWeek())

	// THEN: the invoice is still produced, without a travel line
	require.Equal(t, http.StatusOK, rec.Code)
	calc := decode[invoice.Calculation](t, rec)
	require.Len(t, calc.Warnings, 1)
	assert.Equal(t, invoice.MissingCatalogEntry, calc.Warnings[0].Kind)
	assert.Equal(t, catalog.Travel, calc.Warnings[0].Category)
	for _, li := range calc.Invoice.LineItems {
		assert.False(t, li.IsTravel())
	}
	assert.True(t, calc.Validation.IsValid)
}

func TestValidateInvoice(t *testing.T) {
	router := newRouter(t)
	rec := do(t, router, http.MethodPost, "/api/invoices/calculate", newYearWeek())
	require.Equal(t, http.StatusOK, rec.Code)
	inv := decode[invoice.Calculation](t, rec).Invoice

	t.Run("untouched invoice is valid", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/invoices/validate", inv)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[api.ValidationResponse](t, rec)
		assert.True(t, resp.IsValid)
		assert.Empty(t, resp.Report)
	})

	t.Run("tampered total is reported", func(t *testing.T) {
		tampered := *inv
		tampered.Total = tampered.Total.Add(dec("10"))

		rec := do(t, router, http.MethodPost, "/api/invoices/validate", tampered)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[api.ValidationResponse](t, rec)
		assert.False(t, resp.IsValid)
		require.NotEmpty(t, resp.Findings)
		assert.Equal(t, invoice.TotalMismatch, resp.Findings[0].Kind)
		assert.Contains(t, resp.Report, "TOTAL ERRORS:")
	})
}

func TestAllocateNumber(t *testing.T) {
	router := newRouter(t)

	first := decode[api.NumberDTO](t, do(t, router, http.MethodPost, "/api/invoices/number", nil))
	second := decode[api.NumberDTO](t, do(t, router, http.MethodPost, "/api/invoices/number", nil))

	assert.True(t, strings.HasPrefix(first.InvoiceNumber, "INV-"))
	assert.True(t, strings.HasSuffix(first.InvoiceNumber, "-0001"))
	assert.True(t, strings.HasSuffix(second.InvoiceNumber, "-0002"))
}

func TestInvoicePDF(t *testing.T) {
	// GIVEN: a request without an invoice number
	router := newRouter(t)

	// WHEN: requesting the PDF
	rec := do(t, router, http.MethodPost, "/api/invoices/pdf", newYearWeek())

	// THEN: a document is streamed under an allocated number
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	disposition := rec.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "-0001_01Jan25-07Jan25_jane-citizen_")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestInvoicePDF_RejectsIncompleteClient(t *testing.T) {
	req := newYearWeek()
	req.Client.NDISNumber = ""

	rec := do(t, newRouter(t), http.MethodPost, "/api/invoices/pdf", req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEqual(t, "application/pdf", rec.Header().Get("Content-Type"))
}

func TestInvoicePDF_FailedRequestsDoNotConsumeNumbers(t *testing.T) {
	// GIVEN: two rejected PDF requests
	router := newRouter(t)
	noClient := newYearWeek()
	noClient.Client.NDISNumber = ""
	noStart := newYearWeek()
	noStart.Start = calendar.Date{}
	require.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/invoices/pdf", noClient).Code)
	require.Equal(t, http.StatusBadRequest, do(t, router, http.MethodPost, "/api/invoices/pdf", noStart).Code)

	// WHEN: the next request succeeds
	rec := do(t, router, http.MethodPost, "/api/invoices/pdf", newYearWeek())

	// THEN: it gets the first number of the day
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "-0001_")
}

// =============================================================================
// CATALOG
// =============================================================================

func TestCatalog_ListAndFilter(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, decode[api.CatalogResponse](t, rec).Count)

	rec = do(t, router, http.MethodGet, "/api/catalog?category=weekday", nil)
	assert.Equal(t, 1, decode[api.CatalogResponse](t, rec).Count)

	rec = do(t, router, http.MethodGet, "/api/catalog?q=0107", nil)
	resp := decode[api.CatalogResponse](t, rec)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "weekdaySleepover", resp.Entries[0].Category)

	rec = do(t, router, http.MethodGet, "/api/catalog?category=midnight", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalog_Mutations(t *testing.T) {
	router := newRouter(t)

	// Create
	rec := do(t, router, http.MethodPost, "/api/catalog", map[string]any{
		"category":    "weekday",
		"code":        "04_104_0125_6_1_T",
		"description": "Weekday daytime (TTP)",
		"rate":        70.23,
		"active":      false,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[catalog.EntryJSON](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "70.23", created.Rate.String())

	// Duplicate (category, code) fails validation
	rec = do(t, router, http.MethodPost, "/api/catalog", map[string]any{
		"category":    "weekday",
		"code":        "04_104_0125_6_1_T",
		"description": "again",
		"rate":        "1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "catalog_invalid", decode[api.ErrorResponse](t, rec).Code)

	// Update
	rec = do(t, router, http.MethodPut, "/api/catalog/"+created.ID, map[string]any{
		"category":    "weekday",
		"code":        "04_104_0125_6_1_T",
		"description": "Weekday daytime (TTP)",
		"rate":        "71.00",
		"active":      false,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPut, "/api/catalog/missing", map[string]any{
		"category": "weekday", "code": "X", "description": "x", "rate": 1,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Delete
	rec = do(t, router, http.MethodDelete, "/api/catalog/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, http.MethodDelete, "/api/catalog/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalog_ExportImportReset(t *testing.T) {
	router := newRouter(t)

	// Export
	rec := do(t, router, http.MethodGet, "/api/catalog/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "services-catalog-")
	exported := rec.Body.String()

	// Import a single entry
	rec = do(t, router, http.MethodPost, "/api/catalog/import",
		`[{"category":"saturday","code":"SAT","description":"Saturday","rate":"90"}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[api.CatalogResponse](t, rec).Count)

	// An invalid import leaves the catalog untouched
	rec = do(t, router, http.MethodPost, "/api/catalog/import", `[{"category":"saturday","code":"","description":"","rate":"-1"}]`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = do(t, router, http.MethodPost, "/api/catalog/import",
		`[{"id":"x","category":"saturday","code":"S1","description":"Saturday","rate":"90"},`+
			`{"id":"x","category":"sunday","code":"U1","description":"Sunday","rate":"120"}]`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "catalog_invalid", decode[api.ErrorResponse](t, rec).Code)
	rec = do(t, router, http.MethodPost, "/api/catalog/import", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, decode[api.CatalogResponse](t, do(t, router, http.MethodGet, "/api/catalog", nil)).Count)

	// Re-importing the export restores the full list
	rec = do(t, router, http.MethodPost, "/api/catalog/import", exported)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, decode[api.CatalogResponse](t, rec).Count)

	// Reset
	do(t, router, http.MethodDelete, "/api/catalog/travel", nil)
	rec = do(t, router, http.MethodPost, "/api/catalog/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, decode[api.CatalogResponse](t, rec).Count)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]api.ScenarioDTO](t, rec)
	require.NotEmpty(t, list)

	for _, s := range list {
		t.Run(s.ID, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/scenarios/"+s.ID+"/calculate", nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			calc := decode[invoice.Calculation](t, rec)
			assert.True(t, calc.Validation.IsValid)
			assert.NotEmpty(t, calc.Invoice.LineItems)
		})
	}

	rec = do(t, router, http.MethodPost, "/api/scenarios/nope/calculate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScenario_RandomizedTravelKeepsTotal(t *testing.T) {
	rec := do(t, newRouter(t), http.MethodPost, "/api/scenarios/easter-randomized/calculate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	calc := decode[invoice.Calculation](t, rec)

	var travel *invoice.LineItem
	for i := range calc.Invoice.LineItems {
		if calc.Invoice.LineItems[i].IsTravel() {
			travel = &calc.Invoice.LineItems[i]
		}
	}
	require.NotNil(t, travel)
	require.Len(t, travel.DailyBreakdown, 6)

	sum := decimal.Zero
	for _, d := range travel.DailyBreakdown {
		assert.False(t, d.Km.IsNegative())
		sum = sum.Add(d.Km)
	}
	assert.True(t, sum.Equal(dec("165")), sum.String())
	assert.True(t, travel.Quantity.Equal(dec("165")))
}
