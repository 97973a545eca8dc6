/*
handlers.go - HTTP API handlers for the invoice engine

PURPOSE:
  Exposes the calculation engine and catalog administration via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to the
  engine packages. Handlers never price anything themselves.

ENDPOINTS:
  Calendar:
    GET    /api/holidays?year=YYYY      Static holiday table for a year
    POST   /api/days                    Categorize a period (+ counts)

  Invoices:
    POST   /api/invoices/number         Allocate the next invoice number
    POST   /api/invoices/calculate      Invoice + warnings + validation
    POST   /api/invoices/validate       Re-check a posted invoice
    POST   /api/invoices/pdf            Calculate and stream a PDF

  Catalog:
    GET    /api/catalog                 List (?category=&q= filter)
    POST   /api/catalog                 Add entry
    PUT    /api/catalog/{id}            Update entry
    DELETE /api/catalog/{id}            Delete entry
    POST   /api/catalog/import          Replace the whole list
    GET    /api/catalog/export          Download as JSON
    POST   /api/catalog/reset           Back to the default dataset

ARCHITECTURE:
  Handler holds all dependencies:
  - Engine: one calculation pass per request, stateless
  - Catalog: single-writer manager; every mutation is validated first
  - Calendar: static holiday table for the configured region
  - Numbers: invoice number allocation
  - Defaults: schedule and travel applied when a request omits them

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body, invalid range, incomplete client, negative values
  - 404: Catalog entry not found
  - 422: Catalog validation failed; invoice failed validation (PDF)
  - 500: Catalog load failures, storage errors

  Missing catalog entries are not errors. They come back as warnings in
  the calculation and are logged.

SECURITY NOTE:
  No authentication. Intended to run on a trusted network.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Canned demo calculations
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/brightsupport/invoice-engine/calendar"
	"github.com/brightsupport/invoice-engine/catalog"
	"github.com/brightsupport/invoice-engine/export"
	"github.com/brightsupport/invoice-engine/invoice"
	"github.com/brightsupport/invoice-engine/logger"
)

const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Defaults fill in the optional parts of a calculation request.
type Defaults struct {
	Schedule       invoice.DaySchedule
	TravelKmPerDay decimal.Decimal
}

// Options wires a Handler.
type Options struct {
	Engine    *invoice.Engine
	Catalog   *catalog.Manager
	Calendar  *calendar.Calendar
	Sequences invoice.SequenceStore
	Defaults  Defaults
	Company   export.Company
	Logger    *logger.Logger
	// Ping, when set, is checked by /api/health.
	Ping func(context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	engine   *invoice.Engine
	catalog  *catalog.Manager
	calendar *calendar.Calendar
	numbers  invoice.NumberGenerator
	defaults Defaults
	company  export.Company
	log      *logger.Logger
	ping     func(context.Context) error
	now      func() time.Time
}

// NewHandler creates a new handler from opts.
func NewHandler(opts Options) *Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		engine:   opts.Engine,
		catalog:  opts.Catalog,
		calendar: opts.Calendar,
		numbers:  invoice.NumberGenerator{Store: opts.Sequences},
		defaults: opts.Defaults,
		company:  opts.Company,
		log:      log,
		ping:     opts.Ping,
		now:      time.Now,
	}
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness and, when configured, storage reachability.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Database unreachable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"region": h.calendar.Region(),
	})
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// ListHolidays returns the static table entries for a year (default: this year).
// GET /api/holidays?year=2025
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := h.now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1 {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = y
	}

	holidays := h.calendar.Holidays(year)
	if holidays == nil {
		holidays = []calendar.Holiday{}
	}
	writeJSON(w, http.StatusOK, HolidaysResponse{
		Year:     year,
		Region:   h.calendar.Region(),
		Holidays: holidays,
	})
}

// CategorizeDays returns the day records of a period.
// POST /api/days
func (h *Handler) CategorizeDays(w http.ResponseWriter, r *http.Request) {
	var req DaysRequest
	if !decodeBody(w, r, &req) {
		return
	}

	days, err := h.engine.Days(req.Start, req.End, req.ManualHolidays, req.ExcludedDates)
	if err != nil {
		writeDomainError(w, "Failed to categorize days", err)
		return
	}

	counts := days.CountByCategory()
	billable := 0
	for _, n := range counts {
		billable += n
	}
	excluded := days.ExcludedDates()
	if excluded == nil {
		excluded = []calendar.Date{}
	}

	writeJSON(w, http.StatusOK, DaysResponse{
		Days:     days,
		Counts:   counts,
		Billable: billable,
		Excluded: excluded,
	})
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

// AllocateNumber issues the next invoice number for today.
// POST /api/invoices/number
func (h *Handler) AllocateNumber(w http.ResponseWriter, r *http.Request) {
	today := calendar.FromTime(h.now())
	number, err := h.numbers.Next(r.Context(), today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to allocate invoice number", err)
		return
	}
	writeJSON(w, http.StatusOK, NumberDTO{InvoiceNumber: number, InvoiceDate: today})
}

// CalculateInvoice runs one calculation pass.
// POST /api/invoices/calculate
func (h *Handler) CalculateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	calc, ok := h.calculate(w, r, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, calc)
}

// ValidateInvoice re-checks the arithmetic of a posted invoice.
// POST /api/invoices/validate
func (h *Handler) ValidateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv invoice.Invoice
	if !decodeBody(w, r, &inv) {
		return
	}

	v := h.engine.Validator().Validate(&inv)
	writeJSON(w, http.StatusOK, ValidationResponse{
		Validation: v,
		Report:     invoice.FormatFindings(v.Findings),
	})
}

// InvoicePDF calculates and streams the document. An invoice that fails
// validation is refused with 422 and the findings.
// POST /api/invoices/pdf
func (h *Handler) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx := r.Context()
	calc, ok := h.calculate(w, r, req)
	if !ok {
		return
	}
	if !calc.Validation.IsValid {
		h.log.Warn().
			Str("request_id", middleware.GetReqID(ctx)).
			Str("invoice_number", calc.Invoice.Number).
			Int("findings", len(calc.Validation.Findings)).
			Msg("refusing to render invalid invoice")
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "Invoice failed validation",
			Code:    "invoice_invalid",
			Details: ValidationResponse{Validation: calc.Validation, Report: invoice.FormatFindings(calc.Validation.Findings)},
		})
		return
	}

	// Numbers are only consumed by invoices that will be rendered.
	if calc.Invoice.Number == "" {
		number, err := h.numbers.Next(ctx, calc.Invoice.Date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to allocate invoice number", err)
			return
		}
		calc.Invoice.Number = number
	}

	var buf bytes.Buffer
	if err := export.RenderPDF(&buf, calc.Invoice, h.company); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render PDF", err)
		return
	}

	inv := calc.Invoice
	filename := export.Filename(inv.Number, "pdf", inv.Start, inv.End, inv.Client.Name, h.now())
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// calculate applies defaults, runs the engine and writes any error response.
func (h *Handler) calculate(w http.ResponseWriter, r *http.Request, req CalculateRequest) (*invoice.Calculation, bool) {
	ctx := r.Context()

	engine := h.engine
	if req.TravelBreakdown != "" {
		mode, err := invoice.ParseTravelMode(req.TravelBreakdown)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid travel_breakdown", err)
			return nil, false
		}
		custom := *h.engine
		custom.Travel = mode
		engine = &custom
	}

	calc, err := engine.Calculate(ctx, h.toEngineRequest(req))
	if err != nil {
		h.log.Error().Err(err).Str("request_id", middleware.GetReqID(ctx)).Msg("calculation failed")
		writeDomainError(w, "Failed to calculate invoice", err)
		return nil, false
	}

	for _, warning := range calc.Warnings {
		h.log.Warn().
			Str("request_id", middleware.GetReqID(ctx)).
			Str("category", string(warning.Category)).
			Str("quantity", warning.Quantity.String()).
			Msg(warning.Message)
	}
	return calc, true
}

func (h *Handler) toEngineRequest(req CalculateRequest) invoice.Request {
	schedule := h.defaults.Schedule
	if req.DefaultSchedule != nil {
		schedule = *req.DefaultSchedule
	}
	travel := h.defaults.TravelKmPerDay
	if req.TravelKmPerDay != nil {
		travel = *req.TravelKmPerDay
	}

	return invoice.Request{
		Number:          req.InvoiceNumber,
		Date:            h.invoiceDate(req),
		Start:           req.Start,
		End:             req.End,
		Client:          req.Client,
		DefaultSchedule: schedule,
		Overrides:       req.Overrides,
		TravelKmPerDay:  travel,
		ManualHolidays:  req.ManualHolidays,
		ExcludedDates:   req.ExcludedDates,
	}
}

func (h *Handler) invoiceDate(req CalculateRequest) calendar.Date {
	if req.InvoiceDate != nil && !req.InvoiceDate.IsZero() {
		return *req.InvoiceDate
	}
	return calendar.FromTime(h.now())
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// ListCatalog returns the current catalog, optionally filtered.
// GET /api/catalog?category=weekday&q=evening
func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.Load(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to load catalog", err)
		return
	}

	category := catalog.Category(r.URL.Query().Get("category"))
	if category != "" && !category.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown category", nil)
		return
	}

	writeJSON(w, http.StatusOK, catalogResponse(c.Filter(category, r.URL.Query().Get("q"))))
}

// CreateCatalogEntry appends an entry.
// POST /api/catalog
func (h *Handler) CreateCatalogEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := decodeEntry(w, r)
	if !ok {
		return
	}
	if entry.ID == "" {
		entry.ID = catalog.NewEntryID()
	}

	c, err := h.catalog.Add(r.Context(), entry)
	if err != nil {
		writeDomainError(w, "Failed to add catalog entry", err)
		return
	}

	saved, _ := c.Find(entry.ID)
	h.log.Info().Str("id", saved.ID).Str("code", saved.Code).Msg("catalog entry added")
	writeJSON(w, http.StatusCreated, catalog.ToJSON(saved))
}

// UpdateCatalogEntry replaces the entry named in the URL.
// PUT /api/catalog/{id}
func (h *Handler) UpdateCatalogEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := decodeEntry(w, r)
	if !ok {
		return
	}
	entry.ID = chi.URLParam(r, "id")

	if _, err := h.catalog.Update(r.Context(), entry); err != nil {
		writeDomainError(w, "Failed to update catalog entry", err)
		return
	}

	h.log.Info().Str("id", entry.ID).Str("code", entry.Code).Msg("catalog entry updated")
	writeJSON(w, http.StatusOK, catalog.ToJSON(entry))
}

// DeleteCatalogEntry removes an entry.
// DELETE /api/catalog/{id}
func (h *Handler) DeleteCatalogEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.catalog.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete catalog entry", err)
		return
	}

	h.log.Info().Str("id", id).Msg("catalog entry deleted")
	w.WriteHeader(http.StatusNoContent)
}

// ImportCatalog replaces the whole list with the posted array.
// POST /api/catalog/import
func (h *Handler) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := catalog.DecodeEntries(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid catalog JSON", err)
		return
	}

	c, err := h.catalog.Import(r.Context(), entries)
	if err != nil {
		writeDomainError(w, "Failed to import catalog", err)
		return
	}

	h.log.Info().Int("entries", c.Len()).Msg("catalog imported")
	writeJSON(w, http.StatusOK, catalogResponse(c.Entries()))
}

// ExportCatalog downloads the current list in import format.
// GET /api/catalog/export
func (h *Handler) ExportCatalog(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.Load(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to load catalog", err)
		return
	}

	var buf bytes.Buffer
	if err := c.Export(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export catalog", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", catalog.ExportFilename(h.now())))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// ResetCatalog discards user edits.
// POST /api/catalog/reset
func (h *Handler) ResetCatalog(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.Reset(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to reset catalog", err)
		return
	}

	h.log.Info().Msg("catalog reset to defaults")
	writeJSON(w, http.StatusOK, catalogResponse(c.Entries()))
}

func decodeEntry(w http.ResponseWriter, r *http.Request) (catalog.Entry, bool) {
	var ej catalog.EntryJSON
	if !decodeBody(w, r, &ej) {
		return catalog.Entry{}, false
	}
	entry, err := catalog.FromJSON(ej)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid catalog entry", err)
		return catalog.Entry{}, false
	}
	return entry, true
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors to a status and a machine-readable code.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status, code := statusFor(err)
	resp := ErrorResponse{Error: message, Code: code, Details: err.Error()}

	var verr *catalog.ValidationError
	if errors.As(err, &verr) && !errors.Is(err, catalog.ErrLoad) {
		resp.Details = verr.Violations
	}
	var cerr *invoice.IncompleteClientError
	if errors.As(err, &cerr) {
		resp.Details = map[string]any{"missing": cerr.Missing}
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, catalog.ErrLoad):
		return http.StatusInternalServerError, "catalog_unavailable"
	case errors.Is(err, calendar.ErrInvalidRange):
		return http.StatusBadRequest, "invalid_range"
	case errors.Is(err, invoice.ErrIncompleteClientInfo):
		return http.StatusBadRequest, "incomplete_client"
	case errors.Is(err, invoice.ErrInvalidSchedule):
		return http.StatusBadRequest, "invalid_schedule"
	case errors.Is(err, catalog.ErrEntryNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, catalog.ErrCatalogValidation):
		return http.StatusUnprocessableEntity, "catalog_invalid"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
