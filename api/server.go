/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, echoed in handler logs
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the browser front end

ROUTE GROUPS:
  /api/health           Liveness
  /api/holidays         Static holiday table
  /api/days             Day categorization
  /api/invoices/*       Numbering, calculation, validation, PDF
  /api/catalog/*        Catalog administration
  /api/scenarios/*      Demo calculations

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins ...string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/holidays", h.ListHolidays)
		r.Post("/days", h.CategorizeDays)

		// Invoice routes
		r.Route("/invoices", func(r chi.Router) {
			r.Post("/number", h.AllocateNumber)
			r.Post("/calculate", h.CalculateInvoice)
			r.Post("/validate", h.ValidateInvoice)
			r.Post("/pdf", h.InvoicePDF)
		})

		// Catalog routes
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", h.ListCatalog)
			r.Post("/", h.CreateCatalogEntry)
			r.Get("/export", h.ExportCatalog)
			r.Post("/import", h.ImportCatalog)
			r.Post("/reset", h.ResetCatalog)
			r.Put("/{id}", h.UpdateCatalogEntry)
			r.Delete("/{id}", h.DeleteCatalogEntry)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/{id}", h.GetScenario)
			r.Post("/{id}/calculate", h.CalculateScenario)
		})
	})

	return r
}
