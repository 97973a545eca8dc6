/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the invoice engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment)
  2. Initialize logger
  3. Open the store (sqlite3 file, libsql URL, or memory)
  4. Load the holiday table for the configured region
  5. Wire catalog manager, engine and API handler
  6. Start server with graceful shutdown

ENVIRONMENT:
  See config/config.go for the full list. The most common:
    DATABASE_DRIVER   sqlite3 | libsql | memory   (default sqlite3)
    DATABASE_URL      ./invoices.db, libsql://db.turso.io?authToken=...
    HTTP_PORT         default 8080
    HOLIDAY_REGION    default VIC
    TAX_RATE          default 0

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightsupport/invoice-engine/api"
	"github.com/brightsupport/invoice-engine/calendar"
	"github.com/brightsupport/invoice-engine/catalog"
	"github.com/brightsupport/invoice-engine/config"
	"github.com/brightsupport/invoice-engine/invoice"
	"github.com/brightsupport/invoice-engine/logger"
	"github.com/brightsupport/invoice-engine/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	// Initialize store
	backend, err := store.Open(cfg.DB.Driver, cfg.DB.URL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("failed to initialize database")
	}
	defer backend.Close()

	cal, err := calendar.LoadCalendar(cfg.Billing.HolidayRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load holiday table")
	}

	manager := catalog.NewManager(backend)
	if _, err := manager.Load(context.Background()); err != nil {
		log.Warn().Err(err).Msg("catalog could not be loaded; calculations will fail until fixed")
	}

	engine := &invoice.Engine{
		Calendar: cal,
		Catalog:  manager,
		TaxRate:  cfg.Billing.TaxRate,
		Travel:   cfg.Billing.TravelBreakdown,
	}

	handler := api.NewHandler(api.Options{
		Engine:    engine,
		Catalog:   manager,
		Calendar:  cal,
		Sequences: backend,
		Defaults: api.Defaults{
			Schedule:       cfg.Billing.DefaultSchedule,
			TravelKmPerDay: cfg.Billing.TravelKmPerDay,
		},
		Company: cfg.Company.Provider(),
		Logger:  log,
		Ping:    backend.Ping,
	})

	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("region", cal.Region()).
			Str("tax_rate", cfg.Billing.TaxRate.String()).
			Str("travel", string(cfg.Billing.TravelBreakdown)).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
