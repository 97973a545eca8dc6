package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/brightsupport/invoice-engine/calendar"
	"github.com/brightsupport/invoice-engine/catalog"
	"github.com/brightsupport/invoice-engine/config"
	"github.com/brightsupport/invoice-engine/invoice"
	"github.com/brightsupport/invoice-engine/logger"
	"github.com/brightsupport/invoice-engine/store"
)

// app carries the wired engine into every command.
type app struct {
	cfg      *config.Config
	calendar *calendar.Calendar
	catalog  *catalog.Manager
	engine   *invoice.Engine
	numbers  invoice.NumberGenerator
	log      *logger.Logger
	now      func() time.Time
}

func newApp(cfg *config.Config, backend store.Backend, log *logger.Logger) (*app, error) {
	cal, err := calendar.LoadCalendar(cfg.Billing.HolidayRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to load holiday table: %w", err)
	}
	manager := catalog.NewManager(backend)

	return &app{
		cfg:      cfg,
		calendar: cal,
		catalog:  manager,
		engine: &invoice.Engine{
			Calendar: cal,
			Catalog:  manager,
			TaxRate:  cfg.Billing.TaxRate,
			Travel:   cfg.Billing.TravelBreakdown,
		},
		numbers: invoice.NumberGenerator{Store: backend},
		log:     log,
		now:     time.Now,
	}, nil
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "invoicer",
		Short: "NDIS support invoice calculator",
		Long: `Calculate support invoices from a service period and a work schedule,
priced against the service catalog and the regional public holiday table.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newCalculateCmd(a),
		newValidateCmd(a),
		newCatalogCmd(a),
		newHolidaysCmd(a),
	)

	return rootCmd
}
