/*
main.go - Command-line invoicer

PURPOSE:
  Runs the same engine as the HTTP server from a terminal: calculate an
  invoice (table, JSON or PDF), re-validate a saved invoice, administer
  the service catalog and list public holidays.

USAGE:
  invoicer calculate --start 2025-01-01 --end 2025-01-07 \
      --client "Jane Citizen" --ndis 430000000 --daytime 8 --travel-km 27.5
  invoicer calculate ... --override 2025-01-03=4,2,0,40 --exclude 2025-01-05
  invoicer calculate ... --holiday "2025-01-06=Community Day" --pdf out/
  invoicer validate invoice.json
  invoicer catalog list --category weekday
  invoicer catalog export > services.json
  invoicer catalog import services.json
  invoicer holidays --year 2026

CONFIGURATION:
  Same environment and .env file as cmd/server (see config/config.go).
  Logs go to stderr at warn level unless LOG_LEVEL says otherwise.

SEE ALSO:
  - root.go: command tree
  - cmd/server: the HTTP front end
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/brightsupport/invoice-engine/config"
	"github.com/brightsupport/invoice-engine/logger"
	"github.com/brightsupport/invoice-engine/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.App.LogLevel
	if level == "info" {
		level = "warn"
	}
	log := logger.New(logger.Config{Env: "development", Level: level, Out: os.Stderr})

	backend, err := store.Open(cfg.DB.Driver, cfg.DB.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	a, err := newApp(cfg, backend, log)
	if err != nil {
		return err
	}

	return newRootCmd(a).ExecuteContext(context.Background())
}
