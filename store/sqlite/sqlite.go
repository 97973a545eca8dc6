/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists the user-edited service catalog and the per-day invoice number
  counters. The same schema runs on a local SQLite file (driver "sqlite3")
  or a libSQL/Turso database (driver "libsql").

INTERFACES IMPLEMENTED:
  catalog.Store:         Catalog override (load, atomic replace, clear)
  invoice.SequenceStore: Per-prefix invoice counters

KEY TABLES:
  catalog_override:  One row when an override exists, none otherwise.
                     Lets an empty override differ from "no override".
  catalog_entries:   The override list; position keeps list order, which
                     matters for "first active entry" resolution.
  invoice_sequences: Last issued counter per INV-YYYY-MMDD prefix.

ATOMIC REPLACE:
  SaveOverride deletes and re-inserts the whole list inside one database
  transaction. A failed save leaves the previous override intact.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of the database's own locking.
  In-memory databases are pinned to a single connection, since each new
  connection to ":memory:" would see an empty database.

WAL MODE:
  Local files are opened with WAL (Write-Ahead Logging).

USAGE:
  store, err := sqlite.New("./data/invoices.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  manager := catalog.NewManager(store)

SEE ALSO:
  - catalog/store.go: catalog.Store contract
  - invoice/number.go: invoice.SequenceStore contract
  - store/memory: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"github.com/brightsupport/invoice-engine/catalog"
	"github.com/brightsupport/invoice-engine/invoice"
)

const (
	DriverSQLite = "sqlite3"
	DriverLibSQL = "libsql"
)

// Store implements the storage interfaces over database/sql.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ catalog.Store         = (*Store)(nil)
	_ invoice.SequenceStore = (*Store)(nil)
)

// New opens a local SQLite database. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	return Open(DriverSQLite, dbPath)
}

// Open connects with driver ("sqlite3" or "libsql") and migrates the schema.
func Open(driver, dsn string) (*Store, error) {
	inMemory := strings.Contains(dsn, ":memory:")
	if driver == DriverSQLite && !inMemory && !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on&_journal_mode=WAL"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if inMemory {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection, for health endpoints.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS catalog_override (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			saved_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS catalog_entries (
			position INTEGER PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL,
			code TEXT NOT NULL,
			description TEXT NOT NULL,
			rate TEXT NOT NULL,
			active INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_catalog_entries_category
			ON catalog_entries(category, position)`,
		`CREATE TABLE IF NOT EXISTS invoice_sequences (
			prefix TEXT PRIMARY KEY,
			last_value INTEGER NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// CATALOG STORE (catalog.Store interface)
// =============================================================================

// LoadOverride returns the stored list in position order.
func (s *Store) LoadOverride(ctx context.Context) ([]catalog.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM catalog_override").Scan(&count); err != nil {
		return nil, false, fmt.Errorf("failed to read catalog override: %w", err)
	}
	if count == 0 {
		return nil, false, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, code, description, rate, active
		FROM catalog_entries
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query catalog entries: %w", err)
	}
	defer rows.Close()

	entries := []catalog.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, false, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read catalog entries: %w", err)
	}
	return entries, true, nil
}

func scanEntry(rows *sql.Rows) (catalog.Entry, error) {
	var (
		e        catalog.Entry
		category string
		rate     string
		active   int
	)
	if err := rows.Scan(&e.ID, &category, &e.Code, &e.Description, &rate, &active); err != nil {
		return catalog.Entry{}, fmt.Errorf("failed to scan catalog entry: %w", err)
	}
	parsed, err := decimal.NewFromString(rate)
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("invalid stored rate %q for %s: %w", rate, e.ID, err)
	}
	e.Category = catalog.Category(category)
	e.Rate = parsed
	e.Active = active != 0
	return e, nil
}

// SaveOverride replaces the stored list atomically.
func (s *Store) SaveOverride(ctx context.Context, entries []catalog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM catalog_entries"); err != nil {
		return fmt.Errorf("failed to clear catalog entries: %w", err)
	}

	insert := `
		INSERT INTO catalog_entries (position, id, category, code, description, rate, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for i, e := range entries {
		_, err := sqlTx.ExecContext(ctx, insert,
			i,
			e.ID,
			string(e.Category),
			e.Code,
			e.Description,
			e.Rate.String(),
			boolToInt(e.Active),
		)
		if err != nil {
			return fmt.Errorf("failed to save catalog entry %s: %w", e.ID, err)
		}
	}

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO catalog_override (id, saved_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at
	`, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to mark catalog override: %w", err)
	}

	return sqlTx.Commit()
}

// ClearOverride removes the stored list.
func (s *Store) ClearOverride(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM catalog_entries"); err != nil {
		return fmt.Errorf("failed to clear catalog entries: %w", err)
	}
	if _, err := sqlTx.ExecContext(ctx, "DELETE FROM catalog_override"); err != nil {
		return fmt.Errorf("failed to clear catalog override: %w", err)
	}
	return sqlTx.Commit()
}

// =============================================================================
// INVOICE SEQUENCES (invoice.SequenceStore interface)
// =============================================================================

// NextSequence increments and returns the counter for prefix, starting at 1.
func (s *Store) NextSequence(ctx context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO invoice_sequences (prefix, last_value) VALUES (?, 1)
		ON CONFLICT(prefix) DO UPDATE SET last_value = last_value + 1
	`, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", prefix, err)
	}

	var value int
	if err := sqlTx.QueryRowContext(ctx,
		"SELECT last_value FROM invoice_sequences WHERE prefix = ?", prefix,
	).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to read sequence %s: %w", prefix, err)
	}

	if err := sqlTx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence %s: %w", prefix, err)
	}
	return value, nil
}

// Helper functions

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
