// Package store selects a persistence backend by driver name.
package store

import (
	"context"
	"fmt"

	"github.com/brightsupport/invoice-engine/catalog"
	"github.com/brightsupport/invoice-engine/invoice"
	"github.com/brightsupport/invoice-engine/store/memory"
	"github.com/brightsupport/invoice-engine/store/sqlite"
)

// DriverMemory keeps everything in process; nothing survives a restart.
const DriverMemory = "memory"

// Backend is everything the binaries need from a store.
type Backend interface {
	catalog.Store
	invoice.SequenceStore
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Backend = (*memory.Store)(nil)
	_ Backend = (*sqlite.Store)(nil)
)

// Open returns the backend for driver: "sqlite3" (file path or ":memory:"),
// "libsql" (libsql:// or https:// URL with authToken), or "memory".
func Open(driver, dsn string) (Backend, error) {
	switch driver {
	case DriverMemory:
		return memory.New(), nil
	case sqlite.DriverSQLite, sqlite.DriverLibSQL:
		s, err := sqlite.Open(driver, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q (want sqlite3, libsql or memory)", driver)
	}
}
