/*
store.go - Catalog loading and persistence capabilities

PURPOSE:
  The engine never reads a catalog from ambient state. It depends on a
  Loader, which yields one immutable snapshot per calculation. Persistence
  is a separate Store capability that only knows about an optional
  "override" list replacing the embedded defaults.

KEY INTERFACES:
  Loader: Load(ctx) -> *Catalog   (what the invoice engine needs)
  Store:  override read/write     (what a persistence backend provides)

MANAGER:
  Manager is the single writer. It implements Loader and serializes
  Add/Update/Delete/Import/Reset so two edits never interleave between
  "read current" and "save next". Every mutation validates before saving;
  a rejected mutation writes nothing.

IMPLEMENTATIONS:
  - store/memory: in-process, for tests and development
  - store/sqlite: SQLite or libSQL

SEE ALSO:
  - catalog.go: snapshot and mutation semantics
  - defaults.go: embedded dataset used when no override exists
*/
package catalog

import (
	"context"
	"fmt"
	"sync"
)

// =============================================================================
// INTERFACES
// =============================================================================

// Loader yields a catalog snapshot. A failed load surfaces once; it is not
// retried.
type Loader interface {
	Load(ctx context.Context) (*Catalog, error)
}

// Store persists the user-edited catalog that replaces the defaults.
type Store interface {
	// LoadOverride returns the stored list and whether one exists.
	LoadOverride(ctx context.Context) ([]Entry, bool, error)

	// SaveOverride atomically replaces the stored list.
	SaveOverride(ctx context.Context, entries []Entry) error

	// ClearOverride removes the stored list so defaults apply again.
	ClearOverride(ctx context.Context) error
}

// StaticLoader always yields the same snapshot.
type StaticLoader struct {
	Catalog *Catalog
}

func (l StaticLoader) Load(context.Context) (*Catalog, error) {
	if l.Catalog == nil {
		return nil, fmt.Errorf("%w: no catalog configured", ErrLoad)
	}
	return l.Catalog, nil
}

// =============================================================================
// MANAGER - Single writer over a Store
// =============================================================================

// Manager loads the override when present, else the defaults, and applies
// mutations one at a time.
type Manager struct {
	store    Store
	defaults func() (*Catalog, error)
	mu       sync.Mutex
}

var _ Loader = (*Manager)(nil)

// NewManager creates a manager over store with the embedded defaults.
func NewManager(store Store) *Manager {
	return &Manager{store: store, defaults: Default}
}

// NewManagerWithDefaults uses defaults instead of the embedded dataset.
func NewManagerWithDefaults(store Store, defaults *Catalog) *Manager {
	return &Manager{
		store:    store,
		defaults: func() (*Catalog, error) { return defaults, nil },
	}
}

// Load implements Loader.
func (m *Manager) Load(ctx context.Context) (*Catalog, error) {
	entries, ok, err := m.store.LoadOverride(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	if !ok {
		return m.defaults()
	}
	c, err := New(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: stored catalog: %v", ErrLoad, err)
	}
	return c, nil
}

// Add appends an entry and persists the result.
func (m *Manager) Add(ctx context.Context, e Entry) (*Catalog, error) {
	return m.apply(ctx, func(c *Catalog) (*Catalog, error) { return c.Add(e) })
}

// Update replaces the entry with e.ID and persists the result.
func (m *Manager) Update(ctx context.Context, e Entry) (*Catalog, error) {
	return m.apply(ctx, func(c *Catalog) (*Catalog, error) { return c.Update(e) })
}

// Delete removes the entry with id and persists the result.
func (m *Manager) Delete(ctx context.Context, id string) (*Catalog, error) {
	return m.apply(ctx, func(c *Catalog) (*Catalog, error) { return c.Delete(id) })
}

// Import replaces the whole catalog.
func (m *Manager) Import(ctx context.Context, entries []Entry) (*Catalog, error) {
	return m.apply(ctx, func(c *Catalog) (*Catalog, error) { return c.Import(entries) })
}

// Reset drops the override and returns the defaults.
func (m *Manager) Reset(ctx context.Context) (*Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.ClearOverride(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset catalog: %w", err)
	}
	return m.defaults()
}

func (m *Manager) apply(ctx context.Context, mutate func(*Catalog) (*Catalog, error)) (*Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}
	next, err := mutate(current)
	if err != nil {
		return nil, err
	}
	if err := m.store.SaveOverride(ctx, next.Entries()); err != nil {
		return nil, fmt.Errorf("failed to save catalog: %w", err)
	}
	return next, nil
}
