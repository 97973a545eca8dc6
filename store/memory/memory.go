// Package memory provides in-process implementations of the catalog and
// invoice-number stores, for tests and local development.
package memory

import (
	"context"
	"sync"

	"github.com/brightsupport/invoice-engine/catalog"
	"github.com/brightsupport/invoice-engine/invoice"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	override  []catalog.Entry
	hasCustom bool
	sequences map[string]int
}

var (
	_ catalog.Store         = (*Store)(nil)
	_ invoice.SequenceStore = (*Store)(nil)
)

func New() *Store {
	return &Store{sequences: make(map[string]int)}
}

// LoadOverride returns a copy of the stored catalog, if any.
func (s *Store) LoadOverride(_ context.Context) ([]catalog.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasCustom {
		return nil, false, nil
	}
	out := make([]catalog.Entry, len(s.override))
	copy(out, s.override)
	return out, true, nil
}

func (s *Store) SaveOverride(_ context.Context, entries []catalog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.override = make([]catalog.Entry, len(entries))
	copy(s.override, entries)
	s.hasCustom = true
	return nil
}

func (s *Store) ClearOverride(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.override = nil
	s.hasCustom = false
	return nil
}

// NextSequence returns 1, 2, 3... per prefix.
func (s *Store) NextSequence(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequences[prefix]++
	return s.sequences[prefix], nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }
