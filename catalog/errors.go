package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCatalogValidation is returned when a mutation would leave the
	// catalog with an invalid entry. The previous catalog stays in force.
	ErrCatalogValidation = errors.New("catalog validation failed")

	// ErrEntryNotFound is returned by Update and Delete for an unknown ID.
	ErrEntryNotFound = errors.New("catalog entry not found")

	// ErrLoad wraps any failure to obtain a catalog snapshot. Loads are not
	// retried; the caller decides.
	ErrLoad = errors.New("failed to load catalog")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// Violation names one offending field of one entry.
type Violation struct {
	EntryID string `json:"entry_id"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Code != "" {
		return fmt.Sprintf("%s (%s): %s %s", v.EntryID, v.Code, v.Field, v.Message)
	}
	return fmt.Sprintf("%s: %s %s", v.EntryID, v.Field, v.Message)
}

// ValidationError lists every violation found in a single pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "catalog validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrCatalogValidation }

// NotFoundError carries the missing entry ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("catalog entry not found: %s", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrEntryNotFound }

// =============================================================================
// VALIDATION PASS
// =============================================================================

func validate(entries []Entry) error {
	type key struct {
		category Category
		code     string
	}
	var (
		violations []Violation
		seen       = make(map[key]string, len(entries))
		ids        = make(map[string]bool, len(entries))
	)
	add := func(e Entry, field, msg string) {
		violations = append(violations, Violation{EntryID: e.ID, Code: e.Code, Field: field, Message: msg})
	}

	for _, e := range entries {
		if !e.Category.Valid() {
			add(e, "category", fmt.Sprintf("unknown category %q", e.Category))
		}
		if strings.TrimSpace(e.Code) == "" {
			add(e, "code", "must not be empty")
		}
		if strings.TrimSpace(e.Description) == "" {
			add(e, "description", "must not be empty")
		}
		if e.Rate.IsNegative() {
			add(e, "rate", "must not be negative")
		}
		if ids[e.ID] {
			add(e, "id", "duplicates another entry")
		}
		ids[e.ID] = true

		if strings.TrimSpace(e.Code) == "" {
			continue
		}
		k := key{category: e.Category, code: e.Code}
		if other, dup := seen[k]; dup {
			add(e, "code", fmt.Sprintf("duplicates entry %s in category %s", other, e.Category))
			continue
		}
		seen[k] = e.ID
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
