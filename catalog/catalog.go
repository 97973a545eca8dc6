/*
Package catalog holds the editable rate card: billable service codes and
their rates, grouped by billing category.

PURPOSE:
  The invoice engine prices hours against this table. A Catalog value is an
  immutable snapshot: every mutation (Add, Update, Delete, Import) validates
  the whole resulting list and returns a NEW Catalog, leaving the receiver
  untouched. A calculation takes one snapshot up front, so a concurrent edit
  can never change its result half way through.

RESOLUTION RULE:
  For a category, Resolve returns the first active entry in list order.
  With no active entry it falls back to the first entry regardless of the
  flag. With no entry at all it returns ok=false and the caller omits that
  line item.

VALIDATION (checked over the whole list on every mutation):
  - code not empty
  - description not empty
  - rate not negative
  - category known
  - (category, code) unique

SEE ALSO:
  - json.go: wire form, import and export
  - defaults.go: embedded default dataset
  - store.go: Loader/Store capabilities and the single-writer Manager
*/
package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CATEGORY
// =============================================================================

// Category is the rate family an entry is billed under. The three weekday
// categories match the weekday sub-buckets (daytime, evening, sleepover).
type Category string

const (
	Weekday          Category = "weekday"
	WeekdayEvening   Category = "weekdayEvening"
	WeekdaySleepover Category = "weekdaySleepover"
	Saturday         Category = "saturday"
	Sunday           Category = "sunday"
	PublicHoliday    Category = "publicHoliday"
	Travel           Category = "travel"
)

// Categories in rate-card order.
var Categories = []Category{
	Weekday, WeekdayEvening, WeekdaySleepover, Saturday, Sunday, PublicHoliday, Travel,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label is used as the fallback line-item description.
func (c Category) Label() string {
	switch c {
	case Weekday:
		return "Weekday"
	case WeekdayEvening:
		return "Weekday Evening"
	case WeekdaySleepover:
		return "Weekday Sleepover"
	case Saturday:
		return "Saturday"
	case Sunday:
		return "Sunday"
	case PublicHoliday:
		return "Public Holiday"
	case Travel:
		return "Travel"
	}
	return string(c)
}

// =============================================================================
// ENTRY
// =============================================================================

// Entry is one rate-card row. Rate is per hour, per sleepover unit or per km
// depending on the category.
type Entry struct {
	ID          string
	Category    Category
	Code        string
	Description string
	Rate        decimal.Decimal
	Active      bool
}

// NewEntryID returns a time-ordered identifier for a new entry.
func NewEntryID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// =============================================================================
// CATALOG - Immutable snapshot
// =============================================================================

// Catalog is an ordered, validated list of entries. The zero value is an
// empty catalog.
type Catalog struct {
	entries []Entry
}

// New validates entries and returns a snapshot holding a private copy.
// Entries without an ID are given one.
func New(entries []Entry) (*Catalog, error) {
	own := make([]Entry, len(entries))
	copy(own, entries)
	for i := range own {
		if own[i].ID == "" {
			own[i].ID = NewEntryID()
		}
	}
	if err := validate(own); err != nil {
		return nil, err
	}
	return &Catalog{entries: own}, nil
}

// Entries returns a copy of the list in order.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Resolve picks the entry used to price category. See the package comment.
func (c *Catalog) Resolve(category Category) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	var (
		first    Entry
		hasFirst bool
	)
	for _, e := range c.entries {
		if e.Category != category {
			continue
		}
		if e.Active {
			return e, true
		}
		if !hasFirst {
			first, hasFirst = e, true
		}
	}
	return first, hasFirst
}

// Find looks an entry up by ID.
func (c *Catalog) Find(id string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	for _, e := range c.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Filter returns entries of category (all categories when empty) whose code
// or description contains query, case-insensitively.
func (c *Catalog) Filter(category Category, query string) []Entry {
	if c == nil {
		return nil
	}
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Entry
	for _, e := range c.entries {
		if category != "" && e.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(e.Code), q) &&
			!strings.Contains(strings.ToLower(e.Description), q) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// =============================================================================
// MUTATIONS - Each returns a new snapshot or an error, never both
// =============================================================================

// Add appends e. A blank ID is generated.
func (c *Catalog) Add(e Entry) (*Catalog, error) {
	return New(append(c.Entries(), e))
}

// Update replaces the entry with e.ID.
func (c *Catalog) Update(e Entry) (*Catalog, error) {
	entries := c.Entries()
	for i := range entries {
		if entries[i].ID == e.ID {
			entries[i] = e
			return New(entries)
		}
	}
	return nil, &NotFoundError{ID: e.ID}
}

// Delete removes the entry with id.
func (c *Catalog) Delete(id string) (*Catalog, error) {
	entries := c.Entries()
	for i := range entries {
		if entries[i].ID == id {
			return New(append(entries[:i], entries[i+1:]...))
		}
	}
	return nil, &NotFoundError{ID: id}
}

// Import replaces the whole list. Nothing is merged.
func (c *Catalog) Import(entries []Entry) (*Catalog, error) {
	return New(entries)
}
