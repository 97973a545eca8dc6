/*
json.go - JSON wire form of catalog entries

PURPOSE:
  The catalog travels as a plain JSON array, the same shape for the
  embedded default dataset, the import/export files and the HTTP API:

    [
      {
        "id": "weekday-daytime",
        "category": "weekday",
        "code": "04_104_0125_6_1",
        "description": "Access Community Social and Rec Activ - Standard - Weekday Daytime",
        "rate": 67.56,
        "active": true
      }
    ]

  Rates are carried as JSON numbers and converted through their decimal
  text, so 67.56 stays 67.56.

DEFAULTS:
  - missing "active" means true
  - missing "id" gets a generated one when the list becomes a Catalog
  - missing "rate" means 0

SEE ALSO:
  - catalog.go: validation runs when the parsed list becomes a Catalog
*/
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// EntryJSON is the JSON representation of an entry.
type EntryJSON struct {
	ID          string      `json:"id,omitempty"`
	Category    string      `json:"category"`
	Code        string      `json:"code"`
	Description string      `json:"description"`
	Rate        json.Number `json:"rate"`
	Active      *bool       `json:"active,omitempty"`
}

// ToJSON converts an entry to its wire form.
func ToJSON(e Entry) EntryJSON {
	active := e.Active
	return EntryJSON{
		ID:          e.ID,
		Category:    string(e.Category),
		Code:        e.Code,
		Description: e.Description,
		Rate:        json.Number(e.Rate.String()),
		Active:      &active,
	}
}

// FromJSON converts the wire form to an entry. Field-level rules are left to
// validation; only a malformed rate fails here.
func FromJSON(ej EntryJSON) (Entry, error) {
	rate := decimal.Zero
	if ej.Rate != "" {
		var err error
		rate, err = decimal.NewFromString(ej.Rate.String())
		if err != nil {
			return Entry{}, fmt.Errorf("invalid rate %q for code %q: %w", ej.Rate, ej.Code, err)
		}
	}
	active := true
	if ej.Active != nil {
		active = *ej.Active
	}
	return Entry{
		ID:          ej.ID,
		Category:    Category(ej.Category),
		Code:        ej.Code,
		Description: ej.Description,
		Rate:        rate,
		Active:      active,
	}, nil
}

// =============================================================================
// PARSING
// =============================================================================

// ParseEntries decodes a JSON array of entries.
func ParseEntries(data []byte) ([]Entry, error) {
	return DecodeEntries(bytes.NewReader(data))
}

// DecodeEntries decodes a JSON array of entries from r.
func DecodeEntries(r io.Reader) ([]Entry, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []EntryJSON
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, ej := range raw {
		e, err := FromJSON(ej)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// =============================================================================
// EXPORT
// =============================================================================

// EntriesJSON converts a list of entries to wire form.
func EntriesJSON(entries []Entry) []EntryJSON {
	out := make([]EntryJSON, len(entries))
	for i, e := range entries {
		out[i] = ToJSON(e)
	}
	return out
}

// Export writes the catalog as an indented JSON array, suitable for Import.
func (c *Catalog) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(EntriesJSON(c.Entries())); err != nil {
		return fmt.Errorf("failed to export catalog: %w", err)
	}
	return nil
}

// ExportFilename names an exported catalog file.
func ExportFilename(now time.Time) string {
	return "services-catalog-" + now.UTC().Format("20060102T150405Z") + ".json"
}
