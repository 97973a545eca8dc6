package catalog

import (
	_ "embed"
	"fmt"
)

// defaultServices is the published rate card, updated by replacing the file.
//
//go:embed data/services.json
var defaultServices []byte

// Default returns the embedded rate card.
func Default() (*Catalog, error) {
	entries, err := ParseEntries(defaultServices)
	if err != nil {
		return nil, fmt.Errorf("%w: default dataset: %v", ErrLoad, err)
	}
	c, err := New(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: default dataset: %v", ErrLoad, err)
	}
	return c, nil
}
