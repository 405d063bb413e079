package mapping

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/arthrod/refaudit/internal/symbol"
)

// document is the on-disk JSON shape:
//
//	{"found": [["Name", "lib/file.ts", 12], ...], "not_found": ["Other", ...]}
type document struct {
	Found    []Entry  `json:"found"`
	NotFound []string `json:"not_found"`
}

// MarshalJSON encodes an entry as a [name, file, line] tuple.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Name, e.Location.File, e.Location.Line})
}

// UnmarshalJSON decodes a [name, file, line] tuple.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("mapping entry must be an array: %w", err)
	}
	if len(tuple) != 3 {
		return fmt.Errorf("mapping entry must have 3 elements, got %d", len(tuple))
	}

	var out Entry
	if err := json.Unmarshal(tuple[0], &out.Name); err != nil {
		return fmt.Errorf("mapping entry name: %w", err)
	}
	var loc symbol.Location
	if err := json.Unmarshal(tuple[1], &loc.File); err != nil {
		return fmt.Errorf("mapping entry file for %s: %w", out.Name, err)
	}
	if err := json.Unmarshal(tuple[2], &loc.Line); err != nil {
		return fmt.Errorf("mapping entry line for %s: %w", out.Name, err)
	}
	out.Location = loc

	*e = out
	return nil
}

func persistJSON(path string, store *Store) error {
	doc := document{
		Found:    store.Found,
		NotFound: store.NotFound,
	}
	if doc.Found == nil {
		doc.Found = []Entry{}
	}
	if doc.NotFound == nil {
		doc.NotFound = []string{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode mapping: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write mapping: %w", err)
	}
	return nil
}

func loadJSON(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode mapping %s: %w", path, err)
	}

	store := NewStore()
	if doc.Found != nil {
		store.Found = doc.Found
	}
	if doc.NotFound != nil {
		store.NotFound = doc.NotFound
	}
	return store, nil
}
