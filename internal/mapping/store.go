// Package mapping records, per symbol name, where the symbol's declaration
// lives in the refactored tree, or that it could not be found.
package mapping

import (
	"context"

	"github.com/arthrod/refaudit/internal/symbol"
)

// Entry is a resolved symbol and the location of its declaration.
type Entry struct {
	Name     string
	Location symbol.Location
}

// Store is the found/not-found partition over every symbol name of one run.
// Both lists keep the order names were submitted to Build.
type Store struct {
	Found    []Entry
	NotFound []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		Found:    []Entry{},
		NotFound: []string{},
	}
}

// Len returns the number of symbol names recorded.
func (s *Store) Len() int {
	return len(s.Found) + len(s.NotFound)
}

// Lookup returns the recorded location for name.
func (s *Store) Lookup(name string) (symbol.Location, bool) {
	for _, e := range s.Found {
		if e.Name == name {
			return e.Location, true
		}
	}
	return symbol.Location{}, false
}

// Locator is the part of symbol.Heuristic the builder needs.
type Locator interface {
	Locate(name string) (symbol.Location, bool)
}

// ProgressReporter receives one callback per symbol searched.
type ProgressReporter interface {
	OnSearchStart(total int)
	OnSymbolSearched(done, total int, name string, found bool)
}

// NoOpProgressReporter is a progress reporter that does nothing.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnSearchStart(total int)                                   {}
func (NoOpProgressReporter) OnSymbolSearched(done, total int, name string, found bool) {}

// Build locates every name and partitions the results. Names are processed
// in the order given; repeated names are recorded once. Build only fails
// when ctx is cancelled.
func Build(ctx context.Context, names []string, locator Locator, progress ProgressReporter) (*Store, error) {
	if progress == nil {
		progress = NoOpProgressReporter{}
	}

	unique := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		unique = append(unique, name)
	}

	store := NewStore()
	progress.OnSearchStart(len(unique))

	for i, name := range unique {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		loc, ok := locator.Locate(name)
		if ok {
			store.Found = append(store.Found, Entry{Name: name, Location: loc})
		} else {
			store.NotFound = append(store.NotFound, name)
		}
		progress.OnSymbolSearched(i+1, len(unique), name, ok)
	}

	return store, nil
}
