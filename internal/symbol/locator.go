package symbol

import (
	"fmt"
	"path/filepath"
)

// Location identifies where a declaration begins: a file path and a
// 1-based line number.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// String renders the location as "file:line".
func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Locator finds symbol declarations with a linear, un-indexed scan of
// every eligible file. Nothing is cached: each call re-reads from disk.
type Locator struct {
	discovery *FileDiscovery
}

// NewLocator creates a locator over the files selected by discovery.
func NewLocator(discovery *FileDiscovery) *Locator {
	return &Locator{discovery: discovery}
}

// Locate returns the first declaration of name in traversal order, or
// false when no line in any eligible file matches. Unreadable and binary
// files are skipped silently; a missing search root yields not-found.
func (l *Locator) Locate(name string) (Location, bool) {
	m := NewMatcher(name)

	var found Location
	var ok bool
	_ = l.discovery.Walk(func(path string) error {
		if line, hit := firstMatch(m, path); hit {
			found = Location{File: filepath.ToSlash(path), Line: line}
			ok = true
			return errStopWalk
		}
		return nil
	})

	return found, ok
}

// LocateAll returns the first declaration of name in every eligible file,
// in traversal order. More than one result means the name is ambiguous;
// Locate would have picked the first.
func (l *Locator) LocateAll(name string) []Location {
	m := NewMatcher(name)

	var all []Location
	_ = l.discovery.Walk(func(path string) error {
		if line, hit := firstMatch(m, path); hit {
			all = append(all, Location{File: filepath.ToSlash(path), Line: line})
		}
		return nil
	})

	return all
}

// firstMatch scans path top-to-bottom and returns the 1-based line number of
// the first line matching any of m's patterns.
func firstMatch(m *Matcher, path string) (int, bool) {
	lines, ok := readLines(path)
	if !ok {
		return 0, false
	}
	for i, line := range lines {
		if _, hit := m.Match(line); hit {
			return i + 1, true
		}
	}
	return 0, false
}
