// Package snapshot re-extracts every resolved symbol from the current tree
// into a per-symbol file next to its baseline, and lists unresolved symbols
// in a single manifest.
package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/arthrod/refaudit/internal/mapping"
	"github.com/arthrod/refaudit/internal/symbol"
)

// ManifestHeader is the first line of the not-found manifest.
const ManifestHeader = "// Functions not found in current codebase:"

// DefaultCadence is how many snapshots are written between progress reports.
const DefaultCadence = 50

// Extractor is the part of symbol.Heuristic the generator needs.
type Extractor interface {
	Extract(loc symbol.Location) (symbol.Body, bool)
}

// ProgressReporter receives generation progress.
type ProgressReporter interface {
	OnGenerateStart(total int)
	// OnGenerateProgress is called every cadence snapshots with the running count.
	OnGenerateProgress(generated int)
}

// NoOpProgressReporter is a progress reporter that does nothing.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnGenerateStart(total int)        {}
func (NoOpProgressReporter) OnGenerateProgress(generated int) {}

// Options configures a Generator.
type Options struct {
	OutputDir string
	Naming    Naming
	// Cadence is the progress report interval; zero selects DefaultCadence.
	Cadence int
	// PruneStale removes snapshots of symbols that are no longer resolved.
	// Only files following the snapshot naming convention are touched.
	PruneStale bool
	Progress   ProgressReporter
}

// Result summarizes one generation run.
type Result struct {
	// Generated counts snapshots whose content was produced, whether or
	// not the file on disk changed.
	Generated int
	// Unchanged counts snapshots already byte-identical on disk.
	Unchanged int
	// Failed lists found symbols whose body could not be extracted.
	Failed []string
	// Incomplete lists symbols whose body hit the scan window or EOF.
	Incomplete []string
	// Pruned lists stale snapshot files removed.
	Pruned       []string
	NotFound     int
	ManifestPath string
}

// Generator writes snapshots for a mapping store.
type Generator struct {
	extractor Extractor
	opts      Options
}

// NewGenerator creates a generator.
func NewGenerator(extractor Extractor, opts Options) *Generator {
	if opts.Cadence <= 0 {
		opts.Cadence = DefaultCadence
	}
	if opts.Progress == nil {
		opts.Progress = NoOpProgressReporter{}
	}
	return &Generator{extractor: extractor, opts: opts}
}

// Generate extracts every found entry at its recorded location and writes
// the snapshot, then writes the manifest for every not-found entry. Prior
// outputs are overwritten. Entries whose body cannot be extracted are
// skipped and listed in Result.Failed.
func (g *Generator) Generate(ctx context.Context, store *mapping.Store) (*Result, error) {
	if err := os.MkdirAll(g.opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	result := &Result{}
	g.opts.Progress.OnGenerateStart(len(store.Found))

	for _, entry := range store.Found {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, ok := g.extractor.Extract(entry.Location)
		if !ok {
			result.Failed = append(result.Failed, entry.Name)
			continue
		}
		if !body.Complete {
			result.Incomplete = append(result.Incomplete, entry.Name)
		}

		path := g.opts.Naming.SnapshotPath(g.opts.OutputDir, entry.Name)
		changed, err := writeIfChanged(path, RenderSnapshot(body))
		if err != nil {
			return nil, err
		}
		if !changed {
			result.Unchanged++
		}

		result.Generated++
		if result.Generated%g.opts.Cadence == 0 {
			g.opts.Progress.OnGenerateProgress(result.Generated)
		}
	}

	manifestPath := filepath.Join(g.opts.OutputDir, g.opts.Naming.ManifestFile())
	if _, err := writeIfChanged(manifestPath, RenderManifest(store.NotFound)); err != nil {
		return nil, err
	}
	result.ManifestPath = manifestPath
	result.NotFound = len(store.NotFound)

	if g.opts.PruneStale {
		pruned, err := g.pruneStale(store)
		if err != nil {
			return nil, err
		}
		result.Pruned = pruned
	}

	return result, nil
}

// pruneStale removes snapshot files whose symbol has no found entry.
func (g *Generator) pruneStale(store *mapping.Store) ([]string, error) {
	keep := make(map[string]bool, len(store.Found))
	for _, e := range store.Found {
		keep[g.opts.Naming.SnapshotFile(e.Name)] = true
	}
	return removeMatching(g.opts.OutputDir, func(name string) bool {
		return g.opts.Naming.IsSnapshot(name) && !keep[name]
	})
}

// RemoveGenerated deletes every snapshot and the manifest from dir.
// Baseline artifacts are left alone. A missing directory removes nothing.
func RemoveGenerated(dir string, naming Naming) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	manifest := naming.ManifestFile()
	return removeMatching(dir, func(name string) bool {
		return name == manifest || naming.IsSnapshot(name)
	})
}

func removeMatching(dir string, match func(name string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var removed []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !match(name) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}

// RenderSnapshot formats a body as a snapshot: one "// file:line"
// provenance line, the body text, and a trailing newline.
func RenderSnapshot(body symbol.Body) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// %s\n", body.Location)
	buf.WriteString(body.Text)
	buf.WriteByte('\n')
	return buf.Bytes()
}

// RenderManifest formats the not-found manifest.
func RenderManifest(names []string) []byte {
	var buf bytes.Buffer
	buf.WriteString(ManifestHeader)
	buf.WriteByte('\n')
	for _, name := range names {
		fmt.Fprintf(&buf, "// - %s\n", name)
	}
	return buf.Bytes()
}

// ReadProvenance returns the "file:line" recorded on a snapshot's first line.
func ReadProvenance(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	first, _, _ := strings.Cut(string(data), "\n")
	loc, ok := strings.CutPrefix(strings.TrimSpace(first), "// ")
	return loc, ok
}

// writeIfChanged writes data to path unless the file already holds exactly
// data. It reports whether the file was (re)written.
func writeIfChanged(path string, data []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil {
		if len(existing) == len(data) && xxhash.Sum64(existing) == xxhash.Sum64(data) {
			return false, nil
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
