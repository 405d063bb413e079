package filediff

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// DefaultMarkerWindow is how many leading bytes are searched for a
// generated-file marker.
const DefaultMarkerWindow = 100

// Status describes what happened to one legacy file.
type Status string

const (
	StatusDiffed    Status = "diffed"    // artifact written, files differ
	StatusIdentical Status = "identical" // artifact written, files match
	StatusNoTarget  Status = "no_target" // no counterpart in the current tree
	StatusFailed    Status = "failed"    // diff tool failed or artifact not written
)

// Stats summarizes a unified diff.
type Stats struct {
	Hunks   int
	Added   int32
	Changed int32
	Deleted int32
}

// Pair is the outcome for one legacy file.
type Pair struct {
	LegacyPath   string
	TargetPath   string
	ArtifactPath string
	Status       Status
	Stats        Stats
	Err          error
}

// Report aggregates one diff pass.
type Report struct {
	Pairs   []Pair
	Skipped []string // excluded or generated legacy files
}

// Count returns the number of pairs with the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, p := range r.Pairs {
		if p.Status == status {
			n++
		}
	}
	return n
}

// Failures returns the pairs that could not be diffed.
func (r *Report) Failures() []Pair {
	var out []Pair
	for _, p := range r.Pairs {
		if p.Status == StatusFailed {
			out = append(out, p)
		}
	}
	return out
}

// ProgressReporter receives per-file notifications from Run.
type ProgressReporter interface {
	OnPairCompared(pair Pair)
}

// NoOpProgressReporter discards all notifications.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnPairCompared(Pair) {}

// Options configures a diff pass.
type Options struct {
	LegacyRoot       string
	CurrentRoot      string
	OutputDir        string
	Separator        string
	Exclude          []string // file base names never diffed
	SkipDirs         []string // directory base names never entered
	GeneratedMarkers []string
	MarkerWindow     int
	TargetExtensions []string // tried in order before the exact relative path
	Progress         ProgressReporter
}

// Runner pairs legacy files with current files and diffs them.
type Runner struct {
	differ Differ
	opts   Options
}

// NewRunner creates a runner with defaults applied to unset options.
func NewRunner(differ Differ, opts Options) *Runner {
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	if opts.MarkerWindow <= 0 {
		opts.MarkerWindow = DefaultMarkerWindow
	}
	if opts.Progress == nil {
		opts.Progress = NoOpProgressReporter{}
	}
	return &Runner{differ: differ, opts: opts}
}

// Run walks the legacy tree and diffs every eligible file. Per-file
// failures are recorded in the report and never stop the pass; only a
// missing legacy root, an unwritable output directory or cancellation
// return an error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	info, err := os.Stat(r.opts.LegacyRoot)
	if err != nil {
		return nil, fmt.Errorf("legacy root %s: %w", r.opts.LegacyRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("legacy root %s is not a directory", r.opts.LegacyRoot)
	}
	if err := os.MkdirAll(r.opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create diff output directory: %w", err)
	}

	report := &Report{}
	err = filepath.WalkDir(r.opts.LegacyRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == r.opts.LegacyRoot {
				return walkErr
			}
			// Unreadable entries are skipped.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != r.opts.LegacyRoot && slices.Contains(r.opts.SkipDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if slices.Contains(r.opts.Exclude, d.Name()) || r.isGenerated(path) {
			report.Skipped = append(report.Skipped, filepath.ToSlash(path))
			return nil
		}

		pair := r.comparePair(ctx, path)
		report.Pairs = append(report.Pairs, pair)
		r.opts.Progress.OnPairCompared(pair)
		return nil
	})
	if err != nil {
		return report, err
	}
	return report, nil
}

func (r *Runner) comparePair(ctx context.Context, legacyPath string) Pair {
	pair := Pair{LegacyPath: filepath.ToSlash(legacyPath)}

	target, ok := r.findTarget(legacyPath)
	if !ok {
		pair.Status = StatusNoTarget
		return pair
	}
	pair.TargetPath = filepath.ToSlash(target)

	targetRel, err := filepath.Rel(r.opts.CurrentRoot, target)
	if err != nil {
		targetRel = target
	}
	name := ArtifactName(filepath.ToSlash(legacyPath), filepath.ToSlash(targetRel), r.opts.Separator)
	pair.ArtifactPath = filepath.Join(r.opts.OutputDir, name)

	out, err := r.differ.Diff(ctx, legacyPath, target)
	if err != nil {
		pair.Status = StatusFailed
		pair.Err = err
		return pair
	}
	if out.ExitCode > 1 {
		pair.Status = StatusFailed
		pair.Err = fmt.Errorf("diff exited with status %d: %s", out.ExitCode, strings.TrimSpace(string(out.Stderr)))
		return pair
	}

	if err := os.WriteFile(pair.ArtifactPath, out.Stdout, 0644); err != nil {
		pair.Status = StatusFailed
		pair.Err = fmt.Errorf("failed to write diff artifact: %w", err)
		return pair
	}

	if out.ExitCode == 0 {
		pair.Status = StatusIdentical
		return pair
	}
	pair.Status = StatusDiffed
	pair.Stats = ParseStats(out.Stdout)
	return pair
}

// findTarget resolves the current-tree counterpart of a legacy file. The
// relative path with its extension replaced by each target extension is
// tried first, then the exact relative path.
func (r *Runner) findTarget(legacyPath string) (string, bool) {
	rel, err := filepath.Rel(r.opts.LegacyRoot, legacyPath)
	if err != nil {
		return "", false
	}
	base := strings.TrimSuffix(rel, filepath.Ext(rel))

	candidates := make([]string, 0, len(r.opts.TargetExtensions)+1)
	for _, ext := range r.opts.TargetExtensions {
		candidates = append(candidates, base+ext)
	}
	candidates = append(candidates, rel)

	for _, c := range candidates {
		path := filepath.Join(r.opts.CurrentRoot, c)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// isGenerated reports whether a generated-file marker appears within the
// leading marker window.
func (r *Runner) isGenerated(path string) bool {
	if len(r.opts.GeneratedMarkers) == 0 {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, r.opts.MarkerWindow)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false
	}
	head = head[:n]
	for _, marker := range r.opts.GeneratedMarkers {
		if marker != "" && bytes.Contains(head, []byte(marker)) {
			return true
		}
	}
	return false
}

// ParseStats summarizes unified diff output. Output that does not parse
// yields zero stats; the artifact itself is still authoritative.
func ParseStats(unified []byte) Stats {
	if len(bytes.TrimSpace(unified)) == 0 {
		return Stats{}
	}
	fd, err := diff.ParseFileDiff(unified)
	if err != nil {
		return Stats{}
	}
	st := fd.Stat()
	return Stats{
		Hunks:   len(fd.Hunks),
		Added:   st.Added,
		Changed: st.Changed,
		Deleted: st.Deleted,
	}
}

// Clean removes earlier diff artifacts from dir: regular files whose name
// contains separator. Other files are left alone.
func Clean(dir, separator string) ([]string, error) {
	if separator == "" {
		separator = DefaultSeparator
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var removed []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.Contains(e.Name(), separator) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed = append(removed, e.Name())
	}
	return removed, nil
}
