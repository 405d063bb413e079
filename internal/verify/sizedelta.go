// Package verify flags symbols whose freshly generated snapshot differs in
// size from its baseline by more than a threshold. All checks are advisory.
package verify

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/arthrod/refaudit/internal/snapshot"
)

const (
	// DefaultBulkThreshold is the percent delta flagged by the bulk pass.
	DefaultBulkThreshold = 30.0

	// DefaultCriticalThreshold is the percent delta flagged by the critical pass.
	DefaultCriticalThreshold = 50.0
)

// Discrepancy is a baseline/snapshot pair and how far apart their sizes are.
type Discrepancy struct {
	Name         string
	BaselineSize int64
	CurrentSize  int64
	// Delta is the relative size delta in percent.
	Delta float64
	// Location is the snapshot's provenance ("file:line"), when known.
	Location string
	// Similarity is the Levenshtein similarity (0..1) of baseline text and
	// snapshot body, computed for flagged pairs only.
	Similarity float64
}

// SizeDelta returns |current-baseline|/baseline in percent. A zero baseline
// yields 100 when current is non-zero and 0 otherwise.
func SizeDelta(baseline, current int64) float64 {
	if baseline == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return math.Abs(float64(current-baseline)) * 100 / float64(baseline)
}

// Exceeds reports whether delta should be flagged. The boundary is
// exclusive: a delta equal to threshold is not flagged.
func Exceeds(delta, threshold float64) bool {
	return delta > threshold
}

// SizeReport is the outcome of the bulk size-delta pass.
type SizeReport struct {
	// Checked counts symbols with both a baseline and a snapshot.
	Checked int
	// Flagged holds pairs over threshold, largest delta first.
	Flagged   []Discrepancy
	Threshold float64
}

// CheckSizes compares every baseline in baselineDir with its snapshot in
// snapshotDir. Symbols without a snapshot are not checked. Only a missing
// baseline directory is an error.
func CheckSizes(baselineDir, snapshotDir string, naming snapshot.Naming, threshold float64) (*SizeReport, error) {
	names, err := naming.SymbolNames(baselineDir)
	if err != nil {
		return nil, err
	}

	report := &SizeReport{Threshold: threshold, Flagged: []Discrepancy{}}
	for _, name := range names {
		snapPath := naming.SnapshotPath(snapshotDir, name)
		snapInfo, err := os.Stat(snapPath)
		if err != nil {
			continue
		}
		baseInfo, err := os.Stat(naming.BaselinePath(baselineDir, name))
		if err != nil {
			continue
		}

		report.Checked++
		delta := SizeDelta(baseInfo.Size(), snapInfo.Size())
		if !Exceeds(delta, threshold) {
			continue
		}

		d := Discrepancy{
			Name:         name,
			BaselineSize: baseInfo.Size(),
			CurrentSize:  snapInfo.Size(),
			Delta:        delta,
		}
		d.Location, _ = snapshot.ReadProvenance(snapPath)
		d.Similarity = pairSimilarity(naming.BaselinePath(baselineDir, name), snapPath)
		report.Flagged = append(report.Flagged, d)
	}

	SortByDelta(report.Flagged)
	return report, nil
}

// SortByDelta orders discrepancies by descending delta, then by name.
func SortByDelta(ds []Discrepancy) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Delta != ds[j].Delta {
			return ds[i].Delta > ds[j].Delta
		}
		return ds[i].Name < ds[j].Name
	})
}

// Similarity returns the normalized Levenshtein similarity of a and b.
// Two empty strings are identical.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return float64(score)
}

// pairSimilarity compares a baseline file with a snapshot body, ignoring the
// snapshot's provenance line. Unreadable files score 0.
func pairSimilarity(baselinePath, snapshotPath string) float64 {
	base, err := os.ReadFile(baselinePath)
	if err != nil {
		return 0
	}
	snap, err := os.ReadFile(snapshotPath)
	if err != nil {
		return 0
	}
	_, body, _ := strings.Cut(string(snap), "\n")
	return Similarity(strings.TrimSpace(string(base)), strings.TrimSpace(body))
}

// String renders a discrepancy as a one-line report entry.
func (d Discrepancy) String() string {
	return fmt.Sprintf("%s: %db → %db (%.1f%%)", d.Name, d.BaselineSize, d.CurrentSize, d.Delta)
}
