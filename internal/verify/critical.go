package verify

import (
	"os"

	"github.com/arthrod/refaudit/internal/snapshot"
)

// CriticalResult is the targeted check of one high-value symbol.
type CriticalResult struct {
	Discrepancy
	// Found is true when a snapshot exists for the symbol.
	Found bool
	// Flagged is true when Found and Delta exceeds the critical threshold.
	Flagged bool
}

// Status renders Found as FOUND or NOT FOUND.
func (r CriticalResult) Status() string {
	if r.Found {
		return "FOUND"
	}
	return "NOT FOUND"
}

// CriticalReport is the outcome of the critical-symbol pass.
type CriticalReport struct {
	// Results keeps the order of the requested names; names without a
	// baseline are omitted.
	Results   []CriticalResult
	Threshold float64
}

// FoundCount returns how many results have a snapshot.
func (r *CriticalReport) FoundCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Found {
			n++
		}
	}
	return n
}

// Flagged returns the results over threshold in report order.
func (r *CriticalReport) Flagged() []CriticalResult {
	var out []CriticalResult
	for _, res := range r.Results {
		if res.Flagged {
			out = append(out, res)
		}
	}
	return out
}

// CheckCritical runs the targeted pass over names. A missing snapshot
// counts as size 0, so its delta is 100%, but only found symbols are
// flagged.
func CheckCritical(baselineDir, snapshotDir string, naming snapshot.Naming, names []string, threshold float64) *CriticalReport {
	report := &CriticalReport{Threshold: threshold}

	for _, name := range names {
		baseInfo, err := os.Stat(naming.BaselinePath(baselineDir, name))
		if err != nil {
			continue
		}

		snapPath := naming.SnapshotPath(snapshotDir, name)
		res := CriticalResult{
			Discrepancy: Discrepancy{
				Name:         name,
				BaselineSize: baseInfo.Size(),
			},
		}
		if snapInfo, err := os.Stat(snapPath); err == nil {
			res.Found = true
			res.CurrentSize = snapInfo.Size()
			res.Location, _ = snapshot.ReadProvenance(snapPath)
		}
		res.Delta = SizeDelta(res.BaselineSize, res.CurrentSize)
		res.Flagged = res.Found && Exceeds(res.Delta, threshold)
		if res.Flagged {
			res.Similarity = pairSimilarity(naming.BaselinePath(baselineDir, name), snapPath)
		}

		report.Results = append(report.Results, res)
	}

	return report
}
