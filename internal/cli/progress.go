package cli

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/arthrod/refaudit/internal/filediff"
)

// CLIProgressReporter reports pipeline progress on the console. On a
// terminal it draws progress bars; otherwise it logs a line every cadence
// items. It satisfies the progress interfaces of the mapping, snapshot and
// filediff packages.
type CLIProgressReporter struct {
	quiet     bool
	useBars   bool
	cadence   int
	startTime time.Time

	searchBar   *progressbar.ProgressBar
	generateBar *progressbar.ProgressBar

	totalSnapshots int
	generated      int
	comparedPairs  int
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool, cadence int) *CLIProgressReporter {
	if cadence <= 0 {
		cadence = 50
	}
	return &CLIProgressReporter{
		quiet:     quiet,
		useBars:   term.IsTerminal(int(os.Stdout.Fd())),
		cadence:   cadence,
		startTime: time.Now(),
	}
}

func newBar(total int, description, its string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(its),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (c *CLIProgressReporter) OnSearchStart(total int) {
	if c.quiet {
		return
	}
	log.Printf("Searching for %d symbols...\n", total)
	if c.useBars && total > 0 {
		c.searchBar = newBar(total, "Resolving symbols", "sym/s")
	}
}

func (c *CLIProgressReporter) OnSymbolSearched(done, total int, name string, found bool) {
	if c.quiet {
		return
	}
	if c.searchBar != nil {
		c.searchBar.Add(1)
		if done == total {
			c.searchBar.Finish()
			c.searchBar = nil
		}
		return
	}
	if done%c.cadence == 0 || done == total {
		log.Printf("Processed %d/%d symbols\n", done, total)
	}
}

func (c *CLIProgressReporter) OnGenerateStart(total int) {
	if c.quiet {
		return
	}
	c.totalSnapshots = total
	c.generated = 0
	if c.useBars && total > 0 {
		c.generateBar = newBar(total, "Writing snapshots", "files/s")
	}
}

// OnGenerateProgress is called every cadence snapshots by the generator.
func (c *CLIProgressReporter) OnGenerateProgress(generated int) {
	if c.quiet {
		return
	}
	if c.generateBar != nil {
		if delta := generated - c.generated; delta > 0 {
			c.generateBar.Add(delta)
		}
		c.generated = generated
		return
	}
	c.generated = generated
	log.Printf("Generated %d files\n", generated)
}

// FinishGenerate completes the snapshot bar once the generator returns;
// the generator only reports at cadence boundaries.
func (c *CLIProgressReporter) FinishGenerate() {
	if c.generateBar != nil {
		c.generateBar.Finish()
		c.generateBar = nil
	}
}

func (c *CLIProgressReporter) OnPairCompared(pair filediff.Pair) {
	c.comparedPairs++
	if c.quiet {
		return
	}
	switch pair.Status {
	case filediff.StatusNoTarget:
		if verbose {
			log.Printf("No target for %s\n", pair.LegacyPath)
		}
	case filediff.StatusFailed:
		log.Printf("✗ Error diffing %s: %v\n", pair.LegacyPath, pair.Err)
	default:
		if verbose {
			log.Printf("Diffing %s -> %s\n", pair.LegacyPath, pair.TargetPath)
		}
	}
	if c.comparedPairs%c.cadence == 0 {
		log.Printf("Compared %d files\n", c.comparedPairs)
	}
}

// Elapsed returns the time since the reporter was created.
func (c *CLIProgressReporter) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
