package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/arthrod/refaudit/internal/config"
	"github.com/arthrod/refaudit/internal/filediff"
)

var (
	diffQuietFlag bool
	diffCleanFlag bool
)

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Write unified diffs of every legacy file against the current tree",
	Long: `Diff walks the legacy tree and pairs each file with its counterpart
in the current tree: the same relative path with a .ts or .tsx extension
first, then the exact relative path. Each pair is compared with
'diff -u' and the raw output is written to the diff output directory, named
after both paths joined by the separator token.

Excluded file names, skipped directories and files carrying a generated
code marker are not diffed. A diff tool error is reported and the pass
continues with the next file.

Examples:
  refaudit diff
  refaudit diff --clean   # remove earlier diff artifacts first
`,
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().BoolVarP(&diffQuietFlag, "quiet", "q", false, "Disable non-error output")
	diffCmd.Flags().BoolVar(&diffCleanFlag, "clean", false, "Remove earlier diff artifacts before diffing")
}

func runDiff(cmd *cobra.Command, args []string) error {
	ctx, cancel := newCommandContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	_, err = executeDiff(ctx, cfg, filediff.NewExecDiffer(cfg.Diff.Command), diffQuietFlag, diffCleanFlag)
	return err
}

// executeDiff runs the whole-file diff pass with differ.
func executeDiff(ctx context.Context, cfg *config.Config, differ filediff.Differ, quiet, clean bool) (*filediff.Report, error) {
	if clean {
		removed, err := filediff.Clean(cfg.Paths.DiffOutput, cfg.Diff.Separator)
		if err != nil {
			return nil, err
		}
		if !quiet {
			log.Printf("Removed %d earlier diff artifacts\n", len(removed))
		}
	}

	progress := NewCLIProgressReporter(quiet, cfg.Progress.Cadence)
	runner := filediff.NewRunner(differ, filediff.Options{
		LegacyRoot:       cfg.Paths.LegacyRoot,
		CurrentRoot:      cfg.Paths.CurrentRoot,
		OutputDir:        cfg.Paths.DiffOutput,
		Separator:        cfg.Diff.Separator,
		Exclude:          cfg.Diff.Exclude,
		SkipDirs:         cfg.Diff.SkipDirs,
		GeneratedMarkers: cfg.Diff.GeneratedMarkers,
		MarkerWindow:     cfg.Diff.MarkerWindow,
		TargetExtensions: cfg.Diff.TargetExtensions,
		Progress:         progress,
	})

	report, err := runner.Run(ctx)
	if err != nil {
		return report, fmt.Errorf("diff pass failed: %w", err)
	}

	if !quiet {
		printDiffSummary(report, cfg.Paths.DiffOutput)
	}
	return report, nil
}

func printDiffSummary(report *filediff.Report, outputDir string) {
	var added, changed, deleted int32
	for _, p := range report.Pairs {
		added += p.Stats.Added
		changed += p.Stats.Changed
		deleted += p.Stats.Deleted
	}

	fmt.Println()
	fmt.Printf("✓ Diff artifacts written to %s\n", outputDir)
	fmt.Printf("  Differing:  %s (+%d ~%d -%d lines)\n",
		formatNumber(report.Count(filediff.StatusDiffed)), added, changed, deleted)
	fmt.Printf("  Identical:  %s\n", formatNumber(report.Count(filediff.StatusIdentical)))
	fmt.Printf("  No target:  %s\n", formatNumber(report.Count(filediff.StatusNoTarget)))
	fmt.Printf("  Skipped:    %s\n", formatNumber(len(report.Skipped)))

	if failures := report.Failures(); len(failures) > 0 {
		fmt.Printf("✗ %d files could not be diffed:\n", len(failures))
		for _, p := range failures {
			fmt.Printf("  - %s: %v\n", p.LegacyPath, p.Err)
		}
	}
}
