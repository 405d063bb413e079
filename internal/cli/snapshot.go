package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthrod/refaudit/internal/config"
	"github.com/arthrod/refaudit/internal/mapping"
	"github.com/arthrod/refaudit/internal/snapshot"
	"github.com/arthrod/refaudit/internal/symbol"
)

var (
	snapshotQuietFlag bool
	snapshotPruneFlag bool
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Write the current body of every mapped symbol",
	Long: `Snapshot loads the mapping artifact written by 'refaudit map' and
extracts the body of every found symbol from its recorded location. Each
body is written next to its baseline as <Symbol>_local.js, starting with a
"// file:line" provenance comment. Symbols that were not found are listed
in a single _inexistent.js manifest.

Re-running overwrites prior snapshots. With --prune, snapshots of symbols
that are no longer found are removed.

Examples:
  refaudit snapshot
  refaudit snapshot --prune
`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().BoolVarP(&snapshotQuietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	snapshotCmd.Flags().BoolVar(&snapshotPruneFlag, "prune", false, "Remove snapshots of symbols that are no longer found")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	ctx, cancel := newCommandContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := loadMapping(cfg)
	if err != nil {
		return err
	}

	_, err = executeSnapshot(ctx, cfg, store, snapshotQuietFlag, snapshotPruneFlag)
	return err
}

// executeSnapshot writes snapshots and the manifest for store.
func executeSnapshot(ctx context.Context, cfg *config.Config, store *mapping.Store, quiet, prune bool) (*snapshot.Result, error) {
	progress := NewCLIProgressReporter(quiet, cfg.Progress.Cadence)
	gen := snapshot.NewGenerator(symbol.NewExtractor(cfg.Extract.MaxLines), snapshot.Options{
		OutputDir:  cfg.SnapshotDir(),
		Naming:     namingFor(cfg),
		Cadence:    cfg.Progress.Cadence,
		PruneStale: prune,
		Progress:   progress,
	})

	result, err := gen.Generate(ctx, store)
	progress.FinishGenerate()
	if err != nil {
		return nil, fmt.Errorf("snapshot generation failed: %w", err)
	}

	if !quiet {
		printSnapshotSummary(result)
	}
	return result, nil
}

// loadMapping reads the mapping artifact. A missing artifact stops the
// command: snapshots cannot be generated without it.
func loadMapping(cfg *config.Config) (*mapping.Store, error) {
	store, err := mapping.Load(cfg.Paths.Mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping (run 'refaudit map' first): %w", err)
	}
	return store, nil
}

func printSnapshotSummary(result *snapshot.Result) {
	fmt.Println()
	fmt.Printf("✓ Generated %s snapshots (%s unchanged)\n",
		formatNumber(result.Generated), formatNumber(result.Unchanged))
	fmt.Printf("  Not found: %s (listed in %s)\n", formatNumber(result.NotFound), result.ManifestPath)

	if len(result.Failed) > 0 {
		fmt.Printf("✗ %d bodies could not be extracted:\n", len(result.Failed))
		for _, name := range result.Failed {
			fmt.Printf("  - %s\n", name)
		}
	}
	if len(result.Incomplete) > 0 {
		fmt.Printf("⚠ %d bodies were truncated at the scan window:\n", len(result.Incomplete))
		for _, name := range result.Incomplete {
			fmt.Printf("  - %s\n", name)
		}
	}
	if len(result.Pruned) > 0 {
		fmt.Printf("  Pruned %d stale snapshots\n", len(result.Pruned))
	}
}
