package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/arthrod/refaudit/internal/config"
	"github.com/arthrod/refaudit/internal/verify"
)

var (
	runQuietFlag bool
	runPruneFlag bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run map, snapshot, verify and critical in sequence",
	Long: `Run executes the symbol pipeline end to end: it builds and saves the
mapping, writes snapshots from the saved mapping, then runs the bulk size
check and the critical-symbol pass. The whole-file diff pass is separate;
see 'refaudit diff'.

Examples:
  refaudit run
  refaudit run --quiet --prune
`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVarP(&runQuietFlag, "quiet", "q", false, "Disable progress bars and stage summaries")
	runCmd.Flags().BoolVar(&runPruneFlag, "prune", false, "Remove snapshots of symbols that are no longer found")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, cancel := newCommandContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	_, err = executePipeline(ctx, cfg, runQuietFlag, runPruneFlag)
	return err
}

// pipelineResult collects the reports of one full run.
type pipelineResult struct {
	Sizes    *verify.SizeReport
	Critical *verify.CriticalReport
}

// executePipeline runs each stage in order. Snapshot generation reads the
// mapping back from disk so the persisted artifact is what downstream
// stages see.
func executePipeline(ctx context.Context, cfg *config.Config, quiet, prune bool) (*pipelineResult, error) {
	if !quiet {
		log.Println("Stage 1/4: mapping symbols")
	}
	if _, err := executeMap(ctx, cfg, quiet, false); err != nil {
		return nil, err
	}

	store, err := loadMapping(cfg)
	if err != nil {
		return nil, err
	}

	if !quiet {
		log.Println("Stage 2/4: writing snapshots")
	}
	if _, err := executeSnapshot(ctx, cfg, store, quiet, prune); err != nil {
		return nil, err
	}

	if !quiet {
		log.Println("Stage 3/4: checking size deltas")
	}
	sizes, err := executeVerify(cfg)
	if err != nil {
		return nil, err
	}

	if !quiet {
		log.Println("Stage 4/4: checking critical symbols")
	}
	critical := executeCritical(cfg)

	fmt.Println()
	fmt.Printf("✓ Pipeline complete: %d flagged, %d critical flagged\n",
		len(sizes.Flagged), len(critical.Flagged()))
	return &pipelineResult{Sizes: sizes, Critical: critical}, nil
}
