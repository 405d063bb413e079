package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthrod/refaudit/internal/config"
	"github.com/arthrod/refaudit/internal/filediff"
	"github.com/arthrod/refaudit/internal/snapshot"
)

var (
	cleanQuietFlag bool
	cleanAllFlag   bool
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated snapshots and diff artifacts",
	Long: `Clean removes the outputs of earlier runs: every <Symbol>_local.js
snapshot, the _inexistent.js manifest and every diff artifact. Baseline
artifacts are never touched.

By default the mapping artifact is kept so 'refaudit snapshot' can run
again without re-scanning. Use --all to delete it too.

Examples:
  refaudit clean
  refaudit clean --all
`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanQuietFlag, "quiet", "q", false, "Suppress output messages")
	cleanCmd.Flags().BoolVarP(&cleanAllFlag, "all", "a", false, "Also delete the mapping artifact")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return executeClean(cfg, cleanQuietFlag, cleanAllFlag)
}

func executeClean(cfg *config.Config, quiet, all bool) error {
	snapshots, err := snapshot.RemoveGenerated(cfg.SnapshotDir(), namingFor(cfg))
	if err != nil {
		return fmt.Errorf("failed to remove snapshots: %w", err)
	}

	diffs, err := filediff.Clean(cfg.Paths.DiffOutput, cfg.Diff.Separator)
	if err != nil {
		return fmt.Errorf("failed to remove diff artifacts: %w", err)
	}

	mappingRemoved := false
	if all {
		if err := os.Remove(cfg.Paths.Mapping); err == nil {
			mappingRemoved = true
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove mapping artifact: %w", err)
		}
	}

	if !quiet {
		fmt.Printf("✓ Removed %d snapshot files and %d diff artifacts\n", len(snapshots), len(diffs))
		if mappingRemoved {
			fmt.Printf("✓ Removed mapping artifact %s\n", cfg.Paths.Mapping)
		}
	}
	return nil
}
