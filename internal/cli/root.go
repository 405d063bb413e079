package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arthrod/refaudit/internal/config"
	"github.com/arthrod/refaudit/internal/snapshot"
)

var (
	cfgFile string
	rootDir string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "refaudit",
	Short: "Refaudit - audit a source-to-source refactoring",
	Long: `Refaudit checks that every symbol of a legacy codebase survived a
refactoring. It resolves each baseline symbol in the refactored tree,
snapshots the current implementation, and flags symbols whose size changed
enough to need manual review.

Typical flow:
  refaudit map        # resolve baseline symbols, write the mapping artifact
  refaudit snapshot   # write one snapshot per resolved symbol
  refaudit verify     # flag snapshots whose size drifted from the baseline
  refaudit critical   # report on the critical symbols
  refaudit diff       # whole-file unified diffs of the legacy tree

Or all of map, snapshot, verify and critical at once:
  refaudit run
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <root>/.refaudit/config.yml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "project root that relative paths are resolved against")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the project configuration and resolves its paths
// against the project root.
func loadConfig() (*config.Config, error) {
	var loader config.Loader
	if cfgFile != "" {
		loader = config.NewFileLoader(cfgFile)
	} else {
		loader = config.NewLoader(rootDir)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		if cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Using config file:", cfgFile)
		}
		fmt.Fprintln(os.Stderr, "Project root:", rootDir)
	}
	return cfg.Resolve(rootDir), nil
}

// newCommandContext returns a context cancelled on SIGINT or SIGTERM.
func newCommandContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Println("\nInterrupted! Partial outputs may remain; rerun to regenerate them.")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

func namingFor(cfg *config.Config) snapshot.Naming {
	return snapshot.Naming{
		BaselineExt:    cfg.Naming.BaselineExt,
		SnapshotSuffix: cfg.Naming.SnapshotSuffix,
		ManifestName:   cfg.Naming.ManifestName,
	}
}
