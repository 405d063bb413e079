package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthrod/refaudit/internal/config"
	"github.com/arthrod/refaudit/internal/verify"
)

var criticalSymbolsFlag []string

// criticalCmd represents the critical command
var criticalCmd = &cobra.Command{
	Use:   "critical",
	Short: "Report on the critical symbols",
	Long: `Critical checks a fixed list of symbols that must survive the
refactoring. For each one with a baseline it reports whether a snapshot
exists, both sizes, the size delta and where the symbol now lives. Found
symbols whose delta exceeds the critical threshold are flagged.

The list comes from verify.critical_symbols unless --symbols is given.

Examples:
  refaudit critical
  refaudit critical --symbols BodyReader,Styles
`,
	RunE: runCritical,
}

func init() {
	rootCmd.AddCommand(criticalCmd)
	criticalCmd.Flags().StringSliceVar(&criticalSymbolsFlag, "symbols", nil, "Symbols to check (default from config)")
}

func runCritical(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(criticalSymbolsFlag) > 0 {
		cfg.Verify.CriticalSymbols = criticalSymbolsFlag
	}

	executeCritical(cfg)
	return nil
}

// executeCritical runs the critical-symbol pass and prints its report.
func executeCritical(cfg *config.Config) *verify.CriticalReport {
	report := verify.CheckCritical(cfg.Paths.Baseline, cfg.SnapshotDir(), namingFor(cfg),
		cfg.Verify.CriticalSymbols, cfg.Verify.CriticalThreshold)

	printCriticalReport(report)
	return report
}

func printCriticalReport(report *verify.CriticalReport) {
	fmt.Println()
	fmt.Printf("Critical symbols (threshold %.0f%%):\n", report.Threshold)
	for _, r := range report.Results {
		mark := "✓"
		switch {
		case !r.Found:
			mark = "✗"
		case r.Flagged:
			mark = "⚠"
		}
		fmt.Printf("  %s %-20s %-9s %db → %db (%.1f%%)", mark, r.Name, r.Status(), r.BaselineSize, r.CurrentSize, r.Delta)
		if r.Location != "" {
			fmt.Printf("  [%s]", r.Location)
		}
		fmt.Println()
	}

	flagged := report.Flagged()
	fmt.Println()
	fmt.Printf("Found %d/%d critical symbols\n", report.FoundCount(), len(report.Results))
	if len(flagged) > 0 {
		fmt.Printf("⚠ %d critical symbols need manual review\n", len(flagged))
	}
}
