package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthrod/refaudit/internal/config"
	"github.com/arthrod/refaudit/internal/verify"
)

var (
	verifyThresholdFlag float64
	verifyLimitFlag     int
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Flag snapshots whose size drifted from the baseline",
	Long: `Verify compares the size of every baseline with its snapshot. A pair
whose relative size delta is strictly greater than the threshold is flagged
for manual review. Flagged pairs are listed largest delta first, with the
Levenshtein similarity of the two bodies.

Examples:
  refaudit verify
  refaudit verify --threshold 20 --limit 50
`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().Float64Var(&verifyThresholdFlag, "threshold", 0, "Size delta percentage to flag (default from config)")
	verifyCmd.Flags().IntVar(&verifyLimitFlag, "limit", 0, "Maximum flagged pairs to print (default from config)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("threshold") {
		cfg.Verify.BulkThreshold = verifyThresholdFlag
	}
	if cmd.Flags().Changed("limit") {
		cfg.Verify.ReportLimit = verifyLimitFlag
	}

	_, err = executeVerify(cfg)
	return err
}

// executeVerify runs the bulk size-delta pass and prints its report.
func executeVerify(cfg *config.Config) (*verify.SizeReport, error) {
	report, err := verify.CheckSizes(cfg.Paths.Baseline, cfg.SnapshotDir(), namingFor(cfg), cfg.Verify.BulkThreshold)
	if err != nil {
		return nil, err
	}

	printSizeReport(report, cfg.Verify.ReportLimit)
	return report, nil
}

func printSizeReport(report *verify.SizeReport, limit int) {
	fmt.Println()
	fmt.Printf("Size check (threshold %.0f%%): %s pairs checked\n",
		report.Threshold, formatNumber(report.Checked))

	if len(report.Flagged) == 0 {
		fmt.Println("✓ No snapshots need manual review")
		return
	}

	fmt.Printf("⚠ %d snapshots need manual review:\n", len(report.Flagged))
	for i, d := range report.Flagged {
		if limit > 0 && i >= limit {
			fmt.Printf("  ... and %d more\n", len(report.Flagged)-limit)
			break
		}
		fmt.Printf("  ⚠ %s  similarity %.2f", d, d.Similarity)
		if d.Location != "" {
			fmt.Printf("  [%s]", d.Location)
		}
		fmt.Println()
	}
}
