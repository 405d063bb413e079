package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthrod/refaudit/internal/config"
	"github.com/arthrod/refaudit/internal/git"
	"github.com/arthrod/refaudit/internal/mapping"
	"github.com/arthrod/refaudit/internal/symbol"
)

// summaryPreview is how many found and not-found names a summary lists.
const summaryPreview = 10

var (
	mapQuietFlag          bool
	mapCheckAmbiguousFlag bool
)

// gitOps reads the revision of the search root. Tests replace it.
var gitOps git.Operations = git.NewOperations()

// mapCmd represents the map command
var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Resolve every baseline symbol in the current tree",
	Long: `Map derives symbol names from the baseline directory, searches the
current tree for each declaration and writes the mapping artifact.

The mapping artifact format follows its extension: .json writes the
found/not-found tuple document, .db or .sqlite writes a SQLite database.

When a symbol is declared in more than one file, the first file in
lexicographic walk order wins. Use --check-ambiguous to list them.

Examples:
  # Build the mapping with the configured paths
  refaudit map

  # Also report symbols declared in several files
  refaudit map --check-ambiguous
`,
	RunE: runMap,
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.Flags().BoolVarP(&mapQuietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	mapCmd.Flags().BoolVar(&mapCheckAmbiguousFlag, "check-ambiguous", false, "Report symbols declared in more than one file")
}

func runMap(cmd *cobra.Command, args []string) error {
	ctx, cancel := newCommandContext()
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	_, err = executeMap(ctx, cfg, mapQuietFlag, mapCheckAmbiguousFlag)
	return err
}

// executeMap builds and persists the mapping store.
func executeMap(ctx context.Context, cfg *config.Config, quiet, checkAmbiguous bool) (*mapping.Store, error) {
	names, err := namingFor(cfg).SymbolNames(cfg.Paths.Baseline)
	if err != nil {
		return nil, err
	}

	heuristic, err := newHeuristic(cfg)
	if err != nil {
		return nil, err
	}

	progress := NewCLIProgressReporter(quiet, cfg.Progress.Cadence)
	store, err := mapping.Build(ctx, names, heuristic, progress)
	if err != nil {
		return nil, fmt.Errorf("mapping interrupted: %w", err)
	}

	if err := mapping.Persist(cfg.Paths.Mapping, store); err != nil {
		return nil, fmt.Errorf("failed to save mapping: %w", err)
	}

	rev := git.ReadRevision(gitOps, cfg.Paths.SearchRoot)
	if format, _ := mapping.FormatFor(cfg.Paths.Mapping); format == mapping.FormatSQLite {
		if err := mapping.RecordRevision(cfg.Paths.Mapping, rev.Branch, rev.Commit); err != nil {
			return nil, err
		}
	}
	if verbose {
		log.Printf("Audited revision: %s @ %s\n", rev.Branch, rev.Commit)
	}

	if !quiet {
		printMapSummary(store, cfg.Paths.Mapping)
	}
	if checkAmbiguous {
		reportAmbiguous(heuristic, store)
	}
	return store, nil
}

// newHeuristic builds the line heuristic over the configured search root.
// A missing search root is a prerequisite failure.
func newHeuristic(cfg *config.Config) (*symbol.LineHeuristic, error) {
	info, err := os.Stat(cfg.Paths.SearchRoot)
	if err != nil {
		return nil, fmt.Errorf("search root %s: %w", cfg.Paths.SearchRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("search root %s is not a directory", cfg.Paths.SearchRoot)
	}

	discovery, err := symbol.NewFileDiscovery(cfg.Paths.SearchRoot, cfg.Search.Include, cfg.Search.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to create file discovery: %w", err)
	}
	return symbol.NewLineHeuristic(discovery, cfg.Extract.MaxLines), nil
}

func printMapSummary(store *mapping.Store, mappingPath string) {
	fmt.Println()
	fmt.Printf("✓ Mapping saved to %s\n", mappingPath)
	fmt.Printf("  Found:     %s\n", formatNumber(len(store.Found)))
	fmt.Printf("  Not found: %s\n", formatNumber(len(store.NotFound)))

	if len(store.Found) > 0 {
		fmt.Println()
		fmt.Println("Found:")
		for _, e := range preview(store.Found) {
			fmt.Printf("  %s -> %s\n", e.Name, e.Location)
		}
		if extra := len(store.Found) - summaryPreview; extra > 0 {
			fmt.Printf("  ... and %d more\n", extra)
		}
	}

	if len(store.NotFound) > 0 {
		fmt.Println()
		fmt.Println("Not found:")
		for _, name := range preview(store.NotFound) {
			fmt.Printf("  ✗ %s\n", name)
		}
		if extra := len(store.NotFound) - summaryPreview; extra > 0 {
			fmt.Printf("  ... and %d more\n", extra)
		}
	}
}

func preview[T any](items []T) []T {
	if len(items) > summaryPreview {
		return items[:summaryPreview]
	}
	return items
}

// ambiguousSymbol is a found symbol declared in more than one file.
type ambiguousSymbol struct {
	Name      string
	Locations []symbol.Location
}

// findAmbiguous rescans every found symbol across all files.
func findAmbiguous(locator *symbol.Locator, store *mapping.Store) []ambiguousSymbol {
	var out []ambiguousSymbol
	for _, e := range store.Found {
		locs := locator.LocateAll(e.Name)
		if len(locs) > 1 {
			out = append(out, ambiguousSymbol{Name: e.Name, Locations: locs})
		}
	}
	return out
}

func reportAmbiguous(heuristic *symbol.LineHeuristic, store *mapping.Store) {
	log.Println("Checking for symbols declared in several files...")
	ambiguous := findAmbiguous(heuristic.Locator, store)

	fmt.Println()
	if len(ambiguous) == 0 {
		fmt.Println("✓ No ambiguous symbols")
		return
	}
	fmt.Printf("⚠ %d symbols are declared in more than one file (first wins):\n", len(ambiguous))
	for _, a := range ambiguous {
		fmt.Printf("  %s\n", a.Name)
		for i, loc := range a.Locations {
			marker := " "
			if i == 0 {
				marker = "*"
			}
			fmt.Printf("    %s %s\n", marker, loc)
		}
	}
}
