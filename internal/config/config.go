package config

import (
	"path/filepath"
)

// Config represents the complete refaudit configuration.
// It can be loaded from .refaudit/config.yml with environment variable overrides.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	Extract  ExtractConfig  `yaml:"extract" mapstructure:"extract"`
	Naming   NamingConfig   `yaml:"naming" mapstructure:"naming"`
	Verify   VerifyConfig   `yaml:"verify" mapstructure:"verify"`
	Diff     DiffConfig     `yaml:"diff" mapstructure:"diff"`
	Progress ProgressConfig `yaml:"progress" mapstructure:"progress"`
}

// PathsConfig locates every input and output of a pipeline run.
// Relative paths are resolved against the project root by Resolve.
type PathsConfig struct {
	Baseline    string `yaml:"baseline" mapstructure:"baseline"`         // baseline artifacts, one per symbol
	Snapshots   string `yaml:"snapshots" mapstructure:"snapshots"`       // generated snapshots; empty means same as baseline
	SearchRoot  string `yaml:"search_root" mapstructure:"search_root"`   // refactored tree to search
	Mapping     string `yaml:"mapping" mapstructure:"mapping"`           // mapping artifact (.json or .db)
	LegacyRoot  string `yaml:"legacy_root" mapstructure:"legacy_root"`   // legacy tree for whole-file diffs
	CurrentRoot string `yaml:"current_root" mapstructure:"current_root"` // current tree for whole-file diffs
	DiffOutput  string `yaml:"diff_output" mapstructure:"diff_output"`   // raw diff artifacts
}

// SearchConfig selects which files the symbol locator visits.
type SearchConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// ExtractConfig bounds the body extractor.
type ExtractConfig struct {
	MaxLines int `yaml:"max_lines" mapstructure:"max_lines"`
}

// NamingConfig holds the reserved file naming conventions of the baseline directory.
type NamingConfig struct {
	BaselineExt    string `yaml:"baseline_ext" mapstructure:"baseline_ext"`       // e.g. ".js"
	SnapshotSuffix string `yaml:"snapshot_suffix" mapstructure:"snapshot_suffix"` // e.g. "_local"
	ManifestName   string `yaml:"manifest_name" mapstructure:"manifest_name"`     // e.g. "_inexistent"
}

// VerifyConfig configures the fidelity checks.
type VerifyConfig struct {
	BulkThreshold     float64  `yaml:"bulk_threshold" mapstructure:"bulk_threshold"`         // percent
	CriticalThreshold float64  `yaml:"critical_threshold" mapstructure:"critical_threshold"` // percent
	CriticalSymbols   []string `yaml:"critical_symbols" mapstructure:"critical_symbols"`
	ReportLimit       int      `yaml:"report_limit" mapstructure:"report_limit"`
}

// DiffConfig configures the whole-file diff pass.
type DiffConfig struct {
	Command          string   `yaml:"command" mapstructure:"command"`
	Separator        string   `yaml:"separator" mapstructure:"separator"`
	Exclude          []string `yaml:"exclude" mapstructure:"exclude"`
	SkipDirs         []string `yaml:"skip_dirs" mapstructure:"skip_dirs"`
	GeneratedMarkers []string `yaml:"generated_markers" mapstructure:"generated_markers"`
	MarkerWindow     int      `yaml:"marker_window" mapstructure:"marker_window"` // bytes
	TargetExtensions []string `yaml:"target_extensions" mapstructure:"target_extensions"`
}

// ProgressConfig sets how often batch stages report progress.
type ProgressConfig struct {
	Cadence int `yaml:"cadence" mapstructure:"cadence"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Baseline:    "old_implementation_diffs",
			Snapshots:   "",
			SearchRoot:  "lib",
			Mapping:     "function_mapping.json",
			LegacyRoot:  "mammoth_before_refactoring",
			CurrentRoot: ".",
			DiffOutput:  "old_implementation_diffs",
		},
		Search: SearchConfig{
			Include: []string{
				"**/*.ts",
				"**/*.js",
			},
			Ignore: []string{
				"node_modules/**",
				".git/**",
				"dist/**",
			},
		},
		Extract: ExtractConfig{
			MaxLines: 100,
		},
		Naming: NamingConfig{
			BaselineExt:    ".js",
			SnapshotSuffix: "_local",
			ManifestName:   "_inexistent",
		},
		Verify: VerifyConfig{
			BulkThreshold:     30,
			CriticalThreshold: 50,
			CriticalSymbols: []string{
				"BodyReader",
				"DocumentConversion",
				"DocumentConverter",
				"RegexTokeniser",
				"Paragraph",
				"Run",
				"BreakMatcher",
				"Numbering",
				"Styles",
				"Table",
			},
			ReportLimit: 20,
		},
		Diff: DiffConfig{
			Command:   "diff",
			Separator: "-v--",
			Exclude: []string{
				".DS_Store",
				"package.json",
				"package-lock.json",
				"LICENSE",
				"README.md",
				"tsconfig.json",
			},
			SkipDirs:         []string{"node_modules", ".git", "dist"},
			GeneratedMarkers: []string{"barrelsby"},
			MarkerWindow:     100,
			TargetExtensions: []string{".ts", ".tsx"},
		},
		Progress: ProgressConfig{
			Cadence: 50,
		},
	}
}

// SnapshotDir returns the directory generated snapshots are written to.
func (c *Config) SnapshotDir() string {
	if c.Paths.Snapshots != "" {
		return c.Paths.Snapshots
	}
	return c.Paths.Baseline
}

// Resolve returns a copy of the configuration with every relative path
// joined onto rootDir. Absolute paths are left untouched.
func (c *Config) Resolve(rootDir string) *Config {
	out := *c
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(rootDir, p)
	}
	out.Paths = PathsConfig{
		Baseline:    resolve(c.Paths.Baseline),
		Snapshots:   resolve(c.Paths.Snapshots),
		SearchRoot:  resolve(c.Paths.SearchRoot),
		Mapping:     resolve(c.Paths.Mapping),
		LegacyRoot:  resolve(c.Paths.LegacyRoot),
		CurrentRoot: resolve(c.Paths.CurrentRoot),
		DiffOutput:  resolve(c.Paths.DiffOutput),
	}
	return &out
}
