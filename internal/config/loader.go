package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigDirName is the per-project directory holding config.yml.
const ConfigDirName = ".refaudit"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads an explicit config file instead
// of searching the project's config directory. A missing file is an error.
func NewFileLoader(configFile string) Loader {
	return &loader{
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (REFAUDIT_*)
// 2. Config file (.refaudit/config.yml or .refaudit/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ConfigDirName))
	}

	// REFAUDIT_VERIFY_BULK_THRESHOLD -> verify.bulk_threshold
	v.SetEnvPrefix("REFAUDIT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// AutomaticEnv only applies to keys viper already knows about, and
	// Unmarshal only sees keys that were bound or defaulted.
	for _, key := range envKeys {
		v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

var envKeys = []string{
	"paths.baseline",
	"paths.snapshots",
	"paths.search_root",
	"paths.mapping",
	"paths.legacy_root",
	"paths.current_root",
	"paths.diff_output",
	"extract.max_lines",
	"naming.baseline_ext",
	"naming.snapshot_suffix",
	"naming.manifest_name",
	"verify.bulk_threshold",
	"verify.critical_threshold",
	"verify.report_limit",
	"diff.command",
	"diff.separator",
	"diff.marker_window",
	"progress.cadence",
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.baseline", defaults.Paths.Baseline)
	v.SetDefault("paths.snapshots", defaults.Paths.Snapshots)
	v.SetDefault("paths.search_root", defaults.Paths.SearchRoot)
	v.SetDefault("paths.mapping", defaults.Paths.Mapping)
	v.SetDefault("paths.legacy_root", defaults.Paths.LegacyRoot)
	v.SetDefault("paths.current_root", defaults.Paths.CurrentRoot)
	v.SetDefault("paths.diff_output", defaults.Paths.DiffOutput)

	v.SetDefault("search.include", defaults.Search.Include)
	v.SetDefault("search.ignore", defaults.Search.Ignore)

	v.SetDefault("extract.max_lines", defaults.Extract.MaxLines)

	v.SetDefault("naming.baseline_ext", defaults.Naming.BaselineExt)
	v.SetDefault("naming.snapshot_suffix", defaults.Naming.SnapshotSuffix)
	v.SetDefault("naming.manifest_name", defaults.Naming.ManifestName)

	v.SetDefault("verify.bulk_threshold", defaults.Verify.BulkThreshold)
	v.SetDefault("verify.critical_threshold", defaults.Verify.CriticalThreshold)
	v.SetDefault("verify.critical_symbols", defaults.Verify.CriticalSymbols)
	v.SetDefault("verify.report_limit", defaults.Verify.ReportLimit)

	v.SetDefault("diff.command", defaults.Diff.Command)
	v.SetDefault("diff.separator", defaults.Diff.Separator)
	v.SetDefault("diff.exclude", defaults.Diff.Exclude)
	v.SetDefault("diff.skip_dirs", defaults.Diff.SkipDirs)
	v.SetDefault("diff.generated_markers", defaults.Diff.GeneratedMarkers)
	v.SetDefault("diff.marker_window", defaults.Diff.MarkerWindow)
	v.SetDefault("diff.target_extensions", defaults.Diff.TargetExtensions)

	v.SetDefault("progress.cadence", defaults.Progress.Cadence)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
