package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - LoadConfig() uses defaults when no config file exists
// - LoadConfig() loads from .refaudit/config.yml when present
// - LoadConfig() loads from .refaudit/config.yaml when present
// - LoadConfig() merges config file with defaults
// - NewFileLoader reads an explicit file and fails when it is missing
// - Environment variables override config file values
// - LoadConfig() returns error for malformed YAML
// - LoadConfig() returns error for invalid configuration values
// - Validate() rejects empty required paths, zero max_lines, bad naming,
//   negative thresholds, empty diff command and zero cadence
// - Validate() returns multiple errors for multiple invalid fields
// - SnapshotDir() falls back to the baseline directory
// - Resolve() joins relative paths onto the root and keeps absolute ones

func writeConfigFile(t *testing.T, rootDir, name, content string) {
	t.Helper()
	dir := filepath.Join(rootDir, ConfigDirName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "old_implementation_diffs", cfg.Paths.Baseline)
	assert.Equal(t, "lib", cfg.Paths.SearchRoot)
	assert.Equal(t, "function_mapping.json", cfg.Paths.Mapping)
	assert.Equal(t, []string{"**/*.ts", "**/*.js"}, cfg.Search.Include)
	assert.Equal(t, 100, cfg.Extract.MaxLines)
	assert.Equal(t, ".js", cfg.Naming.BaselineExt)
	assert.Equal(t, "_local", cfg.Naming.SnapshotSuffix)
	assert.Equal(t, "_inexistent", cfg.Naming.ManifestName)
	assert.Equal(t, 30.0, cfg.Verify.BulkThreshold)
	assert.Equal(t, 50.0, cfg.Verify.CriticalThreshold)
	assert.Len(t, cfg.Verify.CriticalSymbols, 10)
	assert.Equal(t, "diff", cfg.Diff.Command)
	assert.Equal(t, "-v--", cfg.Diff.Separator)
	assert.Equal(t, []string{".ts", ".tsx"}, cfg.Diff.TargetExtensions)
	assert.Equal(t, 50, cfg.Progress.Cadence)

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_LoadsFromConfigYml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, "config.yml", `
paths:
  baseline: baselines
  search_root: src
  mapping: out/mapping.db

search:
  include:
    - "**/*.tsx"
  ignore:
    - "vendor/**"

extract:
  max_lines: 250

verify:
  bulk_threshold: 25
  critical_symbols: ["Parser", "Lexer"]
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "baselines", cfg.Paths.Baseline)
	assert.Equal(t, "src", cfg.Paths.SearchRoot)
	assert.Equal(t, "out/mapping.db", cfg.Paths.Mapping)
	assert.Equal(t, []string{"**/*.tsx"}, cfg.Search.Include)
	assert.Equal(t, []string{"vendor/**"}, cfg.Search.Ignore)
	assert.Equal(t, 250, cfg.Extract.MaxLines)
	assert.Equal(t, 25.0, cfg.Verify.BulkThreshold)
	assert.Equal(t, []string{"Parser", "Lexer"}, cfg.Verify.CriticalSymbols)
}

func TestLoadConfig_LoadsFromConfigYaml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, "config.yaml", `
naming:
  baseline_ext: .ts
  snapshot_suffix: _current
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, ".ts", cfg.Naming.BaselineExt)
	assert.Equal(t, "_current", cfg.Naming.SnapshotSuffix)
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, "config.yml", `
diff:
  command: gdiff
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, "gdiff", cfg.Diff.Command)
	assert.Equal(t, defaults.Diff.Separator, cfg.Diff.Separator)
	assert.Equal(t, defaults.Diff.Exclude, cfg.Diff.Exclude)
	assert.Equal(t, defaults.Paths, cfg.Paths)
	assert.Equal(t, defaults.Extract, cfg.Extract)
}

func TestNewFileLoader_ReadsExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.yml")
	require.NoError(t, os.WriteFile(path, []byte("extract:\n  max_lines: 40\n"), 0644))

	cfg, err := NewFileLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Extract.MaxLines)
	assert.Equal(t, Default().Paths, cfg.Paths)

	_, err = NewFileLoader(filepath.Join(t.TempDir(), "missing.yml")).Load()
	assert.Error(t, err)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, "config.yml", `
paths:
  search_root: from-file
extract:
  max_lines: 40
`)

	t.Setenv("REFAUDIT_PATHS_SEARCH_ROOT", "from-env")
	t.Setenv("REFAUDIT_EXTRACT_MAX_LINES", "75")
	t.Setenv("REFAUDIT_VERIFY_BULK_THRESHOLD", "12.5")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Paths.SearchRoot)
	assert.Equal(t, 75, cfg.Extract.MaxLines)
	assert.Equal(t, 12.5, cfg.Verify.BulkThreshold)
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, "config.yml", "paths:\n  baseline: [unterminated\n")

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	tempDir := t.TempDir()
	writeConfigFile(t, tempDir, "config.yml", `
extract:
  max_lines: 0
`)

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMaxLines)
}

func TestValidate_RejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"empty baseline", func(c *Config) { c.Paths.Baseline = " " }, ErrEmptyPath},
		{"empty search root", func(c *Config) { c.Paths.SearchRoot = "" }, ErrEmptyPath},
		{"no include globs", func(c *Config) { c.Search.Include = nil }, ErrNoIncludePatterns},
		{"negative max lines", func(c *Config) { c.Extract.MaxLines = -1 }, ErrInvalidMaxLines},
		{"extension without dot", func(c *Config) { c.Naming.BaselineExt = "js" }, ErrInvalidNaming},
		{"empty suffix", func(c *Config) { c.Naming.SnapshotSuffix = "" }, ErrInvalidNaming},
		{"negative bulk threshold", func(c *Config) { c.Verify.BulkThreshold = -5 }, ErrInvalidThreshold},
		{"empty diff command", func(c *Config) { c.Diff.Command = "" }, ErrInvalidDiffSettings},
		{"zero cadence", func(c *Config) { c.Progress.Cadence = 0 }, ErrInvalidCadence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_ReturnsMultipleErrorsForMultipleInvalidFields(t *testing.T) {
	cfg := Default()
	cfg.Paths.Mapping = ""
	cfg.Extract.MaxLines = 0
	cfg.Diff.Separator = ""

	err := Validate(cfg)
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrEmptyPath)
	assert.ErrorIs(t, err, ErrInvalidMaxLines)
	assert.ErrorIs(t, err, ErrInvalidDiffSettings)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestConfig_SnapshotDir(t *testing.T) {
	cfg := Default()
	assert.Equal(t, cfg.Paths.Baseline, cfg.SnapshotDir())

	cfg.Paths.Snapshots = "generated"
	assert.Equal(t, "generated", cfg.SnapshotDir())
}

func TestConfig_Resolve(t *testing.T) {
	cfg := Default()
	abs := filepath.Join(t.TempDir(), "mapping.json")
	cfg.Paths.Mapping = abs

	resolved := cfg.Resolve("project")

	assert.Equal(t, filepath.Join("project", "lib"), resolved.Paths.SearchRoot)
	assert.Equal(t, filepath.Join("project", "old_implementation_diffs"), resolved.Paths.Baseline)
	assert.Equal(t, abs, resolved.Paths.Mapping)
	assert.Equal(t, "", resolved.Paths.Snapshots)
	assert.Equal(t, "project", resolved.Paths.CurrentRoot)

	// Original is untouched.
	assert.Equal(t, "lib", cfg.Paths.SearchRoot)
}
