package cli

// Test Plan for the symbol pipeline commands:
// - executeMap persists one entry per baseline symbol and ignores snapshots and the manifest
// - executeMap fails when the baseline directory or the search root is missing
// - executeMap writes a SQLite artifact when the mapping path ends in .db and records the revision
// - findAmbiguous reports symbols declared in more than one file, first file first
// - loadMapping fails with ErrArtifactNotFound before map has run
// - executeSnapshot writes snapshots and the manifest from a loaded mapping
// - executePipeline runs all four stages and flags drifted symbols
// - loadConfig resolves paths against --root and reads an explicit --config file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthrod/refaudit/internal/git"
	"github.com/arthrod/refaudit/internal/mapping"
	"github.com/arthrod/refaudit/internal/snapshot"
)

func pipelineFixture() map[string]string {
	return map[string]string{
		"old_implementation_diffs/Foo.js":         "function Foo() { return 1; }\n",
		"old_implementation_diffs/Styles.js":      "class Styles {\n  get() { return 1; }\n}\n",
		"old_implementation_diffs/Missing.js":     "function Missing() {}\n",
		"old_implementation_diffs/Foo_local.js":   "// stale snapshot\n",
		"old_implementation_diffs/_inexistent.js": "// Functions not found in current codebase:\n",
		"lib/foo.ts":                              "import x from 'y';\n\n\n\nfunction Foo() { return 1; }\n",
		"lib/styles/index.ts":                     "export class Styles {\n  get() {\n    return computeAllTheStylesFromScratch(1, 2, 3);\n  }\n}\n",
		"lib/node_modules/dep/foo.ts":             "function Missing() {}\n",
	}
}

func TestExecuteMap_PersistsMapping(t *testing.T) {
	root, cfg := setupProject(t, pipelineFixture())

	store, err := executeMap(context.Background(), cfg, true, false)
	require.NoError(t, err)

	require.Len(t, store.Found, 2)
	assert.Equal(t, "Foo", store.Found[0].Name)
	assert.Equal(t, filepath.ToSlash(filepath.Join(root, "lib", "foo.ts")), store.Found[0].Location.File)
	assert.Equal(t, 5, store.Found[0].Location.Line)
	assert.Equal(t, "Styles", store.Found[1].Name)
	assert.Equal(t, []string{"Missing"}, store.NotFound)

	loaded, err := mapping.Load(cfg.Paths.Mapping)
	require.NoError(t, err)
	assert.Equal(t, store, loaded)
}

func TestExecuteMap_SQLiteArtifact(t *testing.T) {
	root, cfg := setupProject(t, pipelineFixture())
	cfg.Paths.Mapping = filepath.Join(root, "mapping.db")

	mock := git.NewMockGitOps()
	mock.Branch = "refactor/docx"
	oldOps := gitOps
	gitOps = mock
	t.Cleanup(func() { gitOps = oldOps })

	store, err := executeMap(context.Background(), cfg, true, false)
	require.NoError(t, err)

	loaded, err := mapping.Load(cfg.Paths.Mapping)
	require.NoError(t, err)
	assert.Equal(t, store, loaded)

	info, err := mapping.ReadRunInfo(cfg.Paths.Mapping)
	require.NoError(t, err)
	assert.Equal(t, "refactor/docx", info.Branch)
	assert.Equal(t, mock.Commit, info.Commit)
}

func TestExecuteMap_MissingPrerequisites(t *testing.T) {
	_, cfg := setupProject(t, map[string]string{"lib/foo.ts": "function Foo() {}\n"})
	_, err := executeMap(context.Background(), cfg, true, false)
	assert.Error(t, err)

	_, cfg = setupProject(t, map[string]string{"old_implementation_diffs/Foo.js": "x\n"})
	_, err = executeMap(context.Background(), cfg, true, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindAmbiguous(t *testing.T) {
	root, cfg := setupProject(t, map[string]string{
		"old_implementation_diffs/Run.js":  "x\n",
		"old_implementation_diffs/Only.js": "x\n",
		"lib/a/run.ts":                     "export class Run {}\n",
		"lib/b/run.ts":                     "class Run {}\n",
		"lib/only.ts":                      "const Only = 1;\n",
	})

	store, err := executeMap(context.Background(), cfg, true, false)
	require.NoError(t, err)

	heuristic, err := newHeuristic(cfg)
	require.NoError(t, err)

	ambiguous := findAmbiguous(heuristic.Locator, store)
	require.Len(t, ambiguous, 1)
	assert.Equal(t, "Run", ambiguous[0].Name)
	require.Len(t, ambiguous[0].Locations, 2)
	assert.Equal(t, filepath.ToSlash(filepath.Join(root, "lib", "a", "run.ts")), ambiguous[0].Locations[0].File)

	found, ok := store.Lookup("Run")
	require.True(t, ok)
	assert.Equal(t, ambiguous[0].Locations[0], found)
}

func TestLoadMapping_MissingArtifact(t *testing.T) {
	_, cfg := setupProject(t, nil)

	_, err := loadMapping(cfg)
	assert.ErrorIs(t, err, mapping.ErrArtifactNotFound)
}

func TestExecuteSnapshot(t *testing.T) {
	_, cfg := setupProject(t, pipelineFixture())

	_, err := executeMap(context.Background(), cfg, true, false)
	require.NoError(t, err)
	store, err := loadMapping(cfg)
	require.NoError(t, err)

	result, err := executeSnapshot(context.Background(), cfg, store, true, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Generated)
	assert.Equal(t, 1, result.NotFound)

	naming := namingFor(cfg)
	foo := readProjectFile(t, naming.SnapshotPath(cfg.SnapshotDir(), "Foo"))
	assert.True(t, strings.HasPrefix(foo, "// "))
	assert.Contains(t, foo, "lib/foo.ts:5\nfunction Foo() { return 1; }\n")

	manifest := readProjectFile(t, filepath.Join(cfg.SnapshotDir(), naming.ManifestFile()))
	assert.Equal(t, snapshot.ManifestHeader+"\n// - Missing\n", manifest)

	// The baseline itself is untouched.
	assert.Equal(t, "function Foo() { return 1; }\n",
		readProjectFile(t, naming.BaselinePath(cfg.Paths.Baseline, "Foo")))
}

func TestExecutePipeline(t *testing.T) {
	_, cfg := setupProject(t, pipelineFixture())
	cfg.Verify.CriticalSymbols = []string{"Styles", "Missing", "Absent"}

	result, err := executePipeline(context.Background(), cfg, true, false)
	require.NoError(t, err)

	// Foo's snapshot only adds the provenance line to a small body, so it
	// drifts well past 30%; Styles grew too.
	assert.Equal(t, 2, result.Sizes.Checked)
	names := make([]string, 0, len(result.Sizes.Flagged))
	for _, d := range result.Sizes.Flagged {
		names = append(names, d.Name)
		assert.Greater(t, d.Delta, cfg.Verify.BulkThreshold)
		assert.NotEmpty(t, d.Location)
	}
	assert.ElementsMatch(t, []string{"Foo", "Styles"}, names)

	require.Len(t, result.Critical.Results, 2)
	assert.Equal(t, "FOUND", result.Critical.Results[0].Status())
	assert.Equal(t, "NOT FOUND", result.Critical.Results[1].Status())
	assert.Equal(t, 1, result.Critical.FoundCount())
}

func TestLoadConfig_ResolvesAgainstRoot(t *testing.T) {
	root := t.TempDir()
	oldRoot, oldFile := rootDir, cfgFile
	t.Cleanup(func() { rootDir, cfgFile = oldRoot, oldFile })

	rootDir, cfgFile = root, ""
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "lib"), cfg.Paths.SearchRoot)
	assert.Equal(t, filepath.Join(root, "function_mapping.json"), cfg.Paths.Mapping)

	path := filepath.Join(root, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("paths:\n  search_root: src\n"), 0644))
	cfgFile = path
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src"), cfg.Paths.SearchRoot)
}
