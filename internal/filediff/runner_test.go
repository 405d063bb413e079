package filediff

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the whole-file diff pass:
// - A legacy .js file pairs with the .ts counterpart before the exact path
// - .tsx is tried after .ts, the exact relative path last
// - Files without a counterpart are reported and produce no artifact
// - Excluded names, skipped directories and generated files are never diffed
// - Exit status 1 writes the artifact with stats; 0 writes an empty artifact
// - Exit status above 1 or a tool failure is recorded and the pass continues
// - A missing legacy root is an error
// - Clean removes only separator-named files
// - ExecDiffer runs the real tool when available

const sampleUnified = `--- legacy/lib/index.js	2024-01-01 00:00:00.000000000 +0000
+++ lib/index.ts	2024-01-02 00:00:00.000000000 +0000
@@ -1,3 +1,3 @@
 const a = 1;
-const b = 2;
+const b: number = 2;
 export { a, b };
`

type fakeDiffer struct {
	calls  [][2]string
	result map[string]*Output // keyed by slash legacy path
	errs   map[string]error
}

func (f *fakeDiffer) Diff(_ context.Context, legacyPath, targetPath string) (*Output, error) {
	key := filepath.ToSlash(legacyPath)
	f.calls = append(f.calls, [2]string{key, filepath.ToSlash(targetPath)})
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if out, ok := f.result[key]; ok {
		return out, nil
	}
	return &Output{ExitCode: 1, Stdout: []byte(sampleUnified)}, nil
}

type recordingProgress struct {
	pairs []Pair
}

func (r *recordingProgress) OnPairCompared(p Pair) { r.pairs = append(r.pairs, p) }

// setupTrees creates files (relative to a fresh working directory) and
// switches into it so artifact names use relative paths.
func setupTrees(t *testing.T, files map[string]string) {
	t.Helper()

	work := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(work, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(work))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func testOptions() Options {
	return Options{
		LegacyRoot:       "legacy",
		CurrentRoot:      ".",
		OutputDir:        "diffs",
		Separator:        DefaultSeparator,
		Exclude:          []string{"package.json", "README.md"},
		SkipDirs:         []string{"node_modules", ".git"},
		GeneratedMarkers: []string{"barrelsby"},
		MarkerWindow:     100,
		TargetExtensions: []string{".ts", ".tsx"},
	}
}

func pairByLegacy(t *testing.T, report *Report, legacy string) Pair {
	t.Helper()

	for _, p := range report.Pairs {
		if p.LegacyPath == legacy {
			return p
		}
	}
	t.Fatalf("no pair for %s", legacy)
	return Pair{}
}

func TestRun_PairsAndWritesArtifacts(t *testing.T) {
	setupTrees(t, map[string]string{
		"legacy/lib/index.js":  "const a = 1;\n",
		"legacy/lib/view.js":   "view\n",
		"legacy/lib/data.json": "{}\n",
		"legacy/lib/orphan.js": "orphan\n",
		"lib/index.ts":         "const a = 1;\n",
		"lib/index.js":         "stale\n",
		"lib/view.tsx":         "view\n",
		"lib/data.json":        "{}\n",
	})

	differ := &fakeDiffer{result: map[string]*Output{
		"legacy/lib/data.json": {ExitCode: 0},
	}}
	progress := &recordingProgress{}
	opts := testOptions()
	opts.Progress = progress

	report, err := NewRunner(differ, opts).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Pairs, 4)
	assert.Len(t, progress.pairs, 4)

	index := pairByLegacy(t, report, "legacy/lib/index.js")
	assert.Equal(t, StatusDiffed, index.Status)
	assert.Equal(t, "lib/index.ts", index.TargetPath)
	assert.Equal(t, Stats{Hunks: 1, Added: 0, Changed: 1, Deleted: 0}, index.Stats)

	artifact := filepath.Join("diffs", "legacy-lib-index-js-v--lib-index-ts")
	assert.Equal(t, artifact, index.ArtifactPath)
	content, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Equal(t, sampleUnified, string(content))

	view := pairByLegacy(t, report, "legacy/lib/view.js")
	assert.Equal(t, "lib/view.tsx", view.TargetPath)

	data := pairByLegacy(t, report, "legacy/lib/data.json")
	assert.Equal(t, StatusIdentical, data.Status)
	assert.Equal(t, "lib/data.json", data.TargetPath)
	content, err = os.ReadFile(data.ArtifactPath)
	require.NoError(t, err)
	assert.Empty(t, content)

	orphan := pairByLegacy(t, report, "legacy/lib/orphan.js")
	assert.Equal(t, StatusNoTarget, orphan.Status)
	assert.Empty(t, orphan.ArtifactPath)

	assert.Equal(t, 1, report.Count(StatusDiffed))
	assert.Equal(t, 1, report.Count(StatusNoTarget))
	assert.Len(t, differ.calls, 3)
}

func TestRun_SkipsExcludedAndGenerated(t *testing.T) {
	setupTrees(t, map[string]string{
		"legacy/package.json":          "{}\n",
		"legacy/README.md":             "readme\n",
		"legacy/node_modules/dep/x.js": "dep\n",
		"legacy/lib/barrel.js":         "// @file Automatically generated by barrelsby.\n",
		"legacy/lib/late.js":           string(make([]byte, 200)) + "barrelsby\n",
		"package.json":                 "{}\n",
		"lib/barrel.ts":                "\n",
		"lib/late.ts":                  "\n",
	})

	differ := &fakeDiffer{}
	report, err := NewRunner(differ, testOptions()).Run(context.Background())
	require.NoError(t, err)

	// Only the file whose marker lies past the window is diffed.
	require.Len(t, report.Pairs, 1)
	assert.Equal(t, "legacy/lib/late.js", report.Pairs[0].LegacyPath)

	skipped := append([]string(nil), report.Skipped...)
	sort.Strings(skipped)
	assert.Equal(t, []string{"legacy/README.md", "legacy/lib/barrel.js", "legacy/package.json"}, skipped)
	for _, call := range differ.calls {
		assert.NotContains(t, call[0], "node_modules")
	}
}

func TestRun_FailuresDoNotStopThePass(t *testing.T) {
	setupTrees(t, map[string]string{
		"legacy/a.js": "a\n",
		"legacy/b.js": "b\n",
		"legacy/c.js": "c\n",
		"a.ts":        "a\n",
		"b.ts":        "b\n",
		"c.ts":        "c\n",
	})

	differ := &fakeDiffer{
		result: map[string]*Output{
			"legacy/a.js": {ExitCode: 2, Stderr: []byte("diff: broken pipe\n")},
		},
		errs: map[string]error{
			"legacy/b.js": errors.New("tool missing"),
		},
	}
	report, err := NewRunner(differ, testOptions()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Pairs, 3)

	failures := report.Failures()
	require.Len(t, failures, 2)
	assert.Contains(t, failures[0].Err.Error(), "status 2")
	assert.Contains(t, failures[0].Err.Error(), "broken pipe")
	assert.Contains(t, failures[1].Err.Error(), "tool missing")

	assert.NoFileExists(t, filepath.Join("diffs", "legacy-a-js-v--a-ts"))
	assert.FileExists(t, filepath.Join("diffs", "legacy-c-js-v--c-ts"))
	assert.Equal(t, StatusDiffed, pairByLegacy(t, report, "legacy/c.js").Status)
}

func TestRun_MissingLegacyRoot(t *testing.T) {
	setupTrees(t, map[string]string{"lib/x.ts": "x\n"})

	_, err := NewRunner(&fakeDiffer{}, testOptions()).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_Cancelled(t *testing.T) {
	setupTrees(t, map[string]string{"legacy/a.js": "a\n", "a.ts": "a\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(&fakeDiffer{}, testOptions()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseStats(t *testing.T) {
	assert.Equal(t, Stats{}, ParseStats(nil))
	assert.Equal(t, Stats{}, ParseStats([]byte("not a diff")))

	st := ParseStats([]byte(sampleUnified))
	assert.Equal(t, 1, st.Hunks)
	assert.Equal(t, int32(1), st.Changed)
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a-js-v--a-ts", "b-js-v--root", "Foo.js", "Foo_local.js", "_inexistent.js"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "keep-v--dir"), 0755))

	removed, err := Clean(dir, DefaultSeparator)
	require.NoError(t, err)
	sort.Strings(removed)
	assert.Equal(t, []string{"a-js-v--a-ts", "b-js-v--root"}, removed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var left []string
	for _, e := range entries {
		left = append(left, e.Name())
	}
	assert.ElementsMatch(t, []string{"Foo.js", "Foo_local.js", "_inexistent.js", "keep-v--dir"}, left)

	removed, err = Clean(filepath.Join(dir, "missing"), DefaultSeparator)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestExecDiffer(t *testing.T) {
	if _, err := exec.LookPath("diff"); err != nil {
		t.Skip("diff not available")
	}

	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("one\ntwo\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("one\nthree\n"), 0644))

	d := NewExecDiffer("")
	out, err := d.Diff(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, 1, out.ExitCode)
	assert.Contains(t, string(out.Stdout), "+three")

	st := ParseStats(out.Stdout)
	assert.Equal(t, 1, st.Hunks)

	out, err = d.Diff(context.Background(), a, a)
	require.NoError(t, err)
	assert.Equal(t, 0, out.ExitCode)
	assert.Empty(t, out.Stdout)

	out, err = d.Diff(context.Background(), a, filepath.Join(dir, "missing.txt"))
	require.NoError(t, err)
	assert.Equal(t, 2, out.ExitCode)
	assert.NotEmpty(t, out.Stderr)

	_, err = NewExecDiffer("definitely-not-a-diff-tool").Diff(context.Background(), a, b)
	assert.Error(t, err)
}
