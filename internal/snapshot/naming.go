package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Naming holds the reserved file naming conventions of a baseline directory.
// Baseline artifacts are "<Symbol><ext>"; generated snapshots are
// "<Symbol><suffix><ext>"; the not-found manifest is "<manifest><ext>".
type Naming struct {
	BaselineExt    string
	SnapshotSuffix string
	ManifestName   string
}

// DefaultNaming returns the .js baseline conventions: Foo.js, Foo_local.js
// and _inexistent.js.
func DefaultNaming() Naming {
	return Naming{
		BaselineExt:    ".js",
		SnapshotSuffix: "_local",
		ManifestName:   "_inexistent",
	}
}

// BaselineFile returns the baseline artifact file name for a symbol.
func (n Naming) BaselineFile(name string) string {
	return name + n.BaselineExt
}

// SnapshotFile returns the generated snapshot file name for a symbol.
func (n Naming) SnapshotFile(name string) string {
	return name + n.SnapshotSuffix + n.BaselineExt
}

// ManifestFile returns the aggregate not-found manifest file name.
func (n Naming) ManifestFile() string {
	return n.ManifestName + n.BaselineExt
}

// IsSnapshot reports whether filename follows the generated snapshot convention.
func (n Naming) IsSnapshot(filename string) bool {
	stem, ok := strings.CutSuffix(filename, n.BaselineExt)
	return ok && strings.HasSuffix(stem, n.SnapshotSuffix)
}

// SymbolName returns the symbol a baseline artifact file name stands for.
// Snapshots, the manifest and files with another extension are not baselines.
func (n Naming) SymbolName(filename string) (string, bool) {
	stem, ok := strings.CutSuffix(filename, n.BaselineExt)
	if !ok || stem == "" {
		return "", false
	}
	if stem == n.ManifestName || strings.HasSuffix(stem, n.SnapshotSuffix) {
		return "", false
	}
	return stem, true
}

// SymbolNames lists the symbol names of every baseline artifact in dir,
// sorted. A missing directory is an error: nothing downstream can run.
func (n Naming) SymbolNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline directory: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := n.SymbolName(entry.Name()); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return names, nil
}

// SnapshotPath joins dir and the snapshot file name for a symbol.
func (n Naming) SnapshotPath(dir, name string) string {
	return filepath.Join(dir, n.SnapshotFile(name))
}

// BaselinePath joins dir and the baseline file name for a symbol.
func (n Naming) BaselinePath(dir, name string) string {
	return filepath.Join(dir, n.BaselineFile(name))
}
