package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthrod/refaudit/internal/config"
)

// setupProject creates files (relative path -> content) under a fresh
// project root and returns the default configuration resolved against it.
func setupProject(t *testing.T, files map[string]string) (string, *config.Config) {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root, config.Default().Resolve(root)
}

func readProjectFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
