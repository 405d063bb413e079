package mapping

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrArtifactNotFound indicates the mapping artifact does not exist.
	// Downstream stages cannot run without it.
	ErrArtifactNotFound = errors.New("mapping artifact not found")

	// ErrUnsupportedFormat indicates an artifact extension with no codec.
	ErrUnsupportedFormat = errors.New("unsupported mapping format")
)

// Format is a mapping artifact encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

// FormatFor picks the codec from the artifact's extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Persist writes store to path, replacing any previous artifact content.
func Persist(path string, store *Store) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create mapping directory: %w", err)
		}
	}

	switch format {
	case FormatSQLite:
		return persistSQLite(path, store)
	default:
		return persistJSON(path, store)
	}
}

// Load reads the artifact at path.
func Load(path string) (*Store, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat mapping artifact: %w", err)
	}

	switch format {
	case FormatSQLite:
		return loadSQLite(path)
	default:
		return loadJSON(path)
	}
}
