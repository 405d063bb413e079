package symbol

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// errStopWalk ends a discovery walk early without reporting an error.
var errStopWalk = errors.New("stop walk")

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery lists the source files under a root directory that the
// locator is allowed to visit.
//
// Traversal is lexicographic by path (fs.WalkDir order), which makes
// "first match wins" deterministic across filesystems.
type FileDiscovery struct {
	rootDir         string
	includePatterns []compiledPattern
	ignorePatterns  []compiledPattern
}

// NewFileDiscovery creates a new file discovery instance.
func NewFileDiscovery(rootDir string, includePatterns, ignorePatterns []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		rootDir: rootDir,
	}

	var err error
	if fd.includePatterns, err = compilePatterns(includePatterns); err != nil {
		return nil, err
	}
	if fd.ignorePatterns, err = compilePatterns(ignorePatterns); err != nil {
		return nil, err
	}

	return fd, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
	}
	return compiled, nil
}

// RootDir returns the directory being searched.
func (fd *FileDiscovery) RootDir() string {
	return fd.rootDir
}

// Walk calls fn for every eligible file in traversal order. Returning
// errStopWalk from fn ends the walk cleanly. Unreadable subdirectories are
// skipped; only a missing or unreadable root is reported.
func (fd *FileDiscovery) Walk(fn func(path string) error) error {
	err := filepath.WalkDir(fd.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == fd.rootDir {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && fd.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if fd.shouldIgnore(relPath) || !fd.matchesAnyPattern(relPath, fd.includePatterns) {
			return nil
		}

		return fn(path)
	})
	if errors.Is(err, errStopWalk) {
		return nil
	}
	return err
}

// DiscoverFiles returns every eligible file in traversal order.
func (fd *FileDiscovery) DiscoverFiles() ([]string, error) {
	files := []string{}
	err := fd.Walk(func(path string) error {
		files = append(files, path)
		return nil
	})
	return files, err
}

// shouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	if fd.matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// "node_modules" should match pattern "node_modules/**"
	return fd.matchesAnyPattern(relPath+"/**", fd.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func (fd *FileDiscovery) matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Make "**/*.ts" match both "index.ts" and "docx/body.ts".
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if simplifiedGlob, err := glob.Compile(simplified, '/'); err == nil {
					if simplifiedGlob.Match(path) {
						return true
					}
				}
			}
		}
	}

	return false
}
