package filediff

import (
	"strings"
)

// DefaultSeparator joins the two sanitized paths of a diff artifact name.
const DefaultSeparator = "-v--"

var sanitizer = strings.NewReplacer("/", "-", "\\", "-", ".", "-")

// Sanitize flattens a path into a file name by replacing separators and
// dots with dashes.
func Sanitize(path string) string {
	return sanitizer.Replace(path)
}

// ArtifactName returns the diff artifact file name for a legacy path and a
// target path relative to the current root. A target of "." becomes "root".
func ArtifactName(legacyPath, targetRel, separator string) string {
	target := "root"
	if targetRel != "." {
		target = Sanitize(targetRel)
	}
	return Sanitize(legacyPath) + separator + target
}
