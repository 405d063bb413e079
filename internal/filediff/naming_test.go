package filediff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"lib/index.ts":    "lib-index-ts",
		`lib\win\path.js`: "lib-win-path-js",
		"a.b.c":           "a-b-c",
		"plain":           "plain",
		"":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Sanitize(in), in)
	}
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t,
		"mammoth_before_refactoring-lib-index-js-v--lib-index-ts",
		ArtifactName("mammoth_before_refactoring/lib/index.js", "lib/index.ts", DefaultSeparator))

	assert.Equal(t, "legacy-x-js-v--root", ArtifactName("legacy/x.js", ".", DefaultSeparator))
	assert.Equal(t, "a-js__b-ts", ArtifactName("a.js", "b.ts", "__"))
}
