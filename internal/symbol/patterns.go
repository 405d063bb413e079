package symbol

import (
	"fmt"
	"regexp"
)

// Kind names the declaration style a pattern recognizes.
type Kind string

const (
	KindFunction         Kind = "function"
	KindConst            Kind = "const"
	KindClass            Kind = "class"
	KindQualifiedFunc    Kind = "qualified_function"
	KindExportListExport Kind = "export_list"
)

// Pattern is one heuristic way a symbol may be declared on a single line.
type Pattern struct {
	Kind Kind
	Re   *regexp.Regexp
}

// patternTemplates are tried in this order; the first match on a line wins.
// %s is replaced with the regex-quoted symbol name.
var patternTemplates = []struct {
	kind     Kind
	template string
}{
	{KindFunction, `function %s\s*\(`},
	{KindConst, `(export\s+)?const\s+%s\s*[=:]`},
	{KindClass, `(export\s+)?class\s+%s\b`},
	{KindQualifiedFunc, `(export\s+)?(async\s+)?function\s+%s\b`},
	{KindExportListExport, `^export\s*\{.*\b%s\b`},
}

// Matcher holds the ordered declaration patterns for one symbol name.
// A Matcher is immutable and safe to reuse across files.
type Matcher struct {
	name     string
	patterns []Pattern
}

// NewMatcher compiles the declaration patterns for name.
// Names are matched literally, so regex metacharacters in name are harmless.
func NewMatcher(name string) *Matcher {
	quoted := regexp.QuoteMeta(name)
	patterns := make([]Pattern, 0, len(patternTemplates))
	for _, pt := range patternTemplates {
		patterns = append(patterns, Pattern{
			Kind: pt.kind,
			Re:   regexp.MustCompile(fmt.Sprintf(pt.template, quoted)),
		})
	}
	return &Matcher{name: name, patterns: patterns}
}

// Name returns the symbol name the matcher was built for.
func (m *Matcher) Name() string {
	return m.name
}

// Patterns returns the patterns in priority order.
func (m *Matcher) Patterns() []Pattern {
	return m.patterns
}

// Match reports the kind of the first pattern matching line.
func (m *Matcher) Match(line string) (Kind, bool) {
	for _, p := range m.patterns {
		if p.Re.MatchString(line) {
			return p.Kind, true
		}
	}
	return "", false
}
