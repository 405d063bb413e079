package symbol

import (
	"strings"
	"unicode"
)

// DefaultMaxLines bounds how far the extractor scans past a declaration.
const DefaultMaxLines = 100

const (
	openDelim  = "{"
	closeDelim = "}"
)

// Body is the heuristically bounded implementation text of a symbol.
type Body struct {
	Location Location
	// Text holds the scanned lines, right-trimmed and joined with "\n".
	Text string
	// LineCount is the number of lines in Text.
	LineCount int
	// Complete is false when the window or the file ran out before the
	// nesting depth returned to zero.
	Complete bool
}

// Extractor recovers a symbol's body by counting brace nesting line by line.
//
// This is deliberately not a tokenizer: braces inside strings, template
// literals, regexes and comments are counted like any other. Size-delta
// thresholds downstream are calibrated against exactly this imprecision.
type Extractor struct {
	maxLines int
}

// NewExtractor creates an extractor scanning at most maxLines lines.
// A non-positive maxLines selects DefaultMaxLines.
func NewExtractor(maxLines int) *Extractor {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &Extractor{maxLines: maxLines}
}

// MaxLines returns the scan window.
func (e *Extractor) MaxLines() int {
	return e.maxLines
}

// Extract reads loc.File and returns the body starting at loc.Line.
// It returns false when the file cannot be read or is shorter than loc.Line.
func (e *Extractor) Extract(loc Location) (Body, bool) {
	lines, ok := readLines(loc.File)
	if !ok {
		return Body{}, false
	}
	return e.ExtractLines(lines, loc)
}

// ExtractLines runs the nesting tracker over already-loaded lines.
func (e *Extractor) ExtractLines(lines []string, loc Location) (Body, bool) {
	if loc.Line < 1 || loc.Line > len(lines) {
		return Body{}, false
	}

	start := loc.Line - 1
	end := start + e.maxLines
	if end > len(lines) {
		end = len(lines)
	}

	var (
		depth    int
		started  bool
		complete bool
		scanned  []string
	)
	for i := start; i < end; i++ {
		line := lines[i]
		scanned = append(scanned, strings.TrimRightFunc(line, unicode.IsSpace))

		depth += strings.Count(line, openDelim) - strings.Count(line, closeDelim)
		if strings.Contains(line, openDelim) {
			started = true
		}

		if started && depth == 0 {
			complete = true
			break
		}
	}

	return Body{
		Location:  loc,
		Text:      strings.Join(scanned, "\n"),
		LineCount: len(scanned),
		Complete:  complete,
	}, true
}
