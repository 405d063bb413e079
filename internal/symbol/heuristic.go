package symbol

// Heuristic is the capability the pipeline needs from a declaration finder.
// LineHeuristic is the only implementation; a parser-backed one can be
// substituted without touching the mapping builder or snapshot generator.
type Heuristic interface {
	Locate(name string) (Location, bool)
	Extract(loc Location) (Body, bool)
}

// LineHeuristic pairs the regex Locator with the brace-counting Extractor.
type LineHeuristic struct {
	*Locator
	*Extractor
}

// NewLineHeuristic builds a LineHeuristic searching the files selected by
// discovery and extracting at most maxLines lines per body.
func NewLineHeuristic(discovery *FileDiscovery, maxLines int) *LineHeuristic {
	return &LineHeuristic{
		Locator:   NewLocator(discovery),
		Extractor: NewExtractor(maxLines),
	}
}

var _ Heuristic = (*LineHeuristic)(nil)
