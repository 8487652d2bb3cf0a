package index

import "fmt"

// Facet is one facet bucket: a label and its hit count.
type Facet struct {
	Label string
	Count int
}

// Row is one raw hit emitted by a searcher: either a Match (a content
// hit) or a Suggestion (a spell-check/suggestion hit). The set of
// implementations is closed; consumers branch with a type switch.
type Row interface {
	fmt.Stringer

	resultRow()
}

// Match is a content hit.
type Match struct {
	// Path is the hit path relative to the index scope.
	Path string
	// Score is the engine's relevance score.
	Score float64
	// Excerpts maps overlay column names to highlighted fragments.
	// Nil when excerpts were not requested.
	Excerpts map[string]string
	// Facets are the ordered facet buckets, nil when not requested.
	Facets []Facet
	// Explanation is the engine's score explanation, empty when not
	// requested.
	Explanation string
}

func (m *Match) resultRow() {}

func (m *Match) String() string {
	return fmt.Sprintf("%s (%1.2f)", m.Path, m.Score)
}

// Suggestion is a virtual hit carrying a spell-check or suggestion
// result instead of a content match. Its path is the store root.
type Suggestion struct {
	// Text is the suggested term or phrase.
	Text string
	// Weight ranks the suggestion and doubles as its score.
	Weight float64
}

func (s *Suggestion) resultRow() {}

func (s *Suggestion) String() string {
	return fmt.Sprintf("/ (%1.2f)", s.Weight)
}

// Path returns the output path of a row: the match path for content
// hits, the store root for suggestions.
func Path(r Row) string {
	if m, ok := r.(*Match); ok {
		return m.Path
	}
	return "/"
}

// Score returns the relevance score of a row.
func Score(r Row) float64 {
	switch x := r.(type) {
	case *Match:
		return x.Score
	case *Suggestion:
		return x.Weight
	}
	return 0
}
