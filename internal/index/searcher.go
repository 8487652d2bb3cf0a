package index

import (
	"context"

	"quarry/pkg/model"
)

// Constraint is an equality constraint pushed down to the index.
type Constraint struct {
	Field string
	Value any
}

// SortField is one element of a requested sort order.
type SortField struct {
	Field      string
	Descending bool
}

// Request is the executable form of a plan for one index: the
// constraints the planner decided the index can serve, in the shape
// the searcher consumes. It is built once at planning time and is
// read-only afterwards.
type Request struct {
	// IndexPath is the logical path of the serving index.
	IndexPath string
	// Query is the index-safe full-text query text, empty when the
	// filter has no full-text constraint.
	Query string
	// Constraints are pushed-down property constraints.
	Constraints []Constraint
	// Sort is the sort order the index will apply.
	Sort []SortField
	// ScopePath and ScopeMode carry the filter's path restriction,
	// relative to the plan's path prefix. The searcher may filter
	// coarsely; consumers post-filter for precision.
	ScopePath string
	ScopeMode model.PathRestriction
	// FacetFields requests facet counts per field.
	FacetFields []string
	// SuggestText, when non-empty, turns the request into a
	// suggestion/spell-check query producing virtual rows.
	SuggestText string
}

// RowSource is a pull iterator over raw hits. Next advances and
// reports whether a row is available; Row returns the current row.
// Iteration is single-threaded.
type RowSource interface {
	Next() bool
	Row() Row
	Err() error
}

// Searcher is the opaque index engine behind a handle. Implementations
// never mutate shared index state through this interface.
type Searcher interface {
	// RequestString serializes the request in the engine's own syntax,
	// for plan descriptions.
	RequestString(req *Request) string

	// Execute runs the request and returns the raw hit sequence.
	Execute(ctx context.Context, req *Request) (RowSource, error)

	// Estimate returns the approximate result count for the request.
	Estimate(req *Request) int64
}

// SliceSource is a RowSource over a fixed slice of rows.
type SliceSource struct {
	rows []Row
	pos  int
	cur  Row
}

// NewSliceSource creates a RowSource yielding the given rows in order.
func NewSliceSource(rows []Row) *SliceSource {
	return &SliceSource{rows: rows}
}

func (s *SliceSource) Next() bool {
	if s.pos >= len(s.rows) {
		return false
	}
	s.cur = s.rows[s.pos]
	s.pos++
	return true
}

func (s *SliceSource) Row() Row { return s.cur }

func (s *SliceSource) Err() error { return nil }
