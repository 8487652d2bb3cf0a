package fulltext

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"quarry/internal/index"
	"quarry/pkg/model"
)

// fakeSearcher is a canned index engine.
type fakeSearcher struct {
	request  string
	rows     []index.Row
	execErr  error
	estimate int64
	// estimates counts Estimate invocations.
	estimates int
}

func (s *fakeSearcher) RequestString(*index.Request) string { return s.request }

func (s *fakeSearcher) Execute(ctx context.Context, req *index.Request) (index.RowSource, error) {
	if s.execErr != nil {
		return nil, s.execErr
	}
	return index.NewSliceSource(s.rows), nil
}

func (s *fakeSearcher) Estimate(*index.Request) int64 {
	s.estimates++
	return s.estimate
}

// fakeHandle counts releases and can simulate a defective index by
// panicking when its definition is read.
type fakeHandle struct {
	def      *index.Definition
	searcher index.Searcher
	releases int
	broken   bool
}

func (h *fakeHandle) Definition() *index.Definition {
	if h.broken {
		panic("corrupt index metadata")
	}
	return h.def
}

func (h *fakeHandle) Searcher() index.Searcher { return h.searcher }

func (h *fakeHandle) Release() { h.releases++ }

// fakeRegistry hands out fakeHandles by path. A path mapped in errs
// fails acquisition; a path absent from handles is unavailable.
type fakeRegistry struct {
	handles  map[string]*fakeHandle
	errs     map[string]error
	acquires int
}

func (r *fakeRegistry) Acquire(path, typeTag string) (Handle, error) {
	r.acquires++
	if err := r.errs[path]; err != nil {
		return nil, err
	}
	h, ok := r.handles[path]
	if !ok {
		return nil, nil
	}
	return h, nil
}

// fakeLookup returns a fixed candidate list.
type fakeLookup struct {
	paths []string
}

func (l *fakeLookup) CandidatePaths(*model.Filter, string) []string { return l.paths }

// testDefinition returns a definition serving full-text queries with
// one sync property and one ordered property.
func testDefinition(path string) *index.Definition {
	def := &index.Definition{
		Path: path,
		Type: "fulltext",
		Properties: []index.PropertyDefinition{
			{Name: "title", Analyzed: true},
			{Name: "body", Analyzed: true},
			{Name: "tag", Field: "tag_s", Sync: true, Facets: true},
			{Name: "date", Ordered: true},
		},
	}
	if err := index.ValidateDefinition(def); err != nil {
		panic(fmt.Sprintf("invalid test definition: %v", err))
	}
	return def
}

func fulltextFilter(text string) *model.Filter {
	return &model.Filter{
		Path:            "/content",
		PathRestriction: model.RestrictionAllChildren,
		FullText:        &model.FullTextTerm{Text: text},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestSelector(t *testing.T, reg Registry, lookup CandidateSource) *Selector {
	t.Helper()
	return NewSelector(reg, lookup, "fulltext", discardLogger())
}
