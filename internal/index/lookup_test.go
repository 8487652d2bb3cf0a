package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quarry/pkg/model"
)

func registerAll(t *testing.T, tr *Tracker, defs ...*Definition) {
	t.Helper()
	for _, def := range defs {
		require.NoError(t, tr.Register(def, nopSearcher{}))
	}
}

func TestLookup_CandidatePaths(t *testing.T) {
	tr := NewTracker()
	registerAll(t, tr,
		trackerDefinition("/indexes/b"),
		trackerDefinition("/indexes/a"),
		&Definition{Path: "/indexes/other", Type: "property",
			Properties: []PropertyDefinition{{Name: "x"}}},
	)
	lookup := NewLookup(tr)

	f := &model.Filter{Path: "/content", PathRestriction: model.RestrictionAllChildren}
	// type tag filters, result is sorted for deterministic discovery
	assert.Equal(t, []string{"/indexes/a", "/indexes/b"}, lookup.CandidatePaths(f, "fulltext"))
	assert.Equal(t, []string{"/indexes/other"}, lookup.CandidatePaths(f, "property"))
}

func TestLookup_TypeScopedIndex(t *testing.T) {
	tr := NewTracker()
	typed := trackerDefinition("/indexes/assets")
	typed.DeclaringTypes = []string{"app:asset", "app:image"}
	registerAll(t, tr, typed)
	lookup := NewLookup(tr)

	unrestricted := &model.Filter{Path: "/", PathRestriction: model.RestrictionAllChildren}
	assert.Empty(t, lookup.CandidatePaths(unrestricted, "fulltext"))

	matching := &model.Filter{
		Path:            "/",
		PathRestriction: model.RestrictionAllChildren,
		PrimaryTypes:    []string{"app:asset"},
	}
	assert.Equal(t, []string{"/indexes/assets"}, lookup.CandidatePaths(matching, "fulltext"))

	undeclared := &model.Filter{
		Path:            "/",
		PathRestriction: model.RestrictionAllChildren,
		PrimaryTypes:    []string{"app:asset", "app:page"},
	}
	assert.Empty(t, lookup.CandidatePaths(undeclared, "fulltext"))
}

func TestLookup_PathScopedIndex(t *testing.T) {
	tr := NewTracker()
	scoped := trackerDefinition("/indexes/dam")
	scoped.IncludedPaths = []string{"/content/dam"}
	registerAll(t, tr, scoped)
	lookup := NewLookup(tr)

	inside := &model.Filter{Path: "/content/dam/images", PathRestriction: model.RestrictionAllChildren}
	assert.Equal(t, []string{"/indexes/dam"}, lookup.CandidatePaths(inside, "fulltext"))

	// a subtree query above the scope still reaches the index
	above := &model.Filter{Path: "/content", PathRestriction: model.RestrictionAllChildren}
	assert.Equal(t, []string{"/indexes/dam"}, lookup.CandidatePaths(above, "fulltext"))

	// but not with a narrower restriction mode
	aboveExact := &model.Filter{Path: "/content", PathRestriction: model.RestrictionExact}
	assert.Empty(t, lookup.CandidatePaths(aboveExact, "fulltext"))

	outside := &model.Filter{Path: "/var", PathRestriction: model.RestrictionAllChildren}
	assert.Empty(t, lookup.CandidatePaths(outside, "fulltext"))

	unrestricted := &model.Filter{PathRestriction: model.RestrictionNone}
	assert.Empty(t, lookup.CandidatePaths(unrestricted, "fulltext"))
}
