package fulltext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quarry/internal/index"
	"quarry/pkg/model"
)

// planOne runs planning against a single fake index and returns the
// resulting plan, or nil when the index declined the filter.
func planOne(t *testing.T, def *index.Definition, filter *model.Filter, order []OrderEntry) *IndexPlan {
	t.Helper()
	reg := &fakeRegistry{handles: map[string]*fakeHandle{
		def.Path: {def: def, searcher: &fakeSearcher{}},
	}}
	s := newTestSelector(t, reg, &fakeLookup{paths: []string{def.Path}})

	plans, err := s.GetPlans(context.Background(), filter, order)
	require.NoError(t, err)
	if len(plans) == 0 {
		return nil
	}
	require.Len(t, plans, 1)
	return plans[0]
}

func equalityRestriction(name string, value any) model.PropertyRestriction {
	return model.PropertyRestriction{
		Property:       name,
		First:          value,
		FirstIncluding: true,
		Last:           value,
		LastIncluding:  true,
	}
}

func TestPlanner_Cost(t *testing.T) {
	// Defaults: 1000 entries, costPerQuery 2, costPerEntry 1.
	filter := fulltextFilter("hello")
	plan := planOne(t, testDefinition("/indexes/a"), filter, nil)
	require.NotNil(t, plan)
	// full-text divides the expected entries by 5
	assert.Equal(t, 202.0, plan.Cost)

	filter = fulltextFilter("hello")
	filter.PropertyRestrictions = []model.PropertyRestriction{equalityRestriction("tag", "red")}
	plan = planOne(t, testDefinition("/indexes/a"), filter, nil)
	require.NotNil(t, plan)
	// each matched restriction halves the expected entries first
	assert.Equal(t, 102.0, plan.Cost)
}

func TestPlanner_CostFloorsAtOneEntry(t *testing.T) {
	def := testDefinition("/indexes/tiny")
	def.EntryCount = 1
	filter := fulltextFilter("hello")
	filter.PropertyRestrictions = []model.PropertyRestriction{equalityRestriction("tag", "red")}

	plan := planOne(t, def, filter, nil)
	require.NotNil(t, plan)
	assert.Equal(t, 3.0, plan.Cost)
}

func TestPlanner_RequiresAnalyzedPropertyForFullText(t *testing.T) {
	def := testDefinition("/indexes/props-only")
	for i := range def.Properties {
		def.Properties[i].Analyzed = false
	}
	assert.Nil(t, planOne(t, def, fulltextFilter("hello"), nil))
}

func TestPlanner_DeclinesFilterWithNothingToEvaluate(t *testing.T) {
	// No full text, no suggestion, and the only restriction names a
	// property the index does not know.
	filter := &model.Filter{
		Path:                 "/content",
		PathRestriction:      model.RestrictionAllChildren,
		PropertyRestrictions: []model.PropertyRestriction{equalityRestriction("unknown", "x")},
	}
	assert.Nil(t, planOne(t, testDefinition("/indexes/a"), filter, nil))
}

func TestPlanner_PropertyOnlyPlan(t *testing.T) {
	filter := &model.Filter{
		Path:                 "/content",
		PathRestriction:      model.RestrictionAllChildren,
		PropertyRestrictions: []model.PropertyRestriction{equalityRestriction("tag", "red")},
	}
	plan := planOne(t, testDefinition("/indexes/a"), filter, nil)
	require.NotNil(t, plan)

	req := plan.Result.Request
	assert.Empty(t, req.Query)
	require.Len(t, req.Constraints, 1)
	// the constraint is pushed down under the index-side field name
	assert.Equal(t, index.Constraint{Field: "tag_s", Value: "red"}, req.Constraints[0])
}

func TestPlanner_SyncPropertyResultUsesResolvedName(t *testing.T) {
	filter := fulltextFilter("hello")
	filter.PropertyRestrictions = []model.PropertyRestriction{equalityRestriction("tag", "red")}

	plan := planOne(t, testDefinition("/indexes/a"), filter, nil)
	require.NotNil(t, plan)
	res := plan.Result.PropertyResult
	require.NotNil(t, res)
	assert.Equal(t, "tag_s", res.Name)
	assert.Equal(t, "tag", res.Restriction.Property)
}

func TestPlanner_OverlayColumnsAreNotRestrictions(t *testing.T) {
	filter := fulltextFilter("hello")
	filter.PropertyRestrictions = []model.PropertyRestriction{
		equalityRestriction(index.ColumnScore, 0.5),
	}
	plan := planOne(t, testDefinition("/indexes/a"), filter, nil)
	require.NotNil(t, plan)
	assert.Empty(t, plan.Result.Request.Constraints)
	assert.Nil(t, plan.Result.PropertyResult)
	// the overlay restriction must not discount the cost either
	assert.Equal(t, 202.0, plan.Cost)
}

func TestPlanner_SuggestionRequiresCapability(t *testing.T) {
	filter := &model.Filter{
		Path:            "/",
		PathRestriction: model.RestrictionAllChildren,
		PropertyRestrictions: []model.PropertyRestriction{
			equalityRestriction(index.ColumnSuggestion, "hel"),
		},
	}

	assert.Nil(t, planOne(t, testDefinition("/indexes/plain"), filter, nil))

	def := testDefinition("/indexes/suggesting")
	def.Suggest = true
	plan := planOne(t, def, filter, nil)
	require.NotNil(t, plan)
	assert.Equal(t, "hel", plan.Result.Request.SuggestText)
}

func TestPlanner_SortOrderSupport(t *testing.T) {
	order := []OrderEntry{
		{Property: "date", Descending: true}, // ordered in the index
		{Property: "title"},                  // analyzed but not ordered
		{Property: "unknown"},
	}
	plan := planOne(t, testDefinition("/indexes/a"), fulltextFilter("hello"), order)
	require.NotNil(t, plan)

	require.Len(t, plan.SortOrder, 1)
	assert.Equal(t, OrderEntry{Property: "date", Descending: true}, plan.SortOrder[0])
	require.Len(t, plan.Result.Request.Sort, 1)
	assert.Equal(t, index.SortField{Field: "date", Descending: true}, plan.Result.Request.Sort[0])
}

func TestPlanner_ComposesScopedQuery(t *testing.T) {
	filter := &model.Filter{
		Path:            "/content",
		PathRestriction: model.RestrictionAllChildren,
		FullText: &model.FullTextAnd{List: []model.FullTextExpression{
			&model.FullTextTerm{Property: "title", Text: "moby"},
			&model.FullTextTerm{Text: "whale", Not: true},
			&model.FullTextTerm{Property: "jcr:content/*", Text: "ship"},
		}},
	}
	plan := planOne(t, testDefinition("/indexes/a"), filter, nil)
	require.NotNil(t, plan)
	// node-scoped terms keep the bare text; property terms use the
	// resolved field name
	assert.Equal(t, "title:moby -whale ship", plan.Result.Request.Query)
}

func TestPlanner_RewritesTermTextOnce(t *testing.T) {
	filter := fulltextFilter("jcr:data AND more")
	plan := planOne(t, testDefinition("/indexes/a"), filter, nil)
	require.NotNil(t, plan)
	assert.Equal(t, `jcr\:data and more`, plan.Result.Request.Query)
}

func TestPlanner_ScopePathStripsPrefix(t *testing.T) {
	def := testDefinition("/indexes/mounted")
	def.PathPrefix = "/lib"
	filter := fulltextFilter("hello")
	filter.Path = "/lib/books"

	plan := planOne(t, def, filter, nil)
	require.NotNil(t, plan)
	assert.Equal(t, "/lib", plan.PathPrefix)
	assert.Equal(t, "/books", plan.Result.Request.ScopePath)
	assert.Equal(t, model.RestrictionAllChildren, plan.Result.Request.ScopeMode)
}

func TestPlanner_FacetFields(t *testing.T) {
	plan := planOne(t, testDefinition("/indexes/a"), fulltextFilter("hello"), nil)
	require.NotNil(t, plan)
	assert.Equal(t, []string{"tag_s"}, plan.Result.Request.FacetFields)
	assert.Equal(t, 10, plan.Result.FacetLimit)
}
