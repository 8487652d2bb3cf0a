package fulltext

import (
	"strings"

	"quarry/internal/index"
	"quarry/internal/pathutil"
	"quarry/pkg/model"
)

// planner builds the plan for one candidate index and one filter. It
// decides whether the index can serve the filter at all and, if so,
// how the filter's constraints map onto the index's capabilities.
type planner struct {
	handle    Handle
	indexPath string
	filter    *model.Filter
	sortOrder []OrderEntry
}

// build returns the plan, or nil when the index cannot serve the
// filter.
func (p *planner) build() *IndexPlan {
	def := p.handle.Definition()
	f := p.filter

	req := &index.Request{IndexPath: p.indexPath}

	if suggest := suggestionText(f); suggest != "" {
		if !def.Suggest {
			return nil
		}
		req.SuggestText = suggest
	}

	if f.FullText != nil {
		if !def.HasAnalyzedProperty() {
			return nil
		}
		req.Query = composeQuery(f.FullText, def)
		if req.Query == "" {
			return nil
		}
	}

	matched, propertyResult := p.matchRestrictions(def, req)
	if f.FullText == nil && req.SuggestText == "" && matched == 0 {
		// Nothing for this index to evaluate.
		return nil
	}

	supported := p.supportedOrder(def)
	req.Sort = toSortFields(supported, def)
	req.ScopeMode = f.PathRestriction
	req.ScopePath = scopePath(f, def.PathPrefix)
	req.FacetFields = facetFields(def)

	result := &PlanResult{
		IndexPath:      p.indexPath,
		Definition:     def,
		Request:        req,
		PropertyResult: propertyResult,
		SyncNodeTypes:  def.SyncNodeTypes && !f.MatchesAllTypes(),
		UniquePaths:    def.UniquePaths,
		FacetLimit:     def.TopFacetCount,
	}

	return &IndexPlan{
		Cost:       p.cost(def, matched),
		SortOrder:  supported,
		PathPrefix: def.PathPrefix,
		Filter:     f,
		Result:     result,
	}
}

// matchRestrictions maps the filter's property restrictions onto the
// index's property definitions. Equality restrictions on indexed
// properties are pushed down as constraints; the first sync-resolvable
// one becomes the plan's synchronous property result, reported under
// the index-side field name.
func (p *planner) matchRestrictions(def *index.Definition, req *index.Request) (int, *PropertyIndexResult) {
	matched := 0
	var result *PropertyIndexResult
	for _, pr := range p.filter.PropertyRestrictions {
		if isOverlayColumn(pr.Property) {
			continue
		}
		pd := def.Property(pr.Property)
		if pd == nil {
			continue
		}
		matched++
		if pr.IsEquality() {
			req.Constraints = append(req.Constraints, index.Constraint{
				Field: pd.ResolvedField(),
				Value: pr.First,
			})
			if pd.Sync && result == nil {
				result = &PropertyIndexResult{
					Name:        pd.ResolvedField(),
					Restriction: pr,
				}
			}
		}
	}
	return matched, result
}

// supportedOrder keeps the requested sort entries the index maintains
// ordered values for.
func (p *planner) supportedOrder(def *index.Definition) []OrderEntry {
	var supported []OrderEntry
	for _, o := range p.sortOrder {
		pd := def.Property(o.Property)
		if pd != nil && pd.Ordered {
			supported = append(supported, o)
		}
	}
	return supported
}

// cost estimates the plan cost from the definition's cost parameters:
// a fixed per-query cost plus a per-entry cost over the expected
// result set, which shrinks with every constraint the index can
// evaluate.
func (p *planner) cost(def *index.Definition, matched int) float64 {
	entries := def.EntryCount
	for i := 0; i < matched; i++ {
		entries /= 2
	}
	if p.filter.FullText != nil {
		entries /= 5
	}
	if entries < 1 {
		entries = 1
	}
	return def.CostPerQuery + def.CostPerEntry*float64(entries)
}

// scopePath adjusts the filter path for the index's path prefix.
func scopePath(f *model.Filter, prefix string) string {
	if prefix == "" || f.Path == "" {
		return f.Path
	}
	return "/" + pathutil.Relativize(prefix, f.Path)
}

// suggestionText extracts a suggestion/spell-check input from the
// filter: an equality restriction on one of the virtual columns.
func suggestionText(f *model.Filter) string {
	for _, col := range []string{index.ColumnSuggestion, index.ColumnSpellcheck} {
		if pr := f.PropertyRestriction(col); pr != nil && pr.IsEquality() {
			if s, ok := pr.First.(string); ok {
				return s
			}
		}
	}
	return ""
}

func isOverlayColumn(name string) bool {
	return strings.HasPrefix(name, ":")
}

// composeQuery renders the full-text expression tree in index-safe
// syntax, rewriting each term's raw text exactly once.
func composeQuery(e model.FullTextExpression, def *index.Definition) string {
	switch x := e.(type) {
	case *model.FullTextTerm:
		return composeTerm(x, def)
	case *model.FullTextAnd:
		return joinQuery(x.List, def, " ")
	case *model.FullTextOr:
		return joinQuery(x.List, def, " OR ")
	}
	return ""
}

func joinQuery(list []model.FullTextExpression, def *index.Definition, sep string) string {
	var parts []string
	for _, sub := range list {
		if q := composeQuery(sub, def); q != "" {
			parts = append(parts, q)
		}
	}
	return strings.Join(parts, sep)
}

func composeTerm(t *model.FullTextTerm, def *index.Definition) string {
	var b strings.Builder
	if t.Not {
		b.WriteString("-")
	}
	if t.Property != "" && !IsNodePath(t.Property) {
		if pd := def.Property(t.Property); pd != nil {
			b.WriteString(pd.ResolvedField())
			b.WriteString(":")
		}
	}
	b.WriteString(RewriteQueryText(t.Text))
	if t.Boost != "" {
		b.WriteString("^")
		b.WriteString(t.Boost)
	}
	return b.String()
}

func toSortFields(order []OrderEntry, def *index.Definition) []index.SortField {
	fields := make([]index.SortField, len(order))
	for i, o := range order {
		field := o.Property
		if pd := def.Property(o.Property); pd != nil {
			field = pd.ResolvedField()
		}
		fields[i] = index.SortField{Field: field, Descending: o.Descending}
	}
	return fields
}

func facetFields(def *index.Definition) []string {
	var fields []string
	for _, pd := range def.Properties {
		if pd.Facets {
			fields = append(fields, pd.ResolvedField())
		}
	}
	return fields
}
