// Package fulltext is the planning and execution layer that lets the
// query engine answer structured queries through pluggable full-text
// indexes. It discovers applicable indexes for a filter, builds a
// cost-bearing plan per candidate with per-index failure isolation,
// executes the chosen plan, and presents raw hits as a lazy row
// sequence overlaying search pseudo-columns onto the base path
// sequence.
package fulltext

import (
	"strings"

	"quarry/internal/index"
	"quarry/pkg/model"
)

// OrderEntry is one element of a plan's sort order.
type OrderEntry struct {
	Property   string
	Descending bool
}

func (o OrderEntry) String() string {
	if o.Descending {
		return o.Property + " desc"
	}
	return o.Property + " asc"
}

// formatOrder renders a sort order for plan descriptions.
func formatOrder(order []OrderEntry) string {
	parts := make([]string, len(order))
	for i, o := range order {
		parts[i] = o.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// PropertyIndexResult records a property restriction that was resolved
// synchronously against index metadata at planning time.
type PropertyIndexResult struct {
	// Name is the resolved index-side field name; it may differ from
	// the restriction's original property name.
	Name string
	// Restriction is the resolved restriction.
	Restriction model.PropertyRestriction
}

// PlanResult is the index-specific interpretation attached to a plan:
// how the filter maps onto the chosen index's capabilities. It is
// built once per (filter, index) pairing and immutable afterwards.
type PlanResult struct {
	// IndexPath is the logical path of the chosen index.
	IndexPath string
	// Definition references the index's static metadata.
	Definition *index.Definition
	// Request is the executable form of the plan.
	Request *index.Request
	// PropertyResult is the synchronously-resolved property
	// restriction, nil when none was resolved.
	PropertyResult *PropertyIndexResult
	// SyncNodeTypes marks the filter's node-type restrictions as
	// synchronously satisfiable.
	SyncNodeTypes bool
	// UniquePaths guarantees emitted paths are never duplicated,
	// letting the cursor skip deduplication.
	UniquePaths bool
	// FacetLimit is the index's configured facet-count limit.
	FacetLimit int
}

// IndexPlan is a concrete proposal for answering a filter with one
// specific index. Plans are read-only once built; the caller picks one
// by cost.
type IndexPlan struct {
	// Cost estimates the expense of executing the plan.
	Cost float64
	// SortOrder is the sort order the index will deliver, empty when
	// the index cannot serve the requested order.
	SortOrder []OrderEntry
	// PathPrefix is prepended to emitted sub-paths when the index
	// covers a mounted subtree.
	PathPrefix string
	// Filter is the originating filter.
	Filter *model.Filter
	// Result is the index-specific interpretation of the plan. Every
	// plan produced by this package carries one; a nil Result at
	// execution or description time is a programming error.
	Result *PlanResult
}

// planResult returns the attached PlanResult, failing fast when the
// planning contract was violated.
func (p *IndexPlan) planResult() *PlanResult {
	if p.Result == nil {
		panic("fulltext: plan has no PlanResult attached")
	}
	return p.Result
}
