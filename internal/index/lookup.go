package index

import (
	"sort"

	"quarry/internal/pathutil"
	"quarry/pkg/model"
)

// Lookup finds the candidate indexes whose declared scope could
// satisfy a filter's type and path constraints.
type Lookup struct {
	tracker *Tracker
}

// NewLookup creates a lookup over the tracker's registered indexes.
func NewLookup(t *Tracker) *Lookup {
	return &Lookup{tracker: t}
}

// CandidatePaths returns the paths of indexes that could serve the
// filter, sorted for deterministic discovery order.
func (l *Lookup) CandidatePaths(f *model.Filter, typeTag string) []string {
	var paths []string
	for _, def := range l.tracker.Definitions() {
		if def.Type != typeTag {
			continue
		}
		if !matchesTypes(def, f) {
			continue
		}
		if !matchesScope(def, f) {
			continue
		}
		paths = append(paths, def.Path)
	}
	sort.Strings(paths)
	return paths
}

// matchesTypes checks the filter's node-type restrictions against the
// index's declaring types. An unscoped index covers everything; a
// type-scoped index serves only filters restricted to declared types.
func matchesTypes(def *Definition, f *model.Filter) bool {
	if len(def.DeclaringTypes) == 0 {
		return true
	}
	if f.MatchesAllTypes() {
		return false
	}
	for _, t := range f.PrimaryTypes {
		if !def.DeclaresType(t) {
			return false
		}
	}
	for _, t := range f.MixinTypes {
		if !def.DeclaresType(t) {
			return false
		}
	}
	return true
}

// matchesScope checks the filter path against the index's included
// paths. A path-scoped index cannot serve an unrestricted filter.
func matchesScope(def *Definition, f *model.Filter) bool {
	if len(def.IncludedPaths) == 0 {
		return true
	}
	if f.PathRestriction == model.RestrictionNone || f.Path == "" {
		return false
	}
	if def.CoversPath(f.Path) {
		return true
	}
	// An ALL_CHILDREN filter above the index scope still reaches it.
	if f.PathRestriction == model.RestrictionAllChildren {
		for _, inc := range def.IncludedPaths {
			if pathutil.IsAncestor(f.Path, inc) || f.Path == inc {
				return true
			}
		}
	}
	return false
}
