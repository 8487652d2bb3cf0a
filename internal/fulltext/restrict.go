package fulltext

import (
	"strings"

	"quarry/internal/pathutil"
	"quarry/pkg/model"
)

// PathRestrictionPath returns the plan's restriction path, adjusted
// for the plan's path prefix.
func PathRestrictionPath(plan *IndexPlan) string {
	f := plan.Filter
	if plan.PathPrefix == "" {
		return f.Path
	}
	return "/" + pathutil.Relativize(plan.PathPrefix, f.Path)
}

// ShouldInclude decides whether a raw index hit satisfies the plan's
// path restriction. Indexes may filter paths only coarsely; this
// predicate post-filters for precision. It is pure.
func ShouldInclude(docPath string, plan *IndexPlan) bool {
	path := PathRestrictionPath(plan)

	switch plan.Filter.PathRestriction {
	case model.RestrictionExact:
		return path == docPath
	case model.RestrictionDirectChildren:
		return pathutil.Parent(docPath) == path
	case model.RestrictionAllChildren:
		return path == docPath || pathutil.IsAncestor(path, docPath)
	}
	return true
}

// IsNodePath reports whether a full-text term path addresses a node
// rather than a property: in contains(foo, 'bar') "foo" is a property,
// while in contains(foo/*, 'bar') "foo" is a node.
func IsNodePath(fulltextTermPath string) bool {
	return strings.HasSuffix(fulltextTermPath, "/*")
}
