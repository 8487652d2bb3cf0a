package model

import (
	"fmt"
	"sort"
	"strings"
)

// PathRestriction defines how a filter constrains result paths.
type PathRestriction string

const (
	// RestrictionNone places no constraint on result paths.
	RestrictionNone PathRestriction = "none"
	// RestrictionExact admits only the filter path itself.
	RestrictionExact PathRestriction = "exact"
	// RestrictionDirectChildren admits immediate children of the filter path.
	RestrictionDirectChildren PathRestriction = "direct"
	// RestrictionAllChildren admits the filter path and all descendants.
	RestrictionAllChildren PathRestriction = "all"
)

// IsValid checks if the path restriction is a known mode.
func (p PathRestriction) IsValid() bool {
	switch p {
	case RestrictionNone, RestrictionExact, RestrictionDirectChildren, RestrictionAllChildren:
		return true
	}
	return false
}

// PropertyRestriction represents a constraint on a single property.
// First/Last are the lower/upper bounds; a restriction with both bounds
// equal and including is an equality restriction. List holds "in"
// literals, Like holds a pattern. A restriction with no bounds at all
// is a "is not null" restriction.
type PropertyRestriction struct {
	Property       string
	First          any
	FirstIncluding bool
	Last           any
	LastIncluding  bool
	List           []any
	Like           string
}

// IsEquality reports whether the restriction pins the property to a
// single value.
func (pr PropertyRestriction) IsEquality() bool {
	return pr.First != nil && pr.Last != nil &&
		pr.FirstIncluding && pr.LastIncluding && pr.First == pr.Last
}

// IsNotNull reports whether the restriction only requires the property
// to exist.
func (pr PropertyRestriction) IsNotNull() bool {
	return pr.First == nil && pr.Last == nil && pr.List == nil && pr.Like == ""
}

// String renders the restriction for plan descriptions.
func (pr PropertyRestriction) String() string {
	var b strings.Builder
	b.WriteString(pr.Property)
	switch {
	case pr.List != nil:
		parts := make([]string, len(pr.List))
		for i, v := range pr.List {
			parts[i] = fmt.Sprint(v)
		}
		b.WriteString(" in(")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(")")
	case pr.Like != "":
		b.WriteString(" like ")
		b.WriteString(pr.Like)
	case pr.IsEquality():
		b.WriteString("=")
		b.WriteString(fmt.Sprint(pr.First))
	case pr.IsNotNull():
		b.WriteString(" is not null")
	default:
		if pr.First != nil {
			if pr.FirstIncluding {
				b.WriteString(">=")
			} else {
				b.WriteString(">")
			}
			b.WriteString(fmt.Sprint(pr.First))
		}
		if pr.Last != nil {
			if pr.First != nil {
				b.WriteString(" ")
			}
			if pr.LastIncluding {
				b.WriteString("<=")
			} else {
				b.WriteString("<")
			}
			b.WriteString(fmt.Sprint(pr.Last))
		}
	}
	return b.String()
}

// Filter is the structured representation of a query's constraints.
// It is immutable for the duration of planning and execution.
type Filter struct {
	// Path is the restriction path, absolute in the store namespace.
	Path string
	// PathRestriction is the granularity of the path constraint.
	PathRestriction PathRestriction
	// PropertyRestrictions are the ordered property constraints.
	PropertyRestrictions []PropertyRestriction
	// FullText is the optional full-text constraint tree.
	FullText FullTextExpression
	// PrimaryTypes and MixinTypes constrain node types. Empty means
	// unrestricted.
	PrimaryTypes []string
	MixinTypes   []string
}

// PropertyRestriction returns the restriction for the named property,
// or nil if the filter has none.
func (f *Filter) PropertyRestriction(name string) *PropertyRestriction {
	for i := range f.PropertyRestrictions {
		if f.PropertyRestrictions[i].Property == name {
			return &f.PropertyRestrictions[i]
		}
	}
	return nil
}

// MatchesAllTypes reports whether the filter places no node-type
// constraint at all.
func (f *Filter) MatchesAllTypes() bool {
	return len(f.PrimaryTypes) == 0 && len(f.MixinTypes) == 0
}

// TypeSet renders a node-type set deterministically for descriptions
// and logs.
func TypeSet(types []string) string {
	sorted := make([]string, len(types))
	copy(sorted, types)
	sort.Strings(sorted)
	return "[" + strings.Join(sorted, ", ") + "]"
}

// String renders the filter for diagnostics.
func (f *Filter) String() string {
	var b strings.Builder
	b.WriteString("Filter(path=")
	b.WriteString(f.Path)
	switch f.PathRestriction {
	case RestrictionDirectChildren:
		b.WriteString("/*")
	case RestrictionAllChildren:
		b.WriteString("//*")
	}
	for _, pr := range f.PropertyRestrictions {
		b.WriteString(", ")
		b.WriteString(pr.String())
	}
	if f.FullText != nil {
		b.WriteString(", fulltext=")
		b.WriteString(f.FullText.String())
	}
	b.WriteString(")")
	return b.String()
}
