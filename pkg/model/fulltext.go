package model

import "strings"

// FullTextExpression is a node of a full-text constraint tree: either
// a single term or an and/or composite. The set of implementations is
// closed; consumers branch with a type switch.
type FullTextExpression interface {
	// String renders the expression in the query's text form.
	String() string

	fullTextExpr()
}

// FullTextTerm is a single search term, optionally scoped to a
// property (or a node when the property path ends with "/*").
type FullTextTerm struct {
	// Property is the scoped property path, empty for "anywhere".
	Property string
	// Text is the raw search text as the user typed it.
	Text string
	// Not marks an excluded term.
	Not bool
	// Boost is the optional boost suffix (without the caret).
	Boost string
}

func (t *FullTextTerm) fullTextExpr() {}

func (t *FullTextTerm) String() string {
	var b strings.Builder
	if t.Not {
		b.WriteString("-")
	}
	if t.Property != "" {
		b.WriteString(t.Property)
		b.WriteString(":")
	}
	b.WriteString("\"")
	b.WriteString(t.Text)
	b.WriteString("\"")
	if t.Boost != "" {
		b.WriteString("^")
		b.WriteString(t.Boost)
	}
	return b.String()
}

// FullTextAnd is a conjunction of subexpressions.
type FullTextAnd struct {
	List []FullTextExpression
}

func (a *FullTextAnd) fullTextExpr() {}

func (a *FullTextAnd) String() string {
	return joinExprs(a.List, " ")
}

// FullTextOr is a disjunction of subexpressions.
type FullTextOr struct {
	List []FullTextExpression
}

func (o *FullTextOr) fullTextExpr() {}

func (o *FullTextOr) String() string {
	return joinExprs(o.List, " OR ")
}

func joinExprs(list []FullTextExpression, sep string) string {
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}

// CollectTerms walks the expression tree depth-first and returns the
// terms in query order.
func CollectTerms(e FullTextExpression) []*FullTextTerm {
	var terms []*FullTextTerm
	var walk func(FullTextExpression)
	walk = func(e FullTextExpression) {
		switch x := e.(type) {
		case *FullTextTerm:
			terms = append(terms, x)
		case *FullTextAnd:
			for _, sub := range x.List {
				walk(sub)
			}
		case *FullTextOr:
			for _, sub := range x.List {
				walk(sub)
			}
		}
	}
	if e != nil {
		walk(e)
	}
	return terms
}
