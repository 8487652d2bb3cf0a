package index

// Overlay pseudo-column names synthesized on result rows. Names are
// fixed and case-sensitive.
const (
	// ColumnScore carries the relevance score as a float.
	ColumnScore = ":score"
	// ColumnSpellcheck and ColumnSuggestion carry the text of a
	// virtual (suggestion) row.
	ColumnSpellcheck = ":spellcheck"
	ColumnSuggestion = ":suggestion"
	// ColumnScoreExplanation carries the engine's score explanation.
	ColumnScoreExplanation = ":scoreExplanation"
	// ColumnExcerptPrefix addresses excerpt columns, e.g.
	// ":excerpt(title)". The bare prefix addresses the default excerpt.
	ColumnExcerptPrefix = ":excerpt"
	// ColumnFacetPrefix addresses facet columns, e.g. ":facet(color)".
	// The value is a JSON object mapping facet label to count.
	ColumnFacetPrefix = ":facet"
)

// ExcerptColumn returns the excerpt column name for a property.
func ExcerptColumn(property string) string {
	return ColumnExcerptPrefix + "(" + property + ")"
}

// FacetColumn returns the facet column name for a field.
func FacetColumn(field string) string {
	return ColumnFacetPrefix + "(" + field + ")"
}

// ParseFacetField extracts the field name from a facet column name.
// The column must be of the form ":facet(<field>)".
func ParseFacetField(column string) string {
	return column[len(ColumnFacetPrefix)+1 : len(column)-1]
}
