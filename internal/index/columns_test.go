package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnNames(t *testing.T) {
	assert.Equal(t, ":excerpt(title)", ExcerptColumn("title"))
	assert.Equal(t, ":facet(tag_s)", FacetColumn("tag_s"))
	assert.Equal(t, "tag_s", ParseFacetField(":facet(tag_s)"))
	assert.Equal(t, "title", ParseFacetField(FacetColumn("title")))
}
