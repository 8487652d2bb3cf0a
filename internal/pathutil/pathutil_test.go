package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParent(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/a/b/c", "/a/b"},
		{"/a", "/"},
		{"/a/", "/"},
		{"/", ""},
		{"", ""},
		{"relative", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Parent(tt.path), "Parent(%q)", tt.path)
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/a/b/c", "c"},
		{"/a", "a"},
		{"/a/b/", "b"},
		{"/", ""},
		{"", ""},
		{"relative", "relative"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Name(tt.path), "Name(%q)", tt.path)
	}
}

func TestIsAncestor(t *testing.T) {
	tests := []struct {
		ancestor string
		path     string
		want     bool
	}{
		{"/a", "/a/b", true},
		{"/a", "/a/b/c", true},
		{"/", "/a", true},
		{"/a", "/a", false},
		{"/a", "/ab", false},
		{"/a/b", "/a", false},
		{"/", "/", false},
		{"", "/a", false},
		{"/a", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAncestor(tt.ancestor, tt.path),
			"IsAncestor(%q, %q)", tt.ancestor, tt.path)
	}
}

func TestConcat(t *testing.T) {
	tests := []struct {
		parent string
		sub    string
		want   string
	}{
		{"/a", "b", "/a/b"},
		{"/a", "/b", "/a/b"},
		{"/a/", "b", "/a/b"},
		{"/", "b", "/b"},
		{"", "b", "b"},
		{"/a", "", "/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Concat(tt.parent, tt.sub),
			"Concat(%q, %q)", tt.parent, tt.sub)
	}
}

func TestRelativize(t *testing.T) {
	tests := []struct {
		parent string
		path   string
		want   string
	}{
		{"/a", "/a/b/c", "b/c"},
		{"/a", "/a", ""},
		{"/", "/a/b", "a/b"},
		{"/", "/", ""},
		// a path outside the parent passes through unchanged
		{"/a", "/x/y", "/x/y"},
		{"/a", "/ab", "/ab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Relativize(tt.parent, tt.path),
			"Relativize(%q, %q)", tt.parent, tt.path)
	}
}

func TestRootPredicates(t *testing.T) {
	assert.True(t, DenotesRoot("/"))
	assert.False(t, DenotesRoot("/a"))
	assert.False(t, DenotesRoot(""))
	assert.True(t, IsAbsolute("/a"))
	assert.False(t, IsAbsolute("a"))
}
