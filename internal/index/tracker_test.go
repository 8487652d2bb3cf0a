package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nopSearcher satisfies the Searcher contract for registry tests.
type nopSearcher struct{}

func (nopSearcher) RequestString(*Request) string { return "nop{}" }

func (nopSearcher) Execute(ctx context.Context, req *Request) (RowSource, error) {
	return NewSliceSource(nil), nil
}

func (nopSearcher) Estimate(*Request) int64 { return 0 }

func trackerDefinition(path string) *Definition {
	return &Definition{
		Path:       path,
		Type:       "fulltext",
		Properties: []PropertyDefinition{{Name: "title", Analyzed: true}},
	}
}

func TestTracker_AcquireRelease(t *testing.T) {
	tr := NewTracker()
	def := trackerDefinition("/indexes/a")
	require.NoError(t, tr.Register(def, nopSearcher{}))

	h, err := tr.Acquire("/indexes/a", "fulltext")
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Same(t, def, h.Definition())
	assert.Equal(t, 1, tr.Refs("/indexes/a"))

	h2, err := tr.Acquire("/indexes/a", "fulltext")
	require.NoError(t, err)
	require.NotNil(t, h2)
	assert.Equal(t, 2, tr.Refs("/indexes/a"))

	h.Release()
	h2.Release()
	assert.Equal(t, 0, tr.Refs("/indexes/a"))
}

func TestTracker_UnavailableIsNotAnError(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Register(trackerDefinition("/indexes/a"), nopSearcher{}))

	// absent
	h, err := tr.Acquire("/indexes/missing", "fulltext")
	require.NoError(t, err)
	assert.Nil(t, h)

	// wrong type tag
	h, err = tr.Acquire("/indexes/a", "property")
	require.NoError(t, err)
	assert.Nil(t, h)

	// mid-rebuild
	tr.MarkUpdating("/indexes/a")
	h, err = tr.Acquire("/indexes/a", "fulltext")
	require.NoError(t, err)
	assert.Nil(t, h)

	tr.MarkReady("/indexes/a")
	h, err = tr.Acquire("/indexes/a", "fulltext")
	require.NoError(t, err)
	require.NotNil(t, h)
	h.Release()
}

func TestTracker_RegisterDuplicate(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Register(trackerDefinition("/indexes/a"), nopSearcher{}))
	err := tr.Register(trackerDefinition("/indexes/a"), nopSearcher{})
	assert.ErrorIs(t, err, ErrAlreadyTracked)
}

func TestTracker_RemoveWithOutstandingHandle(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Register(trackerDefinition("/indexes/a"), nopSearcher{}))

	h, err := tr.Acquire("/indexes/a", "fulltext")
	require.NoError(t, err)
	require.NotNil(t, h)

	tr.Remove("/indexes/a")
	// the handle keeps its searcher reference and can still be released
	assert.NotNil(t, h.Searcher())
	h.Release()

	got, err := tr.Acquire("/indexes/a", "fulltext")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTracker_Closed(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Register(trackerDefinition("/indexes/a"), nopSearcher{}))
	tr.Close()

	_, err := tr.Acquire("/indexes/a", "fulltext")
	assert.ErrorIs(t, err, ErrTrackerClosed)
	assert.ErrorIs(t, tr.Register(trackerDefinition("/indexes/b"), nopSearcher{}), ErrTrackerClosed)
}

func TestHandle_DoubleReleasePanics(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Register(trackerDefinition("/indexes/a"), nopSearcher{}))

	h, err := tr.Acquire("/indexes/a", "fulltext")
	require.NoError(t, err)
	h.Release()
	assert.Panics(t, func() { h.Release() })
}
