package fulltext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"quarry/internal/index"
	"quarry/internal/pathutil"
)

// DefaultTraversalWarning is the default number of reads between
// traversal-limit checks and warnings.
const DefaultTraversalWarning = 10000

// Limits is the store's read-limit collaborator. CheckRead may return
// a fatal limit-exceeded condition that terminates the whole query.
type Limits interface {
	CheckRead(count int) error
}

// QueryLimits is the config-driven Limits implementation. A ReadLimit
// of zero means unlimited.
type QueryLimits struct {
	ReadLimit int64
}

func (l QueryLimits) CheckRead(count int) error {
	if l.ReadLimit > 0 && int64(count) > l.ReadLimit {
		return fmt.Errorf("%w: traversed %d nodes (limit %d)", ErrReadLimitExceeded, count, l.ReadLimit)
	}
	return nil
}

// SizeEstimator supplies an approximate result count for a plan.
type SizeEstimator interface {
	Estimate() int64
}

// SizeEstimatorFunc adapts a function to the SizeEstimator interface.
type SizeEstimatorFunc func() int64

func (f SizeEstimatorFunc) Estimate() int64 { return f() }

// ColumnSource is the base path sequence's column lookup, consulted
// for columns the overlay does not synthesize.
type ColumnSource interface {
	Value(path, column string) (any, bool)
}

// CursorConfig assembles a Cursor.
type CursorConfig struct {
	Source    index.RowSource
	Plan      *IndexPlan
	Limits    Limits
	Estimator SizeEstimator
	Base      ColumnSource
	Logger    *slog.Logger
	// TraversalWarning overrides DefaultTraversalWarning when positive.
	TraversalWarning int
}

// Cursor presents raw index hits as the uniform lazy row sequence:
// path-restriction post-filtering, path reconstruction under the
// plan's prefix, deduplication when the index does not guarantee
// unique paths, traversal-count guarding, and overlay-column
// resolution. Iteration is single-threaded and
// pull-based; there is no rewinding.
type Cursor struct {
	source     index.RowSource
	plan       *IndexPlan
	pathPrefix string
	limits     Limits
	estimator  SizeEstimator
	base       ColumnSource
	logger     *slog.Logger
	warnEvery  int

	seen      map[string]struct{}
	readCount int
	current   index.Row
	err       error
	size      int64
}

// NewCursor wraps a raw-hit sequence for an executed plan.
func NewCursor(cfg CursorConfig) *Cursor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	warnEvery := cfg.TraversalWarning
	if warnEvery <= 0 {
		warnEvery = DefaultTraversalWarning
	}
	c := &Cursor{
		source:     cfg.Source,
		plan:       cfg.Plan,
		pathPrefix: cfg.Plan.PathPrefix,
		limits:     cfg.Limits,
		estimator:  cfg.Estimator,
		base:       cfg.Base,
		logger:     logger,
		warnEvery:  warnEvery,
	}
	if !cfg.Plan.planResult().UniquePaths {
		c.seen = make(map[string]struct{})
	}
	return c
}

// Next advances to the next row. It returns false when the sequence is
// exhausted or a fatal condition occurred; Err distinguishes the two.
func (c *Cursor) Next() bool {
	if c.err != nil {
		return false
	}
	for c.source.Next() {
		row := c.source.Row()
		c.readCount++
		if c.readCount%c.warnEvery == 0 {
			if c.limits != nil {
				if err := c.limits.CheckRead(c.readCount); err != nil {
					c.err = err
					return false
				}
			}
			c.logger.Warn("Index-Traversed nodes",
				"count", c.readCount, "filter", c.plan.Filter.String())
		}
		if m, ok := row.(*index.Match); ok {
			// the index may filter scope only coarsely
			if !ShouldInclude(m.Path, c.plan) {
				continue
			}
			if c.seen != nil {
				if _, dup := c.seen[m.Path]; dup {
					continue
				}
				c.seen[m.Path] = struct{}{}
			}
		}
		c.current = row
		return true
	}
	c.err = c.source.Err()
	return false
}

// Err returns the terminal error, if any. A read-limit breach surfaces
// here as ErrReadLimitExceeded and is not retryable.
func (c *Cursor) Err() error { return c.err }

// Row returns the current output row. Valid only after a true Next.
func (c *Cursor) Row() IndexRow {
	return IndexRow{
		row:        c.current,
		pathPrefix: c.pathPrefix,
		base:       c.base,
	}
}

// Size returns the memoized size estimate. A zero estimate is cached
// but indistinguishable from "not yet computed", so the estimator runs
// again on the next call; callers tolerate the duplicate invocation.
func (c *Cursor) Size() int64 {
	if c.size != 0 {
		return c.size
	}
	c.size = c.estimator.Estimate()
	return c.size
}

// IndexRow is one output row: an absolute path plus a column lookup
// covering base columns and the overlay pseudo-columns.
type IndexRow struct {
	row        index.Row
	pathPrefix string
	base       ColumnSource
}

// IsVirtual reports whether the row is a suggestion rather than a
// content match.
func (r IndexRow) IsVirtual() bool {
	_, ok := r.row.(*index.Suggestion)
	return ok
}

// Path reconstructs the absolute output path. Virtual rows are not
// under the prefix and pass through unchanged; a root sub-path maps to
// the prefix itself; an absolute sub-path concatenates directly onto
// the prefix; anything else joins with a normalized separator.
func (r IndexRow) Path() string {
	sub := index.Path(r.row)
	switch {
	case r.IsVirtual():
		return sub
	case r.pathPrefix != "" && pathutil.DenotesRoot(sub):
		return r.pathPrefix
	case pathutil.IsAbsolute(sub):
		return r.pathPrefix + sub
	default:
		return pathutil.Concat(r.pathPrefix, sub)
	}
}

// Value resolves a column. Overlay columns are checked first, in a
// fixed priority order; anything else falls through to the base
// column source.
func (r IndexRow) Value(column string) (any, bool) {
	match, _ := r.row.(*index.Match)

	switch {
	case column == index.ColumnScore:
		return index.Score(r.row), true

	case column == index.ColumnSpellcheck || column == index.ColumnSuggestion:
		if s, ok := r.row.(*index.Suggestion); ok {
			return s.Text, true
		}
		return nil, false

	case column == index.ColumnScoreExplanation:
		if match != nil && match.Explanation != "" {
			return match.Explanation, true
		}
		return nil, false

	case strings.HasPrefix(column, index.ColumnExcerptPrefix):
		if match != nil {
			if excerpt, ok := match.Excerpts[column]; ok {
				return excerpt, true
			}
		}
		return r.baseValue(column)

	case strings.HasPrefix(column, index.ColumnFacetPrefix):
		if match == nil || match.Facets == nil {
			return nil, false
		}
		return serializeFacets(match.Facets), true
	}

	return r.baseValue(column)
}

func (r IndexRow) baseValue(column string) (any, bool) {
	if r.base == nil {
		return nil, false
	}
	return r.base.Value(r.Path(), column)
}

// serializeFacets renders the facet list as a JSON object mapping
// label to count, preserving facet order. A serialization failure is a
// defect, not a data error.
func serializeFacets(facets []index.Facet) string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range facets {
		if i > 0 {
			buf.WriteByte(',')
		}
		label, err := json.Marshal(f.Label)
		if err != nil {
			panic(fmt.Errorf("facet serialization failed: %w", err))
		}
		buf.Write(label)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(f.Count))
	}
	buf.WriteByte('}')
	return buf.String()
}
