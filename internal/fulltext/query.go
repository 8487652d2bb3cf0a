package fulltext

import (
	"context"
	"fmt"
)

// QueryConfig carries the execution collaborators for a chosen plan.
type QueryConfig struct {
	// Base is the base path sequence's column lookup, nil when the
	// caller only reads overlay columns.
	Base ColumnSource
	// Limits enforces the store's traversal cap, nil for none.
	Limits Limits
	// TraversalWarning overrides the warning threshold when positive.
	TraversalWarning int
}

// Query executes an already-chosen plan against its index and returns
// the row cursor. The handle is checked out for the duration of the
// call and released on every exit path; the size estimator re-acquires
// the handle on demand so the cursor never holds one.
func (s *Selector) Query(ctx context.Context, plan *IndexPlan, cfg QueryConfig) (*Cursor, error) {
	pr := plan.planResult()

	handle, err := s.registry.Acquire(pr.IndexPath, s.typeTag)
	if err != nil {
		return nil, fmt.Errorf("acquiring %s for execution: %w", pr.IndexPath, err)
	}
	if handle == nil {
		return nil, fmt.Errorf("%w: the %s index at %s", ErrIndexUnavailable, s.typeTag, pr.IndexPath)
	}
	defer handle.Release()

	source, err := handle.Searcher().Execute(ctx, pr.Request)
	if err != nil {
		return nil, fmt.Errorf("executing plan against %s: %w", pr.IndexPath, err)
	}

	estimator := SizeEstimatorFunc(func() int64 {
		h, err := s.registry.Acquire(pr.IndexPath, s.typeTag)
		if err != nil || h == nil {
			return -1
		}
		defer h.Release()
		return h.Searcher().Estimate(pr.Request)
	})

	return NewCursor(CursorConfig{
		Source:           source,
		Plan:             plan,
		Limits:           cfg.Limits,
		Estimator:        estimator,
		Base:             cfg.Base,
		Logger:           s.logger,
		TraversalWarning: cfg.TraversalWarning,
	}), nil
}
