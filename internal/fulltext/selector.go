package fulltext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"quarry/internal/index"
	"quarry/pkg/model"
)

// Errors
var (
	// ErrIndexUnavailable is returned when an index a plan was built
	// against can no longer be acquired.
	ErrIndexUnavailable = errors.New("index is not available")
	// ErrNoUsableIndex is returned when the handle registry failed for
	// every candidate, so no index could be consulted at all.
	ErrNoUsableIndex = errors.New("no usable index")
	// ErrReadLimitExceeded is the fatal traversal-cap condition.
	ErrReadLimitExceeded = errors.New("query read limit exceeded")
)

// Handle is a checked-out reference to a usable index instance. It
// must be released exactly once, on every exit path.
type Handle interface {
	Definition() *index.Definition
	Searcher() index.Searcher
	Release()
}

// Registry hands out index handles. Acquire returns (nil, nil) when
// the index is unavailable (absent or mid-rebuild) and an error only
// on registry failure.
type Registry interface {
	Acquire(path, typeTag string) (Handle, error)
}

// CandidateSource supplies the paths of indexes whose declared scope
// could satisfy a filter.
type CandidateSource interface {
	CandidatePaths(f *model.Filter, typeTag string) []string
}

// TrackerRegistry adapts an index.Tracker to the Registry interface.
type TrackerRegistry struct {
	Tracker *index.Tracker
}

func (t TrackerRegistry) Acquire(path, typeTag string) (Handle, error) {
	h, err := t.Tracker.Acquire(path, typeTag)
	if h == nil {
		// avoid a typed-nil handle inside the interface
		return nil, err
	}
	return h, err
}

// Selector is the planning entry point: it builds one plan per viable
// candidate index and leaves the cost-based choice to the caller.
type Selector struct {
	registry Registry
	lookup   CandidateSource
	typeTag  string
	logger   *slog.Logger
}

// NewSelector creates a selector for one index type.
func NewSelector(registry Registry, lookup CandidateSource, typeTag string, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		registry: registry,
		lookup:   lookup,
		typeTag:  typeTag,
		logger:   logger,
	}
}

// GetPlans returns the viable plans for the filter, in candidate
// discovery order. A failure while planning against one index is
// logged and isolated; it never aborts planning for the remaining
// candidates. The call fails only when the registry errored for every
// candidate, meaning no index could be consulted.
func (s *Selector) GetPlans(ctx context.Context, filter *model.Filter, sortOrder []OrderEntry) ([]*IndexPlan, error) {
	queryID := uuid.NewString()
	candidates := s.lookup.CandidatePaths(filter, s.typeTag)

	plans := make([]*IndexPlan, 0, len(candidates))
	registryErrs := 0
	var firstErr error

	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		handle, err := s.registry.Acquire(path, s.typeTag)
		if err != nil {
			registryErrs++
			if firstErr == nil {
				firstErr = err
			}
			s.logger.Error("Error acquiring index for planning",
				"index", path, "query_id", queryID, "error", err)
			continue
		}
		if handle == nil {
			// unavailable, not a failure: the index may be mid-rebuild
			continue
		}

		plan, err := s.planCandidate(handle, path, filter, sortOrder)
		if err != nil {
			s.logger.Error("Error getting plan",
				"index", path, "query_id", queryID, "error", err)
			continue
		}
		if plan != nil {
			plans = append(plans, plan)
		}
	}

	if len(candidates) > 0 && registryErrs == len(candidates) {
		return nil, fmt.Errorf("%w: %v", ErrNoUsableIndex, firstErr)
	}
	return plans, nil
}

// planCandidate builds the plan for one acquired handle, releasing it
// on every exit path and converting a planner panic into an isolated
// per-candidate error.
func (s *Selector) planCandidate(handle Handle, path string, filter *model.Filter, sortOrder []OrderEntry) (plan *IndexPlan, err error) {
	defer handle.Release()
	defer func() {
		if r := recover(); r != nil {
			plan = nil
			err = fmt.Errorf("planning against %s failed: %v", path, r)
		}
	}()

	p := &planner{
		handle:    handle,
		indexPath: path,
		filter:    filter,
		sortOrder: sortOrder,
	}
	return p.build(), nil
}
