package index

import (
	"errors"
	"sync"
)

// Errors
var (
	ErrTrackerClosed  = errors.New("index tracker is closed")
	ErrAlreadyTracked = errors.New("index is already registered")
)

// entryState is the lifecycle state of a tracked index.
type entryState int

const (
	stateReady entryState = iota
	stateUpdating
)

type entry struct {
	def      *Definition
	searcher Searcher
	state    entryState
	refs     int
}

// Tracker is the index handle registry. It hands out reference-counted
// handles to usable index instances; an index that is absent, of a
// different type, or mid-rebuild is reported as unavailable, not as an
// error.
type Tracker struct {
	mu      sync.RWMutex
	closed  bool
	entries map[string]*entry
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]*entry)}
}

// Register adds an index instance under its definition path.
func (t *Tracker) Register(def *Definition, s Searcher) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTrackerClosed
	}
	if _, ok := t.entries[def.Path]; ok {
		return ErrAlreadyTracked
	}
	t.entries[def.Path] = &entry{def: def, searcher: s}
	return nil
}

// Acquire checks out a handle for the index at path with the given
// type tag. It returns (nil, nil) when the index is unavailable and an
// error only on registry failure. Every non-nil handle must be
// released exactly once.
func (t *Tracker) Acquire(path, typeTag string) (*Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, ErrTrackerClosed
	}
	e, ok := t.entries[path]
	if !ok || e.def.Type != typeTag || e.state != stateReady {
		return nil, nil
	}
	e.refs++
	return &Handle{tracker: t, path: path, def: e.def, searcher: e.searcher}, nil
}

// MarkUpdating makes the index unavailable to new acquisitions, e.g.
// during a rebuild. Existing handles stay valid until released.
func (t *Tracker) MarkUpdating(path string) {
	t.setState(path, stateUpdating)
}

// MarkReady makes the index available again.
func (t *Tracker) MarkReady(path string) {
	t.setState(path, stateReady)
}

func (t *Tracker) setState(path string, s entryState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[path]; ok {
		e.state = s
	}
}

// Remove drops the index from the registry. Outstanding handles keep
// their searcher reference until released.
func (t *Tracker) Remove(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, path)
}

// Refs returns the current reference count for the index, for
// diagnostics and tests.
func (t *Tracker) Refs(path string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if e, ok := t.entries[path]; ok {
		return e.refs
	}
	return 0
}

// Definitions returns the definitions of all tracked indexes.
func (t *Tracker) Definitions() []*Definition {
	t.mu.RLock()
	defer t.mu.RUnlock()
	defs := make([]*Definition, 0, len(t.entries))
	for _, e := range t.entries {
		defs = append(defs, e.def)
	}
	return defs
}

// Close shuts the registry down; subsequent acquisitions fail.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}

// Handle is a checked-out reference to a usable index instance.
type Handle struct {
	tracker  *Tracker
	path     string
	def      *Definition
	searcher Searcher
	released bool
}

// Definition returns the static definition of the index.
func (h *Handle) Definition() *Definition { return h.def }

// Searcher returns the opaque index engine.
func (h *Handle) Searcher() Searcher { return h.searcher }

// Release returns the handle. Releasing twice is a programming error.
func (h *Handle) Release() {
	if h.released {
		panic("index: handle released twice: " + h.path)
	}
	h.released = true

	h.tracker.mu.Lock()
	defer h.tracker.mu.Unlock()
	if e, ok := h.tracker.entries[h.path]; ok && e.refs > 0 {
		e.refs--
	}
}
