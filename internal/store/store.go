// Package store provides base document-store collaborators for the
// fulltext layer: column lookup for rows whose columns the index does
// not synthesize, and counting for size estimation. The store's node
// model itself is external; only these two capabilities are consumed.
package store

import (
	"errors"
	"sync"

	"quarry/internal/pathutil"
)

// ErrNotFound is returned when no document exists at a path.
var ErrNotFound = errors.New("document not found")

// MapStore is an in-memory column source backed by a path → columns
// map, used by tests and the reference pipeline.
type MapStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]any
}

// NewMapStore creates an empty map-backed store.
func NewMapStore() *MapStore {
	return &MapStore{docs: make(map[string]map[string]any)}
}

// Put stores the columns of the document at path.
func (m *MapStore) Put(path string, columns map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[path] = columns
}

// Value looks up one column of the document at path.
func (m *MapStore) Value(path, column string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[path]
	if !ok {
		return nil, false
	}
	v, ok := doc[column]
	return v, ok
}

// CountScope counts documents at or below the scope path.
func (m *MapStore) CountScope(scope string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for p := range m.docs {
		if p == scope || pathutil.IsAncestor(scope, p) {
			n++
		}
	}
	return n
}
