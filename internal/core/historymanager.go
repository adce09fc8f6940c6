// Package core provides the runtime tier of the state machine engine: the
// event-processing machine and the history it keeps.
// Stdlib-only implementation.
package core

import "github.com/comalice/fsmx/internal/primitives"

// HistoryManager remembers, per compound state, what was active inside it
// when it was last exited.
// Shallow: the last exited state among the direct children of the compound state.
// Deep: the last exited state anywhere below the compound state.
// Owned by a single Machine; not safe for concurrent use.
type HistoryManager struct {
	hierarchy *primitives.Hierarchy
	shallow   map[string]string // compound -> last exited direct child
	deep      map[string]string // compound -> last exited descendant
}

// NewHistoryManager creates an empty HistoryManager over hierarchy.
func NewHistoryManager(hierarchy *primitives.Hierarchy) *HistoryManager {
	return &HistoryManager{
		hierarchy: hierarchy,
		shallow:   make(map[string]string),
		deep:      make(map[string]string),
	}
}

// RecordExit records state in the shallow history of its parent and in the
// deep history of every ancestor. The root is never recorded.
func (h *HistoryManager) RecordExit(state string) {
	if parent := h.hierarchy.Parent(state); parent != primitives.RootState {
		h.shallow[parent] = state
	}
	for _, ancestor := range h.hierarchy.Deep[state] {
		h.deep[ancestor] = state
	}
}

// Restore returns the recorded state for ref, if any.
func (h *HistoryManager) Restore(ref primitives.HistoryRef) (string, bool) {
	var s string
	if ref.Kind == primitives.Deep {
		s = h.deep[ref.Owner]
	} else {
		s = h.shallow[ref.Owner]
	}
	return s, s != ""
}

// Resolve returns the recorded state for ref, or its owner when nothing has
// been recorded yet.
func (h *HistoryManager) Resolve(ref primitives.HistoryRef) string {
	if s, ok := h.Restore(ref); ok {
		return s
	}
	return ref.Owner
}

