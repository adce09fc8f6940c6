package primitives

import (
	"strconv"
	"strings"
)

// Hierarchy is the flat metadata computed from the control-state tree.
type Hierarchy struct {
	// Names lists user states in pre-order, duplicates included.
	Names []string
	// Shallow maps a state to its direct parent (empty when the parent is the root).
	Shallow map[string][]string
	// Deep maps a state to all its ancestors, nearest first, root excluded.
	Deep map[string][]string
	// Path maps a state to its dotted positional path. The root is "0".
	Path map[string]string
	// Compound marks states that declare substates.
	Compound map[string]bool
	// Duplicates lists every name seen more than once, in discovery order.
	Duplicates []string
}

// AnalyzeHierarchy walks the tree in pre-order. A duplicated name does not
// stop the walk: the first occurrence keeps its metadata and the name is
// recorded in Duplicates.
func AnalyzeHierarchy(states []State) *Hierarchy {
	h := &Hierarchy{
		Shallow:  make(map[string][]string),
		Deep:     make(map[string][]string),
		Path:     map[string]string{RootState: "0"},
		Compound: map[string]bool{RootState: true},
	}
	seen := make(map[string]int)
	h.walk(states, "0", nil, seen)
	return h
}

func (h *Hierarchy) walk(states []State, prefix string, ancestors []string, seen map[string]int) {
	for i, s := range states {
		h.Names = append(h.Names, s.Name)
		seen[s.Name]++
		if seen[s.Name] == 2 {
			h.Duplicates = append(h.Duplicates, s.Name)
		}

		path := prefix + "." + strconv.Itoa(i)
		if seen[s.Name] == 1 {
			h.Path[s.Name] = path
			h.Compound[s.Name] = s.IsCompound()
			h.Deep[s.Name] = append([]string(nil), ancestors...)
			if len(ancestors) > 0 {
				h.Shallow[s.Name] = []string{ancestors[0]}
			} else {
				h.Shallow[s.Name] = nil
			}
		}

		if s.IsCompound() {
			// nearest first
			next := make([]string, 0, len(ancestors)+1)
			next = append(next, s.Name)
			next = append(next, ancestors...)
			h.walk(s.Children, path, next, seen)
		}
	}
}

// Declared reports whether name is a user state or the root.
func (h *Hierarchy) Declared(name string) bool {
	_, ok := h.Path[name]
	return ok
}

// IsCompound reports whether name is a declared compound state (the root included).
func (h *Hierarchy) IsCompound(name string) bool {
	return h.Compound[name]
}

// Parent returns the direct parent of name, the root for top-level states.
func (h *Hierarchy) Parent(name string) string {
	if p := h.Shallow[name]; len(p) > 0 {
		return p[0]
	}
	return RootState
}

// Contains reports whether state a is inside state b or equal to it.
func (h *Hierarchy) Contains(b, a string) bool {
	pa, okA := h.Path[a]
	pb, okB := h.Path[b]
	if !okA || !okB {
		return false
	}
	return pa == pb || strings.HasPrefix(pa, pb+".")
}

// StrictlyContains reports whether a is inside b and differs from it.
func (h *Hierarchy) StrictlyContains(b, a string) bool {
	return a != b && h.Contains(b, a)
}

// Chain returns name followed by its ancestors, nearest first, and ends with
// the root. The root's chain is the root alone.
func (h *Hierarchy) Chain(name string) []string {
	if name == RootState {
		return []string{RootState}
	}
	deep := h.Deep[name]
	chain := make([]string, 0, len(deep)+2)
	chain = append(chain, name)
	chain = append(chain, deep...)
	return append(chain, RootState)
}
