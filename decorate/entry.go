package decorate

import (
	"fmt"
	"sort"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/internal/primitives"
)

// MergeFunc combines the outputs of a transition action with the outputs of
// the entry action that follows it.
type MergeFunc[O any] func(action, entry []O) []O

// ConcatOutputs appends entry outputs to action outputs. The result is nil
// only when both are nil.
func ConcatOutputs[O any](action, entry []O) []O {
	if action == nil && entry == nil {
		return nil
	}
	out := make([]O, 0, len(action)+len(entry))
	out = append(out, action...)
	return append(out, entry...)
}

// WithEntryActions returns a copy of def where every transition into a state
// of entry also runs that state's entry action after its own action.
//
// The entry action sees the extended state produced by the transition
// action's updates. Updates of both actions are concatenated in order,
// which matches applying them one after the other for a folding reducer.
// Outputs are combined by merge, ConcatOutputs when nil. Transitions to
// history states are left untouched.
func WithEntryActions[S, U, O any](def fsmx.Definition[S, U, O], entry map[string]fsmx.Action[S, U, O], merge MergeFunc[O]) (fsmx.Definition[S, U, O], error) {
	h := primitives.AnalyzeHierarchy(def.States)
	var unknown []string
	for name := range entry {
		if !h.Declared(name) || name == fsmx.RootState {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return def, fmt.Errorf("entry actions for undeclared states: %v", unknown)
	}
	if merge == nil {
		merge = ConcatOutputs[O]
	}

	def = def.Normalize()
	out := def
	out.Transitions = make([]fsmx.Transition[S, U, O], 0, len(def.Transitions))
	for _, t := range def.Transitions {
		decorated := t
		decorated.Guards = make([]fsmx.Guard[S, U, O], len(t.Guards))
		for i, g := range t.Guards {
			decorated.Guards[i] = g
			target, ok := g.To.(fsmx.StateTarget)
			if !ok {
				continue
			}
			if onEntry, ok := entry[string(target)]; ok && onEntry != nil {
				decorated.Guards[i].Action = chain(g.Action, onEntry, string(target), merge)
			}
		}
		out.Transitions = append(out.Transitions, decorated)
	}
	return out, nil
}

func chain[S, U, O any](action, onEntry fsmx.Action[S, U, O], state string, merge MergeFunc[O]) fsmx.Action[S, U, O] {
	return func(ext S, data any, settings *fsmx.Settings[S, U]) (fsmx.ActionResult[U, O], error) {
		var first fsmx.ActionResult[U, O]
		if action != nil {
			var err error
			if first, err = action(ext, data, settings); err != nil {
				return fsmx.ActionResult[U, O]{}, err
			}
		}
		next, err := reduce(ext, first.Updates, settings)
		if err != nil {
			return fsmx.ActionResult[U, O]{}, err
		}
		second, err := onEntry(next, data, settings)
		if err != nil {
			return fsmx.ActionResult[U, O]{}, fmt.Errorf("entry action of %s: %w", state, err)
		}

		var updates []U
		if len(first.Updates)+len(second.Updates) > 0 {
			updates = make([]U, 0, len(first.Updates)+len(second.Updates))
			updates = append(updates, first.Updates...)
			updates = append(updates, second.Updates...)
		}
		return fsmx.ActionResult[U, O]{Updates: updates, Outputs: merge(first.Outputs, second.Outputs)}, nil
	}
}
