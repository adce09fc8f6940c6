// Package decorate rewrites definitions by wrapping their actions.
package decorate

import (
	"github.com/comalice/fsmx"
)

// TraceRecord describes one fired transition.
type TraceRecord[S, U, O any] struct {
	From             string
	Event            string
	To               fsmx.Target
	GuardIndex       int
	GuardName        string
	ActionName       string
	EventData        any
	ExtendedState    S
	NewExtendedState S
	Updates          []U
	// Outputs is nil when the action produced no output.
	Outputs []O
}

// Trace returns a definition behaving like def whose actions output one
// TraceRecord each instead of their own outputs. The initial transition is
// made explicit so that starting the machine is traced too.
func Trace[S, U, O any](def fsmx.Definition[S, U, O]) fsmx.Definition[S, U, TraceRecord[S, U, O]] {
	def = def.Normalize()
	out := fsmx.Definition[S, U, TraceRecord[S, U, O]]{
		States:               def.States,
		Events:               def.Events,
		InitialControlState:  def.InitialControlState,
		InitialExtendedState: def.InitialExtendedState,
		Settings:             def.Settings,
		Transitions:          make([]fsmx.Transition[S, U, TraceRecord[S, U, O]], 0, len(def.Transitions)),
	}
	for _, t := range def.Transitions {
		traced := fsmx.Transition[S, U, TraceRecord[S, U, O]]{
			From:   t.From,
			Event:  t.Event,
			Guards: make([]fsmx.Guard[S, U, TraceRecord[S, U, O]], len(t.Guards)),
		}
		for i, g := range t.Guards {
			traced.Guards[i] = fsmx.Guard[S, U, TraceRecord[S, U, O]]{
				Name:       g.Name,
				Predicate:  g.Predicate,
				To:         g.To,
				Action:     traceAction(t, i, g),
				ActionName: g.ActionName,
			}
		}
		out.Transitions = append(out.Transitions, traced)
	}
	return out
}

func traceAction[S, U, O any](t fsmx.Transition[S, U, O], i int, g fsmx.Guard[S, U, O]) fsmx.Action[S, U, TraceRecord[S, U, O]] {
	return func(ext S, data any, settings *fsmx.Settings[S, U]) (fsmx.ActionResult[U, TraceRecord[S, U, O]], error) {
		var res fsmx.ActionResult[U, O]
		if g.Action != nil {
			var err error
			if res, err = g.Action(ext, data, settings); err != nil {
				return fsmx.ActionResult[U, TraceRecord[S, U, O]]{}, err
			}
		}
		next, err := reduce(ext, res.Updates, settings)
		if err != nil {
			return fsmx.ActionResult[U, TraceRecord[S, U, O]]{}, err
		}
		rec := TraceRecord[S, U, O]{
			From:             t.From,
			Event:            t.Event,
			To:               g.To,
			GuardIndex:       i,
			GuardName:        g.Name,
			ActionName:       g.ActionName,
			EventData:        data,
			ExtendedState:    ext,
			NewExtendedState: next,
			Updates:          res.Updates,
			Outputs:          res.Outputs,
		}
		return fsmx.ActionResult[U, TraceRecord[S, U, O]]{
			Updates: res.Updates,
			Outputs: []TraceRecord[S, U, O]{rec},
		}, nil
	}
}

// reduce computes the extended state the engine will hold after updates.
func reduce[S, U any](ext S, updates []U, settings *fsmx.Settings[S, U]) (S, error) {
	if len(updates) == 0 {
		return ext, nil
	}
	if settings.UpdateState == nil {
		return ext, fsmx.ErrNilUpdateState
	}
	return settings.UpdateState(ext, updates)
}
