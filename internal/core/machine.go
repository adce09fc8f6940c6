package core

import (
	"errors"
	"fmt"

	"github.com/comalice/fsmx/internal/primitives"
)

var (
	// ErrNilUpdateState is returned when an action produced updates and the
	// settings carry no reducer.
	ErrNilUpdateState = errors.New("settings.UpdateState is nil")
	// ErrCascadeLimit is returned when automatic transitions do not settle.
	ErrCascadeLimit = errors.New("automatic transitions did not settle")
)

// ActionError annotates a failure of a user-supplied action or reducer with
// the transition it happened on.
type ActionError struct {
	From    string
	Event   string
	Guard   int
	Name    string
	Reducer bool
	Err     error
}

func (e *ActionError) Error() string {
	what := "action"
	if e.Reducer {
		what = "updateState after action"
	}
	name := e.Name
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("%s %s (guard %d of %s on %q) failed: %v", what, name, e.Guard, e.From, e.Event, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// Machine is the runtime instance of a definition.
// Single-threaded: Send must not be called concurrently, nor from inside a
// guard or action of the same machine.
type Machine[S, U, O any] struct {
	id        string
	hierarchy *primitives.Hierarchy
	index     *primitives.TransitionIndex[S, U, O]
	history   *HistoryManager
	settings  *primitives.Settings[S, U]
	console   primitives.Console
	observer  Observer
	limit     int

	current string
	ext     S
}

// NewMachine creates a Machine in the root state. def must already be
// normalized (see primitives.Definition.Normalize).
func NewMachine[S, U, O any](def primitives.Definition[S, U, O], opts ...Option) *Machine[S, U, O] {
	o := options{observer: noopObserver{}, cascadeLimit: DefaultCascadeLimit}
	for _, opt := range opts {
		opt(&o)
	}

	hierarchy := primitives.AnalyzeHierarchy(def.States)
	settings := def.Settings
	return &Machine[S, U, O]{
		id:        o.id,
		hierarchy: hierarchy,
		index:     primitives.IndexTransitions(def.Transitions),
		history:   NewHistoryManager(hierarchy),
		settings:  &settings,
		console:   primitives.ConsoleOrNoop(settings.Debug.Console),
		observer:  o.observer,
		limit:     o.cascadeLimit,
		current:   primitives.RootState,
		ext:       def.InitialExtendedState,
	}
}

// ID returns the machine identifier.
func (m *Machine[S, U, O]) ID() string { return m.id }

// Current returns the current control state.
func (m *Machine[S, U, O]) Current() string { return m.current }

// ExtendedState returns the current extended state.
func (m *Machine[S, U, O]) ExtendedState() S { return m.ext }

// Started reports whether the machine has left the root state.
func (m *Machine[S, U, O]) Started() bool { return m.current != primitives.RootState }

// Start sends the init event with no data.
func (m *Machine[S, U, O]) Start() ([]O, error) {
	return m.Send(primitives.NewEvent(primitives.InitEvent, nil))
}

// Send processes one event and every automatic transition it leads to. A
// nil slice means no output.
func (m *Machine[S, U, O]) Send(evt primitives.Event) ([]O, error) {
	if evt.IsInit() && m.Started() {
		m.console.Warn("init event rejected: machine already started", m.id, m.current)
		m.observer.OnUnhandled(m.id, m.current, evt.Name, InitRejected)
		return nil, nil
	}

	first, fired, err := m.step(evt.Name, evt.Data, false)
	if err != nil || !fired {
		return nil, err
	}
	outputs := appendOutputs(nil, first)

	for n := 0; ; n++ {
		event, automatic := m.automaticEvent()
		if !automatic {
			break
		}
		if n >= m.limit {
			return nil, fmt.Errorf("%w: %d steps from %s", ErrCascadeLimit, n, m.current)
		}
		out, fired, err := m.step(event, evt.Data, true)
		if err != nil {
			return nil, err
		}
		if !fired {
			break
		}
		outputs = appendOutputs(outputs, out)
	}
	return outputs, nil
}

// automaticEvent returns the event a freshly entered state raises on its
// own: init for compound states, the eventless event for states declaring an
// eventless transition.
func (m *Machine[S, U, O]) automaticEvent() (string, bool) {
	if m.hierarchy.IsCompound(m.current) {
		return primitives.InitEvent, true
	}
	if m.index.Handles(m.current, primitives.Eventless) {
		return primitives.Eventless, true
	}
	return "", false
}

// step runs one transition. It reports false when no handler or guard applied.
func (m *Machine[S, U, O]) step(event string, data any, automatic bool) ([]O, bool, error) {
	m.observer.OnEvent(m.id, m.current, event)

	handler, found := m.lookup(event, automatic)
	if !found {
		m.console.Warn("no handler for event", eventName(event), "in state", m.current)
		m.observer.OnUnhandled(m.id, m.current, event, NoHandler)
		return nil, false, nil
	}
	m.console.Debug("found event handler", eventName(event), "declared by", handler.From, "current state", m.current)

	for i, g := range handler.Guards {
		if g.Predicate != nil && !g.Predicate(m.ext, data, m.settings) {
			continue
		}
		m.console.Debug("guard satisfied", guardName(g, i), "target", g.To)

		res, err := m.runAction(g, data)
		if err != nil {
			return nil, false, &ActionError{From: handler.From, Event: event, Guard: i, Name: g.ActionName, Err: err}
		}

		if err := m.apply(res.Updates); err != nil {
			return nil, false, &ActionError{From: handler.From, Event: event, Guard: i, Name: g.ActionName, Reducer: true, Err: err}
		}

		from := m.current
		m.leave(from)
		m.enter(g.To)
		m.observer.OnTransition(m.id, from, event, m.current)
		return res.Outputs, true, nil
	}

	m.console.Warn("no guard satisfied for event", eventName(event), "declared by", handler.From)
	m.observer.OnUnhandled(m.id, m.current, event, NoGuardSatisfied)
	return nil, false, nil
}

// lookup walks from the current state up to the root and returns the first
// handler for event. Automatic events only consult the current state.
func (m *Machine[S, U, O]) lookup(event string, ownOnly bool) (*primitives.Handler[S, U, O], bool) {
	if ownOnly {
		return m.index.Lookup(m.current, event)
	}
	for _, state := range m.hierarchy.Chain(m.current) {
		if h, ok := m.index.Lookup(state, event); ok {
			return h, true
		}
	}
	return nil, false
}

func (m *Machine[S, U, O]) runAction(g primitives.Guard[S, U, O], data any) (primitives.ActionResult[U, O], error) {
	if g.Action == nil {
		return primitives.ActionResult[U, O]{}, nil
	}
	return g.Action(m.ext, data, m.settings)
}

func (m *Machine[S, U, O]) leave(state string) {
	if state == primitives.RootState {
		return
	}
	m.history.RecordExit(state)
	m.console.Debug("left state", state)
}

func (m *Machine[S, U, O]) apply(updates []U) error {
	if m.settings.UpdateState == nil {
		if len(updates) > 0 {
			return ErrNilUpdateState
		}
		return nil
	}
	ext, err := m.settings.UpdateState(m.ext, updates)
	if err != nil {
		return err
	}
	m.ext = ext
	return nil
}

func (m *Machine[S, U, O]) enter(to primitives.Target) {
	switch t := to.(type) {
	case primitives.HistoryRef:
		m.current = m.history.Resolve(t)
		m.console.Debug("entered state", m.current, "through", t.String())
	case primitives.StateTarget:
		m.current = string(t)
		m.console.Debug("entered state", m.current)
	}
}
