package primitives

import (
	"fmt"
	"strings"
)

const (
	// RootState is the reserved name of the implicit top-level state.
	RootState = "nok"
	// InitEvent is the reserved automatic entry event.
	InitEvent = "init"
	// Eventless is the event name of automatic (transient) transitions.
	Eventless = ""
)

// State is a node of the control-state tree. A state with children is
// compound, a state without is atomic.
type State struct {
	Name     string
	Children []State
}

// Atomic returns a leaf state.
func Atomic(name string) State {
	return State{Name: name}
}

// Compound returns a state containing the given children.
func Compound(name string, children ...State) State {
	return State{Name: name, Children: children}
}

// IsCompound reports whether the state declares substates.
func (s State) IsCompound() bool {
	return len(s.Children) > 0
}

// Target is where a guard sends the machine: a control state or a history
// pseudo-state. The set of implementations is closed.
type Target interface {
	isTarget()
	String() string
}

// StateTarget targets a control state by name.
type StateTarget string

func (StateTarget) isTarget() {}

func (t StateTarget) String() string { return string(t) }

// HistoryKind selects shallow or deep history.
type HistoryKind int

const (
	Shallow HistoryKind = iota
	Deep
)

func (k HistoryKind) String() string {
	switch k {
	case Shallow:
		return "shallow"
	case Deep:
		return "deep"
	default:
		return "unknown"
	}
}

// HistoryRef is a history pseudo-state of a compound state. Valid only as a
// transition target.
type HistoryRef struct {
	Kind  HistoryKind
	Owner string
}

func (HistoryRef) isTarget() {}

// String renders the reference as H(owner) or H*(owner).
func (h HistoryRef) String() string {
	if h.Kind == Deep {
		return "H*(" + h.Owner + ")"
	}
	return "H(" + h.Owner + ")"
}

// To targets the named control state.
func To(name string) Target { return StateTarget(name) }

// ShallowHistory targets the shallow history of owner.
func ShallowHistory(owner string) Target { return HistoryRef{Kind: Shallow, Owner: owner} }

// DeepHistory targets the deep history of owner.
func DeepHistory(owner string) Target { return HistoryRef{Kind: Deep, Owner: owner} }

// ParseHistoryRef parses the H(owner) / H*(owner) text form.
func ParseHistoryRef(s string) (HistoryRef, bool) {
	var kind HistoryKind
	var rest string
	switch {
	case strings.HasPrefix(s, "H*("):
		kind, rest = Deep, s[3:]
	case strings.HasPrefix(s, "H("):
		kind, rest = Shallow, s[2:]
	default:
		return HistoryRef{}, false
	}
	if !strings.HasSuffix(rest, ")") || len(rest) < 2 {
		return HistoryRef{}, false
	}
	return HistoryRef{Kind: kind, Owner: rest[:len(rest)-1]}, true
}

// ParseTarget parses a target written as a state name or a history reference.
func ParseTarget(s string) Target {
	if h, ok := ParseHistoryRef(s); ok {
		return h
	}
	return StateTarget(s)
}

// ActionResult is what an action produces. A nil Outputs slice means the
// action has no output, which is distinct from an empty slice.
type ActionResult[U, O any] struct {
	Updates []U
	Outputs []O
}

// Predicate decides whether a guard applies.
type Predicate[S, U any] func(ext S, data any, settings *Settings[S, U]) bool

// Action computes extended-state updates and outputs for a transition.
type Action[S, U, O any] func(ext S, data any, settings *Settings[S, U]) (ActionResult[U, O], error)

// Guard is one alternative of a transition. A nil Predicate always holds and
// a nil Action produces neither updates nor output.
type Guard[S, U, O any] struct {
	// Name identifies the guard in diagnostics.
	Name      string
	Predicate Predicate[S, U]
	To        Target
	Action    Action[S, U, O]
	// ActionName identifies the action in diagnostics.
	ActionName string
}

// Transition groups every guarded alternative for one (From, Event) pair.
type Transition[S, U, O any] struct {
	From   string
	Event  string
	Guards []Guard[S, U, O]
}

// Unconditional returns a transition with a single always-true guard.
func Unconditional[S, U, O any](from, event string, to Target, action Action[S, U, O]) Transition[S, U, O] {
	return Transition[S, U, O]{
		From:   from,
		Event:  event,
		Guards: []Guard[S, U, O]{{To: to, Action: action}},
	}
}

// Guarded returns a transition over the given ordered guards.
func Guarded[S, U, O any](from, event string, guards ...Guard[S, U, O]) Transition[S, U, O] {
	return Transition[S, U, O]{From: from, Event: event, Guards: guards}
}

// IsUnconditional reports whether the transition is a single guard without
// predicate.
func (t Transition[S, U, O]) IsUnconditional() bool {
	return len(t.Guards) == 1 && t.Guards[0].Predicate == nil
}

// IsFullyGuarded reports whether every guard carries a predicate.
func (t Transition[S, U, O]) IsFullyGuarded() bool {
	if len(t.Guards) == 0 {
		return false
	}
	for _, g := range t.Guards {
		if g.Predicate == nil {
			return false
		}
	}
	return true
}

func (t Transition[S, U, O]) String() string {
	ev := t.Event
	if ev == Eventless {
		ev = "<eventless>"
	}
	return fmt.Sprintf("%s -[%s]->", t.From, ev)
}

// Debug configures the diagnostics of a machine.
type Debug struct {
	CheckContracts bool
	Console        Console
}

// Settings is handed to every guard and action.
type Settings[S, U any] struct {
	// UpdateState applies updates to the extended state. It must not mutate
	// its first argument.
	UpdateState func(ext S, updates []U) (S, error)
	Debug       Debug
	// Extra carries caller-injected values for guards and actions.
	Extra map[string]any
}

// Definition is the declarative description of a machine.
type Definition[S, U, O any] struct {
	States               []State
	Events               []string
	Transitions          []Transition[S, U, O]
	InitialControlState  string
	InitialExtendedState S
	Settings             Settings[S, U]
}

// Normalize returns a copy of the definition where InitialControlState has
// been turned into an explicit root init transition.
func (d Definition[S, U, O]) Normalize() Definition[S, U, O] {
	if d.InitialControlState == "" {
		return d
	}
	out := d
	out.Transitions = make([]Transition[S, U, O], 0, len(d.Transitions)+1)
	out.Transitions = append(out.Transitions, Unconditional[S, U, O](RootState, InitEvent, To(d.InitialControlState), nil))
	out.Transitions = append(out.Transitions, d.Transitions...)
	out.InitialControlState = ""
	return out
}
