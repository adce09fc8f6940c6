package fsmx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/comalice/fsmx/internal/primitives"
)

// Builder provides a fluent API for constructing a Definition from string
// state names. Dotted paths ("parent.child") declare hierarchy; transition
// targets use the plain state name or a history reference such as "H(parent)".
type Builder[S, U, O any] struct {
	root   *stateNode
	nodes  map[string]*stateNode
	def    Definition[S, U, O]
	rows   map[rowKey]int // (from, event) -> index in def.Transitions
	events map[string]bool
	errs   []error
}

// StateBuilder configures one state of a Builder.
type StateBuilder[S, U, O any] struct {
	b    *Builder[S, U, O]
	name string
}

type stateNode struct {
	name     string
	parent   *stateNode
	children []*stateNode
}

type rowKey struct{ from, event string }

// NewBuilder creates an empty builder.
func NewBuilder[S, U, O any]() *Builder[S, U, O] {
	return &Builder[S, U, O]{
		root:   &stateNode{name: RootState},
		nodes:  make(map[string]*stateNode),
		rows:   make(map[rowKey]int),
		events: make(map[string]bool),
	}
}

// Initial sets the state entered when the machine starts.
func (b *Builder[S, U, O]) Initial(name string) *Builder[S, U, O] {
	b.def.InitialControlState = name
	return b
}

// Events declares events up front. Events used by transitions are declared
// automatically, in order of first use.
func (b *Builder[S, U, O]) Events(names ...string) *Builder[S, U, O] {
	for _, n := range names {
		b.declareEvent(n)
	}
	return b
}

// ExtendedState sets the initial extended state.
func (b *Builder[S, U, O]) ExtendedState(ext S) *Builder[S, U, O] {
	b.def.InitialExtendedState = ext
	return b
}

// UpdateState sets the reducer applying action updates.
func (b *Builder[S, U, O]) UpdateState(fn func(ext S, updates []U) (S, error)) *Builder[S, U, O] {
	b.def.Settings.UpdateState = fn
	return b
}

// Console routes engine diagnostics to c.
func (b *Builder[S, U, O]) Console(c Console) *Builder[S, U, O] {
	b.def.Settings.Debug.Console = c
	return b
}

// CheckContracts makes Machine validate the definition before creating it.
func (b *Builder[S, U, O]) CheckContracts() *Builder[S, U, O] {
	b.def.Settings.Debug.CheckContracts = true
	return b
}

// Extra injects a value visible to guards and actions through Settings.Extra.
func (b *Builder[S, U, O]) Extra(key string, value any) *Builder[S, U, O] {
	if b.def.Settings.Extra == nil {
		b.def.Settings.Extra = make(map[string]any)
	}
	b.def.Settings.Extra[key] = value
	return b
}

// State creates or retrieves a state. A dotted path creates missing
// ancestors as compound states; a plain name refers to an existing state
// wherever it was declared, or creates a top-level one.
func (b *Builder[S, U, O]) State(path string) *StateBuilder[S, U, O] {
	segments := strings.Split(path, ".")
	var node *stateNode
	for i, seg := range segments {
		if seg == "" {
			b.errs = append(b.errs, fmt.Errorf("state path %q has an empty segment", path))
			return &StateBuilder[S, U, O]{b: b, name: path}
		}
		if i == 0 {
			node = b.node(seg, b.root, false)
			continue
		}
		node = b.node(seg, node, true)
	}
	return &StateBuilder[S, U, O]{b: b, name: node.name}
}

// node returns the named state, creating it under parent when unknown.
// strict requires an existing state to already be a child of parent.
func (b *Builder[S, U, O]) node(name string, parent *stateNode, strict bool) *stateNode {
	if n, ok := b.nodes[name]; ok {
		if strict && n.parent != parent {
			b.errs = append(b.errs, fmt.Errorf("state %q already declared under %q, not %q", name, n.parent.name, parent.name))
		}
		return n
	}
	n := &stateNode{name: name, parent: parent}
	parent.children = append(parent.children, n)
	b.nodes[name] = n
	return n
}

func (b *Builder[S, U, O]) declareEvent(name string) {
	if name == InitEvent || name == Eventless || b.events[name] {
		return
	}
	b.events[name] = true
	b.def.Events = append(b.def.Events, name)
}

func (b *Builder[S, U, O]) addGuards(from, event string, guards ...Guard[S, U, O]) {
	b.declareEvent(event)
	key := rowKey{from, event}
	if i, ok := b.rows[key]; ok {
		b.def.Transitions[i].Guards = append(b.def.Transitions[i].Guards, guards...)
		return
	}
	b.rows[key] = len(b.def.Transitions)
	b.def.Transitions = append(b.def.Transitions, primitives.Guarded(from, event, guards...))
}

// Build returns the definition. Errors only report misuse of the builder;
// use CheckContracts for the semantic validation of the result.
func (b *Builder[S, U, O]) Build() (Definition[S, U, O], error) {
	if err := errors.Join(b.errs...); err != nil {
		return Definition[S, U, O]{}, err
	}
	def := b.def
	def.States = toStates(b.root.children)
	return def, nil
}

// Machine builds the definition and creates a machine from it.
func (b *Builder[S, U, O]) Machine(opts ...Option) (*Machine[S, U, O], error) {
	def, err := b.Build()
	if err != nil {
		return nil, err
	}
	return CreateStateMachine(def, opts...)
}

func toStates(nodes []*stateNode) []State {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]State, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, State{Name: n.name, Children: toStates(n.children)})
	}
	return out
}

// Name returns the state name.
func (sb *StateBuilder[S, U, O]) Name() string { return sb.name }

// State creates or retrieves a child of this state.
func (sb *StateBuilder[S, U, O]) State(child string) *StateBuilder[S, U, O] {
	parent, ok := sb.b.nodes[sb.name]
	if !ok {
		return sb.b.State(sb.name + "." + child)
	}
	n := sb.b.node(child, parent, true)
	return &StateBuilder[S, U, O]{b: sb.b, name: n.name}
}

// Initial sets the child entered when this compound state is entered.
func (sb *StateBuilder[S, U, O]) Initial(child string, action Action[S, U, O]) *StateBuilder[S, U, O] {
	sb.b.addGuards(sb.name, InitEvent, Guard[S, U, O]{To: To(child), Action: action})
	return sb
}

// On adds an unconditional transition to target on event.
func (sb *StateBuilder[S, U, O]) On(event, target string, action Action[S, U, O]) *StateBuilder[S, U, O] {
	sb.b.addGuards(sb.name, event, Guard[S, U, O]{To: ParseTarget(target), Action: action})
	return sb
}

// OnIf adds a guarded alternative for event. Alternatives for the same event
// are tried in the order they were added.
func (sb *StateBuilder[S, U, O]) OnIf(event, target string, when Predicate[S, U], action Action[S, U, O]) *StateBuilder[S, U, O] {
	sb.b.addGuards(sb.name, event, Guard[S, U, O]{Predicate: when, To: ParseTarget(target), Action: action})
	return sb
}

// Always adds an eventless alternative, taken as soon as the state is entered
// and when holds.
func (sb *StateBuilder[S, U, O]) Always(target string, when Predicate[S, U], action Action[S, U, O]) *StateBuilder[S, U, O] {
	sb.b.addGuards(sb.name, Eventless, Guard[S, U, O]{Predicate: when, To: ParseTarget(target), Action: action})
	return sb
}

// Guards appends fully specified guards for event.
func (sb *StateBuilder[S, U, O]) Guards(event string, guards ...Guard[S, U, O]) *StateBuilder[S, U, O] {
	sb.b.addGuards(sb.name, event, guards...)
	return sb
}
