// Package fsmx is a hierarchical state machine library with history states,
// eventless transitions and a design-time contract checker.
//
// A machine is described by a Definition: a tree of named states, the events
// it reacts to and a list of guarded transitions. Actions never mutate the
// extended state; they return updates that the user-supplied
// Settings.UpdateState reducer folds into a new extended state.
//
//	m, err := fsmx.CreateStateMachine(def)
//	out, err := m.Start()
//	out, err = m.Send(fsmx.NewEvent("go", nil))
package fsmx

import (
	"github.com/google/uuid"

	"github.com/comalice/fsmx/internal/contracts"
	"github.com/comalice/fsmx/internal/core"
	"github.com/comalice/fsmx/internal/primitives"
)

const (
	// RootState is the reserved state a machine is in before its first init event.
	RootState = primitives.RootState
	// InitEvent starts a machine and enters the initial child of compound states.
	InitEvent = primitives.InitEvent
	// Eventless is the event name of automatic transitions.
	Eventless = primitives.Eventless
)

var (
	// ErrContracts is matched by the *ContractsError of a rejected definition.
	ErrContracts = contracts.ErrContracts
	// ErrNilUpdateState is returned when an action produces updates but
	// Settings.UpdateState is nil.
	ErrNilUpdateState = core.ErrNilUpdateState
	// ErrCascadeLimit is returned when automatic transitions keep firing past
	// the cascade limit.
	ErrCascadeLimit = core.ErrCascadeLimit
)

type (
	Event       = primitives.Event
	State       = primitives.State
	Target      = primitives.Target
	StateTarget = primitives.StateTarget
	HistoryRef  = primitives.HistoryRef
	HistoryKind = primitives.HistoryKind
	Console     = primitives.Console
	NoopConsole = primitives.NoopConsole
	Debug       = primitives.Debug

	Definition[S, U, O any] = primitives.Definition[S, U, O]
	Settings[S, U any]      = primitives.Settings[S, U]
	Transition[S, U, O any] = primitives.Transition[S, U, O]
	Guard[S, U, O any]      = primitives.Guard[S, U, O]
	Predicate[S, U any]     = primitives.Predicate[S, U]
	Action[S, U, O any]     = primitives.Action[S, U, O]
	ActionResult[U, O any]  = primitives.ActionResult[U, O]
	Machine[S, U, O any]    = core.Machine[S, U, O]
	Option                  = core.Option
	Observer                = core.Observer
	UnhandledReason         = core.UnhandledReason
	ActionError             = core.ActionError
	ContractsError          = contracts.Error
	ContractReport          = contracts.Report
	ContractFailure         = contracts.Failure
)

const (
	Shallow = primitives.Shallow
	Deep    = primitives.Deep

	NoHandler        = core.NoHandler
	NoGuardSatisfied = core.NoGuardSatisfied
	InitRejected     = core.InitRejected
)

// CreateStateMachine builds a machine from def. The machine waits in
// RootState until Start is called.
//
// With def.Settings.Debug.CheckContracts set, every contract is checked
// first and all failures are returned as a single *ContractsError.
func CreateStateMachine[S, U, O any](def Definition[S, U, O], opts ...Option) (*Machine[S, U, O], error) {
	if def.Settings.Debug.CheckContracts {
		if err := contracts.Check(def).Err(); err != nil {
			return nil, err
		}
	}
	opts = append([]Option{core.WithMachineID(uuid.NewString())}, opts...)
	return core.NewMachine(def.Normalize(), opts...), nil
}

// CheckContracts runs every contract against def and reports all failures.
func CheckContracts[S, U, O any](def Definition[S, U, O]) ContractReport {
	return contracts.Check(def)
}

// WithMachineID overrides the random machine ID used in diagnostics.
func WithMachineID(id string) Option { return core.WithMachineID(id) }

// WithObserver attaches obs to the machine.
func WithObserver(obs Observer) Option { return core.WithObserver(obs) }

// WithCascadeLimit bounds the number of automatic transitions following one event.
func WithCascadeLimit(n int) Option { return core.WithCascadeLimit(n) }

// NewEvent creates an event carrying data.
func NewEvent(name string, data any) Event { return primitives.NewEvent(name, data) }

// Atomic declares a state without children.
func Atomic(name string) State { return primitives.Atomic(name) }

// Compound declares a state containing children, in order.
func Compound(name string, children ...State) State { return primitives.Compound(name, children...) }

// To targets the named state.
func To(name string) Target { return primitives.To(name) }

// ShallowHistory targets the last exited direct child of owner.
func ShallowHistory(owner string) Target { return primitives.ShallowHistory(owner) }

// DeepHistory targets the last exited state anywhere below owner.
func DeepHistory(owner string) Target { return primitives.DeepHistory(owner) }

// ParseTarget reads "H(owner)" and "H*(owner)" as history references and
// anything else as a state name.
func ParseTarget(s string) Target { return primitives.ParseTarget(s) }

// Unconditional returns a transition that always fires.
func Unconditional[S, U, O any](from, event string, to Target, action Action[S, U, O]) Transition[S, U, O] {
	return primitives.Unconditional(from, event, to, action)
}

// Guarded returns a transition over ordered guards; the first satisfied one fires.
func Guarded[S, U, O any](from, event string, guards ...Guard[S, U, O]) Transition[S, U, O] {
	return primitives.Guarded(from, event, guards...)
}
