package core

// UnhandledReason tells why an event produced no transition.
type UnhandledReason int

const (
	// NoHandler: no state on the ancestor chain handles the event.
	NoHandler UnhandledReason = iota
	// NoGuardSatisfied: a handler exists but every predicate returned false.
	NoGuardSatisfied
	// InitRejected: the init event was sent to a running machine.
	InitRejected
)

func (r UnhandledReason) String() string {
	switch r {
	case NoHandler:
		return "no_handler"
	case NoGuardSatisfied:
		return "no_guard_satisfied"
	case InitRejected:
		return "init_rejected"
	default:
		return "unknown"
	}
}

// Observer is notified of what a machine does. It must not call back into
// the machine.
type Observer interface {
	OnEvent(machineID, state, event string)
	OnTransition(machineID, from, event, to string)
	OnUnhandled(machineID, state, event string, reason UnhandledReason)
}

type noopObserver struct{}

func (noopObserver) OnEvent(string, string, string)                      {}
func (noopObserver) OnTransition(string, string, string, string)         {}
func (noopObserver) OnUnhandled(string, string, string, UnhandledReason) {}

// DefaultCascadeLimit bounds the automatic transitions run for one event.
const DefaultCascadeLimit = 1024

type options struct {
	id           string
	observer     Observer
	cascadeLimit int
}

// Option applies configuration to a Machine via functional options pattern.
type Option func(*options)

// WithMachineID sets the identifier reported to the console and observers.
func WithMachineID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithObserver configures the Machine with an Observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithCascadeLimit bounds the number of automatic transitions one event may
// trigger. Values below 1 are ignored.
func WithCascadeLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cascadeLimit = n
		}
	}
}
