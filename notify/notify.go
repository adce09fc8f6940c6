// Package notify forwards machine activity to other parts of a program.
package notify

import (
	"sync/atomic"

	"github.com/comalice/fsmx"
)

// Kind tells which observer callback produced a Notification.
type Kind int

const (
	EventReceived Kind = iota
	Transitioned
	Unhandled
)

func (k Kind) String() string {
	switch k {
	case EventReceived:
		return "event"
	case Transitioned:
		return "transition"
	case Unhandled:
		return "unhandled"
	default:
		return "unknown"
	}
}

// Notification is one observed step. To is set for transitions, Reason for
// unhandled events.
type Notification struct {
	Kind    Kind
	Machine string
	State   string
	Event   string
	To      string
	Reason  fsmx.UnhandledReason
}

// ChannelPublisher is an fsmx.Observer forwarding notifications to a Go channel.
// Non-blocking publish with drop on backpressure.
type ChannelPublisher struct {
	ch      chan<- Notification
	dropped atomic.Uint64
}

var _ fsmx.Observer = (*ChannelPublisher)(nil)

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- Notification) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) OnEvent(machine, state, event string) {
	p.publish(Notification{Kind: EventReceived, Machine: machine, State: state, Event: event})
}

func (p *ChannelPublisher) OnTransition(machine, from, event, to string) {
	p.publish(Notification{Kind: Transitioned, Machine: machine, State: from, Event: event, To: to})
}

func (p *ChannelPublisher) OnUnhandled(machine, state, event string, reason fsmx.UnhandledReason) {
	p.publish(Notification{Kind: Unhandled, Machine: machine, State: state, Event: event, Reason: reason})
}

func (p *ChannelPublisher) publish(n Notification) {
	select {
	case p.ch <- n:
	default:
		p.dropped.Add(1)
	}
}

// Dropped returns how many notifications were lost to a full channel.
func (p *ChannelPublisher) Dropped() uint64 { return p.dropped.Load() }

// Close closes the output channel. The publisher must not be used afterwards.
func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}

// Multi fans every callback out to observers, in order.
type Multi []fsmx.Observer

func (m Multi) OnEvent(machine, state, event string) {
	for _, o := range m {
		o.OnEvent(machine, state, event)
	}
}

func (m Multi) OnTransition(machine, from, event, to string) {
	for _, o := range m {
		o.OnTransition(machine, from, event, to)
	}
}

func (m Multi) OnUnhandled(machine, state, event string, reason fsmx.UnhandledReason) {
	for _, o := range m {
		o.OnUnhandled(machine, state, event, reason)
	}
}
