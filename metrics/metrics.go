// Package metrics exposes machine activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/comalice/fsmx"
)

const namespace = "fsmx"

var _ fsmx.Observer = (*Observer)(nil)

// Observer is a fsmx.Observer counting what machines do. One Observer may be
// shared by many machines; they are told apart by the machine label.
type Observer struct {
	EventsTotal      *prometheus.CounterVec
	TransitionsTotal *prometheus.CounterVec
	UnhandledTotal   *prometheus.CounterVec
	// CurrentState is 1 for the state each machine is in.
	CurrentState *prometheus.GaugeVec
}

// New registers the collectors with registerer, the default Prometheus
// registerer when nil.
func New(registerer prometheus.Registerer) *Observer {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Observer{
		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Total number of events processed, automatic events included",
			},
			[]string{"machine", "state", "event"},
		),
		TransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Total number of fired transitions",
			},
			[]string{"machine", "from", "event", "to"},
		),
		UnhandledTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "unhandled_events_total",
				Help:      "Total number of events that fired no transition",
			},
			[]string{"machine", "state", "event", "reason"}, // reason: no_handler, no_guard_satisfied, init_rejected
		),
		CurrentState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "current_state",
				Help:      "Control state each machine is in",
			},
			[]string{"machine", "state"},
		),
	}
}

func (o *Observer) OnEvent(machine, state, event string) {
	o.EventsTotal.WithLabelValues(machine, state, eventLabel(event)).Inc()
}

func (o *Observer) OnTransition(machine, from, event, to string) {
	o.TransitionsTotal.WithLabelValues(machine, from, eventLabel(event), to).Inc()
	if from != to {
		o.CurrentState.DeleteLabelValues(machine, from)
	}
	o.CurrentState.WithLabelValues(machine, to).Set(1)
}

func (o *Observer) OnUnhandled(machine, state, event string, reason fsmx.UnhandledReason) {
	o.UnhandledTotal.WithLabelValues(machine, state, eventLabel(event), reason.String()).Inc()
}

// Forget drops the series of a machine that is no longer used.
func (o *Observer) Forget(machine string) {
	labels := prometheus.Labels{"machine": machine}
	o.EventsTotal.DeletePartialMatch(labels)
	o.TransitionsTotal.DeletePartialMatch(labels)
	o.UnhandledTotal.DeletePartialMatch(labels)
	o.CurrentState.DeletePartialMatch(labels)
}

func eventLabel(event string) string {
	if event == fsmx.Eventless {
		return "eventless"
	}
	return event
}
