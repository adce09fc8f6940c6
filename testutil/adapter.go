package testutil

import (
	"reflect"
	"testing"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/decorate"
)

// Runner provides a common interface over plain and traced machines.
// This allows running the same scenario on both.
type Runner[O any] interface {
	Start() ([]O, error)
	Send(evt fsmx.Event) ([]O, error)
	Current() string
}

// Step is one event of a scenario with the expected outputs and resulting
// control state. A nil Want expects no output.
type Step[O any] struct {
	Event string
	Data  any
	Want  []O
	State string
}

// Run starts r and sends each step, failing t on the first divergence.
func Run[O any](t testing.TB, r Runner[O], steps []Step[O]) {
	t.Helper()
	if _, err := r.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i, s := range steps {
		out, err := r.Send(fsmx.NewEvent(s.Event, s.Data))
		if err != nil {
			t.Fatalf("step %d (%q): %v", i, s.Event, err)
		}
		if !reflect.DeepEqual(out, s.Want) {
			t.Fatalf("step %d (%q): outputs %#v, want %#v", i, s.Event, out, s.Want)
		}
		if s.State != "" && r.Current() != s.State {
			t.Fatalf("step %d (%q): state %s, want %s", i, s.Event, r.Current(), s.State)
		}
	}
}

// Plain creates a machine from def.
func Plain[S, U, O any](def fsmx.Definition[S, U, O], opts ...fsmx.Option) (Runner[O], error) {
	m, err := fsmx.CreateStateMachine(def, opts...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// TracedRunner runs the traced form of a definition and reports the outputs
// of the original actions, keeping every record.
type TracedRunner[S, U, O any] struct {
	m       *fsmx.Machine[S, U, decorate.TraceRecord[S, U, O]]
	Records []decorate.TraceRecord[S, U, O]
}

// Traced creates a machine from the traced form of def.
func Traced[S, U, O any](def fsmx.Definition[S, U, O], opts ...fsmx.Option) (*TracedRunner[S, U, O], error) {
	m, err := fsmx.CreateStateMachine(decorate.Trace(def), opts...)
	if err != nil {
		return nil, err
	}
	return &TracedRunner[S, U, O]{m: m}, nil
}

func (r *TracedRunner[S, U, O]) Start() ([]O, error) {
	return r.collect(r.m.Start())
}

func (r *TracedRunner[S, U, O]) Send(evt fsmx.Event) ([]O, error) {
	return r.collect(r.m.Send(evt))
}

func (r *TracedRunner[S, U, O]) Current() string { return r.m.Current() }

func (r *TracedRunner[S, U, O]) collect(records []decorate.TraceRecord[S, U, O], err error) ([]O, error) {
	if err != nil {
		return nil, err
	}
	r.Records = append(r.Records, records...)
	var out []O
	for _, rec := range records {
		if rec.Outputs == nil {
			continue
		}
		if out == nil {
			out = make([]O, 0, len(rec.Outputs))
		}
		out = append(out, rec.Outputs...)
	}
	return out, nil
}
