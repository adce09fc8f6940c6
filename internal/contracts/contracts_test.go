package contracts

import (
	"errors"
	"strings"
	"testing"

	p "github.com/comalice/fsmx/internal/primitives"
)

type (
	def   = p.Definition[int, int, int]
	trans = p.Transition[int, int, int]
	guard = p.Guard[int, int, int]
)

func always(int, any, *p.Settings[int, int]) bool { return true }

func updateState(ext int, updates []int) (int, error) {
	for _, u := range updates {
		ext += u
	}
	return ext, nil
}

func u(from, event string, to p.Target) trans {
	return p.Unconditional[int, int, int](from, event, to, nil)
}

// validDef is a small machine exercising compound states, history and an
// eventless transition.
func validDef() def {
	return def{
		States: []p.State{
			p.Atomic("A"),
			p.Compound("P", p.Atomic("C1"), p.Atomic("C2")),
			p.Atomic("Z"),
			p.Atomic("T"),
		},
		Events: []string{"go", "next", "leave", "back"},
		Transitions: []trans{
			u(p.RootState, p.InitEvent, p.To("A")),
			u("A", "go", p.To("P")),
			u("P", p.InitEvent, p.To("C1")),
			u("C1", "next", p.To("C2")),
			u("P", "leave", p.To("Z")),
			u("Z", "back", p.ShallowHistory("P")),
			u("C2", p.Eventless, p.To("T")),
		},
		Settings: p.Settings[int, int]{UpdateState: updateState},
	}
}

func TestCheckValidDefinition(t *testing.T) {
	report := Check(validDef())
	if !report.Fulfilled {
		t.Fatalf("valid definition rejected: %v", report.Err())
	}
	if report.Err() != nil {
		t.Error("Err() must be nil for a fulfilled report")
	}
}

func TestSelfLoopOnEventIsNotEventlessSelfLoop(t *testing.T) {
	d := validDef()
	d.Transitions = append(d.Transitions, u("C2", "next", p.To("C2")))

	report := Check(d)
	if !report.Failed(ValidEventLessTransitions) {
		t.Errorf("eventless transition sharing its origin must fail %s", ValidEventLessTransitions)
	}
	if report.Failed(IsValidSelfTransition) {
		t.Errorf("event-keyed self loop blamed as eventless: %v", report.Err())
	}
}

func TestContracts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *def)
		want   string
	}{
		{
			name: "duplicate state",
			mutate: func(d *def) {
				d.States[1] = p.Compound("P", p.Atomic("C1"), p.Atomic("A"))
			},
			want: NoDuplicatedStates,
		},
		{
			name:   "reserved state name",
			mutate: func(d *def) { d.States = append(d.States, p.Atomic(p.RootState)) },
			want:   NoReservedStates,
		},
		{
			name:   "no states",
			mutate: func(d *def) { d.States = nil },
			want:   AtLeastOneState,
		},
		{
			name:   "transition without guards",
			mutate: func(d *def) { d.Transitions = append(d.Transitions, trans{From: "T", Event: "go"}) },
			want:   HaveTransitionsValidTypes,
		},
		{
			name:   "guard without target",
			mutate: func(d *def) { d.Transitions = append(d.Transitions, p.Guarded("T", "go", guard{})) },
			want:   HaveTransitionsValidTypes,
		},
		{
			name:   "both initial forms",
			mutate: func(d *def) { d.InitialControlState = "A" },
			want:   ValidInitialConfig,
		},
		{
			name:   "no initial form",
			mutate: func(d *def) { d.Transitions = d.Transitions[1:] },
			want:   ValidInitialConfig,
		},
		{
			name: "mixed initial transition",
			mutate: func(d *def) {
				d.Transitions[0] = p.Guarded(p.RootState, p.InitEvent,
					guard{Predicate: always, To: p.To("A")},
					guard{To: p.To("Z")},
				)
			},
			want: ValidInitialTransition,
		},
		{
			name:   "root handles another event",
			mutate: func(d *def) { d.Transitions = append(d.Transitions, u(p.RootState, "go", p.To("A"))) },
			want:   ValidInitialTransition,
		},
		{
			name: "unknown initial control state",
			mutate: func(d *def) {
				d.Transitions = d.Transitions[1:]
				d.InitialControlState = "nowhere"
			},
			want: ValidInitialControlState,
		},
		{
			name:   "init on atomic state",
			mutate: func(d *def) { d.Transitions = append(d.Transitions, u("A", p.InitEvent, p.To("Z"))) },
			want:   InitEventOnlyInCompoundStates,
		},
		{
			name:   "compound without init",
			mutate: func(d *def) { d.Transitions = append(d.Transitions[:2], d.Transitions[3:]...) },
			want:   ValidInitialTransitionForCompoundState,
		},
		{
			name:   "compound init outside subtree",
			mutate: func(d *def) { d.Transitions[2] = u("P", p.InitEvent, p.To("Z")) },
			want:   ValidInitialTransitionForCompoundState,
		},
		{
			name:   "compound init to itself",
			mutate: func(d *def) { d.Transitions[2] = u("P", p.InitEvent, p.To("P")) },
			want:   ValidInitialTransitionForCompoundState,
		},
		{
			name:   "compound init to history",
			mutate: func(d *def) { d.Transitions[2] = u("P", p.InitEvent, p.DeepHistory("P")) },
			want:   ValidInitialTransitionForCompoundState,
		},
		{
			name: "guarded compound init",
			mutate: func(d *def) {
				d.Transitions[2] = p.Guarded("P", p.InitEvent, guard{Predicate: always, To: p.To("C1")})
			},
			want: ValidInitialTransitionForCompoundState,
		},
		{
			name:   "split guard rows",
			mutate: func(d *def) { d.Transitions = append(d.Transitions, u("C1", "next", p.To("Z"))) },
			want:   AllStateTransitionsOnOneSingleRow,
		},
		{
			name:   "child and ancestor handle the same event",
			mutate: func(d *def) { d.Transitions = append(d.Transitions, u("C1", "leave", p.To("C2"))) },
			want:   NoConflictingTransitionsWithAncestor,
		},
		{
			name:   "eventless next to event handler",
			mutate: func(d *def) { d.Transitions = append(d.Transitions, u("C2", "next", p.To("C1"))) },
			want:   ValidEventLessTransitions,
		},
		{
			name:   "history as origin",
			mutate: func(d *def) { d.Transitions = append(d.Transitions, u("H(P)", "go", p.To("A"))) },
			want:   IsHistoryStatesTargetStates,
		},
		{
			name:   "history of unknown state",
			mutate: func(d *def) { d.Transitions[5] = u("Z", "back", p.ShallowHistory("Q")) },
			want:   IsHistoryStatesExisting,
		},
		{
			name:   "history of atomic state",
			mutate: func(d *def) { d.Transitions[5] = u("Z", "back", p.DeepHistory("A")) },
			want:   IsHistoryStatesCompoundStates,
		},
		{
			name:   "transition to root",
			mutate: func(d *def) { d.Transitions[5] = u("Z", "back", p.To(p.RootState)) },
			want:   NoTransitionToRootState,
		},
		{
			name:   "eventless self loop",
			mutate: func(d *def) { d.Transitions[6] = u("C2", p.Eventless, p.To("C2")) },
			want:   IsValidSelfTransition,
		},
		{
			name:   "undeclared event",
			mutate: func(d *def) { d.Events = d.Events[1:] },
			want:   AreEventsDeclared,
		},
		{
			name:   "unused event",
			mutate: func(d *def) { d.Events = append(d.Events, "never") },
			want:   AreEventsDeclared,
		},
		{
			name:   "unused state",
			mutate: func(d *def) { d.States = append(d.States, p.Atomic("lonely")) },
			want:   AreStatesDeclared,
		},
		{
			name:   "undeclared target",
			mutate: func(d *def) { d.Transitions[3] = u("C1", "next", p.To("ghost")) },
			want:   AreStatesDeclared,
		},
		{
			name:   "missing reducer",
			mutate: func(d *def) { d.Settings.UpdateState = nil },
			want:   IsValidSettings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDef()
			tt.mutate(&d)
			report := Check(d)
			if report.Fulfilled {
				t.Fatalf("expected %s to fail", tt.want)
			}
			if !report.Failed(tt.want) {
				t.Errorf("expected %s among failures, got: %v", tt.want, report.Err())
			}
		})
	}
}

func TestCheckIsExhaustive(t *testing.T) {
	d := validDef()
	d.States[1] = p.Compound("P", p.Atomic("C1"), p.Atomic("C2"), p.Atomic("A"))
	d.Events = d.Events[1:] // "go" is used but no longer declared

	report := Check(d)
	for _, name := range []string{NoDuplicatedStates, AreEventsDeclared} {
		if !report.Failed(name) {
			t.Errorf("expected %s to be reported, got: %v", name, report.Err())
		}
	}

	var dup Failure
	for _, f := range report.Failures {
		if f.Name == NoDuplicatedStates {
			dup = f
		}
	}
	if got, _ := dup.Info["duplicates"].([]string); len(got) != 1 || got[0] != "A" {
		t.Errorf("duplicates info = %v, want [A]", dup.Info["duplicates"])
	}
}

func TestContractsError(t *testing.T) {
	d := validDef()
	d.Settings.UpdateState = nil
	d.Events = append(d.Events, "never")

	err := Check(d).Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrContracts) {
		t.Error("errors.Is(err, ErrContracts) = false")
	}
	var cerr *Error
	if !errors.As(err, &cerr) || len(cerr.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %v", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "2 contracts failed") || !strings.Contains(msg, IsValidSettings) {
		t.Errorf("unexpected message: %s", msg)
	}
}

type recordingConsole struct {
	p.NoopConsole
	errors int
}

func (c *recordingConsole) Error(...any) { c.errors++ }

func TestRunReportsToConsole(t *testing.T) {
	d := validDef()
	d.States = append(d.States, p.Atomic("lonely"))
	c := &recordingConsole{}
	d.Settings.Debug.Console = c

	report := Check(d)
	if c.errors != len(report.Failures) || c.errors == 0 {
		t.Errorf("console got %d errors for %d failures", c.errors, len(report.Failures))
	}
}

func TestEachContractAloneOnValidDefinition(t *testing.T) {
	derived := Derive(validDef())
	for _, c := range All[int, int, int]() {
		t.Run(c.Name, func(t *testing.T) {
			if res := c.Check(derived); !res.Fulfilled {
				t.Errorf("%s failed on a valid definition: %s", c.Name, res.Blame.Message)
			}
		})
	}
}
