package primitives

import "testing"

type ti = Transition[int, int, int]
type gi = Guard[int, int, int]

func TestIndexTransitions(t *testing.T) {
	never := func(int, any, *Settings[int, int]) bool { return false }
	transitions := []ti{
		Unconditional[int, int, int](RootState, InitEvent, To("A"), nil),
		Guarded("A", "ev", gi{Predicate: never, To: To("B")}, gi{To: ShallowHistory("P")}),
		Unconditional[int, int, int]("A", "ev", To("C"), nil),
		Unconditional[int, int, int]("B", Eventless, ShallowHistory("P"), nil),
		Unconditional[int, int, int]("C", "other", DeepHistory("P"), nil),
	}
	idx := IndexTransitions(transitions)

	h, ok := idx.Lookup("A", "ev")
	if !ok {
		t.Fatal("no handler for (A, ev)")
	}
	if len(h.Guards) != 3 || h.Guards[2].To != To("C") {
		t.Errorf("split records not merged in order: %+v", h.Guards)
	}
	if idx.Records["A"]["ev"] != 2 {
		t.Errorf("Records[A][ev] = %d, want 2", idx.Records["A"]["ev"])
	}

	if _, ok := idx.Origins["ev"]["A"]; !ok || len(idx.Origins["ev"]) != 1 {
		t.Errorf("Origins[ev] = %v", idx.Origins["ev"])
	}
	if !idx.Handles("B", Eventless) {
		t.Error("eventless handler not indexed")
	}
	if idx.Handles("B", "ev") {
		t.Error("unexpected handler (B, ev)")
	}

	for _, name := range []string{"A", "B", "C"} {
		if _, ok := idx.Targets[name]; !ok {
			t.Errorf("target %s missing", name)
		}
	}
	if len(idx.Targets) != 3 {
		t.Errorf("history refs must not count as state targets: %v", idx.Targets)
	}
	if _, ok := idx.TargetsFrom["A"]["C"]; !ok {
		t.Error("TargetsFrom[A] lacks C")
	}

	shallow := idx.History[HistoryRef{Kind: Shallow, Owner: "P"}]
	if len(shallow) != 2 {
		t.Errorf("shallow history used by %d transitions, want 2", len(shallow))
	}
	if deep := idx.History[HistoryRef{Kind: Deep, Owner: "P"}]; len(deep) != 1 || deep[0].From != "C" {
		t.Errorf("deep history uses = %+v", deep)
	}

	if want := []string{InitEvent, "ev", Eventless, "other"}; len(idx.EventOrder) != len(want) {
		t.Errorf("EventOrder = %q, want %q", idx.EventOrder, want)
	}
}
