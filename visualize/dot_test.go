// Tests for DOT export and hierarchy rendering.
package visualize

import (
	"strings"
	"testing"

	"github.com/comalice/fsmx"
)

func sample() fsmx.Definition[int, int, int] {
	always := func(int, any, *fsmx.Settings[int, int]) bool { return true }
	return fsmx.Definition[int, int, int]{
		States: []fsmx.State{
			fsmx.Atomic("s1"),
			fsmx.Compound("parent", fsmx.Atomic("child1"), fsmx.Atomic("child2")),
		},
		Events: []string{"e1", "e2"},
		Transitions: []fsmx.Transition[int, int, int]{
			fsmx.Unconditional[int, int, int]("s1", "e1", fsmx.To("parent"), nil),
			fsmx.Unconditional[int, int, int]("parent", fsmx.InitEvent, fsmx.To("child1"), nil),
			fsmx.Guarded("child1", "e2", fsmx.Guard[int, int, int]{Name: "ready", Predicate: always, To: fsmx.To("child2")}),
			fsmx.Unconditional[int, int, int]("child2", fsmx.Eventless, fsmx.To("s1"), nil),
			fsmx.Unconditional[int, int, int]("s1", "e2", fsmx.DeepHistory("parent"), nil),
		},
		InitialControlState: "s1",
	}
}

func TestDOT_Simple(t *testing.T) {
	dot := DOT(sample(), "s1")

	checks := []struct {
		what string
		want string
	}{
		{"header", `digraph Statechart {`},
		{"root node", `"nok" [shape=point]`},
		{"initial edge", `"nok" -> "s1" [label="init" style=dashed]`},
		{"transition edge", `"s1" -> "parent" [label="e1"]`},
		{"guard label", `"child1" -> "child2" [label="e2 [ready]"]`},
		{"eventless label", `"child2" -> "s1" [label="ε"]`},
		{"active highlight", `"s1" [label="s1" style=filled fillcolor=lightgreen]`},
	}
	for _, c := range checks {
		if !strings.Contains(dot, c.want) {
			t.Errorf("missing %s %q in:\n%s", c.what, c.want, dot)
		}
	}
}

func TestDOT_Hierarchy(t *testing.T) {
	dot := DOT(sample(), "child1")

	if !strings.Contains(dot, `subgraph "cluster_parent" {`) {
		t.Error("missing compound cluster")
	}
	if !strings.Contains(dot, `label="parent" style=filled fillcolor=orange`) {
		t.Error("active ancestor not highlighted")
	}
	if !strings.Contains(dot, `"H*(parent)" [label="H*" shape=circle]`) {
		t.Error("missing history node")
	}
	if !strings.Contains(dot, `"s1" -> "H*(parent)" [label="e2"]`) {
		t.Error("missing history edge")
	}
	if strings.Contains(dot, `"s1" [label="s1" style=filled`) {
		t.Error("inactive state highlighted")
	}
}
