// Package visualize renders definitions as Graphviz DOT.
package visualize

import (
	"bytes"
	"fmt"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/internal/primitives"
)

// DOT generates Graphviz DOT source for def. Compound states become clusters;
// current, when not empty, is highlighted together with its ancestors.
func DOT[S, U, O any](def fsmx.Definition[S, U, O], current string) string {
	def = def.Normalize()
	h := primitives.AnalyzeHierarchy(def.States)

	active := make(map[string]bool)
	if current != "" {
		active[current] = true
		for _, a := range h.Deep[current] {
			active[a] = true
		}
	}
	history := historyNodes(def)

	var buf bytes.Buffer
	buf.WriteString(`digraph Statechart {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)
	fmt.Fprintf(&buf, "  %q [shape=point];\n", fsmx.RootState)
	for _, s := range def.States {
		renderState(&buf, s, "  ", active, history)
	}
	for _, t := range def.Transitions {
		for _, g := range t.Guards {
			if g.To == nil {
				continue
			}
			style := ""
			if t.Event == fsmx.InitEvent {
				style = " style=dashed"
			}
			fmt.Fprintf(&buf, "  %q -> %q [label=%q%s];\n", t.From, g.To.String(), edgeLabel(t.Event, g.Name), style)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

// historyNodes groups the history references used as targets by owner.
func historyNodes[S, U, O any](def fsmx.Definition[S, U, O]) map[string][]fsmx.HistoryRef {
	seen := make(map[fsmx.HistoryRef]bool)
	nodes := make(map[string][]fsmx.HistoryRef)
	for _, t := range def.Transitions {
		for _, g := range t.Guards {
			ref, ok := g.To.(fsmx.HistoryRef)
			if !ok || seen[ref] {
				continue
			}
			seen[ref] = true
			nodes[ref.Owner] = append(nodes[ref.Owner], ref)
		}
	}
	return nodes
}

func renderState(buf *bytes.Buffer, s fsmx.State, indent string, active map[string]bool, history map[string][]fsmx.HistoryRef) {
	if !s.IsCompound() {
		style := ""
		if active[s.Name] {
			style = " style=filled fillcolor=lightgreen"
		}
		fmt.Fprintf(buf, "%s%q [label=%q%s];\n", indent, s.Name, s.Name, style)
		return
	}

	style := ""
	if active[s.Name] {
		style = " style=filled fillcolor=orange"
	}
	fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+s.Name)
	fmt.Fprintf(buf, "%s  label=%q%s;\n", indent, s.Name, style)
	fmt.Fprintf(buf, "%s  %q [label=%q shape=ellipse%s];\n", indent, s.Name, s.Name, style)
	for _, ref := range history[s.Name] {
		label := "H"
		if ref.Kind == fsmx.Deep {
			label = "H*"
		}
		fmt.Fprintf(buf, "%s  %q [label=%q shape=circle];\n", indent, ref.String(), label)
	}
	for _, child := range s.Children {
		renderState(buf, child, indent+"  ", active, history)
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

func edgeLabel(event, guard string) string {
	if event == fsmx.Eventless {
		event = "ε"
	}
	if guard != "" {
		return event + " [" + guard + "]"
	}
	return event
}
