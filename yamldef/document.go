// Package yamldef reads and writes machine definitions as YAML documents.
//
//	initial: idle
//	events: [start, stop]
//	states:
//	  idle: ~
//	  running:
//	    fast: ~
//	    slow: ~
//	transitions:
//	  - {from: idle, event: start, to: running, do: countStart}
//	  - {from: running, event: init, to: fast}
//	  - {from: running, event: stop, to: idle}
//	  - from: idle
//	    event: resume
//	    guards:
//	      - {when: wasFast, to: "H*(running)"}
//	      - {to: running}
//
// A transition without an event is eventless. Guard and action names are
// bound to Go functions through a Registry.
package yamldef

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/comalice/fsmx"
)

// Document is the YAML form of a definition.
type Document struct {
	Initial     string          `yaml:"initial,omitempty"`
	Events      []string        `yaml:"events,omitempty"`
	States      yaml.Node       `yaml:"states"`
	Transitions []TransitionDoc `yaml:"transitions"`
}

// TransitionDoc is either a single target with an optional action, or a list
// of guards.
type TransitionDoc struct {
	From   string     `yaml:"from"`
	Event  string     `yaml:"event,omitempty"`
	To     string     `yaml:"to,omitempty"`
	Do     string     `yaml:"do,omitempty"`
	Guards []GuardDoc `yaml:"guards,omitempty"`
}

// GuardDoc is one alternative of a guarded transition. An empty When always holds.
type GuardDoc struct {
	Name string `yaml:"name,omitempty"`
	When string `yaml:"when,omitempty"`
	To   string `yaml:"to"`
	Do   string `yaml:"do,omitempty"`
}

// Parse decodes a document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	return &doc, nil
}

// ParseFile reads and decodes the document at path.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Marshal encodes the document.
func (d *Document) Marshal() ([]byte, error) {
	out := *d
	if out.States.Kind == 0 {
		out.States = yaml.Node{Kind: yaml.MappingNode}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("yaml marshal: %w", err)
	}
	return buf.Bytes(), nil
}

// StateTree decodes the states mapping, keeping declaration order.
func (d *Document) StateTree() ([]fsmx.State, error) {
	if d.States.Kind == 0 {
		return nil, nil
	}
	return decodeStates(&d.States)
}

func decodeStates(n *yaml.Node) ([]fsmx.State, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: states must be a mapping", n.Line)
	}
	var states []fsmx.State
	var errs []error
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == "" {
			errs = append(errs, fmt.Errorf("line %d: state names must be non-empty scalars", key.Line))
			continue
		}
		children, err := decodeStates(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("state %s: %w", key.Value, err))
			continue
		}
		states = append(states, fsmx.State{Name: key.Value, Children: children})
	}
	return states, errors.Join(errs...)
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null" ||
		n.Kind == yaml.MappingNode && len(n.Content) == 0
}

func encodeStates(states []fsmx.State) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range states {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: s.Name}
		value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "~"}
		if s.IsCompound() {
			value = encodeStates(s.Children)
		}
		n.Content = append(n.Content, key, value)
	}
	return n
}

// FromDefinition describes the structure of def. Guards and actions are
// written by name; unnamed ones are kept as unnamed alternatives.
func FromDefinition[S, U, O any](def fsmx.Definition[S, U, O]) *Document {
	doc := &Document{
		Initial: def.InitialControlState,
		Events:  def.Events,
		States:  *encodeStates(def.States),
	}
	for _, t := range def.Transitions {
		td := TransitionDoc{From: t.From, Event: t.Event}
		if t.IsUnconditional() && t.Guards[0].Name == "" {
			td.To = targetString(t.Guards[0].To)
			td.Do = t.Guards[0].ActionName
		} else {
			for _, g := range t.Guards {
				gd := GuardDoc{Name: g.Name, To: targetString(g.To), Do: g.ActionName}
				if g.Predicate != nil {
					gd.When = g.Name
					gd.Name = ""
				}
				td.Guards = append(td.Guards, gd)
			}
		}
		doc.Transitions = append(doc.Transitions, td)
	}
	return doc
}

func targetString(t fsmx.Target) string {
	if t == nil {
		return ""
	}
	return t.String()
}
