// Package contracts checks the structural invariants a machine definition
// must satisfy before it can be run.
//
// Every contract is a named predicate over one immutable Derived value. The
// checker runs all of them and collects every failure; it never stops at the
// first one.
package contracts

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/comalice/fsmx/internal/primitives"
)

// ErrContracts is matched by every *Error.
var ErrContracts = errors.New("definition does not fulfill its contracts")

// Blame explains a failed contract.
type Blame struct {
	Message string
	Info    map[string]any
}

// Result is the outcome of one contract.
type Result struct {
	Fulfilled bool
	Blame     Blame
}

func ok() Result { return Result{Fulfilled: true} }

func blame(info map[string]any, format string, args ...any) Result {
	return Result{Blame: Blame{Message: fmt.Sprintf(format, args...), Info: info}}
}

// Contract is a named invariant.
type Contract[S, U, O any] struct {
	Name  string
	Check func(d *Derived[S, U, O]) Result
}

// Derived bundles a definition with the metadata every contract reads. It is
// computed once per check.
type Derived[S, U, O any] struct {
	Def       primitives.Definition[S, U, O]
	Hierarchy *primitives.Hierarchy
	Index     *primitives.TransitionIndex[S, U, O]
}

// Derive computes the metadata of def. The definition is used as given, not
// normalized, so that an initial control state and an explicit init
// transition can be told apart.
func Derive[S, U, O any](def primitives.Definition[S, U, O]) *Derived[S, U, O] {
	return &Derived[S, U, O]{
		Def:       def,
		Hierarchy: primitives.AnalyzeHierarchy(def.States),
		Index:     primitives.IndexTransitions(def.Transitions),
	}
}

// Failure records one unfulfilled contract.
type Failure struct {
	Name    string
	Message string
	Info    map[string]any
}

func (f Failure) String() string {
	if len(f.Info) == 0 {
		return fmt.Sprintf("[%s] %s", f.Name, f.Message)
	}
	keys := make([]string, 0, len(f.Info))
	for k := range f.Info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, f.Info[k]))
	}
	return fmt.Sprintf("[%s] %s (%s)", f.Name, f.Message, strings.Join(parts, ", "))
}

// Report is the aggregated outcome of a check.
type Report struct {
	Fulfilled bool
	Failures  []Failure
}

// Err returns nil for a fulfilled report and an *Error otherwise.
func (r Report) Err() error {
	if r.Fulfilled {
		return nil
	}
	return &Error{Failures: r.Failures}
}

// Failed reports whether the named contract failed.
func (r Report) Failed(name string) bool {
	for _, f := range r.Failures {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Error aggregates every failed contract.
type Error struct {
	Failures []Failure
}

func (e *Error) Error() string {
	if len(e.Failures) == 0 {
		return ErrContracts.Error()
	}
	if len(e.Failures) == 1 {
		return e.Failures[0].String()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d contracts failed:\n", len(e.Failures)))
	for i, f := range e.Failures {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, f.String()))
	}
	return b.String()
}

// Is makes errors.Is(err, ErrContracts) hold.
func (e *Error) Is(target error) bool {
	return target == ErrContracts
}

// Run evaluates contracts against d in order. Failures are reported to
// console, one Error call each.
func Run[S, U, O any](d *Derived[S, U, O], list []Contract[S, U, O], console primitives.Console) Report {
	console = primitives.ConsoleOrNoop(console)
	report := Report{Fulfilled: true}
	for _, c := range list {
		res := c.Check(d)
		if res.Fulfilled {
			continue
		}
		report.Fulfilled = false
		f := Failure{Name: c.Name, Message: res.Blame.Message, Info: res.Blame.Info}
		report.Failures = append(report.Failures, f)
		console.Error("contract failed", f.String())
	}
	return report
}

// Check derives the metadata of def and runs the full contract list.
func Check[S, U, O any](def primitives.Definition[S, U, O]) Report {
	return Run(Derive(def), All[S, U, O](), def.Settings.Debug.Console)
}
