package yamldef

import (
	"errors"
	"fmt"

	"github.com/comalice/fsmx"
)

// Registry binds the guard and action names used in documents to Go functions.
type Registry[S, U, O any] struct {
	guards  map[string]fsmx.Predicate[S, U]
	actions map[string]fsmx.Action[S, U, O]
}

// NewRegistry creates an empty Registry.
func NewRegistry[S, U, O any]() *Registry[S, U, O] {
	return &Registry[S, U, O]{
		guards:  make(map[string]fsmx.Predicate[S, U]),
		actions: make(map[string]fsmx.Action[S, U, O]),
	}
}

// Guard registers a predicate under name.
func (r *Registry[S, U, O]) Guard(name string, p fsmx.Predicate[S, U]) *Registry[S, U, O] {
	r.guards[name] = p
	return r
}

// Action registers an action under name.
func (r *Registry[S, U, O]) Action(name string, a fsmx.Action[S, U, O]) *Registry[S, U, O] {
	r.actions[name] = a
	return r
}

// Load builds a definition from doc, resolving every name through reg. All
// unknown names and malformed transitions are reported together. The
// returned settings carry no reducer; set Settings.UpdateState before use.
func Load[S, U, O any](doc *Document, reg *Registry[S, U, O]) (fsmx.Definition[S, U, O], error) {
	if reg == nil {
		reg = NewRegistry[S, U, O]()
	}
	return build[S, U, O](doc, reg.predicate, reg.action)
}

// Structure builds a definition with the shape of doc and inert behavior:
// named guards never hold, actions do nothing and the reducer keeps the
// extended state. Enough to run the contract checker.
func Structure(doc *Document) (fsmx.Definition[any, any, any], error) {
	never := func(any, any, *fsmx.Settings[any, any]) bool { return false }
	def, err := build[any, any, any](doc,
		func(string) (fsmx.Predicate[any, any], error) { return never, nil },
		func(string) (fsmx.Action[any, any, any], error) { return nil, nil },
	)
	def.Settings.UpdateState = func(ext any, _ []any) (any, error) { return ext, nil }
	return def, err
}

func (r *Registry[S, U, O]) predicate(name string) (fsmx.Predicate[S, U], error) {
	if p, ok := r.guards[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown guard %q", name)
}

func (r *Registry[S, U, O]) action(name string) (fsmx.Action[S, U, O], error) {
	if a, ok := r.actions[name]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("unknown action %q", name)
}

func build[S, U, O any](
	doc *Document,
	predicate func(string) (fsmx.Predicate[S, U], error),
	action func(string) (fsmx.Action[S, U, O], error),
) (fsmx.Definition[S, U, O], error) {
	var errs []error
	states, err := doc.StateTree()
	if err != nil {
		errs = append(errs, err)
	}

	def := fsmx.Definition[S, U, O]{
		States:              states,
		Events:              doc.Events,
		InitialControlState: doc.Initial,
	}

	resolveAction := func(name string) fsmx.Action[S, U, O] {
		if name == "" {
			return nil
		}
		a, err := action(name)
		if err != nil {
			errs = append(errs, err)
		}
		return a
	}

	for i, td := range doc.Transitions {
		where := fmt.Sprintf("transition %d (%s on %q)", i, td.From, td.Event)
		switch {
		case td.From == "":
			errs = append(errs, fmt.Errorf("%s: from is required", where))
			continue
		case td.To != "" && len(td.Guards) > 0:
			errs = append(errs, fmt.Errorf("%s: to and guards are exclusive", where))
			continue
		case td.To == "" && len(td.Guards) == 0:
			errs = append(errs, fmt.Errorf("%s: to or guards is required", where))
			continue
		}

		if td.To != "" {
			g := fsmx.Guard[S, U, O]{To: fsmx.ParseTarget(td.To), Action: resolveAction(td.Do), ActionName: td.Do}
			def.Transitions = append(def.Transitions, fsmx.Guarded(td.From, td.Event, g))
			continue
		}

		guards := make([]fsmx.Guard[S, U, O], 0, len(td.Guards))
		for j, gd := range td.Guards {
			if gd.To == "" {
				errs = append(errs, fmt.Errorf("%s: guard %d has no target", where, j))
				continue
			}
			g := fsmx.Guard[S, U, O]{Name: gd.Name, To: fsmx.ParseTarget(gd.To), Action: resolveAction(gd.Do), ActionName: gd.Do}
			if gd.When != "" {
				p, err := predicate(gd.When)
				if err != nil {
					errs = append(errs, err)
				}
				g.Predicate = p
				if g.Name == "" {
					g.Name = gd.When
				}
			}
			guards = append(guards, g)
		}
		def.Transitions = append(def.Transitions, fsmx.Guarded(td.From, td.Event, guards...))
	}

	if err := errors.Join(errs...); err != nil {
		return def, err
	}
	return def, nil
}
