package contracts

import (
	"sort"

	"github.com/comalice/fsmx/internal/primitives"
)

// Contract names.
const (
	NoDuplicatedStates                     = "noDuplicatedStates"
	NoReservedStates                       = "noReservedStates"
	AtLeastOneState                        = "atLeastOneState"
	ValidInitialConfig                     = "validInitialConfig"
	ValidInitialTransition                 = "validInitialTransition"
	ValidInitialControlState               = "validInitialControlState"
	InitEventOnlyInCompoundStates          = "initEventOnlyInCompoundStates"
	ValidInitialTransitionForCompoundState = "validInitialTransitionForCompoundState"
	AllStateTransitionsOnOneSingleRow      = "allStateTransitionsOnOneSingleRow"
	NoConflictingTransitionsWithAncestor   = "noConflictingTransitionsWithAncestorState"
	ValidEventLessTransitions              = "validEventLessTransitions"
	IsHistoryStatesTargetStates            = "isHistoryStatesTargetStates"
	IsHistoryStatesExisting                = "isHistoryStatesExisting"
	IsHistoryStatesCompoundStates          = "isHistoryStatesCompoundStates"
	NoTransitionToRootState                = "noTransitionToRootState"
	IsValidSelfTransition                  = "isValidSelfTransition"
	AreEventsDeclared                      = "areEventsDeclared"
	AreStatesDeclared                      = "areStatesDeclared"
	IsValidSettings                        = "isValidSettings"
	HaveTransitionsValidTypes              = "haveTransitionsValidTypes"
)

// All returns the fixed, ordered contract list.
func All[S, U, O any]() []Contract[S, U, O] {
	return []Contract[S, U, O]{
		{NoDuplicatedStates, noDuplicatedStates[S, U, O]},
		{NoReservedStates, noReservedStates[S, U, O]},
		{AtLeastOneState, atLeastOneState[S, U, O]},
		{HaveTransitionsValidTypes, haveTransitionsValidTypes[S, U, O]},
		{ValidInitialConfig, validInitialConfig[S, U, O]},
		{ValidInitialTransition, validInitialTransition[S, U, O]},
		{ValidInitialControlState, validInitialControlState[S, U, O]},
		{InitEventOnlyInCompoundStates, initEventOnlyInCompoundStates[S, U, O]},
		{ValidInitialTransitionForCompoundState, validInitialTransitionForCompoundState[S, U, O]},
		{AllStateTransitionsOnOneSingleRow, allStateTransitionsOnOneSingleRow[S, U, O]},
		{NoConflictingTransitionsWithAncestor, noConflictingTransitionsWithAncestorState[S, U, O]},
		{ValidEventLessTransitions, validEventLessTransitions[S, U, O]},
		{IsHistoryStatesTargetStates, isHistoryStatesTargetStates[S, U, O]},
		{IsHistoryStatesExisting, isHistoryStatesExisting[S, U, O]},
		{IsHistoryStatesCompoundStates, isHistoryStatesCompoundStates[S, U, O]},
		{NoTransitionToRootState, noTransitionToRootState[S, U, O]},
		{IsValidSelfTransition, isValidSelfTransition[S, U, O]},
		{AreEventsDeclared, areEventsDeclared[S, U, O]},
		{AreStatesDeclared, areStatesDeclared[S, U, O]},
		{IsValidSettings, isValidSettings[S, U, O]},
	}
}

func noDuplicatedStates[S, U, O any](d *Derived[S, U, O]) Result {
	if dups := d.Hierarchy.Duplicates; len(dups) > 0 {
		return blame(map[string]any{"duplicates": dups},
			"state names must be unique across the hierarchy, found %d duplicated", len(dups))
	}
	return ok()
}

func noReservedStates[S, U, O any](d *Derived[S, U, O]) Result {
	for _, name := range d.Hierarchy.Names {
		if name == primitives.RootState {
			return blame(map[string]any{"reserved": primitives.RootState},
				"state name %q is reserved for the root state", primitives.RootState)
		}
	}
	return ok()
}

func atLeastOneState[S, U, O any](d *Derived[S, U, O]) Result {
	if len(d.Hierarchy.Names) == 0 {
		return blame(nil, "at least one state must be declared")
	}
	return ok()
}

func haveTransitionsValidTypes[S, U, O any](d *Derived[S, U, O]) Result {
	var bad []int
	for i, t := range d.Def.Transitions {
		if t.From == "" || len(t.Guards) == 0 {
			bad = append(bad, i)
			continue
		}
		for _, g := range t.Guards {
			if g.To == nil {
				bad = append(bad, i)
				break
			}
		}
	}
	if len(bad) > 0 {
		return blame(map[string]any{"transitions": bad},
			"transitions need an origin and at least one guard, every guard needs a target")
	}
	return ok()
}

func validInitialConfig[S, U, O any](d *Derived[S, U, O]) Result {
	explicit := d.Index.Handles(primitives.RootState, primitives.InitEvent)
	implicit := d.Def.InitialControlState != ""
	switch {
	case explicit && implicit:
		return blame(map[string]any{"initialControlState": d.Def.InitialControlState},
			"define either an initial control state or an init transition from the root, not both")
	case !explicit && !implicit:
		return blame(nil, "an initial control state or an init transition from the root is required")
	}
	return ok()
}

func validInitialTransition[S, U, O any](d *Derived[S, U, O]) Result {
	var others []string
	for event := range d.Index.Handlers[primitives.RootState] {
		if event != primitives.InitEvent {
			others = append(others, event)
		}
	}
	if len(others) > 0 {
		sort.Strings(others)
		return blame(map[string]any{"events": others},
			"the root state may only handle the %q event", primitives.InitEvent)
	}
	for _, t := range d.Def.Transitions {
		if t.From != primitives.RootState || t.Event != primitives.InitEvent {
			continue
		}
		if !t.IsUnconditional() && !t.IsFullyGuarded() {
			return blame(map[string]any{"guards": len(t.Guards)},
				"the initial transition must be unconditional or have a predicate on every guard")
		}
	}
	return ok()
}

func validInitialControlState[S, U, O any](d *Derived[S, U, O]) Result {
	initial := d.Def.InitialControlState
	if initial == "" {
		return ok()
	}
	if _, isHistory := primitives.ParseHistoryRef(initial); isHistory {
		return blame(map[string]any{"initialControlState": initial}, "the initial control state cannot be a history state")
	}
	if initial == primitives.RootState || !d.Hierarchy.Declared(initial) {
		return blame(map[string]any{"initialControlState": initial}, "the initial control state %q is not a declared state", initial)
	}
	return ok()
}

func initEventOnlyInCompoundStates[S, U, O any](d *Derived[S, U, O]) Result {
	var atomic []string
	for from := range d.Index.Origins[primitives.InitEvent] {
		if from != primitives.RootState && d.Hierarchy.Declared(from) && !d.Hierarchy.IsCompound(from) {
			atomic = append(atomic, from)
		}
	}
	if len(atomic) > 0 {
		sort.Strings(atomic)
		return blame(map[string]any{"states": atomic}, "atomic states cannot declare an init transition")
	}
	return ok()
}

func validInitialTransitionForCompoundState[S, U, O any](d *Derived[S, U, O]) Result {
	h := d.Hierarchy
	problems := map[string]string{}
	for _, name := range h.Names {
		if !h.IsCompound(name) || name == primitives.RootState {
			continue
		}
		if _, done := problems[name]; done {
			continue
		}
		records := d.Index.Records[name][primitives.InitEvent]
		if records == 0 {
			problems[name] = "missing init transition"
			continue
		}
		handler, _ := d.Index.Lookup(name, primitives.InitEvent)
		if records > 1 || len(handler.Guards) != 1 || handler.Guards[0].Predicate != nil {
			problems[name] = "init transition must be a single unconditional guard"
			continue
		}
		switch to := handler.Guards[0].To.(type) {
		case primitives.HistoryRef:
			problems[name] = "init transition cannot target a history state"
		case primitives.StateTarget:
			if !h.Declared(string(to)) || !h.StrictlyContains(name, string(to)) {
				problems[name] = "init transition must target a declared state strictly inside " + name
			}
		default:
			problems[name] = "init transition has no target"
		}
	}
	if len(problems) > 0 {
		return blame(map[string]any{"states": problems},
			"every compound state needs exactly one unconditional init transition into its own subtree")
	}
	return ok()
}

func allStateTransitionsOnOneSingleRow[S, U, O any](d *Derived[S, U, O]) Result {
	var split []string
	for from, byEvent := range d.Index.Records {
		for event, n := range byEvent {
			if n > 1 {
				split = append(split, from+"/"+eventLabel(event))
			}
		}
	}
	if len(split) > 0 {
		sort.Strings(split)
		return blame(map[string]any{"pairs": split},
			"guards for one origin and event must be declared on a single transition")
	}
	return ok()
}

func noConflictingTransitionsWithAncestorState[S, U, O any](d *Derived[S, U, O]) Result {
	var conflicts []string
	for _, event := range d.Index.EventOrder {
		if event == primitives.InitEvent {
			continue
		}
		for from := range d.Index.Origins[event] {
			for _, ancestor := range d.Hierarchy.Deep[from] {
				if d.Index.Handles(ancestor, event) {
					conflicts = append(conflicts, from+"<"+ancestor+"/"+eventLabel(event))
				}
			}
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return blame(map[string]any{"conflicts": conflicts},
			"a state and one of its ancestors cannot both handle the same event")
	}
	return ok()
}

func validEventLessTransitions[S, U, O any](d *Derived[S, U, O]) Result {
	var bad []string
	for from := range d.Index.Origins[primitives.Eventless] {
		if len(d.Index.Handlers[from]) > 1 || d.Index.Records[from][primitives.Eventless] > 1 {
			bad = append(bad, from)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return blame(map[string]any{"states": bad},
			"an eventless transition must be the only transition from its origin")
	}
	return ok()
}

func isHistoryStatesTargetStates[S, U, O any](d *Derived[S, U, O]) Result {
	var bad []string
	for from := range d.Index.Handlers {
		if _, isHistory := primitives.ParseHistoryRef(from); isHistory {
			bad = append(bad, from)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return blame(map[string]any{"origins": bad}, "history states can only be transition targets")
	}
	return ok()
}

func isHistoryStatesExisting[S, U, O any](d *Derived[S, U, O]) Result {
	var missing []string
	for ref := range d.Index.History {
		if ref.Owner == primitives.RootState || !d.Hierarchy.Declared(ref.Owner) {
			missing = append(missing, ref.String())
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return blame(map[string]any{"history": missing}, "history states must refer to declared states")
	}
	return ok()
}

func isHistoryStatesCompoundStates[S, U, O any](d *Derived[S, U, O]) Result {
	var atomic []string
	for ref := range d.Index.History {
		if d.Hierarchy.Declared(ref.Owner) && !d.Hierarchy.IsCompound(ref.Owner) {
			atomic = append(atomic, ref.String())
		}
	}
	if len(atomic) > 0 {
		sort.Strings(atomic)
		return blame(map[string]any{"history": atomic}, "history states must refer to compound states")
	}
	return ok()
}

func noTransitionToRootState[S, U, O any](d *Derived[S, U, O]) Result {
	if _, ok := d.Index.Targets[primitives.RootState]; ok {
		var origins []string
		for from, targets := range d.Index.TargetsFrom {
			if _, hit := targets[primitives.RootState]; hit {
				origins = append(origins, from)
			}
		}
		sort.Strings(origins)
		return blame(map[string]any{"origins": origins}, "no transition may target the root state")
	}
	return ok()
}

func isValidSelfTransition[S, U, O any](d *Derived[S, U, O]) Result {
	var loops []string
	for from := range d.Index.Origins[primitives.Eventless] {
		if d.Hierarchy.IsCompound(from) {
			continue
		}
		for _, g := range d.Index.Handlers[from][primitives.Eventless].Guards {
			if to, ok := g.To.(primitives.StateTarget); ok && string(to) == from {
				loops = append(loops, from)
				break
			}
		}
	}
	if len(loops) > 0 {
		sort.Strings(loops)
		return blame(map[string]any{"states": loops}, "atomic states cannot have an eventless self-transition")
	}
	return ok()
}

func areEventsDeclared[S, U, O any](d *Derived[S, U, O]) Result {
	declared := make(map[string]bool)
	for _, e := range d.Def.Events {
		if e != primitives.InitEvent && e != primitives.Eventless {
			declared[e] = true
		}
	}
	used := make(map[string]bool)
	var undeclared []string
	for _, e := range d.Index.EventOrder {
		if e == primitives.InitEvent || e == primitives.Eventless {
			continue
		}
		used[e] = true
		if !declared[e] {
			undeclared = append(undeclared, e)
		}
	}
	var unused []string
	for e := range declared {
		if !used[e] {
			unused = append(unused, e)
		}
	}
	if len(undeclared) > 0 || len(unused) > 0 {
		sort.Strings(unused)
		return blame(map[string]any{"undeclared": undeclared, "unused": unused},
			"every event used in a transition must be declared and every declared event must be used")
	}
	return ok()
}

func areStatesDeclared[S, U, O any](d *Derived[S, U, O]) Result {
	h := d.Hierarchy
	used := make(map[string]bool)
	for from := range d.Index.Handlers {
		used[from] = true
	}
	for to := range d.Index.Targets {
		used[to] = true
	}
	for ref := range d.Index.History {
		used[ref.Owner] = true
	}
	if d.Def.InitialControlState != "" {
		used[d.Def.InitialControlState] = true
	}

	var undeclared []string
	for name := range used {
		if name == primitives.RootState {
			continue
		}
		if _, isHistory := primitives.ParseHistoryRef(name); isHistory {
			continue
		}
		if !h.Declared(name) {
			undeclared = append(undeclared, name)
		}
	}
	var unused []string
	seen := make(map[string]bool)
	for _, name := range h.Names {
		if seen[name] || name == primitives.RootState {
			continue
		}
		seen[name] = true
		if !used[name] {
			unused = append(unused, name)
		}
	}
	if len(undeclared) > 0 || len(unused) > 0 {
		sort.Strings(undeclared)
		return blame(map[string]any{"undeclared": undeclared, "unused": unused},
			"every state used in a transition must be declared and every declared state must be used")
	}
	return ok()
}

func isValidSettings[S, U, O any](d *Derived[S, U, O]) Result {
	if d.Def.Settings.UpdateState == nil {
		return blame(nil, "settings must provide an UpdateState function")
	}
	return ok()
}

func eventLabel(event string) string {
	if event == primitives.Eventless {
		return "<eventless>"
	}
	return event
}
