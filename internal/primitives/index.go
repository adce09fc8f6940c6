package primitives

// Handler is the merged guard list a state declares for one event.
type Handler[S, U, O any] struct {
	From   string
	Event  string
	Guards []Guard[S, U, O]
}

// TransitionIndex holds the lookup maps derived from a transition list. It
// does not validate anything.
type TransitionIndex[S, U, O any] struct {
	// Handlers maps origin -> event -> merged guards. Records that split one
	// (origin, event) pair are concatenated in declaration order.
	Handlers map[string]map[string]*Handler[S, U, O]
	// Records counts transition records per origin and event.
	Records map[string]map[string]int
	// Origins maps an event to the set of states that handle it.
	Origins map[string]map[string]struct{}
	// TargetsFrom maps an origin to the state names its guards target.
	TargetsFrom map[string]map[string]struct{}
	// Targets is the set of every state name targeted by some guard.
	Targets map[string]struct{}
	// History maps a history reference to the transitions that target it.
	History map[HistoryRef][]Transition[S, U, O]
	// EventOrder lists events in first-use order.
	EventOrder []string
}

// IndexTransitions builds the lookup maps for transitions.
func IndexTransitions[S, U, O any](transitions []Transition[S, U, O]) *TransitionIndex[S, U, O] {
	idx := &TransitionIndex[S, U, O]{
		Handlers:    make(map[string]map[string]*Handler[S, U, O]),
		Records:     make(map[string]map[string]int),
		Origins:     make(map[string]map[string]struct{}),
		TargetsFrom: make(map[string]map[string]struct{}),
		Targets:     make(map[string]struct{}),
		History:     make(map[HistoryRef][]Transition[S, U, O]),
	}

	for _, t := range transitions {
		byEvent, ok := idx.Handlers[t.From]
		if !ok {
			byEvent = make(map[string]*Handler[S, U, O])
			idx.Handlers[t.From] = byEvent
			idx.Records[t.From] = make(map[string]int)
		}
		h, ok := byEvent[t.Event]
		if !ok {
			h = &Handler[S, U, O]{From: t.From, Event: t.Event}
			byEvent[t.Event] = h
		}
		h.Guards = append(h.Guards, t.Guards...)
		idx.Records[t.From][t.Event]++

		origins, ok := idx.Origins[t.Event]
		if !ok {
			origins = make(map[string]struct{})
			idx.Origins[t.Event] = origins
			idx.EventOrder = append(idx.EventOrder, t.Event)
		}
		origins[t.From] = struct{}{}

		var refs map[HistoryRef]bool
		for _, g := range t.Guards {
			switch to := g.To.(type) {
			case StateTarget:
				targets, ok := idx.TargetsFrom[t.From]
				if !ok {
					targets = make(map[string]struct{})
					idx.TargetsFrom[t.From] = targets
				}
				targets[string(to)] = struct{}{}
				idx.Targets[string(to)] = struct{}{}
			case HistoryRef:
				if refs[to] {
					continue
				}
				if refs == nil {
					refs = make(map[HistoryRef]bool)
				}
				refs[to] = true
				idx.History[to] = append(idx.History[to], t)
			}
		}
	}
	return idx
}

// Lookup returns the handler state declares for event, if any.
func (idx *TransitionIndex[S, U, O]) Lookup(state, event string) (*Handler[S, U, O], bool) {
	h, ok := idx.Handlers[state][event]
	return h, ok
}

// Handles reports whether state declares a handler for event.
func (idx *TransitionIndex[S, U, O]) Handles(state, event string) bool {
	_, ok := idx.Handlers[state][event]
	return ok
}
