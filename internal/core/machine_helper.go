// Helper functions for output concatenation and diagnostics.
// Placed in separate file to organize code.

package core

import (
	"strconv"

	"github.com/comalice/fsmx/internal/primitives"
)

// appendOutputs concatenates step outputs. A nil step contributes nothing; a
// non-nil step, even an empty one, makes the result non-nil.
func appendOutputs[O any](acc, step []O) []O {
	if step == nil {
		return acc
	}
	if acc == nil {
		acc = make([]O, 0, len(step))
	}
	return append(acc, step...)
}

func eventName(event string) string {
	if event == primitives.Eventless {
		return "<eventless>"
	}
	return event
}

func guardName[S, U, O any](g primitives.Guard[S, U, O], i int) string {
	if g.Name != "" {
		return g.Name
	}
	return "#" + strconv.Itoa(i)
}
