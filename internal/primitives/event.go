package primitives

// Event is the unit of input of a machine: a name and an opaque payload.
//
// Events are value types. Once created, Events should not be mutated.
type Event struct {
	Name string
	Data any
}

// NewEvent creates and returns a new Event.
func NewEvent(name string, data any) Event {
	return Event{
		Name: name,
		Data: data,
	}
}

// IsInit reports whether the event is the reserved init event.
func (e Event) IsInit() bool {
	return e.Name == InitEvent
}
