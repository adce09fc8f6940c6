package primitives

// Console is the debug sink the engine reports to. Implementations must not
// affect control flow.
type Console interface {
	Log(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Debug(args ...any)
	Error(args ...any)
	Trace(args ...any)
}

// NoopConsole discards everything.
type NoopConsole struct{}

func (NoopConsole) Log(...any)   {}
func (NoopConsole) Info(...any)  {}
func (NoopConsole) Warn(...any)  {}
func (NoopConsole) Debug(...any) {}
func (NoopConsole) Error(...any) {}
func (NoopConsole) Trace(...any) {}

// ConsoleOrNoop returns c, or a NoopConsole when c is nil.
func ConsoleOrNoop(c Console) Console {
	if c == nil {
		return NoopConsole{}
	}
	return c
}
