package console

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/comalice/fsmx"
)

func TestZapLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewZap(zap.New(core))

	c.Log("log", 1)
	c.Info("info")
	c.Warn("warn")
	c.Debug("debug")
	c.Error("error")
	c.Trace("trace")

	want := []struct {
		level zapcore.Level
		msg   string
	}{
		{zapcore.InfoLevel, "log 1"},
		{zapcore.InfoLevel, "info"},
		{zapcore.WarnLevel, "warn"},
		{zapcore.DebugLevel, "debug"},
		{zapcore.ErrorLevel, "error"},
		{zapcore.DebugLevel, "trace"},
	}
	entries := logs.All()
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i, w := range want {
		if entries[i].Level != w.level || entries[i].Message != w.msg {
			t.Errorf("entry %d = %s %q, want %s %q", i, entries[i].Level, entries[i].Message, w.level, w.msg)
		}
	}
	if entries[5].ContextMap()["trace"] != true {
		t.Errorf("trace entry lacks the trace field: %v", entries[5].ContextMap())
	}
}

func TestZapMachineDiagnostics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewZap(zap.New(core)).WithMachine("door-1")

	def := fsmx.Definition[int, int, string]{
		States: []fsmx.State{fsmx.Atomic("closed"), fsmx.Atomic("open")},
		Events: []string{"open"},
		Transitions: []fsmx.Transition[int, int, string]{
			fsmx.Unconditional[int, int, string]("closed", "open", fsmx.To("open"), nil),
		},
		InitialControlState: "closed",
		Settings: fsmx.Settings[int, int]{
			UpdateState: func(ext int, _ []int) (int, error) { return ext, nil },
			Debug:       fsmx.Debug{Console: c},
		},
	}
	m, err := fsmx.CreateStateMachine(def, fsmx.WithMachineID("door-1"))
	if err != nil {
		t.Fatal(err)
	}
	m.Start()
	m.Send(fsmx.NewEvent("slam", nil))

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if len(warns) != 1 || !strings.Contains(warns[0].Message, "slam") {
		t.Fatalf("warnings = %v", warns)
	}
	if got := warns[0].ContextMap()["machine"]; got != "door-1" {
		t.Errorf("machine field = %v, want door-1", got)
	}
	if logs.FilterMessageSnippet("entered state").Len() == 0 {
		t.Error("no debug entry for the entered state")
	}
}

func TestZapContractFailures(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	def := fsmx.Definition[int, int, string]{
		States:              []fsmx.State{fsmx.Atomic("a")},
		InitialControlState: "a",
		Settings:            fsmx.Settings[int, int]{Debug: fsmx.Debug{Console: NewZap(zap.New(core))}},
	}
	report := fsmx.CheckContracts(def)
	if logs.Len() != len(report.Failures) || logs.Len() == 0 {
		t.Errorf("logged %d errors for %d failures", logs.Len(), len(report.Failures))
	}
}

func TestNewEncoder(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel)
	c := NewZap(l)
	c.Debug("hidden")
	c.Info("shown", "here")
	c.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry written at info level: %q", out)
	}
	if !strings.Contains(out, "[INFO]") || !strings.Contains(out, "shown here") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestNilLogger(t *testing.T) {
	c := NewZap(nil)
	c.Error("discarded")
}
