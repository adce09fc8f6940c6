// Package console routes machine diagnostics to zap.
package console

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/comalice/fsmx"
)

type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

var _ fsmx.Console = (*Zap)(nil)

// Zap is a fsmx.Console writing through a zap logger. Log and Info map to
// the info level, Trace to the debug level with a trace field.
type Zap struct {
	l *zap.SugaredLogger
}

// NewZap adapts l. A nil logger discards everything.
func NewZap(l *zap.Logger) *Zap {
	if l == nil {
		l = zap.NewNop()
	}
	return &Zap{l: l.Sugar()}
}

// WithMachine returns a console tagging every entry with the machine ID.
func (z *Zap) WithMachine(id string) *Zap {
	return &Zap{l: z.l.With(zap.String("machine", id))}
}

func (z *Zap) Log(args ...any)   { z.l.Infoln(args...) }
func (z *Zap) Info(args ...any)  { z.l.Infoln(args...) }
func (z *Zap) Warn(args ...any)  { z.l.Warnln(args...) }
func (z *Zap) Debug(args ...any) { z.l.Debugln(args...) }
func (z *Zap) Error(args ...any) { z.l.Errorln(args...) }
func (z *Zap) Trace(args ...any) { z.l.With(zap.Bool("trace", true)).Debugln(args...) }

// Sync flushes buffered entries.
func (z *Zap) Sync() error { return z.l.Sync() }

// New builds a zap logger writing human readable lines to out, stderr when
// out is nil.
func New(out io.Writer, level Level, opts ...zap.Option) *zap.Logger {
	if out == nil {
		out = os.Stderr
	}
	core := zapcore.NewCore(Encoder(), zapcore.AddSync(out), zap.NewAtomicLevelAt(level))
	return zap.New(core, opts...)
}

// Encoder returns the console encoder used by New:
//
//	[INFO]	[2006-01-02 15:04:05]	[core/machine.go:159]	found event handler go
func Encoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller_line",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    encodeLevel,
		EncodeTime:     encodeTime,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   encodeCaller,
	})
}

func encodeLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + level.CapitalString() + "]")
}

const timeFormat = "2006-01-02 15:04:05"

func encodeTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + t.Format(timeFormat) + "]")
}

func encodeCaller(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + caller.TrimmedPath() + "]")
}
