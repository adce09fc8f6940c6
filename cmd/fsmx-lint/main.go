// Command fsmx-lint checks YAML machine definitions against every contract.
//
//	fsmx-lint [-watch] [-log-file path] [-v] [-dot] file.yaml
//
// The exit status is 1 when the definition cannot be loaded or violates a
// contract, 2 on usage errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/console"
	"github.com/comalice/fsmx/visualize"
	"github.com/comalice/fsmx/yamldef"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	watch    bool
	logFile  string
	verbose  bool
	dot      bool
	debounce time.Duration
	path     string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("fsmx-lint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&o.watch, "watch", false, "re-check the file whenever it changes")
	fs.StringVar(&o.logFile, "log-file", "", "write logs to a rotated file instead of stderr")
	fs.BoolVar(&o.verbose, "v", false, "log contract checker diagnostics at debug level")
	fs.BoolVar(&o.dot, "dot", false, "print the definition as Graphviz DOT when it is valid")
	fs.DurationVar(&o.debounce, "debounce", 200*time.Millisecond, "delay before re-checking a changed file")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: fsmx-lint [flags] file.yaml")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, errors.New("exactly one definition file is required")
	}
	o.path = fs.Arg(0)
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	logger := newLogger(o, stderr)
	defer logger.Sync()

	if !o.watch {
		if err := lint(o, logger, stdout); err != nil {
			fmt.Fprintln(stdout, err)
			return 1
		}
		return 0
	}

	if err := watch(ctx, o, logger, stdout); err != nil {
		logger.Error("watch failed", zap.Error(err))
		return 1
	}
	return 0
}

func newLogger(o options, stderr io.Writer) *zap.Logger {
	level := console.InfoLevel
	if o.verbose {
		level = console.DebugLevel
	}
	out := stderr
	if o.logFile != "" {
		out = &lumberjack.Logger{
			Filename:   o.logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
	}
	return console.New(out, level, zap.AddCaller())
}

// lint loads the file at o.path and runs the contract checker on its
// structure.
func lint(o options, logger *zap.Logger, stdout io.Writer) error {
	log := logger.With(zap.String("file", o.path))

	doc, err := yamldef.ParseFile(o.path)
	if err != nil {
		return err
	}
	def, err := yamldef.Structure(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", o.path, err)
	}
	def.Settings.Debug.Console = console.NewZap(log)

	report := fsmx.CheckContracts(def)
	if err := report.Err(); err != nil {
		log.Warn("definition rejected", zap.Int("failures", len(report.Failures)))
		return fmt.Errorf("%s: %w", o.path, err)
	}
	log.Info("definition fulfills every contract",
		zap.Int("states", countStates(def.States)),
		zap.Int("transitions", len(def.Transitions)),
	)
	fmt.Fprintf(stdout, "%s: ok\n", o.path)
	if o.dot {
		fmt.Fprint(stdout, visualize.DOT(def, ""))
	}
	return nil
}

func countStates(states []fsmx.State) int {
	n := len(states)
	for _, s := range states {
		n += countStates(s.Children)
	}
	return n
}
