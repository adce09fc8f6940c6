// Command demo runs a pedestrian-aware traffic light, printing every
// transition, and serves its metrics while it runs.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/console"
	"github.com/comalice/fsmx/metrics"
	"github.com/comalice/fsmx/notify"
	"github.com/comalice/fsmx/visualize"
)

type light struct {
	Cycles  int
	Waiting bool
}

type update func(light) light

func reduce(l light, updates []update) (light, error) {
	for _, u := range updates {
		l = u(l)
	}
	return l, nil
}

func act(outputs []string, updates ...update) fsmx.Action[light, update, string] {
	return func(light, any, *fsmx.Settings[light, update]) (fsmx.ActionResult[update, string], error) {
		return fsmx.ActionResult[update, string]{Updates: updates, Outputs: outputs}, nil
	}
}

func definition(logger *zap.Logger) (fsmx.Definition[light, update, string], error) {
	waiting := func(l light, _ any, _ *fsmx.Settings[light, update]) bool { return l.Waiting }
	press := func(l light) light { l.Waiting = true; return l }
	cross := func(l light) light { l.Waiting = false; return l }
	count := func(l light) light { l.Cycles++; return l }

	b := fsmx.NewBuilder[light, update, string]().
		Initial("traffic").
		UpdateState(reduce).
		Console(console.NewZap(logger)).
		CheckContracts()

	traffic := b.State("traffic").Initial("red", nil).On("BUTTON", "H(traffic)", act(nil, press))
	traffic.State("red").
		OnIf("TIMER", "walk", waiting, act([]string{"pedestrians may cross"}, cross)).
		On("TIMER", "green", act([]string{"go"}, count))
	traffic.State("walk").On("TIMER", "red", nil)
	traffic.State("green").On("TIMER", "yellow", act([]string{"slow down"}))
	traffic.State("yellow").On("TIMER", "red", act([]string{"stop"}))
	return b.Build()
}

func main() {
	addr := flag.String("metrics", ":9100", "address serving /metrics, empty to disable")
	interval := flag.Duration("interval", 2*time.Second, "time between TIMER events")
	cycles := flag.Int("cycles", 12, "number of TIMER events to send")
	flag.Parse()

	logger := console.New(os.Stderr, console.InfoLevel)
	defer logger.Sync()

	def, err := definition(logger)
	if err != nil {
		logger.Fatal("invalid definition", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	publishChan := make(chan notify.Notification, 100)
	publisher := notify.NewChannelPublisher(publishChan)

	m, err := fsmx.CreateStateMachine(def,
		fsmx.WithMachineID("crossing-1"),
		fsmx.WithObserver(notify.Multi{metrics.New(registry), publisher}),
	)
	if err != nil {
		logger.Fatal("contracts failed", zap.Error(err))
	}

	if *addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(*addr, mux); err != nil {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	if _, err := m.Start(); err != nil {
		logger.Fatal("start failed", zap.Error(err))
	}
	fmt.Println("DOT:\n" + visualize.DOT(def, m.Current()))

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for n := 0; n < *cycles; {
		select {
		case <-ticker.C:
			event := "TIMER"
			if n%5 == 2 {
				event = "BUTTON"
			}
			out, err := m.Send(fsmx.NewEvent(event, nil))
			if err != nil {
				fmt.Printf("Send error: %v\n", err)
			}
			n++
			fmt.Printf("\n--- Cycle %d (%s) ---\n", n, event)
			fmt.Println("Current state:", m.Current(), "outputs:", out)
			drain(publishChan)
		case <-sig:
			fmt.Println("\nShutting down gracefully...")
			return
		}
	}
	fmt.Printf("Demo complete after %d cycles, %d full light cycles.\n", *cycles, m.ExtendedState().Cycles)
}

func drain(ch <-chan notify.Notification) {
	for {
		select {
		case n := <-ch:
			if n.Kind == notify.Transitioned {
				fmt.Printf("Published: %s -[%s]-> %s\n", n.State, n.Event, n.To)
			}
		default:
			return
		}
	}
}
