package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"codeberg.org/mutker/periphcheck/internal/archive"
	"codeberg.org/mutker/periphcheck/internal/catalog"
	"codeberg.org/mutker/periphcheck/internal/classify"
	"codeberg.org/mutker/periphcheck/internal/diagnostic"
	"codeberg.org/mutker/periphcheck/internal/errors"
	"codeberg.org/mutker/periphcheck/internal/history"
	"codeberg.org/mutker/periphcheck/internal/logger"
	"codeberg.org/mutker/periphcheck/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const metricsShutdownTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:       "run <diagnostic>",
	Short:     "Run one diagnostic until its criteria pass or it is stopped",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"cpu", "gpu", "keyboard"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runDiagnostic(ctx, args[0], cmd.OutOrStdout())
	},
}

func runDiagnostic(ctx context.Context, name string, out io.Writer) error {
	log := logger.Default().With("run")

	entry, err := catalog.Lookup(name)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b, err := bind(name, cancel, log)
	if err != nil {
		return err
	}
	defer b.close()

	store, err := archive.NewService(cfg.ArchiveConfig(), log.With("archive"))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close archive")
		}
	}()

	metrics := telemetry.New()
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	transcript := &catalog.Transcript{}
	spec := entry.Spec(catalog.Options{CPURounds: cfg.CPURounds, Transcript: transcript})
	w := newWatcher(log)

	m, err := diagnostic.New(spec, b.provider, b.clock,
		diagnostic.WithHistory(history.NewLog(cfg.HistorySize)),
		diagnostic.WithLogger(log),
		diagnostic.WithDevice(cfg.Device),
		diagnostic.WithObserver(metrics),
		diagnostic.WithObserver(archive.NewObserver(store, log)),
		diagnostic.WithObserver(w),
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddress != "" {
		server := &http.Server{Addr: cfg.MetricsAddress, Handler: metricsHandler(), ReadHeaderTimeout: time.Second}
		g.Go(func() error {
			log.Info().Str("address", cfg.MetricsAddress).Msg("Serving metrics")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-gctx.Done():
			case <-w.done:
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	var outcome diagnostic.Outcome
	g.Go(func() error {
		if err := m.Start(gctx); err != nil {
			w.finish(err)
			return err
		}

		var deadline <-chan time.Time
		if cfg.Duration > 0 {
			timer := time.NewTimer(cfg.Duration)
			defer timer.Stop()
			deadline = timer.C
		}

		select {
		case <-gctx.Done():
		case <-deadline:
		case <-w.done:
		}

		var err error
		outcome, err = m.Stop()
		if err != nil && !errors.HasCode(err, diagnostic.ErrNotRunning) {
			return err
		}
		w.finish(nil)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	snapshot := m.Snapshot()
	if failure := w.err(); failure != nil {
		fmt.Fprintf(out, "%s: %s\n", spec.Name, snapshot.Message)
		return failure
	}

	report(out, m, outcome, transcript)
	return nil
}

func metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func report(out io.Writer, m *diagnostic.Machine, outcome diagnostic.Outcome, transcript *catalog.Transcript) {
	runs := m.History()
	if len(runs) == 0 {
		fmt.Fprintf(out, "%s: no samples recorded\n", m.Spec().Name)
		return
	}

	last := runs[0]
	status := "incomplete"
	if last.Completed || outcome.Completed {
		status = "completed"
	}

	fmt.Fprintf(out, "%s on %s: %s after %s\n", last.Diagnostic, last.Device, status, last.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  samples %d  last %.1f  best %.1f  worst %.1f  average %.1f  verdict %s\n",
		last.Samples, last.Last, last.Best, last.Worst, last.Average, last.Verdict)

	pending := 0
	for _, c := range last.Criteria {
		if !c.Satisfied {
			pending++
		}
	}
	if len(last.Criteria) > 0 {
		fmt.Fprintf(out, "  criteria %d/%d satisfied\n", len(last.Criteria)-pending, len(last.Criteria))
	}

	if transcript.Count() > 0 {
		fmt.Fprintf(out, "  typed %q (%d keys)\n", transcript.Text(), transcript.Count())
	}
}

// watcher ends a run when the machine finishes on its own.
type watcher struct {
	log  logger.Logger
	once sync.Once
	done chan struct{}

	mu      sync.Mutex
	failure error
}

func newWatcher(log logger.Logger) *watcher {
	return &watcher{log: log, done: make(chan struct{})}
}

func (w *watcher) RunStarted(name, device string) {
	w.log.Info().Str("diagnostic", name).Str("device", device).Msg("Run started")
}

func (w *watcher) SampleRecorded(name string, sample diagnostic.Sample, verdict classify.Verdict) {
	w.log.Debug().
		Str("diagnostic", name).
		Uint64("seq", sample.Seq).
		Float64("value", sample.Value).
		Str("symbol", sample.Symbol).
		Str("verdict", verdict.Label).
		Msg("Sample")
}

func (w *watcher) RunFinished(string, diagnostic.Outcome) {
	w.finish(nil)
}

func (w *watcher) RunFailed(_ string, err error) {
	w.finish(err)
}

func (w *watcher) finish(err error) {
	if err != nil {
		w.mu.Lock()
		if w.failure == nil {
			w.failure = err
		}
		w.mu.Unlock()
	}
	w.once.Do(func() { close(w.done) })
}

func (w *watcher) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failure
}
