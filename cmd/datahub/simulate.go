// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/medimate/datahub"
	"github.com/medimate/datahub/backend"
	"github.com/medimate/datahub/metrics"
	"github.com/medimate/datahub/screen"
)

type simulateOptions struct {
	*rootOptions

	nickname    string
	linger      time.Duration
	metricsAddr string
	watch       bool
}

func newSimulateCommand(root *rootOptions) *cobra.Command {
	opts := &simulateOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Open every screen and make a series of changes",
		Long: `Opens the home, full calendar, my page and mate selection screens,
then adds, updates and removes data through the backend. Every screen
reload is printed as it happens.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return opts.run(ctx, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.nickname, "nickname", "pill-popper", "nickname of the simulated user")
	cmd.Flags().DurationVar(&opts.linger, "linger", time.Second,
		"how long to keep the screens open after the last change")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "",
		"serve Prometheus metrics on this address until interrupted")
	cmd.Flags().BoolVar(&opts.watch, "watch", false,
		"reload the logging config when the config file changes")
	return cmd
}

// printer serializes output from the screens' reload goroutines.
type printer struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *printer) printf(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

func (p *printer) snapshot(kind screen.Kind, snapshot screen.Snapshot) {
	if snapshot.Err != nil {
		p.printf("%-14s failed: %v\n", kind, snapshot.Err)
		return
	}
	p.printf("%-14s %s\n", kind, summary(kind, snapshot))
}

func summary(kind screen.Kind, snapshot screen.Snapshot) string {
	shows := kind.Shows()
	var s string
	if shows.Has(screen.ReloadMedicines) {
		s += fmt.Sprintf(" medicines=%d", len(snapshot.Medicines))
	}
	if shows.Has(screen.ReloadMates) {
		s += fmt.Sprintf(" mates=%d", len(snapshot.Mates))
	}
	if shows.Has(screen.ReloadProfile) {
		s += fmt.Sprintf(" profile=%q(%d/%d)", snapshot.Profile.Nickname,
			snapshot.Profile.MedicineCount, snapshot.Profile.MateCount)
	}
	if shows.Has(screen.ReloadCalendar) {
		s += fmt.Sprintf(" doses=%d", len(snapshot.Doses))
	}
	return s[1:]
}

func (o *simulateOptions) run(ctx context.Context, out io.Writer) error {
	config, err := o.loadConfig()
	if err != nil {
		return errors.Trace(err)
	}

	registry := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(registry)
	if err != nil {
		return errors.Trace(err)
	}
	hub := datahub.NewHub(&datahub.HubConfig{Metrics: collector})
	defer hub.Close()

	if o.watch && o.configPath != "" {
		watcher, err := datahub.NewConfigWatcher(datahub.ConfigWatcherConfig{
			Path:     o.configPath,
			Debounce: 100 * time.Millisecond,
			OnChange: func(config datahub.Config) {
				if err := config.ConfigureLogging(); err != nil {
					logger.Errorf("applying logging config: %v", err)
				}
			},
		})
		if err != nil {
			return errors.Trace(err)
		}
		defer func() { _ = watcher.Stop() }()
	}

	memory := backend.NewMemory(o.nickname)
	cached := backend.NewCached(memory, 0)
	mutator := backend.NewNotifying(cached, hub)

	p := &printer{out: out}
	screens := make([]*screen.Screen, 0, len(screen.AllKinds()))
	for _, kind := range screen.AllKinds() {
		kind := kind // per-iteration copy; go.mod targets go 1.21 loop semantics
		screenConfig := screen.ConfigFor(kind, config)
		screenConfig.Notify = func(snapshot screen.Snapshot) { p.snapshot(kind, snapshot) }
		scr, err := screen.New(hub, cached, kind, screenConfig)
		if err != nil {
			return errors.Trace(err)
		}
		if err := scr.Activate(ctx); err != nil {
			return errors.Trace(err)
		}
		defer scr.Deactivate()
		screens = append(screens, scr)
	}

	p.printf("-- changes\n")
	if err := script(ctx, mutator); err != nil {
		return errors.Annotate(err, "simulating")
	}

	if o.metricsAddr != "" {
		p.printf("-- serving metrics on %s\n", o.metricsAddr)
		if err := serveMetrics(ctx, o.metricsAddr, registry); err != nil {
			return errors.Trace(err)
		}
	} else {
		select {
		case <-time.After(o.linger):
		case <-ctx.Done():
		}
	}

	p.printf("-- final\n")
	for _, scr := range screens {
		if err := scr.Refresh(context.Background()); err != nil {
			return errors.Annotatef(err, "refreshing %s screen", scr.Kind())
		}
	}
	return nil
}

// script makes the changes a user might make in a short session.
func script(ctx context.Context, mutator *backend.Notifying) error {
	vitamin, err := mutator.AddMedicine(ctx, backend.Medicine{
		Name:   "Vitamin D",
		Dosage: "1 tablet",
		Times:  []string{"08:00"},
	})
	if err != nil {
		return errors.Trace(err)
	}
	iron, err := mutator.AddMedicine(ctx, backend.Medicine{
		Name:   "Iron",
		Dosage: "1 capsule",
		Times:  []string{"08:00", "20:00"},
	})
	if err != nil {
		return errors.Trace(err)
	}
	if _, err := mutator.TakeDose(ctx, vitamin.ID, time.Now()); err != nil {
		return errors.Trace(err)
	}
	if err := mutator.Follow(ctx, backend.Mate{ID: "mate-1", Nickname: "early-bird"}); err != nil {
		return errors.Trace(err)
	}
	if _, err := mutator.UpdateProfile(ctx, backend.ProfileUpdate{Nickname: "night-owl"}); err != nil {
		return errors.Trace(err)
	}
	iron.Dosage = "2 capsules"
	if err := mutator.UpdateMedicine(ctx, iron); err != nil {
		return errors.Trace(err)
	}
	if err := mutator.DeleteMedicine(ctx, vitamin.ID); err != nil {
		return errors.Trace(err)
	}
	mutator.RefreshAll(ctx)
	return nil
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry) error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return errors.Annotate(err, "serving metrics")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Trace(server.Shutdown(shutdownCtx))
}
