// Package daemon wires the long-running service mode: the acquisition
// pipeline behind an HTTP API, with optional metrics, eventing and
// persistent attempt history. One daemon owns one listener; acquisitions
// triggered over HTTP stay fully independent of each other.
package daemon

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sourcebundle/internal/acquire"
	"git.home.luguber.info/inful/sourcebundle/internal/config"
	"git.home.luguber.info/inful/sourcebundle/internal/events"
	"git.home.luguber.info/inful/sourcebundle/internal/eventstore"
	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/sourcebundle/internal/metrics"
	"git.home.luguber.info/inful/sourcebundle/internal/server/httpserver"
)

const shutdownTimeout = 15 * time.Second

// Daemon owns the service-mode lifecycle.
type Daemon struct {
	cfg        *config.Config
	store      eventstore.Store
	projection *eventstore.AcquisitionHistoryProjection
	publisher  events.Publisher
	server     *httpserver.Server
	startTime  time.Time
}

// New assembles the daemon from configuration. Construction connects the
// optional collaborators (event store, NATS) so misconfiguration fails
// before the listener binds.
func New(cfg *config.Config) (*Daemon, error) {
	d := &Daemon{cfg: cfg, startTime: time.Now()}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var promHandler http.Handler
	if cfg.Metrics.Enabled {
		registry := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
		promHandler = metrics.HTTPHandler(registry)
	}

	if cfg.EventStore.Path != "" {
		store, err := eventstore.NewSQLiteStore(cfg.EventStore.Path)
		if err != nil {
			return nil, err
		}
		d.store = store
	}

	d.projection = eventstore.NewAcquisitionHistoryProjection(d.store, cfg.Daemon.HistorySize)
	if d.store != nil {
		if err := d.projection.Rebuild(context.Background()); err != nil {
			slog.Warn("history rebuild failed, starting with empty history", "error", err)
		}
	}

	if cfg.Events.Enabled {
		publisher, err := events.NewNATSPublisher(events.Config{
			URL:           cfg.Events.URL,
			SubjectPrefix: cfg.Events.SubjectPrefix,
		})
		if err != nil {
			d.closeStore()
			return nil, err
		}
		d.publisher = publisher
	}

	service := acquire.NewService(acquire.Options{
		Recorder: recorder,
		// The tracking store applies every appended event to the live
		// projection, so history works with or without SQLite persistence.
		Store:     &trackingStore{inner: d.store, projection: d.projection},
		Publisher: d.publisher,
	})

	d.server = httpserver.New(cfg.Daemon, httpserver.Options{
		Service:           service,
		History:           d.projection,
		Runtime:           d,
		PrometheusHandler: promHandler,
	})

	return d, nil
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM or context
// cancellation, then shuts down gracefully.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.server.Start(ctx); err != nil {
		d.Close()
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case <-ctx.Done():
		slog.Info("daemon context cancelled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := d.server.Stop(shutdownCtx)
	d.Close()
	if err != nil {
		return errors.WrapError(err, errors.CategoryDaemon, "graceful shutdown incomplete").Build()
	}
	return nil
}

// Close releases the daemon's long-lived resources.
func (d *Daemon) Close() {
	if d.publisher != nil {
		d.publisher.Close()
	}
	d.closeStore()
}

func (d *Daemon) closeStore() {
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			slog.Warn("event store close failed", "error", err)
		}
		d.store = nil
	}
}

// GetStatus implements handlers.Runtime.
func (d *Daemon) GetStatus() string { return "running" }

// GetStartTime implements handlers.Runtime.
func (d *Daemon) GetStartTime() time.Time { return d.startTime }

// Counts implements handlers.Runtime.
func (d *Daemon) Counts() (completed, failed int) {
	return d.projection.Counts()
}
