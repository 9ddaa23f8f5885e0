// Package httpserver wires the daemon's HTTP surface: the acquisition API,
// the history endpoints, monitoring, and optionally Prometheus metrics, all
// behind one logging/recovery middleware chain.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/sourcebundle/internal/config"
	"git.home.luguber.info/inful/sourcebundle/internal/foundation/errors"
	"git.home.luguber.info/inful/sourcebundle/internal/server/handlers"
	smw "git.home.luguber.info/inful/sourcebundle/internal/server/middleware"
)

// Options configures runtime-specific wiring.
type Options struct {
	// Service runs acquisitions for POST /api/v1/bundles.
	Service handlers.Acquirer

	// History backs the acquisition list/detail endpoints.
	History handlers.History

	// Runtime backs health and status reporting.
	Runtime handlers.Runtime

	// PrometheusHandler, when set, is mounted at /metrics.
	PrometheusHandler http.Handler
}

// Server manages the daemon's single HTTP listener.
type Server struct {
	cfg  config.DaemonConfig
	opts Options
	srv  *http.Server

	acquireHandlers    *handlers.AcquireHandlers
	historyHandlers    *handlers.HistoryHandlers
	monitoringHandlers *handlers.MonitoringHandlers

	mchain func(http.Handler) http.Handler
}

// New constructs the HTTP server wiring.
func New(cfg config.DaemonConfig, opts Options) *Server {
	s := &Server{
		cfg:  cfg,
		opts: opts,
	}

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	s.acquireHandlers = handlers.NewAcquireHandlers(opts.Service, timeout)
	s.historyHandlers = handlers.NewHistoryHandlers(opts.History)
	s.monitoringHandlers = handlers.NewMonitoringHandlers(opts.Runtime)
	s.mchain = smw.Chain(slog.Default(), errors.NewHTTPErrorAdapter(slog.Default()))

	return s
}

// Handler builds the routed, middleware-wrapped handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/bundles", s.acquireHandlers.HandleCreateBundle)
	mux.HandleFunc("/api/v1/acquisitions", s.historyHandlers.HandleList)
	mux.HandleFunc("/api/v1/acquisitions/", s.historyHandlers.HandleGet)
	mux.HandleFunc("/api/v1/status", s.monitoringHandlers.HandleStatus)
	mux.HandleFunc("/healthz", s.monitoringHandlers.HandleHealth)
	mux.HandleFunc("/readyz", s.monitoringHandlers.HandleReady)
	if s.opts.PrometheusHandler != nil {
		mux.Handle("/metrics", s.opts.PrometheusHandler)
	}
	return s.mchain(mux)
}

// Start binds the listener and begins serving. The listener is bound before
// the serving goroutine starts so a port conflict fails fast at startup.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return errors.DaemonError("could not bind daemon listener").
			WithCause(err).
			WithContext("addr", addr).
			Build()
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("daemon server error", "error", err)
		}
	}()

	slog.Info("daemon HTTP server started", slog.String("addr", addr))
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return errors.DaemonError("daemon shutdown failed").
			WithCause(err).
			Build()
	}
	slog.Info("daemon HTTP server stopped")
	return nil
}
