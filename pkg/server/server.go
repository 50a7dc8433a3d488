// Package server ties the admin API, the forwarding engine, and the
// middleware chain into one HTTP server with lifecycle management.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"switchyard-hq/spur/pkg/api"
	"switchyard-hq/spur/pkg/auth"
	"switchyard-hq/spur/pkg/config"
	"switchyard-hq/spur/pkg/credential"
	"switchyard-hq/spur/pkg/proxy"
	"switchyard-hq/spur/pkg/server/middleware"
	"switchyard-hq/spur/pkg/target"
	"switchyard-hq/spur/pkg/telemetry/metrics"
)

// Server is the spur HTTP server.
type Server struct {
	config      *config.Config
	credentials *credential.Store
	targets     *target.Store
	persist     credential.PersistFunc
	collector   *metrics.Collector

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server over the given state. persist is the durable
// sink for /api/setup provisioning; nil disables the endpoint. collector
// may be nil when metrics are disabled.
func NewServer(cfg *config.Config, creds *credential.Store, targets *target.Store,
	persist credential.PersistFunc, collector *metrics.Collector) *Server {
	return &Server{
		config:       cfg,
		credentials:  creds,
		targets:      targets,
		persist:      persist,
		collector:    collector,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"address", s.config.Server.ListenAddress,
			"proxy_prefix", s.config.Forward.Prefix,
			"auth_mode", s.config.Auth.Mode,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the fully composed HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	guard := auth.NewGuard(s.credentials)
	prefix := s.config.Forward.Prefix

	infoHandler := &api.InfoHandler{Store: s.credentials, Targets: s.targets}
	configHandler := &api.ConfigHandler{Targets: s.targets, ProxyPath: prefix}
	statusHandler := &api.StatusHandler{Targets: s.targets}
	changeTokenHandler := &api.ChangeTokenHandler{Store: s.credentials}
	setupHandler := &api.SetupHandler{Store: s.credentials, Persist: s.persist}
	forwarder := proxy.NewForwarder(s.credentials, s.targets, s.config.Forward)

	mux.Handle("/api/info", s.instrument("admin", infoHandler))
	mux.Handle("/api/config", s.instrument("admin", api.RequireAdmin(guard, configHandler)))
	mux.Handle("/api/status", s.instrument("admin", api.RequireAdmin(guard, statusHandler)))
	mux.Handle("/api/change-admin-token", s.instrument("admin", api.RequireAdmin(guard, changeTokenHandler)))
	mux.Handle("/api/setup", s.instrument("admin", setupHandler))

	// Both "/p" and "/p/" route to the forwarder so a bare-prefix request
	// relays to the target root instead of bouncing through a 301.
	mux.Handle(prefix, s.instrument("forward", forwarder))
	mux.Handle(strings.TrimSuffix(prefix, "/"), s.instrument("forward", forwarder))

	if s.collector != nil {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.collector.Handler())
	}

	mux.Handle("/", s.rootHandler())

	var handler http.Handler = mux
	handler = middleware.CORS(s.config.Server.CORS, prefix)(handler)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)

	return handler
}

// instrument wraps a handler with the metrics middleware when enabled.
func (s *Server) instrument(route string, h http.Handler) http.Handler {
	if s.collector == nil {
		return h
	}
	return s.collector.Middleware(route)(h)
}

// rootHandler serves the static UI directory when configured, and the
// JSON 404 envelope otherwise.
func (s *Server) rootHandler() http.Handler {
	dir := s.config.UI.Dir
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			slog.Info("serving static UI", "dir", dir)
			return http.FileServer(http.Dir(dir))
		}
		slog.Warn("configured UI directory not found, serving API only", "dir", dir)
	}
	return &api.NotFoundHandler{}
}
