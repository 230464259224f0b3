package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"lexiclaire/gateway/pkg/config"
	"lexiclaire/gateway/pkg/proxy/handlers"
	"lexiclaire/gateway/pkg/proxy/middleware"
	"lexiclaire/gateway/pkg/telemetry/health"
	"lexiclaire/gateway/pkg/telemetry/tracing"
)

// API routes.
const (
	RouteAnalyze = "/api/analyze"
	RouteChat    = "/api/chat"
	RouteCompare = "/api/compare"
	RouteWake    = "/api/wake"
	RouteVersion = "/version"
)

// Server is the client-facing HTTP server of the gateway.
type Server struct {
	config       *config.Config
	app          *App
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	addr         string
}

// NewServer creates a new server over a built App.
func NewServer(app *App) *Server {
	return &Server{
		config:       app.Config,
		app:          app,
		shutdownChan: make(chan struct{}),
	}
}

// Start listens on the configured address and blocks until ctx is done,
// RequestShutdown is called, or the listener fails. It then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	cfg := s.config.Server
	ln, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddress, err)
	}

	s.httpServer = &http.Server{
		Handler:        s.setupRoutes(),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
	}
	s.addr = ln.Addr().String()
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server", "address", s.addr)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// RequestShutdown asks a running Start to return.
func (s *Server) RequestShutdown() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully shuts down the server. In-flight requests get up to
// server.shutdown_timeout to finish; their records are flushed when the App
// is closed afterwards.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		timeout := s.config.Server.ShutdownTimeout
		slog.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()
	app := s.app
	t := app.Tracer

	api := map[string]http.Handler{
		RouteAnalyze: handlers.NewAnalyzeHandler(app.Orchestrator),
		RouteCompare: handlers.NewCompareHandler(app.Orchestrator),
		RouteChat:    handlers.NewChatHandler(app.Orchestrator),
		RouteWake:    handlers.NewWakeHandler(app.Gateway),
	}
	for route, h := range api {
		mux.Handle(route, tracing.HTTPMiddleware(t, "POST "+route)(h))
	}

	hc := s.config.Telemetry.Health
	mux.Handle(hc.LivenessPath, app.Health.LivenessHandler())
	mux.Handle(hc.ReadinessPath, app.Health.ReadinessHandler())
	mux.Handle(RouteVersion, health.VersionHandler(app.Build.Version, app.Build.Commit, app.Build.BuildTime))

	mc := s.config.Telemetry.Metrics
	if config.BoolValue(mc.Enabled, true) {
		mux.Handle(mc.Path, app.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.CORSMiddleware(&s.config.Server.CORS)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the bound listen address, useful with port 0.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
