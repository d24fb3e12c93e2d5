package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"summonmind/atlas/pkg/audit"
	"summonmind/atlas/pkg/config"
	"summonmind/atlas/pkg/engine"
	"summonmind/atlas/pkg/ruleset"
	"summonmind/atlas/pkg/telemetry/health"
	"summonmind/atlas/pkg/telemetry/metrics"
)

// Options carries the wired subsystems the server serves. Rulesets,
// AuditStore, and Metrics are optional; nil disables the corresponding
// routes or recording.
type Options struct {
	Config     *config.Config
	Validator  *engine.Validator
	Rulesets   *ruleset.Manager
	AuditStore audit.Storage
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Server is the HTTP front end of the validation engine.
type Server struct {
	config     *config.Config
	validator  *engine.Validator
	rulesets   *ruleset.Manager
	auditStore audit.Storage
	metrics    *metrics.Metrics
	checker    *health.Checker
	logger     *slog.Logger

	// sem caps concurrent validations when engine.max_concurrent is set.
	sem chan struct{}

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server from the wired subsystems.
func New(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server")

	validator := opts.Validator
	if validator == nil {
		validator = engine.NewValidator(logger)
	}

	s := &Server{
		config:     cfg,
		validator:  validator,
		rulesets:   opts.Rulesets,
		auditStore: opts.AuditStore,
		metrics:    opts.Metrics,
		checker:    health.New(0),
		logger:     logger,
	}

	if cfg.Engine.MaxConcurrent > 0 {
		s.sem = make(chan struct{}, cfg.Engine.MaxConcurrent)
	}

	s.registerHealthChecks()

	return s
}

// registerHealthChecks wires readiness checks for the optional subsystems.
func (s *Server) registerHealthChecks() {
	if s.auditStore != nil {
		s.checker.Register("audit", func(ctx context.Context) error {
			_, err := s.auditStore.Count(ctx, time.Time{})
			return err
		})
	}
	if s.rulesets != nil {
		s.checker.Register("rulesets", func(ctx context.Context) error {
			if len(s.rulesets.Names()) == 0 {
				return fmt.Errorf("no rulesets loaded")
			}
			return nil
		})
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled, a
// shutdown signal arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.Server.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", s.config.Server.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully drains and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the listener is active.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler builds the route tree with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.recoverMiddleware)
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleLiveness)
	r.Get("/readyz", s.handleReadiness)

	if s.metrics != nil && s.config.Metrics.Enabled {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/validate", s.handleValidate)
		if s.rulesets != nil {
			v1.Get("/rulesets", s.handleListRulesets)
			v1.Post("/rulesets/{name}/validate", s.handleRulesetValidate)
		}
	})

	return r
}

// acquire blocks until a validation slot is free, or ctx is done.
// It is a no-op when no concurrency cap is configured.
func (s *Server) acquire(ctx context.Context) error {
	if s.sem == nil {
		return nil
	}
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) release() {
	if s.sem != nil {
		<-s.sem
	}
}
