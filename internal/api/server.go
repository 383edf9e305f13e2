// Package api serves the read-only status surface: health, run history, and
// workspaces. Tool invocation happens over MCP only; this server exists for
// operators watching a long-lived gateway.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/smilealdway/PowerMCP/internal/history"
	"github.com/smilealdway/PowerMCP/internal/log"
	"github.com/smilealdway/PowerMCP/internal/session"
	"github.com/smilealdway/PowerMCP/internal/workspace"
)

// RunReader is the slice of the history store the API needs.
type RunReader interface {
	Recent(ctx context.Context, limit int) ([]*history.Run, error)
	Get(ctx context.Context, id string) (*history.Run, error)
}

// Config holds API server configuration.
type Config struct {
	Listen string
}

// Server is the HTTP status server.
type Server struct {
	config     Config
	runs       RunReader
	workspaces *workspace.Manager
	sessions   *session.Store
	metrics    http.Handler
	logger     *slog.Logger
	server     *http.Server
	startedAt  time.Time
}

// New creates the API server. metrics may be nil to disable the /metrics
// endpoint.
func New(config Config, runs RunReader, workspaces *workspace.Manager, sessions *session.Store, metrics http.Handler) *Server {
	return &Server{
		config:     config,
		runs:       runs,
		workspaces: workspaces,
		sessions:   sessions,
		metrics:    metrics,
		logger:     log.WithComponent("api"),
		startedAt:  time.Now(),
	}
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("API server starting", "listen", s.config.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("API server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRunByID)
		r.Get("/workspaces", s.handleWorkspaces)
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return r
}
