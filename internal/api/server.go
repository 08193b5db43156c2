// Package api provides the REST API for opengrid.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/opengrid/internal/studio"
)

// shutdownTimeout bounds graceful shutdown after the context is cancelled.
const shutdownTimeout = 5 * time.Second

// Server is the opengrid API server.
type Server struct {
	addr        string
	version     string
	mux         *http.ServeMux
	handler     http.Handler
	logger      *slog.Logger
	studio      *studio.Studio
	corsOrigins map[string]bool
	allowAny    bool
}

// Config holds server configuration.
type Config struct {
	Addr        string
	Version     string
	Logger      *slog.Logger
	Studio      *studio.Studio
	CORSOrigins []string // "*" allows any origin
}

// DefaultConfig returns the default server configuration. Studio must still
// be set by the caller.
func DefaultConfig() *Config {
	return &Config{
		Addr:        ":8000",
		Version:     "dev",
		Logger:      slog.Default(),
		CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// New creates a new API server.
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Studio == nil {
		return nil, errors.New("api: studio is required")
	}

	// Ensure logger is never nil
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		addr:        cfg.Addr,
		version:     version,
		mux:         http.NewServeMux(),
		logger:      logger,
		studio:      cfg.Studio,
		corsOrigins: make(map[string]bool, len(cfg.CORSOrigins)),
	}
	for _, origin := range cfg.CORSOrigins {
		if origin == "*" {
			s.allowAny = true
		}
		s.corsOrigins[origin] = true
	}

	s.registerRoutes()
	s.handler = s.withRequestID(s.withAccessLog(s.mux))
	return s, nil
}

// registerRoutes sets up all API routes.
func (s *Server) registerRoutes() {
	cors := s.cors

	// Health and stats
	s.mux.HandleFunc("GET /api/health", cors(s.handleHealth))
	s.mux.HandleFunc("GET /api/stats", cors(s.handleStats))

	// Projects
	s.mux.HandleFunc("GET /api/projects", cors(s.handleListProjects))
	s.mux.HandleFunc("POST /api/projects", cors(s.handleCreateProject))
	s.mux.HandleFunc("GET /api/projects/{code}", cors(s.handleGetProject))

	// Assets
	s.mux.HandleFunc("GET /api/projects/{code}/assets", cors(s.handleListAssets))
	s.mux.HandleFunc("POST /api/projects/{code}/assets", cors(s.handleCreateAsset))
	s.mux.HandleFunc("GET /api/projects/{code}/assets/{name}", cors(s.handleGetAsset))

	// Shots
	s.mux.HandleFunc("GET /api/projects/{code}/shots", cors(s.handleListShots))
	s.mux.HandleFunc("POST /api/projects/{code}/shots", cors(s.handleCreateShot))
	s.mux.HandleFunc("GET /api/projects/{code}/shots/{name}", cors(s.handleGetShot))

	// Tasks
	s.mux.HandleFunc("GET /api/assets/{id}/tasks", cors(s.handleListAssetTasks))
	s.mux.HandleFunc("POST /api/assets/{id}/tasks", cors(s.handleCreateAssetTask))
	s.mux.HandleFunc("GET /api/shots/{id}/tasks", cors(s.handleListShotTasks))
	s.mux.HandleFunc("POST /api/shots/{id}/tasks", cors(s.handleCreateShotTask))
	s.mux.HandleFunc("GET /api/tasks/{id}", cors(s.handleGetTask))
	s.mux.HandleFunc("PATCH /api/tasks/{id}", cors(s.handleUpdateTask))

	// Versions
	s.mux.HandleFunc("GET /api/tasks/{id}/versions", cors(s.handleListVersions))
	s.mux.HandleFunc("POST /api/tasks/{id}/versions", cors(s.handleCreateVersion))

	// Preflight for every route
	s.mux.HandleFunc("OPTIONS /api/", cors(func(w http.ResponseWriter, r *http.Request) {}))
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// StartContext listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) StartContext(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled. A clean shutdown returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting API server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down API server")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
