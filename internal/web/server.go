package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/emiliopalmerini/rtgscope/internal/adapters/otel"
	"github.com/emiliopalmerini/rtgscope/internal/auth"
	"github.com/emiliopalmerini/rtgscope/internal/dashboard"
	"github.com/emiliopalmerini/rtgscope/internal/logger"
	"github.com/emiliopalmerini/rtgscope/internal/ports"
	sharedmw "github.com/emiliopalmerini/rtgscope/internal/shared/middleware"
)

//go:embed static/*
var staticFiles embed.FS

const dashboardTitle = "RTG Microscopy Dashboard"

// Server serves either the dashboard or the experiments API.
type Server struct {
	router *http.ServeMux
	port   int
	lggr   logger.Logger

	// dashboard
	view      *dashboard.View
	pollEvery time.Duration

	// experiments API
	experimentRepo ports.ExperimentRepository
	authn          *auth.Authenticator
	metrics        ports.MetricsExporter
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for requests and lifecycle events.
func WithLogger(lggr logger.Logger) Option {
	return func(s *Server) {
		s.lggr = lggr
	}
}

func WithMetrics(m ports.MetricsExporter) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithPollInterval sets how often an unloaded dashboard table refreshes itself.
func WithPollInterval(d time.Duration) Option {
	return func(s *Server) {
		s.pollEvery = d
	}
}

func newServer(port int, opts []Option) *Server {
	s := &Server{
		router:    http.NewServeMux(),
		port:      port,
		lggr:      logger.Nop(),
		metrics:   otel.NewNoOpExporter(),
		pollEvery: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDashboardServer serves the experiments dashboard backed by view.
func NewDashboardServer(port int, view *dashboard.View, opts ...Option) *Server {
	s := newServer(port, opts)
	s.view = view
	s.setupDashboardRoutes()
	return s
}

// NewAPIServer serves the experiments listing to admin token holders.
func NewAPIServer(port int, repo ports.ExperimentRepository, authn *auth.Authenticator, opts ...Option) *Server {
	s := newServer(port, opts)
	s.experimentRepo = repo
	s.authn = authn
	s.setupAPIRoutes()
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) setupDashboardRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to create static filesystem: %v", err))
	}
	s.router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.router.HandleFunc("GET /health", s.handleHealth)

	s.router.HandleFunc("GET /{$}", s.handleDashboard)
	s.router.HandleFunc("GET /partials/experiments", s.handleExperimentsPartial)
}

func (s *Server) setupAPIRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.Handle("GET /experiments", s.requireAdmin(http.HandlerFunc(s.handleListExperiments)))
}

// Handler returns the server's routes wrapped in its middleware.
func (s *Server) Handler() http.Handler {
	return sharedmw.Logger(s.lggr)(sharedmw.HTMX(s.router))
}

// Listen binds the server's port. Connections made after Listen returns are
// queued until Serve runs.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}
	return ln, nil
}

// Start listens until ctx is cancelled. A dashboard server mounts its view first.
func (s *Server) Start(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. A dashboard server mounts its view first.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.view != nil {
		s.view.Mount(ctx)
	}

	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.lggr.Infow("starting server", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.lggr.Errorw("server shutdown error", "err", err)
		}
	}()

	err := server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
