// Package server exposes categorization, feedback and the co-pilot features
// over HTTP.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Veraticus/finshare-ai/internal/categorizer"
	"github.com/Veraticus/finshare-ai/internal/copilot"
	"github.com/Veraticus/finshare-ai/internal/feedback"
	"github.com/Veraticus/finshare-ai/internal/model"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UserHeader carries the caller's identity, set by the gateway in front of us.
const UserHeader = "X-Authenticated-User-ID"

// Default server settings.
const (
	DefaultAddr            = ":8000"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	maxBodyBytes           = 1 << 20
)

// Config holds listener settings.
type Config struct {
	Addr         string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// TLS, when set, makes Serve wrap its listener for HTTPS.
	TLS *tls.Config
}

// CategoryCatalog is the read side of the categories catalog.
type CategoryCatalog interface {
	List() []model.Category
	Contains(category model.Category) bool
}

// Deps are the components the handlers call into. Refiner, Assistant, Budgeter
// and Generator may be nil; the co-pilot routes then serve their fallbacks.
type Deps struct {
	Categorizer *categorizer.Categorizer
	Feedback    *feedback.Store
	Catalog     CategoryCatalog
	Refiner     *copilot.Refiner
	Assistant   *copilot.Assistant
	Budgeter    *copilot.TripBudgeter
	Generator   copilot.Generator
}

// Server is the HTTP boundary.
type Server struct {
	deps    Deps
	logger  *slog.Logger
	handler http.Handler
	cfg     Config
}

// New builds the server and its routes.
func New(cfg Config, deps Deps, logger *slog.Logger) (*Server, error) {
	if deps.Categorizer == nil {
		return nil, errors.New("categorizer is required")
	}
	if deps.Feedback == nil {
		return nil, errors.New("feedback store is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("category catalog is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if deps.Assistant == nil {
		deps.Assistant = copilot.NewAssistant(deps.Generator, nil, logger)
	}
	if deps.Budgeter == nil {
		deps.Budgeter = copilot.NewTripBudgeter(deps.Generator, logger)
	}

	s := &Server{deps: deps, logger: logger, cfg: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/ai/categorize", s.handleCategorize)
	mux.HandleFunc("POST /api/ai/feedback", s.handleFeedback)
	mux.HandleFunc("GET /api/ai/categories", s.handleCategories)
	mux.HandleFunc("GET /api/ai/health", s.handleHealth)
	mux.HandleFunc("POST /api/copilot/assistant", s.handleAssistant)
	mux.HandleFunc("POST /api/copilot/trip-budgeter", s.handleTripBudget)
	mux.HandleFunc("GET /api/copilot/capabilities", s.handleCapabilities)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.handler = chain(mux,
		recoverPanics(logger),
		withRequestID,
		logRequests(logger),
		withCORS(cfg.CORSOrigins),
	)
	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on l until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	if s.cfg.TLS != nil {
		l = tls.NewListener(l, s.cfg.TLS)
	}
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", l.Addr().String(), "tls", s.cfg.TLS != nil)
		errCh <- srv.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown HTTP: %w", err)
	}
	<-errCh
	return nil
}

// ListenAndServe listens on the configured address and serves until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, l)
}
