// Package httpserver provides the HTTP API for the citation contact service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/helixir/citation-contact-service/internal/domain"
	"github.com/helixir/citation-contact-service/internal/observability"
	"github.com/helixir/citation-contact-service/internal/storage"
)

// BatchRunner runs a batch of citations through the resolution pipeline.
type BatchRunner interface {
	Process(ctx context.Context, citations []domain.Citation) ([]domain.ResultRow, domain.SummaryStats, error)
}

// Server is the HTTP API server.
type Server struct {
	router         chi.Router
	httpServer     *http.Server
	batch          BatchRunner
	files          *storage.FileStore
	metrics        *observability.Metrics
	metricsHandler http.Handler
	maxUpload      int64
	logger         zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
	MetricsPath     string
}

// NewServer creates a new HTTP server with all dependencies. metricsHandler
// may be nil when metrics exposure is disabled.
func NewServer(
	cfg Config,
	batch BatchRunner,
	files *storage.FileStore,
	metrics *observability.Metrics,
	metricsHandler http.Handler,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		batch:          batch,
		files:          files,
		metrics:        metrics,
		metricsHandler: metricsHandler,
		maxUpload:      cfg.MaxUploadBytes,
		logger:         logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter(cfg.MetricsPath)

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter(metricsPath string) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(requestLogMiddleware(s.logger))

	r.Get("/", s.indexHandler)
	r.Post("/upload", s.uploadHandler)
	r.Post("/dedupe", s.dedupeHandler)
	r.Get("/download/{filename}", s.downloadHandler)
	r.Get("/healthz", s.healthHandler)

	if s.metricsHandler != nil && metricsPath != "" {
		r.Handle(metricsPath, s.metricsHandler)
	}

	return r
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
