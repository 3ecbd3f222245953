// Package httpserver provides the HTTP REST API server for the book catalog service.
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
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/helixir/book-catalog-service/internal/database"
	"github.com/helixir/book-catalog-service/internal/domain"
	"github.com/helixir/book-catalog-service/internal/observability"
	"github.com/helixir/book-catalog-service/internal/service"
)

// Catalog is the service surface the HTTP layer depends on.
type Catalog interface {
	SearchBooks(ctx context.Context, term string, page domain.Page) ([]*domain.Book, int64, error)
	ListChapters(ctx context.Context, bookID uuid.UUID, page domain.Page) ([]*domain.Chapter, int64, error)
	GetChapter(ctx context.Context, id uuid.UUID) (*domain.Chapter, error)
	CreateBook(ctx context.Context, in domain.CreateBookInput) (*domain.Book, error)
	CreateChapter(ctx context.Context, in domain.CreateChapterInput) (*domain.Chapter, error)
	GetImage(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

// Compile-time interface verification.
var _ Catalog = (*service.CatalogService)(nil)

// Server is the HTTP REST API server.
type Server struct {
	router         chi.Router
	httpServer     *http.Server
	catalog        Catalog
	db             *database.DB
	metrics        *observability.Metrics
	logger         zerolog.Logger
	authMiddleware func(http.Handler) http.Handler
	uploadLimiter  *rate.Limiter
	metricsPath    string
	maxBodyBytes   int64
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// UploadRatePerSecond and UploadRateBurst bound the token bucket
	// applied to mutation routes. A zero rate disables limiting.
	UploadRatePerSecond float64
	UploadRateBurst     int

	// MetricsPath exposes the Prometheus handler when non-empty.
	MetricsPath string

	// MaxUploadBytes is the decoded-payload ceiling enforced by the
	// service layer; the HTTP body cap is derived from it so that a
	// base64-encoded payload of exactly this size still fits.
	MaxUploadBytes int64
}

// NewServer creates a new HTTP server with all dependencies. metrics and
// authMiddleware may be nil; a nil authMiddleware leaves mutation routes
// open, which is only acceptable in tests.
func NewServer(
	cfg Config,
	catalog Catalog,
	db *database.DB,
	metrics *observability.Metrics,
	logger zerolog.Logger,
	authMiddleware func(http.Handler) http.Handler,
) *Server {
	s := &Server{
		catalog:        catalog,
		db:             db,
		metrics:        metrics,
		logger:         logger.With().Str("component", "http-server").Logger(),
		authMiddleware: authMiddleware,
		metricsPath:    cfg.MetricsPath,
		maxBodyBytes:   maxBodyBytes(cfg.MaxUploadBytes),
	}

	if cfg.UploadRatePerSecond > 0 {
		s.uploadLimiter = rate.NewLimiter(rate.Limit(cfg.UploadRatePerSecond), cfg.UploadRateBurst)
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Router returns the underlying handler, for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.requestMetrics)

	// Health endpoints (no auth)
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	if s.metricsPath != "" {
		r.Method(http.MethodGet, s.metricsPath, promhttp.Handler())
	}

	// Public read routes
	r.Get("/search-book", s.searchBooks)
	r.Get("/chapters", s.listChapters)
	r.Get("/chapter", s.getChapter)
	r.Get("/images/{imageID}", s.getImage)

	// Mutation routes with auth + rate limiting
	r.Group(func(r chi.Router) {
		if s.authMiddleware != nil {
			r.Use(s.authMiddleware)
		}
		r.Use(s.rateLimit)

		r.Post("/upload-book", s.uploadBook)
		r.Post("/upload-chapter", s.uploadChapter)
	})

	return r
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
	health := s.db.Health(r.Context())
	if health.Status == "healthy" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler returns readiness status.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
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
