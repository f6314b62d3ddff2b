// Package preview serves the rendered site locally, backing the search box
// with the build's Bleve index and recording engagement events into the
// analytics counters.
package preview

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/blueroomhub/blueroom-builder/internal/analytics"
	"github.com/blueroomhub/blueroom-builder/internal/config"
	"github.com/blueroomhub/blueroom-builder/internal/http/response"
	"github.com/blueroomhub/blueroom-builder/internal/ratelimit"
	"github.com/blueroomhub/blueroom-builder/internal/search"
)

// Event endpoint limits per client IP. Generous for a local preview but
// enough to stop a looping script from flooding the counters.
const (
	eventRPS   = 5
	eventBurst = 20
)

// Server serves the output directory plus the preview API.
type Server struct {
	outputDir string
	index     *search.Index
	counters  *analytics.Store
	limiter   *ratelimit.KeyedRateLimiter
	router    *chi.Mux
	logger    *slog.Logger
}

// NewServer creates a preview server. Index and counters are optional; their
// endpoints return 404 / 204 respectively when absent.
func NewServer(outputDir string, index *search.Index, counters *analytics.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		outputDir: outputDir,
		index:     index,
		counters:  counters,
		limiter:   ratelimit.New(eventRPS, eventBurst),
		router:    chi.NewRouter(),
		logger:    logger,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/api/search", s.handleSearch)
	s.router.Group(func(r chi.Router) {
		r.Use(s.limitEvents)
		r.Post("/api/events/pageview/{slug}", s.handlePageView)
		r.Post("/api/events/guide-click/{slug}", s.handleGuideClick)
	})
	s.router.Handle("/*", http.FileServer(http.Dir(outputDir)))

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe runs the server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.PreviewConfig) error {
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", srv.Addr, "output", s.outputDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]any{
		"status":        "ok",
		"search":        s.index != nil,
		"analytics":     s.counters != nil,
		"output_served": s.outputDir,
	}, s.logger)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		response.NotFound(w, "search index not available", s.logger)
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		response.BadRequest(w, "q is required", s.logger)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	result, err := s.index.Search(search.SearchParams{
		Query:      q,
		Type:       search.DocType(r.URL.Query().Get("type")),
		Difficulty: r.URL.Query().Get("difficulty"),
		Limit:      limit,
	})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, result, s.logger)
}

func (s *Server) handlePageView(w http.ResponseWriter, r *http.Request) {
	s.recordEvent(w, chi.URLParam(r, "slug"), func(slug string) error {
		return s.counters.RecordPageView(slug)
	})
}

func (s *Server) handleGuideClick(w http.ResponseWriter, r *http.Request) {
	s.recordEvent(w, chi.URLParam(r, "slug"), func(slug string) error {
		return s.counters.RecordGuideClick(slug)
	})
}

// limitEvents rate-limits event recording per client IP.
func (s *Server) limitEvents(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(r.RemoteAddr) {
			response.Error(w, http.StatusTooManyRequests, "slow down", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) recordEvent(w http.ResponseWriter, slug string, record func(string) error) {
	if s.counters == nil {
		response.NoContent(w)
		return
	}
	if err := record(slug); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}
