// Package httpapi serves read-only scorebook views over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"uno-score-bot/internal/metrics"
	"uno-score-bot/internal/model"
	"uno-score-bot/internal/service"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server exposes ranking views and metrics.
type Server struct {
	ranking *service.RankingService
	metrics *metrics.Recorder
	checks  []HealthChecker
}

// NewServer creates a new Server. rec may be nil, which disables /metrics. /healthz
// answers 503 while any of checks fails.
func NewServer(ranking *service.RankingService, rec *metrics.Recorder, checks ...HealthChecker) *Server {
	return &Server{ranking: ranking, metrics: rec, checks: checks}
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.getHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/books/{bookID}", func(r chi.Router) {
		r.Get("/recent", s.getRecent)
		r.Route("/years/{year}", func(r chi.Router) {
			r.Get("/ranking", s.getYearlyRanking)
			r.Get("/daily", s.getDailyRanking)
			r.Get("/summary", s.getSummary)
			r.Get("/table", s.getTable)
			r.Get("/winloss", s.getWinLoss)
			r.Get("/series", s.getSeries)
		})
	})
	return r
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	for _, c := range s.checks {
		if err := c.HealthCheck(ctx); err != nil {
			log.Warn().Err(err).Msg("Health check failed")
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func bookParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "bookID"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid book id")
	}
	return id, nil
}

func yearParam(r *http.Request) (int, error) {
	y, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || y < 1 || y > 9999 {
		return 0, fmt.Errorf("invalid year")
	}
	return y, nil
}

func dateQuery(r *http.Request) (*model.Date, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date")
	}
	return &d, nil
}

// writeView encodes v as JSON with the book version as ETag; a matching If-None-Match
// gets 304.
func writeView(w http.ResponseWriter, r *http.Request, version uint64, v any) {
	etag := fmt.Sprintf(`"v%d"`, version)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func badRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func serverError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("Failed to build view")
	http.Error(w, "failed to load scorebook", http.StatusInternalServerError)
}

// bookYear reads both path parameters, answering 400 on failure.
func bookYear(w http.ResponseWriter, r *http.Request) (int64, int, bool) {
	id, err := bookParam(r)
	if err != nil {
		badRequest(w, err)
		return 0, 0, false
	}
	year, err := yearParam(r)
	if err != nil {
		badRequest(w, err)
		return 0, 0, false
	}
	return id, year, true
}

func (s *Server) getRecent(w http.ResponseWriter, r *http.Request) {
	id, err := bookParam(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	n := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err = strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(w, fmt.Errorf("invalid n"))
			return
		}
	}
	v, err := s.ranking.Recent(r.Context(), id, n)
	if err != nil {
		serverError(w, err)
		return
	}
	writeView(w, r, v.Version, v)
}

func (s *Server) getYearlyRanking(w http.ResponseWriter, r *http.Request) {
	id, year, ok := bookYear(w, r)
	if !ok {
		return
	}
	v, err := s.ranking.YearlyRanking(r.Context(), id, year)
	if err != nil {
		serverError(w, err)
		return
	}
	writeView(w, r, v.Version, v)
}

// getDailyRanking ranks ?date=, or the latest scored day of the year when absent.
func (s *Server) getDailyRanking(w http.ResponseWriter, r *http.Request) {
	id, year, ok := bookYear(w, r)
	if !ok {
		return
	}
	day, err := dateQuery(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	v, err := s.ranking.DailyRanking(r.Context(), id, year, day)
	if err != nil {
		serverError(w, err)
		return
	}
	writeView(w, r, v.Version, v)
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	id, year, ok := bookYear(w, r)
	if !ok {
		return
	}
	v, err := s.ranking.Summary(r.Context(), id, year)
	if err != nil {
		serverError(w, err)
		return
	}
	writeView(w, r, v.Version, v)
}

func (s *Server) getTable(w http.ResponseWriter, r *http.Request) {
	id, year, ok := bookYear(w, r)
	if !ok {
		return
	}
	v, err := s.ranking.YearReport(r.Context(), id, year)
	if err != nil {
		serverError(w, err)
		return
	}
	writeView(w, r, v.Version, v)
}

func (s *Server) getWinLoss(w http.ResponseWriter, r *http.Request) {
	id, year, ok := bookYear(w, r)
	if !ok {
		return
	}
	day, err := dateQuery(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	v, err := s.ranking.WinLoss(r.Context(), id, year, day)
	if err != nil {
		serverError(w, err)
		return
	}
	writeView(w, r, v.Version, v)
}

func (s *Server) getSeries(w http.ResponseWriter, r *http.Request) {
	id, year, ok := bookYear(w, r)
	if !ok {
		return
	}
	v, err := s.ranking.Series(r.Context(), id, year)
	if err != nil {
		serverError(w, err)
		return
	}
	writeView(w, r, v.Version, v)
}
