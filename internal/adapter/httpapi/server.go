// Package httpapi exposes the query API over the store plus the usual
// health, readiness, and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/geowatch/osint-monitor/internal/domain"
	"github.com/geowatch/osint-monitor/internal/store"
)

// Default page sizes when no limit is given. The event feed drives a map
// and wants more headroom than the tweet ticker.
const (
	defaultEventLimit = 500
	defaultTweetLimit = 200
)

// Refresher triggers an immediate ingestion cycle outside the schedule.
type Refresher interface {
	RefreshAll(ctx context.Context)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	Ping(ctx context.Context) error
}

// Server exposes the query API.
type Server struct {
	httpServer *http.Server
	store      *store.Store
	refresher  Refresher
	accounts   []string
	logger     *slog.Logger
}

// NewServer creates the API server. refresher may be nil, in which case
// POST /api/refresh returns 503.
func NewServer(addr string, st *store.Store, refresher Refresher, accounts []string, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:     st,
		refresher: refresher,
		accounts:  accounts,
		logger:    logger,
	}

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/events", s.handleNamespace(store.NamespaceEvents, defaultEventLimit))
	mux.HandleFunc("GET /api/tweets", s.handleNamespace(store.NamespaceTweets, defaultTweetLimit))
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/accounts", s.handleAccounts)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleNamespace(namespace string, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r, defaultLimit)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		items, err := s.store.Query(r.Context(), namespace, filter)
		if err != nil {
			s.logger.Error("query failed",
				slog.String("namespace", namespace),
				slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"count": len(items),
			"items": items,
		})
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "stats failed"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleAccounts(w http.ResponseWriter, _ *http.Request) {
	accounts := s.accounts
	if accounts == nil {
		accounts = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "refresh unavailable"})
		return
	}
	// Fire and return; the cycle writes to the store as it would on
	// schedule.
	go s.refresher.RefreshAll(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh started"})
}

// parseFilter builds a store filter from query parameters. Unknown parameter
// values are rejected rather than silently ignored.
func parseFilter(r *http.Request, defaultLimit int) (store.Filter, error) {
	q := r.URL.Query()
	f := store.Filter{Limit: defaultLimit}

	if v := q.Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return store.Filter{}, fmt.Errorf("invalid window %q", v)
		}
		f.Since = domain.Now().Add(-d)
	}
	if v := q.Get("min_severity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 5 {
			return store.Filter{}, fmt.Errorf("invalid min_severity %q", v)
		}
		f.MinSeverity = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return store.Filter{}, fmt.Errorf("invalid limit %q", v)
		}
		f.Limit = n
	}
	if v := q.Get("breaking"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return store.Filter{}, fmt.Errorf("invalid breaking %q", v)
		}
		f.BreakingOnly = b
	}
	if v := q.Get("geo_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return store.Filter{}, fmt.Errorf("invalid geo_only %q", v)
		}
		f.GeoOnly = b
	}
	if v := q.Get("source_type"); v != "" {
		switch st := domain.SourceType(v); st {
		case domain.SourceRSS, domain.SourceGDELT, domain.SourceTwitterAPI, domain.SourceNitter:
			f.SourceType = st
		default:
			return store.Filter{}, fmt.Errorf("invalid source_type %q", v)
		}
	}
	f.Category = q.Get("category")
	f.Topic = q.Get("topic")
	f.Source = q.Get("source")
	f.Account = q.Get("account")
	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
