// Package server implements the HTTP server that exposes the assistant via a
// JSON REST API: query answering, course analytics, health and readiness
// probes, and Prometheus metrics. The server is started by the
// `lectern serve` CLI command.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lectern-ai/lectern-go/internal/assistant"
	"github.com/lectern-ai/lectern-go/internal/logging"
	"github.com/lectern-ai/lectern-go/internal/tools"
)

// New constructs a Server from the provided assistant and config.
func New(core *assistant.Assistant, cfg *Config) (*Server, error) {
	if core == nil {
		return nil, fmt.Errorf("server: assistant must not be nil")
	}
	return newServer(core, cfg)
}

// newServer is the querier-typed constructor shared with tests.
func newServer(core querier, cfg *Config) (*Server, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// WriteTimeout must cover a full tool round plus the final model call.
		cfg.WriteTimeout = 2 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MetricsRegistry == nil {
		reg := prometheus.NewRegistry()
		cfg.MetricsRegistry = reg
		if cfg.MetricsGatherer == nil {
			cfg.MetricsGatherer = reg
		}
	}
	if cfg.MetricsGatherer == nil {
		cfg.MetricsGatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		assistant: core,
		cfg:       cfg,
		log:       cfg.Logger,
		pingers:   cfg.Pingers,
		metrics:   newServerMetrics(cfg.MetricsRegistry),
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/query", s.instrument("query", http.HandlerFunc(s.handleQuery)))
	mux.Handle("GET /api/courses", s.instrument("courses", http.HandlerFunc(s.handleCourses)))
	mux.Handle("GET /api/health", s.instrument("health", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /api/ready", s.instrument("ready", http.HandlerFunc(s.handleReady)))
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(cfg.Logger, corsMiddleware(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server listening", slog.String("addr", "http://"+s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleQuery handles POST /api/query. It answers one question and returns
// the answer, the sources consulted, and the session id for the next turn.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	s.metrics.queryActive.Inc()
	start := time.Now()
	answer, sources, sessionID, err := s.assistant.Query(r.Context(), req.Query, req.SessionID)
	elapsed := time.Since(start)
	s.metrics.queryActive.Dec()

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.queryRequestsTotal.WithLabelValues(outcome).Inc()
	s.metrics.queryDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())

	if err != nil {
		log.Error("query failed", slog.Any("error", err))
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if sources == nil {
		sources = []tools.Source{}
	}
	s.writeJSON(w, http.StatusOK, queryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	})
}

// handleCourses handles GET /api/courses with corpus analytics.
func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	analytics, err := s.assistant.Analytics(r.Context())
	if err != nil {
		log.Error("course analytics failed", slog.Any("error", err))
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if analytics.CourseTitles == nil {
		analytics.CourseTitles = []string{}
	}
	s.writeJSON(w, http.StatusOK, analytics)
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes v as the JSON response body with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("response encode error", slog.Any("error", err))
	}
}

// writeError writes the uniform JSON error body.
func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, errorResponse{Detail: detail})
}
