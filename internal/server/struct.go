package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lectern-ai/lectern-go/internal/assistant"
	"github.com/lectern-ai/lectern-go/internal/tools"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8000).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response. It must
	// cover a full model round trip (default: 2m).
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// MetricsRegistry receives the server's own metrics. A private registry
	// is used when nil.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs GET /metrics. Callers normally pass the same
	// registry as MetricsRegistry so assistant and server metrics are
	// exposed together.
	MetricsGatherer prometheus.Gatherer
}

// querier is the surface the handlers call. *assistant.Assistant satisfies
// it; tests inject a fake.
type querier interface {
	// Query answers one question, threading session history.
	Query(ctx context.Context, query, sessionID string) (string, []tools.Source, string, error)

	// Analytics returns the indexed course count and titles.
	Analytics(ctx context.Context) (*assistant.CourseAnalytics, error)
}

// Server is the HTTP server that exposes the assistant as a JSON API.
type Server struct {
	// assistant handles all queries and analytics.
	assistant querier
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
}

// queryRequest is the JSON body for POST /api/query.
type queryRequest struct {
	// Query is the user's question.
	Query string `json:"query"`
	// SessionID continues an existing conversation. Empty starts a new one.
	SessionID string `json:"session_id,omitempty"`
}

// queryResponse is the JSON response for POST /api/query.
type queryResponse struct {
	// Answer is the assistant's final answer text.
	Answer string `json:"answer"`
	// Sources lists the course material consulted, in consultation order.
	Sources []tools.Source `json:"sources"`
	// SessionID identifies the conversation for the next turn.
	SessionID string `json:"session_id"`
}

// errorResponse is the JSON error body used by every handler.
type errorResponse struct {
	// Detail is the human-readable failure reason.
	Detail string `json:"detail"`
}
