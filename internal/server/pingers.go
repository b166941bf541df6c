package server

import (
	"context"
	"fmt"

	"github.com/lectern-ai/lectern-go/internal/provider"
)

// LLMPinger probes a chat model backend using the provider's zero-token
// health check. It satisfies the Pinger interface and is used by
// GET /api/ready.
type LLMPinger struct {
	healthCheck provider.HealthCheckConfig
	// name identifies the backend in readiness responses (e.g. "openai").
	name string
}

// NewLLMPinger constructs an LLMPinger for the given health check and
// backend name.
func NewLLMPinger(hc provider.HealthCheckConfig, name string) *LLMPinger {
	return &LLMPinger{healthCheck: hc, name: name}
}

// Name returns the backend label used in readiness responses.
func (p *LLMPinger) Name() string { return p.name }

// Ping probes the chat backend for reachability.
func (p *LLMPinger) Ping(ctx context.Context) error {
	if err := p.healthCheck.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// SessionPinger probes a session backend that exposes its own Ping method
// (the Redis store does; the memory and SQLite stores need no probe). The
// Qdrant index satisfies Pinger on its own and is registered directly.
type SessionPinger struct {
	store interface{ Ping(context.Context) error }
	name  string
}

// NewSessionPinger constructs a SessionPinger for the given store.
func NewSessionPinger(store interface{ Ping(context.Context) error }, name string) *SessionPinger {
	return &SessionPinger{store: store, name: name}
}

// Name returns the dependency label used in readiness responses.
func (p *SessionPinger) Name() string { return p.name }

// Ping delegates to the store's own reachability probe.
func (p *SessionPinger) Ping(ctx context.Context) error {
	if err := p.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}
