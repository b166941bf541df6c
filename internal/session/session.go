// Package session persists per-conversation exchange history behind a
// sliding window measured in exchange pairs, not tokens. Three backends are
// provided: in-memory for single-process use and tests, SQLite for
// persistence across restarts, and Redis for multi-instance deployments.
package session

import (
	"context"
	"fmt"
	"strings"
)

// DefaultMaxExchanges is the sliding-window size used when the caller does
// not configure one: the two most recent user/assistant pairs.
const DefaultMaxExchanges = 2

// Exchange is one completed user/assistant pair.
type Exchange struct {
	// User is the user's message text.
	User string `json:"user"`
	// Assistant is the assistant's answer text.
	Assistant string `json:"assistant"`
}

// Store persists conversation history keyed by session id. Implementations
// must be safe for concurrent use and enforce the sliding window on Append.
type Store interface {
	// Create allocates a new session id.
	Create(ctx context.Context) (string, error)

	// History returns the session's prompt-ready history, oldest exchange
	// first. Unknown ids return "" rather than an error: they are fresh
	// sessions.
	History(ctx context.Context, id string) (string, error)

	// Append records one completed exchange, evicting the oldest beyond the
	// window. Appending to an unknown id creates the session implicitly.
	Append(ctx context.Context, id, userText, assistantText string) error

	// Close releases any resources held by the store.
	Close() error
}

// formatHistory renders exchanges for injection into the system prompt:
// "User: <q>\nAssistant: <a>" per exchange, joined by newlines.
func formatHistory(exchanges []Exchange) string {
	if len(exchanges) == 0 {
		return ""
	}
	parts := make([]string, 0, len(exchanges))
	for _, e := range exchanges {
		parts = append(parts, fmt.Sprintf("User: %s\nAssistant: %s", e.User, e.Assistant))
	}
	return strings.Join(parts, "\n")
}
