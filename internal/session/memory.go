package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. History disappears when the process
// exits; suitable for single-instance deployments and tests.
type MemoryStore struct {
	mu           sync.RWMutex
	maxExchanges int
	sessions     map[string][]Exchange
}

// NewMemoryStore constructs a MemoryStore with the given window size.
// maxExchanges <= 0 falls back to DefaultMaxExchanges.
func NewMemoryStore(maxExchanges int) *MemoryStore {
	if maxExchanges <= 0 {
		maxExchanges = DefaultMaxExchanges
	}
	return &MemoryStore{
		maxExchanges: maxExchanges,
		sessions:     make(map[string][]Exchange),
	}
}

// Create allocates a new session id.
func (s *MemoryStore) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = nil
	s.mu.Unlock()
	return id, nil
}

// History returns the formatted exchange history, "" for unknown sessions.
func (s *MemoryStore) History(ctx context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return formatHistory(s.sessions[id]), nil
}

// Append records one exchange and evicts the oldest beyond the window.
func (s *MemoryStore) Append(ctx context.Context, id, userText, assistantText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exchanges := append(s.sessions[id], Exchange{User: userText, Assistant: assistantText})
	if len(exchanges) > s.maxExchanges {
		exchanges = exchanges[len(exchanges)-s.maxExchanges:]
	}
	s.sessions[id] = exchanges
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
