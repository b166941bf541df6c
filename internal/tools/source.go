// Package tools defines the course-material tools the model can invoke
// during a conversation and the registry that routes calls to them by name.
// Each tool satisfies both this package's interface and Eino's tool contract
// so they can be bound directly to a tool-calling chat model.
package tools

import (
	"context"
	"sync"
)

// Source identifies where a piece of answer content came from. Sources are
// collected while tools run and returned to the caller alongside the final
// answer.
type Source struct {
	// Text is the display label, "<Course Title> - Lesson <n>", or the bare
	// course title for document-level content.
	Text string `json:"text"`

	// Link is the lesson or course URL, empty when the source document
	// carried none.
	Link string `json:"link,omitempty"`
}

// Turn accumulates the sources recorded by tool executions within a single
// conversation turn. Every turn gets a fresh accumulator and discards it when
// the turn ends, so concurrent conversations never see each other's sources
// and stale sources cannot leak into a later response.
type Turn struct {
	mu      sync.Mutex
	sources []Source
}

// NewTurn returns an empty source accumulator for one conversation turn.
func NewTurn() *Turn {
	return &Turn{}
}

// AddSource records one source. Safe for concurrent use; a nil receiver
// drops the record so tools can run outside a managed turn.
func (t *Turn) AddSource(s Source) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sources = append(t.sources, s)
}

// Sources returns a copy of the sources recorded so far, in execution order.
func (t *Turn) Sources() []Source {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Source, len(t.sources))
	copy(out, t.sources)
	return out
}

type turnContextKey struct{}

// WithTurn returns a context carrying the turn accumulator. The registry
// installs it before invoking a tool; tools read it back with
// TurnFromContext.
func WithTurn(ctx context.Context, turn *Turn) context.Context {
	return context.WithValue(ctx, turnContextKey{}, turn)
}

// TurnFromContext extracts the current turn accumulator, nil when absent.
// The nil result is safe to record into.
func TurnFromContext(ctx context.Context) *Turn {
	turn, _ := ctx.Value(turnContextKey{}).(*Turn)
	return turn
}
