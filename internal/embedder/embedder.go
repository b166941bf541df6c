// Package embedder provides implementations of the Embedder interface for
// converting text into dense vector embeddings. Each implementation talks to
// a different backend (OpenAI, Azure OpenAI, Ollama) via plain HTTP with
// shared retry and rate-limit plumbing.
package embedder

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Embedder converts a batch of texts into dense vector embeddings. The
// returned slice is parallel to the input slice. Implementations are safe
// for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// DefaultMaxRetryTime bounds how long a single Embed call keeps retrying
// transient failures before giving up.
const DefaultMaxRetryTime = time.Minute

// withRetry runs op with exponential backoff until it succeeds, fails with
// backoff.Permanent, or maxElapsed passes. Implementations mark rate limits
// (HTTP 429), server errors (5xx), and transport failures retryable;
// everything else permanent.
func withRetry(ctx context.Context, maxElapsed time.Duration, op backoff.Operation) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = maxElapsed
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}

// newLimiter builds a client-side throttle from a requests-per-second rate.
// Zero or negative means unlimited (nil limiter, waits become no-ops).
func newLimiter(perSecond int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// throttle blocks until the limiter admits one request. A nil limiter admits
// immediately.
func throttle(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}
