package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// OllamaEmbedder implements Embedder using the Ollama /api/embed endpoint.
// It is safe for concurrent use. No API key is required; Ollama runs
// locally. Server errors (e.g. while a model is still loading) are retried
// with exponential backoff.
type OllamaEmbedder struct {
	// host is the Ollama server base URL (e.g. "http://localhost:11434").
	host string
	// model is the embedding model name (e.g. "nomic-embed-text").
	model string
	// maxRetryTime bounds the total backoff window per Embed call.
	maxRetryTime time.Duration
	// limiter is the client-side request throttle, nil when unlimited.
	limiter *rate.Limiter
	// client is the shared HTTP client with a sensible timeout.
	client *http.Client
}

// OllamaConfig holds the settings for constructing an OllamaEmbedder.
type OllamaConfig struct {
	// Host is the Ollama server base URL (e.g. "http://localhost:11434").
	Host string
	// Model is the embedding model name (e.g. "nomic-embed-text").
	Model string
	// RateLimit caps requests per second client-side (0 = unlimited).
	RateLimit int
	// MaxRetryTime bounds the total backoff window per Embed call
	// (0 = DefaultMaxRetryTime).
	MaxRetryTime time.Duration
}

// NewOllamaEmbedder constructs an OllamaEmbedder from the given config.
func NewOllamaEmbedder(cfg *OllamaConfig) *OllamaEmbedder {
	maxRetry := cfg.MaxRetryTime
	if maxRetry <= 0 {
		maxRetry = DefaultMaxRetryTime
	}
	return &OllamaEmbedder{
		host:         cfg.Host,
		model:        cfg.Model,
		maxRetryTime: maxRetry,
		limiter:      newLimiter(cfg.RateLimit),
		client:       &http.Client{Timeout: 60 * time.Second},
	}
}

// ollamaEmbedRequest is the JSON body sent to the Ollama /api/embed endpoint.
type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// ollamaEmbedResponse is the JSON body returned from the Ollama /api/embed endpoint.
type ollamaEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// Embed converts a batch of texts into their corresponding embeddings.
// The returned slice is parallel to the input slice.
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body := ollamaEmbedRequest{
		Model: e.model,
		Input: texts,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ollama embedder: marshal request: %w", err)
	}

	url := e.host + "/api/embed"

	var embeddings [][]float32
	operation := func() error {
		if err := throttle(ctx, e.limiter); err != nil {
			return backoff.Permanent(fmt.Errorf("ollama embedder: rate limiter: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("ollama embedder: create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.client.Do(req)
		if err != nil {
			return fmt.Errorf("ollama embedder: request failed: %w", err)
		}
		defer resp.Body.Close()

		var result ollamaEmbedResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&result)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
			if decodeErr == nil && result.Error != "" {
				msg = result.Error
			}
			err := fmt.Errorf("ollama embedder: %s", msg)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return err
			}
			return backoff.Permanent(err)
		}
		if decodeErr != nil {
			return backoff.Permanent(fmt.Errorf("ollama embedder: decode response: %w", decodeErr))
		}

		if len(result.Embeddings) != len(texts) {
			return backoff.Permanent(fmt.Errorf("ollama embedder: expected %d embeddings, got %d", len(texts), len(result.Embeddings)))
		}

		embeddings = result.Embeddings
		return nil
	}

	if err := withRetry(ctx, e.maxRetryTime, operation); err != nil {
		return nil, err
	}
	return embeddings, nil
}
