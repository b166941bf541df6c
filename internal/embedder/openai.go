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

// OpenAIEmbedder implements Embedder using the OpenAI (or Azure OpenAI)
// embeddings REST API. It is safe for concurrent use. Rate-limit responses
// and server errors are retried with exponential backoff.
type OpenAIEmbedder struct {
	// baseURL is the API base (e.g. "https://api.openai.com/v1" or an Azure endpoint).
	baseURL string
	// apiKey is the Bearer token (OpenAI) or api-key header value (Azure).
	apiKey string
	// model is the embedding model name (e.g. "text-embedding-3-small").
	model string
	// dimensions is the desired embedding vector length (0 = model default).
	dimensions int
	// azure selects Azure-style auth (api-key header) over Bearer token.
	azure bool
	// apiVersion is the Azure OpenAI API version query param (ignored for OpenAI).
	apiVersion string
	// maxRetryTime bounds the total backoff window per Embed call.
	maxRetryTime time.Duration
	// limiter is the client-side request throttle, nil when unlimited.
	limiter *rate.Limiter
	// client is the shared HTTP client with a sensible timeout.
	client *http.Client
}

// OpenAIConfig holds the settings for constructing an OpenAIEmbedder.
type OpenAIConfig struct {
	// BaseURL is the API base URL. For OpenAI: "https://api.openai.com/v1".
	// For Azure: "https://<resource>.openai.azure.com/openai".
	BaseURL string
	// APIKey is the authentication key.
	APIKey string
	// Model is the embedding model name (e.g. "text-embedding-3-small").
	Model string
	// Dimensions is the desired vector length (0 = model default).
	Dimensions int
	// Azure enables Azure OpenAI mode (api-key header + api-version param).
	Azure bool
	// APIVersion is the Azure OpenAI API version (e.g. "2025-04-01-preview").
	// Ignored when Azure is false.
	APIVersion string
	// RateLimit caps requests per second client-side (0 = unlimited).
	RateLimit int
	// MaxRetryTime bounds the total backoff window per Embed call
	// (0 = DefaultMaxRetryTime).
	MaxRetryTime time.Duration
}

// NewOpenAIEmbedder constructs an OpenAIEmbedder from the given config.
func NewOpenAIEmbedder(cfg *OpenAIConfig) *OpenAIEmbedder {
	maxRetry := cfg.MaxRetryTime
	if maxRetry <= 0 {
		maxRetry = DefaultMaxRetryTime
	}
	return &OpenAIEmbedder{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		dimensions:   cfg.Dimensions,
		azure:        cfg.Azure,
		apiVersion:   cfg.APIVersion,
		maxRetryTime: maxRetry,
		limiter:      newLimiter(cfg.RateLimit),
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

// openaiEmbedRequest is the JSON body sent to the embeddings endpoint.
type openaiEmbedRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// openaiEmbedResponse is the JSON body returned from the embeddings endpoint.
type openaiEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Embed converts a batch of texts into their corresponding embeddings.
// The returned slice is parallel to the input slice.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	body := openaiEmbedRequest{
		Input: texts,
		Model: e.model,
	}
	if e.dimensions > 0 {
		body.Dimensions = e.dimensions
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("openai embedder: marshal request: %w", err)
	}

	url := e.baseURL + "/embeddings"
	if e.azure {
		url = e.baseURL + "/deployments/" + e.model + "/embeddings?api-version=" + e.apiVersion
	}

	var embeddings [][]float32
	operation := func() error {
		if err := throttle(ctx, e.limiter); err != nil {
			return backoff.Permanent(fmt.Errorf("openai embedder: rate limiter: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("openai embedder: create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		if e.azure {
			req.Header.Set("api-key", e.apiKey)
		} else {
			req.Header.Set("Authorization", "Bearer "+e.apiKey)
		}

		resp, err := e.client.Do(req)
		if err != nil {
			// Transport failures are worth a retry.
			return fmt.Errorf("openai embedder: request failed: %w", err)
		}
		defer resp.Body.Close()

		var result openaiEmbedResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&result)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
			if decodeErr == nil && result.Error != nil {
				msg = result.Error.Message
			}
			err := fmt.Errorf("openai embedder: %s", msg)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return err
			}
			return backoff.Permanent(err)
		}
		if decodeErr != nil {
			return backoff.Permanent(fmt.Errorf("openai embedder: decode response: %w", decodeErr))
		}

		if len(result.Data) != len(texts) {
			return backoff.Permanent(fmt.Errorf("openai embedder: expected %d embeddings, got %d", len(texts), len(result.Data)))
		}

		// The API may return data out of order; sort by index.
		embeddings = make([][]float32, len(texts))
		for _, d := range result.Data {
			if d.Index < 0 || d.Index >= len(texts) {
				return backoff.Permanent(fmt.Errorf("openai embedder: index %d out of range [0, %d)", d.Index, len(texts)))
			}
			embeddings[d.Index] = d.Embedding
		}
		return nil
	}

	if err := withRetry(ctx, e.maxRetryTime, operation); err != nil {
		return nil, err
	}
	return embeddings, nil
}
