package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func openaiSuccessBody(vectors [][]float32) string {
	type datum struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	}
	var data []datum
	for i, v := range vectors {
		data = append(data, datum{Embedding: v, Index: i})
	}
	b, _ := json.Marshal(map[string]any{"data": data})
	return string(b)
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path: got %q, want /embeddings", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization: got %q", got)
		}
		var req openaiEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Input) != 2 {
			t.Errorf("input length: got %d, want 2", len(req.Input))
		}
		if req.Dimensions != 8 {
			t.Errorf("dimensions: got %d, want 8", req.Dimensions)
		}
		// Return data out of order to exercise index-based reassembly.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"embedding":[0.3,0.4],"index":1},{"embedding":[0.1,0.2],"index":0}]}`))
	}))
	defer srv.Close()

	emb := NewOpenAIEmbedder(&OpenAIConfig{
		BaseURL:    srv.URL,
		APIKey:     "sk-test",
		Model:      "text-embedding-3-small",
		Dimensions: 8,
	})

	got, err := emb.Embed(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(got))
	}
	if got[0][0] != 0.1 || got[1][0] != 0.3 {
		t.Errorf("embeddings not reordered by index: %v", got)
	}
}

func TestOpenAIEmbedder_AzureMode(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/deployments/my-deploy/embeddings") {
			t.Errorf("path: got %q, want azure deployment path", r.URL.Path)
		}
		if got := r.URL.Query().Get("api-version"); got != "2025-04-01-preview" {
			t.Errorf("api-version: got %q", got)
		}
		if got := r.Header.Get("api-key"); got != "az-key" {
			t.Errorf("api-key header: got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization header set in azure mode: %q", got)
		}
		w.Write([]byte(openaiSuccessBody([][]float32{{1}})))
	}))
	defer srv.Close()

	emb := NewOpenAIEmbedder(&OpenAIConfig{
		BaseURL:    srv.URL,
		APIKey:     "az-key",
		Model:      "my-deploy",
		Azure:      true,
		APIVersion: "2025-04-01-preview",
	})

	if _, err := emb.Embed(context.Background(), []string{"x"}); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
}

func TestOpenAIEmbedder_RetriesRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"rate limited"}}`))
			return
		}
		w.Write([]byte(openaiSuccessBody([][]float32{{0.5}})))
	}))
	defer srv.Close()

	emb := NewOpenAIEmbedder(&OpenAIConfig{
		BaseURL:      srv.URL,
		APIKey:       "sk-test",
		Model:        "text-embedding-3-small",
		MaxRetryTime: 5 * time.Second,
	})

	got, err := emb.Embed(context.Background(), []string{"x"})
	if err != nil {
		t.Fatalf("Embed() error = %v, want success after retry", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls: got %d, want 2 (429 then 200)", calls.Load())
	}
	if len(got) != 1 || got[0][0] != 0.5 {
		t.Errorf("embeddings: got %v", got)
	}
}

func TestOpenAIEmbedder_ClientErrorIsPermanent(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"invalid model"}}`))
	}))
	defer srv.Close()

	emb := NewOpenAIEmbedder(&OpenAIConfig{
		BaseURL:      srv.URL,
		APIKey:       "sk-test",
		Model:        "bogus",
		MaxRetryTime: 5 * time.Second,
	})

	_, err := emb.Embed(context.Background(), []string{"x"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "invalid model") {
		t.Errorf("error = %v, want the API message", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls: got %d, want 1 (4xx must not retry)", calls.Load())
	}
}

func TestOpenAIEmbedder_CountMismatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(openaiSuccessBody([][]float32{{1}})))
	}))
	defer srv.Close()

	emb := NewOpenAIEmbedder(&OpenAIConfig{
		BaseURL: srv.URL,
		APIKey:  "sk-test",
		Model:   "text-embedding-3-small",
	})

	_, err := emb.Embed(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatal("expected count mismatch error, got nil")
	}
	if !strings.Contains(err.Error(), "expected 2 embeddings, got 1") {
		t.Errorf("error = %v", err)
	}
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path: got %q, want /api/embed", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("model: got %q", req.Model)
		}
		w.Write([]byte(`{"embeddings":[[0.1,0.2],[0.3,0.4]]}`))
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(&OllamaConfig{Host: srv.URL, Model: "nomic-embed-text"})

	got, err := emb.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(got) != 2 || got[1][1] != 0.4 {
		t.Errorf("embeddings: got %v", got)
	}
}

func TestOllamaEmbedder_RetriesServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"model is loading"}`))
			return
		}
		w.Write([]byte(`{"embeddings":[[1.0]]}`))
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(&OllamaConfig{
		Host:         srv.URL,
		Model:        "nomic-embed-text",
		MaxRetryTime: 5 * time.Second,
	})

	if _, err := emb.Embed(context.Background(), []string{"x"}); err != nil {
		t.Fatalf("Embed() error = %v, want success after retry", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls: got %d, want 2 (500 then 200)", calls.Load())
	}
}
