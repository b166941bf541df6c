package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_NoFile(t *testing.T) {
	t.Parallel()

	log := slog.Default()
	path, err := Load("/nonexistent/path/config.yaml", log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
model:
  provider: azure
  max_tokens: 800
  temperature: 0.2
  azure:
    endpoint: https://my-resource.openai.azure.com
    deployment: gpt-4o
    api_version: "2025-04-01-preview"
embedding:
  provider: ollama
  model: nomic-embed-text
  rate_limit: 5
index:
  backend: qdrant
  catalog_collection: course_catalog
  content_collection: course_content
  qdrant:
    host: qdrant.internal
    port: 6334
chunking:
  size: 800
  overlap: 100
search:
  max_results: 5
sessions:
  backend: sqlite
  max_exchanges: 2
docs:
  dir: ./docs
logging:
  level: debug
  format: text
`)

	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Clear env vars that the YAML should set.
	envKeys := []string{
		"MODEL_PROVIDER", "MODEL_MAX_TOKENS", "MODEL_TEMPERATURE",
		"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT", "AZURE_OPENAI_API_VERSION",
		"EMBEDDING_PROVIDER", "EMBEDDING_MODEL", "EMBEDDING_RATE_LIMIT",
		"INDEX_BACKEND", "QDRANT_HOST", "QDRANT_PORT",
		"QDRANT_CATALOG_COLLECTION", "QDRANT_CONTENT_COLLECTION",
		"CHUNK_SIZE", "CHUNK_OVERLAP", "SEARCH_MAX_RESULTS",
		"SESSIONS_BACKEND", "SESSIONS_MAX_EXCHANGES", "DOCS_DIR",
		"LOG_LEVEL", "LOG_FORMAT",
	}
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	log := slog.Default()
	loaded, err := Load(cfgPath, log)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cfgPath {
		t.Errorf("loaded path: got %q, want %q", loaded, cfgPath)
	}

	checks := map[string]string{
		"MODEL_PROVIDER":            "azure",
		"MODEL_MAX_TOKENS":          "800",
		"MODEL_TEMPERATURE":         "0.2",
		"AZURE_OPENAI_ENDPOINT":     "https://my-resource.openai.azure.com",
		"AZURE_OPENAI_DEPLOYMENT":   "gpt-4o",
		"AZURE_OPENAI_API_VERSION":  "2025-04-01-preview",
		"EMBEDDING_PROVIDER":        "ollama",
		"EMBEDDING_MODEL":           "nomic-embed-text",
		"EMBEDDING_RATE_LIMIT":      "5",
		"INDEX_BACKEND":             "qdrant",
		"QDRANT_HOST":               "qdrant.internal",
		"QDRANT_PORT":               "6334",
		"QDRANT_CATALOG_COLLECTION": "course_catalog",
		"QDRANT_CONTENT_COLLECTION": "course_content",
		"CHUNK_SIZE":                "800",
		"CHUNK_OVERLAP":             "100",
		"SEARCH_MAX_RESULTS":        "5",
		"SESSIONS_BACKEND":          "sqlite",
		"SESSIONS_MAX_EXCHANGES":    "2",
		"DOCS_DIR":                  "./docs",
		"LOG_LEVEL":                 "debug",
		"LOG_FORMAT":                "text",
	}
	for k, want := range checks {
		got := os.Getenv(k)
		if got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
model:
  provider: ollama
`)
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	// Set env var BEFORE loading — it should NOT be overwritten.
	t.Setenv("MODEL_PROVIDER", "openai")

	log := slog.Default()
	if _, err := Load(cfgPath, log); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := os.Getenv("MODEL_PROVIDER"); got != "openai" {
		t.Errorf("MODEL_PROVIDER: expected env override %q, got %q", "openai", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(cfgPath, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	log := slog.Default()
	if _, err := Load(cfgPath, log); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestTunableDefaults(t *testing.T) {
	for _, k := range []string{"CHUNK_SIZE", "CHUNK_OVERLAP", "SEARCH_MAX_RESULTS", "SESSIONS_MAX_EXCHANGES"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	if got := ChunkSize(); got != DefaultChunkSize {
		t.Errorf("ChunkSize: got %d, want %d", got, DefaultChunkSize)
	}
	if got := ChunkOverlap(); got != DefaultChunkOverlap {
		t.Errorf("ChunkOverlap: got %d, want %d", got, DefaultChunkOverlap)
	}
	if got := MaxResults(); got != DefaultMaxResults {
		t.Errorf("MaxResults: got %d, want %d", got, DefaultMaxResults)
	}
	if got := MaxExchanges(); got != DefaultMaxExchanges {
		t.Errorf("MaxExchanges: got %d, want %d", got, DefaultMaxExchanges)
	}

	t.Setenv("CHUNK_SIZE", "512")
	if got := ChunkSize(); got != 512 {
		t.Errorf("ChunkSize with env: got %d, want 512", got)
	}
	t.Setenv("CHUNK_SIZE", "not-a-number")
	if got := ChunkSize(); got != DefaultChunkSize {
		t.Errorf("ChunkSize with bad env: got %d, want %d", got, DefaultChunkSize)
	}
}

func TestFloat32Str(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   float32
		want string
	}{
		{0.0, ""},
		{0.2, "0.2"},
		{0.3, "0.3"},
		{1.0, "1"},
	}
	for _, tt := range tests {
		if got := float32Str(tt.in); got != tt.want {
			t.Errorf("float32Str(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
