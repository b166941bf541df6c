package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HealthCheckConfig probes a chat backend's reachability without spending
// model tokens. Implementations hit a cheap authenticated endpoint, usually
// the backend's model listing.
type HealthCheckConfig interface {
	HealthCheck(ctx context.Context) error
}

// httpHealthCheck issues an authenticated GET and treats any 2xx as healthy.
// A 401/403 fails the check: a backend with rejected credentials is not
// ready to serve.
type httpHealthCheck struct {
	url     string
	headers map[string]string
	client  *http.Client
}

func (h *httpHealthCheck) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return fmt.Errorf("provider: build health request: %w", err)
	}
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("provider: health request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("provider: health endpoint returned %s", resp.Status)
	}
	return nil
}

// NewHealthCheck builds the zero-token reachability probe for the configured
// backend. Every backend exposes a models listing that serves as the probe
// target.
func NewHealthCheck(cfg *Config) (HealthCheckConfig, error) {
	hc := &httpHealthCheck{
		headers: map[string]string{},
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	switch cfg.Backend {
	case BackendOllama:
		host := cfg.Ollama.Host
		if host == "" {
			host = "http://localhost:11434"
		}
		hc.url = strings.TrimSuffix(host, "/") + "/api/tags"
	case BackendOpenAI:
		base := cfg.OpenAI.BaseURL
		if base == "" {
			base = "https://api.openai.com/v1"
		}
		hc.url = strings.TrimSuffix(base, "/") + "/models"
		hc.headers["Authorization"] = "Bearer " + cfg.OpenAI.APIKey
	case BackendAzure:
		version := cfg.AzureOpenAI.APIVersion
		if version == "" {
			version = "2024-02-01"
		}
		hc.url = fmt.Sprintf("%s/openai/models?api-version=%s",
			strings.TrimSuffix(cfg.AzureOpenAI.Endpoint, "/"), version)
		hc.headers["api-key"] = cfg.AzureOpenAI.APIKey
	case BackendGemini:
		hc.url = "https://generativelanguage.googleapis.com/v1beta/models"
		hc.headers["x-goog-api-key"] = cfg.Gemini.APIKey
	case BackendArk:
		base := cfg.Ark.BaseURL
		if base == "" {
			base = "https://ark.cn-beijing.volces.com/api/v3"
		}
		hc.url = strings.TrimSuffix(base, "/") + "/models"
		hc.headers["Authorization"] = "Bearer " + cfg.Ark.APIKey
	default:
		return nil, fmt.Errorf("provider: unknown backend %q — valid values: ollama, openai, azure, gemini, ark", cfg.Backend)
	}
	return hc, nil
}
