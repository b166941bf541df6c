// Package provider selects and constructs the tool-calling chat model at
// runtime. Supported backends: Ollama, OpenAI, Azure OpenAI, Google Gemini,
// Volcano Ark.
package provider

import (
	"fmt"
)

// Backend enumerates the supported chat model providers.
type Backend string

const (
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
	// BackendArk selects the Volcano Engine Ark runtime.
	BackendArk Backend = "ark"
)

// ProviderOllama configures a locally running Ollama instance.
type ProviderOllama struct {
	// Host is the Ollama base URL (default http://localhost:11434).
	Host string
	// Model is the model name, e.g. "llama3".
	Model string
}

// ProviderOpenAI configures the OpenAI API.
type ProviderOpenAI struct {
	APIKey string
	Model  string
	// BaseURL overrides the default endpoint, for OpenAI-compatible gateways.
	BaseURL string
}

// ProviderAzureOpenAI configures Azure OpenAI Service.
type ProviderAzureOpenAI struct {
	APIKey     string
	Endpoint   string
	Deployment string
	// APIVersion is the Azure OpenAI REST API version (e.g. "2024-02-01").
	APIVersion string
}

// ProviderGemini configures Google Gemini.
type ProviderGemini struct {
	APIKey string
	Model  string
}

// ProviderArk configures the Volcano Engine Ark runtime.
type ProviderArk struct {
	APIKey string
	Model  string
	// BaseURL overrides the default Ark endpoint.
	BaseURL string
}

// SharedTuning holds generation parameters applied to every backend that
// accepts them.
type SharedTuning struct {
	// MaxTokens caps the tokens generated per response.
	MaxTokens int
	// Temperature controls response randomness (0.0–1.0).
	Temperature float32
}

// Config holds provider configuration resolved from environment variables or
// supplied by the caller. Only the section matching Backend is read.
type Config struct {
	// Backend identifies which provider to use.
	Backend Backend

	Ollama      ProviderOllama
	OpenAI      ProviderOpenAI
	AzureOpenAI ProviderAzureOpenAI
	Gemini      ProviderGemini
	Ark         ProviderArk

	Tuning SharedTuning
}

// Validate checks that the selected backend's section carries everything its
// constructor needs, so startup fails with a clear message rather than the
// first request. Error messages name the environment variable that populates
// the missing field.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOllama:
		if c.Ollama.Model == "" {
			return fmt.Errorf("provider: OLLAMA_MODEL is required for the ollama backend")
		}
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("provider: OPENAI_API_KEY is required for the openai backend")
		}
		if c.OpenAI.Model == "" {
			return fmt.Errorf("provider: OPENAI_MODEL is required for the openai backend")
		}
	case BackendAzure:
		if c.AzureOpenAI.APIKey == "" {
			return fmt.Errorf("provider: AZURE_OPENAI_API_KEY is required for the azure backend")
		}
		if c.AzureOpenAI.Endpoint == "" {
			return fmt.Errorf("provider: AZURE_OPENAI_ENDPOINT is required for the azure backend")
		}
		if c.AzureOpenAI.Deployment == "" {
			return fmt.Errorf("provider: AZURE_OPENAI_DEPLOYMENT is required for the azure backend")
		}
	case BackendGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("provider: GOOGLE_API_KEY is required for the gemini backend")
		}
		if c.Gemini.Model == "" {
			return fmt.Errorf("provider: GEMINI_MODEL is required for the gemini backend")
		}
	case BackendArk:
		if c.Ark.APIKey == "" {
			return fmt.Errorf("provider: ARK_API_KEY is required for the ark backend")
		}
		if c.Ark.Model == "" {
			return fmt.Errorf("provider: ARK_MODEL is required for the ark backend")
		}
	default:
		return fmt.Errorf("provider: unknown backend %q — valid values: ollama, openai, azure, gemini, ark", c.Backend)
	}
	return nil
}
