package embed

import "fmt"

// FactoryConfig selects and configures an embedding provider.
type FactoryConfig struct {
	// Provider is "openai", "local", or "mock". Empty defaults to mock so
	// indexing works offline with deterministic vectors.
	Provider string

	// Model is the embedding model identifier (openai provider).
	Model string

	// APIKey for the openai provider; falls back to OPENAI_API_KEY.
	APIKey string

	// Endpoint is the base URL of a local embedding server (local provider)
	// or an API-compatible override for the openai provider.
	Endpoint string

	// Dimensions overrides vector dimensionality for the local provider.
	Dimensions int
}

// NewProvider creates an embedding provider based on the configuration.
func NewProvider(config FactoryConfig) (Provider, error) {
	switch config.Provider {
	case "mock", "":
		return NewMockProvider(), nil

	case "openai":
		return NewOpenAIProvider(config.Model, config.APIKey, config.Endpoint), nil

	case "local":
		endpoint := config.Endpoint
		if endpoint == "" {
			endpoint = "http://127.0.0.1:8121"
		}
		dims := config.Dimensions
		if dims == 0 {
			dims = 384
		}
		return NewLocalProvider(endpoint, dims), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (supported: mock, openai, local)", config.Provider)
	}
}
