package embed

import (
	"context"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
)

// Dimensions for known embedding models.
var modelDimensions = map[string]int{
	"text-embedding-ada-002": 1536,
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
}

// openAIProvider embeds text through the OpenAI embeddings API or any
// API-compatible endpoint (configured via base URL).
type openAIProvider struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewOpenAIProvider creates a provider backed by the OpenAI embeddings API.
// An empty apiKey falls back to the OPENAI_API_KEY environment variable;
// baseURL may point at an API-compatible server and is optional.
func NewOpenAIProvider(model, apiKey, baseURL string) Provider {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	dimensions := modelDimensions[model]
	if dimensions == 0 {
		dimensions = 1536
	}

	return &openAIProvider{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		dimensions: dimensions,
	}
}

// Initialize verifies credentials with a minimal embedding request.
func (p *openAIProvider) Initialize(ctx context.Context) error {
	_, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{"ping"},
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return fmt.Errorf("openai API not accessible: %w", err)
	}
	return nil
}

// Embed generates embeddings for the given texts. The API does not
// distinguish query from passage embeddings, so mode is ignored.
func (p *openAIProvider) Embed(ctx context.Context, texts []string, mode EmbedMode) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	results := make([][]float32, len(texts))
	for i, data := range resp.Data {
		results[i] = data.Embedding
	}
	return results, nil
}

func (p *openAIProvider) Dimensions() int {
	return p.dimensions
}

func (p *openAIProvider) Close() error {
	return nil
}
