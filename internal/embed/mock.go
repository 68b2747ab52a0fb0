package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
)

// mockProvider generates deterministic embeddings from text hashes.
// Identical input always produces an identical vector, which makes search
// results reproducible in tests and offline runs.
type mockProvider struct {
	dimensions int
}

// NewMockProvider creates a deterministic embedding provider. It needs no
// network or credentials and is the default when no API key is configured.
func NewMockProvider() Provider {
	return &mockProvider{
		dimensions: 384, // standard dimension for sentence transformers
	}
}

func (p *mockProvider) Initialize(ctx context.Context) error {
	return nil
}

// Embed generates mock embeddings by hashing the input text.
func (p *mockProvider) Embed(ctx context.Context, texts []string, mode EmbedMode) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))

	for i, text := range texts {
		hash := sha256.Sum256([]byte(text))

		embedding := make([]float32, p.dimensions)
		for j := 0; j < p.dimensions; j++ {
			offset := (j * 4) % (len(hash) - 3)
			val := binary.BigEndian.Uint32(hash[offset : offset+4])
			// Normalize to [-1, 1]
			embedding[j] = (float32(val)/float32(1<<32))*2.0 - 1.0
		}

		embeddings[i] = embedding
	}

	return embeddings, nil
}

func (p *mockProvider) Dimensions() int {
	return p.dimensions
}

func (p *mockProvider) Close() error {
	return nil
}
