// Package embed converts text into embedding vectors through pluggable
// providers. The semantic index depends only on the Provider interface, so
// a remote API, a local embedding server, or the deterministic mock can be
// swapped without touching indexing code.
package embed

import "context"

// EmbedMode specifies the type of embedding to generate.
type EmbedMode string

const (
	// EmbedModeQuery generates embeddings optimized for search queries.
	EmbedModeQuery EmbedMode = "query"

	// EmbedModePassage generates embeddings optimized for document passages.
	// Use this when embedding code chunks or any searchable content.
	EmbedModePassage EmbedMode = "passage"
)

// Provider defines the interface for embedding text into vectors.
// Implementations may use remote APIs, local servers, or deterministic mocks.
type Provider interface {
	// Initialize prepares the provider and blocks until ready.
	// Validates credentials or checks connectivity as appropriate.
	// Must be called before Embed().
	Initialize(ctx context.Context) error

	// Embed converts a slice of text strings into their vector
	// representations, one vector per input in the same order.
	Embed(ctx context.Context, texts []string, mode EmbedMode) ([][]float32, error)

	// Dimensions returns the dimensionality of vectors this provider produces.
	Dimensions() int

	// Close releases any resources held by the provider.
	Close() error
}
