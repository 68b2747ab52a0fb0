package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mvp-joe/codescope/internal/config"
	"github.com/mvp-joe/codescope/internal/embed"
	"github.com/mvp-joe/codescope/internal/engine"
)

// buildEngine loads configuration, creates the embedding provider, and runs
// a full indexing pass. The index lives in memory for the life of the
// process, so every command starts with a build.
func buildEngine(ctx context.Context) (*engine.Engine, error) {
	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return nil, err
	}

	provider, err := embed.NewProvider(embed.FactoryConfig{
		Provider: cfg.ContentIndex.EmbeddingProvider,
		Model:    cfg.ContentIndex.EmbeddingModel,
		Endpoint: cfg.ContentIndex.EmbeddingEndpoint,
	})
	if err != nil {
		return nil, err
	}
	if err := provider.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("embedding provider failed to initialize: %w", err)
	}

	eng, err := engine.New(rootDir, cfg, provider, NewCLIProgressReporter(quiet))
	if err != nil {
		provider.Close()
		return nil, err
	}

	if _, err := eng.Index(ctx); err != nil {
		eng.Close()
		return nil, err
	}

	return eng, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
