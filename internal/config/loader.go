package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CODESCOPE_*)
// 2. Config file (.codescope/config.yml or .codescope/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".codescope")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	// Enable environment variable overrides
	v.SetEnvPrefix("CODESCOPE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind environment variables to config keys
	v.BindEnv("analysis.max_file_size")
	v.BindEnv("chunking.strategy")
	v.BindEnv("chunking.max_chunk_lines")
	v.BindEnv("chunking.parse_timeout")
	v.BindEnv("content_index.chunk_size")
	v.BindEnv("content_index.embedding_provider")
	v.BindEnv("content_index.embedding_model")
	v.BindEnv("content_index.embedding_endpoint")
	v.BindEnv("content_index.collection_space")
	v.BindEnv("content_index.search_top_k")
	v.BindEnv("cross_reference.min_symbol_length")
	v.BindEnv("indexer.workers")
	v.BindEnv("indexer.embed_batch_size")
	v.BindEnv("indexer.embed_retries")

	setDefaults(v)

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validation is fatal: indexing never starts on a broken configuration.
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("analysis.extensions", defaults.Analysis.Extensions)
	v.SetDefault("analysis.exclude", defaults.Analysis.Exclude)
	v.SetDefault("analysis.max_file_size", defaults.Analysis.MaxFileSize)

	v.SetDefault("languages.supported", defaults.Languages.Supported)
	v.SetDefault("languages.map", defaults.Languages.Map)
	v.SetDefault("languages.chunk_node_types", defaults.Languages.ChunkNodeTypes)
	v.SetDefault("languages.sub_chunk_types", defaults.Languages.SubChunkTypes)

	v.SetDefault("chunking.strategy", defaults.Chunking.Strategy)
	v.SetDefault("chunking.max_chunk_lines", defaults.Chunking.MaxChunkLines)
	v.SetDefault("chunking.parse_timeout", defaults.Chunking.ParseTimeout)

	v.SetDefault("content_index.chunk_size", defaults.ContentIndex.ChunkSize)
	v.SetDefault("content_index.embedding_provider", defaults.ContentIndex.EmbeddingProvider)
	v.SetDefault("content_index.embedding_model", defaults.ContentIndex.EmbeddingModel)
	v.SetDefault("content_index.embedding_endpoint", defaults.ContentIndex.EmbeddingEndpoint)
	v.SetDefault("content_index.collection_space", defaults.ContentIndex.CollectionSpace)
	v.SetDefault("content_index.search_top_k", defaults.ContentIndex.SearchTopK)

	v.SetDefault("cross_reference.min_symbol_length", defaults.CrossReference.MinSymbolLength)

	v.SetDefault("indexer.workers", defaults.Indexer.Workers)
	v.SetDefault("indexer.embed_batch_size", defaults.Indexer.EmbedBatchSize)
	v.SetDefault("indexer.embed_retries", defaults.Indexer.EmbedRetries)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
