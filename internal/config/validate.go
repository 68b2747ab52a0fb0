package config

import (
	"fmt"
	"strings"
)

// Valid chunk roles for languages.chunk_node_types values.
const (
	RoleClass    = "class"
	RoleFunction = "function_or_method"
)

// Validate checks a configuration for missing or out-of-range values.
// There are no implicit defaults for required values: a zero window size or
// an unknown strategy is rejected here, before any indexing begins.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := validateAnalysis(&cfg.Analysis); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if err := validateLanguages(&cfg.Languages); err != nil {
		return fmt.Errorf("languages: %w", err)
	}
	if err := validateChunking(&cfg.Chunking); err != nil {
		return fmt.Errorf("chunking: %w", err)
	}
	if err := validateContentIndex(&cfg.ContentIndex); err != nil {
		return fmt.Errorf("content_index: %w", err)
	}
	if cfg.CrossReference.MinSymbolLength < 1 {
		return fmt.Errorf("cross_reference: min_symbol_length must be >= 1, got %d", cfg.CrossReference.MinSymbolLength)
	}
	if err := validateIndexer(&cfg.Indexer); err != nil {
		return fmt.Errorf("indexer: %w", err)
	}

	return nil
}

func validateAnalysis(cfg *AnalysisConfig) error {
	if len(cfg.Extensions) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	if cfg.MaxFileSize <= 0 {
		return fmt.Errorf("max_file_size must be positive, got %d", cfg.MaxFileSize)
	}
	return nil
}

func validateLanguages(cfg *LanguagesConfig) error {
	if len(cfg.Map) == 0 {
		return fmt.Errorf("map must not be empty")
	}

	supported := make(map[string]bool, len(cfg.Supported))
	for _, lang := range cfg.Supported {
		supported[lang] = true
	}

	for ext, lang := range cfg.Map {
		if ext == "" || strings.Contains(ext, ".") {
			return fmt.Errorf("extension %q must be the bare extension without a dot", ext)
		}
		if !supported[lang] {
			return fmt.Errorf("extension %q maps to unsupported language %q", ext, lang)
		}
	}

	for lang, kinds := range cfg.ChunkNodeTypes {
		if !supported[lang] {
			return fmt.Errorf("chunk_node_types configured for unsupported language %q", lang)
		}
		for kind, role := range kinds {
			if role != RoleClass && role != RoleFunction {
				return fmt.Errorf("node kind %q for %s has invalid role %q (want %q or %q)",
					kind, lang, role, RoleClass, RoleFunction)
			}
		}
	}

	for lang := range cfg.SubChunkTypes {
		if !supported[lang] {
			return fmt.Errorf("sub_chunk_types configured for unsupported language %q", lang)
		}
	}

	return nil
}

func validateChunking(cfg *ChunkingConfig) error {
	switch cfg.Strategy {
	case "ast", "lines":
	default:
		return fmt.Errorf("strategy must be \"ast\" or \"lines\", got %q", cfg.Strategy)
	}
	if cfg.MaxChunkLines < 1 {
		return fmt.Errorf("max_chunk_lines must be >= 1, got %d", cfg.MaxChunkLines)
	}
	if cfg.ParseTimeout <= 0 {
		return fmt.Errorf("parse_timeout must be positive, got %v", cfg.ParseTimeout)
	}
	return nil
}

func validateContentIndex(cfg *ContentIndexConfig) error {
	if cfg.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be >= 1, got %d", cfg.ChunkSize)
	}
	if cfg.EmbeddingModel == "" {
		return fmt.Errorf("embedding_model must not be empty")
	}
	switch cfg.EmbeddingProvider {
	case "mock", "openai", "local":
	default:
		return fmt.Errorf("embedding_provider must be \"mock\", \"openai\", or \"local\", got %q", cfg.EmbeddingProvider)
	}
	switch cfg.CollectionSpace {
	case "cosine", "ip", "l2":
	default:
		return fmt.Errorf("collection_space must be \"cosine\", \"ip\", or \"l2\", got %q", cfg.CollectionSpace)
	}
	if cfg.SearchTopK < 1 {
		return fmt.Errorf("search_top_k must be >= 1, got %d", cfg.SearchTopK)
	}
	return nil
}

func validateIndexer(cfg *IndexerConfig) error {
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", cfg.Workers)
	}
	if cfg.EmbedBatchSize < 1 {
		return fmt.Errorf("embed_batch_size must be >= 1, got %d", cfg.EmbedBatchSize)
	}
	if cfg.EmbedRetries < 1 {
		return fmt.Errorf("embed_retries must be >= 1, got %d", cfg.EmbedRetries)
	}
	return nil
}
