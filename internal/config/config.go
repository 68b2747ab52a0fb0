package config

import "time"

// Config represents the complete codescope configuration.
// It can be loaded from .codescope/config.yml with environment variable overrides.
type Config struct {
	Analysis       AnalysisConfig       `yaml:"analysis" mapstructure:"analysis"`
	Languages      LanguagesConfig      `yaml:"languages" mapstructure:"languages"`
	Chunking       ChunkingConfig       `yaml:"chunking" mapstructure:"chunking"`
	ContentIndex   ContentIndexConfig   `yaml:"content_index" mapstructure:"content_index"`
	CrossReference CrossReferenceConfig `yaml:"cross_reference" mapstructure:"cross_reference"`
	Indexer        IndexerConfig        `yaml:"indexer" mapstructure:"indexer"`
}

// AnalysisConfig defines which files are discovered and which are skipped.
type AnalysisConfig struct {
	Extensions  []string `yaml:"extensions" mapstructure:"extensions"`       // glob patterns to include
	Exclude     []string `yaml:"exclude" mapstructure:"exclude"`             // glob patterns to exclude (win over includes)
	MaxFileSize int64    `yaml:"max_file_size" mapstructure:"max_file_size"` // bytes; larger files are skipped with a warning
}

// LanguagesConfig maps file extensions to languages and configures which
// syntax-tree node kinds become chunks for each language.
type LanguagesConfig struct {
	Supported []string `yaml:"supported" mapstructure:"supported"`

	// Map is extension (without the leading dot) -> language identifier.
	// Keys carry no dot because "." is the config key delimiter.
	Map map[string]string `yaml:"map" mapstructure:"map"`

	// ChunkNodeTypes is language -> node kind -> chunk role
	// ("class" or "function_or_method").
	ChunkNodeTypes map[string]map[string]string `yaml:"chunk_node_types" mapstructure:"chunk_node_types"`

	// SubChunkTypes is language -> node kinds extracted one level inside a
	// class chunk (methods, nested functions).
	SubChunkTypes map[string][]string `yaml:"sub_chunk_types" mapstructure:"sub_chunk_types"`
}

// ChunkingConfig defines how source files are segmented into chunks.
type ChunkingConfig struct {
	Strategy      string        `yaml:"strategy" mapstructure:"strategy"`               // "ast" or "lines"
	MaxChunkLines int           `yaml:"max_chunk_lines" mapstructure:"max_chunk_lines"` // line window for fallback chunking
	ParseTimeout  time.Duration `yaml:"parse_timeout" mapstructure:"parse_timeout"`     // per-file budget before falling back
}

// ContentIndexConfig configures the semantic (vector) index.
type ContentIndexConfig struct {
	ChunkSize         int    `yaml:"chunk_size" mapstructure:"chunk_size"`                 // embedding window size in characters
	EmbeddingProvider string `yaml:"embedding_provider" mapstructure:"embedding_provider"` // "mock", "openai", or "local"
	EmbeddingModel    string `yaml:"embedding_model" mapstructure:"embedding_model"`       // model identifier passed to the provider
	EmbeddingEndpoint string `yaml:"embedding_endpoint" mapstructure:"embedding_endpoint"` // local server or API-compatible base URL
	CollectionSpace   string `yaml:"collection_space" mapstructure:"collection_space"`     // "cosine", "ip", or "l2"
	SearchTopK        int    `yaml:"search_top_k" mapstructure:"search_top_k"`
}

// CrossReferenceConfig configures the lexical cross-reference resolver.
type CrossReferenceConfig struct {
	MinSymbolLength int `yaml:"min_symbol_length" mapstructure:"min_symbol_length"`
}

// IndexerConfig configures pipeline parallelism and embedding batching.
type IndexerConfig struct {
	Workers        int `yaml:"workers" mapstructure:"workers"` // 0 = runtime.NumCPU()
	EmbedBatchSize int `yaml:"embed_batch_size" mapstructure:"embed_batch_size"`
	EmbedRetries   int `yaml:"embed_retries" mapstructure:"embed_retries"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Extensions: []string{
				"**/*.go",
				"**/*.py",
				"**/*.ts",
				"**/*.tsx",
				"**/*.js",
				"**/*.jsx",
				"**/*.java",
				"**/*.rb",
				"**/*.rs",
				"**/*.c",
				"**/*.h",
				"**/*.php",
			},
			Exclude: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
				"*.min.js",
			},
			MaxFileSize: 1 << 20, // 1 MiB
		},
		Languages: LanguagesConfig{
			Supported: []string{
				"go", "python", "typescript", "javascript",
				"java", "ruby", "rust", "c", "php",
			},
			Map: map[string]string{
				"go":   "go",
				"py":   "python",
				"ts":   "typescript",
				"tsx":  "typescript",
				"js":   "javascript",
				"jsx":  "javascript",
				"java": "java",
				"rb":   "ruby",
				"rs":   "rust",
				"c":    "c",
				"h":    "c",
				"php":  "php",
			},
			ChunkNodeTypes: map[string]map[string]string{
				"go": {
					"type_declaration":     "class",
					"function_declaration": "function_or_method",
					"method_declaration":   "function_or_method",
				},
				"python": {
					"class_definition":    "class",
					"function_definition": "function_or_method",
				},
				"typescript": {
					"class_declaration":     "class",
					"interface_declaration": "class",
					"function_declaration":  "function_or_method",
				},
				"javascript": {
					"class_declaration":    "class",
					"function_declaration": "function_or_method",
				},
				"java": {
					"class_declaration":     "class",
					"interface_declaration": "class",
					"enum_declaration":      "class",
					"method_declaration":    "function_or_method",
				},
				"ruby": {
					"class":  "class",
					"module": "class",
					"method": "function_or_method",
				},
				"rust": {
					"struct_item":   "class",
					"enum_item":     "class",
					"trait_item":    "class",
					"impl_item":     "class",
					"function_item": "function_or_method",
				},
				"c": {
					"struct_specifier":    "class",
					"function_definition": "function_or_method",
				},
				"php": {
					"class_declaration":   "class",
					"function_definition": "function_or_method",
				},
			},
			SubChunkTypes: map[string][]string{
				"python":     {"function_definition"},
				"typescript": {"method_definition"},
				"javascript": {"method_definition"},
				"java":       {"method_declaration", "constructor_declaration"},
				"ruby":       {"method"},
				"rust":       {"function_item"},
				"php":        {"method_declaration"},
			},
		},
		Chunking: ChunkingConfig{
			Strategy:      "ast",
			MaxChunkLines: 120,
			ParseTimeout:  5 * time.Second,
		},
		ContentIndex: ContentIndexConfig{
			ChunkSize:         500,
			EmbeddingProvider: "mock",
			EmbeddingModel:    "text-embedding-3-small",
			CollectionSpace:   "cosine",
			SearchTopK:        5,
		},
		CrossReference: CrossReferenceConfig{
			MinSymbolLength: 4,
		},
		Indexer: IndexerConfig{
			Workers:        0,
			EmbedBatchSize: 50,
			EmbedRetries:   3,
		},
	}
}
