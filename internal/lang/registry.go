package lang

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/codescope/internal/config"
)

// Registry holds the grammar for each supported language plus the
// extension-to-language mapping and per-language chunk kind tables.
// A Registry is immutable after construction and safe for concurrent use.
type Registry struct {
	extToLang map[string]string
	grammars  map[string]Grammar
	chunkKind map[string]map[string]string
	subChunk  map[string]map[string]bool
}

// NewRegistry builds a registry from the language configuration. Languages
// listed as supported but lacking a built-in grammar are registered without
// one; files in those languages fall back to size-based chunking.
func NewRegistry(cfg *config.LanguagesConfig) *Registry {
	r := &Registry{
		extToLang: make(map[string]string, len(cfg.Map)),
		grammars:  make(map[string]Grammar, len(cfg.Supported)),
		chunkKind: make(map[string]map[string]string, len(cfg.ChunkNodeTypes)),
		subChunk:  make(map[string]map[string]bool, len(cfg.SubChunkTypes)),
	}

	for ext, lang := range cfg.Map {
		r.extToLang[strings.ToLower(ext)] = lang
	}

	for _, lang := range cfg.Supported {
		if g := builtinGrammar(lang); g != nil {
			r.grammars[lang] = g
		}
	}

	for lang, kinds := range cfg.ChunkNodeTypes {
		table := make(map[string]string, len(kinds))
		for kind, role := range kinds {
			table[kind] = role
		}
		r.chunkKind[lang] = table
	}

	for lang, kinds := range cfg.SubChunkTypes {
		set := make(map[string]bool, len(kinds))
		for _, kind := range kinds {
			set[kind] = true
		}
		r.subChunk[lang] = set
	}

	return r
}

// ResolveLanguage maps a file path to its language identifier by extension.
// Unmapped extensions resolve to LanguageUnknown, never an error.
func (r *Registry) ResolveLanguage(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return LanguageUnknown
	}
	if lang, ok := r.extToLang[ext]; ok {
		return lang
	}
	return LanguageUnknown
}

// GrammarFor returns the grammar for a language, or nil if the language has
// no parser (unknown languages, or supported ones without a binding).
func (r *Registry) GrammarFor(lang string) Grammar {
	return r.grammars[lang]
}

// ChunkKindRole returns the chunk role ("class" or "function_or_method") for
// a node kind in the given language, or "" if the kind does not chunk.
func (r *Registry) ChunkKindRole(lang, kind string) string {
	return r.chunkKind[lang][kind]
}

// IsSubChunkKind reports whether a node kind is extracted as a sub-chunk
// inside class chunks for the given language.
func (r *Registry) IsSubChunkKind(lang, kind string) bool {
	return r.subChunk[lang][kind]
}

// builtinGrammar returns the built-in grammar for a language identifier,
// or nil when no binding ships with codescope.
func builtinGrammar(lang string) Grammar {
	switch lang {
	case "go":
		return newGoGrammar()
	case "python":
		return newTreeSitterGrammar(lang, sitter.NewLanguage(python.Language()))
	case "typescript":
		return newTreeSitterGrammar(lang, sitter.NewLanguage(typescript.LanguageTypescript()))
	case "javascript":
		// The TSX grammar is a superset of javascript and handles JSX files.
		return newTreeSitterGrammar(lang, sitter.NewLanguage(typescript.LanguageTSX()))
	case "java":
		return newTreeSitterGrammar(lang, sitter.NewLanguage(java.Language()))
	case "ruby":
		return newTreeSitterGrammar(lang, sitter.NewLanguage(ruby.Language()))
	case "rust":
		return newTreeSitterGrammar(lang, sitter.NewLanguage(rust.Language()))
	case "c":
		return newTreeSitterGrammar(lang, sitter.NewLanguage(c.Language()))
	case "php":
		return newTreeSitterGrammar(lang, sitter.NewLanguage(php.LanguagePHP()))
	default:
		return nil
	}
}
