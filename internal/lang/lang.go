// Package lang maps languages to grammars and exposes a language-neutral
// view of parsed syntax trees. Each grammar is a capability bundle behind the
// Grammar interface, so new languages can be added without touching the
// chunk extractor.
package lang

import "context"

// LanguageUnknown is the identifier assigned to files whose extension has no
// configured language mapping.
const LanguageUnknown = "unknown"

// Node is a language-neutral view of a syntax tree node. Only the fields the
// chunk extractor needs are exposed: node kind, declared name (empty when the
// grammar cannot derive one), 1-based inclusive line range, and one level of
// body children for sub-chunk extraction.
type Node struct {
	Kind      string
	Name      string
	StartLine int
	EndLine   int
	Children  []Node
}

// Tree is the top-level result of parsing one source file.
type Tree struct {
	// EndLine is the last line of the file as seen by the grammar.
	EndLine int

	// TopLevel holds the named top-level nodes in document order.
	TopLevel []Node
}

// Grammar is the per-language capability bundle: parse source text into a
// Tree. Parsing is fallible; callers treat any error as a signal to use
// size-based fallback chunking, never as a fatal condition.
type Grammar interface {
	// ID returns the language identifier this grammar parses.
	ID() string

	// Parse parses source into a language-neutral tree. A structural error
	// (unparseable input, malformed tree) is returned as an error.
	Parse(ctx context.Context, source []byte) (*Tree, error)
}
