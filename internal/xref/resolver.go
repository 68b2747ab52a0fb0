// Package xref resolves lexical cross-references between chunks and derives
// the file-level dependency graph from them. Resolution is purely textual:
// a reference is a whole-word occurrence of a declared symbol name in
// another chunk's source. That trades precision for language independence;
// same-named symbols from different files conflate by design.
package xref

import (
	"regexp"
	"sort"

	"github.com/mvp-joe/codescope/internal/indexer"
)

// Reference is one resolved symbol usage.
type Reference struct {
	Symbol string `json:"symbol"`

	// FromChunkID is the chunk whose source mentions the symbol.
	FromChunkID string `json:"from_chunk_id"`
	FromFile    string `json:"from_file"`

	// ToChunkIDs are the chunks declaring the symbol, in ingestion order.
	ToChunkIDs []string `json:"to_chunk_ids"`
}

// Resolver matches declared symbol names against chunk source text.
type Resolver struct {
	minSymbolLength int
}

// NewResolver creates a resolver. Symbols shorter than minSymbolLength are
// skipped entirely; short names like "x" or "run" produce mostly noise.
func NewResolver(minSymbolLength int) *Resolver {
	return &Resolver{minSymbolLength: minSymbolLength}
}

// Resolve scans every chunk in the frozen index for whole-word occurrences
// of every declared symbol. A chunk that itself declares the symbol is not
// a reference to it. The result is deterministic: symbols in sorted order,
// referencing chunks in ingestion order.
func (r *Resolver) Resolve(idx *indexer.RepositoryIndex) []Reference {
	chunks := idx.AllChunks()
	var refs []Reference

	for _, symbol := range idx.SymbolNames() {
		if len(symbol) < r.minSymbolLength {
			continue
		}

		declaring := idx.LookupBySymbol(symbol)
		declaringIDs := make(map[string]bool, len(declaring))
		toIDs := make([]string, 0, len(declaring))
		for _, d := range declaring {
			declaringIDs[d.ID] = true
			toIDs = append(toIDs, d.ID)
		}

		pattern := wholeWordPattern(symbol)
		for _, chunk := range chunks {
			if declaringIDs[chunk.ID] {
				continue
			}
			// A sub-chunk's text is nested inside its parent's; skip the
			// parent of a declaring chunk to avoid counting the declaration
			// itself as a use.
			if declaresWithin(declaringIDs, chunk, idx) {
				continue
			}
			if !pattern.MatchString(chunk.SourceText) {
				continue
			}
			refs = append(refs, Reference{
				Symbol:      symbol,
				FromChunkID: chunk.ID,
				FromFile:    chunk.FilePath,
				ToChunkIDs:  toIDs,
			})
		}
	}

	return refs
}

// declaresWithin reports whether any declaring chunk is a sub-chunk of c.
func declaresWithin(declaringIDs map[string]bool, c indexer.Chunk, idx *indexer.RepositoryIndex) bool {
	for _, sibling := range idx.ChunksForFile(c.FilePath) {
		if sibling.ParentID == c.ID && declaringIDs[sibling.ID] {
			return true
		}
	}
	return false
}

// wholeWordPattern compiles a whole-word match for a symbol. The symbol is
// quoted, so names containing regexp metacharacters stay literal.
func wholeWordPattern(symbol string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(symbol) + `\b`)
}

// ReferencesTo filters refs down to those targeting the given symbol.
func ReferencesTo(refs []Reference, symbol string) []Reference {
	var out []Reference
	for _, ref := range refs {
		if ref.Symbol == symbol {
			out = append(out, ref)
		}
	}
	return out
}

// SymbolsReferenced returns the distinct symbols appearing in refs, sorted.
func SymbolsReferenced(refs []Reference) []string {
	set := make(map[string]bool)
	for _, ref := range refs {
		set[ref.Symbol] = true
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
