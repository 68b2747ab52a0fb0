package indexer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mvp-joe/codescope/internal/config"
	"github.com/mvp-joe/codescope/internal/lang"
)

// Fallback reasons recorded on FileChunks when structural parsing is not used.
const (
	FallbackNoGrammar  = "no_grammar"
	FallbackParseError = "parse_error"
	FallbackTimeout    = "timeout"
	FallbackStrategy   = "lines_strategy"
)

// GrammarSource provides per-language grammars and chunk kind tables.
// *lang.Registry is the production implementation.
type GrammarSource interface {
	GrammarFor(language string) lang.Grammar
	ChunkKindRole(language, kind string) string
	IsSubChunkKind(language, kind string) bool
}

// ChunkExtractor turns file content into chunks. Extraction is total: every
// line of a non-empty file ends up in exactly one top-level chunk, either a
// structural chunk from the syntax tree or a text block.
type ChunkExtractor struct {
	registry GrammarSource
	cfg      *config.ChunkingConfig
}

// NewChunkExtractor creates an extractor using the given grammar registry
// and chunking configuration.
func NewChunkExtractor(registry GrammarSource, cfg *config.ChunkingConfig) *ChunkExtractor {
	return &ChunkExtractor{
		registry: registry,
		cfg:      cfg,
	}
}

// Extract chunks one file. It never fails: files that cannot be parsed
// structurally (no grammar, syntax errors, parse timeout) fall back to
// fixed-size line windows. Extraction is deterministic, so unchanged content
// always produces identical chunks and IDs.
func (e *ChunkExtractor) Extract(ctx context.Context, file FileDescriptor, source []byte) FileChunks {
	result := FileChunks{File: file}

	totalLines := countLines(source)
	if totalLines == 0 {
		// Extraction is total even for a zero-line file: one empty text
		// block whose "1-0" name encodes the empty range.
		result.Chunks = e.materialize(file, source, []protoChunk{{
			kind:      ChunkKindText,
			name:      "1-0",
			startLine: 1,
			endLine:   0,
			parentIdx: -1,
		}})
		return result
	}

	if e.cfg.Strategy == "lines" {
		result.Fallback = true
		result.FallbackReason = FallbackStrategy
		result.Chunks = e.fallbackChunks(file, source, totalLines)
		return result
	}

	grammar := e.registry.GrammarFor(file.Language)
	if grammar == nil {
		result.Fallback = true
		result.FallbackReason = FallbackNoGrammar
		result.Chunks = e.fallbackChunks(file, source, totalLines)
		return result
	}

	tree, reason := e.parseWithTimeout(ctx, grammar, source)
	if tree == nil {
		result.Fallback = true
		result.FallbackReason = reason
		result.Chunks = e.fallbackChunks(file, source, totalLines)
		return result
	}

	result.Chunks = e.structuralChunks(file, source, tree, totalLines)
	return result
}

// parseWithTimeout runs the grammar under the configured per-file budget.
// A tree-sitter parse cannot be interrupted mid-flight, so the parse runs in
// its own goroutine and the result is abandoned on timeout.
func (e *ChunkExtractor) parseWithTimeout(ctx context.Context, grammar lang.Grammar, source []byte) (*lang.Tree, string) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ParseTimeout)
	defer cancel()

	type parseResult struct {
		tree *lang.Tree
		err  error
	}
	done := make(chan parseResult, 1)

	go func() {
		tree, err := grammar.Parse(ctx, source)
		done <- parseResult{tree: tree, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, FallbackParseError
		}
		return res.tree, ""
	case <-ctx.Done():
		return nil, FallbackTimeout
	}
}

// protoChunk is a chunk before ordinal assignment. parentIdx points at the
// enclosing top-level proto chunk, or -1.
type protoChunk struct {
	kind      ChunkKind
	name      string
	startLine int
	endLine   int
	parentIdx int
}

// structuralChunks converts a parse tree into chunks: one top-level chunk
// per configured node kind, sub-chunks for methods inside class chunks, and
// text blocks filling every line no structural chunk covers.
func (e *ChunkExtractor) structuralChunks(file FileDescriptor, source []byte, tree *lang.Tree, totalLines int) []Chunk {
	var protos []protoChunk
	lastEnd := 0 // last line covered by an accepted top-level chunk
	seen := make(map[[2]int]bool)

	addGapBlocks := func(from, to int) {
		for start := from; start <= to; start += e.cfg.MaxChunkLines {
			end := start + e.cfg.MaxChunkLines - 1
			if end > to {
				end = to
			}
			protos = append(protos, protoChunk{
				kind:      ChunkKindText,
				name:      fmt.Sprintf("%d-%d", start, end),
				startLine: start,
				endLine:   end,
				parentIdx: -1,
			})
		}
	}

	for _, node := range tree.TopLevel {
		role := e.registry.ChunkKindRole(file.Language, node.Kind)
		if role == "" {
			continue
		}
		// Overlapping or duplicate ranges would break the one-chunk-per-line
		// contract; keep the first occurrence only.
		if node.StartLine <= lastEnd {
			continue
		}
		key := [2]int{node.StartLine, node.EndLine}
		if seen[key] {
			continue
		}
		seen[key] = true

		if node.StartLine > lastEnd+1 {
			addGapBlocks(lastEnd+1, node.StartLine-1)
		}

		kind := ChunkKindFunction
		if role == config.RoleClass {
			kind = ChunkKindClass
		}
		name := node.Name
		if name == "" {
			name = fmt.Sprintf("%d-%d", node.StartLine, node.EndLine)
		}
		parentIdx := len(protos)
		protos = append(protos, protoChunk{
			kind:      kind,
			name:      name,
			startLine: node.StartLine,
			endLine:   node.EndLine,
			parentIdx: -1,
		})
		lastEnd = node.EndLine

		if kind != ChunkKindClass {
			continue
		}
		for _, child := range node.Children {
			if !e.registry.IsSubChunkKind(file.Language, child.Kind) {
				continue
			}
			name := child.Name
			if name == "" {
				name = fmt.Sprintf("%d-%d", child.StartLine, child.EndLine)
			}
			protos = append(protos, protoChunk{
				kind:      ChunkKindFunction,
				name:      name,
				startLine: child.StartLine,
				endLine:   child.EndLine,
				parentIdx: parentIdx,
			})
		}
	}

	if lastEnd < totalLines {
		addGapBlocks(lastEnd+1, totalLines)
	}

	return e.materialize(file, source, protos)
}

// fallbackChunks segments a file into fixed-size text block windows.
func (e *ChunkExtractor) fallbackChunks(file FileDescriptor, source []byte, totalLines int) []Chunk {
	var protos []protoChunk
	for start := 1; start <= totalLines; start += e.cfg.MaxChunkLines {
		end := start + e.cfg.MaxChunkLines - 1
		if end > totalLines {
			end = totalLines
		}
		protos = append(protos, protoChunk{
			kind:      ChunkKindText,
			name:      fmt.Sprintf("%d-%d", start, end),
			startLine: start,
			endLine:   end,
			parentIdx: -1,
		})
	}
	return e.materialize(file, source, protos)
}

// materialize assigns ordinals, resolves parent IDs, and slices source text.
func (e *ChunkExtractor) materialize(file FileDescriptor, source []byte, protos []protoChunk) []Chunk {
	offsets := lineOffsets(source)
	chunks := make([]Chunk, len(protos))
	for i, p := range protos {
		chunk := Chunk{
			ID:         ChunkID(file.Path, i),
			FilePath:   file.Path,
			Kind:       p.kind,
			Language:   file.Language,
			Name:       p.name,
			StartLine:  p.startLine,
			EndLine:    p.endLine,
			SourceText: sliceLines(source, offsets, p.startLine, p.endLine),
		}
		if p.parentIdx >= 0 {
			chunk.ParentID = ChunkID(file.Path, p.parentIdx)
		}
		chunks[i] = chunk
	}
	return chunks
}

// countLines returns the number of lines in source. A trailing newline does
// not start a new line; an empty file has zero lines.
func countLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := bytes.Count(source, []byte{'\n'})
	if source[len(source)-1] != '\n' {
		n++
	}
	return n
}

// lineOffsets returns the byte offset of the start of each line.
func lineOffsets(source []byte) []int {
	offsets := []int{0}
	for i, b := range source {
		if b == '\n' && i+1 < len(source) {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// sliceLines returns the exact source text of lines start..end (1-based,
// inclusive). Only the last line's terminator is dropped; trailing blank
// lines inside the range are preserved.
func sliceLines(source []byte, offsets []int, start, end int) string {
	if start < 1 || start > len(offsets) {
		return ""
	}
	from := offsets[start-1]
	var to int
	if end >= len(offsets) {
		to = len(source)
	} else {
		to = offsets[end] // start of the next line
	}
	return string(bytes.TrimSuffix(source[from:to], []byte("\n")))
}
