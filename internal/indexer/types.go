// Package indexer discovers source files, extracts chunks from them, and
// maintains the in-memory repository index that the query surfaces read.
package indexer

import "fmt"

// ChunkKind classifies what a chunk represents.
type ChunkKind string

const (
	ChunkKindClass    ChunkKind = "class"
	ChunkKindFunction ChunkKind = "function_or_method"
	ChunkKindText     ChunkKind = "text_block"
)

// FileDescriptor identifies a discovered source file.
type FileDescriptor struct {
	// Path is the file path relative to the repository root, with forward
	// slashes. All indexes key files by this path.
	Path string `json:"path"`

	// Language is the resolved language identifier, or "unknown".
	Language string `json:"language"`

	// SizeBytes is the file size at discovery time.
	SizeBytes int64 `json:"size_bytes"`
}

// Chunk is one contiguous region of a source file. Line numbers are 1-based
// and inclusive on both ends.
type Chunk struct {
	// ID is "<path>#<ordinal>" where ordinal is the zero-based position of
	// this chunk among the file's chunks in extraction order. IDs are
	// deterministic: re-extracting unchanged content yields the same IDs.
	ID string `json:"id"`

	FilePath  string    `json:"file_path"`
	Kind      ChunkKind `json:"kind"`
	Language  string    `json:"language"`
	StartLine int       `json:"start_line"`
	EndLine   int       `json:"end_line"`

	// Name is the declared symbol name for class and function chunks, or
	// "<start>-<end>" for text blocks.
	Name string `json:"name"`

	// SourceText is the exact source of lines StartLine..EndLine.
	SourceText string `json:"source_text"`

	// ParentID links a sub-chunk (a method inside a class) to its enclosing
	// class chunk. Empty for top-level chunks.
	ParentID string `json:"parent_id,omitempty"`
}

// ChunkID builds the deterministic chunk identifier for a file and ordinal.
func ChunkID(path string, ordinal int) string {
	return fmt.Sprintf("%s#%d", path, ordinal)
}

// DiscoveryWarning records a file that discovery saw but did not emit.
type DiscoveryWarning struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// FileChunks is the extraction result for one file: its chunks in order,
// plus whether structural parsing succeeded or the extractor fell back to
// size-based segmentation.
type FileChunks struct {
	File     FileDescriptor `json:"file"`
	Chunks   []Chunk        `json:"chunks"`
	Fallback bool           `json:"fallback"`

	// FallbackReason is set when Fallback is true: "no_grammar",
	// "parse_error", or "timeout".
	FallbackReason string `json:"fallback_reason,omitempty"`
}
