package indexer

import (
	"fmt"
	"sort"
	"sync"
)

// RepositoryIndex is the in-memory index of every chunk extracted from a
// repository. It is write-only during ingestion; Freeze switches it to
// read-only before any query surface sees it. Reads after Freeze need no
// locking coordination beyond the internal mutex.
type RepositoryIndex struct {
	mu     sync.RWMutex
	frozen bool

	files    []FileDescriptor
	warnings []DiscoveryWarning

	// ingested tracks file paths independently of chunksByFile, which never
	// gains a key for a file whose extraction produced zero chunks.
	ingested map[string]bool

	chunksByID   map[string]*Chunk
	chunksByFile map[string][]*Chunk

	// symbolToChunks maps a declared name to every chunk declaring it, in
	// ingestion order. Text blocks never appear here.
	symbolToChunks map[string][]*Chunk

	// order preserves global ingestion order across files.
	order []*Chunk
}

// NewRepositoryIndex creates an empty, unfrozen index.
func NewRepositoryIndex() *RepositoryIndex {
	return &RepositoryIndex{
		ingested:       make(map[string]bool),
		chunksByID:     make(map[string]*Chunk),
		chunksByFile:   make(map[string][]*Chunk),
		symbolToChunks: make(map[string][]*Chunk),
	}
}

// Ingest adds one file's extraction result. Ingesting after Freeze or
// ingesting a duplicate chunk ID is a programming error and fails loudly.
func (r *RepositoryIndex) Ingest(fc FileChunks) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("repository index is frozen")
	}
	if r.ingested[fc.File.Path] {
		return fmt.Errorf("file %s already ingested", fc.File.Path)
	}
	r.ingested[fc.File.Path] = true

	r.files = append(r.files, fc.File)

	for i := range fc.Chunks {
		chunk := fc.Chunks[i]
		if _, dup := r.chunksByID[chunk.ID]; dup {
			return fmt.Errorf("duplicate chunk ID %s", chunk.ID)
		}
		c := &chunk
		r.chunksByID[c.ID] = c
		r.chunksByFile[c.FilePath] = append(r.chunksByFile[c.FilePath], c)
		r.order = append(r.order, c)

		if c.Kind != ChunkKindText && c.Name != "" {
			r.symbolToChunks[c.Name] = append(r.symbolToChunks[c.Name], c)
		}
	}

	return nil
}

// AddWarnings records discovery warnings for later reporting.
func (r *RepositoryIndex) AddWarnings(warnings []DiscoveryWarning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, warnings...)
}

// Freeze makes the index read-only. Freezing twice is harmless.
func (r *RepositoryIndex) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether the index has been frozen.
func (r *RepositoryIndex) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// ChunkByID returns the chunk with the given ID, or false if absent.
func (r *RepositoryIndex) ChunkByID(id string) (Chunk, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.chunksByID[id]
	if !ok {
		return Chunk{}, false
	}
	return *c, true
}

// LookupBySymbol returns every chunk declaring the given name, in ingestion
// order. The result is a copy; callers may not mutate the index through it.
func (r *RepositoryIndex) LookupBySymbol(name string) []Chunk {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyChunks(r.symbolToChunks[name])
}

// ChunksForFile returns a file's chunks in extraction order.
func (r *RepositoryIndex) ChunksForFile(path string) []Chunk {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyChunks(r.chunksByFile[path])
}

// AllChunks returns every chunk in global ingestion order.
func (r *RepositoryIndex) AllChunks() []Chunk {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyChunks(r.order)
}

// Files returns the ingested file descriptors in ingestion order.
func (r *RepositoryIndex) Files() []FileDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FileDescriptor, len(r.files))
	copy(out, r.files)
	return out
}

// Warnings returns recorded discovery warnings.
func (r *RepositoryIndex) Warnings() []DiscoveryWarning {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]DiscoveryWarning, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// SymbolNames returns every declared symbol name, sorted.
func (r *RepositoryIndex) SymbolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.symbolToChunks))
	for name := range r.symbolToChunks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats summarizes the index contents.
type Stats struct {
	Files      int `json:"files"`
	Chunks     int `json:"chunks"`
	Symbols    int `json:"symbols"`
	TextBlocks int `json:"text_blocks"`
	Warnings   int `json:"warnings"`
}

// Stats returns summary counts for the index.
func (r *RepositoryIndex) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Stats{
		Files:    len(r.files),
		Chunks:   len(r.order),
		Symbols:  len(r.symbolToChunks),
		Warnings: len(r.warnings),
	}
	for _, c := range r.order {
		if c.Kind == ChunkKindText {
			s.TextBlocks++
		}
	}
	return s
}

func copyChunks(in []*Chunk) []Chunk {
	out := make([]Chunk, len(in))
	for i, c := range in {
		out[i] = *c
	}
	return out
}
