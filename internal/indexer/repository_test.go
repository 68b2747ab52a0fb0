package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for RepositoryIndex:
// - Ingested chunks are retrievable by ID, file, and symbol name
// - Symbol lookup preserves ingestion order and skips text blocks
// - Ingest after Freeze fails
// - Duplicate files and duplicate chunk IDs fail
// - Stats counts files, chunks, symbols, and text blocks

func sampleFileChunks(path string) FileChunks {
	return FileChunks{
		File: FileDescriptor{Path: path, Language: "python", SizeBytes: 100},
		Chunks: []Chunk{
			{ID: ChunkID(path, 0), FilePath: path, Kind: ChunkKindClass, Name: "Widget", Language: "python", StartLine: 1, EndLine: 10, SourceText: "class Widget: ..."},
			{ID: ChunkID(path, 1), FilePath: path, Kind: ChunkKindFunction, Name: "render", Language: "python", StartLine: 3, EndLine: 6, SourceText: "def render...", ParentID: ChunkID(path, 0)},
			{ID: ChunkID(path, 2), FilePath: path, Kind: ChunkKindText, Name: "11-12", Language: "python", StartLine: 11, EndLine: 12, SourceText: "# misc"},
		},
	}
}

func TestRepository_IngestAndLookup(t *testing.T) {
	t.Parallel()

	repo := NewRepositoryIndex()
	require.NoError(t, repo.Ingest(sampleFileChunks("a.py")))
	require.NoError(t, repo.Ingest(sampleFileChunks("b.py")))
	repo.Freeze()

	chunk, ok := repo.ChunkByID("a.py#1")
	require.True(t, ok)
	assert.Equal(t, "render", chunk.Name)
	assert.Equal(t, "a.py#0", chunk.ParentID)

	// Symbol lookup spans files, in ingestion order.
	widgets := repo.LookupBySymbol("Widget")
	require.Len(t, widgets, 2)
	assert.Equal(t, "a.py#0", widgets[0].ID)
	assert.Equal(t, "b.py#0", widgets[1].ID)

	// Text block names are not symbols.
	assert.Empty(t, repo.LookupBySymbol("11-12"))

	assert.Len(t, repo.ChunksForFile("a.py"), 3)
	assert.Len(t, repo.AllChunks(), 6)
	assert.Equal(t, []string{"Widget", "render"}, repo.SymbolNames())
}

func TestRepository_FreezeRejectsIngest(t *testing.T) {
	t.Parallel()

	repo := NewRepositoryIndex()
	require.NoError(t, repo.Ingest(sampleFileChunks("a.py")))
	repo.Freeze()

	assert.True(t, repo.Frozen())
	err := repo.Ingest(sampleFileChunks("b.py"))
	assert.Error(t, err)

	// Freezing twice is harmless.
	repo.Freeze()
	assert.True(t, repo.Frozen())
}

func TestRepository_DuplicateFile(t *testing.T) {
	t.Parallel()

	repo := NewRepositoryIndex()
	require.NoError(t, repo.Ingest(sampleFileChunks("a.py")))
	assert.Error(t, repo.Ingest(sampleFileChunks("a.py")))
}

func TestRepository_DuplicateChunklessFile(t *testing.T) {
	t.Parallel()

	// A file with no chunks must still be guarded against re-ingestion.
	empty := FileChunks{File: FileDescriptor{Path: "e.py", Language: "python"}}

	repo := NewRepositoryIndex()
	require.NoError(t, repo.Ingest(empty))
	assert.Error(t, repo.Ingest(empty))
	assert.Len(t, repo.Files(), 1)
}

func TestRepository_Stats(t *testing.T) {
	t.Parallel()

	repo := NewRepositoryIndex()
	require.NoError(t, repo.Ingest(sampleFileChunks("a.py")))
	repo.AddWarnings([]DiscoveryWarning{{Path: "big.py", Reason: "exceeds max_file_size"}})
	repo.Freeze()

	stats := repo.Stats()
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 3, stats.Chunks)
	assert.Equal(t, 2, stats.Symbols)
	assert.Equal(t, 1, stats.TextBlocks)
	assert.Equal(t, 1, stats.Warnings)

	require.Len(t, repo.Warnings(), 1)
}

func TestRepository_MissingChunk(t *testing.T) {
	t.Parallel()

	repo := NewRepositoryIndex()
	repo.Freeze()

	_, ok := repo.ChunkByID("nope#0")
	assert.False(t, ok)
	assert.Empty(t, repo.LookupBySymbol("nope"))
	assert.Empty(t, repo.ChunksForFile("nope.py"))
}
