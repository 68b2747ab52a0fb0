package xref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codescope/internal/indexer"
)

// Test Plan for the Resolver:
// - Whole-word occurrences of declared symbols become references
// - Substring matches do not
// - Chunks declaring a symbol are not references to it
// - Class chunks containing a declaring sub-chunk are not references
// - Symbols shorter than the minimum length are skipped
// - Resolution is deterministic and read-only

func buildIndex(t *testing.T, files ...indexer.FileChunks) *indexer.RepositoryIndex {
	t.Helper()
	repo := indexer.NewRepositoryIndex()
	for _, fc := range files {
		require.NoError(t, repo.Ingest(fc))
	}
	repo.Freeze()
	return repo
}

func fileWith(path string, chunks ...indexer.Chunk) indexer.FileChunks {
	for i := range chunks {
		chunks[i].FilePath = path
		chunks[i].ID = indexer.ChunkID(path, i)
		if chunks[i].Language == "" {
			chunks[i].Language = "python"
		}
	}
	return indexer.FileChunks{
		File:   indexer.FileDescriptor{Path: path, Language: "python"},
		Chunks: chunks,
	}
}

func TestResolver_WholeWordOnly(t *testing.T) {
	t.Parallel()

	repo := buildIndex(t,
		fileWith("lib.py",
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "render", StartLine: 1, EndLine: 3,
				SourceText: "def render():\n    pass"},
		),
		fileWith("app.py",
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "main", StartLine: 1, EndLine: 3,
				SourceText: "def main():\n    render()"},
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "other", StartLine: 4, EndLine: 6,
				SourceText: "def other():\n    prerender()"},
		),
	)

	refs := NewResolver(4).Resolve(repo)

	renderRefs := ReferencesTo(refs, "render")
	require.Len(t, renderRefs, 1, "substring prerender must not match")
	assert.Equal(t, "app.py#0", renderRefs[0].FromChunkID)
	assert.Equal(t, "app.py", renderRefs[0].FromFile)
	assert.Equal(t, []string{"lib.py#0"}, renderRefs[0].ToChunkIDs)
}

func TestResolver_SkipsDeclarations(t *testing.T) {
	t.Parallel()

	repo := buildIndex(t,
		fileWith("widget.py",
			indexer.Chunk{Kind: indexer.ChunkKindClass, Name: "Widget", StartLine: 1, EndLine: 6,
				SourceText: "class Widget:\n    def resize(self):\n        pass"},
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "resize", StartLine: 2, EndLine: 3,
				SourceText: "def resize(self):\n        pass", ParentID: "widget.py#0"},
		),
	)

	refs := NewResolver(4).Resolve(repo)

	// The class chunk contains "resize" textually, but only because its
	// sub-chunk declares it.
	assert.Empty(t, ReferencesTo(refs, "resize"))
	assert.Empty(t, ReferencesTo(refs, "Widget"))
}

func TestResolver_MinSymbolLength(t *testing.T) {
	t.Parallel()

	repo := buildIndex(t,
		fileWith("a.py",
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "run", StartLine: 1, EndLine: 2,
				SourceText: "def run():\n    pass"},
		),
		fileWith("b.py",
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "invoke", StartLine: 1, EndLine: 2,
				SourceText: "def invoke():\n    run()"},
		),
	)

	assert.Empty(t, NewResolver(4).Resolve(repo), "3-char symbol below minimum")
	assert.Len(t, NewResolver(3).Resolve(repo), 1)
}

func TestResolver_Deterministic(t *testing.T) {
	t.Parallel()

	repo := buildIndex(t,
		fileWith("lib.py",
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "alpha", StartLine: 1, EndLine: 2, SourceText: "def alpha(): pass"},
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "gamma", StartLine: 3, EndLine: 4, SourceText: "def gamma(): alpha()"},
		),
		fileWith("app.py",
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "user1", StartLine: 1, EndLine: 2, SourceText: "def user1(): alpha(); gamma()"},
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "user2", StartLine: 3, EndLine: 4, SourceText: "def user2(): gamma()"},
		),
	)

	resolver := NewResolver(4)
	first := resolver.Resolve(repo)
	second := resolver.Resolve(repo)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"alpha", "gamma"}, SymbolsReferenced(first))
}

func TestResolver_MetacharactersInName(t *testing.T) {
	t.Parallel()

	// Fallback-named chunks never declare symbols, but a declared name with
	// regexp metacharacters must stay a literal match.
	repo := buildIndex(t,
		fileWith("odd.py",
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "do.it", StartLine: 1, EndLine: 2, SourceText: "def weird(): pass"},
		),
		fileWith("app.py",
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "caller", StartLine: 1, EndLine: 2, SourceText: "x = doXit"},
		),
	)

	refs := NewResolver(4).Resolve(repo)
	assert.Empty(t, ReferencesTo(refs, "do.it"), "dot must not match any character")
}
