package xref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codescope/internal/indexer"
)

// Test Plan for FileGraph:
// - References lift to file-level edges, deduplicated
// - Self-references produce no edges
// - Dependencies and dependents are inverses
// - CentralFiles ranks by dependent count with path tie-break
// - EntryPoints are files with dependencies but no dependents

func graphFixture(t *testing.T) (*indexer.RepositoryIndex, *FileGraph) {
	t.Helper()

	// core.py declares parse_input and validate; cli.py and web.py use them;
	// util.py stands alone.
	repo := buildIndex(t,
		fileWith("cli.py",
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "cli_main", StartLine: 1, EndLine: 3,
				SourceText: "def cli_main():\n    parse_input()\n    validate()"},
		),
		fileWith("core.py",
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "parse_input", StartLine: 1, EndLine: 2, SourceText: "def parse_input(): pass"},
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "validate", StartLine: 3, EndLine: 4, SourceText: "def validate(): pass"},
		),
		fileWith("util.py",
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "shuffle", StartLine: 1, EndLine: 2, SourceText: "def shuffle(): pass"},
		),
		fileWith("web.py",
			indexer.Chunk{Kind: indexer.ChunkKindFunction, Name: "handler", StartLine: 1, EndLine: 2,
				SourceText: "def handler():\n    return parse_input()"},
		),
	)

	refs := NewResolver(4).Resolve(repo)
	fg, err := BuildFileGraph(repo, refs)
	require.NoError(t, err)
	return repo, fg
}

func TestFileGraph_Edges(t *testing.T) {
	t.Parallel()

	_, fg := graphFixture(t)

	// cli.py references two symbols in core.py but that is one edge.
	assert.Equal(t, []string{"core.py"}, fg.Dependencies("cli.py"))
	assert.Equal(t, []string{"core.py"}, fg.Dependencies("web.py"))
	assert.Empty(t, fg.Dependencies("core.py"))
	assert.Empty(t, fg.Dependencies("util.py"))

	assert.Equal(t, []string{"cli.py", "web.py"}, fg.Dependents("core.py"))
	assert.Equal(t, 2, fg.EdgeCount())
}

func TestFileGraph_CentralAndEntries(t *testing.T) {
	t.Parallel()

	_, fg := graphFixture(t)

	ranks := fg.CentralFiles(2)
	require.Len(t, ranks, 2)
	assert.Equal(t, FileRank{Path: "core.py", Dependents: 2}, ranks[0])
	assert.Equal(t, 0, ranks[1].Dependents)

	assert.Equal(t, []string{"cli.py", "web.py"}, fg.EntryPoints())
}
