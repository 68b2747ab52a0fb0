package semantic

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codescope/internal/embed"
	"github.com/mvp-joe/codescope/internal/indexer"
)

// Test Plan for the semantic Index:
// - A query identical to an indexed window ranks it first (cosine)
// - topK larger than the index is clamped, not an error
// - Long chunks produce multiple windows with stable vector IDs
// - A failed build leaves the previous state queryable
// - ip and l2 spaces return results ordered by their measure
// - Results are deterministic across repeated queries

func testChunks() []indexer.Chunk {
	return []indexer.Chunk{
		{ID: "a.py#0", FilePath: "a.py", Kind: indexer.ChunkKindFunction, Name: "parse",
			SourceText: "def parse(data):\n    return json.loads(data)"},
		{ID: "a.py#1", FilePath: "a.py", Kind: indexer.ChunkKindFunction, Name: "render",
			SourceText: "def render(tmpl):\n    return tmpl.format()"},
		{ID: "b.py#0", FilePath: "b.py", Kind: indexer.ChunkKindClass, Name: "Cache",
			SourceText: "class Cache:\n    def get(self, key):\n        return self.data[key]"},
	}
}

func buildTestIndex(t *testing.T, space string) *Index {
	t.Helper()
	idx := NewIndex(embed.NewMockProvider(), space, 500, 50, embed.DefaultRetryConfig(2))
	require.NoError(t, idx.Build(context.Background(), testChunks(), nil))
	return idx
}

func TestIndex_IdenticalWindowRanksFirst(t *testing.T) {
	t.Parallel()

	idx := buildTestIndex(t, "cosine")

	// The mock provider is deterministic, so an identical query text embeds
	// to the identical vector and must win.
	query := "def parse(data):\n    return json.loads(data)"
	results, err := idx.Query(context.Background(), query, 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "a.py#0", results[0].ChunkID)
	assert.Equal(t, "a.py#0@0", results[0].VectorID)
	assert.InDelta(t, 1.0, float64(results[0].Score), 1e-3)
}

func TestIndex_TopKClamped(t *testing.T) {
	t.Parallel()

	idx := buildTestIndex(t, "cosine")
	require.Equal(t, 3, idx.Count())

	results, err := idx.Query(context.Background(), "anything", 50)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	_, err = idx.Query(context.Background(), "anything", 0)
	assert.Error(t, err)
}

func TestIndex_WindowSplitting(t *testing.T) {
	t.Parallel()

	long := ""
	for i := 0; i < 30; i++ {
		long += fmt.Sprintf("line %02d of a very long chunk body\n", i)
	}
	chunks := []indexer.Chunk{
		{ID: "big.py#0", FilePath: "big.py", Kind: indexer.ChunkKindClass, Name: "Big", SourceText: long},
	}

	idx := NewIndex(embed.NewMockProvider(), "cosine", 100, 50, embed.DefaultRetryConfig(2))
	require.NoError(t, idx.Build(context.Background(), chunks, nil))

	// len(long) runes split into 100-rune windows.
	want := (len([]rune(long)) + 99) / 100
	assert.Equal(t, want, idx.Count())

	results, err := idx.Query(context.Background(), "long chunk body", 5)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, "big.py#0", r.ChunkID)
	}
}

// failingProvider fails every Embed call in passage mode after the first
// successful build, to exercise build atomicity.
type failingProvider struct {
	embed.Provider
	fail bool
}

func (p *failingProvider) Embed(ctx context.Context, texts []string, mode embed.EmbedMode) ([][]float32, error) {
	if p.fail && mode == embed.EmbedModePassage {
		return nil, fmt.Errorf("synthetic embedding outage")
	}
	return p.Provider.Embed(ctx, texts, mode)
}

func TestIndex_FailedBuildKeepsOldState(t *testing.T) {
	t.Parallel()

	provider := &failingProvider{Provider: embed.NewMockProvider()}
	retry := embed.RetryConfig{MaxAttempts: 1, BaseDelay: 0, MaxDelay: 0, Multiplier: 1}
	idx := NewIndex(provider, "cosine", 500, 50, retry)

	require.NoError(t, idx.Build(context.Background(), testChunks(), nil))
	require.Equal(t, 3, idx.Count())

	provider.fail = true
	err := idx.Build(context.Background(), append(testChunks(), indexer.Chunk{
		ID: "c.py#0", FilePath: "c.py", Kind: indexer.ChunkKindFunction, Name: "extra", SourceText: "def extra(): pass",
	}), nil)
	require.Error(t, err)

	// Old state still serves queries.
	assert.Equal(t, 3, idx.Count())
	results, qerr := idx.Query(context.Background(), "def parse(data):\n    return json.loads(data)", 1)
	require.NoError(t, qerr)
	require.Len(t, results, 1)
	assert.Equal(t, "a.py#0", results[0].ChunkID)
}

func TestIndex_ScanSpaces(t *testing.T) {
	t.Parallel()

	for _, space := range []string{"ip", "l2"} {
		t.Run(space, func(t *testing.T) {
			t.Parallel()

			idx := buildTestIndex(t, space)
			query := "def render(tmpl):\n    return tmpl.format()"
			results, err := idx.Query(context.Background(), query, 3)
			require.NoError(t, err)
			require.Len(t, results, 3)

			// Identical vector maximizes inner product with itself among
			// these vectors and has zero L2 distance.
			assert.Equal(t, "a.py#1", results[0].ChunkID)
			for i := 1; i < len(results); i++ {
				assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
			}
		})
	}
}

func TestIndex_DeterministicQueries(t *testing.T) {
	t.Parallel()

	idx := buildTestIndex(t, "cosine")
	first, err := idx.Query(context.Background(), "cache lookup", 3)
	require.NoError(t, err)
	second, err := idx.Query(context.Background(), "cache lookup", 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestIndex_EmptyIndex(t *testing.T) {
	t.Parallel()

	idx := NewIndex(embed.NewMockProvider(), "cosine", 500, 50, embed.DefaultRetryConfig(2))
	require.NoError(t, idx.Build(context.Background(), nil, nil))

	results, err := idx.Query(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
