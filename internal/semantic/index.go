package semantic

import (
	"context"
	"fmt"
	"sort"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/mvp-joe/codescope/internal/embed"
	"github.com/mvp-joe/codescope/internal/indexer"
)

// Record is one embedded window kept in the index. VectorID is
// "<chunkID>@<windowStart>", unique across the repository.
type Record struct {
	VectorID    string
	ChunkID     string
	WindowStart int
	Text        string
	Vector      []float32

	// ord is the record's position in build order, used for deterministic
	// tie-breaking between equal scores.
	ord int
}

// SearchResult is one query hit. Score is higher-is-better in every space:
// cosine similarity, inner product, or negated squared L2 distance.
type SearchResult struct {
	VectorID    string  `json:"vector_id"`
	ChunkID     string  `json:"chunk_id"`
	WindowStart int     `json:"window_start"`
	Score       float32 `json:"score"`
	Text        string  `json:"text"`
}

// Index is the semantic vector index. Builds are all-or-nothing: a failed
// build leaves the previously published state untouched, and queries keep
// serving it. Safe for concurrent use.
type Index struct {
	provider   embed.Provider
	space      string
	windowSize int
	batchSize  int
	retry      embed.RetryConfig

	mu         sync.RWMutex
	collection *chromem.Collection
	records    []Record
	byVectorID map[string]*Record
}

// NewIndex creates an empty semantic index. space selects the similarity
// measure: "cosine" (served by the vector database), or "ip"/"l2" (served
// by exhaustive scan, which is exact and fine at repository scale).
// windowSize is the embedding window size in runes.
func NewIndex(provider embed.Provider, space string, windowSize, batchSize int, retry embed.RetryConfig) *Index {
	return &Index{
		provider:   provider,
		space:      space,
		windowSize: windowSize,
		batchSize:  batchSize,
		retry:      retry,
	}
}

// Build embeds every chunk's windows and replaces the index contents. The
// new state is assembled off to the side and swapped in only on full
// success; any embedding failure aborts the build with the old state intact.
func (x *Index) Build(ctx context.Context, chunks []indexer.Chunk, progressCh chan<- embed.BatchProgress) error {
	var records []Record
	var texts []string

	for _, chunk := range chunks {
		for _, w := range SplitWindows(chunk.SourceText, x.windowSize) {
			records = append(records, Record{
				VectorID:    fmt.Sprintf("%s@%d", chunk.ID, w.Start),
				ChunkID:     chunk.ID,
				WindowStart: w.Start,
				Text:        w.Text,
				ord:         len(records),
			})
			texts = append(texts, w.Text)
		}
	}

	vectors, err := embed.EmbedBatches(ctx, x.provider, texts, embed.EmbedModePassage, x.batchSize, x.retry, progressCh)
	if err != nil {
		return fmt.Errorf("embedding failed, index unchanged: %w", err)
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection("codescope", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	byVectorID := make(map[string]*Record, len(records))
	for i := range records {
		records[i].Vector = vectors[i]
		byVectorID[records[i].VectorID] = &records[i]

		doc := chromem.Document{
			ID:        records[i].VectorID,
			Content:   records[i].Text,
			Embedding: records[i].Vector,
			Metadata:  map[string]string{"chunk_id": records[i].ChunkID},
		}
		if err := collection.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("failed to add vector %s: %w", records[i].VectorID, err)
		}
	}

	x.mu.Lock()
	x.collection = collection
	x.records = records
	x.byVectorID = byVectorID
	x.mu.Unlock()

	return nil
}

// Query embeds the query text and returns the topK nearest windows. topK
// larger than the index is clamped, never an error. Equal scores are
// ordered by build order, so results are fully deterministic.
func (x *Index) Query(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	if topK < 1 {
		return nil, fmt.Errorf("topK must be >= 1, got %d", topK)
	}

	vectors, err := x.provider.Embed(ctx, []string{query}, embed.EmbedModeQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}
	queryVec := vectors[0]

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.records) == 0 {
		return []SearchResult{}, nil
	}
	if topK > len(x.records) {
		topK = len(x.records)
	}

	switch x.space {
	case "cosine":
		return x.queryCosine(ctx, queryVec, topK)
	default:
		return x.queryScan(queryVec, topK), nil
	}
}

// Count returns the number of indexed windows.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.records)
}

// queryCosine delegates to the vector database, then re-sorts with the
// deterministic tie-break.
func (x *Index) queryCosine(ctx context.Context, queryVec []float32, topK int) ([]SearchResult, error) {
	docs, err := x.collection.QueryEmbedding(ctx, queryVec, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(docs))
	for _, doc := range docs {
		rec := x.byVectorID[doc.ID]
		if rec == nil {
			continue
		}
		results = append(results, SearchResult{
			VectorID:    rec.VectorID,
			ChunkID:     rec.ChunkID,
			WindowStart: rec.WindowStart,
			Score:       doc.Similarity,
			Text:        rec.Text,
		})
	}
	x.sortDeterministic(results)
	return results, nil
}

// queryScan ranks every record by the configured measure.
func (x *Index) queryScan(queryVec []float32, topK int) []SearchResult {
	results := make([]SearchResult, 0, len(x.records))
	for i := range x.records {
		rec := &x.records[i]
		var score float32
		switch x.space {
		case "ip":
			score = dot(queryVec, rec.Vector)
		case "l2":
			score = -l2Squared(queryVec, rec.Vector)
		}
		results = append(results, SearchResult{
			VectorID:    rec.VectorID,
			ChunkID:     rec.ChunkID,
			WindowStart: rec.WindowStart,
			Score:       score,
			Text:        rec.Text,
		})
	}
	x.sortDeterministic(results)
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// sortDeterministic orders by score descending, then build order ascending.
func (x *Index) sortDeterministic(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		oi, oj := 0, 0
		if r := x.byVectorID[results[i].VectorID]; r != nil {
			oi = r.ord
		}
		if r := x.byVectorID[results[j].VectorID]; r != nil {
			oj = r.ord
		}
		return oi < oj
	})
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		if i >= len(b) {
			break
		}
		sum += a[i] * b[i]
	}
	return sum
}

func l2Squared(a, b []float32) float32 {
	var sum float32
	for i := range a {
		if i >= len(b) {
			break
		}
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
