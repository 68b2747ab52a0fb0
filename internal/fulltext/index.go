// Package fulltext provides keyword search over chunks with an in-memory
// bleve index: field-scoped queries, boolean operators, phrases, wildcards,
// and highlighted snippets.
package fulltext

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mvp-joe/codescope/internal/indexer"
)

// Result is one keyword search hit.
type Result struct {
	ChunkID    string   `json:"chunk_id"`
	FilePath   string   `json:"file_path"`
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Language   string   `json:"language"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights"` // matching snippets with <em> tags
}

// Index is an in-memory full-text index over chunks. Safe for concurrent
// searches; Build replaces the contents atomically.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
}

// NewIndex creates an empty full-text index.
func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &Index{index: idx}, nil
}

// buildMapping creates the index mapping for chunk documents. Identifier-ish
// fields use the keyword analyzer for exact matching; text and paths use the
// standard analyzer.
func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	textMapping := bleve.NewTextFieldMapping()
	textMapping.Analyzer = "standard"
	textMapping.Store = true
	textMapping.Index = true
	textMapping.IncludeTermVectors = true // enable phrase search

	keywordMapping := bleve.NewTextFieldMapping()
	keywordMapping.Analyzer = "keyword"
	keywordMapping.Store = true
	keywordMapping.Index = true

	pathMapping := bleve.NewTextFieldMapping()
	pathMapping.Analyzer = "standard"
	pathMapping.Store = true
	pathMapping.Index = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("text", textMapping)
	docMapping.AddFieldMappingsAt("name", keywordMapping)
	docMapping.AddFieldMappingsAt("kind", keywordMapping)
	docMapping.AddFieldMappingsAt("language", keywordMapping)
	docMapping.AddFieldMappingsAt("file_path", pathMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Build indexes all chunks, replacing any previous contents. Batching keeps
// initial load fast on large repositories.
func (x *Index) Build(ctx context.Context, chunks []indexer.Chunk) error {
	const batchSize = 1000

	fresh, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return fmt.Errorf("failed to create bleve index: %w", err)
	}

	batch := fresh.NewBatch()
	for i, chunk := range chunks {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				fresh.Close()
				return err
			}
		}

		doc := map[string]interface{}{
			"text":      chunk.SourceText,
			"name":      chunk.Name,
			"kind":      string(chunk.Kind),
			"language":  chunk.Language,
			"file_path": chunk.FilePath,
		}
		if err := batch.Index(chunk.ID, doc); err != nil {
			fresh.Close()
			return fmt.Errorf("failed to add chunk %s to batch: %w", chunk.ID, err)
		}

		if batch.Size() >= batchSize {
			if err := fresh.Batch(batch); err != nil {
				fresh.Close()
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = fresh.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := fresh.Batch(batch); err != nil {
			fresh.Close()
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}

	x.mu.Lock()
	old := x.index
	x.index = fresh
	x.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// Search executes a keyword search using bleve query string syntax, with an
// optional exact language filter. Results include highlighted snippets from
// the chunk text.
func (x *Index) Search(ctx context.Context, queryStr, language string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 15
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var queries []query.Query
	queries = append(queries, bleve.NewQueryStringQuery(queryStr))

	if language != "" {
		langQuery := bleve.NewMatchQuery(language)
		langQuery.SetField("language")
		queries = append(queries, langQuery)
	}

	var finalQuery query.Query
	if len(queries) == 1 {
		finalQuery = queries[0]
	} else {
		finalQuery = bleve.NewConjunctionQuery(queries...)
	}

	searchRequest := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	highlightStyle := "html"
	searchRequest.Highlight = bleve.NewHighlight()
	searchRequest.Highlight.Style = &highlightStyle
	searchRequest.Highlight.Fields = []string{"text"}
	searchRequest.Fields = []string{"name", "kind", "language", "file_path"}

	searchResult, err := x.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	results := make([]Result, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		name, _ := hit.Fields["name"].(string)
		kind, _ := hit.Fields["kind"].(string)
		lang, _ := hit.Fields["language"].(string)
		filePath, _ := hit.Fields["file_path"].(string)

		var highlights []string
		for _, fragments := range hit.Fragments {
			highlights = append(highlights, fragments...)
		}

		results = append(results, Result{
			ChunkID:    hit.ID,
			FilePath:   filePath,
			Name:       name,
			Kind:       kind,
			Language:   lang,
			Score:      hit.Score,
			Highlights: highlights,
		})
	}

	return results, nil
}

// Close releases index resources.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.index == nil {
		return nil
	}
	err := x.index.Close()
	x.index = nil
	return err
}
