// Package engine wires discovery, extraction, and the three query indexes
// into one indexing pipeline and owns the published state the CLI reads.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/codescope/internal/config"
	"github.com/mvp-joe/codescope/internal/embed"
	"github.com/mvp-joe/codescope/internal/fulltext"
	"github.com/mvp-joe/codescope/internal/indexer"
	"github.com/mvp-joe/codescope/internal/lang"
	"github.com/mvp-joe/codescope/internal/semantic"
	"github.com/mvp-joe/codescope/internal/xref"
)

// RunReport summarizes one completed indexing run.
type RunReport struct {
	RunID      string                     `json:"run_id"`
	Stats      indexer.Stats              `json:"stats"`
	References int                        `json:"references"`
	Vectors    int                        `json:"vectors"`
	Warnings   []indexer.DiscoveryWarning `json:"warnings,omitempty"`
	Duration   time.Duration              `json:"duration"`
}

// Engine runs the indexing pipeline and serves queries from the result.
// Reindex replaces the published state atomically; queries during a rebuild
// keep reading the previous state.
type Engine struct {
	cfg      *config.Config
	rootDir  string
	registry *lang.Registry
	provider embed.Provider
	progress ProgressReporter

	discovery *indexer.FileDiscovery
	extractor *indexer.ChunkExtractor

	mu        sync.RWMutex
	repo      *indexer.RepositoryIndex
	refs      []xref.Reference
	fileGraph *xref.FileGraph
	semantic  *semantic.Index
	fulltext  *fulltext.Index
	report    RunReport
}

// New creates an engine for rootDir. The provider is used for both passage
// embeddings at build time and query embeddings at search time.
func New(rootDir string, cfg *config.Config, provider embed.Provider, progress ProgressReporter) (*Engine, error) {
	registry := lang.NewRegistry(&cfg.Languages)

	discovery, err := indexer.NewFileDiscovery(rootDir, &cfg.Analysis, registry)
	if err != nil {
		return nil, fmt.Errorf("invalid discovery patterns: %w", err)
	}

	if progress == nil {
		progress = NoopProgress{}
	}

	return &Engine{
		cfg:       cfg,
		rootDir:   rootDir,
		registry:  registry,
		provider:  provider,
		progress:  progress,
		discovery: discovery,
		extractor: indexer.NewChunkExtractor(registry, &cfg.Chunking),
	}, nil
}

// Index runs the full pipeline: discover files, extract chunks in parallel,
// build the repository index, then build the cross-reference, semantic, and
// full-text indexes concurrently. On success the new state is published; on
// failure the previously published state (if any) stays live.
func (e *Engine) Index(ctx context.Context) (RunReport, error) {
	start := time.Now()
	runID := uuid.NewString()

	files, warnings, err := e.discovery.Discover()
	if err != nil {
		return RunReport{}, fmt.Errorf("discovery failed: %w", err)
	}
	e.progress.OnDiscoveryComplete(len(files), len(warnings))

	repo := indexer.NewRepositoryIndex()
	repo.AddWarnings(warnings)

	// Extract in parallel, but ingest in discovery order so chunk ordering
	// and downstream tie-breaks stay deterministic regardless of worker
	// scheduling.
	results := make([]indexer.FileChunks, len(files))
	skipped := make([]bool, len(files))
	readWarnings := make([]indexer.DiscoveryWarning, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())

	var processed int64
	var processedMu sync.Mutex

	for i := range files {
		g.Go(func() error {
			file := files[i]
			source, err := e.discovery.ReadFile(file)
			if err != nil {
				// The file vanished or became unreadable after discovery.
				// Skip it and keep the run going.
				skipped[i] = true
				readWarnings[i] = indexer.DiscoveryWarning{
					Path:   file.Path,
					Reason: "read failed: " + err.Error(),
				}
			} else {
				results[i] = e.extractor.Extract(gctx, file, source)
			}

			processedMu.Lock()
			processed++
			n := processed
			processedMu.Unlock()
			e.progress.OnFileChunked(int(n), len(files), file.Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RunReport{}, err
	}

	var skipWarnings []indexer.DiscoveryWarning
	for i, fc := range results {
		if skipped[i] {
			skipWarnings = append(skipWarnings, readWarnings[i])
			continue
		}
		if err := repo.Ingest(fc); err != nil {
			return RunReport{}, err
		}
	}
	repo.AddWarnings(skipWarnings)
	warnings = append(warnings, skipWarnings...)
	repo.Freeze()

	// Downstream indexes read the frozen repository concurrently.
	refs, fileGraph, semIdx, ftIdx, err := e.buildDerivedIndexes(ctx, repo)
	if err != nil {
		return RunReport{}, err
	}

	report := RunReport{
		RunID:      runID,
		Stats:      repo.Stats(),
		References: len(refs),
		Vectors:    semIdx.Count(),
		Warnings:   warnings,
		Duration:   time.Since(start),
	}

	e.mu.Lock()
	old := e.fulltext
	e.repo = repo
	e.refs = refs
	e.fileGraph = fileGraph
	e.semantic = semIdx
	e.fulltext = ftIdx
	e.report = report
	e.mu.Unlock()

	if old != nil {
		old.Close()
	}

	e.progress.OnIndexComplete(report)
	return report, nil
}

// buildDerivedIndexes builds the cross-reference resolution, the semantic
// index, and the full-text index from a frozen repository.
func (e *Engine) buildDerivedIndexes(ctx context.Context, repo *indexer.RepositoryIndex) ([]xref.Reference, *xref.FileGraph, *semantic.Index, *fulltext.Index, error) {
	chunks := repo.AllChunks()

	var refs []xref.Reference
	var fileGraph *xref.FileGraph
	semIdx := semantic.NewIndex(
		e.provider,
		e.cfg.ContentIndex.CollectionSpace,
		e.cfg.ContentIndex.ChunkSize,
		e.cfg.Indexer.EmbedBatchSize,
		embed.DefaultRetryConfig(e.cfg.Indexer.EmbedRetries),
	)
	ftIdx, err := fulltext.NewIndex()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resolver := xref.NewResolver(e.cfg.CrossReference.MinSymbolLength)
		refs = resolver.Resolve(repo)
		var err error
		fileGraph, err = xref.BuildFileGraph(repo, refs)
		return err
	})

	g.Go(func() error {
		progressCh := make(chan embed.BatchProgress, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for p := range progressCh {
				e.progress.OnEmbedding(p)
			}
		}()
		err := semIdx.Build(gctx, chunks, progressCh)
		close(progressCh)
		<-done
		return err
	})

	g.Go(func() error {
		return ftIdx.Build(gctx, chunks)
	})

	if err := g.Wait(); err != nil {
		ftIdx.Close()
		return nil, nil, nil, nil, err
	}

	return refs, fileGraph, semIdx, ftIdx, nil
}

func (e *Engine) workers() int {
	if e.cfg.Indexer.Workers > 0 {
		return e.cfg.Indexer.Workers
	}
	return runtime.NumCPU()
}

// errNotIndexed is returned by query methods before the first successful run.
var errNotIndexed = fmt.Errorf("no index built yet; run the index operation first")

// Repository returns the published repository index.
func (e *Engine) Repository() (*indexer.RepositoryIndex, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.repo == nil {
		return nil, errNotIndexed
	}
	return e.repo, nil
}

// References returns the published cross-references.
func (e *Engine) References() ([]xref.Reference, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.repo == nil {
		return nil, errNotIndexed
	}
	return e.refs, nil
}

// FileGraph returns the published file dependency graph.
func (e *Engine) FileGraph() (*xref.FileGraph, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.fileGraph == nil {
		return nil, errNotIndexed
	}
	return e.fileGraph, nil
}

// SemanticQuery runs a similarity query against the published vector index.
// topK <= 0 uses the configured default.
func (e *Engine) SemanticQuery(ctx context.Context, query string, topK int) ([]semantic.SearchResult, error) {
	e.mu.RLock()
	idx := e.semantic
	e.mu.RUnlock()
	if idx == nil {
		return nil, errNotIndexed
	}
	if topK <= 0 {
		topK = e.cfg.ContentIndex.SearchTopK
	}
	return idx.Query(ctx, query, topK)
}

// TextSearch runs a keyword query against the published full-text index.
func (e *Engine) TextSearch(ctx context.Context, query, language string, limit int) ([]fulltext.Result, error) {
	e.mu.RLock()
	idx := e.fulltext
	e.mu.RUnlock()
	if idx == nil {
		return nil, errNotIndexed
	}
	return idx.Search(ctx, query, language, limit)
}

// LastReport returns the report of the most recent successful run.
func (e *Engine) LastReport() (RunReport, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.repo == nil {
		return RunReport{}, errNotIndexed
	}
	return e.report, nil
}

// Watch starts watch mode: an initial index, then a full rebuild after each
// debounced batch of file changes. Blocks until ctx is cancelled.
func (e *Engine) Watch(ctx context.Context) error {
	e.mu.RLock()
	built := e.repo != nil
	e.mu.RUnlock()
	if !built {
		if _, err := e.Index(ctx); err != nil {
			return err
		}
	}

	watcher, err := indexer.NewWatcher(e.rootDir, e.discovery, func(ctx context.Context, changed []string) {
		e.progress.OnChangesDetected(changed)
		if _, err := e.Index(ctx); err != nil {
			e.progress.OnReindexError(err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	watcher.Start(ctx)
	defer watcher.Stop()

	<-ctx.Done()
	return ctx.Err()
}

// Close releases resources held by the published indexes and the provider.
func (e *Engine) Close() error {
	e.mu.Lock()
	ft := e.fulltext
	e.fulltext = nil
	e.mu.Unlock()

	if ft != nil {
		ft.Close()
	}
	return e.provider.Close()
}
