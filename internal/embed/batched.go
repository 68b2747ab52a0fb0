package embed

import (
	"context"
	"fmt"
)

// BatchProgress reports embedding progress after each completed batch.
type BatchProgress struct {
	BatchIndex      int // current batch number (1-indexed)
	TotalBatches    int
	ProcessedChunks int
	TotalChunks     int
}

// EmbedBatches embeds texts in fixed-size batches with per-batch retry and
// optional progress reporting. Results come back in input order. Any batch
// that exhausts its retries fails the whole call; callers treat the result
// as all-or-nothing.
//
// progressCh may be nil to disable progress. The channel is not closed here;
// that stays with the caller that created it.
func EmbedBatches(
	ctx context.Context,
	provider Provider,
	texts []string,
	mode EmbedMode,
	batchSize int,
	retry RetryConfig,
	progressCh chan<- BatchProgress,
) ([][]float32, error) {
	totalChunks := len(texts)
	if totalChunks == 0 {
		return [][]float32{}, nil
	}

	numBatches := (totalChunks + batchSize - 1) / batchSize
	results := make([][]float32, totalChunks)

	processedChunks := 0
	for batchIdx := 0; batchIdx < numBatches; batchIdx++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := batchIdx * batchSize
		end := start + batchSize
		if end > totalChunks {
			end = totalChunks
		}
		batchTexts := texts[start:end]

		batchEmbeddings, err := retryWithBackoff(ctx, retry, func() ([][]float32, error) {
			return provider.Embed(ctx, batchTexts, mode)
		})
		if err != nil {
			return nil, fmt.Errorf("batch %d/%d failed: %w", batchIdx+1, numBatches, err)
		}
		if len(batchEmbeddings) != len(batchTexts) {
			return nil, fmt.Errorf("batch %d/%d: got %d embeddings for %d texts",
				batchIdx+1, numBatches, len(batchEmbeddings), len(batchTexts))
		}

		for i, emb := range batchEmbeddings {
			results[start+i] = emb
		}

		processedChunks += len(batchTexts)
		if progressCh != nil {
			progressCh <- BatchProgress{
				BatchIndex:      batchIdx + 1,
				TotalBatches:    numBatches,
				ProcessedChunks: processedChunks,
				TotalChunks:     totalChunks,
			}
		}
	}

	return results, nil
}
