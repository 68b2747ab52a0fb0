package embed

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for batched embedding:
// - Results come back in input order across batch boundaries
// - Progress reports accumulate to the total
// - Transient failures are retried; persistent failures fail the call
// - The mock provider is deterministic

func TestMockProvider_Deterministic(t *testing.T) {
	t.Parallel()

	p := NewMockProvider()
	require.NoError(t, p.Initialize(context.Background()))

	first, err := p.Embed(context.Background(), []string{"alpha", "beta"}, EmbedModePassage)
	require.NoError(t, err)
	second, err := p.Embed(context.Background(), []string{"alpha", "beta"}, EmbedModePassage)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first[0], p.Dimensions())
	assert.NotEqual(t, first[0], first[1], "different texts embed differently")
}

func TestEmbedBatches_OrderAndProgress(t *testing.T) {
	t.Parallel()

	texts := make([]string, 23)
	for i := range texts {
		texts[i] = fmt.Sprintf("text %d", i)
	}

	p := NewMockProvider()
	progressCh := make(chan BatchProgress, 16)
	var progress []BatchProgress
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for pr := range progressCh {
			progress = append(progress, pr)
		}
	}()

	got, err := EmbedBatches(context.Background(), p, texts, EmbedModePassage, 10, DefaultRetryConfig(2), progressCh)
	close(progressCh)
	wg.Wait()

	require.NoError(t, err)
	require.Len(t, got, 23)

	// Each position matches a direct single embed of the same text.
	direct, err := p.Embed(context.Background(), []string{texts[17]}, EmbedModePassage)
	require.NoError(t, err)
	assert.Equal(t, direct[0], got[17])

	require.Len(t, progress, 3)
	assert.Equal(t, 3, progress[2].TotalBatches)
	assert.Equal(t, 23, progress[2].ProcessedChunks)
}

// flakyProvider fails the first n Embed calls.
type flakyProvider struct {
	Provider
	mu       sync.Mutex
	failures int
}

func (p *flakyProvider) Embed(ctx context.Context, texts []string, mode EmbedMode) ([][]float32, error) {
	p.mu.Lock()
	shouldFail := p.failures > 0
	if shouldFail {
		p.failures--
	}
	p.mu.Unlock()
	if shouldFail {
		return nil, fmt.Errorf("transient outage")
	}
	return p.Provider.Embed(ctx, texts, mode)
}

func TestEmbedBatches_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	p := &flakyProvider{Provider: NewMockProvider(), failures: 2}
	retry := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond, Multiplier: 2}

	got, err := EmbedBatches(context.Background(), p, []string{"a", "b"}, EmbedModePassage, 10, retry, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestEmbedBatches_ExhaustedRetriesFail(t *testing.T) {
	t.Parallel()

	p := &flakyProvider{Provider: NewMockProvider(), failures: 100}
	retry := RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

	_, err := EmbedBatches(context.Background(), p, []string{"a"}, EmbedModePassage, 10, retry, nil)
	assert.Error(t, err)
}

func TestEmbedBatches_Empty(t *testing.T) {
	t.Parallel()

	got, err := EmbedBatches(context.Background(), NewMockProvider(), nil, EmbedModePassage, 10, DefaultRetryConfig(2), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetryWithBackoff_ContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := retryWithBackoff(ctx, DefaultRetryConfig(5), func() (int, error) {
		return 0, fmt.Errorf("always fails")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
