package engine

import "github.com/mvp-joe/codescope/internal/embed"

// ProgressReporter receives pipeline progress callbacks. Implementations
// must be safe for concurrent calls; extraction workers report in parallel.
type ProgressReporter interface {
	OnDiscoveryComplete(files, warnings int)
	OnFileChunked(processed, total int, path string)
	OnEmbedding(progress embed.BatchProgress)
	OnIndexComplete(report RunReport)
	OnChangesDetected(changed []string)
	OnReindexError(err error)
}

// NoopProgress discards all progress callbacks.
type NoopProgress struct{}

func (NoopProgress) OnDiscoveryComplete(files, warnings int)         {}
func (NoopProgress) OnFileChunked(processed, total int, path string) {}
func (NoopProgress) OnEmbedding(progress embed.BatchProgress)        {}
func (NoopProgress) OnIndexComplete(report RunReport)                {}
func (NoopProgress) OnChangesDetected(changed []string)              {}
func (NoopProgress) OnReindexError(err error)                        {}
