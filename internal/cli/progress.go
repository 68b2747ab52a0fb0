package cli

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/codescope/internal/embed"
	"github.com/mvp-joe/codescope/internal/engine"
)

// CLIProgressReporter renders pipeline progress with progress bars.
type CLIProgressReporter struct {
	quiet bool

	mu           sync.Mutex
	fileBar      *progressbar.ProgressBar
	embeddingBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a progress reporter. quiet suppresses all
// output except reindex errors.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet}
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files, warnings int) {
	if c.quiet {
		return
	}
	log.Printf("Discovered %d files (%d skipped)\n", files, warnings)
}

func (c *CLIProgressReporter) OnFileChunked(processed, total int, path string) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fileBar == nil {
		c.fileBar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Chunking files"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionOnCompletion(func() {
				fmt.Println()
			}),
		)
	}
	c.fileBar.Add(1)
	if processed >= total {
		c.fileBar = nil
	}
}

func (c *CLIProgressReporter) OnEmbedding(progress embed.BatchProgress) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.embeddingBar == nil {
		c.embeddingBar = progressbar.NewOptions(progress.TotalChunks,
			progressbar.OptionSetDescription("Generating embeddings"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("emb/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionOnCompletion(func() {
				fmt.Println()
			}),
		)
	}
	c.embeddingBar.Set(progress.ProcessedChunks)
	if progress.ProcessedChunks >= progress.TotalChunks {
		c.embeddingBar = nil
	}
}

func (c *CLIProgressReporter) OnIndexComplete(report engine.RunReport) {
	if c.quiet {
		return
	}
	log.Printf("Index complete in %v (%d chunks, %d vectors)\n",
		report.Duration.Round(time.Millisecond), report.Stats.Chunks, report.Vectors)
}

func (c *CLIProgressReporter) OnChangesDetected(changed []string) {
	if c.quiet {
		return
	}
	log.Printf("Reindexing due to changes in %d file(s)...\n", len(changed))
}

func (c *CLIProgressReporter) OnReindexError(err error) {
	log.Printf("Error during reindex: %v\n", err)
}
