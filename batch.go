package docproc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/docproc/docerr"
	"github.com/tsawler/docproc/extract"
	"github.com/tsawler/docproc/format"
)

// BatchItem is one document in a batch.
type BatchItem struct {
	Content  []byte
	Filename string
}

// BatchResult is the outcome for the BatchItem at Index.
type BatchResult struct {
	Index    int
	Filename string
	Kind     format.Kind
	Text     string
	Err      error
}

// OK reports whether the item was extracted.
func (r BatchResult) OK() bool {
	return r.Err == nil
}

// ProcessBatch extracts items concurrently, at most the configured
// concurrency at a time. Results are in input order. Items not yet started
// when ctx is done fail with a Timeout error.
func (p *Processor) ProcessBatch(ctx context.Context, items []BatchItem, opts extract.Options) []BatchResult {
	results := make([]BatchResult, len(items))
	log := p.log.With(
		zap.String("batch_id", uuid.NewString()),
		zap.Int("items", len(items)),
	)
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, item := range items {
		results[i] = BatchResult{Index: i, Filename: item.Filename}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = docerr.Wrap(docerr.Timeout, "Batch cancelled before item started", err)
				return nil
			}
			results[i].Text, results[i].Kind, results[i].Err = p.process(item.Content, item.Filename, opts)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info("batch processed",
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results
}
