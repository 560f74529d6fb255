package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bousai-navi/backend/internal/metrics"
	"github.com/bousai-navi/backend/pkg/logger"
)

// Searcher is the per-keyword search surface the aggregator fans out over.
type Searcher interface {
	SearchItems(ctx context.Context, keyword string) ([]Product, error)
}

// SleepFunc suspends between batches; injected in tests.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ProgressFunc is invoked after each completed batch with the number of
// keywords processed so far.
type ProgressFunc func(done, total int)

// Aggregator fans keywords out to the catalog service in fixed-size batches.
// All searches within a batch run concurrently; batches run strictly
// sequentially with a pacing delay between them to respect the upstream
// rate limit. A single failed keyword search aborts its whole batch and the
// aggregation: partial output would silently change the list's composition.
type Aggregator struct {
	searcher   Searcher
	batchSize  int
	batchDelay time.Duration
	sleep      SleepFunc
}

type AggregatorOptions struct {
	BatchSize    int
	BatchDelayMS int
	Sleep        SleepFunc
}

func NewAggregator(searcher Searcher, opts AggregatorOptions) *Aggregator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 3
	}
	if opts.BatchDelayMS <= 0 {
		opts.BatchDelayMS = 1000
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepWithContext
	}

	return &Aggregator{
		searcher:   searcher,
		batchSize:  opts.BatchSize,
		batchDelay: time.Duration(opts.BatchDelayMS) * time.Millisecond,
		sleep:      opts.Sleep,
	}
}

// Search returns one GroupedResult per input keyword, in input order.
func (a *Aggregator) Search(ctx context.Context, keywords []string) ([]GroupedResult, error) {
	return a.SearchWithProgress(ctx, keywords, nil)
}

func (a *Aggregator) SearchWithProgress(ctx context.Context, keywords []string, progress ProgressFunc) ([]GroupedResult, error) {
	results := make([]GroupedResult, len(keywords))

	for offset := 0; offset < len(keywords); offset += a.batchSize {
		end := offset + a.batchSize
		if end > len(keywords) {
			end = len(keywords)
		}
		batch := keywords[offset:end]

		logger.Info("Processing search batch",
			zap.Int("batch", offset/a.batchSize+1),
			zap.Strings("keywords", batch),
		)
		metrics.CatalogBatches.Inc()

		g, gctx := errgroup.WithContext(ctx)
		for i, keyword := range batch {
			i, keyword := i, keyword
			g.Go(func() error {
				products, err := a.searcher.SearchItems(gctx, keyword)
				if err != nil {
					return fmt.Errorf("search for keyword %q failed: %w", keyword, err)
				}
				results[offset+i] = GroupedResult{
					Keyword:  keyword,
					Products: products,
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}

		if progress != nil {
			progress(end, len(keywords))
		}

		// Pacing delay between batches only; skipped after the final one.
		if end < len(keywords) {
			logger.Debug("Batch completed, pausing before next batch",
				zap.Duration("delay", a.batchDelay),
			)
			if err := a.sleep(ctx, a.batchDelay); err != nil {
				return nil, err
			}
		}
	}

	return results, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
