package pipeline

import (
	"context"
	stdliberrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/turtacn/OrphaMine/pkg/errors"
)

// ---------------------------------------------------------------------------
// ItemStatus
// ---------------------------------------------------------------------------

// ItemStatus is the outcome of one item in a batch.
type ItemStatus int

const (
	ItemStatusSuccess ItemStatus = iota
	ItemStatusFailed
	ItemStatusTimeout
	ItemStatusCancelled
)

func (s ItemStatus) String() string {
	switch s {
	case ItemStatusSuccess:
		return "SUCCESS"
	case ItemStatusFailed:
		return "FAILED"
	case ItemStatusTimeout:
		return "TIMEOUT"
	case ItemStatusCancelled:
		return "CANCELLED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// ---------------------------------------------------------------------------
// Generic types
// ---------------------------------------------------------------------------

// ProcessFunc processes a single item.
type ProcessFunc[T, R any] func(ctx context.Context, item T) (R, error)

// ItemResult holds the outcome of one item; Index is its position in the
// input slice.
type ItemResult[R any] struct {
	Index    int
	Result   R
	Error    error
	Duration time.Duration
	Status   ItemStatus
}

// BatchResult aggregates a batch.  Results is indexed like the input.
type BatchResult[R any] struct {
	Results       []ItemResult[R]
	SuccessCount  int
	FailureCount  int
	TotalDuration time.Duration
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

type batchConfig struct {
	maxConcurrency int
	itemTimeout    time.Duration
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*batchConfig)

// WithMaxConcurrency sets the number of workers.
func WithMaxConcurrency(n int) BatchOption {
	return func(c *batchConfig) {
		if n > 0 {
			c.maxConcurrency = n
		}
	}
}

// WithItemTimeout bounds each item; 0 disables the per-item deadline.
func WithItemTimeout(d time.Duration) BatchOption {
	return func(c *batchConfig) {
		if d >= 0 {
			c.itemTimeout = d
		}
	}
}

// ---------------------------------------------------------------------------
// BatchProcessor
// ---------------------------------------------------------------------------

// BatchProcessor runs a function over a slice with a fixed number of
// workers.  Process returns only after every item has finished, which makes
// it the barrier before a batch is committed.  Items are never retried.
type BatchProcessor[T, R any] struct {
	cfg batchConfig
}

// NewBatchProcessor creates a processor; the default is 8 workers and a 30s
// per-item timeout.
func NewBatchProcessor[T, R any](opts ...BatchOption) *BatchProcessor[T, R] {
	cfg := batchConfig{maxConcurrency: 8, itemTimeout: 30 * time.Second}
	for _, o := range opts {
		o(&cfg)
	}
	return &BatchProcessor[T, R]{cfg: cfg}
}

// Concurrency returns the configured worker count.
func (bp *BatchProcessor[T, R]) Concurrency() int { return bp.cfg.maxConcurrency }

// Process executes fn for every item.  Items not started before ctx ends are
// reported as cancelled.
func (bp *BatchProcessor[T, R]) Process(ctx context.Context, items []T, fn ProcessFunc[T, R]) (*BatchResult[R], error) {
	if fn == nil {
		return nil, errors.InvalidParam("process function must not be nil")
	}
	start := time.Now()
	results := make([]ItemResult[R], len(items))

	workers := bp.cfg.maxConcurrency
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = bp.processOne(ctx, idx, items[idx], fn)
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(items); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- next:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	for idx := next; idx < len(items); idx++ {
		results[idx] = ItemResult[R]{Index: idx, Error: ctx.Err(), Status: classifyCtxError(ctx.Err())}
	}

	br := &BatchResult[R]{Results: results, TotalDuration: time.Since(start)}
	for _, r := range results {
		if r.Status == ItemStatusSuccess {
			br.SuccessCount++
		} else {
			br.FailureCount++
		}
	}
	return br, nil
}

func (bp *BatchProcessor[T, R]) processOne(ctx context.Context, idx int, item T, fn ProcessFunc[T, R]) ItemResult[R] {
	itemStart := time.Now()
	itemCtx, cancel := ctx, context.CancelFunc(func() {})
	if bp.cfg.itemTimeout > 0 {
		itemCtx, cancel = context.WithTimeout(ctx, bp.cfg.itemTimeout)
	}
	result, err := fn(itemCtx, item)
	cancel()

	if err == nil {
		return ItemResult[R]{Index: idx, Result: result, Status: ItemStatusSuccess, Duration: time.Since(itemStart)}
	}
	return ItemResult[R]{Index: idx, Error: err, Status: classifyError(ctx, err), Duration: time.Since(itemStart)}
}

func classifyCtxError(err error) ItemStatus {
	if err == nil {
		return ItemStatusSuccess
	}
	if stdliberrors.Is(err, context.DeadlineExceeded) {
		return ItemStatusTimeout
	}
	return ItemStatusCancelled
}

func classifyError(parent context.Context, err error) ItemStatus {
	switch {
	case err == nil:
		return ItemStatusSuccess
	case parent.Err() != nil:
		return classifyCtxError(parent.Err())
	case stdliberrors.Is(err, context.DeadlineExceeded):
		return ItemStatusTimeout
	case stdliberrors.Is(err, context.Canceled):
		return ItemStatusCancelled
	default:
		return ItemStatusFailed
	}
}

//Personal.AI order the ending
