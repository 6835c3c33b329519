// Package parallel provides the worker pool used by partitioned operations.
//
// Work is split into contiguous row ranges, fanned out to a fixed number of
// goroutines and fanned back in by range index, so callers that concatenate
// the per-range results observe exactly the order a sequential loop would
// produce. Workers only read shared inputs and write their own result slot.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/paveg/colframe/internal/config"
)

// ErrPoolClosed is returned for work submitted to, or cut short by, a closed
// pool.
var ErrPoolClosed = errors.New("parallel: worker pool closed")

// WorkerPool manages a pool of goroutines for parallel processing
type WorkerPool struct {
	numWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a new worker pool. A non-positive count uses the
// number of CPUs.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		numWorkers: numWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// NewWorkerPoolFromConfig sizes the pool from Config.WorkerPoolSize.
func NewWorkerPoolFromConfig(cfg config.Config) *WorkerPool {
	return NewWorkerPool(cfg.WorkerPoolSize)
}

// Workers returns the number of goroutines the pool runs
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}

// ProcessIndexed executes work items in parallel while preserving order:
// result i is worker(i, items[i]). If the pool is closed before every item has
// run, no results are returned and the error is ErrPoolClosed.
func ProcessIndexed[T, R any](
	wp *WorkerPool,
	items []T,
	worker func(int, T) R,
) ([]R, error) {
	if wp.ctx.Err() != nil {
		return nil, ErrPoolClosed
	}
	if len(items) == 0 {
		return nil, nil
	}

	// Channel for input items with index
	itemCh := make(chan indexedItem[T], len(items))

	// Channel for results with index
	resultCh := make(chan indexedResult[R], len(items))

	// Start workers
	var wg sync.WaitGroup
	for range min(wp.numWorkers, len(items)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemCh {
				if wp.ctx.Err() != nil {
					return
				}
				resultCh <- indexedResult[R]{
					index:  item.index,
					result: worker(item.index, item.value),
				}
			}
		}()
	}

	// Send items to workers
	go func() {
		defer close(itemCh)
		for i, item := range items {
			select {
			case <-wp.ctx.Done():
				return
			case itemCh <- indexedItem[T]{index: i, value: item}:
			}
		}
	}()

	// Close result channel when all workers are done
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Collect results and maintain order
	results := make([]R, len(items))
	received := 0
	for result := range resultCh {
		results[result.index] = result.result
		received++
	}
	if received < len(items) {
		return nil, ErrPoolClosed
	}

	return results, nil
}

// Range is the half-open row interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of rows in the range
func (r Range) Len() int {
	return r.End - r.Start
}

// Partition splits n rows into consecutive ranges of at most chunkSize rows.
// A non-positive chunkSize yields a single range.
func Partition(n, chunkSize int) []Range {
	if n <= 0 {
		return nil
	}
	if chunkSize <= 0 || chunkSize >= n {
		return []Range{{Start: 0, End: n}}
	}

	ranges := make([]Range, 0, (n+chunkSize-1)/chunkSize)
	for start := 0; start < n; start += chunkSize {
		ranges = append(ranges, Range{Start: start, End: min(start+chunkSize, n)})
	}
	return ranges
}

// ProcessRanges partitions n rows and runs worker once per range. Results are
// returned in range order.
func ProcessRanges[R any](wp *WorkerPool, n, chunkSize int, worker func(Range) R) ([]R, error) {
	return ProcessIndexed(wp, Partition(n, chunkSize), func(_ int, r Range) R {
		return worker(r)
	})
}

// Close shuts down the worker pool. Work in flight stops after its current
// item and reports ErrPoolClosed.
func (wp *WorkerPool) Close() {
	wp.cancel()
}

// indexedItem holds an item with its index
type indexedItem[T any] struct {
	index int
	value T
}

// indexedResult holds a result with its index
type indexedResult[R any] struct {
	index  int
	result R
}
