// Package parallel provides generic parallel processing utilities.
//
// The worker pool is the scheduling collaborator of the coarsening pipeline:
// work dispatched through it runs concurrently on OS threads, and every
// entry point returns only after all dispatched work has finished, which is
// the barrier the merge protocol relies on between phases.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// ============================================================================
// Worker Pool Configuration
// ============================================================================

// PoolConfig configures the worker pool behavior.
type PoolConfig struct {
	// MaxWorkers is the maximum number of concurrent workers.
	// Default: runtime.NumCPU() clamped to the range [2, 8]
	MaxWorkers int

	// TaskBufferSize is the buffer size for the task channel.
	// Default: MaxWorkers * 2
	TaskBufferSize int
}

// DefaultPoolConfig returns a default pool configuration.
func DefaultPoolConfig() PoolConfig {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers < 2 {
		workers = 2
	}
	return PoolConfig{
		MaxWorkers:     workers,
		TaskBufferSize: workers * 2,
	}
}

// WithWorkers returns a new config with the specified number of workers.
func (c PoolConfig) WithWorkers(n int) PoolConfig {
	if n > 0 {
		c.MaxWorkers = n
	}
	return c
}

// ============================================================================
// Worker Pool
// ============================================================================

// TaskResult holds the result of a task execution.
type TaskResult[T any, R any] struct {
	Input  T
	Result R
	Error  error
}

// WorkerPool manages a pool of workers for parallel task execution.
type WorkerPool[T any, R any] struct {
	config PoolConfig
}

// NewWorkerPool creates a new worker pool with the given configuration.
func NewWorkerPool[T any, R any](config PoolConfig) *WorkerPool[T, R] {
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = DefaultPoolConfig().MaxWorkers
	}
	if config.TaskBufferSize <= 0 {
		config.TaskBufferSize = config.MaxWorkers * 2
	}
	return &WorkerPool[T, R]{config: config}
}

// ExecuteFunc runs fn over all inputs in parallel and returns results in
// input order. It blocks until every task has completed.
func (p *WorkerPool[T, R]) ExecuteFunc(ctx context.Context, inputs []T, fn func(ctx context.Context, input T) (R, error)) []TaskResult[T, R] {
	if len(inputs) == 0 {
		return nil
	}

	results := make([]TaskResult[T, R], len(inputs))
	taskCh := make(chan int, p.config.TaskBufferSize)

	var wg sync.WaitGroup
	numWorkers := p.config.MaxWorkers
	if numWorkers > len(inputs) {
		numWorkers = len(inputs)
	}

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-taskCh:
					if !ok {
						return
					}
					result, err := fn(ctx, inputs[idx])
					results[idx] = TaskResult[T, R]{
						Input:  inputs[idx],
						Result: result,
						Error:  err,
					}
				}
			}
		}()
	}

	go func() {
		defer close(taskCh)
		for i := range inputs {
			select {
			case <-ctx.Done():
				return
			case taskCh <- i:
			}
		}
	}()

	wg.Wait()
	return results
}

// ============================================================================
// Parallel For-Range
// ============================================================================

// ForRange partitions the index range [0, n) into contiguous slices and
// invokes fn(start, end) for each slice on its own worker. It blocks until
// all slices have been processed (pool barrier).
//
// Workers write to disjoint index ranges, so fn needs no synchronization as
// long as it only touches state keyed by its own indices.
func ForRange(ctx context.Context, config PoolConfig, n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	numWorkers := config.MaxWorkers
	if numWorkers <= 0 {
		numWorkers = DefaultPoolConfig().MaxWorkers
	}
	if numWorkers > n {
		numWorkers = n
	}

	chunkSize := (n + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			default:
				fn(start, end)
			}
		}(start, end)
	}

	wg.Wait()
}

// ============================================================================
// Parallel For-Each
// ============================================================================

// ForEach executes a function for each item in parallel and returns the
// first error encountered, if any.
func ForEach[T any](
	ctx context.Context,
	items []T,
	config PoolConfig,
	fn func(ctx context.Context, item T) error,
) error {
	pool := NewWorkerPool[T, struct{}](config)
	results := pool.ExecuteFunc(ctx, items, func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, item)
	})
	for _, r := range results {
		if r.Error != nil {
			return r.Error
		}
	}
	return nil
}
