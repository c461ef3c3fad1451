package parallel

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
)

func TestWorkerPool_ExecuteFunc(t *testing.T) {
	pool := NewWorkerPool[int, int](DefaultPoolConfig())

	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	results := pool.ExecuteFunc(context.Background(), inputs, func(ctx context.Context, n int) (int, error) {
		return n * 2, nil
	})

	if len(results) != len(inputs) {
		t.Fatalf("Expected %d results, got %d", len(inputs), len(results))
	}
	for i, r := range results {
		if r.Result != inputs[i]*2 {
			t.Errorf("Result[%d]: expected %d, got %d", i, inputs[i]*2, r.Result)
		}
		if r.Error != nil {
			t.Errorf("Result[%d]: unexpected error: %v", i, r.Error)
		}
	}
}

func TestWorkerPool_Empty(t *testing.T) {
	pool := NewWorkerPool[int, int](DefaultPoolConfig())
	results := pool.ExecuteFunc(context.Background(), nil, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})
	if results != nil {
		t.Errorf("Expected nil results for empty input, got %v", results)
	}
}

func TestForRange_CoversAllIndices(t *testing.T) {
	const n = 1237
	seen := make([]int32, n)

	ForRange(context.Background(), DefaultPoolConfig().WithWorkers(4), n, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})

	for i, c := range seen {
		if c != 1 {
			t.Fatalf("Index %d visited %d times, expected exactly once", i, c)
		}
	}
}

func TestForRange_SmallRange(t *testing.T) {
	var count atomic.Int32
	ForRange(context.Background(), DefaultPoolConfig().WithWorkers(8), 3, func(start, end int) {
		count.Add(int32(end - start))
	})
	if count.Load() != 3 {
		t.Errorf("Expected 3 indices processed, got %d", count.Load())
	}
}

func TestForEach_FirstError(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	err := ForEach(context.Background(), items, DefaultPoolConfig(), func(ctx context.Context, n int) error {
		if n == 3 {
			return fmt.Errorf("boom on %d", n)
		}
		return nil
	})
	if err == nil {
		t.Fatal("Expected an error")
	}
}

func TestForEach_NoError(t *testing.T) {
	var sum atomic.Int64
	items := []int{1, 2, 3, 4, 5}
	err := ForEach(context.Background(), items, DefaultPoolConfig(), func(ctx context.Context, n int) error {
		sum.Add(int64(n))
		return nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sum.Load() != 15 {
		t.Errorf("Expected sum 15, got %d", sum.Load())
	}
}
