package concurrency

import (
	"context"
	"sync"
)

// WorkerPool runs a bounded number of goroutines over an ordered input
// sequence and returns results in input order, regardless of completion
// order. It participates in cancellation: once ctx is done, unscheduled
// work is skipped and in-flight work is allowed to observe ctx via the fn
// it was given.
type WorkerPool struct {
	size int
}

// NewWorkerPool returns a pool bounded to size concurrent workers. size <= 0
// is treated as 1.
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{size: size}
}

// Result pairs a job's index with its outcome.
type Result struct {
	Index int
	Value interface{}
	Err   error
}

// Run executes fn(ctx, i) for i in [0,n) across the pool's workers and
// returns the n results in index order. The first error encountered is
// also returned directly for convenience; callers that need every error
// should inspect the Result slice.
func (p *WorkerPool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) (interface{}, error)) ([]Result, error) {
	results := make([]Result, n)
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(p.size)
	for w := 0; w < p.size; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				v, err := fn(ctx, i)
				results[i] = Result{Index: i, Value: v, Err: err}
			}
		}()
	}

	sent := n
feed:
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			sent = i
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			sent = i
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i := sent; i < n; i++ {
		results[i] = Result{Index: i, Err: ctx.Err()}
	}

	for _, r := range results {
		if r.Err != nil {
			return results, r.Err
		}
	}
	return results, nil
}
