package concurrency

import "sync"

var (
	singletonMu   sync.Mutex
	singletonPool *WorkerPool
)

// SingletonPool returns the process-wide pre-processing worker pool,
// creating it on first use and replacing it whenever maxWorkers differs
// from its size. A WorkerPool holds only its size: each Run call starts its
// own workers, so concurrent Runs on the shared pool are not bounded
// together.
func SingletonPool(maxWorkers int) *WorkerPool {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	if singletonPool == nil || singletonPool.size != maxWorkers {
		singletonPool = NewWorkerPool(maxWorkers)
	}
	return singletonPool
}
