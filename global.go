package corepool

import (
	"sync"

	"github.com/corepool/corepool/core"
)

var (
	defaultPoolMu   sync.Mutex
	defaultPool     *core.ThreadPool
	defaultPoolOnce sync.Once
)

// DefaultPool returns the lazily-initialized process-wide pool used by
// ParallelFor, ParallelForEach, and ParallelTask.
func DefaultPool() *core.ThreadPool {
	defaultPoolMu.Lock()
	defer defaultPoolMu.Unlock()
	defaultPoolOnce.Do(func() {
		defaultPool = core.NewThreadPool("default")
	})
	return defaultPool
}

// ParallelFor splits [start, end) across the default pool and runs fn
// over each chunk concurrently, blocking until every chunk finishes.
func ParallelFor(start, end int, fn core.RangeFunc) {
	DefaultPool().ParallelFor(start, end, fn)
}

// ParallelForEach splits items across the default pool, calling fn once
// per element from whichever worker owns that element's chunk.
func ParallelForEach[T any](items []T, fn func(item T)) {
	DefaultPool().ParallelFor(0, len(items), func(start, end int) {
		for i := start; i < end; i++ {
			fn(items[i])
		}
	})
}

// ParallelTask hands fn to the default pool for one-off background
// execution and returns immediately; use the returned WorkerTask's Wait
// to block on completion.
func ParallelTask(fn core.GenericFunc) *core.WorkerTask {
	return DefaultPool().ParallelTask(fn)
}

// ShutdownDefaultPool waits for the default pool's in-flight work to
// finish, tears it down, and allows a later call into ParallelFor or
// ParallelTask to lazily create a fresh one.
func ShutdownDefaultPool() {
	defaultPoolMu.Lock()
	defer defaultPoolMu.Unlock()
	if defaultPool == nil {
		return
	}
	defaultPool.Shutdown()
	defaultPool = nil
	defaultPoolOnce = sync.Once{}
}
