// Package corepool provides a small self-growing worker pool for
// range-partitioned and one-off parallel work, plus a couple of
// supporting primitives (a reader/writer destruction barrier and a
// typed binary sink hierarchy) that are independent of the pool.
//
// # Quick Start
//
// Use the process-wide default pool for one-off fan-out:
//
//	corepool.ParallelFor(0, len(items), func(start, end int) {
//		for i := start; i < end; i++ {
//			process(items[i])
//		}
//	})
//
// Or own a pool explicitly when you want independent sizing, metrics, or
// shutdown:
//
//	pool := core.NewThreadPool("ingest", core.WithTaskMaxIdle(5*time.Second))
//	pool.ParallelFor(0, len(rows), func(start, end int) { ... })
//	pool.Shutdown()
//
// # Key Concepts
//
// ThreadPool holds a growable slice of WorkerTask. ParallelFor splits a
// range across the pool's partition count and blocks until every chunk
// finishes; ParallelTask hands a single callable to the first idle
// worker (or grows the pool by one) and returns immediately.
//
// WorkerTask is a dedicated goroutine with a one-slot mailbox. It
// self-terminates after sitting idle past its configured budget, and is
// transparently resurrected by the next submission. Panics inside a
// task are captured rather than crashing the process; Wait re-raises
// them as an error, WaitTimeout leaves them for LastError to inspect.
//
// CloseSync lets a frequently-taken read lock coexist with a rare
// destruction path that needs to know every reader has let go before
// tearing down shared state.
//
// Sink and its TypedWriter facade give range-worker callables somewhere
// uniform to write binary output: a fixed buffer, a growing buffer, a
// file, a socket, or a small buffer in front of any of the above.
//
// # Thread Safety
//
// ThreadPool and WorkerTask are safe for concurrent use. ParallelFor is
// not reentrant on the same pool; calling it from within a callable it
// is already running panics rather than deadlocking.
package corepool
