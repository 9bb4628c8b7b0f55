package core

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// PoolOption configures a ThreadPool at construction time.
type PoolOption func(*ThreadPool)

// WithLogger installs a custom Logger.
func WithLogger(l Logger) PoolOption { return func(p *ThreadPool) { p.logger = l } }

// WithPanicHandler installs a custom PanicHandler.
func WithPanicHandler(h PanicHandler) PoolOption { return func(p *ThreadPool) { p.panicHandler = h } }

// WithMetrics installs a custom Metrics collector.
func WithMetrics(m Metrics) PoolOption { return func(p *ThreadPool) { p.metrics = m } }

// WithTaskMaxIdle sets the idle budget new and existing workers use while
// parked waiting for a task.
func WithTaskMaxIdle(d time.Duration) PoolOption {
	return func(p *ThreadPool) { p.taskMaxIdle = d }
}

// ThreadPool owns a growable set of WorkerTasks and dispatches range and
// generic work across them. It is safe for concurrent use.
type ThreadPool struct {
	id string

	mu           sync.Mutex
	workers      []*WorkerTask
	nextWorkerID int
	taskMaxIdle  time.Duration
	coreCount    int
	rangeRunning bool
	tracer       func() string

	logger       Logger
	panicHandler PanicHandler
	metrics      Metrics
}

// NewThreadPool creates an empty pool identified by id. Workers are created
// lazily as tasks are submitted.
func NewThreadPool(id string, opts ...PoolOption) *ThreadPool {
	p := &ThreadPool{
		id:           id,
		taskMaxIdle:  15 * time.Second,
		coreCount:    runtime.NumCPU(),
		logger:       NewDefaultLogger(),
		panicHandler: &DefaultPanicHandler{},
		metrics:      &NilMetrics{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ID returns the pool's identifier, used to tag metrics.
func (p *ThreadPool) ID() string { return p.id }

// PhysicalCores returns the number of partitions ParallelFor splits work into.
func (p *ThreadPool) PhysicalCores() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.coreCount
}

// SetPhysicalCores overrides the partition count used by ParallelFor.
// Intended for tests that want deterministic fan-out.
func (p *ThreadPool) SetPhysicalCores(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n > 0 {
		p.coreCount = n
	}
}

// ActiveTasks returns the number of workers currently executing a callable.
func (p *ThreadPool) ActiveTasks() int {
	p.mu.Lock()
	workers := append([]*WorkerTask(nil), p.workers...)
	p.mu.Unlock()
	n := 0
	for _, w := range workers {
		if w.Running() {
			n++
		}
	}
	return n
}

// IdleTasks returns the number of workers currently parked.
func (p *ThreadPool) IdleTasks() int {
	p.mu.Lock()
	total := len(p.workers)
	p.mu.Unlock()
	return total - p.ActiveTasks()
}

// TotalTasks returns the number of workers the pool currently owns.
func (p *ThreadPool) TotalTasks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// ClearIdleTasks drops every worker that is not currently running a
// callable and returns the number dropped. Each dropped worker is killed
// (a worker that has already self-terminated is simply dropped).
func (p *ThreadPool) ClearIdleTasks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.workers[:0]
	cleared := 0
	for _, w := range p.workers {
		if w.Running() {
			kept = append(kept, w)
		} else {
			w.Kill(0)
			cleared++
		}
	}
	p.workers = kept
	return cleared
}

// SetTaskMaxIdle updates the idle budget for the pool and every worker it
// currently owns.
func (p *ThreadPool) SetTaskMaxIdle(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.taskMaxIdle = d
	for _, w := range p.workers {
		w.SetMaxIdle(d)
	}
}

// SetTaskTracer installs a callback invoked synchronously at every task
// submission to capture a caller-side trace string, surfaced in panic
// reports and logs. Pass nil to disable tracing.
func (p *ThreadPool) SetTaskTracer(tracer func() string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tracer = tracer
}

// Stats returns a point-in-time snapshot of pool occupancy.
func (p *ThreadPool) Stats() PoolStats {
	p.mu.Lock()
	workers := append([]*WorkerTask(nil), p.workers...)
	rangeRunning := p.rangeRunning
	p.mu.Unlock()

	active := 0
	for _, w := range workers {
		if w.Running() {
			active++
		}
	}
	stats := PoolStats{
		ID:           p.id,
		Workers:      len(workers),
		Active:       active,
		Idle:         len(workers) - active,
		RangeRunning: rangeRunning,
	}
	p.metrics.RecordPoolSnapshot(p.id, stats.Active, stats.Idle)
	return stats
}

// ParallelFor splits [start, end) across the pool's partition count and
// runs fn over each chunk concurrently, blocking until every chunk
// finishes. Calling ParallelFor from within a callable already running
// inside this pool's own ParallelFor is a programming error and panics.
//
// If any chunk's callable panics, the first captured panic is re-raised
// from ParallelFor after every chunk has been waited on; no worker is
// left abandoned mid-callable.
func (p *ThreadPool) ParallelFor(start, end int, fn RangeFunc) {
	p.mu.Lock()
	if p.rangeRunning {
		p.mu.Unlock()
		panic("corepool: nested ParallelFor is forbidden")
	}
	p.rangeRunning = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.rangeRunning = false
		p.mu.Unlock()
	}()

	span := end - start
	if span <= 0 {
		return
	}

	cores := p.PhysicalCores()
	if span < cores {
		cores = span
	}
	if cores <= 1 {
		fn(0, span)
		return
	}

	chunk := span / cores
	workers := make([]*WorkerTask, cores)
	poolIndex := 0
	for i := 0; i < cores; i++ {
		chunkStart := start + i*chunk
		chunkEnd := chunkStart + chunk
		if i == cores-1 {
			chunkEnd = end
		}
		workers[i] = p.startRangeTask(&poolIndex, chunkStart, chunkEnd, fn)
	}

	var firstErr error
	for _, w := range workers {
		if _, err := w.Wait(0); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		panic(firstErr)
	}
}

// startRangeTask scans from *poolIndex for an idle worker to reuse,
// advancing the cursor past every worker it skips; on miss it grows the
// pool by one. Mirrors the submission atomicity of ParallelTask.
func (p *ThreadPool) startRangeTask(poolIndex *int, start, end int, fn RangeFunc) *WorkerTask {
	p.mu.Lock()
	for ; *poolIndex < len(p.workers); *poolIndex++ {
		w := p.workers[*poolIndex]
		if !w.Running() {
			*poolIndex++
			tracer := p.tracer
			w.SubmitRange(start, end, fn, tracer)
			p.mu.Unlock()
			return w
		}
	}
	tracer := p.tracer
	maxIdle := p.taskMaxIdle
	id := p.nextWorkerID
	p.nextWorkerID++
	p.mu.Unlock()

	w := NewWorkerTask(id, maxIdle, p.logger, p.panicHandler, p.metrics, p.id)
	w.SubmitRange(start, end, fn, tracer)

	p.mu.Lock()
	p.workers = append(p.workers, w)
	p.mu.Unlock()
	return w
}

// ParallelTask hands fn to the first idle worker it finds, or grows the
// pool by one worker if every existing worker is busy. It returns
// immediately; use the returned WorkerTask's Wait to block on completion.
func (p *ThreadPool) ParallelTask(fn GenericFunc) *WorkerTask {
	p.mu.Lock()
	for _, w := range p.workers {
		if !w.Running() {
			tracer := p.tracer
			w.SubmitGeneric(fn, tracer)
			p.mu.Unlock()
			return w
		}
	}
	tracer := p.tracer
	maxIdle := p.taskMaxIdle
	id := p.nextWorkerID
	p.nextWorkerID++
	p.mu.Unlock()

	w := NewWorkerTask(id, maxIdle, p.logger, p.panicHandler, p.metrics, p.id)
	w.SubmitGeneric(fn, tracer)

	p.mu.Lock()
	p.workers = append(p.workers, w)
	p.mu.Unlock()
	return w
}

// Shutdown waits for every worker's in-flight callable to finish, then
// kills and drops all workers. It does not cancel user work in progress.
func (p *ThreadPool) Shutdown() {
	p.mu.Lock()
	workers := p.workers
	p.workers = nil
	p.mu.Unlock()

	for _, w := range workers {
		w.Wait(0)
		w.Kill(0)
	}
}

// String implements fmt.Stringer for debug logging.
func (p *ThreadPool) String() string {
	s := p.Stats()
	return fmt.Sprintf("ThreadPool(%s){workers=%d active=%d idle=%d}", s.ID, s.Workers, s.Active, s.Idle)
}
