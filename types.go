package corepool

import "github.com/corepool/corepool/core"

// Convenience re-exports so callers that only need the public surface do
// not have to import the core package directly.

type (
	ThreadPool   = core.ThreadPool
	WorkerTask   = core.WorkerTask
	PoolOption   = core.PoolOption
	RangeFunc    = core.RangeFunc
	GenericFunc  = core.GenericFunc
	WaitResult   = core.WaitResult
	Logger       = core.Logger
	Metrics      = core.Metrics
	PanicHandler = core.PanicHandler
	CloseSync    = core.CloseSync
	ReadGuard    = core.ReadGuard
	Sink         = core.Sink
	PoolStats    = core.PoolStats
	WorkerStats  = core.WorkerStats
)

var (
	NewThreadPool   = core.NewThreadPool
	NewWorkerTask   = core.NewWorkerTask
	NewCloseSync    = core.NewCloseSync
	WithLogger      = core.WithLogger
	WithMetrics     = core.WithMetrics
	WithTaskMaxIdle = core.WithTaskMaxIdle
)

const (
	WaitFinished = core.WaitFinished
	WaitTimeout  = core.WaitTimeout
)
