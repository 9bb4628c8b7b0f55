package prometheus

import (
	"context"
	"testing"
	"time"

	"github.com/corepool/corepool/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type poolStub struct {
	stats core.PoolStats
}

func (s poolStub) Stats() core.PoolStats { return s.stats }

func TestSnapshotPoller_CollectsPoolStats(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	poller.AddPool("pool-a", poolStub{stats: core.PoolStats{
		ID:           "pool-a",
		Workers:      8,
		Active:       2,
		Idle:         6,
		RangeRunning: true,
	}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	assertEventually(t, 2*time.Second, func() bool {
		workers := testutil.ToFloat64(poller.poolWorkers.WithLabelValues("pool-a"))
		active := testutil.ToFloat64(poller.poolActive.WithLabelValues("pool-a"))
		return workers == 8 && active == 2
	})

	if got := testutil.ToFloat64(poller.poolIdle.WithLabelValues("pool-a")); got != 6 {
		t.Fatalf("pool idle gauge = %v, want 6", got)
	}
	if got := testutil.ToFloat64(poller.poolRangeRunning.WithLabelValues("pool-a")); got != 1 {
		t.Fatalf("pool range-running gauge = %v, want 1", got)
	}
}

func TestSnapshotPoller_CollectsLiveThreadPool(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	pool := core.NewThreadPool("live-pool", core.WithLogger(core.NewNoOpLogger()))
	pool.ParallelTask(func() {}).Wait(1000)
	poller.AddPool("live-pool", pool)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	assertEventually(t, 2*time.Second, func() bool {
		return testutil.ToFloat64(poller.poolWorkers.WithLabelValues("live-pool")) == 1
	})
}

func TestSnapshotPoller_StartStop_Idempotent(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller.Start(ctx)
	poller.Start(ctx)
	poller.Stop()
	poller.Stop()
}

func assertEventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}
