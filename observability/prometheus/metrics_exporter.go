package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/corepool/corepool/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	taskDurationSeconds    *prom.HistogramVec
	taskPanicTotal         *prom.CounterVec
	workerResurrectedTotal *prom.CounterVec
	workerIdleTimeoutTotal *prom.CounterVec
	poolActiveWorkers      *prom.GaugeVec
	poolIdleWorkers        *prom.GaugeVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "corepool"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Worker task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"pool"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_panic_total",
		Help:      "Total number of worker task panics.",
	}, []string{"pool"})
	resurrectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "worker_resurrected_total",
		Help:      "Total number of self-terminated workers resurrected by a new submission.",
	}, []string{"pool"})
	idleTimeoutVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "worker_idle_timeout_total",
		Help:      "Total number of workers that self-terminated after exceeding their idle budget.",
	}, []string{"pool"})
	activeVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_active_workers",
		Help:      "Current number of workers executing a task.",
	}, []string{"pool"})
	idleVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_idle_workers",
		Help:      "Current number of parked workers.",
	}, []string{"pool"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if resurrectedVec, err = registerCollector(reg, resurrectedVec); err != nil {
		return nil, err
	}
	if idleTimeoutVec, err = registerCollector(reg, idleTimeoutVec); err != nil {
		return nil, err
	}
	if activeVec, err = registerCollector(reg, activeVec); err != nil {
		return nil, err
	}
	if idleVec, err = registerCollector(reg, idleVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		taskDurationSeconds:    durationVec,
		taskPanicTotal:         panicVec,
		workerResurrectedTotal: resurrectedVec,
		workerIdleTimeoutTotal: idleTimeoutVec,
		poolActiveWorkers:      activeVec,
		poolIdleWorkers:        idleVec,
	}, nil
}

// RecordTaskDuration records a worker task's execution duration.
func (m *MetricsExporter) RecordTaskDuration(poolID string, duration time.Duration) {
	if m == nil {
		return
	}
	m.taskDurationSeconds.WithLabelValues(normalizeLabel(poolID, "unknown")).Observe(duration.Seconds())
}

// RecordTaskPanic records a worker task panic.
func (m *MetricsExporter) RecordTaskPanic(poolID string, panicInfo any) {
	if m == nil {
		return
	}
	m.taskPanicTotal.WithLabelValues(normalizeLabel(poolID, "unknown")).Inc()
}

// RecordWorkerResurrected records a resurrection event.
func (m *MetricsExporter) RecordWorkerResurrected(poolID string) {
	if m == nil {
		return
	}
	m.workerResurrectedTotal.WithLabelValues(normalizeLabel(poolID, "unknown")).Inc()
}

// RecordWorkerIdleTimeout records a self-termination-by-idle-timeout event.
func (m *MetricsExporter) RecordWorkerIdleTimeout(poolID string) {
	if m == nil {
		return
	}
	m.workerIdleTimeoutTotal.WithLabelValues(normalizeLabel(poolID, "unknown")).Inc()
}

// RecordPoolSnapshot records current pool occupancy.
func (m *MetricsExporter) RecordPoolSnapshot(poolID string, active, idle int) {
	if m == nil {
		return
	}
	label := normalizeLabel(poolID, "unknown")
	m.poolActiveWorkers.WithLabelValues(label).Set(float64(active))
	m.poolIdleWorkers.WithLabelValues(label).Set(float64(idle))
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
