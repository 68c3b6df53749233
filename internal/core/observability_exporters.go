package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder publishes operation latency and outcome counters
// plus a persistence failure counter.
type PrometheusMetricsRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
	persist   *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder registers the recorder's collectors with reg.
// A nil reg uses a fresh registry, which keeps tests isolated.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r := &PrometheusMetricsRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "resourcebank",
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "Latency of catalog service operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"operation"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resourcebank",
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Catalog service operations by outcome.",
		}, []string{"operation", "status"}),
		persist: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resourcebank",
			Subsystem: "storage",
			Name:      "persist_failures_total",
			Help:      "Write-through failures by storage key.",
		}, []string{"key"}),
	}
	for _, c := range []prometheus.Collector{r.durations, r.results, r.persist} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe records a service operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}

// PersistFailed counts a failed write-through for key.
func (r *PrometheusMetricsRecorder) PersistFailed(key string) {
	r.persist.WithLabelValues(key).Inc()
}
