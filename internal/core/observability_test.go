package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("recorder: %v", err)
	}
	ctx := context.Background()
	rec.Observe(ctx, OpAddResource, true, 2*time.Millisecond)
	rec.Observe(ctx, OpAddResource, false, time.Millisecond)
	rec.Observe(ctx, OpAddResource, false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)
	rec.PersistFailed("ressourcesAO")

	if got := testutil.ToFloat64(rec.results.WithLabelValues(OpAddResource, "success")); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(rec.results.WithLabelValues(OpAddResource, "error")); got != 2 {
		t.Fatalf("expected 2 errors, got %v", got)
	}
	if got := testutil.ToFloat64(rec.persist.WithLabelValues("ressourcesAO")); got != 1 {
		t.Fatalf("expected 1 persist failure, got %v", got)
	}
	if n := testutil.CollectAndCount(rec.durations); n != 1 {
		t.Fatalf("expected one duration series, got %d", n)
	}

	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics()
	m.Observe(context.Background(), OpLoad, true, time.Second)
	m.PersistFailed("k")
}
