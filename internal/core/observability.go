package core

import (
	"context"
	"time"
)

// MetricsRecorder captures service operation outcomes.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	// PersistFailed counts a write-through that did not reach storage.
	PersistFailed(key string)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}
func (noopMetrics) PersistFailed(string)                                 {}

// NoopMetrics returns a recorder that discards everything.
func NoopMetrics() MetricsRecorder { return noopMetrics{} }

// Operation names reported to MetricsRecorder.
const (
	OpLoad           = "load"
	OpVisible        = "visible"
	OpToggleFavorite = "toggle_favorite"
	OpAuthenticate   = "authenticate"
	OpAddResource    = "add_resource"
	OpExportCSV      = "export_csv"
	OpArchiveExport  = "archive_export"
	OpOpenExport     = "open_export"
)
