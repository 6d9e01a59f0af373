// Package metrics provides metrics recording for the relay processor.
// It uses the null object pattern to avoid nil checks throughout the
// codebase.
package metrics

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Recorder defines the interface for recording relay metrics.
type Recorder interface {
	// RecordReceived increments the count of received notifications.
	RecordReceived()

	// RecordDelivered records a successful delivery with its latency.
	RecordDelivered(latency time.Duration)

	// RecordDropped increments the count of notifications dropped as
	// permanently unprocessable.
	RecordDropped()

	// RecordError increments the count of transient processing failures.
	RecordError()
}

// NoOp is a no-op implementation of Recorder that discards all metrics.
type NoOp struct{}

// NewNoOp creates a new no-op metrics recorder.
func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) RecordReceived()                 {}
func (n *NoOp) RecordDelivered(_ time.Duration) {}
func (n *NoOp) RecordDropped()                  {}
func (n *NoOp) RecordError()                    {}

var _ Recorder = (*NoOp)(nil)

// LogRecorder counts events and emits them as a structured log line,
// which lands in CloudWatch Logs for the pipeline's health dashboards.
type LogRecorder struct {
	received       atomic.Uint64
	delivered      atomic.Uint64
	dropped        atomic.Uint64
	errors         atomic.Uint64
	totalLatencyNs atomic.Uint64
}

// NewLogRecorder creates a new log-backed metrics recorder.
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{}
}

func (r *LogRecorder) RecordReceived() {
	r.received.Add(1)
}

func (r *LogRecorder) RecordDelivered(latency time.Duration) {
	r.delivered.Add(1)
	r.totalLatencyNs.Add(uint64(latency.Nanoseconds()))
}

func (r *LogRecorder) RecordDropped() {
	r.dropped.Add(1)
}

func (r *LogRecorder) RecordError() {
	r.errors.Add(1)
}

// Flush writes the current counters as a single log line. Called at
// the end of each invocation.
func (r *LogRecorder) Flush() {
	delivered := r.delivered.Load()

	var avgLatencyMs float64
	if delivered > 0 {
		avgLatencyMs = float64(r.totalLatencyNs.Load()) / float64(delivered) / 1e6
	}

	slog.Info("Relay metrics",
		"received", r.received.Load(),
		"delivered", delivered,
		"dropped", r.dropped.Load(),
		"errors", r.errors.Load(),
		"avg_delivery_latency_ms", avgLatencyMs,
	)
}

var _ Recorder = (*LogRecorder)(nil)
