package sluice

import "github.com/dfalkner/sluice/metrics"

// instruments bundles the pool's metrics. All fields are non-nil; a pool
// without WithMetrics records into noop instruments.
type instruments struct {
	submitted   metrics.Counter
	completed   metrics.Counter
	failed      metrics.Counter
	cancelled   metrics.Counter
	queueDepth  metrics.UpDownCounter
	inflight    metrics.UpDownCounter
	workSeconds metrics.Histogram
}

func newInstruments(p metrics.Provider) *instruments {
	return &instruments{
		submitted: p.Counter("sluice.items.submitted",
			metrics.WithDescription("items admitted to the intake queue"), metrics.WithUnit("1")),
		completed: p.Counter("sluice.items.completed",
			metrics.WithDescription("items whose work function succeeded"), metrics.WithUnit("1")),
		failed: p.Counter("sluice.items.failed",
			metrics.WithDescription("items whose work function failed or panicked"), metrics.WithUnit("1")),
		cancelled: p.Counter("sluice.items.cancelled",
			metrics.WithDescription("items abandoned by a forced stop or swept at teardown"), metrics.WithUnit("1")),
		queueDepth: p.UpDownCounter("sluice.queue.depth",
			metrics.WithDescription("items currently waiting in the intake queue"), metrics.WithUnit("1")),
		inflight: p.UpDownCounter("sluice.items.inflight",
			metrics.WithDescription("items currently being executed"), metrics.WithUnit("1")),
		workSeconds: p.Histogram("sluice.work.duration",
			metrics.WithDescription("work function execution time per attempt"), metrics.WithUnit("seconds")),
	}
}
