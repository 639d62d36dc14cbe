package sluice

import (
	"time"

	"go.uber.org/zap"

	"github.com/dfalkner/sluice/metrics"
)

// config holds Pool configuration.
type config struct {
	// Workers defines the number of resident workers.
	// Zero (default) resolves to runtime.GOMAXPROCS(0) at construction.
	Workers uint

	// QueueCapacity bounds the intake queue.
	// Zero (default) resolves to Workers * 4 at construction.
	QueueCapacity uint

	// ResultsBuffer defines the size of the results channel buffer.
	// Zero means unbuffered.
	// Default: 1024.
	ResultsBuffer uint

	// ErrorTagging wraps every Result error with the item's sequence number
	// so error-only pipelines can correlate failures. See ExtractSeq.
	// Default: false (disabled).
	ErrorTagging bool

	// RetryAttempts is the total number of execution attempts per item.
	// One (default) means a single attempt, no retries.
	RetryAttempts uint

	// RetryInitial is the first retry delay; later delays grow exponentially.
	// Only meaningful when RetryAttempts > 1.
	RetryInitial time.Duration

	// RatePerSec caps pool-wide execution starts per second.
	// Zero (default) means unlimited.
	RatePerSec float64

	// RateBurst is the burst size of the rate limiter.
	// Only meaningful when RatePerSec > 0.
	// Default: 1.
	RateBurst int

	// Logger receives lifecycle events. Default: zap.NewNop().
	Logger *zap.Logger

	// Metrics constructs the pool's instruments. Default: metrics.NewNoopProvider().
	Metrics metrics.Provider
}

// validateConfig performs lightweight invariants checks.
// It returns nil for all currently valid states; reserved for future validation expansions.
func validateConfig(_ *config) error {
	// Zero Workers/QueueCapacity resolve to defaults at construction.
	// Option constructors reject every individually invalid value.
	// No cross-field validation required at the moment.
	return nil
}

// workerCount resolves the effective number of workers.
func (c *config) workerCount() int {
	if c.Workers > 0 {
		return int(c.Workers)
	}
	return defaultWorkerCount()
}

// queueCapacity resolves the effective intake queue capacity.
func (c *config) queueCapacity() int {
	if c.QueueCapacity > 0 {
		return int(c.QueueCapacity)
	}
	return c.workerCount() * queueCapacityPerWorker
}

// logger resolves the effective logger.
func (c *config) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

// metricsProvider resolves the effective metrics provider.
func (c *config) metricsProvider() metrics.Provider {
	if c.Metrics != nil {
		return c.Metrics
	}
	return metrics.NewNoopProvider()
}
