package sluice

import (
	"time"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/dfalkner/sluice/metrics"
)

// Option configures a Pool. Use New(ctx, work, opts...) to construct a Pool
// via options. An Option returns an error on invalid input instead of
// panicking.
type Option func(*config) error

// WithWorkers sets the number of resident workers (must be > 0).
// The default is runtime.GOMAXPROCS(0).
func WithWorkers(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithWorkers requires n > 0"))
		}
		cfg.Workers = n
		return nil
	}
}

// WithQueueCapacity bounds the intake queue (must be > 0).
// The default is workers * 4. Submissions block while the queue is full.
func WithQueueCapacity(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithQueueCapacity requires n > 0"))
		}
		cfg.QueueCapacity = n
		return nil
	}
}

// WithResultsBuffer sets the size of the results channel buffer (default 1024).
// Zero is a valid choice and makes the channel unbuffered.
func WithResultsBuffer(size uint) Option {
	return func(cfg *config) error { cfg.ResultsBuffer = size; return nil }
}

// WithErrorTagging wraps every Result error with the item's sequence number.
// Use ExtractSeq to read it back from an error value.
func WithErrorTagging() Option {
	return func(cfg *config) error { cfg.ErrorTagging = true; return nil }
}

// WithRetry re-runs a failed item up to attempts total executions, waiting an
// exponentially growing interval between attempts starting at initial.
// Retries respect forced stops: a kill during the wait cancels the item.
func WithRetry(attempts uint, initial time.Duration) Option {
	return func(cfg *config) error {
		if attempts < 2 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithRetry requires attempts > 1"))
		}
		if initial <= 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithRetry requires initial > 0"))
		}
		cfg.RetryAttempts = attempts
		cfg.RetryInitial = initial
		return nil
	}
}

// WithRateLimit caps pool-wide execution starts at perSec per second with the
// given burst. Workers wait on the shared limiter before each item.
func WithRateLimit(perSec float64, burst int) Option {
	return func(cfg *config) error {
		if perSec <= 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithRateLimit requires perSec > 0"))
		}
		if burst < 1 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithRateLimit requires burst >= 1"))
		}
		cfg.RatePerSec = perSec
		cfg.RateBurst = burst
		return nil
	}
}

// WithLogger sets the logger receiving lifecycle events (default zap.NewNop()).
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithLogger requires a non-nil logger"))
		}
		cfg.Logger = l
		return nil
	}
}

// WithMetrics sets the provider the pool builds its instruments from
// (default metrics.NewNoopProvider()).
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}
