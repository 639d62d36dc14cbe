package sluice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// executor runs one item at a time under the pool's execution contract and
// folds the outcome into a Result. Each worker owns one executor so the
// backoff schedule is never shared; the rate limiter is pool-wide.
type executor[T, R any] struct {
	work     WorkFunc[T, R]
	attempts uint
	schedule *backoff.ExponentialBackOff // nil unless attempts > 1
	limiter  *rate.Limiter               // nil unless rate limited
	tag      bool
	ins      *instruments
	log      *zap.Logger
}

func newExecutor[T, R any](work WorkFunc[T, R], cfg *config, limiter *rate.Limiter, ins *instruments, log *zap.Logger) *executor[T, R] {
	e := &executor[T, R]{
		work:     work,
		attempts: cfg.RetryAttempts,
		limiter:  limiter,
		tag:      cfg.ErrorTagging,
		ins:      ins,
		log:      log,
	}
	if cfg.RetryAttempts > 1 {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = cfg.RetryInitial
		e.schedule = b
	}
	return e
}

// run executes one item, retrying per configuration, and returns its Result.
// ctx is the pool's execution context: it ends only on a forced stop, which
// turns the in-flight item into a Cancelled Result.
func (e *executor[T, R]) run(ctx context.Context, seq uint64, item T) Result[R] {
	if e.limiter != nil {
		// Wait fails when ctx ends or when a ctx deadline makes the wait
		// futile; either way the item can no longer run.
		if err := e.limiter.Wait(ctx); err != nil {
			return e.result(seq, *new(R), fmt.Errorf("%w: %w", ErrCancelled, err))
		}
	}

	if e.schedule != nil {
		e.schedule.Reset()
	}

	var (
		value R
		err   error
	)
	for attempt := uint(1); ; attempt++ {
		start := time.Now()
		value, err = e.attempt(ctx, item)
		e.ins.workSeconds.Record(time.Since(start).Seconds())

		if err == nil || attempt >= e.attempts || errors.Is(err, ErrCancelled) {
			break
		}
		e.log.Debug("retrying item",
			zap.Uint64("seq", seq), zap.Uint("attempt", attempt), zap.Error(err))
		if !e.delay(ctx) {
			err = fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
			break
		}
	}
	return e.result(seq, value, err)
}

// attempt runs the work function once. The function executes in its own
// goroutine so a forced stop can walk away from it; an abandoned call keeps
// running until it returns on its own, and its outcome is discarded. A panic
// is captured as ErrWorkPanicked, any other failure as ErrWorkFailed.
func (e *executor[T, R]) attempt(ctx context.Context, item T) (R, error) {
	type outcome struct {
		value R
		err   error
	}

	done := make(chan outcome, 1)
	go func() {
		var out outcome
		defer func() {
			if p := recover(); p != nil {
				e.log.Warn("work function panicked", zap.Any("panic", p))
				out.err = fmt.Errorf("%w: %v", ErrWorkPanicked, p)
			}
			done <- out
		}()
		out.value, out.err = e.work(ctx, item)
	}()

	select {
	case <-ctx.Done():
		return *(new(R)), fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	case out := <-done:
		switch {
		case out.err == nil:
		case errors.Is(out.err, ErrWorkPanicked):
		case ctx.Err() != nil && errors.Is(out.err, ctx.Err()):
			// The function observed the forced stop itself; classify the same
			// as an abandoned call so the outcome does not depend on which
			// select branch wins.
			out.err = fmt.Errorf("%w: %w", ErrCancelled, out.err)
		default:
			out.err = fmt.Errorf("%w: %w", ErrWorkFailed, out.err)
		}
		return out.value, out.err
	}
}

// delay sleeps for the next backoff interval. It returns false when the
// execution context ends first (forced stop).
func (e *executor[T, R]) delay(ctx context.Context) bool {
	t := time.NewTimer(e.schedule.NextBackOff())
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// result classifies the outcome, updates counters, and applies tagging.
func (e *executor[T, R]) result(seq uint64, value R, err error) Result[R] {
	if err == nil {
		e.ins.completed.Add(1)
		return Result[R]{Seq: seq, Value: value}
	}
	if errors.Is(err, ErrCancelled) {
		e.ins.cancelled.Add(1)
	} else {
		e.ins.failed.Add(1)
	}
	if e.tag {
		err = newItemTaggedError(err, seq)
	}
	return Result[R]{Seq: seq, Err: err}
}
