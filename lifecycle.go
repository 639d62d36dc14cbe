package sluice

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Pool lifecycle. All stop entry points are idempotent, safe for concurrent
// use, and one-directional: Running -> Draining -> Stopped, never backwards.
// Closing the queue is the authoritative admission gate; the state word
// follows it, so no submission can slip in after a stop request.

// Stop requests a cooperative, cancel-pending stop and returns immediately.
// In-flight items finish normally; items still queued are not started and
// are reported as Cancelled Results once the pool reaches Stopped.
func (p *Pool[T, R]) Stop() {
	p.queue.Close()
	p.enterDraining("stop")
}

// Shutdown drains gracefully: intake closes, workers finish everything
// already queued, then the pool stops with nothing to sweep. It blocks until
// teardown completes or ctx ends; in the latter case it escalates to Kill
// and fails with ErrTimeout.
func (p *Pool[T, R]) Shutdown(ctx context.Context) error {
	p.queue.CloseIntake()
	p.enterDraining("shutdown")

	select {
	case <-p.stopped:
		return nil
	case <-ctx.Done():
		p.Kill()
		<-p.stopped
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}

// Kill forces a stop: intake closes, in-flight items are abandoned and
// reported as Cancelled, queued items are swept. Returns immediately.
// Cancelling the context passed to New has the same effect.
func (p *Pool[T, R]) Kill() {
	p.queue.Close()
	p.enterDraining("kill")
	p.execCancel()
}

// Wait blocks until the pool reaches Stopped, or fails with ErrTimeout when
// ctx ends first.
func (p *Pool[T, R]) Wait(ctx context.Context) error {
	select {
	case <-p.stopped:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}

// Done returns a channel that closes when the pool reaches Stopped.
func (p *Pool[T, R]) Done() <-chan struct{} { return p.stopped }

// enterDraining moves Running -> Draining once; later callers are no-ops.
func (p *Pool[T, R]) enterDraining(mode string) {
	if p.state.CompareAndSwap(int32(Running), int32(Draining)) {
		p.log.Debug("pool draining", zap.String("mode", mode))
	}
}

// supervise runs the teardown sequence exactly once, after the last worker
// exits:
//  1. close the queue fully (a no-op except on the drain path)
//  2. sweep entries the workers never took
//  3. mark Stopped and release waiters
//  4. publish a Cancelled Result for every swept entry
//  5. close the results stream
//  6. release the execution context and the parent watch
func (p *Pool[T, R]) supervise() {
	p.workersWG.Wait()

	p.queue.Close()
	swept := p.queue.Sweep()

	p.state.Store(int32(Stopped))
	close(p.stopped)

	for _, e := range swept {
		p.ins.cancelled.Add(1)
		p.ins.queueDepth.Add(-1)
		err := error(ErrCancelled)
		if p.cfg.ErrorTagging {
			err = newItemTaggedError(err, e.Seq)
		}
		p.publish(Result[R]{Seq: e.Seq, Err: err})
	}
	close(p.results)

	p.execCancel()
	p.unwatch()
	p.log.Debug("pool stopped", zap.Int("swept", len(swept)))
}
