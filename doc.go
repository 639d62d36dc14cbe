// Package sluice provides a bounded worker pool: items fan out from a shared
// intake queue to a fixed set of resident workers and their results fan back
// into a single stream, with cooperative cancellation throughout.
//
// Construction
//   - New(ctx, work, opts...): builds a running pool; there is no separate
//     start step. The pool follows ctx: cancelling it is equivalent to Kill.
//
// Defaults
// Unless overridden, a new pool uses:
//   - Workers: runtime.GOMAXPROCS(0)
//   - QueueCapacity: workers * 4
//   - ResultsBuffer: 1024
//   - no retries, no rate limit, no error tagging
//   - zap.NewNop() logging, no-op metrics
//
// Submission
// Submit blocks while the queue is at capacity and fails with ErrQueueClosed
// once the pool has left Running. SubmitContext bounds the wait with a
// deadline (ErrTimeout); TrySubmit never blocks. Every admitted item gets a
// dense sequence number, assigned at the moment it enters the queue.
//
// Results
// Results() is the merged stream; it closes after the last Result, so
// consumers can range over it and account for every admitted item: exactly
// one Result each, completed, failed, or cancelled. Work function errors and
// panics are captured per item and never abort the pool. Collector wraps the
// stream in a pull iterator; its ordered mode re-sequences arrivals under a
// bounded reorder window.
//
// Stopping
// Three flavors, all idempotent, all one-directional:
//   - Stop: cancel-pending. In-flight items finish, queued items are swept
//     into Cancelled Results.
//   - Shutdown: graceful. Queued items are executed first, then the pool
//     stops; a deadline escalates to Kill.
//   - Kill: forced. In-flight items are abandoned and reported Cancelled.
//
// Batches
// Process, Each, and Stream wrap the common submit-then-collect shapes over
// a pool they own.
package sluice
