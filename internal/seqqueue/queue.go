// Package seqqueue implements the bounded intake queue shared by the pool's
// submitters (writers) and workers (readers). Every accepted item is stamped
// with a sequence number at the moment it enters the queue, so numbering is
// dense: a blocked Put that gives up on a deadline or a close consumes
// nothing. Sequence numbers start at 1.
package seqqueue

import (
	"context"
	"errors"
	"sync"

	"github.com/gammazero/deque"
)

var (
	// ErrClosed is returned by Put and TryPut once intake has been closed.
	ErrClosed = errors.New("seqqueue: intake closed")

	// ErrDrained is returned by Take when no further items will be handed out:
	// either intake is closed and the queue is empty, or the queue was fully
	// closed and the remainder is reserved for Sweep.
	ErrDrained = errors.New("seqqueue: drained")
)

// phase is the queue lifecycle stage. Transitions are one-directional:
// open -> intakeClosed -> closed. CloseIntake and Close may skip stages but
// never move backwards.
type phase int

const (
	open         phase = iota
	intakeClosed       // no new items; Take still drains the remainder
	closed             // Take refuses; leftover items belong to Sweep
)

// Entry pairs a payload with the sequence number assigned on admission.
type Entry[T any] struct {
	Seq   uint64
	Value T
}

// Queue is a bounded FIFO guarded by one mutex and two condition variables.
// Put blocks while the queue is full, Take blocks while it is empty; both
// wake immediately on CloseIntake and Close, and both honor caller contexts.
// Safe for concurrent use. Use New to construct.
type Queue[T any] struct {
	mu       sync.Mutex
	notFull  sync.Cond
	notEmpty sync.Cond

	items    deque.Deque[Entry[T]]
	capacity int
	phase    phase
	nextSeq  uint64
}

// New constructs a queue with the given capacity. Capacity must be at least 1;
// the caller validates configuration before construction.
func New[T any](capacity int) *Queue[T] {
	q := &Queue[T]{capacity: capacity}
	q.notFull.L = &q.mu
	q.notEmpty.L = &q.mu
	return q
}

// Put inserts v, blocking while the queue is at capacity. It returns the
// sequence number assigned at insertion. It fails with ErrClosed once intake
// is closed (including when the close happens mid-wait) and with ctx.Err()
// when the caller's context ends first. A failed Put never assigns a number.
func (q *Queue[T]) Put(ctx context.Context, v T) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	// Wake any wait below when the caller's context fires. The broadcast
	// holds the lock so a waiter cannot miss the signal between its check
	// and its Wait.
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.notFull.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.phase != open {
			return 0, ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if q.items.Len() < q.capacity {
			break
		}
		q.notFull.Wait()
	}
	q.nextSeq++
	q.items.PushBack(Entry[T]{Seq: q.nextSeq, Value: v})
	q.notEmpty.Signal()
	return q.nextSeq, nil
}

// TryPut inserts v without blocking.
// Returns (seq, true, nil) on insertion, (0, false, nil) when the queue is
// merely full, and (0, false, ErrClosed) once intake is closed.
func (q *Queue[T]) TryPut(v T) (uint64, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.phase != open {
		return 0, false, ErrClosed
	}
	if q.items.Len() >= q.capacity {
		return 0, false, nil
	}
	q.nextSeq++
	q.items.PushBack(Entry[T]{Seq: q.nextSeq, Value: v})
	q.notEmpty.Signal()
	return q.nextSeq, true, nil
}

// Take removes the oldest entry, blocking while the queue is empty and intake
// is still open. It fails with ErrDrained when no further items will be
// handed out, and with ctx.Err() when the caller's context ends first.
func (q *Queue[T]) Take(ctx context.Context) (Entry[T], error) {
	var zero Entry[T]
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.notEmpty.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.phase == closed {
			return zero, ErrDrained
		}
		if q.items.Len() > 0 {
			break
		}
		if q.phase == intakeClosed {
			// Empty with intake closed: nothing more can ever arrive.
			return zero, ErrDrained
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		q.notEmpty.Wait()
	}
	e := q.items.PopFront()
	q.notFull.Signal()
	return e, nil
}

// CloseIntake stops admissions while letting Take drain the remainder.
// Idempotent; wakes every blocked Put and Take.
func (q *Queue[T]) CloseIntake() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.phase == open {
		q.phase = intakeClosed
	}
	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
}

// Close stops admissions and hand-outs both: queued entries are no longer
// reachable through Take and wait for Sweep. Idempotent; wakes every blocked
// Put and Take.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.phase = closed
	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
}

// Sweep removes and returns every entry still queued. It must only be called
// after Close; calling it earlier returns nil without touching the queue.
func (q *Queue[T]) Sweep() []Entry[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.phase != closed {
		return nil
	}
	if q.items.Len() == 0 {
		return nil
	}
	out := make([]Entry[T], 0, q.items.Len())
	for q.items.Len() > 0 {
		out = append(out, q.items.PopFront())
	}
	return out
}

// Len reports the number of queued entries.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Cap reports the fixed capacity.
func (q *Queue[T]) Cap() int { return q.capacity }
