package sluice

import (
	"context"
	"errors"
	"fmt"

	"github.com/dfalkner/sluice/internal/seqqueue"
)

// dispatcher is the admission side of the pool. It owns the mapping from
// queue conditions to the pool's error taxonomy: a closed intake becomes
// ErrQueueClosed, a caller deadline becomes ErrTimeout. The queue itself
// stamps sequence numbers, so admission and numbering are one atomic step.
type dispatcher[T any] struct {
	queue *seqqueue.Queue[T]
	ins   *instruments
}

func newDispatcher[T any](queue *seqqueue.Queue[T], ins *instruments) *dispatcher[T] {
	return &dispatcher[T]{queue: queue, ins: ins}
}

// submit inserts item, blocking while the queue is full. ctx bounds the wait;
// its expiry never alters pool state.
func (d *dispatcher[T]) submit(ctx context.Context, item T) (uint64, error) {
	seq, err := d.queue.Put(ctx, item)
	switch {
	case err == nil:
		d.ins.submitted.Add(1)
		d.ins.queueDepth.Add(1)
		return seq, nil
	case errors.Is(err, seqqueue.ErrClosed):
		return 0, ErrQueueClosed
	default:
		return 0, fmt.Errorf("%w: %w", ErrTimeout, err)
	}
}

// trySubmit inserts item without blocking.
func (d *dispatcher[T]) trySubmit(item T) (uint64, bool, error) {
	seq, ok, err := d.queue.TryPut(item)
	switch {
	case err == nil && ok:
		d.ins.submitted.Add(1)
		d.ins.queueDepth.Add(1)
		return seq, true, nil
	case err == nil:
		return 0, false, nil
	default:
		return 0, false, ErrQueueClosed
	}
}
