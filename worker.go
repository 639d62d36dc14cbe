package sluice

import (
	"context"

	"go.uber.org/zap"

	"github.com/dfalkner/sluice/internal/seqqueue"
)

// worker is one resident execution unit. It loops: take an item from the
// shared queue, execute it, publish exactly one Result. It exits when the
// queue reports drained; a forced stop additionally ends the take wait
// through the execution context.
type worker[T, R any] struct {
	id      int
	queue   *seqqueue.Queue[T]
	exec    *executor[T, R]
	publish func(Result[R]) bool
	ins     *instruments
	log     *zap.Logger
}

func newWorker[T, R any](id int, queue *seqqueue.Queue[T], exec *executor[T, R], publish func(Result[R]) bool, ins *instruments, log *zap.Logger) *worker[T, R] {
	return &worker[T, R]{id: id, queue: queue, exec: exec, publish: publish, ins: ins, log: log}
}

// run is the worker loop. It returns when no further items will be handed
// out. Workers never share per-item state; the queue and the results stream
// serialize all sharing.
func (w *worker[T, R]) run(ctx context.Context) {
	w.log.Debug("worker started", zap.Int("worker", w.id))
	for {
		e, err := w.queue.Take(ctx)
		if err != nil {
			w.log.Debug("worker exiting", zap.Int("worker", w.id))
			return
		}
		w.ins.queueDepth.Add(-1)
		w.ins.inflight.Add(1)
		r := w.exec.run(ctx, e.Seq, e.Value)
		w.ins.inflight.Add(-1)
		w.publish(r)
	}
}
