package sluice

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dfalkner/sluice/internal/seqqueue"
)

// WorkFunc is the unit of work supplied by the embedding application. It is
// invoked once per submitted item; its error (or panic) is captured into that
// item's Result and never terminates a worker. ctx ends only on a forced
// stop, so cooperative work functions should watch it.
type WorkFunc[T, R any] func(ctx context.Context, item T) (R, error)

// Pool fans submitted items out to a fixed set of resident workers over a
// bounded intake queue and fans their Results back into a single stream.
// Methods are safe for concurrent use. Construct with New; a Pool starts
// running immediately.
//
// Every admitted item yields exactly one Result: completed, failed, or
// cancelled. Items still queued when the pool stops are swept into Cancelled
// Results, so consumers can range over Results() until it closes and account
// for every submission.
type Pool[T, R any] struct {
	// noCopy prevents accidental copying of the controller.
	nc noCopy

	cfg  *config
	work WorkFunc[T, R]

	queue   *seqqueue.Queue[T]
	disp    *dispatcher[T]
	results chan Result[R]

	// execCtx ends on a forced stop (Kill or parent cancellation); in-flight
	// items observe it through their WorkFunc ctx.
	execCtx    context.Context
	execCancel context.CancelFunc
	unwatch    func() bool

	state     atomic.Int32
	workersWG sync.WaitGroup
	stopped   chan struct{} // closed when teardown completes

	ins *instruments
	log *zap.Logger
}

// noCopy is a vet-recognized marker to discourage copying types with this field embedded.
// It works with the "-copylocks" analyzer via the presence of Lock/Unlock methods.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New creates a running Pool executing work with the configured options.
// The pool follows ctx: cancelling it is equivalent to Kill.
func New[T, R any](ctx context.Context, work WorkFunc[T, R], opts ...Option) (*Pool[T, R], error) {
	if work == nil {
		return nil, errorc.With(ErrInvalidConfig, errorc.String("", "work function must be non-nil"))
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	p := &Pool[T, R]{}
	p.initialize(ctx, &cfg, work)
	return p, nil
}

// initialize wires the queue, workers, and supervisor, then lets them run.
func (p *Pool[T, R]) initialize(ctx context.Context, cfg *config, work WorkFunc[T, R]) {
	workers := cfg.workerCount()
	capacity := cfg.queueCapacity()

	p.cfg = cfg
	p.work = work
	p.queue = seqqueue.New[T](capacity)
	p.results = make(chan Result[R], cfg.ResultsBuffer)
	p.stopped = make(chan struct{})
	p.log = cfg.logger().Named(Namespace)
	p.ins = newInstruments(cfg.metricsProvider())
	p.disp = newDispatcher(p.queue, p.ins)
	p.execCtx, p.execCancel = context.WithCancel(ctx)

	var limiter *rate.Limiter
	if cfg.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RateBurst)
	}

	p.workersWG.Add(workers)
	for i := 0; i < workers; i++ {
		exec := newExecutor(work, cfg, limiter, p.ins, p.log)
		w := newWorker(i, p.queue, exec, p.publish, p.ins, p.log)
		go func() {
			defer p.workersWG.Done()
			w.run(p.execCtx)
		}()
	}
	go p.supervise()

	// Parent cancellation forces a stop. Released at teardown.
	p.unwatch = context.AfterFunc(ctx, p.Kill)

	p.log.Debug("pool started",
		zap.Int("workers", workers), zap.Int("capacity", capacity))
}

// Submit enqueues an item and returns its sequence number. It blocks while
// the queue is at capacity and unblocks when a worker frees a slot or the
// pool leaves Running, in which case it fails with ErrQueueClosed.
func (p *Pool[T, R]) Submit(item T) (uint64, error) {
	return p.disp.submit(context.Background(), item)
}

// SubmitContext is Submit with a caller deadline: when ctx ends first the
// call fails with ErrTimeout and the item is not admitted. The expiry never
// alters pool state.
func (p *Pool[T, R]) SubmitContext(ctx context.Context, item T) (uint64, error) {
	return p.disp.submit(ctx, item)
}

// TrySubmit enqueues an item without blocking. It returns (seq, true, nil) on
// admission, (0, false, nil) when the queue is merely full, and
// (0, false, ErrQueueClosed) once the pool has left Running.
func (p *Pool[T, R]) TrySubmit(item T) (uint64, bool, error) {
	return p.disp.trySubmit(item)
}

// Results returns the merged result stream. It closes after the last Result,
// including the Cancelled Results of items swept at teardown. Consumers must
// drain it; an abandoned stream eventually blocks the workers.
func (p *Pool[T, R]) Results() <-chan Result[R] { return p.results }

// Collector wraps the pool's result stream in a pull iterator. See
// NewCollector for the delivery contract.
func (p *Pool[T, R]) Collector(opts ...CollectorOption) (*Collector[R], error) {
	return NewCollector(p.results, opts...)
}

// State reports the current lifecycle stage.
func (p *Pool[T, R]) State() State { return State(p.state.Load()) }

// publish delivers one Result, honoring backpressure. During a forced stop a
// blocked delivery is surrendered instead of deadlocking; reports whether the
// Result was delivered.
func (p *Pool[T, R]) publish(r Result[R]) bool {
	select {
	case p.results <- r:
		return true
	default:
	}
	select {
	case p.results <- r:
		return true
	case <-p.execCtx.Done():
		select {
		case p.results <- r:
			return true
		default:
			p.log.Debug("result surrendered at forced stop", zap.Uint64("seq", r.Seq))
			return false
		}
	}
}
