package sluice

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/addrummond/heap"
	"github.com/ygrebnov/errorc"
)

// collectorConfig holds Collector configuration.
type collectorConfig struct {
	// Ordered releases Results strictly by ascending sequence number.
	// Default: false (first-available wins).
	Ordered bool

	// Window bounds how many out-of-sequence Results an ordered collector
	// may hold back. Default: 1024.
	Window uint
}

// CollectorOption configures a Collector. Use NewCollector(src, opts...); an
// option returns an error on invalid input instead of panicking.
type CollectorOption func(*collectorConfig) error

// WithOrdered makes the collector release Results strictly by ascending
// sequence number, holding out-of-sequence arrivals in a bounded window.
func WithOrdered() CollectorOption {
	return func(cfg *collectorConfig) error { cfg.Ordered = true; return nil }
}

// WithReorderWindow bounds the ordered collector's hold-back buffer (must be
// > 0, default 1024). Implies WithOrdered. When one more Result would have to
// be held than the window allows, Next fails with ErrReorderOverflow.
func WithReorderWindow(n uint) CollectorOption {
	return func(cfg *collectorConfig) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithReorderWindow requires n > 0"))
		}
		cfg.Ordered = true
		cfg.Window = n
		return nil
	}
}

// pending is one held-back Result keyed by sequence number.
type pending[R any] struct {
	seq uint64
	res Result[R]
}

func (a *pending[R]) Cmp(b *pending[R]) int { return cmp.Compare(a.seq, b.seq) }

// Collector is a pull iterator over a Result stream, the consuming half of
// the pool's fan-in. Unordered it yields whatever arrives first; ordered it
// reconstructs submission order under a bounded reorder window.
//
// A Collector is for a single goroutine and a single pass: once the stream
// closes and buffers flush, Next keeps failing with ErrDrained, and a fresh
// run needs a fresh Collector over a fresh stream.
type Collector[R any] struct {
	src     <-chan Result[R]
	ordered bool
	window  int

	next   uint64 // ordered mode: lowest sequence not yet released
	held   int
	buf    heap.Heap[pending[R], heap.Min]
	closed bool
	failed error // sticky ReorderOverflow
}

// NewCollector constructs a Collector reading from src. For a pool stream,
// Pool.Collector is the shorthand.
func NewCollector[R any](src <-chan Result[R], opts ...CollectorOption) (*Collector[R], error) {
	if src == nil {
		return nil, errorc.With(ErrInvalidConfig, errorc.String("", "collector requires a non-nil source"))
	}
	cfg := collectorConfig{Window: defaultReorderWindow}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Collector[R]{
		src:     src,
		ordered: cfg.Ordered,
		window:  int(cfg.Window),
		next:    1,
	}, nil
}

// Next returns the next Result. It blocks until one is available; ctx bounds
// the wait, failing with ErrTimeout (pool state is never altered). After the
// stream is exhausted Next fails with ErrDrained. In ordered mode an arrival
// that cannot be held fails with ErrReorderOverflow and poisons the
// collector: every later call repeats the failure.
func (c *Collector[R]) Next(ctx context.Context) (Result[R], error) {
	var zero Result[R]
	if c.failed != nil {
		return zero, c.failed
	}
	if !c.ordered {
		return c.nextArrival(ctx)
	}
	return c.nextInOrder(ctx)
}

func (c *Collector[R]) nextArrival(ctx context.Context) (Result[R], error) {
	var zero Result[R]
	if c.closed {
		return zero, ErrDrained
	}
	select {
	case r, ok := <-c.src:
		if !ok {
			c.closed = true
			return zero, ErrDrained
		}
		return r, nil
	case <-ctx.Done():
		return zero, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}

func (c *Collector[R]) nextInOrder(ctx context.Context) (Result[R], error) {
	var zero Result[R]
	for {
		// Release the head while it is exactly the next expected sequence.
		if head, ok := heap.Peek(&c.buf); ok && head.seq == c.next {
			p, _ := heap.PopOrderable(&c.buf)
			c.held--
			c.next++
			return p.res, nil
		}

		if c.closed {
			// Tail flush: whatever is still held is all that remains, so a
			// gap means the missing sequences never reached this stream.
			// Release in ascending order past the gap.
			if p, ok := heap.PopOrderable(&c.buf); ok {
				c.held--
				c.next = p.seq + 1
				return p.res, nil
			}
			return zero, ErrDrained
		}

		select {
		case r, ok := <-c.src:
			if !ok {
				c.closed = true
				continue
			}
			if r.Seq == c.next {
				c.next++
				return r, nil
			}
			if c.held >= c.window {
				c.failed = ErrReorderOverflow
				return zero, c.failed
			}
			heap.PushOrderable(&c.buf, pending[R]{seq: r.Seq, res: r})
			c.held++
		case <-ctx.Done():
			return zero, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}
	}
}

// Drain collects Results until the stream is exhausted. On ErrTimeout or
// ErrReorderOverflow it returns the Results gathered so far alongside the
// error; plain exhaustion is not an error.
func (c *Collector[R]) Drain(ctx context.Context) ([]Result[R], error) {
	var out []Result[R]
	for {
		r, err := c.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrDrained) {
				return out, nil
			}
			return out, err
		}
		out = append(out, r)
	}
}
