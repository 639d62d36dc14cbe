package sluice

import "context"

// Stream feeds a fresh pool from in until that channel closes or ctx ends,
// and returns the pool's result stream. The returned channel closes after
// the last Result. When in closes, the pool drains what was admitted; when
// ctx ends, the pool stops forcibly and unprocessed items surface as
// Cancelled Results.
//
// Wrap the returned channel in NewCollector to consume it in submission
// order.
func Stream[T, R any](ctx context.Context, in <-chan T, work WorkFunc[T, R], opts ...Option) (<-chan Result[R], error) {
	p, err := New(ctx, work, opts...)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			select {
			case item, ok := <-in:
				if !ok {
					_ = p.Shutdown(ctx)
					return
				}
				if _, err := p.SubmitContext(ctx, item); err != nil {
					p.Kill()
					return
				}
			case <-ctx.Done():
				p.Kill()
				return
			}
		}
	}()

	return p.Results(), nil
}
