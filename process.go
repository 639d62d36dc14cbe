package sluice

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Process runs every item through a fresh pool configured by opts and
// returns the computed values in input order: values[i] belongs to items[i].
//
// Per-item failures do not abort the batch; the failed slots keep their zero
// value and the joined failures come back as the error (match individual
// ones with errors.Is against ErrWorkFailed and friends). A pool-level
// failure (invalid options, ctx ending mid-batch) aborts the batch and is
// returned alone.
func Process[T, R any](ctx context.Context, items []T, work WorkFunc[T, R], opts ...Option) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	p, err := New(ctx, work, opts...)
	if err != nil {
		return nil, err
	}

	values := make([]R, len(items))
	itemErrs := make([]error, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for _, item := range items {
			if _, err := p.SubmitContext(gctx, item); err != nil {
				p.Kill()
				return err
			}
		}
		return p.Shutdown(gctx)
	})
	g.Go(func() error {
		// Process is the only submitter, so sequence i+1 is items[i].
		for r := range p.Results() {
			i := int(r.Seq - 1)
			if r.Err != nil {
				itemErrs[i] = r.Err
				continue
			}
			values[i] = r.Value
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, errors.Join(itemErrs...)
}
