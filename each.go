package sluice

import "context"

// Each runs fn once per item through a fresh pool configured by opts and
// returns the joined failures (nil when every item succeeded). It is Process
// for side-effecting work that produces no values; enable WithErrorTagging
// to recover each failure's sequence number via ExtractSeq.
func Each[T any](ctx context.Context, items []T, fn func(context.Context, T) error, opts ...Option) error {
	_, err := Process(ctx, items, func(ctx context.Context, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, item)
	}, opts...)
	return err
}
