package sluice

import "errors"

const Namespace = "sluice"

var (
	ErrQueueClosed     = errors.New(Namespace + ": pool is not accepting new items")
	ErrReorderOverflow = errors.New(Namespace + ": reorder window exceeded")
	ErrTimeout         = errors.New(Namespace + ": deadline expired")
	ErrWorkFailed      = errors.New(Namespace + ": work function failed")
	ErrWorkPanicked    = errors.New(Namespace + ": work function panicked")
	ErrCancelled       = errors.New(Namespace + ": item cancelled")
	ErrDrained         = errors.New(Namespace + ": result stream drained")
	ErrInvalidConfig   = errors.New(Namespace + ": invalid configuration")
)
