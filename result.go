package sluice

// Result is the outcome of one submitted item. Seq is the sequence number
// assigned when the item entered the queue (starting at 1). Exactly one of
// Value and Err is meaningful: Err is nil on success, and otherwise wraps
// ErrWorkFailed, ErrWorkPanicked, or ErrCancelled. Immutable once produced.
type Result[R any] struct {
	Seq   uint64
	Value R
	Err   error
}
