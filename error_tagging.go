package sluice

import (
	"errors"
	"fmt"
)

// ItemMetaError exposes correlation metadata for a failed item.
type ItemMetaError interface {
	error
	Unwrap() error
	ItemSeq() (uint64, bool)
}

type itemTaggedError struct {
	err error
	seq uint64
}

func newItemTaggedError(err error, seq uint64) error {
	if err == nil {
		return nil
	}
	return &itemTaggedError{err: err, seq: seq}
}

func (e *itemTaggedError) Error() string { return e.err.Error() }
func (e *itemTaggedError) Unwrap() error { return e.err }

func (e *itemTaggedError) ItemSeq() (uint64, bool) { return e.seq, true }

func (e *itemTaggedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "item(seq=%d): %+v", e.seq, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractSeq returns the sequence number attached to err, if any.
func ExtractSeq(err error) (uint64, bool) {
	var ime ItemMetaError
	if errors.As(err, &ime) {
		return ime.ItemSeq()
	}
	return 0, false
}
