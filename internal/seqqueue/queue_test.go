package seqqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestPutTake_FIFOAndSequence(t *testing.T) {
	q := New[string](4)
	ctx := context.Background()

	for i, v := range []string{"a", "b", "c"} {
		seq, err := q.Put(ctx, v)
		if err != nil {
			t.Fatalf("Put(%q) failed: %v", v, err)
		}
		if want := uint64(i + 1); seq != want {
			t.Fatalf("Put(%q) seq = %d; want %d", v, seq, want)
		}
	}

	for i, want := range []string{"a", "b", "c"} {
		e, err := q.Take(ctx)
		if err != nil {
			t.Fatalf("Take failed: %v", err)
		}
		if e.Value != want || e.Seq != uint64(i+1) {
			t.Fatalf("Take = (%q, %d); want (%q, %d)", e.Value, e.Seq, want, i+1)
		}
	}
}

// Capacity 2: two inserts are admitted, the third blocks until a Take frees a
// slot.
func TestPut_BlocksWhenFull_UnblocksOnTake(t *testing.T) {
	q := New[int](2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := q.Put(ctx, i); err != nil {
			t.Fatalf("Put(%d) failed: %v", i, err)
		}
	}

	done := make(chan struct{})
	go func() {
		_, _ = q.Put(ctx, 2)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	select {
	case <-done:
		t.Fatalf("Put should have been blocked on a full queue")
	default:
	}

	if _, err := q.Take(ctx); err != nil {
		t.Fatalf("Take failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatalf("timed out waiting for blocked Put to unblock after Take")
	}
}

func TestTryPut(t *testing.T) {
	q := New[int](1)

	seq, ok, err := q.TryPut(10)
	if err != nil || !ok || seq != 1 {
		t.Fatalf("TryPut = (%d, %v, %v); want (1, true, nil)", seq, ok, err)
	}

	// Full queue: refused without error.
	seq, ok, err = q.TryPut(11)
	if err != nil || ok || seq != 0 {
		t.Fatalf("TryPut on full = (%d, %v, %v); want (0, false, nil)", seq, ok, err)
	}

	q.CloseIntake()
	_, ok, err = q.TryPut(12)
	if ok || !errors.Is(err, ErrClosed) {
		t.Fatalf("TryPut after CloseIntake = (ok=%v, err=%v); want (false, ErrClosed)", ok, err)
	}
}

// A Put that gives up on its deadline must not consume a sequence number;
// numbering stays dense for the items that do get in.
func TestPut_DeadlineExpired_NoSequenceHole(t *testing.T) {
	q := New[int](1)
	ctx := context.Background()

	if _, err := q.Put(ctx, 0); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := q.Put(shortCtx, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Put with expired deadline: err = %v; want DeadlineExceeded", err)
	}

	if _, err := q.Take(ctx); err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	seq, err := q.Put(ctx, 2)
	if err != nil {
		t.Fatalf("Put after Take failed: %v", err)
	}
	if seq != 2 {
		t.Fatalf("seq after failed Put = %d; want 2 (no hole)", seq)
	}
}

func TestTake_BlocksUntilPut(t *testing.T) {
	q := New[int](2)
	ctx := context.Background()

	got := make(chan Entry[int], 1)
	go func() {
		e, err := q.Take(ctx)
		if err != nil {
			return
		}
		got <- e
	}()

	time.Sleep(50 * time.Millisecond)
	select {
	case <-got:
		t.Fatalf("Take should have been blocked on an empty queue")
	default:
	}

	if _, err := q.Put(ctx, 7); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	select {
	case e := <-got:
		if e.Value != 7 || e.Seq != 1 {
			t.Fatalf("Take = (%d, %d); want (7, 1)", e.Value, e.Seq)
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("timed out waiting for blocked Take to receive")
	}
}

func TestTake_ContextCancelWakes(t *testing.T) {
	q := New[int](2)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Take(ctx)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Take after cancel: err = %v; want Canceled", err)
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("timed out waiting for cancelled Take to return")
	}
}

func TestCloseIntake_TakeDrainsRemainder(t *testing.T) {
	q := New[int](4)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := q.Put(ctx, i); err != nil {
			t.Fatalf("Put(%d) failed: %v", i, err)
		}
	}
	q.CloseIntake()

	if _, err := q.Put(ctx, 99); !errors.Is(err, ErrClosed) {
		t.Fatalf("Put after CloseIntake: err = %v; want ErrClosed", err)
	}

	for i := 0; i < 3; i++ {
		e, err := q.Take(ctx)
		if err != nil {
			t.Fatalf("Take #%d after CloseIntake failed: %v", i+1, err)
		}
		if e.Value != i {
			t.Fatalf("Take #%d = %d; want %d", i+1, e.Value, i)
		}
	}
	if _, err := q.Take(ctx); !errors.Is(err, ErrDrained) {
		t.Fatalf("Take on drained queue: err = %v; want ErrDrained", err)
	}
}

func TestClose_ReservesRemainderForSweep(t *testing.T) {
	q := New[int](4)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := q.Put(ctx, i); err != nil {
			t.Fatalf("Put(%d) failed: %v", i, err)
		}
	}
	q.Close()

	// Items remain queued but are no longer reachable through Take.
	if _, err := q.Take(ctx); !errors.Is(err, ErrDrained) {
		t.Fatalf("Take after Close: err = %v; want ErrDrained", err)
	}

	swept := q.Sweep()
	if len(swept) != 3 {
		t.Fatalf("Sweep returned %d entries; want 3", len(swept))
	}
	for i, e := range swept {
		if e.Seq != uint64(i+1) || e.Value != i {
			t.Fatalf("swept[%d] = (%d, %d); want (%d, %d)", i, e.Seq, e.Value, i+1, i)
		}
	}
	if again := q.Sweep(); again != nil {
		t.Fatalf("second Sweep = %v; want nil", again)
	}
}

func TestSweep_BeforeClose_ReturnsNil(t *testing.T) {
	q := New[int](2)
	if _, err := q.Put(context.Background(), 1); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if got := q.Sweep(); got != nil {
		t.Fatalf("Sweep before Close = %v; want nil", got)
	}
	if q.Len() != 1 {
		t.Fatalf("Len after refused Sweep = %d; want 1", q.Len())
	}
}

func TestPut_WakesOnClose(t *testing.T) {
	q := New[int](1)
	ctx := context.Background()

	if _, err := q.Put(ctx, 0); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Put(ctx, 1)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("blocked Put after Close: err = %v; want ErrClosed", err)
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("timed out waiting for blocked Put to wake on Close")
	}
}

func TestTake_WakesOnCloseIntake(t *testing.T) {
	q := New[int](1)

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Take(context.Background())
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.CloseIntake()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrDrained) {
			t.Fatalf("blocked Take after CloseIntake: err = %v; want ErrDrained", err)
		}
	case <-time.After(1 * time.Second):
		t.Fatalf("timed out waiting for blocked Take to wake on CloseIntake")
	}
}

// Concurrent producers and consumers: every accepted item is handed out
// exactly once and sequence numbers form the dense range 1..N.
func TestQueue_ConcurrentHandoff(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.IntRange(1, 16).Draw(t, "capacity")
		items := rapid.IntRange(1, 128).Draw(t, "items")
		producers := rapid.IntRange(1, 4).Draw(t, "producers")

		q := New[int](capacity)
		ctx := context.Background()

		var wg sync.WaitGroup
		per := items / producers
		extra := items % producers
		for p := 0; p < producers; p++ {
			n := per
			if p < extra {
				n++
			}
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				for i := 0; i < n; i++ {
					if _, err := q.Put(ctx, i); err != nil {
						t.Errorf("Put failed: %v", err)
						return
					}
				}
			}(n)
		}
		go func() {
			wg.Wait()
			q.CloseIntake()
		}()

		seen := make(map[uint64]bool, items)
		for {
			e, err := q.Take(ctx)
			if err != nil {
				if !errors.Is(err, ErrDrained) {
					t.Fatalf("Take failed: %v", err)
				}
				break
			}
			if seen[e.Seq] {
				t.Fatalf("sequence %d handed out twice", e.Seq)
			}
			seen[e.Seq] = true
		}

		if len(seen) != items {
			t.Fatalf("took %d entries; want %d", len(seen), items)
		}
		for s := uint64(1); s <= uint64(items); s++ {
			if !seen[s] {
				t.Fatalf("sequence %d missing from hand-out", s)
			}
		}
	})
}
