package semaphore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/notorious-go/primitives/waitqueue"
)

// ErrCapacityExceeded is returned by Release on a bounded semaphore when the
// release would push the permit count above the configured capacity. It
// indicates an unpaired Release somewhere in the calling code.
var ErrCapacityExceeded = errors.New("semaphore: release exceeds capacity")

// A Semaphore is a counting semaphore with strict FIFO fairness. Acquire
// takes a permit, blocking while none are free; Release returns one,
// handing it directly to the longest-waiting acquirer if any is queued.
//
// Use [New] or [NewBounded] to create one. A Semaphore must not be copied
// after first use.
type Semaphore struct {
	mu       sync.Mutex
	permits  int
	capacity int // 0 means unbounded
	q        waitqueue.Queue
}

// New creates a semaphore holding the given number of free permits. The
// semaphore is unbounded: Release never fails, and permits released in
// excess of those acquired simply grow the count. New panics if permits is
// negative.
func New(permits int) *Semaphore {
	if permits < 0 {
		panic("semaphore: negative permit count")
	}
	return &Semaphore{permits: permits}
}

// NewBounded creates a semaphore holding the given number of free permits
// and an upper bound the permit count may never exceed. A Release that
// would break the bound fails with [ErrCapacityExceeded].
//
// NewBounded panics if capacity < 1, permits is negative, or permits
// exceeds capacity; a bound the initial state already violates is a
// construction bug, not a runtime condition.
func NewBounded(permits, capacity int) *Semaphore {
	if capacity < 1 {
		panic("semaphore: capacity must be at least 1")
	}
	if permits < 0 {
		panic("semaphore: negative permit count")
	}
	if permits > capacity {
		panic("semaphore: permits exceed capacity")
	}
	return &Semaphore{permits: permits, capacity: capacity}
}

// String returns a human-readable snapshot of the semaphore's state, in
// "Semaphore(free/capacity)" form for bounded semaphores and
// "Semaphore(free, unbounded)" form otherwise. It enables direct printing
// of semaphores in fmt operations.
func (s *Semaphore) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capacity == 0 {
		return fmt.Sprintf("Semaphore(%v, unbounded)", s.permits)
	}
	return fmt.Sprintf("Semaphore(%v/%v)", s.permits, s.capacity)
}

// Acquire takes a permit, blocking until one is available. If permits are
// free and nobody is queued, Acquire returns immediately; otherwise the
// caller joins the back of the queue and blocks until a Release hands a
// permit directly to it.
//
// Typical usage pattern:
//
//	s.Acquire()
//	defer s.Release()
//	// ... do work ...
func (s *Semaphore) Acquire() {
	s.mu.Lock()
	if s.permits > 0 && s.q.Len() == 0 {
		s.permits--
		s.mu.Unlock()
		return
	}
	w := s.q.Enqueue()
	s.mu.Unlock()

	// The permit arrives by handoff: the releasing goroutine never returned
	// it to the free count, so there is nothing left to claim here.
	<-w.Ready()
}

// TryAcquire takes a permit without blocking and reports whether it
// succeeded. It fails when no permits are free, and also when acquirers are
// queued. Failing on a non-empty queue keeps TryAcquire from barging ahead
// of goroutines already blocked in Acquire.
//
// This is useful when you want to attempt an operation but fall back to
// alternative behaviour if the semaphore is busy:
//
//	if s.TryAcquire() {
//	    defer s.Release()
//	    // ... do work ...
//	} else {
//	    // ... handle the "too busy" case ...
//	}
func (s *Semaphore) TryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permits == 0 || s.q.Len() > 0 {
		return false
	}
	s.permits--
	return true
}

// AcquireContext takes a permit like Acquire but gives up when ctx is done,
// returning the context's error. A nil return means the caller holds a
// permit and must eventually Release it; a non-nil return means it does
// not.
//
// If ctx is already done, AcquireContext returns its error without
// acquiring. If cancellation and the handoff race, the handoff wins: the
// caller holds the permit and AcquireContext returns nil.
func (s *Semaphore) AcquireContext(ctx context.Context) error {
	s.mu.Lock()
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.permits > 0 && s.q.Len() == 0 {
		s.permits--
		s.mu.Unlock()
		return nil
	}
	w := s.q.Enqueue()
	s.mu.Unlock()

	select {
	case <-w.Ready():
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		removed := s.q.Remove(w)
		s.mu.Unlock()
		if removed {
			return ctx.Err()
		}
		// The handoff beat the cancellation; the permit is this caller's.
		return nil
	}
}

// Release returns a permit. If acquirers are queued, the permit is handed
// directly to the one that has waited longest and the free count does not
// change; a concurrent Acquire or TryAcquire cannot intercept it.
//
// On a bounded semaphore, a Release that would push the free count above
// capacity fails with an error wrapping [ErrCapacityExceeded] and leaves
// the count unchanged. An unbounded semaphore never fails; releasing more
// than was acquired grows the count.
func (s *Semaphore) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.q.WakeFront() != nil {
		// Handoff. The waiter owns the permit; the count is unchanged.
		return nil
	}
	if s.capacity > 0 && s.permits == s.capacity {
		return fmt.Errorf("%w: %d permits already free", ErrCapacityExceeded, s.permits)
	}
	s.permits++
	return nil
}

// Permits reports the number of free permits. The count is advisory: it may
// be stale by the time Permits returns.
func (s *Semaphore) Permits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permits
}

// Capacity reports the bound configured with NewBounded, or 0 for an
// unbounded semaphore.
func (s *Semaphore) Capacity() int {
	return s.capacity
}

// Waiting reports how many goroutines are blocked in Acquire or
// AcquireContext. The count is advisory: it may be stale by the time
// Waiting returns.
func (s *Semaphore) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.Len()
}
