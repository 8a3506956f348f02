// Package event provides a binary event flag with broadcast wakeup.
//
// An Event is a flag that goroutines can wait on. Setting the event wakes
// every current waiter at once and lets every later Wait return immediately,
// until the event is cleared again. It is the rendezvous half of a classic
// condition variable, with the condition fixed to "the flag is set". Fixing
// the condition is exactly what makes it misuse-resistant: the check of the
// flag and the decision to block happen atomically inside Wait, so a Set
// racing with a Wait can never be lost.
//
// Use an Event to signal a state transition to any number of goroutines
// ("initialization finished", "shutdown requested"). For handing off
// ownership of a resource to exactly one goroutine at a time, use the mutex
// or semaphore packages instead; their wakeups are one-at-a-time and FIFO.
package event

import (
	"context"
	"sync"

	"github.com/notorious-go/primitives/waitqueue"
)

// An Event is a binary flag with broadcast wakeup. The zero-value Event is
// ready to use and starts cleared.
//
// All methods are safe for concurrent use.
type Event struct {
	mu  sync.Mutex
	set bool
	q   waitqueue.Queue
}

// Wait blocks the calling goroutine until the event is set. It returns
// immediately if the event is already set.
//
// The flag check and the enqueue happen as one atomic step with respect to
// Set: either Wait observes the flag already set and returns, or its waiter
// is queued before Set runs and the broadcast wakes it. There is no window in
// between for the wakeup to be lost.
func (e *Event) Wait() {
	e.mu.Lock()
	if e.set {
		e.mu.Unlock()
		return
	}
	w := e.q.Enqueue()
	e.mu.Unlock()

	<-w.Ready()
}

// WaitContext blocks like Wait but gives up when ctx is done, returning the
// context's error. It returns nil when the event was set.
//
// If a Set broadcast and the cancellation race, the wakeup wins: WaitContext
// returns nil, because by the time the waiter tried to withdraw it had
// already been woken and the event observed as set.
func (e *Event) WaitContext(ctx context.Context) error {
	e.mu.Lock()
	if e.set {
		e.mu.Unlock()
		return nil
	}
	if err := ctx.Err(); err != nil {
		e.mu.Unlock()
		return err
	}
	w := e.q.Enqueue()
	e.mu.Unlock()

	select {
	case <-w.Ready():
		return nil
	case <-ctx.Done():
		e.mu.Lock()
		removed := e.q.Remove(w)
		e.mu.Unlock()
		if removed {
			return ctx.Err()
		}
		// Lost the race: the broadcast already woke this waiter, so the
		// wait is satisfied.
		return nil
	}
}

// Set sets the flag and wakes all current waiters. The flag transition and
// the broadcast are one atomic step: every waiter present when Set is called
// is woken, and no waiter can enqueue between the two. Setting an already-set
// event is a no-op.
func (e *Event) Set() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.set = true
	e.q.WakeAll()
}

// Clear resets the flag so that subsequent Wait calls block again. It does
// not affect goroutines already woken by an earlier Set.
func (e *Event) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.set = false
}

// IsSet reports whether the event is currently set. By the time IsSet
// returns, a concurrent Set or Clear may already have changed the flag; use
// it for monitoring, not for synchronization decisions.
func (e *Event) IsSet() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.set
}
