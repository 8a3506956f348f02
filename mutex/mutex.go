package mutex

import (
	"context"
	"sync"

	"github.com/notorious-go/primitives/waitqueue"
)

// A Mutex is a mutual-exclusion lock with strict FIFO fairness. The zero
// value is an unlocked Mutex.
//
// Mutex implements [sync.Locker]. It must not be copied after first use.
type Mutex struct {
	mu   sync.Mutex
	held bool
	q    waitqueue.Queue
}

// Lock acquires the mutex. If the mutex is free and nobody is queued, Lock
// takes it immediately; otherwise the caller joins the back of the queue and
// blocks until a releasing goroutine hands the mutex directly to it.
//
// A goroutine that already holds the mutex must not call Lock again; the
// mutex is not reentrant and the second call blocks forever.
func (m *Mutex) Lock() {
	m.mu.Lock()
	if !m.held && m.q.Len() == 0 {
		m.held = true
		m.mu.Unlock()
		return
	}
	w := m.q.Enqueue()
	m.mu.Unlock()

	// Ownership arrives by handoff: the unlocking goroutine left held set
	// and woke this waiter, so there is nothing left to claim here.
	<-w.Ready()
}

// Unlock releases the mutex. If goroutines are queued, ownership transfers
// directly to the one that has waited longest and the mutex never becomes
// observably free; a concurrent Lock or TryLock cannot cut the queue.
//
// Unlocking an unlocked Mutex is a no-op. Unlock may be called by any
// goroutine, not only the one that locked.
func (m *Mutex) Unlock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.held {
		return
	}
	if m.q.WakeFront() != nil {
		// held stays true; the front waiter is the new owner.
		return
	}
	m.held = false
}

// TryLock acquires the mutex without blocking and reports whether it
// succeeded. It fails when the mutex is held, and also when waiters are
// queued. Failing on a non-empty queue keeps TryLock from barging ahead of
// goroutines already blocked in Lock.
func (m *Mutex) TryLock() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held || m.q.Len() > 0 {
		return false
	}
	m.held = true
	return true
}

// LockContext acquires the mutex like Lock but gives up when ctx is done,
// returning the context's error. A nil return means the caller holds the
// mutex and must eventually Unlock it; a non-nil return means it does not.
//
// If ctx is already done, LockContext returns its error without acquiring.
// If cancellation and the handoff race, the handoff wins: the caller owns
// the mutex and LockContext returns nil.
func (m *Mutex) LockContext(ctx context.Context) error {
	m.mu.Lock()
	if err := ctx.Err(); err != nil {
		m.mu.Unlock()
		return err
	}
	if !m.held && m.q.Len() == 0 {
		m.held = true
		m.mu.Unlock()
		return nil
	}
	w := m.q.Enqueue()
	m.mu.Unlock()

	select {
	case <-w.Ready():
		return nil
	case <-ctx.Done():
		m.mu.Lock()
		removed := m.q.Remove(w)
		m.mu.Unlock()
		if removed {
			return ctx.Err()
		}
		// The handoff beat the cancellation; this goroutine is the owner.
		return nil
	}
}

// Waiting reports how many goroutines are blocked acquiring the mutex. The
// count is advisory: it may be stale by the time Waiting returns.
func (m *Mutex) Waiting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.q.Len()
}
