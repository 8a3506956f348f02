package waitqueue

// A Queue is an ordered list of blocked waiters. Waiters are woken in the
// exact order they were enqueued (strict FIFO), one at a time via WakeFront
// or all at once via WakeAll, and may be withdrawn before being woken via
// Remove (cancellation).
//
// The zero-value Queue is empty and ready to use.
//
// A Queue is NOT safe for concurrent use by itself. The owning primitive must
// serialize all method calls under its own lock; see the package
// documentation for the locking contract.
type Queue struct {
	head *Waiter
	tail *Waiter
	size int
}

// A Waiter represents one blocked caller's place in a Queue. It is created by
// Enqueue and acts as the ticket for the two ways a wait can end: being woken
// (WakeFront/WakeAll) or being withdrawn (Remove). Exactly one of the two
// happens, at most once.
//
// The goroutine that enqueued the waiter blocks by receiving from Ready,
// after releasing the lock that serialized the Enqueue call.
type Waiter struct {
	ready chan struct{}
	next  *Waiter
	prev  *Waiter
	// queue is the Queue this waiter is linked into, nil once the waiter has
	// been woken or removed. It is the at-most-once guard for both paths.
	queue *Queue
}

// Enqueue appends a new waiter at the back of the queue and returns it.
func (q *Queue) Enqueue() *Waiter {
	w := &Waiter{
		ready: make(chan struct{}),
		queue: q,
	}
	w.prev = q.tail
	if q.tail != nil {
		q.tail.next = w
	} else {
		q.head = w
	}
	q.tail = w
	q.size++
	return w
}

// WakeFront removes the oldest waiter from the queue, wakes it by closing its
// Ready channel, and returns it. It returns nil when the queue is empty.
//
// Returning the waiter lets the owning primitive perform a direct handoff:
// state that represents ownership (a permit, the lock) transfers to the woken
// waiter before any later arrival can observe it as available.
func (q *Queue) WakeFront() *Waiter {
	w := q.head
	if w == nil {
		return nil
	}
	q.unlink(w)
	close(w.ready)
	return w
}

// WakeAll wakes every queued waiter in FIFO order and returns how many were
// woken. The queue is empty afterwards.
func (q *Queue) WakeAll() int {
	n := 0
	for q.WakeFront() != nil {
		n++
	}
	return n
}

// Remove withdraws a still-queued waiter without waking it, reporting whether
// it did so. It returns false when the waiter was already woken or removed,
// including the race that matters for cancellation: if a concurrent waker got
// to the waiter first, Remove fails and the caller must honor the wakeup it
// now owns.
//
// The Ready channel of a removed waiter is never closed.
func (q *Queue) Remove(w *Waiter) bool {
	if w == nil || w.queue != q {
		return false
	}
	q.unlink(w)
	return true
}

// Len returns the number of currently queued waiters.
func (q *Queue) Len() int {
	return q.size
}

// unlink detaches w from the list and clears its queue marker.
// w must be linked into q.
func (q *Queue) unlink(w *Waiter) {
	if w.prev != nil {
		w.prev.next = w.next
	} else {
		q.head = w.next
	}
	if w.next != nil {
		w.next.prev = w.prev
	} else {
		q.tail = w.prev
	}
	w.next = nil
	w.prev = nil
	w.queue = nil
	q.size--
}

// Ready returns the channel that is closed when this waiter is woken. It is
// never closed for a waiter that was removed instead.
//
// Block with a plain receive:
//
//	<-w.Ready()
//
// or compose cancellation:
//
//	select {
//	case <-w.Ready():
//	case <-ctx.Done():
//	    // must call Remove under the owner's lock, and honor the
//	    // wakeup if Remove reports false
//	}
func (w *Waiter) Ready() <-chan struct{} {
	return w.ready
}

// Awoken reports whether the waiter has been woken, without blocking.
func (w *Waiter) Awoken() bool {
	select {
	case <-w.ready:
		return true
	default:
		return false
	}
}
