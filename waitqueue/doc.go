// Package waitqueue provides the FIFO waiter bookkeeping that the blocking
// primitives in this module (event, mutex, semaphore) are built on.
//
// # Why This Package Exists
//
// Every fair blocking primitive answers the same two questions: "who is
// waiting?" and "who goes next?". Answering them correctly under concurrency
// requires that checking a condition and joining the wait list happen as one
// atomic step; otherwise a wakeup issued between the check and the enqueue
// is lost and the caller blocks forever. This package centralizes the list
// half of that step so each primitive only supplies its own condition.
//
// A Queue hands out one Waiter per blocked caller and guarantees strict FIFO
// wake order: WakeFront always wakes the waiter that has been queued longest.
// Waking is signalled by closing the waiter's channel, so blocked goroutines
// can wait with a plain receive or compose cancellation with select.
//
// # The Locking Contract
//
// A Queue performs no locking of its own. The primitive that owns the queue
// must serialize every call (Enqueue, WakeFront, WakeAll, Remove, Len)
// under the same mutex that guards the condition consulted before enqueueing.
// Holding one lock across "check condition, then enqueue" is precisely what
// makes the step atomic with respect to concurrent wakers and rules the lost
// wakeup out. Callers then block on the waiter's channel after releasing the
// lock, never while holding it.
//
// # When NOT to Use This Package
//
// This is low-level bookkeeping with a deliberately sharp contract. If you
// are not building a blocking primitive, you almost certainly want one of the
// finished primitives in this module, a channel, or sync.Cond instead.
package waitqueue
