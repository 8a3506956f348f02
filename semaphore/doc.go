// Package semaphore provides a counting semaphore with strict FIFO fairness
// and an optional capacity bound.
//
// # Why This Package Exists
//
// Buffered channels are Go's idiomatic counting semaphore, and for most
// throttling work they are the right tool. What a channel cannot promise is
// ORDER: when several goroutines block sending to a full channel, the
// runtime wakes them in an order of its own choosing, and a fresh sender can
// barge ahead of goroutines that have waited far longer.
//
// This package's Semaphore promises strict FIFO: blocked acquirers are
// granted permits in exactly the order they began waiting. Release uses
// direct handoff. When waiters are queued, the released permit transfers
// straight to the front waiter without ever rejoining the free count, so a
// concurrent Acquire or TryAcquire cannot slip in between.
//
// It also supports an explicit capacity bound. A semaphore built with
// NewBounded treats a Release that would push the permit count above
// capacity as a caller bug and reports it as an error instead of silently
// growing or clamping the count.
//
// # When NOT to Use This Package
//
// This package implements one specific semaphore variant. If you need
// different behavior, use alternatives:
//
//   - Weighted acquisitions (multiple permits at once): use
//     golang.org/x/sync/semaphore.
//   - Simple throttling with no ordering requirement: use a buffered
//     channel; it is cheaper and carries no queue bookkeeping.
//   - Mutual exclusion: use sync.Mutex, or the mutex package here when the
//     exclusion itself must be FIFO.
//
// # Design Trade-offs
//
//   - Direct handoff trades throughput for fairness: every contended
//     release forces a goroutine switch instead of letting the releasing
//     goroutine's thread reacquire immediately.
//   - TryAcquire refuses to barge: it fails whenever waiters are queued,
//     even though with handoff a free permit and a non-empty queue cannot
//     coexist anyway. The check makes the no-barging rule explicit.
//   - Release returns an error rather than panicking on capacity overflow.
//     Over-release is a runtime caller bug worth surfacing to the caller;
//     constructor misuse, by contrast, panics.
//   - An unbounded semaphore accepts any number of releases and simply
//     grows its permit count. Whether that is a feature (producer/consumer
//     signaling) or a bug (an unpaired release) depends on the caller, so
//     the unbounded variant never errors; choose NewBounded when the
//     invariant matters.
//
// # Implementation
//
// The semaphore is a permit counter plus a FIFO queue of blocked acquirers,
// both guarded by one internal mutex. The counter check and the enqueue
// happen under that single mutex, which is what closes the lost-wakeup
// window between "no permits free" and "start waiting". Waiters block on a
// per-waiter channel closed at handoff, so a granted waiter returns without
// touching the internal mutex again.
package semaphore
