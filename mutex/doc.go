// Package mutex provides a mutual-exclusion lock with strict FIFO fairness
// and direct handoff.
//
// # Why This Package Exists
//
// The standard library's sync.Mutex is the right default for almost all
// locking. What it does not promise is ORDER: under contention, Go's mutex
// admits barging (a fresh arrival can take the lock ahead of goroutines that
// have been waiting longer), and its starvation mode only bounds how long a
// waiter can be bypassed, without making the grant order observable or exact.
//
// This package's Mutex promises strict FIFO: goroutines that block on Lock
// are granted the lock in exactly the order they began waiting. It achieves
// that with direct handoff. Unlock never marks the lock free while waiters
// exist; it transfers ownership straight to the front of the queue, so there
// is no instant at which a newcomer could slip in ahead. TryLock preserves
// the same discipline by refusing to barge past a non-empty queue.
//
// # When NOT to Use This Package
//
// Strict fairness is a latency guarantee paid for with throughput. Direct
// handoff forces a goroutine switch on every contended unlock, where
// sync.Mutex would often let the current thread reacquire immediately. If
// you do not have a concrete ordering requirement, use sync.Mutex:
//
//   - Hot paths guarding short critical sections: use sync.Mutex.
//   - Reader-heavy workloads: use sync.RWMutex.
//   - Reentrant locking: not supported here or anywhere in Go; restructure
//     the code so the lock is acquired once.
//
// # Design Trade-offs
//
//   - Not reentrant: a goroutine that calls Lock twice without an Unlock in
//     between deadlocks itself. This is a design constraint, not a bug; the
//     queue cannot distinguish the holder from any other acquirer.
//   - Unlock of an unlocked Mutex is a no-op, unlike sync.Mutex, which
//     treats it as a fatal error. Idempotent release keeps shutdown paths
//     simple; it also means double-unlock bugs surface as missing mutual
//     exclusion rather than a crash, so tests should run with -race.
//   - Unlock may be called by a different goroutine than the one that
//     locked, same as sync.Mutex. The queue tracks waiters, not owners.
package mutex
