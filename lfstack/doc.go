// Package lfstack provides a lock-free LIFO stack that is immune to the ABA
// problem and reclaims memory safely under concurrent mutation.
//
// # Why This Package Exists
//
// The textbook lock-free stack (a Treiber stack) is ten lines of
// compare-and-swap and two of the most instructive bugs in concurrent
// programming:
//
// First, ABA. A pop reads the head pointer A and A's next pointer B, then
// attempts to swing the head from A to B with a CAS. If, between the read
// and the CAS, other goroutines pop A, pop B, and push a new node that by
// reuse lands at A's old address, the CAS still sees "head == A" and
// succeeds, installing a next pointer that belongs to a node that is no
// longer there. The stack is silently corrupted. Pointer equality is not
// identity.
//
// Second, use-after-free. The pop's read of A's next field happens while
// other goroutines may pop A and release its memory. On a platform with
// manual reclamation that read is a use-after-free; in any language it is a
// read of memory whose owner has moved on.
//
// This package defeats both. Every node lives in an internal arena and is
// named by a 32-bit handle; the stack head is a single 64-bit word packing
// a 32-bit version counter next to the handle. Every successful push or pop
// increments the version, so a CAS against a stale (handle, version) pair
// fails even when the handle itself has returned to the top. And popped
// nodes are retired, not recycled: an epoch scheme delays reuse until every
// operation that might still hold the node's handle has finished.
//
// # When NOT to Use This Package
//
//   - If a mutex around a slice is fast enough, use the mutex. Lock-free
//     structures earn their complexity only under real contention or in
//     contexts that must not block.
//   - If you need FIFO ordering, this is the wrong shape; a stack returns
//     the newest element first.
//   - If you need to iterate or search, use a different structure. The only
//     reads this stack supports are Pop and the structural checker.
//
// # Design Trade-offs
//
//   - Handles instead of pointers cost one indirection per node access and
//     bound the stack to 2^32-1 live nodes. In exchange, the head fits in
//     one atomic 64-bit word on every platform, with no double-word CAS or
//     pointer tagging required.
//   - The version counter is 32 bits. A stalled operation would be fooled
//     only if exactly 2^32 successful mutations completed between its read
//     and its CAS, a residual risk this package accepts and documents
//     rather than defends against.
//   - Node memory is recycled, never returned to the runtime. A stack that
//     once held N elements keeps arena capacity for N nodes until the whole
//     stack becomes garbage. Popped values are cleared during recycling, so
//     a retired node can briefly keep a popped value reachable.
//   - Push and Pop are lock-free, not wait-free: an individual operation
//     can retry indefinitely while others succeed.
//
// # Implementation
//
// Nodes live in fixed-size slabs; the slab directory grows copy-on-write
// behind an atomic pointer, so allocation never takes a lock. Free nodes
// are tracked on an internal stack that uses the same versioned-head CAS as
// the public one, which is what makes immediate handle reuse safe there.
//
// Reclamation uses three epoch generations. Pop and CheckInvariants pin the
// current epoch around their hazardous reads; a retired node lands in the
// bucket of the epoch current at retirement. The epoch advances only when no
// operation remains pinned to the generation about to be recycled, so a
// node's memory is reused only after every operation that could have seen
// its handle has unpinned. Pushes never pin: they dereference no node but
// their own.
package lfstack
