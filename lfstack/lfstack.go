package lfstack

import (
	"errors"
	"sync/atomic"
)

// ErrEmpty is returned by Pop when the stack holds no elements at the moment
// of the attempt. It is ordinary control flow, not a fault: a caller draining
// the stack stops on it.
var ErrEmpty = errors.New("lfstack: empty stack")

// ErrInvalidState is returned by CheckInvariants when a node reachable from
// the head is not in the linked state. It signals a reclamation bug inside
// the package and is never expected in correct operation.
var ErrInvalidState = errors.New("lfstack: invalid node state")

// The head word packs a mutation counter beside the handle of the top node.
// Comparing and swapping the two as one unit is what defeats ABA: any
// successful push or pop advances the version, so a stale read never matches
// again, even if the same handle has returned to the top.
func pack(h, v uint32) uint64 {
	return uint64(v)<<32 | uint64(h)
}

func unpack(w uint64) (h, v uint32) {
	return uint32(w), uint32(w >> 32)
}

// A Stack is a lock-free LIFO stack. The zero value is an empty stack ready
// for use. A Stack must not be copied after first use.
//
// Push and Pop never block: they retry a compare-and-swap until they win.
// All methods are safe for concurrent use.
type Stack[T any] struct {
	head atomic.Uint64 // version:32 | top handle:32
	size atomic.Int64

	arena arena[T]
	mem   epochs
}

// New creates an empty stack. It is equivalent to new(Stack[T]) and exists
// for symmetry with the other packages in this module.
func New[T any]() *Stack[T] {
	return &Stack[T]{}
}

// Push adds v to the top of the stack.
func (s *Stack[T]) Push(v T) {
	h := s.alloc()
	n := s.arena.node(h)
	n.value = v
	n.state.Store(stateLinked)

	for {
		old := s.head.Load()
		top, ver := unpack(old)
		n.next.Store(top)
		if s.head.CompareAndSwap(old, pack(h, ver+1)) {
			s.size.Add(1)
			return
		}
	}
}

// Pop removes and returns the value at the top of the stack. It returns
// ErrEmpty when the stack is observed empty at the attempt; a push completed
// before the call is never missed.
func (s *Stack[T]) Pop() (T, error) {
	// The pin keeps every node whose handle this operation may read from
	// being recycled until the operation is done.
	g := s.mem.pin()
	defer s.mem.unpin(g)

	for {
		old := s.head.Load()
		top, ver := unpack(old)
		if top == 0 {
			var zero T
			return zero, ErrEmpty
		}
		n := s.arena.node(top)

		// The hazardous read: top may be popped and retired by another
		// goroutine at any moment. The pin guarantees the memory cannot be
		// recycled underneath us; the versioned CAS below guarantees a stale
		// read cannot corrupt the stack.
		next := n.next.Load()

		if !s.head.CompareAndSwap(old, pack(next, ver+1)) {
			continue
		}

		// The CAS won: this goroutine owns the node exclusively.
		s.size.Add(-1)
		v := n.value
		n.state.Store(stateRetired)
		s.retire(top)
		return v, nil
	}
}

// Len reports the number of elements in the stack. The count is exact when
// no operations are in flight and advisory otherwise.
func (s *Stack[T]) Len() int {
	return int(s.size.Load())
}

// Version reports the number of successful mutations (pushes and pops, mod
// 2^32) the stack has undergone. Two head snapshots taken around a quiescent
// period are the same state if and only if their versions match; the top
// value alone proves nothing.
func (s *Stack[T]) Version() uint32 {
	_, v := unpack(s.head.Load())
	return v
}

// Reclaim attempts to recycle retired nodes and returns the number of nodes
// made available for reuse. Recycling waits out operations still pinned to
// recent epochs, so Reclaim can legitimately return 0 while pops are in
// flight; it never blocks.
//
// Reclaim also runs opportunistically when Push finds no free node, so
// calling it is an optimization, never a requirement.
func (s *Stack[T]) Reclaim() int {
	total := 0
	// One attempt per generation: a full rotation recycles everything whose
	// grace period has elapsed.
	for range 3 {
		total += s.tryAdvance()
	}
	return total
}

// Grabs a free node, preferring the free list, then reclamation, then arena
// growth. Growth is the fallback when retired nodes are still inside their
// grace period: operations never wait for reclamation.
func (s *Stack[T]) alloc() uint32 {
	for {
		if h, ok := s.arena.popFree(); ok {
			return h
		}
		if s.Reclaim() > 0 {
			continue
		}
		s.arena.grow()
	}
}
