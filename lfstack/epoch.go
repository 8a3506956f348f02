package lfstack

import "sync/atomic"

// Reclamation runs on a three-generation epoch clock. Operations that read
// foreign nodes pin the current generation around the read; retired nodes
// collect on the bucket of the generation current at retirement. The clock
// advances only past generations nobody is pinned to, and a generation's
// bucket is recycled two advances after it stopped collecting. That gap is
// the grace period: by the time a bucket is recycled, every operation that
// could have read one of its handles has provably unpinned.
type epochs struct {
	epoch atomic.Uint64

	// Serializes advances. Pin, unpin, retire, push and pop never touch it;
	// only reclamation is mutually exclusive with itself.
	advancing atomic.Uint32

	// active[g%3] counts operations pinned at generation g. Padded so two
	// counters never share a cache line.
	active [3]counter

	// retired[g%3] heads the list of nodes retired at generation g, chained
	// through node.link.
	retired [3]atomic.Uint32
}

type counter struct {
	n atomic.Int64
	_ [56]byte
}

// pin marks the calling operation active in the current generation and
// returns that generation for the matching unpin. The retry hits only when
// an advance lands between the epoch read and the increment, so pin is
// lock-free.
func (e *epochs) pin() uint64 {
	for {
		g := e.epoch.Load()
		e.active[g%3].n.Add(1)
		if e.epoch.Load() == g {
			return g
		}
		e.active[g%3].n.Add(-1)
	}
}

func (e *epochs) unpin(g uint64) {
	e.active[g%3].n.Add(-1)
}

// retire parks a popped node on the current generation's bucket. The caller
// must still hold its pin: a live pin at or below the bucket's generation is
// what keeps the bucket from being detached mid-push.
func (s *Stack[T]) retire(h uint32) {
	g := s.mem.epoch.Load()
	bucket := &s.mem.retired[g%3]
	n := s.arena.node(h)
	for {
		old := bucket.Load()
		n.link.Store(old)
		if bucket.CompareAndSwap(old, h) {
			return
		}
	}
}

// tryAdvance recycles the generation two steps behind the clock and moves
// the clock forward, provided no operation is still pinned to it. It returns
// the number of nodes recycled; an advance over an empty bucket is progress
// too and returns 0.
func (s *Stack[T]) tryAdvance() int {
	if !s.mem.advancing.CompareAndSwap(0, 1) {
		return 0
	}
	defer s.mem.advancing.Store(0)

	g := s.mem.epoch.Load()
	slot := (g + 1) % 3 // generation g-2 parked here

	if s.mem.active[slot].n.Load() != 0 {
		return 0
	}

	// No operation is pinned at g-2, and a new retire into this slot would
	// require exactly such a pin, so the detach is final.
	h := s.mem.retired[slot].Swap(0)
	recycled := 0
	for h != 0 {
		next := s.arena.node(h).link.Load()
		s.arena.pushFree(h)
		h = next
		recycled++
	}

	s.mem.epoch.Store(g + 1)
	return recycled
}
