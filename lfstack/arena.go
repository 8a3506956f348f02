package lfstack

import "sync/atomic"

// Node lifecycle states, consumed by the structural checker. A node cycles
// free -> linked -> retired -> free.
const (
	stateFree uint32 = iota
	stateLinked
	stateRetired
)

const (
	slabBits = 9
	slabSize = 1 << slabBits // nodes per slab
	maxSlabs = (1<<32 - 1) >> slabBits
)

// A node is one slot in the arena. The next field is the stack link; it
// stays intact from the moment the node is linked until it is recycled, so a
// concurrent pop holding the node's handle can always read it. The link
// field chains the retire and free lists, which a node is never on at the
// same time.
type node[T any] struct {
	value T
	next  atomic.Uint32 // handle of the node beneath this one in the stack
	link  atomic.Uint32 // retire-list / free-list chain
	state atomic.Uint32
}

type slab[T any] struct {
	nodes [slabSize]node[T]
}

// The arena owns every node the stack will ever use, addressed by 1-based
// 32-bit handles; 0 is the nil handle. Nodes live in fixed-size slabs so
// growth never moves one, and the slab directory is copy-on-write behind an
// atomic pointer so lookups and growth never take a lock.
type arena[T any] struct {
	slabs atomic.Pointer[[]*slab[T]]

	// Free nodes form a Treiber stack with the same version-packed head
	// word as the public stack. Handles on the free list are reused the
	// moment they are popped, so the versioned CAS is what protects
	// allocation from its own ABA problem.
	free atomic.Uint64 // version:32 | handle:32
}

func (a *arena[T]) node(h uint32) *node[T] {
	i := h - 1
	slabs := *a.slabs.Load()
	return &slabs[i>>slabBits].nodes[i&(slabSize-1)]
}

// capacity reports how many handles the arena has handed out in total.
func (a *arena[T]) capacity() int {
	p := a.slabs.Load()
	if p == nil {
		return 0
	}
	return len(*p) * slabSize
}

// popFree takes a node off the free list, reporting false when it is empty.
func (a *arena[T]) popFree() (uint32, bool) {
	for {
		old := a.free.Load()
		h, v := unpack(old)
		if h == 0 {
			return 0, false
		}
		// This read races with the node being allocated and recycled by
		// others, which rewrites link. The version in the CAS rejects every
		// such interleaving.
		next := a.node(h).link.Load()
		if a.free.CompareAndSwap(old, pack(next, v+1)) {
			return h, true
		}
	}
}

// pushFree recycles a node: clears the value so the garbage collector can
// reclaim whatever it referenced, marks the node free, and links it onto the
// free list.
func (a *arena[T]) pushFree(h uint32) {
	n := a.node(h)
	var zero T
	n.value = zero
	n.state.Store(stateFree)
	for {
		old := a.free.Load()
		top, v := unpack(old)
		n.link.Store(top)
		if a.free.CompareAndSwap(old, pack(h, v+1)) {
			return
		}
	}
}

// grow appends one slab to the directory and splices its nodes onto the free
// list. Losing the directory race costs the loser its candidate slab and
// another trip around the loop, nothing more.
func (a *arena[T]) grow() {
	fresh := new(slab[T])
	for {
		oldp := a.slabs.Load()
		var cur []*slab[T]
		if oldp != nil {
			cur = *oldp
		}
		if len(cur) >= maxSlabs {
			panic("lfstack: arena exhausted")
		}
		next := make([]*slab[T], len(cur)+1)
		copy(next, cur)
		next[len(cur)] = fresh
		if !a.slabs.CompareAndSwap(oldp, &next) {
			continue
		}

		// Handles base+1 through base+slabSize now name this slab's nodes.
		// Chain them locally, then publish the whole run with one CAS.
		base := uint32(len(cur)) << slabBits
		for i := 0; i < slabSize-1; i++ {
			fresh.nodes[i].link.Store(base + uint32(i) + 2)
		}
		last := &fresh.nodes[slabSize-1]
		for {
			old := a.free.Load()
			top, v := unpack(old)
			last.link.Store(top)
			if a.free.CompareAndSwap(old, pack(base+1, v+1)) {
				return
			}
		}
	}
}
