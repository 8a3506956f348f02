package lfstack

import "fmt"

// checkAttempts bounds how many fresh snapshots CheckInvariants takes while
// concurrent mutation keeps invalidating the walk.
const checkAttempts = 64

// CheckInvariants walks the stack and verifies its structure: every node
// reachable from the head must be in the linked state, and the chain must
// terminate within the arena's capacity. It returns nil for a structurally
// sound stack and an error wrapping ErrInvalidState when it proves a
// violation. In correct operation it never fails; it exists so tests can
// hunt reclamation bugs while operations are in flight.
//
// The walk runs under an epoch pin against one head snapshot. If the head
// moves before the walk completes, the observations may be stale, so the
// checker retries on a fresh snapshot; a violation is only ever reported
// against an unchanged head, where staleness is impossible. After
// checkAttempts invalidated snapshots it returns nil, having proven nothing
// wrong.
func (s *Stack[T]) CheckInvariants() error {
	g := s.mem.pin()
	defer s.mem.unpin(g)

	for range checkAttempts {
		settled, err := s.walkOnce()
		if settled {
			return err
		}
	}
	return nil
}

// walkOnce validates a single head snapshot. settled reports a definite
// verdict: a violation (err non-nil) or a fully validated walk (err nil).
// Not settled means concurrent mutation moved the head mid-walk and the
// snapshot proves nothing.
func (s *Stack[T]) walkOnce() (settled bool, err error) {
	snap := s.head.Load()
	top, _ := unpack(snap)
	limit := s.arena.capacity()

	steps := 0
	for h := top; h != 0; {
		n := s.arena.node(h)
		if st := n.state.Load(); st != stateLinked {
			if s.head.Load() == snap {
				return true, fmt.Errorf("%w: node %d reachable from head is %s", ErrInvalidState, h, stateName(st))
			}
			return false, nil
		}
		if steps++; steps > limit {
			if s.head.Load() == snap {
				return true, fmt.Errorf("%w: chain from handle %d exceeds the arena's %d nodes", ErrInvalidState, top, limit)
			}
			return false, nil
		}
		h = n.next.Load()
	}

	if s.head.Load() == snap {
		return true, nil
	}
	return false, nil
}

func stateName(st uint32) string {
	switch st {
	case stateFree:
		return "free"
	case stateLinked:
		return "linked"
	case stateRetired:
		return "retired"
	}
	return fmt.Sprintf("state(%d)", st)
}
