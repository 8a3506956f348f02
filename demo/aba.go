package demo

import (
	"errors"
	"io"

	"github.com/notorious-go/primitives/lfstack"
)

// ABA replays, step by step, the interleaving that silently corrupts an
// unversioned lock-free stack, and shows how the version counter packed
// into the head defeats it. The narration is written to w; the run is fully
// deterministic.
func ABA(w io.Writer) error {
	out := newPrinter(w)
	s := lfstack.New[string]()

	s.Push("C")
	s.Push("B")
	s.Push("A")
	out.printf("stack built, top to bottom: A B C\n")

	// Freeze what a stalled pop would have read just before its CAS.
	v1 := s.Version()
	out.printf("a pop stalls after its reads: top is A, version is %d\n", v1)

	// The world moves on underneath it: both nodes are popped and recycled,
	// and the next push reuses A's old node, so the head once again names
	// the same node it did when the stalled pop took its reads.
	if _, err := s.Pop(); err != nil {
		return err
	}
	if _, err := s.Pop(); err != nil {
		return err
	}
	recycled := s.Reclaim()
	s.Push("A")
	out.printf("meanwhile: pop A, pop B, recycle %d nodes, push A again\n", recycled)

	v2 := s.Version()
	out.printf("the top once more reads A, but the version is %d, not %d\n", v2, v1)
	out.printf("comparing (top, version) the stalled pop fails its CAS and retries safely\n")
	out.printf("comparing the top alone it would have matched, unlinking a node that left the stack two pops ago\n")

	if err := s.CheckInvariants(); err != nil {
		return err
	}

	var rest []string
	for {
		v, err := s.Pop()
		if errors.Is(err, lfstack.ErrEmpty) {
			break
		}
		if err != nil {
			return err
		}
		rest = append(rest, v)
	}
	out.printf("stack intact, drained in order: %v\n", rest)
	return out.flushErr()
}
