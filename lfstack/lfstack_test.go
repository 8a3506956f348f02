package lfstack_test

import (
	"errors"
	"runtime"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/notorious-go/primitives/lfstack"
)

func TestLIFORoundTrip(t *testing.T) {
	t.Parallel()

	s := lfstack.New[int]()
	s.Push(10)
	s.Push(20)
	s.Push(30)
	require.Equal(t, 3, s.Len())

	for _, want := range []int{30, 20, 10} {
		got, err := s.Pop()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := s.Pop()
	require.ErrorIs(t, err, lfstack.ErrEmpty)
	require.Equal(t, 0, s.Len())
}

func TestPopEmptyReturnsErrEmpty(t *testing.T) {
	t.Parallel()

	s := lfstack.New[string]()
	v, err := s.Pop()
	require.ErrorIs(t, err, lfstack.ErrEmpty)
	require.Zero(t, v)
}

func TestZeroValueIsReady(t *testing.T) {
	t.Parallel()

	var s lfstack.Stack[string]
	s.Push("hello")
	v, err := s.Pop()
	require.NoError(t, err)
	require.Equal(t, "hello", v)
}

func TestVersionCountsMutations(t *testing.T) {
	t.Parallel()

	s := lfstack.New[int]()
	before := s.Version()

	s.Push(1)
	s.Push(2)
	s.Push(3)
	_, err := s.Pop()
	require.NoError(t, err)
	_, err = s.Pop()
	require.NoError(t, err)

	require.Equal(t, uint32(5), s.Version()-before,
		"each successful push and pop advances the version exactly once")
}

func TestReclaimRecyclesRetiredNodes(t *testing.T) {
	t.Parallel()

	s := lfstack.New[int]()
	const n = 100
	for i := range n {
		s.Push(i)
	}
	for range n {
		_, err := s.Pop()
		require.NoError(t, err)
	}

	// All n nodes sit retired; with no operation in flight a full reclaim
	// pass recycles every one of them.
	require.Equal(t, n, s.Reclaim())
	require.Equal(t, 0, s.Reclaim(), "nothing left to recycle")
	require.NoError(t, s.CheckInvariants())
}

func TestCheckInvariantsOnQuietStack(t *testing.T) {
	t.Parallel()

	s := lfstack.New[int]()
	require.NoError(t, s.CheckInvariants(), "empty stack")

	for i := range 50 {
		s.Push(i)
	}
	require.NoError(t, s.CheckInvariants(), "after pushes")

	for range 25 {
		_, err := s.Pop()
		require.NoError(t, err)
	}
	require.NoError(t, s.CheckInvariants(), "after pops")

	s.Reclaim()
	require.NoError(t, s.CheckInvariants(), "after reclaim")
}

func TestConcurrentConservation(t *testing.T) {
	t.Parallel()

	const (
		pushers   = 4
		poppers   = 4
		perPusher = 2000
		total     = pushers * perPusher
	)
	s := lfstack.New[int]()

	// Each popper keeps its own slice; they are merged only after the wait.
	var popped [poppers][]int
	var remaining atomic.Int64
	remaining.Store(total)

	var g errgroup.Group
	for p := range pushers {
		g.Go(func() error {
			for i := range perPusher {
				s.Push(p*perPusher + i)
			}
			return nil
		})
	}
	for q := range poppers {
		g.Go(func() error {
			for remaining.Load() > 0 {
				v, err := s.Pop()
				if err != nil {
					if !errors.Is(err, lfstack.ErrEmpty) {
						return err
					}
					runtime.Gosched()
					continue
				}
				popped[q] = append(popped[q], v)
				remaining.Add(-1)
			}
			return nil
		})
	}

	// The structural checker runs against the live stack for the whole
	// stress run; any reclamation bug shows up as ErrInvalidState here.
	done := make(chan struct{})
	checkErr := make(chan error, 1)
	go func() {
		defer close(checkErr)
		for {
			select {
			case <-done:
				return
			default:
			}
			if err := s.CheckInvariants(); err != nil {
				checkErr <- err
				return
			}
		}
	}()

	require.NoError(t, g.Wait())
	close(done)
	require.NoError(t, <-checkErr)

	// Conservation: the multiset popped equals the multiset pushed.
	var got []int
	for q := range poppers {
		got = append(got, popped[q]...)
	}
	require.Len(t, got, total)
	sort.Ints(got)
	for i, v := range got {
		require.Equal(t, i, v, "every pushed value must be popped exactly once")
	}

	_, err := s.Pop()
	require.ErrorIs(t, err, lfstack.ErrEmpty, "the drained stack is empty")
	require.Equal(t, 0, s.Len())
	require.NoError(t, s.CheckInvariants())
}

func TestConcurrentChurnWithReclaim(t *testing.T) {
	t.Parallel()

	s := lfstack.New[uint64]()

	// Mixed push/pop churn with explicit reclaims racing the operations.
	// Every worker pushes what it pops back minus a drain at the end, so the
	// final stack is empty and the books must balance.
	const workers = 6
	const rounds = 5000

	var pushedSum, poppedSum atomic.Uint64
	var g errgroup.Group
	for w := range workers {
		g.Go(func() error {
			seed := uint64(w + 1)
			for i := range rounds {
				seed = seed*6364136223846793005 + 1442695040888963407
				if seed%2 == 0 {
					v := seed | 1
					s.Push(v)
					pushedSum.Add(v)
				} else {
					v, err := s.Pop()
					if err != nil {
						if !errors.Is(err, lfstack.ErrEmpty) {
							return err
						}
						continue
					}
					poppedSum.Add(v)
				}
				if i%512 == 0 {
					s.Reclaim()
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// Drain what is left; afterward every value pushed was popped once.
	for {
		v, err := s.Pop()
		if err != nil {
			require.ErrorIs(t, err, lfstack.ErrEmpty)
			break
		}
		poppedSum.Add(v)
	}
	require.Equal(t, pushedSum.Load(), poppedSum.Load())
	require.Equal(t, 0, s.Len())
	require.NoError(t, s.CheckInvariants())
}
