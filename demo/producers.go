package demo

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/notorious-go/primitives/lfstack"
)

// Producers runs a producer/consumer workload over one lock-free stack and
// accounts for every value: the run fails if the values consumed do not
// balance the values produced exactly. The structural checker runs against
// the live stack for the whole run, so a reclamation bug surfaces as an
// error rather than a silent corruption.
func Producers(w io.Writer, producers, consumers, perProducer int) error {
	out := newPrinter(w)
	s := lfstack.New[int]()

	total := producers * perProducer
	var (
		remaining atomic.Int64
		pushedSum atomic.Int64
		poppedSum atomic.Int64
		consumed  atomic.Int64
	)
	remaining.Store(int64(total))

	var checkErr error
	checksDone := make(chan struct{})
	go func() {
		defer close(checksDone)
		for remaining.Load() > 0 {
			if err := s.CheckInvariants(); err != nil {
				checkErr = err
				return
			}
		}
	}()

	var g errgroup.Group
	for p := range producers {
		g.Go(func() error {
			for i := range perProducer {
				v := p*perProducer + i
				s.Push(v)
				pushedSum.Add(int64(v))
			}
			return nil
		})
	}
	for range consumers {
		g.Go(func() error {
			for remaining.Load() > 0 {
				v, err := s.Pop()
				if err != nil {
					if !errors.Is(err, lfstack.ErrEmpty) {
						return err
					}
					// Producers may simply not have caught up yet.
					runtime.Gosched()
					continue
				}
				poppedSum.Add(int64(v))
				consumed.Add(1)
				remaining.Add(-1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	<-checksDone
	if checkErr != nil {
		return checkErr
	}

	reclaimed := s.Reclaim()
	out.printf("produced %d values (sum %d)\n", total, pushedSum.Load())
	out.printf("consumed %d values (sum %d)\n", consumed.Load(), poppedSum.Load())
	_, popErr := s.Pop()
	out.printf("stack drained: %v\n", errors.Is(popErr, lfstack.ErrEmpty))
	out.printf("nodes recycled after the run: %d\n", reclaimed)

	if err := s.CheckInvariants(); err != nil {
		return err
	}
	if pushedSum.Load() != poppedSum.Load() {
		return fmt.Errorf("conservation violated: pushed sum %d, popped sum %d",
			pushedSum.Load(), poppedSum.Load())
	}
	return out.flushErr()
}
