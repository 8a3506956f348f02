package demo

import (
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/notorious-go/primitives/mutex"
	"github.com/notorious-go/primitives/semaphore"
)

// A Barrier makes n goroutines wait for each other at a common point,
// repeatedly. It is the classic reusable two-phase construction: two
// semaphore turnstiles, opened and locked by the last arriver of each
// phase, with a FIFO mutex guarding the arrival count. The second turnstile
// is what stops a fast goroutine from lapping the group and entering the
// next round while a slow one is still leaving the previous.
type Barrier struct {
	n     int
	count int
	mu    mutex.Mutex

	first  *semaphore.Semaphore // closed (0 permits) until a phase fills
	second *semaphore.Semaphore // open (1 permit) between phases
}

// NewBarrier creates a barrier for n goroutines. It panics if n < 1.
func NewBarrier(n int) *Barrier {
	if n < 1 {
		panic("demo: barrier size must be at least 1")
	}
	return &Barrier{
		n:      n,
		first:  semaphore.New(0),
		second: semaphore.New(1),
	}
}

// Wait blocks until all n goroutines have called it, then releases them
// together. It returns true for exactly one caller per round, the last
// arriver, which a caller can use to do once-per-round work.
//
// The barrier is reusable: the same n goroutines can Wait again for the
// next round immediately.
func (b *Barrier) Wait() (leader bool) {
	// Phase one: arrive. The last arriver locks the second turnstile and
	// opens the first.
	b.mu.Lock()
	b.count++
	if b.count == b.n {
		leader = true
		b.second.Acquire()
		mustRelease(b.first)
	}
	b.mu.Unlock()

	b.first.Acquire()
	mustRelease(b.first) // pass the baton to the next waiter

	// Phase two: depart. The last leaver locks the first turnstile again
	// and reopens the second, resetting the barrier for the next round.
	b.mu.Lock()
	b.count--
	if b.count == 0 {
		b.first.Acquire()
		mustRelease(b.second)
	}
	b.mu.Unlock()

	b.second.Acquire()
	mustRelease(b.second)

	return leader
}

// The turnstile semaphores are unbounded, so Release cannot fail; a failure
// would mean the barrier's own bookkeeping is broken.
func mustRelease(s *semaphore.Semaphore) {
	if err := s.Release(); err != nil {
		panic("demo: barrier turnstile release failed: " + err.Error())
	}
}

// BarrierDemo runs workers through the given number of barrier-separated
// phases, writing a line per arrival and a summary line per phase to w. No
// worker starts phase p+1 before every worker has finished phase p, and the
// summary line separates the phases in the output: the round's last arriver
// prints it while a second barrier wait holds everyone else back.
func BarrierDemo(w io.Writer, workers, phases int) error {
	out := newPrinter(w)
	b := NewBarrier(workers)

	var g errgroup.Group
	for id := range workers {
		g.Go(func() error {
			for phase := 1; phase <= phases; phase++ {
				out.printf("worker %d reached the barrier for phase %d\n", id, phase)
				if b.Wait() {
					out.printf("phase %d complete: all %d workers arrived\n", phase, workers)
				}
				b.Wait()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return out.flushErr()
}
