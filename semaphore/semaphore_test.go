package semaphore_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/notorious-go/primitives/fifotest"
	"github.com/notorious-go/primitives/semaphore"
)

func TestConstructorPanicsOnMisuse(t *testing.T) {
	t.Parallel()

	require.PanicsWithValue(t, "semaphore: negative permit count", func() {
		semaphore.New(-1)
	})
	require.PanicsWithValue(t, "semaphore: capacity must be at least 1", func() {
		semaphore.NewBounded(0, 0)
	})
	require.PanicsWithValue(t, "semaphore: negative permit count", func() {
		semaphore.NewBounded(-1, 2)
	})
	require.PanicsWithValue(t, "semaphore: permits exceed capacity", func() {
		semaphore.NewBounded(3, 2)
	})
}

func TestAcquireReleaseRoundTrip(t *testing.T) {
	t.Parallel()

	sem := semaphore.New(2)
	require.Equal(t, 2, sem.Permits())

	sem.Acquire()
	require.True(t, sem.TryAcquire())
	require.Equal(t, 0, sem.Permits())
	require.False(t, sem.TryAcquire(), "no permits left to take")

	require.NoError(t, sem.Release())
	require.NoError(t, sem.Release())
	require.Equal(t, 2, sem.Permits())
}

func TestAcquireBlocksWhenExhausted(t *testing.T) {
	t.Parallel()

	sem := semaphore.New(1)
	sem.Acquire()

	acquired := make(chan struct{})
	go func() {
		sem.Acquire()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("Acquire returned with no permits free")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, sem.Release())
	select {
	case <-acquired:
	case <-time.After(5 * time.Second):
		t.Fatal("blocked Acquire was never granted the released permit")
	}
}

func TestHandoffBypassesFreeCount(t *testing.T) {
	t.Parallel()

	sem := semaphore.New(1)
	sem.Acquire()

	granted := make(chan struct{})
	go func() {
		sem.Acquire()
		close(granted)
	}()
	require.Eventually(t, func() bool { return sem.Waiting() == 1 },
		5*time.Second, time.Millisecond)

	// The released permit goes straight to the waiter; it never shows up in
	// the free count where a newcomer could take it.
	require.NoError(t, sem.Release())
	select {
	case <-granted:
	case <-time.After(5 * time.Second):
		t.Fatal("queued waiter was never handed the permit")
	}
	require.Equal(t, 0, sem.Permits())

	require.NoError(t, sem.Release())
	require.Equal(t, 1, sem.Permits())
}

func TestAcquireIsFIFO(t *testing.T) {
	t.Parallel()

	run := func(t *testing.T, sem *semaphore.Semaphore) {
		fifotest.Run(t, 8, fifotest.Primitive{
			Acquire: sem.Acquire,
			Release: func() { assert.NoError(t, sem.Release()) },
			Waiting: sem.Waiting,
		})
	}

	t.Run("Unbounded", func(t *testing.T) {
		t.Parallel()
		run(t, semaphore.New(1))
	})

	// A bounded semaphore with a single permit is a mutual-exclusion lock in
	// all but name, so it must pass the same fairness suite.
	t.Run("CapacityOne", func(t *testing.T) {
		t.Parallel()
		run(t, semaphore.NewBounded(1, 1))
	})
}

func TestReleaseBeyondCapacityFails(t *testing.T) {
	t.Parallel()

	sem := semaphore.NewBounded(1, 2)
	require.Equal(t, 2, sem.Capacity())

	require.NoError(t, sem.Release())
	require.Equal(t, 2, sem.Permits())

	err := sem.Release()
	require.ErrorIs(t, err, semaphore.ErrCapacityExceeded)
	require.Equal(t, 2, sem.Permits(), "failed release must leave the count unchanged")
}

func TestUnboundedReleaseGrowsPermits(t *testing.T) {
	t.Parallel()

	sem := semaphore.New(0)
	require.Equal(t, 0, sem.Capacity())

	for range 3 {
		require.NoError(t, sem.Release())
	}
	require.Equal(t, 3, sem.Permits())
}

func TestAcquireContextAlreadyCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	sem := semaphore.New(1)
	require.ErrorIs(t, sem.AcquireContext(ctx), context.Canceled)
	require.Equal(t, 1, sem.Permits(), "failed acquire must not consume a permit")
}

func TestAcquireContextCancelWhileQueued(t *testing.T) {
	t.Parallel()

	sem := semaphore.New(1)
	sem.Acquire()

	ctx, cancel := context.WithCancel(t.Context())
	errc := make(chan error, 1)
	go func() {
		errc <- sem.AcquireContext(ctx)
	}()
	require.Eventually(t, func() bool { return sem.Waiting() == 1 },
		5*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("AcquireContext did not return after cancellation")
	}

	// The canceled waiter withdrew, so the release goes to the free count.
	require.Equal(t, 0, sem.Waiting())
	require.NoError(t, sem.Release())
	require.Equal(t, 1, sem.Permits())
}

func TestAcquireContextGrantedByHandoff(t *testing.T) {
	t.Parallel()

	sem := semaphore.New(1)
	sem.Acquire()

	errc := make(chan error, 1)
	go func() {
		errc <- sem.AcquireContext(t.Context())
	}()
	require.Eventually(t, func() bool { return sem.Waiting() == 1 },
		5*time.Second, time.Millisecond)

	require.NoError(t, sem.Release())
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("AcquireContext was never granted the permit")
	}
	require.Equal(t, 0, sem.Permits(), "the handed-off permit belongs to the waiter")
}

func TestBoundsConcurrency(t *testing.T) {
	t.Parallel()

	const limit = 3
	sem := semaphore.NewBounded(limit, limit)

	var inFlight, peak atomic.Int64
	var g errgroup.Group
	for range 12 {
		g.Go(func() error {
			for range 200 {
				sem.Acquire()
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				inFlight.Add(-1)
				if err := sem.Release(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.LessOrEqual(t, peak.Load(), int64(limit))
	require.Equal(t, limit, sem.Permits())
}

func TestStringFormats(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Semaphore(1/2)", semaphore.NewBounded(1, 2).String())
	require.Equal(t, "Semaphore(3, unbounded)", semaphore.New(3).String())
}
