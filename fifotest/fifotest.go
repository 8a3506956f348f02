// Package fifotest provides a test harness for verifying that blocking
// primitives grant access in the order callers began waiting.
//
// # Overview
//
// The primary function [Run] forces a known number of goroutines to contend
// for a primitive in a pinned arrival order, records the order in which they
// are actually granted access, and fails the test when the two orders differ.
//
// The harness pins the arrival order exactly: it holds the primitive itself
// while starting contenders one at a time, and does not start contender i+1
// until the primitive reports that contender i is blocked. No sleeps are
// involved, so a passing run proves FIFO handoff rather than a lucky
// schedule.
//
// # Example Usage
//
// Verify a mutual-exclusion lock:
//
//	var mu mutex.Mutex
//	fifotest.Run(t, 8, fifotest.Primitive{
//		Acquire: mu.Lock,
//		Release: mu.Unlock,
//		Waiting: mu.Waiting,
//	})
//
// The same harness applies to any primitive with blocking acquire semantics,
// including a counting semaphore configured with a single permit.
package fifotest

import (
	"runtime"
	"slices"
	"sync"
	"testing"
	"time"
)

// Primitive is the surface a blocking primitive must expose to have its
// wakeup order verified.
type Primitive struct {
	// Acquire blocks the calling goroutine until it is granted the resource.
	Acquire func()

	// Release gives the resource up so the next waiter can be granted it.
	Release func()

	// Waiting reports how many acquirers are currently blocked. The harness
	// polls it to learn that a contender has come to rest in the wait queue
	// before starting the next one.
	Waiting func() int
}

// Run makes contenders goroutines compete for the primitive in a pinned
// arrival order and verifies that they are granted access in that same
// order.
//
// The harness:
//
//   - Acquires the primitive itself, so every contender is forced to block.
//   - Starts contenders one at a time, waiting for each to be queued before
//     starting the next; arrival order is therefore 0, 1, ..., contenders-1.
//   - Releases once. Each granted contender records its index and releases,
//     handing the resource down the queue.
//   - Fails the test if the recorded grant order differs from arrival order,
//     or if any contender is never granted access (a lost wakeup).
func Run(t *testing.T, contenders int, p Primitive) {
	t.Helper()

	// Hold the resource so every contender joins the queue.
	p.Acquire()

	var (
		mu     sync.Mutex
		grants []int
	)
	var wg sync.WaitGroup
	for i := range contenders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Acquire()
			mu.Lock()
			grants = append(grants, i)
			mu.Unlock()
			p.Release()
		}()

		// Do not start the next contender until this one is blocked. This is
		// what pins the arrival order the grant order must reproduce.
		waitFor(t, func() bool { return p.Waiting() == i+1 })
	}

	// Hand the resource to the front of the queue and let the contenders
	// chain the rest of the handoffs.
	p.Release()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		mu.Lock()
		granted := len(grants)
		mu.Unlock()
		t.Fatalf("only %d of %d contenders were granted access; wakeup was lost", granted, contenders)
	}

	want := make([]int, contenders)
	for i := range want {
		want[i] = i
	}
	if !slices.Equal(grants, want) {
		t.Errorf("grant order %v does not match arrival order %v", grants, want)
	}
}

// Polls cond until it is true, failing the test after a generous deadline.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for a contender to block")
		}
		runtime.Gosched()
	}
}
