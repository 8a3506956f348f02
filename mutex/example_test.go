package mutex_test

import (
	"fmt"
	"sync"

	"github.com/notorious-go/primitives/mutex"
)

// Concurrent depositors share one balance; the mutex serializes access and
// its FIFO handoff keeps any single depositor from monopolizing the lock.
func Example() {
	var (
		mu      mutex.Mutex
		balance int
	)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				mu.Lock()
				balance++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	fmt.Println("balance:", balance)

	// Output:
	// balance: 400
}

// TryLock attempts the lock without joining the queue, so a busy resource
// can be skipped instead of waited for.
func ExampleMutex_TryLock() {
	var mu mutex.Mutex
	mu.Lock()

	if mu.TryLock() {
		fmt.Println("acquired the lock")
	} else {
		fmt.Println("lock is busy, skipping")
	}
	mu.Unlock()

	// Output:
	// lock is busy, skipping
}
