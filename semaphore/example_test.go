package semaphore_test

import (
	"fmt"

	"github.com/notorious-go/primitives/semaphore"
)

func Example() {
	sem := semaphore.New(2)
	fmt.Println("created:", sem)

	// You should always pair Acquire with a deferred Release so permits
	// return to the pool even if your code panics.
	sem.Acquire()
	fmt.Println("after one acquire:", sem)

	// TryAcquire lets you handle the "too busy" case gracefully. Here it
	// succeeds because a permit is still free.
	if sem.TryAcquire() {
		fmt.Println("after a second acquire:", sem)
	}

	// With every permit taken, TryAcquire reports back-pressure immediately
	// rather than blocking.
	if !sem.TryAcquire() {
		fmt.Println("no permits left:", sem)
	}

	// Permits are fungible. The semaphore tracks a count, not who holds
	// which permit.
	sem.Release()
	fmt.Println("after a release:", sem)
	sem.Release()

	// Output:
	// created: Semaphore(2, unbounded)
	// after one acquire: Semaphore(1, unbounded)
	// after a second acquire: Semaphore(0, unbounded)
	// no permits left: Semaphore(0, unbounded)
	// after a release: Semaphore(1, unbounded)
}

// A bounded semaphore turns an unpaired Release from a silent accounting
// drift into an explicit error.
func ExampleNewBounded() {
	sem := semaphore.NewBounded(1, 1)
	fmt.Println("created:", sem)

	if err := sem.Release(); err != nil {
		fmt.Println("caller bug surfaced:", err)
	}

	// Output:
	// created: Semaphore(1/1)
	// caller bug surfaced: semaphore: release exceeds capacity: 1 permits already free
}
