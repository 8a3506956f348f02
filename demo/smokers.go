package demo

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/notorious-go/primitives/event"
	"github.com/notorious-go/primitives/semaphore"
)

// The three ingredients of the cigarette smokers problem. Smoker i holds an
// unlimited supply of ingredient i and needs the other two.
var ingredients = [3]string{"tobacco", "paper", "matches"}

// Smokers runs the cigarette smokers problem for the given number of
// rounds, writing a line per action to w.
//
// An agent repeatedly places two of the three ingredients on the table and
// signals the smoker who holds the third by setting that smoker's event.
// The smoker rolls a cigarette, smokes it, and releases the agent's
// semaphore so the next round can begin. The agent semaphore holds the
// rounds to one at a time; the events carry the "your ingredients are on
// the table" signal to exactly the right smoker, with no polling and no
// lost wakeups.
func Smokers(w io.Writer, rng *rand.Rand, rounds int) error {
	out := newPrinter(w)

	// table guards the right to restock: one permit, held from the moment
	// the agent places ingredients until the smoker finishes the round.
	table := semaphore.NewBounded(1, 1)

	var supplied [3]event.Event

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var g errgroup.Group

	for i := range 3 {
		g.Go(func() error {
			for {
				if err := supplied[i].WaitContext(ctx); err != nil {
					if errors.Is(err, context.Canceled) {
						return nil // the agent has closed up shop
					}
					return err
				}
				supplied[i].Clear()
				out.printf("smoker with %s rolls a cigarette and smokes\n", ingredients[i])
				if err := table.Release(); err != nil {
					return err
				}
			}
		})
	}

	g.Go(func() error {
		for round := 1; round <= rounds; round++ {
			table.Acquire()
			smoker := rng.IntN(3)
			first, second := ingredients[(smoker+1)%3], ingredients[(smoker+2)%3]
			out.printf("round %d: agent places %s and %s\n", round, first, second)
			supplied[smoker].Set()
		}
		// Wait for the last smoker to finish before sending everyone home.
		table.Acquire()
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return out.flushErr()
}
