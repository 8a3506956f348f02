// Command syncdemo runs the classic coordination problems from the demo
// package on this module's primitives. Each subcommand prints a narrated
// run to stdout and exits non-zero if the run violates an invariant.
package main

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/notorious-go/primitives/demo"
)

var (
	roundsFlag    int
	seedFlag      uint64
	workersFlag   int
	phasesFlag    int
	producersFlag int
	consumersFlag int
	itemsFlag     int

	rootCmd = &cobra.Command{
		Use:   "syncdemo",
		Short: "Demonstrations of FIFO and lock-free synchronization primitives",
	}

	smokersCmd = &cobra.Command{
		Use:   "smokers",
		Short: "Run the cigarette smokers problem on a bounded semaphore and per-smoker events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if roundsFlag < 1 {
				return fmt.Errorf("rounds must be at least 1, got %d", roundsFlag)
			}
			seed := seedFlag
			if seed == 0 {
				seed = rand.Uint64()
			}
			rng := rand.New(rand.NewPCG(seed, 0))
			return demo.Smokers(cmd.OutOrStdout(), rng, roundsFlag)
		},
	}

	barrierCmd = &cobra.Command{
		Use:   "barrier",
		Short: "Run workers through a reusable two-phase barrier built from semaphores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if workersFlag < 1 {
				return fmt.Errorf("workers must be at least 1, got %d", workersFlag)
			}
			if phasesFlag < 1 {
				return fmt.Errorf("phases must be at least 1, got %d", phasesFlag)
			}
			return demo.BarrierDemo(cmd.OutOrStdout(), workersFlag, phasesFlag)
		},
	}

	producersCmd = &cobra.Command{
		Use:   "producers",
		Short: "Hammer the lock-free stack with producers and consumers, then audit the books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if producersFlag < 1 {
				return fmt.Errorf("producers must be at least 1, got %d", producersFlag)
			}
			if consumersFlag < 1 {
				return fmt.Errorf("consumers must be at least 1, got %d", consumersFlag)
			}
			if itemsFlag < 1 {
				return fmt.Errorf("items must be at least 1, got %d", itemsFlag)
			}
			return demo.Producers(cmd.OutOrStdout(), producersFlag, consumersFlag, itemsFlag)
		},
	}

	abaCmd = &cobra.Command{
		Use:   "aba",
		Short: "Replay the ABA hazard and watch the version counter defeat it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return demo.ABA(cmd.OutOrStdout())
		},
	}
)

func init() {
	smokersCmd.Flags().IntVar(&roundsFlag, "rounds", 10, "number of rounds the agent plays")
	smokersCmd.Flags().Uint64Var(&seedFlag, "seed", 0, "seed for the agent's choices (0 picks one at random)")

	barrierCmd.Flags().IntVar(&workersFlag, "workers", 4, "number of workers meeting at the barrier")
	barrierCmd.Flags().IntVar(&phasesFlag, "phases", 3, "number of phases to run")

	producersCmd.Flags().IntVar(&producersFlag, "producers", 4, "number of producer goroutines")
	producersCmd.Flags().IntVar(&consumersFlag, "consumers", 4, "number of consumer goroutines")
	producersCmd.Flags().IntVar(&itemsFlag, "items", 1000, "number of values each producer pushes")

	rootCmd.AddCommand(smokersCmd)
	rootCmd.AddCommand(barrierCmd)
	rootCmd.AddCommand(producersCmd)
	rootCmd.AddCommand(abaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
