package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation/circulation/command"
	"github.com/AntonStoeckl/library-circulation/circulation/core"
	"github.com/AntonStoeckl/library-circulation/circulation/shell"
)

// simulation drives random desk traffic from concurrent workers against a small
// set of items, so that hold queues fill up and appends race for the same item.
type simulation struct {
	items    int
	patrons  int
	workers  int
	duration time.Duration
	seed     uint64
}

type simulationStats struct {
	mu        sync.Mutex
	byStatus  map[string]int
	retries   int
	latencies []time.Duration
}

func (s *simulationStats) record(status string, result shell.HandlerResult, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byStatus[status]++
	if result.RetryAttempts > 1 {
		s.retries += result.RetryAttempts - 1
	}
	s.latencies = append(s.latencies, latency)
}

func newSimulateCommand(c *cli) *cobra.Command {
	sim := simulation{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate concurrent circulation traffic and report outcomes and latencies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd, func(ctx context.Context, svc *service) error {
				if err := svc.store.CreateSchema(ctx); err != nil {
					return err
				}

				stats, elapsed, err := sim.run(ctx, svc)
				if err != nil {
					return err
				}

				c.printSimulationReport(cmd, stats, elapsed)

				return nil
			})
		},
	}

	cmd.Flags().IntVar(&sim.items, "items", 5, "number of items")
	cmd.Flags().IntVar(&sim.patrons, "patrons", 20, "number of patrons")
	cmd.Flags().IntVar(&sim.workers, "workers", 8, "number of concurrent workers")
	cmd.Flags().DurationVar(&sim.duration, "duration", 10*time.Second, "how long to generate traffic")
	cmd.Flags().Uint64Var(&sim.seed, "seed", uint64(time.Now().UnixNano()), "random seed")

	return cmd
}

func (s simulation) run(ctx context.Context, svc *service) (*simulationStats, time.Duration, error) {
	if s.items < 1 || s.patrons < 1 || s.workers < 1 {
		return nil, 0, errors.New("items, patrons and workers must be at least 1")
	}

	for i := range s.items {
		_, err := svc.commands.AddItemToCirculation.Handle(ctx,
			command.BuildAddItemToCirculation(simItemID(i), "L1", "book", time.Now()))
		if err != nil && !errors.Is(err, core.ErrItemAlreadyInCirculation) {
			return nil, 0, err
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, s.duration)
	defer cancel()

	stats := &simulationStats{byStatus: make(map[string]int)}
	start := time.Now()

	var wg sync.WaitGroup
	for worker := range s.workers {
		wg.Go(func() {
			rng := rand.New(rand.NewPCG(s.seed, uint64(worker)))

			for runCtx.Err() == nil {
				opStart := time.Now()
				result, err := s.step(runCtx, svc, rng)
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					return
				}

				stats.record(shell.StatusOf(err), result, time.Since(opStart))
			}
		})
	}
	wg.Wait()

	return stats, time.Since(start), nil
}

// step performs one random desk operation. Rejections are part of the traffic.
func (s simulation) step(ctx context.Context, svc *service, rng *rand.Rand) (shell.HandlerResult, error) {
	itemID := simItemID(rng.IntN(s.items))
	patronID := fmt.Sprintf("sim-patron-%d", rng.IntN(s.patrons))
	patron := core.Patron{ID: patronID, Barcode: "B-" + patronID}
	pickup := []string{"L1", "L2"}[rng.IntN(2)]
	now := time.Now()

	switch roll := rng.IntN(100); {
	case roll < 25:
		return svc.commands.RequestItem.Handle(ctx, command.BuildRequestItem(itemID, patron, pickup, now))
	case roll < 45:
		return svc.commands.LoanItem.Handle(ctx,
			command.BuildLoanItem(itemID, patron, pickup, time.Time{}, time.Time{}, now))
	case roll < 65:
		return svc.commands.ReturnItem.Handle(ctx, command.BuildReturnItem(itemID, pickup, now))
	case roll < 75:
		return svc.commands.ValidateItemRequest.Handle(ctx, command.BuildValidateItemRequest(itemID, now))
	case roll < 85:
		return svc.commands.ReceiveItem.Handle(ctx, command.BuildReceiveItem(itemID, pickup, now))
	case roll < 95:
		return svc.commands.ExtendLoan.Handle(ctx, command.BuildExtendLoan(itemID, time.Time{}, nil, now))
	case roll < 98:
		return svc.commands.ReturnMissingItem.Handle(ctx, command.BuildReturnMissingItem(itemID, now))
	default:
		return svc.commands.LoseItem.Handle(ctx, command.BuildLoseItem(itemID, now))
	}
}

func (c *cli) printSimulationReport(cmd *cobra.Command, stats *simulationStats, elapsed time.Duration) {
	total := len(stats.latencies)
	if total == 0 {
		c.printf(cmd, "no operations completed\n")
		return
	}

	slices.Sort(stats.latencies)

	c.printf(cmd, "operations: %d in %s (%.1f ops/s)\n", total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	for _, status := range []string{
		shell.StatusSuccess, shell.StatusRejected, shell.StatusConflict, shell.StatusTimeout, shell.StatusError,
	} {
		if n := stats.byStatus[status]; n > 0 {
			c.printf(cmd, "  %-9s %d\n", status, n)
		}
	}
	c.printf(cmd, "retries after conflicts: %d\n", stats.retries)
	c.printf(cmd, "latency p50 %s  p99 %s\n", percentile(stats.latencies, 50), percentile(stats.latencies, 99))
}

// percentile expects sorted latencies.
func percentile(sorted []time.Duration, p int) time.Duration {
	return sorted[(len(sorted)-1)*p/100]
}

func simItemID(i int) core.ItemIDString {
	return fmt.Sprintf("sim-item-%d", i)
}
