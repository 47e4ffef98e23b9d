package simulation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/cachesim/mem/mem"
)

// SweepResult is the outcome of one configuration of a sweep. Err is set when
// the configuration is invalid.
type SweepResult struct {
	Config Config
	Stats  Snapshot
	Err    error
}

const sweepCancelCheckInterval = 1 << 16

// Sweep replays the same trace through one hierarchy per configuration, with
// at most jobs hierarchies running at a time. Results keep the order of
// configs. Each hierarchy is only touched by its own goroutine. Invalid
// configurations are reported in their result. Sweep only fails when the
// context is canceled.
func Sweep(
	ctx context.Context,
	accesses []mem.Access,
	configs []Config,
	jobs int,
) ([]SweepResult, error) {
	results := make([]SweepResult, len(configs))

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}

	for i, config := range configs {
		g.Go(func() error {
			result, err := runOne(ctx, accesses, config)
			results[i] = result

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func runOne(
	ctx context.Context,
	accesses []mem.Access,
	config Config,
) (SweepResult, error) {
	result := SweepResult{Config: config}

	h, err := MakeBuilder().WithConfig(config).Build()
	if err != nil {
		result.Err = err
		return result, nil
	}

	for i, a := range accesses {
		if i%sweepCancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}

		h.Access(a.Op, a.Address)
	}

	result.Stats = h.Stats()

	return result, nil
}

// Grid builds every combination of the given parameter values, varying the
// last parameter fastest. An L2 size of 0 yields a single L2-less entry.
func Grid(
	blockSizes []uint64,
	l1Sizes []uint64,
	l1Assocs []int,
	l2Sizes []uint64,
	l2Assocs []int,
) []Config {
	var configs []Config

	for _, bs := range blockSizes {
		for _, l1Size := range l1Sizes {
			for _, l1Assoc := range l1Assocs {
				for _, l2Size := range l2Sizes {
					assocs := l2Assocs
					if l2Size == 0 {
						assocs = []int{0}
					}

					for _, l2Assoc := range assocs {
						configs = append(configs, Config{
							BlockSize: bs,
							L1Size:    l1Size,
							L1Assoc:   l1Assoc,
							L2Size:    l2Size,
							L2Assoc:   l2Assoc,
						})
					}
				}
			}
		}
	}

	return configs
}
