package cmd

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/report"
	"github.com/sarchlab/cachesim/simulation"
)

type sweepOptions struct {
	trace    string
	blocks   []int
	l1Sizes  []int
	l1Assocs []int
	l2Sizes  []int
	l2Assocs []int
	jobs     int
	record   string
}

func newSweepCmd() *cobra.Command {
	opts := &sweepOptions{}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Replay one trace through many hierarchy configurations.",
		Long: "Replay one trace through every combination of the given " +
			"parameters in parallel. An L2 size of 0 disables L2.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(cmd, opts)
		},
	}

	flags := sweepCmd.Flags()
	flags.StringVar(&opts.trace, "trace", "", "Trace file")
	flags.IntSliceVar(&opts.blocks, "block", []int{16}, "Block sizes")
	flags.IntSliceVar(&opts.l1Sizes, "l1", []int{1024}, "L1 sizes")
	flags.IntSliceVar(&opts.l1Assocs, "l1-assoc", []int{1}, "L1 associativities")
	flags.IntSliceVar(&opts.l2Sizes, "l2", []int{0}, "L2 sizes")
	flags.IntSliceVar(&opts.l2Assocs, "l2-assoc", []int{4}, "L2 associativities")
	flags.IntVar(&opts.jobs, "jobs", runtime.NumCPU(),
		"Configurations simulated at the same time")
	flags.StringVar(&opts.record, "record", "",
		"Record the results into <name>.sqlite3 (default from "+envRecord+")")
	_ = sweepCmd.MarkFlagRequired("trace")

	return sweepCmd
}

func toSizes(name string, values []int) ([]uint64, error) {
	sizes := make([]uint64, 0, len(values))

	for _, v := range values {
		if v < 0 {
			return nil, fmt.Errorf("%s %d is negative", name, v)
		}

		sizes = append(sizes, uint64(v))
	}

	return sizes, nil
}

func runSweep(cmd *cobra.Command, opts *sweepOptions) error {
	blocks, err := toSizes("block size", opts.blocks)
	if err != nil {
		return err
	}

	l1Sizes, err := toSizes("L1 size", opts.l1Sizes)
	if err != nil {
		return err
	}

	l2Sizes, err := toSizes("L2 size", opts.l2Sizes)
	if err != nil {
		return err
	}

	src, err := trace.Open(cmd.Context(), opts.trace, traceOpenOptions())
	if err != nil {
		return fmt.Errorf("unable to open trace %s: %w", opts.trace, err)
	}
	defer src.Close()

	accesses, err := trace.LoadAll(trace.NewReader(src))
	if err != nil {
		if !errors.Is(err, trace.ErrMalformedRecord) {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: trace stopped early: %v\n", err)
	}

	configs := simulation.Grid(
		blocks, l1Sizes, opts.l1Assocs, l2Sizes, opts.l2Assocs)

	results, err := simulation.Sweep(cmd.Context(), accesses, configs, opts.jobs)
	if err != nil {
		return err
	}

	report.WriteSweep(cmd.OutOrStdout(), results)

	path := opts.record
	if !cmd.Flags().Changed("record") {
		path = os.Getenv(envRecord)
	}

	if path != "" {
		recorder := datarecording.New(path)
		simulation.RecordSweep(recorder, results)

		return recorder.Close()
	}

	return nil
}
