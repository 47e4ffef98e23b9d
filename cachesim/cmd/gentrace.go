package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/mem/trace"
)

func newGenTraceCmd() *cobra.Command {
	var (
		n      int
		output string
		seed   int64
	)

	genCmd := &cobra.Command{
		Use:   "gentrace",
		Short: "Generate a random trace.",
		Long: "Generate a trace that alternates reads and writes to random " +
			"32-bit addresses. Outputs ending in .gz, .zst or .lz4 are " +
			"compressed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n < 0 {
				return fmt.Errorf("number of operations %d is negative", n)
			}

			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}

			w, err := trace.Create(output)
			if err != nil {
				return err
			}

			err = trace.NewGenerator(seed).Generate(w, n)
			if closeErr := w.Close(); err == nil {
				err = closeErr
			}

			if err != nil {
				return err
			}

			if output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(),
					"Trace file '%s' generated successfully!\n", output)
			}

			return nil
		},
	}

	genCmd.Flags().IntVarP(&n, "num", "n", 0, "Number of operations")
	genCmd.Flags().StringVarP(&output, "output", "o", "-",
		"Output file, - for stdout")
	genCmd.Flags().Int64Var(&seed, "seed", 0,
		"Random seed (default from the current time)")
	_ = genCmd.MarkFlagRequired("num")

	return genCmd
}
