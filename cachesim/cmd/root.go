// Package cmd provides the command-line interface of cachesim.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

const numRunArgs = 8

func newRootCmd() *cobra.Command {
	opts := &runOptions{}

	rootCmd := &cobra.Command{
		Use: "cachesim <block> <L1 size> <L1 assoc> <L2 size> <L2 assoc> " +
			"<prefetch N> <prefetch M> <trace>",
		Short: "cachesim simulates a two-level write-back LRU cache hierarchy.",
		Long: `cachesim replays a memory trace through an L1 and an optional ` +
			`L2 cache and reports their contents and statistics. Called with ` +
			`eight arguments it behaves like "cachesim run".`,
		Args:          runArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadEnv(); err != nil {
				return err
			}

			noColor, _ := cmd.Flags().GetBool("no-color")
			if noColor {
				color.NoColor = true
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}

			return runSimulation(cmd, opts, args)
		},
	}

	rootCmd.PersistentFlags().Bool("no-color", false,
		"Print the report without colors")
	addRunFlags(rootCmd, opts)

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newGenTraceCmd())
	rootCmd.AddCommand(newSweepCmd())

	return rootCmd
}

func runArgs(_ *cobra.Command, args []string) error {
	if len(args) != 0 && len(args) != numRunArgs {
		return fmt.Errorf(
			"expected %d command-line arguments but was provided %d",
			numRunArgs, len(args))
	}

	return nil
}

// Execute runs the command line and exits with a non-zero status on errors.
func Execute() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
