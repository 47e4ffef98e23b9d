package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/analysis"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/mem/trace"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/report"
	"github.com/sarchlab/cachesim/simulation"
)

type runOptions struct {
	record       string
	recordEvents bool
	traceLog     string
	monitor      bool
	monitorPort  int
	openBrowser  bool
	footprint    bool
	progress     bool
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	flags := cmd.Flags()
	flags.StringVar(&opts.record, "record", "",
		"Record the statistics into <name>.sqlite3 "+
			"(default from "+envRecord+")")
	flags.BoolVar(&opts.recordEvents, "record-events", false,
		"Also record every access and eviction")
	flags.StringVar(&opts.traceLog, "trace-log", "",
		"Log every access and eviction to a file, - for stderr")
	flags.BoolVar(&opts.monitor, "monitor", false,
		"Serve the progress of the simulation over HTTP")
	flags.IntVar(&opts.monitorPort, "monitor-port", 0,
		"Port of the monitoring server (default from "+envMonitorPort+
			", random if unset)")
	flags.BoolVar(&opts.openBrowser, "open-browser", false,
		"Open the monitoring page in a browser")
	flags.BoolVar(&opts.footprint, "footprint", false,
		"Report the L1 block footprint")
	flags.BoolVar(&opts.progress, "progress", false,
		"Log the progress of the simulation to stderr")
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	runCmd := &cobra.Command{
		Use: "run <block> <L1 size> <L1 assoc> <L2 size> <L2 assoc> " +
			"<prefetch N> <prefetch M> <trace>",
		Short: "Replay a trace through the cache hierarchy.",
		Long: "Replay a trace through the cache hierarchy. The trace is a " +
			"file, - for stdin, or s3://bucket/key. Files ending in .gz, .zst " +
			"or .lz4 are decompressed.",
		Args: cobra.ExactArgs(numRunArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, opts, args)
		},
	}

	addRunFlags(runCmd, opts)

	return runCmd
}

func parseConfig(args []string) (simulation.Config, error) {
	var (
		c    simulation.Config
		errs []error
	)

	parseSize := func(name, s string) uint64 {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}

		return v
	}

	parseCount := func(name, s string) int {
		v, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}

		return v
	}

	c.BlockSize = parseSize("block size", args[0])
	c.L1Size = parseSize("L1 size", args[1])
	c.L1Assoc = parseCount("L1 associativity", args[2])
	c.L2Size = parseSize("L2 size", args[3])
	c.L2Assoc = parseCount("L2 associativity", args[4])
	c.PrefetchN = parseCount("prefetch N", args[5])
	c.PrefetchM = parseCount("prefetch M", args[6])

	if err := errors.Join(errs...); err != nil {
		return c, err
	}

	return c, c.Validate()
}

type runSession struct {
	cmd       *cobra.Command
	opts      *runOptions
	config    simulation.Config
	hierarchy *simulation.Hierarchy
	runner    *simulation.Runner
	recorder  datarecording.DataRecorder
	footprint *analysis.FootprintTracer
	monitor   *monitoring.Monitor
	traceBar  *monitoring.ProgressBar
	closers   []io.Closer
}

func runSimulation(cmd *cobra.Command, opts *runOptions, args []string) error {
	config, err := parseConfig(args)
	if err != nil {
		return err
	}

	h, err := simulation.MakeBuilder().WithConfig(config).Build()
	if err != nil {
		return err
	}

	src, err := trace.Open(cmd.Context(), args[numRunArgs-1], traceOpenOptions())
	if err != nil {
		return fmt.Errorf("unable to open trace %s: %w", args[numRunArgs-1], err)
	}
	defer src.Close()

	s := &runSession{
		cmd:       cmd,
		opts:      opts,
		config:    config,
		hierarchy: h,
		runner:    simulation.NewRunner(h),
	}
	defer s.close()

	if err := s.attach(); err != nil {
		return err
	}

	reader := trace.NewReader(src)
	_, runErr := s.runner.Run(reader)

	s.report()

	if runErr != nil {
		if !errors.Is(runErr, trace.ErrMalformedRecord) {
			return runErr
		}

		fmt.Fprintf(cmd.ErrOrStderr(),
			"Warning: trace stopped early: %v\n", runErr)
	}

	return nil
}

func (s *runSession) attach() error {
	if err := s.attachTraceLog(); err != nil {
		return err
	}

	s.attachRecorder()

	if s.opts.footprint {
		s.footprint = analysis.NewFootprintTracer("L1", s.config.BlockSize)
		s.hierarchy.L1().AcceptHook(s.footprint)
	}

	if s.opts.progress {
		s.runner.WithLogger(log.New(s.cmd.ErrOrStderr(), "", log.LstdFlags))
	}

	return s.attachMonitor()
}

func (s *runSession) attachTraceLog() error {
	if s.opts.traceLog == "" {
		return nil
	}

	var w io.Writer = s.cmd.ErrOrStderr()
	if s.opts.traceLog != "-" {
		f, err := os.Create(s.opts.traceLog)
		if err != nil {
			return err
		}

		s.closers = append(s.closers, f)
		w = f
	}

	s.hierarchy.AcceptHook(trace.NewTracer(log.New(w, "", 0)))

	return nil
}

func (s *runSession) attachRecorder() {
	path := s.opts.record
	if !s.cmd.Flags().Changed("record") {
		path = os.Getenv(envRecord)
	}

	if path == "" && !s.opts.recordEvents {
		return
	}

	s.recorder = datarecording.New(path)

	if s.opts.recordEvents {
		s.hierarchy.AcceptHook(trace.NewDBTracer(s.recorder))
	}
}

func (s *runSession) attachMonitor() error {
	if !s.opts.monitor {
		return nil
	}

	port := s.opts.monitorPort
	if !s.cmd.Flags().Changed("monitor-port") {
		port = envInt(envMonitorPort, 0)
	}

	s.monitor = monitoring.NewMonitor().
		WithPortNumber(port).
		WithOpenBrowser(s.opts.openBrowser)
	s.monitor.RegisterConfig(s.config)
	s.traceBar = s.monitor.TrackProgress("Trace", 0)

	if _, err := s.monitor.StartServer(); err != nil {
		return err
	}

	s.runner.WithObserver(s.monitor)

	return nil
}

func (s *runSession) report() {
	out := s.cmd.OutOrStdout()

	for _, level := range s.hierarchy.Contents() {
		report.WriteContents(out, level)
	}

	stats := s.hierarchy.Stats()
	report.WriteStats(out, stats)

	if s.footprint != nil {
		report.WriteFootprint(out, s.footprint.Footprint())
	}

	if s.recorder != nil {
		simulation.RecordStats(s.recorder, s.config.String(), stats)
	}
}

func (s *runSession) close() {
	if s.recorder != nil {
		if err := s.recorder.Close(); err != nil {
			fmt.Fprintf(s.cmd.ErrOrStderr(), "Warning: %v\n", err)
		}
	}

	if s.monitor != nil {
		if s.traceBar != nil {
			s.monitor.CompleteProgressBar(s.traceBar)
		}

		s.monitor.StopServer()
	}

	for _, c := range s.closers {
		c.Close()
	}
}
