package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/Iron-Ham/lbsim/internal/config"
	"github.com/Iron-Ham/lbsim/internal/event"
	"github.com/Iron-Ham/lbsim/internal/logging"
	"github.com/Iron-Ham/lbsim/internal/metrics"
	"github.com/Iron-Ham/lbsim/internal/prompt"
	"github.com/Iron-Ham/lbsim/internal/report"
	"github.com/Iron-Ham/lbsim/internal/sim"
	"github.com/Iron-Ham/lbsim/internal/tracing"
)

type runOptions struct {
	workers     int
	cycles      int
	seed        uint64
	logFile     string
	noConsole   bool
	interactive bool
}

func newRunCmd(fs afero.Fs) *cobra.Command {
	opts := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		Long: `Run a simulation with the effective configuration.

Flags override the config file and environment. With --interactive the
initial worker count and the number of cycles are asked for on the terminal.
Interrupting the run stops it between cycles; the summary is still written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, fs, opts)
		},
	}

	flags := runCmd.Flags()
	flags.IntVarP(&opts.workers, "workers", "w", 0, "initial number of workers")
	flags.IntVarP(&opts.cycles, "cycles", "n", 0, "total clock cycles to simulate")
	flags.Uint64Var(&opts.seed, "seed", 0, "random seed (0 picks one)")
	flags.StringVar(&opts.logFile, "log", "", "journal file path")
	flags.BoolVar(&opts.noConsole, "no-console", false, "do not echo the journal to stdout")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "prompt for workers and cycles")

	return runCmd
}

// apply copies explicitly set flags onto cfg.
func (o *runOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.InitServers = o.workers
	}
	if flags.Changed("cycles") {
		cfg.TotalRunTime = o.cycles
	}
	if flags.Changed("seed") {
		cfg.Seed = o.seed
	}
	if flags.Changed("log") {
		cfg.LogFile = o.logFile
	}
	if o.noConsole {
		cfg.Console = false
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid options: %w", config.ValidationErrors(errs))
	}
	return nil
}

func (o *runOptions) ask(cmd *cobra.Command, cfg *config.Config) error {
	workers, err := prompt.AskInt(cmd.InOrStdin(), cmd.OutOrStdout(), prompt.WorkersField)
	if err != nil {
		return err
	}
	cycles, err := prompt.AskInt(cmd.InOrStdin(), cmd.OutOrStdout(), prompt.CyclesField)
	if err != nil {
		return err
	}
	cfg.InitServers = workers
	cfg.TotalRunTime = cycles
	return nil
}

func runSimulation(cmd *cobra.Command, fs afero.Fs, opts *runOptions) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Load Balancer Simulation ===")

	res, err := loadConfig(cmd, fs)
	if err != nil {
		return err
	}
	if res.File != "" {
		fmt.Fprintf(out, "Loaded config from file: %s\n", res.File)
	} else {
		fmt.Fprintln(out, "No config file found. Using default config.")
	}
	fmt.Fprintln(out)

	cfg := res.Config
	if err := opts.apply(cmd, cfg); err != nil {
		return err
	}
	if opts.interactive {
		if err := opts.ask(cmd, cfg); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	for cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}

	if err := cfg.Print(out); err != nil {
		return err
	}
	fmt.Fprintln(out)

	runID := fmt.Sprintf("run-%016x", cfg.Seed)
	logger, err := newDebugLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	logger = logger.WithRun(runID)

	runErr, err := simulate(cmd.Context(), fs, cfg, out, logger, runID)
	if err != nil {
		return err
	}

	if runErr != nil {
		fmt.Fprintf(out, "\nSimulation stopped: %v. Log written to %s\n", runErr, cfg.LogFile)
		return runErr
	}
	fmt.Fprintf(out, "\nSimulation complete. Log written to %s\n", cfg.LogFile)
	return nil
}

// simulate wires the journal, event bus, metrics and tracing around one
// simulator run. runErr is the run's own outcome; err reports a failure to
// set up or flush one of the sinks.
func simulate(ctx context.Context, fs afero.Fs, cfg *config.Config, out io.Writer, logger *logging.Logger, runID string) (runErr, err error) {
	journalFile, err := logging.NewRotatingWriterFs(fs, cfg.LogFile, logging.RotationConfig{
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Truncate:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() { _ = journalFile.Close() }()

	var journalOpts []report.Option
	if cfg.Console {
		journalOpts = append(journalOpts, report.WithConsole(out))
	}
	journal := report.NewJournal(journalFile, journalOpts...)

	bus := event.NewBus(logger)

	collector, err := metrics.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	collector.Attach(bus)
	defer collector.Detach()

	tp, err := tracing.New(ctx, fs, tracing.Config{File: cfg.TraceFile}, logger)
	if err != nil {
		return nil, err
	}
	defer tp.ShutdownWithTimeout(context.WithoutCancel(ctx), logger)
	otel.SetTracerProvider(tp.TracerProvider())

	ctx, span := tracing.StartRun(ctx, tp.Tracer(), bus, runID)

	s, err := sim.New(cfg.SimConfig(),
		sim.WithReporter(sim.MultiReporter{journal, event.NewEmitter(bus)}),
		sim.WithLogger(logger),
	)
	if err != nil {
		span.End(err)
		return nil, err
	}

	logger.Info("simulation starting",
		"workers", cfg.InitServers,
		"cycles", cfg.TotalRunTime,
		"seed", cfg.Seed,
	)
	runErr = s.Run(ctx)
	span.End(runErr)
	logger.Info("simulation finished",
		"cycles", s.Cycle(),
		"pool_size", s.PoolSize(),
		"queue_len", s.QueueLen(),
		"events", bus.Published(),
	)

	if cfg.MetricsFile != "" {
		if err := collector.WriteFile(fs, cfg.MetricsFile); err != nil {
			return runErr, err
		}
	}
	if err := journal.Err(); err != nil {
		return runErr, fmt.Errorf("failed to write journal: %w", err)
	}
	return runErr, nil
}

// newDebugLogger opens the structured debug log, or discards records when
// none is configured.
func newDebugLogger(cfg *config.Config) (*logging.Logger, error) {
	if cfg.DebugLog == "" {
		return logging.NopLogger(), nil
	}
	rotation := logging.DefaultRotationConfig()
	rotation.MaxSizeMB = cfg.LogMaxSizeMB
	rotation.MaxBackups = cfg.LogMaxBackups
	return logging.NewLogger(cfg.DebugLog, cfg.StructuredLevel(), rotation)
}
