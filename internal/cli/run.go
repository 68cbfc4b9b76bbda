package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aryankumar/concur/internal/config"
	"github.com/aryankumar/concur/internal/output"
	"github.com/aryankumar/concur/internal/scraper"
	"github.com/aryankumar/concur/internal/sink"
	"github.com/aryankumar/concur/internal/strategy"
	"github.com/aryankumar/concur/internal/util"
	"github.com/aryankumar/concur/internal/work"
	"github.com/aryankumar/concur/internal/workload"
)

func newRunCmd(opts *options) *cobra.Command {
	var wide bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a workload under one or more strategies",
		Long: `Run a workload under each selected strategy and compare their durations.

Strategies:
  sequential     one item after another on the calling goroutine
  threaded       a bounded goroutine pool, one partition per worker
  process        one worker process per partition
  process-async  one worker process per partition, each running its items cooperatively
  async          one cooperative task per item on a single-threaded executor`,
	}

	cmd.PersistentFlags().StringP("strategy", "s", config.DefaultStrategy, "comma separated strategies to run, or all")
	cmd.PersistentFlags().BoolVarP(&wide, "wide", "w", false, "show the error column")

	_ = cmd.RegisterFlagCompletionFunc("strategy", completeStrategy)

	cmd.AddCommand(newRunCPUCmd(opts, &wide))
	cmd.AddCommand(newRunIOCmd(opts, &wide))

	return cmd
}

func newRunCPUCmd(opts *options, wide *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cpu",
		Short: "Compute n^n for a range of n",
		Example: `  # Compare every strategy on n = 1000000..1000007
  concur run cpu

  # Threaded and process pools only, with 4 workers
  concur run cpu -s threaded,process -p 4

  # Small numbers, JSON output
  concur run cpu --start 1000 --count 100 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			items := workload.Items(cfg.CPU.Start, cfg.CPU.Count)
			return runWorkload(cmd, opts, *wide, workload.PowUnit(), items)
		},
	}

	cmd.Flags().Int("start", config.DefaultCPUStart, "first n")
	cmd.Flags().Int("count", config.DefaultCPUCount, "how many consecutive n to compute")

	return cmd
}

func newRunIOCmd(opts *options, wide *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "io",
		Short: "Fetch a wiki summary per character and write it to a file",
		Example: `  # Every character from the API, every strategy
  concur run io

  # Two characters, cooperative executor only
  concur run io -s async --characters "Walter White,Jesse Pinkman"

  # Write summaries elsewhere
  concur run io --out-dir /tmp/summaries`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			summaries := newSummaries(opts.cfg, opts.logger)

			names := opts.cfg.IO.Characters
			if len(names) == 0 {
				var err error
				names, err = summaries.Client.Characters(ctx)
				if err != nil {
					return fmt.Errorf("failed to list characters: %w", err)
				}
			}
			if len(names) == 0 {
				opts.logger.Warn("no characters to fetch", "api", opts.cfg.IO.APIURL)
			}

			return runWorkload(cmd, opts, *wide, summaries.Unit(), names)
		},
	}

	addIOFlags(cmd)
	cmd.Flags().StringSlice("characters", nil, "characters to fetch instead of asking the API")

	return cmd
}

// addIOFlags defines the flags the I/O workload reads, for both the
// coordinator and its worker processes
func addIOFlags(cmd *cobra.Command) {
	cmd.Flags().String("api-url", config.DefaultAPIURL, "character API base URL")
	cmd.Flags().String("wiki-url", config.DefaultWikiURL, "wiki base URL")
	cmd.Flags().String("out-dir", config.DefaultOutputDir, "directory for summary files")
	cmd.Flags().Duration("http-timeout", config.DefaultHTTPTimeout, "timeout for each HTTP request")
}

// ioArgs renders the I/O settings as flags for a worker process
func ioArgs(cfg *config.ConcurConfig) []string {
	return []string{
		"--api-url", cfg.IO.APIURL,
		"--wiki-url", cfg.IO.WikiURL,
		"--out-dir", cfg.IO.OutputDir,
		"--http-timeout", cfg.IO.HTTPTimeout.String(),
	}
}

func newSummaries(cfg *config.ConcurConfig, logger *slog.Logger) workload.Summaries {
	client := scraper.NewClient(scraper.Config{
		APIURL:    cfg.IO.APIURL,
		WikiURL:   cfg.IO.WikiURL,
		QuotesURL: cfg.IO.QuotesURL,
		Timeout:   cfg.IO.HTTPTimeout,
	}, logger)

	return workload.Summaries{
		Client: client,
		Sink:   sink.NewFile(cfg.IO.OutputDir, logger),
	}
}

// runWorkload runs items under every selected strategy, renders the reports
// and returns the first failure
func runWorkload[T, R any](cmd *cobra.Command, opts *options, wide bool, unit work.Unit[T, R], items []T) error {
	cfg := opts.cfg
	logger := opts.logger

	names, err := strategy.ParseNames(cfg.Defaults.Strategy)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context(), cfg.Defaults.Timeout)
	defer cancel()

	var launcher work.Launcher
	if slices.Contains(names, strategy.Process) || slices.Contains(names, strategy.ProcessAsync) {
		launcher, err = workerLauncher(opts)
		if err != nil {
			return err
		}
	}

	logger.Info("running workload",
		"workload", unit.Name,
		"items", len(items),
		"workers", cfg.Defaults.Workers,
		"strategies", joinNames(names))

	var (
		reports  []strategy.Report
		firstErr error
	)
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}

		s := newStrategy(name, unit, cfg.Defaults.Workers, launcher, logger)
		run, err := s.Run(ctx, items)
		if run != nil {
			reports = append(reports, run.Report)
		}
		if err != nil {
			logger.Warn("strategy failed", "strategy", name, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", name, err)
			}
		}
	}

	formatter := output.NewFormatter(
		output.ParseFormat(cfg.Defaults.OutputFormat),
		output.WithNoColor(cfg.Defaults.NoColor),
		output.WithWide(wide),
	)
	if err := formatter.FormatRuns(cmd.OutOrStdout(), reports); err != nil {
		return fmt.Errorf("failed to render results: %w", err)
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", util.ErrTimeout, cfg.Defaults.Timeout)
	}
	return firstErr
}

// newStrategy builds the named strategy. launcher may be nil unless name is a
// process strategy.
func newStrategy[T, R any](name strategy.Name, unit work.Unit[T, R], workers int, launcher work.Launcher, logger *slog.Logger) strategy.Strategy[T, R] {
	switch name {
	case strategy.Threaded:
		return strategy.NewThreaded(unit, workers, logger)
	case strategy.Process:
		return strategy.NewProcessPool(unit, workers, launcher, work.ModeSync, logger)
	case strategy.ProcessAsync:
		return strategy.NewProcessPool(unit, workers, launcher, work.ModeAsync, logger)
	case strategy.Async:
		return strategy.NewAsync(unit, logger)
	default:
		return strategy.NewSequential(unit, logger)
	}
}

// workerLauncher re-runs this executable as "concur worker" with the
// coordinator's settings
func workerLauncher(opts *options) (*work.Command, error) {
	args := []string{"worker"}
	if opts.cfgFile != "" {
		args = append(args, "--config", opts.cfgFile)
	}
	if opts.verbose {
		args = append(args, "--verbose")
	}
	if opts.cfg.Defaults.NoColor {
		args = append(args, "--no-color")
	}
	args = append(args, ioArgs(opts.cfg)...)

	return work.SelfCommand(opts.logger, args...)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func joinNames(names []strategy.Name) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ",")
}
