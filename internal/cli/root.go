package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aryankumar/concur/internal/config"
)

// flagKeys maps config keys to the flags that override them. A command binds
// only the flags it defines.
var flagKeys = map[string]string{
	"defaults.workers":      "workers",
	"defaults.timeout":      "timeout",
	"defaults.outputFormat": "output",
	"defaults.noColor":      "no-color",
	"defaults.strategy":     "strategy",
	"cpu.start":             "start",
	"cpu.count":             "count",
	"io.apiURL":             "api-url",
	"io.wikiURL":            "wiki-url",
	"io.quotesURL":          "quotes-url",
	"io.outputDir":          "out-dir",
	"io.characters":         "characters",
	"io.httpTimeout":        "http-timeout",
}

// options is shared by every command. cfg is populated before RunE runs.
type options struct {
	cfgFile string
	verbose bool
	logs    io.Writer

	manager *config.Manager
	cfg     *config.ConcurConfig
	logger  *slog.Logger
}

// Execute runs the root command with the provided context
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	opts := &options{logs: os.Stderr}

	rootCmd := &cobra.Command{
		Use:   "concur",
		Short: "Concur - compare concurrency strategies on CPU and I/O workloads",
		Long: `Concur runs the same batch of work sequentially, on a goroutine pool,
on a pool of worker processes and on a cooperative single-threaded executor,
then reports how long each strategy took.

The CPU workload computes n^n for a range of n. The I/O workload fetches a
wiki summary for each character and writes it to a file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.concur.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", config.DefaultOutputFormat, "output format (json, yaml, table)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output with debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().Duration("timeout", 0, "timeout for the whole command (0 means none)")
	rootCmd.PersistentFlags().IntP("workers", "p", 0, "workers for the threaded and process strategies (default is the number of CPUs)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", completeOutput)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newQuotesCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newWorkerCmd(opts))

	return rootCmd
}

// init loads configuration for cmd and sets up logging
func (o *options) init(cmd *cobra.Command) error {
	o.manager = config.NewManager(o.cfgFile)

	// only the flags this command defines or inherits
	bindings := make(map[string]string, len(flagKeys))
	for key, name := range flagKeys {
		if cmd.Flags().Lookup(name) != nil {
			bindings[key] = name
		}
	}
	if err := o.manager.BindFlags(cmd.Flags(), bindings); err != nil {
		return err
	}

	cfg, err := o.manager.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	o.cfg = cfg

	o.logger = setupLogging(o.logs, o.verbose, cfg.Defaults.NoColor)
	if path := o.manager.Path(); path != "" {
		o.logger.Debug("loaded configuration", "file", path)
	}

	return nil
}

// setupLogging configures structured logging with slog
func setupLogging(w io.Writer, verbose, noColor bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if noColor {
		// JSON for machine consumers
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	if verbose {
		logger.Debug("verbose logging enabled")
	}

	return logger
}
