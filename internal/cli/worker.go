package cli

import (
	"github.com/spf13/cobra"

	"github.com/aryankumar/concur/internal/work"
	"github.com/aryankumar/concur/internal/workload"
)

// newWorkerCmd creates the hidden command the process strategies launch.
// It reads one request from stdin and writes one response to stdout.
func newWorkerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:    "worker",
		Short:  "Serve one partition for a process strategy",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := workload.NewRegistry(newSummaries(opts.cfg, opts.logger), opts.logger)
			if err != nil {
				return err
			}

			opts.logger.Debug("worker started", "units", reg.Names())
			return work.Serve(cmd.Context(), reg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	addIOFlags(cmd)

	return cmd
}

// IsWorkerInvocation reports whether args select the hidden worker command
func IsWorkerInvocation(args []string) bool {
	cmd, _, err := newRootCmd().Find(args)
	return err == nil && cmd.Name() == "worker"
}
