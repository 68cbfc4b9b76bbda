package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aryankumar/concur/internal/output"
	"github.com/aryankumar/concur/pkg/version"
)

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display detailed version information for the Concur CLI",
		Args:  cobra.NoArgs,
		// Version needs no configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd)
		},
	}

	return cmd
}

func runVersion(cmd *cobra.Command) error {
	info := version.Get()
	w := cmd.OutOrStdout()

	// Human-readable unless -o was given
	if !cmd.Flags().Changed("output") {
		fmt.Fprintln(w, info.String())
		return nil
	}

	format, _ := cmd.Flags().GetString("output")
	if !output.IsFormat(format) {
		return fmt.Errorf("unsupported output format %q", format)
	}
	noColor, _ := cmd.Flags().GetBool("no-color")
	f := output.NewFormatter(output.Format(format), output.WithNoColor(noColor))

	if output.Format(format) != output.FormatTable {
		return f.Format(w, info)
	}
	return f.Format(w, output.Rows{
		Headers: []string{"COMPONENT", "VALUE"},
		Rows: [][]string{
			{"Version", info.Version},
			{"Commit", info.Commit},
			{"Build Time", info.BuildTime},
			{"Go Version", info.GoVersion},
			{"Platform", info.Platform},
			{"CPUs", strconv.Itoa(info.CPUs)},
		},
	})
}
