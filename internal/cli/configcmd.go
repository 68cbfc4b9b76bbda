package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aryankumar/concur/internal/output"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	cmd.AddCommand(newConfigViewCmd(opts))
	cmd.AddCommand(newConfigInitCmd(opts))

	return cmd
}

func newConfigViewCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging the config file, CONCUR_*
environment variables and flags. Table output falls back to YAML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := output.ParseFormat(opts.cfg.Defaults.OutputFormat)
			if format == output.FormatTable {
				format = output.FormatYAML
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), opts.cfg)
		},
	}
}

func newConfigInitCmd(opts *options) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path := opts.manager.Path(); path != "" && !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
				}
			}

			if err := opts.manager.Save(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", opts.manager.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}
