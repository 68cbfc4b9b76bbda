package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/aryankumar/concur/internal/output"
	"github.com/aryankumar/concur/internal/strategy"
)

var completionGenerators = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash": func(root *cobra.Command, w io.Writer) error {
		return root.GenBashCompletionV2(w, true)
	},
	"zsh": func(root *cobra.Command, w io.Writer) error {
		return root.GenZshCompletion(w)
	},
	"fish": func(root *cobra.Command, w io.Writer) error {
		return root.GenFishCompletion(w, true)
	},
	"powershell": func(root *cobra.Command, w io.Writer) error {
		return root.GenPowerShellCompletionWithDesc(w)
	},
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for concur and print it to stdout.

Load it into the current shell:
  bash:        source <(concur completion bash)
  zsh:         source <(concur completion zsh)
  fish:        concur completion fish | source
  powershell:  concur completion powershell | Out-String | Invoke-Expression

Completions cover subcommands, --output formats and --strategy names.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		// no config needed to print a script
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionGenerators[args[0]](cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// completeOutput suggests the values accepted by -o
func completeOutput(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	formats := make([]string, len(output.Formats))
	for i, f := range output.Formats {
		formats[i] = string(f)
	}
	return formats, cobra.ShellCompDirectiveNoFileComp
}

// completeStrategy suggests strategy names for -s. Comma lists are not completed.
func completeStrategy(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	names := []string{"all"}
	for _, n := range strategy.All {
		names = append(names, string(n))
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
