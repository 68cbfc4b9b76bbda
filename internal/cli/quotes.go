package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aryankumar/concur/internal/config"
	"github.com/aryankumar/concur/internal/output"
	"github.com/aryankumar/concur/internal/scraper"
)

func newQuotesCmd(opts *options) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Count quotes per character",
		Example: `  # Fetch 20 quotes and count them by author
  concur quotes -n 20

  # Every quote as JSON
  concur quotes -n 50 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			client := scraper.NewClient(scraper.Config{
				QuotesURL: cfg.IO.QuotesURL,
				Timeout:   cfg.IO.HTTPTimeout,
			}, opts.logger)

			ctx, cancel := withTimeout(cmd.Context(), cfg.Defaults.Timeout)
			defer cancel()

			quotes, err := client.Quotes(ctx, count)
			if err != nil {
				return fmt.Errorf("failed to fetch quotes: %w", err)
			}

			format := output.ParseFormat(cfg.Defaults.OutputFormat)
			formatter := output.NewFormatter(format, output.WithNoColor(cfg.Defaults.NoColor))
			if format != output.FormatTable {
				return formatter.Format(cmd.OutOrStdout(), quotes)
			}

			rows := output.Rows{Headers: []string{"AUTHOR", "QUOTES"}}
			for _, author := range scraper.Authors(quotes) {
				rows.Rows = append(rows.Rows, []string{author, strconv.Itoa(len(quotes[author]))})
			}
			return formatter.Format(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().IntVarP(&count, "number", "n", 10, "number of quotes to fetch")
	cmd.Flags().String("quotes-url", config.DefaultQuotesURL, "quotes API base URL")

	return cmd
}
