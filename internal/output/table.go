package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/aryankumar/concur/internal/strategy"
)

// Rows is tabular data with a fixed column order
type Rows struct {
	Headers []string
	Rows    [][]string
}

// TableFormatter formats output as a table (kubectl-style)
type TableFormatter struct {
	options *Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(opts *Options) *TableFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &TableFormatter{
		options: opts,
	}
}

// Format outputs a single data item as a table
func (f *TableFormatter) Format(w io.Writer, data interface{}) error {
	table := f.createTable(w)

	switch v := data.(type) {
	case Rows:
		return f.formatRows(table, v)
	case map[string]interface{}:
		return f.formatMap(table, v)
	case []map[string]interface{}:
		return f.formatMapSlice(table, v)
	default:
		fmt.Fprintln(w, v)
		return nil
	}
}

// FormatRuns outputs one row per strategy run followed by a comparison summary
func (f *TableFormatter) FormatRuns(w io.Writer, reports []strategy.Report) error {
	if len(reports) == 0 {
		fmt.Fprintln(w, "No runs")
		return nil
	}

	colors := NewColorScheme(w, f.options.NoColor)
	table := f.createTable(w)

	headers := []string{"STRATEGY", "WORKLOAD", "ITEMS", "WORKERS", "STATUS", "DURATION", "P50", "P99"}
	if f.options.Wide {
		headers = append(headers, "ERROR")
	}
	f.setHeaders(table, headers, colors)

	for _, r := range reports {
		table.Append(f.formatRunRow(r, colors))
	}

	table.Render()

	f.printSummary(w, reports, colors)
	return nil
}

// formatRunRow formats a single report as a table row
func (f *TableFormatter) formatRunRow(r strategy.Report, colors *ColorScheme) []string {
	failed := r.Status != strategy.Completed

	row := []string{
		colors.Name("%s", r.Strategy),
		r.Workload,
		strconv.Itoa(r.Items),
		strconv.Itoa(r.Workers),
		colors.StatusColor(failed)("%s", r.Status),
		colors.Duration("%s", roundDuration(r.Duration)),
		roundDuration(r.Latency.P50).String(),
		roundDuration(r.Latency.P99).String(),
	}

	if f.options.Wide {
		errStr := r.Error
		if len(errStr) > 60 {
			errStr = errStr[:57] + "..."
		}
		row = append(row, errStr)
	}

	return row
}

// printSummary names the fastest run and each run's speed-up against sequential
func (f *TableFormatter) printSummary(w io.Writer, reports []strategy.Report, colors *ColorScheme) {
	completed := 0
	for _, r := range reports {
		if r.Status == strategy.Completed {
			completed++
		}
	}
	failed := len(reports) - completed

	fmt.Fprintln(w, "")

	failedText := fmt.Sprintf("%d failed", failed)
	if failed > 0 {
		failedText = colors.Error("%s", failedText)
	}
	fmt.Fprintf(w, "Summary: %s, %s\n", colors.Success("%d completed", completed), failedText)

	cmp := Compare(reports)
	if cmp.Fastest != "" {
		for _, r := range reports {
			if r.Strategy == cmp.Fastest {
				fmt.Fprintf(w, "Fastest: %s (%s)\n", colors.Name("%s", r.Strategy), colors.Duration("%s", roundDuration(r.Duration)))
				break
			}
		}
	}

	if len(cmp.Speedup) > 1 {
		parts := make([]string, 0, len(cmp.Speedup))
		for _, r := range reports {
			s, ok := cmp.Speedup[r.Strategy]
			if !ok || r.Strategy == strategy.Sequential {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s %s", r.Strategy, colors.Speedup(s)))
		}
		fmt.Fprintf(w, "Speed-up vs sequential: %s\n", strings.Join(parts, ", "))
	}
}

func (f *TableFormatter) setHeaders(table *tablewriter.Table, headers []string, colors *ColorScheme) {
	if f.options.NoHeaders {
		return
	}
	if colors.Disabled {
		table.SetHeader(headers)
		return
	}
	colored := make([]string, len(headers))
	for i, h := range headers {
		colored[i] = colors.Header("%s", h)
	}
	table.SetHeader(colored)
}

// formatRows formats Rows in their given column order
func (f *TableFormatter) formatRows(table *tablewriter.Table, data Rows) error {
	if !f.options.NoHeaders && len(data.Headers) > 0 {
		table.SetHeader(data.Headers)
	}
	table.AppendBulk(data.Rows)
	table.Render()
	return nil
}

// formatMap formats a map as a two-column table sorted by key
func (f *TableFormatter) formatMap(table *tablewriter.Table, data map[string]interface{}) error {
	if !f.options.NoHeaders {
		table.SetHeader([]string{"KEY", "VALUE"})
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		table.Append([]string{k, fmt.Sprintf("%v", data[k])})
	}

	table.Render()
	return nil
}

// formatMapSlice formats a slice of maps as a table with sorted columns
func (f *TableFormatter) formatMapSlice(table *tablewriter.Table, data []map[string]interface{}) error {
	if len(data) == 0 {
		return nil
	}

	keys := make([]string, 0, len(data[0]))
	for k := range data[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if !f.options.NoHeaders {
		headers := make([]string, len(keys))
		for i, k := range keys {
			headers[i] = strings.ToUpper(k)
		}
		table.SetHeader(headers)
	}

	for _, item := range data {
		row := make([]string, len(keys))
		for i, k := range keys {
			row[i] = fmt.Sprintf("%v", item[k])
		}
		table.Append(row)
	}

	table.Render()
	return nil
}

// createTable creates a new table with kubectl-style configuration
func (f *TableFormatter) createTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	return table
}

// roundDuration keeps three significant digits or so for display
func roundDuration(d time.Duration) time.Duration {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond)
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond)
	default:
		return d.Round(time.Microsecond)
	}
}
