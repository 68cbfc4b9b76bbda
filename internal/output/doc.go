// Package output renders strategy runs for the terminal and for scripts.
//
// Three formats are supported: a borderless kubectl-style table, indented
// JSON and YAML. Every formatter implements FormatRuns, which lays several
// strategy reports side by side. The table adds a summary naming the
// fastest completed run and each run's speed-up over the sequential one;
// JSON and YAML emit the same data as a Comparison.
//
//	formatter := output.NewFormatter(
//	    output.FormatTable,
//	    output.WithNoColor(true),
//	    output.WithWide(true),
//	)
//	formatter.FormatRuns(os.Stdout, reports)
//
// Colors are used only when the writer is a terminal and WithNoColor is not
// set. Failed runs never count as the fastest.
package output
