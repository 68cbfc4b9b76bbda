package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aryankumar/concur/internal/strategy"
)

// JSONFormatter writes indented JSON. HTML escaping is off so quotes and
// page summaries stay readable.
type JSONFormatter struct {
	options *Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(opts *Options) *JSONFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &JSONFormatter{options: opts}
}

// Format encodes data as JSON
func (f *JSONFormatter) Format(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// FormatRuns encodes the comparison of reports
func (f *JSONFormatter) FormatRuns(w io.Writer, reports []strategy.Report) error {
	return f.Format(w, Compare(reports))
}

// YAMLFormatter writes YAML with two-space indentation
type YAMLFormatter struct {
	options *Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(opts *Options) *YAMLFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &YAMLFormatter{options: opts}
}

// Format encodes data as YAML. Close flushes the encoder, so its error counts.
func (f *YAMLFormatter) Format(w io.Writer, data interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// FormatRuns encodes the comparison of reports
func (f *YAMLFormatter) FormatRuns(w io.Writer, reports []strategy.Report) error {
	return f.Format(w, Compare(reports))
}
