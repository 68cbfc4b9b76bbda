package output

import (
	"io"
	"slices"

	"github.com/aryankumar/concur/internal/strategy"
)

// Format names an output encoding
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists every accepted -o value
var Formats = []Format{FormatTable, FormatJSON, FormatYAML}

// IsFormat reports whether s names a known format
func IsFormat(s string) bool {
	return slices.Contains(Formats, Format(s))
}

// ParseFormat maps a flag value to a Format. Unknown and empty values mean table.
func ParseFormat(s string) Format {
	if IsFormat(s) {
		return Format(s)
	}
	return FormatTable
}

// Formatter renders command output
type Formatter interface {
	// Format writes a single value
	Format(w io.Writer, data interface{}) error

	// FormatRuns writes strategy reports side by side, with the fastest run
	// and each run's speed-up against sequential
	FormatRuns(w io.Writer, reports []strategy.Report) error
}

// Options tune the table renderer. JSON and YAML ignore them.
type Options struct {
	NoColor   bool
	NoHeaders bool

	// Wide adds the error column to run tables
	Wide bool
}

// Option sets a field of Options
type Option func(*Options)

func WithNoColor(noColor bool) Option {
	return func(o *Options) { o.NoColor = noColor }
}

func WithNoHeaders(noHeaders bool) Option {
	return func(o *Options) { o.NoHeaders = noHeaders }
}

func WithWide(wide bool) Option {
	return func(o *Options) { o.Wide = wide }
}

// NewFormatter returns the formatter for format, falling back to table
func NewFormatter(format Format, opts ...Option) Formatter {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	switch format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	default:
		return NewTableFormatter(options)
	}
}
