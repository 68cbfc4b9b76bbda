package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type paint func(format string, a ...interface{}) string

// ColorScheme holds the painters used by the run table
type ColorScheme struct {
	Name     paint
	Success  paint
	Error    paint
	Header   paint
	Duration paint

	// Slow marks a speed-up below 1x
	Slow paint

	// Disabled is set when output is not a terminal or --no-color was given
	Disabled bool
}

// NewColorScheme returns a scheme for w. Non-terminal writers get plain text.
func NewColorScheme(w io.Writer, noColor bool) *ColorScheme {
	if noColor || !isTTY(w) {
		plain := color.New()
		plain.DisableColor()
		p := plain.Sprintf
		return &ColorScheme{Name: p, Success: p, Error: p, Header: p, Duration: p, Slow: p, Disabled: true}
	}

	return &ColorScheme{
		Name:     color.New(color.FgCyan, color.Bold).Sprintf,
		Success:  color.New(color.FgGreen).Sprintf,
		Error:    color.New(color.FgRed, color.Bold).Sprintf,
		Header:   color.New(color.FgWhite, color.Bold).Sprintf,
		Duration: color.New(color.FgBlue).Sprintf,
		Slow:     color.New(color.FgYellow).Sprintf,
	}
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// StatusColor picks Error for failed runs and Success otherwise
func (cs *ColorScheme) StatusColor(failed bool) paint {
	if failed {
		return cs.Error
	}
	return cs.Success
}

// Speedup renders a ratio like "4.00x", flagging ratios below 1 as slow
func (cs *ColorScheme) Speedup(x float64) string {
	s := fmt.Sprintf("%.2fx", x)
	if x < 1 {
		return cs.Slow("%s", s)
	}
	return cs.Success("%s", s)
}
