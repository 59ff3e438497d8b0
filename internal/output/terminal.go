// Package output holds terminal helpers shared by the reporters and the CLI:
// color detection, terminal width, and plain text tables.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 100

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// StdinIsTerminal reports whether stdin is interactive, i.e. nothing was piped in.
func StdinIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// Width returns the column count of w, or fallback when w is not a
// terminal or its size is unknown.
func Width(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok || !IsTerminal(w) {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// ColorProfile resolves a color mode ("auto", "always" or "never") for w.
// Auto means color only on a terminal whose environment supports it.
func ColorProfile(mode string, w io.Writer) termenv.Profile {
	switch mode {
	case "never":
		return termenv.Ascii
	case "always":
		if p := termenv.EnvColorProfile(); p != termenv.Ascii {
			return p
		}
		return termenv.ANSI256
	}
	if !IsTerminal(w) {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}

// NewRenderer returns a lipgloss renderer for w with the color profile that
// mode selects.
func NewRenderer(w io.Writer, mode string) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(ColorProfile(mode, w))
	return r
}
