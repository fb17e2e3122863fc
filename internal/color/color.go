// Package color provides color detection and theming for CLI output.
package color

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Profile reports whether color output should be enabled.
//
// Color is disabled when any of:
//   - NO_COLOR env is set (any value, per https://no-color.org)
//   - CLICOLOR=0
//   - TERM=dumb
//   - noColorFlag is true (--no-color CLI flag or output.color = false)
func Profile(noColorFlag bool) bool {
	if noColorFlag {
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	if os.Getenv("CLICOLOR") == "0" {
		return false
	}

	return os.Getenv("TERM") != "dumb"
}

// IsTerminal returns true if the given file is a character device.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return (info.Mode() & os.ModeCharDevice) != 0
}

// Theme holds lipgloss styles for updater output.
type Theme struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Header  lipgloss.Style
	Version lipgloss.Style
	Muted   lipgloss.Style
}

// NewTheme creates a Theme. When color is false, all styles are empty (no ANSI codes).
func NewTheme(color bool) Theme {
	if !color {
		return Theme{}
	}

	return Theme{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")), // bright green
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")), // bright yellow
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")), // bright blue
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Version: lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Status prefixes msg with a marker styled for its severity.
func (t Theme) Status(level, msg string) string {
	switch level {
	case "ok":
		return t.Success.Render("✓") + " " + msg
	case "warn":
		return t.Warning.Render("!") + " " + msg
	case "error":
		return t.Error.Render("✗") + " " + msg
	default:
		return t.Info.Render("•") + " " + msg
	}
}
