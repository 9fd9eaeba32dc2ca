// Package output renders herd's user-facing text. Warnings and errors
// are single prefixed lines; stack traces never reach normal output.
package output

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/termenv"
)

var (
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	faintStyle = lipgloss.NewStyle().Faint(true)

	statusColors = map[string]lipgloss.Color{
		"running": lipgloss.Color("10"),
		"idle":    lipgloss.Color("11"),
		"exited":  lipgloss.Color("9"),
	}
)

func init() {
	if os.Getenv("HERD_NO_COLOR") != "" || termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// Warnf prints a single-line warning to stderr.
func Warnf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, warnStyle.Render("warning: ")+fmt.Sprintf(format, args...))
}

// Errorf prints a single-line error to stderr.
func Errorf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, errStyle.Render("error: ")+fmt.Sprintf(format, args...))
}

// Successf prints a checked status line to stdout.
func Successf(format string, args ...any) {
	fmt.Printf("✓ "+format+"\n", args...)
}

// StatusLine renders one agent's status line:
//
//	<colored-dot> <id>  (<status>)
//
// The dot carries the status color; the format is covered by snapshot
// tests and must not drift.
func StatusLine(id, status string) string {
	color, ok := statusColors[status]
	if !ok {
		color = lipgloss.Color("7")
	}
	dot := lipgloss.NewStyle().Foreground(color).Render("●")
	return fmt.Sprintf("%s %s  (%s)", dot, id, status)
}

// PathLine renders the indented workspace path line printed under a
// status line.
func PathLine(path string) string {
	return indent.String(faintStyle.Render(path), 2)
}

// Truncate shortens s to max display cells, appending … when cut.
// Width-aware so wide runes don't break column alignment.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	return runewidth.Truncate(s, max, "…")
}
