package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	prefixStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	pendingStyle = lipgloss.NewStyle().Faint(true)
)

// HighlightID returns an ID with its unique prefix highlighted.
func HighlightID(id string, prefixLen int) string {
	if id == "" || prefixLen <= 0 || prefixLen > len(id) {
		return id
	}
	if !ansiEnabled() {
		return id
	}
	return prefixStyle.Render(id[:prefixLen]) + id[prefixLen:]
}

// Checkbox renders a todo's completion state.
func Checkbox(complete bool) string {
	if complete {
		return "[x]"
	}
	return "[ ]"
}

// Muted dims text when the terminal supports it.
func Muted(value string) string {
	if value == "" || !ansiEnabled() {
		return value
	}
	return pendingStyle.Render(value)
}

// ansiEnabled honors NO_COLOR, CLICOLOR_FORCE and TERM=dumb, and is false
// when stdout is not a terminal.
func ansiEnabled() bool {
	return termenv.NewOutput(os.Stdout).EnvColorProfile() != termenv.Ascii
}
