package components

import (
	"strings"

	"github.com/theirongolddev/varcop/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// the given info segments on the right.
func RenderStatusBar(width int, info ...string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [?]help  [a]ll  [d]imension  [r]eload  [q]uit"
	right := ""
	if len(info) > 0 {
		right = strings.Join(info, " │ ") + " "
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		// Hints give way to the info segments on narrow terminals.
		left = " [?]help"
		padding = width - lipgloss.Width(left) - lipgloss.Width(right)
	}
	if padding < 0 {
		padding = 0
	}

	return style.Render(left + strings.Repeat(" ", padding) + right)
}
