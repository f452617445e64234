package components

import (
	"strings"

	"github.com/theirongolddev/varcop/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab is a single dashboard tab.
type Tab struct {
	Name string
	Key  rune
}

// Tabs defines the dashboard tabs in display order.
var Tabs = []Tab{
	{Name: "Overview", Key: '1'},
	{Name: "Accounts", Key: '2'},
	{Name: "Dimensions", Key: '3'},
	{Name: "Settings", Key: '4'},
}

// tabLabel is the plain text of a tab, e.g. "1 Overview".
func tabLabel(tab Tab) string {
	return string(tab.Key) + " " + tab.Name
}

// TabVisualWidth returns the rendered width of a tab, padding included.
// Mouse hit testing depends on it matching RenderTabBar.
func TabVisualWidth(tab Tab) int {
	return lipgloss.Width(tabLabel(tab)) + 2
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceBright).
		Bold(true).
		Padding(0, 1)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, 1)

	sepStyle := lipgloss.NewStyle().Background(t.Surface)

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts[i] = activeStyle.Render(tabLabel(tab))
		} else {
			parts[i] = inactiveStyle.Render(tabLabel(tab))
		}
	}

	row := strings.Join(parts, sepStyle.Render(" "))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
