package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/varcop/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders the file parsing progress bar with a percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}

	barColor := t.Bar
	if pct >= 0.5 {
		barColor = t.Accent
	}
	if pct >= 0.8 {
		barColor = t.AccentBright
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))

	return b.String() + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// ShareBar renders a 0-1 share of the total delta as a solid bar followed
// by the percentage. Material rows use the flag color.
func ShareBar(share float64, width int, material bool) string {
	t := theme.Active
	share = clamp01(share)
	if width < 4 {
		width = 4
	}

	color := t.Bar
	if material {
		color = t.Flag
	}

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.Border)

	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(share) + spaceStyle.Render(" ") + pctStyle.Render(fmt.Sprintf("%5.1f%%", share*100))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
