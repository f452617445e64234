package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/varcop/internal/model"
	"github.com/theirongolddev/varcop/internal/pipeline"
	"github.com/theirongolddev/varcop/internal/tui/components"
	"github.com/theirongolddev/varcop/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// dimensionTopN caps the rows of the whole-book dimension breakdown.
const dimensionTopN = 40

// dimensionSummary is the whole-book breakdown by the active dimension.
type dimensionSummary struct {
	dimension string
	rows      []model.DriverRow
	err       error
}

func (a *App) refreshDimensionSummary() {
	a.dimSum = dimensionSummary{dimension: a.dimension()}
	if a.data == nil || a.dimSum.dimension == "" {
		return
	}
	a.dimSum.rows, a.dimSum.err = pipeline.DimensionSummary(a.data.Prior, a.data.Current, a.dimSum.dimension)
}

func (a App) renderDimensionsTab(cw int) string {
	t := theme.Active
	s := a.dimSum

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	if s.dimension == "" {
		return components.ContentCard("Dimensions",
			mutedStyle.Render("Neither period shares a dimension column. Map one with --dimensions."), cw)
	}
	if s.err != nil {
		return components.ContentCard("By "+s.dimension, mutedStyle.Render(s.err.Error()), cw)
	}

	innerW := components.CardInnerWidth(cw)
	rows := s.rows
	hidden := 0
	if len(rows) > dimensionTopN {
		hidden = len(rows) - dimensionTopN
		rows = rows[:dimensionTopN]
	}

	var b strings.Builder
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d values · other dimensions: %s · [d] next",
		len(s.rows), strings.Join(a.otherDimensions(), ", "))))
	b.WriteString("\n\n")

	const numW = 13
	nameW := innerW - 3*(numW+1) - 20
	if nameW < 8 {
		nameW = 8
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %*s %*s %*s  %s",
		nameW, "Value", numW, "Prior", numW, "Current", numW, "Delta", "Share")))
	b.WriteString("\n")
	b.WriteString(renderDriverRows(rows, innerW, true))
	if hidden > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d smaller values not shown", hidden)))
	}

	return components.ContentCard("Whole book by "+s.dimension, strings.TrimRight(b.String(), "\n"), cw)
}

func (a App) otherDimensions() []string {
	out := []string{}
	for i, d := range a.dims {
		if i != a.dimIdx {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return []string{"none"}
	}
	return out
}
