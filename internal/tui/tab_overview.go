package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/varcop/internal/cli"
	"github.com/theirongolddev/varcop/internal/pipeline"
	"github.com/theirongolddev/varcop/internal/tui/components"
	"github.com/theirongolddev/varcop/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// overviewTopN is how many of the largest changes the overview lists.
const overviewTopN = 12

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	an := a.analysis
	if an == nil {
		return ""
	}

	delta := an.CurrentTotal - an.PriorTotal
	pct := "n/a"
	if an.PriorTotal != 0 {
		pct = fmt.Sprintf("%+.1f%%", delta/math.Abs(an.PriorTotal)*100)
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Prior total", Value: cli.FormatWhole(an.PriorTotal), Note: a.periodNote(pipeline.PeriodPrior)},
		{Label: "Current total", Value: cli.FormatWhole(an.CurrentTotal), Note: a.periodNote(pipeline.PeriodCurrent)},
		{Label: "Delta", Value: cli.FormatSignedWhole(delta), Note: pct, Color: t.DeltaColor(delta)},
		{Label: "Material", Value: fmt.Sprintf("%d / %d", len(an.Material), len(an.Variances)), Note: "accounts", Color: t.Flag},
	}, cw))
	b.WriteString("\n")

	leftW := cw * 3 / 5
	if a.isCompactLayout() {
		leftW = cw
	}
	rightW := cw - leftW

	changes := components.ContentCard("Largest changes", a.renderLargestChanges(components.CardInnerWidth(leftW)), leftW)
	if rightW < 30 {
		b.WriteString(changes)
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Materiality", a.renderThresholds(), cw))
		return b.String()
	}
	b.WriteString(components.CardRow([]string{
		changes,
		components.ContentCard("Materiality", a.renderThresholds(), rightW),
	}))
	return b.String()
}

func (a App) periodNote(p pipeline.Period) string {
	files, rows := 0, 0
	for _, f := range a.data.Files {
		if f.Period == p {
			files++
			rows += f.Postings
		}
	}
	return fmt.Sprintf("%s postings, %d files", cli.FormatNumber(int64(rows)), files)
}

func (a App) renderLargestChanges(w int) string {
	t := theme.Active
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	flagStyle := lipgloss.NewStyle().Foreground(t.Flag).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	rows := a.analysis.Variances
	if len(rows) > overviewTopN {
		rows = rows[:overviewTopN]
	}
	if len(rows) == 0 {
		return mutedStyle.Render("No postings in either period.")
	}

	const deltaW, barW = 13, 10
	nameW := w - 2 - deltaW - 1 - barW - 8
	if nameW < 10 {
		nameW = 10
	}

	var b strings.Builder
	for i, r := range rows {
		material := a.analysis.Rules(r) != 0
		marker := "  "
		if material {
			marker = "● "
		}
		deltaStyle := lipgloss.NewStyle().Foreground(t.DeltaColor(r.Delta)).Background(t.Surface)

		b.WriteString(flagStyle.Render(marker))
		b.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(accountTitle(r), nameW))))
		b.WriteString(deltaStyle.Render(fmt.Sprintf(" %*s ", deltaW, cli.FormatSignedWhole(r.Delta))))
		b.WriteString(components.ShareBar(r.ShareOfTotalAbsDelta, barW, material))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a App) renderThresholds() string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	m := a.cfg.Materiality
	lines := []struct{ label, value string }{
		{"abs   |delta| >=", thresholdText(m.MinAbsDelta)},
		{"pct   |delta %| >=", thresholdText(m.MinPctDelta)},
		{"      |prior| >=", thresholdText(m.MinBase)},
		{"share of total >=", thresholdText(m.MinShareTotal)},
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-19s", l.label)))
		b.WriteString(valueStyle.Render(l.value))
		b.WriteString("\n")
	}
	if a.data.Dropped > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(t.Flag).Background(t.Surface).
			Render(fmt.Sprintf("%s malformed rows dropped", cli.FormatNumber(int64(a.data.Dropped)))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Edit on the Settings tab [4]"))
	return b.String()
}
