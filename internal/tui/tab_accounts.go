package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/varcop/internal/cli"
	"github.com/theirongolddev/varcop/internal/keywords"
	"github.com/theirongolddev/varcop/internal/model"
	"github.com/theirongolddev/varcop/internal/pipeline"
	"github.com/theirongolddev/varcop/internal/prompt"
	"github.com/theirongolddev/varcop/internal/tui/components"
	"github.com/theirongolddev/varcop/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Accounts view modes. Split is the zero value so it's the default.
const (
	acctViewSplit  = iota // list + detail side by side
	acctViewDetail        // full-screen detail
)

// accountsState holds the accounts tab state.
type accountsState struct {
	cursor       int
	offset       int // scroll offset for the list
	detailScroll int
	viewMode     int
}

// accountDetail is the drill-down of the selected account.
type accountDetail struct {
	account   string
	dimension string
	rules     pipeline.Rule
	drivers   []model.DriverRow
	samples   []model.SampleRow
	keywords  []keywords.Count
	oneOff    prompt.OneOff
	err       error
}

// refreshDetail recomputes the drill-down for the account under the cursor.
func (a *App) refreshDetail() {
	a.detail = accountDetail{}
	if a.data == nil || a.acct.cursor >= len(a.rows) {
		return
	}
	row := a.rows[a.acct.cursor]
	an := a.cfg.Analysis

	d := accountDetail{
		account:   row.Account,
		dimension: a.dimension(),
		rules:     a.analysis.Rules(row),
		samples:   pipeline.SamplesForAccount(a.data.Current, row.Account, an.TopSamples),
		keywords:  keywords.ForAccountBoth(a.data.Prior, a.data.Current, row.Account, an.TopKeywords),
	}
	if d.dimension != "" {
		d.drivers, d.err = pipeline.DriversForAccount(a.data.Prior, a.data.Current, row.Account, d.dimension, an.TopDrivers)
	}
	d.oneOff = prompt.OneOffIndicators(d.samples, row.Delta)
	a.detail = d
}

// updateAccountsKey handles accounts tab keys. ok is false for keys the tab
// does not use.
func (a App) updateAccountsKey(key string) (m tea.Model, cmd tea.Cmd, ok bool) {
	moveTo := func(i int) {
		if i >= len(a.rows) {
			i = len(a.rows) - 1
		}
		if i < 0 {
			i = 0
		}
		if i != a.acct.cursor {
			a.acct.cursor = i
			a.acct.detailScroll = 0
			a.refreshDetail()
		}
	}
	halfPage := (a.height - scrollOverhead) / 2
	if halfPage < minHalfPageScroll {
		halfPage = minHalfPageScroll
	}

	switch key {
	case "j", "down":
		moveTo(a.acct.cursor + 1)
	case "k", "up":
		moveTo(a.acct.cursor - 1)
	case "g":
		moveTo(0)
		a.acct.offset = 0
	case "G":
		moveTo(len(a.rows) - 1)
	case "J":
		a.acct.detailScroll++
	case "K":
		if a.acct.detailScroll > 0 {
			a.acct.detailScroll--
		}
	case "ctrl+d":
		a.acct.detailScroll += halfPage
	case "ctrl+u":
		a.acct.detailScroll -= halfPage
		if a.acct.detailScroll < 0 {
			a.acct.detailScroll = 0
		}
	case "enter", "f":
		if a.acct.viewMode == acctViewSplit {
			a.acct.viewMode = acctViewDetail
		}
	case "esc":
		a.acct.viewMode = acctViewSplit
	case "q":
		if a.acct.viewMode != acctViewDetail {
			return a, nil, false
		}
		a.acct.viewMode = acctViewSplit
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderAccountsTab(cw, h int) string {
	t := theme.Active

	if len(a.rows) == 0 {
		msg := "No account crosses a materiality threshold. Press a to list every account."
		if a.showAll {
			msg = "No postings in either period."
		}
		return components.ContentCard("Accounts",
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(msg), cw)
	}

	if a.acct.viewMode == acctViewDetail {
		row := a.rows[a.acct.cursor]
		body := scrollLines(a.renderDetailBody(row, components.CardInnerWidth(cw)), a.acct.detailScroll)
		return components.ContentCard(accountTitle(row), body, cw)
	}

	leftW := cw * 2 / 5
	if a.isCompactLayout() {
		leftW = cw / 2
	}
	if leftW < 36 {
		leftW = 36
	}
	rightW := cw - leftW

	leftCard := components.ContentCard(a.listTitle(), a.renderAccountList(components.CardInnerWidth(leftW), h), leftW)

	row := a.rows[a.acct.cursor]
	rightBody := scrollLines(a.renderDetailBody(row, components.CardInnerWidth(rightW)), a.acct.detailScroll)
	rightCard := components.ContentCard(accountTitle(row), rightBody, rightW)

	return components.CardRow([]string{leftCard, rightCard})
}

func (a App) listTitle() string {
	if a.showAll {
		return fmt.Sprintf("All accounts [%d]", len(a.rows))
	}
	return fmt.Sprintf("Material accounts [%d]", len(a.rows))
}

func (a App) renderAccountList(innerW, h int) string {
	t := theme.Active

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	flagStyle := lipgloss.NewStyle().Foreground(t.Flag).Background(t.Surface)
	selectedFlagStyle := flagStyle.Background(t.SurfaceBright)

	visible := h - 4 // card border (2) + title (1) + slack (1)
	if visible < 5 {
		visible = 5
	}

	offset := a.acct.offset
	if a.acct.cursor < offset {
		offset = a.acct.cursor
	}
	if a.acct.cursor >= offset+visible {
		offset = a.acct.cursor - visible + 1
	}
	end := offset + visible
	if end > len(a.rows) {
		end = len(a.rows)
	}

	const deltaW = 13
	nameW := innerW - 2 - deltaW - 1
	if nameW < 8 {
		nameW = 8
	}

	var b strings.Builder
	for i := offset; i < end; i++ {
		r := a.rows[i]
		marker := "  "
		if a.showAll && a.analysis.Rules(r) != 0 {
			marker = "● "
		}
		label := truncStr(accountTitle(r), nameW)
		delta := fmt.Sprintf(" %*s", deltaW, cli.FormatSignedWhole(r.Delta))
		deltaStyle := lipgloss.NewStyle().Foreground(t.DeltaColor(r.Delta)).Background(t.Surface)

		ms, ls := flagStyle, rowStyle
		if i == a.acct.cursor {
			ms, ls = selectedFlagStyle, selectedStyle
			deltaStyle = deltaStyle.Background(t.SurfaceBright)
		}
		b.WriteString(ms.Render(marker))
		b.WriteString(ls.Render(fmt.Sprintf("%-*s", nameW, label)))
		b.WriteString(deltaStyle.Render(delta))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderDetailBody renders the full drill-down of one account.
// Used by both the split right pane and the full-screen detail view.
func (a App) renderDetailBody(row model.AccountVariance, w int) string {
	t := theme.Active
	d := a.detail

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	deltaStyle := lipgloss.NewStyle().Foreground(t.DeltaColor(row.Delta)).Background(t.Surface).Bold(true)
	flagStyle := lipgloss.NewStyle().Foreground(t.Flag).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	kv := func(label, value string, style lipgloss.Style) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", label)))
		b.WriteString(style.Render(value))
		b.WriteString("\n")
	}

	kv("Prior", cli.FormatAmount(row.Prior), valueStyle)
	kv("Current", cli.FormatAmount(row.Current), valueStyle)
	kv("Delta", cli.FormatSignedAmount(row.Delta)+"  ("+cli.FormatDeltaPct(row.DeltaPct)+")", deltaStyle)
	kv("Share", cli.FormatPercent(row.ShareOfTotalAbsDelta)+" of total change", valueStyle)
	if d.rules != 0 {
		kv("Material", d.rules.String(), flagStyle)
	} else {
		kv("Material", "no", dimStyle)
	}
	if d.oneOff.Top1Share > 0 {
		one := fmt.Sprintf("largest posting %s, top 5 %s",
			cli.FormatPercent(d.oneOff.Top1Share), cli.FormatPercent(d.oneOff.Top5Share))
		if d.oneOff.Top1Doc != "" {
			one += " (doc " + d.oneOff.Top1Doc + ")"
		}
		kv("One-off", one, valueStyle)
	}

	// Drivers
	b.WriteString("\n")
	switch {
	case d.dimension == "":
		b.WriteString(headerStyle.Render("Drivers"))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("No dimension column in both periods."))
		b.WriteString("\n")
	case d.err != nil:
		b.WriteString(headerStyle.Render("Drivers by " + d.dimension))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(d.err.Error()))
		b.WriteString("\n")
	default:
		b.WriteString(headerStyle.Render("Drivers by " + d.dimension))
		b.WriteString(dimStyle.Render("  [d] next"))
		b.WriteString("\n")
		if len(d.drivers) == 0 {
			b.WriteString(dimStyle.Render("No values for this account."))
			b.WriteString("\n")
		}
		b.WriteString(renderDriverRows(d.drivers, w, false))
	}

	// Samples
	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Largest postings"))
	b.WriteString("\n")
	if len(d.samples) == 0 {
		b.WriteString(dimStyle.Render("No current-period postings."))
		b.WriteString("\n")
	}
	for _, s := range d.samples {
		line := fmt.Sprintf("%-10s %-10s %14s  ",
			cli.FormatDate(s.PostingDate), truncStr(deref(s.DocumentNo), 10), cli.FormatAmount(s.Amount))
		textW := w - lipgloss.Width(line)
		if textW < 0 {
			textW = 0
		}
		b.WriteString(valueStyle.Render(line))
		b.WriteString(labelStyle.Render(truncStr(deref(s.Text), textW)))
		b.WriteString("\n")
	}

	// Keywords
	if len(d.keywords) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Keywords"))
		b.WriteString("\n")
		words := make([]string, len(d.keywords))
		for i, k := range d.keywords {
			words[i] = fmt.Sprintf("%s (%d)", k.Word, k.Count)
		}
		b.WriteString(valueStyle.Width(w).Render(strings.Join(words, " · ")))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// renderDriverRows renders value, delta and share bar columns.
func renderDriverRows(rows []model.DriverRow, w int, withTotals bool) string {
	t := theme.Active
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	const numW = 13
	barW := 12
	fixed := numW + 1 + barW + 8
	if withTotals {
		fixed += 2 * (numW + 1)
	}
	nameW := w - fixed
	if nameW < 8 {
		nameW = 8
	}

	var b strings.Builder
	for _, r := range rows {
		deltaStyle := lipgloss.NewStyle().Foreground(t.DeltaColor(r.Delta)).Background(t.Surface)
		b.WriteString(valueStyle.Render(fmt.Sprintf("%-*s", nameW, truncStr(r.Value, nameW))))
		if withTotals {
			b.WriteString(mutedStyle.Render(fmt.Sprintf(" %*s %*s", numW, cli.FormatWhole(r.Prior), numW, cli.FormatWhole(r.Current))))
		}
		b.WriteString(deltaStyle.Render(fmt.Sprintf(" %*s ", numW, cli.FormatSignedWhole(r.Delta))))
		b.WriteString(components.ShareBar(r.Share, barW, false))
		b.WriteString("\n")
	}
	return b.String()
}

func accountTitle(r model.AccountVariance) string {
	if r.AccountName == "" {
		return r.Account
	}
	return r.Account + " " + r.AccountName
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// scrollLines drops the first n lines, keeping at least the last one.
func scrollLines(s string, n int) string {
	if n <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if n >= len(lines) {
		n = len(lines) - 1
	}
	return strings.Join(lines[n:], "\n")
}
