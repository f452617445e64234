package cli

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	gainStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	lossStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table is a bordered text table for CLI output. Columns whose body cells
// are all numeric are right-aligned, everything else is left-aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string // a row of just "---" draws a rule
	Footer  []string   // optional totals row below a rule
	Widths  []int      // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

func isRule(row []string) bool {
	return len(row) == 1 && row[0] == "---"
}

// numericCell reports whether s reads as an amount, count or percentage.
// Placeholders like "-" and "n/a" count as numeric so they don't break a
// column's alignment.
func numericCell(s string) bool {
	switch s {
	case "", "-", "n/a", "off":
		return true
	}
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune("+-.,%' ", r):
		default:
			return false
		}
	}
	return digits > 0
}

// cellStyle colors signed amounts in numeric columns.
func cellStyle(cell string, numeric bool) lipgloss.Style {
	if !numeric || len(cell) < 2 || cell[1] < '0' || cell[1] > '9' {
		return valueStyle
	}
	switch cell[0] {
	case '+':
		return gainStyle
	case '-':
		return lossStyle
	}
	return valueStyle
}

// RenderTable renders a bordered table with headers, rows and an optional
// footer.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 {
		for _, row := range t.Rows {
			if !isRule(row) {
				numCols = len(row)
				break
			}
		}
	}

	widths := make([]int, numCols)
	numeric := make([]bool, numCols)
	for i := range numeric {
		numeric[i] = i > 0
	}
	measure := func(row []string) {
		for i, cell := range row {
			if i >= numCols {
				break
			}
			if n := utf8.RuneCountInString(cell); t.Widths == nil && n > widths[i] {
				widths[i] = n
			}
		}
	}
	if t.Widths != nil {
		copy(widths, t.Widths)
	}
	measure(t.Headers)
	measure(t.Footer)
	for _, row := range t.Rows {
		if isRule(row) {
			continue
		}
		measure(row)
		for i, cell := range row {
			if i < numCols && !numericCell(cell) {
				numeric[i] = false
			}
		}
	}

	var b strings.Builder
	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}
	line := func(row []string, style func(cell string, col int) lipgloss.Style) {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = Truncate(row[i], widths[i])
			}
			format := " %-*s "
			if numeric[i] {
				format = " %*s "
			}
			b.WriteString(style(cell, i).Render(fmt.Sprintf(format, widths[i], cell)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		line(t.Headers, func(string, int) lipgloss.Style { return headerStyle })
		rule("├", "┼", "┤")
	}
	for _, row := range t.Rows {
		if isRule(row) {
			rule("├", "┼", "┤")
			continue
		}
		line(row, func(cell string, col int) lipgloss.Style { return cellStyle(cell, numeric[col]) })
	}
	if len(t.Footer) > 0 {
		rule("├", "┼", "┤")
		line(t.Footer, func(string, int) lipgloss.Style { return headerStyle })
	}
	rule("╰", "┴", "╯")

	return b.String()
}

// RenderProgressBar renders a simple text progress bar.
func RenderProgressBar(current, total int, width int) string {
	if total <= 0 {
		return ""
	}

	pct := float64(current) / float64(total)
	if pct > 1 {
		pct = 1
	}

	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s/%s",
		mutedStyle.Render(bar),
		FormatNumber(int64(current)),
		FormatNumber(int64(total)),
	)
}

// RenderShareBar renders a share of 0-1 as a bar of at most width cells.
func RenderShareBar(share float64, width int) string {
	if share <= 0 || width <= 0 {
		return ""
	}
	n := int(share*float64(width) + 0.5)
	if n > width {
		n = width
	}
	if n == 0 {
		return mutedStyle.Render("▏")
	}
	return warnStyle.Render(strings.Repeat("█", n))
}

// ColorDelta colors a formatted delta: green for increases, red for
// decreases. Cells in RenderTable are padded first, so only use this for
// free text.
func ColorDelta(s string, v float64) string {
	switch {
	case v > 0:
		return gainStyle.Render(s)
	case v < 0:
		return lossStyle.Render(s)
	}
	return s
}

// RenderNote renders a muted, indented line.
func RenderNote(s string) string {
	return "  " + mutedStyle.Render(s)
}
