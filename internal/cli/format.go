// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatAmount formats a money amount with thousands separators and two
// decimals. e.g., -1234.5 -> "-1,234.50"
func FormatAmount(v float64) string {
	cents := int64(math.Round(math.Abs(v) * 100))
	s := fmt.Sprintf("%s.%02d", FormatNumber(cents/100), cents%100)
	if v < 0 && cents != 0 {
		return "-" + s
	}
	return s
}

// FormatWhole formats an amount rounded to whole units.
// e.g., 1234.5 -> "1,235"
func FormatWhole(v float64) string {
	return FormatNumber(int64(math.Round(v)))
}

// FormatSignedWhole is FormatWhole with an explicit "+" for gains.
func FormatSignedWhole(v float64) string {
	n := int64(math.Round(v))
	if n > 0 {
		return "+" + FormatNumber(n)
	}
	return FormatNumber(n)
}

// FormatSignedAmount is FormatAmount with an explicit "+" for gains.
func FormatSignedAmount(v float64) string {
	s := FormatAmount(v)
	if !strings.HasPrefix(s, "-") && s != "0.00" {
		return "+" + s
	}
	return s
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDeltaPct formats a relative change with sign, or "n/a" when there
// is no base to compare against.
func FormatDeltaPct(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", *p*100)
}

// FormatDate formats an optional posting date.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// Truncate shortens s to at most n runes, marking the cut with "…".
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
