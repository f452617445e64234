package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/varcop/internal/model"
)

// Decimal selects which separator marks the decimal point in amounts.
type Decimal string

const (
	// DecimalAuto decides per file from the first unambiguous amount.
	DecimalAuto  Decimal = "auto"
	DecimalComma Decimal = "comma" // 1.234,50
	DecimalDot   Decimal = "dot"   // 1,234.50
)

// ParseDecimal validates a decimal style name. Empty means DecimalAuto.
func ParseDecimal(s string) (Decimal, error) {
	switch Decimal(strings.ToLower(strings.TrimSpace(s))) {
	case "", DecimalAuto:
		return DecimalAuto, nil
	case DecimalComma, ",":
		return DecimalComma, nil
	case DecimalDot, ".":
		return DecimalDot, nil
	}
	return "", fmt.Errorf("unknown decimal style %q (want auto, comma or dot)", s)
}

// ParseAmount parses an export amount, guessing the decimal separator from
// the value alone. A value like "1.000" or "12,500" reads differently in
// German and English exports and fails with ErrAmbiguousAmount.
func ParseAmount(raw string) (float64, error) {
	return ParseAmountAs(raw, DecimalAuto)
}

// ParseAmountAs parses an export amount with the given decimal style. It
// accepts thousands separators in groups of three, currency symbols,
// parenthesised negatives and trailing minus signs ("1.234,50-").
func ParseAmountAs(raw string, d Decimal) (float64, error) {
	s, neg := cleanAmount(raw)
	if s == "" {
		return 0, model.ErrBadAmount
	}

	s, err := normalizeSeparators(s, d)
	if err != nil {
		return 0, err
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, model.ErrBadAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, model.ErrNonFinite
	}
	if neg {
		v = -v
	}
	return v, nil
}

// cleanAmount strips whitespace, currency and negative markers that wrap
// the number.
func cleanAmount(raw string) (string, bool) {
	s := strings.TrimSpace(raw)

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	if strings.HasSuffix(s, "-") {
		neg = !neg
		s = strings.TrimSuffix(s, "-")
	}

	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\'', '€', '$', '£':
			return -1
		}
		return r
	}, s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "EUR"), "USD")
	return s, neg
}

// DetectDecimal reports the decimal style an amount implies, or DecimalAuto
// when it has no separator or could be read either way.
func DetectDecimal(raw string) Decimal {
	s, _ := cleanAmount(raw)
	s = strings.TrimLeft(s, "+-")

	comma := strings.LastIndexByte(s, ',')
	dot := strings.LastIndexByte(s, '.')
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			return DecimalComma
		}
		return DecimalDot
	case comma >= 0:
		return singleSeparator(s, ',', DecimalComma, DecimalDot)
	case dot >= 0:
		return singleSeparator(s, '.', DecimalDot, DecimalComma)
	}
	return DecimalAuto
}

// singleSeparator classifies a value that uses only sep. asDecimal is the
// style where sep is the decimal point, asGroup the one where it groups
// thousands.
func singleSeparator(s string, sep byte, asDecimal, asGroup Decimal) Decimal {
	if strings.Count(s, string(sep)) > 1 {
		return asGroup
	}
	i := strings.IndexByte(s, sep)
	intPart, frac := s[:i], s[i+1:]
	// Thousands groups are exactly three digits and never follow a lone
	// zero or more than three leading digits.
	if len(frac) != 3 || intPart == "" || intPart == "0" || len(intPart) > 3 {
		return asDecimal
	}
	return DecimalAuto
}

// normalizeSeparators rewrites s so '.' is the only decimal separator and
// no thousands separators remain. Grouping must be in threes.
func normalizeSeparators(s string, d Decimal) (string, error) {
	if d == "" || d == DecimalAuto {
		d = DetectDecimal(s)
		if d == DecimalAuto {
			if strings.ContainsAny(s, ".,") {
				return "", model.ErrAmbiguousAmount
			}
			return s, nil
		}
	}

	dec, group := ",", "."
	if d == DecimalDot {
		dec, group = ".", ","
	}

	sign := ""
	if s != "" && (s[0] == '-' || s[0] == '+') {
		sign, s = s[:1], s[1:]
	}

	intPart, frac, hasFrac := strings.Cut(s, dec)
	if strings.Contains(frac, dec) || strings.Contains(frac, group) {
		return "", model.ErrBadAmount
	}
	if strings.Contains(intPart, group) {
		groups := strings.Split(intPart, group)
		if len(groups[0]) < 1 || len(groups[0]) > 3 {
			return "", model.ErrBadAmount
		}
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return "", model.ErrBadAmount
			}
		}
		intPart = strings.Join(groups, "")
	}

	if !hasFrac {
		return sign + intPart, nil
	}
	return sign + intPart + "." + frac, nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"2006/01/02",
	"01/02/2006",
}

// ParseDate parses a posting date in the formats common to ERP exports.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, model.ErrBadDate
}
