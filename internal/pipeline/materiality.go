package pipeline

import (
	"math"
	"strings"

	"github.com/theirongolddev/varcop/internal/model"
)

// Rule is a bit set of the materiality rules a row satisfies.
type Rule uint8

const (
	// RuleAbsDelta: abs_delta >= MinAbsDelta.
	RuleAbsDelta Rule = 1 << iota
	// RulePctDelta: |prior| >= MinBase and |delta_pct| >= MinPctDelta.
	RulePctDelta
	// RuleShare: share_of_total_abs_delta >= MinShareTotal.
	RuleShare
)

// Has reports whether every bit of x is set in r.
func (r Rule) Has(x Rule) bool { return r&x == x }

func (r Rule) String() string {
	if r == 0 {
		return "-"
	}
	var parts []string
	if r.Has(RuleAbsDelta) {
		parts = append(parts, "abs")
	}
	if r.Has(RulePctDelta) {
		parts = append(parts, "pct")
	}
	if r.Has(RuleShare) {
		parts = append(parts, "share")
	}
	return strings.Join(parts, "+")
}

// Rules returns which materiality rules the row satisfies under cfg.
func Rules(row model.AccountVariance, cfg model.MaterialityConfig) Rule {
	var r Rule
	if row.AbsDelta >= cfg.MinAbsDelta {
		r |= RuleAbsDelta
	}
	// Rows with a zero base have no delta_pct and can only qualify by the
	// other two rules.
	if math.Abs(row.Prior) >= cfg.MinBase && row.DeltaPct != nil &&
		math.Abs(*row.DeltaPct) >= cfg.MinPctDelta {
		r |= RulePctDelta
	}
	if row.ShareOfTotalAbsDelta >= cfg.MinShareTotal {
		r |= RuleShare
	}
	return r
}

// IsMaterial reports whether any rule fires for the row.
func IsMaterial(row model.AccountVariance, cfg model.MaterialityConfig) bool {
	return Rules(row, cfg) != 0
}

// MaterialityFilter keeps the material rows, preserving input order.
func MaterialityFilter(rows []model.AccountVariance, cfg model.MaterialityConfig) []model.AccountVariance {
	out := make([]model.AccountVariance, 0, len(rows))
	for _, r := range rows {
		if IsMaterial(r, cfg) {
			out = append(out, r)
		}
	}
	return out
}
