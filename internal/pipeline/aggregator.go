// Package pipeline loads ledger exports and computes account variances,
// materiality, driver breakdowns and posting samples.
package pipeline

import (
	"math"
	"sort"
	"strconv"

	"github.com/theirongolddev/varcop/internal/model"

	"github.com/shopspring/decimal"
)

// Group is the summed amount of every posting sharing one key.
type Group struct {
	Key    string
	Label  string // first non-empty account name; account groupings only
	Amount decimal.Decimal
	Count  int
}

// AggregateByAccount sums a ledger's postings per account.
// Rows come back sorted by account.
func AggregateByAccount(l model.Ledger) ([]Group, error) {
	return aggregate(l.Postings, func(p model.Posting) string { return p.Account }, true)
}

// AggregateBy sums postings per value of a dimension. Postings without a
// value for the dimension are left out.
func AggregateBy(postings []model.Posting, dimension string) ([]Group, error) {
	return aggregate(postings, func(p model.Posting) string { return p.Dimension(dimension) }, false)
}

// LedgerTotal returns the exact sum of a ledger's amounts.
func LedgerTotal(l model.Ledger) (float64, error) {
	sum := decimal.Zero
	for i, p := range l.Postings {
		d, err := amountOf(p, i)
		if err != nil {
			return 0, err
		}
		sum = sum.Add(d)
	}
	return sum.InexactFloat64(), nil
}

func aggregate(postings []model.Posting, keyOf func(model.Posting) string, withLabel bool) ([]Group, error) {
	byKey := make(map[string]*Group)

	for i, p := range postings {
		key := keyOf(p)
		if key == "" {
			continue
		}
		amt, err := amountOf(p, i)
		if err != nil {
			return nil, err
		}

		g, ok := byKey[key]
		if !ok {
			g = &Group{Key: key, Amount: decimal.Zero}
			byKey[key] = g
		}
		g.Amount = g.Amount.Add(amt)
		g.Count++
		if withLabel && g.Label == "" && p.AccountName != "" {
			g.Label = p.AccountName
		}
	}

	groups := make([]Group, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})
	return groups, nil
}

// amountOf converts a posting amount for exact summation. Decimal sums make
// totals independent of record order.
func amountOf(p model.Posting, idx int) (decimal.Decimal, error) {
	if math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) {
		return decimal.Zero, &model.DataError{
			Op:    "aggregate",
			Row:   idx + 1,
			Field: "amount",
			Value: strconv.FormatFloat(p.Amount, 'g', -1, 64),
			Err:   model.ErrNonFinite,
		}
	}
	return decimal.NewFromFloat(p.Amount), nil
}

// joinedRow is one key of a prior/current outer join.
type joinedRow struct {
	key     string
	label   string
	prior   decimal.Decimal
	current decimal.Decimal
	delta   decimal.Decimal
}

// outerJoin merges two key-sorted group lists. A key missing on one side
// gets zero for that side. Labels prefer the current side.
func outerJoin(prior, current []Group) []joinedRow {
	out := make([]joinedRow, 0, len(prior)+len(current))
	i, j := 0, 0
	for i < len(prior) || j < len(current) {
		var row joinedRow
		switch {
		case j >= len(current) || (i < len(prior) && prior[i].Key < current[j].Key):
			row = joinedRow{key: prior[i].Key, label: prior[i].Label, prior: prior[i].Amount, current: decimal.Zero}
			i++
		case i >= len(prior) || current[j].Key < prior[i].Key:
			row = joinedRow{key: current[j].Key, label: current[j].Label, prior: decimal.Zero, current: current[j].Amount}
			j++
		default:
			label := current[j].Label
			if label == "" {
				label = prior[i].Label
			}
			row = joinedRow{key: prior[i].Key, label: label, prior: prior[i].Amount, current: current[j].Amount}
			i++
			j++
		}
		row.delta = row.current.Sub(row.prior)
		out = append(out, row)
	}
	return out
}

// sumAbsDelta returns Σ|delta| over joined rows.
func sumAbsDelta(rows []joinedRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.delta.Abs())
	}
	return total
}

// shareOf returns part/total, or 0 when total is not positive.
func shareOf(part, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	return part.Div(total).InexactFloat64()
}

func filterAccount(postings []model.Posting, account string) []model.Posting {
	var out []model.Posting
	for _, p := range postings {
		if p.Account == account {
			out = append(out, p)
		}
	}
	return out
}
