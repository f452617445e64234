package pipeline

import (
	"sort"

	"github.com/theirongolddev/varcop/internal/model"
)

// VarianceByAccount compares two periods account by account.
//
// Every account present in either ledger yields one row. Rows are ordered by
// AbsDelta descending; ties keep account order. ShareOfTotalAbsDelta is
// relative to the whole result set and is zero everywhere when nothing moved.
func VarianceByAccount(prior, current model.Ledger) ([]model.AccountVariance, error) {
	priorAgg, err := AggregateByAccount(prior)
	if err != nil {
		return nil, err
	}
	currAgg, err := AggregateByAccount(current)
	if err != nil {
		return nil, err
	}

	joined := outerJoin(priorAgg, currAgg)
	totalAbs := sumAbsDelta(joined)

	rows := make([]model.AccountVariance, 0, len(joined))
	for _, j := range joined {
		absDelta := j.delta.Abs()
		row := model.AccountVariance{
			Account:              j.key,
			AccountName:          j.label,
			Prior:                j.prior.InexactFloat64(),
			Current:              j.current.InexactFloat64(),
			Delta:                j.delta.InexactFloat64(),
			AbsDelta:             absDelta.InexactFloat64(),
			ShareOfTotalAbsDelta: shareOf(absDelta, totalAbs),
		}
		// |prior| keeps the sign of the change when the base is negative.
		if !j.prior.IsZero() {
			pct := j.delta.Div(j.prior.Abs()).InexactFloat64()
			row.DeltaPct = &pct
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].AbsDelta > rows[b].AbsDelta
	})
	return rows, nil
}
