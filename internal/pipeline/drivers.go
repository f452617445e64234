package pipeline

import (
	"sort"

	"github.com/theirongolddev/varcop/internal/model"
)

// Default result sizes.
const (
	DefaultTopDrivers = 5
	DefaultTopSamples = 8
)

// DriversForAccount breaks one account's change down by a dimension
// (cost center, vendor, ...). Share is |delta| over the sum of |delta| across
// this account's drivers only. The result is sorted by |delta| descending and
// cut to topN (DefaultTopDrivers when topN <= 0).
//
// A dimension that either ledger does not carry gives an empty result.
func DriversForAccount(prior, current model.Ledger, account, dimension string, topN int) ([]model.DriverRow, error) {
	if topN <= 0 {
		topN = DefaultTopDrivers
	}
	if !prior.Schema.HasDimension(dimension) || !current.Schema.HasDimension(dimension) {
		return []model.DriverRow{}, nil
	}

	rows, err := breakdown(filterAccount(prior.Postings, account), filterAccount(current.Postings, account), dimension)
	if err != nil {
		return nil, err
	}
	if len(rows) > topN {
		rows = rows[:topN]
	}
	return rows, nil
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// DimensionSummary breaks the whole book's change down by a dimension, with
// the same share and ordering rules as DriversForAccount but no cut.
func DimensionSummary(prior, current model.Ledger, dimension string) ([]model.DriverRow, error) {
	if !prior.Schema.HasDimension(dimension) || !current.Schema.HasDimension(dimension) {
		return []model.DriverRow{}, nil
	}
	return breakdown(prior.Postings, current.Postings, dimension)
}

func breakdown(prior, current []model.Posting, dimension string) ([]model.DriverRow, error) {
	priorAgg, err := AggregateBy(prior, dimension)
	if err != nil {
		return nil, err
	}
	currAgg, err := AggregateBy(current, dimension)
	if err != nil {
		return nil, err
	}

	joined := outerJoin(priorAgg, currAgg)
	totalAbs := sumAbsDelta(joined)

	rows := make([]model.DriverRow, 0, len(joined))
	for _, j := range joined {
		rows = append(rows, model.DriverRow{
			Dimension: dimension,
			Value:     j.key,
			Prior:     j.prior.InexactFloat64(),
			Current:   j.current.InexactFloat64(),
			Delta:     j.delta.InexactFloat64(),
			Share:     shareOf(j.delta.Abs(), totalAbs),
		})
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return absf(rows[a].Delta) > absf(rows[b].Delta)
	})
	return rows, nil
}
