package pipeline

import (
	"github.com/theirongolddev/varcop/internal/model"
)

// Analysis is the whole-book comparison of two periods.
type Analysis struct {
	PriorTotal   float64
	CurrentTotal float64
	Variances    []model.AccountVariance
	Material     []model.AccountVariance
	Config       model.MaterialityConfig
}

// Analyze runs the variance calculation and the materiality filter.
// Shares in Material stay relative to the whole book, not to the material subset.
func Analyze(prior, current model.Ledger, cfg model.MaterialityConfig) (*Analysis, error) {
	priorTotal, err := LedgerTotal(prior)
	if err != nil {
		return nil, err
	}
	currentTotal, err := LedgerTotal(current)
	if err != nil {
		return nil, err
	}

	rows, err := VarianceByAccount(prior, current)
	if err != nil {
		return nil, err
	}

	return &Analysis{
		PriorTotal:   priorTotal,
		CurrentTotal: currentTotal,
		Variances:    rows,
		Material:     MaterialityFilter(rows, cfg),
		Config:       cfg,
	}, nil
}

// Find returns the variance row for an account.
func (a *Analysis) Find(account string) (model.AccountVariance, bool) {
	for _, r := range a.Variances {
		if r.Account == account {
			return r, true
		}
	}
	return model.AccountVariance{}, false
}

// Rules returns the materiality rules that fire for a row under the
// analysis' configuration.
func (a *Analysis) Rules(row model.AccountVariance) Rule {
	return Rules(row, a.Config)
}
