package model

import (
	"encoding/json"
	"math"
	"time"
)

// AccountVariance is one account's prior/current comparison.
type AccountVariance struct {
	Account     string  `json:"account" yaml:"account"`
	AccountName string  `json:"account_name" yaml:"account_name"`
	Prior       float64 `json:"prior" yaml:"prior"`
	Current     float64 `json:"current" yaml:"current"`
	Delta       float64 `json:"delta" yaml:"delta"`

	// DeltaPct is delta / |prior|. Nil when prior is zero.
	DeltaPct *float64 `json:"delta_pct" yaml:"delta_pct"`

	AbsDelta             float64 `json:"abs_delta" yaml:"abs_delta"`
	ShareOfTotalAbsDelta float64 `json:"share_of_total_abs_delta" yaml:"share_of_total_abs_delta"`
}

// DriverRow is one dimension value's contribution to an account's delta.
type DriverRow struct {
	Dimension string  `json:"dimension" yaml:"dimension"`
	Value     string  `json:"value" yaml:"value"`
	Prior     float64 `json:"prior" yaml:"prior"`
	Current   float64 `json:"current" yaml:"current"`
	Delta     float64 `json:"delta" yaml:"delta"`
	Share     float64 `json:"share" yaml:"share"`
}

// SampleRow is a single posting projected to the columns its ledger carries.
// Optional fields are nil when the schema has no such column.
type SampleRow struct {
	PostingDate *time.Time        `json:"posting_date,omitempty" yaml:"posting_date,omitempty"`
	Amount      float64           `json:"amount" yaml:"amount"`
	DocumentNo  *string           `json:"document_no,omitempty" yaml:"document_no,omitempty"`
	Text        *string           `json:"text,omitempty" yaml:"text,omitempty"`
	Dimensions  map[string]string `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// MaterialityConfig holds the thresholds of the materiality OR-policy.
// A threshold of +Inf disables its rule.
type MaterialityConfig struct {
	MinAbsDelta   float64 `json:"min_abs_delta" yaml:"min_abs_delta" toml:"min_abs_delta"`
	MinPctDelta   float64 `json:"min_pct_delta" yaml:"min_pct_delta" toml:"min_pct_delta"`
	MinBase       float64 `json:"min_base" yaml:"min_base" toml:"min_base"`
	MinShareTotal float64 `json:"min_share_total" yaml:"min_share_total" toml:"min_share_total"`
}

// Default materiality thresholds.
const (
	DefaultMinAbsDelta   = 10000
	DefaultMinPctDelta   = 0.10
	DefaultMinBase       = 5000
	DefaultMinShareTotal = 0.03
)

// DefaultMateriality returns the default thresholds.
func DefaultMateriality() MaterialityConfig {
	return MaterialityConfig{
		MinAbsDelta:   DefaultMinAbsDelta,
		MinPctDelta:   DefaultMinPctDelta,
		MinBase:       DefaultMinBase,
		MinShareTotal: DefaultMinShareTotal,
	}
}

// Disabled is the threshold value that switches a rule off.
var Disabled = math.Inf(1)

// MarshalJSON writes disabled thresholds as null; JSON has no infinity.
func (c MaterialityConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		MinAbsDelta   *float64 `json:"min_abs_delta"`
		MinPctDelta   *float64 `json:"min_pct_delta"`
		MinBase       *float64 `json:"min_base"`
		MinShareTotal *float64 `json:"min_share_total"`
	}{
		MinAbsDelta:   finiteOrNil(c.MinAbsDelta),
		MinPctDelta:   finiteOrNil(c.MinPctDelta),
		MinBase:       finiteOrNil(c.MinBase),
		MinShareTotal: finiteOrNil(c.MinShareTotal),
	})
}

func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// UnmarshalJSON reads null or missing thresholds as disabled.
func (c *MaterialityConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		MinAbsDelta   *float64 `json:"min_abs_delta"`
		MinPctDelta   *float64 `json:"min_pct_delta"`
		MinBase       *float64 `json:"min_base"`
		MinShareTotal *float64 `json:"min_share_total"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.MinAbsDelta = orDisabled(raw.MinAbsDelta)
	c.MinPctDelta = orDisabled(raw.MinPctDelta)
	c.MinBase = orDisabled(raw.MinBase)
	c.MinShareTotal = orDisabled(raw.MinShareTotal)
	return nil
}

func orDisabled(p *float64) float64 {
	if p == nil {
		return Disabled
	}
	return *p
}
