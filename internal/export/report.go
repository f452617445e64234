// Package export builds variance reports and writes them as JSON, YAML or
// Excel workbooks.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/varcop/internal/keywords"
	"github.com/theirongolddev/varcop/internal/model"
	"github.com/theirongolddev/varcop/internal/pipeline"
	"github.com/theirongolddev/varcop/internal/prompt"

	"github.com/google/uuid"
)

// Report is a complete, self-describing variance analysis.
type Report struct {
	ID           string                  `json:"id" yaml:"id"`
	GeneratedAt  time.Time               `json:"generated_at" yaml:"generated_at"`
	PriorLabel   string                  `json:"prior_label" yaml:"prior_label"`
	CurrentLabel string                  `json:"current_label" yaml:"current_label"`
	PriorTotal   float64                 `json:"prior_total" yaml:"prior_total"`
	CurrentTotal float64                 `json:"current_total" yaml:"current_total"`
	Materiality  model.MaterialityConfig `json:"materiality" yaml:"materiality"`
	Variances    []model.AccountVariance `json:"variances" yaml:"variances"`
	Material     []model.AccountVariance `json:"material" yaml:"material"`

	Dimension        string            `json:"dimension,omitempty" yaml:"dimension,omitempty"`
	DimensionSummary []model.DriverRow `json:"dimension_summary,omitempty" yaml:"dimension_summary,omitempty"`

	Details []AccountDetail `json:"details" yaml:"details"`
}

// AccountDetail is the drill-down of one material account.
type AccountDetail struct {
	Account  string            `json:"account" yaml:"account"`
	Rules    string            `json:"rules" yaml:"rules"`
	Drivers  []model.DriverRow `json:"drivers" yaml:"drivers"`
	Samples  []model.SampleRow `json:"samples" yaml:"samples"`
	Keywords []keywords.Count  `json:"keywords" yaml:"keywords"`
	OneOff   prompt.OneOff     `json:"one_off" yaml:"one_off"`
}

// Options controls report contents.
type Options struct {
	PriorLabel   string
	CurrentLabel string
	Dimension    string // driver dimension; empty skips drivers
	TopDrivers   int
	TopSamples   int
	TopKeywords  int
}

// Build assembles a report from a finished analysis and the two ledgers.
func Build(a *pipeline.Analysis, prior, current model.Ledger, opts Options) (*Report, error) {
	r := &Report{
		ID:           uuid.NewString(),
		GeneratedAt:  time.Now().UTC(),
		PriorLabel:   opts.PriorLabel,
		CurrentLabel: opts.CurrentLabel,
		PriorTotal:   a.PriorTotal,
		CurrentTotal: a.CurrentTotal,
		Materiality:  a.Config,
		Variances:    a.Variances,
		Material:     a.Material,
		Dimension:    opts.Dimension,
		Details:      make([]AccountDetail, 0, len(a.Material)),
	}

	if opts.Dimension != "" {
		summary, err := pipeline.DimensionSummary(prior, current, opts.Dimension)
		if err != nil {
			return nil, err
		}
		r.DimensionSummary = summary
	}

	for _, row := range a.Material {
		d := AccountDetail{
			Account:  row.Account,
			Rules:    a.Rules(row).String(),
			Drivers:  []model.DriverRow{},
			Samples:  pipeline.SamplesForAccount(current, row.Account, opts.TopSamples),
			Keywords: keywords.ForAccountBoth(prior, current, row.Account, opts.TopKeywords),
		}
		if opts.Dimension != "" {
			drivers, err := pipeline.DriversForAccount(prior, current, row.Account, opts.Dimension, opts.TopDrivers)
			if err != nil {
				return nil, err
			}
			d.Drivers = drivers
		}
		d.OneOff = prompt.OneOffIndicators(d.Samples, row.Delta)
		r.Details = append(r.Details, d)
	}

	return r, nil
}

// Format is an output file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json, yaml or xlsx)", s)
}

// FormatForPath guesses a format from a file extension.
func FormatForPath(path string) (Format, bool) {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	return f, err == nil
}
