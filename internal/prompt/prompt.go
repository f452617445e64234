// Package prompt renders an account's variance analysis as a plain-text
// narrative context, ready to paste into a review note or an LLM chat.
package prompt

import (
	"fmt"
	"math"
	"strings"
	"text/template"

	"github.com/theirongolddev/varcop/internal/cli"
	"github.com/theirongolddev/varcop/internal/keywords"
	"github.com/theirongolddev/varcop/internal/model"
)

// Limits on what goes into a context block.
const (
	MaxDrivers  = 5
	MaxSamples  = 8
	MaxKeywords = 8
	maxText     = 35
)

// OneOff describes how concentrated an account's change is in its largest
// postings. High shares point at a one-off booking rather than a trend.
type OneOff struct {
	Top1Share float64 `json:"top1_share" yaml:"top1_share"`
	Top5Share float64 `json:"top5_share" yaml:"top5_share"`
	Top1Doc   string  `json:"top1_doc,omitempty" yaml:"top1_doc,omitempty"`
}

// OneOffIndicators compares the largest samples (sorted by |amount|) with
// the account's total delta. Deltas below one cent give zero shares.
func OneOffIndicators(samples []model.SampleRow, delta float64) OneOff {
	absTotal := math.Abs(delta)
	if len(samples) == 0 || absTotal < 0.01 {
		return OneOff{}
	}

	var top5 float64
	for i, s := range samples {
		if i == 5 {
			break
		}
		top5 += math.Abs(s.Amount)
	}

	o := OneOff{
		Top1Share: math.Abs(samples[0].Amount) / absTotal,
		Top5Share: top5 / absTotal,
	}
	if samples[0].DocumentNo != nil {
		o.Top1Doc = *samples[0].DocumentNo
	}
	return o
}

// Context is everything known about one account's variance.
type Context struct {
	Variance model.AccountVariance
	Rules    string // fired materiality rules, e.g. "abs+share"
	Drivers  []model.DriverRow
	Samples  []model.SampleRow
	Keywords []keywords.Count
}

type view struct {
	Context
	OneOff OneOff
}

var funcs = template.FuncMap{
	"whole":  cli.FormatWhole,
	"signed": cli.FormatSignedWhole,
	"pct":    func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
	"share":  cli.FormatPercent,
	"dpct":   cli.FormatDeltaPct,
	"date":   cli.FormatDate,
	"trunc":  truncPtr,
	"kw":     formatKeywords,
}

var contextTmpl = template.Must(template.New("context").Funcs(funcs).Parse(
	`ACCOUNT: {{.Variance.Account}}{{with .Variance.AccountName}} - {{.}}{{end}}

METRICS:
- Prior: {{whole .Variance.Prior}}
- Current: {{whole .Variance.Current}}
- Delta: {{signed .Variance.Delta}} ({{dpct .Variance.DeltaPct}})
- |Delta|: {{whole .Variance.AbsDelta}}
- Share of total: {{share .Variance.ShareOfTotalAbsDelta}}
{{- with .Rules}}
- Material by: {{.}}{{end}}

ONE-OFF INDICATORS:
Top1 share: {{pct .OneOff.Top1Share}}, Top5 share: {{pct .OneOff.Top5Share}}{{with .OneOff.Top1Doc}}, Top1 doc: {{.}}{{end}}

DRIVERS (top {{len .Drivers}}):
{{- range .Drivers}}
  {{.Value}}: Δ {{signed .Delta}} ({{pct .Share}})
{{- else}}
  no drivers
{{- end}}

POSTINGS (top {{len .Samples}}):
{{- range .Samples}}
  {{date .PostingDate}}: {{signed .Amount}} | {{trunc .Text}}
{{- else}}
  no postings
{{- end}}

KEYWORDS: {{kw .Keywords}}
`))

// FormatContext renders c as a plain-text block.
func FormatContext(c Context) (string, error) {
	var b strings.Builder
	v := view{Context: c, OneOff: OneOffIndicators(c.Samples, c.Variance.Delta)}
	if len(v.Drivers) > MaxDrivers {
		v.Drivers = v.Drivers[:MaxDrivers]
	}
	if len(v.Samples) > MaxSamples {
		v.Samples = v.Samples[:MaxSamples]
	}
	if err := contextTmpl.Execute(&b, v); err != nil {
		return "", fmt.Errorf("rendering context: %w", err)
	}
	return b.String(), nil
}

func truncPtr(p *string) string {
	if p == nil {
		return ""
	}
	return cli.Truncate(*p, maxText)
}

func formatKeywords(kws []keywords.Count) string {
	if len(kws) == 0 {
		return "none"
	}
	if len(kws) > MaxKeywords {
		kws = kws[:MaxKeywords]
	}
	parts := make([]string, len(kws))
	for i, k := range kws {
		parts[i] = fmt.Sprintf("%s(%d)", k.Word, k.Count)
	}
	return strings.Join(parts, ", ")
}
