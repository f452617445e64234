package cmd

import (
	"fmt"

	"github.com/theirongolddev/varcop/internal/cli"
	"github.com/theirongolddev/varcop/internal/model"
	"github.com/theirongolddev/varcop/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Period totals and material accounts",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	s, err := loadSession(nil)
	if err != nil {
		return err
	}
	a := s.analysis

	if len(a.Variances) == 0 {
		fmt.Println("\n  No postings found in either period.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("VARIANCE  Prior vs Current"))
	fmt.Println()

	delta := a.CurrentTotal - a.PriorTotal
	rows := [][]string{
		{"Prior", periodLabel(flagPrior)},
		{"Current", periodLabel(flagCurrent)},
		{"---"},
		{"Prior total", cli.FormatAmount(a.PriorTotal)},
		{"Current total", cli.FormatAmount(a.CurrentTotal)},
		{"Delta", cli.FormatSignedAmount(delta)},
		{"---"},
		{"Accounts", cli.FormatNumber(int64(len(a.Variances)))},
		{"Material", cli.RenderProgressBar(len(a.Material), len(a.Variances), 20)},
		{"Files", cli.FormatNumber(int64(s.data.TotalFiles))},
	}
	if s.data.Dropped > 0 {
		rows = append(rows, []string{"Dropped rows", cli.FormatNumber(int64(s.data.Dropped))})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if len(a.Material) == 0 {
		fmt.Println()
		fmt.Println(cli.RenderNote("No account crosses a materiality threshold."))
		return nil
	}

	fmt.Println()
	fmt.Print(renderVarianceTable("Material Accounts", a.Material, a))
	return nil
}

// renderVarianceTable renders variance rows with their fired rules.
// a may be nil, in which case the rules column is omitted.
func renderVarianceTable(title string, rows []model.AccountVariance, a *pipeline.Analysis) string {
	headers := []string{"Account", "Name", "Prior", "Current", "Delta", "Delta %", "Share"}
	if a != nil {
		headers = append(headers, "Rules")
	}

	out := make([][]string, 0, len(rows))
	var prior, current, share float64
	for _, r := range rows {
		prior += r.Prior
		current += r.Current
		share += r.ShareOfTotalAbsDelta
		row := []string{
			r.Account,
			cli.Truncate(r.AccountName, 28),
			cli.FormatWhole(r.Prior),
			cli.FormatWhole(r.Current),
			cli.FormatSignedWhole(r.Delta),
			cli.FormatDeltaPct(r.DeltaPct),
			cli.FormatPercent(r.ShareOfTotalAbsDelta),
		}
		if a != nil {
			row = append(row, a.Rules(r).String())
		}
		out = append(out, row)
	}

	t := cli.Table{
		Title:   title,
		Headers: headers,
		Rows:    out,
	}
	if len(rows) > 1 {
		t.Footer = []string{"Total", "", cli.FormatWhole(prior), cli.FormatWhole(current),
			cli.FormatSignedWhole(current - prior), "", cli.FormatPercent(share)}
	}
	return cli.RenderTable(t)
}
