package cmd

import (
	"fmt"

	"github.com/theirongolddev/varcop/internal/cli"
	"github.com/theirongolddev/varcop/internal/model"
	"github.com/theirongolddev/varcop/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagSampleTop    int
	flagSamplePeriod string
)

var samplesCmd = &cobra.Command{
	Use:   "samples <account>",
	Short: "Largest postings of an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runSamples,
}

func init() {
	samplesCmd.Flags().IntVar(&flagSampleTop, "top", 0, "Number of postings to show (default from config)")
	samplesCmd.Flags().StringVar(&flagSamplePeriod, "period", "current", "Period to sample: current or prior")
	rootCmd.AddCommand(samplesCmd)
}

func runSamples(_ *cobra.Command, args []string) error {
	var ledger func(*session) model.Ledger
	switch flagSamplePeriod {
	case "current":
		ledger = func(s *session) model.Ledger { return s.data.Current }
	case "prior":
		ledger = func(s *session) model.Ledger { return s.data.Prior }
	default:
		return fmt.Errorf("--period: want current or prior, got %q", flagSamplePeriod)
	}

	s, err := loadSession(nil)
	if err != nil {
		return err
	}
	row, err := findAccount(s, args[0])
	if err != nil {
		return err
	}

	l := ledger(s)
	samples := pipeline.SamplesForAccount(l, row.Account, pickInt(flagSampleTop, s.cfg.Analysis.TopSamples))

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("POSTINGS  %s (%s)", accountTitle(row.Account, row.AccountName), flagSamplePeriod)))
	fmt.Println()

	if len(samples) == 0 {
		fmt.Println(cli.RenderNote("No postings for this account in this period."))
		return nil
	}
	fmt.Print(renderSampleTable(samples, l.Schema))
	return nil
}

// renderSampleTable shows only the columns the ledger carries.
func renderSampleTable(samples []model.SampleRow, schema model.Schema) string {
	var headers []string
	if schema.HasPostingDate {
		headers = append(headers, "Date")
	}
	if schema.HasDocumentNo {
		headers = append(headers, "Document")
	}
	headers = append(headers, "Amount")
	if schema.HasText {
		headers = append(headers, "Text")
	}
	headers = append(headers, schema.Dimensions...)

	rows := make([][]string, 0, len(samples))
	for _, sr := range samples {
		var r []string
		if schema.HasPostingDate {
			r = append(r, cli.FormatDate(sr.PostingDate))
		}
		if schema.HasDocumentNo {
			r = append(r, deref(sr.DocumentNo))
		}
		r = append(r, cli.FormatAmount(sr.Amount))
		if schema.HasText {
			r = append(r, cli.Truncate(deref(sr.Text), 40))
		}
		for _, d := range schema.Dimensions {
			r = append(r, sr.Dimensions[d])
		}
		rows = append(rows, r)
	}

	return cli.RenderTable(cli.Table{Headers: headers, Rows: rows})
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
