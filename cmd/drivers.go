package cmd

import (
	"fmt"

	"github.com/theirongolddev/varcop/internal/cli"
	"github.com/theirongolddev/varcop/internal/model"
	"github.com/theirongolddev/varcop/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagDimension string
	flagDriverTop int
)

var driversCmd = &cobra.Command{
	Use:   "drivers <account>",
	Short: "Break an account's delta down by a dimension",
	Args:  cobra.ExactArgs(1),
	RunE:  runDrivers,
}

func init() {
	driversCmd.Flags().StringVar(&flagDimension, "dimension", "", "Dimension to break down by (default from config)")
	driversCmd.Flags().IntVar(&flagDriverTop, "top", 0, "Number of drivers to show (default from config)")
	rootCmd.AddCommand(driversCmd)
}

func runDrivers(_ *cobra.Command, args []string) error {
	s, err := loadSession(nil)
	if err != nil {
		return err
	}
	row, err := findAccount(s, args[0])
	if err != nil {
		return err
	}

	dim := pick(flagDimension, s.cfg.Analysis.Dimension)
	top := pickInt(flagDriverTop, s.cfg.Analysis.TopDrivers)

	drivers, err := pipeline.DriversForAccount(s.data.Prior, s.data.Current, row.Account, dim, top)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DRIVERS  %s by %s", accountTitle(row.Account, row.AccountName), dim)))
	fmt.Println()
	fmt.Printf("  Delta %s (%s)\n\n",
		cli.ColorDelta(cli.FormatSignedAmount(row.Delta), row.Delta),
		cli.FormatDeltaPct(row.DeltaPct))

	if len(drivers) == 0 {
		if !s.data.Prior.Schema.HasDimension(dim) || !s.data.Current.Schema.HasDimension(dim) {
			fmt.Println(cli.RenderNote(fmt.Sprintf("Dimension %q is not present in both periods.", dim)))
		} else {
			fmt.Println(cli.RenderNote("No postings for this account."))
		}
		return nil
	}

	fmt.Print(renderDriverTable(drivers))
	return nil
}

func renderDriverTable(drivers []model.DriverRow) string {
	rows := make([][]string, 0, len(drivers))
	for _, d := range drivers {
		rows = append(rows, []string{
			cli.Truncate(d.Value, 30),
			cli.FormatWhole(d.Prior),
			cli.FormatWhole(d.Current),
			cli.FormatSignedWhole(d.Delta),
			cli.FormatPercent(d.Share),
		})
	}
	return cli.RenderTable(cli.Table{
		Headers: []string{"Value", "Prior", "Current", "Delta", "Share"},
		Rows:    rows,
	})
}

// findAccount looks an account up in the analysis.
func findAccount(s *session, account string) (model.AccountVariance, error) {
	row, ok := s.analysis.Find(account)
	if !ok {
		return row, fmt.Errorf("account %q not found in either period", account)
	}
	return row, nil
}

func pick(flag, def string) string {
	if flag != "" {
		return flag
	}
	return def
}

func pickInt(flag, def int) int {
	if flag > 0 {
		return flag
	}
	return def
}
