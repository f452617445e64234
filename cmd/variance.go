package cmd

import (
	"fmt"

	"github.com/theirongolddev/varcop/internal/cli"
	"github.com/theirongolddev/varcop/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagVarianceAll   bool
	flagVarianceLimit int
)

var varianceCmd = &cobra.Command{
	Use:   "variance",
	Short: "Every account with prior, current and delta metrics",
	RunE:  runVariance,
}

func init() {
	varianceCmd.Flags().BoolVar(&flagVarianceAll, "all", false, "Include accounts without any change")
	varianceCmd.Flags().IntVar(&flagVarianceLimit, "limit", 0, "Show at most this many accounts (0 = all)")
	rootCmd.AddCommand(varianceCmd)
}

func runVariance(_ *cobra.Command, _ []string) error {
	s, err := loadSession(nil)
	if err != nil {
		return err
	}
	a := s.analysis

	rows := make([]model.AccountVariance, 0, len(a.Variances))
	for _, r := range a.Variances {
		if r.AbsDelta == 0 && !flagVarianceAll {
			continue
		}
		rows = append(rows, r)
	}
	hidden := 0
	if flagVarianceLimit > 0 && len(rows) > flagVarianceLimit {
		hidden = len(rows) - flagVarianceLimit
		rows = rows[:flagVarianceLimit]
	}

	if len(rows) == 0 {
		fmt.Println("\n  No account changed between the periods.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("VARIANCE  %d accounts", len(a.Variances))))
	fmt.Println()
	fmt.Print(renderVarianceTable("", rows, nil))

	if hidden > 0 {
		fmt.Println(cli.RenderNote(fmt.Sprintf("%d more accounts not shown (--limit)", hidden)))
	}
	return nil
}
