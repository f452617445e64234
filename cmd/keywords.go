package cmd

import (
	"fmt"

	"github.com/theirongolddev/varcop/internal/cli"
	"github.com/theirongolddev/varcop/internal/keywords"

	"github.com/spf13/cobra"
)

var (
	flagKeywordTop    int
	flagKeywordPeriod string
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords <account>",
	Short: "Most common words in an account's posting texts",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeywords,
}

func init() {
	keywordsCmd.Flags().IntVar(&flagKeywordTop, "top", 0, "Number of keywords (default from config)")
	keywordsCmd.Flags().StringVar(&flagKeywordPeriod, "period", "both", "Texts to count: both, current or prior")
	rootCmd.AddCommand(keywordsCmd)
}

func runKeywords(_ *cobra.Command, args []string) error {
	switch flagKeywordPeriod {
	case "both", "current", "prior":
	default:
		return fmt.Errorf("--period: want both, current or prior, got %q", flagKeywordPeriod)
	}

	s, err := loadSession(nil)
	if err != nil {
		return err
	}
	row, err := findAccount(s, args[0])
	if err != nil {
		return err
	}

	n := pickInt(flagKeywordTop, s.cfg.Analysis.TopKeywords)
	var counts []keywords.Count
	switch flagKeywordPeriod {
	case "current":
		counts = keywords.ForAccount(s.data.Current, row.Account, n)
	case "prior":
		counts = keywords.ForAccount(s.data.Prior, row.Account, n)
	default:
		counts = keywords.ForAccountBoth(s.data.Prior, s.data.Current, row.Account, n)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("KEYWORDS  %s", accountTitle(row.Account, row.AccountName))))
	fmt.Println()

	if len(counts) == 0 {
		fmt.Println(cli.RenderNote("No posting texts for this account."))
		return nil
	}

	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Word, cli.FormatNumber(int64(c.Count))})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Word", "Count"},
		Rows:    rows,
	}))
	return nil
}
