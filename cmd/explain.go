package cmd

import (
	"fmt"

	"github.com/theirongolddev/varcop/internal/keywords"
	"github.com/theirongolddev/varcop/internal/model"
	"github.com/theirongolddev/varcop/internal/pipeline"
	"github.com/theirongolddev/varcop/internal/prompt"

	"github.com/spf13/cobra"
)

var flagSystemPrompt string

var explainCmd = &cobra.Command{
	Use:   "explain <account>",
	Short: "Print a narrative context block for an account",
	Long: "Print everything known about an account's change as plain text, ready to\n" +
		"paste into a report or an LLM chat. With --system, the matching\n" +
		"instruction text is printed first.",
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().StringVar(&flagDimension, "dimension", "", "Driver dimension (default from config)")
	explainCmd.Flags().StringVar(&flagSystemPrompt, "system", "", "Also print instructions: strict or normal")
	rootCmd.AddCommand(explainCmd)
}

func runExplain(_ *cobra.Command, args []string) error {
	var system string
	if flagSystemPrompt != "" {
		var err error
		if system, err = prompt.SystemPrompt(flagSystemPrompt); err != nil {
			return err
		}
	}

	s, err := loadSession(nil)
	if err != nil {
		return err
	}
	row, err := findAccount(s, args[0])
	if err != nil {
		return err
	}

	c, err := accountContext(s, row, pick(flagDimension, s.cfg.Analysis.Dimension))
	if err != nil {
		return err
	}
	text, err := prompt.FormatContext(c)
	if err != nil {
		return err
	}

	if system != "" {
		fmt.Println(system)
		fmt.Println("---")
		fmt.Println()
	}
	fmt.Print(text)
	return nil
}

// accountContext gathers the drill-down of one account.
func accountContext(s *session, row model.AccountVariance, dim string) (prompt.Context, error) {
	drivers, err := pipeline.DriversForAccount(s.data.Prior, s.data.Current, row.Account, dim, prompt.MaxDrivers)
	if err != nil {
		return prompt.Context{}, err
	}
	return prompt.Context{
		Variance: row,
		Rules:    s.analysis.Rules(row).String(),
		Drivers:  drivers,
		Samples:  pipeline.SamplesForAccount(s.data.Current, row.Account, prompt.MaxSamples),
		Keywords: keywords.ForAccountBoth(s.data.Prior, s.data.Current, row.Account, prompt.MaxKeywords),
	}, nil
}
