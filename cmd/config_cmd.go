// Package cmd implements the varcop CLI commands.
package cmd

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/varcop/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := config.ConfigPath()
	if flagConfig != "" {
		path = flagConfig
	}
	fmt.Printf("  Config file: %s\n", path)
	if config.Exists() || flagConfig != "" {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	m := cfg.Materiality
	fmt.Println("  [Materiality]")
	fmt.Printf("    Min abs delta:   %s\n", showThreshold(m.MinAbsDelta))
	fmt.Printf("    Min pct delta:   %s\n", showThreshold(m.MinPctDelta))
	fmt.Printf("    Min base:        %s\n", showThreshold(m.MinBase))
	fmt.Printf("    Min share total: %s\n", showThreshold(m.MinShareTotal))
	fmt.Println()

	c := cfg.Mapping
	fmt.Println("  [Mapping]")
	fmt.Printf("    Account:      %s\n", c.Account)
	fmt.Printf("    Amount:       %s\n", c.Amount)
	fmt.Printf("    Posting date: %s\n", c.PostingDate)
	fmt.Printf("    Account name: %s\n", orNone(c.AccountName))
	fmt.Printf("    Text:         %s\n", orNone(c.Text))
	fmt.Printf("    Document no:  %s\n", orNone(c.DocumentNo))
	fmt.Printf("    Dimensions:   %s\n", orNone(strings.Join(c.Dimensions, ", ")))
	fmt.Println()

	an := cfg.Analysis
	fmt.Println("  [Analysis]")
	fmt.Printf("    Dimension:    %s\n", an.Dimension)
	fmt.Printf("    Top drivers:  %d\n", an.TopDrivers)
	fmt.Printf("    Top samples:  %d\n", an.TopSamples)
	fmt.Printf("    Top keywords: %d\n", an.TopKeywords)
	fmt.Printf("    Sign mode:    %s\n", an.SignMode)
	fmt.Printf("    Decimal:      %s\n", orNone(an.Decimal))
	fmt.Printf("    Lenient:      %v\n", an.Lenient)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `varcop setup` to reconfigure.")
	return nil
}

func showThreshold(v float64) string {
	if math.IsInf(v, 1) {
		return "off"
	}
	return fmt.Sprintf("%g", v)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
