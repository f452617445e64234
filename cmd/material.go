package cmd

import (
	"fmt"
	"math"

	"github.com/theirongolddev/varcop/internal/cli"
	"github.com/theirongolddev/varcop/internal/config"

	"github.com/spf13/cobra"
)

var (
	flagMinAbs   string
	flagMinPct   string
	flagMinBase  string
	flagMinShare string
)

var materialCmd = &cobra.Command{
	Use:   "material",
	Short: "Material accounts and the rules that flagged them",
	RunE:  runMaterial,
}

func init() {
	materialCmd.Flags().StringVar(&flagMinAbs, "min-abs", "", "Minimum absolute delta (off disables)")
	materialCmd.Flags().StringVar(&flagMinPct, "min-pct", "", "Minimum relative delta, e.g. 0.1 (off disables)")
	materialCmd.Flags().StringVar(&flagMinBase, "min-base", "", "Minimum prior amount for the relative rule (off disables)")
	materialCmd.Flags().StringVar(&flagMinShare, "min-share", "", "Minimum share of total absolute delta (off disables)")
	rootCmd.AddCommand(materialCmd)
}

func runMaterial(_ *cobra.Command, _ []string) error {
	s, err := loadSession(applyThresholdFlags)
	if err != nil {
		return err
	}
	a := s.analysis
	m := a.Config

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MATERIAL  %d of %d accounts", len(a.Material), len(a.Variances))))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Thresholds",
		Headers: []string{"Rule", "Fires when"},
		Rows: [][]string{
			{"abs", "|delta| >= " + formatThreshold(m.MinAbsDelta, cli.FormatWhole)},
			{"pct", "|delta %| >= " + formatThreshold(m.MinPctDelta, cli.FormatPercent) +
				" and |prior| >= " + formatThreshold(m.MinBase, cli.FormatWhole)},
			{"share", "share of total >= " + formatThreshold(m.MinShareTotal, cli.FormatPercent)},
		},
	}))
	fmt.Println()

	if len(a.Material) == 0 {
		fmt.Println(cli.RenderNote("No account crosses a materiality threshold."))
		return nil
	}
	fmt.Print(renderVarianceTable("", a.Material, a))
	return nil
}

// applyThresholdFlags overrides config thresholds with the --min-* flags.
func applyThresholdFlags(cfg *config.Config) error {
	for _, o := range []struct {
		name string
		val  string
		dst  *float64
	}{
		{"--min-abs", flagMinAbs, &cfg.Materiality.MinAbsDelta},
		{"--min-pct", flagMinPct, &cfg.Materiality.MinPctDelta},
		{"--min-base", flagMinBase, &cfg.Materiality.MinBase},
		{"--min-share", flagMinShare, &cfg.Materiality.MinShareTotal},
	} {
		if o.val == "" {
			continue
		}
		v, err := config.ParseThreshold(o.val)
		if err != nil {
			return fmt.Errorf("%s: %w", o.name, err)
		}
		*o.dst = v
	}
	return nil
}

func formatThreshold(v float64, format func(float64) string) string {
	if math.IsInf(v, 1) {
		return "off"
	}
	return format(v)
}
