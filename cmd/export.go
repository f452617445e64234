package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/theirongolddev/varcop/internal/export"

	"github.com/spf13/cobra"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the full analysis as JSON, YAML or an Excel workbook",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "", "Output format: json, yaml or xlsx (default from --out extension, else json)")
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	format := export.FormatJSON
	if f, ok := export.FormatForPath(flagExportOut); ok {
		format = f
	}
	if flagExportFormat != "" {
		f, err := export.ParseFormat(flagExportFormat)
		if err != nil {
			return err
		}
		format = f
	}
	if format == export.FormatXLSX && flagExportOut == "" {
		return errors.New("xlsx output needs --out")
	}

	s, err := loadSession(nil)
	if err != nil {
		return err
	}

	report, err := export.Build(s.analysis, s.data.Prior, s.data.Current, export.Options{
		PriorLabel:   periodLabel(flagPrior),
		CurrentLabel: periodLabel(flagCurrent),
		Dimension:    s.cfg.Analysis.Dimension,
		TopDrivers:   s.cfg.Analysis.TopDrivers,
		TopSamples:   s.cfg.Analysis.TopSamples,
		TopKeywords:  s.cfg.Analysis.TopKeywords,
	})
	if err != nil {
		return fmt.Errorf("building report: %w", err)
	}

	if flagExportOut == "" {
		return export.Write(os.Stdout, report, format)
	}
	if err := export.WriteFile(flagExportOut, report, format); err != nil {
		return err
	}
	lg.Info("report written", "file", flagExportOut, "format", format, "accounts", len(report.Material))
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Wrote %s (%d material accounts)\n", flagExportOut, len(report.Material))
	}
	return nil
}
