package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/varcop/internal/config"
	"github.com/theirongolddev/varcop/internal/tui"
	"github.com/theirongolddev/varcop/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the variance interactively",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	if len(flagPrior) == 0 || len(flagCurrent) == 0 {
		return errors.New("both --prior and --current are required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	// Without this lipgloss may pick the Ascii profile and drop backgrounds.
	lipgloss.SetColorProfile(termenv.TrueColor)

	path := flagConfig
	if path == "" {
		path = config.ConfigPath()
	}

	app := tui.NewApp(tui.Options{
		Prior:      flagPrior,
		Current:    flagCurrent,
		Config:     cfg,
		ConfigPath: path,
		NoCache:    flagNoCache,
		NeedSetup:  flagConfig == "" && !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
