package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/varcop/internal/config"
	"github.com/theirongolddev/varcop/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Set materiality thresholds and defaults",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	path := flagConfig
	if path == "" {
		path = config.ConfigPath()
	}

	// Start from the file as saved, not from flag overrides.
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}

	vals := tui.NewSetupValues(cfg)
	if err := tui.NewSetupForm(&vals, cfg.Mapping.Dimensions).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return err
	}

	if err := vals.Apply(&cfg); err != nil {
		return err
	}
	if err := config.SaveTo(path, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", path)
	fmt.Println("  Run `varcop setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
