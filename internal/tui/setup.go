package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/varcop/internal/config"
	"github.com/theirongolddev/varcop/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues backs the setup form fields. Thresholds are kept as text so
// "off" can disable a rule.
type SetupValues struct {
	MinAbsDelta   string
	MinPctDelta   string
	MinBase       string
	MinShareTotal string
	Dimension     string
	Theme         string
}

// NewSetupValues prefills the form from cfg.
func NewSetupValues(cfg config.Config) SetupValues {
	m := cfg.Materiality
	return SetupValues{
		MinAbsDelta:   thresholdText(m.MinAbsDelta),
		MinPctDelta:   thresholdText(m.MinPctDelta),
		MinBase:       thresholdText(m.MinBase),
		MinShareTotal: thresholdText(m.MinShareTotal),
		Dimension:     cfg.Analysis.Dimension,
		Theme:         cfg.Appearance.Theme,
	}
}

// Apply writes the form values into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	for _, f := range []struct {
		name string
		val  string
		dst  *float64
	}{
		{"minimum absolute delta", v.MinAbsDelta, &cfg.Materiality.MinAbsDelta},
		{"minimum relative delta", v.MinPctDelta, &cfg.Materiality.MinPctDelta},
		{"minimum base", v.MinBase, &cfg.Materiality.MinBase},
		{"minimum share", v.MinShareTotal, &cfg.Materiality.MinShareTotal},
	} {
		x, err := config.ParseThreshold(f.val)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = x
	}
	if d := strings.TrimSpace(v.Dimension); d != "" {
		cfg.Analysis.Dimension = d
	}
	if _, ok := theme.Lookup(v.Theme); ok {
		cfg.Appearance.Theme = v.Theme
	}
	return nil
}

// NewSetupForm builds the first-run form. dims, when known, are offered as
// suggestions for the driver dimension.
func NewSetupForm(v *SetupValues, dims []string) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to varcop").
				Description("An account is material when any rule fires.\nEnter \"off\" to disable a rule."),
			huh.NewInput().
				Title("Minimum absolute delta").
				Description("abs rule: |current - prior| at or above this").
				Value(&v.MinAbsDelta).
				Validate(validateThreshold),
			huh.NewInput().
				Title("Minimum relative delta").
				Description("pct rule: |delta / prior|, e.g. 0.1 for 10%").
				Value(&v.MinPctDelta).
				Validate(validateThreshold),
			huh.NewInput().
				Title("Minimum base").
				Description("pct rule only applies when |prior| is at least this").
				Value(&v.MinBase).
				Validate(validateThreshold),
			huh.NewInput().
				Title("Minimum share of total").
				Description("share rule: share of the summed |delta| of all accounts").
				Value(&v.MinShareTotal).
				Validate(validateThreshold),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Driver dimension").
				Description("Column to break material accounts down by").
				Suggestions(dims).
				Value(&v.Dimension),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.Theme),
		),
	).WithTheme(huh.ThemeCharm())
}

func validateThreshold(s string) error {
	_, err := config.ParseThreshold(s)
	return err
}

func thresholdText(v float64) string {
	if math.IsInf(v, 1) {
		return "off"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// saveSetupConfig applies the form to the config file and the running app.
func (a *App) saveSetupConfig() error {
	fileCfg, err := config.LoadFrom(a.opts.ConfigPath)
	if err != nil {
		fileCfg = config.DefaultConfig()
	}
	if err := a.setupVals.Apply(&fileCfg); err != nil {
		return err
	}
	if err := a.setupVals.Apply(&a.cfg); err != nil {
		return err
	}
	theme.SetActive(a.cfg.Appearance.Theme)
	return config.SaveTo(a.opts.ConfigPath, fileCfg)
}
