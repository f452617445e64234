package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/theirongolddev/varcop/internal/config"
	"github.com/theirongolddev/varcop/internal/tui/components"
	"github.com/theirongolddev/varcop/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldMinAbs = iota
	settingsFieldMinPct
	settingsFieldMinBase
	settingsFieldMinShare
	settingsFieldDimension
	settingsFieldTheme
	settingsFieldCount // sentinel
)

var settingsLabels = [settingsFieldCount]string{
	"Min abs delta",
	"Min pct delta",
	"Min base",
	"Min share total",
	"Driver dimension",
	"Theme",
}

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message
	saveErr error // non-nil if the last edit failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 30
	return ti
}

// settingsValue is the display text of a field.
func (a App) settingsValue(field int) string {
	m := a.cfg.Materiality
	switch field {
	case settingsFieldMinAbs:
		return thresholdText(m.MinAbsDelta)
	case settingsFieldMinPct:
		return thresholdText(m.MinPctDelta)
	case settingsFieldMinBase:
		return thresholdText(m.MinBase)
	case settingsFieldMinShare:
		return thresholdText(m.MinShareTotal)
	case settingsFieldDimension:
		return a.dimension()
	case settingsFieldTheme:
		return theme.Active.Name
	}
	return ""
}

func (a App) updateSettingsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
	case "enter":
		m, cmd := a.settingsStartEdit()
		return m, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldMinPct, settingsFieldMinShare:
		ti.Placeholder = "0.1 = 10%, off disables"
	case settingsFieldDimension:
		ti.Placeholder = strings.Join(a.dims, ", ")
		ti.ShowSuggestions = true
		ti.SetSuggestions(a.dims)
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.ShowSuggestions = true
		ti.SetSuggestions(theme.Names())
	default:
		ti.Placeholder = "amount, off disables"
	}
	ti.SetValue(a.settingsValue(a.settings.cursor))
	ti.Focus()

	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.saveErr = a.settingsSave(strings.TrimSpace(a.settings.input.Value()))
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave applies an edited value to the running dashboard and
// persists it to the config file.
func (a *App) settingsSave(val string) error {
	set := func(*config.Config) {}

	switch field := a.settings.cursor; field {
	case settingsFieldMinAbs, settingsFieldMinPct, settingsFieldMinBase, settingsFieldMinShare:
		v, err := config.ParseThreshold(val)
		if err != nil {
			return err
		}
		set = func(cfg *config.Config) {
			m := &cfg.Materiality
			switch field {
			case settingsFieldMinAbs:
				m.MinAbsDelta = v
			case settingsFieldMinPct:
				m.MinPctDelta = v
			case settingsFieldMinBase:
				m.MinBase = v
			case settingsFieldMinShare:
				m.MinShareTotal = v
			}
		}
	case settingsFieldDimension:
		i := slices.Index(a.dims, val)
		if i < 0 {
			return fmt.Errorf("dimension %q is not in both periods", val)
		}
		a.dimIdx = i
		set = func(cfg *config.Config) {
			cfg.Analysis.Dimension = val
		}
	case settingsFieldTheme:
		if !theme.SetActive(val) {
			theme.SetActive(a.cfg.Appearance.Theme)
			return fmt.Errorf("unknown theme %q", val)
		}
		set = func(cfg *config.Config) {
			cfg.Appearance.Theme = val
		}
	}

	set(&a.cfg)
	a.recompute()

	fileCfg, err := config.LoadFrom(a.opts.ConfigPath)
	if err != nil {
		return err
	}
	set(&fileCfg)
	return config.SaveTo(a.opts.ConfigPath, fileCfg)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	okStyle := lipgloss.NewStyle().Foreground(t.Increase).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Decrease).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	innerW := components.CardInnerWidth(cw)

	var form strings.Builder
	for i, label := range settingsLabels {
		switch {
		case a.settings.editing && i == a.settings.cursor:
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", label)))
			form.WriteString(a.settings.input.View())
		case i == a.settings.cursor:
			line := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-18s ", label+":")) +
				selectedStyle.Render(a.settingsValue(i))
			form.WriteString(line)
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		default:
			form.WriteString(labelStyle.Render(fmt.Sprintf("  %-18s ", label+":")))
			form.WriteString(valueStyle.Render(a.settingsValue(i)))
		}
		form.WriteString("\n")
	}

	form.WriteString("\n")
	switch {
	case a.settings.saveErr != nil:
		form.WriteString(errStyle.Render("Not saved: " + a.settings.saveErr.Error()))
	case a.settings.saved:
		form.WriteString(okStyle.Render("Saved to " + a.opts.ConfigPath))
	case a.settings.editing:
		form.WriteString(dimStyle.Render("Enter to save, Esc to cancel"))
	default:
		form.WriteString(dimStyle.Render("j/k to select, Enter to edit"))
	}

	return components.ContentCard("Settings", form.String(), cw)
}
