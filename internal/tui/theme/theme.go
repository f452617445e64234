// Package theme defines color themes for the varcop dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps the dashboard's color roles to concrete colors.
type Theme struct {
	Name string

	Background    lipgloss.Color
	Surface       lipgloss.Color // cards and panels
	SurfaceBright lipgloss.Color // selected row
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // focused card, loading and help overlays

	TextDim     lipgloss.Color // hints
	TextMuted   lipgloss.Color // labels
	TextPrimary lipgloss.Color

	Accent       lipgloss.Color
	AccentBright lipgloss.Color

	Increase lipgloss.Color // positive deltas
	Decrease lipgloss.Color // negative deltas
	Flag     lipgloss.Color // materiality markers
	Bar      lipgloss.Color // share bars
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme, a warm paper-inspired dark palette.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	Increase:      lipgloss.Color("#A3B859"),
	Decrease:      lipgloss.Color("#D14D41"),
	Flag:          lipgloss.Color("#DA702C"),
	Bar:           lipgloss.Color("#24837B"),
}

// CatppuccinMocha is a soft pastel theme.
var CatppuccinMocha = Theme{
	Name:          "catppuccin-mocha",
	Background:    lipgloss.Color("#1E1E2E"),
	Surface:       lipgloss.Color("#313244"),
	SurfaceBright: lipgloss.Color("#585B70"),
	Border:        lipgloss.Color("#585B70"),
	BorderAccent:  lipgloss.Color("#89B4FA"),
	TextDim:       lipgloss.Color("#6C7086"),
	TextMuted:     lipgloss.Color("#A6ADC8"),
	TextPrimary:   lipgloss.Color("#CDD6F4"),
	Accent:        lipgloss.Color("#89B4FA"),
	AccentBright:  lipgloss.Color("#B4D0FB"),
	Increase:      lipgloss.Color("#A6E3A1"),
	Decrease:      lipgloss.Color("#F38BA8"),
	Flag:          lipgloss.Color("#FAB387"),
	Bar:           lipgloss.Color("#94E2D5"),
}

// TokyoNight is a cool blue and purple theme.
var TokyoNight = Theme{
	Name:          "tokyo-night",
	Background:    lipgloss.Color("#1A1B26"),
	Surface:       lipgloss.Color("#24283B"),
	SurfaceBright: lipgloss.Color("#414868"),
	Border:        lipgloss.Color("#565F89"),
	BorderAccent:  lipgloss.Color("#7AA2F7"),
	TextDim:       lipgloss.Color("#565F89"),
	TextMuted:     lipgloss.Color("#A9B1D6"),
	TextPrimary:   lipgloss.Color("#C0CAF5"),
	Accent:        lipgloss.Color("#7AA2F7"),
	AccentBright:  lipgloss.Color("#A9C1FF"),
	Increase:      lipgloss.Color("#9ECE6A"),
	Decrease:      lipgloss.Color("#F7768E"),
	Flag:          lipgloss.Color("#FF9E64"),
	Bar:           lipgloss.Color("#7DCFFF"),
}

// Terminal uses the ANSI 16 colors only.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	Increase:      lipgloss.Color("10"),
	Decrease:      lipgloss.Color("1"),
	Flag:          lipgloss.Color("3"),
	Bar:           lipgloss.Color("6"),
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Lookup finds a theme by name.
func Lookup(name string) (Theme, bool) {
	for _, t := range All {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// SetActive selects a theme by name. Unknown names select FlexokiDark and
// report false.
func SetActive(name string) bool {
	t, ok := Lookup(name)
	if !ok {
		t = FlexokiDark
	}
	Active = t
	return ok
}

// DeltaColor picks the increase or decrease color for a signed value.
func (t Theme) DeltaColor(v float64) lipgloss.Color {
	switch {
	case v > 0:
		return t.Increase
	case v < 0:
		return t.Decrease
	}
	return t.TextPrimary
}
