package tui

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/varcop/internal/config"
	"github.com/theirongolddev/varcop/internal/model"
	"github.com/theirongolddev/varcop/internal/pipeline"
	"github.com/theirongolddev/varcop/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
)

func post(account string, amount float64, cc, vendor, text string) model.Posting {
	return model.Posting{
		Account:    account,
		Amount:     amount,
		Text:       text,
		Dimensions: map[string]string{"cost_center": cc, "vendor": vendor},
	}
}

func testResult() *pipeline.LoadResult {
	schema := model.Schema{HasText: true, Dimensions: []string{"cost_center", "vendor"}}
	return &pipeline.LoadResult{
		Prior: model.Ledger{Schema: schema, Postings: []model.Posting{
			post("4000", 60000, "100", "acme", "rent office"),
			post("4000", 40000, "200", "acme", "rent storage"),
			post("5000", 1000, "100", "globex", "phone"),
		}},
		Current: model.Ledger{Schema: schema, Postings: []model.Posting{
			post("4000", 110000, "100", "acme", "rent office"),
			post("4000", 40000, "200", "initech", "rent storage"),
			post("5000", 1100, "100", "globex", "phone"),
		}},
	}
}

func loadedApp(t *testing.T) App {
	t.Helper()
	a := NewApp(Options{
		Config:     config.DefaultConfig(),
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
	})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m, _ = m.Update(DataLoadedMsg{Result: testResult()})
	return m.(App)
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	var m tea.Model = a
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m.(App)
}

func TestDataLoadedComputesMaterial(t *testing.T) {
	a := loadedApp(t)

	if len(a.rows) != 1 || a.rows[0].Account != "4000" {
		t.Fatalf("rows = %+v, want only account 4000", a.rows)
	}
	if a.detail.account != "4000" {
		t.Errorf("detail.account = %q, want 4000", a.detail.account)
	}
	if a.detail.dimension != "cost_center" {
		t.Errorf("detail.dimension = %q, want cost_center", a.detail.dimension)
	}
	if len(a.detail.drivers) == 0 || a.detail.drivers[0].Value != "100" {
		t.Errorf("drivers = %+v, want cost center 100 first", a.detail.drivers)
	}
	if a.dimSum.dimension != "cost_center" || len(a.dimSum.rows) != 2 {
		t.Errorf("dimension summary = %+v", a.dimSum)
	}
}

func TestToggleAllKeepsSelection(t *testing.T) {
	a := press(t, loadedApp(t), "2", "a")

	if !a.showAll {
		t.Fatal("a should toggle showAll")
	}
	if len(a.rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(a.rows))
	}
	if a.rows[a.acct.cursor].Account != "4000" {
		t.Errorf("selection moved to %s, want 4000", a.rows[a.acct.cursor].Account)
	}

	a = press(t, a, "j")
	if a.detail.account != "5000" {
		t.Errorf("after j detail.account = %q, want 5000", a.detail.account)
	}

	a = press(t, a, "a")
	if a.showAll || len(a.rows) != 1 || a.acct.cursor != 0 {
		t.Errorf("toggle back: showAll=%v rows=%d cursor=%d", a.showAll, len(a.rows), a.acct.cursor)
	}
}

func TestCycleDimension(t *testing.T) {
	a := press(t, loadedApp(t), "d")

	if a.dimension() != "vendor" {
		t.Fatalf("dimension = %q, want vendor", a.dimension())
	}
	if a.detail.dimension != "vendor" || a.dimSum.dimension != "vendor" {
		t.Errorf("detail=%q summary=%q, want vendor", a.detail.dimension, a.dimSum.dimension)
	}

	a = press(t, a, "d")
	if a.dimension() != "cost_center" {
		t.Errorf("dimension = %q after wrap, want cost_center", a.dimension())
	}
}

func TestTabKeys(t *testing.T) {
	a := loadedApp(t)
	for i, tab := range components.Tabs {
		a = press(t, a, string(tab.Key))
		if a.activeTab != i {
			t.Errorf("key %q -> tab %d, want %d", tab.Key, a.activeTab, i)
		}
	}
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	a := App{}
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab)
		if got := a.tabAtX(pos + w/2); got != i {
			t.Fatalf("x=%d -> tab=%d, want %d", pos+w/2, got, i)
		}
		pos += w + 1
	}
	if got := a.tabAtX(pos + 50); got != -1 {
		t.Errorf("x past the last tab -> %d, want -1", got)
	}
}

func TestLoadErrorView(t *testing.T) {
	a := NewApp(Options{Config: config.DefaultConfig()})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = m.Update(DataLoadedMsg{Err: &model.DataError{Op: "read", Row: 3, Field: "amount", Err: model.ErrBadAmount}})

	view := m.View()
	if !strings.Contains(view, "Could not load") {
		t.Error("error view missing title")
	}
	if !strings.Contains(view, "amount") {
		t.Error("error view missing the cause")
	}
}

func TestSettingsSaveThreshold(t *testing.T) {
	a := press(t, loadedApp(t), "4")
	a.settings.cursor = settingsFieldMinAbs

	if err := a.settingsSave("off"); err != nil {
		t.Fatalf("settingsSave: %v", err)
	}
	if !math.IsInf(a.cfg.Materiality.MinAbsDelta, 1) {
		t.Errorf("MinAbsDelta = %v, want +Inf", a.cfg.Materiality.MinAbsDelta)
	}
	// 4000 still qualifies by pct and share.
	if len(a.rows) != 1 {
		t.Errorf("len(rows) = %d, want 1", len(a.rows))
	}

	saved, err := config.LoadFrom(a.opts.ConfigPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if !math.IsInf(saved.Materiality.MinAbsDelta, 1) {
		t.Errorf("saved MinAbsDelta = %v, want +Inf", saved.Materiality.MinAbsDelta)
	}

	a.settings.cursor = settingsFieldDimension
	if err := a.settingsSave("region"); err == nil {
		t.Error("unknown dimension should fail")
	}
}

func TestHelpToggle(t *testing.T) {
	a := press(t, loadedApp(t), "?")
	if !a.showHelp {
		t.Fatal("? should open help")
	}
	a = press(t, a, "x")
	if a.showHelp {
		t.Error("any key should close help")
	}
}

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	v := NewSetupValues(cfg)
	if v.MinAbsDelta != "10000" || v.MinPctDelta != "0.1" {
		t.Fatalf("prefill = %+v", v)
	}

	v.MinShareTotal = "off"
	v.Dimension = " vendor "
	v.Theme = "no-such-theme"
	if err := v.Apply(&cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !math.IsInf(cfg.Materiality.MinShareTotal, 1) {
		t.Errorf("MinShareTotal = %v, want +Inf", cfg.Materiality.MinShareTotal)
	}
	if cfg.Analysis.Dimension != "vendor" {
		t.Errorf("Dimension = %q, want vendor", cfg.Analysis.Dimension)
	}
	if cfg.Appearance.Theme != config.DefaultConfig().Appearance.Theme {
		t.Errorf("unknown theme should be ignored, got %q", cfg.Appearance.Theme)
	}

	v.MinBase = "lots"
	if err := v.Apply(&cfg); err == nil {
		t.Error("non-numeric threshold should fail")
	}
}
