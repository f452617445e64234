// Package tui provides the interactive Bubble Tea dashboard for varcop.
package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/theirongolddev/varcop/internal/cli"
	"github.com/theirongolddev/varcop/internal/config"
	"github.com/theirongolddev/varcop/internal/model"
	"github.com/theirongolddev/varcop/internal/pipeline"
	"github.com/theirongolddev/varcop/internal/store"
	"github.com/theirongolddev/varcop/internal/tui/components"
	"github.com/theirongolddev/varcop/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// DataLoadedMsg is sent when the initial load of both periods finishes.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	Err      error
	LoadTime time.Duration
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a reload (r) finishes.
type RefreshDataMsg struct {
	Result   *pipeline.LoadResult
	Err      error
	LoadTime time.Duration
}

// Options configures the dashboard.
type Options struct {
	Prior   []string
	Current []string

	// Config is the effective config, flag overrides included.
	Config     config.Config
	ConfigPath string
	NoCache    bool

	// NeedSetup shows the setup form once the data is loaded.
	NeedSetup bool
}

// App is the root Bubble Tea model.
type App struct {
	opts Options
	cfg  config.Config

	// Data
	data     *pipeline.LoadResult
	analysis *pipeline.Analysis
	loaded   bool
	loadErr  error
	loadTime time.Duration

	// Derived for the current view settings
	rows   []model.AccountVariance // material, or every account with showAll
	dims   []string                // dimensions both periods carry
	dimIdx int
	detail accountDetail
	dimSum dimensionSummary

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	showAll   bool
	reloading bool
	reloadErr error

	// Per-tab state
	acct     accountsState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues // shared by App copies; the form writes through it
	needSetup bool
	setupErr  error

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg // progress + completion messages from loader goroutine
}

// Tab indexes, matching components.Tabs.
const (
	tabOverview = iota
	tabAccounts
	tabDimensions
	tabSettings
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	scrollOverhead    = 10 // approximate header + status bar height for half-page calc
	minHalfPageScroll = 1
	minContentHeight  = 5
)

// NewApp creates a new dashboard model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	vals := NewSetupValues(opts.Config)
	return App{
		opts:      opts,
		cfg:       opts.Config,
		needSetup: opts.NeedSetup,
		setupVals: &vals,
		spinner:   sp,
		loadSub:   make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.opts, a.cfg, a.loadSub),
		a.spinner.Tick,
	)
}

// setData installs a fresh load result and recomputes everything derived.
func (a *App) setData(r *pipeline.LoadResult) {
	a.data = r
	a.dims = nil
	for _, d := range r.Current.Schema.Dimensions {
		if r.Prior.Schema.HasDimension(d) {
			a.dims = append(a.dims, d)
		}
	}
	a.dimIdx = 0
	if i := slices.Index(a.dims, a.cfg.Analysis.Dimension); i >= 0 {
		a.dimIdx = i
	}
	a.recompute()
}

// recompute reruns the analysis with the current thresholds and refreshes
// the views that depend on it.
func (a *App) recompute() {
	if a.data == nil {
		return
	}
	analysis, err := pipeline.Analyze(a.data.Prior, a.data.Current, a.cfg.Materiality)
	if err != nil {
		a.loadErr = err
		return
	}
	a.analysis = analysis

	if a.showAll {
		a.rows = analysis.Variances
	} else {
		a.rows = analysis.Material
	}

	if a.acct.cursor >= len(a.rows) {
		a.acct.cursor = len(a.rows) - 1
	}
	if a.acct.cursor < 0 {
		a.acct.cursor = 0
	}
	a.acct.detailScroll = 0

	a.refreshDetail()
	a.refreshDimensionSummary()
}

// dimension is the active driver dimension, or "" when the ledgers share none.
func (a App) dimension() string {
	if len(a.dims) == 0 {
		return ""
	}
	return a.dims[a.dimIdx]
}

func (a *App) cycleDimension() {
	if len(a.dims) == 0 {
		return
	}
	a.dimIdx = (a.dimIdx + 1) % len(a.dims)
	a.refreshDetail()
	a.refreshDimensionSummary()
}

func (a *App) toggleAll() {
	var selected string
	if a.acct.cursor < len(a.rows) {
		selected = a.rows[a.acct.cursor].Account
	}
	a.showAll = !a.showAll
	a.recompute()

	// Keep the selection on the same account when it is still listed.
	for i, r := range a.rows {
		if r.Account == selected {
			a.acct.cursor = i
			a.refreshDetail()
			break
		}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.loadErr != nil || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if !a.loaded {
			return a, nil
		}

		if a.loadErr != nil {
			if key == "q" || key == "esc" {
				return a, tea.Quit
			}
			return a, nil
		}

		// First-run setup form intercepts all keys
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		if a.activeTab == tabSettings && a.settings.editing {
			return a.updateSettingsInput(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if a.activeTab == tabAccounts {
			if m, cmd, ok := a.updateAccountsKey(key); ok {
				return m, cmd
			}
		}
		if a.activeTab == tabSettings {
			if m, cmd, ok := a.updateSettingsKey(key); ok {
				return m, cmd
			}
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "a":
			a.toggleAll()
			return a, nil
		case "d":
			a.cycleDimension()
			return a, nil
		case "r":
			if !a.reloading {
				a.reloading = true
				return a, refreshDataCmd(a.opts, a.cfg)
			}
			return a, nil
		case "left", "shift+tab":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
			return a, nil
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			return a, nil
		}
		if len(key) == 1 {
			if i := components.TabIdxByKey(rune(key[0])); i >= 0 {
				a.activeTab = i
			}
		}
		return a, nil

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		if msg.Err != nil {
			a.loadErr = msg.Err
			return a, nil
		}
		a.setData(msg.Result)

		if a.needSetup {
			a.setupForm = NewSetupForm(a.setupVals, a.dims)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case RefreshDataMsg:
		a.reloading = false
		a.reloadErr = msg.Err
		if msg.Err != nil {
			// Keep showing the previous data.
			return a, nil
		}
		a.loadTime = msg.LoadTime
		a.setData(msg.Result)
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupErr = a.saveSetupConfig()
		if i := slices.Index(a.dims, a.cfg.Analysis.Dimension); i >= 0 {
			a.dimIdx = i
		}
		a.recompute()
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabAccounts && a.acct.cursor > 0 {
			a.acct.cursor--
			a.acct.detailScroll = 0
			a.refreshDetail()
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabAccounts && a.acct.cursor < len(a.rows)-1 {
			a.acct.cursor++
			a.acct.detailScroll = 0
			a.refreshDetail()
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same widths RenderTabBar uses.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // one column separator
	}
	return -1
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.loadErr != nil {
		return a.viewError()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  varcop needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

// overlay centers a card on the themed background.
func (a App) overlay(body string, padV, padH int) string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(padV, padH).
		Render(body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoading() string {
	t := theme.Active

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ varcop"))
	b.WriteString(subtitleStyle.Render(" · Ledger Variance"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := 40
		if barW > a.width-30 {
			barW = a.width - 30
		}
		if barW < 20 {
			barW = 20
		}
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Parsing exports\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
		b.WriteString(subtitleStyle.Render(" files"))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Scanning exports..."))
	}

	return a.overlay(b.String(), 2, 4)
}

func (a App) viewError() string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.Decrease).Background(t.Surface).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	maxW := a.width - 16
	if maxW > 90 {
		maxW = 90
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Could not load the exports"))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Width(maxW).Render(a.loadErr.Error()))
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("Fix the input or rerun with --lenient. Press q to quit."))

	return a.overlay(b.String(), 1, 3)
}

func (a App) viewHelp() string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Bar).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"1 2 3 4", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Navigate accounts"},
			{"g G", "First / Last account"},
			{"J K", "Scroll detail pane"},
			{"^d ^u", "Half-page scroll"},
		}},
		{"Analysis", []struct{ key, desc string }{
			{"a", "Toggle material / all accounts"},
			{"d", "Cycle driver dimension"},
			{"Enter", "Full-screen detail / Edit setting"},
			{"Esc", "Back / Cancel"},
			{"r", "Reload exports"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return a.overlay(b.String(), 1, 3)
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	statusBar := components.RenderStatusBar(w, a.statusInfo()...)

	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := h - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabAccounts:
		content = a.renderAccountsTab(cw, contentH)
	case tabDimensions:
		content = a.renderDimensionsTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusInfo() []string {
	var info []string
	if a.analysis != nil {
		info = append(info, fmt.Sprintf("%d/%d material", len(a.analysis.Material), len(a.analysis.Variances)))
	}
	if d := a.dimension(); d != "" {
		info = append(info, "by "+d)
	}
	switch {
	case a.reloading:
		info = append(info, "reloading...")
	case a.reloadErr != nil:
		info = append(info, "reload failed: "+truncStr(a.reloadErr.Error(), 40))
	case a.setupErr != nil:
		info = append(info, "config not saved")
	default:
		info = append(info, fmt.Sprintf("loaded in %.1fs", a.loadTime.Seconds()))
	}
	return info
}

// ─── Loading ────────────────────────────────────────────────────

// loadDataCmd starts the loader in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(opts Options, cfg config.Config, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled; the next update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			result, err := load(opts, cfg, progressFn)
			sub <- DataLoadedMsg{Result: result, Err: err, LoadTime: time.Since(start)}
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads both periods in the background (no progress UI).
func refreshDataCmd(opts Options, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		result, err := load(opts, cfg, nil)
		return RefreshDataMsg{Result: result, Err: err, LoadTime: time.Since(start)}
	}
}

// load reads both periods, through the parse cache unless disabled.
// Malformed input is reported as is; cache trouble falls back to a full parse.
func load(opts Options, cfg config.Config, progressFn pipeline.ProgressFunc) (*pipeline.LoadResult, error) {
	srcOpts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	if !opts.NoCache {
		if cache, err := store.Open(pipeline.CachePath()); err == nil {
			cr, loadErr := pipeline.LoadWithCache(opts.Prior, opts.Current, cfg.Mapping, srcOpts, cache, progressFn)
			_ = cache.Close()
			if loadErr == nil {
				return &cr.LoadResult, nil
			}
			if model.IsDataError(loadErr) {
				return nil, loadErr
			}
		}
	}
	return pipeline.Load(opts.Prior, opts.Current, cfg.Mapping, srcOpts, progressFn)
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	return cli.Truncate(s, limit)
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background color,
// so gaps between cards and empty lines are filled.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
