// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

// Package tui implements the interactive storefront using Bubble Tea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/janderssonse/jamstore/internal/config"
	"github.com/janderssonse/jamstore/internal/domain"
	"github.com/janderssonse/jamstore/internal/install"
	"github.com/janderssonse/jamstore/internal/store"
	"github.com/janderssonse/jamstore/internal/tui/styles"
	"golang.org/x/term"
)

// ErrNoTerminal is returned when the TUI is launched in a non-terminal environment.
var ErrNoTerminal = errors.New("TUI requires a terminal environment")

// Deps are the collaborators the storefront drives.
type Deps struct {
	Config    *config.Config
	Storage   *install.Storage
	Catalog   domain.Fetcher
	Populator *store.Populator
	Installer domain.Installer
	Logger    *log.Logger
	// OpenURL shows a web page; nil disables the open action.
	OpenURL func(url string) error
}

type bootMsg struct {
	id      int
	catalog *domain.Catalog
	err     error
}

type resetMsg struct {
	id int
}

type stepMsg struct {
	boot int
	req  store.Request
}

type resultMsg struct {
	boot int
	res  store.Result
}

type installMsg struct {
	boot int
	slot store.Slot
	err  error
}

type openMsg struct {
	url string
	err error
}

// pollMsg drives the idle count of an attached pointer.
type pollMsg struct{}

// Model is the storefront screen.
//
//nolint:containedctx // TUI models require context for proper cancellation propagation
type Model struct {
	ctx    context.Context
	deps   Deps
	styles *styles.Styles
	keys   KeyMap

	width   int
	height  int
	columns int
	layout  Layout

	session *store.Session
	status  string
	bootID  int
	fatal   bool
	cancel  context.CancelFunc

	focus     int
	dialogYes bool

	pointer pointer
	polling bool

	spinner    spinner.Model
	paginator  paginator.Model
	spinning   bool
	animate    bool
	errorPause time.Duration

	quitting bool
}

// New creates the storefront model.
func New(ctx context.Context, deps Deps) *Model {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}

	cfg := deps.Config

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = styles.NewWithPalette(palette(cfg)).PrimaryText

	pages := paginator.New()
	pages.Type = paginator.Dots

	return &Model{
		ctx:        ctx,
		deps:       deps,
		styles:     styles.NewWithPalette(palette(cfg)),
		keys:       DefaultKeyMap(),
		columns:    cfg.Layout.Columns,
		status:     store.StatusLoading,
		spinner:    spin,
		paginator:  pages,
		animate:    true,
		errorPause: store.DefaultErrorPause,
	}
}

func palette(cfg *config.Config) styles.Palette {
	return styles.Palette{
		Background: cfg.Palette.Background,
		Foreground: cfg.Palette.Foreground,
		Accent:     cfg.Palette.Accent,
	}
}

// Run starts the TUI program and blocks until it exits.
func (m *Model) Run() error {
	program := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(m.ctx),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI application failed: %w", err)
	}

	return nil
}

// Launch checks for a terminal and runs the storefront.
func Launch(ctx context.Context, deps Deps) error {
	if !isTerminal() {
		return fmt.Errorf("terminal check failed: %w", ErrNoTerminal)
	}

	return New(ctx, deps).Run()
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // file descriptors fit in int
}

// Init implements the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	return m.boot()
}

// Update implements the tea.Model interface.
//
//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.session == nil {
			m.columns = m.deps.Config.Layout.ColumnsFor(m.width)
		}

		m.relayout()

		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case pollMsg:
		return m, m.handlePoll()

	case bootMsg:
		return m, m.handleBoot(msg)

	case resetMsg:
		if msg.id != m.bootID || !m.fatal {
			return m, nil
		}

		return m, m.boot()

	case stepMsg:
		if m.session == nil || msg.boot != m.bootID {
			return m, nil
		}

		return m, m.step(msg.req)

	case resultMsg:
		return m, m.handleResult(msg)

	case installMsg:
		m.handleInstalled(msg)
		return m, nil

	case openMsg:
		m.handleOpened(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			m.spinning = false
			return m, nil
		}

		var cmd tea.Cmd

		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

// Session returns the running session, or nil while booting.
func (m *Model) Session() *store.Session {
	return m.session
}

// Status returns the status line.
func (m *Model) Status() string {
	if m.session != nil {
		return m.session.Status()
	}

	return m.status
}

func (m *Model) loading() bool {
	if m.session == nil {
		return !m.fatal
	}

	return m.session.Loading()
}

func (m *Model) setStatus(status string) {
	if m.session != nil {
		m.session.SetStatus(status)
		return
	}

	m.status = status
}

func (m *Model) relayout() {
	categories := 0
	if m.session != nil {
		categories = m.session.Catalog().Len()
	}

	m.layout = NewLayout(m.width, m.height, m.columns, m.deps.Config.Layout.Rows, categories)
}

func (m *Model) startSpinner() tea.Cmd {
	if !m.animate || m.spinning {
		return nil
	}

	m.spinning = true

	return m.spinner.Tick
}

// boot prepares storage and fetches the catalog. A failure shows its
// status and schedules a full reset.
func (m *Model) boot() tea.Cmd {
	m.cancelLoad()
	m.bootID++
	m.session = nil
	m.fatal = false
	m.status = store.StatusLoading
	m.focus = 0
	m.columns = m.deps.Config.Layout.ColumnsFor(m.width)
	m.relayout()

	id := m.bootID
	ctx := m.ctx
	deps := m.deps

	fetch := func() tea.Msg {
		if err := deps.Storage.Prepare(); err != nil {
			return bootMsg{id: id, err: err}
		}

		fetchCtx, cancel := context.WithTimeout(ctx, deps.Config.Timeout.Std())
		defer cancel()

		catalog, err := store.FetchCatalog(fetchCtx, deps.Catalog, deps.Config.CatalogURL)

		return bootMsg{id: id, catalog: catalog, err: err}
	}

	return tea.Batch(m.startSpinner(), fetch)
}

func (m *Model) handleBoot(msg bootMsg) tea.Cmd {
	if msg.id != m.bootID {
		return nil
	}

	if msg.err != nil {
		m.fatal = true
		m.status = store.CatalogStatus(msg.err)
		m.deps.Logger.Error("startup failed", "err", msg.err)

		return m.scheduleReset()
	}

	m.deps.Logger.Info("catalog loaded", "categories", msg.catalog.Len())

	m.session = store.NewSession(msg.catalog, store.Options{
		PageSize:    m.deps.Config.Layout.PageSize(m.width),
		BrandPrefix: m.deps.Config.BrandPrefix,
		Installed:   m.deps.Installer.IsInstalled,
		ErrorPause:  m.errorPause,
	})
	m.relayout()
	m.session.SelectCategoryIndex(0)

	return m.startLoad()
}

func (m *Model) scheduleReset() tea.Cmd {
	id := m.bootID

	delay := m.deps.Config.ResetDelay.Std()
	if delay <= 0 {
		return func() tea.Msg { return resetMsg{id: id} }
	}

	return tea.Tick(delay, func(time.Time) tea.Msg { return resetMsg{id: id} })
}

func (m *Model) cancelLoad() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// startLoad abandons any fetch in flight and begins the page load the
// session just set up.
func (m *Model) startLoad() tea.Cmd {
	m.cancelLoad()
	m.focus = min(m.focus, m.session.PageSize()-1)

	return m.next()
}

func (m *Model) next() tea.Cmd {
	req, ok := m.session.Request()
	if !ok {
		return nil
	}

	if req.Delay > 0 {
		boot := m.bootID

		return tea.Tick(req.Delay, func(time.Time) tea.Msg { return stepMsg{boot: boot, req: req} })
	}

	return m.step(req)
}

// step runs one population step. The fetch happens off the update loop;
// its result comes back as a resultMsg.
func (m *Model) step(req store.Request) tea.Cmd {
	if !m.session.Start(req) || !req.NeedsFetch() {
		return nil
	}

	ctx, cancel := context.WithTimeout(m.ctx, m.deps.Config.Timeout.Std())
	m.cancel = cancel

	boot := m.bootID
	populator := m.deps.Populator

	fetch := func() tea.Msg {
		defer cancel()

		return resultMsg{boot: boot, res: populator.Run(ctx, req)}
	}

	return tea.Batch(m.startSpinner(), fetch)
}

func (m *Model) handleResult(msg resultMsg) tea.Cmd {
	if m.session == nil || msg.boot != m.bootID || !m.session.Apply(msg.res) {
		return nil
	}

	if msg.res.Err != nil {
		m.deps.Logger.Warn("population step failed", "repo", msg.res.App.String(), "step", msg.res.Step.String(), "err", msg.res.Err)
	}

	return m.next()
}

func (m *Model) reset() tea.Cmd {
	m.deps.Logger.Info("reset requested")

	return m.boot()
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.cancelLoad()

		return tea.Quit
	case key.Matches(msg, m.keys.Reset):
		return m.reset()
	}

	if m.session == nil {
		return nil
	}

	if m.session.DialogVisible() {
		return m.handleDialogKey(msg)
	}

	return m.handleBrowseKey(msg)
}

func (m *Model) handleDialogKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Yes):
		return m.confirm()
	case key.Matches(msg, m.keys.No):
		m.session.DeselectApplication()
	case key.Matches(msg, m.keys.Toggle):
		m.dialogYes = !m.dialogYes
	case key.Matches(msg, m.keys.Select):
		if m.dialogYes {
			return m.confirm()
		}

		m.session.DeselectApplication()
	case key.Matches(msg, m.keys.Open):
		if slot, ok := m.session.Selected(); ok {
			return m.open(slot)
		}
	}

	return nil
}

func (m *Model) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Previous):
		return m.navigated(m.session.PreviousPage())
	case key.Matches(msg, m.keys.Next):
		return m.navigated(m.session.NextPage())
	case key.Matches(msg, m.keys.NextCat):
		return m.navigated(m.session.CycleCategory(1))
	case key.Matches(msg, m.keys.PrevCat):
		return m.navigated(m.session.CycleCategory(-1))
	case key.Matches(msg, m.keys.Categories):
		return m.navigated(m.session.SelectCategoryIndex(int(msg.Runes[0] - '1')))
	case key.Matches(msg, m.keys.Up):
		m.focus = max(m.focus-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.focus = min(m.focus+1, m.session.PageSize()-1)
	case key.Matches(msg, m.keys.Select):
		m.selectSlot(m.focus)
	case key.Matches(msg, m.keys.Reload):
		return m.navigated(m.session.Reload())
	case key.Matches(msg, m.keys.Open):
		if slot, ok := m.session.Slot(m.focus); ok && slot.Visible {
			return m.open(slot)
		}
	}

	return nil
}

func (m *Model) navigated(changed bool) tea.Cmd {
	if !changed {
		return nil
	}

	return m.startLoad()
}

func (m *Model) selectSlot(i int) {
	if m.session.SelectApplication(i) {
		m.focus = i
		m.dialogYes = false
	}
}

// confirm closes the dialog and hands the application to the installer.
func (m *Model) confirm() tea.Cmd {
	slot, ok := m.session.ConfirmApplication()
	if !ok {
		return nil
	}

	m.session.SetStatus("Installing " + slot.Title + "...")

	ctx := m.ctx
	boot := m.bootID
	installer := m.deps.Installer

	return func() tea.Msg {
		return installMsg{boot: boot, slot: slot, err: installer.Install(ctx, slot.App)}
	}
}

func (m *Model) handleInstalled(msg installMsg) {
	if m.session == nil || msg.boot != m.bootID {
		return
	}

	if msg.err != nil {
		m.deps.Logger.Error("install failed", "repo", msg.slot.App.String(), "err", msg.err)
		m.session.SetStatus(fmt.Sprintf("Unable to install %s! %s", msg.slot.Title, domain.StatusMessage(msg.err)))

		return
	}

	m.session.SetStatus(msg.slot.Title + ": " + install.PendingMessage)
}

// RepositoryPage is the web page for the application in slot.
func RepositoryPage(slot store.Slot) string {
	if slot.Repository != nil && slot.Repository.HTMLURL != "" {
		return slot.Repository.HTMLURL
	}

	return "https://github.com/" + slot.App.String()
}

func (m *Model) open(slot store.Slot) tea.Cmd {
	if m.deps.OpenURL == nil {
		return nil
	}

	url := RepositoryPage(slot)
	openURL := m.deps.OpenURL

	return func() tea.Msg {
		return openMsg{url: url, err: openURL(url)}
	}
}

func (m *Model) handleOpened(msg openMsg) {
	if msg.err != nil {
		m.deps.Logger.Warn("open failed", "url", msg.url, "err", msg.err)
		m.setStatus(fmt.Sprintf("Unable to open %s! %s", msg.url, domain.StatusMessage(msg.err)))

		return
	}

	m.setStatus("Opened " + msg.url)
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	press := m.pointer.observe(msg)

	var cmds []tea.Cmd

	if !m.polling {
		m.polling = true
		cmds = append(cmds, m.poll())
	}

	if press && m.session != nil {
		cmds = append(cmds, m.press(msg.X, msg.Y))
	}

	return tea.Batch(cmds...)
}

func (m *Model) poll() tea.Cmd {
	return tea.Tick(m.deps.Config.Input.PollInterval.Std(), func(time.Time) tea.Msg { return pollMsg{} })
}

// handlePoll counts idle intervals while the pointer is attached. Polling
// stops once the device is released.
func (m *Model) handlePoll() tea.Cmd {
	if m.pointer.poll(m.deps.Config.Input.IdleLimit) || !m.pointer.attached {
		m.polling = false
		return nil
	}

	return m.poll()
}

// press acts on the element under a new pointer press.
func (m *Model) press(x, y int) tea.Cmd {
	target := m.layout.HitTest(x, y, m.session.DialogVisible())

	switch target.Kind {
	case TargetSlot:
		m.selectSlot(target.Index)
	case TargetNext:
		return m.navigated(m.session.NextPage())
	case TargetPrevious:
		return m.navigated(m.session.PreviousPage())
	case TargetCategory:
		return m.navigated(m.session.SelectCategoryIndex(target.Index))
	case TargetYes:
		return m.confirm()
	case TargetNo:
		m.session.DeselectApplication()
	case TargetNone:
	}

	return nil
}

// highlighted is the slot drawn as focused: the one under an attached
// pointer, otherwise the keyboard focus.
func (m *Model) highlighted() int {
	if m.pointer.attached {
		target := m.layout.HitTest(m.pointer.x, m.pointer.y, false)
		if target.Kind == TargetSlot {
			return target.Index
		}

		return -1
	}

	return m.focus
}
