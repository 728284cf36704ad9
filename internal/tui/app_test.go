// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package tui

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/janderssonse/jamstore/internal/config"
	"github.com/janderssonse/jamstore/internal/domain"
	"github.com/janderssonse/jamstore/internal/install"
	"github.com/janderssonse/jamstore/internal/logging"
	"github.com/janderssonse/jamstore/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `{
	"Games": ["adafruit/Fruit_Jam_Pong", "octo/missing", "octo/g3", "octo/g4", "octo/g5", "octo/g6", "octo/g7"],
	"Tools": ["octo/fruit-jam-term"],
	"Empty": []
}`

var errBoom = errors.New("boom")

type catalogFetcher struct {
	mu    sync.Mutex
	body  string
	err   error
	calls int
}

func (f *catalogFetcher) Get(context.Context, string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	return []byte(f.body), f.err
}

func (f *catalogFetcher) set(body string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.body, f.err = body, err
}

type testLocator struct{}

func (testLocator) RepoURL(id domain.RepoID) string { return "api:" + id.String() }

func (testLocator) MetadataURL(id domain.RepoID, _ string) string { return "meta:" + id.String() }

func (testLocator) IconURL(id domain.RepoID, _, path string) string { return "icon:" + id.String() + ":" + path }

// testCache serves repository documents for every app except octo/missing.
type testCache struct{}

func (testCache) JSON(_ context.Context, url, _ string, v any) error {
	id, ok := strings.CutPrefix(url, "api:")
	if !ok || id == "octo/missing" {
		return &domain.HTTPError{StatusCode: 404, URL: url}
	}

	owner, name, _ := strings.Cut(id, "/")

	return json.Unmarshal([]byte(`{
		"name": "`+name+`",
		"description": "About `+name+`",
		"default_branch": "main",
		"html_url": "https://example.test/`+id+`",
		"owner": {"login": "`+owner+`"}
	}`), v)
}

func (testCache) Image(_ context.Context, url, _ string) (string, error) {
	return "", &domain.HTTPError{StatusCode: 404, URL: url}
}

type recordingInstaller struct {
	mu        sync.Mutex
	err       error
	requested []domain.RepoID
}

func (i *recordingInstaller) Install(_ context.Context, id domain.RepoID) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.requested = append(i.requested, id)

	return i.err
}

func (i *recordingInstaller) IsInstalled(name string) bool {
	return name == "fruit-jam-term"
}

type harness struct {
	model     *Model
	fetcher   *catalogFetcher
	installer *recordingInstaller
	opened    []string
}

func newHarness(t *testing.T, width, height int) *harness {
	t.Helper()

	cfg := config.Default()
	cfg.Storage = t.TempDir()
	cfg.ResetDelay = 0

	h := &harness{
		fetcher:   &catalogFetcher{body: testCatalog},
		installer: &recordingInstaller{},
	}

	h.model = New(context.Background(), Deps{
		Config:    cfg,
		Storage:   install.NewStorage(cfg.Storage),
		Catalog:   h.fetcher,
		Populator: store.NewPopulator(testCache{}, testLocator{}),
		Installer: h.installer,
		Logger:    logging.Discard(),
		OpenURL: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
	})
	h.model.animate = false
	h.model.errorPause = 0

	h.model.Update(tea.WindowSizeMsg{Width: width, Height: height})

	return h
}

// drive runs cmd and every command it produces, feeding messages back
// into the model. Timer messages are left for the test to send.
func (h *harness) drive(t *testing.T, cmd tea.Cmd) {
	t.Helper()

	queue := []tea.Cmd{cmd}

	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 1000, "command loop did not settle")

		next := queue[0]
		queue = queue[1:]

		if next == nil {
			continue
		}

		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case nil, pollMsg, resetMsg, spinner.TickMsg, tea.QuitMsg:
		default:
			_, c := h.model.Update(msg)
			queue = append(queue, c)
		}
	}
}

func (h *harness) send(t *testing.T, msg tea.Msg) {
	t.Helper()

	_, cmd := h.model.Update(msg)
	h.drive(t, cmd)
}

func (h *harness) key(t *testing.T, k string) {
	t.Helper()

	var msg tea.KeyMsg

	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}

	h.send(t, msg)
}

func booted(t *testing.T, width, height int) *harness {
	t.Helper()

	h := newHarness(t, width, height)
	h.drive(t, h.model.Init())
	require.NotNil(t, h.model.Session())

	return h
}

func TestBootLoadsFirstCategory(t *testing.T) {
	t.Parallel()

	h := booted(t, 100, 32)
	session := h.model.Session()

	assert.Equal(t, "Games", session.Category())
	assert.Equal(t, "1/2", session.PageLabel())
	assert.Equal(t, store.StatusPageLoaded, h.model.Status())
	assert.False(t, session.Loading())

	pong, _ := session.Slot(0)
	assert.Equal(t, "Pong", pong.Title)
	assert.Equal(t, "adafruit", pong.Author)
	assert.Equal(t, "About Fruit_Jam_Pong", pong.Description)
	assert.False(t, pong.HasIcon())

	missing, _ := session.Slot(1)
	assert.True(t, missing.Visible)
	assert.Empty(t, missing.Description)

	assert.DirExists(t, filepath.Join(h.model.deps.Storage.Root(), install.AppsDir))
}

func TestNarrowTerminalUsesOneColumn(t *testing.T) {
	t.Parallel()

	h := booted(t, 60, 30)

	assert.Equal(t, 3, h.model.Session().PageSize())
	assert.Equal(t, "1/3", h.model.Session().PageLabel())
}

func TestBootFailureResets(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 100, 32)
	h.fetcher.set("", errBoom)

	h.drive(t, h.model.Init())

	assert.Nil(t, h.model.Session())
	assert.Equal(t, "Unable to fetch applications database! boom", h.model.Status())

	stale := h.model.bootID - 1
	h.send(t, resetMsg{id: stale})
	assert.Nil(t, h.model.Session(), "stale reset is ignored")

	h.fetcher.set(testCatalog, nil)
	h.send(t, resetMsg{id: h.model.bootID})

	require.NotNil(t, h.model.Session())
	assert.Equal(t, "Games", h.model.Session().Category())
}

func TestBootWithoutStorage(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 100, 32)
	h.model.deps.Storage = install.NewStorage(filepath.Join(t.TempDir(), "unmounted"))

	h.drive(t, h.model.Init())

	assert.Nil(t, h.model.Session())
	assert.Equal(t, store.StatusNoStorage, h.model.Status())
	assert.Zero(t, h.fetcher.calls)
}

func TestKeyboardNavigation(t *testing.T) {
	t.Parallel()

	h := booted(t, 100, 32)
	session := h.model.Session()

	h.key(t, "right")
	assert.Equal(t, "2/2", session.PageLabel())

	last, _ := session.Slot(0)
	assert.Equal(t, "G7", last.Title)

	h.key(t, "right")
	assert.Equal(t, "2/2", session.PageLabel(), "last page stays put")

	h.key(t, "tab")
	assert.Equal(t, "Tools", session.Category())
	assert.Equal(t, "1/1", session.PageLabel())

	term, _ := session.Slot(0)
	assert.Equal(t, "Term", term.Title)
	assert.True(t, term.Installed)

	h.key(t, "3")
	assert.Equal(t, "Empty", session.Category())
	assert.Equal(t, "0/0", session.PageLabel())
	assert.Equal(t, store.StatusEmpty, h.model.Status())

	h.key(t, "1")
	assert.Equal(t, "Games", session.Category())
	assert.Equal(t, "1/2", session.PageLabel())
}

func TestDialogFlow(t *testing.T) {
	t.Parallel()

	h := booted(t, 100, 32)
	session := h.model.Session()

	h.key(t, "enter")
	require.True(t, session.DialogVisible())
	assert.False(t, session.NavigationVisible())
	assert.Contains(t, h.model.View(), "Would you like to download and install")

	h.key(t, "right")
	assert.Equal(t, "1/2", session.PageLabel(), "paging is disabled while the dialog is open")

	h.key(t, "n")
	assert.False(t, session.DialogVisible())
	assert.Empty(t, h.installer.requested)

	h.key(t, "down")
	h.key(t, "enter")
	require.True(t, session.DialogVisible())

	h.key(t, "o")
	assert.Equal(t, []string{"https://github.com/octo/missing"}, h.opened, "no repository data falls back to the GitHub page")

	h.key(t, "y")
	assert.False(t, session.DialogVisible())
	require.Len(t, h.installer.requested, 1)
	assert.Equal(t, "octo/missing", h.installer.requested[0].String())
	assert.Equal(t, "Missing: "+install.PendingMessage, h.model.Status())
}

func TestDialogNamesInstallDirectory(t *testing.T) {
	t.Parallel()

	h := booted(t, 240, 32)

	h.key(t, "enter")
	require.True(t, h.model.Session().DialogVisible())

	target := filepath.Join(h.model.deps.Storage.AppsDir(), "Fruit_Jam_Pong")
	assert.Contains(t, h.model.View(), `Would you like to download and install "Pong" by adafruit to your SD card at `+target+"?")
}

func TestDialogEnterFollowsFocusedButton(t *testing.T) {
	t.Parallel()

	h := booted(t, 100, 32)

	h.key(t, "enter")
	h.key(t, "enter")
	assert.False(t, h.model.Session().DialogVisible())
	assert.Empty(t, h.installer.requested, "No has focus when the dialog opens")

	h.key(t, "enter")
	h.key(t, "tab")
	h.key(t, "enter")
	assert.Len(t, h.installer.requested, 1)
}

func TestInstallFailureStatus(t *testing.T) {
	t.Parallel()

	h := booted(t, 100, 32)
	h.installer.err = errBoom

	h.key(t, "enter")
	h.key(t, "y")

	assert.Equal(t, "Unable to install Pong! boom", h.model.Status())
}

func TestPointerPressActsOnce(t *testing.T) {
	t.Parallel()

	h := booted(t, 100, 32)
	session := h.model.Session()
	cell := h.model.layout.Cells[0]

	h.send(t, press(cell.X+1, cell.Y+1))
	require.True(t, session.DialogVisible())

	no := h.model.layout.No
	h.send(t, press(no.X+1, no.Y+1))
	assert.True(t, session.DialogVisible(), "held press does not act again")

	h.send(t, release(no.X+1, no.Y+1))
	h.send(t, press(no.X+1, no.Y+1))
	assert.False(t, session.DialogVisible())

	next := h.model.layout.Next
	h.send(t, release(0, 0))
	h.send(t, press(next.X+1, next.Y+1))
	assert.Equal(t, "2/2", session.PageLabel())

	menu := h.model.layout.Menu[1]
	h.send(t, release(0, 0))
	h.send(t, press(menu.X+1, menu.Y+1))
	assert.Equal(t, "Tools", session.Category())
}

func TestPointerHoverHighlightsAndIdles(t *testing.T) {
	t.Parallel()

	h := booted(t, 100, 32)
	h.model.deps.Config.Input.IdleLimit = 2

	cell := h.model.layout.Cells[3]
	h.send(t, hover(cell.X+2, cell.Y+2))
	assert.Equal(t, 3, h.model.highlighted())
	assert.True(t, h.model.polling)

	h.send(t, pollMsg{})
	h.send(t, pollMsg{})

	assert.False(t, h.model.pointer.attached)
	assert.False(t, h.model.polling)
	assert.Equal(t, h.model.focus, h.model.highlighted())
}

func TestEscapeResets(t *testing.T) {
	t.Parallel()

	h := booted(t, 100, 32)
	h.key(t, "tab")
	require.Equal(t, "Tools", h.model.Session().Category())

	h.key(t, "esc")

	require.NotNil(t, h.model.Session())
	assert.Equal(t, "Games", h.model.Session().Category())
	assert.Equal(t, 2, h.fetcher.calls)
}

func TestStaleMessagesAreDropped(t *testing.T) {
	t.Parallel()

	h := booted(t, 100, 32)
	stale := h.model.bootID - 1

	_, cmd := h.model.Update(resultMsg{boot: stale, res: store.Result{}})
	assert.Nil(t, cmd)

	_, cmd = h.model.Update(stepMsg{boot: stale})
	assert.Nil(t, cmd)

	_, cmd = h.model.Update(bootMsg{id: stale, err: errBoom})
	assert.Nil(t, cmd)
	assert.Equal(t, store.StatusPageLoaded, h.model.Status())
}

func TestErrorPauseSchedulesNextStep(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 100, 32)
	h.model.errorPause = time.Millisecond
	h.drive(t, h.model.Init())

	require.NotNil(t, h.model.Session())
	assert.Equal(t, store.StatusPageLoaded, h.model.Status())

	third, _ := h.model.Session().Slot(2)
	assert.Equal(t, "G3", third.Title)
}

func TestQuit(t *testing.T) {
	t.Parallel()

	h := booted(t, 100, 32)

	_, cmd := h.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, h.model.View())
}

func TestViewFillsTerminal(t *testing.T) {
	t.Parallel()

	h := booted(t, 100, 32)

	assertScreen := func(view string) {
		t.Helper()

		lines := strings.Split(view, "\n")
		require.Len(t, lines, 32)

		for i, line := range lines {
			assert.Equal(t, 100, lipgloss.Width(line), "line %d", i)
		}
	}

	view := h.model.View()
	assertScreen(view)
	assert.Contains(t, view, "Fruit Jam Store")
	assert.Contains(t, view, "Games")
	assert.Contains(t, view, "Pong")
	assert.Contains(t, view, "1/2")

	h.key(t, "enter")
	assertScreen(h.model.View())
}

func TestViewBeforeCatalog(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 100, 32)

	assert.Contains(t, h.model.View(), store.StatusLoading)

	h.model.Update(tea.WindowSizeMsg{Width: 20, Height: 5})
	assert.Contains(t, h.model.View(), "Fruit Jam Store")
}
