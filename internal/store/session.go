// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

// Package store holds the storefront session: category and page
// navigation, the per-page population state machine and the selection
// behind the install confirmation dialog.
package store

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/janderssonse/jamstore/internal/domain"
	"github.com/janderssonse/jamstore/internal/icon"
)

// Status lines shown while a page loads.
const (
	StatusLoading    = "Loading..."
	StatusPageLoaded = "Page loaded!"
	StatusEmpty      = "No applications in this category"
)

// DefaultErrorPause keeps a repository error on screen before moving on.
const DefaultErrorPause = time.Second

// Slot is one grid cell and the display record of the application in it.
type Slot struct {
	// Index is the position of the application within its category.
	Index       int
	App         domain.RepoID
	Visible     bool
	Title       string
	Author      string
	Description string
	Icon        icon.Icon
	Installed   bool
	Repository  *domain.Repository
}

// HasIcon reports whether the slot shows a downloaded icon.
func (s Slot) HasIcon() bool {
	return !s.Icon.IsDefault()
}

// Options configures a Session.
type Options struct {
	PageSize    int
	BrandPrefix string
	// Installed reports whether an application directory exists.
	Installed func(name string) bool
	// ErrorPause delays the next step after a repository fetch fails.
	ErrorPause time.Duration
}

// Session is the state of one storefront run. It is not safe for
// concurrent use; the UI drives it from a single goroutine.
type Session struct {
	catalog *domain.Catalog
	opts    Options

	category string
	page     int
	slots    []Slot
	selected int

	generation int
	loading    bool
	cursor     int
	end        int
	step       Step
	branch     string
	iconPath   string
	pause      bool

	status string
}

// NewSession creates a session over catalog with no category selected.
func NewSession(catalog *domain.Catalog, opts Options) *Session {
	if opts.PageSize < 1 {
		opts.PageSize = 1
	}

	if opts.Installed == nil {
		opts.Installed = func(string) bool { return false }
	}

	return &Session{
		catalog:  catalog,
		opts:     opts,
		slots:    make([]Slot, opts.PageSize),
		selected: -1,
		status:   StatusLoading,
	}
}

// Catalog returns the catalog the session browses.
func (s *Session) Catalog() *domain.Catalog {
	return s.catalog
}

// Category returns the selected category, or "" before one is chosen.
func (s *Session) Category() string {
	return s.category
}

// Page returns the zero-based page index.
func (s *Session) Page() int {
	return s.page
}

// PageSize returns the number of slots per page.
func (s *Session) PageSize() int {
	return s.opts.PageSize
}

// PageCount returns the number of pages in the selected category.
func (s *Session) PageCount() int {
	n := len(s.apps())

	return (n + s.opts.PageSize - 1) / s.opts.PageSize
}

// PageLabel returns "current/total", e.g. "1/3".
func (s *Session) PageLabel() string {
	count := s.PageCount()
	if count == 0 {
		return "0/0"
	}

	return fmt.Sprintf("%d/%d", s.page+1, count)
}

// Slots returns a copy of the page slots.
func (s *Session) Slots() []Slot {
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)

	return out
}

// Slot returns one page slot.
func (s *Session) Slot(i int) (Slot, bool) {
	if i < 0 || i >= len(s.slots) {
		return Slot{}, false
	}

	return s.slots[i], true
}

// Status returns the current status line.
func (s *Session) Status() string {
	return s.status
}

// SetStatus replaces the status line.
func (s *Session) SetStatus(status string) {
	s.status = status
}

// Loading reports whether a page is still being populated.
func (s *Session) Loading() bool {
	return s.loading
}

func (s *Session) apps() []domain.RepoID {
	if s.category == "" {
		return nil
	}

	return s.catalog.Apps(s.category)
}

// SelectCategory switches to a category and starts loading its first page.
// Unknown or already active categories, and any request while the dialog
// is open, are ignored. It reports whether the state changed.
func (s *Session) SelectCategory(name string) bool {
	if s.DialogVisible() || name == s.category || !s.catalog.Has(name) {
		return false
	}

	s.category = name
	s.page = 0

	if !s.ShowPage(0) {
		s.hideSlots()
		s.generation++
		s.loading = false
		s.status = StatusEmpty
	}

	return true
}

// SelectCategoryIndex selects the category at a display position.
func (s *Session) SelectCategoryIndex(i int) bool {
	names := s.catalog.Names()
	if i < 0 || i >= len(names) {
		return false
	}

	return s.SelectCategory(names[i])
}

// CycleCategory moves the selection by delta positions, wrapping around.
func (s *Session) CycleCategory(delta int) bool {
	n := s.catalog.Len()
	if n == 0 {
		return false
	}

	current := s.catalog.IndexOf(s.category)
	if current < 0 {
		current = 0
		delta = 0
	}

	return s.SelectCategoryIndex(((current+delta)%n + n) % n)
}

// ShowPage displays a page of the selected category and starts loading it.
// Pages whose first item is out of range are ignored. Showing the current
// page again reloads it.
func (s *Session) ShowPage(page int) bool {
	if s.DialogVisible() {
		return false
	}

	apps := s.apps()
	start := page * s.opts.PageSize

	if page < 0 || start >= len(apps) {
		return false
	}

	s.page = page
	s.hideSlots()
	s.generation++
	s.loading = true
	s.cursor = start
	s.end = min(start+s.opts.PageSize, len(apps))
	s.step = StepRepository
	s.pause = false

	return true
}

// NextPage advances one page, stopping at the last.
func (s *Session) NextPage() bool {
	return s.ShowPage(s.page + 1)
}

// PreviousPage goes back one page, stopping at the first.
func (s *Session) PreviousPage() bool {
	return s.ShowPage(s.page - 1)
}

// Reload repopulates the current page.
func (s *Session) Reload() bool {
	return s.ShowPage(s.page)
}

func (s *Session) hideSlots() {
	for i := range s.slots {
		s.slots[i] = Slot{}
	}
}

// SelectApplication opens the confirmation dialog for the application in
// a visible slot. It reports whether the dialog opened.
func (s *Session) SelectApplication(slot int) bool {
	if s.DialogVisible() || slot < 0 || slot >= len(s.slots) {
		return false
	}

	if s.page*s.opts.PageSize+slot >= len(s.apps()) || !s.slots[slot].Visible {
		return false
	}

	s.selected = slot

	return true
}

// DeselectApplication closes the dialog without acting.
func (s *Session) DeselectApplication() bool {
	if !s.DialogVisible() {
		return false
	}

	s.selected = -1

	return true
}

// ConfirmApplication closes the dialog and returns the application to install.
func (s *Session) ConfirmApplication() (Slot, bool) {
	selected, ok := s.Selected()
	if !ok {
		return Slot{}, false
	}

	s.selected = -1

	return selected, true
}

// Selected returns the slot the dialog is open for.
func (s *Session) Selected() (Slot, bool) {
	if s.selected < 0 {
		return Slot{}, false
	}

	return s.slots[s.selected], true
}

// DialogVisible reports whether the confirmation dialog is open.
func (s *Session) DialogVisible() bool {
	return s.selected >= 0
}

// NavigationVisible reports whether categories, arrows and the grid are
// shown. It is always the opposite of DialogVisible.
func (s *Session) NavigationVisible() bool {
	return !s.DialogVisible()
}

// Prompt is the dialog question for the selected application, which
// installs into its own directory under appsDir.
func (s *Session) Prompt(appsDir string) string {
	selected, ok := s.Selected()
	if !ok {
		return ""
	}

	return Prompt(selected.Title, selected.Author, filepath.Join(appsDir, selected.App.Name))
}

// Prompt is the install question for an application.
func Prompt(title, author, target string) string {
	return fmt.Sprintf("Would you like to download and install %q by %s to your SD card at %s?", title, author, target)
}
