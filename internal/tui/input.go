// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines keybindings for the storefront.
type KeyMap struct {
	Previous   key.Binding
	Next       key.Binding
	Up         key.Binding
	Down       key.Binding
	NextCat    key.Binding
	PrevCat    key.Binding
	Select     key.Binding
	Reload     key.Binding
	Open       key.Binding
	Yes        key.Binding
	No         key.Binding
	Toggle     key.Binding
	Reset      key.Binding
	Quit       key.Binding
	Categories key.Binding
}

// DefaultKeyMap returns the storefront keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Previous: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev page"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next page"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		NextCat: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "category"),
		),
		PrevCat: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev category"),
		),
		Select: key.NewBinding(
			key.WithKeys(KeyEnter, " "),
			key.WithHelp("enter", "select"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open page"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "no"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("left", "right", "h", "l", "tab", "shift+tab"),
			key.WithHelp("←/→", "choose"),
		),
		Reset: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "reset"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Categories: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "category"),
		),
	}
}

// KeyEnter is the confirm key.
const KeyEnter = "enter"

// pointer tracks the pointing device. A press acts once on its leading
// edge; holding the button does nothing more. The device is released
// after a run of idle polls and reattaches on the next event.
type pointer struct {
	attached bool
	x, y     int
	pressed  bool
	idle     int
}

// observe records a mouse event and reports whether it starts a press.
func (p *pointer) observe(msg tea.MouseMsg) bool {
	p.attached = true
	p.idle = 0
	p.x, p.y = msg.X, msg.Y

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return false
		}

		edge := !p.pressed
		p.pressed = true

		return edge
	case tea.MouseActionRelease:
		p.pressed = false
	case tea.MouseActionMotion:
		if msg.Button == tea.MouseButtonNone {
			p.pressed = false
		}
	}

	return false
}

// poll counts one idle interval and reports whether the device was
// released because limit polls passed without an event.
func (p *pointer) poll(limit int) bool {
	if !p.attached {
		return false
	}

	p.idle++
	if p.idle < limit {
		return false
	}

	p.release()

	return true
}

func (p *pointer) release() {
	p.attached = false
	p.pressed = false
	p.idle = 0
}
