// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

// Package styles defines consistent visual styling for TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette holds the configurable base colors. Empty fields keep the
// Tokyo Night defaults.
type Palette struct {
	Background string
	Foreground string
	Accent     string
}

// Styles contains all the styles used in the TUI.
type Styles struct {
	// Color palette
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Info       lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color

	// Component styles
	Title        lipgloss.Style
	Menu         lipgloss.Style
	MenuActive   lipgloss.Style
	Cell         lipgloss.Style
	CellFocused  lipgloss.Style
	Arrow        lipgloss.Style
	ArrowBlocked lipgloss.Style
	Dialog       lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style
	StatusBar    lipgloss.Style

	// Text styles (cached for performance)
	AppTitle    lipgloss.Style
	AppAuthor   lipgloss.Style
	AppText     lipgloss.Style
	MutedText   lipgloss.Style
	PrimaryText lipgloss.Style
	SuccessText lipgloss.Style
	ErrorText   lipgloss.Style
}

// New creates a new Styles instance with default Tokyo Night theme.
func New() *Styles {
	return NewWithPalette(Palette{})
}

// NewWithPalette creates styles with palette overrides applied.
func NewWithPalette(p Palette) *Styles {
	// Tokyo Night color palette
	primary := pick(p.Accent, "#7aa2f7")      // Blue
	secondary := lipgloss.Color("#bb9af7")    // Purple
	success := lipgloss.Color("#9ece6a")      // Green
	warning := lipgloss.Color("#e0af68")      // Yellow
	errorColor := lipgloss.Color("#f7768e")   // Red
	info := lipgloss.Color("#7dcfff")         // Cyan
	muted := lipgloss.Color("#565f89")        // Gray
	background := pick(p.Background, "#1a1b26")
	foreground := pick(p.Foreground, "#c0caf5")

	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())

	return &Styles{
		Primary:    primary,
		Secondary:  secondary,
		Success:    success,
		Warning:    warning,
		Error:      errorColor,
		Info:       info,
		Muted:      muted,
		Background: background,
		Foreground: foreground,

		Title: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true),

		Menu: box.
			BorderForeground(muted).
			Foreground(foreground).
			Align(lipgloss.Center),

		MenuActive: box.
			BorderForeground(primary).
			Foreground(primary).
			Bold(true).
			Align(lipgloss.Center),

		Cell: box.
			BorderForeground(muted),

		CellFocused: box.
			BorderForeground(secondary),

		Arrow: box.
			BorderForeground(primary).
			Foreground(primary),

		ArrowBlocked: box.
			BorderForeground(muted).
			Foreground(muted),

		Dialog: box.
			BorderForeground(primary).
			Foreground(foreground),

		Button: box.
			BorderForeground(muted).
			Foreground(foreground).
			Align(lipgloss.Center),

		ButtonActive: box.
			BorderForeground(primary).
			Foreground(primary).
			Bold(true).
			Align(lipgloss.Center),

		StatusBar: lipgloss.NewStyle().
			Background(muted).
			Foreground(foreground),

		AppTitle: lipgloss.NewStyle().
			Foreground(foreground).
			Bold(true),

		AppAuthor: lipgloss.NewStyle().
			Foreground(secondary),

		AppText: lipgloss.NewStyle().
			Foreground(foreground),

		MutedText: lipgloss.NewStyle().
			Foreground(muted),

		PrimaryText: lipgloss.NewStyle().
			Foreground(primary),

		SuccessText: lipgloss.NewStyle().
			Foreground(success),

		ErrorText: lipgloss.NewStyle().
			Foreground(errorColor),
	}
}

func pick(override, fallback string) lipgloss.Color {
	if override != "" {
		return lipgloss.Color(override)
	}

	return lipgloss.Color(fallback)
}

// StatusIcon returns styled status icons.
func (s *Styles) StatusIcon(status string) string {
	switch status {
	case "installed":
		return s.SuccessText.Render("✓")
	case "error":
		return s.ErrorText.Render("✗")
	case "loading":
		return s.PrimaryText.Render("⚬")
	default:
		return s.MutedText.Render("•")
	}
}

// Keybinding returns styled keybinding text.
func (s *Styles) Keybinding(key, desc string) string {
	keyStyle := lipgloss.NewStyle().
		Foreground(s.Primary).
		Bold(true)

	return keyStyle.Render("["+key+"]") + " " + s.MutedText.Render(desc)
}
