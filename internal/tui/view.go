// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/janderssonse/jamstore/internal/store"
	"github.com/mattn/go-runewidth"
)

const (
	maxIconRows = 4
	minTextW    = 12
	maxDots     = 10
)

// View implements the tea.Model interface.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 || m.height == 0 {
		return m.Status()
	}

	if m.session == nil || m.layout.TooSmall {
		return m.viewSplash()
	}

	rows := []string{m.viewTitle()}

	if m.session.DialogVisible() {
		rows = append(rows, m.viewDialog())
	} else {
		rows = append(rows, m.viewMenu(), blank(m.width, 1), m.viewGrid())
	}

	rows = append(rows, RenderFooter(m.styles, m.width, m.footerActions()), m.viewStatus())

	return strings.Join(rows, "\n")
}

func (m *Model) title() string {
	return m.deps.Config.BrandPrefix + " Store"
}

func (m *Model) viewSplash() string {
	lines := []string{m.styles.Title.Render(m.title()), ""}

	if m.session != nil && m.layout.TooSmall {
		lines = append(lines, m.styles.ErrorText.Render("Terminal too small"))
	}

	status := m.Status()
	if m.loading() && m.animate {
		status = m.spinner.View() + " " + status
	}

	lines = append(lines, lipgloss.NewStyle().Width(max(m.width-4, 1)).Align(lipgloss.Center).Render(status))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}

func (m *Model) viewTitle() string {
	return fit(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.styles.Title.Render(m.title())), m.width, titleHeight)
}

func (m *Model) viewMenu() string {
	names := m.session.Catalog().Names()
	parts := []string{}

	for i, rect := range m.layout.Menu {
		if rect.Empty() {
			continue
		}

		style := m.styles.Menu
		if names[i] == m.session.Category() {
			style = m.styles.MenuActive
		}

		parts = append(parts, blank(menuGap, menuHeight), style.Width(rect.W-2).Render(truncate(names[i], rect.W-2)))
	}

	return fit(lipgloss.JoinHorizontal(lipgloss.Top, parts...), m.width, menuHeight)
}

func (m *Model) viewGrid() string {
	grid := m.layout.Grid
	page, count := m.session.Page(), m.session.PageCount()

	previous := m.viewArrow("<", page > 0, grid.H)
	next := m.viewArrow(">", page < count-1, grid.H)

	highlight := m.highlighted()
	slots := m.session.Slots()
	rows := make([]string, 0, m.layout.Rows)

	for row := range m.layout.Rows {
		cells := make([]string, 0, m.layout.Columns)

		for col := range m.layout.Columns {
			i := row*m.layout.Columns + col
			cells = append(cells, m.viewCell(slots[i], m.layout.Cells[i], i == highlight))
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	body := fit(lipgloss.JoinVertical(lipgloss.Left, rows...), grid.W, grid.H)
	gap := blank(gridMargin, grid.H)

	return fit(lipgloss.JoinHorizontal(lipgloss.Top, previous, gap, body, gap, next), m.width, grid.H)
}

func (m *Model) viewArrow(glyph string, enabled bool, height int) string {
	style := m.styles.ArrowBlocked
	if enabled {
		style = m.styles.Arrow
	}

	top := (height - arrowHeight) / 2

	return fit(strings.Repeat("\n", top)+style.Render(glyph), arrowWidth, height)
}

// viewCell draws one grid slot: icon art on the left, then the title,
// author and wrapped description.
func (m *Model) viewCell(slot store.Slot, rect Rect, focused bool) string {
	if !slot.Visible {
		return blank(rect.W, rect.H)
	}

	style := m.styles.Cell
	if focused {
		style = m.styles.CellFocused
	}

	innerW, innerH := rect.W-2, rect.H-2

	iconRows := min(innerH, maxIconRows)
	iconCols := iconRows * 2
	textW := innerW

	var art string

	if innerW >= iconCols+1+minTextW {
		art = fit(slot.Icon.Render(iconCols, iconRows), iconCols, innerH)
		textW = innerW - iconCols - 1
	}

	author := truncate(slot.Author, textW-2)
	if slot.Installed {
		author = m.styles.AppAuthor.Render(author) + " " + m.styles.StatusIcon("installed")
	} else {
		author = m.styles.AppAuthor.Render(author)
	}

	text := []string{
		m.styles.AppTitle.Render(truncate(slot.Title, textW)),
		author,
	}

	if slot.Description != "" {
		text = append(text, m.styles.AppText.Width(textW).Render(slot.Description))
	}

	body := fit(strings.Join(text, "\n"), textW, innerH)
	if art != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, art, blank(1, innerH), body)
	}

	return style.Render(fit(body, innerW, innerH))
}

func (m *Model) viewDialog() string {
	rect := m.layout.Dialog
	innerW, innerH := rect.W-2, rect.H-2

	prompt := m.session.Prompt(m.deps.Storage.AppsDir())
	question := lipgloss.NewStyle().Width(innerW).Padding(1, 2).Align(lipgloss.Center).Render(prompt)

	no, yes := m.styles.Button, m.styles.ButtonActive
	if !m.dialogYes {
		no, yes = yes, no
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		blank(m.layout.No.X-rect.X-1, buttonHeight),
		no.Width(buttonWidth-2).Render("No"),
		blank(buttonGap, buttonHeight),
		yes.Width(buttonWidth-2).Render("Yes"),
	)

	inner := strings.Join([]string{
		fit(question, innerW, innerH-buttonHeight-1),
		fit(buttons, innerW, buttonHeight),
		blank(innerW, 1),
	}, "\n")

	box := m.styles.Dialog.Render(inner)

	return fit(lipgloss.JoinHorizontal(lipgloss.Top, blank(rect.X, rect.H), box), m.width, rect.H)
}

func (m *Model) viewStatus() string {
	right := m.session.PageLabel()

	if count := m.session.PageCount(); count > 1 && count <= maxDots {
		dots := m.paginator
		dots.TotalPages = count
		dots.Page = m.session.Page()
		right = dots.View() + "  " + right
	}

	var spin string
	if m.session.Loading() && m.animate {
		spin = m.spinner.View() + " "
	}

	space := m.width - 4 - lipgloss.Width(right) - lipgloss.Width(spin)
	left := truncate(m.session.Status(), space)
	gap := max(space-lipgloss.Width(left), 0)

	return m.styles.StatusBar.Render(" " + spin + left + strings.Repeat(" ", gap+2) + right + " ")
}

func (m *Model) footerActions() []FooterAction {
	if m.session.DialogVisible() {
		return []FooterAction{
			actionFor(m.keys.Yes), actionFor(m.keys.No), actionFor(m.keys.Toggle),
			{Key: KeyEnter, Action: "confirm"}, actionFor(m.keys.Open), actionFor(m.keys.Reset),
		}
	}

	return []FooterAction{
		{Key: "←/→", Action: "page"}, actionFor(m.keys.NextCat), actionFor(m.keys.Categories),
		actionFor(m.keys.Select), actionFor(m.keys.Reload), actionFor(m.keys.Open),
		actionFor(m.keys.Reset), actionFor(m.keys.Quit),
	}
}

func actionFor(binding key.Binding) FooterAction {
	help := binding.Help()

	return FooterAction{Key: help.Key, Action: help.Desc}
}

// blank returns an empty block of w by h cells.
func blank(w, h int) string {
	return fit("", max(w, 0), h)
}

// fit crops or pads s to exactly w by h cells.
func fit(s string, w, h int) string {
	if h <= 0 {
		return ""
	}

	lines := strings.Split(s, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}

	clip := lipgloss.NewStyle().MaxWidth(w)

	for i, line := range lines {
		if lipgloss.Width(line) > w {
			line = clip.Render(line)
		}

		if pad := w - lipgloss.Width(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}

		lines[i] = line
	}

	for len(lines) < h {
		lines = append(lines, strings.Repeat(" ", max(w, 0)))
	}

	return strings.Join(lines, "\n")
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}

	return runewidth.Truncate(s, w, "…")
}
