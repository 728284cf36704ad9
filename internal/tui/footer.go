// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/janderssonse/jamstore/internal/tui/styles"
)

// footerHeight is the hint row plus its top border.
const footerHeight = 2

// FooterAction represents a key-action pair for footer display.
type FooterAction struct {
	Key    string
	Action string
}

// RenderFooter creates the hint footer. Actions that do not fit the width
// are dropped from the end so the footer never wraps.
func RenderFooter(styleConfig *styles.Styles, width int, actions []FooterAction) string {
	keyStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styleConfig.Primary)

	actionStyle := lipgloss.NewStyle().
		Foreground(styleConfig.Muted)

	formatAction := func(key, action string) string {
		return keyStyle.Render("["+key+"]") + " " + actionStyle.Render(action)
	}

	const padding = 2

	available := width - 2*padding

	parts := make([]string, 0, len(actions))
	used := 0

	for _, action := range actions {
		part := formatAction(action.Key, action.Action)

		w := lipgloss.Width(part)
		if len(parts) > 0 {
			w += 3
		}

		if used+w > available {
			break
		}

		parts = append(parts, part)
		used += w
	}

	return lipgloss.NewStyle().
		Padding(0, padding).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(lipgloss.Color("240")).
		Width(max(width, 2*padding)).
		Render(strings.Join(parts, "   "))
}
