// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package catalog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Image is a Markdown image reference.
type Image struct {
	Alt string
	URL string
}

// Detail is one "Label: value" line of an entry's details list.
type Detail struct {
	Label string
	Value string
}

// Entry is the rendered record of one repository.
type Entry struct {
	Title       string
	IconURL     string
	Description string
	Screenshot  *Image
	Details     []Detail
}

// Section is a category heading and its entries.
type Section struct {
	Name    string
	Entries []Entry
}

// Render produces the catalog document.
func Render(brand string, sections []Section) string {
	var b strings.Builder

	b.WriteString("# Applications Database\n\n")
	fmt.Fprintf(&b, "Interested in contributing your %s application? Read the [documentation](./CONTRIBUTING.md) to learn more.\n", brand)

	for _, section := range sections {
		fmt.Fprintf(&b, "\n## %s\n", section.Name)

		for _, entry := range section.Entries {
			b.WriteString("\n")
			writeEntry(&b, entry)
		}
	}

	return b.String()
}

func writeEntry(b *strings.Builder, entry Entry) {
	if entry.IconURL != "" {
		fmt.Fprintf(b, "### ![%s icon](%s) %s\n", entry.Title, entry.IconURL, entry.Title)
	} else {
		fmt.Fprintf(b, "### %s\n", entry.Title)
	}

	if entry.Description != "" {
		fmt.Fprintf(b, "\n%s\n", entry.Description)
	}

	if entry.Screenshot != nil {
		fmt.Fprintf(b, "\n![%s](%s)\n", entry.Screenshot.Alt, entry.Screenshot.URL)
	}

	if len(entry.Details) > 0 {
		b.WriteString("\n")

		for _, detail := range entry.Details {
			fmt.Fprintf(b, "- %s: %s\n", detail.Label, detail.Value)
		}
	}
}

// Preview renders Markdown for the terminal.
func Preview(markdown string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return out, nil
}
