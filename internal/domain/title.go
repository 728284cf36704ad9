// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultBrandPrefix is stripped from derived titles.
const DefaultBrandPrefix = "Fruit Jam"

var separatorReplacer = strings.NewReplacer("-", " ", "_", " ")

// DeriveTitle turns a repository name into a display title: separators become
// spaces, every word is title-cased and a leading brand prefix is removed.
//
//	DeriveTitle("fruit-jam-drum-machine", "Fruit Jam") == "Drum Machine"
//	DeriveTitle("my_cool_app", "Fruit Jam") == "My Cool App"
func DeriveTitle(repoName, brandPrefix string) string {
	title := titleWords(repoName)

	brand := titleWords(brandPrefix)
	if brand == "" {
		return title
	}

	for title == brand || strings.HasPrefix(title, brand+" ") {
		title = strings.TrimSpace(strings.TrimPrefix(title, brand))
	}

	return title
}

func titleWords(s string) string {
	caser := cases.Title(language.Und)

	words := strings.Fields(separatorReplacer.Replace(s))
	for i, word := range words {
		words[i] = caser.String(word)
	}

	return strings.Join(words, " ")
}
