// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package catalog

import (
	"testing"

	"github.com/janderssonse/jamstore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pongID = domain.RepoID{Owner: "acme", Name: "pong"}

func TestRenderMinimalEntry(t *testing.T) {
	t.Parallel()

	out := Render("Fruit Jam", []Section{{
		Name:    "Games",
		Entries: []Entry{{Title: "Pong"}},
	}})

	assert.Contains(t, out, "\n## Games\n\n### Pong\n")
	assert.NotContains(t, out, "icon]")
}

func TestDetailsFallbacks(t *testing.T) {
	t.Parallel()

	repo := &domain.Repository{FullName: "acme/pong", HTMLURL: "https://github.com/acme/pong"}
	got := details(repo, domain.Owner{Login: "acme"}, domain.BuildMetadata{})

	require.Len(t, got, 3)
	assert.Equal(t, Detail{Label: "Author", Value: "[acme](https://github.com/acme)"}, got[2])
}

func TestResolveKeepsAbsoluteLinks(t *testing.T) {
	t.Parallel()

	opts, fake := setup(t)
	generator := New(fake.client(), opts)

	assert.Equal(t, "https://cdn.example/shot.png", generator.resolve(pongID, "main", "https://cdn.example/shot.png"))
	assert.Equal(t, fake.server.URL+"/raw/acme/pong/main/docs/shot.png", generator.resolve(pongID, "main", "./docs/shot.png"))
}

func TestPreview(t *testing.T) {
	t.Parallel()

	out, err := Preview("# Applications Database\n\n## Games\n", 60)
	require.NoError(t, err)
	assert.Contains(t, out, "Applications Database")
}
