// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package catalog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/janderssonse/jamstore/internal/adapters/network"
	"github.com/janderssonse/jamstore/internal/github"
	"github.com/janderssonse/jamstore/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const database = `{"Games": ["acme/pong"], "Tools": ["acme/gone"]}`

type fakeGitHub struct {
	server *httptest.Server
	mu     sync.Mutex
	hits   map[string]int
}

func (f *fakeGitHub) count(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.hits[r.URL.Path]++
}

func (f *fakeGitHub) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.hits[path]
}

func encoded(w http.ResponseWriter, body string) {
	_ = json.NewEncoder(w).Encode(map[string]string{
		"encoding": "base64",
		"content":  base64.StdEncoding.EncodeToString([]byte(body)),
	})
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()

	fake := &fakeGitHub{hits: map[string]int{}}

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fake.count(r)

			if strings.HasPrefix(r.URL.Path, "/api/repos/acme/gone") {
				http.NotFound(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	})
	api.HandleFunc("/repos/{owner}/{repo}", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":           "pong",
			"full_name":      "acme/pong",
			"description":    "A paddle game",
			"default_branch": "trunk",
			"html_url":       "https://github.com/acme/pong",
			"homepage":       "https://pong.example",
			"owner":          map[string]any{"login": "acme", "html_url": "https://github.com/acme"},
		})
	})
	api.HandleFunc("/repos/{owner}/{repo}/readme", func(w http.ResponseWriter, _ *http.Request) {
		encoded(w, "# Pong Deluxe\n\nSome text.\n\n![Gameplay](docs/shot.png)\n")
	})
	api.HandleFunc("/repos/{owner}/{repo}/contents/metadata.json", func(w http.ResponseWriter, _ *http.Request) {
		encoded(w, `{"title": "Pong", "icon": "icon.bmp"}`)
	})
	api.HandleFunc("/repos/{owner}/{repo}/contents/build/metadata.json", func(w http.ResponseWriter, _ *http.Request) {
		encoded(w, `{"guide_url": "https://learn.example/pong"}`)
	})
	api.HandleFunc("/users/{login}", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"login": "acme", "name": "Acme Games"})
	})

	fake.server = httptest.NewServer(router)
	t.Cleanup(fake.server.Close)

	return fake
}

func (f *fakeGitHub) client() *github.Client {
	return github.NewClient(network.NewHTTPClientWith(f.server.Client()), github.Options{
		APIURL:   f.server.URL + "/api",
		RawURL:   f.server.URL + "/raw",
		Requests: 1000,
		Logger:   logging.Discard(),
	})
}

func setup(t *testing.T) (Options, *fakeGitHub) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DatabaseFile), []byte(database), 0o600))

	return Options{
		Database: filepath.Join(dir, DatabaseFile),
		Output:   filepath.Join(dir, MarkdownFile),
		CacheDir: filepath.Join(dir, CacheDirName),
		Logger:   logging.Discard(),
	}, newFakeGitHub(t)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	opts, fake := setup(t)
	raw := fake.server.URL + "/raw/acme/pong/trunk/"

	report, err := New(fake.client(), opts).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Categories)
	assert.Equal(t, 1, report.Repositories)
	assert.Equal(t, 1, report.Skipped)

	want := "# Applications Database\n\n" +
		"Interested in contributing your Fruit Jam application? Read the [documentation](./CONTRIBUTING.md) to learn more.\n" +
		"\n## Games\n\n" +
		"### ![Pong icon](" + raw + "icon.bmp) Pong\n\n" +
		"A paddle game\n\n" +
		"![Gameplay](" + raw + "docs/shot.png)\n\n" +
		"- Website: https://pong.example\n" +
		"- Playground Guide: [https://learn.example/pong](https://learn.example/pong)\n" +
		"- Latest Release: [Download](https://github.com/acme/pong/releases/latest)\n" +
		"- Code Repository: [acme/pong](https://github.com/acme/pong)\n" +
		"- Author: [Acme Games](https://github.com/acme)\n" +
		"\n## Tools\n"

	assert.Equal(t, want, report.Markdown)

	written, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	assert.Equal(t, want, string(written))
}

func TestGenerateUsesCache(t *testing.T) {
	t.Parallel()

	opts, fake := setup(t)

	_, err := New(fake.client(), opts).Generate(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(opts.CacheDir, "acme", "pong", "build", "metadata.json"))
	assert.Equal(t, 1, fake.hitCount("/api/repos/acme/pong/readme"))

	_, err = New(fake.client(), opts).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, fake.hitCount("/api/repos/acme/pong"), "repository data is always fetched")
	assert.Equal(t, 1, fake.hitCount("/api/repos/acme/pong/readme"))
	assert.Equal(t, 1, fake.hitCount("/api/users/acme"))

	opts.Reset = true

	_, err = New(fake.client(), opts).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, fake.hitCount("/api/repos/acme/pong/readme"))
}

func TestGenerateCachesMissingFilesAsEmpty(t *testing.T) {
	t.Parallel()

	opts, fake := setup(t)
	generator := New(fake.client(), opts)

	// A file the fake does not serve.
	data := generator.read(context.Background(), pongID, "extra.json", true)
	assert.Equal(t, "{}", string(data))

	cached, err := os.ReadFile(filepath.Join(opts.CacheDir, "acme", "pong", "extra.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(cached))
}

func TestGenerateMissingDatabase(t *testing.T) {
	t.Parallel()

	opts, fake := setup(t)
	opts.Database = filepath.Join(t.TempDir(), "nope.json")

	_, err := New(fake.client(), opts).Generate(context.Background())
	require.Error(t, err)
	assert.NoFileExists(t, opts.Output)
}

func TestGenerateCancelled(t *testing.T) {
	t.Parallel()

	opts, fake := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(fake.client(), opts).Generate(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
