// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/janderssonse/jamstore/internal/adapters/network"
	"github.com/janderssonse/jamstore/internal/domain"
	"github.com/janderssonse/jamstore/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGitHub struct {
	server *httptest.Server
	auth   atomic.Value
	hits   atomic.Int32
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()

	fake := &fakeGitHub{}
	fake.auth.Store("")

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fake.hits.Add(1)
			fake.auth.Store(r.Header.Get("Authorization"))
			next.ServeHTTP(w, r)
		})
	})
	api.HandleFunc("/repos/{owner}/{repo}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":           vars["repo"],
			"full_name":      vars["owner"] + "/" + vars["repo"],
			"description":    "A paddle game",
			"default_branch": "trunk",
			"owner":          map[string]any{"login": vars["owner"]},
		})
	})
	api.HandleFunc("/repos/{owner}/{repo}/readme", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte("# Pong\n")),
		})
	})
	api.HandleFunc("/users/{login}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"login":    mux.Vars(r)["login"],
			"name":     "Acme Games",
			"html_url": "https://github.com/" + mux.Vars(r)["login"],
		})
	})
	api.HandleFunc("/repos/{owner}/{repo}/contents/build/metadata.json", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})
	router.HandleFunc("/raw/{owner}/{repo}/{branch}/{path:.*}", func(w http.ResponseWriter, r *http.Request) {
		fake.auth.Store(r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("raw:" + mux.Vars(r)["path"]))
	})

	fake.server = httptest.NewServer(router)
	t.Cleanup(fake.server.Close)

	return fake
}

func (f *fakeGitHub) client(token string) *Client {
	return NewClient(network.NewHTTPClientWith(f.server.Client()), Options{
		APIURL:   f.server.URL + "/api/",
		RawURL:   f.server.URL + "/raw",
		Token:    token,
		Requests: 1000,
		Logger:   logging.Discard(),
	})
}

var pong = domain.RepoID{Owner: "acme", Name: "pong"}

func TestClientURLs(t *testing.T) {
	t.Parallel()

	client := NewClient(network.NewHTTPClient(time.Second), Options{
		APIURL: "https://api.github.com",
		RawURL: "https://raw.githubusercontent.com/",
		Logger: logging.Discard(),
	})

	assert.Equal(t, "https://api.github.com/repos/acme/pong", client.RepoURL(pong))
	assert.Equal(t, "https://raw.githubusercontent.com/acme/pong/main/metadata.json", client.MetadataURL(pong, "main"))
	assert.Equal(t, "https://raw.githubusercontent.com/acme/pong/dev/assets/my%20icon.bmp", client.IconURL(pong, "dev", "/assets/my icon.bmp"))
}

func TestClientRepository(t *testing.T) {
	t.Parallel()

	fake := newFakeGitHub(t)

	repo, err := fake.client("secret").Repository(context.Background(), pong)
	require.NoError(t, err)

	assert.Equal(t, "acme/pong", repo.FullName)
	assert.Equal(t, "trunk", repo.Branch())
	assert.Equal(t, "acme", repo.Owner.DisplayName())
	assert.Equal(t, "Bearer secret", fake.auth.Load())
}

func TestClientTokenOnlySentToAPI(t *testing.T) {
	t.Parallel()

	fake := newFakeGitHub(t)
	client := fake.client("secret")

	body, err := client.Get(context.Background(), client.RawURL(pong, "main", "icon.bmp"))
	require.NoError(t, err)
	assert.Equal(t, "raw:icon.bmp", string(body))
	assert.Empty(t, fake.auth.Load())
}

func TestClientReadmeAndContents(t *testing.T) {
	t.Parallel()

	fake := newFakeGitHub(t)
	client := fake.client("")

	readme, err := client.Readme(context.Background(), pong)
	require.NoError(t, err)
	assert.Equal(t, "# Pong\n", string(readme))

	_, err = client.Contents(context.Background(), pong, "build/metadata.json")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClientUser(t *testing.T) {
	t.Parallel()

	fake := newFakeGitHub(t)

	owner, err := fake.client("").User(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Games", owner.DisplayName())
	assert.Equal(t, "https://github.com/acme", owner.HTMLURL)
}

func TestClientDownloadFile(t *testing.T) {
	t.Parallel()

	fake := newFakeGitHub(t)
	client := fake.client("")
	dest := filepath.Join(t.TempDir(), "pong_metadata.json")

	require.NoError(t, client.DownloadFile(context.Background(), client.MetadataURL(pong, "main"), dest))

	data, err := os.ReadFile(dest) //nolint:gosec
	require.NoError(t, err)
	assert.Equal(t, "raw:metadata.json", string(data))
}

func TestClientRateLimiterHonoursContext(t *testing.T) {
	t.Parallel()

	fake := newFakeGitHub(t)
	client := NewClient(network.NewHTTPClientWith(fake.server.Client()), Options{
		APIURL:   fake.server.URL + "/api",
		RawURL:   fake.server.URL + "/raw",
		Requests: 1,
		Period:   time.Hour,
		Logger:   logging.Discard(),
	})

	_, err := client.Repository(context.Background(), pong)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = client.Repository(ctx, pong)
	require.Error(t, err)
	assert.Equal(t, int32(1), fake.hits.Load())
}
