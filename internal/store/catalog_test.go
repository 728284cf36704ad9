// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/janderssonse/jamstore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFetcher struct {
	body string
	err  error
}

func (f staticFetcher) Get(context.Context, string) ([]byte, error) {
	return []byte(f.body), f.err
}

func TestFetchCatalog(t *testing.T) {
	t.Parallel()

	catalog, err := FetchCatalog(context.Background(), staticFetcher{body: `{"Games":["a/b"],"Tools":[]}`}, "db")
	require.NoError(t, err)
	assert.Equal(t, []string{"Games", "Tools"}, catalog.Names())
}

func TestFetchCatalogErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fetcher staticFetcher
		want    error
	}{
		{"transport", staticFetcher{err: errOffline}, domain.ErrCatalogUnavailable},
		{"http status", staticFetcher{err: &domain.HTTPError{StatusCode: 500, URL: "db"}}, domain.ErrCatalogUnavailable},
		{"malformed", staticFetcher{body: `[1,2]`}, domain.ErrMalformedCatalog},
		{"empty", staticFetcher{body: `{}`}, domain.ErrMalformedCatalog},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := FetchCatalog(context.Background(), testCase.fetcher, "db")
			require.ErrorIs(t, err, testCase.want)
		})
	}
}

func TestCatalogStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StatusNoStorage, CatalogStatus(fmt.Errorf("prepare: %w", domain.ErrStorageNotMounted)))
	assert.Equal(t, "Unable to fetch applications database! connection refused", CatalogStatus(errOffline))

	_, err := FetchCatalog(context.Background(), staticFetcher{err: errOffline}, "db")
	assert.Equal(t, "Unable to fetch applications database! connection refused", CatalogStatus(err))
}
