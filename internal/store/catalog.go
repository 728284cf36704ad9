// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/janderssonse/jamstore/internal/domain"
)

// FetchCatalog downloads and parses the applications database. Transport
// failures wrap domain.ErrCatalogUnavailable; bad content wraps
// domain.ErrMalformedCatalog.
func FetchCatalog(ctx context.Context, fetcher domain.Fetcher, url string) (*domain.Catalog, error) {
	body, err := fetcher.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}

	catalog, err := domain.ParseCatalog(body)
	if err != nil {
		return nil, err
	}

	return catalog, nil
}

// CatalogStatus is the status line for a failed catalog fetch.
func CatalogStatus(err error) string {
	if errors.Is(err, domain.ErrStorageNotMounted) {
		return StatusNoStorage
	}

	msg := strings.TrimPrefix(domain.StatusMessage(err), domain.ErrCatalogUnavailable.Error()+": ")

	return "Unable to fetch applications database! " + msg
}

// StatusNoStorage is shown when the storage root is missing.
const StatusNoStorage = "Storage not mounted! A storage root is required for this application."
