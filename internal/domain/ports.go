// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import "context"

// Fetcher retrieves remote documents.
type Fetcher interface {
	// Get returns the body of a successful GET request.
	Get(ctx context.Context, url string) ([]byte, error)
}

// Downloader stores a remote resource at a local path.
type Downloader interface {
	// DownloadFile writes the body of url to destPath. Nothing is left at
	// destPath when the download fails.
	DownloadFile(ctx context.Context, url, destPath string) error
}

// Installer installs an application onto local storage.
type Installer interface {
	// Install places the application under the storage apps directory.
	Install(ctx context.Context, id RepoID) error

	// IsInstalled reports whether the application directory exists.
	IsInstalled(name string) bool
}
