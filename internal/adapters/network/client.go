// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

// Package network provides the HTTP transport used for catalog, metadata and icon downloads.
package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/janderssonse/jamstore/internal/domain"
)

// UserAgent is sent with every request.
const UserAgent = "jamstore"

// maxBodySize bounds documents read into memory.
const maxBodySize = 32 << 20

// RequestOption adjusts an outgoing request.
type RequestOption func(*http.Request)

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// HTTPClient implements domain.Fetcher and domain.Downloader.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a new HTTP client with timeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
			},
		},
	}
}

// NewHTTPClientWith wraps an existing http.Client, e.g. one from httptest.
func NewHTTPClientWith(client *http.Client) *HTTPClient {
	return &HTTPClient{client: client}
}

func (c *HTTPClient) do(ctx context.Context, url string, opts []RequestOption) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)

	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()

		return nil, &domain.HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	return resp, nil
}

// Get returns the body of a successful GET request.
func (c *HTTPClient) Get(ctx context.Context, url string, opts ...RequestOption) ([]byte, error) {
	resp, err := c.do(ctx, url, opts)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

// DownloadFile downloads a file from a URL to a destination path. The body
// is written to a temporary file first, so a failed download never leaves
// a partial file at destPath.
func (c *HTTPClient) DownloadFile(ctx context.Context, url, destPath string, opts ...RequestOption) error {
	resp, err := c.do(ctx, url, opts)
	if err != nil {
		return err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	out, err := os.CreateTemp(dir, "."+filepath.Base(destPath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}

	tmpName := out.Name()

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmpName, destPath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move download into place: %w", err)
	}

	return nil
}
