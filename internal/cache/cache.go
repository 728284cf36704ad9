// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

// Package cache stores downloaded documents and images on local storage.
// Entries are written once and never refreshed: an existing file is always
// a hit.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/janderssonse/jamstore/internal/domain"
	"github.com/janderssonse/jamstore/internal/platform"
)

// DirName is the cache directory under the storage root.
const DirName = ".cache"

// Cache is a write-once file cache rooted at a directory.
type Cache struct {
	dir        string
	downloader domain.Downloader
	logger     *log.Logger
}

// New creates a cache in dir that fills misses through downloader.
func New(dir string, downloader domain.Downloader, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}

	return &Cache{dir: dir, downloader: downloader, logger: logger}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Path derives the local path for a resource. The extension is normalised
// to start with a dot. Without a name the last URL segment is used; a name
// that already ends in the extension has it removed before it is re-added.
func (c *Cache) Path(rawURL, ext, name string) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	if name == "" {
		name = lastSegment(rawURL)
	}

	if ext != "" {
		name = strings.TrimSuffix(name, ext)
	}

	name = Sanitize(name)
	if name == "" {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidCacheName, rawURL)
	}

	return filepath.Join(c.dir, name+ext), nil
}

func lastSegment(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}

	return path.Base(rawURL)
}

// Sanitize flattens a name into a single safe file name component.
func Sanitize(name string) string {
	var b strings.Builder

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), ".")
	if strings.Trim(out, "_") == "" {
		return ""
	}

	return out
}

// File returns the local path of a resource, downloading it on a miss.
func (c *Cache) File(ctx context.Context, rawURL, ext, name string) (string, error) {
	dest, err := c.Path(rawURL, ext, name)
	if err != nil {
		return "", err
	}

	if platform.FileExists(dest) {
		c.logger.Debug("cache hit", "path", dest)
		return dest, nil
	}

	if err := platform.EnsureDir(c.dir); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	c.logger.Debug("cache miss", "url", rawURL, "path", dest)

	if err := c.downloader.DownloadFile(ctx, rawURL, dest); err != nil {
		return "", err
	}

	return dest, nil
}

// JSON decodes a cached JSON document into v.
func (c *Cache) JSON(ctx context.Context, rawURL, name string, v any) error {
	dest, err := c.File(ctx, rawURL, ".json", name)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(dest) //nolint:gosec
	if err != nil {
		return fmt.Errorf("failed to read cached %s: %w", filepath.Base(dest), err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode cached %s: %w", filepath.Base(dest), err)
	}

	return nil
}

// Image returns the local path of a cached image. The extension is taken
// from the name, or the URL when the name has none.
func (c *Cache) Image(ctx context.Context, rawURL, name string) (string, error) {
	ext := path.Ext(name)
	if ext == "" {
		ext = path.Ext(lastSegment(rawURL))
	}

	return c.File(ctx, rawURL, ext, name)
}

// Entries returns the number of files in the cache.
func (c *Cache) Entries() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}

		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	count := 0

	for _, entry := range entries {
		if !entry.IsDir() {
			count++
		}
	}

	return count, nil
}

// Clear removes every cached file but keeps the directory and any
// entry named in keep.
func (c *Cache) Clear(keep ...string) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		if slices.Contains(keep, entry.Name()) {
			continue
		}

		if err := os.RemoveAll(filepath.Join(c.dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
	}

	return nil
}
