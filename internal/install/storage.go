// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

// Package install manages the storage root applications are installed to.
package install

import (
	"fmt"
	"path/filepath"

	"github.com/janderssonse/jamstore/internal/cache"
	"github.com/janderssonse/jamstore/internal/domain"
	"github.com/janderssonse/jamstore/internal/platform"
)

// AppsDir is the directory under the storage root holding installed applications.
const AppsDir = "apps"

// Storage is the writable root the store installs and caches into.
type Storage struct {
	root string
}

// NewStorage creates a Storage at root.
func NewStorage(root string) *Storage {
	return &Storage{root: root}
}

// Root returns the storage root.
func (s *Storage) Root() string {
	return s.root
}

// AppsDir returns the directory installed applications live in.
func (s *Storage) AppsDir() string {
	return filepath.Join(s.root, AppsDir)
}

// CacheDir returns the download cache directory.
func (s *Storage) CacheDir() string {
	return filepath.Join(s.root, cache.DirName)
}

// AppDir returns the install location of a repository.
func (s *Storage) AppDir(name string) string {
	return filepath.Join(s.AppsDir(), name)
}

// Check verifies the storage root is present.
func (s *Storage) Check() error {
	if s.root == "" || !platform.IsDir(s.root) {
		return fmt.Errorf("%w: %s", domain.ErrStorageNotMounted, s.root)
	}

	return nil
}

// Prepare checks the root and creates the apps and cache directories.
func (s *Storage) Prepare() error {
	if err := s.Check(); err != nil {
		return err
	}

	for _, dir := range []string{s.AppsDir(), s.CacheDir()} {
		if err := platform.EnsureDir(dir); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return nil
}

// IsInstalled reports whether an application directory exists.
func (s *Storage) IsInstalled(name string) bool {
	if name == "" || name != filepath.Base(name) {
		return false
	}

	return platform.IsDir(s.AppDir(name))
}
