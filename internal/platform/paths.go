// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// AppName names the per-user configuration and data directories.
const AppName = "jamstore"

// GetStorageRootWithEnv returns the storage root with custom environment override for testing.
func GetStorageRootWithEnv(storage, xdgDataHome string) string {
	if storage != "" {
		return ExpandPath(storage)
	}

	dataHome := GetXDGDataHomeWithEnv(xdgDataHome)
	if dataHome == "" {
		return ""
	}

	return filepath.Join(dataHome, AppName)
}

// GetConfigFileWithEnv returns the configuration file path with custom environment override for testing.
func GetConfigFileWithEnv(xdgConfigHome string) string {
	configHome := GetXDGConfigHomeWithEnv(xdgConfigHome)
	if configHome == "" {
		return ""
	}

	return filepath.Join(configHome, AppName, "config.toml")
}

// GetXDGConfigHomeWithEnv returns XDG config directory with custom environment override for testing.
func GetXDGConfigHomeWithEnv(xdgConfigHome string) string {
	if xdgConfigHome != "" {
		return xdgConfigHome
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}

	return ""
}

// GetXDGDataHomeWithEnv returns XDG data directory with custom environment override for testing.
func GetXDGDataHomeWithEnv(xdgDataHome string) string {
	if xdgDataHome != "" {
		return xdgDataHome
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share")
	}

	return ""
}

// ExpandPath expands a leading ~ and environment variables.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	return os.ExpandEnv(path)
}
