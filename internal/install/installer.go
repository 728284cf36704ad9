// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package install

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/janderssonse/jamstore/internal/domain"
)

// PendingMessage describes what the stub does with a request.
const PendingMessage = "installation is not available yet"

// StubInstaller accepts install requests without downloading anything.
type StubInstaller struct {
	storage *Storage
	logger  *log.Logger
}

// NewStubInstaller creates an installer for storage.
func NewStubInstaller(storage *Storage, logger *log.Logger) *StubInstaller {
	if logger == nil {
		logger = log.Default()
	}

	return &StubInstaller{storage: storage, logger: logger}
}

// Install logs the request and returns. Storage is left untouched.
func (i *StubInstaller) Install(ctx context.Context, id domain.RepoID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := i.storage.Check(); err != nil {
		return err
	}

	i.logger.Info("install requested", "repo", id.String(), "target", i.storage.AppDir(id.Name), "note", PendingMessage)

	return nil
}

// IsInstalled reports whether an application directory exists.
func (i *StubInstaller) IsInstalled(name string) bool {
	return i.storage.IsInstalled(name)
}
