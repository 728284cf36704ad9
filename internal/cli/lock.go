// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"github.com/gofrs/flock"
	"github.com/janderssonse/jamstore/internal/domain"
)

// exclusive takes the process lock held by commands that write to
// storage. The returned function releases it.
func (app *CLI) exclusive() (func(), error) {
	lock := flock.New(app.opts.LockPath)

	locked, err := lock.TryLock()
	if err != nil {
		return nil, domain.NewExitError(domain.ExitSystemError, "failed to acquire process lock", err)
	}

	if !locked {
		return nil, domain.NewExitError(domain.ExitGeneralError, "another jamstore instance is already running", nil)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			app.out.Warningf("failed to release process lock: %v", err)
		}
	}, nil
}
