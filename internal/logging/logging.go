// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

// Package logging builds the structured loggers used across jamstore.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/janderssonse/jamstore/internal/platform"
)

// FileName is the log file written while the terminal UI owns the screen.
const FileName = "jamstore.log"

// New returns a logger writing to w. Verbose enables debug output.
func New(w io.Writer, verbose bool) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           levelFor(verbose),
		Prefix:          "jamstore",
		ReportCaller:    verbose,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// OpenFile returns a logger appending to path. The caller closes the
// returned closer when done.
func OpenFile(path string, verbose bool) (*log.Logger, io.Closer, error) {
	if err := platform.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := log.NewWithOptions(file, log.Options{
		Level:           levelFor(verbose),
		Prefix:          "jamstore",
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       log.LogfmtFormatter,
	})

	return logger, file, nil
}

func levelFor(verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}

	return log.InfoLevel
}
