// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common domain errors.
var (
	ErrStorageNotMounted  = errors.New("storage not mounted")
	ErrCatalogUnavailable = errors.New("unable to fetch applications database")
	ErrMalformedCatalog   = errors.New("malformed applications database")
	ErrInvalidRepoID      = errors.New("invalid repository identifier")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCacheName   = errors.New("invalid cache name")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// Exit codes returned by the command line.
const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitNotFoundError = 5
	ExitNetworkError  = 11
	ExitSystemError   = 12
	ExitAppError      = 22
)

// HTTPError reports a non-success HTTP status.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s (%s)", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// Is lets errors.Is(err, ErrNotFound) match a 404.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// ExitError carries a process exit code alongside a message.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// NewExitError creates an ExitError.
func NewExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

func (e *ExitError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fmt.Sprintf("exit status %d", e.Code)
	}
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCodeFor maps an error to the exit code the command line reports.
func ExitCodeFor(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var httpErr *HTTPError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrInvalidRepoID), errors.Is(err, ErrUnknownCategory):
		return ExitUsageError
	case errors.Is(err, ErrCatalogUnavailable):
		return ExitNetworkError
	case errors.Is(err, ErrNotFound):
		return ExitNotFoundError
	case errors.As(err, &httpErr):
		return ExitNetworkError
	case errors.Is(err, ErrStorageNotMounted):
		return ExitSystemError
	case errors.Is(err, ErrMalformedCatalog):
		return ExitAppError
	default:
		return ExitGeneralError
	}
}

// StatusMessage renders an error as a single status-line string.
func StatusMessage(err error) string {
	if err == nil {
		return ""
	}

	return strings.Join(strings.Fields(err.Error()), " ")
}
