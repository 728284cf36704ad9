// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

// Package main provides the CLI entry point for jamstore.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/janderssonse/jamstore/internal/cli"
	"github.com/janderssonse/jamstore/internal/domain"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewCLI()

	if err := app.Run(ctx, os.Args); err != nil {
		code := domain.ExitCodeFor(err)
		app.Output().ErrorResult(err, code)

		return code
	}

	return domain.ExitSuccess
}
