// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

// Package cli provides the jamstore command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/janderssonse/jamstore/internal/config"
	"github.com/janderssonse/jamstore/internal/console"
	"github.com/janderssonse/jamstore/internal/domain"
	"github.com/janderssonse/jamstore/internal/logging"
	"github.com/janderssonse/jamstore/internal/platform"
	"github.com/janderssonse/jamstore/internal/tui"
	"github.com/toqueteos/webbrowser"
	"github.com/urfave/cli/v3"
)

// Version is set at build time with -ldflags "-X".
var Version = "" //nolint:gochecknoglobals

const (
	defaultEnvFile = ".env"
	lockFile       = "jamstore.lock"
)

// Options replaces the process collaborators of a CLI.
type Options struct {
	Out     io.Writer
	Err     io.Writer
	Getenv  func(string) string
	EnvFile string
	// Confirm asks a yes/no question; nil uses an interactive prompt.
	Confirm func(question string) (bool, error)
	// Launch runs the storefront; nil uses the terminal UI.
	Launch  func(ctx context.Context, deps tui.Deps) error
	OpenURL func(url string) error
	// LockPath is the lock file shared by commands that write to storage.
	LockPath string
}

// CLI is the jamstore command line application.
type CLI struct {
	app  *cli.Command
	out  *console.OutputState
	opts Options

	verbose    bool
	json       bool
	quiet      bool
	plain      bool
	color      string
	timeout    time.Duration
	configPath string
	storage    string
	catalogURL string

	cfg    *config.Config
	logger *log.Logger
}

// NewCLI creates the command line bound to the process environment.
func NewCLI() *CLI {
	return NewCLIWith(Options{})
}

// NewCLIWith creates the command line with replaced collaborators.
func NewCLIWith(opts Options) *CLI {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
		opts.EnvFile = defaultEnvFile
	}

	if opts.Confirm == nil {
		opts.Confirm = confirmPrompt
	}

	if opts.Launch == nil {
		opts.Launch = tui.Launch
	}

	if opts.OpenURL == nil {
		opts.OpenURL = webbrowser.Open
	}

	if opts.LockPath == "" {
		opts.LockPath = filepath.Join(os.TempDir(), lockFile)
	}

	app := &CLI{
		out:  console.NewOutput(opts.Out, opts.Err),
		opts: opts,
	}

	app.app = &cli.Command{
		Name:    platform.AppName,
		Usage:   "Browse and install applications from the Fruit Jam applications database",
		Suggest: true,
		Description: `Shows the applications database as a paginated storefront in the terminal.

COMMON COMMANDS:
  jamstore                          Open the storefront
  jamstore list --category Games    List the applications of a category
  jamstore install owner/repo       Install an application
  jamstore catalog                  Generate the Markdown catalog

Settings are read from ~/.config/jamstore/config.toml, a .env file and
JAMSTORE_* environment variables.`,
		Writer:    opts.Out,
		ErrWriter: opts.Err,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "show progress messages and debug logs on stderr",
				Aliases:     []string{"v"},
				Destination: &app.verbose,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output structured JSON results",
				Aliases:     []string{"j"},
				Destination: &app.json,
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Usage:       "suppress non-essential output",
				Aliases:     []string{"q"},
				Destination: &app.quiet,
			},
			&cli.BoolFlag{
				Name:        "plain",
				Usage:       "output plain text without formatting for scripts",
				Destination: &app.plain,
			},
			&cli.StringFlag{
				Name:        "color",
				Usage:       "color output mode: auto, always, never",
				Value:       "auto",
				Destination: &app.color,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "timeout for network requests (overrides the configuration)",
				Destination: &app.timeout,
			},
			&cli.StringFlag{
				Name:        "config",
				Usage:       "path to the configuration file",
				Destination: &app.configPath,
			},
			&cli.StringFlag{
				Name:        "storage",
				Usage:       "storage root holding apps and the cache",
				Destination: &app.storage,
			},
			&cli.StringFlag{
				Name:        "catalog-url",
				Usage:       "location of the applications database",
				Destination: &app.catalogURL,
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return app.initConfig(ctx, cmd)
		},
		Action:          app.defaultAction,
		Commands:        app.createAllCommands(),
		CommandNotFound: app.commandNotFound,
	}

	return app
}

// Run executes the CLI application.
func (app *CLI) Run(ctx context.Context, args []string) error {
	return app.app.Run(ctx, args)
}

// Output is the console the CLI reports to.
func (app *CLI) Output() *console.OutputState {
	return app.out
}

// initConfig validates global flags and loads the configuration.
func (app *CLI) initConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if app.json && app.plain {
		return ctx, domain.NewExitError(domain.ExitUsageError, "cannot use both --json and --plain flags simultaneously", nil)
	}

	switch app.color {
	case "auto", "always", "never":
	default:
		return ctx, domain.NewExitError(domain.ExitUsageError, "invalid --color value: must be auto, always, or never", nil)
	}

	app.out.SetMode(app.verbose, app.json, app.plain, app.quiet)
	app.out.NoColor = app.color == "never" || (app.color == "auto" && app.opts.Getenv("NO_COLOR") != "")

	cfg, err := config.Load(config.LoadOptions{
		Path:    app.configPath,
		EnvFile: app.opts.EnvFile,
		Getenv:  app.opts.Getenv,
	})
	if err != nil {
		return ctx, domain.NewExitError(domain.ExitConfigError, "failed to load configuration", err)
	}

	if cmd.IsSet("timeout") {
		cfg.Timeout = config.Duration(app.timeout)
	}

	if app.storage != "" {
		cfg.Storage = platform.ExpandPath(app.storage)
	}

	if app.catalogURL != "" {
		cfg.CatalogURL = app.catalogURL
	}

	if err := cfg.Validate(); err != nil {
		return ctx, domain.NewExitError(domain.ExitConfigError, "invalid configuration", err)
	}

	app.cfg = cfg
	app.logger = logging.New(app.out.Err, app.verbose)

	if !app.verbose {
		app.logger.SetLevel(log.WarnLevel)
	}

	app.logger.Debug("configuration loaded", "storage", cfg.Storage, "catalog", cfg.CatalogURL, "timeout", cfg.Timeout.Std())

	return ctx, nil
}

// defaultAction opens the storefront when no command is given.
func (app *CLI) defaultAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Present() {
		return domain.NewExitError(domain.ExitUsageError,
			fmt.Sprintf("'%s' is not a command; run 'jamstore --help' to see available commands", cmd.Args().First()), nil)
	}

	return app.runBrowse(ctx, cmd)
}

// commandNotFound handles unknown commands.
func (app *CLI) commandNotFound(_ context.Context, _ *cli.Command, command string) {
	app.out.Errorf("'%s' is not a command.", command)
	_, _ = fmt.Fprintf(app.out.Err, "\nRun 'jamstore --help' to see available commands.\n")
}

// getVersion returns the build version.
func (app *CLI) getVersion() string {
	if Version != "" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	return "dev"
}

func confirmPrompt(question string) (bool, error) {
	var ok bool

	err := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}

	return ok, nil
}
