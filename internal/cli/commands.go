// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/janderssonse/jamstore/internal/adapters/network"
	"github.com/janderssonse/jamstore/internal/cache"
	"github.com/janderssonse/jamstore/internal/catalog"
	"github.com/janderssonse/jamstore/internal/domain"
	"github.com/janderssonse/jamstore/internal/github"
	"github.com/janderssonse/jamstore/internal/install"
	"github.com/janderssonse/jamstore/internal/logging"
	"github.com/janderssonse/jamstore/internal/platform"
	"github.com/janderssonse/jamstore/internal/store"
	"github.com/janderssonse/jamstore/internal/tui"
	"github.com/urfave/cli/v3"
)

const previewWidth = 80

// services are the collaborators shared by the commands.
type services struct {
	storage   *install.Storage
	github    *github.Client
	cache     *cache.Cache
	populator *store.Populator
	installer *install.StubInstaller
}

func (app *CLI) services() *services {
	client := github.NewClient(network.NewHTTPClient(app.cfg.Timeout.Std()), github.Options{
		APIURL: app.cfg.APIURL,
		RawURL: app.cfg.RawURL,
		Token:  app.cfg.GitHubToken,
		Logger: app.logger,
	})

	storage := install.NewStorage(app.cfg.Storage)
	files := cache.New(storage.CacheDir(), client, app.logger)

	return &services{
		storage:   storage,
		github:    client,
		cache:     files,
		populator: store.NewPopulator(files, client),
		installer: install.NewStubInstaller(storage, app.logger),
	}
}

// exitError wraps err with the exit code its kind maps to.
func exitError(message string, err error) error {
	return domain.NewExitError(domain.ExitCodeFor(err), message, err)
}

func (app *CLI) createAllCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:    "browse",
			Aliases: []string{"tui"},
			Usage:   "Open the storefront",
			Action:  app.runBrowse,
		},
		{
			Name:  "list",
			Usage: "List the applications database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "category",
					Aliases: []string{"c"},
					Usage:   "only list one category",
				},
				&cli.BoolFlag{
					Name:    "details",
					Aliases: []string{"d"},
					Usage:   "fetch titles and authors of each application",
				},
			},
			Action: app.runList,
		},
		{
			Name:      "install",
			Usage:     "Install an application from the database",
			ArgsUsage: "OWNER/REPO",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "yes",
					Aliases: []string{"y"},
					Usage:   "do not ask for confirmation",
				},
			},
			Action: app.runInstall,
		},
		{
			Name:  "catalog",
			Usage: "Generate the Markdown catalog of a database file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "database",
					Usage: "applications database file",
					Value: catalog.DatabaseFile,
				},
				&cli.StringFlag{
					Name:  "output",
					Usage: "Markdown file to write (default: README.md beside the database)",
				},
				&cli.StringFlag{
					Name:  "cache",
					Usage: "cache directory (default: .cache beside the database)",
				},
				&cli.BoolFlag{
					Name:  "reset",
					Usage: "clear the cache before generating",
				},
				&cli.BoolFlag{
					Name:  "preview",
					Usage: "render the result in the terminal",
				},
			},
			Action: app.runCatalog,
		},
		{
			Name:  "cache",
			Usage: "Inspect or clear the download cache",
			Commands: []*cli.Command{
				{
					Name:   "path",
					Usage:  "Print the cache directory",
					Action: app.runCachePath,
				},
				{
					Name:   "clear",
					Usage:  "Remove cached downloads",
					Action: app.runCacheClear,
				},
			},
		},
		{
			Name:   "version",
			Usage:  "Show the version",
			Action: app.runVersion,
		},
	}
}

func (app *CLI) runBrowse(ctx context.Context, _ *cli.Command) error {
	unlock, err := app.exclusive()
	if err != nil {
		return err
	}
	defer unlock()

	svc := app.services()

	logger := logging.Discard()

	// The log file lives on the storage root; an absent root is reported
	// by the storefront itself.
	if platform.IsDir(svc.storage.Root()) {
		fileLogger, closer, err := logging.OpenFile(filepath.Join(svc.storage.CacheDir(), logging.FileName), app.verbose)
		if err != nil {
			app.out.Warningf("logging disabled: %v", err)
		} else {
			defer func() { _ = closer.Close() }()

			logger = fileLogger
		}
	}

	err = app.opts.Launch(ctx, tui.Deps{
		Config:    app.cfg,
		Storage:   svc.storage,
		Catalog:   svc.github,
		Populator: svc.populator,
		Installer: svc.installer,
		Logger:    logger,
		OpenURL:   app.opts.OpenURL,
	})
	if err != nil {
		if errors.Is(err, tui.ErrNoTerminal) {
			return domain.NewExitError(domain.ExitUsageError, "the storefront needs a terminal; try 'jamstore list'", err)
		}

		return domain.NewExitError(domain.ExitGeneralError, "storefront failed", err)
	}

	return nil
}

func (app *CLI) fetchCatalog(ctx context.Context, svc *services) (*domain.Catalog, error) {
	app.out.Progressf("Fetching %s", app.cfg.CatalogURL)

	db, err := store.FetchCatalog(ctx, svc.github, app.cfg.CatalogURL)
	if err != nil {
		return nil, exitError("failed to fetch applications database", err)
	}

	return db, nil
}

func (app *CLI) runList(ctx context.Context, cmd *cli.Command) error {
	svc := app.services()

	db, err := app.fetchCatalog(ctx, svc)
	if err != nil {
		return err
	}

	categories := db.Categories()

	if name := cmd.String("category"); name != "" {
		if !db.Has(name) {
			return domain.NewExitError(domain.ExitUsageError,
				fmt.Sprintf("unknown category %q (available: %s)", name, strings.Join(db.Names(), ", ")),
				domain.ErrUnknownCategory)
		}

		categories = []domain.Category{{Name: name, Apps: db.Apps(name)}}
	}

	if cmd.Bool("details") {
		return app.listDetails(ctx, svc, db, categories)
	}

	switch {
	case app.json:
		app.out.JSONResult("success", map[string]any{"categories": categories})
	case app.plain:
		for _, category := range categories {
			for _, id := range category.Apps {
				app.out.PlainKeyValue(category.Name, id.String())
			}
		}
	default:
		for i, category := range categories {
			if i > 0 {
				app.out.Line("")
			}

			app.out.Line("%s (%d)", app.out.Header(category.Name), len(category.Apps))

			for _, id := range category.Apps {
				app.out.Line("  %s", id.String())
			}
		}
	}

	return nil
}

type listedApp struct {
	Category    string `json:"category"`
	Repository  string `json:"repository"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Installed   bool   `json:"installed"`
}

// listDetails loads every application of the categories the way the
// storefront fills a page.
func (app *CLI) listDetails(ctx context.Context, svc *services, db *domain.Catalog, categories []domain.Category) error {
	unlock, err := app.exclusive()
	if err != nil {
		return err
	}
	defer unlock()

	if err := svc.storage.Prepare(); err != nil {
		return exitError("cannot cache application data", err)
	}

	var listed []listedApp

	for _, category := range categories {
		if len(category.Apps) == 0 {
			continue
		}

		app.out.Progressf("Loading %s", category.Name)

		session := store.NewSession(db, store.Options{
			PageSize:    len(category.Apps),
			BrandPrefix: app.cfg.BrandPrefix,
			Installed:   svc.installer.IsInstalled,
		})
		session.SelectCategory(category.Name)

		if err := store.LoadPage(ctx, session, svc.populator); err != nil {
			return exitError("failed to load applications", err)
		}

		for _, slot := range session.Slots() {
			if !slot.Visible {
				continue
			}

			listed = append(listed, listedApp{
				Category:    category.Name,
				Repository:  slot.App.String(),
				Title:       slot.Title,
				Author:      slot.Author,
				Description: slot.Description,
				Installed:   slot.Installed,
			})
		}
	}

	switch {
	case app.json:
		app.out.JSONResult("success", map[string]any{"applications": listed})
	case app.plain:
		for _, item := range listed {
			app.out.Line("%s\t%s\t%s\t%s\t%t", item.Category, item.Repository, item.Title, item.Author, item.Installed)
		}
	default:
		rows := [][]string{{"Category", "Repository", "Title", "Author", "Installed"}}

		for _, item := range listed {
			installed := ""
			if item.Installed {
				installed = "yes"
			}

			rows = append(rows, []string{item.Category, item.Repository, item.Title, item.Author, installed})
		}

		app.out.Table(rows)
	}

	return nil
}

func (app *CLI) runInstall(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return domain.NewExitError(domain.ExitUsageError, "usage: jamstore install OWNER/REPO", nil)
	}

	id, err := domain.ParseRepoID(cmd.Args().First())
	if err != nil {
		return exitError("invalid application", err)
	}

	unlock, err := app.exclusive()
	if err != nil {
		return err
	}
	defer unlock()

	svc := app.services()

	if err := svc.storage.Check(); err != nil {
		return exitError("cannot install", err)
	}

	db, err := app.fetchCatalog(ctx, svc)
	if err != nil {
		return err
	}

	if _, ok := db.Find(id); !ok {
		return domain.NewExitError(domain.ExitNotFoundError,
			fmt.Sprintf("%s is not in the applications database", id), domain.ErrNotFound)
	}

	title := domain.DeriveTitle(id.Name, app.cfg.BrandPrefix)
	author := id.Owner

	if repo, err := svc.github.Repository(ctx, id); err != nil {
		app.logger.Warn("repository details unavailable", "repo", id.String(), "err", err)
	} else if repo.Owner.Login != "" {
		author = repo.Owner.Login
	}

	if !cmd.Bool("yes") {
		if app.json || app.plain {
			return domain.NewExitError(domain.ExitUsageError, "confirmation required: pass --yes", nil)
		}

		ok, err := app.opts.Confirm(store.Prompt(title, author, svc.storage.AppDir(id.Name)))
		if err != nil {
			return domain.NewExitError(domain.ExitGeneralError, "confirmation failed", err)
		}

		if !ok {
			app.out.Infof("Cancelled")
			return nil
		}
	}

	app.out.Progressf("Installing %s...", title)

	if err := svc.installer.Install(ctx, id); err != nil {
		return domain.NewExitError(domain.ExitAppError, fmt.Sprintf("Unable to install %s!", title), err)
	}

	if app.json {
		app.out.JSONResult("success", map[string]any{
			"repository": id.String(),
			"title":      title,
			"target":     svc.storage.AppDir(id.Name),
			"message":    install.PendingMessage,
		})

		return nil
	}

	app.out.Warningf("%s: %s", title, install.PendingMessage)

	return nil
}

func (app *CLI) runCatalog(ctx context.Context, cmd *cli.Command) error {
	database := cmd.String("database")
	dir := filepath.Dir(database)

	output := cmd.String("output")
	if output == "" {
		output = filepath.Join(dir, catalog.MarkdownFile)
	}

	cacheDir := cmd.String("cache")
	if cacheDir == "" {
		cacheDir = filepath.Join(dir, catalog.CacheDirName)
	}

	var progress io.Writer
	if !app.json && !app.plain && !app.quiet {
		progress = app.out.Err
	}

	generator := catalog.New(app.services().github, catalog.Options{
		Database: database,
		Output:   output,
		CacheDir: cacheDir,
		Reset:    cmd.Bool("reset"),
		Brand:    app.cfg.BrandPrefix,
		Progress: progress,
		Logger:   app.logger,
	})

	report, err := generator.Generate(ctx)
	if err != nil {
		return exitError("failed to generate catalog", err)
	}

	switch {
	case app.json:
		app.out.JSONResult("success", map[string]any{
			"output":       report.Output,
			"categories":   report.Categories,
			"repositories": report.Repositories,
			"skipped":      report.Skipped,
		})
	case app.plain:
		app.out.PlainKeyValue("output", report.Output)
		app.out.PlainKeyValue("repositories", fmt.Sprint(report.Repositories))
		app.out.PlainKeyValue("skipped", fmt.Sprint(report.Skipped))
	default:
		app.out.Successf("Wrote %s (%d repositories in %d categories)", report.Output, report.Repositories, report.Categories)

		if report.Skipped > 0 {
			app.out.Warningf("%d repositories could not be read", report.Skipped)
		}
	}

	if cmd.Bool("preview") && !app.json {
		rendered, err := catalog.Preview(report.Markdown, previewWidth)
		if err != nil {
			return domain.NewExitError(domain.ExitGeneralError, "failed to preview catalog", err)
		}

		_, _ = fmt.Fprint(app.out.Out, rendered)
	}

	return nil
}

func (app *CLI) runCachePath(_ context.Context, _ *cli.Command) error {
	dir := install.NewStorage(app.cfg.Storage).CacheDir()

	if app.json {
		app.out.JSONResult("success", map[string]any{"path": dir})
		return nil
	}

	app.out.Line("%s", dir)

	return nil
}

func (app *CLI) runCacheClear(_ context.Context, _ *cli.Command) error {
	unlock, err := app.exclusive()
	if err != nil {
		return err
	}
	defer unlock()

	svc := app.services()

	if err := svc.storage.Check(); err != nil {
		return exitError("cannot clear cache", err)
	}

	entries, err := svc.cache.Entries()
	if err != nil {
		return domain.NewExitError(domain.ExitSystemError, "failed to read cache", err)
	}

	if err := svc.cache.Clear(logging.FileName); err != nil {
		return domain.NewExitError(domain.ExitSystemError, "failed to clear cache", err)
	}

	if remaining, err := svc.cache.Entries(); err == nil {
		entries -= remaining
	}

	if app.json {
		app.out.JSONResult("success", map[string]any{"removed": entries, "path": svc.cache.Dir()})
		return nil
	}

	app.out.Successf("Removed %d cached files from %s", entries, svc.cache.Dir())

	return nil
}

func (app *CLI) runVersion(_ context.Context, _ *cli.Command) error {
	version := app.getVersion()

	switch {
	case app.json:
		app.out.JSONResult("success", map[string]any{"version": version})
	case app.plain:
		app.out.Line("%s", version)
	default:
		app.out.Line("jamstore %s", version)
	}

	return nil
}
