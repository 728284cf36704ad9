// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

// Package catalog generates the Markdown catalog of the applications
// database from repository data, with a per-repository file cache.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/janderssonse/jamstore/internal/domain"
	"github.com/janderssonse/jamstore/internal/platform"
	"github.com/schollz/progressbar/v3"
)

// Default file names, relative to the database directory.
const (
	DatabaseFile = "applications.json"
	MarkdownFile = "README.md"
	CacheDirName = ".cache"
)

// Cached per-repository documents.
const (
	readmeFile        = "README.md"
	metadataFile      = "metadata.json"
	buildMetadataFile = "build/metadata.json"
	ownerFile         = "owner.json"
)

var (
	readmeTitle = regexp.MustCompile(`(?m)^# (.*)$`)
	screenshot  = regexp.MustCompile(`!\[([^\]]*)\]\(([^\)]+)\)`)
)

// Source is the repository data the generator reads.
type Source interface {
	Repository(ctx context.Context, id domain.RepoID) (*domain.Repository, error)
	Readme(ctx context.Context, id domain.RepoID) ([]byte, error)
	Contents(ctx context.Context, id domain.RepoID, path string) ([]byte, error)
	User(ctx context.Context, login string) (*domain.Owner, error)
	RawURL(id domain.RepoID, branch, path string) string
}

// Options configures a Generator.
type Options struct {
	// Database is the applications database file.
	Database string
	// Output is the Markdown file written.
	Output string
	// CacheDir holds fetched files, one directory per repository.
	CacheDir string
	// Reset clears CacheDir before generating.
	Reset bool
	Brand string
	// Progress receives a progress bar; nil disables it.
	Progress io.Writer
	Logger   *log.Logger
}

// Report summarises a run.
type Report struct {
	Output       string
	Categories   int
	Repositories int
	Skipped      int
	Markdown     string
}

// Generator builds the catalog document.
type Generator struct {
	source Source
	opts   Options
	logger *log.Logger
}

// New creates a Generator.
func New(source Source, opts Options) *Generator {
	if opts.Brand == "" {
		opts.Brand = domain.DefaultBrandPrefix
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Generator{source: source, opts: opts, logger: logger}
}

// Generate reads the database, collects every repository and writes the
// Markdown file. Repositories that cannot be read are skipped.
func (g *Generator) Generate(ctx context.Context) (Report, error) {
	report := Report{Output: g.opts.Output}

	if g.opts.Reset {
		g.logger.Info("resetting cache", "dir", g.opts.CacheDir)

		if err := os.RemoveAll(g.opts.CacheDir); err != nil {
			return report, fmt.Errorf("failed to reset cache: %w", err)
		}
	}

	if err := platform.EnsureDir(g.opts.CacheDir); err != nil {
		return report, fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := os.ReadFile(g.opts.Database)
	if err != nil {
		return report, fmt.Errorf("failed to read database: %w", err)
	}

	database, err := domain.ParseCatalog(data)
	if err != nil {
		return report, err
	}

	total := 0
	for _, category := range database.Categories() {
		total += len(category.Apps)
	}

	bar := g.progress(total)

	sections := make([]Section, 0, database.Len())

	for _, category := range database.Categories() {
		g.logger.Info("generating category", "category", category.Name)

		section := Section{Name: category.Name}

		for _, id := range category.Apps {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			if bar != nil {
				bar.Describe(id.String())
			}

			entry, err := g.Entry(ctx, id)
			if err != nil {
				g.logger.Warn("skipping repository", "repo", id.String(), "err", err)
				report.Skipped++
			} else {
				section.Entries = append(section.Entries, entry)
				report.Repositories++
			}

			if bar != nil {
				_ = bar.Add(1)
			}
		}

		sections = append(sections, section)
	}

	if bar != nil {
		_ = bar.Finish()
	}

	report.Categories = len(sections)
	report.Markdown = Render(g.opts.Brand, sections)

	if err := platform.WriteFileAtomic(g.opts.Output, []byte(report.Markdown)); err != nil {
		return report, fmt.Errorf("failed to write %s: %w", g.opts.Output, err)
	}

	g.logger.Info("catalog written", "output", g.opts.Output, "repositories", report.Repositories, "skipped", report.Skipped)

	return report, nil
}

func (g *Generator) progress(total int) *progressbar.ProgressBar {
	if g.opts.Progress == nil || total == 0 {
		return nil
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(g.opts.Progress),
		progressbar.OptionSetDescription("Reading repositories"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// Entry collects the catalog entry of one repository. Only a failure to
// read the repository itself is an error; missing documents are skipped.
func (g *Generator) Entry(ctx context.Context, id domain.RepoID) (Entry, error) {
	repo, err := g.source.Repository(ctx, id)
	if err != nil {
		return Entry{}, err
	}

	branch := repo.Branch()
	readme := string(g.read(ctx, id, readmeFile, false))

	entry := Entry{Title: repo.Name, Description: repo.Description}
	if match := readmeTitle.FindStringSubmatch(readme); match != nil {
		entry.Title = strings.TrimSpace(match[1])
	}

	var meta domain.AppMetadata
	g.readJSON(ctx, id, metadataFile, &meta)

	if meta.Title != nil && *meta.Title != "" {
		entry.Title = *meta.Title
	}

	if iconPath, ok := meta.IconPath(); ok {
		entry.IconURL = g.source.RawURL(id, branch, iconPath)
	}

	if match := screenshot.FindStringSubmatch(readme); match != nil {
		entry.Screenshot = &Image{Alt: match[1], URL: g.resolve(id, branch, match[2])}
	}

	var build domain.BuildMetadata
	g.readJSON(ctx, id, buildMetadataFile, &build)

	owner := repo.Owner
	if owner.Name == "" {
		var full domain.Owner
		if g.readJSON(ctx, id, ownerFile, &full) && full.Name != "" {
			owner.Name = full.Name
		}
	}

	entry.Details = details(repo, owner, build)

	return entry, nil
}

func details(repo *domain.Repository, owner domain.Owner, build domain.BuildMetadata) []Detail {
	var out []Detail

	if repo.Homepage != "" {
		out = append(out, Detail{Label: "Website", Value: repo.Homepage})
	}

	if build.GuideURL != nil && *build.GuideURL != "" {
		guide := *build.GuideURL
		out = append(out, Detail{Label: "Playground Guide", Value: fmt.Sprintf("[%s](%s)", guide, guide)})
	}

	ownerURL := owner.HTMLURL
	if ownerURL == "" {
		ownerURL = "https://github.com/" + owner.Login
	}

	return append(out,
		Detail{Label: "Latest Release", Value: fmt.Sprintf("[Download](%s/releases/latest)", repo.HTMLURL)},
		Detail{Label: "Code Repository", Value: fmt.Sprintf("[%s](%s)", repo.FullName, repo.HTMLURL)},
		Detail{Label: "Author", Value: fmt.Sprintf("[%s](%s)", owner.DisplayName(), ownerURL)},
	)
}

// resolve makes a README link absolute against the raw content host.
func (g *Generator) resolve(id domain.RepoID, branch, link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}

	return g.source.RawURL(id, branch, strings.TrimPrefix(link, "./"))
}

// read returns a cached repository file, fetching it on a miss. Fetch
// failures are cached as empty so later runs do not retry them.
func (g *Generator) read(ctx context.Context, id domain.RepoID, name string, isJSON bool) []byte {
	path := filepath.Join(g.opts.CacheDir, id.Owner, id.Name, filepath.FromSlash(name))

	if data, err := os.ReadFile(path); err == nil { //nolint:gosec // path is built from the cache dir
		g.logger.Debug("using cached result", "repo", id.String(), "file", name)
		return data
	}

	data, err := g.fetch(ctx, id, name)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}

		g.logger.Debug("file unavailable", "repo", id.String(), "file", name, "err", err)

		data = nil
		if isJSON {
			data = []byte("{}")
		}
	}

	if err := platform.EnsureDir(filepath.Dir(path)); err != nil {
		g.logger.Warn("failed to create cache directory", "path", filepath.Dir(path), "err", err)
		return data
	}

	if err := platform.WriteFileAtomic(path, data); err != nil {
		g.logger.Warn("failed to cache file", "path", path, "err", err)
	}

	return data
}

func (g *Generator) fetch(ctx context.Context, id domain.RepoID, name string) ([]byte, error) {
	switch name {
	case readmeFile:
		return g.source.Readme(ctx, id)
	case ownerFile:
		owner, err := g.source.User(ctx, id.Owner)
		if err != nil {
			return nil, err
		}

		return json.Marshal(owner)
	default:
		return g.source.Contents(ctx, id, name)
	}
}

// readJSON decodes a cached JSON file into v and reports whether it held
// a usable document.
func (g *Generator) readJSON(ctx context.Context, id domain.RepoID, name string, v any) bool {
	data := g.read(ctx, id, name, true)
	if len(data) == 0 {
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		g.logger.Warn("ignoring malformed file", "repo", id.String(), "file", name, "err", err)
		return false
	}

	return true
}
