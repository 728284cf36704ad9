// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

// Package config loads jamstore settings from defaults, a TOML file,
// an optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/janderssonse/jamstore/internal/domain"
	"github.com/janderssonse/jamstore/internal/platform"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Default remote locations.
const (
	DefaultCatalogURL = "https://raw.githubusercontent.com/relic-se/Fruit_Jam_Store/refs/heads/main/database/applications.json"
	DefaultAPIURL     = "https://api.github.com"
	DefaultRawURL     = "https://raw.githubusercontent.com"
)

// Environment variables recognised by Load.
const (
	EnvCatalogURL  = "JAMSTORE_CATALOG_URL"
	EnvStorage     = "JAMSTORE_STORAGE"
	EnvAPIURL      = "JAMSTORE_API_URL"
	EnvRawURL      = "JAMSTORE_RAW_URL"
	EnvBrandPrefix = "JAMSTORE_BRAND_PREFIX"
	EnvTimeout     = "JAMSTORE_TIMEOUT"
	EnvGitHubToken = "GITHUB_TOKEN" //nolint:gosec // variable name, not a credential
)

// Duration is a time.Duration that reads and writes as "10s" in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}

	*d = Duration(parsed)

	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Layout controls the application grid.
type Layout struct {
	Columns int `toml:"columns"`
	Rows    int `toml:"rows"`
	// NarrowWidth is the terminal width below which a single column is used.
	NarrowWidth int `toml:"narrow_width"`
}

// ColumnsFor returns the grid columns for a terminal width. Narrow
// terminals get a single column; an unknown width (0) gets the full grid.
func (l Layout) ColumnsFor(width int) int {
	if width > 0 && width < l.NarrowWidth {
		return 1
	}

	return l.Columns
}

// PageSize returns the number of slots on a page at a terminal width.
func (l Layout) PageSize(width int) int {
	return l.ColumnsFor(width) * l.Rows
}

// Input controls pointer handling.
type Input struct {
	PollInterval Duration `toml:"poll_interval"`
	IdleLimit    int      `toml:"idle_limit"`
}

// Palette overrides interface colors.
type Palette struct {
	Background string `toml:"background"`
	Foreground string `toml:"foreground"`
	Accent     string `toml:"accent"`
}

// Config holds all jamstore settings.
type Config struct {
	CatalogURL  string   `toml:"catalog_url"`
	APIURL      string   `toml:"api_url"`
	RawURL      string   `toml:"raw_url"`
	Storage     string   `toml:"storage"`
	BrandPrefix string   `toml:"brand_prefix"`
	GitHubToken string   `toml:"github_token"`
	Timeout     Duration `toml:"timeout"`
	ResetDelay  Duration `toml:"reset_delay"`
	Layout      Layout   `toml:"layout"`
	Input       Input    `toml:"input"`
	Palette     Palette  `toml:"palette"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CatalogURL:  DefaultCatalogURL,
		APIURL:      DefaultAPIURL,
		RawURL:      DefaultRawURL,
		Storage:     platform.GetStorageRootWithEnv("", os.Getenv("XDG_DATA_HOME")),
		BrandPrefix: domain.DefaultBrandPrefix,
		Timeout:     Duration(10 * time.Second),
		ResetDelay:  Duration(3 * time.Second),
		Layout: Layout{
			Columns:     2,
			Rows:        3,
			NarrowWidth: 90,
		},
		Input: Input{
			PollInterval: Duration(time.Second / 30),
			IdleLimit:    60,
		},
		Palette: Palette{
			Background: "#1a1b26",
			Foreground: "#c0caf5",
			Accent:     "#7aa2f7",
		},
	}
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// Path is an explicit config file; it must exist when set.
	Path string
	// EnvFile is a dotenv file read when present.
	EnvFile string
	// Getenv looks up environment variables; os.Getenv when nil.
	Getenv func(string) string
}

// Load builds the configuration: defaults, then the TOML file, then
// variables from the dotenv file and the environment. Variables already
// set in the environment win over the dotenv file.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg.Storage = platform.GetStorageRootWithEnv("", getenv("XDG_DATA_HOME"))

	path := opts.Path
	explicit := path != ""

	if !explicit {
		path = platform.GetConfigFileWithEnv(getenv("XDG_CONFIG_HOME"))
	}

	if err := cfg.loadFile(path, explicit); err != nil {
		return nil, err
	}

	cfg.Storage = platform.ExpandPath(cfg.Storage)

	dotenv, err := readDotenv(opts.EnvFile)
	if err != nil {
		return nil, err
	}

	lookup := func(key string) string {
		if value := getenv(key); value != "" {
			return value
		}

		return dotenv[key]
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	cfg.TrimURLs()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("%w: failed to read %s: %w", domain.ErrInvalidConfig, path, err)
	}

	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: failed to parse %s: %w", domain.ErrInvalidConfig, path, err)
	}

	return nil
}

func readDotenv(path string) (map[string]string, error) {
	if path == "" || !platform.FileExists(path) {
		return map[string]string{}, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", domain.ErrInvalidConfig, path, err)
	}

	return values, nil
}

func (c *Config) applyEnv(lookup func(string) string) error {
	strs := map[string]*string{
		EnvCatalogURL:  &c.CatalogURL,
		EnvAPIURL:      &c.APIURL,
		EnvRawURL:      &c.RawURL,
		EnvBrandPrefix: &c.BrandPrefix,
		EnvGitHubToken: &c.GitHubToken,
	}

	for key, field := range strs {
		if value := lookup(key); value != "" {
			*field = value
		}
	}

	if value := lookup(EnvStorage); value != "" {
		c.Storage = platform.ExpandPath(value)
	}

	if value := lookup(EnvTimeout); value != "" {
		var timeout Duration
		if err := timeout.UnmarshalText([]byte(value)); err != nil {
			// Plain integers are seconds.
			secs, convErr := strconv.Atoi(value)
			if convErr != nil {
				return fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, EnvTimeout, err)
			}

			timeout = Duration(time.Duration(secs) * time.Second)
		}

		c.Timeout = timeout
	}

	return nil
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	var problems []string

	urls := []struct{ name, raw string }{
		{"catalog_url", c.CatalogURL},
		{"api_url", c.APIURL},
		{"raw_url", c.RawURL},
	}

	for _, u := range urls {
		parsed, err := url.Parse(u.raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			problems = append(problems, fmt.Sprintf("%s must be an absolute URL, got %q", u.name, u.raw))
		}
	}

	if c.Storage == "" {
		problems = append(problems, "storage must be set")
	}

	if c.Layout.Columns < 1 || c.Layout.Rows < 1 {
		problems = append(problems, fmt.Sprintf("layout must have at least one column and row, got %dx%d", c.Layout.Columns, c.Layout.Rows))
	}

	if c.Timeout <= 0 {
		problems = append(problems, "timeout must be positive")
	}

	if c.ResetDelay < 0 {
		problems = append(problems, "reset_delay must not be negative")
	}

	if c.Input.PollInterval <= 0 {
		problems = append(problems, "input.poll_interval must be positive")
	}

	if c.Input.IdleLimit < 1 {
		problems = append(problems, "input.idle_limit must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(problems, "; "))
	}

	return nil
}

// TrimURLs removes trailing slashes from the base URLs.
func (c *Config) TrimURLs() {
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	c.RawURL = strings.TrimRight(c.RawURL, "/")
}
