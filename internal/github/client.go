// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

// Package github resolves repository, metadata and raw file locations and
// fetches them with rate limiting and optional token authentication.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/janderssonse/jamstore/internal/adapters/network"
	"github.com/janderssonse/jamstore/internal/domain"
	"golang.org/x/time/rate"
)

// Request pacing defaults.
const (
	DefaultRequests = 10
	DefaultPeriod   = time.Second
)

// MetadataFile is the per-repository metadata document.
const MetadataFile = "metadata.json"

// Options configures a Client.
type Options struct {
	APIURL string
	RawURL string
	Token  string
	// Requests per Period; zero uses the defaults.
	Requests int
	Period   time.Duration
	Logger   *log.Logger
}

// Client talks to the GitHub REST API and raw content host.
type Client struct {
	http    *network.HTTPClient
	apiURL  string
	rawURL  string
	token   string
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewClient creates a Client on top of an HTTP transport.
func NewClient(httpClient *network.HTTPClient, opts Options) *Client {
	requests := opts.Requests
	if requests <= 0 {
		requests = DefaultRequests
	}

	period := opts.Period
	if period <= 0 {
		period = DefaultPeriod
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Client{
		http:    httpClient,
		apiURL:  strings.TrimRight(opts.APIURL, "/"),
		rawURL:  strings.TrimRight(opts.RawURL, "/"),
		token:   opts.Token,
		limiter: rate.NewLimiter(rate.Every(period/time.Duration(requests)), requests),
		logger:  logger,
	}
}

// RepoURL returns the API location of a repository resource.
func (c *Client) RepoURL(id domain.RepoID) string {
	return fmt.Sprintf("%s/repos/%s/%s", c.apiURL, url.PathEscape(id.Owner), url.PathEscape(id.Name))
}

// RawURL returns the raw content location of a file on a branch.
func (c *Client) RawURL(id domain.RepoID, branch, path string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", c.rawURL,
		url.PathEscape(id.Owner), url.PathEscape(id.Name), branch, escapePath(path))
}

// MetadataURL returns the raw location of metadata.json on a branch.
func (c *Client) MetadataURL(id domain.RepoID, branch string) string {
	return c.RawURL(id, branch, MetadataFile)
}

// IconURL returns the raw location of an icon declared in metadata.
func (c *Client) IconURL(id domain.RepoID, branch, iconPath string) string {
	return c.RawURL(id, branch, iconPath)
}

func escapePath(path string) string {
	parts := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}

	return strings.Join(parts, "/")
}

func (c *Client) options(target string) []network.RequestOption {
	if !strings.HasPrefix(target, c.apiURL+"/") {
		return nil
	}

	opts := []network.RequestOption{
		network.WithHeader("Accept", "application/vnd.github+json"),
		network.WithHeader("X-GitHub-Api-Version", "2022-11-28"),
	}

	if c.token != "" {
		opts = append(opts, network.WithHeader("Authorization", "Bearer "+c.token))
	}

	return opts
}

// Get fetches a document, waiting for the rate limiter first.
func (c *Client) Get(ctx context.Context, target string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	c.logger.Debug("fetching", "url", target)

	return c.http.Get(ctx, target, c.options(target)...)
}

// DownloadFile stores a remote file, waiting for the rate limiter first.
func (c *Client) DownloadFile(ctx context.Context, target, destPath string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	c.logger.Debug("downloading", "url", target, "dest", destPath)

	return c.http.DownloadFile(ctx, target, destPath, c.options(target)...)
}

// Repository fetches the repository resource.
func (c *Client) Repository(ctx context.Context, id domain.RepoID) (*domain.Repository, error) {
	body, err := c.Get(ctx, c.RepoURL(id))
	if err != nil {
		return nil, err
	}

	var repo domain.Repository
	if err := json.Unmarshal(body, &repo); err != nil {
		return nil, fmt.Errorf("failed to decode repository %s: %w", id, err)
	}

	return &repo, nil
}

type content struct {
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

func (c *Client) decodeContent(body []byte, what string) ([]byte, error) {
	var file content
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", what, err)
	}

	if file.Encoding != "base64" {
		return []byte(file.Content), nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", what, err)
	}

	return data, nil
}

// Readme fetches the repository README through the contents API.
func (c *Client) Readme(ctx context.Context, id domain.RepoID) ([]byte, error) {
	body, err := c.Get(ctx, c.RepoURL(id)+"/readme")
	if err != nil {
		return nil, err
	}

	return c.decodeContent(body, "README of "+id.String())
}

// Contents fetches a file through the contents API.
func (c *Client) Contents(ctx context.Context, id domain.RepoID, path string) ([]byte, error) {
	body, err := c.Get(ctx, c.RepoURL(id)+"/contents/"+escapePath(path))
	if err != nil {
		return nil, err
	}

	return c.decodeContent(body, path+" of "+id.String())
}

// User fetches an account, used for the owner's display name.
func (c *Client) User(ctx context.Context, login string) (*domain.Owner, error) {
	body, err := c.Get(ctx, c.apiURL+"/users/"+url.PathEscape(login))
	if err != nil {
		return nil, err
	}

	var owner domain.Owner
	if err := json.Unmarshal(body, &owner); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", login, err)
	}

	return &owner, nil
}
