// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/janderssonse/jamstore/internal/domain"
	"github.com/janderssonse/jamstore/internal/icon"
)

// Step is one network round trip in populating a slot.
type Step int

// Population steps, in order.
const (
	StepRepository Step = iota
	StepMetadata
	StepIcon
	// StepFinish marks the end of a page load; it performs no fetch.
	StepFinish
)

func (s Step) String() string {
	switch s {
	case StepRepository:
		return "repository"
	case StepMetadata:
		return "metadata"
	case StepIcon:
		return "icon"
	case StepFinish:
		return "finish"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Request describes the next population step. It is a value snapshot and
// may be handed to another goroutine to perform the fetch.
type Request struct {
	Generation int
	Slot       int
	Index      int
	App        domain.RepoID
	Step       Step
	Branch     string
	IconPath   string
	// Delay is how long to wait before starting this step.
	Delay time.Duration
}

// NeedsFetch reports whether the step performs a network round trip.
func (r Request) NeedsFetch() bool {
	return r.Step != StepFinish
}

// Status is the line shown while the step runs.
func (r Request) Status() string {
	switch r.Step {
	case StepRepository:
		return "Reading repository data from " + r.App.String()
	case StepMetadata:
		return "Reading metadata from " + r.App.String()
	case StepIcon:
		return "Downloading icon from " + r.App.String()
	default:
		return StatusPageLoaded
	}
}

// Result is the outcome of a fetched step.
type Result struct {
	Request

	Repository *domain.Repository
	Metadata   *domain.AppMetadata
	Icon       icon.Icon
	Err        error
}

// Request returns the next step of the page load in progress.
func (s *Session) Request() (Request, bool) {
	if !s.loading {
		return Request{}, false
	}

	req := Request{
		Generation: s.generation,
		Step:       s.step,
		Branch:     s.branch,
		IconPath:   s.iconPath,
	}

	if s.pause {
		req.Delay = s.opts.ErrorPause
	}

	if s.cursor >= s.end {
		req.Step = StepFinish
		return req, true
	}

	req.Index = s.cursor
	req.Slot = s.cursor - s.page*s.opts.PageSize
	req.App = s.apps()[s.cursor]

	return req, true
}

func (s *Session) current(req Request) bool {
	if req.Generation != s.generation || !s.loading {
		return false
	}

	if req.Step == StepFinish {
		return s.cursor >= s.end
	}

	return req.Step == s.step && req.Index == s.cursor
}

// Start marks a step as begun: the status line names it and, for the
// first step of an item, the slot is shown with its defaults. Stale
// requests are rejected.
func (s *Session) Start(req Request) bool {
	if !s.current(req) {
		return false
	}

	s.pause = false
	s.status = req.Status()

	switch req.Step {
	case StepRepository:
		s.prepareSlot(req)
	case StepFinish:
		s.loading = false
	case StepMetadata, StepIcon:
	}

	return true
}

func (s *Session) prepareSlot(req Request) {
	s.slots[req.Slot] = Slot{
		Index:       req.Index,
		App:         req.App,
		Visible:     true,
		Title:       domain.DeriveTitle(req.App.Name, s.opts.BrandPrefix),
		Author:      req.App.Owner,
		Description: StatusLoading,
		Icon:        icon.Default(),
		Installed:   s.opts.Installed(req.App.Name),
	}
}

// Apply records the outcome of a step and advances the load. Results from
// a superseded load are discarded. It reports whether the result was used.
func (s *Session) Apply(res Result) bool {
	if !s.current(res.Request) || !res.NeedsFetch() {
		return false
	}

	slot := &s.slots[res.Slot]
	name := res.App.String()

	switch res.Step {
	case StepRepository:
		if res.Err != nil {
			slot.Description = ""
			s.status = fmt.Sprintf("Unable to read repository data from %s! %s", name, domain.StatusMessage(res.Err))
			s.pause = s.opts.ErrorPause > 0
			s.nextItem()

			return true
		}

		slot.Repository = res.Repository
		slot.Author = res.Repository.Owner.Login
		slot.Description = res.Repository.Description
		s.branch = res.Repository.Branch()
		s.step = StepMetadata

	case StepMetadata:
		if res.Err != nil {
			s.status = fmt.Sprintf("Unable to read metadata from %s! %s", name, domain.StatusMessage(res.Err))
			s.nextItem()

			return true
		}

		if res.Metadata.Title != nil {
			slot.Title = *res.Metadata.Title
		}

		if res.Metadata.Description != nil {
			slot.Description = *res.Metadata.Description
		}

		iconPath, ok := res.Metadata.IconPath()
		if !ok {
			s.nextItem()
			return true
		}

		s.iconPath = iconPath
		s.step = StepIcon

	case StepIcon:
		if res.Err != nil {
			slot.Icon = icon.Default()
			s.status = fmt.Sprintf("Unable to download icon image from %s! %s", name, domain.StatusMessage(res.Err))
		} else {
			slot.Icon = res.Icon
		}

		s.nextItem()

	case StepFinish:
	}

	return true
}

func (s *Session) nextItem() {
	s.cursor++
	s.step = StepRepository
	s.branch = ""
	s.iconPath = ""
}

// Cache resolves remote documents through local storage.
type Cache interface {
	JSON(ctx context.Context, rawURL, name string, v any) error
	Image(ctx context.Context, rawURL, name string) (string, error)
}

// Locator builds the remote locations of repository resources.
type Locator interface {
	RepoURL(id domain.RepoID) string
	MetadataURL(id domain.RepoID, branch string) string
	IconURL(id domain.RepoID, branch, iconPath string) string
}

// Populator performs the network side of population steps.
type Populator struct {
	cache   Cache
	locator Locator
}

// NewPopulator creates a Populator.
func NewPopulator(cache Cache, locator Locator) *Populator {
	return &Populator{cache: cache, locator: locator}
}

// Run performs the fetch for one step. It does not touch session state.
func (p *Populator) Run(ctx context.Context, req Request) Result {
	res := Result{Request: req}

	switch req.Step {
	case StepRepository:
		var repo domain.Repository

		res.Err = p.cache.JSON(ctx, p.locator.RepoURL(req.App), req.App.CacheKey(), &repo)
		if res.Err == nil {
			res.Repository = &repo
		}

	case StepMetadata:
		var meta domain.AppMetadata

		res.Err = p.cache.JSON(ctx, p.locator.MetadataURL(req.App, req.Branch), req.App.CacheKey()+"_metadata", &meta)
		if res.Err == nil {
			res.Metadata = &meta
		}

	case StepIcon:
		path, err := p.cache.Image(ctx, p.locator.IconURL(req.App, req.Branch, req.IconPath), req.App.Name+"_"+req.IconPath)
		if err != nil {
			res.Err = err
			break
		}

		res.Icon, res.Err = icon.Load(path)

	case StepFinish:
	}

	return res
}

// LoadPage runs the remaining steps of the current page load to
// completion, one fetch at a time. Delays between steps are skipped.
func LoadPage(ctx context.Context, session *Session, populator *Populator) error {
	for {
		req, ok := session.Request()
		if !ok {
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		session.Start(req)

		if !req.NeedsFetch() {
			continue
		}

		session.Apply(populator.Run(ctx, req))
	}
}
