// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// RepoID identifies a repository as "owner/name".
type RepoID struct {
	Owner string
	Name  string
}

// ParseRepoID parses an "owner/name" identifier.
// Exactly one separator is allowed and both halves must be non-empty.
func ParseRepoID(s string) (RepoID, error) {
	owner, name, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoID{}, fmt.Errorf("%w: %q", ErrInvalidRepoID, s)
	}

	return RepoID{Owner: owner, Name: name}, nil
}

// String returns the "owner/name" form.
func (r RepoID) String() string {
	return r.Owner + "/" + r.Name
}

// CacheKey returns the identifier with the separator flattened, "owner_name".
func (r RepoID) CacheKey() string {
	return r.Owner + "_" + r.Name
}

// Category is a named, ordered list of repositories.
type Category struct {
	Name string   `json:"name"`
	Apps []RepoID `json:"-"`
}

// MarshalJSON encodes the category with its apps as "owner/name" strings.
func (c Category) MarshalJSON() ([]byte, error) {
	apps := make([]string, len(c.Apps))
	for i, app := range c.Apps {
		apps[i] = app.String()
	}

	return json.Marshal(struct {
		Name string   `json:"name"`
		Apps []string `json:"apps"`
	}{Name: c.Name, Apps: apps})
}

// Catalog maps category names to repository lists and preserves the
// order categories appear in the source document.
type Catalog struct {
	categories []Category
	index      map[string]int
}

// NewCatalog builds a catalog from categories in display order.
// A repeated name replaces the earlier list but keeps its position.
func NewCatalog(categories []Category) (*Catalog, error) {
	catalog := &Catalog{index: make(map[string]int, len(categories))}

	for _, category := range categories {
		if category.Name == "" {
			return nil, fmt.Errorf("%w: empty category name", ErrMalformedCatalog)
		}

		if i, ok := catalog.index[category.Name]; ok {
			catalog.categories[i].Apps = category.Apps
			continue
		}

		catalog.index[category.Name] = len(catalog.categories)
		catalog.categories = append(catalog.categories, category)
	}

	if len(catalog.categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrMalformedCatalog)
	}

	return catalog, nil
}

// ParseCatalog decodes a catalog document: a JSON object whose keys are
// category names and whose values are arrays of "owner/name" strings.
func ParseCatalog(data []byte) (*Catalog, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var categories []Category

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCatalog, err)
		}

		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected key %v", ErrMalformedCatalog, tok)
		}

		var raw []string
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: category %q: %w", ErrMalformedCatalog, name, err)
		}

		apps := make([]RepoID, 0, len(raw))

		for _, entry := range raw {
			id, err := ParseRepoID(entry)
			if err != nil {
				return nil, fmt.Errorf("%w: category %q: %w", ErrMalformedCatalog, name, err)
			}

			apps = append(apps, id)
		}

		categories = append(categories, Category{Name: name, Apps: apps})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after catalog", ErrMalformedCatalog)
	}

	return NewCatalog(categories)
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedCatalog, err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrMalformedCatalog, want, tok)
	}

	return nil
}

// Names returns the category names in display order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.categories))
	for i, category := range c.categories {
		names[i] = category.Name
	}

	return names
}

// Categories returns a copy of the categories in display order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)

	return out
}

// Len returns the number of categories.
func (c *Catalog) Len() int {
	return len(c.categories)
}

// Has reports whether the named category exists.
func (c *Catalog) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// IndexOf returns the display position of a category, or -1.
func (c *Catalog) IndexOf(name string) int {
	if i, ok := c.index[name]; ok {
		return i
	}

	return -1
}

// Apps returns the repositories listed under a category.
func (c *Catalog) Apps(name string) []RepoID {
	i, ok := c.index[name]
	if !ok {
		return nil
	}

	return c.categories[i].Apps
}

// Find returns the first category listing the repository.
func (c *Catalog) Find(id RepoID) (string, bool) {
	for _, category := range c.categories {
		for _, app := range category.Apps {
			if strings.EqualFold(app.String(), id.String()) {
				return category.Name, true
			}
		}
	}

	return "", false
}
