// SPDX-FileCopyrightText: 2025 The Jamstore Authors
// SPDX-License-Identifier: EUPL-1.2

package domain

// Owner is the account that owns a repository.
type Owner struct {
	Login   string `json:"login"`
	Name    string `json:"name,omitempty"`
	HTMLURL string `json:"html_url"`
}

// DisplayName prefers the full name over the login.
func (o Owner) DisplayName() string {
	if o.Name != "" {
		return o.Name
	}

	return o.Login
}

// Repository is the subset of the GitHub repository resource the store reads.
type Repository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	DefaultBranch string `json:"default_branch"`
	HTMLURL       string `json:"html_url"`
	Homepage      string `json:"homepage"`
	Owner         Owner  `json:"owner"`
}

// Branch returns the default branch, falling back to "main".
func (r *Repository) Branch() string {
	if r.DefaultBranch != "" {
		return r.DefaultBranch
	}

	return "main"
}

// AppMetadata is the optional metadata.json published at a repository root.
// Pointer fields distinguish an absent key from an empty value.
type AppMetadata struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

// IconPath returns the repository-relative icon path, if one is declared.
func (m *AppMetadata) IconPath() (string, bool) {
	if m == nil || m.Icon == nil || *m.Icon == "" {
		return "", false
	}

	return *m.Icon, true
}

// BuildMetadata is the optional build/metadata.json used by the catalog generator.
type BuildMetadata struct {
	GuideURL *string `json:"guide_url,omitempty"`
}
