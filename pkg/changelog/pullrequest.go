/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package changelog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PullRequest is the subset of a hosting service's pull request that the
// changelog needs. Values are treated as read-only.
type PullRequest struct {
	Number   int
	Title    string
	Body     string // empty when the pull request has no description
	Author   string
	Merged   bool
	MergedAt time.Time
	Labels   []string
}

// Source fetches merged pull requests from a hosting service.
//
// When since is non-nil, implementations may omit pull requests merged
// before it; callers filter again regardless.
type Source interface {
	FetchMergedPullRequests(ctx context.Context, repo Repository, since *time.Time) ([]PullRequest, error)
}

// ErrInvalidRepository is returned by ParseRepository for identifiers that
// are not of the form owner/repo.
var ErrInvalidRepository = errors.New("repository must be of the form owner/repo")

// Repository identifies a repository on the hosting service.
type Repository struct {
	Owner string
	Name  string
}

// ParseRepository parses an "owner/repo" identifier.
func ParseRepository(s string) (Repository, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repository{}, fmt.Errorf("%w: %q", ErrInvalidRepository, s)
	}
	return Repository{Owner: owner, Name: name}, nil
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}
