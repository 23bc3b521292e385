/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubsource

import (
	"context"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/chainguard-dev/prchangelog/pkg/changelog"
	"github.com/google/go-github/v75/github"
)

const defaultPerPage = 100

// Source lists merged pull requests through the GitHub REST API.
type Source struct {
	client  *github.Client
	perPage int
}

var _ changelog.Source = (*Source)(nil)

// New returns a Source backed by client.
func New(client *github.Client) *Source {
	return &Source{client: client, perPage: defaultPerPage}
}

// FetchMergedPullRequests lists closed pull requests, most recently updated
// first, and returns the merged ones. With a since time, listing stops at the
// first pull request last updated before it: a merge is itself an update, so
// nothing further down can have been merged after since.
func (s *Source) FetchMergedPullRequests(ctx context.Context, repo changelog.Repository, since *time.Time) ([]changelog.PullRequest, error) {
	log := clog.FromContext(ctx).With("repo", repo.String())

	opts := &github.PullRequestListOptions{
		State:       "closed",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: s.perPage},
	}

	var out []changelog.PullRequest
	for {
		prs, resp, err := s.client.PullRequests.List(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			return nil, fmt.Errorf("listing pull requests for %s: %w", repo, err)
		}
		log.Debugf("Listed page %d with %d pull requests", opts.Page, len(prs))

		for _, pr := range prs {
			if since != nil && pr.GetUpdatedAt().Before(*since) {
				return out, nil
			}
			if pr.MergedAt == nil {
				continue
			}
			if since != nil && pr.GetMergedAt().Before(*since) {
				continue
			}
			out = append(out, convert(pr))
		}

		if resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

func convert(pr *github.PullRequest) changelog.PullRequest {
	labels := make([]string, 0, len(pr.Labels))
	for _, l := range pr.Labels {
		labels = append(labels, l.GetName())
	}
	return changelog.PullRequest{
		Number:   pr.GetNumber(),
		Title:    pr.GetTitle(),
		Body:     pr.GetBody(),
		Author:   pr.GetUser().GetLogin(),
		Merged:   true,
		MergedAt: pr.GetMergedAt().UTC(),
		Labels:   labels,
	}
}
