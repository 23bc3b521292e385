/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package changelog

import (
	"context"
	"time"

	"github.com/chainguard-dev/clog"
)

// Store holds the changelog document between runs.
type Store interface {
	// Read returns the current document. exists is false when there is no
	// document yet, which is not an error.
	Read(ctx context.Context) (content string, exists bool, err error)
	// Write replaces the document.
	Write(ctx context.Context, content string) error
}

// Result describes the outcome of one Updater run.
type Result struct {
	// Updated is false when no pull request qualified and the document was
	// left alone.
	Updated bool
	// Entries is the number of lines added.
	Entries int
	// Cutoff is the date read from the existing document, if any.
	Cutoff *time.Time
}

// Updater performs one read-fetch-merge-write batch for a repository.
type Updater struct {
	repo   Repository
	source Source
	store  Store
	merger *Merger
}

// NewUpdater returns an Updater that stamps sections with today's date.
func NewUpdater(repo Repository, source Source, store Store) *Updater {
	return &Updater{
		repo:   repo,
		source: source,
		store:  store,
		merger: NewMerger(),
	}
}

// WithMerger replaces the Merger, e.g. to use a fixed clock.
func (u *Updater) WithMerger(m *Merger) *Updater {
	u.merger = m
	return u
}

// Run reads the document, fetches pull requests merged since its newest
// date and writes the document back if anything was added. Errors from the
// Source and Store are returned as is.
func (u *Updater) Run(ctx context.Context) (Result, error) {
	log := clog.FromContext(ctx).With("repo", u.repo.String())

	existing, exists, err := u.store.Read(ctx)
	if err != nil {
		return Result{}, err
	}
	if !exists {
		log.Info("No existing changelog, starting a new one")
		existing = DefaultHeader
	}

	var res Result
	if t, ok := Cutoff(existing); ok {
		res.Cutoff = &t
		log.With("cutoff", t.Format(DateLayout)).Info("Fetching pull requests merged since cutoff")
	} else {
		log.Info("No date in changelog, fetching all merged pull requests")
	}

	prs, err := u.source.FetchMergedPullRequests(ctx, u.repo, res.Cutoff)
	if err != nil {
		return Result{}, err
	}
	log.Debugf("Fetched %d pull requests", len(prs))

	updated, n := u.merger.Update(existing, prs)
	if n == 0 {
		return res, nil
	}

	if err := u.store.Write(ctx, updated); err != nil {
		return Result{}, err
	}
	res.Updated = true
	res.Entries = n
	log.With("entries", n).Info("Wrote changelog")
	return res, nil
}
