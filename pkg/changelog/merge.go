/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package changelog

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// Groups holds the selected pull requests per category, in selection order.
type Groups map[Category][]PullRequest

// Len is the total number of pull requests across all categories.
func (g Groups) Len() int {
	n := 0
	for _, prs := range g {
		n += len(prs)
	}
	return n
}

// Select keeps the merged pull requests, and when a cutoff is given, only
// those merged on or after it.
func Select(prs []PullRequest, cutoff *time.Time) []PullRequest {
	var out []PullRequest
	for _, pr := range prs {
		if !pr.Merged {
			continue
		}
		if cutoff != nil && pr.MergedAt.Before(*cutoff) {
			continue
		}
		out = append(out, pr)
	}
	return out
}

// Group categorizes each pull request, keeping input order within a group.
func Group(prs []PullRequest) Groups {
	g := make(Groups, len(categories))
	for _, pr := range prs {
		c := Categorize(pr)
		g[c] = append(g[c], pr)
	}
	return g
}

// RenderSection renders a dated section. Categories appear in rank order
// and empty ones are left out.
func RenderSection(date time.Time, groups Groups) string {
	var b strings.Builder
	b.WriteString("## [")
	b.WriteString(date.Format(DateLayout))
	b.WriteString("]\n\n")
	for _, c := range Categories() {
		prs := groups[c]
		if len(prs) == 0 {
			continue
		}
		b.WriteString(c.Header())
		b.WriteString("\n\n")
		for _, pr := range prs {
			b.WriteString(FormatEntry(pr))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Merger adds new sections to a changelog document.
type Merger struct {
	clock clockwork.Clock
}

// NewMerger returns a Merger that dates sections with the current UTC date.
func NewMerger() *Merger {
	return &Merger{clock: clockwork.NewRealClock()}
}

// NewMergerWithClock is NewMerger with an explicit clock.
func NewMergerWithClock(clock clockwork.Clock) *Merger {
	return &Merger{clock: clock}
}

// Update returns existing with a new section for the qualifying pull
// requests, and the number of entries added. When nothing qualifies the
// count is zero and existing is returned untouched.
//
// An empty document gets DefaultHeader before the section is inserted.
func (m *Merger) Update(existing string, prs []PullRequest) (string, int) {
	var cutoff *time.Time
	if t, ok := Cutoff(existing); ok {
		cutoff = &t
	}

	selected := Select(prs, cutoff)
	if len(selected) == 0 {
		return existing, 0
	}

	content := existing
	if strings.TrimSpace(content) == "" {
		content = DefaultHeader
	}

	groups := Group(selected)
	section := RenderSection(m.clock.Now().UTC(), groups)
	return Splice(content, section), groups.Len()
}
