/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package changelog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		pr   PullRequest
		want Category
	}{{
		name: "conventional feat prefix",
		pr:   PullRequest{Title: "feat: add caching layer"},
		want: Feature,
	}, {
		name: "conventional fix prefix with scope",
		pr:   PullRequest{Title: "fix(parser): handle empty input"},
		want: Bug,
	}, {
		name: "conventional prefixes that map to themselves",
		pr:   PullRequest{Title: "refactor: split merger"},
		want: Refactor,
	}, {
		name: "breaking prefix",
		pr:   PullRequest{Title: "breaking: drop v1 api"},
		want: Breaking,
	}, {
		name: "label containing keyword",
		pr:   PullRequest{Title: "Random fix", Labels: []string{"bug-critical"}},
		want: Bug,
	}, {
		name: "label match is case-insensitive",
		pr:   PullRequest{Title: "Whatever", Labels: []string{"Documentation-DOCS"}},
		want: Docs,
	}, {
		name: "label beats title",
		pr:   PullRequest{Title: "feat: shiny", Labels: []string{"test"}},
		want: Test,
	}, {
		name: "enumeration order beats label order",
		pr:   PullRequest{Title: "x", Labels: []string{"breaking", "bug", "feature"}},
		want: Feature,
	}, {
		name: "unrelated labels fall through to title",
		pr:   PullRequest{Title: "docs: fix typo", Labels: []string{"size/S", "lgtm"}},
		want: Docs,
	}, {
		name: "prefix without colon space is not conventional",
		pr:   PullRequest{Title: "feat add things"},
		want: Chore,
	}, {
		name: "unknown prefix",
		pr:   PullRequest{Title: "perf: faster"},
		want: Chore,
	}, {
		name: "prefix must be lowercase",
		pr:   PullRequest{Title: "Feat: capitalized"},
		want: Chore,
	}, {
		name: "empty pull request",
		pr:   PullRequest{},
		want: Chore,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.pr); got != tt.want {
				t.Errorf("Categorize() = %v, want %v", got, tt.want)
			}
			// Same input, same answer.
			if got := Categorize(tt.pr); got != tt.want {
				t.Errorf("second Categorize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCategoriesOrder(t *testing.T) {
	want := []string{"feature", "bug", "docs", "refactor", "test", "chore", "breaking"}
	var got []string
	for _, c := range Categories() {
		got = append(got, c.String())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Categories() mismatch (-want +got):\n%s", diff)
	}
}

func TestCategoryOutOfRange(t *testing.T) {
	c := Category(42)
	if c.Header() != "" || c.Keyword() != "" {
		t.Errorf("out of range category has header %q keyword %q", c.Header(), c.Keyword())
	}
	if got, want := c.String(), "Category(42)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
