/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package changelog

import (
	"fmt"
	"regexp"
	"strings"
)

// Category is the kind of change a pull request makes.
// The numeric value is the rank used to order sections.
type Category int

const (
	Feature Category = iota
	Bug
	Docs
	Refactor
	Test
	Chore
	Breaking
)

type categoryInfo struct {
	category Category
	keyword  string
	header   string
}

// categories is evaluated in order, both for label matching and rendering.
var categories = []categoryInfo{{
	category: Feature,
	keyword:  "feature",
	header:   "### ✨ New Features",
}, {
	category: Bug,
	keyword:  "bug",
	header:   "### 🐛 Bug Fixes",
}, {
	category: Docs,
	keyword:  "docs",
	header:   "### 📚 Documentation",
}, {
	category: Refactor,
	keyword:  "refactor",
	header:   "### ♻️ Code Refactoring",
}, {
	category: Test,
	keyword:  "test",
	header:   "### 🧪 Tests",
}, {
	category: Chore,
	keyword:  "chore",
	header:   "### 🔧 Maintenance",
}, {
	category: Breaking,
	keyword:  "breaking",
	header:   "### ⚠️ Breaking Changes",
}}

// Categories returns every Category in rank order.
func Categories() []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.category)
	}
	return out
}

func (c Category) info() (categoryInfo, bool) {
	if c < 0 || int(c) >= len(categories) {
		return categoryInfo{}, false
	}
	return categories[c], true
}

// Keyword is the lowercase token matched against labels, e.g. "bug".
func (c Category) Keyword() string {
	if i, ok := c.info(); ok {
		return i.keyword
	}
	return ""
}

// Header is the Markdown heading line for the category block.
func (c Category) Header() string {
	if i, ok := c.info(); ok {
		return i.header
	}
	return ""
}

func (c Category) String() string {
	if k := c.Keyword(); k != "" {
		return k
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

var conventionalCommit = regexp.MustCompile(`^(feat|fix|docs|refactor|test|chore|breaking)(\(.+\))?: .+`)

// conventionalTypes maps a conventional-commit prefix to its category.
var conventionalTypes = map[string]Category{
	"feat":     Feature,
	"fix":      Bug,
	"docs":     Docs,
	"refactor": Refactor,
	"test":     Test,
	"chore":    Chore,
	"breaking": Breaking,
}

// Categorize assigns a pull request to exactly one Category.
//
// Labels are checked first: the first category (in rank order, not label
// order) whose keyword appears in any label, case-insensitively, wins.
// Otherwise a conventional-commit prefix on the title decides, and
// everything else is Chore.
func Categorize(pr PullRequest) Category {
	labels := make([]string, 0, len(pr.Labels))
	for _, l := range pr.Labels {
		labels = append(labels, strings.ToLower(l))
	}
	for _, c := range categories {
		for _, l := range labels {
			if strings.Contains(l, c.keyword) {
				return c.category
			}
		}
	}

	if m := conventionalCommit.FindStringSubmatch(pr.Title); m != nil {
		if c, ok := conventionalTypes[m[1]]; ok {
			return c
		}
	}

	return Chore
}
