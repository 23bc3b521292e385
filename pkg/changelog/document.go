/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package changelog

import (
	"regexp"
	"strings"
	"time"
)

// DefaultHeader starts a changelog that does not exist yet.
const DefaultHeader = "# Changelog\n\nAll notable changes to this project will be documented in this file.\n\n"

// DateLayout is the format of section dates, e.g. 2024-01-31.
const DateLayout = "2006-01-02"

var dateToken = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Cutoff returns the first date token found anywhere in content, as midnight
// UTC. The boolean is false when content has no parseable date, in which
// case the document is treated as new.
func Cutoff(content string) (time.Time, bool) {
	for _, tok := range dateToken.FindAllString(content, -1) {
		if t, err := time.Parse(DateLayout, tok); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var sectionHeading = regexp.MustCompile(`(?m)^## `)

// headerEnd is the offset of the first section heading. A document without
// any section is all header.
func headerEnd(content string) int {
	if loc := sectionHeading.FindStringIndex(content); loc != nil {
		return loc[0]
	}
	return len(content)
}

// Splice inserts section right after the header block of content, before
// any existing section. The header is padded to end in a blank line; every
// byte of content after the insertion point is kept as is.
func Splice(content, section string) string {
	at := headerEnd(content)
	head, tail := content[:at], content[at:]
	if head != "" {
		switch {
		case strings.HasSuffix(head, "\n\n"):
		case strings.HasSuffix(head, "\n"):
			head += "\n"
		default:
			head += "\n\n"
		}
	}
	var b strings.Builder
	b.Grow(len(head) + len(section) + len(tail))
	b.WriteString(head)
	b.WriteString(section)
	b.WriteString(tail)
	return b.String()
}
