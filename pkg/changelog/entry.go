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

var markdownLink = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)

// Description is the text shown for a pull request: the first line of its
// body with Markdown links reduced to their text, or the title when there is
// no body.
func Description(pr PullRequest) string {
	if pr.Body == "" {
		return pr.Title
	}
	line, _, _ := strings.Cut(pr.Body, "\n")
	line = strings.TrimSuffix(line, "\r")
	return markdownLink.ReplaceAllString(line, "$1")
}

// FormatEntry renders the single changelog line for a pull request:
//
//	- <description> (#<number>) - @<author>
func FormatEntry(pr PullRequest) string {
	return fmt.Sprintf("- %s (#%d) - @%s", Description(pr), pr.Number, pr.Author)
}
