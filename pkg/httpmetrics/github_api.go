/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package httpmetrics

import (
	"regexp"
	"strings"
)

type pathPattern struct {
	pattern *regexp.Regexp
	bucket  string
}

// GitHub API endpoints the changelog client calls, plus the ones go-github
// touches on the way. Based on https://docs.github.com/en/rest
var githubAPIPatterns = []pathPattern{{
	// https://docs.github.com/en/rest/repos/repos#get-a-repository
	pattern: regexp.MustCompile(`^/repos/[^/]+/[^/]+$`),
	bucket:  "/repos/{org}/{repo}",
}, {
	// https://docs.github.com/en/rest/pulls/pulls#list-pull-requests
	pattern: regexp.MustCompile(`^/repos/[^/]+/[^/]+/pulls$`),
	bucket:  "/repos/{org}/{repo}/pulls",
}, {
	// https://docs.github.com/en/rest/pulls/pulls#get-a-pull-request
	pattern: regexp.MustCompile(`^/repos/[^/]+/[^/]+/pulls/\d+$`),
	bucket:  "/repos/{org}/{repo}/pulls/{number}",
}, {
	// https://docs.github.com/en/rest/pulls/pulls#check-if-a-pull-request-has-been-merged
	pattern: regexp.MustCompile(`^/repos/[^/]+/[^/]+/pulls/\d+/merge$`),
	bucket:  "/repos/{org}/{repo}/pulls/{number}/merge",
}, {
	// https://docs.github.com/en/rest/issues/labels#list-labels-for-an-issue
	pattern: regexp.MustCompile(`^/repos/[^/]+/[^/]+/issues/\d+/labels$`),
	bucket:  "/repos/{org}/{repo}/issues/{number}/labels",
}, {
	// https://docs.github.com/en/rest/search/search#search-issues-and-pull-requests
	pattern: regexp.MustCompile(`^/search/issues$`),
	bucket:  "/search/issues",
}, {
	// https://docs.github.com/en/rest/rate-limit/rate-limit#get-rate-limit-status-for-the-authenticated-user
	pattern: regexp.MustCompile(`^/rate_limit$`),
	bucket:  "/rate_limit",
}, {
	// https://docs.github.com/en/rest/users/users#get-the-authenticated-user
	pattern: regexp.MustCompile(`^/user$`),
	bucket:  "/user",
}}

// bucketizePath maps a GitHub API path to a bounded label value. Enterprise
// servers prefix paths with /api/v3, which is stripped first.
func bucketizePath(path string) string {
	path = strings.TrimPrefix(path, "/api/v3")
	for _, p := range githubAPIPatterns {
		if p.pattern.MatchString(path) {
			return p.bucket
		}
	}
	return "other"
}
