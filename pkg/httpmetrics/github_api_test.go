/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package httpmetrics

import "testing"

func Test_bucketizePath(t *testing.T) {
	tests := []struct {
		path   string
		bucket string
	}{{
		path:   "/repos/chainguard-dev/prchangelog",
		bucket: "/repos/{org}/{repo}",
	}, {
		path:   "/repos/octocat/hello-world/pulls",
		bucket: "/repos/{org}/{repo}/pulls",
	}, {
		path:   "/repos/octocat/hello-world/pulls/1",
		bucket: "/repos/{org}/{repo}/pulls/{number}",
	}, {
		path:   "/repos/octocat/hello-world/pulls/1/merge",
		bucket: "/repos/{org}/{repo}/pulls/{number}/merge",
	}, {
		path:   "/repos/octocat/hello-world/issues/7/labels",
		bucket: "/repos/{org}/{repo}/issues/{number}/labels",
	}, {
		path:   "/api/v3/repos/octocat/hello-world/pulls",
		bucket: "/repos/{org}/{repo}/pulls",
	}, {
		path:   "/search/issues",
		bucket: "/search/issues",
	}, {
		path:   "/rate_limit",
		bucket: "/rate_limit",
	}, {
		path:   "/user",
		bucket: "/user",
	}, {
		path:   "/repos/octocat/hello-world/pulls/abc",
		bucket: "other",
	}, {
		path:   "/gists",
		bucket: "other",
	}}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := bucketizePath(tt.path); got != tt.bucket {
				t.Errorf("bucketizePath(%q) = %q, want %q", tt.path, got, tt.bucket)
			}
		})
	}
}
