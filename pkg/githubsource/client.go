/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubsource

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/chainguard-dev/prchangelog/pkg/httpmetrics"
	"github.com/chainguard-dev/prchangelog/pkg/httpratelimit"
	"github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"
)

type clientOptions struct {
	baseURL string
}

// ClientOption configures NewClient.
type ClientOption func(*clientOptions)

// WithBaseURL points the client at a GitHub Enterprise Server, e.g.
// https://ghe.example.com/api/v3/.
func WithBaseURL(u string) ClientOption {
	return func(o *clientOptions) { o.baseURL = u }
}

// NewClient creates a GitHub client authenticated with token.
//
// Requests flow through the token transport, then the rate limit transport,
// then metrics instrumentation. An empty token makes anonymous requests.
func NewClient(ctx context.Context, token string, opts ...ClientOption) (*github.Client, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	var rt http.RoundTripper = httpratelimit.NewTransport(httpmetrics.WrapTransport(http.DefaultTransport), time.Minute)
	if token != "" {
		rt = &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})),
			Base:   rt,
		}
	}

	client := github.NewClient(&http.Client{Transport: rt})
	if o.baseURL != "" {
		var err error
		if client, err = client.WithEnterpriseURLs(o.baseURL, o.baseURL); err != nil {
			return nil, fmt.Errorf("configuring enterprise URL %q: %w", o.baseURL, err)
		}
	}

	clog.FromContext(ctx).With("base_url", client.BaseURL.String()).Debug("Created GitHub client")
	return client, nil
}
