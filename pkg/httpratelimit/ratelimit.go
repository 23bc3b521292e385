/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package httpratelimit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// GitHub rate limit header names
// https://docs.github.com/en/rest/using-the-rest-api/rate-limits-for-the-rest-api#checking-the-status-of-your-rate-limit
// NOTE: Use the Go canonical form (capitals) for these headers, even though they are lowercase in the docs.
const (
	// HeaderRetryAfter indicates how many seconds to wait before retrying
	HeaderRetryAfter = "Retry-After"
	// HeaderXRateLimitReset is the time at which the current rate limit window resets, in UTC epoch seconds
	HeaderXRateLimitReset = "X-Ratelimit-Reset"
	// HeaderXRateLimitRemaining is the number of requests remaining in the current rate limit window
	HeaderXRateLimitRemaining = "X-Ratelimit-Remaining"
)

// DefaultMaxRetries is how many times a rate limited request is replayed
// before the rate limited response is handed back to the caller.
const DefaultMaxRetries = 3

// Transport wraps an http.RoundTripper and pauses all requests while GitHub
// reports that the rate limit is exhausted, replaying the limited request
// once the pause is over.
type Transport struct {
	base              http.RoundTripper
	limiter           *limiter
	clock             clockwork.Clock
	defaultRetryAfter time.Duration
	maxRetries        int
}

// Option configures a Transport.
type Option func(*Transport)

// WithClock sets the clock used for pauses.
func WithClock(c clockwork.Clock) Option {
	return func(t *Transport) { t.clock = c }
}

// WithMaxRetries bounds how often a single request is replayed.
func WithMaxRetries(n int) Option {
	return func(t *Transport) { t.maxRetries = n }
}

// NewTransport creates a new rate limiting transport wrapper.
// The defaultRetryAfter specifies how long to wait when rate limited but no
// retry-after header is provided by GitHub (defaults to 1 minute).
func NewTransport(base http.RoundTripper, defaultRetryAfter time.Duration, opts ...Option) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if defaultRetryAfter == 0 {
		defaultRetryAfter = time.Minute
	}

	t := &Transport{
		base:              base,
		clock:             clockwork.NewRealClock(),
		defaultRetryAfter: defaultRetryAfter,
		maxRetries:        DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.limiter = &limiter{
		base:  rate.NewLimiter(rate.Inf, 100),
		clock: t.clock,
	}
	return t
}

// RoundTrip implements http.RoundTripper.
func (rt *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	for attempt := 0; ; attempt++ {
		if err := rt.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := rt.base.RoundTrip(req)
		if err != nil {
			return resp, err
		}

		if attempt >= rt.maxRetries || !rt.processRateLimit(ctx, resp) {
			return resp, nil
		}

		// The limited response is discarded in favor of the replay.
		if resp.Body != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
		if req.Body != nil {
			if req.GetBody == nil {
				return nil, errNoReplay
			}
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req = req.Clone(ctx)
			req.Body = body
		}
	}
}

var errNoReplay = errors.New("rate limited request has a body that cannot be replayed")

// isRateLimited reports whether resp is GitHub telling us to slow down.
// A 403 only counts when it carries rate limit headers, so that permission
// errors reach the caller right away.
func isRateLimited(resp *http.Response) bool {
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return resp.Header.Get(HeaderRetryAfter) != "" ||
			resp.Header.Get(HeaderXRateLimitRemaining) == "0"
	default:
		return false
	}
}

// processRateLimit checks if the response indicates rate limiting and pauses future requests.
// Returns true if the request should be retried after the pause.
//
// GitHub rate limit documentation:
// https://docs.github.com/en/rest/using-the-rest-api/rate-limits-for-the-rest-api#exceeding-the-rate-limit
func (rt *Transport) processRateLimit(ctx context.Context, resp *http.Response) bool {
	if !isRateLimited(resp) {
		return false
	}
	log := clog.FromContext(ctx)

	var (
		retryAfter time.Duration
		reset      time.Time
		remaining  = -1
	)

	if v := resp.Header.Get(HeaderRetryAfter); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			log.Warnf("Failed to parse retry-after header: %v", err)
		} else {
			retryAfter = time.Duration(seconds) * time.Second
		}
	}

	if v := resp.Header.Get(HeaderXRateLimitRemaining); v != "" {
		r, err := strconv.Atoi(v)
		if err != nil {
			log.Warnf("Failed to parse x-ratelimit-remaining header: %v", err)
		} else {
			remaining = r
		}
	}

	if v := resp.Header.Get(HeaderXRateLimitReset); v != "" {
		seconds, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Warnf("Failed to parse x-ratelimit-reset header: %v", err)
		} else {
			reset = time.Unix(seconds, 0)
		}
	}

	if retryAfter > 0 {
		log.With("retry_after", retryAfter).
			Warn("GitHub rate limit hit, pausing requests")
		rt.limiter.PauseFor(retryAfter)
		return true
	}

	if remaining == 0 && !reset.IsZero() {
		if retryAfter = reset.Sub(rt.clock.Now()); retryAfter > 0 {
			log.With("reset_at", reset, "retry_after", retryAfter).
				Warn("GitHub rate limit exhausted, pausing until reset")
			rt.limiter.PauseFor(retryAfter)
			return true
		}
	}

	log.With("retry_after", rt.defaultRetryAfter).
		Warn("GitHub rate limit hit (no usable headers), using default pause")
	rt.limiter.PauseFor(rt.defaultRetryAfter)
	return true
}

// limiter is a rate.Limiter that can additionally be paused outright.
type limiter struct {
	base       *rate.Limiter
	clock      clockwork.Clock
	mu         sync.Mutex
	pauseUntil time.Time
}

// Wait blocks until any active pause is over and the rate limiter allows a
// request.
func (l *limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	until := l.pauseUntil
	l.mu.Unlock()

	if d := until.Sub(l.clock.Now()); d > 0 {
		timer := l.clock.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.Chan():
		}
	}

	return l.base.Wait(ctx)
}

// PauseFor pauses all requests for d. An active pause is only ever extended.
func (l *limiter) PauseFor(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if until := l.clock.Now().Add(d); until.After(l.pauseUntil) {
		l.pauseUntil = until
	}
}
