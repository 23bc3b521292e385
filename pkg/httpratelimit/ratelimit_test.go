/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package httpratelimit

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/chainguard-dev/clog/slogtest"
	"github.com/jonboulle/clockwork"
)

type testRT struct {
	responses []*http.Response
	mu        sync.Mutex
	callCount int
}

func (t *testRT) RoundTrip(_ *http.Request) (*http.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.callCount >= len(t.responses) {
		return nil, fmt.Errorf("no more responses")
	}
	resp := t.responses[t.callCount]
	t.callCount++
	return resp, nil
}

func (t *testRT) calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.callCount
}

func TestTransport_RateLimiting(t *testing.T) {
	defaultRetryAfter := 30 * time.Second
	baseTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		responses      []*http.Response
		expectedCalls  int
		expectedStatus int
		expectedWait   time.Duration
	}{{
		name:           "No rate limit",
		responses:      []*http.Response{{StatusCode: http.StatusOK}},
		expectedCalls:  1,
		expectedStatus: http.StatusOK,
	}, {
		name: "Rate limit with x-ratelimit-reset",
		responses: []*http.Response{{
			StatusCode: http.StatusForbidden,
			Header: http.Header{
				HeaderXRateLimitRemaining: []string{"0"},
				HeaderXRateLimitReset:     []string{fmt.Sprintf("%d", baseTime.Add(4*time.Second).Unix())},
			},
		}, {StatusCode: http.StatusOK}},
		expectedCalls:  2,
		expectedWait:   4 * time.Second,
		expectedStatus: http.StatusOK,
	}, {
		name: "Rate limit with retry-after",
		responses: []*http.Response{{
			StatusCode: http.StatusForbidden,
			Header:     http.Header{HeaderRetryAfter: {"2"}},
		}, {StatusCode: http.StatusOK}},
		expectedCalls:  2,
		expectedWait:   2 * time.Second,
		expectedStatus: http.StatusOK,
	}, {
		name: "429 without headers uses the default retry-after",
		responses: []*http.Response{{
			StatusCode: http.StatusTooManyRequests,
			Header:     http.Header{},
		}, {StatusCode: http.StatusOK}},
		expectedCalls:  2,
		expectedWait:   defaultRetryAfter,
		expectedStatus: http.StatusOK,
	}, {
		name: "403 without rate limit headers is not retried",
		responses: []*http.Response{{
			StatusCode: http.StatusForbidden,
			Header:     http.Header{HeaderXRateLimitRemaining: {"4999"}},
		}},
		expectedCalls:  1,
		expectedStatus: http.StatusForbidden,
	}, {
		name: "401 is not retried",
		responses: []*http.Response{{
			StatusCode: http.StatusUnauthorized,
			Header:     http.Header{},
		}},
		expectedCalls:  1,
		expectedStatus: http.StatusUnauthorized,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := slogtest.Context(t)
			clock := clockwork.NewFakeClockAt(baseTime)
			rt := &testRT{responses: tt.responses}
			transport := NewTransport(rt, defaultRetryAfter, WithClock(clock))

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/repos/a/b/pulls", nil)
			if err != nil {
				t.Fatal(err)
			}

			type result struct {
				resp *http.Response
				err  error
			}
			done := make(chan result, 1)
			go func() {
				resp, err := transport.RoundTrip(req)
				done <- result{resp, err}
			}()

			if tt.expectedWait > 0 {
				if err := clock.BlockUntilContext(ctx, 1); err != nil {
					t.Fatalf("BlockUntilContext() = %v", err)
				}
				if got := rt.calls(); got != 1 {
					t.Fatalf("calls before pause ended = %d, want 1", got)
				}
				clock.Advance(tt.expectedWait)
			}

			r := <-done
			if r.err != nil {
				t.Fatalf("RoundTrip() = %v", r.err)
			}
			if r.resp.StatusCode != tt.expectedStatus {
				t.Errorf("status = %d, want %d", r.resp.StatusCode, tt.expectedStatus)
			}
			if got := rt.calls(); got != tt.expectedCalls {
				t.Errorf("calls = %d, want %d", got, tt.expectedCalls)
			}
		})
	}
}

func TestTransport_MaxRetries(t *testing.T) {
	ctx := slogtest.Context(t)
	limited := func() *http.Response {
		return &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{HeaderRetryAfter: {"1"}}}
	}
	rt := &testRT{responses: []*http.Response{limited(), limited(), limited()}}
	clock := clockwork.NewFakeClock()
	transport := NewTransport(rt, time.Second, WithClock(clock), WithMaxRetries(1))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/user", nil)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan *http.Response, 1)
	go func() {
		resp, err := transport.RoundTrip(req)
		if err != nil {
			t.Errorf("RoundTrip() = %v", err)
		}
		done <- resp
	}()

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("BlockUntilContext() = %v", err)
	}
	clock.Advance(time.Second)

	resp := <-done
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("RoundTrip() = %v, want the 429 response", resp)
	}
	if got := rt.calls(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestLimiter_PauseOnlyExtends(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := &limiter{clock: clock}

	l.PauseFor(10 * time.Second)
	first := l.pauseUntil
	l.PauseFor(time.Second)
	if !l.pauseUntil.Equal(first) {
		t.Errorf("shorter pause moved deadline from %v to %v", first, l.pauseUntil)
	}
	l.PauseFor(time.Minute)
	if !l.pauseUntil.After(first) {
		t.Errorf("longer pause did not extend deadline past %v", first)
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tr := NewTransport(&testRT{}, time.Second, WithClock(clock))
	tr.limiter.PauseFor(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tr.limiter.Wait(ctx); err == nil {
		t.Error("Wait() = nil, want context error")
	}
}
