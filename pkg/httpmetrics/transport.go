/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package httpmetrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

// GitHubBucket is the host bucket whose request paths are bucketized too.
const GitHubBucket = "github"

var (
	mReqCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_client_request_count",
			Help: "The total number of HTTP requests",
		},
		[]string{"code", "method", "host", "path"},
	)
	mReqDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_client_request_duration_seconds",
			Help:    "The duration of HTTP requests",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"code", "method", "host", "path"},
	)
	seenHostMap = sync.Map{}
)

var (
	bucketsMu sync.RWMutex
	buckets   = map[string]string{"api.github.com": GitHubBucket}
)

// SetBuckets replaces the exact host to bucket mapping.
func SetBuckets(b map[string]string) {
	bucketsMu.Lock()
	defer bucketsMu.Unlock()
	buckets = b
}

// WrapTransport wraps an http.RoundTripper with instrumentation.
func WrapTransport(t http.RoundTripper) http.RoundTripper {
	return instrumentRoundTripperCounter(
		instrumentRoundTripperDuration(
			instrumentGitHubRateLimits(
				otelhttp.NewTransport(t))))
}

func mapErrorToLabel(err error) string {
	switch msg := err.Error(); {
	case strings.Contains(msg, "no route to host"):
		return "no-route-to-host"
	case strings.Contains(msg, "i/o timeout"):
		return "io-timeout"
	case strings.Contains(msg, "TLS handshake timeout"):
		return "tls-handshake-timeout"
	case strings.Contains(msg, "TLS handshake error"):
		return "tls-handshake-error"
	case strings.Contains(msg, "unexpected EOF"):
		return "unexpected-eof"
	case strings.Contains(msg, "context canceled"):
		return "canceled"
	default:
		return "unknown-error"
	}
}

func requestLabels(r *http.Request) prometheus.Labels {
	host := bucketize(r.Context(), r.URL.Host)
	path := ""
	if host == GitHubBucket {
		path = bucketizePath(r.URL.Path)
	}
	return prometheus.Labels{
		"method": r.Method,
		"host":   host,
		"path":   path,
	}
}

// These instrument methods based on promhttp, with bucketized host and path labels added:
// https://pkg.go.dev/github.com/prometheus/client_golang/prometheus/promhttp

func instrumentRoundTripperCounter(next http.RoundTripper) promhttp.RoundTripperFunc {
	return func(r *http.Request) (*http.Response, error) {
		labels := requestLabels(r)
		ctx, span := otel.Tracer("httpmetrics").Start(r.Context(), fmt.Sprintf("http-%s-%s", r.Method, labels["host"]))
		// Ensure that outgoing requests are nested under this span.
		r = r.WithContext(ctx)
		defer span.End()

		resp, err := next.RoundTrip(r)
		if err == nil {
			labels["code"] = strconv.Itoa(resp.StatusCode)
		} else {
			labels["code"] = mapErrorToLabel(err)
		}
		mReqCount.With(labels).Inc()
		return resp, err
	}
}

func instrumentRoundTripperDuration(next http.RoundTripper) promhttp.RoundTripperFunc {
	return func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(r)
		if err == nil {
			labels := requestLabels(r)
			labels["code"] = strconv.Itoa(resp.StatusCode)
			mReqDuration.With(labels).Observe(time.Since(start).Seconds())
		}
		return resp, err
	}
}

func bucketize(ctx context.Context, host string) string {
	bucketsMu.RLock()
	defer bucketsMu.RUnlock()

	if b, ok := buckets[host]; ok {
		return b
	}

	v, _ := seenHostMap.LoadOrStore(host, &atomic.Int64{})
	if seen := v.(*atomic.Int64).Add(1); seen == 1 {
		clog.WarnContext(ctx, `bucketing host as "other", use httpmetrics.SetBuckets`, "host", host)
	}
	return "other"
}

var (
	mGitHubRateLimitRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "github_rate_limit_remaining",
			Help: "The number of requests remaining in the current rate limit window",
		},
		[]string{"resource"},
	)
	mGitHubRateLimit = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "github_rate_limit",
			Help: "The number of requests allowed during the rate limit window",
		},
		[]string{"resource"},
	)
	mGitHubRateLimitReset = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "github_rate_limit_reset",
			Help: "The timestamp at which the current rate limit window resets",
		},
		[]string{"resource"},
	)
	mGitHubRateLimitUsed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "github_rate_limit_used",
			Help: "The fraction of the rate limit window used",
		},
		[]string{"resource"},
	)
)

// instrumentGitHubRateLimits records the rate limit headers GitHub returns.
// See https://docs.github.com/en/rest/using-the-rest-api/rate-limits-for-the-rest-api?apiVersion=2022-11-28
func instrumentGitHubRateLimits(next http.RoundTripper) promhttp.RoundTripperFunc {
	return func(r *http.Request) (*http.Response, error) {
		resp, err := next.RoundTrip(r)
		if err != nil {
			return resp, err
		}
		if bucketize(r.Context(), r.URL.Host) != GitHubBucket {
			return resp, nil
		}
		if resp.Header.Get("X-RateLimit-Limit") == "" {
			return resp, nil
		}

		resource := resp.Header.Get("X-RateLimit-Resource")
		if resource == "" {
			resource = "unknown"
		}
		val := func(key string) float64 {
			i, err := strconv.Atoi(resp.Header.Get(key))
			if err != nil {
				return 0
			}
			return float64(i)
		}
		labels := prometheus.Labels{"resource": resource}

		remaining := val("X-RateLimit-Remaining")
		mGitHubRateLimitRemaining.With(labels).Set(remaining)

		limit := val("X-RateLimit-Limit")
		mGitHubRateLimit.With(labels).Set(limit)

		mGitHubRateLimitReset.With(labels).Set(val("X-RateLimit-Reset"))

		if limit > 0 {
			mGitHubRateLimitUsed.With(labels).Set((limit - remaining) / limit)
		}
		return resp, nil
	}
}
