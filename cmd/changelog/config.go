/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/pflag"
)

const publicAPIURL = "https://api.github.com"

type config struct {
	// Required inputs, settable by flag or environment.
	Token      string `env:"GITHUB_TOKEN,required"`
	Repository string `env:"GITHUB_REPOSITORY,required"`
	Output     string `env:"CHANGELOG_OUTPUT, default=CHANGELOG.md"`

	// GitHub Enterprise Server API root. The public API URL is ignored.
	APIURL string `env:"GITHUB_API_URL"`

	LogLevel slog.Level `env:"LOG_LEVEL, default=info"`

	// Prometheus textfile written after the run, if set.
	MetricsTextfile string `env:"METRICS_TEXTFILE"`
	// Tracing is enabled when an OTLP endpoint is configured.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// flagEnv maps each command-line flag to the variable it overrides.
var flagEnv = map[string]string{
	"token":  "GITHUB_TOKEN",
	"repo":   "GITHUB_REPOSITORY",
	"output": "CHANGELOG_OUTPUT",
}

// loadConfig reads the environment through env, with any flags that were
// set on the command line taking precedence.
func loadConfig(ctx context.Context, flags *pflag.FlagSet, env envconfig.Lookuper) (*config, error) {
	overrides := make(map[string]string, len(flagEnv))
	for name, key := range flagEnv {
		f := flags.Lookup(name)
		if f != nil && f.Changed {
			overrides[key] = f.Value.String()
		}
	}

	var cfg config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.MultiLookuper(envconfig.MapLookuper(overrides), env),
	}); err != nil {
		return nil, fmt.Errorf("processing configuration: %w", err)
	}
	if cfg.Token == "" {
		return nil, errors.New("a GitHub token is required (--token or GITHUB_TOKEN)")
	}
	if cfg.Repository == "" {
		return nil, errors.New("a repository is required (--repo or GITHUB_REPOSITORY)")
	}
	if cfg.Output == "" {
		cfg.Output = "CHANGELOG.md"
	}
	return &cfg, nil
}

// enterpriseURL returns the API root to use, or "" for github.com.
func (c *config) enterpriseURL() string {
	if strings.TrimSuffix(c.APIURL, "/") == publicAPIURL {
		return ""
	}
	return c.APIURL
}
