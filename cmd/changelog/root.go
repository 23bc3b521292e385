/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/chainguard-dev/clog"
	"github.com/chainguard-dev/prchangelog/pkg/changelog"
	"github.com/chainguard-dev/prchangelog/pkg/docstore"
	"github.com/chainguard-dev/prchangelog/pkg/githubsource"
	"github.com/chainguard-dev/prchangelog/pkg/httpmetrics"
	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

// newRootCmd reads configuration from env; clock dates the new section.
func newRootCmd(env envconfig.Lookuper, clock clockwork.Clock) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Add merged pull requests to a changelog",
		Long: `Fetch the pull requests merged since the newest date in the changelog,
group them by change type and insert them as a new dated section below
the changelog header.

Pull requests are categorized by label (feature, bug, docs, refactor, test,
chore, breaking) and otherwise by a conventional-commit title prefix such
as "feat:" or "fix(scope):". Anything else is filed under maintenance.

Every flag can also be set through the environment: GITHUB_TOKEN,
GITHUB_REPOSITORY and CHANGELOG_OUTPUT. The output may be a local path or
a blob URL such as gs://bucket/CHANGELOG.md.`,
		Example: `  changelog --token "$GITHUB_TOKEN" --repo chainguard-dev/prchangelog
  changelog --repo octo-org/hello --output docs/CHANGELOG.md`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, cmd.Flags(), env)
			if err != nil {
				return err
			}

			logger := clog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))
			return run(clog.WithLogger(ctx, logger), cfg, clock, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("token", "", "GitHub personal access token")
	cmd.Flags().String("repo", "", "Repository name (owner/repo)")
	cmd.Flags().String("output", "CHANGELOG.md", "Output changelog file")
	return cmd
}

func run(ctx context.Context, cfg *config, clock clockwork.Clock, out io.Writer) error {
	if cfg.OTLPEndpoint != "" {
		defer httpmetrics.SetupTracer(ctx)()
	}

	repo, err := changelog.ParseRepository(cfg.Repository)
	if err != nil {
		return err
	}

	var opts []githubsource.ClientOption
	if u := cfg.enterpriseURL(); u != "" {
		parsed, err := url.Parse(u)
		if err != nil {
			return fmt.Errorf("parsing GITHUB_API_URL: %w", err)
		}
		httpmetrics.SetBuckets(map[string]string{
			"api.github.com": httpmetrics.GitHubBucket,
			parsed.Host:      httpmetrics.GitHubBucket,
		})
		opts = append(opts, githubsource.WithBaseURL(u))
	}
	client, err := githubsource.NewClient(ctx, cfg.Token, opts...)
	if err != nil {
		return err
	}

	if cfg.MetricsTextfile != "" {
		// Also written when the run fails.
		defer func() {
			if err := httpmetrics.WriteTextfile(ctx, cfg.MetricsTextfile); err != nil {
				clog.WarnContextf(ctx, "Failed to write metrics textfile: %v", err)
			}
		}()
	}

	store, err := docstore.Open(ctx, cfg.Output)
	if err != nil {
		return err
	}
	defer docstore.Close(store)

	res, err := changelog.NewUpdater(repo, githubsource.New(client), store).
		WithMerger(changelog.NewMergerWithClock(clock)).
		Run(ctx)
	if err != nil {
		return err
	}

	if !res.Updated {
		fmt.Fprintln(out, color.YellowString("No new changes to add to changelog."))
		return nil
	}
	fmt.Fprintf(out, "%s %s\n", color.GreenString("Changelog updated successfully:"), cfg.Output)
	return nil
}
