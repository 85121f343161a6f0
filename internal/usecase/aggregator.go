// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/github-user-stats/internal/domain"
	"github.com/naka-gawa/github-user-stats/internal/gateway"
)

// Options tunes a run.
type Options struct {
	// Workers bounds concurrent repository analysis. Defaults to DefaultWorkers.
	Workers int
	// AllAuthors counts every commit instead of only the subject user's.
	AllAuthors bool
	// Progress receives advisory progress events.
	Progress ProgressFunc
}

// Aggregator is the use case for aggregating GitHub stats.
// It orchestrates the fetching and combining of data.
type Aggregator struct {
	fetcher gateway.Fetcher
	logger  *logrus.Logger
	opts    Options
	now     func() time.Time
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, logger *logrus.Logger, opts Options) *Aggregator {
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger,
		opts:    opts,
		now:     time.Now,
	}
}

// Aggregate performs the main business logic.
// It fetches the user summary and repository listing, analyzes every
// repository's commits concurrently and reduces everything into a report.
// An empty login analyzes the owner of the token.
func (a *Aggregator) Aggregate(ctx context.Context, login string) (*domain.Report, error) {
	runID := uuid.NewString()
	log := a.logger.WithField("run_id", runID)
	log.Info("Usecase: Starting data aggregation...")

	if login == "" {
		viewer, err := a.fetcher.ViewerLogin(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve authenticated user: %w", err)
		}
		login = viewer
		log.WithField("login", login).Info("No user given, analyzing the authenticated user")
	}

	if quota, err := a.fetcher.Quota(ctx); err != nil {
		log.WithError(err).Debug("Rate limit snapshot unavailable")
	} else {
		log.WithFields(logrus.Fields{
			"core_remaining":    quota.CoreRemaining,
			"graphql_remaining": quota.GraphQLRemaining,
			"graphql_limit":     quota.GraphQLLimit,
			"graphql_reset":     quota.GraphQLReset.Format(time.RFC3339),
		}).Debug("Rate limit snapshot")
	}

	summary, err := a.fetcher.FetchUserSummary(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch summary of %s: %w", login, err)
	}

	repos, err := a.ListRepositories(ctx, login)
	if err != nil {
		return nil, err
	}
	log.WithField("repositories", len(repos)).Info("Usecase: Repositories listed.")

	authorID := summary.ID
	if a.opts.AllAuthors {
		authorID = ""
	}
	outcomes, err := RunAll(ctx, repos, a.opts.Workers, func(ctx context.Context, repo domain.RepositoryDescriptor) (domain.RepoOutcome, error) {
		return a.AggregateCommits(ctx, repo, authorID)
	}, a.opts.Progress)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze commits: %w", err)
	}

	report := Reduce(summary, repos, outcomes)
	report.RunID = runID
	report.GeneratedAt = a.now().UTC()

	log.WithFields(logrus.Fields{
		"analyzed": report.AnalyzedRepositories,
		"skipped":  len(report.Skipped),
		"commits":  report.Commits.Commits,
	}).Info("Usecase: Aggregation complete.")
	return report, nil
}
