package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/github-user-stats/internal/domain"
	"github.com/naka-gawa/github-user-stats/internal/gateway"
	"github.com/naka-gawa/github-user-stats/internal/pagination"
)

// ListRepositories drives the repository listing to exhaustion, keeping the
// remote ordering (most recently pushed first). Any failure is returned.
func (a *Aggregator) ListRepositories(ctx context.Context, login string) ([]domain.RepositoryDescriptor, error) {
	repos, err := pagination.Collect(ctx, func(ctx context.Context, cursor string) (pagination.Page[domain.RepositoryDescriptor], error) {
		return a.fetcher.FetchRepositoryPage(ctx, login, cursor)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories of %s: %w", login, err)
	}
	return repos, nil
}

// AggregateCommits sums the default-branch history of repo, optionally
// restricted to authorID. Failures talking to GitHub are absorbed into a
// skipped outcome with an empty aggregate; the returned error is reserved for
// failures that must abort the whole run (rate limiting, cancellation,
// unparseable timestamps).
func (a *Aggregator) AggregateCommits(ctx context.Context, repo domain.RepositoryDescriptor, authorID string) (domain.RepoOutcome, error) {
	log := a.logger.WithFields(logrus.Fields{"owner": repo.Owner, "repo": repo.Name})

	fetch := func(ctx context.Context, cursor string) (pagination.Page[domain.CommitRecord], error) {
		return a.fetcher.FetchCommitPage(ctx, repo, authorID, cursor)
	}

	var total domain.CommitAggregate
	for commits, err := range pagination.New(fetch).Pages(ctx) {
		if err != nil {
			if isFatal(err) {
				return domain.RepoOutcome{}, err
			}
			log.WithError(err).Warn("Skipping repository")
			return domain.Skipped(repo, err.Error()), nil
		}
		if len(commits) == 0 {
			break
		}
		for _, c := range commits {
			agg, err := c.Aggregate()
			if err != nil {
				return domain.RepoOutcome{}, fmt.Errorf("%s: %w", repo.FullName(), err)
			}
			total = total.Merge(agg)
		}
	}

	log.WithField("commits", total.Commits).Debug("Aggregated repository commits")
	return domain.Analyzed(repo, total), nil
}

// isFatal reports errors that are not scoped to a single repository.
func isFatal(err error) bool {
	return errors.Is(err, gateway.ErrRateLimited) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
