package usecase

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/github-user-stats/internal/domain"
)

// DefaultWorkers is the number of repositories analyzed concurrently.
const DefaultWorkers = 10

// ProgressEvent is emitted when a repository starts and when it finishes.
type ProgressEvent struct {
	Total      int
	Completed  int
	Repository string
	Finished   bool
	Skipped    bool
}

// ProgressFunc receives progress events. Calls are serialized.
type ProgressFunc func(ProgressEvent)

// AggregateFunc analyzes one repository.
type AggregateFunc func(ctx context.Context, repo domain.RepositoryDescriptor) (domain.RepoOutcome, error)

// RunAll runs aggregate once per repository with at most workers calls in
// flight. Outcomes are returned in repository order regardless of completion
// order. Only an error returned by aggregate stops the run.
func RunAll(ctx context.Context, repos []domain.RepositoryDescriptor, workers int, aggregate AggregateFunc, progress ProgressFunc) ([]domain.RepoOutcome, error) {
	if workers < 1 {
		workers = DefaultWorkers
	}

	outcomes := make([]domain.RepoOutcome, len(repos))
	var mu sync.Mutex
	completed := 0
	report := func(ev ProgressEvent) {
		if progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if ev.Finished {
			completed++
		}
		ev.Total = len(repos)
		ev.Completed = completed
		progress(ev)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, repo := range repos {
		g.Go(func() error {
			report(ProgressEvent{Repository: repo.FullName()})
			outcome, err := aggregate(gctx, repo)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			report(ProgressEvent{Repository: repo.FullName(), Finished: true, Skipped: outcome.Skipped})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
