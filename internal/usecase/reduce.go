package usecase

import (
	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/github-user-stats/internal/domain"
)

// Reduce folds the listing and the per-repository outcomes into a report.
// It performs no I/O and does not depend on the order of outcomes.
func Reduce(summary domain.UserSummary, repos []domain.RepositoryDescriptor, outcomes []domain.RepoOutcome) *domain.Report {
	report := &domain.Report{
		Summary:      summary,
		Repositories: len(repos),
		Skipped:      []domain.SkippedRepository{},
	}

	aggregates := make([]domain.CommitAggregate, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Skipped {
			report.Skipped = append(report.Skipped, domain.SkippedRepository{
				Owner:  o.Repository.Owner,
				Name:   o.Repository.Name,
				Reason: o.Reason,
			})
			continue
		}
		report.AnalyzedRepositories++
		aggregates = append(aggregates, o.Aggregate)
	}
	report.Commits = domain.MergeAll(aggregates...)
	report.Lifespan = report.Commits.Lifespan()

	tally := domain.NewLanguageTally()
	for _, repo := range repos {
		tally.AddRepository(repo)
	}
	report.Languages = tally.Shares()

	report.MostStarred = MostStarred(repos)
	report.Distribution = commitDistribution(outcomes)
	return report
}

// MostStarred returns the repository with the most stars; the first one
// listed wins ties. It returns nil for an empty listing.
func MostStarred(repos []domain.RepositoryDescriptor) *domain.RepositoryDescriptor {
	if len(repos) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(repos); i++ {
		if repos[i].Stars > repos[best].Stars {
			best = i
		}
	}
	selected := repos[best]
	return &selected
}

// commitDistribution summarizes commits per analyzed repository that has any commits.
func commitDistribution(outcomes []domain.RepoOutcome) *domain.CommitDistribution {
	var data stats.Float64Data
	for _, o := range outcomes {
		if !o.Skipped && o.Aggregate.Commits > 0 {
			data = append(data, float64(o.Aggregate.Commits))
		}
	}
	if len(data) == 0 {
		return nil
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return nil
	}
	median, err := stats.Median(data)
	if err != nil {
		return nil
	}
	p90, err := stats.PercentileNearestRank(data, 90)
	if err != nil {
		return nil
	}
	return &domain.CommitDistribution{Mean: mean, Median: median, P90: p90}
}
