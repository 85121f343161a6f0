package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-user-stats/internal/domain"
)

func TestMostStarred(t *testing.T) {
	testCases := []struct {
		name  string
		repos []domain.RepositoryDescriptor
		want  string
	}{
		{
			name: "first of the tied maximum wins",
			repos: []domain.RepositoryDescriptor{
				{Name: "a", Stars: 3}, {Name: "b", Stars: 7}, {Name: "c", Stars: 7}, {Name: "d", Stars: 2},
			},
			want: "b",
		},
		{
			name:  "single repository",
			repos: []domain.RepositoryDescriptor{{Name: "only"}},
			want:  "only",
		},
		{
			name:  "no repositories",
			repos: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := MostStarred(tc.repos)
			if tc.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got.Name)
		})
	}
}

func TestReduce(t *testing.T) {
	jan := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	repos := []domain.RepositoryDescriptor{
		{Owner: "octo", Name: "a", Stars: 1, Languages: []domain.LanguageEdge{{Name: "Go", Size: 0}}},
		{Owner: "octo", Name: "b", Stars: 4},
		{Owner: "octo", Name: "c", Stars: 2},
	}
	outcomes := []domain.RepoOutcome{
		domain.Analyzed(repos[0], domain.CommitAggregate{Additions: 50, Deletions: 10, Commits: 3, Earliest: &jan, Latest: &jun}),
		domain.Analyzed(repos[1], domain.CommitAggregate{Additions: 20, Deletions: 5, Commits: 1, Earliest: &mar, Latest: &mar}),
		domain.Skipped(repos[2], "timeout"),
	}

	report := Reduce(domain.UserSummary{Login: "octo"}, repos, outcomes)

	assert.Equal(t, 70, report.Commits.Additions)
	assert.Equal(t, 15, report.Commits.Deletions)
	assert.Equal(t, 4, report.Commits.Commits)
	require.NotNil(t, report.Lifespan)
	assert.Equal(t, 151*24*time.Hour, *report.Lifespan)

	assert.Equal(t, 3, report.Repositories)
	assert.Equal(t, 2, report.AnalyzedRepositories)
	assert.Equal(t, []domain.SkippedRepository{{Owner: "octo", Name: "c", Reason: "timeout"}}, report.Skipped)
	assert.Equal(t, "b", report.MostStarred.Name)

	require.Len(t, report.Languages, 1)
	assert.Equal(t, "Go", report.Languages[0].Name)
	assert.Zero(t, report.Languages[0].Percentage)

	require.NotNil(t, report.Distribution)
	assert.InDelta(t, 2.0, report.Distribution.Mean, 1e-9)
	assert.InDelta(t, 2.0, report.Distribution.Median, 1e-9)
	assert.InDelta(t, 3.0, report.Distribution.P90, 1e-9)
}

func TestReduce_OrderIndependent(t *testing.T) {
	d1 := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	repos := []domain.RepositoryDescriptor{{Name: "x"}, {Name: "y"}}
	x := domain.Analyzed(repos[0], domain.CommitAggregate{Additions: 1, Commits: 1, Earliest: &d1, Latest: &d1})
	y := domain.Analyzed(repos[1], domain.CommitAggregate{Deletions: 9, Commits: 2, Earliest: &d2, Latest: &d2})

	forward := Reduce(domain.UserSummary{}, repos, []domain.RepoOutcome{x, y})
	backward := Reduce(domain.UserSummary{}, repos, []domain.RepoOutcome{y, x})
	assert.Equal(t, forward.Commits, backward.Commits)
	assert.Equal(t, forward.Lifespan, backward.Lifespan)
}

func TestReduce_NoCommits(t *testing.T) {
	repos := []domain.RepositoryDescriptor{{Name: "empty"}}
	report := Reduce(domain.UserSummary{}, repos, []domain.RepoOutcome{domain.Analyzed(repos[0], domain.CommitAggregate{})})

	assert.True(t, report.Commits.IsZero())
	assert.Nil(t, report.Lifespan)
	assert.Nil(t, report.Distribution)
	assert.Equal(t, 1, report.AnalyzedRepositories)
	assert.NotNil(t, report.Skipped)
}
