package domain

import "time"

// UserSummary holds the cheap, high-level counters of a user.
type UserSummary struct {
	ID           string    `json:"id"`
	Login        string    `json:"login"`
	Name         string    `json:"name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Followers    int       `json:"followers"`
	Following    int       `json:"following"`
	Repositories int       `json:"repositories"`
	PullRequests int       `json:"pull_requests"`
	Issues       int       `json:"issues"`
}

// SkippedRepository names a repository excluded from commit statistics.
type SkippedRepository struct {
	Owner  string `json:"owner"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// CommitDistribution describes commits per analyzed repository.
type CommitDistribution struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// Report is the consolidated result of one run.
type Report struct {
	RunID                string                `json:"run_id"`
	GeneratedAt          time.Time             `json:"generated_at"`
	Summary              UserSummary           `json:"summary"`
	Commits              CommitAggregate       `json:"commits"`
	Lifespan             *time.Duration        `json:"lifespan_ns,omitempty"`
	Languages            []LanguageShare       `json:"languages"`
	MostStarred          *RepositoryDescriptor `json:"most_starred,omitempty"`
	Repositories         int                   `json:"repositories"`
	AnalyzedRepositories int                   `json:"analyzed_repositories"`
	Skipped              []SkippedRepository   `json:"skipped"`
	Distribution         *CommitDistribution   `json:"commit_distribution,omitempty"`
}
