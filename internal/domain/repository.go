package domain

// LanguageEdge is one language entry of a repository with its byte size.
type LanguageEdge struct {
	Name  string `json:"name"`
	Size  int64  `json:"size"`
	Color string `json:"color,omitempty"`
}

// RepositoryDescriptor is a listed repository with the metadata needed for the report.
type RepositoryDescriptor struct {
	Owner     string         `json:"owner"`
	Name      string         `json:"name"`
	Stars     int            `json:"stars"`
	Forks     int            `json:"forks"`
	Languages []LanguageEdge `json:"languages,omitempty"`
}

// FullName returns "owner/name".
func (r RepositoryDescriptor) FullName() string {
	return r.Owner + "/" + r.Name
}

// RepoOutcome is the result of aggregating one repository's commits.
// Either the aggregate is valid, or the repository was skipped for Reason.
type RepoOutcome struct {
	Repository RepositoryDescriptor
	Aggregate  CommitAggregate
	Skipped    bool
	Reason     string
}

// Analyzed builds a successful outcome.
func Analyzed(repo RepositoryDescriptor, agg CommitAggregate) RepoOutcome {
	return RepoOutcome{Repository: repo, Aggregate: agg}
}

// Skipped builds an outcome for a repository whose commits could not be fetched.
// It contributes the identity aggregate.
func Skipped(repo RepositoryDescriptor, reason string) RepoOutcome {
	return RepoOutcome{Repository: repo, Skipped: true, Reason: reason}
}
