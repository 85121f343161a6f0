// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"

	"github.com/naka-gawa/github-user-stats/internal/domain"
	"github.com/naka-gawa/github-user-stats/internal/pagination"
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchUserSummary(ctx context.Context, login string) (domain.UserSummary, error)
	FetchRepositoryPage(ctx context.Context, login, cursor string) (pagination.Page[domain.RepositoryDescriptor], error)
	// FetchCommitPage returns pagination.ErrResourceAbsent when the repository has no default branch.
	// An empty authorID fetches commits of every author.
	FetchCommitPage(ctx context.Context, repo domain.RepositoryDescriptor, authorID, cursor string) (pagination.Page[domain.CommitRecord], error)
	ViewerLogin(ctx context.Context) (string, error)
	Quota(ctx context.Context) (Quota, error)
}

// Quota is a snapshot of the remaining API budget.
type Quota struct {
	CoreRemaining    int
	GraphQLLimit     int
	GraphQLRemaining int
	GraphQLReset     time.Time
}

// RepositoryFilter selects which repositories of a user are listed.
type RepositoryFilter struct {
	// Privacy is "public", "private" or "" for both.
	Privacy string
	// Affiliations holds "owner", "collaborator" and/or "organization_member".
	Affiliations []string
}

// Options configures a GitHubGateway.
type Options struct {
	// BaseURL is a GitHub Enterprise Server base URL; empty targets github.com.
	BaseURL       string
	RateLimitWait time.Duration
	Filter        RepositoryFilter
	// Transport overrides the underlying round tripper (tests).
	Transport http.RoundTripper
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	filter        RepositoryFilter
	logger        *logrus.Logger
}

type pageInfo struct {
	HasNextPage bool
	EndCursor   githubv4.String
}

// userSummaryQuery is for the quick, non-paginated summary counters.
type userSummaryQuery struct {
	User struct {
		ID        githubv4.String
		Login     githubv4.String
		Name      githubv4.String
		CreatedAt githubv4.DateTime
		Followers struct {
			TotalCount githubv4.Int
		}
		Following struct {
			TotalCount githubv4.Int
		}
		Repositories struct {
			TotalCount githubv4.Int
		} `graphql:"repositories(ownerAffiliations: $affiliations, isFork: false, privacy: $privacy)"`
		PullRequests struct {
			TotalCount githubv4.Int
		}
		Issues struct {
			TotalCount githubv4.Int
		}
	} `graphql:"user(login: $login)"`
}

// repositoriesQuery lists repositories, most recently pushed first.
type repositoriesQuery struct {
	User struct {
		Login        githubv4.String
		Repositories struct {
			PageInfo pageInfo
			Nodes    []struct {
				Name  githubv4.String
				Owner struct {
					Login githubv4.String
				}
				StargazerCount githubv4.Int
				ForkCount      githubv4.Int
				Languages      struct {
					Edges []struct {
						Size githubv4.Int
						Node struct {
							Name  githubv4.String
							Color githubv4.String
						}
					}
				} `graphql:"languages(first: 10, orderBy: {field: SIZE, direction: DESC})"`
			}
		} `graphql:"repositories(first: 100, after: $cursor, ownerAffiliations: $affiliations, isFork: false, privacy: $privacy, orderBy: {field: PUSHED_AT, direction: DESC})"`
	} `graphql:"user(login: $login)"`
}

// commitHistoryQuery walks the default branch history of one repository.
type commitHistoryQuery struct {
	Repository struct {
		DefaultBranchRef struct {
			Name   githubv4.String
			Target struct {
				Commit struct {
					History struct {
						PageInfo pageInfo
						Nodes    []struct {
							Additions     githubv4.Int
							Deletions     githubv4.Int
							CommittedDate githubv4.String
						}
					} `graphql:"history(first: 100, after: $cursor, author: $author)"`
				} `graphql:"... on Commit"`
			}
		}
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *logrus.Logger, opts Options) (*GitHubGateway, error) {
	transport, err := newTransport(token, opts.Transport, opts.RateLimitWait, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	httpClient := &http.Client{Transport: transport}

	restClient := github.NewClient(httpClient)
	graphqlClient := githubv4.NewClient(httpClient)
	if opts.BaseURL != "" {
		base := strings.TrimSuffix(opts.BaseURL, "/")
		restClient, err = restClient.WithEnterpriseURLs(base, base)
		if err != nil {
			return nil, fmt.Errorf("invalid enterprise url %q: %w", opts.BaseURL, err)
		}
		graphqlClient = githubv4.NewEnterpriseClient(base+"/api/graphql", httpClient)
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		filter:        opts.Filter,
		logger:        logger,
	}, nil
}

// FetchUserSummary fetches the high-level counters and node id of a user.
func (g *GitHubGateway) FetchUserSummary(ctx context.Context, login string) (domain.UserSummary, error) {
	const op = "fetch user summary"
	g.logger.WithField("login", login).Debug("Fetching user summary")

	var q userSummaryQuery
	variables := g.filterVariables(map[string]interface{}{
		"login": githubv4.String(login),
	})
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return domain.UserSummary{}, queryError(op, err)
	}
	if q.User.Login == "" {
		return domain.UserSummary{}, &MalformedResponseError{Operation: op, Reason: fmt.Sprintf("user %q missing from response", login)}
	}

	return domain.UserSummary{
		ID:           string(q.User.ID),
		Login:        string(q.User.Login),
		Name:         string(q.User.Name),
		CreatedAt:    q.User.CreatedAt.Time,
		Followers:    int(q.User.Followers.TotalCount),
		Following:    int(q.User.Following.TotalCount),
		Repositories: int(q.User.Repositories.TotalCount),
		PullRequests: int(q.User.PullRequests.TotalCount),
		Issues:       int(q.User.Issues.TotalCount),
	}, nil
}

// FetchRepositoryPage fetches one page of the user's non-fork repositories.
func (g *GitHubGateway) FetchRepositoryPage(ctx context.Context, login, cursor string) (pagination.Page[domain.RepositoryDescriptor], error) {
	const op = "list repositories"
	g.logger.WithFields(logrus.Fields{"login": login, "cursor": cursor}).Debug("Fetching repository page")

	var q repositoriesQuery
	variables := g.filterVariables(map[string]interface{}{
		"login":  githubv4.String(login),
		"cursor": cursorVariable(cursor),
	})
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return pagination.Page[domain.RepositoryDescriptor]{}, queryError(op, err)
	}
	if q.User.Login == "" {
		return pagination.Page[domain.RepositoryDescriptor]{}, &MalformedResponseError{Operation: op, Reason: fmt.Sprintf("user %q missing from response", login)}
	}

	conn := q.User.Repositories
	if err := checkPageInfo(op, conn.PageInfo); err != nil {
		return pagination.Page[domain.RepositoryDescriptor]{}, err
	}

	repos := make([]domain.RepositoryDescriptor, 0, len(conn.Nodes))
	for _, node := range conn.Nodes {
		if node.Name == "" {
			continue
		}
		repo := domain.RepositoryDescriptor{
			Owner: string(node.Owner.Login),
			Name:  string(node.Name),
			Stars: int(node.StargazerCount),
			Forks: int(node.ForkCount),
		}
		for _, edge := range node.Languages.Edges {
			if edge.Node.Name == "" {
				continue
			}
			repo.Languages = append(repo.Languages, domain.LanguageEdge{
				Name:  string(edge.Node.Name),
				Size:  int64(edge.Size),
				Color: string(edge.Node.Color),
			})
		}
		repos = append(repos, repo)
	}

	return pagination.Page[domain.RepositoryDescriptor]{
		Items:       repos,
		EndCursor:   string(conn.PageInfo.EndCursor),
		HasNextPage: conn.PageInfo.HasNextPage,
	}, nil
}

// FetchCommitPage fetches one page of default-branch history for repo.
func (g *GitHubGateway) FetchCommitPage(ctx context.Context, repo domain.RepositoryDescriptor, authorID, cursor string) (pagination.Page[domain.CommitRecord], error) {
	op := "fetch commits of " + repo.FullName()
	g.logger.WithFields(logrus.Fields{"owner": repo.Owner, "repo": repo.Name, "cursor": cursor}).Debug("Fetching commit page")

	var author *githubv4.CommitAuthor
	if authorID != "" {
		author = &githubv4.CommitAuthor{ID: githubv4.NewID(authorID)}
	}
	variables := map[string]interface{}{
		"owner":  githubv4.String(repo.Owner),
		"name":   githubv4.String(repo.Name),
		"cursor": cursorVariable(cursor),
		"author": author,
	}

	var q commitHistoryQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return pagination.Page[domain.CommitRecord]{}, queryError(op, err)
	}

	branch := q.Repository.DefaultBranchRef
	if branch.Name == "" {
		return pagination.Page[domain.CommitRecord]{}, fmt.Errorf("%s: no default branch: %w", repo.FullName(), pagination.ErrResourceAbsent)
	}

	history := branch.Target.Commit.History
	if err := checkPageInfo(op, history.PageInfo); err != nil {
		return pagination.Page[domain.CommitRecord]{}, err
	}

	commits := make([]domain.CommitRecord, 0, len(history.Nodes))
	for _, node := range history.Nodes {
		commits = append(commits, domain.CommitRecord{
			Additions:     int(node.Additions),
			Deletions:     int(node.Deletions),
			CommittedDate: string(node.CommittedDate),
		})
	}

	return pagination.Page[domain.CommitRecord]{
		Items:       commits,
		EndCursor:   string(history.PageInfo.EndCursor),
		HasNextPage: history.PageInfo.HasNextPage,
	}, nil
}

// ViewerLogin returns the login of the user owning the token.
func (g *GitHubGateway) ViewerLogin(ctx context.Context) (string, error) {
	user, _, err := g.restClient.Users.Get(ctx, "")
	if err != nil {
		return "", queryError("resolve authenticated user", err)
	}
	if user.GetLogin() == "" {
		return "", &MalformedResponseError{Operation: "resolve authenticated user", Reason: "login missing"}
	}
	return user.GetLogin(), nil
}

// Quota returns the remaining REST and GraphQL budget.
func (g *GitHubGateway) Quota(ctx context.Context) (Quota, error) {
	limits, _, err := g.restClient.RateLimit.Get(ctx)
	if err != nil {
		return Quota{}, queryError("fetch rate limits", err)
	}
	var quota Quota
	if limits.Core != nil {
		quota.CoreRemaining = limits.Core.Remaining
	}
	if limits.GraphQL != nil {
		quota.GraphQLLimit = limits.GraphQL.Limit
		quota.GraphQLRemaining = limits.GraphQL.Remaining
		quota.GraphQLReset = limits.GraphQL.Reset.Time
	}
	return quota, nil
}

// filterVariables adds the repository filter variables shared by the summary and listing queries.
func (g *GitHubGateway) filterVariables(variables map[string]interface{}) map[string]interface{} {
	var privacy *githubv4.RepositoryPrivacy
	switch g.filter.Privacy {
	case "public":
		p := githubv4.RepositoryPrivacyPublic
		privacy = &p
	case "private":
		p := githubv4.RepositoryPrivacyPrivate
		privacy = &p
	}

	affiliations := make([]githubv4.RepositoryAffiliation, 0, len(g.filter.Affiliations))
	for _, a := range g.filter.Affiliations {
		affiliations = append(affiliations, githubv4.RepositoryAffiliation(strings.ToUpper(a)))
	}
	if len(affiliations) == 0 {
		affiliations = append(affiliations, githubv4.RepositoryAffiliationOwner)
	}

	variables["privacy"] = privacy
	variables["affiliations"] = affiliations
	return variables
}

func cursorVariable(cursor string) *githubv4.String {
	if cursor == "" {
		return nil
	}
	return githubv4.NewString(githubv4.String(cursor))
}

func checkPageInfo(op string, info pageInfo) error {
	if info.HasNextPage && info.EndCursor == "" {
		return &MalformedResponseError{Operation: op, Reason: "hasNextPage without endCursor"}
	}
	return nil
}
