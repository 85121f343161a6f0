package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-user-stats/internal/gateway"
)

// fakeGitHub answers the GraphQL and REST calls of one run for user octo.
func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/rate_limit", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resources":{"core":{"limit":5000,"remaining":4999,"reset":1700000000},"graphql":{"limit":5000,"remaining":4990,"reset":1700000000}}}`)
	})
	mux.HandleFunc("/api/graphql", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		query := string(body)
		switch {
		case strings.Contains(query, "pullRequests"):
			fmt.Fprint(w, `{"data":{"user":{"id":"U_1","login":"octo","name":"","createdAt":"2015-03-04T05:06:07Z",
				"followers":{"totalCount":1},"following":{"totalCount":2},"repositories":{"totalCount":2},
				"pullRequests":{"totalCount":3},"issues":{"totalCount":4}}}}`)
		case strings.Contains(query, "stargazerCount"):
			fmt.Fprint(w, `{"data":{"user":{"login":"octo","repositories":{"pageInfo":{"hasNextPage":false,"endCursor":null},"nodes":[
				{"name":"a","owner":{"login":"octo"},"stargazerCount":3,"forkCount":1,"languages":{"edges":[{"size":300,"node":{"name":"Go","color":"#00ADD8"}}]}},
				{"name":"b","owner":{"login":"octo"},"stargazerCount":9,"forkCount":0,"languages":{"edges":[]}}]}}}}`)
		case strings.Contains(query, `"name":"a"`):
			assert.Contains(t, query, `"author":{"id":"U_1"}`)
			fmt.Fprint(w, `{"data":{"repository":{"defaultBranchRef":{"name":"main","target":{"history":{
				"pageInfo":{"hasNextPage":false,"endCursor":null},"nodes":[
				{"additions":50,"deletions":10,"committedDate":"2023-01-01T00:00:00Z"},
				{"additions":0,"deletions":0,"committedDate":"2023-06-01T00:00:00Z"}]}}}}}}`)
		case strings.Contains(query, `"name":"b"`):
			fmt.Fprint(w, `{"data":{"repository":{"defaultBranchRef":null}}}`)
		default:
			t.Errorf("unexpected query: %s", query)
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestStatsCommand_JSON(t *testing.T) {
	server := fakeGitHub(t)
	t.Setenv("GITHUB_TOKEN", "test-token")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{
		"stats",
		"--user", "octo",
		"--format", "json",
		"--api-url", server.URL,
		"--workers", "2",
		"--env-file", filepath.Join(t.TempDir(), ".env"),
	})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.ExecuteContext(context.Background()), stderr.String())

	var report struct {
		Commits struct {
			Additions int `json:"additions"`
			Deletions int `json:"deletions"`
			Commits   int `json:"commits"`
		} `json:"commits"`
		Repositories         int `json:"repositories"`
		AnalyzedRepositories int `json:"analyzed_repositories"`
		MostStarred          struct {
			Name string `json:"name"`
		} `json:"most_starred"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))
	assert.Equal(t, 50, report.Commits.Additions)
	assert.Equal(t, 10, report.Commits.Deletions)
	assert.Equal(t, 2, report.Commits.Commits)
	assert.Equal(t, 2, report.Repositories)
	assert.Equal(t, 2, report.AnalyzedRepositories)
	assert.Equal(t, "b", report.MostStarred.Name)
}

func TestDiagnose(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "unauthorized",
			err:  fmt.Errorf("wrapped: %w", &gateway.RemoteQueryError{Operation: "fetch user summary", Status: 401, Err: errors.New("Bad credentials")}),
			want: "'repo' scopes",
		},
		{
			name: "rate limited",
			err:  &gateway.RemoteQueryError{Operation: "fetch commits", Status: 403, Err: gateway.ErrRateLimited},
			want: "rate limit",
		},
		{
			name: "interrupted",
			err:  fmt.Errorf("failed to analyze commits: %w", context.Canceled),
			want: "Interrupted",
		},
		{
			name: "other",
			err:  errors.New("boom"),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := diagnose(tc.err)
			if tc.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tc.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, logrus.WarnLevel, newLogger(&buf, false).GetLevel())

	logger := newLogger(&buf, true)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	logger.WithField("repo", "a").Debug("hello")
	assert.Contains(t, buf.String(), "repo=a")
}
