package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-user-stats/internal/gateway"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envNames {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Token:        "ghp_test",
		Workers:      10,
		Visibility:   "public",
		Affiliations: []string{"owner"},
		Format:       FormatText,
		TopLanguages: 7,
	}, cfg)
	assert.Equal(t, gateway.RepositoryFilter{Privacy: "public", Affiliations: []string{"owner"}}, cfg.RepositoryFilter())
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GITHUB_USERNAME", "octocat")
	t.Setenv("GHSTATS_WORKERS", "3")
	t.Setenv("GHSTATS_VISIBILITY", "ALL")
	t.Setenv("GHSTATS_AFFILIATIONS", "owner, collaborator")
	t.Setenv("GHSTATS_ALL_AUTHORS", "true")
	t.Setenv("GHSTATS_FORMAT", "json")
	t.Setenv("GHSTATS_RATE_LIMIT_WAIT", "90s")
	t.Setenv("GITHUB_API_URL", "https://ghe.example.com")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "octocat", cfg.User)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "all", cfg.Visibility)
	assert.Equal(t, []string{"owner", "collaborator"}, cfg.Affiliations)
	assert.True(t, cfg.AllAuthors)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, 90*time.Second, cfg.RateLimitWait)
	assert.Equal(t, "https://ghe.example.com", cfg.APIURL)
	assert.Equal(t, "", cfg.RepositoryFilter().Privacy)
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GHSTATS_WORKERS", "3")

	flags := pflag.NewFlagSet("stats", pflag.ContinueOnError)
	flags.IntP("workers", "w", 10, "")
	flags.StringSlice("affiliation", []string{"owner"}, "")
	require.NoError(t, flags.Parse([]string{"-w", "6", "--affiliation", "owner,organization_member"}))

	v := New()
	require.NoError(t, v.BindPFlag(KeyWorkers, flags.Lookup("workers")))
	require.NoError(t, v.BindPFlag(KeyAffiliations, flags.Lookup("affiliation")))

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, []string{"owner", "organization_member"}, cfg.Affiliations)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ghstats.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: from-file\nuser: hubot\ntop_languages: 3\naffiliations:\n  - owner\n  - collaborator\n"), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Token)
	assert.Equal(t, "hubot", cfg.User)
	assert.Equal(t, 3, cfg.TopLanguages)
	assert.Equal(t, []string{"owner", "collaborator"}, cfg.Affiliations)

	_, err = Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{Token: "t", Workers: 10, Visibility: "public", Affiliations: []string{"owner"}, Format: FormatText, TopLanguages: 7}
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing token", mutate: func(c *Config) { c.Token = "" }, wantErr: "GITHUB_TOKEN is required"},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: "workers must be at least 1"},
		{name: "unknown visibility", mutate: func(c *Config) { c.Visibility = "internal" }, wantErr: "unknown visibility"},
		{name: "unknown affiliation", mutate: func(c *Config) { c.Affiliations = []string{"owner", "friend"} }, wantErr: "unknown affiliation"},
		{name: "no affiliation", mutate: func(c *Config) { c.Affiliations = nil }, wantErr: "at least one affiliation"},
		{name: "unknown format", mutate: func(c *Config) { c.Format = "yaml" }, wantErr: "unknown format"},
		{name: "negative top languages", mutate: func(c *Config) { c.TopLanguages = -1 }, wantErr: "top languages"},
		{name: "negative wait", mutate: func(c *Config) { c.RateLimitWait = -time.Second }, wantErr: "rate limit wait"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "GHSTATS_DOTENV_PROBE"
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=loaded\n"), 0o600))
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv(key))
}
