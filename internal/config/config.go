// Package config loads the settings of a stats run from flags, the
// environment, an optional config file and a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/naka-gawa/github-user-stats/internal/gateway"
)

// Keys understood by Load. Flags are bound to these names.
const (
	KeyToken         = "token"
	KeyUser          = "user"
	KeyWorkers       = "workers"
	KeyVisibility    = "visibility"
	KeyAffiliations  = "affiliations"
	KeyAllAuthors    = "all_authors"
	KeyFormat        = "format"
	KeyTopLanguages  = "top_languages"
	KeyAPIURL        = "api_url"
	KeyRateLimitWait = "rate_limit_wait"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	visibilities = []string{"public", "private", "all"}
	affiliations = []string{"owner", "collaborator", "organization_member"}
	formats      = []string{FormatText, FormatJSON}
)

var envNames = map[string]string{
	KeyToken:         "GITHUB_TOKEN",
	KeyUser:          "GITHUB_USERNAME",
	KeyWorkers:       "GHSTATS_WORKERS",
	KeyVisibility:    "GHSTATS_VISIBILITY",
	KeyAffiliations:  "GHSTATS_AFFILIATIONS",
	KeyAllAuthors:    "GHSTATS_ALL_AUTHORS",
	KeyFormat:        "GHSTATS_FORMAT",
	KeyTopLanguages:  "GHSTATS_TOP_LANGUAGES",
	KeyAPIURL:        "GITHUB_API_URL",
	KeyRateLimitWait: "GHSTATS_RATE_LIMIT_WAIT",
}

// Config holds all configuration for a run.
type Config struct {
	Token         string
	User          string
	Workers       int
	Visibility    string
	Affiliations  []string
	AllAuthors    bool
	Format        string
	TopLanguages  int
	APIURL        string
	RateLimitWait time.Duration
}

// New returns a viper instance with defaults and environment bindings set.
// Callers bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyWorkers, 10)
	v.SetDefault(KeyVisibility, "public")
	v.SetDefault(KeyAffiliations, []string{"owner"})
	v.SetDefault(KeyAllAuthors, false)
	v.SetDefault(KeyFormat, FormatText)
	v.SetDefault(KeyTopLanguages, 7)
	v.SetDefault(KeyRateLimitWait, time.Duration(0))
	for key, env := range envNames {
		// BindEnv only fails without a key.
		_ = v.BindEnv(key, env)
	}
	return v
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration. configFile is optional; when set it must exist.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	c := &Config{
		Token:         strings.TrimSpace(v.GetString(KeyToken)),
		User:          strings.TrimSpace(v.GetString(KeyUser)),
		Workers:       v.GetInt(KeyWorkers),
		Visibility:    strings.ToLower(v.GetString(KeyVisibility)),
		Affiliations:  splitList(v.GetStringSlice(KeyAffiliations)),
		AllAuthors:    v.GetBool(KeyAllAuthors),
		Format:        strings.ToLower(v.GetString(KeyFormat)),
		TopLanguages:  v.GetInt(KeyTopLanguages),
		APIURL:        strings.TrimSpace(v.GetString(KeyAPIURL)),
		RateLimitWait: v.GetDuration(KeyRateLimitWait),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects configurations a run cannot start with.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("%s is required", envNames[KeyToken])
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if !slices.Contains(visibilities, c.Visibility) {
		return fmt.Errorf("unknown visibility %q (want one of %s)", c.Visibility, strings.Join(visibilities, ", "))
	}
	if len(c.Affiliations) == 0 {
		return errors.New("at least one affiliation is required")
	}
	for _, a := range c.Affiliations {
		if !slices.Contains(affiliations, a) {
			return fmt.Errorf("unknown affiliation %q (want any of %s)", a, strings.Join(affiliations, ", "))
		}
	}
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("unknown format %q (want one of %s)", c.Format, strings.Join(formats, ", "))
	}
	if c.TopLanguages < 0 {
		return fmt.Errorf("top languages must not be negative, got %d", c.TopLanguages)
	}
	if c.RateLimitWait < 0 {
		return fmt.Errorf("rate limit wait must not be negative, got %s", c.RateLimitWait)
	}
	return nil
}

// RepositoryFilter translates visibility and affiliations for the gateway.
func (c *Config) RepositoryFilter() gateway.RepositoryFilter {
	privacy := c.Visibility
	if privacy == "all" {
		privacy = ""
	}
	return gateway.RepositoryFilter{Privacy: privacy, Affiliations: c.Affiliations}
}

// splitList accepts both list values and comma separated strings.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" && !slices.Contains(out, part) {
				out = append(out, part)
			}
		}
	}
	return out
}
