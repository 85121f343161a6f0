package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-user-stats/internal/config"
	"github.com/naka-gawa/github-user-stats/internal/gateway"
	"github.com/naka-gawa/github-user-stats/internal/render"
	"github.com/naka-gawa/github-user-stats/internal/usecase"
)

// settings collects flag, environment and config file values.
var settings = config.New()

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarizes a GitHub user's repositories and commits",
	Long: `Lists the repositories of a GitHub user, analyzes the commit history of
each default branch concurrently and prints the totals as a text report or JSON.
The token is read from GITHUB_TOKEN; a .env file is honored.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(cmd.ErrOrStderr(), verbose)

	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(settings, configFile)
	if err != nil {
		return err
	}

	githubGateway, err := gateway.NewGitHubGateway(cfg.Token, logger, gateway.Options{
		BaseURL:       cfg.APIURL,
		RateLimitWait: cfg.RateLimitWait,
		Filter:        cfg.RepositoryFilter(),
	})
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}

	opts := usecase.Options{Workers: cfg.Workers, AllAuthors: cfg.AllAuthors}
	var progress *render.Progress
	if cfg.Format == config.FormatText && !verbose {
		progress = render.NewProgress(cmd.ErrOrStderr())
		opts.Progress = progress.Handle
	}

	report, err := usecase.NewAggregator(githubGateway, logger, opts).Aggregate(ctx, cfg.User)
	if progress != nil {
		progress.Stop()
	}
	if err != nil {
		if hint := diagnose(err); hint != "" {
			pterm.Warning.WithWriter(cmd.ErrOrStderr()).Println(hint)
		}
		return fmt.Errorf("failed to aggregate stats: %w", err)
	}

	if cfg.Format == config.FormatJSON {
		return render.JSON(cmd.OutOrStdout(), report)
	}
	return render.Text(cmd.OutOrStdout(), report, render.TextOptions{
		TopLanguages: cfg.TopLanguages,
		Now:          time.Now(),
	})
}

// diagnose returns a human hint for failures a user can act on.
func diagnose(err error) string {
	switch {
	case gateway.IsUnauthorized(err):
		return "Please check that your Personal Access Token is correct and has the necessary 'repo' scopes."
	case errors.Is(err, gateway.ErrRateLimited):
		return "GitHub rate limit reached. Retry later, or allow waiting with --rate-limit-wait."
	case errors.Is(err, context.Canceled):
		return "Interrupted."
	}
	return ""
}

func init() {
	rootCmd.AddCommand(statsCmd)

	flags := statsCmd.Flags()
	flags.StringP("user", "u", "", "GitHub user to analyze (default: the owner of the token)")
	flags.IntP("workers", "w", usecase.DefaultWorkers, "Repositories analyzed concurrently")
	flags.String("visibility", "public", "Repository visibility: public, private or all")
	flags.StringSlice("affiliation", []string{"owner"}, "Repository affiliations: owner, collaborator, organization_member")
	flags.Bool("all-authors", false, "Count commits of every author, not only the user's")
	flags.StringP("format", "f", config.FormatText, "Output format: text or json")
	flags.Int("top-languages", 7, "Number of languages shown in the text report")
	flags.String("api-url", "", "GitHub Enterprise Server base URL")
	flags.Duration("rate-limit-wait", 0, "Longest single wait on a secondary rate limit before failing")

	for key, flag := range map[string]string{
		config.KeyUser:          "user",
		config.KeyWorkers:       "workers",
		config.KeyVisibility:    "visibility",
		config.KeyAffiliations:  "affiliation",
		config.KeyAllAuthors:    "all-authors",
		config.KeyFormat:        "format",
		config.KeyTopLanguages:  "top-languages",
		config.KeyAPIURL:        "api-url",
		config.KeyRateLimitWait: "rate-limit-wait",
	} {
		cobra.CheckErr(settings.BindPFlag(key, flags.Lookup(flag)))
	}
}
