// Package render presents a report on a terminal or as JSON.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/naka-gawa/github-user-stats/internal/domain"
)

// DateLayout is the layout of every calendar date in the text report.
const DateLayout = "January 02, 2006"

const notAvailable = "N/A"

// TextOptions tunes the text report.
type TextOptions struct {
	// TopLanguages limits the language breakdown. Zero shows none.
	TopLanguages int
	// Now is the reference time for the account age.
	Now time.Time
}

// Text writes the report as a set of pterm boxes.
func Text(w io.Writer, report *domain.Report, opts TextOptions) error {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	sections := []string{
		pterm.DefaultBox.WithBoxStyle(pterm.NewStyle(pterm.FgBlue)).Sprint(pterm.FgCyan.Sprint(pterm.Bold.Sprint("GitHub User Stats"))),
		box("Quick Summary", pterm.FgGreen, summaryLines(report, opts.Now)),
		repositoryLine(report),
	}
	if langs := languageLines(report.Languages, opts.TopLanguages); len(langs) > 0 {
		sections = append(sections, box("Language Breakdown", pterm.FgMagenta, langs))
	}
	sections = append(sections, box("Detailed Code Stats", pterm.FgBlue, detailLines(report)))
	if len(report.Skipped) > 0 {
		sections = append(sections, skippedLines(report.Skipped)...)
	}

	for _, s := range sections {
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}
	return nil
}

func box(title string, border pterm.Color, lines []string) string {
	return pterm.DefaultBox.
		WithTitle(pterm.Bold.Sprint(title)).
		WithBoxStyle(pterm.NewStyle(border)).
		Sprint(strings.Join(lines, "\n"))
}

func summaryLines(report *domain.Report, now time.Time) []string {
	s := report.Summary
	since := notAvailable
	if !s.CreatedAt.IsZero() {
		age := now.Sub(s.CreatedAt)
		since = fmt.Sprintf("%s (~%s)", s.CreatedAt.Format(DateLayout), YearsMonths(age))
	}

	name := s.Login
	if s.Name != "" {
		name = fmt.Sprintf("%s (%s)", s.Name, s.Login)
	}

	return []string{
		pterm.Bold.Sprint("User: ") + name,
		pterm.Bold.Sprint("User Since: ") + since,
		pterm.Bold.Sprintf("Followers: %d", s.Followers) + " | " + pterm.Bold.Sprintf("Following: %d", s.Following),
		pterm.Bold.Sprintf("Total Repositories: %d", s.Repositories),
		pterm.Bold.Sprintf("Total Pull Requests: %d", s.PullRequests),
		pterm.Bold.Sprintf("Total Issues: %d", s.Issues),
	}
}

func repositoryLine(report *domain.Report) string {
	return pterm.FgGreen.Sprintf("Analyzed %d of %d repositories (%d skipped).",
		report.AnalyzedRepositories, report.Repositories, len(report.Skipped))
}

func languageLines(shares []domain.LanguageShare, top int) []string {
	if top < len(shares) {
		shares = shares[:max(top, 0)]
	}
	lines := make([]string, 0, len(shares))
	for _, l := range shares {
		line := fmt.Sprintf("● %s: %.2f%%", l.Name, l.Percentage)
		if rgb, ok := parseHexColor(l.Color); ok {
			line = rgb.Sprint(line)
		}
		lines = append(lines, line)
	}
	return lines
}

func detailLines(report *domain.Report) []string {
	var lines []string
	if repo := report.MostStarred; repo != nil {
		lines = append(lines, pterm.Bold.Sprint("Most Popular Repo:")+
			fmt.Sprintf(" %s (⭐️ %d / 🔱 %d)", repo.Name, repo.Stars, repo.Forks))
	}

	lines = append(lines,
		pterm.Bold.Sprint("First Commit: "+formatDate(report.Commits.Earliest)),
		pterm.Bold.Sprint("Latest Commit: "+formatDate(report.Commits.Latest)),
	)
	if report.Lifespan != nil && wholeDays(*report.Lifespan) > 0 {
		lines = append(lines, "Coding Lifespan: "+YearsMonths(*report.Lifespan))
	}

	lines = append(lines,
		pterm.NewStyle(pterm.Bold, pterm.FgYellow).Sprintf("Your Total Commits: %d", report.Commits.Commits),
		pterm.NewStyle(pterm.Bold, pterm.FgGreen).Sprintf("Your Total Lines Added: %d", report.Commits.Additions),
		pterm.NewStyle(pterm.Bold, pterm.FgRed).Sprintf("Your Total Lines Deleted: %d", report.Commits.Deletions),
	)
	if d := report.Distribution; d != nil {
		lines = append(lines, fmt.Sprintf("Commits per Repository: mean %.1f, median %.1f, p90 %.0f", d.Mean, d.Median, d.P90))
	}
	return lines
}

func skippedLines(skipped []domain.SkippedRepository) []string {
	lines := []string{pterm.FgYellow.Sprintf("%d repositories were skipped:", len(skipped))}
	for _, s := range skipped {
		lines = append(lines, pterm.FgYellow.Sprintf("  - %s/%s: %s", s.Owner, s.Name, s.Reason))
	}
	return lines
}

// YearsMonths renders a duration in whole days as "Y years, M months",
// counting 365 days a year and 30 days a month.
func YearsMonths(d time.Duration) string {
	days := wholeDays(d)
	return fmt.Sprintf("%d years, %d months", days/365, (days%365)/30)
}

func wholeDays(d time.Duration) int64 {
	return int64(d / (24 * time.Hour))
}

func formatDate(t *time.Time) string {
	if t == nil {
		return notAvailable
	}
	return t.Format(DateLayout)
}

// parseHexColor parses "#rrggbb" as published for GitHub languages.
func parseHexColor(hex string) (pterm.RGB, bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return pterm.RGB{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return pterm.RGB{}, false
	}
	return pterm.NewRGB(uint8(v>>16), uint8(v>>8), uint8(v)), true
}
