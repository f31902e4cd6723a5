package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultOldPRThresholdDays is the age beyond which an open pull request
	// counts as stale.
	DefaultOldPRThresholdDays = 30

	// DefaultActiveWindowDays is the commit-recency window that qualifies a
	// repository as active.
	DefaultActiveWindowDays = 365
)

// Config holds everything a scan needs. It is constructed by the CLI and
// passed explicitly into the engine and executor; there is no process-wide
// mutable state.
type Config struct {
	Targeting Targeting
	Policy    Policy
	Output    Output
	Runtime   Runtime
}

type Targeting struct {
	// Org is the GitHub organization to scan (name or URL; see --org).
	Org string

	// Repo restricts the scan to a single repository within Org (see --repo).
	Repo string

	// MaxRepos limits how many repositories to scan. 0 means unlimited.
	MaxRepos int
}

type Policy struct {
	// OldPRThresholdDays is the stale pull request age threshold, read once
	// per scan so a single report applies one consistent threshold.
	OldPRThresholdDays int

	// ActiveWindowDays is the commit-recency window; repositories without
	// commits inside it are skipped.
	ActiveWindowDays int

	// DeleteOrphanedBranches enables the branch deletion pass.
	DeleteOrphanedBranches bool

	// DeleteStalePRs enables closing open pull requests past the threshold.
	DeleteStalePRs bool
}

type Output struct {
	// Format controls the console sink: text, json, or ndjson.
	Format string

	// Pretty renders the human-friendly tables (stale PRs, orphaned branches,
	// closed/merged branches) instead of the terse summary.
	Pretty bool

	// Report writes a Markdown health report to this path.
	Report string

	// Out writes the aggregate JSON summary to this path.
	Out string

	// NoConsole suppresses the console sink.
	NoConsole bool
}

type Runtime struct {
	// Token is an explicit GitHub access token. Empty means resolve from
	// GITHUB_TOKEN or the gh CLI.
	Token string

	// Concurrency bounds parallel repository analysis. 1 reproduces the
	// reference sequential behavior.
	Concurrency int

	// Timeout is the global scan deadline.
	Timeout time.Duration

	// Verbose logs every GitHub API call.
	Verbose bool
}

// New returns a Config with defaults applied. The stale-PR threshold honors
// the OLD_PR_THRESHOLD_DAYS environment variable when set to a positive
// integer, matching the scanner's historical environment contract.
func New() *Config {
	return &Config{
		Policy: Policy{
			OldPRThresholdDays: thresholdFromEnv(),
			ActiveWindowDays:   DefaultActiveWindowDays,
		},
		Output: Output{
			Format: "text",
		},
		Runtime: Runtime{
			Concurrency: 1,
			Timeout:     30 * time.Minute,
		},
	}
}

func thresholdFromEnv() int {
	raw := strings.TrimSpace(os.Getenv("OLD_PR_THRESHOLD_DAYS"))
	if raw == "" {
		return DefaultOldPRThresholdDays
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return DefaultOldPRThresholdDays
	}
	return n
}

// Validate normalizes the configuration and rejects invalid values. A missing
// scan target is the fatal configuration error: the run aborts before any
// analysis begins.
func (c *Config) Validate() error {
	if c.Targeting.Org != "" {
		org, err := normalizeOrgSelector(c.Targeting.Org)
		if err != nil {
			return fmt.Errorf("invalid --org value: %w", err)
		}
		c.Targeting.Org = org
	}

	if c.Targeting.Org == "" {
		return errors.New("an organization must be provided (--org or GITHUB_ORG)")
	}

	c.Targeting.Repo = strings.TrimSpace(c.Targeting.Repo)
	if strings.Contains(c.Targeting.Repo, "/") {
		return fmt.Errorf("--repo takes a bare repository name within --org, got %q", c.Targeting.Repo)
	}
	if c.Targeting.MaxRepos < 0 {
		return errors.New("--max-repos must be >= 0")
	}

	if c.Policy.OldPRThresholdDays <= 0 {
		return errors.New("--old-pr-threshold must be >= 1")
	}
	if c.Policy.ActiveWindowDays <= 0 {
		return errors.New("--active-window must be >= 1")
	}

	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = "text"
	}
	switch c.Output.Format {
	case "text", "json", "ndjson":
	default:
		return fmt.Errorf("unsupported --format: %s (must be one of: text, json, ndjson)", c.Output.Format)
	}

	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	return nil
}

// normalizeOrgSelector accepts a raw organization name or a GitHub URL such
// as https://github.com/orgs/<name> or github.com/<name>.
func normalizeOrgSelector(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	if strings.HasPrefix(raw, "github.com/") || strings.HasPrefix(raw, "www.github.com/") {
		raw = "https://" + raw
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("%q", raw)
		}
		host := strings.ToLower(u.Hostname())
		if host == "www.github.com" {
			host = "github.com"
		}
		if host != "github.com" {
			return "", fmt.Errorf("%q", raw)
		}
		parts := strings.FieldsFunc(strings.Trim(u.Path, "/"), func(r rune) bool { return r == '/' })
		if len(parts) == 0 {
			return "", fmt.Errorf("%q", raw)
		}
		if parts[0] == "orgs" || parts[0] == "users" {
			if len(parts) < 2 {
				return "", fmt.Errorf("%q", raw)
			}
			return parts[1], nil
		}
		return parts[0], nil
	}

	// Reject obvious owner/repo-like inputs.
	if strings.Contains(raw, "/") {
		return "", fmt.Errorf("%q", raw)
	}
	return raw, nil
}
