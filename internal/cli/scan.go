package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"orgscan/internal/config"
	"orgscan/internal/engine"
	"orgscan/internal/flags"
	gh "orgscan/internal/github"
	"orgscan/internal/scan"
)

var cfg = config.New()

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan an organization's repositories",
	Long: fmt.Sprintf(`Scan a GitHub organization (or one repository) and report maintenance debt.

Archived repositories are skipped. Repositories without commits inside the
activity window (default 365 days) are skipped. For every remaining repository
the scan reports open pull requests past the staleness threshold, orphaned
branches, and branches whose pull request was closed or merged but which still
exist.

Authentication:
  Orgscan uses a GitHub access token. It prefers --token, then GITHUB_TOKEN,
  and can also reuse GitHub CLI authentication if the gh CLI is installed and
  logged in. Without a token the scan still runs under the anonymous rate
  limit.

Destructive actions:
  --delete-orphaned-branches and --delete-stale-prs are independent opt-ins.
  The default branch, protected branches, and conventional branch names are
  never deleted. Conventional names (matched case-insensitively):
  %s.

Exit codes:
	0 = clean run, no debt found
	1 = maintenance debt found
	2 = partial failure (some repositories analyzed on incomplete data)
	3 = fatal error (scan did not run)

Examples:
  export GITHUB_TOKEN="<your_token>"
  orgscan scan --org my-org

  # Machine-readable aggregate
  orgscan scan --org my-org --format json

  # Cleanup pass
  orgscan scan --org my-org --delete-orphaned-branches
`, standardBranchList()),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && cmd.Flags().NFlag() == 0 {
			applyEnvTargeting(cfg)
			if cfg.Targeting.Org == "" {
				_ = cmd.Help()
				return
			}
		} else {
			applyEnvTargeting(cfg)
		}

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		ctx := context.Background()
		token, _, err := gh.ResolveToken(ctx, cfg.Runtime.Token)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to resolve GitHub auth token: %v\n", err)
			os.Exit(3)
		}
		if strings.TrimSpace(token) == "" {
			fmt.Fprintln(os.Stderr, "WARNING: no GitHub token found; API rate limits will be restrictive (60/hour).")
			fmt.Fprintln(os.Stderr, "Set GITHUB_TOKEN or run 'gh auth login' for 5000 requests/hour.")
		}

		client, err := gh.NewClient(ctx, token, gh.WithVerbose(cfg.Runtime.Verbose, nil))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create GitHub client: %v\n", err)
			os.Exit(3)
		}
		eng := engine.NewEngine(client)
		os.Exit(eng.Run(ctx, cfg))
	},
}

// standardBranchList renders the conventional branch name allowlist for the
// command help, sorted for stable output.
func standardBranchList() string {
	set := scan.StandardBranchNames()
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// applyEnvTargeting fills targeting from the environment when the flags were
// not given, preserving the scanner's historical GITHUB_ORG / GITHUB_REPO
// contract.
func applyEnvTargeting(cfg *config.Config) {
	if cfg.Targeting.Org == "" {
		cfg.Targeting.Org = strings.TrimSpace(os.Getenv("GITHUB_ORG"))
	}
	if cfg.Targeting.Repo == "" {
		cfg.Targeting.Repo = strings.TrimSpace(os.Getenv("GITHUB_REPO"))
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)

	// Targeting
	scanCmd.Flags().StringVar(&cfg.Targeting.Org, flags.FlagOrg, "", "GitHub organization to scan (name or URL; defaults to GITHUB_ORG)")
	scanCmd.Flags().StringVar(&cfg.Targeting.Repo, flags.FlagRepo, "", "Scan a single repository within --org (defaults to GITHUB_REPO)")
	scanCmd.Flags().IntVar(&cfg.Targeting.MaxRepos, flags.FlagMaxRepos, 0, "Maximum number of repositories to scan (0 = unlimited)")

	// Policy
	scanCmd.Flags().IntVar(&cfg.Policy.OldPRThresholdDays, flags.FlagOldPRThreshold, cfg.Policy.OldPRThresholdDays, "Open PR age in days beyond which it counts as stale")
	scanCmd.Flags().IntVar(&cfg.Policy.ActiveWindowDays, flags.FlagActiveWindow, cfg.Policy.ActiveWindowDays, "Commit-recency window in days that qualifies a repository as active")
	scanCmd.Flags().BoolVar(&cfg.Policy.DeleteOrphanedBranches, flags.FlagDeleteBranches, false, "Delete orphaned and closed/merged branches (destructive)")
	scanCmd.Flags().BoolVar(&cfg.Policy.DeleteStalePRs, flags.FlagClosePRs, false, "Close open PRs older than the staleness threshold (destructive)")

	// Output
	scanCmd.Flags().StringVar(&cfg.Output.Format, flags.FlagFormat, "text", "Console output format: text|json|ndjson")
	scanCmd.Flags().BoolVarP(&cfg.Output.Pretty, flags.FlagPretty, "p", false, "Render human-friendly tables of stale PRs and orphaned branches")
	scanCmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown health report to this path")
	scanCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write the aggregate JSON summary to this path")
	scanCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --out/--report)")

	// Runtime
	scanCmd.Flags().StringVar(&cfg.Runtime.Token, flags.FlagToken, "", "GitHub access token (defaults to GITHUB_TOKEN, then gh CLI auth)")
	scanCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Concurrent repository analyses (1 = sequential reference behavior)")
	scanCmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Global scan timeout")
}
