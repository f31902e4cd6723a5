package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "orgscan",
	Short: "Scan a GitHub organization for stale pull requests and orphaned branches",
	Long: `Orgscan audits a GitHub organization's repositories for maintenance debt:
pull requests left open too long, branches with no open pull request, and
branches whose pull request was closed or merged but never deleted.

Orgscan is a batch report generator. By default it only reports; branch
deletion and stale-PR closure are separate opt-in flags.

Examples:
	# Scan an organization
	orgscan scan --org my-org

	# Scan a single repository
	orgscan scan --org my-org --repo my-repo

	# Human-friendly tables plus a Markdown report
	orgscan scan --org my-org --pretty --report health.md

	# Print build info
	orgscan version`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, "verbose", false, "Enable verbose logging (prints every GitHub API call)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
