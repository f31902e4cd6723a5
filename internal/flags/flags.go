package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// engine. Keeping these as constants avoids drift between Cobra flag wiring
// and other code paths that reference flags by name.
// IMPORTANT: these are flag *names* without leading dashes.
const (
	// Targeting
	FlagOrg      = "org"
	FlagRepo     = "repo"
	FlagMaxRepos = "max-repos"

	// Policy
	FlagOldPRThreshold = "old-pr-threshold"
	FlagActiveWindow   = "active-window"
	FlagDeleteBranches = "delete-orphaned-branches"
	FlagClosePRs       = "delete-stale-prs"

	// Output
	FlagFormat    = "format"
	FlagPretty    = "pretty"
	FlagReport    = "report"
	FlagOut       = "out"
	FlagNoConsole = "no-console"

	// Runtime
	FlagToken       = "token"
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
)
