package output

import (
	"time"

	"orgscan/internal/actions"
	"orgscan/internal/scan"
)

// RepoRecord pairs a repository's analysis result with the outcomes of any
// destructive actions attempted against it.
type RepoRecord struct {
	Result   scan.RepoResult   `json:"result"`
	Outcomes []actions.Outcome `json:"outcomes,omitempty"`
}

// RunInfo describes the scan as a whole: target, reference time, policy, and
// the repository counts discovered before per-repo analysis began.
type RunInfo struct {
	Org                string    `json:"org"`
	Repo               string    `json:"repo,omitempty"`
	ScanTime           time.Time `json:"scan_time"`
	OldPRThresholdDays int       `json:"old_pr_threshold_days"`
	TotalRepos         int       `json:"total_repos"`
	ActiveRepos        int       `json:"active_repos"`
}

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line):
// - run.started (carries RunInfo)
// - repo.result (carries one RepoRecord)
// - run.finished (carries the exit code)
type Event struct {
	Type     string      `json:"type"`
	Run      *RunInfo    `json:"run,omitempty"`
	Record   *RepoRecord `json:"record,omitempty"`
	ExitCode int         `json:"exit_code,omitempty"`
}

const (
	EventRunStarted  = "run.started"
	EventRepoResult  = "repo.result"
	EventRunFinished = "run.finished"
)
