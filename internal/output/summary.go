package output

// Summary is the aggregate machine-readable document covering every analyzed
// repository. Inclusion is never gated by HasIssues; that predicate only
// filters human-facing summaries.
type Summary struct {
	Org                string       `json:"org"`
	Repo               string       `json:"repo,omitempty"`
	ScanTime           string       `json:"scan_time"`
	OldPRThresholdDays int          `json:"old_pr_threshold_days"`
	TotalRepos         int          `json:"total_repos"`
	ActiveRepos        int          `json:"active_repos"`
	ReposWithIssues    int          `json:"repos_with_issues"`
	TotalOpenPRs       int          `json:"total_open_prs"`
	Repos              []RepoRecord `json:"repos"`
}

// BuildSummary aggregates per-repo records under the run's header data.
func BuildSummary(run RunInfo, records []RepoRecord) Summary {
	s := Summary{
		Org:                run.Org,
		Repo:               run.Repo,
		ScanTime:           run.ScanTime.Format("2006-01-02 15:04:05"),
		OldPRThresholdDays: run.OldPRThresholdDays,
		TotalRepos:         run.TotalRepos,
		ActiveRepos:        run.ActiveRepos,
		Repos:              records,
	}
	for _, rec := range records {
		if rec.Result.HasIssues {
			s.ReposWithIssues++
		}
		s.TotalOpenPRs += len(rec.Result.OpenPRs)
	}
	if s.Repos == nil {
		s.Repos = []RepoRecord{}
	}
	return s
}
