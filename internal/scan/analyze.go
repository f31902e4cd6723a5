package scan

import (
	"sort"
	"time"
)

// openPRCountLimit is the open pull request count above which a repository is
// flagged as having issues.
const openPRCountLimit = 3

// Analyzer combines the classifier and deduplicator into per-repository
// results. Policy values are captured once at construction so a single scan
// applies one consistent threshold across every repository.
type Analyzer struct {
	// OldPRThresholdDays is the age beyond which an open pull request counts
	// as stale.
	OldPRThresholdDays int

	// Now supplies the scan's reference time. Defaults to time.Now.
	Now func() time.Time
}

// NewAnalyzer returns an Analyzer with the given stale-PR threshold.
func NewAnalyzer(oldPRThresholdDays int) *Analyzer {
	return &Analyzer{OldPRThresholdDays: oldPRThresholdDays}
}

func (a *Analyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Analyze produces the repository's result record: open pull request
// summaries sorted oldest first, the deduplicated closed/merged branch list,
// and the orphaned branch list with closed/merged branches removed so no
// branch is reported twice.
func (a *Analyzer) Analyze(repo Repository, branches []Branch, allPRs []PullRequest) RepoResult {
	now := a.now()

	openInfos := openPRSummaries(allPRs, now)

	set := Classify(branches, allPRs, repo.DefaultBranch, now)
	deduped := Dedupe(set.ClosedMergedRecords, set.OpenPRBranches)

	closedBranchNames := make(map[string]bool, len(deduped))
	for _, rec := range deduped {
		closedBranchNames[rec.Branch] = true
	}

	orphaned := make([]string, 0, len(set.OrphanedBranches))
	for name := range set.OrphanedBranches {
		if closedBranchNames[name] {
			// Reported under closed/merged-with-surviving-branch instead.
			continue
		}
		orphaned = append(orphaned, name)
	}
	sort.Strings(orphaned)

	return RepoResult{
		Name:             repo.Name,
		URL:              repo.URL,
		OpenPRs:          openInfos,
		TotalBranches:    len(branches),
		OrphanedCount:    len(orphaned),
		OrphanedBranches: orphaned,
		ClosedMerged:     deduped,
		HasIssues:        a.hasIssues(openInfos, len(orphaned)),
	}
}

// HasIssues reports whether a result would be flagged in human-facing
// summaries: more than openPRCountLimit open pull requests, any open pull
// request older than the threshold, or any orphaned branch.
func (a *Analyzer) hasIssues(openPRs []OpenPRInfo, orphanedCount int) bool {
	if len(openPRs) > openPRCountLimit {
		return true
	}
	for _, pr := range openPRs {
		if pr.DaysOld > a.OldPRThresholdDays {
			return true
		}
	}
	return orphanedCount > 0
}

// StalePRs filters open pull request summaries down to those older than the
// configured threshold; these are the closure candidates for the executor.
func (a *Analyzer) StalePRs(openPRs []OpenPRInfo) []OpenPRInfo {
	var stale []OpenPRInfo
	for _, pr := range openPRs {
		if pr.DaysOld > a.OldPRThresholdDays {
			stale = append(stale, pr)
		}
	}
	return stale
}

func openPRSummaries(allPRs []PullRequest, now time.Time) []OpenPRInfo {
	var infos []OpenPRInfo
	for _, pr := range allPRs {
		if pr.State != PRStateOpen {
			continue
		}
		infos = append(infos, OpenPRInfo{
			Number:    pr.Number,
			DaysOld:   daysBetween(pr.CreatedAt, now),
			CreatedAt: pr.CreatedAt.Format("2006-01-02"),
			URL:       pr.URL,
			Author:    authorOrUnknown(pr.Author),
		})
	}
	// Oldest first; ties broken by pull request number for stable output.
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].DaysOld != infos[j].DaysOld {
			return infos[i].DaysOld > infos[j].DaysOld
		}
		return infos[i].Number < infos[j].Number
	})
	return infos
}
