package scan

import "time"

// Classify partitions a repository's branches against its pull request
// history.
//
// It computes:
//   - the set of branch names referenced by at least one open pull request,
//   - one ClosedBranchRecord per closed/merged pull request whose head ref
//     still exists as a branch (closed pull requests without a close timestamp
//     are skipped),
//   - the exclusion set {default branch} ∪ protected ∪ standard names,
//   - the orphaned set: branches − open-PR branches − excluded.
//
// Classify performs no I/O and is deterministic given its inputs and now.
// Orphaned ∩ excluded is always empty.
func Classify(branches []Branch, allPRs []PullRequest, defaultBranch string, now time.Time) ClassifiedBranchSet {
	branchNames := make(map[string]bool, len(branches))
	for _, b := range branches {
		branchNames[b.Name] = true
	}
	excluded := ExcludedBranches(branches, defaultBranch)

	openPRBranches := make(map[string]bool)
	var closedRecords []ClosedBranchRecord
	for _, pr := range allPRs {
		if pr.HeadRef == "" {
			continue
		}
		if pr.State == PRStateOpen {
			openPRBranches[pr.HeadRef] = true
			continue
		}
		if !branchNames[pr.HeadRef] {
			// The head branch was already deleted; nothing actionable.
			continue
		}
		if pr.ClosedAt == nil {
			// Closed without a close timestamp: treat as not yet fully closed.
			continue
		}
		status := "closed"
		if pr.Merged() {
			status = "merged"
		}
		closedRecords = append(closedRecords, ClosedBranchRecord{
			Branch:          pr.HeadRef,
			PRNumber:        pr.Number,
			PRURL:           pr.URL,
			Author:          authorOrUnknown(pr.Author),
			Status:          status,
			ClosedAt:        pr.ClosedAt.Format("2006-01-02"),
			DaysSinceClosed: daysBetween(*pr.ClosedAt, now),
		})
	}

	orphaned := make(map[string]bool)
	for name := range branchNames {
		if openPRBranches[name] || excluded[name] {
			continue
		}
		orphaned[name] = true
	}

	return ClassifiedBranchSet{
		OpenPRBranches:      openPRBranches,
		ClosedMergedRecords: closedRecords,
		ExcludedBranches:    excluded,
		OrphanedBranches:    orphaned,
	}
}

// ExcludedBranches builds the exclusion set for a repository: the default
// branch, every protected branch, and any branch matching the standard
// allowlist. Branches in this set are never orphan candidates and never
// deletion targets.
func ExcludedBranches(branches []Branch, defaultBranch string) map[string]bool {
	excluded := make(map[string]bool)
	for _, b := range branches {
		if b.Protected || IsStandardBranch(b.Name) {
			excluded[b.Name] = true
		}
	}
	if defaultBranch != "" {
		excluded[defaultBranch] = true
	}
	return excluded
}

func authorOrUnknown(author string) string {
	if author == "" {
		return UnknownAuthor
	}
	return author
}

func daysBetween(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
