package scan

import "sort"

// Dedupe collapses closed/merged branch records so each branch appears at most
// once in the deletion-candidate list.
//
// Groups are dropped entirely when the branch name matches the standard
// allowlist (case-insensitive) or still carries an open pull request; an open
// pull request always supersedes any prior closed one. Within a surviving
// group the most recently closed record wins (minimum DaysSinceClosed); ties
// go to the higher pull request number, treating the most recently created
// pull request as authoritative.
//
// The result is sorted by branch name so output is reproducible.
func Dedupe(records []ClosedBranchRecord, openPRBranches map[string]bool) []ClosedBranchRecord {
	best := make(map[string]ClosedBranchRecord)
	for _, rec := range records {
		if IsStandardBranch(rec.Branch) {
			continue
		}
		if openPRBranches[rec.Branch] {
			continue
		}
		cur, ok := best[rec.Branch]
		if !ok || moreRecent(rec, cur) {
			best[rec.Branch] = rec
		}
	}

	out := make([]ClosedBranchRecord, 0, len(best))
	for _, rec := range best {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Branch < out[j].Branch })
	return out
}

func moreRecent(a, b ClosedBranchRecord) bool {
	if a.DaysSinceClosed != b.DaysSinceClosed {
		return a.DaysSinceClosed < b.DaysSinceClosed
	}
	return a.PRNumber > b.PRNumber
}
