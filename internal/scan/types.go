package scan

import "time"

// PRState identifies the lifecycle state of a pull request as reported by the
// hosting platform. Merged pull requests are closed pull requests with a merge
// timestamp; there is no third state on the wire.
type PRState string

const (
	PRStateOpen   PRState = "open"
	PRStateClosed PRState = "closed"
)

// UnknownAuthor is the sentinel used wherever an author lookup fails or the
// upstream record carries no user.
const UnknownAuthor = "Unknown"

// Repository is the per-scan snapshot of a repository's identity. It is
// fetched once per scan and treated as immutable for the scan's duration.
type Repository struct {
	Owner         string
	Name          string
	URL           string
	DefaultBranch string
	Archived      bool
}

// FullName returns the owner-qualified repository name.
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// Branch is a single branch within a repository. Names are unique per
// repository and compared case-sensitively for identity.
type Branch struct {
	Name      string
	Protected bool
}

// PullRequest carries the subset of pull request data the classifier needs.
// ClosedAt is nil for open pull requests and, occasionally, for closed ones
// the platform reports without a close timestamp (a data anomaly the
// classifier skips).
type PullRequest struct {
	Number    int
	State     PRState
	HeadRef   string
	Author    string
	URL       string
	CreatedAt time.Time
	ClosedAt  *time.Time
	MergedAt  *time.Time
}

// Merged reports whether the pull request was merged rather than closed
// without merging.
func (p PullRequest) Merged() bool {
	return p.MergedAt != nil
}

// ClosedBranchRecord describes one (branch, pull request) pair where the pull
// request is closed or merged but the branch still exists.
type ClosedBranchRecord struct {
	Branch          string `json:"branch"`
	PRNumber        int    `json:"pr_number"`
	PRURL           string `json:"pr_url"`
	Author          string `json:"user"`
	Status          string `json:"status"` // "merged" or "closed"
	ClosedAt        string `json:"closed_at"`
	DaysSinceClosed int    `json:"days_since_closed"`
}

// ClassifiedBranchSet is the classifier's view of a repository: which branches
// carry open pull requests, which have a closed or merged pull request but
// still exist, which are excluded by policy, and which are orphaned.
//
// OrphanedBranches and the branch names in ClosedMergedRecords may overlap;
// the analyzer removes the overlap so each branch is reported once.
type ClassifiedBranchSet struct {
	OpenPRBranches      map[string]bool
	ClosedMergedRecords []ClosedBranchRecord
	ExcludedBranches    map[string]bool
	OrphanedBranches    map[string]bool
}

// OpenPRInfo summarizes one open pull request for reporting.
type OpenPRInfo struct {
	Number    int    `json:"number"`
	DaysOld   int    `json:"days_old"`
	CreatedAt string `json:"created_at"`
	URL       string `json:"url"`
	Author    string `json:"user"`
}

// OrphanedBranchDetail pairs an orphaned branch with its last commit author.
type OrphanedBranchDetail struct {
	Name   string `json:"name"`
	Author string `json:"author"`
}

// RepoResult is the per-repository analysis record consumed by the reporting
// layer. Every analyzed repository produces one, whether or not it has issues.
type RepoResult struct {
	Name             string                 `json:"name"`
	URL              string                 `json:"url"`
	OpenPRs          []OpenPRInfo           `json:"open_prs"`
	TotalBranches    int                    `json:"total_branches"`
	OrphanedCount    int                    `json:"branches_without_prs_count"`
	OrphanedBranches []string               `json:"stale_branches"`
	OrphanedDetails  []OrphanedBranchDetail `json:"orphaned_branch_details,omitempty"`
	ClosedMerged     []ClosedBranchRecord   `json:"closed_merged_pr_branches"`
	HasIssues        bool                   `json:"has_issues"`
	Partial          bool                   `json:"partial,omitempty"`
}
