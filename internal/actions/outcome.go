package actions

// ActionKind identifies which destructive operation an outcome belongs to.
type ActionKind string

const (
	ActionDeleteBranch ActionKind = "delete-branch"
	ActionClosePR      ActionKind = "close-pr"
)

// ReasonKind is the closed set of failure categories for destructive actions.
type ReasonKind string

const (
	// ReasonNotFound means the target was already gone. Benign: the desired
	// end state holds.
	ReasonNotFound ReasonKind = "not-found"
	// ReasonProtected means a branch-protection rule blocks deletion.
	ReasonProtected ReasonKind = "protected"
	// ReasonRequiredByRule means a ruleset requires the branch to exist.
	ReasonRequiredByRule ReasonKind = "required-by-rule"
	// ReasonOpenReference means an open pull request still references the
	// branch (a race since the scan started).
	ReasonOpenReference ReasonKind = "has-open-reference"
	// ReasonPermissionDenied means the token lacks the rights for the action.
	ReasonPermissionDenied ReasonKind = "permission-denied"
	// ReasonTransient covers rate limits, timeouts, and server errors.
	ReasonTransient ReasonKind = "transient-error"
	// ReasonExcluded means the executor refused the action because the target
	// is covered by exclusion policy. No remote call was made.
	ReasonExcluded ReasonKind = "excluded-by-policy"
	// ReasonUnknown carries a truncated upstream message for anything the
	// classification table does not match.
	ReasonUnknown ReasonKind = "error"
)

// Outcome records one attempted deletion or closure for the audit trail.
// Every attempt produces exactly one Outcome, success or not.
type Outcome struct {
	Repo    string     `json:"repo"`
	Kind    ActionKind `json:"kind"`
	Target  string     `json:"target"` // branch name or "#<pr-number>"
	Success bool       `json:"success"`
	Reason  ReasonKind `json:"reason,omitempty"`
	Message string     `json:"message,omitempty"`
}
