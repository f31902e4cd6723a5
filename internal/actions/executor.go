package actions

import (
	"context"
	"fmt"

	"github.com/google/go-github/v81/github"

	"orgscan/internal/scan"
)

// Executor performs the optional destructive cleanup pass: deleting branches
// that no longer serve a purpose and closing stale pull requests. Each
// operation is gated independently by configuration.
//
// Destructive calls are never retried; an uncertain failure (for example
// permission-denied) must not be re-attempted against an external system.
// Every attempt is recorded as an Outcome, and a failed target never aborts
// processing of the remaining targets.
type Executor struct {
	client         *github.Client
	deleteBranches bool
	closeStalePRs  bool
}

// NewExecutor returns an Executor. deleteBranches gates branch deletion and
// closeStalePRs gates stale pull request closure; with both false Apply is a
// no-op.
func NewExecutor(client *github.Client, deleteBranches, closeStalePRs bool) *Executor {
	return &Executor{
		client:         client,
		deleteBranches: deleteBranches,
		closeStalePRs:  closeStalePRs,
	}
}

// Enabled reports whether any destructive operation is configured.
func (e *Executor) Enabled() bool {
	return e.deleteBranches || e.closeStalePRs
}

// Apply runs the configured cleanup actions for one analyzed repository.
//
// Branch deletion targets are the repository's orphaned branches plus the
// deduplicated closed/merged branches. excluded is the classifier's exclusion
// set (default, protected, standard names); it is re-checked here before every
// deletion, even though upstream classification already filters excluded
// branches out.
//
// Pull request closure targets are stale, the open pull requests already past
// the scan's age threshold.
func (e *Executor) Apply(ctx context.Context, repo scan.Repository, result scan.RepoResult, excluded map[string]bool, stale []scan.OpenPRInfo) []Outcome {
	var outcomes []Outcome

	if e.deleteBranches {
		targets := make([]string, 0, len(result.OrphanedBranches)+len(result.ClosedMerged))
		targets = append(targets, result.OrphanedBranches...)
		for _, rec := range result.ClosedMerged {
			targets = append(targets, rec.Branch)
		}
		for _, branch := range targets {
			outcomes = append(outcomes, e.DeleteBranch(ctx, repo, branch, excluded))
		}
	}

	if e.closeStalePRs {
		for _, pr := range stale {
			outcomes = append(outcomes, e.ClosePullRequest(ctx, repo, pr.Number))
		}
	}

	return outcomes
}

// DeleteBranch deletes one branch, refusing outright if the branch is in the
// exclusion set or matches the standard allowlist. Upstream failures are
// classified into the closed reason set; not-found is reported as a benign
// success (the branch is already gone).
func (e *Executor) DeleteBranch(ctx context.Context, repo scan.Repository, branch string, excluded map[string]bool) Outcome {
	out := Outcome{Repo: repo.FullName(), Kind: ActionDeleteBranch, Target: branch}

	if excluded[branch] || scan.IsStandardBranch(branch) || branch == repo.DefaultBranch {
		out.Reason = ReasonExcluded
		out.Message = "refusing to delete excluded branch"
		return out
	}

	_, err := e.client.Git.DeleteRef(ctx, repo.Owner, repo.Name, "heads/"+branch)
	if err == nil {
		out.Success = true
		return out
	}

	reason, msg := classifyError(deleteBranchRules, err)
	if reason == ReasonNotFound {
		// Already deleted; the desired end state holds.
		out.Success = true
		out.Reason = ReasonNotFound
		out.Message = "branch already gone"
		return out
	}
	out.Reason = reason
	out.Message = msg
	return out
}

// ClosePullRequest closes one open pull request. Callers only invoke this for
// open pull requests older than the configured threshold.
func (e *Executor) ClosePullRequest(ctx context.Context, repo scan.Repository, number int) Outcome {
	out := Outcome{Repo: repo.FullName(), Kind: ActionClosePR, Target: fmt.Sprintf("#%d", number)}

	_, _, err := e.client.PullRequests.Edit(ctx, repo.Owner, repo.Name, number, &github.PullRequest{
		State: github.Ptr("closed"),
	})
	if err == nil {
		out.Success = true
		return out
	}

	reason, msg := classifyError(closePRRules, err)
	if reason == ReasonNotFound {
		out.Success = true
		out.Reason = ReasonNotFound
		out.Message = "pull request already closed or gone"
		return out
	}
	out.Reason = reason
	out.Message = msg
	return out
}
