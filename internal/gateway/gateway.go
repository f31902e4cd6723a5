// Package gateway supplies the scan core with repository data from the GitHub
// API: branches, pull requests, default branch, protection flags, commit
// activity, and commit authors.
//
// Every call is bounded by a fixed per-call timeout and retried exactly once
// on transient failures. Results are cached and deduplicated for the scan's
// duration, so the engine and executor can ask for the same data without
// additional API traffic.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v81/github"

	gh "orgscan/internal/github"
	"orgscan/internal/scan"
)

// pageSize is the GitHub list page size used for all paginated calls.
const pageSize = 100

// PRStateFilter selects which pull requests to list.
type PRStateFilter string

const (
	PRFilterOpen   PRStateFilter = "open"
	PRFilterClosed PRStateFilter = "closed"
	PRFilterAll    PRStateFilter = "all"
)

// Gateway is the repository data collaborator the scan core consumes.
type Gateway struct {
	client *gh.Client
	cache  *cache
	group  group
}

// New returns a Gateway backed by the given GitHub client.
func New(client *gh.Client) *Gateway {
	return &Gateway{
		client: client,
		cache:  newCache(),
	}
}

// cached runs fetch under the scan cache and singleflight group so identical
// concurrent requests hit the API once.
func (g *Gateway) cached(key string, fetch func() (any, error)) (any, error) {
	if val, ok := g.cache.Get(key); ok {
		return val, nil
	}
	val, err, _ := g.group.Do(key, fetch)
	if err == nil {
		g.cache.Set(key, val)
	}
	return val, err
}

// Branches lists every branch of the repository with its protection flag.
func (g *Gateway) Branches(ctx context.Context, repo scan.Repository) ([]scan.Branch, error) {
	key := repo.FullName() + ":branches"
	val, err := g.cached(key, func() (any, error) {
		var all []scan.Branch
		opts := &github.BranchListOptions{ListOptions: github.ListOptions{PerPage: pageSize}}
		for {
			var (
				page []*github.Branch
				next int
			)
			err := withRetry(ctx, func(ctx context.Context) error {
				branches, resp, err := g.client.Client.Repositories.ListBranches(ctx, repo.Owner, repo.Name, opts)
				if err != nil {
					return err
				}
				page = branches
				next = resp.NextPage
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("list branches for %s: %w", repo.FullName(), err)
			}
			for _, b := range page {
				all = append(all, scan.Branch{
					Name:      b.GetName(),
					Protected: b.GetProtected(),
				})
			}
			if next == 0 {
				break
			}
			opts.Page = next
		}
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]scan.Branch), nil
}

// ProtectedBranches returns the set of protected branch names, derived from
// the branch list's protection flags.
func (g *Gateway) ProtectedBranches(ctx context.Context, repo scan.Repository) (map[string]bool, error) {
	branches, err := g.Branches(ctx, repo)
	if err != nil {
		return nil, err
	}
	protected := make(map[string]bool)
	for _, b := range branches {
		if b.Protected {
			protected[b.Name] = true
		}
	}
	return protected, nil
}

// PullRequests lists the repository's pull requests in the given state.
func (g *Gateway) PullRequests(ctx context.Context, repo scan.Repository, state PRStateFilter) ([]scan.PullRequest, error) {
	key := repo.FullName() + ":pulls:" + string(state)
	val, err := g.cached(key, func() (any, error) {
		var all []scan.PullRequest
		opts := &github.PullRequestListOptions{
			State:       string(state),
			ListOptions: github.ListOptions{PerPage: pageSize},
		}
		for {
			var (
				page []*github.PullRequest
				next int
			)
			err := withRetry(ctx, func(ctx context.Context) error {
				prs, resp, err := g.client.Client.PullRequests.List(ctx, repo.Owner, repo.Name, opts)
				if err != nil {
					return err
				}
				page = prs
				next = resp.NextPage
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("list %s pull requests for %s: %w", state, repo.FullName(), err)
			}
			for _, pr := range page {
				all = append(all, convertPR(pr))
			}
			if next == 0 {
				break
			}
			opts.Page = next
		}
		return all, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]scan.PullRequest), nil
}

// DefaultBranch returns the repository's default branch, falling back to
// "main" when the lookup fails.
func (g *Gateway) DefaultBranch(ctx context.Context, repo scan.Repository) string {
	if repo.DefaultBranch != "" {
		return repo.DefaultBranch
	}
	key := repo.FullName() + ":default-branch"
	val, err := g.cached(key, func() (any, error) {
		var name string
		err := withRetry(ctx, func(ctx context.Context) error {
			r, _, err := g.client.Client.Repositories.Get(ctx, repo.Owner, repo.Name)
			if err != nil {
				return err
			}
			name = r.GetDefaultBranch()
			return nil
		})
		if err != nil {
			return nil, err
		}
		return name, nil
	})
	if err != nil || val.(string) == "" {
		return "main"
	}
	return val.(string)
}

// LastCommitAuthor returns the author name of the branch's tip commit,
// falling back to "Unknown" when the lookup fails or the data is absent.
func (g *Gateway) LastCommitAuthor(ctx context.Context, repo scan.Repository, branch string) string {
	key := repo.FullName() + ":author:" + branch
	val, err := g.cached(key, func() (any, error) {
		var author string
		err := withRetry(ctx, func(ctx context.Context) error {
			commit, _, err := g.client.Client.Repositories.GetCommit(ctx, repo.Owner, repo.Name, branch, nil)
			if err != nil {
				return err
			}
			author = commit.GetCommit().GetAuthor().GetName()
			return nil
		})
		if err != nil {
			return nil, err
		}
		return author, nil
	})
	if err != nil || val.(string) == "" {
		return scan.UnknownAuthor
	}
	return val.(string)
}

// HasRecentActivity reports whether the repository has at least one commit
// since the given time. Lookup failures count as no activity; a repository
// that cannot be read is skipped rather than scanned on stale assumptions.
func (g *Gateway) HasRecentActivity(ctx context.Context, repo scan.Repository, since time.Time) bool {
	key := repo.FullName() + ":activity:" + since.Format(time.RFC3339)
	val, err := g.cached(key, func() (any, error) {
		var active bool
		err := withRetry(ctx, func(ctx context.Context) error {
			commits, _, err := g.client.Client.Repositories.ListCommits(ctx, repo.Owner, repo.Name, &github.CommitsListOptions{
				Since:       since,
				ListOptions: github.ListOptions{PerPage: 1},
			})
			if err != nil {
				return err
			}
			active = len(commits) > 0
			return nil
		})
		if err != nil {
			return nil, err
		}
		return active, nil
	})
	if err != nil {
		return false
	}
	return val.(bool)
}

func convertPR(pr *github.PullRequest) scan.PullRequest {
	out := scan.PullRequest{
		Number:    pr.GetNumber(),
		State:     scan.PRState(pr.GetState()),
		HeadRef:   pr.GetHead().GetRef(),
		Author:    pr.GetUser().GetLogin(),
		URL:       pr.GetHTMLURL(),
		CreatedAt: pr.GetCreatedAt().Time,
	}
	if pr.ClosedAt != nil {
		t := pr.ClosedAt.Time
		out.ClosedAt = &t
	}
	if pr.MergedAt != nil {
		t := pr.MergedAt.Time
		out.MergedAt = &t
	}
	return out
}
