package engine

import (
	"context"
	"fmt"

	"github.com/google/go-github/v81/github"

	"orgscan/internal/config"
	gh "orgscan/internal/github"
	"orgscan/internal/scan"
)

const defaultOrgDiscoveryRepoLimit = 1000

// DiscoverRepos resolves the set of repositories to scan: every repository of
// the organization, or the single repository named by cfg.Targeting.Repo.
func DiscoverRepos(ctx context.Context, client *gh.Client, cfg *config.Config) ([]scan.Repository, error) {
	if cfg.Targeting.Repo != "" {
		repo, _, err := client.Client.Repositories.Get(ctx, cfg.Targeting.Org, cfg.Targeting.Repo)
		if err != nil {
			return nil, fmt.Errorf("repository %s/%s not found or not accessible: %w", cfg.Targeting.Org, cfg.Targeting.Repo, err)
		}
		return []scan.Repository{convertRepo(repo)}, nil
	}

	limit := defaultOrgDiscoveryRepoLimit
	if cfg.Targeting.MaxRepos > 0 {
		limit = cfg.Targeting.MaxRepos
	}

	repos := make([]scan.Repository, 0, min(limit, 100))
	opts := &github.RepositoryListByOrgOptions{
		Type:        "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		page, resp, err := client.Client.Repositories.ListByOrg(ctx, cfg.Targeting.Org, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories for org %s: %w", cfg.Targeting.Org, err)
		}
		for _, repo := range page {
			if len(repos) >= limit {
				break
			}
			repos = append(repos, convertRepo(repo))
		}
		if len(repos) >= limit {
			break
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return repos, nil
}

func convertRepo(repo *github.Repository) scan.Repository {
	return scan.Repository{
		Owner:         repo.GetOwner().GetLogin(),
		Name:          repo.GetName(),
		URL:           repo.GetHTMLURL(),
		DefaultBranch: repo.GetDefaultBranch(),
		Archived:      repo.GetArchived(),
	}
}
