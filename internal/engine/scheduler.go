package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"orgscan/internal/actions"
	"orgscan/internal/config"
	"orgscan/internal/gateway"
	"orgscan/internal/output"
	"orgscan/internal/scan"
)

// scheduler runs per-repository analysis, bounded by the configured
// concurrency. The default of 1 reproduces the reference sequential flow:
// each repository's fetch, classification, and optional cleanup complete
// before the next repository starts.
//
// Per-repository failures never abort the scan; a repository whose branch or
// pull request lists could not be fetched is analyzed on the partial data and
// marked as such.
type scheduler struct {
	gw       *gateway.Gateway
	analyzer *scan.Analyzer
	executor *actions.Executor
	cfg      *config.Config

	// progress receives the per-repo "Analyzing repos: i/N" lines. nil
	// suppresses them (machine-only output modes).
	progress io.Writer
}

func newScheduler(gw *gateway.Gateway, analyzer *scan.Analyzer, executor *actions.Executor, cfg *config.Config) *scheduler {
	s := &scheduler{
		gw:       gw,
		analyzer: analyzer,
		executor: executor,
		cfg:      cfg,
	}
	if !cfg.Output.NoConsole {
		s.progress = os.Stderr
	}
	return s
}

// Run analyzes every repository and returns one record per repository. Order
// is unspecified; the engine sorts before reporting.
func (s *scheduler) Run(ctx context.Context, repos []scan.Repository) []output.RepoRecord {
	records := make([]output.RepoRecord, 0, len(repos))

	sem := make(chan struct{}, s.cfg.Runtime.Concurrency)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

scheduleLoop:
	for i, repo := range repos {
		if ctx.Err() != nil {
			break
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break scheduleLoop
		}

		if s.progress != nil {
			fmt.Fprintf(s.progress, "Analyzing repos: %d/%d - %s\n", i+1, len(repos), repo.Name)
		}

		wg.Add(1)
		go func(repo scan.Repository) {
			defer wg.Done()
			defer func() { <-sem }()

			rec := s.processRepo(ctx, repo)

			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
		}(repo)
	}

	wg.Wait()
	return records
}

// processRepo runs the full per-repository pipeline: gateway fetches,
// analysis, author enrichment in pretty mode, and the gated cleanup pass.
func (s *scheduler) processRepo(ctx context.Context, repo scan.Repository) output.RepoRecord {
	if repo.DefaultBranch == "" {
		repo.DefaultBranch = s.gw.DefaultBranch(ctx, repo)
	}

	var partial bool
	branches, err := s.gw.Branches(ctx, repo)
	if err != nil {
		branches = nil
		partial = true
	}
	prs, err := s.gw.PullRequests(ctx, repo, gateway.PRFilterAll)
	if err != nil {
		prs = nil
		partial = true
	}

	result := s.analyzer.Analyze(repo, branches, prs)
	result.Partial = partial

	if s.cfg.Output.Pretty {
		for _, name := range result.OrphanedBranches {
			result.OrphanedDetails = append(result.OrphanedDetails, scan.OrphanedBranchDetail{
				Name:   name,
				Author: s.gw.LastCommitAuthor(ctx, repo, name),
			})
		}
	}

	rec := output.RepoRecord{Result: result}
	if s.executor.Enabled() {
		excluded := scan.ExcludedBranches(branches, repo.DefaultBranch)
		stale := s.analyzer.StalePRs(result.OpenPRs)
		rec.Outcomes = s.executor.Apply(ctx, repo, result, excluded, stale)
	}
	return rec
}
