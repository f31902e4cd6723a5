package engine

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"orgscan/internal/actions"
	"orgscan/internal/config"
	"orgscan/internal/gateway"
	gh "orgscan/internal/github"
	"orgscan/internal/output"
	"orgscan/internal/scan"
)

func exitCodeForRun(fatal, partial, issues bool) int {
	// Exit code contract:
	// 0 = clean run, no issues
	// 1 = maintenance debt found
	// 2 = partial failure (some repositories analyzed on incomplete data)
	// 3 = fatal error (scan did not run)
	if fatal {
		return 3
	}
	if partial {
		return 2
	}
	if issues {
		return 1
	}
	return 0
}

// Engine drives a scan end to end: discovery, archived/activity filtering,
// per-repository analysis, the optional destructive cleanup pass, and output.
type Engine struct {
	Client *gh.Client

	// now is a test seam for the scan's reference time.
	now func() time.Time
}

func NewEngine(client *gh.Client) *Engine {
	return &Engine{
		Client: client,
		now:    time.Now,
	}
}

func setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(nil, cfg.Output.Format, cfg.Output.Pretty)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(rs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// Run executes the scan and returns the process exit code.
func (e *Engine) Run(ctx context.Context, cfg *config.Config) int {
	if cfg.Runtime.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Runtime.Timeout)
		defer cancel()
	}

	now := e.now()

	if !cfg.Output.NoConsole {
		fmt.Fprintln(os.Stderr, "Discovering repositories...")
	}
	repos, err := DiscoverRepos(ctx, e.Client, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error discovering repositories: %v\n", err)
		return exitCodeForRun(true, false, false)
	}
	if len(repos) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no repositories found or cannot access org %q\n", cfg.Targeting.Org)
		return exitCodeForRun(true, false, false)
	}
	totalRepos := len(repos)

	gw := gateway.New(e.Client)

	// Archived repos are dropped before the activity check.
	repos = ExcludeArchived(repos)
	active := FilterActive(ctx, gw, repos, cfg.Policy.ActiveWindowDays, now)
	if !cfg.Output.NoConsole {
		fmt.Fprintf(os.Stderr, "Found %d repositories, %d active.\n", totalRepos, len(active))
	}

	outMgr, err := setupOutputManager(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output sinks: %v\n", err)
		return exitCodeForRun(true, false, false)
	}
	defer outMgr.Close()

	run := output.RunInfo{
		Org:                cfg.Targeting.Org,
		Repo:               cfg.Targeting.Repo,
		ScanTime:           now,
		OldPRThresholdDays: cfg.Policy.OldPRThresholdDays,
		TotalRepos:         totalRepos,
		ActiveRepos:        len(active),
	}
	_ = outMgr.Write(output.Event{Type: output.EventRunStarted, Run: &run})

	analyzer := scan.NewAnalyzer(cfg.Policy.OldPRThresholdDays)
	analyzer.Now = func() time.Time { return now }
	executor := actions.NewExecutor(e.Client.Client, cfg.Policy.DeleteOrphanedBranches, cfg.Policy.DeleteStalePRs)

	sched := newScheduler(gw, analyzer, executor, cfg)
	records := sched.Run(ctx, active)

	// Reconstruct deterministic report order whatever the concurrency was.
	sort.Slice(records, func(i, j int) bool { return records[i].Result.Name < records[j].Result.Name })

	var hasIssues, partial bool
	for _, rec := range records {
		if rec.Result.HasIssues {
			hasIssues = true
		}
		if rec.Result.Partial {
			partial = true
		}
		_ = outMgr.Write(rec)
	}

	code := exitCodeForRun(false, partial, hasIssues)
	_ = outMgr.Write(output.Event{Type: output.EventRunFinished, ExitCode: code})
	return code
}
