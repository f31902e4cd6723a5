package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-github/v81/github"

	"orgscan/internal/config"
	gh "orgscan/internal/github"
	"orgscan/internal/output"
)

func newTestGHClient(t *testing.T, handler http.Handler) *gh.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := github.NewClient(srv.Client())
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	client.BaseURL = base
	return &gh.Client{Client: client}
}

func TestExitCodeForRun(t *testing.T) {
	tests := []struct {
		name    string
		fatal   bool
		partial bool
		issues  bool
		want    int
	}{
		{name: "clean", want: 0},
		{name: "issues found", issues: true, want: 1},
		{name: "partial data", partial: true, want: 2},
		{name: "partial outranks issues", partial: true, issues: true, want: 2},
		{name: "fatal", fatal: true, want: 3},
		{name: "fatal outranks everything", fatal: true, partial: true, issues: true, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeForRun(tt.fatal, tt.partial, tt.issues); got != tt.want {
				t.Errorf("exitCodeForRun(%v, %v, %v) = %d, want %d", tt.fatal, tt.partial, tt.issues, got, tt.want)
			}
		})
	}
}

func TestRun_EndToEnd(t *testing.T) {
	// Three repos: one healthy, one with an orphaned branch, one archived.
	handler := http.NewServeMux()
	handler.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"name": "healthy", "owner": {"login": "acme"}, "default_branch": "main"},
			{"name": "messy", "owner": {"login": "acme"}, "default_branch": "main"},
			{"name": "attic", "owner": {"login": "acme"}, "default_branch": "main", "archived": true}
		]`)
	})
	handler.HandleFunc("/repos/acme/healthy/commits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"sha": "abc"}]`)
	})
	handler.HandleFunc("/repos/acme/messy/commits", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"sha": "def"}]`)
	})
	handler.HandleFunc("/repos/acme/healthy/branches", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name": "main"}]`)
	})
	handler.HandleFunc("/repos/acme/messy/branches", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"name": "main"}, {"name": "forgotten-branch"}]`)
	})
	handler.HandleFunc("/repos/acme/healthy/pulls", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	handler.HandleFunc("/repos/acme/messy/pulls", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	handler.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	})

	outPath := filepath.Join(t.TempDir(), "summary.json")
	cfg := config.New()
	cfg.Targeting.Org = "acme"
	cfg.Output.NoConsole = true
	cfg.Output.Out = outPath

	e := NewEngine(newTestGHClient(t, handler))
	e.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	code := e.Run(context.Background(), cfg)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1 (orphaned branch found)", code)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var sum output.Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}

	if sum.Org != "acme" {
		t.Errorf("org = %q, want acme", sum.Org)
	}
	if sum.TotalRepos != 3 {
		t.Errorf("total repos = %d, want 3", sum.TotalRepos)
	}
	if sum.ActiveRepos != 2 {
		t.Errorf("active repos = %d, want 2 (archived repo dropped)", sum.ActiveRepos)
	}
	if sum.ReposWithIssues != 1 {
		t.Errorf("repos with issues = %d, want 1", sum.ReposWithIssues)
	}
	// Machine output carries every analyzed repo, issues or not, sorted by name.
	if len(sum.Repos) != 2 {
		t.Fatalf("repos in summary = %d, want 2", len(sum.Repos))
	}
	if sum.Repos[0].Result.Name != "healthy" || sum.Repos[1].Result.Name != "messy" {
		t.Errorf("repo order = [%s, %s], want [healthy, messy]", sum.Repos[0].Result.Name, sum.Repos[1].Result.Name)
	}
	messy := sum.Repos[1].Result
	if messy.OrphanedCount != 1 || len(messy.OrphanedBranches) != 1 || messy.OrphanedBranches[0] != "forgotten-branch" {
		t.Errorf("messy result = %+v, want one orphaned branch forgotten-branch", messy)
	}
}

func TestRun_DiscoveryFailureIsFatal(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	})

	cfg := config.New()
	cfg.Targeting.Org = "no-such-org"
	cfg.Output.NoConsole = true

	e := NewEngine(newTestGHClient(t, handler))
	if code := e.Run(context.Background(), cfg); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}

func TestRun_EmptyOrgIsFatal(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	cfg := config.New()
	cfg.Targeting.Org = "empty-org"
	cfg.Output.NoConsole = true

	e := NewEngine(newTestGHClient(t, handler))
	if code := e.Run(context.Background(), cfg); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}
