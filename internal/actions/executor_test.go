package actions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v81/github"

	"orgscan/internal/scan"
)

func newTestClient(t *testing.T, handler http.Handler) *github.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := github.NewClient(srv.Client())
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	client.BaseURL = base
	return client
}

func TestDeleteBranch(t *testing.T) {
	repo := scan.Repository{Owner: "acme", Name: "widgets", DefaultBranch: "main"}

	t.Run("success", func(t *testing.T) {
		var gotPath string
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}))
		e := NewExecutor(client, true, false)

		out := e.DeleteBranch(context.Background(), repo, "feature-x", nil)
		if !out.Success {
			t.Fatalf("outcome = %+v, want success", out)
		}
		if want := "/repos/acme/widgets/git/refs/heads/feature-x"; gotPath != want {
			t.Errorf("path = %q, want %q", gotPath, want)
		}
		if out.Kind != ActionDeleteBranch || out.Target != "feature-x" {
			t.Errorf("outcome identity = %+v", out)
		}
	})

	t.Run("already gone counts as success", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message": "Reference does not exist"}`, http.StatusNotFound)
		}))
		e := NewExecutor(client, true, false)

		out := e.DeleteBranch(context.Background(), repo, "gone-branch", nil)
		if !out.Success {
			t.Fatalf("outcome = %+v, want benign success", out)
		}
		if out.Reason != ReasonNotFound {
			t.Errorf("reason = %q, want %q", out.Reason, ReasonNotFound)
		}
	})

	t.Run("permission denied", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message": "Resource not accessible"}`, http.StatusForbidden)
		}))
		e := NewExecutor(client, true, false)

		out := e.DeleteBranch(context.Background(), repo, "feature-x", nil)
		if out.Success {
			t.Fatal("outcome marked success on 403")
		}
		if out.Reason != ReasonPermissionDenied {
			t.Errorf("reason = %q, want %q", out.Reason, ReasonPermissionDenied)
		}
	})

	t.Run("excluded branch refused without remote call", func(t *testing.T) {
		called := false
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusNoContent)
		}))
		e := NewExecutor(client, true, false)

		tests := []struct {
			branch   string
			excluded map[string]bool
		}{
			{branch: "infra", excluded: map[string]bool{"infra": true}},
			{branch: "Staging"}, // standard allowlist, case-insensitive
			{branch: "main"},    // default branch
		}
		for _, tt := range tests {
			out := e.DeleteBranch(context.Background(), repo, tt.branch, tt.excluded)
			if out.Success || out.Reason != ReasonExcluded {
				t.Errorf("DeleteBranch(%q) = %+v, want refusal with %q", tt.branch, out, ReasonExcluded)
			}
		}
		if called {
			t.Error("remote call made for an excluded branch")
		}
	})
}

func TestClosePullRequest(t *testing.T) {
	repo := scan.Repository{Owner: "acme", Name: "widgets", DefaultBranch: "main"}

	t.Run("success", func(t *testing.T) {
		var gotPath, gotMethod string
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotMethod = r.Method
			w.Write([]byte(`{"number": 12, "state": "closed"}`))
		}))
		e := NewExecutor(client, false, true)

		out := e.ClosePullRequest(context.Background(), repo, 12)
		if !out.Success {
			t.Fatalf("outcome = %+v, want success", out)
		}
		if want := "/repos/acme/widgets/pulls/12"; gotPath != want {
			t.Errorf("path = %q, want %q", gotPath, want)
		}
		if gotMethod != http.MethodPatch {
			t.Errorf("method = %q, want PATCH", gotMethod)
		}
		if out.Target != "#12" {
			t.Errorf("target = %q, want #12", out.Target)
		}
	})

	t.Run("already gone counts as success", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
		}))
		e := NewExecutor(client, false, true)

		out := e.ClosePullRequest(context.Background(), repo, 99)
		if !out.Success || out.Reason != ReasonNotFound {
			t.Fatalf("outcome = %+v, want benign success", out)
		}
	})
}

func TestApply(t *testing.T) {
	repo := scan.Repository{Owner: "acme", Name: "widgets", DefaultBranch: "main"}
	result := scan.RepoResult{
		OrphanedBranches: []string{"orphan-1", "orphan-2"},
		ClosedMerged: []scan.ClosedBranchRecord{
			{Branch: "old-merged", PRNumber: 7},
		},
	}
	stale := []scan.OpenPRInfo{{Number: 3, DaysOld: 90}}

	t.Run("disabled executor does nothing", func(t *testing.T) {
		e := NewExecutor(nil, false, false)
		if e.Enabled() {
			t.Error("Enabled() = true with both gates off")
		}
		if out := e.Apply(context.Background(), repo, result, nil, stale); len(out) != 0 {
			t.Errorf("Apply() produced %d outcomes, want 0", len(out))
		}
	})

	t.Run("failure on one target does not stop the rest", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/repos/acme/widgets/git/refs/heads/orphan-1" {
				http.Error(w, `{"message": "Cannot delete a protected branch"}`, http.StatusUnprocessableEntity)
				return
			}
			if r.Method == http.MethodPatch {
				w.Write([]byte(`{"number": 3, "state": "closed"}`))
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		e := NewExecutor(client, true, true)

		outcomes := e.Apply(context.Background(), repo, result, nil, stale)
		if len(outcomes) != 4 {
			t.Fatalf("outcomes = %d, want 4 (3 deletions + 1 closure)", len(outcomes))
		}

		var failed, succeeded int
		for _, out := range outcomes {
			if out.Success {
				succeeded++
			} else {
				failed++
				if out.Reason != ReasonProtected {
					t.Errorf("failed outcome reason = %q, want %q", out.Reason, ReasonProtected)
				}
			}
		}
		if failed != 1 || succeeded != 3 {
			t.Errorf("failed = %d, succeeded = %d, want 1 and 3", failed, succeeded)
		}
	})
}
