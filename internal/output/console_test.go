package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"orgscan/internal/actions"
	"orgscan/internal/scan"
)

var testRun = RunInfo{
	Org:                "acme",
	ScanTime:           time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	OldPRThresholdDays: 30,
	TotalRepos:         3,
	ActiveRepos:        2,
}

func testRecords() []RepoRecord {
	return []RepoRecord{
		{
			Result: scan.RepoResult{
				Name:          "healthy",
				TotalBranches: 1,
			},
		},
		{
			Result: scan.RepoResult{
				Name:             "messy",
				URL:              "https://github.com/acme/messy",
				TotalBranches:    4,
				OrphanedCount:    1,
				OrphanedBranches: []string{"forgotten-branch"},
				OrphanedDetails:  []scan.OrphanedBranchDetail{{Name: "forgotten-branch", Author: "alice"}},
				OpenPRs: []scan.OpenPRInfo{
					{Number: 5, DaysOld: 45, URL: "https://github.com/acme/messy/pull/5", Author: "bob"},
				},
				ClosedMerged: []scan.ClosedBranchRecord{
					{Branch: "old-merged", PRNumber: 2, Author: "carol", Status: "merged", ClosedAt: "2025-05-01", DaysSinceClosed: 45},
				},
				HasIssues: true,
			},
			Outcomes: []actions.Outcome{
				{Repo: "acme/messy", Kind: actions.ActionDeleteBranch, Target: "forgotten-branch", Success: true},
			},
		},
	}
}

func writeAll(t *testing.T, sink Sink) {
	t.Helper()
	if err := sink.Write(Event{Type: EventRunStarted, Run: &testRun}); err != nil {
		t.Fatalf("write run start: %v", err)
	}
	for _, rec := range testRecords() {
		if err := sink.Write(rec); err != nil {
			t.Fatalf("write record: %v", err)
		}
	}
	if err := sink.Write(Event{Type: EventRunFinished, ExitCode: 1}); err != nil {
		t.Fatalf("write run finish: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close sink: %v", err)
	}
}

func TestConsoleSink_Text(t *testing.T) {
	var buf bytes.Buffer
	writeAll(t, NewConsoleSink(&buf, "text", false))
	got := buf.String()

	for _, want := range []string{
		"GitHub Org: acme",
		"Total repos: 3",
		"Active repos (last year): 2",
		"WARNING: messy",
		"Branches: 4 (1 orphaned)",
		"Old PRs (>30d): 1",
		"delete-branch forgotten-branch: done",
		"SUMMARY:",
		"- Repos with issues: 1",
		"- Total open PRs: 1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("text output missing %q\noutput:\n%s", want, got)
		}
	}
	if strings.Contains(got, "WARNING: healthy") {
		t.Error("clean repository got a warning line")
	}
}

func TestConsoleSink_TextPretty(t *testing.T) {
	var buf bytes.Buffer
	writeAll(t, NewConsoleSink(&buf, "text", true))
	got := buf.String()

	for _, want := range []string{
		"DETAILED REPORT - STALE PRs AND ORPHANED BRANCHES",
		"Stale PR",
		"PR #5",
		"Orphaned Branch",
		"forgotten-branch",
		"https://github.com/acme/messy/tree/forgotten-branch",
		"BRANCHES WITH CLOSED/MERGED PRs",
		"old-merged",
		"Merged",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("pretty output missing %q\noutput:\n%s", want, got)
		}
	}
}

func TestConsoleSink_JSON(t *testing.T) {
	var buf bytes.Buffer
	writeAll(t, NewConsoleSink(&buf, "json", false))

	var sum Summary
	if err := json.Unmarshal(buf.Bytes(), &sum); err != nil {
		t.Fatalf("json output is not a Summary: %v\noutput:\n%s", err, buf.String())
	}
	if sum.Org != "acme" || sum.TotalRepos != 3 || sum.ReposWithIssues != 1 {
		t.Errorf("summary = %+v", sum)
	}
	// Machine output includes every analyzed repo, not only flagged ones.
	if len(sum.Repos) != 2 {
		t.Errorf("repos = %d, want 2", len(sum.Repos))
	}
}

func TestConsoleSink_NDJSON(t *testing.T) {
	var buf bytes.Buffer
	writeAll(t, NewConsoleSink(&buf, "ndjson", false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want 4 (start, 2 records, finish)", len(lines))
	}

	var types []string
	for _, line := range lines {
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("line %q is not an event: %v", line, err)
		}
		types = append(types, ev.Type)
	}
	want := []string{EventRunStarted, EventRepoResult, EventRepoResult, EventRunFinished}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("line %d type = %q, want %q", i, types[i], want[i])
		}
	}

	var last Event
	if err := json.Unmarshal([]byte(lines[3]), &last); err != nil {
		t.Fatal(err)
	}
	if last.ExitCode != 1 {
		t.Errorf("final exit code = %d, want 1", last.ExitCode)
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "short string untouched", in: "feature", max: 10, want: "feature"},
		{name: "ascii truncated", in: "feature-branch", max: 7, want: "feature"},
		{name: "multi-byte cut on rune boundary", in: "grenförändring", max: 5, want: "grenf"},
		{name: "all multi-byte", in: "éééééé", max: 3, want: "ééé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clip(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("clip(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("clip(%q, %d) produced invalid UTF-8", tt.in, tt.max)
			}
		})
	}
}

func TestBuildSummary(t *testing.T) {
	sum := BuildSummary(testRun, testRecords())
	if sum.ScanTime != "2025-06-15 12:00:00" {
		t.Errorf("scan time = %q", sum.ScanTime)
	}
	if sum.OldPRThresholdDays != 30 {
		t.Errorf("threshold = %d, want 30", sum.OldPRThresholdDays)
	}
	if sum.ReposWithIssues != 1 || sum.TotalOpenPRs != 1 {
		t.Errorf("counts = %+v", sum)
	}

	empty := BuildSummary(testRun, nil)
	if empty.Repos == nil {
		t.Error("empty summary has nil repos list, want []")
	}
}
