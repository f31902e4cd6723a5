package output

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// ReportSink writes a Markdown health report: run header, summary counts, the
// stale-PR/orphaned-branch table, the closed/merged branch table, and a
// detail section per repository with issues.
type ReportSink struct {
	path    string
	file    *os.File
	mu      sync.Mutex
	run     RunInfo
	records []RepoRecord
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return &ReportSink{path: path, file: f}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch t := v.(type) {
	case Event:
		if t.Type == EventRunStarted && t.Run != nil {
			s.run = *t.Run
		}
	case RepoRecord:
		s.records = append(s.records, t)
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	s.writeHeader(&b)
	s.writeSummary(&b)
	s.writeDebtTable(&b)
	s.writeClosedMergedTable(&b)
	s.writeRepoDetails(&b)
	s.writeActionLog(&b)

	_, err := s.file.WriteString(b.String())
	if closeErr := s.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func (s *ReportSink) writeHeader(b *strings.Builder) {
	b.WriteString("# GitHub Repository Health Report\n\n")
	if s.run.Repo != "" {
		fmt.Fprintf(b, "**Repository:** %s/%s\n\n", s.run.Org, s.run.Repo)
	} else {
		fmt.Fprintf(b, "**Organization:** %s\n\n", s.run.Org)
	}
	fmt.Fprintf(b, "**Scan Time:** %s\n\n", s.run.ScanTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(b, "**Old PR Threshold:** %d days\n\n", s.run.OldPRThresholdDays)
}

func (s *ReportSink) writeSummary(b *strings.Builder) {
	sum := BuildSummary(s.run, s.records)
	closedMergedTotal := 0
	for _, rec := range s.records {
		closedMergedTotal += len(rec.Result.ClosedMerged)
	}

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(b, "- **Total repositories:** %d\n", sum.TotalRepos)
	fmt.Fprintf(b, "- **Active repositories (last year):** %d\n", sum.ActiveRepos)
	fmt.Fprintf(b, "- **Repositories with issues:** %d\n", sum.ReposWithIssues)
	fmt.Fprintf(b, "- **Total open PRs:** %d\n", sum.TotalOpenPRs)
	fmt.Fprintf(b, "- **Branches with closed/merged PRs:** %d\n\n", closedMergedTotal)
}

func (s *ReportSink) writeDebtTable(b *strings.Builder) {
	b.WriteString("## Stale PRs and Orphaned Branches\n\n")

	rows := collectDebtRows(s.run, s.records)
	if len(rows) == 0 {
		b.WriteString("No stale PRs or orphaned branches found.\n\n")
		return
	}

	b.WriteString("| Repository | Type | Item | User/Author | Age | Link |\n")
	b.WriteString("|------------|------|------|-------------|-----|------|\n")
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | [View](%s) |\n",
			row.Repo, row.Type, row.Item, row.User, row.Age, row.Link)
	}
	fmt.Fprintf(b, "\n**Total items:** %d\n\n", len(rows))
}

func (s *ReportSink) writeClosedMergedTable(b *strings.Builder) {
	b.WriteString("## Branches with Closed/Merged PRs\n\n")
	b.WriteString("These branches still exist but their PRs have been closed or merged. Consider deleting them.\n\n")

	total := 0
	for _, rec := range s.records {
		total += len(rec.Result.ClosedMerged)
	}
	if total == 0 {
		b.WriteString("No branches with closed/merged PRs found.\n\n")
		return
	}

	b.WriteString("| Repository | Branch | PR | User | Status | Closed Date | Days Since | Link |\n")
	b.WriteString("|------------|--------|----|------|--------|-------------|------------|------|\n")
	for _, rec := range s.records {
		for _, branch := range rec.Result.ClosedMerged {
			fmt.Fprintf(b, "| %s | %s | PR #%d | %s | %s | %s | %d days | [View](%s) |\n",
				rec.Result.Name, branch.Branch, branch.PRNumber, branch.Author,
				title(branch.Status), branch.ClosedAt, branch.DaysSinceClosed, branch.PRURL)
		}
	}
	fmt.Fprintf(b, "\n**Total branches:** %d\n\n", total)
}

func (s *ReportSink) writeRepoDetails(b *strings.Builder) {
	b.WriteString("## Repository Details\n\n")
	for _, rec := range s.records {
		r := rec.Result
		if !r.HasIssues {
			continue
		}
		fmt.Fprintf(b, "### %s\n\n", r.Name)
		fmt.Fprintf(b, "- **Repository URL:** [%s](%s)\n", r.URL, r.URL)
		fmt.Fprintf(b, "- **Total branches:** %d\n", r.TotalBranches)
		fmt.Fprintf(b, "- **Orphaned branches:** %d\n", r.OrphanedCount)
		fmt.Fprintf(b, "- **Open PRs:** %d\n", len(r.OpenPRs))

		oldCount := 0
		for _, pr := range r.OpenPRs {
			if pr.DaysOld > s.run.OldPRThresholdDays {
				oldCount++
			}
		}
		if oldCount > 0 {
			fmt.Fprintf(b, "- **Old PRs (>%dd):** %d\n", s.run.OldPRThresholdDays, oldCount)
		}
		b.WriteString("\n")
	}
}

func (s *ReportSink) writeActionLog(b *strings.Builder) {
	total := 0
	for _, rec := range s.records {
		total += len(rec.Outcomes)
	}
	if total == 0 {
		return
	}

	b.WriteString("## Cleanup Actions\n\n")
	b.WriteString("| Repository | Action | Target | Result | Detail |\n")
	b.WriteString("|------------|--------|--------|--------|--------|\n")
	for _, rec := range s.records {
		for _, out := range rec.Outcomes {
			result := "failed"
			if out.Success {
				result = "ok"
			}
			detail := out.Message
			if out.Reason != "" {
				if detail != "" {
					detail = fmt.Sprintf("%s: %s", out.Reason, detail)
				} else {
					detail = string(out.Reason)
				}
			}
			fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n", out.Repo, out.Kind, out.Target, result, detail)
		}
	}
	fmt.Fprintf(b, "\n**Total actions:** %d\n\n", total)
}
