package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fatih/color"
)

// ConsoleSink renders scan progress and results for humans (text mode), an
// aggregate JSON document (json mode), or a stream of lifecycle events
// (ndjson mode). Pretty mode adds the stale-PR/orphaned-branch and
// closed/merged tables after the summary.
type ConsoleSink struct {
	writer  io.Writer
	format  string // "text", "json", "ndjson"
	pretty  bool
	mu      sync.Mutex
	run     RunInfo
	records []RepoRecord
}

func NewConsoleSink(w io.Writer, format string, pretty bool) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}
	return &ConsoleSink{
		writer: w,
		format: format,
		pretty: pretty,
	}
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "json":
		// Aggregate; rendered on Close.
		switch t := v.(type) {
		case Event:
			if t.Type == EventRunStarted && t.Run != nil {
				s.run = *t.Run
			}
		case RepoRecord:
			s.records = append(s.records, t)
		}
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.writer)
		switch t := v.(type) {
		case Event:
			if err := encoder.Encode(t); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		case RepoRecord:
			if err := encoder.Encode(Event{Type: EventRepoResult, Record: &t}); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		default:
			return nil
		}
	case "text":
		switch t := v.(type) {
		case Event:
			if t.Type == EventRunStarted && t.Run != nil {
				s.run = *t.Run
				return s.printHeader()
			}
			return nil
		case RepoRecord:
			s.records = append(s.records, t)
			if t.Result.HasIssues {
				return s.printWarning(t)
			}
			return nil
		default:
			return nil
		}
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "json":
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(BuildSummary(s.run, s.records)); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	case "ndjson":
		return nil
	case "text":
		if err := s.printSummary(); err != nil {
			return err
		}
		if s.pretty {
			if err := s.printPrettyTables(); err != nil {
				return err
			}
		}
		return flushIfPossible(s.writer)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) printHeader() error {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(s.writer, "\n%s\n", rule)
	if s.run.Repo != "" {
		fmt.Fprintf(s.writer, "GitHub Repo: %s/%s\n", s.run.Org, s.run.Repo)
	} else {
		fmt.Fprintf(s.writer, "GitHub Org: %s\n", s.run.Org)
	}
	fmt.Fprintf(s.writer, "Scan Time: %s\n", s.run.ScanTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(s.writer, "%s\n\n", rule)
	fmt.Fprintf(s.writer, "Total repos: %d\n", s.run.TotalRepos)
	fmt.Fprintf(s.writer, "Active repos (last year): %d\n\n", s.run.ActiveRepos)
	return nil
}

func (s *ConsoleSink) printWarning(rec RepoRecord) error {
	r := rec.Result
	warn := color.New(color.FgYellow, color.Bold)
	warn.Fprintf(s.writer, "WARNING: %s\n", r.Name)
	fmt.Fprintf(s.writer, "   Branches: %d (%d orphaned)\n", r.TotalBranches, r.OrphanedCount)

	oldCount := 0
	for _, pr := range r.OpenPRs {
		if pr.DaysOld > s.run.OldPRThresholdDays {
			oldCount++
		}
	}
	if oldCount > 0 {
		fmt.Fprintf(s.writer, "   Old PRs (>%dd): %d\n", s.run.OldPRThresholdDays, oldCount)
	}

	for _, out := range rec.Outcomes {
		if out.Success {
			fmt.Fprintf(s.writer, "   %s %s: done\n", out.Kind, out.Target)
		} else {
			fmt.Fprintf(s.writer, "   %s %s: %s (%s)\n", out.Kind, out.Target, out.Reason, out.Message)
		}
	}

	fmt.Fprintln(s.writer)
	return nil
}

func (s *ConsoleSink) printSummary() error {
	sum := BuildSummary(s.run, s.records)
	rule := strings.Repeat("=", 60)
	bold := color.New(color.Bold)
	fmt.Fprintf(s.writer, "\n%s\n", rule)
	bold.Fprintln(s.writer, "SUMMARY:")
	fmt.Fprintf(s.writer, "- Total repos: %d\n", sum.TotalRepos)
	fmt.Fprintf(s.writer, "- Active repos (last year): %d\n", sum.ActiveRepos)
	fmt.Fprintf(s.writer, "- Repos with issues: %d\n", sum.ReposWithIssues)
	fmt.Fprintf(s.writer, "- Total open PRs: %d\n", sum.TotalOpenPRs)
	fmt.Fprintf(s.writer, "%s\n\n", rule)
	return nil
}

func (s *ConsoleSink) printPrettyTables() error {
	rule := strings.Repeat("=", 100)
	bold := color.New(color.Bold)

	fmt.Fprintf(s.writer, "\n%s\n", rule)
	bold.Fprintln(s.writer, "DETAILED REPORT - STALE PRs AND ORPHANED BRANCHES")
	fmt.Fprintf(s.writer, "%s\n\n", rule)

	rows := collectDebtRows(s.run, s.records)
	if len(rows) == 0 {
		fmt.Fprintln(s.writer, "No stale PRs or orphaned branches found.")
	} else {
		header := fmt.Sprintf("%-30s | %-16s | %-25s | %-20s | %-10s | %s", "Repository", "Type", "Item", "User/Author", "Age", "Link")
		fmt.Fprintln(s.writer, header)
		fmt.Fprintln(s.writer, strings.Repeat("-", len(header)))
		for _, row := range rows {
			fmt.Fprintf(s.writer, "%-30s | %-16s | %-25s | %-20s | %-10s | %s\n",
				clip(row.Repo, 29), row.Type, clip(row.Item, 24), clip(row.User, 19), row.Age, row.Link)
		}
		fmt.Fprintf(s.writer, "\nTotal items: %d\n", len(rows))
	}

	fmt.Fprintf(s.writer, "\n%s\n", rule)
	bold.Fprintln(s.writer, "BRANCHES WITH CLOSED/MERGED PRs")
	fmt.Fprintf(s.writer, "%s\n\n", rule)

	count := 0
	for _, rec := range s.records {
		for _, branch := range rec.Result.ClosedMerged {
			if count == 0 {
				header := fmt.Sprintf("%-30s | %-25s | %-10s | %-15s | %-10s | %-8s | %s", "Repository", "Branch", "PR", "User", "Status", "Days", "Link")
				fmt.Fprintln(s.writer, header)
				fmt.Fprintln(s.writer, strings.Repeat("-", len(header)))
			}
			fmt.Fprintf(s.writer, "%-30s | %-25s | %-10s | %-15s | %-10s | %-8d | %s\n",
				clip(rec.Result.Name, 29), clip(branch.Branch, 24), fmt.Sprintf("#%d", branch.PRNumber),
				clip(branch.Author, 14), title(branch.Status), branch.DaysSinceClosed, branch.PRURL)
			count++
		}
	}
	if count == 0 {
		fmt.Fprintln(s.writer, "No branches with closed/merged PRs found.")
	} else {
		fmt.Fprintf(s.writer, "\nTotal branches: %d\n", count)
	}
	fmt.Fprintf(s.writer, "%s\n\n", rule)
	return nil
}

// flusher is implemented by buffered writers that need an explicit flush so
// streamed lines reach the consumer promptly.
type flusher interface {
	Flush() error
}

func flushIfPossible(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// clip truncates to max runes, never splitting a multi-byte character.
func clip(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
