package output

import "fmt"

// debtRow is one line of the stale-PR / orphaned-branch table shared by the
// pretty console output and the Markdown report.
type debtRow struct {
	Repo string
	Type string
	Item string
	Link string
	User string
	Age  string
}

// collectDebtRows flattens the per-repo records into table rows: one row per
// stale open pull request and one per orphaned branch.
func collectDebtRows(run RunInfo, records []RepoRecord) []debtRow {
	var rows []debtRow
	for _, rec := range records {
		r := rec.Result
		for _, pr := range r.OpenPRs {
			if pr.DaysOld <= run.OldPRThresholdDays {
				continue
			}
			rows = append(rows, debtRow{
				Repo: r.Name,
				Type: "Stale PR",
				Item: fmt.Sprintf("PR #%d", pr.Number),
				Link: pr.URL,
				User: pr.Author,
				Age:  fmt.Sprintf("%d days", pr.DaysOld),
			})
		}
		for _, detail := range r.OrphanedDetails {
			rows = append(rows, debtRow{
				Repo: r.Name,
				Type: "Orphaned Branch",
				Item: detail.Name,
				Link: fmt.Sprintf("https://github.com/%s/%s/tree/%s", run.Org, r.Name, detail.Name),
				User: detail.Author,
				Age:  "-",
			})
		}
	}
	return rows
}
