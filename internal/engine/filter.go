package engine

import (
	"context"
	"time"

	"orgscan/internal/gateway"
	"orgscan/internal/scan"
)

// ExcludeArchived drops archived repositories. This runs before the activity
// check: an archived repository is never scanned, whatever its commit
// history says.
func ExcludeArchived(repos []scan.Repository) []scan.Repository {
	kept := make([]scan.Repository, 0, len(repos))
	for _, r := range repos {
		if r.Archived {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// FilterActive keeps repositories with at least one commit inside the
// recency window ending at now.
func FilterActive(ctx context.Context, gw *gateway.Gateway, repos []scan.Repository, windowDays int, now time.Time) []scan.Repository {
	since := now.AddDate(0, 0, -windowDays)
	active := make([]scan.Repository, 0, len(repos))
	for _, r := range repos {
		if gw.HasRecentActivity(ctx, r, since) {
			active = append(active, r)
		}
	}
	return active
}
