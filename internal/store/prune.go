package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DefaultPruneSchedule runs pruning once an hour.
const DefaultPruneSchedule = "@hourly"

// StartPruning schedules p.Prune on a cron expression and starts the
// scheduler. Stop the returned scheduler on shutdown.
func StartPruning(ctx context.Context, p Pruner, schedule string, keep int) (*cron.Cron, error) {
	if schedule == "" {
		schedule = DefaultPruneSchedule
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		removed, err := p.Prune(ctx, keep)
		if err != nil {
			slog.Error("prune snapshots", "error", err)
			return
		}
		if removed > 0 {
			slog.Info("pruned snapshots", "removed", removed, "keep", keep)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
