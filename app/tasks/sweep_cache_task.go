package tasks

import (
	"context"
	"log/slog"

	"github.com/veslov/newspulse/app/trending"
)

// SweepCacheTask drops expired trending buckets so entries do not linger
// past their TTL waiting for a read to evict them.
type SweepCacheTask struct {
	Task
	cache *trending.Cache
}

func NewSweepCacheTask(cache *trending.Cache) *SweepCacheTask {
	return &SweepCacheTask{
		Task:  NewTask(TaskTypeSweepCache),
		cache: cache,
	}
}

func (t *SweepCacheTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	removed := t.cache.Sweep()
	if removed > 0 {
		slog.Debug("Expired trending buckets removed", "count", removed)
	}

	slog.Info("Task completed",
		"type", "SweepCache",
		"removed", removed,
		"duration", t.GetDuration())

	return nil
}
