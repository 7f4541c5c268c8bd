package core

// scheduler.go runs audit log retention in the background.
//
// The job deletes entries older than the retention window, once on start and
// then on every tick. Failures are logged and the loop keeps going; the
// dashboard never stops because of a maintenance error.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig holds configuration for the retention scheduler.
type RetentionConfig struct {
	RetentionDays int           // Days to keep (default: 90)
	CheckInterval time.Duration // How often to run (default: 24h)
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.RetentionDays <= 0 {
		c.RetentionDays = 90
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartRetentionScheduler purges old audit entries from store until ctx is
// cancelled. It blocks; run it in a goroutine.
func StartRetentionScheduler(ctx context.Context, store AuditStore, cfg RetentionConfig) {
	cfg = cfg.withDefaults()
	slog.Info("audit retention scheduler started",
		"retention_days", cfg.RetentionDays,
		"check_interval", cfg.CheckInterval.String(),
	)

	RunRetentionJob(ctx, store, cfg.RetentionDays)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("audit retention scheduler stopped")
			return
		case <-ticker.C:
			RunRetentionJob(ctx, store, cfg.RetentionDays)
		}
	}
}

// RunRetentionJob performs one purge cycle and returns the number of
// entries removed.
func RunRetentionJob(ctx context.Context, store AuditStore, retentionDays int) int64 {
	start := time.Now()
	cutoff := start.AddDate(0, 0, -retentionDays)

	purged, err := store.Purge(ctx, cutoff)
	if err != nil {
		slog.Error("audit purge failed", "error", err)
		return 0
	}
	slog.Info("purged audit log entries",
		"entries_purged", purged,
		"cutoff", cutoff.Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return purged
}
