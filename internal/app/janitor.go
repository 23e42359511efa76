package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"notebin/pkg/queue"
)

// CleanupHandler reaps content versions left behind by a deleted entry.
// Deleting already-gone versions is a no-op, so retried jobs are safe.
func (a *App) CleanupHandler(ctx context.Context, job queue.JobStatus) error {
	if err := a.store.DeleteContents(job.FileID); err != nil {
		return fmt.Errorf("delete contents: %w", err)
	}
	return nil
}

// StartJanitor runs the expiry sweep on a fixed interval until ctx ends.
func (a *App) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := a.ReapExpired(100); err != nil {
					slog.Error("expiry sweep failed", "error", err)
				} else if n > 0 {
					slog.Info("expired files reaped", "count", n)
				}
			}
		}
	}()
}

// ReapExpired deletes files whose expiry has passed and schedules content
// cleanup for each. Returns how many were removed this sweep.
func (a *App) ReapExpired(limit int) (int, error) {
	files, err := a.store.ListExpiredFiles(time.Now().UTC(), limit)
	if err != nil {
		return 0, fmt.Errorf("list expired: %w", err)
	}
	reaped := 0
	for _, f := range files {
		if err := a.store.DeleteFile(f.ID); err != nil {
			continue
		}
		a.enqueueCleanup(f.ID)
		reaped++
	}
	return reaped, nil
}
