package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/hyperengineering/showcase/internal/snapshot"
)

// SnapshotStore is the store operation the snapshot worker needs.
type SnapshotStore interface {
	GenerateSnapshot(ctx context.Context, path string) error
}

// SnapshotWorker periodically copies the notification log to a local file
// and uploads it when S3 storage is configured.
type SnapshotWorker struct {
	store    SnapshotStore
	uploader snapshot.Uploader
	path     string
	interval time.Duration
}

// NewSnapshotWorker creates a worker. uploader may be nil, in which case
// snapshots stay local.
func NewSnapshotWorker(store SnapshotStore, uploader snapshot.Uploader, path string, interval time.Duration) *SnapshotWorker {
	return &SnapshotWorker{
		store:    store,
		uploader: uploader,
		path:     path,
		interval: interval,
	}
}

// Run generates a snapshot immediately, then on each interval, until ctx
// is cancelled.
func (w *SnapshotWorker) Run(ctx context.Context) {
	slog.Info("snapshot worker started",
		"component", "worker",
		"worker", "snapshot",
		"interval", w.interval.String(),
		"path", w.path,
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.generate(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("snapshot worker stopped",
				"component", "worker",
				"worker", "snapshot",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.generate(ctx)
		}
	}
}

// generate writes and uploads one snapshot. It reports whether the local
// snapshot was written.
func (w *SnapshotWorker) generate(ctx context.Context) bool {
	start := time.Now()
	if err := w.store.GenerateSnapshot(ctx, w.path); err != nil {
		if ctx.Err() != nil {
			return false
		}
		slog.Warn("snapshot generation failed",
			"component", "worker",
			"worker", "snapshot",
			"action", "snapshot_failed",
			"error", err,
		)
		return false
	}

	slog.Info("snapshot generated",
		"component", "worker",
		"worker", "snapshot",
		"action", "snapshot_generated",
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if w.uploader != nil {
		w.upload(ctx)
	}
	return true
}

// upload failures are not fatal; the local snapshot remains valid.
func (w *SnapshotWorker) upload(ctx context.Context) {
	if err := w.uploader.Upload(ctx, w.path); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("snapshot upload failed",
			"component", "worker",
			"worker", "snapshot",
			"action", "snapshot_upload_failed",
			"error", err,
		)
		return
	}

	slog.Info("snapshot uploaded",
		"component", "worker",
		"worker", "snapshot",
		"action", "snapshot_uploaded",
	)
}
