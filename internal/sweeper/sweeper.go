// Package sweeper removes clips that have outlived the configured
// retention age.
package sweeper

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"recbutton/internal/model"
)

// Store provides the record operations the sweeper needs.
type Store interface {
	SelectOlderThan(ctx context.Context, cutoff string) ([]model.Clip, error)
	Delete(ctx context.Context, name string) error
}

// Sweeper deletes stale clips from the store and the output directory.
type Sweeper struct {
	store     Store
	outputDir string
}

// New creates a Sweeper.
func New(store Store, outputDir string) *Sweeper {
	return &Sweeper{store: store, outputDir: outputDir}
}

// Sweep deletes every clip older than maxAgeDays, file first, then record.
// With keepRenamed set, user-renamed clips are spared. A missing file is
// not an error; the record is removed regardless. Returns the number of
// clips deleted.
func (s *Sweeper) Sweep(ctx context.Context, maxAgeDays int, keepRenamed bool) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays).Format(model.TimestampLayout)

	clips, err := s.store.SelectOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, clip := range clips {
		if keepRenamed && clip.Renamed {
			continue
		}

		slog.Info("automatically deleting clip", "output", clip.Output, "timestamp", clip.Timestamp)

		if err := os.Remove(filepath.Join(s.outputDir, clip.Output)); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to delete clip file", "output", clip.Output, "error", err)
		}
		if err := s.store.Delete(ctx, clip.Output); err != nil {
			return deleted, err
		}
		deleted++
	}

	return deleted, nil
}
