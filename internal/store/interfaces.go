package store

import (
	"context"

	"recbutton/internal/model"
)

// ClipReader provides read access to clip records.
type ClipReader interface {
	FindByFilename(ctx context.Context, name string) (*model.Clip, error)
	ListRecent(ctx context.Context) ([]model.HistoryEntry, error)
	Search(ctx context.Context, substring string) ([]model.HistoryEntry, error)
	Exists(ctx context.Context, name string) (bool, error)
}

// ClipWriter provides write access to clip records.
type ClipWriter interface {
	Insert(ctx context.Context, clip model.Clip) (model.Clip, error)
	Rename(ctx context.Context, old, new string) error
	Delete(ctx context.Context, name string) error
}

// RetentionStore provides the operations the retention sweeper needs.
type RetentionStore interface {
	SelectOlderThan(ctx context.Context, cutoff string) ([]model.Clip, error)
	Delete(ctx context.Context, name string) error
}

// ClipRepository combines all clip operations for the orchestration layer.
type ClipRepository interface {
	ClipReader
	ClipWriter
}
