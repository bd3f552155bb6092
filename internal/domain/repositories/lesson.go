package repositories

import (
	"context"

	"coursecraft/internal/domain/models"
)

// LessonTable is the in-memory side of the dual-persistence pair. It is an
// injected instance, never a package-level singleton, so tests can build
// isolated tables.
type LessonTable interface {
	// Get returns the stored record or nil when absent.
	Get(ctx context.Context, lessonID string) (*models.Lesson, error)

	// Put stores the record, replacing any existing entry.
	Put(ctx context.Context, lesson *models.Lesson) error

	// Delete removes the record and reports whether it existed.
	Delete(ctx context.Context, lessonID string) (bool, error)

	// IDs lists all stored lesson IDs.
	IDs(ctx context.Context) ([]string, error)
}

// SnapshotStore is the durable side: one pretty-printed JSON document per
// lesson, overwritten wholesale on every save.
type SnapshotStore interface {
	// Load parses the snapshot for the lesson. Returns domain.ErrNotFound
	// (wrapped) when no snapshot exists.
	Load(ctx context.Context, lessonID string) (*models.Lesson, error)

	// Save serializes and overwrites the lesson's snapshot.
	Save(ctx context.Context, lesson *models.Lesson) error

	// Delete removes the snapshot; absent snapshots are not an error.
	Delete(ctx context.Context, lessonID string) error

	// IDs lists lesson IDs that have a snapshot on disk.
	IDs(ctx context.Context) ([]string, error)
}
