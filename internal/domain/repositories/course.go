package repositories

import (
	"context"

	"coursecraft/internal/domain/models"
)

// CourseStore persists courses as a single flat JSON document rewritten
// wholesale on every mutation.
type CourseStore interface {
	// Get returns the course or domain.ErrNotFound (wrapped).
	Get(ctx context.Context, courseID string) (*models.Course, error)

	// List returns all courses ordered by creation time.
	List(ctx context.Context) ([]models.Course, error)

	// Put inserts or replaces the course and rewrites the backing document.
	Put(ctx context.Context, course *models.Course) error

	// Delete removes the course and reports whether it existed.
	Delete(ctx context.Context, courseID string) (bool, error)
}
