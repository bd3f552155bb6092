package services

import (
	"context"
	"encoding/json"

	"coursecraft/internal/domain/models"
)

// LessonService owns the lesson aggregate: slot mutations, derived metadata,
// and the dual-persistence write-through discipline. Read paths return
// rewritten copies (absolute URLs); stored records always keep relative paths.
type LessonService interface {
	// GetLesson loads a lesson, preferring the durable snapshot over the
	// in-memory table. Unknown IDs yield the canonical empty-lesson
	// template, never a not-found error.
	GetLesson(ctx context.Context, lessonID string) (*models.Lesson, error)

	// SaveLesson upserts: creates on first write, otherwise shallow-merges
	// top-level fields. A provided content map replaces the whole map.
	SaveLesson(ctx context.Context, lessonID string, req *SaveLessonRequest) (*models.Lesson, error)

	// ListLessons returns summaries for every lesson known to either store.
	ListLessons(ctx context.Context) ([]models.LessonSummary, error)

	// DeleteLesson purges the lesson from both stores and removes its
	// upload directory tree. Returns domain.ErrNotFound if neither store
	// had the lesson.
	DeleteLesson(ctx context.Context, lessonID string) error

	// GetSlot returns one slot; domain.ErrNotFound when the slot is
	// nil/absent or the lesson is unknown.
	GetSlot(ctx context.Context, lessonID, contentType string) (*models.ContentSlot, error)

	// UpdateSlot sets content[contentType] on an existing lesson.
	// Fails with domain.ErrNotFound for unknown lessons.
	UpdateSlot(ctx context.Context, lessonID, contentType string, slot *models.ContentSlot) (*models.Lesson, error)

	// AppendToListSlot concatenates descriptors onto a list slot's files,
	// creating the lesson if it does not exist yet (uploads are often the
	// first touch of a lesson).
	AppendToListSlot(ctx context.Context, lessonID, contentType string, descriptors []models.FileDescriptor) (*models.Lesson, error)

	// ReplaceSingleSlot replaces a single-file slot's value with the given
	// descriptor, creating the lesson if absent. No history is retained.
	ReplaceSingleSlot(ctx context.Context, lessonID, contentType string, descriptor models.FileDescriptor) (*models.Lesson, error)

	// RemoveFileFromSlot filters one descriptor out of a list slot by
	// stored filename. The emptied slot stays present with zero files.
	RemoveFileFromSlot(ctx context.Context, lessonID, contentType, filename string) (*models.Lesson, error)
}

// SaveLessonRequest carries the upsertable top-level lesson fields. Nil
// pointers leave the stored value untouched.
type SaveLessonRequest struct {
	LessonTitle *string           `json:"lessonTitle,omitempty"`
	CourseID    *string           `json:"courseId,omitempty"`
	CourseTitle *string           `json:"courseTitle,omitempty"`
	Content     models.ContentMap `json:"content,omitempty"`
	Template    json.RawMessage   `json:"template,omitempty"`
}
