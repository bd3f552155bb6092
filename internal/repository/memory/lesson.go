// Package memory implements the in-memory side of the lesson store pair.
package memory

import (
	"context"
	"sync"

	"coursecraft/internal/domain/models"
	"coursecraft/internal/domain/repositories"
)

// LessonTable is a mutex-guarded map of lesson records. Records are deep
// copied on the way in and out so callers can never mutate stored state
// through a shared pointer.
type LessonTable struct {
	mu      sync.RWMutex
	lessons map[string]*models.Lesson
}

// NewLessonTable creates an empty table.
func NewLessonTable() repositories.LessonTable {
	return &LessonTable{
		lessons: make(map[string]*models.Lesson),
	}
}

// Get returns a copy of the stored record or nil when absent.
func (t *LessonTable) Get(_ context.Context, lessonID string) (*models.Lesson, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	lesson, ok := t.lessons[lessonID]
	if !ok {
		return nil, nil
	}
	return lesson.Clone(), nil
}

// Put stores a copy of the record, replacing any existing entry.
func (t *LessonTable) Put(_ context.Context, lesson *models.Lesson) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lessons[lesson.LessonID] = lesson.Clone()
	return nil
}

// Delete removes the record and reports whether it existed.
func (t *LessonTable) Delete(_ context.Context, lessonID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.lessons[lessonID]
	delete(t.lessons, lessonID)
	return ok, nil
}

// IDs lists all stored lesson IDs.
func (t *LessonTable) IDs(_ context.Context) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.lessons))
	for id := range t.lessons {
		ids = append(ids, id)
	}
	return ids, nil
}
