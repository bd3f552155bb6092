// Package jsonfile implements the flat-file course store: every course lives
// in one JSON document that is rewritten wholesale on each mutation.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"coursecraft/internal/domain"
	"coursecraft/internal/domain/models"
	"coursecraft/internal/domain/repositories"
)

// CourseStore keeps the full course table in memory and mirrors it to a
// single JSON file. The mutex serializes read-modify-write cycles.
type CourseStore struct {
	path    string
	mu      sync.RWMutex
	courses map[string]models.Course
}

// NewCourseStore loads the backing document if it exists.
func NewCourseStore(dataDir string) (repositories.CourseStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &CourseStore{
		path:    filepath.Join(dataDir, "courses.json"),
		courses: make(map[string]models.Course),
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read course store: %w", err)
	}

	var courses []models.Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, fmt.Errorf("parse course store: %w", err)
	}
	for _, c := range courses {
		s.courses[c.ID] = c
	}
	return s, nil
}

// Get returns the course or domain.ErrNotFound.
func (s *CourseStore) Get(_ context.Context, courseID string) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, ok := s.courses[courseID]
	if !ok {
		return nil, fmt.Errorf("course %s: %w", courseID, domain.ErrNotFound)
	}
	out := course
	return &out, nil
}

// List returns all courses ordered by creation time.
func (s *CourseStore) List(_ context.Context) ([]models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Course, 0, len(s.courses))
	for _, c := range s.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Put inserts or replaces the course and rewrites the backing document.
func (s *CourseStore) Put(_ context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.courses[course.ID] = *course
	return s.flush()
}

// Delete removes the course, rewrites the document, and reports existence.
func (s *CourseStore) Delete(_ context.Context, courseID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.courses[courseID]
	if !ok {
		return false, nil
	}
	delete(s.courses, courseID)
	return true, s.flush()
}

// flush rewrites the whole document. Caller holds the write lock.
func (s *CourseStore) flush() error {
	courses := make([]models.Course, 0, len(s.courses))
	for _, c := range s.courses {
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].CreatedAt.Equal(courses[j].CreatedAt) {
			return courses[i].ID < courses[j].ID
		}
		return courses[i].CreatedAt.Before(courses[j].CreatedAt)
	})

	data, err := json.MarshalIndent(courses, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize course store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write course store: %w", err)
	}
	return nil
}
