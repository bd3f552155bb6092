// Package snapshot implements the durable side of the lesson store pair:
// one pretty-printed JSON document per lesson, overwritten wholesale on
// every save.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"coursecraft/internal/domain"
	"coursecraft/internal/domain/models"
	"coursecraft/internal/domain/repositories"
)

// Store persists lessons under <dir>/lessons/<lessonId>.json.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates the snapshot directory if needed.
func NewStore(dataDir string, logger *slog.Logger) (repositories.SnapshotStore, error) {
	dir := filepath.Join(dataDir, "lessons")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Load parses the lesson's snapshot document.
func (s *Store) Load(_ context.Context, lessonID string) (*models.Lesson, error) {
	data, err := os.ReadFile(s.path(lessonID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("snapshot for lesson %s: %w", lessonID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read snapshot for lesson %s: %w", lessonID, err)
	}

	var lesson models.Lesson
	if err := json.Unmarshal(data, &lesson); err != nil {
		return nil, fmt.Errorf("parse snapshot for lesson %s: %w", lessonID, err)
	}
	if lesson.LessonID == "" {
		lesson.LessonID = lessonID
	}
	return &lesson, nil
}

// Save serializes the lesson pretty-printed and overwrites its snapshot.
// The write goes through a temp file and rename so a crash mid-write never
// leaves a truncated document.
func (s *Store) Save(_ context.Context, lesson *models.Lesson) error {
	data, err := json.MarshalIndent(lesson, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize lesson %s: %w", lesson.LessonID, err)
	}

	path := s.path(lesson.LessonID)
	tmp, err := os.CreateTemp(s.dir, "."+lesson.LessonID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot for lesson %s: %w", lesson.LessonID, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot for lesson %s: %w", lesson.LessonID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot for lesson %s: %w", lesson.LessonID, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot for lesson %s: %w", lesson.LessonID, err)
	}

	s.logger.Debug("snapshot written", "lesson_id", lesson.LessonID, "bytes", len(data))
	return nil
}

// Delete removes the snapshot; an absent snapshot is not an error.
func (s *Store) Delete(_ context.Context, lessonID string) error {
	if err := os.Remove(s.path(lessonID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete snapshot for lesson %s: %w", lessonID, err)
	}
	return nil
}

// IDs lists lesson IDs that have a snapshot on disk.
func (s *Store) IDs(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

func (s *Store) path(lessonID string) string {
	return filepath.Join(s.dir, lessonID+".json")
}
