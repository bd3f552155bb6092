// Package content implements the lesson aggregate: the content slot store,
// the dual-persistence synchronizer, the path resolver, and the URL rewriter.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"coursecraft/internal/config"
	"coursecraft/internal/domain"
	"coursecraft/internal/domain/models"
	"coursecraft/internal/domain/repositories"
	"coursecraft/internal/domain/services"
	"coursecraft/internal/registry"
)

// lessonService implements services.LessonService over the in-memory table
// and the durable snapshot store. The snapshot is authoritative on read; on
// write both stores receive the same final record before the call returns.
type lessonService struct {
	table     repositories.LessonTable
	snapshots repositories.SnapshotStore
	registry  *registry.Registry
	paths     *PathResolver
	baseURL   string
	logger    *slog.Logger
	locks     keyedMutex
	now       func() time.Time
}

// NewLessonService creates the lesson service.
func NewLessonService(
	table repositories.LessonTable,
	snapshots repositories.SnapshotStore,
	reg *registry.Registry,
	paths *PathResolver,
	baseURL string,
	logger *slog.Logger,
) services.LessonService {
	return &lessonService{
		table:     table,
		snapshots: snapshots,
		registry:  reg,
		paths:     paths,
		baseURL:   baseURL,
		logger:    logger,
		now:       time.Now,
	}
}

// GetLesson loads a lesson, preferring the snapshot, and returns a rewritten
// copy. Unknown IDs yield the canonical empty-lesson template.
func (s *lessonService) GetLesson(ctx context.Context, lessonID string) (*models.Lesson, error) {
	if err := ValidateIdentifier(lessonID); err != nil {
		return nil, err
	}

	lesson, found, err := s.load(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if !found {
		lesson = models.NewEmptyLesson(lessonID, s.registry.Names(), s.now().UTC())
	}
	return s.respond(lesson), nil
}

// SaveLesson upserts top-level fields; a provided content map replaces the
// stored map wholesale.
func (s *lessonService) SaveLesson(ctx context.Context, lessonID string, req *services.SaveLessonRequest) (*models.Lesson, error) {
	if lessonID == "" {
		lessonID = fmt.Sprintf("lesson-%d", s.now().UnixMilli())
	}
	if err := ValidateIdentifier(lessonID); err != nil {
		return nil, err
	}
	if err := validateSaveRequest(req); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(lessonID)
	defer unlock()

	now := s.now().UTC()
	lesson, found, err := s.load(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if !found {
		lesson = models.NewEmptyLesson(lessonID, s.registry.Names(), now)
	}

	if req.LessonTitle != nil {
		lesson.LessonTitle = *req.LessonTitle
	}
	if req.CourseID != nil {
		lesson.CourseID = req.CourseID
	}
	if req.CourseTitle != nil {
		lesson.CourseTitle = req.CourseTitle
	}
	if req.Template != nil {
		lesson.Template = req.Template
	}
	if req.Content != nil {
		lesson.Content = req.Content.Clone()
		lesson.Normalize(s.registry.Names())
	}

	lesson.UpdatedAt = now
	lesson.RecomputeMetadata()

	if err := s.writeThrough(ctx, lesson, "save"); err != nil {
		return nil, err
	}
	return s.respond(lesson), nil
}

// ListLessons returns summaries for every lesson known to either store,
// newest update first.
func (s *lessonService) ListLessons(ctx context.Context) ([]models.LessonSummary, error) {
	memIDs, err := s.table.IDs(ctx)
	if err != nil {
		return nil, err
	}
	snapIDs, err := s.snapshots.IDs(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(memIDs)+len(snapIDs))
	summaries := make([]models.LessonSummary, 0, len(memIDs)+len(snapIDs))
	for _, id := range append(snapIDs, memIDs...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		lesson, found, err := s.load(ctx, id)
		if err != nil || !found {
			continue
		}
		summaries = append(summaries, lesson.Summary())
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// DeleteLesson purges the lesson from both stores and removes its upload
// directory tree. Deleting only one representation would leave a ghost that
// read paths resurrect from the other.
func (s *lessonService) DeleteLesson(ctx context.Context, lessonID string) error {
	if err := ValidateIdentifier(lessonID); err != nil {
		return err
	}

	unlock := s.locks.lock(lessonID)
	defer unlock()

	existedMem, err := s.table.Delete(ctx, lessonID)
	if err != nil {
		return err
	}

	existedSnap := true
	if _, err := s.snapshots.Load(ctx, lessonID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		existedSnap = false
	}
	if !existedMem && !existedSnap {
		return fmt.Errorf("lesson %s: %w", lessonID, domain.ErrNotFound)
	}

	if err := s.snapshots.Delete(ctx, lessonID); err != nil {
		s.logger.Error("failed to delete snapshot", "lesson_id", lessonID, "error", err)
		return &domain.PersistenceError{LessonID: lessonID, Operation: "delete", Err: err}
	}
	if err := s.paths.RemoveLessonDir(lessonID); err != nil {
		s.logger.Error("failed to delete upload directory", "lesson_id", lessonID, "error", err)
		return &domain.PersistenceError{LessonID: lessonID, Operation: "delete", Err: err}
	}
	return nil
}

// GetSlot returns one rewritten slot; nil/absent slots are not found.
func (s *lessonService) GetSlot(ctx context.Context, lessonID, contentType string) (*models.ContentSlot, error) {
	if err := ValidateIdentifier(lessonID); err != nil {
		return nil, err
	}
	name, _, err := s.knownType(contentType)
	if err != nil {
		return nil, err
	}

	lesson, found, err := s.load(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("lesson %s: %w", lessonID, domain.ErrNotFound)
	}

	rewritten := RewriteContentURLs(lesson.Content, s.baseURL)
	slot := rewritten[name]
	if slot == nil {
		return nil, fmt.Errorf("%s content for lesson %s: %w", name, lessonID, domain.ErrNotFound)
	}
	return slot, nil
}

// UpdateSlot sets one slot on an existing lesson.
func (s *lessonService) UpdateSlot(ctx context.Context, lessonID, contentType string, slot *models.ContentSlot) (*models.Lesson, error) {
	if err := ValidateIdentifier(lessonID); err != nil {
		return nil, err
	}
	name, _, err := s.knownType(contentType)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(lessonID)
	defer unlock()

	lesson, found, err := s.load(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("lesson %s: %w", lessonID, domain.ErrNotFound)
	}

	if slot != nil {
		slot.Type = name
		if slot.Method == "" {
			slot.Method = models.MethodManual
		}
	}
	lesson.Content[name] = slot

	return s.finishMutation(ctx, lesson, "update_slot")
}

// AppendToListSlot concatenates descriptors onto a list slot in request
// order. Uploads are often the first touch of a lesson, so an unknown
// lesson is created rather than rejected.
func (s *lessonService) AppendToListSlot(ctx context.Context, lessonID, contentType string, descriptors []models.FileDescriptor) (*models.Lesson, error) {
	if err := ValidateIdentifier(lessonID); err != nil {
		return nil, err
	}
	name, ct, err := s.knownType(contentType)
	if err != nil {
		return nil, err
	}
	if ct.Kind != registry.KindList {
		return nil, fmt.Errorf("%w: %s does not accept multiple files", domain.ErrValidation, name)
	}

	unlock := s.locks.lock(lessonID)
	defer unlock()

	lesson, err := s.loadOrCreate(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	var files []models.FileDescriptor
	if existing := lesson.Content[name]; existing != nil && existing.List != nil {
		files = existing.List.Files
	}
	files = append(files, descriptors...)

	lesson.Content[name] = &models.ContentSlot{
		Type:   name,
		Method: models.MethodUpload,
		List:   &models.FileListContent{Files: files},
	}

	return s.finishMutation(ctx, lesson, "append_files")
}

// ReplaceSingleSlot replaces a single-file slot with the newest upload.
func (s *lessonService) ReplaceSingleSlot(ctx context.Context, lessonID, contentType string, descriptor models.FileDescriptor) (*models.Lesson, error) {
	if err := ValidateIdentifier(lessonID); err != nil {
		return nil, err
	}
	name, ct, err := s.knownType(contentType)
	if err != nil {
		return nil, err
	}
	if ct.Kind != registry.KindSingle {
		return nil, fmt.Errorf("%w: %s does not hold a single file", domain.ErrValidation, name)
	}

	unlock := s.locks.lock(lessonID)
	defer unlock()

	lesson, err := s.loadOrCreate(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	lesson.Content[name] = &models.ContentSlot{
		Type:   name,
		Method: models.MethodUpload,
		Single: &models.SingleFileContent{File: descriptor, URL: descriptor.Path},
	}

	return s.finishMutation(ctx, lesson, "replace_file")
}

// RemoveFileFromSlot filters one descriptor out of a list slot by stored
// filename or original name. The emptied slot stays present with zero files.
func (s *lessonService) RemoveFileFromSlot(ctx context.Context, lessonID, contentType, filename string) (*models.Lesson, error) {
	if err := ValidateIdentifier(lessonID); err != nil {
		return nil, err
	}
	name, ct, err := s.knownType(contentType)
	if err != nil {
		return nil, err
	}
	if ct.Kind != registry.KindList {
		return nil, fmt.Errorf("%w: %s does not hold a file list", domain.ErrValidation, name)
	}

	unlock := s.locks.lock(lessonID)
	defer unlock()

	lesson, found, err := s.load(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("lesson %s: %w", lessonID, domain.ErrNotFound)
	}

	slot := lesson.Content[name]
	if slot == nil || slot.List == nil {
		return nil, fmt.Errorf("%s content for lesson %s: %w", name, lessonID, domain.ErrNotFound)
	}

	kept := slot.List.Files[:0:0]
	removed := false
	for _, fd := range slot.List.Files {
		if !removed && matchesFilename(fd, filename) {
			removed = true
			continue
		}
		kept = append(kept, fd)
	}
	if !removed {
		return nil, fmt.Errorf("file %s in %s content for lesson %s: %w", filename, name, lessonID, domain.ErrNotFound)
	}
	if kept == nil {
		kept = []models.FileDescriptor{}
	}
	slot.List.Files = kept

	return s.finishMutation(ctx, lesson, "remove_file")
}

// load reads the lesson, preferring the durable snapshot over the in-memory
// table; the snapshot survives restarts, so it wins whenever both exist.
// Loaded records are normalized to the explicit-null content convention.
func (s *lessonService) load(ctx context.Context, lessonID string) (*models.Lesson, bool, error) {
	lesson, err := s.snapshots.Load(ctx, lessonID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}
	if lesson == nil {
		lesson, err = s.table.Get(ctx, lessonID)
		if err != nil {
			return nil, false, err
		}
	}
	if lesson == nil {
		return nil, false, nil
	}

	lesson.Normalize(s.registry.Names())
	return lesson, true, nil
}

func (s *lessonService) loadOrCreate(ctx context.Context, lessonID string) (*models.Lesson, error) {
	lesson, found, err := s.load(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if !found {
		lesson = models.NewEmptyLesson(lessonID, s.registry.Names(), s.now().UTC())
	}
	return lesson, nil
}

// finishMutation stamps, recomputes, and writes through both stores.
func (s *lessonService) finishMutation(ctx context.Context, lesson *models.Lesson, op string) (*models.Lesson, error) {
	lesson.UpdatedAt = s.now().UTC()
	lesson.RecomputeMetadata()
	if err := s.writeThrough(ctx, lesson, op); err != nil {
		return nil, err
	}
	return s.respond(lesson), nil
}

// writeThrough updates the in-memory table and then the snapshot with the
// same final record. A failed snapshot write fails the whole operation: the
// stores have diverged and a restart would see stale state, so the caller
// must know.
func (s *lessonService) writeThrough(ctx context.Context, lesson *models.Lesson, op string) error {
	if err := s.table.Put(ctx, lesson); err != nil {
		return err
	}
	if err := s.snapshots.Save(ctx, lesson); err != nil {
		s.logger.Error("snapshot write failed after memory update",
			"lesson_id", lesson.LessonID,
			"operation", op,
			"error", err,
		)
		return &domain.PersistenceError{LessonID: lesson.LessonID, Operation: op, Err: err}
	}
	return nil
}

// respond returns a deep copy with absolute URLs for the API surface. The
// stored form keeps relative paths so snapshots stay portable across
// environments.
func (s *lessonService) respond(lesson *models.Lesson) *models.Lesson {
	out := lesson.Clone()
	out.Content = RewriteContentURLs(out.Content, s.baseURL)
	return out
}

// knownType resolves a content-type name or alias against the closed set.
func (s *lessonService) knownType(contentType string) (string, *registry.ContentType, error) {
	ct, ok := s.registry.Lookup(contentType)
	if !ok {
		return "", nil, fmt.Errorf("%w: unsupported content type %q", domain.ErrValidation, contentType)
	}
	return ct.Name, ct, nil
}

func matchesFilename(fd models.FileDescriptor, filename string) bool {
	if fd.Name == filename {
		return true
	}
	// stored filename is the last path segment
	path := fd.Path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:] == filename
		}
	}
	return path == filename
}

func validateSaveRequest(req *services.SaveLessonRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request body is required", domain.ErrValidation)
	}
	if req.LessonTitle != nil {
		if err := validation.Validate(*req.LessonTitle,
			validation.Required,
			validation.Length(1, config.MaxLessonTitleLength),
		); err != nil {
			return fmt.Errorf("%w: lessonTitle: %v", domain.ErrValidation, err)
		}
	}
	return nil
}
