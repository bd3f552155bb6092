// Package upload turns accepted multipart files into content-slot
// descriptors and keeps the on-disk tree in step with the lesson record.
package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"coursecraft/internal/config"
	"coursecraft/internal/domain"
	"coursecraft/internal/domain/models"
	"coursecraft/internal/domain/services"
	"coursecraft/internal/registry"
	"coursecraft/internal/service/content"
)

type uploadService struct {
	registry *registry.Registry
	paths    *content.PathResolver
	lessons  services.LessonService
	baseURL  string
	logger   *slog.Logger
}

// NewUploadService creates the upload ingestion service.
func NewUploadService(
	reg *registry.Registry,
	paths *content.PathResolver,
	lessons services.LessonService,
	baseURL string,
	logger *slog.Logger,
) services.UploadService {
	return &uploadService{
		registry: reg,
		paths:    paths,
		lessons:  lessons,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// Ingest validates, stores, and merges the uploaded files into the slot.
// Every file is validated before anything touches disk, so a rejected batch
// creates no directory and mutates no slot.
func (s *uploadService) Ingest(ctx context.Context, lessonID, contentType string, files []*multipart.FileHeader) ([]services.UploadedFile, error) {
	ct, err := s.uploadableType(contentType)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files provided", domain.ErrValidation)
	}
	if ct.Kind == registry.KindSingle && len(files) > 1 {
		return nil, fmt.Errorf("%w: %s accepts a single file", domain.ErrValidation, ct.Name)
	}

	for _, fh := range files {
		if fh.Size > config.MaxUploadFileSize {
			return nil, fmt.Errorf("%w: %s exceeds the %d MiB limit",
				domain.ErrFileTooLarge, fh.Filename, config.MaxUploadFileSize>>20)
		}
		if fh.Size <= 0 {
			return nil, fmt.Errorf("%w: %s is empty", domain.ErrValidation, fh.Filename)
		}
		if mimeType := detectMIME(fh); !ct.AllowsMIME(mimeType) {
			return nil, fmt.Errorf("%w: %s type %q is not allowed for %s",
				domain.ErrValidation, fh.Filename, mimeType, ct.Name)
		}
	}

	dir, err := s.paths.ResolveContentDir(lessonID, ct.Name)
	if err != nil {
		return nil, err
	}

	descriptors := make([]models.FileDescriptor, 0, len(files))
	results := make([]services.UploadedFile, 0, len(files))
	for _, fh := range files {
		storedName := storedFilename(fh.Filename)
		if err := saveFile(fh, filepath.Join(dir, storedName)); err != nil {
			return nil, &domain.PersistenceError{LessonID: lessonID, Operation: "upload", Err: err}
		}

		publicPath, err := s.paths.ResolvePublicPath(lessonID, ct.Name, storedName)
		if err != nil {
			return nil, err
		}

		mimeType := detectMIME(fh)
		descriptors = append(descriptors, models.FileDescriptor{
			Name: fh.Filename,
			Size: fh.Size,
			Type: mimeType,
			Path: publicPath,
		})
		results = append(results, services.UploadedFile{
			Name:     fh.Filename,
			Filename: storedName,
			Size:     fh.Size,
			Type:     mimeType,
			Path:     publicPath,
			URL:      s.baseURL + publicPath,
		})

		s.logger.Info("file stored",
			"lesson_id", lessonID,
			"content_type", ct.Name,
			"original_name", fh.Filename,
			"stored_name", storedName,
			"size", fh.Size,
		)
	}

	switch ct.Kind {
	case registry.KindList:
		_, err = s.lessons.AppendToListSlot(ctx, lessonID, ct.Name, descriptors)
	case registry.KindSingle:
		_, err = s.lessons.ReplaceSingleSlot(ctx, lessonID, ct.Name, descriptors[0])
	}
	if err != nil {
		return nil, err
	}

	return results, nil
}

// Remove deletes one stored file from the slot and from disk.
func (s *uploadService) Remove(ctx context.Context, lessonID, contentType, filename string) (*models.Lesson, error) {
	ct, err := s.uploadableType(contentType)
	if err != nil {
		return nil, err
	}
	if err := content.ValidateIdentifier(filename); err != nil {
		return nil, err
	}

	lesson, err := s.lessons.RemoveFileFromSlot(ctx, lessonID, ct.Name, filename)
	if err != nil {
		return nil, err
	}

	dir, err := s.paths.ResolveContentDir(lessonID, ct.Name)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(filepath.Join(dir, filename)); err != nil && !os.IsNotExist(err) {
		// the record is already updated; losing the orphan file is
		// recoverable via the directory listing view
		s.logger.Error("failed to remove stored file",
			"lesson_id", lessonID,
			"content_type", ct.Name,
			"filename", filename,
			"error", err,
		)
	}

	return lesson, nil
}

// List enumerates files currently on disk for the slot.
func (s *uploadService) List(ctx context.Context, lessonID, contentType string) ([]services.StoredFile, error) {
	ct, err := s.uploadableType(contentType)
	if err != nil {
		return nil, err
	}

	dir, err := s.paths.ResolveContentDir(lessonID, ct.Name)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s files for lesson %s: %w", ct.Name, lessonID, err)
	}

	files := make([]services.StoredFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		publicPath, err := s.paths.ResolvePublicPath(lessonID, ct.Name, entry.Name())
		if err != nil {
			continue
		}
		files = append(files, services.StoredFile{
			Filename: entry.Name(),
			Size:     info.Size(),
			Path:     publicPath,
			URL:      s.baseURL + publicPath,
		})
	}
	return files, nil
}

// uploadableType resolves the content type and requires it to accept files.
func (s *uploadService) uploadableType(contentType string) (*registry.ContentType, error) {
	ct, ok := s.registry.Lookup(contentType)
	if !ok || !ct.Uploadable() {
		return nil, fmt.Errorf("%w: unsupported content type %q", domain.ErrValidation, contentType)
	}
	return ct, nil
}

// storedFilename generates a collision-resistant name, keeping only the
// original extension. The original name survives in slot metadata.
func storedFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return uuid.NewString() + ext
}

// detectMIME prefers the part's declared Content-Type and falls back to the
// filename extension.
func detectMIME(fh *multipart.FileHeader) string {
	if t := fh.Header.Get("Content-Type"); t != "" {
		return t
	}
	if t := mime.TypeByExtension(filepath.Ext(fh.Filename)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func saveFile(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open uploaded file %s: %w", fh.Filename, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}
