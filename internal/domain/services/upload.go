package services

import (
	"context"
	"mime/multipart"

	"coursecraft/internal/domain/models"
)

// UploadService validates and ingests accepted file uploads into lesson
// content slots. Content-type validity is enforced here, independent of
// whatever the transport layer permitted.
type UploadService interface {
	// Ingest stores the files under the lesson's content directory and
	// merges their descriptors into the slot: list slots append, single
	// slots replace. Returns one result per stored file.
	Ingest(ctx context.Context, lessonID, contentType string, files []*multipart.FileHeader) ([]UploadedFile, error)

	// Remove deletes one stored file by filename from a list slot and from
	// disk, then recomputes the slot's count.
	Remove(ctx context.Context, lessonID, contentType, filename string) (*models.Lesson, error)

	// List enumerates the files currently on disk for the slot. This is a
	// reconciliation view; the lesson record stays the source of truth.
	List(ctx context.Context, lessonID, contentType string) ([]StoredFile, error)
}

// UploadedFile is the per-file upload response payload.
type UploadedFile struct {
	Name     string `json:"name"`     // original filename
	Filename string `json:"filename"` // generated stored name
	Size     int64  `json:"size"`
	Type     string `json:"type"`
	Path     string `json:"path"` // site-relative
	URL      string `json:"url"`  // absolute
}

// StoredFile is one directory-enumeration entry.
type StoredFile struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Path     string `json:"path"`
	URL      string `json:"url"`
}
