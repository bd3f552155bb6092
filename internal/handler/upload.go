package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"coursecraft/internal/config"
	"coursecraft/internal/domain"
	"coursecraft/internal/domain/services"
	"coursecraft/internal/httputil"
)

// UploadHandler handles file upload HTTP requests.
type UploadHandler struct {
	uploadService services.UploadService
	logger        *slog.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploadService services.UploadService, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		logger:        logger,
	}
}

// Upload ingests one or more files into a lesson's content slot. Accepts
// either a single "file" field or a repeated "files" field.
// POST /api/upload/{lessonId}/{contentType}
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("lessonId")
	contentType := r.PathValue("contentType")

	// the per-file ceiling is enforced in the service; this cap only
	// guards against unbounded request bodies
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadRequestSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handleError(w, fmt.Errorf("%w: request body exceeds the upload size limit",
				domain.ErrFileTooLarge))
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := collectFiles(r.MultipartForm)
	uploaded, err := h.uploadService.Ingest(r.Context(), lessonID, contentType, files)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, uploaded)
}

// Remove deletes one stored file from a list slot.
// DELETE /api/upload/{lessonId}/{contentType}/{filename}
func (h *UploadHandler) Remove(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("lessonId")
	contentType := r.PathValue("contentType")
	filename := r.PathValue("filename")

	lesson, err := h.uploadService.Remove(r.Context(), lessonID, contentType, filename)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, lesson, "file removed")
}

// List enumerates the files on disk for a lesson's content slot.
// GET /api/upload/{lessonId}/{contentType}
func (h *UploadHandler) List(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("lessonId")
	contentType := r.PathValue("contentType")

	files, err := h.uploadService.List(r.Context(), lessonID, contentType)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

func collectFiles(form *multipart.Form) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	return files
}
