package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"coursecraft/internal/domain/models"
	"coursecraft/internal/domain/services"
	"coursecraft/internal/httputil"
)

// LessonHandler handles lesson HTTP requests.
type LessonHandler struct {
	lessonService services.LessonService
	logger        *slog.Logger
}

// NewLessonHandler creates a new lesson handler.
func NewLessonHandler(lessonService services.LessonService, logger *slog.Logger) *LessonHandler {
	return &LessonHandler{
		lessonService: lessonService,
		logger:        logger,
	}
}

// GetLesson loads a lesson with rewritten URLs. Unknown IDs return the
// empty-lesson template, not a 404.
// GET /api/lessons/{lessonId}
func (h *LessonHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("lessonId")

	lesson, err := h.lessonService.GetLesson(r.Context(), lessonID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, lesson)
}

// SaveLesson upserts a lesson.
// POST /api/lessons/{lessonId}
func (h *LessonHandler) SaveLesson(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("lessonId")

	var req services.SaveLessonRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lesson, err := h.lessonService.SaveLesson(r.Context(), lessonID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, lesson)
}

// CreateLesson saves a lesson under a generated lesson ID.
// POST /api/lessons
func (h *LessonHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var req services.SaveLessonRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lesson, err := h.lessonService.SaveLesson(r.Context(), "", &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, lesson)
}

// ListLessons returns summaries for all known lessons.
// GET /api/lessons
func (h *LessonHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.lessonService.ListLessons(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, summaries)
}

// DeleteLesson purges a lesson from both stores and disk.
// DELETE /api/lessons/{lessonId}
func (h *LessonHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("lessonId")

	if err := h.lessonService.DeleteLesson(r.Context(), lessonID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, nil, "lesson deleted")
}

// GetSlot returns one content slot; 404 when the slot is empty.
// GET /api/lessons/{lessonId}/formats/{formatType}
func (h *LessonHandler) GetSlot(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("lessonId")
	formatType := r.PathValue("formatType")

	slot, err := h.lessonService.GetSlot(r.Context(), lessonID, formatType)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, slot)
}

// UpdateSlot sets one content slot on an existing lesson. The body's content
// field carries either a slot object or, for text formats, a bare string.
// POST /api/lessons/{lessonId}/formats/{formatType}
func (h *LessonHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("lessonId")
	formatType := r.PathValue("formatType")

	var req struct {
		Content json.RawMessage `json:"content"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Content) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "content is required")
		return
	}

	slot, err := parseSlotValue(formatType, req.Content)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid content value")
		return
	}

	lesson, err := h.lessonService.UpdateSlot(r.Context(), lessonID, formatType, slot)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, lesson)
}

// parseSlotValue accepts either a full slot object or a bare string, which
// is treated as manually edited text.
func parseSlotValue(formatType string, raw json.RawMessage) (*models.ContentSlot, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		slot := &models.ContentSlot{
			Type:   formatType,
			Method: models.MethodManual,
			Text:   &models.TextContent{},
		}
		if formatType == "code" {
			slot.Text.Code = text
		} else {
			slot.Text.Content = text
		}
		return slot, nil
	}

	var slot models.ContentSlot
	if err := json.Unmarshal(raw, &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

// HealthCheck is a simple health check endpoint.
// GET /health
func (h *LessonHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
