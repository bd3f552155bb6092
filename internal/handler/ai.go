package handler

import (
	"log/slog"
	"net/http"

	"coursecraft/internal/domain/services"
	"coursecraft/internal/httputil"
)

// AIHandler handles generation HTTP requests.
type AIHandler struct {
	generationService services.GenerationService
	logger            *slog.Logger
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(generationService services.GenerationService, logger *slog.Logger) *AIHandler {
	return &AIHandler{
		generationService: generationService,
		logger:            logger,
	}
}

// GenerateText produces prose for a prompt.
// POST /api/ai/generate-text
func (h *AIHandler) GenerateText(w http.ResponseWriter, r *http.Request) {
	var req services.GenerateTextRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.generationService.GenerateText(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// GenerateStructured produces a JSON document for a prompt.
// POST /api/ai/generate-structured
func (h *AIHandler) GenerateStructured(w http.ResponseWriter, r *http.Request) {
	var req services.GenerateStructuredRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.generationService.GenerateStructured(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// GenerateSlot generates content into an existing lesson's text or code slot.
// POST /api/lessons/{lessonId}/formats/{formatType}/generate
func (h *AIHandler) GenerateSlot(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("lessonId")
	formatType := r.PathValue("formatType")

	var req services.GenerateSlotRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lesson, err := h.generationService.GenerateIntoSlot(r.Context(), lessonID, formatType, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, lesson)
}
