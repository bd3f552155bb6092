package handler

import (
	"log/slog"
	"net/http"

	"coursecraft/internal/domain/models"
	"coursecraft/internal/domain/services"
	"coursecraft/internal/httputil"
)

// CourseHandler handles course HTTP requests.
type CourseHandler struct {
	courseService services.CourseService
	lessonService services.LessonService
	logger        *slog.Logger
}

// NewCourseHandler creates a new course handler.
func NewCourseHandler(courseService services.CourseService, lessonService services.LessonService, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		lessonService: lessonService,
		logger:        logger,
	}
}

// CreateCourse creates a new course.
// POST /api/courses
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req services.CreateCourseRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	course, err := h.courseService.CreateCourse(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, course)
}

// ListCourses returns all courses.
// GET /api/courses
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseService.ListCourses(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, courses)
}

// GetCourse returns one course.
// GET /api/courses/{id}
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.courseService.GetCourse(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, course)
}

// UpdateCourse patches course fields.
// PATCH /api/courses/{id}
func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateCourseRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	course, err := h.courseService.UpdateCourse(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, course)
}

// DeleteCourse removes a course. Lessons keep their courseId reference;
// there is no cascade.
// DELETE /api/courses/{id}
func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.courseService.DeleteCourse(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, nil, "course deleted")
}

// Enroll adds the caller (or an explicit userId in the body) to the course
// roster. Re-enrollment answers 409.
// POST /api/courses/{id}/enroll
func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req struct {
		UserID string `json:"userId,omitempty"`
	}
	if err := httputil.ParseJSON(w, r, &req); err == nil && req.UserID != "" {
		userID = req.UserID
	}

	course, err := h.courseService.Enroll(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, course)
}

// CourseLessons lists lesson summaries that reference the course.
// GET /api/courses/{id}/lessons
func (h *CourseHandler) CourseLessons(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")

	if _, err := h.courseService.GetCourse(r.Context(), courseID); err != nil {
		handleError(w, err)
		return
	}

	summaries, err := h.lessonService.ListLessons(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	filtered := make([]models.LessonSummary, 0)
	for _, s := range summaries {
		if s.CourseID != nil && *s.CourseID == courseID {
			filtered = append(filtered, s)
		}
	}

	httputil.RespondJSON(w, http.StatusOK, filtered)
}
