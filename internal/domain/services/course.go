package services

import (
	"context"

	"coursecraft/internal/domain/models"
)

// CourseService handles course CRUD and enrollment.
type CourseService interface {
	CreateCourse(ctx context.Context, req *CreateCourseRequest) (*models.Course, error)
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
	UpdateCourse(ctx context.Context, courseID string, req *UpdateCourseRequest) (*models.Course, error)
	DeleteCourse(ctx context.Context, courseID string) error

	// Enroll adds a user to the course roster. Re-enrollment is a conflict.
	Enroll(ctx context.Context, courseID, userID string) (*models.Course, error)
}

// CreateCourseRequest is the course creation payload.
type CreateCourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// UpdateCourseRequest patches course fields; nil pointers are left untouched.
type UpdateCourseRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}
