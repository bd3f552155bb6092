// Package course implements course CRUD and enrollment over the flat-file
// course store.
package course

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"coursecraft/internal/config"
	"coursecraft/internal/domain"
	"coursecraft/internal/domain/models"
	"coursecraft/internal/domain/repositories"
	"coursecraft/internal/domain/services"
)

type courseService struct {
	courses repositories.CourseStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewCourseService creates the course service.
func NewCourseService(courses repositories.CourseStore, logger *slog.Logger) services.CourseService {
	return &courseService{
		courses: courses,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *courseService) CreateCourse(ctx context.Context, req *services.CreateCourseRequest) (*models.Course, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request body is required", domain.ErrValidation)
	}
	if err := validation.Validate(req.Title,
		validation.Required,
		validation.Length(1, config.MaxCourseTitleLength),
	); err != nil {
		return nil, fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
	}

	now := s.now().UTC()
	course := &models.Course{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Enrollments: []string{},
	}

	if err := s.courses.Put(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info("course created", "course_id", course.ID, "title", course.Title)
	return course, nil
}

func (s *courseService) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	return s.courses.Get(ctx, courseID)
}

func (s *courseService) ListCourses(ctx context.Context) ([]models.Course, error) {
	return s.courses.List(ctx)
}

func (s *courseService) UpdateCourse(ctx context.Context, courseID string, req *services.UpdateCourseRequest) (*models.Course, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request body is required", domain.ErrValidation)
	}
	if req.Title != nil {
		if err := validation.Validate(*req.Title,
			validation.Required,
			validation.Length(1, config.MaxCourseTitleLength),
		); err != nil {
			return nil, fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
		}
	}

	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	course.UpdatedAt = s.now().UTC()

	if err := s.courses.Put(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) DeleteCourse(ctx context.Context, courseID string) error {
	existed, err := s.courses.Delete(ctx, courseID)
	if err != nil {
		return err
	}
	if !existed {
		return fmt.Errorf("course %s: %w", courseID, domain.ErrNotFound)
	}
	s.logger.Info("course deleted", "course_id", courseID)
	return nil
}

// Enroll adds a user to the course roster; enrolling twice is a conflict.
func (s *courseService) Enroll(ctx context.Context, courseID, userID string) (*models.Course, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", domain.ErrValidation)
	}

	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if course.IsEnrolled(userID) {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("user is already enrolled in course %s", courseID),
			ResourceType: "enrollment",
			ResourceID:   courseID,
		}
	}

	course.Enrollments = append(course.Enrollments, userID)
	course.UpdatedAt = s.now().UTC()

	if err := s.courses.Put(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info("user enrolled", "course_id", courseID, "user_id", userID)
	return course, nil
}
