package course

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"coursecraft/internal/domain"
	"coursecraft/internal/domain/services"
	"coursecraft/internal/repository/jsonfile"
)

func newTestCourseService(t *testing.T) *courseService {
	t.Helper()
	store, err := jsonfile.NewCourseStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCourseStore: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCourseService(store, logger).(*courseService)
}

func TestCreateCourse(t *testing.T) {
	svc := newTestCourseService(t)
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	course, err := svc.CreateCourse(context.Background(), &services.CreateCourseRequest{
		Title:       "Go from Scratch",
		Description: "The basics",
	})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	if course.ID == "" {
		t.Error("ID not generated")
	}
	if course.Title != "Go from Scratch" || course.Description != "The basics" {
		t.Errorf("course = %+v", course)
	}
	if !course.CreatedAt.Equal(fixed) || !course.UpdatedAt.Equal(fixed) {
		t.Errorf("timestamps = %v / %v", course.CreatedAt, course.UpdatedAt)
	}
	if course.Enrollments == nil || len(course.Enrollments) != 0 {
		t.Errorf("Enrollments = %v, want empty non-nil roster", course.Enrollments)
	}
}

func TestCreateCourseValidation(t *testing.T) {
	svc := newTestCourseService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *services.CreateCourseRequest
	}{
		{"nil request", nil},
		{"missing title", &services.CreateCourseRequest{}},
		{"title too long", &services.CreateCourseRequest{Title: strings.Repeat("x", 256)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateCourse(ctx, tt.req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestUpdateCoursePartial(t *testing.T) {
	svc := newTestCourseService(t)
	ctx := context.Background()

	created, err := svc.CreateCourse(ctx, &services.CreateCourseRequest{Title: "Old", Description: "Keep me"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	newTitle := "New"
	updated, err := svc.UpdateCourse(ctx, created.ID, &services.UpdateCourseRequest{Title: &newTitle})
	if err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}
	if updated.Title != "New" {
		t.Errorf("Title = %q", updated.Title)
	}
	if updated.Description != "Keep me" {
		t.Errorf("Description = %q, omitted fields must survive", updated.Description)
	}

	if _, err := svc.UpdateCourse(ctx, "missing", &services.UpdateCourseRequest{Title: &newTitle}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown course: %v", err)
	}
}

func TestDeleteCourse(t *testing.T) {
	svc := newTestCourseService(t)
	ctx := context.Background()

	created, err := svc.CreateCourse(ctx, &services.CreateCourseRequest{Title: "Doomed"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	if err := svc.DeleteCourse(ctx, created.ID); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
	if err := svc.DeleteCourse(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: %v, want not found", err)
	}
}

func TestEnroll(t *testing.T) {
	svc := newTestCourseService(t)
	ctx := context.Background()

	created, err := svc.CreateCourse(ctx, &services.CreateCourseRequest{Title: "Popular"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	course, err := svc.Enroll(ctx, created.ID, "user-1")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if len(course.Enrollments) != 1 || course.Enrollments[0] != "user-1" {
		t.Errorf("Enrollments = %v", course.Enrollments)
	}

	// enrolling the same user again is a conflict
	_, err = svc.Enroll(ctx, created.ID, "user-1")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	var cerr *domain.ConflictError
	if !errors.As(err, &cerr) || cerr.ResourceType != "enrollment" {
		t.Errorf("conflict error = %+v", err)
	}

	// a second user is fine
	course, err = svc.Enroll(ctx, created.ID, "user-2")
	if err != nil {
		t.Fatalf("Enroll second user: %v", err)
	}
	if len(course.Enrollments) != 2 {
		t.Errorf("Enrollments = %v", course.Enrollments)
	}
}

func TestEnrollValidation(t *testing.T) {
	svc := newTestCourseService(t)
	ctx := context.Background()

	if _, err := svc.Enroll(ctx, "missing", "user-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown course: %v", err)
	}

	created, err := svc.CreateCourse(ctx, &services.CreateCourseRequest{Title: "C"})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if _, err := svc.Enroll(ctx, created.ID, ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty user: %v", err)
	}
}
