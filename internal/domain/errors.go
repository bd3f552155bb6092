package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrFileTooLarge is a distinct validation failure for uploads that
	// exceed the per-file size ceiling.
	ErrFileTooLarge = errors.New("file too large")

	// ErrAINotConfigured is returned when no generation provider is wired.
	// Callers must treat this as a normal, expected condition.
	ErrAINotConfigured = errors.New("AI service not configured")
)

// UpstreamError indicates the external generation provider call failed.
// The message is user-safe; provider internals stay in the wrapped error.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string { return e.Message }

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) StatusCode() int { return http.StatusInternalServerError }

// PersistenceError indicates a durable write failed after the in-memory
// state was already updated. It carries the lesson ID and operation so the
// divergence can be reconciled from logs.
type PersistenceError struct {
	LessonID  string
	Operation string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist lesson %s during %s: %v", e.LessonID, e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) StatusCode() int { return http.StatusInternalServerError }

// ConflictError represents a resource conflict with details about the
// existing resource.
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
