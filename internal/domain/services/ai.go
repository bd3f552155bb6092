package services

import (
	"context"
	"encoding/json"

	"coursecraft/internal/domain/models"
)

// Generator is the capability interface over the external AI provider.
// Implementations may fail or be unconfigured; callers must not assume
// availability.
type Generator interface {
	// GenerateText produces prose for the prompt. contextText is optional
	// background material prepended to the request.
	GenerateText(ctx context.Context, prompt, contextText string) (string, error)

	// GenerateStructured produces a JSON value for the prompt.
	GenerateStructured(ctx context.Context, prompt string) (json.RawMessage, error)

	// Name returns the provider name (e.g. "anthropic", "canned").
	Name() string
}

// GenerationService fronts the Generator with validation and slot writing.
// When no provider is configured every method fails with
// domain.ErrAINotConfigured.
type GenerationService interface {
	GenerateText(ctx context.Context, req *GenerateTextRequest) (*GeneratedText, error)
	GenerateStructured(ctx context.Context, req *GenerateStructuredRequest) (json.RawMessage, error)

	// GenerateIntoSlot generates content for an existing lesson's text or
	// code slot and saves it with the AI method tag.
	GenerateIntoSlot(ctx context.Context, lessonID, contentType string, req *GenerateSlotRequest) (*models.Lesson, error)
}

// GenerateTextRequest is the text-generation payload.
type GenerateTextRequest struct {
	Prompt  string `json:"prompt"`
	Context string `json:"context,omitempty"`
}

// GenerateStructuredRequest is the structured-generation payload.
type GenerateStructuredRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateSlotRequest is the per-slot generation payload.
type GenerateSlotRequest struct {
	Prompt   string `json:"prompt"`
	Context  string `json:"context,omitempty"`
	Language string `json:"language,omitempty"` // code slots only
}

// GeneratedText is the text-generation response payload.
type GeneratedText struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
}
