// Package ai fronts the generation provider with validation and slot
// writing. The provider is optional; every operation degrades to a clear
// not-configured error instead of assuming availability.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"coursecraft/internal/config"
	"coursecraft/internal/domain"
	"coursecraft/internal/domain/models"
	"coursecraft/internal/domain/services"
	"coursecraft/internal/registry"
)

type generationService struct {
	provider services.Generator // nil when unconfigured
	registry *registry.Registry
	lessons  services.LessonService
	logger   *slog.Logger
}

// NewGenerationService creates the generation service. provider may be nil.
func NewGenerationService(
	provider services.Generator,
	reg *registry.Registry,
	lessons services.LessonService,
	logger *slog.Logger,
) services.GenerationService {
	return &generationService{
		provider: provider,
		registry: reg,
		lessons:  lessons,
		logger:   logger,
	}
}

func (s *generationService) GenerateText(ctx context.Context, req *services.GenerateTextRequest) (*services.GeneratedText, error) {
	if err := validatePrompt(req.Prompt, req.Context); err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, domain.ErrAINotConfigured
	}

	text, err := s.provider.GenerateText(ctx, req.Prompt, req.Context)
	if err != nil {
		s.logger.Error("text generation failed", "provider", s.provider.Name(), "error", err)
		return nil, err
	}

	return &services.GeneratedText{Text: text, Provider: s.provider.Name()}, nil
}

func (s *generationService) GenerateStructured(ctx context.Context, req *services.GenerateStructuredRequest) (json.RawMessage, error) {
	if err := validatePrompt(req.Prompt, ""); err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, domain.ErrAINotConfigured
	}

	doc, err := s.provider.GenerateStructured(ctx, req.Prompt)
	if err != nil {
		s.logger.Error("structured generation failed", "provider", s.provider.Name(), "error", err)
		return nil, err
	}
	return doc, nil
}

// GenerateIntoSlot generates content for a text or code slot of an existing
// lesson and saves it tagged with the AI method. The raw output is preserved
// in the slot's generated field so later manual edits keep their provenance.
func (s *generationService) GenerateIntoSlot(ctx context.Context, lessonID, contentType string, req *services.GenerateSlotRequest) (*models.Lesson, error) {
	ct, ok := s.registry.Lookup(contentType)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported content type %q", domain.ErrValidation, contentType)
	}
	if ct.Kind != registry.KindText {
		return nil, fmt.Errorf("%w: %s content cannot be generated", domain.ErrValidation, ct.Name)
	}
	if err := validatePrompt(req.Prompt, req.Context); err != nil {
		return nil, err
	}
	if s.provider == nil {
		return nil, domain.ErrAINotConfigured
	}

	text, err := s.provider.GenerateText(ctx, req.Prompt, req.Context)
	if err != nil {
		s.logger.Error("slot generation failed",
			"provider", s.provider.Name(),
			"lesson_id", lessonID,
			"content_type", ct.Name,
			"error", err,
		)
		return nil, err
	}

	slot := &models.ContentSlot{
		Type:   ct.Name,
		Method: models.MethodAI,
		Text:   &models.TextContent{Generated: text},
	}
	if ct.Name == "code" {
		slot.Text.Code = text
		slot.Text.Language = req.Language
	} else {
		slot.Text.Content = text
	}

	return s.lessons.UpdateSlot(ctx, lessonID, ct.Name, slot)
}

func validatePrompt(prompt, contextText string) error {
	if err := validation.Validate(prompt,
		validation.Required,
		validation.Length(1, config.MaxPromptLength),
	); err != nil {
		return fmt.Errorf("%w: prompt: %v", domain.ErrValidation, err)
	}
	if err := validation.Validate(contextText,
		validation.Length(0, config.MaxGenerationContextLength),
	); err != nil {
		return fmt.Errorf("%w: context: %v", domain.ErrValidation, err)
	}
	return nil
}
