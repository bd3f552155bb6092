package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"coursecraft/internal/domain"
	"coursecraft/internal/domain/models"
	"coursecraft/internal/domain/services"
	"coursecraft/internal/registry"
	"coursecraft/internal/repository/memory"
	"coursecraft/internal/repository/snapshot"
	"coursecraft/internal/service/ai/canned"
	"coursecraft/internal/service/content"
)

func newTestGenerationService(t *testing.T, provider services.Generator) (services.GenerationService, services.LessonService) {
	t.Helper()

	reg, err := registry.NewRegistry()
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	snaps, err := snapshot.NewStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("create snapshot store: %v", err)
	}
	resolver := content.NewPathResolver(t.TempDir(), reg)
	lessons := content.NewLessonService(memory.NewLessonTable(), snaps, reg, resolver, "http://localhost:8080", logger)

	return NewGenerationService(provider, reg, lessons, logger), lessons
}

func TestGenerateText(t *testing.T) {
	svc, _ := newTestGenerationService(t, canned.NewProvider())

	got, err := svc.GenerateText(context.Background(), &services.GenerateTextRequest{Prompt: "explain goroutines"})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got.Provider != "canned" {
		t.Errorf("Provider = %q", got.Provider)
	}
	if !strings.Contains(got.Text, "explain goroutines") {
		t.Errorf("Text = %q", got.Text)
	}
}

func TestGenerateTextRequiresPrompt(t *testing.T) {
	svc, _ := newTestGenerationService(t, canned.NewProvider())

	_, err := svc.GenerateText(context.Background(), &services.GenerateTextRequest{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestUnconfiguredProvider(t *testing.T) {
	svc, _ := newTestGenerationService(t, nil)
	ctx := context.Background()

	if _, err := svc.GenerateText(ctx, &services.GenerateTextRequest{Prompt: "p"}); !errors.Is(err, domain.ErrAINotConfigured) {
		t.Errorf("GenerateText: %v", err)
	}
	if _, err := svc.GenerateStructured(ctx, &services.GenerateStructuredRequest{Prompt: "p"}); !errors.Is(err, domain.ErrAINotConfigured) {
		t.Errorf("GenerateStructured: %v", err)
	}
}

func TestGenerateStructuredReturnsJSON(t *testing.T) {
	svc, _ := newTestGenerationService(t, canned.NewProvider())

	doc, err := svc.GenerateStructured(context.Background(), &services.GenerateStructuredRequest{Prompt: "outline a course"})
	if err != nil {
		t.Fatalf("GenerateStructured: %v", err)
	}
	if !json.Valid(doc) {
		t.Errorf("doc is not valid JSON: %s", doc)
	}
}

func TestGenerateIntoSlot(t *testing.T) {
	svc, lessons := newTestGenerationService(t, canned.NewProvider())
	ctx := context.Background()

	title := "Concurrency"
	if _, err := lessons.SaveLesson(ctx, "l1", &services.SaveLessonRequest{LessonTitle: &title}); err != nil {
		t.Fatalf("seed lesson: %v", err)
	}

	lesson, err := svc.GenerateIntoSlot(ctx, "l1", "text", &services.GenerateSlotRequest{Prompt: "explain channels"})
	if err != nil {
		t.Fatalf("GenerateIntoSlot: %v", err)
	}

	slot := lesson.Content["text"]
	if slot == nil || slot.Text == nil {
		t.Fatalf("slot = %+v", slot)
	}
	if slot.Method != models.MethodAI {
		t.Errorf("Method = %q", slot.Method)
	}
	if slot.Text.Content == "" || slot.Text.Generated != slot.Text.Content {
		t.Errorf("generated text not preserved: %+v", slot.Text)
	}
	if lesson.Metadata.CompletedContent != 1 {
		t.Errorf("CompletedContent = %d", lesson.Metadata.CompletedContent)
	}
}

func TestGenerateIntoCodeSlot(t *testing.T) {
	svc, lessons := newTestGenerationService(t, canned.NewProvider())
	ctx := context.Background()

	title := "Concurrency"
	if _, err := lessons.SaveLesson(ctx, "l1", &services.SaveLessonRequest{LessonTitle: &title}); err != nil {
		t.Fatalf("seed lesson: %v", err)
	}

	lesson, err := svc.GenerateIntoSlot(ctx, "l1", "code", &services.GenerateSlotRequest{
		Prompt:   "worker pool example",
		Language: "go",
	})
	if err != nil {
		t.Fatalf("GenerateIntoSlot: %v", err)
	}

	slot := lesson.Content["code"]
	if slot == nil || slot.Text == nil {
		t.Fatalf("slot = %+v", slot)
	}
	if slot.Text.Code == "" || slot.Text.Language != "go" {
		t.Errorf("code slot = %+v", slot.Text)
	}
}

func TestGenerateIntoSlotRejections(t *testing.T) {
	svc, _ := newTestGenerationService(t, canned.NewProvider())
	ctx := context.Background()

	// only text-kind slots can be generated
	if _, err := svc.GenerateIntoSlot(ctx, "l1", "images", &services.GenerateSlotRequest{Prompt: "p"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("file slot: err = %v, want validation error", err)
	}

	// the lesson must already exist
	if _, err := svc.GenerateIntoSlot(ctx, "ghost", "text", &services.GenerateSlotRequest{Prompt: "p"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown lesson: err = %v, want not found", err)
	}
}
