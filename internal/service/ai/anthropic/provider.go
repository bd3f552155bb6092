// Package anthropic implements the generation capability over the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"coursecraft/internal/domain"
	"coursecraft/internal/domain/services"
)

const maxTokens = 4096

const structuredSystemPrompt = "Respond with a single valid JSON value and nothing else. " +
	"No prose, no code fences."

// Provider calls Claude for text and structured generation.
type Provider struct {
	client *anthropic.Client
	model  string
}

// NewProvider creates an Anthropic provider with the given API key and model.
func NewProvider(apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &Provider{
		client: &client,
		model:  model,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "anthropic"
}

// GenerateText produces prose for the prompt, with optional background
// material prepended.
func (p *Provider) GenerateText(ctx context.Context, prompt, contextText string) (string, error) {
	userText := prompt
	if contextText != "" {
		userText = "Context:\n" + contextText + "\n\n" + prompt
	}

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userText)),
		},
	})
	if err != nil {
		return "", &domain.UpstreamError{Message: "failed to generate content", Err: err}
	}

	text := collectText(message)
	if text == "" {
		return "", &domain.UpstreamError{Message: "failed to generate content",
			Err: fmt.Errorf("empty response from model %s", p.model)}
	}
	return text, nil
}

// GenerateStructured produces a JSON value for the prompt. The model is
// instructed to answer with bare JSON; stray fencing is stripped before
// validation.
func (p *Provider) GenerateStructured(ctx context.Context, prompt string) (json.RawMessage, error) {
	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: structuredSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, &domain.UpstreamError{Message: "failed to generate content", Err: err}
	}

	raw := extractJSON(collectText(message))
	if !json.Valid([]byte(raw)) {
		return nil, &domain.UpstreamError{Message: "failed to generate content",
			Err: fmt.Errorf("model %s did not return valid JSON", p.model)}
	}
	return json.RawMessage(raw), nil
}

func collectText(msg *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// extractJSON strips markdown code fences that some responses wrap around
// the JSON despite the system prompt.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}
	return text
}

var _ services.Generator = (*Provider)(nil)
