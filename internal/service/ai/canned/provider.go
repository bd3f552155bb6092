// Package canned is a deterministic generation provider for development and
// tests. No API key, no network, stable output for a given prompt.
package canned

import (
	"context"
	"encoding/json"
	"fmt"

	"coursecraft/internal/domain/services"
)

// Provider echoes templated text derived from the prompt.
type Provider struct{}

// NewProvider creates a canned provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "canned"
}

// GenerateText returns deterministic placeholder prose for the prompt.
func (p *Provider) GenerateText(_ context.Context, prompt, contextText string) (string, error) {
	if contextText != "" {
		return fmt.Sprintf("Generated lesson content for %q (with %d bytes of context).", prompt, len(contextText)), nil
	}
	return fmt.Sprintf("Generated lesson content for %q.", prompt), nil
}

// GenerateStructured returns a small deterministic JSON document.
func (p *Provider) GenerateStructured(_ context.Context, prompt string) (json.RawMessage, error) {
	doc := map[string]any{
		"prompt":  prompt,
		"outline": []string{"introduction", "body", "summary"},
	}
	return json.Marshal(doc)
}

var _ services.Generator = (*Provider)(nil)
