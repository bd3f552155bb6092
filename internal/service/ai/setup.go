package ai

import (
	"fmt"
	"log/slog"

	"coursecraft/internal/config"
	"coursecraft/internal/domain/services"
	"coursecraft/internal/service/ai/anthropic"
	"coursecraft/internal/service/ai/canned"
)

// SetupProvider builds the configured generation provider. Returns nil (not
// an error) when no provider is configured: generation endpoints then answer
// with a clear not-configured error instead of failing at startup.
func SetupProvider(cfg *config.Config, logger *slog.Logger) (services.Generator, error) {
	switch cfg.AIProvider {
	case "canned":
		logger.Warn("using canned generation provider; output is placeholder text")
		return canned.NewProvider(), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			logger.Warn("ANTHROPIC_API_KEY not set - generation endpoints disabled")
			return nil, nil
		}
		provider, err := anthropic.NewProvider(cfg.AnthropicAPIKey, cfg.DefaultModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic provider: %w", err)
		}
		logger.Info("generation provider available", "name", "anthropic", "model", cfg.DefaultModel)
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
	}
}
