// File: internal/llmclient/factory.go
package llmclient

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/framesmith/api/schemas"
	"github.com/xkilldash9x/framesmith/internal/config"
)

// NewClient creates the streaming client for the configured provider.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (schemas.LLMClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg, logger)
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown or unsupported LLM provider configured: '%s'. Supported: [%s, %s]", cfg.Provider, config.ProviderGemini, config.ProviderOpenAI)
	}
}

// OptionsFromConfig maps the configured sampling settings onto a request.
func OptionsFromConfig(cfg config.LLMConfig) schemas.GenerationOptions {
	return schemas.GenerationOptions{
		Temperature: float64(cfg.Temperature),
		TopP:        float64(cfg.TopP),
		TopK:        cfg.TopK,
		MaxTokens:   cfg.MaxTokens,
	}
}
