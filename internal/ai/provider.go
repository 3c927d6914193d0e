package ai

import (
	"context"
	"fmt"

	"caddy/internal/config"
)

// NewProvider builds the backend selected by cfg.Provider. The returned
// provider is nil whenever err is non-nil.
func NewProvider(ctx context.Context, cfg config.AIConfig) (LLMProvider, error) {
	switch cfg.Provider {
	case "", "gemini":
		p, err := NewGeminiProvider(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "openai":
		p, err := NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
