package ai

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured = errors.New("ai provider not configured")
	ErrEmptyReply    = errors.New("ai provider returned no text")
)

// LLMProvider is the contract shared by the Gemini and OpenAI backends.
type LLMProvider interface {
	// Name identifies the backend in logs and responses.
	Name() string
	// Complete sends a single prompt and returns the model's text reply.
	Complete(ctx context.Context, prompt string) (string, error)
}
