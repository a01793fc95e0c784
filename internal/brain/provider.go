package brain

import (
	"context"

	"aegis/internal/models"
)

// Provider is one LLM backend the brain can route a conversation to.
type Provider interface {
	// Name identifies the provider in logs and response metadata.
	Name() string
	// Available reports whether the provider is configured (API key
	// present). Unconfigured providers are skipped during fallback.
	Available() bool
	// Complete sends the full message history and returns the
	// assistant's reply.
	Complete(ctx context.Context, messages []models.Message) (*models.LLMResponse, error)
}
