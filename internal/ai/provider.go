package ai

import "context"

// Provider is a model transport. CompleteJSON asks the model for a single
// JSON object reply; validation of that object happens upstream.
type Provider interface {
	CompleteJSON(ctx context.Context, model string, systemPrompt string, prompt string) (string, error)
}
