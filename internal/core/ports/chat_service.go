package ports

import "context"

// TextGenerator is the generative-text upstream (Gemini in production).
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// ChatService answers a free-text prompt through the TextGenerator.
type ChatService interface {
	Ask(ctx context.Context, prompt string) (string, error)
}
