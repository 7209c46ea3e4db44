package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/skinscan/api/internal/core/domain"
	"github.com/skinscan/api/internal/core/ports"
)

const (
	DefaultChatModel   = "gemini-1.5-flash"
	defaultChatTimeout = 30 * time.Second
)

// ChatService relays prompts to a TextGenerator. It never retries.
type ChatService struct {
	generator ports.TextGenerator
	model     string
	timeout   time.Duration
	logger    zerolog.Logger
}

func NewChatService(generator ports.TextGenerator, model string, timeout time.Duration, logger zerolog.Logger) *ChatService {
	if model == "" {
		model = DefaultChatModel
	}
	if timeout <= 0 {
		timeout = defaultChatTimeout
	}
	return &ChatService{generator: generator, model: model, timeout: timeout, logger: logger}
}

// Ask returns the generator's reply unmodified.
func (s *ChatService) Ask(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: prompt required", domain.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.generator.Generate(ctx, s.model, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: generate: %w", domain.ErrUpstream, err)
	}

	s.logger.Debug().Str("model", s.model).Int("prompt_len", len(prompt)).Int("reply_len", len(reply)).Msg("chat reply generated")
	return reply, nil
}
