package foodquery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gotacheck/internal/domain"
	"gotacheck/internal/openrouter"
)

// Service classifies foods through the OpenRouter chat-completions
// endpoint. One Classify call is exactly one remote round trip; retry
// policy belongs to the caller.
type Service struct {
	client *openrouter.Client
	model  string
	logger *slog.Logger
}

func NewService(client *openrouter.Client, model string, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		model:  model,
		logger: logger,
	}
}

func (s *Service) Classify(ctx context.Context, food string) (*domain.FoodVerdict, error) {
	if food == "" {
		return nil, errors.New("food description is empty")
	}

	content, err := s.client.ChatCompletion(ctx, s.model, []openrouter.Message{
		openrouter.UserMessage(BuildPrompt(food)),
	})
	if err != nil {
		return nil, fmt.Errorf("classify food: %w", err)
	}

	verdict, err := ParseVerdict(content)
	if err != nil {
		return nil, fmt.Errorf("classify food: %w", err)
	}

	s.logger.Debug("food classified",
		"food", food,
		"level", verdict.Level,
		"purines_mg", verdict.Purines,
	)
	return verdict, nil
}
