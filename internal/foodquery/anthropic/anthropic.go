// Package anthropic provides a foodquery.Classifier backed by the
// Anthropic Messages API, for deployments that prefer Claude over the
// OpenRouter gateway for single-food queries.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/liushuangls/go-anthropic/v2"

	"gotacheck/internal/domain"
	"gotacheck/internal/foodquery"
)

// maxTokens caps the verdict response. Even the extended verdict variant
// stays well under this.
const maxTokens = 1024

type Classifier struct {
	client *anthropic.Client
	model  anthropic.Model
	logger *slog.Logger
}

func New(apiKey, model string, logger *slog.Logger, opts ...anthropic.ClientOption) *Classifier {
	return &Classifier{
		client: anthropic.NewClient(apiKey, opts...),
		model:  anthropic.Model(model),
		logger: logger,
	}
}

func (c *Classifier) Classify(ctx context.Context, food string) (*domain.FoodVerdict, error) {
	if food == "" {
		return nil, errors.New("food description is empty")
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(foodquery.BuildPrompt(food)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("classify food via anthropic: %w", err)
	}

	verdict, err := foodquery.ParseVerdict(resp.GetFirstContentText())
	if err != nil {
		return nil, fmt.Errorf("classify food via anthropic: %w", err)
	}

	c.logger.Debug("food classified",
		"backend", "anthropic",
		"food", food,
		"level", verdict.Level,
		"purines_mg", verdict.Purines,
	)
	return verdict, nil
}
