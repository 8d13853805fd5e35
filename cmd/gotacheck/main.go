package main

import (
	"context"
	"log"
	"log/slog"

	"golang.org/x/time/rate"

	"gotacheck/internal/config"
	"gotacheck/internal/db"
	"gotacheck/internal/domain"
	"gotacheck/internal/foodquery"
	anthropicquery "gotacheck/internal/foodquery/anthropic"
	"gotacheck/internal/logging"
	"gotacheck/internal/menuscan"
	"gotacheck/internal/openrouter"
	"gotacheck/internal/store"
	"gotacheck/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	settings := store.NewSettingsStore(database)

	// A credential passed via environment seeds the settings store so the
	// API is usable before anyone touches /api/settings.
	if cfg.OpenRouterAPIKey != "" {
		if err := settings.SetAPIKey(context.Background(), cfg.OpenRouterAPIKey); err != nil {
			logger.Error("failed to seed api key", "error", err)
			return
		}
	}

	// One shared token bucket shapes every outbound model request,
	// whichever client instance issues it.
	limiter := rate.NewLimiter(rate.Every(cfg.RequestInterval), 1)

	newClient := func(apiKey string) *openrouter.Client {
		opts := []openrouter.Option{openrouter.WithLimiter(limiter)}
		if cfg.OpenRouterBaseURL != "" {
			opts = append(opts, openrouter.WithBaseURL(cfg.OpenRouterBaseURL))
		}
		return openrouter.NewClient(apiKey, opts...)
	}

	newClassifier := newClassifierFactory(cfg, logger, newClient)
	if newClassifier == nil {
		return
	}

	newAnalyzer := func(apiKey, visionModel string) web.MenuAnalyzer {
		client := newClient(apiKey)
		// Per-dish classification always runs on the default text model,
		// independent of the vision model selected for the photo stages.
		dishClassifier := foodquery.NewService(client, domain.DefaultModel().ID, logger)
		return menuscan.NewAnalyzer(client, dishClassifier, visionModel, logger,
			menuscan.WithMaxDishes(cfg.MaxMenuDishes))
	}

	server := web.NewServer(settings, newClassifier, newAnalyzer, logger)
	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newClassifierFactory(cfg *config.Config, logger *slog.Logger, newClient func(string) *openrouter.Client) web.ClassifierFactory {
	switch cfg.AIBackend {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			logger.Error("ANTHROPIC_API_KEY is required when AI_BACKEND=anthropic")
			return nil
		}
		logger.Info("using Anthropic classification backend", "model", cfg.AnthropicModel)
		classifier := anthropicquery.New(cfg.AnthropicAPIKey, cfg.AnthropicModel, logger)
		return func(string, string) foodquery.Classifier { return classifier }
	default:
		logger.Info("using OpenRouter classification backend")
		return func(apiKey, model string) foodquery.Classifier {
			return foodquery.NewService(newClient(apiKey), model, logger)
		}
	}
}
