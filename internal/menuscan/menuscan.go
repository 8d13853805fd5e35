// Package menuscan analyzes a restaurant menu photo through a three-stage
// pipeline: validate the image is a menu, extract dish names, classify the
// purine content of each dish. Stages run strictly in order; per-dish
// classification failures are skipped, not fatal.
package menuscan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"gotacheck/internal/domain"
	"gotacheck/internal/foodquery"
	"gotacheck/internal/imaging"
	"gotacheck/internal/openrouter"
)

// DefaultMaxDishes caps how many extracted dish names are classified.
// Excess names are dropped silently.
const DefaultMaxDishes = 20

// Stage labels the pipeline phase a progress report belongs to.
type Stage string

const (
	StageValidating  Stage = "validating"
	StageExtracting  Stage = "extracting"
	StageClassifying Stage = "classifying"
)

// Progress is one observation of pipeline advancement. During the
// classification stage Index counts completed attempts (successful or
// skipped) out of Total; during the earlier stages both are zero.
type Progress struct {
	Stage Stage  `json:"stage"`
	Index int    `json:"index"`
	Total int    `json:"total"`
	Label string `json:"label"`
}

// ProgressFunc receives progress reports. It is called synchronously from
// the pipeline and must not block for long.
type ProgressFunc func(Progress)

// visionClient is the subset of the openrouter client the pipeline needs.
type visionClient interface {
	ChatCompletion(ctx context.Context, model string, messages []openrouter.Message) (string, error)
}

// Analyzer runs the menu analysis pipeline. One Analyze invocation owns
// its result exclusively; no state is shared between invocations.
type Analyzer struct {
	vision      visionClient
	classifier  foodquery.Classifier
	visionModel string
	maxDishes   int
	logger      *slog.Logger
}

type Option func(*Analyzer)

// WithMaxDishes overrides the classification cap.
func WithMaxDishes(n int) Option {
	return func(a *Analyzer) { a.maxDishes = n }
}

func NewAnalyzer(vision visionClient, classifier foodquery.Classifier, visionModel string, logger *slog.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		vision:      vision,
		classifier:  classifier,
		visionModel: visionModel,
		maxDishes:   DefaultMaxDishes,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type menuValidation struct {
	IsMenu bool   `json:"isMenu"`
	Reason string `json:"reason"`
}

type dishExtraction struct {
	Dishes []string `json:"dishes"`
}

// Analyze runs the full pipeline on one photo. Transport and parse errors
// during validation or extraction are fatal and propagate; after dish names
// are known, a failed classification only skips that dish. progress may be
// nil. Cancelling ctx aborts the in-flight remote call and stops the
// pipeline before the next stage or dish.
func (a *Analyzer) Analyze(ctx context.Context, image []byte, progress ProgressFunc) (*domain.MenuAnalysisResult, error) {
	report := func(p Progress) {
		if progress != nil {
			progress(p)
		}
	}

	dataURI, err := imaging.Prepare(image)
	if err != nil {
		return nil, fmt.Errorf("prepare image: %w", err)
	}

	report(Progress{Stage: StageValidating, Label: "Validando la carta"})
	a.logger.Info("menu validation started")

	validation, err := a.validate(ctx, dataURI)
	if err != nil {
		return nil, fmt.Errorf("validate menu: %w", err)
	}
	if !validation.IsMenu {
		a.logger.Info("image rejected", "reason", validation.Reason)
		return &domain.MenuAnalysisResult{
			IsValidMenu:  false,
			ErrorMessage: msgNotAMenu,
			Dishes:       []domain.DishEntry{},
		}, nil
	}

	report(Progress{Stage: StageExtracting, Label: "Extrayendo platos de la carta"})
	a.logger.Info("dish extraction started")

	names, err := a.extract(ctx, dataURI)
	if err != nil {
		return nil, fmt.Errorf("extract dishes: %w", err)
	}
	if len(names) == 0 {
		a.logger.Info("no dishes extracted")
		return &domain.MenuAnalysisResult{
			IsValidMenu:  true,
			ErrorMessage: msgNoDishes,
			Dishes:       []domain.DishEntry{},
		}, nil
	}

	if len(names) > a.maxDishes {
		a.logger.Info("dish list truncated", "extracted", len(names), "cap", a.maxDishes)
		names = names[:a.maxDishes]
	}

	a.logger.Info("dish classification started", "dishes", len(names))

	result := &domain.MenuAnalysisResult{
		IsValidMenu: true,
		Dishes:      make([]domain.DishEntry, 0, len(names)),
	}

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		verdict, err := a.classifier.Classify(ctx, name)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			a.logger.Warn("dish classification failed, skipping", "dish", name, "error", err)
			result.Skipped = append(result.Skipped, domain.SkippedDish{Name: name, Reason: err.Error()})
		default:
			result.Dishes = append(result.Dishes, domain.DishEntry{
				ID:          uuid.New(),
				Name:        name,
				FoodVerdict: *verdict,
			})
		}

		report(Progress{
			Stage: StageClassifying,
			Index: i + 1,
			Total: len(names),
			Label: fmt.Sprintf("Analizando platos (%d/%d)", i+1, len(names)),
		})
	}

	a.logger.Info("menu analysis complete",
		"classified", len(result.Dishes),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

func (a *Analyzer) validate(ctx context.Context, dataURI string) (*menuValidation, error) {
	content, err := a.vision.ChatCompletion(ctx, a.visionModel, []openrouter.Message{
		openrouter.VisionMessage(validateMenuPrompt, dataURI),
	})
	if err != nil {
		return nil, err
	}

	validation, err := openrouter.ParseJSON[menuValidation]("validation", content)
	if err != nil {
		return nil, err
	}
	return &validation, nil
}

func (a *Analyzer) extract(ctx context.Context, dataURI string) ([]string, error) {
	content, err := a.vision.ChatCompletion(ctx, a.visionModel, []openrouter.Message{
		openrouter.VisionMessage(extractDishesPrompt, dataURI),
	})
	if err != nil {
		return nil, err
	}

	extraction, err := openrouter.ParseJSON[dishExtraction]("extraction", content)
	if err != nil {
		return nil, err
	}
	return extraction.Dishes, nil
}
