package domain

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Level is the traffic-light purine classification of a food item. The
// canonical values mirror the wire schema returned by the model ("verde",
// "amarillo", "rojo").
type Level string

const (
	LevelSafe     Level = "verde"
	LevelModerate Level = "amarillo"
	LevelAvoid    Level = "rojo"
	LevelUnknown  Level = ""
)

// ParseLevel maps a model-supplied level string to its canonical value.
// Matching is case-insensitive; anything unrecognised becomes LevelUnknown
// rather than an error, so a sloppy model response degrades to a neutral
// indicator instead of failing the whole verdict.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verde":
		return LevelSafe
	case "amarillo":
		return LevelModerate
	case "rojo":
		return LevelAvoid
	default:
		return LevelUnknown
	}
}

func (l Level) String() string {
	return string(l)
}

// Indicator returns the traffic-light glyph for the level.
func (l Level) Indicator() string {
	switch l {
	case LevelSafe:
		return "🟢"
	case LevelModerate:
		return "🟡"
	case LevelAvoid:
		return "🔴"
	default:
		return "⚪️"
	}
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = ParseLevel(s)
	return nil
}

// FoodVerdict is the structured classification of a single food item.
// The four required fields are always populated by the parsing layer;
// everything else is present only when the model chose to return the
// extended response variant.
type FoodVerdict struct {
	Level    Level  `json:"nivel"`
	Category string `json:"categoria"`
	Reason   string `json:"razon"`
	Purines  int    `json:"purinas"`

	Score             *int             `json:"score,omitempty"`
	Alternatives      []Alternative    `json:"alternativas,omitempty"`
	TemporalContext   string           `json:"contextoTemporal,omitempty"`
	PreparationAdvice string           `json:"consejoPreparacion,omitempty"`
	MetabolicFactors  string           `json:"factoresMetabolicos,omitempty"`
	NutritionalInfo   *NutritionalInfo `json:"infoNutricional,omitempty"`
}

// HasExtendedInfo reports whether any of the optional extended fields are set.
func (v FoodVerdict) HasExtendedInfo() bool {
	return v.Score != nil ||
		len(v.Alternatives) > 0 ||
		v.TemporalContext != "" ||
		v.PreparationAdvice != "" ||
		v.MetabolicFactors != "" ||
		v.NutritionalInfo != nil
}

// Alternative is a safer substitute suggested for a moderate/avoid food.
type Alternative struct {
	Name    string `json:"nombre"`
	Purines int    `json:"purinas"`
	Level   Level  `json:"nivel"`
}

// NutritionalInfo carries uric-acid-relevant nutritional context.
// Omega3 is "alto", "medio", "bajo", or empty when not reported.
type NutritionalInfo struct {
	Proteins *float64 `json:"proteinas,omitempty"`
	Fructose *float64 `json:"fructosa,omitempty"`
	VitaminC *float64 `json:"vitaminaC,omitempty"`
	Omega3   string   `json:"omega3,omitempty"`
}

// DishEntry is one classified dish from a menu photo: a verdict plus the
// extracted dish name and a unique identity assigned at creation.
type DishEntry struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	FoodVerdict
}

// SkippedDish records a dish whose classification failed during menu
// analysis. Keeping the name and failure reason preserves provenance that a
// silently shorter dish list would lose.
type SkippedDish struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// MenuAnalysisResult is the aggregate outcome of one menu analysis.
// When IsValidMenu is false, Dishes is empty and ErrorMessage explains why.
// An empty Dishes with IsValidMenu true and no ErrorMessage means every
// extracted dish failed classification, which is a valid terminal outcome.
type MenuAnalysisResult struct {
	IsValidMenu  bool          `json:"isValidMenu"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	Dishes       []DishEntry   `json:"dishes"`
	Skipped      []SkippedDish `json:"skipped,omitempty"`
}

// TotalDishes is the number of successfully classified dishes.
func (r *MenuAnalysisResult) TotalDishes() int {
	return len(r.Dishes)
}

// DishesByLevel groups dishes by their traffic-light level.
func (r *MenuAnalysisResult) DishesByLevel() map[Level][]DishEntry {
	grouped := make(map[Level][]DishEntry)
	for _, d := range r.Dishes {
		grouped[d.Level] = append(grouped[d.Level], d)
	}
	return grouped
}

// FilterByLevel returns the dishes with the given level, in insertion order.
func (r *MenuAnalysisResult) FilterByLevel(level Level) []DishEntry {
	var filtered []DishEntry
	for _, d := range r.Dishes {
		if d.Level == level {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// SortedByPurines returns a copy of the dishes ordered by ascending purine
// content. The underlying dish list is never mutated.
func (r *MenuAnalysisResult) SortedByPurines() []DishEntry {
	sorted := slices.Clone(r.Dishes)
	slices.SortStableFunc(sorted, func(a, b DishEntry) int {
		return a.Purines - b.Purines
	})
	return sorted
}

// SortedByName returns a copy of the dishes in case-insensitive
// lexicographic order.
func (r *MenuAnalysisResult) SortedByName() []DishEntry {
	sorted := slices.Clone(r.Dishes)
	slices.SortStableFunc(sorted, func(a, b DishEntry) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return sorted
}

// SortedByScore returns a copy of the dishes ordered by descending safety
// score. Dishes without a score sort last.
func (r *MenuAnalysisResult) SortedByScore() []DishEntry {
	sorted := slices.Clone(r.Dishes)
	slices.SortStableFunc(sorted, func(a, b DishEntry) int {
		switch {
		case a.Score == nil && b.Score == nil:
			return 0
		case a.Score == nil:
			return 1
		case b.Score == nil:
			return -1
		default:
			return *b.Score - *a.Score
		}
	})
	return sorted
}
