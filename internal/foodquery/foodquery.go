// Package foodquery turns a single food or dish description into a
// structured purine verdict by delegating the analysis to a remote
// language model.
package foodquery

import (
	"context"
	"fmt"

	"gotacheck/internal/domain"
	"gotacheck/internal/openrouter"
)

// Classifier is implemented by every backend that can classify one food
// description into a verdict.
type Classifier interface {
	Classify(ctx context.Context, food string) (*domain.FoodVerdict, error)
}

// classifyPrompt frames the model as a clinical specialist, fixes the
// classification bands, and anchors the answer with reference purine
// values. The strict JSON directive at the end is what the parsing layer
// depends on.
const classifyPrompt = `Actúa como un médico especialista en reumatología y nutricionista clínico especializado en hiperuricemia y gota. Tu tarea es analizar alimentos y proporcionar información precisa sobre su contenido de purinas.

CONTEXTO MÉDICO:
- Las purinas se metabolizan en ácido úrico
- Pacientes con gota deben limitar purinas a < 150 mg/día
- La cocción puede reducir purinas en un 30-50% (purinas solubles en agua)
- Los valores deben ser lo más exactos posible basándose en literatura médica

CLASIFICACIÓN ESTRICTA:
- BAJO (verde): < 50 mg/100g → Consumo libre
- MODERADO (amarillo): 50-150 mg/100g → Consumo ocasional limitado
- ALTO (rojo): > 150 mg/100g → Evitar completamente

TIPO DE CONSULTA:
- Alimento simple: proporciona valor exacto de purinas
- Múltiples ingredientes: calcula el promedio ponderado
- Plato completo: analiza los ingredientes principales y estima el contenido total

INSTRUCCIONES:
1. Identifica TODOS los ingredientes del alimento/plato
2. Busca en tu base de conocimiento médico el contenido EXACTO de purinas
3. Si es un plato cocinado, considera la preparación (hervido reduce purinas)
4. Proporciona el valor más preciso posible
5. La explicación debe ser técnica pero comprensible

EJEMPLOS DE REFERENCIA:
- Anchoas/sardinas: ~410 mg/100g
- Hígado/vísceras: ~300 mg/100g
- Cerveza: ~15 mg/100ml (pero inhibe excreción de ácido úrico)
- Espárragos: ~23 mg/100g
- Tomate: ~11 mg/100g
- Pollo (sin piel): ~110 mg/100g

Responde ÚNICAMENTE en formato JSON válido con esta estructura exacta:
{
  "nivel": "verde o amarillo o rojo",
  "categoria": "Seguro o Moderado o Evitar",
  "razon": "explicación técnica pero clara del porqué, mencionando el contenido específico y efectos metabólicos (máximo 3 líneas)",
  "purinas": número_entero (contenido en mg por 100g, debe ser PRECISO)
}

IMPORTANTE:
- Usa castellano neutro (no regionalismos)
- Sé EXACTO con los números de purinas
- Si no estás seguro del valor exacto, usa el rango superior por seguridad
- Menciona factores adicionales relevantes (ej: cerveza inhibe excreción)

CONSULTA DEL PACIENTE: `

// BuildPrompt embeds the food description verbatim into the classification
// prompt. The description is not trimmed or sanitized here.
func BuildPrompt(food string) string {
	return classifyPrompt + food
}

// rawVerdict decodes the verdict with pointer fields so that missing
// required keys are distinguishable from zero values.
type rawVerdict struct {
	Nivel     *string `json:"nivel"`
	Categoria *string `json:"categoria"`
	Razon     *string `json:"razon"`
	Purinas   *int    `json:"purinas"`

	Score            *int                    `json:"score"`
	Alternativas     []domain.Alternative    `json:"alternativas"`
	ContextoTemporal string                  `json:"contextoTemporal"`
	ConsejoPrep      string                  `json:"consejoPreparacion"`
	FactoresMetab    string                  `json:"factoresMetabolicos"`
	InfoNutricional  *domain.NutritionalInfo `json:"infoNutricional"`
}

// ParseVerdict parses model output into a FoodVerdict. The content may be
// wrapped in markdown code fences. All four required fields (nivel,
// categoria, razon, purinas) must be present; their absence is a
// *openrouter.ParseError, not a partial result.
func ParseVerdict(content string) (*domain.FoodVerdict, error) {
	raw, err := openrouter.ParseJSON[rawVerdict]("verdict", content)
	if err != nil {
		return nil, err
	}

	var missing string
	switch {
	case raw.Nivel == nil:
		missing = "nivel"
	case raw.Categoria == nil:
		missing = "categoria"
	case raw.Razon == nil:
		missing = "razon"
	case raw.Purinas == nil:
		missing = "purinas"
	}
	if missing != "" {
		return nil, &openrouter.ParseError{
			Stage: "verdict",
			Raw:   content,
			Err:   fmt.Errorf("missing required field %q", missing),
		}
	}

	return &domain.FoodVerdict{
		Level:             domain.ParseLevel(*raw.Nivel),
		Category:          *raw.Categoria,
		Reason:            *raw.Razon,
		Purines:           *raw.Purinas,
		Score:             raw.Score,
		Alternatives:      raw.Alternativas,
		TemporalContext:   raw.ContextoTemporal,
		PreparationAdvice: raw.ConsejoPrep,
		MetabolicFactors:  raw.FactoresMetab,
		NutritionalInfo:   raw.InfoNutricional,
	}, nil
}
