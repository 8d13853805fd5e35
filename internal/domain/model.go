package domain

// AIModel describes one selectable OpenRouter model.
type AIModel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsFree      bool   `json:"isFree"`
	Speed       string `json:"speed"`
	InfoURL     string `json:"infoURL"`
}

// AvailableModels is the catalog of models the user can select for queries.
// The first entry is the default.
var AvailableModels = []AIModel{
	{
		ID:          "openai/gpt-4o-mini",
		Name:        "GPT-4o Mini",
		Description: "Rápido y económico (~$0.006/consulta) - Predeterminado",
		IsFree:      false,
		Speed:       "rápido",
		InfoURL:     "https://openrouter.ai/openai/gpt-4o-mini",
	},
	{
		ID:          "openai/chatgpt-4o-latest",
		Name:        "GPT-4o",
		Description: "Más preciso (~$0.10/consulta)",
		IsFree:      false,
		Speed:       "medio",
		InfoURL:     "https://openrouter.ai/openai/chatgpt-4o-latest",
	},
}

// DefaultModel is the model used when the user has not picked one. It is
// also the fixed model for per-dish classification during menu analysis,
// independent of the vision model selected for the photo stages.
func DefaultModel() AIModel {
	return AvailableModels[0]
}

// ModelByID looks a model up in the catalog.
func ModelByID(id string) (AIModel, bool) {
	for _, m := range AvailableModels {
		if m.ID == id {
			return m, true
		}
	}
	return AIModel{}, false
}
