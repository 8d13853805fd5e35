package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gotacheck/internal/domain"
	"gotacheck/internal/openrouter"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// User-facing messages for the distinguishable failure modes. The
// insufficient-credits wording mentions the account balance only for paid
// models; free tiers get the generic message.
const (
	msgInvalidKey     = "API Key inválida o sin permisos para este modelo. Verifica tu configuración."
	msgNoCredits      = "Créditos insuficientes en OpenRouter. Recarga tu cuenta."
	msgModelForbidden = "No tienes acceso a este modelo. Verifica tu cuenta en OpenRouter."
	msgRateLimited    = "Límite de consultas alcanzado. Espera unos minutos."
	msgBadResponse    = "La respuesta del modelo no se pudo interpretar. Inténtalo de nuevo."
	msgGeneric        = "No se pudo completar la consulta. Revisa tu conexión y tu API Key."
	msgKeyMissing     = "Configura tu API Key de OpenRouter en los ajustes."
)

// aiErrorResponse maps a classification/pipeline error to an HTTP status
// and an actionable user-facing message.
func aiErrorResponse(err error, model domain.AIModel) (int, string) {
	switch {
	case errors.Is(err, openrouter.ErrInvalidAPIKey):
		return http.StatusUnauthorized, msgInvalidKey
	case errors.Is(err, openrouter.ErrInsufficientCredits):
		if model.IsFree {
			return http.StatusPaymentRequired, msgGeneric
		}
		return http.StatusPaymentRequired, msgNoCredits
	case errors.Is(err, openrouter.ErrModelForbidden):
		return http.StatusForbidden, msgModelForbidden
	case errors.Is(err, openrouter.ErrRateLimited):
		return http.StatusTooManyRequests, msgRateLimited
	}

	var parseErr *openrouter.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusBadGateway, msgBadResponse
	}
	return http.StatusBadGateway, msgGeneric
}
