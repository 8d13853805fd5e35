package web

import (
	"encoding/json"
	"net/http"

	"gotacheck/internal/domain"
)

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.AvailableModels)
}

type settingsResponse struct {
	APIKeyConfigured bool           `json:"apiKeyConfigured"`
	Model            domain.AIModel `json:"model"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	apiKey, err := s.settings.APIKey(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		s.logger.Error("load api key failed", "error", err)
		return
	}

	model, err := s.settings.SelectedModel(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		s.logger.Error("load selected model failed", "error", err)
		return
	}

	// The key itself is never echoed back.
	writeJSON(w, http.StatusOK, settingsResponse{
		APIKeyConfigured: apiKey != "",
		Model:            model,
	})
}

type updateSettingsRequest struct {
	APIKey  *string `json:"apiKey"`
	ModelID *string `json:"modelId"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ModelID != nil {
		if _, ok := domain.ModelByID(*req.ModelID); !ok {
			writeError(w, http.StatusBadRequest, "unknown model")
			return
		}
		if err := s.settings.SetSelectedModel(r.Context(), *req.ModelID); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			s.logger.Error("save selected model failed", "error", err)
			return
		}
	}

	if req.APIKey != nil {
		if err := s.settings.SetAPIKey(r.Context(), *req.APIKey); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save settings")
			s.logger.Error("save api key failed", "error", err)
			return
		}
	}

	s.handleGetSettings(w, r)
}
