package web

import (
	"encoding/json"
	"net/http"
)

type foodRequest struct {
	Food string `json:"food"`
}

func (s *Server) handleClassifyFood(w http.ResponseWriter, r *http.Request) {
	if !s.foodMu.TryLock() {
		writeError(w, http.StatusConflict, "ya hay una consulta de alimento en curso")
		return
	}
	defer s.foodMu.Unlock()

	var req foodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Food == "" {
		writeError(w, http.StatusBadRequest, "food is required")
		return
	}

	apiKey, err := s.settings.APIKey(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		s.logger.Error("load api key failed", "error", err)
		return
	}
	if apiKey == "" {
		writeError(w, http.StatusUnauthorized, msgKeyMissing)
		return
	}

	model, err := s.settings.SelectedModel(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		s.logger.Error("load selected model failed", "error", err)
		return
	}

	verdict, err := s.newClassifier(apiKey, model.ID).Classify(r.Context(), req.Food)
	if err != nil {
		status, msg := aiErrorResponse(err, model)
		writeError(w, status, msg)
		s.logger.Error("food classification failed", "food", req.Food, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}
