package web

import (
	"encoding/json"
	"io"
	"net/http"

	"gotacheck/internal/domain"
	"gotacheck/internal/menuscan"
)

const maxPhotoSize = 50 * 1024 * 1024 // 50 MB

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP"
// at offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

func allowedImage(data []byte) bool {
	if isWebP(data) {
		return true
	}
	return allowedImageTypes[http.DetectContentType(data)]
}

// readMenuImage extracts and validates the uploaded photo from a multipart
// request. It writes the error response itself and returns nil on failure.
func (s *Server) readMenuImage(w http.ResponseWriter, r *http.Request) []byte {
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form")
		return nil
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file required")
		return nil
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.Error("failed to close upload file", "error", err)
		}
	}()

	imageData, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file")
		s.logger.Error("read upload failed", "error", err)
		return nil
	}

	if !allowedImage(imageData) {
		writeError(w, http.StatusBadRequest, "unsupported image format")
		return nil
	}
	return imageData
}

// menuSession loads the credential and model needed for one pipeline run.
// It writes the error response itself on failure.
func (s *Server) menuSession(w http.ResponseWriter, r *http.Request) (string, domain.AIModel, bool) {
	apiKey, err := s.settings.APIKey(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		s.logger.Error("load api key failed", "error", err)
		return "", domain.AIModel{}, false
	}
	if apiKey == "" {
		writeError(w, http.StatusUnauthorized, msgKeyMissing)
		return "", domain.AIModel{}, false
	}

	model, err := s.settings.SelectedModel(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		s.logger.Error("load selected model failed", "error", err)
		return "", domain.AIModel{}, false
	}
	return apiKey, model, true
}

func (s *Server) handleAnalyzeMenu(w http.ResponseWriter, r *http.Request) {
	if !s.menuMu.TryLock() {
		writeError(w, http.StatusConflict, "ya hay un análisis de carta en curso")
		return
	}
	defer s.menuMu.Unlock()

	imageData := s.readMenuImage(w, r)
	if imageData == nil {
		return
	}

	apiKey, model, ok := s.menuSession(w, r)
	if !ok {
		return
	}

	result, err := s.newAnalyzer(apiKey, model.ID).Analyze(r.Context(), imageData, nil)
	if err != nil {
		status, msg := aiErrorResponse(err, model)
		writeError(w, status, msg)
		s.logger.Error("menu analysis failed", "error", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAnalyzeMenuStream runs the same pipeline but responds with an SSE
// stream: one "progress" event per pipeline step, then a terminal "result"
// or "error" event.
func (s *Server) handleAnalyzeMenuStream(w http.ResponseWriter, r *http.Request) {
	if !s.menuMu.TryLock() {
		writeError(w, http.StatusConflict, "ya hay un análisis de carta en curso")
		return
	}
	defer s.menuMu.Unlock()

	imageData := s.readMenuImage(w, r)
	if imageData == nil {
		return
	}

	apiKey, model, ok := s.menuSession(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, canFlush := w.(http.Flusher)
	sendEvent := func(event string, v any) {
		data, err := json.Marshal(v)
		if err != nil {
			s.logger.Error("failed to marshal sse event", "event", event, "error", err)
			return
		}
		if _, err := w.Write([]byte("event: " + event + "\ndata: " + string(data) + "\n\n")); err != nil {
			return
		}
		if canFlush {
			flusher.Flush()
		}
	}

	result, err := s.newAnalyzer(apiKey, model.ID).Analyze(r.Context(), imageData, func(p menuscan.Progress) {
		sendEvent("progress", p)
	})
	if err != nil {
		_, msg := aiErrorResponse(err, model)
		sendEvent("error", map[string]string{"error": msg})
		s.logger.Error("menu analysis failed", "error", err)
		return
	}

	sendEvent("result", result)
}
