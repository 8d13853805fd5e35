package foodquery

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gotacheck/internal/domain"
	"gotacheck/internal/openrouter"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func verdictEnvelope(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestServiceClassify(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "openai/gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 1)
		gotPrompt = req.Messages[0].Content

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(verdictEnvelope(
			"```json\n{\"nivel\":\"rojo\",\"categoria\":\"Evitar\",\"razon\":\"Muy alto\",\"purinas\":410}\n```",
		)))
	}))
	defer server.Close()

	client := openrouter.NewClient("sk-or-test", openrouter.WithBaseURL(server.URL), openrouter.WithLimiter(nil))
	svc := NewService(client, "openai/gpt-4o-mini", discardLogger())

	verdict, err := svc.Classify(context.Background(), "Anchoas")
	require.NoError(t, err)

	assert.Equal(t, domain.LevelAvoid, verdict.Level)
	assert.Equal(t, 410, verdict.Purines)
	assert.True(t, strings.HasSuffix(gotPrompt, "CONSULTA DEL PACIENTE: Anchoas"))
}

func TestServiceClassifyEmptyFood(t *testing.T) {
	client := openrouter.NewClient("sk-or-test", openrouter.WithLimiter(nil))
	svc := NewService(client, "openai/gpt-4o-mini", discardLogger())

	_, err := svc.Classify(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestServiceClassifyTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient credits", http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := openrouter.NewClient("sk-or-test", openrouter.WithBaseURL(server.URL), openrouter.WithLimiter(nil))
	svc := NewService(client, "openai/gpt-4o-mini", discardLogger())

	_, err := svc.Classify(context.Background(), "Pollo")
	require.Error(t, err)
	assert.ErrorIs(t, err, openrouter.ErrInsufficientCredits)
}

func TestServiceClassifyBadVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(verdictEnvelope(`{"nivel":"verde"}`)))
	}))
	defer server.Close()

	client := openrouter.NewClient("sk-or-test", openrouter.WithBaseURL(server.URL), openrouter.WithLimiter(nil))
	svc := NewService(client, "openai/gpt-4o-mini", discardLogger())

	_, err := svc.Classify(context.Background(), "Pollo")
	require.Error(t, err)

	var parseErr *openrouter.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "verdict", parseErr.Stage)
}
