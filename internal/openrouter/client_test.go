package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient("sk-or-test", WithBaseURL(url), WithLimiter(nil))
}

func envelope(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestChatCompletion(t *testing.T) {
	var gotBody request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-or-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(envelope(`{"ok":true}`)))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	content, err := client.ChatCompletion(context.Background(), "openai/gpt-4o-mini", []Message{
		UserMessage("hola"),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, content)

	assert.Equal(t, "openai/gpt-4o-mini", gotBody.Model)
	assert.InDelta(t, 0.2, gotBody.Temperature, 0.001)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "user", gotBody.Messages[0].Role)
}

func TestChatCompletionVisionPayload(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(envelope(`{}`)))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ChatCompletion(context.Background(), "openai/gpt-4o-mini", []Message{
		VisionMessage("¿es una carta?", "data:image/jpeg;base64,AAAA"),
	})
	require.NoError(t, err)

	messages := raw["messages"].([]any)
	require.Len(t, messages, 1)
	parts := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].(map[string]any)["type"])
	assert.Equal(t, "image_url", parts[1].(map[string]any)["type"])
	imageURL := parts[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", imageURL["url"])
}

func TestChatCompletionStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{name: "invalid key", status: http.StatusUnauthorized, sentinel: ErrInvalidAPIKey},
		{name: "no credits", status: http.StatusPaymentRequired, sentinel: ErrInsufficientCredits},
		{name: "model forbidden", status: http.StatusForbidden, sentinel: ErrModelForbidden},
		{name: "rate limited", status: http.StatusTooManyRequests, sentinel: ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream error detail", tt.status)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			_, err := client.ChatCompletion(context.Background(), "m", []Message{UserMessage("x")})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Contains(t, apiErr.Detail, "upstream error detail")
		})
	}
}

func TestChatCompletionGenericServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ChatCompletion(context.Background(), "m", []Message{UserMessage("x")})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.False(t, errors.Is(err, ErrInvalidAPIKey))
	assert.False(t, errors.Is(err, ErrRateLimited))
}

func TestChatCompletionNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ChatCompletion(context.Background(), "m", []Message{UserMessage("x")})
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "envelope", parseErr.Stage)
}

func TestChatCompletionMalformedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.ChatCompletion(context.Background(), "m", []Message{UserMessage("x")})
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "envelope", parseErr.Stage)
	assert.Equal(t, "not json at all", parseErr.Raw)
}

func TestChatCompletionContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(server.URL)
	_, err := client.ChatCompletion(ctx, "m", []Message{UserMessage("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
