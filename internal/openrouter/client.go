package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

// defaultTemperature keeps sampling variance low so the model sticks to the
// requested JSON schema.
const defaultTemperature = 0.2

// DefaultRequestInterval is the default token-bucket refill interval. One
// request per 300ms matches the pacing the service tolerates for batch
// classification.
const DefaultRequestInterval = 300 * time.Millisecond

// Message is one role/content pair in a chat-completion request. Content is
// either a plain string or, for vision calls, a list of ContentParts.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// UserMessage builds a plain-text user message.
func UserMessage(text string) Message {
	return Message{Role: "user", Content: text}
}

// VisionMessage builds a user message combining a text prompt with an
// embedded image data URI.
func VisionMessage(prompt, imageDataURI string) Message {
	return Message{
		Role: "user",
		Content: []ContentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &ImageURL{URL: imageDataURI}},
		},
	}
}

// request mirrors the OpenRouter chat-completions body.
type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client is a minimal OpenRouter chat-completions client. Requests are
// shaped by a shared token bucket so batch callers cannot overwhelm the
// remote service.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	temperature float64
}

type Option func(*Client)

// WithBaseURL overrides the endpoint URL. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLimiter replaces the request-shaping token bucket. Pass nil to
// disable shaping entirely.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		httpClient:  &http.Client{},
		limiter:     rate.NewLimiter(rate.Every(DefaultRequestInterval), 1),
		temperature: defaultTemperature,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChatCompletion sends one chat-completion request and returns the first
// choice's message content. Non-2xx responses become *APIError; a broken
// envelope becomes *ParseError.
func (c *Client) ChatCompletion(ctx context.Context, model string, messages []Message) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	payload, err := json.Marshal(request{
		Model:       model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call openrouter: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close openrouter response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{StatusCode: resp.StatusCode, Detail: string(body)}
	}

	var envelope response
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", &ParseError{Stage: "envelope", Raw: string(body), Err: err}
	}
	if len(envelope.Choices) == 0 {
		return "", &ParseError{Stage: "envelope", Raw: string(body), Err: fmt.Errorf("no choices in response")}
	}

	return envelope.Choices[0].Message.Content, nil
}
