package openrouter

import (
	"encoding/json"
	"strings"
)

// CleanContent strips the markdown code fences models habitually wrap JSON
// in (``` with an optional json language tag) and trims surrounding
// whitespace. Content without fences passes through unchanged apart from
// trimming.
func CleanContent(content string) string {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}

// ParseJSON cleans model output and decodes it into T. Failures are
// reported as *ParseError tagged with the stage that produced the content.
func ParseJSON[T any](stage, content string) (T, error) {
	var out T
	if err := json.Unmarshal([]byte(CleanContent(content)), &out); err != nil {
		return out, &ParseError{Stage: stage, Raw: content, Err: err}
	}
	return out, nil
}
