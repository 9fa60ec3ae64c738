package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const snippetRunes = 120

// DecodeJSON decodes model output into target. Output wrapped in a markdown
// fence or surrounded by prose is reduced to its outermost JSON value first.
func DecodeJSON(text string, target any) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("model returned no text")
	}

	err := json.Unmarshal([]byte(text), target)
	if err == nil {
		return nil
	}

	value, ok := extractJSON(text)
	if !ok || value == text {
		return fmt.Errorf("model output is not JSON: %w (output: %s)", err, snippet(text))
	}
	if err := json.Unmarshal([]byte(value), target); err != nil {
		return fmt.Errorf("model output is not valid JSON: %w (extracted: %s)", err, snippet(value))
	}
	return nil
}

// extractJSON returns the text between the first opening brace or bracket and
// the last matching closer, after dropping fence lines.
func extractJSON(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	body := strings.TrimSpace(strings.Join(kept, "\n"))

	start := strings.IndexAny(body, "{[")
	if start < 0 {
		return "", false
	}
	closer := "}"
	if body[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(body, closer)
	if end <= start {
		return "", false
	}
	return body[start : end+1], true
}

// snippet flattens whitespace and truncates text for error messages
func snippet(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	if flat == "" {
		return "<empty>"
	}
	if runes := []rune(flat); len(runes) > snippetRunes {
		return string(runes[:snippetRunes]) + "…"
	}
	return flat
}
