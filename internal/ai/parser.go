package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON extracts the first complete JSON object from a string that may
// contain extra text. Models add explanations before/after the JSON despite
// instructions, and wrap it in markdown fences.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return text // no JSON found, let the parser fail with the raw text
	}

	braceCount := 0
	inString := false
	escape := false
	for i := start; i < len(text); i++ {
		char := text[i]
		if escape {
			escape = false
			continue
		}
		if char == '\\' {
			escape = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch char {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				return text[start : i+1]
			}
		}
	}
	return text[start:]
}

// parseResponse extracts and unmarshals the model's JSON payload into out.
func parseResponse(raw string, out any) error {
	payload := extractJSON(raw)
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("malformed model response: %w", err)
	}
	return nil
}
