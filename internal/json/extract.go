// Package json recovers tool-call arguments from model output.
//
// Models usually send a clean JSON object, but some wrap it in markdown
// fences, surround it with prose, or encode it twice as a JSON string.
package json

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeObject parses raw as a JSON object. Blank input decodes to an
// empty map. Fenced, embedded and string-encoded objects are accepted.
func DecodeObject(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return map[string]any{}, nil
	}

	if obj, ok := asObject(trimmed); ok {
		return obj, nil
	}

	// "{\"path\":\"a.txt\"}"
	var inner string
	if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
		if obj, ok := asObject(strings.TrimSpace(inner)); ok {
			return obj, nil
		}
	}

	extracted, err := ExtractJSON(trimmed)
	if err != nil {
		return nil, err
	}
	obj, ok := asObject(extracted)
	if !ok {
		return nil, fmt.Errorf("arguments are not a JSON object: %s", preview(trimmed))
	}
	return obj, nil
}

// ExtractJSON returns the JSON object embedded in text, after stripping
// markdown code fences. The object is located by its outermost braces.
func ExtractJSON(text string) (string, error) {
	text = stripCodeFence(text)

	if json.Valid([]byte(text)) {
		return text, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("failed to extract valid JSON: %s", preview(text))
}

func asObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// stripCodeFence removes a leading ``` or ```json line and a trailing ```.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

func preview(s string) string {
	if len(s) > 100 {
		return fmt.Sprintf("%q...", s[:100])
	}
	return fmt.Sprintf("%q", s)
}
