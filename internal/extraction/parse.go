package extraction

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// CleanResponse strips code fences and returns the text between the first
// '{' and the last '}'. It returns an empty string when no object is present.
func CleanResponse(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.Contains(text[:nl], "{") {
			text = text[nl+1:]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end < start {
		return ""
	}

	return strings.TrimSpace(text[start : end+1])
}

// ParseObject extracts a single top-level JSON object from generator output.
func ParseObject(raw string) (map[string]any, error) {
	cleaned := CleanResponse(raw)
	if cleaned == "" {
		return nil, invalid("no JSON object found")
	}

	if !gjson.Valid(cleaned) {
		return nil, invalid("malformed JSON")
	}

	if !gjson.Parse(cleaned).IsObject() {
		return nil, invalid("top-level value is not an object")
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, invalid("decode JSON: %v", err)
	}

	return doc, nil
}
