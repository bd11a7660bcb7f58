package router

import (
	"encoding/json"
	"strings"
)

// AdaptRaw extracts the user text from an ingress body. It accepts an object
// with an input string, the same object nested under input, a bare JSON
// string, or raw text.
func AdaptRaw(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return trimmed
	}
	return inputFrom(decoded, trimmed)
}

func inputFrom(v any, raw string) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		inner, ok := val["input"]
		if !ok {
			return raw
		}
		switch in := inner.(type) {
		case string:
			return in
		case map[string]any:
			if s, ok := in["input"].(string); ok {
				return s
			}
		}
		encoded, err := json.Marshal(inner)
		if err != nil {
			return raw
		}
		return string(encoded)
	default:
		return raw
	}
}
