package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// extraction is the JSON object the model is instructed to emit.
type extraction struct {
	Parts    []string `json:"parts"`
	Pickup   string   `json:"pickup"`
	Dropoff  string   `json:"dropoff"`
	Deadline string   `json:"deadline"`
}

// stripCodeFences removes a surrounding markdown code fence if the model
// wrapped its output in one despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop an optional language tag ("json") on the opening fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "json" || first == "" {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseExtraction decodes the model output leniently: fences stripped, unknown
// keys dropped and logged, string values trimmed. Malformed JSON is a hard
// failure for the turn; there is no silent fallback.
func parseExtraction(raw string, logger *slog.Logger) (extraction, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cleaned := stripCodeFences(raw)

	var m map[string]any
	if err := json.Unmarshal([]byte(cleaned), &m); err != nil {
		return extraction{}, fmt.Errorf("parse extraction JSON: %w", err)
	}

	allowed := map[string]struct{}{
		"parts": {}, "pickup": {}, "dropoff": {}, "deadline": {},
	}
	var dropped []string
	for k := range m {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k)
		}
	}
	if len(dropped) > 0 {
		logger.Warn("extract.sanitize", "dropped_keys", dropped)
	}

	var out extraction
	if v, ok := m["parts"].([]any); ok {
		for _, p := range v {
			if s, ok := p.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out.Parts = append(out.Parts, s)
				}
			}
		}
	}
	out.Pickup = trimmedString(m["pickup"])
	out.Dropoff = trimmedString(m["dropoff"])
	out.Deadline = trimmedString(m["deadline"])
	return out, nil
}

func trimmedString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
