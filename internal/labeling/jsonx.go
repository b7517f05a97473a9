package labeling

import (
	"encoding/json"
	"strings"
)

// extractJSON pulls a JSON object or array out of LLM output that may be
// wrapped in markdown fences or surrounded by prose.
func extractJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	if first := strings.IndexAny(cleaned, "{["); first > 0 {
		cleaned = cleaned[first:]
	}

	last := strings.LastIndexAny(cleaned, "}]")
	if last > 0 && last < len(cleaned)-1 {
		cleaned = cleaned[:last+1]
	}

	return cleaned
}

// decodeJSON extracts and unmarshals in one step.
func decodeJSON(raw string, dest interface{}) error {
	return json.Unmarshal([]byte(extractJSON(raw)), dest)
}
