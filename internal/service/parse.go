package service

import (
	"encoding/json"
	"strings"
)

// structuredAnswer is the JSON contract the system prompt asks the model to
// honor. Fields may be absent or mistyped; parsing is best-effort.
type structuredAnswer struct {
	Answer      string   `json:"answer"`
	Suggestions []string `json:"suggestions"`
	Confidence  float32  `json:"confidence"`
	Sources     int      `json:"sources"`
}

// parseStructured leniently extracts the JSON contract from model output.
// Code-fence markers are stripped first since models routinely wrap JSON in
// them despite instructions. Returns ok=false on anything unparseable; it
// never panics or propagates an error.
func parseStructured(raw string) (structuredAnswer, bool) {
	cleaned := stripCodeFences(raw)

	// Models sometimes prepend prose before the object; cut to the first brace.
	if idx := strings.Index(cleaned, "{"); idx > 0 {
		cleaned = cleaned[idx:]
	}
	if end := strings.LastIndex(cleaned, "}"); end >= 0 {
		cleaned = cleaned[:end+1]
	}

	var parsed structuredAnswer
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return structuredAnswer{}, false
	}
	if strings.TrimSpace(parsed.Answer) == "" {
		return structuredAnswer{}, false
	}
	parsed.Answer = strings.TrimSpace(parsed.Answer)
	return parsed, true
}

func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}
