package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The oracle's reply must conform to this schema before it is trusted.
// Anything else is a gateway failure, not an engine input.
const judgmentSchema = `{
	"type": "object",
	"properties": {
		"happiness": {"type": "number", "minimum": 0, "maximum": 1},
		"summaryStatement": {"type": "string", "minLength": 1},
		"directResponse": {"type": "string", "minLength": 1},
		"preferredPackage": {"type": "string"}
	},
	"required": ["happiness", "summaryStatement", "directResponse"],
	"additionalProperties": true
}`

var compiledSchema = jsonschema.MustCompileString("judgment.json", judgmentSchema)

// ParseJudgment validates raw model output against the judgment schema and
// decodes it. Model replies are sometimes wrapped in markdown fences, so
// the JSON object is extracted first.
func ParseJudgment(raw string) (*Judgment, error) {
	body := extractJSON(raw)
	if body == "" {
		return nil, fmt.Errorf("empty oracle output")
	}
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, fmt.Errorf("malformed oracle output: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("non-conforming oracle output: %w", err)
	}
	var j Judgment
	if err := json.Unmarshal([]byte(body), &j); err != nil {
		return nil, fmt.Errorf("malformed oracle output: %w", err)
	}
	return &j, nil
}

// extractJSON returns the outermost {...} object in s, tolerating code
// fences and prose around it.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
