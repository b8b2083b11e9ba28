package translate

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// wireSchema describes the response of one batch: an object keyed by
// locale whose value holds exactly the requested keys, each a string.
func wireSchema(locale string, keys []string) map[string]any {
	props := make(map[string]any, len(keys))
	required := make([]string, 0, len(keys))
	for _, k := range keys {
		props[k] = map[string]any{"type": "string"}
		required = append(required, k)
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			locale: map[string]any{
				"type":                 "object",
				"properties":           props,
				"required":             required,
				"additionalProperties": false,
			},
		},
		"required":             []string{locale},
		"additionalProperties": false,
	}
}

// resolveSchema turns a wire schema into a validator.
func resolveSchema(wire map[string]any) (*jsonschema.Resolved, error) {
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	return s.Resolve(nil)
}
