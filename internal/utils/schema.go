package utils

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// preferencesSchema describes the object a hosted provider must return.
// Every field may be absent or null; unknown fields are tolerated.
const preferencesSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "location":     {"type": ["string", "null"]},
    "budget":       {"type": ["number", "null"]},
    "minBudget":    {"type": ["number", "null"]},
    "maxBudget":    {"type": ["number", "null"]},
    "bedrooms":     {"type": ["number", "null"]},
    "minBedrooms":  {"type": ["number", "null"]},
    "maxBedrooms":  {"type": ["number", "null"]},
    "bathrooms":    {"type": ["number", "null"]},
    "propertyType": {"type": ["string", "null"]},
    "amenities":    {"type": ["array", "null"], "items": {"type": "string"}},
    "keywords":     {"type": ["array", "null"], "items": {"type": "string"}},
    "intent":       {"type": ["string", "null"]}
  }
}`

var compiledPreferencesSchema = jsonschema.MustCompileString("preferences.json", preferencesSchema)

// ValidatePreferencesPayload checks a recovered provider payload against the preferences schema
func ValidatePreferencesPayload(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := compiledPreferencesSchema.Validate(v); err != nil {
		return fmt.Errorf("payload does not match schema: %w", err)
	}
	return nil
}
