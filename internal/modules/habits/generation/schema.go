package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const outputSchemaURL = "https://northstar.schemas.local/habits/generation.schema.json"

// Strict shape accepted from the gateway before persistence.
const outputSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["habits"],
  "properties": {
    "habits": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "description", "category", "phase", "frequency", "priority"],
        "properties": {
          "title": {"type": "string"},
          "description": {"type": "string"},
          "category": {"enum": ["foundational", "goal-specific", "barrier-targeting"]},
          "phase": {"type": "integer", "minimum": 1, "maximum": 4},
          "frequency": {"type": "string"},
          "duration": {"type": "number"},
          "priority": {"type": "integer"}
        }
      }
    }
  }
}`

// Validator checks gateway output against the strict schema.
type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(outputSchemaURL, strings.NewReader(outputSchema)); err != nil {
		return nil, fmt.Errorf("generation schema load failed: %w", err)
	}
	compiled, err := c.Compile(outputSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("generation schema compile failed: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

func (v *Validator) Validate(res Result) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode generation result: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode generation result: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("generation result failed schema validation: %w", err)
	}
	return nil
}
