package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// ResolveVariables checks required presence, validates supplied values
// against their declared types, and merges declared defaults into a fresh
// binding map ready for rendering. The input map is never mutated.
func (t Template) ResolveVariables(vars map[string]any) (map[string]any, error) {
	merged := make(map[string]any, len(vars)+len(t.Variables))
	for name, value := range vars {
		merged[name] = value
	}

	for _, def := range t.Variables {
		value, present := merged[def.Name]
		if !present {
			if def.Default != nil {
				merged[def.Name] = def.Default
				continue
			}
			if def.Required {
				return nil, fmt.Errorf("prompt: template %q: required variable %q missing", t.Name, def.Name)
			}
			continue
		}
		if err := validateValue(def, value); err != nil {
			return nil, fmt.Errorf("prompt: template %q: variable %q: %w", t.Name, def.Name, err)
		}
	}
	return merged, nil
}

func validateValue(def VariableDefinition, value any) error {
	schema := schemaFor(def)
	if schema == nil {
		return nil
	}

	normalized, err := jsonNormalize(value)
	if err != nil {
		return err
	}
	return schema.VisitJSON(normalized)
}

// schemaFor maps a declared variable type onto an OpenAPI schema used for
// value validation. Untyped declarations skip type validation.
func schemaFor(def VariableDefinition) *openapi3.Schema {
	switch def.Type {
	case TypeString:
		return openapi3.NewStringSchema()
	case TypeNumber:
		return openapi3.NewFloat64Schema()
	case TypeBoolean:
		return openapi3.NewBoolSchema()
	case TypeArray:
		return openapi3.NewArraySchema()
	case TypeObject:
		return openapi3.NewObjectSchema()
	default:
		return nil
	}
}

// jsonNormalize folds arbitrary Go values into their JSON shape so schema
// validation sees the same types a decoded document would.
func jsonNormalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
