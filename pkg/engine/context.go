package engine

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// buildContext normalizes an arbitrary JSON-like binding map into a pongo2
// context. Struct values round-trip through encoding/json so templates can
// address their fields with plain map semantics. The reserved metadata
// identifier is dropped from caller input.
func buildContext(vars map[string]any) (pongo2.Context, error) {
	out := make(pongo2.Context, len(vars)+1)
	for key, value := range vars {
		key = strings.TrimSpace(key)
		if key == "" || key == metaContextVar {
			continue
		}
		converted, err := normalizeValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	case map[string]any:
		return normalizeMap(v)
	case []any:
		return normalizeSlice(v)
	}
	if isCallable(value) {
		return value, nil
	}

	raw, err := jsonRoundTrip(value)
	if err != nil {
		return nil, err
	}
	switch decoded := raw.(type) {
	case map[string]any:
		return normalizeMap(decoded)
	case []any:
		return normalizeSlice(decoded)
	default:
		return decoded, nil
	}
}

func normalizeMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := normalizeValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func normalizeSlice(in []any) ([]any, error) {
	out := make([]any, 0, len(in))
	for _, value := range in {
		converted, err := normalizeValue(value)
		if err != nil {
			return nil, err
		}
		out = append(out, converted)
	}
	return out, nil
}

func jsonRoundTrip(v any) (any, error) {
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

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}
