package engine

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"
)

// FilterFunc is the extension contract for filters: it receives the piped
// value plus the optional literal argument and returns the transformed value.
// Returning an error aborts the render, so extensions should follow the
// built-in convention of coercing or passing through unexpected input.
type FilterFunc func(in any, param any) (any, error)

// RegisterFilter adds a named filter, effective for all subsequent parses.
// Registering a name that collides with a built-in overrides it.
func (e *Engine) RegisterFilter(name string, fn FilterFunc) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("engine: filter name and function required")
	}

	wrapped := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		out, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(out), nil
	}
	return registerFilter(name, wrapped)
}

func registerFilter(name string, fn pongo2.FilterFunction) error {
	if pongo2.FilterExists(name) {
		return pongo2.ReplaceFilter(name, fn)
	}
	return pongo2.RegisterFilter(name, fn)
}

// The built-in set replaces pongo2's same-named filters so the lenient
// total-function semantics hold everywhere.
func registerBuiltinFilters() {
	builtins := map[string]pongo2.FilterFunction{
		"default": filterDefault,
		"join":    filterJoin,
		"uniq":    filterUniq,
		"length":  filterLength,
		"lower":   filterLower,
		"upper":   filterUpper,
		"compact": filterCompact,
		"sort":    filterSort,
	}
	for name, fn := range builtins {
		_ = registerFilter(name, fn)
	}
}

// default substitutes the fallback for undefined, nil, or empty-string input.
// Zero and false count as present and pass through.
func filterDefault(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNil() || (in.IsString() && in.String() == "") {
		return param, nil
	}
	return in, nil
}

func filterJoin(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	sep := ", "
	if param != nil && !param.IsNil() {
		sep = param.String()
	}

	items, ok := elements(in.Interface())
	if !ok {
		return pongo2.AsValue(stringify(in.Interface())), nil
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = stringify(item)
	}
	return pongo2.AsValue(strings.Join(parts, sep)), nil
}

func filterUniq(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	items, ok := elements(in.Interface())
	if !ok {
		return in, nil
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]any, 0, len(items))
	for _, item := range items {
		key := fmt.Sprintf("%T|%v", item, item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return pongo2.AsValue(out), nil
}

func filterLength(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	iv := in.Interface()
	if iv == nil {
		return pongo2.AsValue(0), nil
	}
	rv := reflect.ValueOf(iv)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return pongo2.AsValue(rv.Len()), nil
	case reflect.String:
		return pongo2.AsValue(utf8.RuneCountInString(rv.String())), nil
	}
	return pongo2.AsValue(0), nil
}

func filterLower(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.ToLower(stringify(in.Interface()))), nil
}

func filterUpper(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.ToUpper(stringify(in.Interface()))), nil
}

// compact drops falsy elements (nil, false, zero, empty string/sequence).
func filterCompact(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	items, ok := elements(in.Interface())
	if !ok {
		return in, nil
	}

	out := make([]any, 0, len(items))
	for _, item := range items {
		if pongo2.AsValue(item).IsTrue() {
			out = append(out, item)
		}
	}
	return pongo2.AsValue(out), nil
}

func filterSort(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	items, ok := elements(in.Interface())
	if !ok {
		return in, nil
	}

	out := make([]any, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return lessAny(out[i], out[j])
	})
	return pongo2.AsValue(out), nil
}

// elements unpacks sequence input. Strings and maps are not sequences here.
func elements(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// lessAny orders numbers numerically and everything else lexically by its
// stringified form.
func lessAny(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af < bf
	}
	return stringify(a) < stringify(b)
}
