// Package promptgen renders LLM prompt templates: directive-driven text
// generation with section capture, constraint records, declared-variable
// validation, and pluggable completion providers for evaluation runs.
package promptgen

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-promptgen/pkg/engine"
)

// Re-exported engine types so simple consumers only import the root package.
type (
	// Engine parses and renders prompt templates.
	Engine = engine.Engine
	// Result is a render outcome with captured sections and constraints.
	Result = engine.Result
	// Constraint records a requirement a template placed on the completion.
	Constraint = engine.Constraint
	// FilterFunc is the signature for custom filters.
	FilterFunc = engine.FilterFunc
	// DirectiveFunc is the signature for custom inline directives.
	DirectiveFunc = engine.DirectiveFunc
)

// WithFilter and WithDirective configure an Engine at construction.
var (
	WithFilter    = engine.WithFilter
	WithDirective = engine.WithDirective
)

// NewEngine constructs a render engine with the full built-in set plus a
// striphtml filter that removes markup from interpolated values before they
// reach a prompt.
func NewEngine(options ...engine.Option) *Engine {
	policy := bluemonday.StrictPolicy()
	striphtml := func(in any, _ any) (any, error) {
		s, ok := in.(string)
		if !ok {
			return in, nil
		}
		return policy.Sanitize(s), nil
	}
	options = append([]engine.Option{
		engine.WithFilter("striphtml", striphtml),
	}, options...)
	return engine.New(options...)
}
