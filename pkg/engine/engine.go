// Package engine renders parameterized prompt templates. Templates use pongo2
// directive syntax ({{ ... }} expressions with filter chains, {% ... %} tags)
// extended with a prompt-oriented vocabulary: section capture, text capture,
// constraint recording, and a lenient filter set. A single render pass
// produces the primary text plus an out-of-band record of named sections and
// constraints.
//
// Parse results are cached per distinct template text. Every render call
// evaluates against a fresh context and metadata record, so one Engine is
// safe for any number of concurrent renders; the parsed trees and the
// registered filter/directive tables are the only shared state.
package engine

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Engine is the render driver.
type Engine struct {
	mu    sync.RWMutex
	set   *pongo2.TemplateSet
	cache map[string]*pongo2.Template
}

// Option configures an Engine during construction.
type Option func(*Engine)

// WithFilter registers a filter while constructing the engine. It panics on
// registration failure, which surfaces wiring mistakes at startup.
func WithFilter(name string, fn FilterFunc) Option {
	return func(e *Engine) {
		if err := e.RegisterFilter(name, fn); err != nil {
			panic(err)
		}
	}
}

// WithDirective registers an inline directive while constructing the engine.
// It panics on registration failure.
func WithDirective(name string, fn DirectiveFunc) Option {
	return func(e *Engine) {
		if err := e.RegisterDirective(name, fn); err != nil {
			panic(err)
		}
	}
}

// New constructs an Engine. The built-in directive and filter vocabulary is
// registered on first construction.
func New(options ...Option) *Engine {
	registerBuiltins()

	// NewSet requires a loader even though templates only ever arrive as
	// strings here.
	e := &Engine{
		set:   pongo2.NewSet("promptgen", pongo2.MustNewLocalFileSystemLoader("")),
		cache: make(map[string]*pongo2.Template),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Result is the outcome of a RenderWithMeta call. Sections is never nil and
// Constraints is never nil; both are empty when no capturing directive ran.
type Result struct {
	Text        string            `json:"text"`
	Sections    map[string]string `json:"sections"`
	Constraints []Constraint      `json:"constraints"`
}

// Render parses and evaluates templateText against vars, returning only the
// primary output. Side-channel metadata produced by the template is
// discarded.
func (e *Engine) Render(templateText string, vars map[string]any) (string, error) {
	res, err := e.RenderWithMeta(templateText, vars)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// RenderWithMeta parses and evaluates templateText against vars, returning
// the primary output together with captured sections and recorded
// constraints. Parse failures (malformed directives, unterminated blocks,
// unknown tag or filter names) abort the render; evaluation itself is
// lenient and degrades missing variables or mistyped filter input to
// sensible defaults.
func (e *Engine) RenderWithMeta(templateText string, vars map[string]any) (Result, error) {
	tpl, err := e.template(templateText)
	if err != nil {
		return Result{}, err
	}

	ctx, err := buildContext(vars)
	if err != nil {
		return Result{}, fmt.Errorf("engine: convert variables: %w", err)
	}

	meta := newMeta()
	ctx[metaContextVar] = meta

	var buf bytes.Buffer
	if err := tpl.ExecuteWriter(ctx, &buf); err != nil {
		return Result{}, fmt.Errorf("engine: execute template: %w", err)
	}

	return Result{
		Text:        buf.String(),
		Sections:    meta.sectionsCopy(),
		Constraints: meta.constraintsCopy(),
	}, nil
}

func (e *Engine) template(text string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tpl, ok := e.cache[text]; ok {
		e.mu.RUnlock()
		return tpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tpl, ok := e.cache[text]; ok {
		return tpl, nil
	}

	tpl, err := e.set.FromString(text)
	if err != nil {
		return nil, fmt.Errorf("engine: parse template: %w", err)
	}
	e.cache[text] = tpl
	return tpl, nil
}
