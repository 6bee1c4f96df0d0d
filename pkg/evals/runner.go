package evals

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-promptgen/internal/ctxlog"
	"github.com/goliatone/go-promptgen/pkg/engine"
	"github.com/goliatone/go-promptgen/pkg/prompt"
	"github.com/goliatone/go-promptgen/pkg/provider"
)

// Runner executes suites: render the template per case, send the prompt to a
// completion provider, and evaluate the assertions plus any constraints the
// template recorded.
type Runner struct {
	engine   *engine.Engine
	loader   prompt.Loader
	registry *provider.Registry
	fallback provider.Provider
}

// Option configures a Runner.
type Option func(*Runner)

// WithEngine overrides the render engine.
func WithEngine(eng *engine.Engine) Option {
	return func(r *Runner) { r.engine = eng }
}

// WithLoader overrides the template loader.
func WithLoader(loader prompt.Loader) Option {
	return func(r *Runner) { r.loader = loader }
}

// WithRegistry supplies the named-provider registry consulted when a suite
// names its provider.
func WithRegistry(registry *provider.Registry) Option {
	return func(r *Runner) { r.registry = registry }
}

// WithFallbackProvider sets the provider used by suites that name none.
func WithFallbackProvider(p provider.Provider) Option {
	return func(r *Runner) { r.fallback = p }
}

// New constructs a Runner. Without options it renders with a fresh engine and
// completes against the static echo provider.
func New(options ...Option) *Runner {
	r := &Runner{
		engine:   engine.New(),
		fallback: provider.Static{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name     string
	Passed   bool
	Failures []string
}

// Report aggregates one suite run.
type Report struct {
	Suite   string
	Results []CaseResult
}

// Passed reports whether every case passed.
func (r *Report) Passed() bool {
	for _, result := range r.Results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// Run loads the suite's template and executes every case in order.
func (r *Runner) Run(ctx context.Context, suite Suite) (*Report, error) {
	log := ctxlog.FromContext(ctx)

	if r.loader == nil {
		return nil, errors.New("evals: runner has no template loader")
	}
	tpl, err := r.loader.Load(ctx, prompt.SourceFromFile(suite.Template))
	if err != nil {
		return nil, fmt.Errorf("evals: load template %q: %w", suite.Template, err)
	}

	prov, err := r.provider(suite.Provider)
	if err != nil {
		return nil, err
	}

	report := &Report{Suite: suite.Template}
	for _, tc := range suite.Cases {
		result := r.runCase(ctx, tpl, prov, tc)
		log.Info("eval case finished",
			"suite", suite.Template,
			"case", tc.Name,
			"passed", result.Passed,
			"failures", len(result.Failures))
		report.Results = append(report.Results, result)
	}
	return report, nil
}

func (r *Runner) provider(name string) (provider.Provider, error) {
	if name == "" {
		if r.fallback == nil {
			return nil, errors.New("evals: no provider configured")
		}
		return r.fallback, nil
	}
	if r.registry == nil {
		return nil, fmt.Errorf("evals: suite names provider %q but no registry is configured", name)
	}
	return r.registry.Get(name)
}

func (r *Runner) runCase(ctx context.Context, tpl prompt.Template, prov provider.Provider, tc Case) CaseResult {
	result := CaseResult{Name: tc.Name}
	fail := func(format string, args ...any) {
		result.Failures = append(result.Failures, fmt.Sprintf(format, args...))
	}

	vars, err := tpl.ResolveVariables(tc.Vars)
	if err != nil {
		fail("resolve variables: %v", err)
		return result
	}

	res, err := r.engine.RenderWithMeta(tpl.Content, vars)
	if err != nil {
		fail("render: %v", err)
		return result
	}

	resp, err := prov.Complete(ctx, provider.Request{
		System: res.Sections["system"],
		Prompt: promptTextFrom(res),
	})
	if err != nil {
		fail("complete: %v", err)
		return result
	}

	completion := resp.Text
	for _, assertion := range tc.Assertions {
		switch assertion.Type {
		case AssertContains:
			if !strings.Contains(completion, assertion.Value) {
				fail("expected completion to contain %q", assertion.Value)
			}
		case AssertNotContains:
			if strings.Contains(completion, assertion.Value) {
				fail("expected completion to not contain %q", assertion.Value)
			}
		}
	}

	lowered := strings.ToLower(completion)
	for _, c := range res.Constraints {
		if c.Type != engine.ConstraintMustIncludeEach {
			continue
		}
		for _, word := range c.Words {
			if !strings.Contains(lowered, strings.ToLower(word)) {
				fail("constraint word %q missing from completion", word)
			}
		}
	}

	result.Passed = len(result.Failures) == 0
	return result
}

// promptTextFrom picks the text sent to the provider: the prompt section when
// captured, else every section value joined in name order, else the trimmed
// primary output.
func promptTextFrom(res engine.Result) string {
	if text, ok := res.Sections["prompt"]; ok {
		return text
	}
	if len(res.Sections) > 0 {
		names := make([]string, 0, len(res.Sections))
		for name := range res.Sections {
			names = append(names, name)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, res.Sections[name])
		}
		return strings.Join(parts, "\n\n")
	}
	return strings.TrimSpace(res.Text)
}
