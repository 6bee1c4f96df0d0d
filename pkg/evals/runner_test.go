package evals_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-promptgen/internal/prompt/loader"
	"github.com/goliatone/go-promptgen/pkg/evals"
	"github.com/goliatone/go-promptgen/pkg/prompt"
	"github.com/goliatone/go-promptgen/pkg/provider"
)

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "case.prompt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func fileRunner(t *testing.T, options ...evals.Option) *evals.Runner {
	t.Helper()
	options = append([]evals.Option{
		evals.WithLoader(loader.New(prompt.NewLoaderOptions())),
	}, options...)
	return evals.New(options...)
}

func TestRunPassingSuite(t *testing.T) {
	path := writeTemplate(t, "Hello {{ name }}!")

	report, err := fileRunner(t).Run(context.Background(), evals.Suite{
		Template: path,
		Cases: []evals.Case{
			{
				Name: "greets by name",
				Vars: map[string]any{"name": "Ada"},
				Assertions: []evals.Assertion{
					{Type: evals.AssertContains, Value: "Hello Ada"},
					{Type: evals.AssertNotContains, Value: "Bob"},
				},
			},
		},
	})
	require.NoError(t, err)
	assert.True(t, report.Passed())
	require.Len(t, report.Results, 1)
	assert.Empty(t, report.Results[0].Failures)
}

func TestRunReportsAssertionFailure(t *testing.T) {
	path := writeTemplate(t, "Hello {{ name }}!")

	report, err := fileRunner(t).Run(context.Background(), evals.Suite{
		Template: path,
		Cases: []evals.Case{
			{
				Name: "wrong expectation",
				Vars: map[string]any{"name": "Ada"},
				Assertions: []evals.Assertion{
					{Type: evals.AssertContains, Value: "Goodbye"},
				},
			},
		},
	})
	require.NoError(t, err)
	assert.False(t, report.Passed())
	require.Len(t, report.Results, 1)
	require.Len(t, report.Results[0].Failures, 1)
	assert.Contains(t, report.Results[0].Failures[0], "Goodbye")
}

func TestRunChecksConstraintWords(t *testing.T) {
	path := writeTemplate(t, "Summarize this. {% must_include_each words %}")

	// The static provider replies with fixed text missing one required word.
	runner := fileRunner(t, evals.WithFallbackProvider(provider.Static{
		Reply: "The summary mentions apples only.",
	}))

	report, err := runner.Run(context.Background(), evals.Suite{
		Template: path,
		Cases: []evals.Case{
			{
				Name: "requires both words",
				Vars: map[string]any{"words": []any{"apples", "pears"}},
			},
		},
	})
	require.NoError(t, err)
	assert.False(t, report.Passed())
	require.Len(t, report.Results[0].Failures, 1)
	assert.Contains(t, report.Results[0].Failures[0], `"pears"`)
}

func TestRunConstraintWordsCaseInsensitive(t *testing.T) {
	path := writeTemplate(t, "{% must_include_each \"Apples, Pears\" %}")

	runner := fileRunner(t, evals.WithFallbackProvider(provider.Static{
		Reply: "apples and PEARS are in season",
	}))

	report, err := runner.Run(context.Background(), evals.Suite{
		Template: path,
		Cases:    []evals.Case{{Name: "case folds"}},
	})
	require.NoError(t, err)
	assert.True(t, report.Passed())
}

func TestRunSendsPromptSection(t *testing.T) {
	path := writeTemplate(t, `{% section system %}Be terse.{% endsection %}
{% section prompt %}Say hi to {{ name }}.{% endsection %}
This trailing text is not part of any section.`)

	var got provider.Request
	runner := fileRunner(t, evals.WithFallbackProvider(captureProvider{&got}))

	report, err := runner.Run(context.Background(), evals.Suite{
		Template: path,
		Cases: []evals.Case{
			{Name: "sections routed", Vars: map[string]any{"name": "Ada"}},
		},
	})
	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.Equal(t, "Be terse.", got.System)
	assert.Equal(t, "Say hi to Ada.", got.Prompt)
}

func TestRunJoinsSectionsWithoutPrompt(t *testing.T) {
	path := writeTemplate(t, `{% section b %}second{% endsection %}{% section a %}first{% endsection %}`)

	var got provider.Request
	runner := fileRunner(t, evals.WithFallbackProvider(captureProvider{&got}))

	_, err := runner.Run(context.Background(), evals.Suite{
		Template: path,
		Cases:    []evals.Case{{Name: "join order"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "first\n\nsecond", got.Prompt)
}

func TestRunRequiredVariableFailsCase(t *testing.T) {
	path := writeTemplate(t, `---
variables:
  - name: topic
    type: string
    required: true
---
Write about {{ topic }}.`)

	report, err := fileRunner(t).Run(context.Background(), evals.Suite{
		Template: path,
		Cases:    []evals.Case{{Name: "missing topic"}},
	})
	require.NoError(t, err)
	assert.False(t, report.Passed())
	assert.Contains(t, report.Results[0].Failures[0], "topic")
}

func TestRunMissingTemplate(t *testing.T) {
	_, err := fileRunner(t).Run(context.Background(), evals.Suite{
		Template: filepath.Join(t.TempDir(), "absent.prompt"),
	})
	require.Error(t, err)
}

func TestRunNamedProviderRequiresRegistry(t *testing.T) {
	path := writeTemplate(t, "hello")

	_, err := fileRunner(t).Run(context.Background(), evals.Suite{
		Template: path,
		Provider: "openai",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no registry")
}

func TestRunResolvesNamedProvider(t *testing.T) {
	path := writeTemplate(t, "hello")

	registry := provider.NewRegistry()
	registry.MustRegister(provider.Static{Reply: "from registry"})

	runner := fileRunner(t, evals.WithRegistry(registry))
	report, err := runner.Run(context.Background(), evals.Suite{
		Template: path,
		Provider: "static",
		Cases: []evals.Case{
			{
				Name: "uses registered provider",
				Assertions: []evals.Assertion{
					{Type: evals.AssertContains, Value: "from registry"},
				},
			},
		},
	})
	require.NoError(t, err)
	assert.True(t, report.Passed())
}

func TestRunProviderErrorFailsCase(t *testing.T) {
	path := writeTemplate(t, "hello")

	runner := fileRunner(t, evals.WithFallbackProvider(failingProvider{}))
	report, err := runner.Run(context.Background(), evals.Suite{
		Template: path,
		Cases:    []evals.Case{{Name: "provider down"}},
	})
	require.NoError(t, err)
	assert.False(t, report.Passed())
	assert.Contains(t, report.Results[0].Failures[0], "complete")
}

type captureProvider struct {
	req *provider.Request
}

func (c captureProvider) Name() string { return "capture" }

func (c captureProvider) Complete(_ context.Context, req provider.Request) (*provider.Response, error) {
	*c.req = req
	return &provider.Response{Text: req.Prompt, Model: "capture"}, nil
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }

func (failingProvider) Complete(context.Context, provider.Request) (*provider.Response, error) {
	return nil, errors.New("backend unavailable")
}
