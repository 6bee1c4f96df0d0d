package engine_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-promptgen/pkg/engine"
)

func render(t *testing.T, tpl string, vars map[string]any) string {
	t.Helper()
	out, err := engine.New().Render(tpl, vars)
	require.NoError(t, err)
	return out
}

func renderMeta(t *testing.T, tpl string, vars map[string]any) engine.Result {
	t.Helper()
	res, err := engine.New().RenderWithMeta(tpl, vars)
	require.NoError(t, err)
	return res
}

func TestNewConstructsWithoutTemplateDirectory(t *testing.T) {
	// pongo2's NewSet panics without a loader; construction must succeed
	// even though templates only ever arrive as strings.
	var eng *engine.Engine
	require.NotPanics(t, func() { eng = engine.New() })

	out, err := eng.Render("Hello {{ user }}!", map[string]any{"user": "Ada"})
	require.NoError(t, err)
	require.Equal(t, "Hello Ada!", out)
}

func TestRenderPlainText(t *testing.T) {
	out := render(t, "just text, no directives", nil)
	require.Equal(t, "just text, no directives", out)
}

func TestRenderVariableSubstitution(t *testing.T) {
	out := render(t, "Hello {{ user }}!", map[string]any{"user": "Ada"})
	require.Equal(t, "Hello Ada!", out)
}

func TestRenderMissingVariableIsEmpty(t *testing.T) {
	out := render(t, "Hello {{ nobody }}!", nil)
	require.Equal(t, "Hello !", out)
}

func TestRenderNestedLookup(t *testing.T) {
	vars := map[string]any{
		"user": map[string]any{"name": "Ada", "tags": []any{"x", "y"}},
	}
	out := render(t, "{{ user.name }} has {{ user.tags | length }} tags", vars)
	require.Equal(t, "Ada has 2 tags", out)
}

func TestFilterChainJoinUpper(t *testing.T) {
	out := render(t, `{{ names | join: "; " | upper }}`, map[string]any{
		"names": []any{"alice", "bob"},
	})
	require.Equal(t, "ALICE; BOB", out)
}

func TestDefaultFilter(t *testing.T) {
	tpl := `{{ x | default: 'fallback' }}`

	require.Equal(t, "fallback", render(t, tpl, nil))
	require.Equal(t, "fallback", render(t, tpl, map[string]any{"x": ""}))
	require.Equal(t, "v", render(t, tpl, map[string]any{"x": "v"}))
	// Zero counts as present.
	require.Equal(t, "0", render(t, tpl, map[string]any{"x": 0}))
}

func TestRenderWithMetaNoSections(t *testing.T) {
	tpl := "Hello {{ user }}!"
	vars := map[string]any{"user": "Ada"}

	eng := engine.New()
	text, err := eng.Render(tpl, vars)
	require.NoError(t, err)

	res, err := eng.RenderWithMeta(tpl, vars)
	require.NoError(t, err)

	require.Equal(t, text, res.Text)
	require.NotNil(t, res.Sections)
	require.Empty(t, res.Sections)
	require.NotNil(t, res.Constraints)
	require.Empty(t, res.Constraints)
}

func TestSectionCaptureLeavesFooterInline(t *testing.T) {
	tpl := "{% section 'system' %}\nYou are helpful.\n{% endsection %}\nFooter"

	res := renderMeta(t, tpl, nil)
	require.Equal(t, map[string]string{"system": "You are helpful."}, res.Sections)
	require.Equal(t, "Footer", strings.TrimSpace(res.Text))
}

func TestMustIncludeEachRecordsConstraint(t *testing.T) {
	res := renderMeta(t, "{% must_include_each words %}", map[string]any{
		"words": []any{"alpha", "beta"},
	})

	require.Equal(t, []engine.Constraint{{
		Type:  engine.ConstraintMustIncludeEach,
		Words: []string{"alpha", "beta"},
	}}, res.Constraints)
	assert.Contains(t, res.Text, "IMPORTANT:")
	assert.Contains(t, res.Text, "alpha, beta")
}

func TestMustIncludeEachCommaString(t *testing.T) {
	res := renderMeta(t, `{% must_include_each "a, b , ,c" %}`, nil)

	require.Len(t, res.Constraints, 1)
	require.Equal(t, []string{"a", "b", "c"}, res.Constraints[0].Words)
}

func TestMustIncludeEachEmptyList(t *testing.T) {
	res := renderMeta(t, "{% must_include_each words %}", map[string]any{
		"words": []any{},
	})

	require.Equal(t, "", strings.TrimSpace(res.Text))
	require.Equal(t, []engine.Constraint{{
		Type:  engine.ConstraintMustIncludeEach,
		Words: []string{},
	}}, res.Constraints)
}

func TestRenderIsolationBetweenCalls(t *testing.T) {
	tpl := "{% section 'prompt' %}{{ topic }}{% endsection %}{% must_include_each words %}"

	eng := engine.New()
	first, err := eng.RenderWithMeta(tpl, map[string]any{
		"topic": "whales",
		"words": []any{"ocean"},
	})
	require.NoError(t, err)

	second, err := eng.RenderWithMeta(tpl, map[string]any{
		"topic": "trains",
		"words": []any{"steam", "rail"},
	})
	require.NoError(t, err)

	require.Equal(t, "whales", first.Sections["prompt"])
	require.Equal(t, "trains", second.Sections["prompt"])
	require.Equal(t, []string{"ocean"}, first.Constraints[0].Words)
	require.Equal(t, []string{"steam", "rail"}, second.Constraints[0].Words)

	// Results own their metadata: mutating one must not touch the other.
	first.Sections["prompt"] = "mutated"
	first.Constraints[0].Words[0] = "mutated"
	require.Equal(t, "trains", second.Sections["prompt"])
	require.Equal(t, "steam", second.Constraints[0].Words[0])
}

func TestRenderDeterminism(t *testing.T) {
	tpl := "{% section 'prompt' %}{{ topic | upper }}{% endsection %}{% must_include_each words %}Tail"
	vars := map[string]any{"topic": "tides", "words": []any{"moon", "sun"}}

	eng := engine.New()
	first, err := eng.RenderWithMeta(tpl, vars)
	require.NoError(t, err)
	second, err := eng.RenderWithMeta(tpl, vars)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestUnterminatedSectionIsParseError(t *testing.T) {
	eng := engine.New()
	_, err := eng.Render("before {% section 'x' %} never closed", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endsection")
}

func TestUnknownFilterIsParseError(t *testing.T) {
	eng := engine.New()
	_, err := eng.Render("{{ x | bogusfilter }}", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogusfilter")
}

func TestUnknownTagIsParseError(t *testing.T) {
	eng := engine.New()
	_, err := eng.Render("{% bogustag %}", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogustag")
}
