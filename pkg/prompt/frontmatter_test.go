package prompt_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-promptgen/pkg/prompt"
)

func TestParseWithFrontmatter(t *testing.T) {
	input := `---
name: summarize
description: Summarize an article.
variables:
  - name: article
    type: string
    required: true
  - name: tone
    type: string
    default: neutral
metadata:
  category: writing
---
Summarize the following in a {{ tone }} tone:

{{ article }}`

	tpl, err := prompt.Parse("fallback", []byte(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	want := prompt.Template{
		Name: "summarize",
		Content: `Summarize the following in a {{ tone }} tone:

{{ article }}`,
		Variables: []prompt.VariableDefinition{
			{Name: "article", Type: prompt.TypeString, Required: true},
			{Name: "tone", Type: prompt.TypeString, Default: "neutral"},
		},
		Metadata: map[string]any{
			"category":    "writing",
			"description": "Summarize an article.",
		},
	}
	if diff := cmp.Diff(want, tpl); diff != "" {
		t.Errorf("template mismatch (-want +got):\n%s", diff)
	}
}

func TestParseWithoutFrontmatter(t *testing.T) {
	tpl, err := prompt.Parse("plain", []byte("Hello {{ name }}"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if tpl.Name != "plain" {
		t.Errorf("name = %q, want %q", tpl.Name, "plain")
	}
	if tpl.Content != "Hello {{ name }}" {
		t.Errorf("content = %q", tpl.Content)
	}
	if tpl.Variables != nil {
		t.Errorf("variables = %v, want none", tpl.Variables)
	}
}

func TestParseUnterminatedFrontmatterIsBody(t *testing.T) {
	input := "---\nname: broken\nno closing delimiter"
	tpl, err := prompt.Parse("broken", []byte(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if tpl.Content != input {
		t.Errorf("content = %q, want the full input", tpl.Content)
	}
	if tpl.Name != "broken" {
		t.Errorf("name = %q, want fallback name", tpl.Name)
	}
}

func TestParseCRLFDelimiters(t *testing.T) {
	input := "---\r\nname: windows\r\n---\r\nbody text"
	tpl, err := prompt.Parse("fallback", []byte(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if tpl.Name != "windows" {
		t.Errorf("name = %q, want %q", tpl.Name, "windows")
	}
	if !strings.Contains(tpl.Content, "body text") {
		t.Errorf("content = %q, want body text", tpl.Content)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	input := "---\nname: [unterminated\n---\nbody"
	if _, err := prompt.Parse("bad", []byte(input)); err == nil {
		t.Fatal("expected error for malformed frontmatter YAML")
	}
}

func TestTemplateVariableLookup(t *testing.T) {
	tpl := prompt.Template{
		Variables: []prompt.VariableDefinition{
			{Name: "topic", Type: prompt.TypeString},
		},
	}

	def, ok := tpl.Variable("topic")
	if !ok {
		t.Fatal("expected declaration for topic")
	}
	if def.Type != prompt.TypeString {
		t.Errorf("type = %q, want string", def.Type)
	}
	if _, ok := tpl.Variable("missing"); ok {
		t.Error("expected no declaration for missing")
	}
}
