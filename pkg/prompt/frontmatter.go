package prompt

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

type frontmatter struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description"`
	Variables   []VariableDefinition `yaml:"variables"`
	Metadata    map[string]any       `yaml:"metadata"`
}

// Parse builds a Template from raw file bytes. A leading YAML frontmatter
// block delimited by "---" lines contributes the name, variable declarations,
// and free-form metadata; everything after it is the template body. Content
// without a complete frontmatter block is treated as body in full.
func Parse(name string, data []byte) (Template, error) {
	header, body, ok := splitFrontmatter(string(data))

	tpl := Template{
		Name:     name,
		Content:  body,
		Metadata: map[string]any{},
	}
	if !ok {
		return tpl, nil
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return Template{}, fmt.Errorf("prompt: parse frontmatter for %q: %w", name, err)
	}

	if fm.Name != "" {
		tpl.Name = fm.Name
	}
	tpl.Variables = fm.Variables
	if fm.Metadata != nil {
		tpl.Metadata = fm.Metadata
	}
	if fm.Description != "" {
		tpl.Metadata["description"] = fm.Description
	}
	return tpl, nil
}

// splitFrontmatter separates the YAML header from the body. The opening
// delimiter must be the first line; without a closing delimiter the whole
// input counts as body.
func splitFrontmatter(content string) (header, body string, ok bool) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != frontmatterDelimiter {
		return "", content, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == frontmatterDelimiter {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n"), true
		}
	}
	return "", content, false
}
