// Package evals loads declarative prompt test suites and checks provider
// completions against their assertions.
package evals

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Assertion types supported by suite files.
const (
	AssertContains    = "contains"
	AssertNotContains = "not_contains"
)

// Assertion is a single substring expectation against the completion.
type Assertion struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// Case binds one variable set to its expectations.
type Case struct {
	Name       string         `yaml:"name"`
	Vars       map[string]any `yaml:"vars"`
	Assertions []Assertion    `yaml:"assertions"`
}

// Suite is one declarative test file: a template path plus the cases run
// against it. Provider optionally names a registered provider; the runner's
// fallback is used otherwise.
type Suite struct {
	Template string `yaml:"template"`
	Provider string `yaml:"provider"`
	Cases    []Case `yaml:"cases"`
}

// LoadSuite reads and validates a YAML suite file.
func LoadSuite(path string) (Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Suite{}, fmt.Errorf("evals: read suite %q: %w", path, err)
	}
	return ParseSuite(path, data)
}

// ParseSuite decodes suite YAML. name shows up in error messages only.
func ParseSuite(name string, data []byte) (Suite, error) {
	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return Suite{}, fmt.Errorf("evals: parse suite %q: %w", name, err)
	}
	if suite.Template == "" {
		return Suite{}, fmt.Errorf("evals: suite %q: template is required", name)
	}
	for _, tc := range suite.Cases {
		for _, assertion := range tc.Assertions {
			switch assertion.Type {
			case AssertContains, AssertNotContains:
			default:
				return Suite{}, fmt.Errorf("evals: suite %q: case %q: unknown assertion type %q", name, tc.Name, assertion.Type)
			}
		}
	}
	return suite, nil
}
