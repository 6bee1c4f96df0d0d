// Package prompt defines the template content unit consumed by the render
// engine together with its loading and validation collaborators: frontmatter
// parsing, source abstractions, and declared-variable resolution.
package prompt

// VarType enumerates the declared template variable types.
type VarType string

const (
	TypeString  VarType = "string"
	TypeNumber  VarType = "number"
	TypeBoolean VarType = "boolean"
	TypeArray   VarType = "array"
	TypeObject  VarType = "object"
)

// VariableDefinition declares one template input. Declarations drive
// presence validation and interactive prompting; the engine itself treats
// every bound value as untyped.
type VariableDefinition struct {
	Name        string  `yaml:"name" json:"name"`
	Type        VarType `yaml:"type,omitempty" json:"type,omitempty"`
	Required    bool    `yaml:"required,omitempty" json:"required,omitempty"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Default     any     `yaml:"default,omitempty" json:"default,omitempty"`
}

// Template is a loaded content unit. The engine consumes Content; Name shows
// up in error messages only.
type Template struct {
	Name      string
	Content   string
	Variables []VariableDefinition
	Metadata  map[string]any
}

// Variable returns the declaration for name.
func (t Template) Variable(name string) (VariableDefinition, bool) {
	for _, def := range t.Variables {
		if def.Name == name {
			return def, true
		}
	}
	return VariableDefinition{}, false
}
