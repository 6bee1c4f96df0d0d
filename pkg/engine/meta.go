package engine

import "github.com/flosch/pongo2/v6"

// metaContextVar is the reserved context identifier carrying the per-render
// metadata record. The driver strips caller bindings with this name, so a
// template author cannot shadow the side channel.
const metaContextVar = "_promptMeta"

// ConstraintMustIncludeEach tags constraints recorded by the
// must_include_each directive.
const ConstraintMustIncludeEach = "must_include_each"

// Constraint is a structured record emitted by a constraint directive during
// a render. List order follows directive execution order.
type Constraint struct {
	Type  string   `json:"type" yaml:"type"`
	Words []string `json:"words" yaml:"words"`
}

// Meta collects the side channel of a single render call: captured sections
// and recorded constraints. A fresh record is allocated per call and is never
// shared across renders.
type Meta struct {
	constraints []Constraint
	sections    map[string]string
}

func newMeta() *Meta { return &Meta{} }

// AddConstraint appends a constraint record.
func (m *Meta) AddConstraint(c Constraint) {
	m.constraints = append(m.constraints, c)
}

// SetSection stores captured text under name. A later write to the same name
// replaces the earlier one.
func (m *Meta) SetSection(name, text string) {
	if m.sections == nil {
		m.sections = make(map[string]string)
	}
	m.sections[name] = text
}

// Section returns previously captured text.
func (m *Meta) Section(name string) (string, bool) {
	text, ok := m.sections[name]
	return text, ok
}

func (m *Meta) sectionsCopy() map[string]string {
	out := make(map[string]string, len(m.sections))
	for name, text := range m.sections {
		out[name] = text
	}
	return out
}

func (m *Meta) constraintsCopy() []Constraint {
	out := make([]Constraint, 0, len(m.constraints))
	out = append(out, m.constraints...)
	return out
}

// metaFromContext resolves the metadata record the driver injected for the
// active render. ok is false when the node executes outside a driver render.
func metaFromContext(ctx *pongo2.ExecutionContext) (*Meta, bool) {
	if ctx == nil || ctx.Public == nil {
		return nil, false
	}
	m, ok := ctx.Public[metaContextVar].(*Meta)
	return m, ok
}
