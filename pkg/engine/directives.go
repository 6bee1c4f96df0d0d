package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// DirectiveFunc implements an inline directive. Arguments are parsed once at
// parse time and evaluated lazily, in source order, immediately before the
// call; the returned text is emitted at the directive's position into
// whichever sink is active (primary output or an enclosing section buffer).
type DirectiveFunc func(st *State, args []any) (string, error)

// State is the directive-facing view of one render's evaluation state.
type State struct {
	ctx  *pongo2.ExecutionContext
	meta *Meta
}

// Meta returns the render's side-channel record. Directives executed outside
// a driver render get a throwaway record instead of nil.
func (s *State) Meta() *Meta {
	if s.meta == nil {
		s.meta = newMeta()
	}
	return s.meta
}

// Var resolves a name against the current scope, directive-introduced
// bindings first, then caller bindings.
func (s *State) Var(name string) (any, bool) {
	if s.ctx == nil {
		return nil, false
	}
	if v, ok := s.ctx.Private[name]; ok {
		return unwrapValue(v), true
	}
	if v, ok := s.ctx.Public[name]; ok {
		return unwrapValue(v), true
	}
	return nil, false
}

func unwrapValue(v any) any {
	if pv, ok := v.(*pongo2.Value); ok {
		return pv.Interface()
	}
	return v
}

// RegisterDirective adds a named inline directive to the parser vocabulary,
// effective for all subsequent parses. Registering a name that collides with
// an existing tag overrides it.
func (e *Engine) RegisterDirective(name string, fn DirectiveFunc) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("engine: directive name and function required")
	}
	return registerTag(name, directiveParser(name, fn))
}

func registerTag(name string, parser pongo2.TagParser) error {
	if err := pongo2.RegisterTag(name, parser); err != nil {
		return pongo2.ReplaceTag(name, parser)
	}
	return nil
}

type directiveNode struct {
	name string
	fn   DirectiveFunc
	args []pongo2.IEvaluator
}

func (node *directiveNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	args := make([]any, 0, len(node.args))
	for _, expr := range node.args {
		val, err := expr.Evaluate(ctx)
		if err != nil {
			return err
		}
		args = append(args, val.Interface())
	}

	meta, _ := metaFromContext(ctx)
	out, callErr := node.fn(&State{ctx: ctx, meta: meta}, args)
	if callErr != nil {
		return &pongo2.Error{Sender: "directive:" + node.name, OrigError: callErr}
	}
	if out == "" {
		return nil
	}
	if _, werr := writer.WriteString(out); werr != nil {
		return ctx.OrigError(werr, nil)
	}
	return nil
}

func directiveParser(name string, fn DirectiveFunc) pongo2.TagParser {
	return func(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
		node := &directiveNode{name: name, fn: fn}
		for arguments.Remaining() > 0 {
			expr, err := arguments.ParseExpression()
			if err != nil {
				return nil, err
			}
			node.args = append(node.args, expr)
			if arguments.Remaining() > 0 && arguments.Match(pongo2.TokenSymbol, ",") == nil {
				return nil, arguments.Error(fmt.Sprintf("malformed %q arguments, expected ','", name), nil)
			}
		}
		return node, nil
	}
}

var builtinOnce sync.Once

func registerBuiltins() {
	builtinOnce.Do(func() {
		registerBuiltinFilters()
		registerBuiltinTags()
		_ = registerTag("upper", directiveParser("upper", directiveUpper))
		_ = registerTag("must_include_each", directiveParser("must_include_each", directiveMustIncludeEach))
	})
}

// directiveUpper emits the uppercased string form of its argument.
func directiveUpper(_ *State, args []any) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	return strings.ToUpper(stringify(args[0])), nil
}

// directiveMustIncludeEach records a must_include_each constraint and emits
// the instructional sentence carrying the word list. The constraint is
// recorded even when the word list is empty; the sentence is not.
func directiveMustIncludeEach(st *State, args []any) (string, error) {
	words := constraintWords(args)
	st.Meta().AddConstraint(Constraint{Type: ConstraintMustIncludeEach, Words: words})
	if len(words) == 0 {
		return "", nil
	}
	return "IMPORTANT: You MUST use EACH of these words at least once: " + strings.Join(words, ", ") + ".", nil
}

// constraintWords flattens directive arguments into required words: sequences
// contribute their stringified elements, strings are comma-split with empty
// pieces dropped.
func constraintWords(args []any) []string {
	words := []string{}
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
		case string:
			for _, piece := range strings.Split(v, ",") {
				if piece = strings.TrimSpace(piece); piece != "" {
					words = append(words, piece)
				}
			}
		default:
			if items, ok := elements(v); ok {
				for _, item := range items {
					words = append(words, stringify(item))
				}
			} else {
				words = append(words, stringify(v))
			}
		}
	}
	return words
}
