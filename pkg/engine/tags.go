package engine

import (
	"bytes"
	"strings"

	"github.com/flosch/pongo2/v6"
)

func registerBuiltinTags() {
	_ = registerTag("assign", tagAssignParser)
	_ = registerTag("capture", tagCaptureParser)
	_ = registerTag("section", tagSectionParser)
	_ = registerTag("case", tagCaseParser)
}

// {% assign name = expr %} binds an evaluated expression into the current
// scope, shadowing caller bindings for the remainder of the enclosing
// evaluation. Loop bodies fork their scope, so assignments inside a for block
// do not escape it.
type assignNode struct {
	name string
	expr pongo2.IEvaluator
}

func (node *assignNode) Execute(ctx *pongo2.ExecutionContext, _ pongo2.TemplateWriter) *pongo2.Error {
	value, err := node.expr.Evaluate(ctx)
	if err != nil {
		return err
	}
	ctx.Private[node.name] = value
	return nil
}

func tagAssignParser(_ *pongo2.Parser, _ *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	node := &assignNode{}

	nameToken := arguments.MatchType(pongo2.TokenIdentifier)
	if nameToken == nil {
		return nil, arguments.Error("assign: expected an identifier", nil)
	}
	node.name = nameToken.Val

	if arguments.Match(pongo2.TokenSymbol, "=") == nil {
		return nil, arguments.Error("assign: expected '='", nil)
	}

	expr, err := arguments.ParseExpression()
	if err != nil {
		return nil, err
	}
	node.expr = expr

	if arguments.Remaining() > 0 {
		return nil, arguments.Error("assign: malformed arguments", nil)
	}
	return node, nil
}

// {% capture name %}...{% endcapture %} renders its block into an isolated
// buffer and binds the text like an assignment. Nothing is emitted inline.
type captureNode struct {
	name    string
	wrapper *pongo2.NodeWrapper
}

func (node *captureNode) Execute(ctx *pongo2.ExecutionContext, _ pongo2.TemplateWriter) *pongo2.Error {
	var buf bytes.Buffer
	if err := node.wrapper.Execute(ctx, &buf); err != nil {
		return err
	}
	ctx.Private[node.name] = pongo2.AsValue(buf.String())
	return nil
}

func tagCaptureParser(doc *pongo2.Parser, _ *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	node := &captureNode{}

	nameToken := arguments.MatchType(pongo2.TokenIdentifier)
	if nameToken == nil {
		return nil, arguments.Error("capture: expected an identifier", nil)
	}
	node.name = nameToken.Val

	if arguments.Remaining() > 0 {
		return nil, arguments.Error("capture: malformed arguments", nil)
	}

	wrapper, _, err := doc.WrapUntilTag("endcapture")
	if err != nil {
		return nil, err
	}
	node.wrapper = wrapper
	return node, nil
}

// {% section 'name' %}...{% endsection %} renders its block into a fresh
// capture buffer and stores the trimmed text in the render's section map,
// last write winning on duplicate names. The tag emits nothing inline, so
// only literal text around the markers reaches the primary output. Nested
// sections each get their own buffer and register independently.
type sectionNode struct {
	name    string
	wrapper *pongo2.NodeWrapper
}

func (node *sectionNode) Execute(ctx *pongo2.ExecutionContext, _ pongo2.TemplateWriter) *pongo2.Error {
	var buf bytes.Buffer
	if err := node.wrapper.Execute(ctx, &buf); err != nil {
		return err
	}
	if meta, ok := metaFromContext(ctx); ok {
		meta.SetSection(node.name, strings.TrimSpace(buf.String()))
	}
	return nil
}

func tagSectionParser(doc *pongo2.Parser, _ *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	node := &sectionNode{}

	// Quoted or bare literal name.
	if t := arguments.MatchType(pongo2.TokenString); t != nil {
		node.name = t.Val
	} else if t := arguments.MatchType(pongo2.TokenIdentifier); t != nil {
		node.name = t.Val
	} else {
		return nil, arguments.Error("section: expected a section name", nil)
	}

	if arguments.Remaining() > 0 {
		return nil, arguments.Error("section: malformed arguments", nil)
	}

	wrapper, _, err := doc.WrapUntilTag("endsection")
	if err != nil {
		return nil, err
	}
	node.wrapper = wrapper
	return node, nil
}

// {% case expr %} / {% when literal %} / {% else %} / {% endcase %} evaluates
// the scrutinee once and executes the first value-equal branch.
type caseBranch struct {
	match   pongo2.IEvaluator
	wrapper *pongo2.NodeWrapper
}

type caseNode struct {
	scrutinee   pongo2.IEvaluator
	branches    []caseBranch
	elseWrapper *pongo2.NodeWrapper
}

func (node *caseNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	value, err := node.scrutinee.Evaluate(ctx)
	if err != nil {
		return err
	}
	for _, branch := range node.branches {
		candidate, matchErr := branch.match.Evaluate(ctx)
		if matchErr != nil {
			return matchErr
		}
		if looseEqual(value, candidate) {
			return branch.wrapper.Execute(ctx, writer)
		}
	}
	if node.elseWrapper != nil {
		return node.elseWrapper.Execute(ctx, writer)
	}
	return nil
}

// looseEqual matches the evaluator's leniency rules: numbers compare
// numerically across kinds, everything else by stringified form.
func looseEqual(a, b *pongo2.Value) bool {
	if a.IsNil() || b.IsNil() {
		return a.IsNil() && b.IsNil()
	}
	if a.IsNumber() && b.IsNumber() {
		return a.Float() == b.Float()
	}
	return stringify(a.Interface()) == stringify(b.Interface())
}

func tagCaseParser(doc *pongo2.Parser, _ *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	node := &caseNode{}

	expr, err := arguments.ParseExpression()
	if err != nil {
		return nil, err
	}
	node.scrutinee = expr

	if arguments.Remaining() > 0 {
		return nil, arguments.Error("case: malformed arguments", nil)
	}

	// Literal text between case and the first when is discarded.
	wrapper, tagArgs, wrapErr := doc.WrapUntilTag("when", "else", "endcase")
	if wrapErr != nil {
		return nil, wrapErr
	}

	for wrapper.Endtag == "when" {
		match, matchErr := tagArgs.ParseExpression()
		if matchErr != nil {
			return nil, matchErr
		}
		if tagArgs.Remaining() > 0 {
			return nil, tagArgs.Error("when: malformed arguments", nil)
		}

		body, nextArgs, bodyErr := doc.WrapUntilTag("when", "else", "endcase")
		if bodyErr != nil {
			return nil, bodyErr
		}
		node.branches = append(node.branches, caseBranch{match: match, wrapper: body})
		wrapper, tagArgs = body, nextArgs
	}

	if wrapper.Endtag == "else" {
		body, _, bodyErr := doc.WrapUntilTag("endcase")
		if bodyErr != nil {
			return nil, bodyErr
		}
		node.elseWrapper = body
	}
	return node, nil
}
