// Package source exposes the structural queries getdocs needs from a parsed
// JavaScript or TypeScript file: comment runs, the elements they document,
// and ancestor walks over those elements.
package source

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/toolness/getdocs2ts/internal/parser"
)

// Unit is one parsed source file.
type Unit struct {
	result *parser.ParseResult
}

// Parse parses src in the given language. Source with syntax errors is
// rejected with a *parser.ParseError.
func Parse(src []byte, lang parser.Language) (*Unit, error) {
	return ParseCtx(context.Background(), src, lang)
}

// ParseCtx is Parse with cancellation.
func ParseCtx(ctx context.Context, src []byte, lang parser.Language) (*Unit, error) {
	p, err := parser.NewParser(lang)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	result, err := p.ParseCtx(ctx, src)
	if err != nil {
		return nil, err
	}
	if pe := result.FirstError(); pe != nil {
		result.Close()
		return nil, pe
	}
	return &Unit{result: result}, nil
}

// Close releases the parse tree.
func (u *Unit) Close() {
	u.result.Close()
}

// Program returns the top-level program element.
func (u *Unit) Program() Element {
	return u.elementAt(u.result.Root)
}

// Ancestors returns the elements enclosing e, nearest first, not including
// e itself. Every enclosing node is reported; nodes that are not one of the
// documented kinds come back as OtherElement.
func (u *Unit) Ancestors(e Element) []Element {
	if e.node == nil {
		return nil
	}
	var out []Element
	for n := e.node.Parent(); n != nil; n = n.Parent() {
		out = append(out, u.elementAt(n))
	}
	return out
}

// EnclosingClasses returns the class declarations enclosing e, nearest first.
func (u *Unit) EnclosingClasses(e Element) []Element {
	var out []Element
	for _, a := range u.Ancestors(e) {
		if a.Kind == ClassElement {
			out = append(out, a)
		}
	}
	return out
}

// ElementFor returns the element a comment placed directly before node
// documents. Export statements are unwrapped to their declaration.
func (u *Unit) ElementFor(node *sitter.Node) Element {
	if node.Type() == "export_statement" {
		if decl := node.ChildByFieldName("declaration"); decl != nil {
			return u.ElementFor(decl)
		}
	}
	return u.elementAt(node)
}

// elementAt classifies node without unwrapping.
func (u *Unit) elementAt(node *sitter.Node) Element {
	e := Element{
		Kind: OtherElement,
		ID:   idOf(node),
		Line: int(node.StartPoint().Row) + 1,
		node: node,
	}

	switch parser.GetElementCategory(node) {
	case "program":
		e.Kind = ProgramElement

	case "class":
		e.Kind = ClassElement
		e.Name = u.fieldText(node, "name")

	case "function":
		e.Kind = FunctionElement
		e.Name = u.fieldText(node, "name")
		e.Params = u.params(node)

	case "method":
		e.Kind = MethodElement
		e.Name = u.fieldText(node, "name")
		e.Params = u.params(node)
		e.Constructor = e.Name == "constructor"

	case "variable":
		e.Kind = VariableElement
		var declarators []*sitter.Node
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if child := node.NamedChild(i); child.Type() == "variable_declarator" {
				declarators = append(declarators, child)
			}
		}
		e.Declarators = len(declarators)
		if len(declarators) == 1 {
			if name := declarators[0].ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
				e.Name = u.result.NodeText(name)
			}
		}

	case "field":
		e.Kind = AssignmentElement
		e.Name = u.fieldText(node, "property")
		if e.Name == "" {
			e.Name = u.fieldText(node, "name")
		}

	case "statement":
		if field := u.thisAssignment(node); field != "" {
			e.Kind = AssignmentElement
			e.Name = field
		}
	}

	return e
}

// thisAssignment returns <field> when stmt is `this.<field> = …;`.
func (u *Unit) thisAssignment(stmt *sitter.Node) string {
	if stmt.NamedChildCount() == 0 {
		return ""
	}
	expr := stmt.NamedChild(0)
	if expr.Type() != "assignment_expression" {
		return ""
	}
	left := expr.ChildByFieldName("left")
	if left == nil || left.Type() != "member_expression" {
		return ""
	}
	object := left.ChildByFieldName("object")
	if object == nil || object.Type() != "this" {
		return ""
	}
	return u.fieldText(left, "property")
}

// params lists the formal parameters of a function-like node.
func (u *Unit) params(node *sitter.Node) []Param {
	list := node.ChildByFieldName("parameters")
	if list == nil {
		return nil
	}

	var params []Param
	for i := 0; i < int(list.NamedChildCount()); i++ {
		child := list.NamedChild(i)
		switch child.Type() {
		case "comment":
			continue
		case "identifier":
			params = append(params, Param{Name: u.result.NodeText(child), Form: IdentifierParam})
		case "assignment_pattern":
			params = append(params, u.patternParam(child.ChildByFieldName("left"), DefaultParam))
		case "rest_pattern":
			params = append(params, Param{Name: u.restName(child), Form: RestParam})
		case "required_parameter", "optional_parameter":
			// TypeScript wraps every parameter; the pattern field holds the
			// binding and value holds a default.
			form := IdentifierParam
			if child.ChildByFieldName("value") != nil {
				form = DefaultParam
			}
			pattern := child.ChildByFieldName("pattern")
			if pattern != nil && pattern.Type() == "rest_pattern" {
				params = append(params, Param{Name: u.restName(pattern), Form: RestParam})
				continue
			}
			params = append(params, u.patternParam(pattern, form))
		default:
			params = append(params, Param{Form: PatternParam})
		}
	}
	return params
}

func (u *Unit) patternParam(binding *sitter.Node, form ParamForm) Param {
	if binding == nil || binding.Type() != "identifier" {
		return Param{Form: PatternParam}
	}
	return Param{Name: u.result.NodeText(binding), Form: form}
}

func (u *Unit) restName(rest *sitter.Node) string {
	for i := 0; i < int(rest.NamedChildCount()); i++ {
		if child := rest.NamedChild(i); child.Type() == "identifier" {
			return u.result.NodeText(child)
		}
	}
	return ""
}

func (u *Unit) fieldText(node *sitter.Node, field string) string {
	return strings.TrimSpace(u.result.NodeText(node.ChildByFieldName(field)))
}
