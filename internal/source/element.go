package source

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// ElementKind is the closed set of program elements a comment can document.
type ElementKind int

const (
	// ProgramElement is the top-level program unit.
	ProgramElement ElementKind = iota
	// ClassElement is a class declaration.
	ClassElement
	// FunctionElement is a function declaration.
	FunctionElement
	// MethodElement is a method definition inside a class body.
	MethodElement
	// VariableElement is a var/let/const statement.
	VariableElement
	// AssignmentElement is a `this.<field> = …` statement or a class field.
	AssignmentElement
	// OtherElement is any other node.
	OtherElement
)

// String returns a readable name for the kind.
func (k ElementKind) String() string {
	switch k {
	case ProgramElement:
		return "program"
	case ClassElement:
		return "class"
	case FunctionElement:
		return "function"
	case MethodElement:
		return "method"
	case VariableElement:
		return "variable"
	case AssignmentElement:
		return "assignment"
	default:
		return "other"
	}
}

// ElementID identifies a syntax node by position, stable for the lifetime of
// one parse.
type ElementID struct {
	Start uint32
	End   uint32
	Type  string
}

// ParamForm describes the syntactic form of a formal parameter.
type ParamForm int

const (
	// IdentifierParam is a plain `x`.
	IdentifierParam ParamForm = iota
	// DefaultParam is `x = value`.
	DefaultParam
	// RestParam is `...xs`.
	RestParam
	// PatternParam is a destructuring `{a, b}` or `[a, b]`.
	PatternParam
)

// String returns a readable name for the form.
func (f ParamForm) String() string {
	switch f {
	case IdentifierParam:
		return "identifier"
	case DefaultParam:
		return "default"
	case RestParam:
		return "rest"
	default:
		return "pattern"
	}
}

// Param is one formal parameter of a function or method.
type Param struct {
	Name string
	Form ParamForm
}

// Element is a program element a comment block is bound to. The fields that
// are set depend on Kind:
//   - Class, Function, Method: Name is the identifier / method key
//   - Function, Method: Params lists the formal parameters
//   - Method: Constructor reports whether this is the class constructor
//   - Variable: Declarators counts declarators; Name is set when there is
//     exactly one and it is a plain identifier
//   - Assignment: Name is the assigned field
type Element struct {
	Kind        ElementKind
	ID          ElementID
	Name        string
	Params      []Param
	Declarators int
	Constructor bool
	// Line is the 1-based line the element starts on.
	Line int

	node *sitter.Node
}

// IsZero reports whether e is the zero Element.
func (e Element) IsZero() bool {
	return e.node == nil
}

func idOf(node *sitter.Node) ElementID {
	return ElementID{
		Start: node.StartByte(),
		End:   node.EndByte(),
		Type:  node.Type(),
	}
}
