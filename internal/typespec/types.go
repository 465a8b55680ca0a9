// Package typespec parses the signature mini-language used in getdocs
// comments, e.g. "(?Object, number) → ContentMatch", into a Type tree.
package typespec

import "strings"

// Kind identifies the shape of a Type node.
type Kind string

const (
	// AnyKind is the unconstrained type, written "*" or inferred for variables.
	AnyKind Kind = "Any"
	// NameKind is a named type, optionally with type parameters: Foo, Array<T>.
	NameKind Kind = "Name"
	// NullableKind wraps a type that may also be null: ?Foo.
	NullableKind Kind = "Nullable"
	// FunctionKind is a function signature: (a: A) → R.
	FunctionKind Kind = "Function"
	// ArrayKind is a homogeneous array: [T].
	ArrayKind Kind = "Array"
	// ObjectKind is an object literal type: {a: A, b?: B}.
	ObjectKind Kind = "Object"
	// UnionKind is an alternative between types: A | B.
	UnionKind Kind = "Union"
	// LiteralKind is a string or number literal type.
	LiteralKind Kind = "Literal"
	// ClassKind is a class, possibly carrying constructor parameters.
	ClassKind Kind = "Class"
	// InterfaceKind is an interface declared with the "interface" keyword.
	InterfaceKind Kind = "Interface"
)

// Type is one node of a parsed type. Which fields are meaningful depends on
// Kind.
type Type struct {
	Kind Kind `json:"kind" yaml:"kind"`

	// Name holds the type name for NameKind.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// TypeParams holds <...> arguments for NameKind.
	TypeParams []*Type `json:"typeParams,omitempty" yaml:"typeParams,omitempty"`

	// Inner is the wrapped type for NullableKind and ArrayKind.
	Inner *Type `json:"inner,omitempty" yaml:"inner,omitempty"`

	// Params and Returns describe FunctionKind.
	Params  []*Param `json:"params,omitempty" yaml:"params,omitempty"`
	Returns *Type    `json:"returns,omitempty" yaml:"returns,omitempty"`

	// ConstructorParams describe how ClassKind is instantiated.
	ConstructorParams []*Param `json:"constructorParams,omitempty" yaml:"constructorParams,omitempty"`

	// Fields describe ObjectKind.
	Fields []*Param `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Variants describe UnionKind.
	Variants []*Type `json:"variants,omitempty" yaml:"variants,omitempty"`

	// Value is the raw literal text for LiteralKind, quotes included.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// Param is a function parameter or object field.
type Param struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Type     *Type  `json:"type" yaml:"type"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
	Rest     bool   `json:"rest,omitempty" yaml:"rest,omitempty"`
	Default  string `json:"default,omitempty" yaml:"default,omitempty"`
}

// Any returns the unconstrained type.
func Any() *Type { return &Type{Kind: AnyKind} }

// Interface returns an interface type.
func Interface() *Type { return &Type{Kind: InterfaceKind} }

// Class returns a class type without constructor parameters.
func Class() *Type { return &Type{Kind: ClassKind} }

// Named returns a NameKind type.
func Named(name string, typeParams ...*Type) *Type {
	return &Type{Kind: NameKind, Name: name, TypeParams: typeParams}
}

// Nullable wraps t as ?t.
func Nullable(t *Type) *Type { return &Type{Kind: NullableKind, Inner: t} }

// Function returns a function type. A nil params slice is normalised to an
// empty one so callers can rely on len(Params) for arity.
func Function(params []*Param, returns *Type) *Type {
	if params == nil {
		params = []*Param{}
	}
	return &Type{Kind: FunctionKind, Params: params, Returns: returns}
}

// String renders t back in signature syntax.
func (t *Type) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Type) write(b *strings.Builder) {
	switch t.Kind {
	case AnyKind:
		b.WriteString("*")
	case NameKind:
		b.WriteString(t.Name)
		if len(t.TypeParams) > 0 {
			b.WriteString("<")
			for i, p := range t.TypeParams {
				if i > 0 {
					b.WriteString(", ")
				}
				p.write(b)
			}
			b.WriteString(">")
		}
	case NullableKind:
		b.WriteString("?")
		t.Inner.write(b)
	case FunctionKind:
		writeParams(b, t.Params)
		if t.Returns != nil {
			b.WriteString(" → ")
			t.Returns.write(b)
		}
	case ArrayKind:
		b.WriteString("[")
		t.Inner.write(b)
		b.WriteString("]")
	case ObjectKind:
		b.WriteString("{")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			f.write(b)
		}
		b.WriteString("}")
	case UnionKind:
		for i, v := range t.Variants {
			if i > 0 {
				b.WriteString(" | ")
			}
			v.write(b)
		}
	case LiteralKind:
		b.WriteString(t.Value)
	case ClassKind:
		b.WriteString("class")
		if t.ConstructorParams != nil {
			writeParams(b, t.ConstructorParams)
		}
	case InterfaceKind:
		b.WriteString("interface")
	}
}

func writeParams(b *strings.Builder, params []*Param) {
	b.WriteString("(")
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		p.write(b)
	}
	b.WriteString(")")
}

func (p *Param) write(b *strings.Builder) {
	if p.Rest {
		b.WriteString("...")
	}
	if p.Name != "" {
		b.WriteString(p.Name)
		if p.Optional {
			b.WriteString("?")
		}
		b.WriteString(": ")
	}
	if p.Type != nil {
		p.Type.write(b)
	}
	if p.Default != "" {
		b.WriteString(" = ")
		b.WriteString(p.Default)
	}
}
