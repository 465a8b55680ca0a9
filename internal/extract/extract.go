// Package extract pulls API declarations out of specially formatted comments
// in JavaScript and TypeScript sources.
//
// A declaration comment starts with a line of the form
//
//	name:: typeSpec
//
// where the name and the type spec are both optional when they can be taken
// from the code the comment documents. Prose may follow the declaration line,
// and deeper indented declaration lines declare nested properties:
//
//	// Point:: interface
//	// A position on the plane.
//	//
//	//   x:: number
//	//   y:: number
//
// Declarations placed inside a documented class or constructor attach to the
// enclosing declaration, so a class and its methods can be documented in
// separate comments.
package extract

import (
	"context"

	"github.com/toolness/getdocs2ts/internal/parser"
	"github.com/toolness/getdocs2ts/internal/source"
	"github.com/toolness/getdocs2ts/internal/typespec"
)

// Declaration is one named, typed program element described by a comment.
type Declaration struct {
	Name string `json:"name" yaml:"name"`
	// TypeSpec is the signature as written; empty when the type was implied
	// by the documented element.
	TypeSpec string         `json:"typeSpec,omitempty" yaml:"typeSpec,omitempty"`
	Type     *typespec.Type `json:"type" yaml:"type"`
	// Properties holds nested declarations in source order. It is nil rather
	// than empty when there are none.
	Properties []*Declaration `json:"properties,omitempty" yaml:"properties,omitempty"`
	Doc        string         `json:"doc,omitempty" yaml:"doc,omitempty"`
	// ParamNames lists the formal parameters of a documented function or
	// method, in order. Destructured parameters have an empty name.
	ParamNames []string `json:"paramNames,omitempty" yaml:"paramNames,omitempty"`
	// Line is the 1-based source line of the declaration line.
	Line int `json:"line,omitempty" yaml:"line,omitempty"`
}

// Property returns the direct property with the given name, or nil.
func (d *Declaration) Property(name string) *Declaration {
	for _, p := range d.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Walk calls fn for every declaration in decls and their properties, depth
// first, parents before children.
func Walk(decls []*Declaration, fn func(d *Declaration, depth int)) {
	var walk func([]*Declaration, int)
	walk = func(ds []*Declaration, depth int) {
		for _, d := range ds {
			fn(d, depth)
			walk(d.Properties, depth+1)
		}
	}
	walk(decls, 0)
}

// Extract parses src and returns its top-level declarations.
func Extract(src []byte, lang parser.Language) ([]*Declaration, error) {
	return ExtractCtx(context.Background(), src, lang)
}

// ExtractCtx is Extract with cancellation of the underlying parse.
func ExtractCtx(ctx context.Context, src []byte, lang parser.Language) ([]*Declaration, error) {
	unit, err := source.ParseCtx(ctx, src, lang)
	if err != nil {
		return nil, err
	}
	defer unit.Close()

	return ExtractUnit(unit)
}

// ExtractString extracts declarations from JavaScript source text.
func ExtractString(src string) ([]*Declaration, error) {
	return Extract([]byte(src), parser.JavaScript)
}

// ExtractUnit extracts declarations from an already parsed unit. Any error
// aborts the extraction; no partial result is returned.
func ExtractUnit(u *source.Unit) ([]*Declaration, error) {
	x := newExtractor(u)
	for _, b := range GatherBlocks(u) {
		if err := x.parseBlock(b); err != nil {
			return nil, err
		}
	}
	return x.result, nil
}
