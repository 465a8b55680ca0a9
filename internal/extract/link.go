package extract

import (
	"github.com/toolness/getdocs2ts/internal/source"
	"github.com/toolness/getdocs2ts/internal/typespec"
)

// extractor holds the state of one extraction: the unit, the declarations
// produced so far and the table linking elements to their declarations.
type extractor struct {
	unit   *source.Unit
	links  map[source.ElementID]*Declaration
	result []*Declaration
}

func newExtractor(u *source.Unit) *extractor {
	return &extractor{
		unit:  u,
		links: make(map[source.ElementID]*Declaration),
	}
}

// register links e to d. The program element is never registered, and the
// first declaration registered for an element keeps it.
func (x *extractor) register(e source.Element, d *Declaration) {
	if e.IsZero() || e.Kind == source.ProgramElement {
		return
	}
	if _, ok := x.links[e.ID]; ok {
		return
	}
	x.links[e.ID] = d
}

// parentFor returns the declaration that a declaration documenting e belongs
// to: the nearest enclosing element that owns one, or else a class
// declaration synthesized for the single class enclosing e. It returns nil for
// top-level declarations.
func (x *extractor) parentFor(e source.Element) *Declaration {
	for _, a := range x.unit.Ancestors(e) {
		if d, ok := x.links[a.ID]; ok {
			return d
		}
	}

	classes := x.unit.EnclosingClasses(e)
	if len(classes) != 1 {
		return nil
	}
	class := classes[0]
	d := &Declaration{Name: class.Name, Type: typespec.Class(), Line: class.Line}
	x.register(class, d)
	x.result = append(x.result, d)
	return d
}

// attach adds d under parent, or to the top level when parent is nil, and
// registers the element it documents.
func (x *extractor) attach(parent, d *Declaration, e source.Element) {
	switch {
	case parent == nil:
		x.result = append(x.result, d)
	case isConstructor(parent, d, e):
		if parent.Type.ConstructorParams == nil {
			parent.Type.ConstructorParams = []*typespec.Param{}
		}
		parent.Type.ConstructorParams = append(parent.Type.ConstructorParams, d.Type.Params...)
		// Fields assigned in the constructor body belong to the class.
		x.register(e, parent)
		return
	default:
		parent.Properties = append(parent.Properties, d)
	}
	x.register(e, d)
}

func isConstructor(parent, d *Declaration, e source.Element) bool {
	return d.Name == "constructor" &&
		e.Kind == source.MethodElement && e.Constructor &&
		d.Type.Kind == typespec.FunctionKind &&
		parent.Type != nil && parent.Type.Kind == typespec.ClassKind
}
