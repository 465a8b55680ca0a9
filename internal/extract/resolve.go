package extract

import (
	"fmt"

	"github.com/toolness/getdocs2ts/internal/source"
	"github.com/toolness/getdocs2ts/internal/typespec"
)

// resolveName returns the explicit identifier of l, or the name implied by
// the element l documents.
func resolveName(l Line, e source.Element) (string, error) {
	if l.Identifier != "" {
		return l.Identifier, nil
	}
	if e.IsZero() {
		return "", fmt.Errorf("%w: nested declaration needs an explicit name", ErrUnresolvableName)
	}

	switch e.Kind {
	case source.ClassElement, source.FunctionElement, source.MethodElement, source.AssignmentElement:
		if e.Name != "" {
			return e.Name, nil
		}
	case source.VariableElement:
		if e.Declarators > 1 {
			return "", fmt.Errorf("%w: statement declares %d variables", ErrUnresolvableName, e.Declarators)
		}
		if e.Name != "" {
			return e.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %s element has no name", ErrUnresolvableName, e.Kind)
}

// resolveType parses the type spec of l, or falls back to the type implied by
// the element l documents.
func resolveType(l Line, e source.Element) (*typespec.Type, error) {
	switch l.TypeSpec {
	case "":
	case "interface":
		return typespec.Interface(), nil
	default:
		return typespec.Parse(l.TypeSpec)
	}

	if !e.IsZero() {
		switch e.Kind {
		case source.ClassElement:
			return typespec.Class(), nil
		case source.FunctionElement:
			return typespec.Function(nil, nil), nil
		case source.VariableElement:
			return typespec.Any(), nil
		}
	}
	return nil, fmt.Errorf("%w: no type given", ErrUnresolvableType)
}

// backfillParams names the unnamed parameters of a function type after the
// formal parameters of the function or method it documents.
func backfillParams(t *typespec.Type, e source.Element) error {
	if t == nil || t.Kind != typespec.FunctionKind || e.IsZero() {
		return nil
	}
	if e.Kind != source.MethodElement && e.Kind != source.FunctionElement {
		return nil
	}

	for i, p := range t.Params {
		if p.Name != "" || i >= len(e.Params) {
			continue
		}
		formal := e.Params[i]
		switch formal.Form {
		case source.IdentifierParam, source.DefaultParam:
			p.Name = formal.Name
		default:
			return fmt.Errorf("%w: parameter %d is a %s parameter", ErrUnsupportedParam, i+1, formal.Form)
		}
	}
	return nil
}

// formalNames returns the parameter names of a function or method element,
// or nil for other elements and parameterless ones.
func formalNames(e source.Element) []string {
	if e.IsZero() || len(e.Params) == 0 {
		return nil
	}
	if e.Kind != source.MethodElement && e.Kind != source.FunctionElement {
		return nil
	}
	names := make([]string, len(e.Params))
	for i, p := range e.Params {
		names[i] = p.Name
	}
	return names
}
