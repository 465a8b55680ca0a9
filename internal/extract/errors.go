package extract

import (
	"errors"
	"fmt"
	"strings"
)

// Failure classes. Every extraction error wraps exactly one of these, or a
// *typespec.SyntaxError for malformed signatures.
var (
	// ErrUnknownSyntax is returned for a comment line that is neither a
	// declaration, documentation nor empty.
	ErrUnknownSyntax = errors.New("unknown comment syntax")

	// ErrMalformedPrefix is returned when text expected to start with a
	// declaration separator does not.
	ErrMalformedPrefix = errors.New("malformed comment-spec prefix")

	// ErrUnresolvableName is returned when a declaration has no explicit
	// name and none can be derived from the element it documents.
	ErrUnresolvableName = errors.New("cannot determine declaration name")

	// ErrUnresolvableType is returned when a declaration has no type and
	// the element it documents has no implicit one.
	ErrUnresolvableType = errors.New("cannot determine declaration type")

	// ErrMalformedNesting is returned when indentation inside a property
	// list is inconsistent.
	ErrMalformedNesting = errors.New("malformed declaration nesting")

	// ErrUnsupportedParam is returned when a parameter name has to be taken
	// from a destructuring or rest parameter.
	ErrUnsupportedParam = errors.New("unsupported parameter form")
)

// Error locates an extraction failure in the source.
type Error struct {
	// Line is the 1-based source line of the offending comment line.
	Line int
	// Text is the comment line as written, markers removed.
	Text string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, strings.TrimSpace(e.Text))
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
