package extract

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolness/getdocs2ts/internal/parser"
	"github.com/toolness/getdocs2ts/internal/typespec"
)

func mustExtract(t *testing.T, src string) []*Declaration {
	t.Helper()
	decls, err := ExtractString(src)
	require.NoError(t, err)
	return decls
}

func paramNames(params []*typespec.Param) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

func TestExtract_MethodInUndocumentedClass(t *testing.T) {
	src := `class Foo {
  // :: (?Object) → ContentMatch
  bar(a, b = 1) {}
}
`
	decls := mustExtract(t, src)
	require.Len(t, decls, 1)

	foo := decls[0]
	assert.Equal(t, "Foo", foo.Name)
	assert.Equal(t, typespec.ClassKind, foo.Type.Kind)
	assert.Empty(t, foo.TypeSpec)
	require.Len(t, foo.Properties, 1)

	bar := foo.Properties[0]
	assert.Equal(t, "bar", bar.Name)
	assert.Equal(t, "(?Object) → ContentMatch", bar.TypeSpec)
	require.Equal(t, typespec.FunctionKind, bar.Type.Kind)
	assert.Equal(t, []string{"a", "b"}, bar.ParamNames)
	assert.Equal(t, []string{"a"}, paramNames(bar.Type.Params))
	assert.Equal(t, typespec.NullableKind, bar.Type.Params[0].Type.Kind)
	assert.Equal(t, "ContentMatch", bar.Type.Returns.Name)
	assert.Equal(t, 2, bar.Line)
}

func TestExtract_BackfillsDefaultParams(t *testing.T) {
	src := `class Foo {
  // :: (?Object, number) → ContentMatch
  bar(a, b = 1) {}
}
`
	decls := mustExtract(t, src)
	require.Len(t, decls, 1)
	bar := decls[0].Property("bar")
	require.NotNil(t, bar)
	assert.Equal(t, []string{"a", "b"}, paramNames(bar.Type.Params))
	assert.Equal(t, []string{"a", "b"}, bar.ParamNames)
}

func TestExtract_ParamNames(t *testing.T) {
	src := `// :: (number)
function f(x, {y}, ...rest) {}

// v:: number
let v = 1;

// :: ()
function g() {}
`
	decls := mustExtract(t, src)
	require.Len(t, decls, 3)
	assert.Equal(t, []string{"x", "", "rest"}, decls[0].ParamNames)
	assert.Nil(t, decls[1].ParamNames)
	assert.Nil(t, decls[2].ParamNames)
}

func TestExtract_ExplicitParamNamesKept(t *testing.T) {
	src := `// :: (x: number, string)
function f(a, b) {}
`
	decls := mustExtract(t, src)
	require.Len(t, decls, 1)
	assert.Equal(t, "f", decls[0].Name)
	assert.Equal(t, []string{"x", "b"}, paramNames(decls[0].Type.Params))
}

func TestExtract_ConstructorField(t *testing.T) {
	for _, sep := range []string{" : ", " :: "} {
		t.Run(sep, func(t *testing.T) {
			src := "class Foo {\n" +
				"  constructor(schema) {\n" +
				"    //" + sep + "Schema\n" +
				"    this.schema = schema\n" +
				"  }\n" +
				"}\n"
			decls := mustExtract(t, src)
			require.Len(t, decls, 1)
			assert.Equal(t, "Foo", decls[0].Name)
			require.Len(t, decls[0].Properties, 1)

			schema := decls[0].Properties[0]
			assert.Equal(t, "schema", schema.Name)
			assert.Equal(t, "Schema", schema.TypeSpec)
			assert.Equal(t, typespec.Named("Schema"), schema.Type)
		})
	}
}

func TestExtract_NestedByIndent(t *testing.T) {
	decls := mustExtract(t, "// a:: foo\n//\n//  b:: foo")
	require.Len(t, decls, 1)

	a := decls[0]
	assert.Equal(t, "a", a.Name)
	assert.Equal(t, typespec.Named("foo"), a.Type)
	require.Len(t, a.Properties, 1)
	assert.Equal(t, "b", a.Properties[0].Name)
	assert.Equal(t, typespec.Named("foo"), a.Properties[0].Type)
	assert.Nil(t, a.Properties[0].Properties)
}

func TestExtract_SameIndentSiblings(t *testing.T) {
	decls := mustExtract(t, "// a:: interface\n//\n// b:: interface")
	require.Len(t, decls, 2)
	assert.Equal(t, "a", decls[0].Name)
	assert.Equal(t, "b", decls[1].Name)
	for _, d := range decls {
		assert.Equal(t, typespec.InterfaceKind, d.Type.Kind)
		assert.Nil(t, d.Properties)
	}
}

func TestExtract_DeepNesting(t *testing.T) {
	src := `// Options:: interface
//   Configuration for the editor.
//
//   doc:: Node
//     The starting document.
//   plugins:: [Plugin]
//       listener:: (Event) → bool
//       priority:: ?number
//   schema:: Schema
`
	decls := mustExtract(t, src)
	require.Len(t, decls, 1)

	opts := decls[0]
	assert.Equal(t, "Configuration for the editor.", opts.Doc)
	require.Len(t, opts.Properties, 3)
	assert.Equal(t, "doc", opts.Properties[0].Name)
	assert.Equal(t, "The starting document.", opts.Properties[0].Doc)

	plugins := opts.Properties[1]
	assert.Equal(t, typespec.ArrayKind, plugins.Type.Kind)
	require.Len(t, plugins.Properties, 2)
	assert.Equal(t, "listener", plugins.Properties[0].Name)
	assert.Equal(t, "priority", plugins.Properties[1].Name)
	assert.Equal(t, typespec.NullableKind, plugins.Properties[1].Type.Kind)

	assert.Equal(t, "schema", opts.Properties[2].Name)

	var count int
	Walk(decls, func(*Declaration, int) { count++ })
	assert.Equal(t, 6, count)
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"bare separator at top level", "// ::", ErrUnresolvableName},
		{"no type at top level", "// foo::-", ErrUnresolvableType},
		{"unknown syntax", "// a:: number\n//bad", ErrUnknownSyntax},
		{"multi declarator variable", "// ::\nlet a = 1, b = 2", ErrUnresolvableName},
		{"nested without name", "// a:: interface\n//   :: number", ErrUnresolvableName},
		{"method without type", "class Foo {\n  // ::\n  bar() {}\n}", ErrUnresolvableType},
		{"destructured param", "// :: (Object)\nfunction f({a}) {}", ErrUnsupportedParam},
		{"rest param", "// :: (number)\nfunction f(...xs) {}", ErrUnsupportedParam},
		{
			"doc after children",
			"// a:: foo\n//   b:: bar\n//     c:: baz\n//   stray",
			ErrMalformedNesting,
		},
		{
			"declaration between levels",
			"// a:: foo\n//   b:: bar\n//     c:: baz\n//    d:: qux",
			ErrMalformedNesting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decls, err := ExtractString(tt.src)
			require.Error(t, err)
			assert.Nil(t, decls)
			assert.ErrorIs(t, err, tt.want)

			var xerr *Error
			require.ErrorAs(t, err, &xerr)
			assert.Positive(t, xerr.Line)
		})
	}
}

func TestExtract_ErrorLocation(t *testing.T) {
	_, err := ExtractString("let x = 1;\n\n// a:: number\n//bad\n")
	var xerr *Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, 4, xerr.Line)
	assert.Equal(t, "bad", xerr.Text)
	assert.Contains(t, err.Error(), "line 4")
}

func TestExtract_TypeSyntaxError(t *testing.T) {
	_, err := ExtractString("// x:: (number")
	require.Error(t, err)

	var serr *typespec.SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "(number", serr.Input)
}

func TestExtract_SourceSyntaxError(t *testing.T) {
	_, err := ExtractString("// x:: number\nlet = ;")
	var perr *parser.ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestExtract_SynthesizedClass(t *testing.T) {
	src := `class Foo {
  // :: (number) → string
  a(n) {}

  // :: () → void
  b() {}
}
`
	decls := mustExtract(t, src)
	require.Len(t, decls, 1)
	assert.Equal(t, "Foo", decls[0].Name)
	assert.Equal(t, typespec.Class(), decls[0].Type)
	assert.Equal(t, 1, decls[0].Line)
	require.Len(t, decls[0].Properties, 2)
	assert.Equal(t, "a", decls[0].Properties[0].Name)
	assert.Equal(t, "b", decls[0].Properties[1].Name)
}

func TestExtract_ConstructorParams(t *testing.T) {
	src := `// Foo::
// A foo.
class Foo {
  // :: (number)
  constructor(x) {
    // :: number
    this.x = x
  }

  // :: () → number
  value() { return this.x }
}
`
	decls := mustExtract(t, src)
	require.Len(t, decls, 1)

	foo := decls[0]
	assert.Equal(t, "Foo", foo.Name)
	assert.Equal(t, "A foo.", foo.Doc)
	require.Equal(t, typespec.ClassKind, foo.Type.Kind)
	require.Len(t, foo.Type.ConstructorParams, 1)
	assert.Equal(t, "x", foo.Type.ConstructorParams[0].Name)
	assert.Equal(t, typespec.Named("number"), foo.Type.ConstructorParams[0].Type)

	assert.Nil(t, foo.Property("constructor"))
	require.Len(t, foo.Properties, 2)
	assert.Equal(t, "x", foo.Properties[0].Name)
	assert.Equal(t, "value", foo.Properties[1].Name)
}

func TestExtract_ConstructorOfInterfaceStaysProperty(t *testing.T) {
	src := `// Foo:: interface
class Foo {
  // :: (number)
  constructor(x) {}
}
`
	decls := mustExtract(t, src)
	require.Len(t, decls, 1)
	assert.Nil(t, decls[0].Type.ConstructorParams)
	require.NotNil(t, decls[0].Property("constructor"))
}

func TestExtract_ImplicitTypes(t *testing.T) {
	src := `// ::
class A {}

// ::
function f(x) {}

// ::
const v = 1;

// ::
export function g() {}
`
	decls := mustExtract(t, src)
	require.Len(t, decls, 4)

	assert.Equal(t, "A", decls[0].Name)
	assert.Equal(t, typespec.ClassKind, decls[0].Type.Kind)

	assert.Equal(t, "f", decls[1].Name)
	assert.Equal(t, typespec.FunctionKind, decls[1].Type.Kind)
	assert.NotNil(t, decls[1].Type.Params)
	assert.Empty(t, decls[1].Type.Params)

	assert.Equal(t, "v", decls[2].Name)
	assert.Equal(t, typespec.Any(), decls[2].Type)

	assert.Equal(t, "g", decls[3].Name)
}

func TestExtract_DocParagraphs(t *testing.T) {
	src := `// add:: (number, number) → number
// Adds two numbers.
//
// More detail.
function add(a, b) { return a + b }
`
	decls := mustExtract(t, src)
	require.Len(t, decls, 1)
	assert.Equal(t, "Adds two numbers.\n\nMore detail.", decls[0].Doc)
	assert.Equal(t, []string{"a", "b"}, paramNames(decls[0].Type.Params))
}

func TestExtract_ProseBlocksIgnored(t *testing.T) {
	src := `// Just a note about the next thing.

// x:: number
let x = 1;

// TODO: remove me
// see https://example.com
let y = 2;
`
	decls := mustExtract(t, src)
	require.Len(t, decls, 1)
	assert.Equal(t, "x", decls[0].Name)
	assert.Equal(t, 3, decls[0].Line)
}

func TestExtract_TrailingCommentIgnored(t *testing.T) {
	src := `let y = 2; // x:: number
// z:: string
let z = "s"
`
	decls := mustExtract(t, src)
	require.Len(t, decls, 1)
	assert.Equal(t, "z", decls[0].Name)
	assert.Equal(t, 2, decls[0].Line)
}

func TestExtract_BlockComment(t *testing.T) {
	src := `/* Point:: interface
   A position.

     x:: number
     y:: number
*/
`
	decls := mustExtract(t, src)
	require.Len(t, decls, 1)
	assert.Equal(t, "A position.", decls[0].Doc)
	require.Len(t, decls[0].Properties, 2)
	assert.Equal(t, "x", decls[0].Properties[0].Name)
	assert.Equal(t, 4, decls[0].Properties[0].Line)
}

func TestExtract_TypeScript(t *testing.T) {
	src := `export class Greeter {
  // :: (string) → void
  greet(name: string): void {}
}
`
	decls, err := Extract([]byte(src), parser.TypeScript)
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "Greeter", decls[0].Name)
	greet := decls[0].Property("greet")
	require.NotNil(t, greet)
	assert.Equal(t, []string{"name"}, paramNames(greet.Type.Params))
}

func TestExtract_NoComments(t *testing.T) {
	decls := mustExtract(t, "function f() {}\n")
	assert.Empty(t, decls)
}

func TestExtract_UnknownHeadLogged(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	decls, err := ExtractString("//bad\n// a:: number\nlet a = 1;\n")
	require.NoError(t, err)
	assert.Empty(t, decls)
	assert.Contains(t, logs.String(), "skipping comment block")
	assert.Contains(t, logs.String(), "line=1")
}
