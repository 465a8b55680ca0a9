package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// newTypeScriptParser creates a tree-sitter parser configured for TypeScript.
func newTypeScriptParser() *sitter.Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())
	return parser
}

// newJavaScriptParser creates a tree-sitter parser configured for JavaScript.
func newJavaScriptParser() *sitter.Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	return parser
}

// ElementNodeTypes maps tree-sitter node types that can carry a doc comment
// to the coarse element category getdocs reasons about. Both grammars share
// most names; TypeScript-only spellings are listed alongside.
var ElementNodeTypes = map[string]string{
	// Classes
	"class_declaration":          "class",
	"abstract_class_declaration": "class",

	// Functions
	"function_declaration":           "function",
	"generator_function_declaration": "function",

	// Methods
	"method_definition": "method",

	// Variables
	"lexical_declaration":  "variable", // const, let
	"variable_declaration": "variable", // var

	// Class fields
	"field_definition":        "field",
	"public_field_definition": "field",

	// Statements that may be this.<field> assignments
	"expression_statement": "statement",

	"program": "program",
}

// GetElementCategory returns the element category for a tree-sitter node.
func GetElementCategory(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return ElementNodeTypes[node.Type()]
}
