// Package parser provides tree-sitter based parsing for JavaScript and
// TypeScript source files.
//
// The parser package wraps the tree-sitter library so the rest of getdocs
// works against a single ParseResult type, whichever grammar produced it.
package parser

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// Language represents a supported programming language.
type Language string

const (
	// JavaScript represents the JavaScript programming language.
	JavaScript Language = "javascript"
	// TypeScript represents the TypeScript programming language.
	TypeScript Language = "typescript"
)

// Parser wraps tree-sitter for code parsing.
// A Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
	lang   Language
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	// Tree is the complete tree-sitter parse tree.
	Tree *sitter.Tree
	// Root is the root node of the AST.
	Root *sitter.Node
	// Source is the original source code that was parsed.
	Source []byte
	// Language is the programming language of the source.
	Language Language
}

// NewParser creates a parser for the given language.
// Returns an UnsupportedLanguageError if the language is not supported.
func NewParser(lang Language) (*Parser, error) {
	var p *sitter.Parser

	switch lang {
	case JavaScript:
		p = newJavaScriptParser()
	case TypeScript:
		p = newTypeScriptParser()
	default:
		return nil, &UnsupportedLanguageError{Language: string(lang)}
	}

	return &Parser{
		parser: p,
		lang:   lang,
	}, nil
}

// Parse parses source code and returns the AST.
func (p *Parser) Parse(source []byte) (*ParseResult, error) {
	return p.ParseCtx(context.Background(), source)
}

// ParseCtx parses source code, giving up when ctx is cancelled.
func (p *Parser) ParseCtx(ctx context.Context, source []byte) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, &ParseError{
			Message: err.Error(),
		}
	}

	return &ParseResult{
		Tree:     tree,
		Root:     tree.RootNode(),
		Source:   source,
		Language: p.lang,
	}, nil
}

// Close releases parser resources.
// After calling Close, the parser should not be used.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// Close releases the parse tree resources.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
		r.Tree = nil
		r.Root = nil
	}
}

// HasErrors returns true if the parse tree contains syntax errors.
func (r *ParseResult) HasErrors() bool {
	if r.Root == nil {
		return false
	}
	return r.Root.HasError()
}

// FirstError returns a ParseError locating the first ERROR or MISSING node,
// or nil when the tree is clean.
func (r *ParseResult) FirstError() *ParseError {
	if !r.HasErrors() {
		return nil
	}

	var found *sitter.Node
	r.WalkNodes(func(node *sitter.Node) bool {
		if node.IsError() || node.IsMissing() {
			found = node
			return false
		}
		return true
	})

	pe := &ParseError{Message: "syntax error", Line: 1, Column: 1}
	if found != nil {
		pt := found.StartPoint()
		pe.Line = pt.Row + 1
		pe.Column = pt.Column + 1
		if found.IsMissing() {
			pe.Message = "missing " + found.Type()
		}
	}
	return pe
}

// WalkNodes traverses the AST depth-first, calling the visitor function
// for each node. If the visitor returns false, traversal stops.
func (r *ParseResult) WalkNodes(visitor func(*sitter.Node) bool) {
	if r.Root == nil {
		return
	}
	walkNode(r.Root, visitor)
}

// walkNode is a helper for depth-first AST traversal.
func walkNode(node *sitter.Node, visitor func(*sitter.Node) bool) bool {
	if !visitor(node) {
		return false
	}
	for i := uint32(0); i < node.ChildCount(); i++ {
		if !walkNode(node.Child(int(i)), visitor) {
			return false
		}
	}
	return true
}

// NodeText returns the source text for a node.
func (r *ParseResult) NodeText(node *sitter.Node) string {
	if node == nil || r.Source == nil {
		return ""
	}
	return node.Content(r.Source)
}

// LanguageFromExtension returns the language for a file extension.
// Returns empty string if the extension is not recognized.
func LanguageFromExtension(ext string) Language {
	switch ext {
	case ".js", ".jsx", ".mjs", ".cjs":
		return JavaScript
	case ".ts", ".mts", ".cts":
		return TypeScript
	default:
		return ""
	}
}

// ParseLanguage maps a user-supplied language name to a Language.
func ParseLanguage(name string) (Language, error) {
	switch name {
	case "javascript", "js":
		return JavaScript, nil
	case "typescript", "ts":
		return TypeScript, nil
	default:
		return "", &UnsupportedLanguageError{Language: name}
	}
}
