package parser

import (
	"errors"
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

const testJSSource = `// Greeter::
class Greeter {
  // :: (string) → string
  greet(name) {
    return this.prefix + name
  }
}

function newGreeter(prefix) {
  return new Greeter(prefix)
}

const greeting = newGreeter("Hello, ")
`

func TestNewParser(t *testing.T) {
	t.Run("creates JavaScript parser", func(t *testing.T) {
		p, err := NewParser(JavaScript)
		if err != nil {
			t.Fatalf("NewParser(JavaScript) failed: %v", err)
		}
		defer p.Close()
	})

	t.Run("creates TypeScript parser", func(t *testing.T) {
		p, err := NewParser(TypeScript)
		if err != nil {
			t.Fatalf("NewParser(TypeScript) failed: %v", err)
		}
		defer p.Close()
	})

	t.Run("rejects unsupported language", func(t *testing.T) {
		_, err := NewParser(Language("fortran"))
		if err == nil {
			t.Fatal("expected error for unsupported language")
		}

		var ule *UnsupportedLanguageError
		if !errors.As(err, &ule) {
			t.Errorf("expected UnsupportedLanguageError, got %T", err)
		}
	})
}

func TestParser_Parse(t *testing.T) {
	p, err := NewParser(JavaScript)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	t.Run("parses valid JavaScript source", func(t *testing.T) {
		result, err := p.Parse([]byte(testJSSource))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		defer result.Close()

		if result.Root == nil {
			t.Fatal("expected non-nil root node")
		}
		if result.Root.Type() != "program" {
			t.Errorf("expected root type 'program', got %q", result.Root.Type())
		}
		if result.Language != JavaScript {
			t.Errorf("expected language %s, got %s", JavaScript, result.Language)
		}
		if result.HasErrors() {
			t.Error("expected no parse errors for valid source")
		}
		if result.FirstError() != nil {
			t.Error("expected FirstError to be nil for valid source")
		}
	})

	t.Run("reports first syntax error", func(t *testing.T) {
		result, err := p.Parse([]byte("let x = 1\nfunction broken( {\n"))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		defer result.Close()

		if !result.HasErrors() {
			t.Fatal("expected parse errors for invalid source")
		}
		pe := result.FirstError()
		if pe == nil {
			t.Fatal("expected a ParseError")
		}
		if pe.Line < 1 {
			t.Errorf("expected a 1-based line, got %d", pe.Line)
		}
	})
}

// nodesOfType collects the nodes of one tree-sitter type, depth first.
func nodesOfType(r *ParseResult, nodeType string) []*sitter.Node {
	var nodes []*sitter.Node
	r.WalkNodes(func(node *sitter.Node) bool {
		if node.Type() == nodeType {
			nodes = append(nodes, node)
		}
		return true
	})
	return nodes
}

func TestParseResult_NodeText(t *testing.T) {
	p, err := NewParser(JavaScript)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	result, err := p.Parse([]byte(testJSSource))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer result.Close()

	t.Run("finds comments", func(t *testing.T) {
		comments := nodesOfType(result, "comment")
		if len(comments) != 2 {
			t.Errorf("expected 2 comments, got %d", len(comments))
		}
	})

	t.Run("finds method definitions", func(t *testing.T) {
		methods := nodesOfType(result, "method_definition")
		if len(methods) != 1 {
			t.Fatalf("expected 1 method_definition, got %d", len(methods))
		}
		name := result.NodeText(methods[0].ChildByFieldName("name"))
		if name != "greet" {
			t.Errorf("expected method 'greet', got %q", name)
		}
	})
}

func TestParseResult_WalkNodes(t *testing.T) {
	p, err := NewParser(JavaScript)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	result, err := p.Parse([]byte(testJSSource))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer result.Close()

	t.Run("stops on false return", func(t *testing.T) {
		count := 0
		limit := 5
		result.WalkNodes(func(node *sitter.Node) bool {
			count++
			return count < limit
		})

		if count != limit {
			t.Errorf("expected to visit %d nodes, visited %d", limit, count)
		}
	})

	t.Run("node text covers declarations", func(t *testing.T) {
		classes := nodesOfType(result, "class_declaration")
		if len(classes) != 1 {
			t.Fatalf("expected 1 class, got %d", len(classes))
		}
		if !strings.HasPrefix(result.NodeText(classes[0]), "class Greeter") {
			t.Errorf("unexpected class text %q", result.NodeText(classes[0]))
		}
	})
}

func TestGetElementCategory(t *testing.T) {
	p, err := NewParser(JavaScript)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer p.Close()

	result, err := p.Parse([]byte(testJSSource))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer result.Close()

	tests := []struct {
		nodeType string
		want     string
	}{
		{"class_declaration", "class"},
		{"function_declaration", "function"},
		{"method_definition", "method"},
		{"lexical_declaration", "variable"},
		{"identifier", ""},
	}
	for _, tt := range tests {
		t.Run(tt.nodeType, func(t *testing.T) {
			nodes := nodesOfType(result, tt.nodeType)
			if len(nodes) == 0 {
				t.Fatalf("no %s nodes found", tt.nodeType)
			}
			if got := GetElementCategory(nodes[0]); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	if GetElementCategory(nil) != "" {
		t.Error("nil should have no category")
	}
}

func TestLanguageFromExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want Language
	}{
		{".js", JavaScript},
		{".mjs", JavaScript},
		{".ts", TypeScript},
		{".go", ""},
	}
	for _, tt := range tests {
		if got := LanguageFromExtension(tt.ext); got != tt.want {
			t.Errorf("LanguageFromExtension(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestParseError(t *testing.T) {
	err := &ParseError{
		Message: "syntax error",
		Line:    10,
		Column:  5,
	}
	expected := "10:5: syntax error"
	if got := err.Error(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestParseLanguage(t *testing.T) {
	for _, name := range []string{"javascript", "js"} {
		if got, err := ParseLanguage(name); err != nil || got != JavaScript {
			t.Errorf("ParseLanguage(%q) = %q, %v", name, got, err)
		}
	}
	if got, err := ParseLanguage("ts"); err != nil || got != TypeScript {
		t.Errorf("ParseLanguage(ts) = %q, %v", got, err)
	}

	var ule *UnsupportedLanguageError
	if _, err := ParseLanguage("coffee"); !errors.As(err, &ule) {
		t.Errorf("expected UnsupportedLanguageError, got %v", err)
	}
}
