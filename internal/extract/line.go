package extract

import (
	"strings"
	"unicode"
)

// LineKind classifies one comment line.
type LineKind int

const (
	// DeclarationLine is `<indent><identifier?><separator><typeSpec>`.
	DeclarationLine LineKind = iota
	// DocumentationLine is indented prose.
	DocumentationLine
	// EmptyLine is whitespace only.
	EmptyLine
)

// String returns a readable name for the kind.
func (k LineKind) String() string {
	switch k {
	case DeclarationLine:
		return "declaration"
	case DocumentationLine:
		return "documentation"
	default:
		return "empty"
	}
}

// Line is a classified comment line.
type Line struct {
	Kind   LineKind
	Indent int

	// Identifier and TypeSpec are set for declaration lines; both may be
	// empty.
	Identifier string
	TypeSpec   string

	// Text is the line content after the indent, for documentation lines.
	Text string
}

// separators in match order; longer forms first.
var separators = []string{"::-", "::", ":-", ":"}

// ClassifyLine turns one comment line (markers already removed) into a Line.
func ClassifyLine(text string) (Line, error) {
	text = strings.TrimRightFunc(text, unicode.IsSpace)
	body := strings.TrimLeftFunc(text, unicode.IsSpace)
	indent := len([]rune(text)) - len([]rune(body))

	if body == "" {
		return Line{Kind: EmptyLine, Indent: indent}, nil
	}

	ident := leadingIdentifier(body)
	if sep, spec, spaced, ok := splitSeparator(body[len(ident):]); ok {
		// A bare colon directly after a word is prose ("Note: ..."); it only
		// separates when nothing precedes it or it is set off by spaces.
		if sep != ":" || ident == "" || spaced {
			return Line{
				Kind:       DeclarationLine,
				Indent:     indent,
				Identifier: ident,
				TypeSpec:   spec,
			}, nil
		}
	}

	if indent > 0 {
		return Line{Kind: DocumentationLine, Indent: indent, Text: body}, nil
	}
	return Line{}, ErrUnknownSyntax
}

// StripSeparator removes a leading declaration separator and the whitespace
// around it, returning the type spec that follows.
func StripSeparator(text string) (string, error) {
	_, spec, _, ok := splitSeparator(text)
	if !ok {
		return "", ErrMalformedPrefix
	}
	return spec, nil
}

// splitSeparator matches a separator at the start of text (after optional
// whitespace, reported as spaced) and returns it with the remaining spec.
func splitSeparator(text string) (sep, spec string, spaced, ok bool) {
	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
	spaced = len(trimmed) < len(text)

	for _, s := range separators {
		if !strings.HasPrefix(trimmed, s) {
			continue
		}
		rest := trimmed[len(s):]
		if s == ":" && rest != "" && !unicode.IsSpace(rune(rest[0])) {
			return "", "", false, false
		}
		return s, strings.TrimSpace(rest), spaced, true
	}
	return "", "", false, false
}

func leadingIdentifier(s string) string {
	for i, r := range s {
		if !(r == '_' || r == '$' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return s[:i]
		}
	}
	return s
}
