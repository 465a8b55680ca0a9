package typespec

import (
	"fmt"
	"strings"
	"unicode"
)

// SyntaxError reports a malformed signature.
type SyntaxError struct {
	Input string
	Pos   int // rune offset into Input
	Msg   string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("type syntax error at offset %d in %q: %s", e.Pos, e.Input, e.Msg)
}

// Parse parses a signature such as "?Foo", "[number]" or
// "(a: string, ?Object) → bool" into a Type tree.
func Parse(text string) (*Type, error) {
	p := &parser{src: []rune(text), input: text}

	t, err := p.parseType()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q", string(p.peek()))
	}
	return t, nil
}

// parser is a recursive-descent parser over the runes of one signature.
type parser struct {
	src   []rune
	pos   int
	input string
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) peekAt(offset int) rune {
	if p.pos+offset >= len(p.src) {
		return 0
	}
	return p.src[p.pos+offset]
}

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

// eat consumes r (after optional whitespace) and reports whether it did.
func (p *parser) eat(r rune) bool {
	p.skipSpace()
	if p.peek() == r {
		p.pos++
		return true
	}
	return false
}

func (p *parser) eatString(s string) bool {
	p.skipSpace()
	rs := []rune(s)
	for i, r := range rs {
		if p.peekAt(i) != r {
			return false
		}
	}
	p.pos += len(rs)
	return true
}

func (p *parser) expect(r rune) error {
	if !p.eat(r) {
		if p.eof() {
			return p.errorf("expected %q, got end of input", string(r))
		}
		return p.errorf("expected %q, got %q", string(r), string(p.peek()))
	}
	return nil
}

func (p *parser) eatArrow() bool {
	p.skipSpace()
	if p.peek() == '→' {
		p.pos++
		return true
	}
	return p.eatString("->")
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Input: p.input, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// ident consumes an identifier, returning "" when none starts here.
func (p *parser) ident() string {
	p.skipSpace()
	if !isIdentStart(p.peek()) {
		return ""
	}
	start := p.pos
	for !p.eof() && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	return string(p.src[start:p.pos])
}

func (p *parser) parseType() (*Type, error) {
	first, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	variants := []*Type{first}
	for p.eat('|') {
		next, err := p.parsePrefix()
		if err != nil {
			return nil, err
		}
		variants = append(variants, next)
	}
	if len(variants) == 1 {
		return first, nil
	}
	return &Type{Kind: UnionKind, Variants: variants}, nil
}

func (p *parser) parsePrefix() (*Type, error) {
	if p.eat('?') {
		inner, err := p.parsePrefix()
		if err != nil {
			return nil, err
		}
		return Nullable(inner), nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*Type, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("expected type, got end of input")
	}

	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		params, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		var returns *Type
		if p.eatArrow() {
			if returns, err = p.parseType(); err != nil {
				return nil, err
			}
		}
		return Function(params, returns), nil

	case c == '[':
		p.pos++
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		return &Type{Kind: ArrayKind, Inner: inner}, nil

	case c == '{':
		p.pos++
		fields, err := p.parseFields()
		if err != nil {
			return nil, err
		}
		return &Type{Kind: ObjectKind, Fields: fields}, nil

	case c == '*':
		p.pos++
		return Any(), nil

	case c == '"' || c == '\'':
		return p.parseString()

	case unicode.IsDigit(c) || (c == '-' && unicode.IsDigit(p.peekAt(1))):
		return p.parseNumber(), nil

	case isIdentStart(c):
		return p.parseName()
	}

	return nil, p.errorf("unexpected %q", string(c))
}

// parseParams parses a parameter list after its opening paren.
func (p *parser) parseParams() ([]*Param, error) {
	params := []*Param{}
	if p.eat(')') {
		return params, nil
	}
	for {
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if p.eat(',') {
			continue
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return params, nil
	}
}

func (p *parser) parseParam() (*Param, error) {
	param := &Param{Rest: p.eatString("...")}

	// A leading "name:" or "name?:" labels the parameter; anything else is
	// the start of the type itself.
	save := p.pos
	if name := p.ident(); name != "" {
		optional := p.eat('?')
		if p.eat(':') {
			param.Name = name
			param.Optional = optional
		} else {
			p.pos = save
		}
	}

	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	param.Type = t

	if p.eat('=') {
		def := p.defaultText()
		if def == "" {
			return nil, p.errorf("expected default value")
		}
		param.Default = def
	}
	return param, nil
}

// defaultText consumes raw text up to the next top-level ',' or ')'.
func (p *parser) defaultText() string {
	start := p.pos
	depth := 0
	for !p.eof() {
		switch p.peek() {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				return strings.TrimSpace(string(p.src[start:p.pos]))
			}
			depth--
		case ',':
			if depth == 0 {
				return strings.TrimSpace(string(p.src[start:p.pos]))
			}
		}
		p.pos++
	}
	return strings.TrimSpace(string(p.src[start:p.pos]))
}

func (p *parser) parseFields() ([]*Param, error) {
	var fields []*Param
	if p.eat('}') {
		return fields, nil
	}
	for {
		name := p.ident()
		if name == "" {
			return nil, p.errorf("expected field name")
		}
		field := &Param{Name: name, Optional: p.eat('?')}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		field.Type = t
		fields = append(fields, field)

		if p.eat(',') {
			continue
		}
		if err := p.expect('}'); err != nil {
			return nil, err
		}
		return fields, nil
	}
}

func (p *parser) parseString() (*Type, error) {
	quote := p.peek()
	start := p.pos
	p.pos++
	for !p.eof() {
		c := p.src[p.pos]
		p.pos++
		if c == '\\' {
			p.pos++
			continue
		}
		if c == quote {
			return &Type{Kind: LiteralKind, Value: string(p.src[start:p.pos])}, nil
		}
	}
	p.pos = start
	return nil, p.errorf("unterminated string literal")
}

func (p *parser) parseNumber() *Type {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for !p.eof() && (unicode.IsDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	return &Type{Kind: LiteralKind, Value: string(p.src[start:p.pos])}
}

func (p *parser) parseName() (*Type, error) {
	name := p.ident()
	for p.peek() == '.' && isIdentStart(p.peekAt(1)) {
		p.pos++
		name += "." + p.ident()
	}

	t := Named(name)
	if p.eat('<') {
		for {
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			t.TypeParams = append(t.TypeParams, arg)
			if p.eat(',') {
				continue
			}
			if err := p.expect('>'); err != nil {
				return nil, err
			}
			break
		}
	}
	return t, nil
}
