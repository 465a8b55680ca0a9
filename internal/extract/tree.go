package extract

import (
	"log/slog"
	"strings"

	"github.com/toolness/getdocs2ts/internal/source"
)

// blockParser parses the classified lines of one block by recursive descent.
type blockParser struct {
	x     *extractor
	block Block
	lines []Line
	pos   int
}

// parseBlock classifies the lines of b and parses its declarations. A block
// that does not open with a declaration line is plain prose and is skipped.
func (x *extractor) parseBlock(b Block) error {
	if len(b.Lines) == 0 {
		return nil
	}
	head, err := ClassifyLine(b.Lines[0].Text)
	if err != nil {
		slog.Debug("skipping comment block",
			slog.Int("line", b.Lines[0].Line),
			slog.String("text", b.Lines[0].Text),
			slog.Any("err", err))
		return nil
	}
	if head.Kind != DeclarationLine {
		return nil
	}

	p := &blockParser{x: x, block: b, lines: make([]Line, len(b.Lines))}
	p.lines[0] = head
	for i := 1; i < len(b.Lines); i++ {
		l, err := ClassifyLine(b.Lines[i].Text)
		if err != nil {
			return p.errorAt(i, err)
		}
		p.lines[i] = l
	}
	return p.parseTop()
}

// parseTop parses each head-level declaration of the block and links it into
// the result. Prose between heads is skipped.
func (p *blockParser) parseTop() error {
	elem := p.block.Element
	for {
		for !p.eof() && p.peek().Kind != DeclarationLine {
			p.pos++
		}
		if p.eof() {
			return nil
		}

		parent := p.x.parentFor(elem)
		decl, err := p.parseDeclaration(elem)
		if err != nil {
			return err
		}
		p.x.attach(parent, decl, elem)
	}
}

// parseDeclaration parses the declaration line at the cursor, its prose and
// any children indented deeper than it. elem is the documented element for a
// head declaration and the zero Element for nested ones.
func (p *blockParser) parseDeclaration(elem source.Element) (*Declaration, error) {
	at := p.pos
	l := p.lines[at]

	name, err := resolveName(l, elem)
	if err != nil {
		return nil, p.errorAt(at, err)
	}
	typ, err := resolveType(l, elem)
	if err != nil {
		return nil, p.errorAt(at, err)
	}
	if err := backfillParams(typ, elem); err != nil {
		return nil, p.errorAt(at, err)
	}

	decl := &Declaration{
		Name:       name,
		TypeSpec:   l.TypeSpec,
		Type:       typ,
		Line:       p.block.Lines[at].Line,
		ParamNames: formalNames(elem),
	}
	p.pos++
	decl.Doc = p.parseDoc(l.Indent)

	if !p.eof() {
		if next := p.peek(); next.Kind == DeclarationLine && next.Indent > l.Indent {
			props, err := p.parseProperties(next.Indent)
			if err != nil {
				return nil, err
			}
			decl.Properties = props
		}
	}
	return decl, nil
}

// parseProperties parses sibling declarations at exactly indent ci. It stops
// without consuming at the first line that belongs to a shallower level.
func (p *blockParser) parseProperties(ci int) ([]*Declaration, error) {
	var props []*Declaration
	for !p.eof() {
		l := p.peek()
		switch {
		case l.Kind == EmptyLine:
			p.pos++
		case l.Indent < ci:
			return props, nil
		case l.Kind == DocumentationLine || l.Indent > ci:
			return nil, p.errorAt(p.pos, ErrMalformedNesting)
		default:
			decl, err := p.parseDeclaration(source.Element{})
			if err != nil {
				return nil, err
			}
			props = append(props, decl)
		}
	}
	return props, nil
}

// parseDoc consumes the prose following a declaration at the given indent,
// up to the next declaration line or a documentation line indented less than
// the declaration, and returns it dedented.
func (p *blockParser) parseDoc(indent int) string {
	var doc []Line
	for !p.eof() {
		l := p.peek()
		if l.Kind == DeclarationLine || (l.Kind == DocumentationLine && l.Indent < indent) {
			break
		}
		doc = append(doc, l)
		p.pos++
	}
	return formatDoc(doc)
}

func formatDoc(doc []Line) string {
	margin := -1
	for _, l := range doc {
		if l.Kind == DocumentationLine && (margin < 0 || l.Indent < margin) {
			margin = l.Indent
		}
	}
	if margin < 0 {
		return ""
	}

	out := make([]string, 0, len(doc))
	for _, l := range doc {
		if l.Kind == EmptyLine {
			out = append(out, "")
			continue
		}
		out = append(out, strings.Repeat(" ", l.Indent-margin)+l.Text)
	}
	return strings.Trim(strings.Join(out, "\n"), "\n")
}

func (p *blockParser) eof() bool { return p.pos >= len(p.lines) }

func (p *blockParser) peek() Line { return p.lines[p.pos] }

func (p *blockParser) errorAt(i int, err error) error {
	return &Error{Line: p.block.Lines[i].Line, Text: p.block.Lines[i].Text, Err: err}
}
