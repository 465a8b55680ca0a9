package source

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// CommentLine is one physical line of comment text with its markers removed.
type CommentLine struct {
	Text string
	// Line is the 1-based source line.
	Line int
}

// CommentRun is a sequence of comments that are adjacent siblings in the
// syntax tree, together with the element they document.
type CommentRun struct {
	Lines  []CommentLine
	Anchor Element

	start uint32
}

// CommentRuns returns every comment run in the unit in source order.
//
// A run is anchored to the next named sibling after it. A run that is the
// last thing in its container is anchored to the container: the program
// element at top level, an OtherElement on the container node elsewhere.
// Trailing comments that share a line with preceding code are not part of
// any run.
func (u *Unit) CommentRuns() []CommentRun {
	var runs []CommentRun

	u.result.WalkNodes(func(node *sitter.Node) bool {
		var current []*sitter.Node
		flush := func(next *sitter.Node) {
			if len(current) == 0 {
				return
			}
			run := CommentRun{Anchor: u.anchor(node, next), start: current[0].StartByte()}
			for _, c := range current {
				run.Lines = append(run.Lines, u.commentLines(c)...)
			}
			runs = append(runs, run)
			current = nil
		}

		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() != "comment" {
				flush(child)
				continue
			}
			if len(current) == 0 && isTrailing(child) {
				continue
			}
			current = append(current, child)
		}
		flush(nil)
		return true
	})

	// Runs were collected container by container.
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].start < runs[j].start })
	return runs
}

func (u *Unit) anchor(container, next *sitter.Node) Element {
	if next != nil {
		return u.ElementFor(next)
	}
	return u.elementAt(container)
}

// isTrailing reports whether c starts on the line where the preceding
// non-comment sibling ends, as in `foo(); // note`.
func isTrailing(c *sitter.Node) bool {
	prev := c.PrevNamedSibling()
	if prev == nil || prev.Type() == "comment" {
		return false
	}
	return prev.EndPoint().Row == c.StartPoint().Row
}

// commentLines strips comment markers, splitting block comments into their
// physical lines.
func (u *Unit) commentLines(c *sitter.Node) []CommentLine {
	text := u.result.NodeText(c)
	first := int(c.StartPoint().Row) + 1

	if strings.HasPrefix(text, "//") {
		return []CommentLine{{Text: strings.TrimRight(text[2:], "\r"), Line: first}}
	}

	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	parts := strings.Split(text, "\n")
	lines := make([]CommentLine, 0, len(parts))
	for i, part := range parts {
		lines = append(lines, CommentLine{Text: strings.TrimRight(part, "\r"), Line: first + i})
	}
	return lines
}
