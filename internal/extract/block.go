package extract

import (
	"github.com/toolness/getdocs2ts/internal/source"
)

// Block is a paragraph of comment lines bound to the element it documents.
type Block struct {
	Lines   []source.CommentLine
	Element source.Element
}

// GatherBlocks splits every comment run of the unit into blocks of lines on
// physically adjacent source rows. A blank source line between two comments
// of the same run starts a new block with the same element. Blocks are
// returned in source order.
func GatherBlocks(u *source.Unit) []Block {
	var blocks []Block
	for _, run := range u.CommentRuns() {
		var current []source.CommentLine
		for _, line := range run.Lines {
			if len(current) > 0 && line.Line != current[len(current)-1].Line+1 {
				blocks = append(blocks, Block{Lines: current, Element: run.Anchor})
				current = nil
			}
			current = append(current, line)
		}
		if len(current) > 0 {
			blocks = append(blocks, Block{Lines: current, Element: run.Anchor})
		}
	}
	return blocks
}
