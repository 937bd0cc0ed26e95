package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// mathParser strips the dollar signs around inline math so that $x$
// reads as x. A doubled $$ stays literal and a lone $ is ordinary text.
type mathParser struct{}

var dollar = []byte{'$'}

func (mathParser) Trigger() []byte {
	return dollar
}

func (mathParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, seg := block.PeekLine()
	if len(line) > 1 && line[1] == '$' {
		block.Advance(2)
		return ast.NewTextSegment(seg.WithStop(seg.Start + 2))
	}
	end := bytes.IndexByte(line[1:], '$')
	if end <= 0 {
		return nil
	}
	block.Advance(end + 2)
	return ast.NewTextSegment(text.NewSegment(seg.Start+1, seg.Start+1+end))
}
