package rich

import (
	"slices"
	"strings"
	"weak"

	"github.com/rjkroege/richtext/internal/runes"
)

// ParagraphStyle holds block level formatting.
type ParagraphStyle struct {
	// Indent is the leading indent, in the units given by WithIndentUnit.
	Indent int
}

// Paragraph is a block of top-level spans plus a paragraph type. Every
// paragraph but the first is preceded in the flat text by a line break,
// and the type's marker text sits between that break and the content.
type Paragraph struct {
	Children []*Span
	Type     ParagraphType
	Style    ParagraphStyle
}

// NewParagraph returns a Default paragraph holding children.
func NewParagraph(children ...*Span) *Paragraph {
	p := &Paragraph{Type: Default{}}
	p.Append(children...)
	return p
}

// Append adds top-level spans to the end of p.
func (p *Paragraph) Append(children ...*Span) {
	for _, c := range children {
		c.parent = weak.Pointer[Span]{}
		c.setParagraph(p)
	}
	p.Children = append(p.Children, children...)
}

func (p *Paragraph) insert(i int, spans ...*Span) {
	for _, c := range spans {
		c.parent = weak.Pointer[Span]{}
		c.setParagraph(p)
	}
	p.Children = slices.Insert(p.Children, i, spans...)
}

// StartText returns the marker text of the paragraph's type.
func (p *Paragraph) StartText() string {
	return StartText(p.Type)
}

// StartSpan returns the synthetic span holding the marker, positioned at
// start. It is rebuilt on every call because numbering can change under
// the paragraph.
func (p *Paragraph) StartSpan(start int) *Span {
	s := &Span{Text: p.StartText()}
	s.paragraph = weak.Make(p)
	s.TextRange = TextRange{Start: start, End: start + s.Len()}
	return s
}

// ContentLen returns the rune length of the paragraph's spans.
func (p *Paragraph) ContentLen() int {
	n := 0
	for _, c := range p.Children {
		n += c.FullLen()
	}
	return n
}

// Len returns the rune length of marker and content.
func (p *Paragraph) Len() int {
	return runes.Len(p.StartText()) + p.ContentLen()
}

// ContentText returns the text of the paragraph's spans.
func (p *Paragraph) ContentText() string {
	var sb strings.Builder
	for _, c := range p.Children {
		c.writeText(&sb)
	}
	return sb.String()
}

// Text returns the marker followed by the content.
func (p *Paragraph) Text() string {
	return p.StartText() + p.ContentText()
}

// IsEmpty reports whether the paragraph holds no text. The marker
// counts unless ignoreStart is set.
func (p *Paragraph) IsEmpty(ignoreStart bool) bool {
	if !ignoreStart && p.StartText() != "" {
		return false
	}
	for _, c := range p.Children {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// IsBlank reports whether the paragraph holds only whitespace. The marker
// counts unless ignoreStart is set.
func (p *Paragraph) IsBlank(ignoreStart bool) bool {
	if !ignoreStart && strings.TrimSpace(p.StartText()) != "" {
		return false
	}
	for _, c := range p.Children {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

// contentStart returns the offset of the first content rune of a
// paragraph whose line break (or document start when first) is at running.
func (p *Paragraph) contentStart(running int, first bool) int {
	if !first {
		running++
	}
	return running + runes.Len(p.StartText())
}

// SpanAt returns the span at offset, given that the paragraph's line
// break sits at running (or the paragraph starts the document when
// first is set). Offsets inside the marker yield the synthetic start
// span. The content end offset yields the last non-empty span, so that
// typing at the end of a line extends it; an empty paragraph gets a
// placeholder span so that it still owns one caret position.
func (p *Paragraph) SpanAt(offset, running int, first bool) (int, *Span) {
	markerStart := running
	if !first {
		markerStart++
	}
	start := p.StartSpan(markerStart)
	pos := start.TextRange.End
	end := pos + p.ContentLen()
	if start.TextRange.Contains(offset) {
		return end, start
	}
	for _, c := range p.Children {
		next, m := c.SpanAt(offset, pos)
		if m != nil {
			return end, m
		}
		pos = next
	}
	if offset == end {
		return end, p.lastSpan()
	}
	return end, nil
}

// lastSpan returns the last span with text, or the placeholder.
func (p *Paragraph) lastSpan() *Span {
	for i := len(p.Children) - 1; i >= 0; i-- {
		if m := p.Children[i].LastNonEmpty(); m != nil {
			return m
		}
	}
	return p.placeholder()
}

// placeholder returns the first top-level span, creating an empty one
// when the paragraph has none.
func (p *Paragraph) placeholder() *Span {
	if len(p.Children) == 0 {
		p.Append(&Span{})
	}
	return p.Children[0]
}

// SpansInRange returns the content spans whose own text intersects r.
func (p *Paragraph) SpansInRange(r TextRange, running int, first bool) (int, []*Span) {
	pos := p.contentStart(running, first)
	var out []*Span
	for _, c := range p.Children {
		next, found := c.SpansInRange(r, pos)
		out = append(out, found...)
		pos = next
	}
	return pos, out
}

// RemoveTextRange deletes the content text that r covers. The marker and
// line break are left to the document. If every span is removed, the
// first one survives, emptied, as the placeholder carrying its style.
func (p *Paragraph) RemoveTextRange(r TextRange, running int, first bool) int {
	pos := p.contentStart(running, first)
	var keep *Span
	if len(p.Children) > 0 {
		keep = p.Children[0]
	}
	var dead []int
	for i, c := range p.Children {
		next, kept := c.RemoveTextRange(r, pos)
		if kept == nil {
			dead = append(dead, i)
		}
		pos = next
	}
	p.Children = removeIndices(p.Children, dead)
	if len(p.Children) == 0 && keep != nil {
		p.Append(&Span{Style: keep.Style, Kind: plainKind(keep.Kind)})
	}
	return pos
}

// plainKind drops kinds that must not survive on an empty placeholder.
func plainKind(k Kind) Kind {
	switch k.(type) {
	case Code, Custom:
		return k
	}
	return nil
}

// StartTextSpanStyle returns the style that typing at the start of the
// paragraph inherits: the style of the first span with text, or of the
// retained placeholder.
func (p *Paragraph) StartTextSpanStyle() Style {
	for _, c := range p.Children {
		if m := c.firstNonEmpty(); m != nil {
			return m.EffectiveStyle()
		}
	}
	if len(p.Children) > 0 {
		return p.Children[0].Style
	}
	return Style{}
}

// RemoveEmptyChildren prunes empty spans at every depth. A paragraph
// left with no content keeps its first span as the placeholder.
func (p *Paragraph) RemoveEmptyChildren() {
	if len(p.Children) == 0 {
		return
	}
	first := p.Children[0]
	var dead []int
	for i, c := range p.Children {
		c.pruneEmpty()
		if c.IsEmpty() {
			dead = append(dead, i)
		}
	}
	p.Children = removeIndices(p.Children, dead)
	if len(p.Children) == 0 {
		first.Text = ""
		first.Children = nil
		first.Kind = plainKind(first.Kind)
		p.Append(first)
	}
}

// Trim removes leading and trailing whitespace from the content.
func (p *Paragraph) Trim() {
	for _, c := range p.Children {
		if !c.TrimStart() {
			break
		}
	}
	for i := len(p.Children) - 1; i >= 0; i-- {
		if !p.Children[i].TrimEnd() {
			break
		}
	}
	p.RemoveEmptyChildren()
}

// Copy returns a deep copy of p.
func (p *Paragraph) Copy() *Paragraph {
	c := &Paragraph{Type: p.Type, Style: p.Style}
	c.Children = make([]*Span, 0, len(p.Children))
	for _, s := range p.Children {
		c.Children = append(c.Children, s.Copy(c))
	}
	return c
}

// Split cuts the content at rune k and returns a new paragraph of type
// NextType(p.Type) holding everything from k on. The new paragraph gets
// an empty placeholder carrying the style at the cut when nothing
// follows it.
func (p *Paragraph) Split(k int) *Paragraph {
	np := &Paragraph{Type: NextType(p.Type), Style: p.Style}
	cutStyle := p.styleBefore(k)
	for i, c := range p.Children {
		cl := c.FullLen()
		if k < cl {
			tail := c.splitAt(k)
			moved := slices.Clone(p.Children[i+1:])
			p.Children = p.Children[:i+1]
			if !tail.IsEmpty() {
				np.Append(tail)
			}
			np.Append(moved...)
			break
		}
		k -= cl
	}
	if len(np.Children) == 0 {
		np.Append(&Span{Style: cutStyle})
	}
	p.RemoveEmptyChildren()
	return np
}

// styleBefore returns the effective style of the rune before content
// offset k, or the start style when k is 0.
func (p *Paragraph) styleBefore(k int) Style {
	if k <= 0 {
		return p.StartTextSpanStyle()
	}
	_, s := p.spanAtContent(k - 1)
	if s == nil {
		return p.StartTextSpanStyle()
	}
	return s.EffectiveStyle()
}

// spanAtContent looks up a content-relative offset.
func (p *Paragraph) spanAtContent(k int) (int, *Span) {
	pos := 0
	for _, c := range p.Children {
		next, m := c.SpanAt(k, pos)
		if m != nil {
			return next, m
		}
		pos = next
	}
	return pos, nil
}

// reindex assigns ranges to every span of a paragraph whose content
// starts at contentStart and returns the content end.
func (p *Paragraph) reindex(contentStart int) int {
	pos := contentStart
	for _, c := range p.Children {
		pos = c.reindex(pos)
	}
	return pos
}

// mergeChildren joins adjacent identical siblings at every depth.
func (p *Paragraph) mergeChildren() {
	for _, c := range p.Children {
		c.mergeChildren()
	}
	p.Children = mergeSiblings(p.Children)
}
