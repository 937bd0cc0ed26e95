package rich

import (
	"slices"
	"strings"
	"unicode"
	"weak"

	"github.com/rjkroege/richtext/internal/runes"
)

// Span represents a styled run of text that may be further subdivided.
// Children are laid out immediately after the span's own Text, in order.
// A span owns its children; the paragraph and parent references are weak
// and only used for navigation.
type Span struct {
	Text     string
	Style    Style
	Kind     Kind
	Children []*Span

	// TextRange is the rune range of Text in the flat document text. It
	// is recomputed by every Document mutation.
	TextRange TextRange

	paragraph weak.Pointer[Paragraph]
	parent    weak.Pointer[Span]
}

// NewSpan returns a span with the given own text, style and children.
func NewSpan(text string, style Style, children ...*Span) *Span {
	s := &Span{Text: text, Style: style}
	s.Append(children...)
	return s
}

// Append adds children to the end of s.
func (s *Span) Append(children ...*Span) {
	for _, c := range children {
		s.adopt(c)
	}
	s.Children = append(s.Children, children...)
}

func (s *Span) adopt(c *Span) {
	c.parent = weak.Make(s)
	c.setParagraph(s.paragraph.Value())
}

func (s *Span) setParagraph(p *Paragraph) {
	s.paragraph = weak.Make(p)
	for _, c := range s.Children {
		c.parent = weak.Make(s)
		c.setParagraph(p)
	}
}

// Paragraph returns the paragraph holding s, or nil.
func (s *Span) Paragraph() *Paragraph {
	return s.paragraph.Value()
}

// Parent returns the enclosing span, or nil for a top-level span.
func (s *Span) Parent() *Span {
	return s.parent.Value()
}

// Len returns the rune length of the span's own text.
func (s *Span) Len() int {
	return runes.Len(s.Text)
}

// FullLen returns the rune length of the span and all its descendants.
func (s *Span) FullLen() int {
	n := s.Len()
	for _, c := range s.Children {
		n += c.FullLen()
	}
	return n
}

// FullText returns the text of the span followed by its descendants'.
func (s *Span) FullText() string {
	if len(s.Children) == 0 {
		return s.Text
	}
	var sb strings.Builder
	s.writeText(&sb)
	return sb.String()
}

func (s *Span) writeText(sb *strings.Builder) {
	sb.WriteString(s.Text)
	for _, c := range s.Children {
		c.writeText(sb)
	}
}

// IsEmpty reports whether neither s nor any descendant holds text.
func (s *Span) IsEmpty() bool {
	if s.Text != "" {
		return false
	}
	for _, c := range s.Children {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// IsBlank reports whether s and its descendants hold only whitespace.
func (s *Span) IsBlank() bool {
	if strings.TrimSpace(s.Text) != "" {
		return false
	}
	for _, c := range s.Children {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

// EffectiveStyle returns the style s renders with: every ancestor's
// style merged from the outside in, then s's own.
func (s *Span) EffectiveStyle() Style {
	if p := s.Parent(); p != nil {
		return p.EffectiveStyle().Merge(s.Style)
	}
	return s.Style
}

// EffectiveKind returns the kind of the nearest span, s included, that
// has one.
func (s *Span) EffectiveKind() Kind {
	for x := s; x != nil; x = x.Parent() {
		if x.Kind != nil {
			return x.Kind
		}
	}
	return nil
}

// Walk calls fn for s and every descendant in document order. Returning
// false from fn skips that span's children.
func (s *Span) Walk(fn func(*Span) bool) {
	if !fn(s) {
		return
	}
	for _, c := range s.Children {
		c.Walk(fn)
	}
}

// LastNonEmpty returns the last span in document order whose own text is
// non-empty, or nil.
func (s *Span) LastNonEmpty() *Span {
	for i := len(s.Children) - 1; i >= 0; i-- {
		if m := s.Children[i].LastNonEmpty(); m != nil {
			return m
		}
	}
	if s.Text != "" {
		return s
	}
	return nil
}

// firstNonEmpty returns the first span in document order whose own text
// is non-empty, or nil.
func (s *Span) firstNonEmpty() *Span {
	if s.Text != "" {
		return s
	}
	for _, c := range s.Children {
		if m := c.firstNonEmpty(); m != nil {
			return m
		}
	}
	return nil
}

// SpanAt returns the span whose own text contains offset, given that s
// starts at running. The first result is the offset just past s. An
// offset on the boundary between two spans belongs to the later one.
func (s *Span) SpanAt(offset, running int) (int, *Span) {
	n := s.Len()
	if offset >= running && offset < running+n {
		return running + s.FullLen(), s
	}
	running += n
	for _, c := range s.Children {
		next, m := c.SpanAt(offset, running)
		if m != nil {
			return running + s.fullLenFrom(c), m
		}
		running = next
	}
	return running, nil
}

// fullLenFrom returns the combined length of c and the siblings after it.
func (s *Span) fullLenFrom(c *Span) int {
	i := slices.Index(s.Children, c)
	n := 0
	for _, x := range s.Children[i:] {
		n += x.FullLen()
	}
	return n
}

// SpansInRange returns every span whose own text intersects r, given
// that s starts at running. The first result is the offset just past s.
func (s *Span) SpansInRange(r TextRange, running int) (int, []*Span) {
	var out []*Span
	n := s.Len()
	if n > 0 && r.Intersects(TextRange{Start: running, End: running + n}) {
		out = append(out, s)
	}
	running += n
	for _, c := range s.Children {
		next, found := c.SpansInRange(r, running)
		out = append(out, found...)
		running = next
	}
	return running, out
}

// RemoveTextRange deletes the part of r that falls inside s, given that
// s starts at running. Deletion is bottom-up: children are trimmed
// first, those left empty are dropped, and only then does s decide
// whether it is itself empty. It returns the offset just past s in the
// original coordinates and s, or nil when s is now empty and should be
// removed from its parent.
func (s *Span) RemoveTextRange(r TextRange, running int) (int, *Span) {
	n := s.Len()
	own := TextRange{Start: running, End: running + n}
	if cut := own.Intersect(r); !cut.IsCollapsed() {
		s.Text = runes.Splice(s.Text, cut.Start-running, cut.End-running, "")
	}
	running += n

	var dead []int
	for i, c := range s.Children {
		next, kept := c.RemoveTextRange(r, running)
		if kept == nil {
			dead = append(dead, i)
		}
		running = next
	}
	s.Children = removeIndices(s.Children, dead)

	if s.Text == "" && len(s.Children) == 0 {
		return running, nil
	}
	return running, s
}

// removeIndices deletes the elements at the ascending indices in dead.
// Removal runs from the highest index down so that the lower indices
// still name the elements they were collected for.
func removeIndices(spans []*Span, dead []int) []*Span {
	for i := len(dead) - 1; i >= 0; i-- {
		spans = slices.Delete(spans, dead[i], dead[i]+1)
	}
	return spans
}

// TrimStart removes leading whitespace from s and its descendants, stopping
// at the first non-whitespace rune. It reports whether s is now empty.
func (s *Span) TrimStart() bool {
	s.Text = strings.TrimLeftFunc(s.Text, unicode.IsSpace)
	if s.Text != "" {
		return false
	}
	for _, c := range s.Children {
		if !c.TrimStart() {
			return false
		}
	}
	return true
}

// TrimEnd removes trailing whitespace from s and its descendants, stopping
// at the last non-whitespace rune. It reports whether s is now empty.
func (s *Span) TrimEnd() bool {
	for i := len(s.Children) - 1; i >= 0; i-- {
		if !s.Children[i].TrimEnd() {
			return false
		}
	}
	s.Text = strings.TrimRightFunc(s.Text, unicode.IsSpace)
	return s.Text == ""
}

// Copy returns a deep copy of s whose spans all belong to p.
func (s *Span) Copy(p *Paragraph) *Span {
	c := &Span{
		Text:      s.Text,
		Style:     s.Style,
		Kind:      s.Kind,
		TextRange: s.TextRange,
	}
	c.Children = make([]*Span, 0, len(s.Children))
	for _, child := range s.Children {
		c.Children = append(c.Children, child.Copy(p))
	}
	c.setParagraph(p)
	return c
}

// reindex assigns TextRange to s and its descendants starting at running
// and returns the offset just past s.
func (s *Span) reindex(running int) int {
	n := s.Len()
	s.TextRange = TextRange{Start: running, End: running + n}
	running += n
	for _, c := range s.Children {
		running = c.reindex(running)
	}
	return running
}

// splitAt cuts s at rune k of its full text. s keeps [0, k) and the
// returned span, which has the same style and kind, holds the rest. The
// returned span is empty when k is at or past the end of s.
func (s *Span) splitAt(k int) *Span {
	right := &Span{Style: s.Style, Kind: s.Kind}
	n := s.Len()
	if k <= n {
		right.Text = runes.Slice(s.Text, k, n)
		s.Text = runes.Slice(s.Text, 0, k)
		right.Append(s.Children...)
		s.Children = nil
		return right
	}
	k -= n
	for i, c := range s.Children {
		cl := c.FullLen()
		if k < cl {
			tail := c.splitAt(k)
			moved := slices.Clone(s.Children[i+1:])
			s.Children = s.Children[:i+1]
			if !tail.IsEmpty() {
				right.Append(tail)
			}
			right.Append(moved...)
			return right
		}
		k -= cl
	}
	return right
}

// pruneEmpty removes empty descendants of s, collecting the indices first
// and deleting them in reverse.
func (s *Span) pruneEmpty() {
	var dead []int
	for i, c := range s.Children {
		c.pruneEmpty()
		if c.IsEmpty() {
			dead = append(dead, i)
		}
	}
	s.Children = removeIndices(s.Children, dead)
}

// mergeChildren joins adjacent childless siblings that render identically.
func (s *Span) mergeChildren() {
	for _, c := range s.Children {
		c.mergeChildren()
	}
	s.Children = mergeSiblings(s.Children)
}

func mergeSiblings(spans []*Span) []*Span {
	var dead []int
	for i := 1; i < len(spans); i++ {
		prev, cur := spans[i-1], spans[i]
		if len(prev.Children) == 0 && len(cur.Children) == 0 &&
			prev.Style == cur.Style && kindsEqual(prev.Kind, cur.Kind) && !isImage(cur.Kind) {
			cur.Text = prev.Text + cur.Text
			dead = append(dead, i-1)
		}
	}
	return removeIndices(spans, dead)
}

func isImage(k Kind) bool {
	_, ok := k.(Image)
	return ok
}
