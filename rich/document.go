// Package rich holds the styled-text document model: a list of
// paragraphs, each a tree of styled spans, addressed by rune offsets into
// the flat text the document presents to a plain-text editing surface.
package rich

import (
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/rjkroege/richtext/internal/runes"
)

// Default configuration values.
const (
	DefaultIndentUnit = 38
	DefaultMinLevel   = 1
	DefaultMaxLevel   = 6
)

// Document owns a list of paragraphs, the selection, and the pending
// style applied to the next typed text. It is not safe for concurrent
// use: every mutation must happen on the goroutine that owns it.
type Document struct {
	paragraphs []*Paragraph
	layout     []paragraphLayout

	selection   TextRange
	pending     Style
	pendingKind Kind

	text      string
	textValid bool
	hash      uint64
	hashValid bool

	indentUnit int
	minLevel   int
	maxLevel   int
	log        *zap.Logger
	images     ImageLoader
}

// paragraphLayout records where a paragraph sits in the flat text.
type paragraphLayout struct {
	start   int // line break before the paragraph, or 0 for the first
	marker  int // first rune of the marker
	content int // first rune of the content
	end     int // just past the content
}

// NewDocument returns a document holding a single empty paragraph.
func NewDocument(opts ...Option) *Document {
	return FromParagraphs(nil, opts...)
}

// FromParagraphs returns a document owning ps. An empty list is replaced
// by a single empty paragraph.
func FromParagraphs(ps []*Paragraph, opts ...Option) *Document {
	d := &Document{
		indentUnit: DefaultIndentUnit,
		minLevel:   DefaultMinLevel,
		maxLevel:   DefaultMaxLevel,
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(d)
	}
	d.SetParagraphs(ps)
	return d
}

// SetParagraphs replaces the document content and collapses the
// selection at the end.
func (d *Document) SetParagraphs(ps []*Paragraph) {
	if len(ps) == 0 {
		ps = []*Paragraph{NewParagraph()}
	}
	d.paragraphs = ps
	d.update()
	d.selection = Collapsed(d.Len())
	d.refreshPending()
}

// Paragraphs returns the paragraphs of the document. The slice must not
// be modified; mutate the document through its methods.
func (d *Document) Paragraphs() []*Paragraph {
	return d.paragraphs
}

// Text returns the flat text: paragraphs joined by line breaks, each
// starting with its marker.
func (d *Document) Text() string {
	if !d.textValid {
		var sb strings.Builder
		for i, p := range d.paragraphs {
			if i > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(p.Text())
		}
		d.text = sb.String()
		d.textValid = true
	}
	return d.text
}

// Len returns the rune length of the flat text.
func (d *Document) Len() int {
	if len(d.layout) == 0 {
		return 0
	}
	return d.layout[len(d.layout)-1].end
}

// Fingerprint returns a hash of the flat text. It is recomputed only
// after the text changes.
func (d *Document) Fingerprint() uint64 {
	if !d.hashValid {
		d.hash = xxhash.Sum64String(d.Text())
		d.hashValid = true
	}
	return d.hash
}

// Snapshot is an immutable view of the document content for readers
// working off the owning goroutine.
type Snapshot struct {
	Text        string
	Fingerprint uint64
	Words       []WordSegment
}

// Snapshot captures the current text, its fingerprint and its words.
func (d *Document) Snapshot() Snapshot {
	return Snapshot{
		Text:        d.Text(),
		Fingerprint: d.Fingerprint(),
		Words:       slices.Collect(d.Words()),
	}
}

// Selection returns the current selection.
func (d *Document) Selection() TextRange {
	return d.selection
}

// SetSelection moves the selection and recomputes the pending style from
// the text before the cursor.
func (d *Document) SetSelection(r TextRange) {
	d.selection = d.clamp(r)
	d.refreshPending()
}

// PendingStyle returns the style the next typed text will carry.
func (d *Document) PendingStyle() Style {
	return d.pending
}

// PendingKind returns the kind the next typed text will carry.
func (d *Document) PendingKind() Kind {
	return d.pendingKind
}

// clamp normalizes r into the document, logging when it had to change.
func (d *Document) clamp(r TextRange) TextRange {
	c := r.Clamp(d.Len())
	if c != r.Normalize() {
		d.log.Debug("range clamped", zap.Stringer("range", r), zap.Stringer("clamped", c), zap.Int("len", d.Len()))
	}
	return c
}

// update restores the invariants after a structural change: empty spans
// pruned, identical siblings merged, lists renumbered, paragraph styles
// and span ranges recomputed.
func (d *Document) update() {
	for _, p := range d.paragraphs {
		p.RemoveEmptyChildren()
		p.mergeChildren()
		p.placeholder()
	}
	d.renumber()
	for _, p := range d.paragraphs {
		p.Style.Indent = Level(p.Type) * d.indentUnit
	}
	d.reindex()
}

// reindex recomputes the paragraph layout and every span's TextRange.
func (d *Document) reindex() {
	d.layout = d.layout[:0]
	running := 0
	for i, p := range d.paragraphs {
		var l paragraphLayout
		l.start = running
		if i > 0 {
			running++
		}
		l.marker = running
		l.content = p.contentStart(l.start, i == 0)
		l.end = p.reindex(l.content)
		running = l.end
		d.layout = append(d.layout, l)
	}
	d.textValid = false
	d.hashValid = false
}

// renumber walks the paragraphs keeping a counter per nesting level. A
// run of ordered items continues from the number its first item
// declares; entering a shallower level drops the deeper counters and a
// paragraph that is not a list item ends every run.
func (d *Document) renumber() {
	counters := map[int]int{}
	for _, p := range d.paragraphs {
		switch t := p.Type.(type) {
		case OrderedList:
			for l := range counters {
				if l > t.Level {
					delete(counters, l)
				}
			}
			if last, ok := counters[t.Level]; ok {
				t.Number = last + 1
			}
			counters[t.Level] = t.Number
			p.Type = t
		case UnorderedList:
			for l := range counters {
				if l >= t.Level {
					delete(counters, l)
				}
			}
		default:
			clear(counters)
		}
	}
}

// paragraphAt returns the index of the paragraph that owns offset: the
// first whose content end is at or after it. The line break before a
// paragraph therefore belongs to the end of the previous one.
func (d *Document) paragraphAt(offset int) int {
	i, _ := slices.BinarySearchFunc(d.layout, offset, func(l paragraphLayout, off int) int {
		return l.end - off
	})
	return min(i, len(d.layout)-1)
}

// SpanAt returns the span at offset. An offset on a boundary between two
// spans belongs to the later one, except at the end of a paragraph where
// it belongs to the last span with text. Offsets in a marker yield the
// synthetic start span. Offsets are clamped to the document.
func (d *Document) SpanAt(offset int) *Span {
	offset = runes.Clamp(offset, 0, d.Len())
	i := d.paragraphAt(offset)
	_, s := d.paragraphs[i].SpanAt(offset, d.layout[i].start, i == 0)
	return s
}

// SpansInRange returns every content span whose own text intersects r.
func (d *Document) SpansInRange(r TextRange) []*Span {
	r = d.clamp(r)
	var out []*Span
	for i, p := range d.paragraphs {
		l := d.layout[i]
		if l.end < r.Start || l.content > r.End {
			continue
		}
		_, found := p.SpansInRange(r, l.start, i == 0)
		out = append(out, found...)
	}
	return out
}

// StyleAt returns the resolved style at offset.
func (d *Document) StyleAt(offset int) Style {
	s := d.SpanAt(offset)
	if s == nil {
		return Style{}
	}
	return s.EffectiveStyle().Resolve()
}

// LinkAt returns the URL of the link at offset.
func (d *Document) LinkAt(offset int) (string, bool) {
	s := d.SpanAt(offset)
	if s == nil {
		return "", false
	}
	if l, ok := s.EffectiveKind().(Link); ok && s.TextRange.Contains(offset) {
		return l.URL, true
	}
	return "", false
}

// refreshPending recomputes the pending style from the rune before the
// cursor, or from the paragraph's start style when the cursor is at the
// start of a paragraph's content. Links and images do not carry over to
// new text, and neither does the misspelling marker.
func (d *Document) refreshPending() {
	off := d.selection.Start
	i := d.paragraphAt(off)
	p, l := d.paragraphs[i], d.layout[i]

	var style Style
	var kind Kind
	if off <= l.content {
		style = p.StartTextSpanStyle()
		if len(p.Children) > 0 {
			kind = p.Children[0].Kind
		}
	} else if s := d.SpanAt(off - 1); s != nil {
		style = s.EffectiveStyle()
		kind = s.EffectiveKind()
	}
	switch kind.(type) {
	case Link, Image:
		kind = nil
	}
	d.pending = style.Without(Misspelled).Resolve()
	d.pendingKind = kind
}

// Indent moves the list items intersecting r one level deeper.
func (d *Document) Indent(r TextRange) {
	d.shiftLevels(r, 1)
}

// Outdent moves the list items intersecting r one level shallower.
func (d *Document) Outdent(r TextRange) {
	d.shiftLevels(r, -1)
}

// shiftLevels changes the level of list items within the configured
// bounds; items already at a bound are left alone.
func (d *Document) shiftLevels(r TextRange, delta int) {
	sel := d.anchorRange(d.selection)
	for _, i := range d.paragraphsIn(d.clamp(r)) {
		p := d.paragraphs[i]
		if !IsList(p.Type) {
			continue
		}
		l := Level(p.Type) + delta
		if l < d.minLevel || l > d.maxLevel {
			continue
		}
		p.Type = withLevel(p.Type, l)
	}
	d.update()
	d.selection = d.resolveRange(sel)
}

// SetParagraphType sets the type of every paragraph intersecting r. List
// types take the level of the paragraph when it already is a list item.
func (d *Document) SetParagraphType(r TextRange, t ParagraphType) {
	sel := d.anchorRange(d.selection)
	for _, i := range d.paragraphsIn(d.clamp(r)) {
		p := d.paragraphs[i]
		nt := t
		if IsList(t) {
			l := max(Level(p.Type), Level(t), d.minLevel)
			nt = withLevel(t, l)
			if o, ok := nt.(OrderedList); ok && o.Number < 1 {
				o.Number = 1
				nt = o
			}
		}
		p.Type = nt
	}
	d.update()
	d.selection = d.resolveRange(sel)
}

// ToggleList turns the paragraphs intersecting r into list items of t's
// kind, or back into Default paragraphs when they all already are.
func (d *Document) ToggleList(r TextRange, t ParagraphType) {
	all := true
	for _, i := range d.paragraphsIn(d.clamp(r)) {
		if !sameListKind(d.paragraphs[i].Type, t) {
			all = false
			break
		}
	}
	if all {
		d.SetParagraphType(r, Default{})
		return
	}
	d.SetParagraphType(r, t)
}

// paragraphsIn returns the indices of the paragraphs r touches. A
// collapsed r touches the paragraph holding it.
func (d *Document) paragraphsIn(r TextRange) []int {
	first := d.paragraphAt(r.Start)
	last := first
	if !r.IsCollapsed() {
		last = d.paragraphAt(r.End)
		if last > first && r.End <= d.layout[last].marker {
			last--
		}
	}
	idx := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		idx = append(idx, i)
	}
	return idx
}

// anchor names an offset by paragraph and content-relative position so
// that it survives marker text changing length.
type anchor struct {
	para, rel int
}

func (d *Document) anchorOf(offset int) anchor {
	i := d.paragraphAt(offset)
	return anchor{para: i, rel: max(offset-d.layout[i].content, 0)}
}

func (d *Document) resolve(a anchor) int {
	i := min(a.para, len(d.layout)-1)
	l := d.layout[i]
	return min(l.content+a.rel, l.end)
}

func (d *Document) anchorRange(r TextRange) [2]anchor {
	return [2]anchor{d.anchorOf(r.Start), d.anchorOf(r.End)}
}

func (d *Document) resolveRange(a [2]anchor) TextRange {
	return TextRange{Start: d.resolve(a[0]), End: d.resolve(a[1])}
}
