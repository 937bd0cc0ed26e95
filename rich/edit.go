package rich

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/rjkroege/richtext/internal/runes"
)

// Reconcile brings the document in line with the text and selection
// reported by a plain-text editing surface. The edit is located from
// the length change and the new cursor: growth is an insertion ending at
// newSelection.Start, shrinkage a deletion starting there. Anything else
// is resolved by comparing common prefix and suffix. Spans around the
// edit keep their styles.
//
// It returns the document's text and selection afterwards. They differ
// from the arguments only when the edit regenerated marker text (a new
// list item, a removed marker, renumbering); the surface should then be
// updated to match.
func (d *Document) Reconcile(newText string, newSelection TextRange) (string, TextRange) {
	old := []rune(d.Text())
	nw := []rune(newText)
	newSelection = newSelection.Clamp(len(nw))

	r, ins, ok := locateEdit(old, nw, newSelection.Start)
	if !ok {
		p := runes.CommonPrefix(old, nw)
		s := runes.CommonSuffix(old, nw, p)
		r = TextRange{Start: p, End: len(old) - s}
		ins = string(nw[p : len(nw)-s])
	}
	if r.IsCollapsed() && ins == "" {
		d.SetSelection(newSelection)
		return d.Text(), d.selection
	}

	cursor := d.replace(r, ins)
	if d.Text() == newText {
		d.SetSelection(newSelection)
	} else {
		d.log.Debug("surface text diverged after edit",
			zap.Stringer("edit", r), zap.Int("inserted", len([]rune(ins))))
		d.SetSelection(Collapsed(cursor))
	}
	return d.Text(), d.selection
}

// locateEdit checks whether nw is old with a single insertion ending at
// cursor, or a single deletion starting at it.
func locateEdit(old, nw []rune, cursor int) (TextRange, string, bool) {
	delta := len(nw) - len(old)
	switch {
	case delta > 0:
		start := cursor - delta
		if start < 0 || !slices.Equal(old[:start], nw[:start]) || !slices.Equal(old[start:], nw[cursor:]) {
			return TextRange{}, "", false
		}
		return Collapsed(start), string(nw[start:cursor]), true
	case delta < 0:
		end := cursor - delta
		if cursor > len(nw) || end > len(old) || !slices.Equal(old[:cursor], nw[:cursor]) || !slices.Equal(old[end:], nw[cursor:]) {
			return TextRange{}, "", false
		}
		return TextRange{Start: cursor, End: end}, "", true
	}
	return TextRange{}, "", false
}

// Replace replaces the text in r with s and leaves the cursor after the
// inserted text.
func (d *Document) Replace(r TextRange, s string) {
	cursor := d.replace(d.clamp(r), s)
	d.SetSelection(Collapsed(cursor))
}

// InsertText inserts s at offset with the pending style.
func (d *Document) InsertText(offset int, s string) {
	d.Replace(Collapsed(offset), s)
}

// Delete removes the text in r.
func (d *Document) Delete(r TextRange) {
	d.Replace(r, "")
}

// replace performs the edit and returns the cursor after the inserted
// text in post-edit coordinates.
func (d *Document) replace(r TextRange, s string) int {
	r = r.Clamp(d.Len())
	pos := r.Start
	if !r.IsCollapsed() {
		a := d.anchorOf(r.Start)
		d.deleteRange(r)
		d.update()
		pos = d.resolve(a)
	}
	if s != "" {
		pos = d.insert(pos, s)
	}
	a := d.anchorOf(pos)
	d.update()
	return d.resolve(a)
}

// deleteRange removes r from the tree. Content is cut paragraph by
// paragraph; a deleted line break merges the paragraph into the one
// before it, and a partially deleted marker turns a list item back into
// a Default paragraph.
func (d *Document) deleteRange(r TextRange) {
	var merge []int
	for i, p := range d.paragraphs {
		l := d.layout[i]
		if l.end < r.Start || l.start > r.End {
			continue
		}
		p.RemoveTextRange(r, l.start, i == 0)
		if i > 0 && r.Contains(l.start) {
			merge = append(merge, i)
			continue
		}
		if r.Intersects(TextRange{Start: l.marker, End: l.content}) {
			p.Type = Default{}
		}
	}

	// Merge from the last paragraph back so that the earlier indices in
	// merge still name the paragraphs they were collected for.
	for j := len(merge) - 1; j >= 0; j-- {
		i := merge[j]
		prev, p := d.paragraphs[i-1], d.paragraphs[i]
		if prev.IsEmpty(true) && !p.IsEmpty(true) {
			prev.Children = nil
		}
		if !p.IsEmpty(true) {
			prev.Append(p.Children...)
		}
		d.paragraphs = slices.Delete(d.paragraphs, i, i+1)
	}
}

// insert places s at offset and returns the offset after it. Line breaks
// in s split paragraphs.
func (d *Document) insert(offset int, s string) int {
	pos := offset
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			pos = d.splitParagraph(pos)
		}
		if line != "" {
			pos = d.insertInline(pos, line)
		}
	}
	return pos
}

// splitParagraph breaks the paragraph at offset and returns the content
// start of the paragraph that now follows the break. A break typed into
// an empty list item ends the list instead.
func (d *Document) splitParagraph(offset int) int {
	i := d.paragraphAt(offset)
	p, l := d.paragraphs[i], d.layout[i]
	offset = max(offset, l.content)

	if IsList(p.Type) && p.IsEmpty(true) {
		p.Type = Default{}
		d.update()
		return d.layout[i].content
	}

	np := p.Split(offset - l.content)
	d.paragraphs = slices.Insert(d.paragraphs, i+1, np)
	d.update()
	return d.layout[i+1].content
}

// insertInline inserts text without line breaks at offset and returns
// the offset after it.
//
// The text joins the span before the cursor when that span renders with
// the pending style, or the span after it when the cursor sits at that
// span's start. Otherwise the top-level span around the cursor is split
// and a new span with the pending style goes in between.
func (d *Document) insertInline(offset int, text string) int {
	n := runes.Len(text)
	i := d.paragraphAt(offset)
	p, l := d.paragraphs[i], d.layout[i]
	if offset < l.content {
		offset = l.content
	}
	pending := d.pending.Resolve()

	if offset > l.content {
		if before := d.SpanAt(offset - 1); before != nil && before.Paragraph() == p {
			inside := offset < before.TextRange.End
			if before.EffectiveStyle().Resolve() == pending &&
				(inside || kindsEqual(before.EffectiveKind(), d.pendingKind)) {
				k := offset - before.TextRange.Start
				before.Text = runes.Splice(before.Text, k, k, text)
				d.shiftAfter(before, n)
				return offset + n
			}
		}
	}
	if after := d.SpanAt(offset); after != nil && after.Paragraph() == p &&
		after.TextRange.Start == offset && after.Len() > 0 &&
		after.EffectiveStyle().Resolve() == pending && kindsEqual(after.EffectiveKind(), d.pendingKind) {
		after.Text = text + after.Text
		d.shiftAfter(after, n)
		return offset + n
	}

	if p.IsEmpty(true) {
		ph := p.placeholder()
		p.Children = []*Span{ph}
		ph.Text = text
		ph.Style = d.pending
		ph.Kind = d.pendingKind
		ph.Children = nil
		d.reindex()
		return offset + n
	}

	k := offset - l.content
	at := len(p.Children)
	for j, c := range p.Children {
		cl := c.FullLen()
		if k < cl {
			at = j + 1
			if k == 0 {
				at = j
			} else if tail := c.splitAt(k); !tail.IsEmpty() {
				p.insert(j+1, tail)
			}
			break
		}
		k -= cl
	}
	p.insert(at, &Span{Text: text, Style: d.pending, Kind: d.pendingKind})
	d.reindex()
	return offset + n
}

// shiftAfter fixes up ranges after s grew by n runes in place.
func (d *Document) shiftAfter(s *Span, n int) {
	s.TextRange.End += n
	d.reindex()
}
