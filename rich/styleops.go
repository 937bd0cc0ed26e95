package rich

import (
	"go.uber.org/zap"

	"github.com/rjkroege/richtext/internal/runes"
)

// AddStyle applies style to the text in r. Spans are split only at the
// bounds of r. A collapsed r changes the pending style instead.
func (d *Document) AddStyle(style Style, r TextRange) {
	r = d.clamp(r)
	if r.IsCollapsed() {
		d.pending = d.pending.Merge(style).Resolve()
		return
	}
	for _, s := range d.isolate(r) {
		s.Style = s.Style.Merge(style)
		clearBelow(s, style)
	}
	d.restyled()
}

// RemoveStyle removes style from the text in r. Where an enclosing span
// still carries it, the isolated span cancels it explicitly. A collapsed
// r changes the pending style instead.
func (d *Document) RemoveStyle(style Style, r TextRange) {
	r = d.clamp(r)
	if r.IsCollapsed() {
		d.pending = d.pending.Without(style).Resolve()
		return
	}
	for _, s := range d.isolate(r) {
		d.removeFrom(s, style)
	}
	d.restyled()
}

func (d *Document) removeFrom(s *Span, style Style) {
	s.Style = s.Style.Without(style)
	if p := s.Parent(); p != nil {
		if inherited := p.EffectiveStyle().Resolve(); inherited.Without(style) != inherited {
			s.Style = s.Style.Merge(style.Negate())
		}
	}
	clearBelow(s, style)
}

// ToggleStyle removes style from r when every character in it already
// carries style, and adds it otherwise.
func (d *Document) ToggleStyle(style Style, r TextRange) {
	r = d.clamp(r)
	if r.IsCollapsed() {
		if d.pending.Has(style) {
			d.RemoveStyle(style, r)
		} else {
			d.AddStyle(style, r)
		}
		return
	}
	all := true
	for _, s := range d.SpansInRange(r) {
		if !s.EffectiveStyle().Has(style) {
			all = false
			break
		}
	}
	if all {
		d.RemoveStyle(style, r)
	} else {
		d.AddStyle(style, r)
	}
}

// AddLink makes the text in r a link to url. A collapsed r inserts url
// itself as the link text.
func (d *Document) AddLink(url string, r TextRange) {
	r = d.clamp(r)
	if r.IsCollapsed() {
		d.pendingKind = Link{URL: url}
		d.InsertText(r.Start, url)
		return
	}
	d.setKind(r, Link{URL: url})
}

// AddCode marks the text in r as inline code. A collapsed r makes the
// next typed text code.
func (d *Document) AddCode(r TextRange) {
	r = d.clamp(r)
	if r.IsCollapsed() {
		d.pendingKind = Code{}
		return
	}
	d.setKind(r, Code{})
}

func (d *Document) setKind(r TextRange, k Kind) {
	for _, s := range d.isolate(r) {
		if isImage(s.Kind) {
			continue
		}
		s.Kind = k
		for _, c := range s.Children {
			c.Walk(func(x *Span) bool {
				if !isImage(x.Kind) {
					x.Kind = nil
				}
				return true
			})
		}
	}
	d.restyled()
}

// RemoveLink turns every link touching r back into plain text. A
// collapsed r removes the link around that offset.
func (d *Document) RemoveLink(r TextRange) {
	r = d.clamp(r)
	var spans []*Span
	if r.IsCollapsed() {
		if s := d.SpanAt(r.Start); s != nil {
			spans = append(spans, s)
		}
	} else {
		spans = d.SpansInRange(r)
	}
	changed := false
	for _, s := range spans {
		for x := s; x != nil; x = x.Parent() {
			if _, ok := x.Kind.(Link); ok {
				x.Kind = nil
				changed = true
				break
			}
		}
	}
	if changed {
		d.restyled()
	}
}

// restyled restores the tree invariants after a change that left the
// text alone. The selection is untouched.
func (d *Document) restyled() {
	sel := d.selection
	d.update()
	d.selection = d.clamp(sel)
	d.refreshPending()
}

// clearBelow drops the attributes of style from every descendant of s so
// that s alone decides them.
func clearBelow(s *Span, style Style) {
	for _, c := range s.Children {
		c.Walk(func(x *Span) bool {
			x.Style = x.Style.Without(style)
			return true
		})
	}
}

// isolate splits spans at the bounds of r and returns spans whose whole
// subtree lies inside r and which together cover exactly the content
// that r selects. Ranges must be current.
func (d *Document) isolate(r TextRange) []*Span {
	var out []*Span
	for i, p := range d.paragraphs {
		l := d.layout[i]
		if !r.Intersects(TextRange{Start: l.content, End: l.end}) {
			continue
		}
		for _, c := range p.Children {
			out = isolateSpan(c, r, out)
		}
	}
	d.log.Debug("isolated spans", zap.Stringer("range", r), zap.Int("spans", len(out)))
	return out
}

// isolateSpan appends to out the parts of s's subtree that lie inside r.
// When r covers s only partly, the covered part of s's own text moves
// into a new first child, followed by the uncovered tail, so that s
// keeps only the uncovered head.
func isolateSpan(s *Span, r TextRange, out []*Span) []*Span {
	full := TextRange{Start: s.TextRange.Start, End: s.TextRange.Start + s.FullLen()}
	if !r.Intersects(full) {
		return out
	}
	if r.Start <= full.Start && full.End <= r.End {
		return append(out, s)
	}

	old := s.Children
	own := s.TextRange
	if cut := own.Intersect(r); !cut.IsCollapsed() {
		a, b := cut.Start-own.Start, cut.End-own.Start
		mid := &Span{Text: runes.Slice(s.Text, a, b), TextRange: cut}
		post := &Span{Text: runes.Slice(s.Text, b, own.Len()), TextRange: TextRange{Start: cut.End, End: own.End}}
		s.Text = runes.Slice(s.Text, 0, a)
		s.TextRange.End = own.Start + a
		s.Children = nil
		s.Append(mid)
		if post.Text != "" {
			s.Append(post)
		}
		s.Append(old...)
		out = append(out, mid)
	}
	for _, c := range old {
		out = isolateSpan(c, r, out)
	}
	return out
}
