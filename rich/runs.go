package rich

// Run is a maximal stretch of content that renders with one resolved
// style and kind.
type Run struct {
	Style Style
	Kind  Kind
	Range TextRange
}

// Runs flattens the span trees into runs in document order. Adjacent
// spans that render the same way within a paragraph share a run; markers
// and line breaks are not covered.
func (d *Document) Runs() []Run {
	var runs []Run
	for _, p := range d.paragraphs {
		first := len(runs)
		for _, c := range p.Children {
			c.Walk(func(s *Span) bool {
				if s.Text == "" {
					return true
				}
				r := Run{Style: s.EffectiveStyle().Resolve(), Kind: s.EffectiveKind(), Range: s.TextRange}
				if n := len(runs); n > first {
					last := &runs[n-1]
					if last.Range.End == r.Range.Start && last.Style == r.Style &&
						kindsEqual(last.Kind, r.Kind) && !isImage(r.Kind) {
						last.Range.End = r.Range.End
						return true
					}
				}
				runs = append(runs, r)
				return true
			})
		}
	}
	return runs
}
