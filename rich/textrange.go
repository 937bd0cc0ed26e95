package rich

import (
	"fmt"

	"github.com/rjkroege/richtext/internal/runes"
)

// TextRange is a half-open range [Start, End) of rune offsets in the flat
// document text.
type TextRange struct {
	Start int
	End   int
}

// Collapsed returns the empty range at offset.
func Collapsed(offset int) TextRange {
	return TextRange{Start: offset, End: offset}
}

// Len returns the number of runes covered by r.
func (r TextRange) Len() int {
	return r.End - r.Start
}

// IsCollapsed reports whether r is empty.
func (r TextRange) IsCollapsed() bool {
	return r.Start == r.End
}

// Normalize swaps inverted bounds.
func (r TextRange) Normalize() TextRange {
	if r.End < r.Start {
		return TextRange{Start: r.End, End: r.Start}
	}
	return r
}

// Clamp normalizes r and limits both bounds to [0, n].
func (r TextRange) Clamp(n int) TextRange {
	r = r.Normalize()
	r.Start = runes.Clamp(r.Start, 0, n)
	r.End = runes.Clamp(r.End, 0, n)
	return r
}

// Contains reports whether offset lies in [Start, End).
func (r TextRange) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Intersects reports whether r and o share at least one offset.
func (r TextRange) Intersects(o TextRange) bool {
	return r.Start < o.End && o.Start < r.End
}

// Intersect returns the overlap of r and o, collapsed at the nearer
// bound when they do not overlap.
func (r TextRange) Intersect(o TextRange) TextRange {
	s := max(r.Start, o.Start)
	e := min(r.End, o.End)
	if e < s {
		e = s
	}
	return TextRange{Start: s, End: e}
}

// Shift returns r moved by delta.
func (r TextRange) Shift(delta int) TextRange {
	return TextRange{Start: r.Start + delta, End: r.End + delta}
}

func (r TextRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
