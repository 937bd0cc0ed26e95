package rich

import (
	"fmt"
	"strconv"
	"strings"

	"9fans.net/go/draw"

	"github.com/rjkroege/richtext/internal/runes"
)

// Flag is a tri-state style attribute. Unset attributes inherit from the
// enclosing span; Off explicitly cancels an inherited On.
type Flag uint8

const (
	Unset Flag = iota
	On
	Off
)

func (f Flag) merge(o Flag) Flag {
	if o != Unset {
		return o
	}
	return f
}

// NoColor explicitly selects the default color, cancelling an inherited one.
const NoColor = draw.Nofill

// Style defines visual attributes for a span of text. The zero Style
// sets nothing. Styles are comparable; compare resolved styles.
type Style struct {
	Bold          Flag
	Italic        Flag
	Underline     Flag
	Strikethrough Flag
	Misspelled    Flag

	// Colors (0 means inherit, NoColor means default)
	Color      draw.Color
	Background draw.Color

	// Size multiplier (1.0 = normal body text, 0 = inherit)
	Scale float64

	// Heading level 1-6, 0 for body text.
	Heading int
}

// Common styles
var (
	Bold          = Style{Bold: On}
	Italic        = Style{Italic: On}
	Underline     = Style{Underline: On}
	Strikethrough = Style{Strikethrough: On}
	Misspelled    = Style{Misspelled: On}
)

var headingScales = [...]float64{2.0, 1.5, 1.25, 1.1, 1.0, 0.9}

// HeadingStyle returns the fixed style applied to the content of an ATX
// heading of the given level. Levels are clamped to 1..6.
func HeadingStyle(level int) Style {
	level = runes.Clamp(level, 1, len(headingScales))
	return Style{Bold: On, Scale: headingScales[level-1], Heading: level}
}

// IsZero reports whether s sets no attribute.
func (s Style) IsZero() bool {
	return s == Style{}
}

// Merge returns s with every attribute set in o applied on top.
func (s Style) Merge(o Style) Style {
	s.Bold = s.Bold.merge(o.Bold)
	s.Italic = s.Italic.merge(o.Italic)
	s.Underline = s.Underline.merge(o.Underline)
	s.Strikethrough = s.Strikethrough.merge(o.Strikethrough)
	s.Misspelled = s.Misspelled.merge(o.Misspelled)
	if o.Color != 0 {
		s.Color = o.Color
	}
	if o.Background != 0 {
		s.Background = o.Background
	}
	if o.Scale != 0 {
		s.Scale = o.Scale
	}
	if o.Heading != 0 {
		s.Heading = o.Heading
	}
	return s
}

// Without returns s with every attribute that o sets cleared back to
// Unset.
func (s Style) Without(o Style) Style {
	if o.Bold != Unset {
		s.Bold = Unset
	}
	if o.Italic != Unset {
		s.Italic = Unset
	}
	if o.Underline != Unset {
		s.Underline = Unset
	}
	if o.Strikethrough != Unset {
		s.Strikethrough = Unset
	}
	if o.Misspelled != Unset {
		s.Misspelled = Unset
	}
	if o.Color != 0 {
		s.Color = 0
	}
	if o.Background != 0 {
		s.Background = 0
	}
	if o.Scale != 0 {
		s.Scale = 0
	}
	if o.Heading != 0 {
		s.Heading = 0
	}
	return s
}

// Negate returns a style that, merged over a span carrying o, cancels o.
func (s Style) Negate() Style {
	var n Style
	neg := func(f Flag) Flag {
		if f == On {
			return Off
		}
		return Unset
	}
	n.Bold = neg(s.Bold)
	n.Italic = neg(s.Italic)
	n.Underline = neg(s.Underline)
	n.Strikethrough = neg(s.Strikethrough)
	n.Misspelled = neg(s.Misspelled)
	if s.Color != 0 {
		n.Color = NoColor
	}
	if s.Background != 0 {
		n.Background = NoColor
	}
	if s.Scale != 0 {
		n.Scale = 1.0
	}
	return n
}

// Resolve folds explicit defaults away so that two styles rendering the
// same way compare equal.
func (s Style) Resolve() Style {
	res := func(f Flag) Flag {
		if f == On {
			return On
		}
		return Unset
	}
	s.Bold = res(s.Bold)
	s.Italic = res(s.Italic)
	s.Underline = res(s.Underline)
	s.Strikethrough = res(s.Strikethrough)
	s.Misspelled = res(s.Misspelled)
	if s.Color == NoColor {
		s.Color = 0
	}
	if s.Background == NoColor {
		s.Background = 0
	}
	if s.Scale == 1.0 {
		s.Scale = 0
	}
	return s
}

// Has reports whether the resolved s carries every attribute o turns on.
func (s Style) Has(o Style) bool {
	if o.IsZero() {
		return false
	}
	s = s.Resolve()
	o = o.Resolve()
	return s.Merge(o) == s
}

// String lists the attributes s sets, for logs and dumps. Off flags are
// prefixed with '-'.
func (s Style) String() string {
	var parts []string
	flag := func(f Flag, name string) {
		switch f {
		case On:
			parts = append(parts, name)
		case Off:
			parts = append(parts, "-"+name)
		}
	}
	flag(s.Bold, "bold")
	flag(s.Italic, "italic")
	flag(s.Underline, "underline")
	flag(s.Strikethrough, "strike")
	flag(s.Misspelled, "misspelled")
	if s.Color != 0 {
		parts = append(parts, fmt.Sprintf("color=%08x", uint32(s.Color)))
	}
	if s.Background != 0 {
		parts = append(parts, fmt.Sprintf("bg=%08x", uint32(s.Background)))
	}
	if s.Scale != 0 {
		parts = append(parts, "scale="+strconv.FormatFloat(s.Scale, 'g', -1, 64))
	}
	if s.Heading != 0 {
		parts = append(parts, "h"+strconv.Itoa(s.Heading))
	}
	if len(parts) == 0 {
		return "plain"
	}
	return strings.Join(parts, "+")
}
