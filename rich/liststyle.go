package rich

import (
	"strconv"
	"strings"

	"github.com/rjkroege/richtext/internal/runes"
)

// OrderedListStyle formats the number of an ordered list item.
type OrderedListStyle interface {
	// Format returns the marker text for the 1-based number n at the
	// given nesting level.
	Format(n, level int) string

	// Suffix returns the text that follows the number.
	Suffix(level int) string
}

// ListStyle is one of the built-in numbering schemes.
type ListStyle int

const (
	Decimal ListStyle = iota
	LowerAlpha
	UpperAlpha
	LowerRoman
	UpperRoman
)

// Format implements OrderedListStyle. Non-positive numbers yield the
// smallest marker of the scheme instead of failing.
func (s ListStyle) Format(n, _ int) string {
	switch s {
	case LowerAlpha:
		return alpha(n, 'a')
	case UpperAlpha:
		return alpha(n, 'A')
	case LowerRoman:
		return strings.ToLower(roman(n))
	case UpperRoman:
		return roman(n)
	}
	if n <= 0 {
		return "0"
	}
	return strconv.Itoa(n)
}

// Suffix implements OrderedListStyle.
func (ListStyle) Suffix(int) string {
	return ". "
}

func (s ListStyle) String() string {
	switch s {
	case LowerAlpha:
		return "lower-alpha"
	case UpperAlpha:
		return "upper-alpha"
	case LowerRoman:
		return "lower-roman"
	case UpperRoman:
		return "upper-roman"
	}
	return "decimal"
}

// Multiple picks a style per nesting level: level 1 uses the first, and
// levels past the end reuse the last.
type Multiple []OrderedListStyle

func (m Multiple) pick(level int) OrderedListStyle {
	if len(m) == 0 {
		return Decimal
	}
	return m[runes.Clamp(level-1, 0, len(m)-1)]
}

// Format implements OrderedListStyle.
func (m Multiple) Format(n, level int) string {
	return m.pick(level).Format(n, level)
}

// Suffix implements OrderedListStyle.
func (m Multiple) Suffix(level int) string {
	return m.pick(level).Suffix(level)
}

// alpha is bijective base 26: there is no zero digit, so 26 is "z" and
// 27 is "aa".
func alpha(n int, base rune) string {
	if n <= 0 {
		return string(base)
	}
	var digits []rune
	for n > 0 {
		rem := (n-1)%26 + 1
		digits = append(digits, base+rune(rem-1))
		n = (n - 1) / 26
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

var romanNumerals = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

func roman(n int) string {
	if n <= 0 {
		return "I"
	}
	var sb strings.Builder
	for _, rn := range romanNumerals {
		for n >= rn.value {
			sb.WriteString(rn.symbol)
			n -= rn.value
		}
	}
	return sb.String()
}
