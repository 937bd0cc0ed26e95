// Package runes implements rune-indexed operations on strings and rune slices.
package runes

import "unicode/utf8"

// Len returns the number of runes in s.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// byteOffset returns the byte index of rune index i in s. i is clamped
// to [0, Len(s)].
func byteOffset(s string, i int) int {
	if i <= 0 {
		return 0
	}
	n := 0
	for b := range s {
		if n == i {
			return b
		}
		n++
	}
	return len(s)
}

// Slice returns the runes [i, j) of s. Out of range indices are clamped
// and an inverted range yields the empty string.
func Slice(s string, i, j int) string {
	if j <= i {
		return ""
	}
	bi := byteOffset(s, i)
	bj := bi + byteOffset(s[bi:], j-max(i, 0))
	return s[bi:bj]
}

// Splice replaces the runes [i, j) of s with ins.
func Splice(s string, i, j int, ins string) string {
	if j < i {
		i, j = j, i
	}
	bi := byteOffset(s, i)
	bj := bi + byteOffset(s[bi:], j-max(i, 0))
	return s[:bi] + ins + s[bj:]
}

// CommonPrefix returns the number of leading runes a and b share.
func CommonPrefix(a, b []rune) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// CommonSuffix returns the number of trailing runes a and b share,
// never reaching further left than limit runes from the start of either.
func CommonSuffix(a, b []rune, limit int) int {
	n := 0
	for n < len(a)-limit && n < len(b)-limit && a[len(a)-1-n] == b[len(b)-1-n] {
		n++
	}
	return n
}

// Clamp returns v limited to [lo, hi]. When hi < lo, lo is returned.
func Clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
