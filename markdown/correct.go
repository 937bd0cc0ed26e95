package markdown

import (
	"slices"
)

// Correct repairs emphasis that CommonMark would leave unclosed because a
// space sits just inside the closing marker, as in "**Bold **Normal". The
// space moves after the marker run: "**Bold** Normal". Code spans and
// backslash escapes are copied unchanged, and a blank line forgets all
// open markers.
func Correct(src string) string {
	rs := []rune(src)
	out := make([]rune, 0, len(rs))
	var open []string
	for i := 0; i < len(rs); {
		c := rs[i]
		switch {
		case c == '\\' && i+1 < len(rs):
			out = append(out, c, rs[i+1])
			i += 2
		case c == '`':
			n := runLen(rs, i)
			end := closingTicks(rs, i+n, n)
			if end < 0 {
				out = append(out, rs[i:i+n]...)
				i += n
				break
			}
			out = append(out, rs[i:end]...)
			i = end
		case c == '\n':
			if i+1 < len(rs) && rs[i+1] == '\n' {
				open = nil
			}
			out = append(out, c)
			i++
		case c == '*' || c == '~':
			n := runLen(rs, i)
			run := string(rs[i : i+n])
			i += n
			if c == '~' && n != 2 {
				out = append(out, []rune(run)...)
				break
			}
			var before rune
			if len(out) > 0 {
				before = out[len(out)-1]
			}
			after := ' '
			if i < len(rs) {
				after = rs[i]
			}
			if isSpace(before) {
				if k, rest := closes(open, run); k > 0 && rest == "" {
					open = open[:len(open)-k]
					j := len(out)
					for j > 0 && isSpace(out[j-1]) {
						j--
					}
					spaces := slices.Clone(out[j:])
					out = append(append(out[:j], []rune(run)...), spaces...)
					break
				}
			} else if before != 0 && before != '\n' {
				k, rest := closes(open, run)
				open = open[:len(open)-k]
				out = append(out, []rune(run[:len(run)-len(rest)])...)
				run = rest
			}
			if run != "" && !isSpace(after) {
				open = append(open, run)
			}
			out = append(out, []rune(run)...)
		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

// runLen returns the length of the run of rs[i] starting at i.
func runLen(rs []rune, i int) int {
	n := 1
	for i+n < len(rs) && rs[i+n] == rs[i] {
		n++
	}
	return n
}

// closingTicks returns the index just past the backtick run of length n
// that closes a code span opened before i, or -1.
func closingTicks(rs []rune, i, n int) int {
	for i < len(rs) {
		if rs[i] != '`' {
			i++
			continue
		}
		m := runLen(rs, i)
		if m == n {
			return i + m
		}
		i += m
	}
	return -1
}

// closes pops greedily from the top of open while the top marker fits
// in what is left of run. It returns the number of markers closed and the
// unconsumed rest of run.
func closes(open []string, run string) (int, string) {
	k := 0
	for j := len(open) - 1; j >= 0 && run != ""; j-- {
		m := open[j]
		if m[0] != run[0] || len(m) > len(run) {
			break
		}
		run = run[len(m):]
		k++
	}
	return k, run
}
