package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark/util"

	"github.com/rjkroege/richtext/rich"
)

const breakLine = "<br>"

// Encode renders paragraphs as markdown, one line per paragraph. Empty
// paragraphs between two others become a blank line followed by a <br>
// line for each one after the first; empty paragraphs at either end
// become <br> lines.
func Encode(ps []*rich.Paragraph) string {
	var full []int
	for i, p := range ps {
		if !p.IsEmpty(false) {
			full = append(full, i)
		}
	}
	if len(full) == 0 {
		if len(ps) <= 1 {
			return ""
		}
		return strings.Repeat(breakLine+"\n", len(ps)-1) + breakLine
	}

	var b strings.Builder
	for range full[0] {
		b.WriteString(breakLine + "\n")
	}
	level := 0
	for j, i := range full {
		if j > 0 {
			switch k := i - full[j-1] - 1; k {
			case 0:
				b.WriteString("\n")
			default:
				b.WriteString("\n\n")
				b.WriteString(strings.Repeat(breakLine+"\n", k-1))
				if k > 1 {
					level = 0
				}
			}
		}
		level = encodeParagraph(&b, ps[i], level)
	}
	for range len(ps) - 1 - full[len(full)-1] {
		b.WriteString("\n" + breakLine)
	}
	return b.String()
}

// EncodeDocument renders the paragraphs of d.
func EncodeDocument(d *rich.Document) string {
	return Encode(d.Paragraphs())
}

// encodeParagraph writes one paragraph. prev is the list level of the
// list item just before it, or 0; the level written is returned. A list
// item is never nested more than one level below the item before it,
// since markdown would read the deeper indent as a code block.
func encodeParagraph(b *strings.Builder, p *rich.Paragraph, prev int) int {
	rs := runs(p)
	switch t := p.Type.(type) {
	case rich.UnorderedList, rich.OrderedList:
		level := max(min(rich.Level(t), prev+1), 1)
		b.WriteString(strings.Repeat("    ", level-1))
		if _, ok := t.(rich.UnorderedList); ok {
			b.WriteString("- ")
		} else {
			b.WriteString(rich.StartText(t))
		}
		b.WriteString(line(rs, rich.Style{}, ' '))
		return level
	case rich.OneSpace:
		b.WriteString("&#32;")
		b.WriteString(line(rs, rich.Style{}, ';'))
		return 0
	}
	if len(rs) > 0 && rs[0].style.Heading > 0 {
		n := rs[0].style.Heading
		b.WriteString(strings.Repeat("#", n) + " ")
		b.WriteString(line(rs, rich.HeadingStyle(n), ' '))
		return 0
	}
	b.WriteString(line(rs, rich.Style{}, ' '))
	return 0
}

type run struct {
	text  string
	style rich.Style
	kind  rich.Kind
}

// runs flattens p into text runs with resolved styles. Custom kinds have
// no markdown form and encode as plain text.
func runs(p *rich.Paragraph) []run {
	var out []run
	for _, c := range p.Children {
		c.Walk(func(s *rich.Span) bool {
			if s.Text == "" {
				return true
			}
			r := run{text: s.Text, style: s.EffectiveStyle().Resolve(), kind: s.EffectiveKind()}
			if _, ok := r.kind.(rich.Custom); ok {
				r.kind = nil
			}
			if n := len(out); n > 0 {
				last := &out[n-1]
				_, img := r.kind.(rich.Image)
				if !img && last.style == r.style && last.kind == r.kind {
					last.text += r.text
					return true
				}
			}
			out = append(out, r)
			return true
		})
	}
	return out
}

type wrapper struct {
	open, close string
	// tag is the HTML element that stands in for the markers when
	// CommonMark would read them as literal text.
	tag string
}

func (w wrapper) marker(open, html bool) string {
	switch {
	case html && open:
		return "<" + w.tag + ">"
	case html:
		return "</" + w.tag + ">"
	case open:
		return w.open
	}
	return w.close
}

// wrappers returns the markup around r, outermost first. Attributes that
// base already implies are left out.
func wrappers(r run, base rich.Style) []wrapper {
	var w []wrapper
	if l, ok := r.kind.(rich.Link); ok {
		w = append(w, wrapper{"[", "](" + destination(l.URL) + ")", ""})
	}
	on := func(f, implied rich.Flag) bool {
		return f == rich.On && implied != rich.On
	}
	if on(r.style.Strikethrough, base.Strikethrough) {
		w = append(w, wrapper{"~~", "~~", "s"})
	}
	if on(r.style.Bold, base.Bold) {
		w = append(w, wrapper{"**", "**", "b"})
	}
	if on(r.style.Italic, base.Italic) {
		w = append(w, wrapper{"*", "*", "i"})
	}
	if on(r.style.Underline, base.Underline) {
		w = append(w, wrapper{"<u>", "</u>", ""})
	}
	return w
}

// piece is escaped text, or the opening or closing marker of wrapper w.
type piece struct {
	text string
	w    int
	open bool
}

// mark locates an emphasis marker in an encoded line.
type mark struct {
	start, end int
	w          int
	open       bool
}

// line encodes runs as one markdown line, protecting what markdown would
// otherwise read as block structure at its edges. before is the character
// that precedes the line. Emphasis markers that would not flank their
// text are replaced by HTML tags until every remaining marker does.
func line(rs []run, base rich.Style, before rune) string {
	ps, ws := inline(rs, base)
	html := make([]bool, len(ws))
	for {
		s, marks := render(ps, ws, html)
		bad := unflanked(s, marks, before)
		if len(bad) == 0 {
			return s
		}
		for _, w := range bad {
			html[w] = true
		}
	}
}

// render joins the pieces of a line and returns it with the positions of
// its emphasis markers.
func render(ps []piece, ws []wrapper, html []bool) (string, []mark) {
	var b strings.Builder
	var marks []mark
	for _, p := range ps {
		if p.w < 0 {
			b.WriteString(p.text)
			continue
		}
		w := ws[p.w]
		m := w.marker(p.open, html[p.w])
		if w.tag != "" && !html[p.w] {
			marks = append(marks, mark{start: b.Len(), end: b.Len() + len(m), w: p.w, open: p.open})
		}
		b.WriteString(m)
	}
	s := b.String()
	head := len(s) - len(strings.TrimLeft(s, " \t"))
	tail := len(strings.TrimRight(s[head:], " \t")) + head
	body := s[head:tail]
	if head == 0 {
		if i := protectAt(body); i >= 0 {
			body = body[:i] + `\` + body[i:]
			for j := range marks {
				if marks[j].start >= i {
					marks[j].start++
					marks[j].end++
				}
			}
		}
	}
	lead := entities(s[:head])
	for j := range marks {
		marks[j].start += len(lead) - head
		marks[j].end += len(lead) - head
	}
	return lead + body + entities(s[tail:]), marks
}

// unflanked returns the wrappers whose markers CommonMark would not pair
// up. A run of adjacent markers that opens must be left-flanking and not
// right-flanking; one that closes must be the reverse. A run that both
// opens and closes fails. Strikethrough runs are at most two tildes and
// never follow a tilde.
func unflanked(s string, marks []mark, lineBefore rune) []int {
	var bad []int
	for i := 0; i < len(marks); {
		j := i + 1
		for j < len(marks) && marks[j].start == marks[j-1].end && s[marks[j].start] == s[marks[i].start] {
			j++
		}
		start, end := marks[i].start, marks[j-1].end
		before, after := lineBefore, ' '
		if start > 0 {
			before, _ = utf8.DecodeLastRuneInString(s[:start])
		}
		if end < len(s) {
			after, _ = utf8.DecodeRuneInString(s[end:])
		}
		left, right := flanking(before, after)
		ok := s[start] != '~' || (end-start <= 2 && before != '~')
		for _, m := range marks[i:j] {
			if m.open && (!left || right) || !m.open && (!right || left) {
				ok = false
			}
		}
		if !ok {
			for _, m := range marks[i:j] {
				bad = append(bad, m.w)
			}
		}
		i = j
	}
	return bad
}

// flanking classifies a delimiter run by its neighbours the way goldmark
// does.
func flanking(before, after rune) (left, right bool) {
	bs, bp := util.IsSpaceRune(before), util.IsPunctRune(before)
	as, ap := util.IsSpaceRune(after), util.IsPunctRune(after)
	left = !as && (!ap || bs || bp)
	right = !bs && (!bp || as || ap)
	return left, right
}

// inline encodes runs, opening and closing wrappers as the styles change.
// Wrappers nest as a stack: a run keeps the open wrappers it shares with
// the one before and closes the rest. Whitespace at the edge of a wrapped
// run moves outside the markers. It returns the pieces of the line and
// the wrappers they refer to.
func inline(rs []run, base rich.Style) ([]piece, []wrapper) {
	var ps []piece
	var ws []wrapper
	var stack []int
	add := func(s string) {
		if s != "" {
			ps = append(ps, piece{text: s, w: -1})
		}
	}
	held := ""
	for _, r := range rs {
		_, code := r.kind.(rich.Code)
		img, isImg := r.kind.(rich.Image)
		atomic := code || isImg
		if !atomic && strings.TrimSpace(r.text) == "" {
			held += r.text
			continue
		}
		want := wrappers(r, base)
		k := 0
		for k < len(stack) && k < len(want) && ws[stack[k]] == want[k] {
			k++
		}
		for i := len(stack) - 1; i >= k; i-- {
			ps = append(ps, piece{w: stack[i]})
		}
		stack = stack[:k]
		add(held)
		held = ""

		body := r.text
		if len(want) > k {
			if !atomic {
				lead := body[:len(body)-len(strings.TrimLeftFunc(body, unicode.IsSpace))]
				add(lead)
				body = body[len(lead):]
			}
			for _, w := range want[k:] {
				if w.open == "[" {
					unbang(ps)
				}
				stack = append(stack, len(ws))
				ps = append(ps, piece{w: len(ws), open: true})
				ws = append(ws, w)
			}
		}
		switch {
		case code:
			add(codeSpan(body))
		case isImg:
			add(image(img))
		default:
			trimmed := strings.TrimRightFunc(body, unicode.IsSpace)
			held = body[len(trimmed):]
			add(escape(trimmed))
		}
	}
	for i := len(stack) - 1; i >= 0; i-- {
		ps = append(ps, piece{w: stack[i]})
	}
	add(held)
	return ps, ws
}

// unbang escapes a '!' ending the last piece so that a link opened next
// to it is not read as an image.
func unbang(ps []piece) {
	n := len(ps)
	if n == 0 || ps[n-1].w >= 0 {
		return
	}
	t := ps[n-1].text
	if !strings.HasSuffix(t, "!") {
		return
	}
	slashes := len(t) - 1 - len(strings.TrimRight(t[:len(t)-1], `\`))
	if slashes%2 == 0 {
		ps[n-1].text = t[:len(t)-1] + `\!`
	}
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"&", `\&`,
	"$", `\$`,
	"`", "\\`",
	"#", `\#`,
)

func escape(s string) string {
	return escaper.Replace(s)
}

// protectAt returns where a backslash keeps markdown from reading the
// start of s as a list item, a setext underline or a thematic break, or -1.
func protectAt(s string) int {
	if s == "" {
		return -1
	}
	switch s[0] {
	case '-', '+', '=':
		return 0
	}
	i := 0
	for i < len(s) && i < 9 && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return i
	}
	return -1
}

func entities(ws string) string {
	var b strings.Builder
	for _, r := range ws {
		if r == '\t' {
			b.WriteString("&#9;")
			continue
		}
		b.WriteString("&#32;")
	}
	return b.String()
}

// codeSpan fences s with one more backtick than its longest backtick run.
func codeSpan(s string) string {
	longest, n := 0, 0
	for _, r := range s {
		if r != '`' {
			n = 0
			continue
		}
		n++
		longest = max(longest, n)
	}
	fence := strings.Repeat("`", longest+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") ||
		(strings.HasPrefix(s, " ") && strings.HasSuffix(s, " ") && strings.Trim(s, " ") != "") {
		s = " " + s + " "
	}
	return fence + s + fence
}

func image(img rich.Image) string {
	var b strings.Builder
	b.WriteString("![")
	b.WriteString(escape(img.Alt))
	b.WriteString("](")
	b.WriteString(destination(img.URL))
	if img.Title != "" {
		b.WriteString(` "`)
		b.WriteString(strings.ReplaceAll(img.Title, `"`, `\"`))
		b.WriteString(`"`)
	}
	b.WriteString(")")
	return b.String()
}

// destination quotes a link destination in angle brackets when it would
// not survive bare.
func destination(u string) string {
	if u != "" && !strings.ContainsAny(u, " ()<>") {
		return u
	}
	return "<" + strings.NewReplacer("<", "%3C", ">", "%3E").Replace(u) + ">"
}
