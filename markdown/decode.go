package markdown

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.uber.org/zap"

	"github.com/rjkroege/richtext/rich"
)

// htmlStyles are the inline HTML tags that open a styled container.
var htmlStyles = map[string]rich.Style{
	"u":      rich.Underline,
	"b":      rich.Bold,
	"strong": rich.Bold,
	"i":      rich.Italic,
	"em":     rich.Italic,
	"s":      rich.Strikethrough,
	"del":    rich.Strikethrough,
	"strike": rich.Strikethrough,
}

// container is an open span that inline content goes into. Containers
// opened by raw HTML remember their tag so the closing tag can find them.
type container struct {
	span *rich.Span
	tag  string
}

// decoder accumulates paragraphs while walking a goldmark tree.
type decoder struct {
	src   []byte
	log   *zap.Logger
	paras []*rich.Paragraph

	cur  *rich.Paragraph
	open []container

	// sealed marks cur as a deliberately empty paragraph: content that
	// follows starts a new one.
	sealed bool
	// broken marks cur as started by a line break and still without text.
	broken bool
}

func (d *decoder) decode(src []byte) {
	d.src = src
	root := md.Parser().Parse(text.NewReader(src))
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		d.block(n)
	}
}

// blankBefore reports whether a blank line separates n from the block
// before it. The first child of a container shares the container's flag,
// so only blocks with a previous sibling count. Blocks left empty by link
// reference definitions are not siblings.
func blankBefore(n ast.Node) bool {
	if !n.HasBlankPreviousLines() {
		return false
	}
	for p := n.PreviousSibling(); p != nil; p = p.PreviousSibling() {
		if !definitions(p) {
			return true
		}
	}
	return false
}

// definitions reports whether n held nothing but link reference
// definitions, which goldmark consumes and leaves an empty block behind.
func definitions(n ast.Node) bool {
	switch n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return n.Lines().Len() == 0 && !n.HasChildren()
	}
	return false
}

func (d *decoder) block(n ast.Node) {
	if definitions(n) {
		return
	}
	if blankBefore(n) {
		d.emptyParagraph()
	}
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		d.newParagraph(rich.Default{})
		d.inlines(n)
	case *ast.Heading:
		d.newParagraph(rich.Default{})
		d.push(rich.HeadingStyle(n.Level), nil, "")
		d.inlines(n)
	case *ast.List:
		d.list(n, 1)
	case *ast.Blockquote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			d.block(c)
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		for _, l := range lines(n, d.src) {
			d.newParagraph(rich.Default{})
			if l != "" {
				d.span(&rich.Span{Text: l, Kind: rich.Code{}})
			}
		}
	case *ast.HTMLBlock:
		d.htmlBlock(n)
	case *ast.ThematicBreak:
		d.newParagraph(rich.Default{})
		d.text("---")
	default:
		d.log.Debug("decoding block as literal text", zap.Stringer("kind", n.Kind()))
		d.literal(lines(n, d.src))
	}
}

func (d *decoder) list(l *ast.List, level int) {
	number := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		if blankBefore(item) {
			d.emptyParagraph()
		}
		var t rich.ParagraphType = rich.UnorderedList{Level: level}
		if l.IsOrdered() {
			t = rich.OrderedList{Number: number, Level: level}
			number++
		}
		d.newParagraph(t)
		c := item.FirstChild()
		switch c.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			d.inlines(c)
			c = c.NextSibling()
		}
		for ; c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				if blankBefore(sub) {
					d.emptyParagraph()
				}
				d.list(sub, level+1)
				continue
			}
			d.block(c)
		}
	}
}

// htmlBlock decodes an HTML block. A block that starts with a <br> line
// holds empty paragraphs and markdown: each <br> line is an empty
// paragraph and the lines between them are decoded as markdown. Any other
// HTML block is kept as literal text.
func (d *decoder) htmlBlock(n *ast.HTMLBlock) {
	ls := lines(n, d.src)
	if n.HasClosure() {
		ls = append(ls, strings.TrimRight(string(n.ClosureLine.Value(d.src)), "\r\n"))
	}
	if len(ls) == 0 || !isBreakLine(ls[0]) {
		d.log.Debug("decoding html block as literal text", zap.Int("lines", len(ls)))
		d.literal(ls)
		return
	}
	var group []string
	flush := func() {
		if len(group) == 0 {
			return
		}
		sub := &decoder{log: d.log}
		sub.decode([]byte(strings.Join(group, "\n")))
		d.paras = append(d.paras, sub.paras...)
		d.cur = nil
		group = nil
	}
	for _, l := range ls {
		if isBreakLine(l) {
			flush()
			d.emptyParagraph()
			continue
		}
		group = append(group, l)
	}
	flush()
}

func (d *decoder) literal(ls []string) {
	for _, l := range ls {
		d.newParagraph(rich.Default{})
		d.text(l)
	}
}

// inlines decodes the inline children of a block. A line break at the
// very end of the block does not leave an empty paragraph behind.
func (d *decoder) inlines(block ast.Node) {
	for c := block.FirstChild(); c != nil; c = c.NextSibling() {
		d.inline(c)
	}
	if d.cur != nil && d.broken && !d.sealed && d.cur.IsEmpty(true) {
		d.paras = d.paras[:len(d.paras)-1]
		d.cur = nil
	}
	d.open = nil
}

func (d *decoder) children(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		d.inline(c)
	}
}

func (d *decoder) inline(n ast.Node) {
	switch n := n.(type) {
	case *ast.Text:
		v := n.Segment.Value(d.src)
		if n.IsRaw() {
			d.text(string(v))
		} else {
			d.text(unescape(v))
		}
		if n.SoftLineBreak() || n.HardLineBreak() {
			d.lineBreak()
		}
	case *ast.String:
		d.text(string(n.Value))
	case *ast.Emphasis:
		st := rich.Italic
		if n.Level >= 2 {
			st = rich.Bold
		}
		depth := d.push(st, nil, "")
		d.children(n)
		d.popTo(depth)
	case *extast.Strikethrough:
		depth := d.push(rich.Strikethrough, nil, "")
		d.children(n)
		d.popTo(depth)
	case *ast.CodeSpan:
		d.span(&rich.Span{Text: codeText(n, d.src), Kind: rich.Code{}})
	case *ast.Link:
		depth := d.push(rich.Style{}, rich.Link{URL: unescape(n.Destination)}, "")
		d.children(n)
		d.popTo(depth)
	case *ast.AutoLink:
		d.span(&rich.Span{
			Text: unescape(n.Label(d.src)),
			Kind: rich.Link{URL: string(n.URL(d.src))},
		})
	case *ast.Image:
		d.span(&rich.Span{
			Text: rich.ObjectReplacement,
			Kind: rich.Image{
				URL:   unescape(n.Destination),
				Alt:   plainText(n, d.src),
				Title: unescape(n.Title),
			},
		})
	case *ast.RawHTML:
		d.rawHTML(n)
	default:
		d.log.Debug("decoding inline children only", zap.Stringer("kind", n.Kind()))
		d.children(n)
	}
}

func (d *decoder) rawHTML(n *ast.RawHTML) {
	var b bytes.Buffer
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		b.Write(seg.Value(d.src))
	}
	raw := b.String()
	name, closing, ok := htmlTag(raw)
	if ok && name == "br" {
		switch {
		case d.cur == nil || d.sealed:
			d.emptyParagraph()
		case d.cur.IsEmpty(true):
			d.sealed = true
		default:
			d.lineBreak()
		}
		return
	}
	if st, known := htmlStyles[name]; ok && known {
		if !closing {
			d.push(st, nil, name)
			return
		}
		for i := len(d.open) - 1; i >= 0; i-- {
			if tag := d.open[i].tag; tag != "" && htmlStyles[tag] == st {
				d.popTo(i)
				return
			}
		}
		return
	}
	d.log.Debug("decoding inline html as literal text", zap.String("html", raw))
	d.text(raw)
}

func (d *decoder) newParagraph(t rich.ParagraphType) {
	d.cur = &rich.Paragraph{Type: t}
	d.paras = append(d.paras, d.cur)
	d.open = nil
	d.sealed = false
	d.broken = false
}

func (d *decoder) emptyParagraph() {
	d.newParagraph(rich.Default{})
	d.sealed = true
}

// lineBreak starts a new Default paragraph and reopens the containers
// that were open in the old one.
func (d *decoder) lineBreak() {
	open := d.open
	d.newParagraph(rich.Default{})
	d.broken = true
	for _, c := range open {
		s := &rich.Span{Style: c.span.Style, Kind: c.span.Kind}
		d.attach(s)
		d.open = append(d.open, container{span: s, tag: c.tag})
	}
}

// target makes sure there is a paragraph that accepts content.
func (d *decoder) target() {
	if d.cur == nil || d.sealed {
		d.lineBreak()
	}
}

func (d *decoder) attach(s *rich.Span) {
	if n := len(d.open); n > 0 {
		d.open[n-1].span.Append(s)
		return
	}
	d.cur.Append(s)
}

// push opens a container and returns the depth to pop back to.
func (d *decoder) push(st rich.Style, k rich.Kind, tag string) int {
	d.target()
	depth := len(d.open)
	s := &rich.Span{Style: st, Kind: k}
	d.attach(s)
	d.open = append(d.open, container{span: s, tag: tag})
	return depth
}

func (d *decoder) popTo(depth int) {
	if depth < len(d.open) {
		d.open = d.open[:depth]
	}
}

// span adds a finished span.
func (d *decoder) span(s *rich.Span) {
	d.target()
	d.attach(s)
	d.broken = false
}

// text adds plain text to the innermost open container, extending the
// last plain span when there is one.
func (d *decoder) text(s string) {
	if s == "" {
		return
	}
	d.target()
	d.broken = false
	siblings := d.cur.Children
	if n := len(d.open); n > 0 {
		top := d.open[n-1].span
		if len(top.Children) == 0 {
			top.Text += s
			return
		}
		siblings = top.Children
	}
	if n := len(siblings); n > 0 && isPlain(siblings[n-1]) {
		siblings[n-1].Text += s
		return
	}
	d.attach(&rich.Span{Text: s})
}

func isPlain(s *rich.Span) bool {
	return s.Style.IsZero() && s.Kind == nil && len(s.Children) == 0
}

func isBreakLine(l string) bool {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "<br>", "<br/>", "<br />":
		return true
	}
	return false
}

// htmlTag returns the lower-cased element name of an HTML tag and
// whether it is a closing tag.
func htmlTag(raw string) (name string, closing, ok bool) {
	s, found := strings.CutPrefix(raw, "<")
	if !found {
		return "", false, false
	}
	s, closing = strings.CutPrefix(s, "/")
	end := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if end <= 0 {
		return "", false, false
	}
	return strings.ToLower(s[:end]), closing, true
}

func lines(n ast.Node, src []byte) []string {
	var out []string
	ls := n.Lines()
	for i := 0; i < ls.Len(); i++ {
		seg := ls.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(src)), "\r\n"))
	}
	return out
}

func codeText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(src))
		case *ast.String:
			b.Write(c.Value)
		}
	}
	return strings.ReplaceAll(b.String(), "\n", " ")
}

// plainText returns the text of n's descendants without markup.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.WriteString(unescape(c.Segment.Value(src)))
			if c.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		case *ast.CodeSpan:
			b.WriteString(codeText(c, src))
		default:
			b.WriteString(plainText(c, src))
		}
	}
	return b.String()
}

// unescape resolves backslash escapes and character references in one
// pass, so an escaped ampersand never starts a reference.
func unescape(v []byte) string {
	if bytes.IndexByte(v, '\\') < 0 && bytes.IndexByte(v, '&') < 0 {
		return string(v)
	}
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case c == '\\' && i+1 < len(v) && util.IsPunct(v[i+1]):
			b.WriteByte(v[i+1])
			i++
		case c == '&':
			r, n := reference(v[i:])
			if n == 0 {
				b.WriteByte(c)
				continue
			}
			b.WriteString(r)
			i += n - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// reference decodes the character reference at the start of v and
// returns its text and length, or a zero length.
func reference(v []byte) (string, int) {
	end := bytes.IndexByte(v, ';')
	if end < 2 || end > 32 {
		return "", 0
	}
	name := string(v[1:end])
	if num, ok := strings.CutPrefix(name, "#"); ok {
		base := 10
		if len(num) > 0 && (num[0] == 'x' || num[0] == 'X') {
			base = 16
			num = num[1:]
		}
		n, err := strconv.ParseUint(num, base, 32)
		if err != nil {
			return "", 0
		}
		r := rune(n)
		if r == 0 || !utf8.ValidRune(r) {
			r = utf8.RuneError
		}
		return string(r), end + 1
	}
	if e, ok := util.LookUpHTML5EntityByName(name); ok {
		return string(e.Characters), end + 1
	}
	return "", 0
}
