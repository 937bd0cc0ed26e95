package richhtml

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/rjkroege/richtext/rich"
)

// Option configures Decode.
type Option func(*decoder)

// WithLogger is an Option that sets the logger used to report elements
// that decode to their text only. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(d *decoder) {
		if l != nil {
			d.log = l
		}
	}
}

// inlineStyles maps the inline elements that carry a style.
var inlineStyles = map[atom.Atom]rich.Style{
	atom.B:      rich.Bold,
	atom.Strong: rich.Bold,
	atom.I:      rich.Italic,
	atom.Em:     rich.Italic,
	atom.U:      rich.Underline,
	atom.Ins:    rich.Underline,
	atom.S:      rich.Strikethrough,
	atom.Del:    rich.Strikethrough,
	atom.Strike: rich.Strikethrough,
}

// codeElements render their content as inline code.
var codeElements = map[atom.Atom]bool{
	atom.Code: true,
	atom.Kbd:  true,
	atom.Samp: true,
	atom.Tt:   true,
}

// containers are block elements whose content is made of other blocks or
// of inline content forming one paragraph.
var containers = map[atom.Atom]bool{
	atom.Div:        true,
	atom.Blockquote: true,
	atom.Section:    true,
	atom.Article:    true,
	atom.Header:     true,
	atom.Footer:     true,
	atom.Main:       true,
	atom.Aside:      true,
	atom.Nav:        true,
	atom.Figure:     true,
	atom.Body:       true,
	atom.Html:       true,
	atom.Table:      true,
	atom.Tbody:      true,
	atom.Tr:         true,
}

var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
	atom.Title:    true,
}

// newlines matches the whitespace around a line break in the source,
// which HTML renders as a single space.
var newlines = regexp.MustCompile(`[ \t]*\r?\n[ \t\r\n]*`)

// Decode parses an HTML document or fragment into paragraphs. Unknown
// elements contribute their text; only a failing reader is an error.
func Decode(r io.Reader, opts ...Option) ([]*rich.Paragraph, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	d := &decoder{log: zap.NewNop()}
	for _, o := range opts {
		o(d)
	}
	d.node(root, 0)
	for _, p := range d.paras {
		p.RemoveEmptyChildren()
	}
	return d.paras, nil
}

// DecodeString parses an HTML string into paragraphs.
func DecodeString(s string, opts ...Option) ([]*rich.Paragraph, error) {
	return Decode(strings.NewReader(s), opts...)
}

type decoder struct {
	log   *zap.Logger
	paras []*rich.Paragraph
	cur   *rich.Paragraph
	open  []*rich.Span
	// soft is set when the current paragraph holds source line breaks,
	// whose edge whitespace is not content.
	soft bool
}

// node decodes n. depth is the list nesting depth around n.
func (d *decoder) node(n *html.Node, depth int) {
	switch n.Type {
	case html.DocumentNode:
		d.children(n, depth)
		return
	case html.TextNode:
		d.text(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	a := n.DataAtom
	switch {
	case skipped[a]:
	case a == atom.P:
		d.block(paragraphType(n), rich.Style{}, n, depth)
	case headingIndex(a) >= 0:
		d.block(rich.Default{}, rich.HeadingStyle(headingIndex(a)+1), n, depth)
	case a == atom.Ul || a == atom.Ol:
		d.list(n, depth+1)
	case a == atom.Li:
		d.item(n, rich.UnorderedList{Level: depth + 1}, depth)
	case a == atom.Pre:
		d.pre(n)
	case a == atom.Br:
		d.lineBreak()
	case a == atom.Hr:
		d.end()
	case containers[a]:
		d.end()
		d.children(n, depth)
		d.end()
	case a == atom.Img:
		d.span(&rich.Span{Text: rich.ObjectReplacement, Kind: rich.Image{
			URL:   attr(n, "src"),
			Alt:   attr(n, "alt"),
			Title: attr(n, "title"),
		}})
	case a == atom.A && hasAttr(n, "href"):
		d.inline(n, rich.Style{}, rich.Link{URL: attr(n, "href")}, depth)
	case codeElements[a]:
		d.inline(n, rich.Style{}, rich.Code{}, depth)
	case a == atom.Span:
		st := parseCSS(attr(n, "style"))
		if hasClass(n, misspelledClass) {
			st.Misspelled = rich.On
		}
		var k rich.Kind
		if name := attr(n, "data-kind"); name != "" {
			k = rich.Custom{Name: name}
		}
		d.inline(n, st, k, depth)
	default:
		if st, ok := inlineStyles[a]; ok {
			d.inline(n, st, nil, depth)
			return
		}
		d.log.Debug("decoding element text only", zap.String("element", n.Data))
		d.children(n, depth)
	}
}

func headingIndex(a atom.Atom) int {
	for i, h := range headings {
		if h == a {
			return i
		}
	}
	return -1
}

func paragraphType(n *html.Node) rich.ParagraphType {
	if attr(n, "data-type") == "one-space" {
		return rich.OneSpace{}
	}
	return rich.Default{}
}

func (d *decoder) children(n *html.Node, depth int) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.node(c, depth)
	}
}

// block decodes a paragraph-like element. The paragraph exists even when
// the element is empty. The first block of a list item fills the item.
func (d *decoder) block(t rich.ParagraphType, st rich.Style, n *html.Node, depth int) {
	if d.cur != nil && rich.IsList(d.cur.Type) && d.cur.IsEmpty(true) {
		d.open = nil
	} else {
		d.end()
		d.newParagraph(t)
	}
	if !st.IsZero() {
		d.push(st, nil)
	}
	d.children(n, depth)
	d.end()
}

func (d *decoder) list(n *html.Node, depth int) {
	d.end()
	ordered := n.DataAtom == atom.Ol
	number := 1
	if s, err := strconv.Atoi(attr(n, "start")); err == nil {
		number = s
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			d.node(c, depth-1)
			continue
		}
		var t rich.ParagraphType = rich.UnorderedList{Level: depth}
		if ordered {
			t = rich.OrderedList{Number: number, Level: depth}
			number++
		}
		d.item(c, t, depth)
	}
	d.end()
}

func (d *decoder) item(n *html.Node, t rich.ParagraphType, depth int) {
	d.end()
	d.newParagraph(t)
	d.children(n, depth)
	d.end()
}

// pre decodes preformatted text as one code paragraph per line.
func (d *decoder) pre(n *html.Node) {
	d.end()
	body := strings.TrimSuffix(strings.TrimPrefix(textContent(n), "\n"), "\n")
	for _, l := range strings.Split(body, "\n") {
		d.newParagraph(rich.Default{})
		if l != "" {
			d.span(&rich.Span{Text: l, Kind: rich.Code{}})
		}
	}
	d.end()
}

func (d *decoder) inline(n *html.Node, st rich.Style, k rich.Kind, depth int) {
	depthBefore := len(d.open)
	d.push(st, k)
	d.children(n, depth)
	if depthBefore < len(d.open) {
		d.open = d.open[:depthBefore]
	}
}

func (d *decoder) newParagraph(t rich.ParagraphType) {
	d.finish()
	d.cur = &rich.Paragraph{Type: t}
	d.paras = append(d.paras, d.cur)
	d.open = nil
}

// end closes the current paragraph; inline content that follows starts
// a new one.
func (d *decoder) end() {
	d.finish()
	d.cur = nil
	d.open = nil
}

func (d *decoder) finish() {
	if d.cur != nil && d.soft {
		d.cur.Trim()
	}
	d.soft = false
}

// lineBreak starts a new paragraph that continues the open inline
// elements. Between blocks it is an empty paragraph of its own.
func (d *decoder) lineBreak() {
	if d.cur == nil {
		d.newParagraph(rich.Default{})
		d.end()
		return
	}
	open := d.open
	d.newParagraph(rich.Default{})
	for _, s := range open {
		c := &rich.Span{Style: s.Style, Kind: s.Kind}
		d.attach(c)
		d.open = append(d.open, c)
	}
}

func (d *decoder) target() {
	if d.cur == nil {
		d.newParagraph(rich.Default{})
	}
}

func (d *decoder) attach(s *rich.Span) {
	if n := len(d.open); n > 0 {
		d.open[n-1].Append(s)
		return
	}
	d.cur.Append(s)
}

func (d *decoder) push(st rich.Style, k rich.Kind) {
	d.target()
	s := &rich.Span{Style: st, Kind: k}
	d.attach(s)
	d.open = append(d.open, s)
}

func (d *decoder) span(s *rich.Span) {
	d.target()
	d.attach(s)
}

func (d *decoder) text(raw string) {
	s := newlines.ReplaceAllString(raw, " ")
	if d.cur == nil && strings.TrimSpace(s) == "" {
		return
	}
	if s == "" {
		return
	}
	d.target()
	if s != raw {
		d.soft = true
	}
	siblings := d.cur.Children
	if n := len(d.open); n > 0 {
		top := d.open[n-1]
		if len(top.Children) == 0 {
			top.Text += s
			return
		}
		siblings = top.Children
	}
	if n := len(siblings); n > 0 {
		if last := siblings[n-1]; last.Style.IsZero() && last.Kind == nil && len(last.Children) == 0 {
			last.Text += s
			return
		}
	}
	d.attach(&rich.Span{Text: s})
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
