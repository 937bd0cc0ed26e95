// Package richhtml converts between rich paragraphs and HTML fragments.
package richhtml

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/rjkroege/richtext/rich"
)

var headings = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

// Encode renders paragraphs as an HTML fragment.
func Encode(ps []*rich.Paragraph) (string, error) {
	var b strings.Builder
	if err := Render(&b, ps); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Render writes paragraphs to w as an HTML fragment with one block
// element per line. Consecutive list items share a list element and
// deeper items nest inside the item before them.
func Render(w io.Writer, ps []*rich.Paragraph) error {
	e := &encoder{}
	for _, p := range ps {
		e.paragraph(p)
	}
	for i, n := range e.blocks {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("render html: %w", err)
			}
		}
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
	}
	return nil
}

// listFrame is an open <ul> or <ol>.
type listFrame struct {
	level   int
	ordered bool
	node    *html.Node
}

type encoder struct {
	blocks []*html.Node
	lists  []listFrame
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func (e *encoder) paragraph(p *rich.Paragraph) {
	switch t := p.Type.(type) {
	case rich.UnorderedList:
		e.item(p, t.Level, false, 0)
		return
	case rich.OrderedList:
		e.item(p, t.Level, true, t.Number)
		return
	}
	e.lists = nil
	n := element(atom.P)
	level := headingLevel(p)
	if level > 0 {
		n = element(headings[level-1])
	}
	if _, ok := p.Type.(rich.OneSpace); ok {
		n.Attr = append(n.Attr, html.Attribute{Key: "data-type", Val: "one-space"})
	}
	for _, c := range p.Children {
		span(n, c, level)
	}
	e.blocks = append(e.blocks, n)
}

func (e *encoder) item(p *rich.Paragraph, level int, ordered bool, number int) {
	level = max(level, 1)
	for n := len(e.lists); n > 0; n = len(e.lists) {
		top := e.lists[n-1]
		if top.level < level || (top.level == level && top.ordered == ordered) {
			break
		}
		e.lists = e.lists[:n-1]
	}
	if n := len(e.lists); n == 0 || e.lists[n-1].level < level {
		list := element(atom.Ul)
		if ordered {
			list = element(atom.Ol)
			if number != 1 {
				list.Attr = append(list.Attr, html.Attribute{Key: "start", Val: strconv.Itoa(number)})
			}
		}
		if n == 0 {
			e.blocks = append(e.blocks, list)
		} else {
			parent := e.lists[n-1].node
			li := parent.LastChild
			if li == nil {
				li = element(atom.Li)
				parent.AppendChild(li)
			}
			li.AppendChild(list)
		}
		e.lists = append(e.lists, listFrame{level: level, ordered: ordered, node: list})
	}
	li := element(atom.Li)
	for _, c := range p.Children {
		span(li, c, 0)
	}
	e.lists[len(e.lists)-1].node.AppendChild(li)
}

// headingLevel returns the heading level of a Default paragraph whose
// first text carries a heading style, or 0.
func headingLevel(p *rich.Paragraph) int {
	if rich.IsList(p.Type) {
		return 0
	}
	level := 0
	for _, c := range p.Children {
		c.Walk(func(s *rich.Span) bool {
			if level == 0 && s.Text != "" {
				level = s.EffectiveStyle().Heading
				if level == 0 {
					level = -1
				}
			}
			return level == 0
		})
		if level != 0 {
			break
		}
	}
	return max(level, 0)
}

// span appends s and its children to parent. Attributes implied by the
// heading element are left out.
func span(parent *html.Node, s *rich.Span, heading int) {
	st := s.Style
	if heading > 0 && st.Heading == heading {
		st = st.Without(rich.HeadingStyle(heading))
	}
	outer, inner := wrap(st, s.Kind)
	if outer != nil {
		parent.AppendChild(outer)
	} else {
		inner = parent
	}
	if img, ok := s.Kind.(rich.Image); ok {
		attrs := []html.Attribute{{Key: "src", Val: img.URL}, {Key: "alt", Val: img.Alt}}
		if img.Title != "" {
			attrs = append(attrs, html.Attribute{Key: "title", Val: img.Title})
		}
		inner.AppendChild(element(atom.Img, attrs...))
	} else if s.Text != "" {
		inner.AppendChild(&html.Node{Type: html.TextNode, Data: s.Text})
	}
	for _, c := range s.Children {
		span(inner, c, heading)
	}
}

// wrap returns the chain of elements that render st and k, outermost
// and innermost, or nil when nothing needs wrapping.
func wrap(st rich.Style, k rich.Kind) (outer, inner *html.Node) {
	var chain []*html.Node
	switch k := k.(type) {
	case rich.Link:
		chain = append(chain, element(atom.A, html.Attribute{Key: "href", Val: k.URL}))
	case rich.Code:
		chain = append(chain, element(atom.Code))
	case rich.Custom:
		chain = append(chain, element(atom.Span, html.Attribute{Key: "data-kind", Val: k.Name}))
	}
	if st.Bold == rich.On {
		chain = append(chain, element(atom.Strong))
	}
	if st.Italic == rich.On {
		chain = append(chain, element(atom.Em))
	}
	if st.Underline == rich.On {
		chain = append(chain, element(atom.U))
	}
	if st.Strikethrough == rich.On {
		chain = append(chain, element(atom.S))
	}
	if css := styleCSS(st); css != "" {
		chain = append(chain, element(atom.Span, html.Attribute{Key: "style", Val: css}))
	}
	if st.Misspelled == rich.On {
		chain = append(chain, element(atom.Span, html.Attribute{Key: "class", Val: misspelledClass}))
	}
	if len(chain) == 0 {
		return nil, nil
	}
	for i := 1; i < len(chain); i++ {
		chain[i-1].AppendChild(chain[i])
	}
	return chain[0], chain[len(chain)-1]
}
