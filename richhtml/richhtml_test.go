package richhtml

import (
	"strings"
	"testing"

	"9fans.net/go/draw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjkroege/richtext/rich"
)

func para(t rich.ParagraphType, spans ...*rich.Span) *rich.Paragraph {
	p := &rich.Paragraph{Type: t}
	p.Append(spans...)
	return p
}

func plain(s string) *rich.Span {
	return &rich.Span{Text: s}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		ps   []*rich.Paragraph
		want string
	}{
		{
			name: "paragraphs",
			ps:   []*rich.Paragraph{para(rich.Default{}, plain("Hello")), para(rich.Default{}, plain("World"))},
			want: "<p>Hello</p>\n<p>World</p>",
		},
		{
			name: "nested styles",
			ps: []*rich.Paragraph{para(rich.Default{},
				rich.NewSpan("Hello ", rich.Bold, rich.NewSpan("World!", rich.Italic)))},
			want: "<p><strong>Hello <em>World!</em></strong></p>",
		},
		{
			name: "escaping",
			ps:   []*rich.Paragraph{para(rich.Default{}, plain("a < b & c"))},
			want: "<p>a &lt; b &amp; c</p>",
		},
		{
			name: "link",
			ps:   []*rich.Paragraph{para(rich.Default{}, &rich.Span{Text: "go", Kind: rich.Link{URL: "https://go.dev"}})},
			want: `<p><a href="https://go.dev">go</a></p>`,
		},
		{
			name: "code and strikethrough",
			ps: []*rich.Paragraph{para(rich.Default{},
				&rich.Span{Text: "x", Kind: rich.Code{}}, rich.NewSpan("y", rich.Strikethrough))},
			want: "<p><code>x</code><s>y</s></p>",
		},
		{
			name: "image",
			ps: []*rich.Paragraph{para(rich.Default{},
				&rich.Span{Text: rich.ObjectReplacement, Kind: rich.Image{URL: "a.png", Alt: "A", Title: "T"}})},
			want: `<p><img src="a.png" alt="A" title="T"/></p>`,
		},
		{
			name: "heading",
			ps:   []*rich.Paragraph{para(rich.Default{}, rich.NewSpan("Title", rich.HeadingStyle(2)))},
			want: "<h2>Title</h2>",
		},
		{
			name: "one space",
			ps:   []*rich.Paragraph{para(rich.OneSpace{}, plain("tight"))},
			want: `<p data-type="one-space">tight</p>`,
		},
		{
			name: "color and misspelling",
			ps: []*rich.Paragraph{para(rich.Default{},
				rich.NewSpan("red", rich.Style{Color: draw.Red, Misspelled: rich.On}))},
			want: `<p><span style="color:#ff0000"><span class="misspelled">red</span></span></p>`,
		},
		{
			name: "explicit off",
			ps: []*rich.Paragraph{para(rich.Default{},
				rich.NewSpan("a", rich.Bold, rich.NewSpan("b", rich.Style{Bold: rich.Off})))},
			want: `<p><strong>a<span style="font-weight:normal">b</span></strong></p>`,
		},
		{
			name: "nested lists",
			ps: []*rich.Paragraph{
				para(rich.UnorderedList{Level: 1}, plain("a")),
				para(rich.UnorderedList{Level: 2}, plain("b")),
				para(rich.UnorderedList{Level: 1}, plain("c")),
			},
			want: "<ul><li>a<ul><li>b</li></ul></li><li>c</li></ul>",
		},
		{
			name: "ordered list start",
			ps: []*rich.Paragraph{
				para(rich.OrderedList{Number: 3, Level: 1}, plain("x")),
				para(rich.OrderedList{Number: 4, Level: 1}, plain("y")),
			},
			want: `<ol start="3"><li>x</li><li>y</li></ol>`,
		},
		{
			name: "list kind change",
			ps: []*rich.Paragraph{
				para(rich.UnorderedList{Level: 1}, plain("a")),
				para(rich.OrderedList{Number: 1, Level: 1}, plain("b")),
			},
			want: "<ul><li>a</li></ul>\n<ol><li>b</li></ol>",
		},
		{
			name: "empty paragraph",
			ps:   []*rich.Paragraph{para(rich.Default{})},
			want: "<p></p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.ps)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"fragment", "<p>Hello</p><p>World</p>", []string{"Hello", "World"}},
		{"bare text", "Hello <b>World</b>", []string{"Hello World"}},
		{"line break", "<p>a<br>b</p>", []string{"a", "b"}},
		{"break between blocks", "<p>a</p><br><p>b</p>", []string{"a", "", "b"}},
		{"source newlines", "<p>\n  Hello\n  World\n</p>", []string{"Hello World"}},
		{"edge spaces kept", "<p> a </p>", []string{" a "}},
		{"entities", "<p>a &amp; b &lt;c&gt;</p>", []string{"a & b <c>"}},
		{"script skipped", "<script>x()</script><p>y</p>", []string{"y"}},
		{"unknown element", "<p><abbr>HTML</abbr> rocks</p>", []string{"HTML rocks"}},
		{"pre lines", "<pre>a\n\nb\n</pre>", []string{"a", "", "b"}},
		{"div blocks", "<div>a<div>b</div>c</div>", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps, err := DecodeString(tt.src)
			require.NoError(t, err)
			var got []string
			for _, p := range ps {
				got = append(got, p.ContentText())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeStyles(t *testing.T) {
	ps, err := DecodeString(`<p><strong>Hello <em>World</em></strong> <u>u</u><del>s</del>` +
		`<a href="https://go.dev">go</a><code>c</code>` +
		`<span style="color:#f00;font-size:1.5em">r</span><span class="misspelled">m</span></p>`)
	require.NoError(t, err)
	require.Len(t, ps, 1)

	type leaf struct {
		text  string
		style rich.Style
		kind  rich.Kind
	}
	var got []leaf
	for _, c := range ps[0].Children {
		c.Walk(func(s *rich.Span) bool {
			if s.Text != "" {
				got = append(got, leaf{s.Text, s.EffectiveStyle(), s.EffectiveKind()})
			}
			return true
		})
	}
	want := []leaf{
		{"Hello ", rich.Bold, nil},
		{"World", rich.Style{Bold: rich.On, Italic: rich.On}, nil},
		{" ", rich.Style{}, nil},
		{"u", rich.Underline, nil},
		{"s", rich.Strikethrough, nil},
		{"go", rich.Style{}, rich.Link{URL: "https://go.dev"}},
		{"c", rich.Style{}, rich.Code{}},
		{"r", rich.Style{Color: draw.Red, Scale: 1.5}, nil},
		{"m", rich.Misspelled, nil},
	}
	assert.Equal(t, want, got)
}

func TestDecodeBlocks(t *testing.T) {
	ps, err := DecodeString(`<h1>T</h1><p data-type="one-space">o</p>` +
		`<ul><li>a<ul><li>b</li></ul></li></ul><ol start="5"><li><p>x</p></li><li>y</li></ol>` +
		`<p><img src="i.png" alt="I"></p>`)
	require.NoError(t, err)
	require.Len(t, ps, 7)

	assert.Equal(t, rich.HeadingStyle(1), ps[0].Children[0].Style)
	assert.Equal(t, rich.OneSpace{}, ps[1].Type)
	assert.Equal(t, rich.UnorderedList{Level: 1}, ps[2].Type)
	assert.Equal(t, rich.UnorderedList{Level: 2}, ps[3].Type)
	assert.Equal(t, rich.OrderedList{Number: 5, Level: 1}, ps[4].Type)
	assert.Equal(t, "x", ps[4].ContentText())
	assert.Equal(t, rich.OrderedList{Number: 6, Level: 1}, ps[5].Type)
	assert.Equal(t, rich.Image{URL: "i.png", Alt: "I"}, ps[6].Children[0].Kind)
}

func TestRoundTrip(t *testing.T) {
	tests := []string{
		"<p>Hello</p>\n<p></p>\n<p>World</p>",
		"<p><strong>Hello <em>World!</em></strong></p>",
		"<h3>Heading</h3>\n<p>body</p>",
		"<ul><li>a<ul><li>b</li></ul></li><li>c</li></ul>",
		`<ol start="2"><li>x</li></ol>`,
		`<p><a href="u">l</a> <code>c</code> <u>u</u> <s>s</s></p>`,
		`<p><span style="color:#00ff00">g</span></p>`,
		`<p data-type="one-space">o</p>`,
		`<p><img src="a.png" alt="A"/></p>`,
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			ps, err := Decode(strings.NewReader(src))
			require.NoError(t, err)
			got, err := Encode(ps)
			require.NoError(t, err)
			assert.Equal(t, src, got)
		})
	}
}

func TestParseCSS(t *testing.T) {
	tests := []struct {
		css  string
		want rich.Style
	}{
		{"color: #ABC", rich.Style{Color: draw.Color(0xAABBCCFF)}},
		{"background-color:#000000", rich.Style{Background: draw.Color(0x000000FF)}},
		{"color:initial", rich.Style{Color: rich.NoColor}},
		{"color:red", rich.Style{}},
		{"font-weight:bold;font-style:italic", rich.Style{Bold: rich.On, Italic: rich.On}},
		{"text-decoration:none", rich.Style{Underline: rich.Off, Strikethrough: rich.Off}},
		{"text-decoration: underline", rich.Underline},
		{"font-size:0.9em", rich.Style{Scale: 0.9}},
		{"nonsense", rich.Style{}},
	}
	for _, tt := range tests {
		t.Run(tt.css, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCSS(tt.css))
		})
	}
}

func TestStyleCSSRoundTrip(t *testing.T) {
	st := rich.Style{Color: draw.Color(0x123456FF), Background: rich.NoColor, Scale: 1.25, Italic: rich.Off}
	assert.Equal(t, st, parseCSS(styleCSS(st)))
}
