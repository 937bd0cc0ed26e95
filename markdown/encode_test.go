package markdown

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/rjkroege/richtext/rich"
)

func para(t rich.ParagraphType, spans ...*rich.Span) *rich.Paragraph {
	p := &rich.Paragraph{Type: t}
	p.Append(spans...)
	return p
}

func plain(s string) *rich.Paragraph {
	if s == "" {
		return para(rich.Default{})
	}
	return para(rich.Default{}, &rich.Span{Text: s})
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		ps   []*rich.Paragraph
		want string
	}{
		{
			name: "bold",
			ps:   []*rich.Paragraph{para(rich.Default{}, rich.NewSpan("Hello World!", rich.Bold))},
			want: "**Hello World!**",
		},
		{
			name: "nested emphasis",
			ps: []*rich.Paragraph{para(rich.Default{},
				rich.NewSpan("Hello ", rich.Bold, rich.NewSpan("World!", rich.Italic)))},
			want: "**Hello *World!***",
		},
		{
			name: "space moves outside",
			ps: []*rich.Paragraph{para(rich.Default{},
				rich.NewSpan("Hello ", rich.Bold), rich.NewSpan("World", rich.Style{}))},
			want: "**Hello** World",
		},
		{
			name: "siblings share a wrapper",
			ps: []*rich.Paragraph{para(rich.Default{},
				rich.NewSpan("ab", rich.Italic), rich.NewSpan("cd", rich.Italic))},
			want: "*abcd*",
		},
		{
			name: "empty paragraphs between",
			ps:   []*rich.Paragraph{plain("Hello"), plain(""), plain(""), plain(""), plain("World!")},
			want: "Hello\n\n<br>\n<br>\nWorld!",
		},
		{
			name: "one empty paragraph between",
			ps:   []*rich.Paragraph{plain("Hello"), plain(""), plain("World")},
			want: "Hello\n\nWorld",
		},
		{
			name: "empty paragraphs at the ends",
			ps:   []*rich.Paragraph{plain(""), plain("Hello"), plain(""), plain("")},
			want: "<br>\nHello\n<br>\n<br>",
		},
		{
			name: "only empty paragraphs",
			ps:   []*rich.Paragraph{plain(""), plain("")},
			want: "<br>\n<br>",
		},
		{
			name: "single empty paragraph",
			ps:   []*rich.Paragraph{plain("")},
			want: "",
		},
		{
			name: "lists",
			ps: []*rich.Paragraph{
				para(rich.UnorderedList{Level: 1}, &rich.Span{Text: "a"}),
				para(rich.UnorderedList{Level: 2}, &rich.Span{Text: "b"}),
				para(rich.OrderedList{Number: 1, Level: 1}, &rich.Span{Text: "c"}),
			},
			want: "- a\n    - b\n1. c",
		},
		{
			name: "deep item after a paragraph",
			ps: []*rich.Paragraph{
				plain("x"),
				para(rich.UnorderedList{Level: 3}, &rich.Span{Text: "a"}),
			},
			want: "x\n- a",
		},
		{
			name: "escapes",
			ps:   []*rich.Paragraph{plain("a*b_[c] <d> & $e #f")},
			want: `a\*b\_\[c\] \<d\> \& \$e \#f`,
		},
		{
			name: "edge spaces",
			ps:   []*rich.Paragraph{plain("  x\t")},
			want: "&#32;&#32;x&#9;",
		},
		{
			name: "line starts",
			ps:   []*rich.Paragraph{plain("- no"), plain("12. no"), plain("=")},
			want: "\\- no\n12\\. no\n\\=",
		},
		{
			name: "code with backticks",
			ps:   []*rich.Paragraph{para(rich.Default{}, &rich.Span{Text: "a`b", Kind: rich.Code{}})},
			want: "``a`b``",
		},
		{
			name: "code with edge backtick",
			ps:   []*rich.Paragraph{para(rich.Default{}, &rich.Span{Text: "`x", Kind: rich.Code{}})},
			want: "`` `x ``",
		},
		{
			name: "link",
			ps: []*rich.Paragraph{para(rich.Default{},
				&rich.Span{Text: "docs ", Kind: rich.Link{URL: "http://d.org"}},
				&rich.Span{Text: "now"})},
			want: "[docs](http://d.org) now",
		},
		{
			name: "link with spaces in the url",
			ps:   []*rich.Paragraph{para(rich.Default{}, &rich.Span{Text: "f", Kind: rich.Link{URL: "my file.md"}})},
			want: "[f](<my file.md>)",
		},
		{
			name: "link after a bang",
			ps: []*rich.Paragraph{para(rich.Default{},
				&rich.Span{Text: "Hi!"},
				&rich.Span{Text: "x", Kind: rich.Link{URL: "u"}})},
			want: `Hi\![x](u)`,
		},
		{
			name: "image",
			ps: []*rich.Paragraph{para(rich.Default{},
				&rich.Span{Text: rich.ObjectReplacement, Kind: rich.Image{URL: "cat.png", Alt: "a cat", Title: "Cat"}})},
			want: `![a cat](cat.png "Cat")`,
		},
		{
			name: "heading",
			ps:   []*rich.Paragraph{para(rich.Default{}, rich.NewSpan("Sub", rich.HeadingStyle(2)))},
			want: "## Sub",
		},
		{
			name: "underline and strikethrough",
			ps: []*rich.Paragraph{para(rich.Default{},
				rich.NewSpan("u", rich.Underline), rich.NewSpan(" ", rich.Style{}), rich.NewSpan("s", rich.Strikethrough))},
			want: "<u>u</u> ~~s~~",
		},
		{
			name: "one space",
			ps:   []*rich.Paragraph{plain("a"), para(rich.OneSpace{}, &rich.Span{Text: "b"})},
			want: "a\n&#32;b",
		},
		{
			name: "punctuation inside bold",
			ps: []*rich.Paragraph{para(rich.Default{},
				&rich.Span{Text: "a"}, rich.NewSpan(".", rich.Bold), &rich.Span{Text: "b"})},
			want: "a<b>.</b>b",
		},
		{
			name: "italic opens before punctuation",
			ps: []*rich.Paragraph{para(rich.Default{},
				&rich.Span{Text: "foo"}, rich.NewSpan("(bar)", rich.Italic))},
			want: "foo<i>(bar)</i>",
		},
		{
			name: "strikethrough closes after punctuation",
			ps: []*rich.Paragraph{para(rich.Default{},
				rich.NewSpan("x!", rich.Strikethrough), &rich.Span{Text: "y"})},
			want: "<s>x!</s>y",
		},
		{
			name: "inside a word",
			ps: []*rich.Paragraph{para(rich.Default{},
				&rich.Span{Text: "a"}, rich.NewSpan("b", rich.Bold), &rich.Span{Text: "c"})},
			want: "a<b>b</b>c",
		},
		{
			name: "punctuation between words",
			ps: []*rich.Paragraph{para(rich.Default{},
				&rich.Span{Text: "say "}, rich.NewSpan("(hi)", rich.Bold), &rich.Span{Text: " now"})},
			want: "say **(hi)** now",
		},
		{
			name: "explicit off",
			ps: []*rich.Paragraph{para(rich.Default{},
				rich.NewSpan("a", rich.Bold, rich.NewSpan("b", rich.Style{Bold: rich.Off})))},
			want: "<b>a</b>b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.ps); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ps   []*rich.Paragraph
	}{
		{
			name: "styles",
			ps: []*rich.Paragraph{para(rich.Default{},
				rich.NewSpan("Hello ", rich.Bold, rich.NewSpan("World!", rich.Italic)),
				rich.NewSpan(" and ", rich.Style{}),
				rich.NewSpan("gone", rich.Strikethrough),
				rich.NewSpan(" ", rich.Style{}),
				rich.NewSpan("under", rich.Underline))},
		},
		{
			name: "empty paragraphs",
			ps:   []*rich.Paragraph{plain(""), plain("a"), plain(""), plain(""), plain("b"), plain(""), plain("c"), plain("")},
		},
		{
			name: "lists",
			ps: []*rich.Paragraph{
				plain("intro"),
				para(rich.UnorderedList{Level: 1}, &rich.Span{Text: "a"}),
				para(rich.UnorderedList{Level: 2}, &rich.Span{Text: "b"}),
				para(rich.UnorderedList{Level: 1}, &rich.Span{Text: "c"}),
				plain(""),
				para(rich.OrderedList{Number: 1, Level: 1}, &rich.Span{Text: "one"}),
				para(rich.OrderedList{Number: 2, Level: 1}, &rich.Span{Text: "two"}),
				plain(""),
				plain(""),
				plain("after"),
			},
		},
		{
			name: "special characters",
			ps: []*rich.Paragraph{
				plain("1. $5 *x* <y> & #z [w] `v` ~u~ _t_ \\s"),
				plain("- dash"),
				plain("  indented  "),
				plain("$100$"),
				plain("http://example.com"),
			},
		},
		{
			name: "kinds",
			ps: []*rich.Paragraph{para(rich.Default{},
				&rich.Span{Text: "see "},
				&rich.Span{Text: "the docs", Kind: rich.Link{URL: "http://d.org/a b"}},
				&rich.Span{Text: ", run "},
				&rich.Span{Text: "go `test`", Kind: rich.Code{}},
				&rich.Span{Text: " or look: "},
				&rich.Span{Text: rich.ObjectReplacement, Kind: rich.Image{URL: "x.png", Alt: "[x]"}},
			)},
		},
		{
			name: "heading and one space",
			ps: []*rich.Paragraph{
				para(rich.Default{}, rich.NewSpan("Title #1", rich.HeadingStyle(1))),
				para(rich.OneSpace{}),
				para(rich.OneSpace{}, &rich.Span{Text: "x"}),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := rich.FromParagraphs(tt.ps).Text()
			src := Encode(tt.ps)
			if got := rich.FromParagraphs(Decode(src)).Text(); got != want {
				t.Errorf("Decode(%q) text = %q, want %q", src, got, want)
			}
		})
	}
}

// randomRange returns a range of up to four runes inside [0, n].
func randomRange(r *rand.Rand, n int) rich.TextRange {
	start := r.IntN(n + 1)
	return rich.TextRange{Start: start, End: min(n, start+1+r.IntN(4))}
}

func TestRoundTripEdits(t *testing.T) {
	const alphabet = "ab .,!?()-:'*_~[]"
	styles := []rich.Style{rich.Bold, rich.Italic, rich.Strikethrough, rich.Underline}
	for seed := range uint64(500) {
		r := rand.New(rand.NewPCG(seed, 7))
		d := rich.NewDocument()
		for range 16 {
			n := d.Len()
			switch r.IntN(5) {
			case 0, 1:
				var b strings.Builder
				for range 1 + r.IntN(4) {
					b.WriteByte(alphabet[r.IntN(len(alphabet))])
				}
				d.InsertText(r.IntN(n+1), b.String())
			case 2, 3:
				d.AddStyle(styles[r.IntN(len(styles))], randomRange(r, n))
			case 4:
				d.AddLink("http://x.org", randomRange(r, n))
			}
		}
		src := EncodeDocument(d)
		if got := DecodeDocument(src).Text(); got != d.Text() {
			t.Errorf("seed %d: Decode(%q) text = %q, want %q", seed, src, got, d.Text())
		}
	}
}
