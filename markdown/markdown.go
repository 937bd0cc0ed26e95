// Package markdown converts between rich paragraphs and Markdown text.
//
// Decode never fails: anything it does not understand is kept as literal
// text. Encode produces Markdown that decodes back to the same flat text.
package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
	"go.uber.org/zap"

	"github.com/rjkroege/richtext/rich"
)

// Option configures Decode and DecodeDocument.
type Option func(*config)

type config struct {
	log     *zap.Logger
	correct bool
	doc     []rich.Option
}

func newConfig(opts []Option) config {
	c := config{log: zap.NewNop(), correct: true}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// WithLogger is an Option that sets the logger used to report markdown
// that decodes to literal text. DecodeDocument hands it to the document
// too. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithoutCorrection is an Option that skips the Correct pass.
func WithoutCorrection() Option {
	return func(c *config) {
		c.correct = false
	}
}

// WithDocumentOptions is an Option that configures the document built by
// DecodeDocument. Decode ignores it.
func WithDocumentOptions(opts ...rich.Option) Option {
	return func(c *config) {
		c.doc = append(c.doc, opts...)
	}
}

var md = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
	goldmark.WithParserOptions(
		parser.WithInlineParsers(util.Prioritized(mathParser{}, 500)),
	),
)

// Decode parses src into paragraphs.
func Decode(src string, opts ...Option) []*rich.Paragraph {
	return decode(src, newConfig(opts))
}

// DecodeDocument parses src into a new document.
func DecodeDocument(src string, opts ...Option) *rich.Document {
	c := newConfig(opts)
	docOpts := append([]rich.Option{rich.WithLogger(c.log)}, c.doc...)
	return rich.FromParagraphs(decode(src, c), docOpts...)
}

func decode(src string, c config) []*rich.Paragraph {
	if c.correct {
		src = Correct(src)
	}
	d := &decoder{log: c.log}
	d.decode([]byte(src))
	for _, p := range d.paras {
		p.RemoveEmptyChildren()
	}
	return d.paras
}
