package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/rjkroege/richtext/markdown"
	"github.com/rjkroege/richtext/rich"
	"github.com/rjkroege/richtext/richhtml"
	"github.com/rjkroege/richtext/spellcheck"
)

var errUsage = errors.New("usage: richmd [-d] [-from md|html] [-to md|html|text|runs|words] [-dict words] [file]")

type options struct {
	debug bool
	from  string
	to    string
	dict  string
	file  string
}

func parseFlags(args []string) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("richmd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&o.debug, "d", false, "set for verbose debugging")
	fs.StringVar(&o.from, "from", "", "input format: md or html (default from the file extension, else md)")
	fs.StringVar(&o.to, "to", "md", "output format: md, html, text, runs or words")
	fs.StringVar(&o.dict, "dict", "", "word list file used to mark misspellings")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	switch fs.NArg() {
	case 0:
	case 1:
		o.file = fs.Arg(0)
	default:
		return nil, errUsage
	}
	if o.from == "" {
		o.from = "md"
		switch strings.ToLower(filepath.Ext(o.file)) {
		case ".html", ".htm":
			o.from = "html"
		}
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	log, err := newLogger(o.debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	in := stdin
	if o.file != "" {
		f, err := os.Open(o.file)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	doc, err := load(in, o.from, log)
	if err != nil {
		return err
	}
	log.Debug("loaded",
		zap.String("from", o.from),
		zap.Int("paragraphs", len(doc.Paragraphs())),
		zap.Uint64("fingerprint", doc.Fingerprint()))

	if o.dict != "" {
		if err := markMisspellings(ctx, doc, o.dict, log); err != nil {
			return err
		}
	}
	return write(stdout, doc, o.to)
}

func load(r io.Reader, format string, log *zap.Logger) (*rich.Document, error) {
	switch format {
	case "md", "markdown":
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read markdown: %w", err)
		}
		return markdown.DecodeDocument(string(src), markdown.WithLogger(log)), nil
	case "html":
		ps, err := richhtml.Decode(r, richhtml.WithLogger(log))
		if err != nil {
			return nil, err
		}
		return rich.FromParagraphs(ps, rich.WithLogger(log)), nil
	}
	return nil, fmt.Errorf("unknown input format %q", format)
}

func markMisspellings(ctx context.Context, doc *rich.Document, dict string, log *zap.Logger) error {
	f, err := os.Open(dict)
	if err != nil {
		return err
	}
	defer f.Close()
	words, err := spellcheck.ReadWordList(f)
	if err != nil {
		return err
	}
	report, err := spellcheck.NewScanner(words, spellcheck.WithLogger(log)).Scan(ctx, doc.Snapshot())
	if err != nil {
		return err
	}
	return spellcheck.Apply(doc, report)
}

func write(w io.Writer, doc *rich.Document, format string) error {
	var err error
	switch format {
	case "md", "markdown":
		_, err = fmt.Fprintln(w, markdown.EncodeDocument(doc))
	case "html":
		if err = richhtml.Render(w, doc.Paragraphs()); err == nil {
			_, err = fmt.Fprintln(w)
		}
	case "text":
		_, err = fmt.Fprintln(w, doc.Text())
	case "runs":
		text := []rune(doc.Text())
		for _, r := range doc.Runs() {
			if _, err = fmt.Fprintf(w, "%v\t%s\t%s\t%q\n", r.Range, rich.KindName(r.Kind), r.Style, string(text[r.Range.Start:r.Range.End])); err != nil {
				break
			}
		}
	case "words":
		for seg := range doc.Words() {
			if _, err = fmt.Fprintf(w, "%v\t%s\n", seg.Range, seg.Text); err != nil {
				break
			}
		}
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}
