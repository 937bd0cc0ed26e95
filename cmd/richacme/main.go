// Richacme edits a Markdown file as rich text in an Acme/Edwood window.
//
// The window body shows the flat text of the document, list markers
// included. Typing in the body edits the document; the commands in the
// tag restyle the selection, and Put writes the document back as
// Markdown. Looking at a link plumbs its target.
//
// Usage:
//
//	richacme [-d] [-dict words] [-log file] file.md
//
// Flag defaults may be set in $HOME/lib/richacme.env as RICHACME_DICT
// and RICHACME_LOG.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rjkroege/richtext/internal/acmewin"
	"github.com/rjkroege/richtext/markdown"
	"github.com/rjkroege/richtext/spellcheck"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: richacme [-d] [-dict words] [-log file] file.md\n")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	envErr := loadEnv()
	debug := flag.Bool("d", false, "set for verbose debugging")
	dict := flag.String("dict", os.Getenv(envDict), "word list file for the Spell command (default $"+envDict+")")
	logFile := flag.String("log", os.Getenv(envLog), "rotated JSON log file (default $"+envLog+")")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
	}

	log := newLogger(*debug, *logFile)
	defer log.Sync()
	if envErr != nil {
		log.Warn("ignoring richacme.env", zap.Error(envErr))
	}

	if err := run(context.Background(), log, flag.Arg(0), *dict); err != nil {
		log.Error("richacme failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "richacme: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *zap.Logger, file, dict string) error {
	path, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	var src []byte
	if src, err = os.ReadFile(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	doc := markdown.DecodeDocument(string(src), markdown.WithLogger(log))

	win, err := acmewin.Open(log, path, acmewin.AddToTag(tag))
	if err != nil {
		return err
	}
	defer win.CloseFiles()

	ed := newEditor(doc, win, path, log)
	if dict != "" {
		f, err := os.Open(dict)
		if err != nil {
			return err
		}
		words, err := spellcheck.ReadWordList(f)
		f.Close()
		if err != nil {
			return err
		}
		ed.scanner = spellcheck.NewScanner(words, spellcheck.WithLogger(log))
		log.Debug("word list loaded", zap.Int("words", words.Len()))
	}
	ed.notes = &outputWindow{log: log, name: filepath.Join(filepath.Dir(path), "+Spell")}
	if p, err := dialPlumber(path); err == nil {
		defer p.Close()
		ed.plumb = p.send
	} else {
		log.Debug("plumbing disabled", zap.Error(err))
	}

	if err := ed.load(); err != nil {
		return err
	}
	return ed.loop(ctx, win.EventChan())
}

// outputWindow opens its window on the first write.
type outputWindow struct {
	log  *zap.Logger
	name string
	w    io.Writer
}

func (o *outputWindow) Write(p []byte) (int, error) {
	if o.w == nil {
		win, err := acmewin.Open(o.log, o.name, acmewin.Scratch())
		if err != nil {
			return 0, err
		}
		o.w = acmewin.NewWriter(win, "body")
	}
	return o.w.Write(p)
}
