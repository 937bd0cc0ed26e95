package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"9fans.net/go/acme"
	"go.uber.org/zap"

	"github.com/rjkroege/richtext/markdown"
	"github.com/rjkroege/richtext/rich"
	"github.com/rjkroege/richtext/spellcheck"
)

// tag lists the commands the editor adds to its window.
const tag = " Put Bold Italic Underline Strike Code Link Unlink Bullet Number Indent Outdent Spell"

// surface is the part of an Acme window the editor drives.
type surface interface {
	ReadAll(file string) ([]byte, error)
	Addr(format string, args ...interface{}) error
	Ctl(format string, args ...interface{}) error
	ReadAddr() (q0, q1 int, err error)
	Write(file string, b []byte) (int, error)
	WriteEvent(e *acme.Event) error
}

// editor keeps a document in step with the plain text of an Acme window.
// All document access happens on the goroutine running the event loop.
type editor struct {
	doc     *rich.Document
	win     surface
	path    string
	log     *zap.Logger
	scanner *spellcheck.Scanner
	reports chan spellResult
	notes   io.Writer
	plumb   func(url string) error
}

type spellResult struct {
	report spellcheck.Report
	err    error
}

func newEditor(doc *rich.Document, win surface, path string, log *zap.Logger) *editor {
	return &editor{
		doc:     doc,
		win:     win,
		path:    path,
		log:     log,
		reports: make(chan spellResult, 1),
		notes:   io.Discard,
		plumb:   func(string) error { return errors.New("plumber not running") },
	}
}

// load fills the window body with the document text.
func (ed *editor) load() error {
	if err := ed.win.Addr(","); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if _, err := ed.win.Write("data", []byte(ed.doc.Text())); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	return ed.win.Ctl("clean")
}

// loop handles events until the window goes away or ctx is done.
func (ed *editor) loop(ctx context.Context, events <-chan *acme.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if err := ed.handle(ctx, e); err != nil {
				ed.log.Warn("event failed", zap.Error(err), zap.String("event", describe(e)))
			}
		case r := <-ed.reports:
			ed.applySpelling(r)
		}
	}
}

func describe(e *acme.Event) string {
	return fmt.Sprintf("%c%c #%d,#%d %q", e.C1, e.C2, e.Q0, e.Q1, e.Text)
}

// handle dispatches one window event.
func (ed *editor) handle(ctx context.Context, e *acme.Event) error {
	ed.log.Debug("event", zap.String("event", describe(e)))
	switch e.C2 {
	case 'I', 'D':
		if e.C1 == 'E' || e.C1 == 'F' {
			// Our own writes to the body.
			return nil
		}
		return ed.edited(e)
	case 'x', 'X':
		return ed.execute(ctx, e)
	case 'L':
		if url, ok := ed.doc.LinkAt(e.Q0); ok {
			err := ed.plumb(url)
			if err == nil {
				return nil
			}
			ed.log.Debug("plumb failed", zap.String("url", url), zap.Error(err))
		}
	}
	return ed.win.WriteEvent(e)
}

// translate applies a body insertion or deletion event to text. It
// returns the new text and the cursor the edit left, or false when the
// event does not carry the inserted text.
func translate(text string, e *acme.Event) (string, rich.TextRange, bool) {
	old := []rune(text)
	q0, q1 := e.Q0, e.Q1
	if q0 < 0 || q1 < q0 || q0 > len(old) {
		return "", rich.TextRange{}, false
	}
	switch e.C2 {
	case 'I':
		ins := []rune(string(e.Text))
		if len(ins) != q1-q0 {
			return "", rich.TextRange{}, false
		}
		return string(old[:q0]) + string(ins) + string(old[q0:]), rich.Collapsed(q1), true
	case 'D':
		if q1 > len(old) {
			return "", rich.TextRange{}, false
		}
		return string(old[:q0]) + string(old[q1:]), rich.Collapsed(q0), true
	}
	return "", rich.TextRange{}, false
}

// edited brings the document up to date with a body edit and rewrites
// the body when the document changed marker text in response.
func (ed *editor) edited(e *acme.Event) error {
	text, sel, ok := translate(ed.doc.Text(), e)
	if !ok {
		body, err := ed.win.ReadAll("body")
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		text = string(body)
		sel = rich.Collapsed(e.Q0)
		if e.C2 == 'I' {
			sel = rich.Collapsed(e.Q1)
		}
	}
	got, gotSel := ed.doc.Reconcile(text, sel)
	if got == text {
		return nil
	}
	return ed.redraw(gotSel)
}

// redraw replaces the body with the document text and selects sel.
func (ed *editor) redraw(sel rich.TextRange) error {
	if err := ed.win.Addr(","); err != nil {
		return fmt.Errorf("redraw: %w", err)
	}
	if _, err := ed.win.Write("data", []byte(ed.doc.Text())); err != nil {
		return fmt.Errorf("redraw: %w", err)
	}
	if err := ed.win.Addr("#%d,#%d", sel.Start, sel.End); err != nil {
		return fmt.Errorf("redraw: %w", err)
	}
	return ed.win.Ctl("dot=addr")
}

// selection reads the window's dot into the document.
func (ed *editor) selection() (rich.TextRange, error) {
	if err := ed.win.Ctl("addr=dot"); err != nil {
		return rich.TextRange{}, fmt.Errorf("selection: %w", err)
	}
	q0, q1, err := ed.win.ReadAddr()
	if err != nil {
		return rich.TextRange{}, fmt.Errorf("selection: %w", err)
	}
	r := rich.TextRange{Start: q0, End: q1}
	ed.doc.SetSelection(r)
	return ed.doc.Selection(), nil
}

var styleCommands = map[string]rich.Style{
	"Bold":      rich.Bold,
	"Italic":    rich.Italic,
	"Underline": rich.Underline,
	"Strike":    rich.Strikethrough,
}

// execute runs an editor command, handing anything else back to Acme.
func (ed *editor) execute(ctx context.Context, e *acme.Event) error {
	fields := strings.Fields(string(e.Text))
	if len(fields) == 0 {
		return ed.win.WriteEvent(e)
	}
	cmd := fields[0]
	arg := strings.TrimSpace(string(e.Arg))
	if arg == "" && len(fields) > 1 {
		arg = fields[1]
	}

	if st, ok := styleCommands[cmd]; ok {
		sel, err := ed.selection()
		if err != nil {
			return err
		}
		ed.doc.ToggleStyle(st, sel)
		return nil
	}
	switch cmd {
	case "Put":
		return ed.put()
	case "Get":
		return ed.get()
	case "Spell":
		ed.spell(ctx)
		return nil
	}

	sel, err := ed.selection()
	if err != nil {
		return err
	}
	before := ed.doc.Text()
	switch cmd {
	case "Code":
		ed.doc.AddCode(sel)
	case "Link":
		if arg == "" {
			return errors.New("link: missing URL argument")
		}
		ed.doc.AddLink(arg, sel)
	case "Unlink":
		ed.doc.RemoveLink(sel)
	case "Bullet":
		ed.doc.ToggleList(sel, rich.UnorderedList{Level: 1})
	case "Number":
		ed.doc.ToggleList(sel, rich.OrderedList{Number: 1, Level: 1})
	case "Indent":
		ed.doc.Indent(sel)
	case "Outdent":
		ed.doc.Outdent(sel)
	default:
		return ed.win.WriteEvent(e)
	}
	if ed.doc.Text() != before {
		return ed.redraw(ed.doc.Selection())
	}
	return nil
}

// get rereads the file and replaces the document.
func (ed *editor) get() error {
	src, err := os.ReadFile(ed.path)
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	ed.doc.SetParagraphs(markdown.Decode(string(src), markdown.WithLogger(ed.log)))
	return ed.load()
}

// put writes the document back to its file as Markdown.
func (ed *editor) put() error {
	if err := os.WriteFile(ed.path, []byte(markdown.EncodeDocument(ed.doc)+"\n"), 0o644); err != nil {
		return fmt.Errorf("put: %w", err)
	}
	ed.log.Debug("put", zap.String("path", ed.path), zap.Uint64("fingerprint", ed.doc.Fingerprint()))
	return ed.win.Ctl("clean")
}

// spell scans a snapshot of the document in the background. The result
// arrives on ed.reports for the event loop to apply.
func (ed *editor) spell(ctx context.Context) {
	if ed.scanner == nil {
		fmt.Fprintln(ed.notes, "Spell: no word list; run with -dict")
		return
	}
	snap := ed.doc.Snapshot()
	go func() {
		r, err := ed.scanner.Scan(ctx, snap)
		ed.reports <- spellResult{report: r, err: err}
	}()
}

func (ed *editor) applySpelling(r spellResult) {
	if r.err != nil {
		fmt.Fprintf(ed.notes, "Spell: %v\n", r.err)
		return
	}
	if err := spellcheck.Apply(ed.doc, r.report); err != nil {
		fmt.Fprintf(ed.notes, "Spell: %v; run Spell again\n", err)
		return
	}
	for _, m := range r.report.Misspelled {
		fmt.Fprintf(ed.notes, "%s:#%d,#%d %s: %s\n", ed.path, m.Range.Start, m.Range.End, m.Word, strings.Join(m.Suggestions, " "))
	}
}
