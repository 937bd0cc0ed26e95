package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"9fans.net/go/acme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rjkroege/richtext/markdown"
	"github.com/rjkroege/richtext/rich"
	"github.com/rjkroege/richtext/spellcheck"
)

// fakeWin is an in-memory window body with an address and a dot.
type fakeWin struct {
	body     []rune
	addr     [2]int
	dot      [2]int
	clean    bool
	returned []*acme.Event
}

func (w *fakeWin) ReadAll(file string) ([]byte, error) {
	if file != "body" {
		return nil, fmt.Errorf("no file %q", file)
	}
	return []byte(string(w.body)), nil
}

func (w *fakeWin) Addr(format string, args ...interface{}) error {
	a := fmt.Sprintf(format, args...)
	if a == "," {
		w.addr = [2]int{0, len(w.body)}
		return nil
	}
	_, err := fmt.Sscanf(a, "#%d,#%d", &w.addr[0], &w.addr[1])
	return err
}

func (w *fakeWin) Ctl(format string, args ...interface{}) error {
	switch c := fmt.Sprintf(format, args...); c {
	case "addr=dot":
		w.addr = w.dot
	case "dot=addr":
		w.dot = w.addr
	case "clean":
		w.clean = true
	default:
		return fmt.Errorf("unknown ctl %q", c)
	}
	return nil
}

func (w *fakeWin) ReadAddr() (int, int, error) {
	return w.addr[0], w.addr[1], nil
}

func (w *fakeWin) Write(file string, b []byte) (int, error) {
	if file != "data" {
		return 0, fmt.Errorf("no file %q", file)
	}
	ins := []rune(string(b))
	body := append([]rune{}, w.body[:w.addr[0]]...)
	body = append(body, ins...)
	w.body = append(body, w.body[w.addr[1]:]...)
	w.addr = [2]int{w.addr[0], w.addr[0] + len(ins)}
	return len(b), nil
}

func (w *fakeWin) WriteEvent(e *acme.Event) error {
	w.returned = append(w.returned, e)
	return nil
}

// typed inserts s at q0 as the keyboard would and returns the event.
func (w *fakeWin) typed(q0 int, s string) *acme.Event {
	ins := []rune(s)
	w.body = append(w.body[:q0], append(ins, w.body[q0:]...)...)
	w.clean = false
	w.dot = [2]int{q0 + len(ins), q0 + len(ins)}
	return &acme.Event{C1: 'K', C2: 'I', Q0: q0, Q1: q0 + len(ins), Nr: len(ins), Text: []byte(s)}
}

// deleted removes [q0, q1) as the keyboard would and returns the event.
func (w *fakeWin) deleted(q0, q1 int) *acme.Event {
	w.body = append(w.body[:q0], w.body[q1:]...)
	w.dot = [2]int{q0, q0}
	return &acme.Event{C1: 'K', C2: 'D', Q0: q0, Q1: q1}
}

func exec(cmd, arg string) *acme.Event {
	return &acme.Event{C1: 'M', C2: 'x', Text: []byte(cmd), Arg: []byte(arg)}
}

func newTestEditor(t *testing.T, src string) (*editor, *fakeWin) {
	t.Helper()
	w := &fakeWin{}
	path := filepath.Join(t.TempDir(), "doc.md")
	ed := newEditor(markdown.DecodeDocument(src), w, path, zap.NewNop())
	require.NoError(t, ed.load())
	return ed, w
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		e       *acme.Event
		want    string
		wantSel rich.TextRange
		ok      bool
	}{
		{"insert", "Hello", &acme.Event{C2: 'I', Q0: 5, Q1: 11, Text: []byte(" World")}, "Hello World", rich.Collapsed(11), true},
		{"insert multibyte", "añb", &acme.Event{C2: 'I', Q0: 2, Q1: 3, Text: []byte("ü")}, "añüb", rich.Collapsed(3), true},
		{"delete", "Hello", &acme.Event{C2: 'D', Q0: 1, Q1: 2}, "Hllo", rich.Collapsed(1), true},
		{"text not carried", "Hello", &acme.Event{C2: 'I', Q0: 0, Q1: 300}, "", rich.TextRange{}, false},
		{"out of range", "Hi", &acme.Event{C2: 'D', Q0: 1, Q1: 9}, "", rich.TextRange{}, false},
		{"not an edit", "Hi", &acme.Event{C2: 'x', Q0: 0, Q1: 1}, "", rich.TextRange{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, sel, ok := translate(tt.text, tt.e)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSel, sel)
		})
	}
}

func TestEditorLoad(t *testing.T) {
	_, w := newTestEditor(t, "1. a\n2. b")
	assert.Equal(t, "1. a\n2. b", string(w.body))
	assert.True(t, w.clean)
}

func TestEditorTyping(t *testing.T) {
	ed, w := newTestEditor(t, "**Hello**")
	ctx := context.Background()

	require.NoError(t, ed.handle(ctx, w.typed(5, " World")))
	assert.Equal(t, "Hello World", ed.doc.Text())
	assert.Equal(t, "**Hello World**", markdown.EncodeDocument(ed.doc))

	require.NoError(t, ed.handle(ctx, w.deleted(0, 6)))
	assert.Equal(t, "World", ed.doc.Text())
	assert.Equal(t, string(w.body), ed.doc.Text())
}

func TestEditorEnterInList(t *testing.T) {
	ed, w := newTestEditor(t, "1. a")

	require.NoError(t, ed.handle(context.Background(), w.typed(4, "\n")))
	assert.Equal(t, "1. a\n2. ", ed.doc.Text())
	assert.Equal(t, "1. a\n2. ", string(w.body), "marker written back")
	assert.Equal(t, [2]int{8, 8}, w.dot)
}

func TestEditorLongInsert(t *testing.T) {
	ed, w := newTestEditor(t, "ab")
	long := strings.Repeat("x", 300)
	e := w.typed(1, long)
	e.Nr, e.Text = 0, nil

	require.NoError(t, ed.handle(context.Background(), e))
	assert.Equal(t, "a"+long+"b", ed.doc.Text())
}

func TestEditorIgnoresOwnWrites(t *testing.T) {
	ed, _ := newTestEditor(t, "abc")
	require.NoError(t, ed.handle(context.Background(), &acme.Event{C1: 'F', C2: 'I', Q0: 0, Q1: 3, Nr: 3, Text: []byte("abc")}))
	assert.Equal(t, "abc", ed.doc.Text())
}

func TestEditorCommands(t *testing.T) {
	ed, w := newTestEditor(t, "hello world")
	ctx := context.Background()

	w.dot = [2]int{0, 5}
	require.NoError(t, ed.handle(ctx, exec("Bold", "")))
	assert.True(t, ed.doc.StyleAt(0).Has(rich.Bold))

	w.dot = [2]int{6, 11}
	require.NoError(t, ed.handle(ctx, exec("Link", "https://go.dev")))
	url, ok := ed.doc.LinkAt(7)
	require.True(t, ok)
	assert.Equal(t, "https://go.dev", url)

	require.Error(t, ed.handle(ctx, exec("Link", "")))

	require.NoError(t, ed.handle(ctx, exec("Put", "")))
	got, err := os.ReadFile(ed.path)
	require.NoError(t, err)
	assert.Equal(t, "**hello** [world](https://go.dev)\n", string(got))
	assert.True(t, w.clean)

	require.NoError(t, ed.handle(ctx, exec("Del", "")))
	require.Len(t, w.returned, 1)
	assert.Equal(t, "Del", string(w.returned[0].Text))
}

func TestEditorListCommands(t *testing.T) {
	ed, w := newTestEditor(t, "a")
	ctx := context.Background()

	require.NoError(t, ed.handle(ctx, exec("Bullet", "")))
	assert.Equal(t, "• a", string(w.body))

	require.NoError(t, ed.handle(ctx, exec("Indent", "")))
	assert.Equal(t, "◦ a", string(w.body))

	require.NoError(t, ed.handle(ctx, exec("Bullet", "")))
	assert.Equal(t, "a", string(w.body))
	assert.Equal(t, ed.doc.Text(), string(w.body))
}

func TestEditorGet(t *testing.T) {
	ed, w := newTestEditor(t, "old")
	require.NoError(t, os.WriteFile(ed.path, []byte("- new\n"), 0o644))

	require.NoError(t, ed.handle(context.Background(), exec("Get", "")))
	assert.Equal(t, "• new", string(w.body))
	assert.Equal(t, "• new", ed.doc.Text())
}

func TestEditorLook(t *testing.T) {
	ed, w := newTestEditor(t, "see [docs](https://go.dev/doc) here")
	var plumbed []string
	ed.plumb = func(url string) error {
		plumbed = append(plumbed, url)
		return nil
	}
	ctx := context.Background()

	require.NoError(t, ed.handle(ctx, &acme.Event{C1: 'M', C2: 'L', Q0: 5, Q1: 5}))
	assert.Equal(t, []string{"https://go.dev/doc"}, plumbed)
	assert.Empty(t, w.returned)

	require.NoError(t, ed.handle(ctx, &acme.Event{C1: 'M', C2: 'L', Q0: 0, Q1: 0}))
	assert.Len(t, plumbed, 1)
	assert.Len(t, w.returned, 1, "plain text looks go back to acme")
}

func TestEditorSpell(t *testing.T) {
	ed, w := newTestEditor(t, "hello wrold")
	var notes bytes.Buffer
	ed.notes = &notes
	ed.scanner = spellcheck.NewScanner(spellcheck.NewWordList("hello", "world"))
	ctx := context.Background()

	require.NoError(t, ed.handle(ctx, exec("Spell", "")))
	ed.applySpelling(<-ed.reports)
	assert.True(t, ed.doc.StyleAt(7).Has(rich.Misspelled))
	assert.False(t, ed.doc.StyleAt(1).Has(rich.Misspelled))
	assert.Contains(t, notes.String(), "#6,#11 wrold: world")

	notes.Reset()
	require.NoError(t, ed.handle(ctx, exec("Spell", "")))
	require.NoError(t, ed.handle(ctx, w.typed(0, "x")))
	ed.applySpelling(<-ed.reports)
	assert.Contains(t, notes.String(), spellcheck.ErrStale.Error())
}

func TestEditorSpellWithoutWords(t *testing.T) {
	ed, _ := newTestEditor(t, "hello")
	var notes bytes.Buffer
	ed.notes = &notes
	require.NoError(t, ed.handle(context.Background(), exec("Spell", "")))
	assert.Contains(t, notes.String(), "no word list")
}

func TestEditorLoop(t *testing.T) {
	ed, w := newTestEditor(t, "a")
	events := make(chan *acme.Event, 2)
	events <- w.typed(1, "b")
	close(events)
	require.NoError(t, ed.loop(context.Background(), events))
	assert.Equal(t, "ab", ed.doc.Text())
}
