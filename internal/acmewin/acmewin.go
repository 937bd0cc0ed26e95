// Package acmewin finds or creates Acme/Edwood windows and writes to them.
package acmewin

import (
	"errors"
	"fmt"
	"io"

	"9fans.net/go/acme"
	"go.uber.org/zap"
)

// Option customizes a window returned by Open. created reports whether
// Open made the window.
type Option func(w *acme.Win, created bool) error

// AddToTag returns an Option that appends s to the tag of a new window.
func AddToTag(s string) Option {
	return func(w *acme.Win, created bool) error {
		if created {
			return w.Fprintf("tag", "%s", s)
		}
		return nil
	}
}

// Scratch returns an Option that stops a new window from recording undo
// marks, for windows that only collect output.
func Scratch() Option {
	return func(w *acme.Win, created bool) error {
		if created {
			return w.Ctl("nomark")
		}
		return nil
	}
}

// Open returns the window named name, creating an empty one when none
// exists, then applies opts. The window is returned along with the
// joined option errors.
func Open(log *zap.Logger, name string, opts ...Option) (*acme.Win, error) {
	wins, err := acme.Windows()
	if err != nil {
		return nil, fmt.Errorf("acmewin: list windows: %w", err)
	}

	var win *acme.Win
	for _, wi := range wins {
		if wi.Name == name {
			log.Debug("reusing window", zap.String("name", name), zap.Int("id", wi.ID))
			if win, err = acme.Open(wi.ID, nil); err != nil {
				return nil, fmt.Errorf("acmewin: open %d: %w", wi.ID, err)
			}
			break
		}
	}

	created := false
	if win == nil {
		log.Debug("making a new window", zap.String("name", name))
		created = true
		if win, err = acme.New(); err != nil {
			return nil, fmt.Errorf("acmewin: new: %w", err)
		}
		if err := win.Name("%s", name); err != nil {
			return nil, fmt.Errorf("acmewin: name %q: %w", name, err)
		}
	}

	var errs []error
	for _, opt := range opts {
		errs = append(errs, opt(win, created))
	}
	return win, errors.Join(errs...)
}

// Writer writes to one file of a window, such as "body".
type Writer struct {
	file string
	win  *acme.Win
}

// NewWriter returns a Writer appending to file of win.
func NewWriter(win *acme.Win, file string) *Writer {
	return &Writer{file: file, win: win}
}

func (w *Writer) Write(p []byte) (int, error) {
	return w.win.Write(w.file, p)
}

var _ io.Writer = (*Writer)(nil)
