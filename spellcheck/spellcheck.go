// Package spellcheck scans document snapshots for misspelled words in
// the background and applies the results back to the document.
//
// A Scanner only reads a rich.Snapshot, so it may run on any goroutine.
// Apply must run on the goroutine that owns the document; it refuses a
// Report taken from text that has since changed.
package spellcheck

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rjkroege/richtext/rich"
)

// ErrStale is returned by Apply when the document changed after the
// snapshot a Report was built from.
var ErrStale = errors.New("spellcheck: document changed since scan")

// Checker is the spelling capability. Suggest reports whether word is
// spelled correctly and, when it is not, the ranked replacements, which
// may be none.
type Checker interface {
	Suggest(ctx context.Context, word string) (suggestions []string, ok bool, err error)
}

// Misspelling is a misspelled word of the scanned text.
type Misspelling struct {
	Word        string
	Range       rich.TextRange
	Suggestions []string
}

// Report is the outcome of scanning one snapshot.
type Report struct {
	Fingerprint uint64
	Misspelled  []Misspelling
}

// verdict is the cached answer for one word.
type verdict struct {
	ok          bool
	suggestions []string
}

// Default configuration values.
const (
	DefaultConcurrency = 4
	DefaultCacheTTL    = 10 * time.Minute
)

// Scanner checks every word of a snapshot with a Checker, a bounded
// number at a time, remembering verdicts per word across scans.
type Scanner struct {
	checker     Checker
	concurrency int
	ttl         time.Duration
	log         *zap.Logger
	cache       *cache.Cache
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithConcurrency is an Option that sets how many words are checked at
// once. Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n >= 1 {
			s.concurrency = n
		}
	}
}

// WithCacheTTL is an Option that sets how long a verdict is remembered.
func WithCacheTTL(d time.Duration) Option {
	return func(s *Scanner) {
		s.ttl = d
	}
}

// WithLogger is an Option that sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.log = l
		}
	}
}

// NewScanner returns a Scanner asking c.
func NewScanner(c Checker, opts ...Option) *Scanner {
	s := &Scanner{
		checker:     c,
		concurrency: DefaultConcurrency,
		ttl:         DefaultCacheTTL,
		log:         zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.cache = cache.New(s.ttl, 2*s.ttl)
	return s
}

// Scan checks the words of snap. Each distinct word is asked about once;
// words with a remembered verdict are not asked at all. The first
// Checker error cancels the scan and is returned.
func (s *Scanner) Scan(ctx context.Context, snap rich.Snapshot) (Report, error) {
	var (
		mu       sync.Mutex
		verdicts = make(map[string]verdict)
		asked    = make(map[string]bool)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, w := range snap.Words {
		if asked[w.Text] {
			continue
		}
		asked[w.Text] = true
		if v, ok := s.cache.Get(w.Text); ok {
			mu.Lock()
			verdicts[w.Text] = v.(verdict)
			mu.Unlock()
			continue
		}
		word := w.Text
		g.Go(func() error {
			suggestions, ok, err := s.checker.Suggest(gctx, word)
			if err != nil {
				return fmt.Errorf("check %q: %w", word, err)
			}
			v := verdict{ok: ok, suggestions: suggestions}
			s.cache.SetDefault(word, v)
			mu.Lock()
			verdicts[word] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("spellcheck: %w", err)
	}

	r := Report{Fingerprint: snap.Fingerprint}
	for _, w := range snap.Words {
		if v := verdicts[w.Text]; !v.ok {
			r.Misspelled = append(r.Misspelled, Misspelling{Word: w.Text, Range: w.Range, Suggestions: v.suggestions})
		}
	}
	s.log.Debug("scanned",
		zap.Uint64("fingerprint", snap.Fingerprint),
		zap.Int("words", len(snap.Words)),
		zap.Int("distinct", len(asked)),
		zap.Int("misspelled", len(r.Misspelled)))
	return r, nil
}

// Forget drops every remembered verdict, for use after the Checker's
// dictionary changes.
func (s *Scanner) Forget() {
	s.cache.Flush()
}

// Apply replaces the Misspelled markers of doc with those of r. It
// returns ErrStale, leaving doc untouched, when doc no longer holds the
// text r was built from.
func Apply(doc *rich.Document, r Report) error {
	if doc.Fingerprint() != r.Fingerprint {
		return ErrStale
	}
	if doc.Len() == 0 {
		return nil
	}
	doc.RemoveStyle(rich.Misspelled, rich.TextRange{Start: 0, End: doc.Len()})
	for _, m := range r.Misspelled {
		doc.AddStyle(rich.Misspelled, m.Range)
	}
	return nil
}
