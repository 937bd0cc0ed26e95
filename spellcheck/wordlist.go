package spellcheck

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"
)

// maxSuggestions bounds the replacements a WordList offers.
const maxSuggestions = 5

// WordList is a Checker backed by a fixed set of words. A word is spelled
// correctly when it, or its lower-case form, is in the set. Suggestions
// are the known words at most two edits away, nearest first.
type WordList struct {
	words  map[string]bool
	sorted []string
}

// NewWordList returns a WordList knowing words.
func NewWordList(words ...string) *WordList {
	l := &WordList{words: make(map[string]bool, len(words))}
	for _, w := range words {
		l.add(w)
	}
	slices.Sort(l.sorted)
	return l
}

// ReadWordList reads a word list with one word per line. Blank lines and
// lines starting with # are ignored.
func ReadWordList(r io.Reader) (*WordList, error) {
	l := &WordList{words: make(map[string]bool)}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		l.add(line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	slices.Sort(l.sorted)
	return l, nil
}

func (l *WordList) add(w string) {
	if w == "" || l.words[w] {
		return
	}
	l.words[w] = true
	l.sorted = append(l.sorted, w)
}

// Len returns the number of known words.
func (l *WordList) Len() int {
	return len(l.sorted)
}

// Suggest implements Checker.
func (l *WordList) Suggest(ctx context.Context, word string) ([]string, bool, error) {
	if l.words[word] || l.words[strings.ToLower(word)] {
		return nil, true, nil
	}
	type candidate struct {
		word string
		dist int
	}
	var found []candidate
	lower := strings.ToLower(word)
	n := utf8.RuneCountInString(lower)
	for i, w := range l.sorted {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, false, err
			}
		}
		if m := utf8.RuneCountInString(w); m < n-2 || m > n+2 {
			continue
		}
		if d := distance(lower, strings.ToLower(w)); d <= 2 {
			found = append(found, candidate{w, d})
		}
	}
	slices.SortStableFunc(found, func(a, b candidate) int {
		return a.dist - b.dist
	})
	var out []string
	for _, c := range found[:min(len(found), maxSuggestions)] {
		out = append(out, c.word)
	}
	return out, false, nil
}

// distance returns the Levenshtein distance between a and b in runes.
func distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
