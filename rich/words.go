package rich

import (
	"iter"
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/rjkroege/richtext/internal/runes"
)

// WordSegment is a word of the flat text and where it sits.
type WordSegment struct {
	Text  string
	Range TextRange
}

// Words yields the words of every paragraph's content in order, using
// Unicode word boundaries. Segments without a letter or digit, such as
// spaces and punctuation, are skipped, and so are markers.
func (d *Document) Words() iter.Seq[WordSegment] {
	return func(yield func(WordSegment) bool) {
		for i, p := range d.paragraphs {
			base := d.layout[i].content
			if !segmentWords(p.ContentText(), base, yield) {
				return
			}
		}
	}
}

func segmentWords(text string, base int, yield func(WordSegment) bool) bool {
	state := -1
	pos := base
	for text != "" {
		var w string
		w, text, state = uniseg.FirstWordInString(text, state)
		n := runes.Len(w)
		if isWord(w) {
			if !yield(WordSegment{Text: w, Range: TextRange{Start: pos, End: pos + n}}) {
				return false
			}
		}
		pos += n
	}
	return true
}

func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
