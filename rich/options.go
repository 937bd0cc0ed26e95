package rich

import (
	"go.uber.org/zap"
)

// Option configures a Document.
type Option func(*Document)

// WithIndentUnit is an Option that sets the indent added per list
// nesting level to a paragraph's style.
func WithIndentUnit(unit int) Option {
	return func(d *Document) {
		d.indentUnit = unit
	}
}

// WithLevelBounds is an Option that sets the nesting levels Indent and
// Outdent clamp to. Bounds below 1 or inverted bounds are ignored.
func WithLevelBounds(minLevel, maxLevel int) Option {
	return func(d *Document) {
		if minLevel < 1 || maxLevel < minLevel {
			return
		}
		d.minLevel = minLevel
		d.maxLevel = maxLevel
	}
}

// WithLogger is an Option that sets the logger used to report clamped
// offsets and other recoverable oddities. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.log = l
		}
	}
}

// WithImageLoader is an Option that sets the capability used by
// LoadImage. Without one, LoadImage reports ErrNoImageLoader.
func WithImageLoader(l ImageLoader) Option {
	return func(d *Document) {
		d.images = l
	}
}
