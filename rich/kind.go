package rich

import "reflect"

// Kind is the closed set of span variants that carry payload beyond a
// Style. A nil Kind is plain text. The variants are Link, Image, Code and
// Custom; switches over a Kind handle all four.
type Kind interface {
	kind()
}

// Link is a hyperlink span.
type Link struct {
	URL string
}

// Image is an embedded image. The span text is ObjectReplacement so the
// image occupies a single offset.
type Image struct {
	URL   string
	Alt   string
	Title string
}

// Code is an inline code span (monospace).
type Code struct{}

// Custom is an application defined span kind. Data is opaque to this
// package.
type Custom struct {
	Name string
	Data any
}

func (Link) kind()   {}
func (Image) kind()  {}
func (Code) kind()   {}
func (Custom) kind() {}

// ObjectReplacement is the text of an image span.
const ObjectReplacement = "\uFFFC"

// KindName returns a short name for k, used in logs and dumps.
func KindName(k Kind) string {
	switch k := k.(type) {
	case nil:
		return "text"
	case Link:
		return "link"
	case Image:
		return "image"
	case Code:
		return "code"
	case Custom:
		return "custom:" + k.Name
	}
	return "unknown"
}

// kindsEqual compares kinds by value.
func kindsEqual(a, b Kind) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case Link:
		bl, ok := b.(Link)
		return ok && a == bl
	case Image:
		bi, ok := b.(Image)
		return ok && a == bi
	case Code:
		_, ok := b.(Code)
		return ok
	case Custom:
		bc, ok := b.(Custom)
		return ok && a.Name == bc.Name && dataEqual(a.Data, bc.Data)
	}
	return false
}

// dataEqual compares custom data with ==, or deeply when either value
// holds something == would panic on.
func dataEqual(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
