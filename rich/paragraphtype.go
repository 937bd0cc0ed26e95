package rich

// ParagraphType is the closed set of paragraph kinds: Default, OneSpace,
// UnorderedList and OrderedList. A nil ParagraphType is Default.
type ParagraphType interface {
	paragraphType()
}

// Default is a plain paragraph with no marker.
type Default struct{}

// OneSpace is a deliberately blank but selectable line. Its marker is a
// single space.
type OneSpace struct{}

// UnorderedList is a bulleted list item.
type UnorderedList struct {
	Level int
}

// OrderedList is a numbered list item.
type OrderedList struct {
	Number int
	Level  int
	Style  OrderedListStyle
}

func (Default) paragraphType()       {}
func (OneSpace) paragraphType()      {}
func (UnorderedList) paragraphType() {}
func (OrderedList) paragraphType()   {}

var bullets = []string{"•", "◦", "▪"}

// StartText returns the marker text of t.
func StartText(t ParagraphType) string {
	switch t := t.(type) {
	case nil, Default:
		return ""
	case OneSpace:
		return " "
	case UnorderedList:
		return bullets[max(t.Level-1, 0)%len(bullets)] + " "
	case OrderedList:
		st := t.Style
		if st == nil {
			st = Decimal
		}
		return st.Format(t.Number, t.Level) + st.Suffix(t.Level)
	}
	return ""
}

// NextType returns the type of the paragraph created by splitting a
// paragraph of type t.
func NextType(t ParagraphType) ParagraphType {
	switch t := t.(type) {
	case nil, Default:
		return Default{}
	case OneSpace:
		return OneSpace{}
	case UnorderedList:
		return t
	case OrderedList:
		t.Number++
		return t
	}
	return Default{}
}

// Level returns the nesting level of a list type and 0 otherwise.
func Level(t ParagraphType) int {
	switch t := t.(type) {
	case nil, Default, OneSpace:
		return 0
	case UnorderedList:
		return t.Level
	case OrderedList:
		return t.Level
	}
	return 0
}

// IsList reports whether t is a list item type.
func IsList(t ParagraphType) bool {
	switch t.(type) {
	case UnorderedList, OrderedList:
		return true
	}
	return false
}

// withLevel returns t at nesting level l. Ordered items restart at 1 so
// that renumbering can place them in the sequence of their new level.
func withLevel(t ParagraphType, l int) ParagraphType {
	switch t := t.(type) {
	case UnorderedList:
		t.Level = l
		return t
	case OrderedList:
		if t.Level != l {
			t.Number = 1
		}
		t.Level = l
		return t
	}
	return t
}

func sameListKind(a, b ParagraphType) bool {
	switch a.(type) {
	case UnorderedList:
		_, ok := b.(UnorderedList)
		return ok
	case OrderedList:
		_, ok := b.(OrderedList)
		return ok
	}
	return false
}
