package document

import "strings"

// MarkType identifies an inline formatting mark. The declaration order is
// the rank used to order mark sets.
type MarkType uint8

// Mark types.
const (
	MarkBold MarkType = iota
	MarkItalic
	MarkUnderline
	MarkStrike
	MarkCode
	MarkLink
	MarkHighlight

	markTypeCount
)

// Link policy applied to every link mark the editor creates.
const (
	LinkTarget = "_blank"
	LinkRel    = "noopener noreferrer nofollow"
)

type markSpec struct {
	name string
	// inclusive marks extend to text typed at their end boundary.
	inclusive bool
	attrs     []AttrSpec
}

var markSpecs = [...]markSpec{
	MarkBold:      {name: "bold", inclusive: true},
	MarkItalic:    {name: "italic", inclusive: true},
	MarkUnderline: {name: "underline", inclusive: true},
	MarkStrike:    {name: "strike", inclusive: true},
	MarkCode:      {name: "code", inclusive: true},
	MarkLink: {
		name: "link",
		attrs: []AttrSpec{
			{Name: "href", Default: ""},
			{Name: "target", Default: LinkTarget},
			{Name: "rel", Default: LinkRel},
		},
	},
	MarkHighlight: {
		name:      "highlight",
		inclusive: true,
		attrs:     []AttrSpec{{Name: "color", Default: ""}},
	},
}

var _ = [1]struct{}{}[len(markSpecs)-int(markTypeCount)]

// MarkTypeByName returns the mark type with the given JSON name.
func MarkTypeByName(name string) (MarkType, bool) {
	for i := range markSpecs {
		if markSpecs[i].name == name {
			return MarkType(i), true
		}
	}
	return 0, false
}

// Valid reports whether t is a declared mark type.
func (t MarkType) Valid() bool { return t < markTypeCount }

// String returns the JSON name of the mark type.
func (t MarkType) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return markSpecs[t].name
}

// Inclusive reports whether the mark extends to text inserted at its end.
func (t MarkType) Inclusive() bool { return markSpecs[t].inclusive }

// Mark is a formatting annotation on a text run.
type Mark struct {
	Type  MarkType
	Attrs Attrs
}

// NewMark returns a mark of type t with normalised attributes.
func NewMark(t MarkType, attrs Attrs) Mark {
	a, _ := normalizeAttrs(markSpecs[t].attrs, attrs)
	return Mark{Type: t, Attrs: a}
}

// Link returns a link mark to href carrying the editor's target and rel policy.
func Link(href string) Mark {
	return NewMark(MarkLink, Attrs{"href": href, "target": LinkTarget, "rel": LinkRel})
}

// Href returns the href of a link mark.
func (m Mark) Href() string { return m.Attrs.String("href") }

// Eq reports whether two marks have the same type and attributes.
func (m Mark) Eq(o Mark) bool {
	return m.Type == o.Type && m.Attrs.Equal(o.Attrs)
}

func (m Mark) String() string {
	if m.Type == MarkLink {
		return "link(" + m.Href() + ")"
	}
	return m.Type.String()
}

// MarkSet is an ordered set of marks, sorted by rank with at most one mark
// per type. The zero value is the empty set. Methods never modify the
// receiver.
type MarkSet []Mark

// NewMarkSet builds a set from marks in any order. Later marks of the same
// type replace earlier ones.
func NewMarkSet(marks ...Mark) MarkSet {
	var s MarkSet
	for _, m := range marks {
		s = s.Add(m)
	}
	return s
}

// Add returns a set containing m, replacing a mark of the same type.
func (s MarkSet) Add(m Mark) MarkSet {
	out := make(MarkSet, 0, len(s)+1)
	placed := false
	for _, e := range s {
		switch {
		case e.Type == m.Type:
			continue
		case !placed && e.Type > m.Type:
			out = append(out, m)
			placed = true
		}
		out = append(out, e)
	}
	if !placed {
		out = append(out, m)
	}
	return out
}

// Remove returns a set without marks of type t.
func (s MarkSet) Remove(t MarkType) MarkSet {
	if !s.Has(t) {
		return s
	}
	out := make(MarkSet, 0, len(s))
	for _, e := range s {
		if e.Type != t {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Has reports whether the set contains a mark of type t.
func (s MarkSet) Has(t MarkType) bool {
	_, ok := s.Get(t)
	return ok
}

// Get returns the mark of type t.
func (s MarkSet) Get(t MarkType) (Mark, bool) {
	for _, e := range s {
		if e.Type == t {
			return e, true
		}
	}
	return Mark{}, false
}

// Contains reports whether the set holds a mark equal to m.
func (s MarkSet) Contains(m Mark) bool {
	e, ok := s.Get(m.Type)
	return ok && e.Eq(m)
}

// Eq reports whether both sets hold equal marks.
func (s MarkSet) Eq(o MarkSet) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if !s[i].Eq(o[i]) {
			return false
		}
	}
	return true
}

func (s MarkSet) String() string {
	names := make([]string, len(s))
	for i, m := range s {
		names[i] = m.String()
	}
	return "[" + strings.Join(names, " ") + "]"
}
