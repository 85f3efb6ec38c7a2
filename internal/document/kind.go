package document

import "strings"

// Kind identifies the type of a node.
type Kind uint8

// Node kinds.
const (
	KindDoc Kind = iota
	KindParagraph
	KindHeading
	KindBlockquote
	KindCodeBlock
	KindBulletList
	KindOrderedList
	KindListItem
	KindTaskList
	KindTaskItem
	KindToggle
	KindToggleSummary
	KindHorizontalRule
	KindHardBreak
	KindText

	kindCount
)

// Group classifies where a kind may appear.
type Group uint8

const (
	// GroupNone is used by kinds that only appear in a fixed slot
	// (doc, list items, toggle summaries).
	GroupNone Group = iota
	// GroupBlock kinds appear in block containers.
	GroupBlock
	// GroupInline kinds appear inside textblocks.
	GroupInline
)

// AttrSpec declares one attribute of a kind and its default value.
// The default also fixes the value type: bool, int or string.
type AttrSpec struct {
	Name    string
	Default any
}

// term is one element of a content rule: a kind or a group, repeated
// between min and (many ? unbounded : 1) times.
type term struct {
	kind  Kind
	group Group
	min   int
	many  bool
}

func (t term) matches(k Kind) bool {
	if t.group != GroupNone {
		return specs[k].group == t.group
	}
	return t.kind == k
}

func (t term) String() string {
	var name string
	if t.group != GroupNone {
		name = t.group.String()
	} else {
		name = t.kind.String()
	}
	switch {
	case t.many && t.min == 0:
		return name + "*"
	case t.many:
		return name + "+"
	case t.min == 0:
		return name + "?"
	default:
		return name
	}
}

type kindSpec struct {
	name      string
	group     Group
	textblock bool
	leaf      bool
	marks     bool
	attrs     []AttrSpec
	content   []term
}

func zeroOrMore(g Group) term  { return term{group: g, many: true} }
func oneOrMore(g Group) term   { return term{group: g, min: 1, many: true} }
func someOf(k Kind) term       { return term{kind: k, min: 1, many: true} }
func exactlyOne(k Kind) term   { return term{kind: k, min: 1} }
func zeroOrMoreOf(k Kind) term { return term{kind: k, many: true} }

var specs = [...]kindSpec{
	KindDoc: {
		name:    "doc",
		content: []term{zeroOrMore(GroupBlock)},
	},
	KindParagraph: {
		name:      "paragraph",
		group:     GroupBlock,
		textblock: true,
		marks:     true,
		content:   []term{zeroOrMore(GroupInline)},
	},
	KindHeading: {
		name:      "heading",
		group:     GroupBlock,
		textblock: true,
		marks:     true,
		attrs:     []AttrSpec{{Name: "level", Default: 1}},
		content:   []term{zeroOrMore(GroupInline)},
	},
	KindBlockquote: {
		name:    "blockquote",
		group:   GroupBlock,
		content: []term{oneOrMore(GroupBlock)},
	},
	KindCodeBlock: {
		name:      "codeBlock",
		group:     GroupBlock,
		textblock: true,
		attrs:     []AttrSpec{{Name: "language", Default: ""}},
		content:   []term{zeroOrMoreOf(KindText)},
	},
	KindBulletList: {
		name:    "bulletList",
		group:   GroupBlock,
		content: []term{someOf(KindListItem)},
	},
	KindOrderedList: {
		name:    "orderedList",
		group:   GroupBlock,
		attrs:   []AttrSpec{{Name: "start", Default: 1}},
		content: []term{someOf(KindListItem)},
	},
	KindListItem: {
		name:    "listItem",
		content: []term{exactlyOne(KindParagraph), zeroOrMore(GroupBlock)},
	},
	KindTaskList: {
		name:    "taskList",
		group:   GroupBlock,
		content: []term{someOf(KindTaskItem)},
	},
	KindTaskItem: {
		name:    "taskItem",
		attrs:   []AttrSpec{{Name: "checked", Default: false}},
		content: []term{exactlyOne(KindParagraph), zeroOrMore(GroupBlock)},
	},
	KindToggle: {
		name:    "toggle",
		group:   GroupBlock,
		attrs:   []AttrSpec{{Name: "open", Default: true}},
		content: []term{exactlyOne(KindToggleSummary), zeroOrMore(GroupBlock)},
	},
	KindToggleSummary: {
		name:      "toggleSummary",
		textblock: true,
		marks:     true,
		content:   []term{zeroOrMoreOf(KindText)},
	},
	KindHorizontalRule: {
		name:  "horizontalRule",
		group: GroupBlock,
		leaf:  true,
	},
	KindHardBreak: {
		name:  "hardBreak",
		group: GroupInline,
		leaf:  true,
	},
	KindText: {
		name:  "text",
		group: GroupInline,
		leaf:  true,
	},
}

// The spec table must have one entry per kind.
var _ = [1]struct{}{}[len(specs)-int(kindCount)]

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(specs))
	for k := range specs {
		m[specs[k].name] = Kind(k)
	}
	return m
}()

// KindByName returns the kind with the given JSON name.
func KindByName(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Valid reports whether k is a declared kind.
func (k Kind) Valid() bool { return k < kindCount }

// String returns the JSON name of the kind.
func (k Kind) String() string {
	if !k.Valid() {
		return "unknown"
	}
	return specs[k].name
}

// Group returns the group of the kind.
func (k Kind) Group() Group { return specs[k].group }

// IsBlock reports whether the kind belongs to the block group.
func (k Kind) IsBlock() bool { return specs[k].group == GroupBlock }

// IsInline reports whether the kind belongs to the inline group.
func (k Kind) IsInline() bool { return specs[k].group == GroupInline }

// IsTextblock reports whether the kind holds inline content directly.
func (k Kind) IsTextblock() bool { return specs[k].textblock }

// IsLeaf reports whether the kind can never have children.
func (k Kind) IsLeaf() bool { return specs[k].leaf }

// AllowsMarks reports whether text inside a node of this kind may carry marks.
func (k Kind) AllowsMarks() bool { return specs[k].marks }

// AttrSpecs returns the attribute declarations of the kind.
func (k Kind) AttrSpecs() []AttrSpec { return specs[k].attrs }

// ContentRule returns the content expression of the kind, e.g. "block+".
func (k Kind) ContentRule() string {
	parts := make([]string, len(specs[k].content))
	for i, t := range specs[k].content {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// AllowsContent reports whether a sequence of children with the given kinds
// satisfies the content rule of k.
func (k Kind) AllowsContent(children []Kind) bool {
	if specs[k].leaf {
		return len(children) == 0
	}
	i := 0
	for _, t := range specs[k].content {
		n := 0
		for i < len(children) && (t.many || n < 1) && t.matches(children[i]) {
			i++
			n++
		}
		if n < t.min {
			return false
		}
	}
	return i == len(children)
}

// Accepts reports whether a child of kind c may appear somewhere in k.
func (k Kind) Accepts(c Kind) bool {
	for _, t := range specs[k].content {
		if t.matches(c) {
			return true
		}
	}
	return false
}

// String returns the content rule name of the group.
func (g Group) String() string {
	switch g {
	case GroupBlock:
		return "block"
	case GroupInline:
		return "inline"
	default:
		return "none"
	}
}
