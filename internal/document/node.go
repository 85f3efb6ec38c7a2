package document

import (
	"strings"
	"unicode/utf8"
)

// Node is a detached node tree. It is the construction and serialization
// shape of a document; a Document snapshot is built from it with New.
// Text is only meaningful for KindText, Marks only for inline nodes.
type Node struct {
	Kind    Kind
	Attrs   Attrs
	Text    string
	Marks   MarkSet
	Content []Node
}

// Size returns the number of positions the node occupies in its parent.
func (n Node) Size() int {
	switch {
	case n.Kind == KindText:
		return utf8.RuneCountInString(n.Text)
	case n.Kind.IsLeaf():
		return 1
	default:
		return n.ContentSize() + 2
	}
}

// ContentSize returns the number of positions inside the node.
func (n Node) ContentSize() int {
	size := 0
	for _, c := range n.Content {
		size += c.Size()
	}
	return size
}

// TextContent concatenates the text of all descendant text nodes.
func (n Node) TextContent() string {
	if n.Kind == KindText {
		return n.Text
	}
	var b strings.Builder
	n.appendText(&b)
	return b.String()
}

func (n Node) appendText(b *strings.Builder) {
	if n.Kind == KindText {
		b.WriteString(n.Text)
		return
	}
	for _, c := range n.Content {
		c.appendText(b)
	}
}

// IsEmptyTextblock reports whether n is a textblock without content.
func (n Node) IsEmptyTextblock() bool {
	return n.Kind.IsTextblock() && len(n.Content) == 0
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	out := Node{Kind: n.Kind, Attrs: n.Attrs.Clone(), Text: n.Text}
	if n.Marks != nil {
		out.Marks = append(MarkSet(nil), n.Marks...)
	}
	if n.Content != nil {
		out.Content = make([]Node, len(n.Content))
		for i, c := range n.Content {
			out.Content[i] = c.Clone()
		}
	}
	return out
}

// Equal reports whether two trees have the same kinds, attributes, marks,
// text and children.
func (n Node) Equal(o Node) bool {
	if n.Kind != o.Kind || n.Text != o.Text || !n.Attrs.Equal(o.Attrs) || !n.Marks.Eq(o.Marks) {
		return false
	}
	if len(n.Content) != len(o.Content) {
		return false
	}
	for i := range n.Content {
		if !n.Content[i].Equal(o.Content[i]) {
			return false
		}
	}
	return true
}

// Cut returns a copy of n keeping only the content between the content
// offsets from and to. Containers partly covered by the range are cut
// recursively, so the result may violate content rules; use Repair to
// restore them.
func (n Node) Cut(from, to int) Node {
	out := Node{Kind: n.Kind, Attrs: n.Attrs.Clone(), Text: n.Text, Marks: n.Marks}
	if n.Kind == KindText {
		out.Text = sliceRunes(n.Text, from, to)
		return out
	}
	if n.Kind.IsLeaf() {
		return out
	}
	if n.Kind.IsTextblock() {
		out.Content = SliceInline(n.Content, from, to)
		return out
	}
	pos := 0
	for _, c := range n.Content {
		end := pos + c.Size()
		if end > from && pos < to {
			if pos >= from && end <= to {
				out.Content = append(out.Content, c.Clone())
			} else {
				out.Content = append(out.Content, c.Cut(max(0, from-pos-1), min(c.ContentSize(), to-pos-1)))
			}
		}
		pos = end
	}
	return out
}

// SliceInline returns the inline nodes between the offsets from and to of
// a textblock's content, splitting text runs at the boundaries.
func SliceInline(content []Node, from, to int) []Node {
	var out []Node
	pos := 0
	for _, c := range content {
		size := c.Size()
		end := pos + size
		if end > from && pos < to {
			if c.Kind == KindText {
				t := c
				t.Text = sliceRunes(c.Text, max(0, from-pos), min(size, to-pos))
				out = append(out, t)
			} else {
				out = append(out, c.Clone())
			}
		}
		pos = end
	}
	return out
}

// MapInlineMarks returns content with fn applied to the marks of every text
// run between from and to, splitting runs at the boundaries.
func MapInlineMarks(content []Node, from, to int, fn func(MarkSet) MarkSet) []Node {
	size := 0
	for _, c := range content {
		size += c.Size()
	}
	from, to = max(0, from), min(size, to)
	if from >= to {
		return content
	}
	out := SliceInline(content, 0, from)
	for _, c := range SliceInline(content, from, to) {
		if c.Kind == KindText {
			c.Marks = fn(c.Marks)
		}
		out = append(out, c)
	}
	out = append(out, SliceInline(content, to, size)...)
	return NormalizeInline(out)
}

// NormalizeInline drops empty text runs and merges adjacent runs that carry
// equal mark sets.
func NormalizeInline(content []Node) []Node {
	var out []Node
	for _, c := range content {
		if c.Kind == KindText && c.Text == "" {
			continue
		}
		if n := len(out); n > 0 && c.Kind == KindText && out[n-1].Kind == KindText && out[n-1].Marks.Eq(c.Marks) {
			out[n-1].Text += c.Text
			continue
		}
		out = append(out, c)
	}
	return out
}

func sliceRunes(s string, from, to int) string {
	if from <= 0 && to >= utf8.RuneCountInString(s) {
		return s
	}
	r := []rune(s)
	from = max(0, min(from, len(r)))
	to = max(from, min(to, len(r)))
	return string(r[from:to])
}

// Constructors for building trees in code and tests.

// T returns a text node with the given marks.
func T(text string, marks ...Mark) Node {
	return Node{Kind: KindText, Text: text, Marks: NewMarkSet(marks...)}
}

// Doc returns a doc node with the given blocks.
func Doc(blocks ...Node) Node { return Node{Kind: KindDoc, Content: blocks} }

// P returns a paragraph with the given inline content.
func P(content ...Node) Node { return Node{Kind: KindParagraph, Content: content} }

// Ptext returns a paragraph holding plain text, or an empty paragraph.
func Ptext(text string) Node {
	if text == "" {
		return P()
	}
	return P(T(text))
}

// H returns a heading of the given level.
func H(level int, content ...Node) Node {
	return Node{Kind: KindHeading, Attrs: Attrs{"level": level}, Content: content}
}

// Code returns a code block holding text.
func Code(language, text string) Node {
	n := Node{Kind: KindCodeBlock, Attrs: Attrs{"language": language}}
	if text != "" {
		n.Content = []Node{T(text)}
	}
	return n
}

// Quote returns a blockquote.
func Quote(blocks ...Node) Node { return Node{Kind: KindBlockquote, Content: blocks} }

// Bullets returns a bullet list.
func Bullets(items ...Node) Node { return Node{Kind: KindBulletList, Content: items} }

// Numbered returns an ordered list.
func Numbered(items ...Node) Node {
	return Node{Kind: KindOrderedList, Attrs: Attrs{"start": 1}, Content: items}
}

// Item returns a list item.
func Item(blocks ...Node) Node { return Node{Kind: KindListItem, Content: blocks} }

// Tasks returns a task list.
func Tasks(items ...Node) Node { return Node{Kind: KindTaskList, Content: items} }

// Task returns a task item.
func Task(checked bool, blocks ...Node) Node {
	return Node{Kind: KindTaskItem, Attrs: Attrs{"checked": checked}, Content: blocks}
}

// Toggle returns a toggle with a summary holding plain text and a body.
func Toggle(open bool, summary string, body ...Node) Node {
	s := Node{Kind: KindToggleSummary}
	if summary != "" {
		s.Content = []Node{T(summary)}
	}
	return Node{Kind: KindToggle, Attrs: Attrs{"open": open}, Content: append([]Node{s}, body...)}
}

// HR returns a horizontal rule.
func HR() Node { return Node{Kind: KindHorizontalRule} }

// BR returns a hard break.
func BR() Node { return Node{Kind: KindHardBreak} }
