package transform

import (
	"errors"
	"fmt"

	"github.com/nahidnstu12/team-docs-sub001/internal/document"
)

// Errors returned by step application.
var (
	// ErrFlatRange indicates a replace whose ends do not share a parent.
	ErrFlatRange = errors.New("range crosses node boundary")

	// ErrNotAtBoundary indicates a container range that splits a child.
	ErrNotAtBoundary = errors.New("range does not sit on child boundaries")

	// ErrNoNodeAtPos indicates an attribute step aimed at no node.
	ErrNoNodeAtPos = errors.New("no node at position")
)

// StepKind identifies the kind of change a step makes.
type StepKind uint8

// Step kinds.
const (
	StepInsert StepKind = iota
	StepDelete
	StepReplace
	StepSetNodeAttrs
	StepAddMark
	StepRemoveMark
)

var stepKindNames = [...]string{
	StepInsert:       "insert",
	StepDelete:       "delete",
	StepReplace:      "replace",
	StepSetNodeAttrs: "setNodeAttrs",
	StepAddMark:      "addMark",
	StepRemoveMark:   "removeMark",
}

func (k StepKind) String() string {
	if int(k) < len(stepKindNames) {
		return stepKindNames[k]
	}
	return "unknown"
}

// Step is an atomic document change.
type Step interface {
	// Apply returns the document with the step applied.
	Apply(doc *document.Document) (*document.Document, error)
	// Map describes how the step moves positions.
	Map() StepMap
	// Invert returns a step undoing this one, given the document the step
	// was applied to.
	Invert(before *document.Document) Step
	// Kind reports the kind of change.
	Kind() StepKind
	// RemovesContent reports whether the replacement content is empty
	// while the replaced range is not.
	RemovesContent() bool
}

// ReplaceStep replaces the flat range [From, To) with Content.
type ReplaceStep struct {
	From, To int
	Content  []document.Node
}

// Apply implements Step.
func (s *ReplaceStep) Apply(doc *document.Document) (*document.Document, error) {
	if s.From > s.To {
		return nil, fmt.Errorf("%w: from %d after to %d", ErrFlatRange, s.From, s.To)
	}
	parent, fromOff, toOff, err := flatRange(doc, s.From, s.To)
	if err != nil {
		return nil, err
	}
	n := doc.Node(parent)
	if n.Kind.IsTextblock() {
		for _, c := range s.Content {
			if !c.Kind.IsInline() {
				return nil, fmt.Errorf("%w: %s inside %s", document.ErrStructuralViolation, c.Kind, n.Kind)
			}
		}
		size := n.ContentSize()
		content := document.SliceInline(n.Content, 0, fromOff)
		content = append(content, s.Content...)
		content = append(content, document.SliceInline(n.Content, toOff, size)...)
		n.Content = document.NormalizeInline(content)
	} else {
		i, err := childIndexAt(n, fromOff)
		if err != nil {
			return nil, err
		}
		j, err := childIndexAt(n, toOff)
		if err != nil {
			return nil, err
		}
		content := append([]document.Node{}, n.Content[:i]...)
		content = append(content, s.Content...)
		n.Content = append(content, n.Content[j:]...)
	}
	return doc.WithNode(parent, n)
}

// Map implements Step.
func (s *ReplaceStep) Map() StepMap {
	return NewStepMap(s.From, s.To-s.From, contentSize(s.Content))
}

// Invert implements Step.
func (s *ReplaceStep) Invert(before *document.Document) Step {
	removed, _ := Slice(before, s.From, s.To)
	return &ReplaceStep{From: s.From, To: s.From + contentSize(s.Content), Content: removed}
}

// Kind implements Step.
func (s *ReplaceStep) Kind() StepKind {
	switch {
	case len(s.Content) == 0:
		return StepDelete
	case s.From == s.To:
		return StepInsert
	default:
		return StepReplace
	}
}

// RemovesContent implements Step.
func (s *ReplaceStep) RemovesContent() bool {
	return len(s.Content) == 0 && s.To > s.From
}

func (s *ReplaceStep) String() string {
	return fmt.Sprintf("%s(%d,%d,%d nodes)", s.Kind(), s.From, s.To, len(s.Content))
}

// AttrStep merges Attrs into the attributes of the node starting at Pos.
type AttrStep struct {
	Pos   int
	Attrs document.Attrs
}

// Apply implements Step.
func (s *AttrStep) Apply(doc *document.Document) (*document.Document, error) {
	id, err := NodeAt(doc, s.Pos)
	if err != nil {
		return nil, err
	}
	n := doc.Node(id)
	for k, v := range s.Attrs {
		n.Attrs = n.Attrs.With(k, v)
	}
	return doc.WithNode(id, n)
}

// Map implements Step.
func (s *AttrStep) Map() StepMap { return EmptyMap }

// Invert implements Step.
func (s *AttrStep) Invert(before *document.Document) Step {
	id, err := NodeAt(before, s.Pos)
	if err != nil {
		return &AttrStep{Pos: s.Pos}
	}
	return &AttrStep{Pos: s.Pos, Attrs: before.Attrs(id).Clone()}
}

// Kind implements Step.
func (s *AttrStep) Kind() StepKind { return StepSetNodeAttrs }

// RemovesContent implements Step.
func (s *AttrStep) RemovesContent() bool { return false }

func (s *AttrStep) String() string { return fmt.Sprintf("setNodeAttrs(%d,%v)", s.Pos, s.Attrs) }

// MarkStep adds (or with Remove set, removes) Mark over [From, To).
type MarkStep struct {
	From, To int
	Mark     document.Mark
	Remove   bool
}

// Apply implements Step.
func (s *MarkStep) Apply(doc *document.Document) (*document.Document, error) {
	if s.From < 0 || s.To > doc.ContentSize() || s.From > s.To {
		return nil, fmt.Errorf("%w: [%d,%d)", document.ErrPositionOutOfRange, s.From, s.To)
	}
	fn := func(ms document.MarkSet) document.MarkSet { return ms.Add(s.Mark) }
	if s.Remove {
		fn = func(ms document.MarkSet) document.MarkSet { return ms.Remove(s.Mark.Type) }
	}
	root := mapTextblocks(doc.Tree(), 0, s.From, s.To, func(tb document.Node, a, b int) document.Node {
		if !tb.Kind.AllowsMarks() {
			return tb
		}
		tb.Content = document.MapInlineMarks(tb.Content, a, b, fn)
		return tb
	})
	return document.New(root)
}

// Map implements Step.
func (s *MarkStep) Map() StepMap { return EmptyMap }

// Invert implements Step.
func (s *MarkStep) Invert(*document.Document) Step {
	return &MarkStep{From: s.From, To: s.To, Mark: s.Mark, Remove: !s.Remove}
}

// Kind implements Step.
func (s *MarkStep) Kind() StepKind {
	if s.Remove {
		return StepRemoveMark
	}
	return StepAddMark
}

// RemovesContent implements Step.
func (s *MarkStep) RemovesContent() bool { return false }

func (s *MarkStep) String() string {
	return fmt.Sprintf("%s(%d,%d,%s)", s.Kind(), s.From, s.To, s.Mark)
}

// mapTextblocks calls fn for every textblock overlapping [from, to) with the
// overlap in content offsets. start is the content start of n.
func mapTextblocks(n document.Node, start, from, to int, fn func(document.Node, int, int) document.Node) document.Node {
	pos := start
	for i, c := range n.Content {
		end := pos + c.Size()
		if end > from && pos < to && !c.Kind.IsLeaf() {
			inner := pos + 1
			if c.Kind.IsTextblock() {
				a := max(from, inner) - inner
				b := min(to, end-1) - inner
				if a < b {
					n.Content[i] = fn(c, a, b)
				}
			} else {
				n.Content[i] = mapTextblocks(c, inner, from, to, fn)
			}
		}
		pos = end
	}
	return n
}

// flatRange resolves [from, to) to a shared parent and content offsets.
func flatRange(doc *document.Document, from, to int) (document.NodeID, int, int, error) {
	rf, err := doc.Resolve(from)
	if err != nil {
		return document.NoNode, 0, 0, err
	}
	rt, err := doc.Resolve(to)
	if err != nil {
		return document.NoNode, 0, 0, err
	}
	if rf.Parent() != rt.Parent() {
		return document.NoNode, 0, 0, fmt.Errorf("%w: [%d,%d)", ErrFlatRange, from, to)
	}
	return rf.Parent(), rf.ParentOffset(), rt.ParentOffset(), nil
}

func childIndexAt(n document.Node, off int) (int, error) {
	pos := 0
	for i, c := range n.Content {
		if pos == off {
			return i, nil
		}
		pos += c.Size()
		if pos > off {
			break
		}
	}
	if pos == off {
		return len(n.Content), nil
	}
	return 0, fmt.Errorf("%w: offset %d in %s", ErrNotAtBoundary, off, n.Kind)
}

// Slice returns the content between from and to, which must share a parent.
func Slice(doc *document.Document, from, to int) ([]document.Node, error) {
	parent, fromOff, toOff, err := flatRange(doc, from, to)
	if err != nil {
		return nil, err
	}
	n := doc.Node(parent)
	if n.Kind.IsTextblock() {
		return document.SliceInline(n.Content, fromOff, toOff), nil
	}
	i, err := childIndexAt(n, fromOff)
	if err != nil {
		return nil, err
	}
	j, err := childIndexAt(n, toOff)
	if err != nil {
		return nil, err
	}
	return n.Content[i:j], nil
}

// NodeAt returns the non-text node starting at pos.
func NodeAt(doc *document.Document, pos int) (document.NodeID, error) {
	rp, err := doc.Resolve(pos)
	if err != nil {
		return document.NoNode, err
	}
	id := rp.NodeAfter()
	if id == document.NoNode || rp.TextOffset() != 0 || doc.Kind(id) == document.KindText {
		return document.NoNode, fmt.Errorf("%w: %d", ErrNoNodeAtPos, pos)
	}
	return id, nil
}

func contentSize(content []document.Node) int {
	size := 0
	for _, c := range content {
		size += c.Size()
	}
	return size
}
