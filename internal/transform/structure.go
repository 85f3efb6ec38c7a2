package transform

import (
	"github.com/nahidnstu12/team-docs-sub001/internal/document"
)

// DeleteRange removes [from, to) even when its ends sit in different
// blocks. The blocks containing the ends are cut and, where their kinds
// allow it, joined, so text after the range continues the block holding
// from. Position from stays valid in the result.
func (t *Transform) DeleteRange(from, to int) error {
	if from >= to {
		return nil
	}
	doc := t.doc
	rf, err := doc.Resolve(from)
	if err != nil {
		return err
	}
	rt, err := doc.Resolve(to)
	if err != nil {
		return err
	}
	if rf.Parent() == rt.Parent() {
		return t.Delete(from, to)
	}
	depth := rf.SharedDepth(to) + 1
	if depth > rf.Depth() || depth > rt.Depth() {
		return t.Delete(from, to)
	}
	leftID, rightID := rf.Node(depth), rt.Node(depth)
	left := doc.Node(leftID).Cut(0, from-rf.Start(depth))
	right := doc.Node(rightID).Cut(to-rt.Start(depth), doc.NodeContentSize(rightID))

	var pieces []document.Node
	for _, n := range joinNodes(left, right) {
		pieces = append(pieces, document.RepairNode(n))
	}
	return t.Replace(rf.Before(depth), rt.After(depth), pieces...)
}

// joinNodes merges the right edge of left with the left edge of right
// where both sides have compatible kinds.
func joinNodes(left, right document.Node) []document.Node {
	if left.Kind.IsTextblock() && right.Kind.IsTextblock() {
		out := left
		out.Content = append(append([]document.Node{}, left.Content...), right.Content...)
		return []document.Node{out}
	}
	if left.Kind == right.Kind && !left.Kind.IsLeaf() && len(left.Content) > 0 && len(right.Content) > 0 {
		last := len(left.Content) - 1
		out := left
		out.Content = append([]document.Node{}, left.Content[:last]...)
		out.Content = append(out.Content, joinNodes(left.Content[last], right.Content[0])...)
		out.Content = append(out.Content, right.Content[1:]...)
		return []document.Node{out}
	}
	if isEmptyContainer(right) {
		return []document.Node{left}
	}
	return []document.Node{left, right}
}

func isEmptyContainer(n document.Node) bool {
	return !n.Kind.IsLeaf() && !n.Kind.IsTextblock() && n.TextContent() == "" && len(n.Content) <= 1
}
