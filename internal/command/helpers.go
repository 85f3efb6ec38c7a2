package command

import (
	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

// Origins recorded on transactions built here, besides the typing and
// deleting origins shared with the pipeline.
const (
	OriginMove   = "input.move"
	OriginFormat = "input.format"
	OriginBlock  = "input.block"
)

// Textblock resolves pos and returns it when it lies inside a textblock.
func Textblock(doc *document.Document, pos int) (*document.ResolvedPos, bool) {
	rp, err := doc.Resolve(pos)
	if err != nil || !rp.InTextblock() {
		return nil, false
	}
	return rp, true
}

// VisibleTextblocks returns the textblocks of doc in document order,
// skipping the bodies of closed toggles.
func VisibleTextblocks(doc *document.Document) []document.NodeID {
	var out []document.NodeID
	for _, id := range doc.Textblocks() {
		if !state.Hidden(doc, id) {
			out = append(out, id)
		}
	}
	return out
}

func after(doc *document.Document, id document.NodeID) int {
	return doc.PosBefore(id) + doc.Size(id)
}

func isItem(k document.Kind) bool {
	return k == document.KindListItem || k == document.KindTaskItem
}

func isWrapper(k document.Kind) bool {
	return k == document.KindBlockquote || isItem(k)
}

// childNodes returns the detached children of id in [from, to).
func childNodes(doc *document.Document, id document.NodeID, from, to int) []document.Node {
	var out []document.Node
	for _, c := range doc.Children(id)[from:to] {
		out = append(out, doc.Node(c))
	}
	return out
}

// marksAcross returns the marks of the inline node at the start of
// [from, to), used as stored marks once the range is deleted.
func marksAcross(doc *document.Document, from int) document.MarkSet {
	rp, ok := Textblock(doc, from)
	if !ok {
		return nil
	}
	id := rp.NodeAfter()
	if id == document.NoNode || doc.Kind(id) != document.KindText {
		return nil
	}
	return doc.Marks(id)
}

// allows reports whether the parent of child would accept child's slot
// being filled by kind k.
func allows(doc *document.Document, child document.NodeID, k document.Kind) bool {
	parent := doc.Parent(child)
	if parent == document.NoNode {
		return false
	}
	kinds := make([]document.Kind, 0, doc.ChildCount(parent))
	for _, c := range doc.Children(parent) {
		if c == child {
			kinds = append(kinds, k)
			continue
		}
		kinds = append(kinds, doc.Kind(c))
	}
	return doc.Kind(parent).AllowsContent(kinds)
}
