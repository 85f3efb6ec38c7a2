package command

import (
	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

// SplitBlock handles Enter. Code blocks receive a newline. An empty sole
// paragraph of a list item leaves the list. Otherwise the textblock, or the
// list item it starts, is split at the cursor and the cursor moves to the
// start of the new block. Marks carry over unless stored marks are set,
// in which case the stored marks are kept as they are.
func SplitBlock(s *state.State, dispatch Dispatch) bool {
	sel := s.Selection()
	from := sel.From()
	tr := s.Tr()
	if !sel.Empty() {
		if err := tr.DeleteRange(from, sel.To()); err != nil {
			return false
		}
	}
	doc := tr.Doc()
	rp, ok := Textblock(doc, from)
	if !ok {
		return false
	}
	tb := rp.Parent()
	kind := doc.Kind(tb)
	switch kind {
	case document.KindToggleSummary:
		return false
	case document.KindCodeBlock:
		if err := tr.Insert(from, document.T("\n")); err != nil {
			return false
		}
		tr.SetSelection(state.Cursor(from + 1))
		tr.SetMeta(state.MetaOrigin, OriginBlock)
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}

	wrapper := doc.Parent(tb)
	firstOfItem := isItem(doc.Kind(wrapper)) && doc.Index(tb) == 0
	if firstOfItem && sel.Empty() && doc.IsEmptyTextblock(tb) && doc.ChildCount(wrapper) == 1 {
		return Lift(s, dispatch)
	}

	off := rp.ParentOffset()
	node := doc.Node(tb)
	size := doc.NodeContentSize(tb)
	left, right := node.Cut(0, off), node.Cut(off, size)
	if off == size && kind != document.KindParagraph {
		right = document.Node{Kind: document.KindParagraph}
	}

	var cursor int
	if firstOfItem {
		item := doc.Node(wrapper)
		first := document.Node{Kind: item.Kind, Attrs: item.Attrs, Content: []document.Node{left}}
		second := document.Node{Kind: item.Kind, Content: append([]document.Node{right}, item.Content[1:]...)}
		start := doc.PosBefore(wrapper)
		if err := tr.Replace(start, after(doc, wrapper), first, second); err != nil {
			return false
		}
		cursor = start + first.Size() + 2
	} else {
		start := doc.PosBefore(tb)
		if err := tr.Replace(start, after(doc, tb), left, right); err != nil {
			return false
		}
		cursor = start + left.Size() + 1
	}
	tr.SetSelection(state.Cursor(cursor))

	if stored, set := s.StoredMarks(); set {
		tr.SetStoredMarks(stored)
	} else if off > 0 {
		if marks := rp.Marks(); len(marks) > 0 {
			tr.SetStoredMarks(marks)
		}
	}
	tr.SetMeta(state.MetaOrigin, OriginBlock)
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// SetBlockType converts the textblocks touched by the selection to kind.
// Blocks whose position does not allow kind are left alone; the command
// applies when at least one block changes.
func SetBlockType(kind document.Kind, attrs document.Attrs) Command {
	return func(s *state.State, dispatch Dispatch) bool {
		if !kind.IsTextblock() || kind == document.KindToggleSummary {
			return false
		}
		doc := s.Doc()
		sel := s.Selection()
		want := document.Normalize(document.Node{Kind: kind, Attrs: attrs}).Attrs

		tr := s.Tr()
		changed := false
		for _, id := range doc.Textblocks() {
			start, end := doc.ContentStart(id), doc.ContentEnd(id)
			if end < sel.From() || start > sel.To() {
				continue
			}
			if doc.Kind(id) == kind && doc.Attrs(id).Equal(want) {
				continue
			}
			if doc.Kind(id) == kind {
				if err := tr.SetNodeAttrs(doc.PosBefore(id), want); err != nil {
					return false
				}
				changed = true
				continue
			}
			if !allows(doc, id, kind) {
				continue
			}
			n := document.Node{Kind: kind, Attrs: want, Content: document.InlineFor(kind, doc.Node(id).Content)}
			if err := tr.Replace(doc.PosBefore(id), after(doc, id), n); err != nil {
				return false
			}
			changed = true
		}
		if !changed {
			return false
		}
		tr.SetSelection(sel)
		tr.SetMeta(state.MetaOrigin, OriginBlock)
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
}

// WrapIn wraps the cursor's textblock in a blockquote or a list.
func WrapIn(kind document.Kind) Command {
	return func(s *state.State, dispatch Dispatch) bool {
		doc := s.Doc()
		sel := s.Selection()
		rp, ok := Textblock(doc, sel.Head)
		if !ok {
			return false
		}
		tb := rp.Parent()
		if doc.Kind(tb) == document.KindToggleSummary || !allows(doc, tb, kind) {
			return false
		}
		node := doc.Node(tb)
		var wrapped document.Node
		depth := 1
		switch kind {
		case document.KindBlockquote:
			wrapped = document.Quote(node)
		case document.KindBulletList, document.KindOrderedList, document.KindTaskList:
			para := document.Node{Kind: document.KindParagraph, Content: document.InlineFor(document.KindParagraph, node.Content)}
			item := document.Item(para)
			if kind == document.KindTaskList {
				item = document.Task(false, para)
			}
			wrapped = document.Node{Kind: kind, Content: []document.Node{item}}
			depth = 2
		default:
			return false
		}

		start, end := doc.PosBefore(tb), after(doc, tb)
		tr := s.Tr()
		if err := tr.Replace(start, end, wrapped); err != nil {
			return false
		}
		shift := func(pos int) int {
			if pos >= start && pos <= end {
				return pos + depth
			}
			return tr.Mapping().Map(pos, 1)
		}
		tr.SetSelection(state.Range(shift(sel.Anchor), shift(sel.Head)))
		tr.SetMeta(state.MetaOrigin, OriginBlock)
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
}

// Lift moves the cursor's textblock out of its blockquote or list item.
// Lifting a list item splits the list around it and moves all of the
// item's blocks to the list's parent.
func Lift(s *state.State, dispatch Dispatch) bool {
	doc := s.Doc()
	rp, ok := Textblock(doc, s.Selection().Head)
	if !ok {
		return false
	}
	tb := rp.Parent()
	wrapper := doc.Parent(tb)
	offset := s.Selection().Head - doc.ContentStart(tb)

	var (
		container document.NodeID
		nodes     []document.Node
		lead      int
	)
	switch doc.Kind(wrapper) {
	case document.KindBlockquote:
		container = wrapper
		i := doc.Index(tb)
		n := doc.ChildCount(wrapper)
		if i > 0 {
			before := document.Quote(childNodes(doc, wrapper, 0, i)...)
			nodes = append(nodes, before)
			lead = before.Size()
		}
		nodes = append(nodes, doc.Node(tb))
		if i+1 < n {
			nodes = append(nodes, document.Quote(childNodes(doc, wrapper, i+1, n)...))
		}
	case document.KindListItem, document.KindTaskItem:
		if doc.Index(tb) != 0 {
			return false
		}
		list := doc.Parent(wrapper)
		container = list
		i := doc.Index(wrapper)
		n := doc.ChildCount(list)
		listOf := func(items []document.Node) document.Node {
			return document.Node{Kind: doc.Kind(list), Attrs: doc.Attrs(list).Clone(), Content: items}
		}
		if i > 0 {
			before := listOf(childNodes(doc, list, 0, i))
			nodes = append(nodes, before)
			lead = before.Size()
		}
		nodes = append(nodes, childNodes(doc, wrapper, 0, doc.ChildCount(wrapper))...)
		if i+1 < n {
			nodes = append(nodes, listOf(childNodes(doc, list, i+1, n)))
		}
	default:
		return false
	}

	start := doc.PosBefore(container)
	tr := s.Tr()
	if err := tr.Replace(start, after(doc, container), nodes...); err != nil {
		return false
	}
	tr.SetSelection(state.Cursor(start + lead + 1 + offset))
	tr.SetMeta(state.MetaOrigin, OriginBlock)
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// InsertDivider inserts a horizontal rule. An empty paragraph is replaced
// by the rule; otherwise the rule goes after the cursor's textblock. An
// empty paragraph follows the rule and receives the cursor.
func InsertDivider(s *state.State, dispatch Dispatch) bool {
	doc := s.Doc()
	rp, ok := Textblock(doc, s.Selection().Head)
	if !ok {
		return false
	}
	tb := rp.Parent()
	from, to := after(doc, tb), after(doc, tb)
	if doc.Kind(tb) == document.KindParagraph && doc.IsEmptyTextblock(tb) && allows(doc, tb, document.KindHorizontalRule) {
		from = doc.PosBefore(tb)
	}
	tr := s.Tr()
	if err := tr.Replace(from, to, document.HR(), document.P()); err != nil {
		return false
	}
	tr.SetSelection(state.Cursor(from + 2))
	tr.SetMeta(state.MetaOrigin, OriginBlock)
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}
