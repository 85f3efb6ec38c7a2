package command

import (
	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/pipeline"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

// InsertText replaces the selection with text. The text carries the
// stored marks when set and the marks at the cursor otherwise.
func InsertText(text string) Command {
	return func(s *state.State, dispatch Dispatch) bool {
		if text == "" {
			return false
		}
		sel := s.Selection()
		if _, ok := Textblock(s.Doc(), sel.From()); !ok {
			return false
		}
		tr := s.Tr()
		if err := tr.InsertText(text, sel.From(), sel.To()); err != nil {
			return false
		}
		rp, ok := Textblock(tr.Doc(), sel.From())
		if !ok {
			return false
		}
		size := 0
		for _, n := range state.TextNodes(tr.Doc().Kind(rp.Parent()), text, nil) {
			size += n.Size()
		}
		tr.SetSelection(state.Cursor(sel.From() + size))
		tr.SetMeta(state.MetaOrigin, pipeline.OriginText)
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
}

// DeleteSelection removes a non-empty selection. The marks of the removed
// text become the stored marks so typing continues in the same format.
func DeleteSelection(s *state.State, dispatch Dispatch) bool {
	sel := s.Selection()
	if sel.Empty() {
		return false
	}
	doc := s.Doc()
	tr := s.Tr()
	if err := tr.DeleteRange(sel.From(), sel.To()); err != nil {
		return false
	}
	tr.SetSelection(state.Cursor(sel.From()))
	if marks := marksAcross(doc, sel.From()); len(marks) > 0 {
		tr.SetStoredMarks(marks)
	}
	tr.SetMeta(state.MetaOrigin, pipeline.OriginDelete)
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// DeleteBackward handles Backspace outside toggles: it deletes the
// selection or the character before the cursor; at the start of a block
// it resets headings and code blocks, lifts the block out of its wrapper,
// removes a preceding divider or joins the block into the previous one.
func DeleteBackward(s *state.State, dispatch Dispatch) bool {
	sel := s.Selection()
	if !sel.Empty() {
		return DeleteSelection(s, dispatch)
	}
	doc := s.Doc()
	rp, ok := Textblock(doc, sel.Head)
	if !ok {
		return false
	}
	if !rp.AtStart() {
		from := sel.Head - 1
		tr := s.Tr()
		if err := tr.Delete(from, sel.Head); err != nil {
			return false
		}
		tr.SetSelection(state.Cursor(from))
		if marks := marksAcross(doc, from); len(marks) > 0 {
			tr.SetStoredMarks(marks)
		}
		tr.SetMeta(state.MetaOrigin, pipeline.OriginDelete)
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
	return Chain(resetBlockType, liftAtStart, removeDividerBefore, JoinBackward)(s, dispatch)
}

// resetBlockType turns a heading or code block into a paragraph when the
// cursor sits at its start.
func resetBlockType(s *state.State, dispatch Dispatch) bool {
	rp, ok := Textblock(s.Doc(), s.Selection().Head)
	if !ok || !rp.AtStart() {
		return false
	}
	switch s.Doc().Kind(rp.Parent()) {
	case document.KindHeading, document.KindCodeBlock:
		return SetBlockType(document.KindParagraph, nil)(s, dispatch)
	}
	return false
}

// liftAtStart lifts the first block of a quote or list item out of its
// wrapper when the cursor sits at its start.
func liftAtStart(s *state.State, dispatch Dispatch) bool {
	doc := s.Doc()
	rp, ok := Textblock(doc, s.Selection().Head)
	if !ok || !rp.AtStart() {
		return false
	}
	tb := rp.Parent()
	if !isWrapper(doc.Kind(doc.Parent(tb))) || doc.Index(tb) != 0 {
		return false
	}
	return Lift(s, dispatch)
}

func removeDividerBefore(s *state.State, dispatch Dispatch) bool {
	doc := s.Doc()
	rp, ok := Textblock(doc, s.Selection().Head)
	if !ok || !rp.AtStart() {
		return false
	}
	tb := rp.Parent()
	prev := doc.Child(doc.Parent(tb), doc.Index(tb)-1)
	if prev == document.NoNode || doc.Kind(prev) != document.KindHorizontalRule {
		return false
	}
	tr := s.Tr()
	pos := doc.PosBefore(prev)
	if err := tr.Delete(pos, pos+doc.Size(prev)); err != nil {
		return false
	}
	tr.SetMeta(state.MetaOrigin, pipeline.OriginDelete)
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// JoinBackward merges the cursor's textblock into the previous visible
// textblock when the cursor sits at its start. When the previous
// textblock is hidden in a closed toggle, the cursor moves to the end of
// the nearest visible textblock instead.
func JoinBackward(s *state.State, dispatch Dispatch) bool {
	doc := s.Doc()
	rp, ok := Textblock(doc, s.Selection().Head)
	if !ok || !rp.AtStart() {
		return false
	}
	tb := rp.Parent()
	all := doc.Textblocks()
	idx := indexOf(all, tb)
	if idx <= 0 {
		return false
	}
	prev := all[idx-1]
	if state.Hidden(doc, prev) {
		visible := VisibleTextblocks(doc)
		i := indexOf(visible, tb)
		if i <= 0 {
			return false
		}
		tr := s.Tr().SetSelection(state.Cursor(doc.ContentEnd(visible[i-1])))
		tr.SetMeta(state.MetaOrigin, OriginMove)
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}

	// Remove the highest ancestor that holds nothing but this textblock.
	top := tb
	for {
		p := doc.Parent(top)
		if p == doc.Root() || doc.ChildCount(p) != 1 || doc.Kind(p) == document.KindToggle {
			break
		}
		top = p
	}
	inline := document.InlineFor(doc.Kind(prev), doc.Node(tb).Content)
	joinPos := doc.ContentEnd(prev)

	tr := s.Tr()
	if err := tr.Delete(doc.PosBefore(top), after(doc, top)); err != nil {
		return false
	}
	if len(inline) > 0 {
		if err := tr.Insert(joinPos, inline...); err != nil {
			return false
		}
	}
	tr.SetSelection(state.Cursor(joinPos))
	tr.SetMeta(state.MetaOrigin, pipeline.OriginDelete)
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// SelectAll selects the whole visible text of the document.
func SelectAll(s *state.State, dispatch Dispatch) bool {
	doc := s.Doc()
	start, end := state.AtStart(doc), state.AtEnd(doc)
	sel := state.Range(start.Head, end.Head)
	if sel == s.Selection() {
		return false
	}
	if dispatch != nil {
		dispatch(s.Tr().SetSelection(sel).SetMeta(state.MetaOrigin, OriginMove))
	}
	return true
}

func indexOf(ids []document.NodeID, id document.NodeID) int {
	for i, x := range ids {
		if x == id {
			return i
		}
	}
	return -1
}
