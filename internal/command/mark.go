package command

import (
	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

// ToggleMark adds mark to the selected text, or removes it when all of the
// selected text already carries it. With an empty selection the stored
// marks are toggled instead.
func ToggleMark(mark document.Mark) Command {
	return func(s *state.State, dispatch Dispatch) bool {
		doc := s.Doc()
		sel := s.Selection()
		if sel.Empty() {
			rp, ok := Textblock(doc, sel.Head)
			if !ok || !doc.Kind(rp.Parent()).AllowsMarks() {
				return false
			}
			active := s.ActiveMarks()
			next := active.Add(mark)
			if active.Has(mark.Type) {
				next = active.Remove(mark.Type)
			}
			if dispatch != nil {
				dispatch(s.Tr().SetStoredMarks(next).SetMeta(state.MetaOrigin, OriginFormat))
			}
			return true
		}

		found, all := false, true
		doc.NodesBetween(sel.From(), sel.To(), func(id document.NodeID, _ int) bool {
			if doc.Kind(id) != document.KindText || !doc.Kind(doc.Parent(id)).AllowsMarks() {
				return true
			}
			found = true
			if !doc.Marks(id).Has(mark.Type) {
				all = false
			}
			return true
		})
		if !found {
			return false
		}
		tr := s.Tr()
		var err error
		if all {
			err = tr.RemoveMark(sel.From(), sel.To(), mark)
		} else {
			err = tr.AddMark(sel.From(), sel.To(), mark)
		}
		if err != nil {
			return false
		}
		tr.SetMeta(state.MetaOrigin, OriginFormat)
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
}

// MarkActive reports whether the next typed character or all of the
// selected text carries a mark of type t.
func MarkActive(s *state.State, t document.MarkType) bool {
	sel := s.Selection()
	if sel.Empty() {
		return s.ActiveMarks().Has(t)
	}
	doc := s.Doc()
	found, all := false, true
	doc.NodesBetween(sel.From(), sel.To(), func(id document.NodeID, _ int) bool {
		if doc.Kind(id) == document.KindText {
			found = true
			all = all && doc.Marks(id).Has(t)
		}
		return true
	})
	return found && all
}
