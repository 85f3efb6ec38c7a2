package command

import (
	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

// Direction is a cursor movement.
type Direction uint8

// Directions.
const (
	Left Direction = iota
	Right
	Up
	Down
	Home
	End
)

// Move moves the cursor, or with extend the selection head. Movement skips
// the bodies of closed toggles.
func Move(dir Direction, extend bool) Command {
	return func(s *state.State, dispatch Dispatch) bool {
		doc := s.Doc()
		sel := s.Selection()
		if !extend && !sel.Empty() && (dir == Left || dir == Right) {
			pos := sel.From()
			if dir == Right {
				pos = sel.To()
			}
			return moveTo(s, dispatch, state.Cursor(pos))
		}
		rp, ok := Textblock(doc, sel.Head)
		if !ok {
			return false
		}
		head, ok := target(doc, rp, dir)
		if !ok || head == sel.Head {
			return false
		}
		next := state.Cursor(head)
		if extend {
			next = state.Range(sel.Anchor, head)
		}
		return moveTo(s, dispatch, next)
	}
}

func moveTo(s *state.State, dispatch Dispatch, sel state.Selection) bool {
	if sel == s.Selection() {
		return false
	}
	if dispatch != nil {
		dispatch(s.Tr().SetSelection(sel).SetMeta(state.MetaOrigin, OriginMove))
	}
	return true
}

func target(doc *document.Document, rp *document.ResolvedPos, dir Direction) (int, bool) {
	tb := rp.Parent()
	start, end := doc.ContentStart(tb), doc.ContentEnd(tb)
	blocks := VisibleTextblocks(doc)
	i := indexOf(blocks, tb)
	switch dir {
	case Home:
		return start, true
	case End:
		return end, true
	case Left:
		if rp.Pos > start {
			return rp.Pos - 1, true
		}
		if i > 0 {
			return doc.ContentEnd(blocks[i-1]), true
		}
	case Right:
		if rp.Pos < end {
			return rp.Pos + 1, true
		}
		if i >= 0 && i+1 < len(blocks) {
			return doc.ContentStart(blocks[i+1]), true
		}
	case Up:
		if i > 0 {
			prev := blocks[i-1]
			return doc.ContentStart(prev) + min(rp.Pos-start, doc.NodeContentSize(prev)), true
		}
		return start, true
	case Down:
		if i >= 0 && i+1 < len(blocks) {
			next := blocks[i+1]
			return doc.ContentStart(next) + min(rp.Pos-start, doc.NodeContentSize(next)), true
		}
		return end, true
	}
	return 0, false
}
