package state

import (
	"errors"
	"fmt"

	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/transform"
)

// ErrSelectionMapping indicates that no valid selection exists in a
// document that has textblocks.
var ErrSelectionMapping = errors.New("selection cannot be mapped")

// Selection is a text range from Anchor to Head. Head is the moving end.
type Selection struct {
	Anchor int `json:"anchor"`
	Head   int `json:"head"`
}

// Cursor returns an empty selection at pos.
func Cursor(pos int) Selection { return Selection{Anchor: pos, Head: pos} }

// Range returns a selection from anchor to head.
func Range(anchor, head int) Selection { return Selection{Anchor: anchor, Head: head} }

// Empty reports whether the selection is a single point.
func (s Selection) Empty() bool { return s.Anchor == s.Head }

// From returns the smaller end.
func (s Selection) From() int { return min(s.Anchor, s.Head) }

// To returns the larger end.
func (s Selection) To() int { return max(s.Anchor, s.Head) }

func (s Selection) String() string {
	if s.Empty() {
		return fmt.Sprintf("cursor(%d)", s.Head)
	}
	return fmt.Sprintf("range(%d,%d)", s.Anchor, s.Head)
}

// ValidPos reports whether pos lies inside a textblock of doc.
func ValidPos(doc *document.Document, pos int) bool {
	rp, err := doc.Resolve(pos)
	return err == nil && rp.InTextblock()
}

// Valid reports whether both ends of s are valid in doc. In a document
// without textblocks only position 0 is valid.
func (s Selection) Valid(doc *document.Document) bool {
	if len(doc.Textblocks()) == 0 {
		return s.Anchor == 0 && s.Head == 0
	}
	return ValidPos(doc, s.Anchor) && ValidPos(doc, s.Head)
}

// Hidden reports whether id sits in the body of a closed toggle.
func Hidden(doc *document.Document, id document.NodeID) bool {
	child := id
	for p := doc.Parent(id); p != document.NoNode; p = doc.Parent(p) {
		if doc.Kind(p) == document.KindToggle && !doc.Attrs(p).Bool("open") &&
			doc.Kind(child) != document.KindToggleSummary {
			return true
		}
		child = p
	}
	return false
}

// Near returns the valid text position closest to pos. Positions in the
// hidden body of a closed toggle are only used when no visible textblock
// exists. On a tie, bias < 0 prefers the earlier position. ok is false
// when doc has no textblocks.
func Near(doc *document.Document, pos, bias int) (int, bool) {
	pos = max(0, min(pos, doc.ContentSize()))
	if ValidPos(doc, pos) && !hiddenAt(doc, pos) {
		return pos, true
	}
	if p, ok := nearest(doc, pos, bias, true); ok {
		return p, true
	}
	return nearest(doc, pos, bias, false)
}

func hiddenAt(doc *document.Document, pos int) bool {
	rp, err := doc.Resolve(pos)
	return err == nil && Hidden(doc, rp.Parent())
}

func nearest(doc *document.Document, pos, bias int, visibleOnly bool) (int, bool) {
	best, bestDist := -1, -1
	for _, id := range doc.Textblocks() {
		if visibleOnly && Hidden(doc, id) {
			continue
		}
		start, end := doc.ContentStart(id), doc.ContentEnd(id)
		cand, dist := pos, 0
		switch {
		case pos < start:
			cand, dist = start, start-pos
		case pos > end:
			cand, dist = end, pos-end
		}
		// candidates arrive in document order: a later candidate only
		// wins a tie when the bias points forward.
		if best < 0 || dist < bestDist || dist == bestDist && bias > 0 && cand > pos {
			best, bestDist = cand, dist
		}
	}
	return best, best >= 0
}

// AtStart returns a cursor at the first visible text position of doc.
func AtStart(doc *document.Document) Selection {
	p, ok := Near(doc, 0, 1)
	if !ok {
		return Cursor(0)
	}
	return Cursor(p)
}

// AtEnd returns a cursor at the last visible text position of doc.
func AtEnd(doc *document.Document) Selection {
	p, ok := Near(doc, doc.ContentSize(), -1)
	if !ok {
		return Cursor(0)
	}
	return Cursor(p)
}

// MapSelection carries sel through mapping into doc. Each end is mapped and,
// if it was deleted or no longer lies in a textblock, clamped to the
// nearest valid position. A document without textblocks yields Cursor(0).
func MapSelection(doc *document.Document, sel Selection, mapping *transform.Mapping) (Selection, error) {
	if len(doc.Textblocks()) == 0 {
		return Cursor(0), nil
	}
	anchor, err := mapEnd(doc, sel.Anchor, mapping)
	if err != nil {
		return sel, err
	}
	head, err := mapEnd(doc, sel.Head, mapping)
	if err != nil {
		return sel, err
	}
	return Selection{Anchor: anchor, Head: head}, nil
}

func mapEnd(doc *document.Document, pos int, mapping *transform.Mapping) (int, error) {
	r := mapping.MapResult(pos, 1)
	if ValidPos(doc, r.Pos) {
		return r.Pos, nil
	}
	bias := 1
	if r.Deleted {
		bias = -1
	}
	p, ok := Near(doc, r.Pos, bias)
	if !ok {
		return 0, fmt.Errorf("%w: %d mapped to %d", ErrSelectionMapping, pos, r.Pos)
	}
	return p, nil
}
