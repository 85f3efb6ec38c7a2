package state

import (
	"errors"
	"fmt"

	"github.com/nahidnstu12/team-docs-sub001/internal/document"
)

// ErrStaleTransaction indicates a transaction built on another document.
var ErrStaleTransaction = errors.New("transaction was built on a different document")

// State is an immutable editor state.
type State struct {
	doc       *document.Document
	selection Selection
	stored    document.MarkSet
	storedSet bool
}

// New returns a state for doc with sel clamped to a valid position.
func New(doc *document.Document, sel Selection) *State {
	if !sel.Valid(doc) {
		anchor, _ := Near(doc, sel.Anchor, 1)
		head, _ := Near(doc, sel.Head, 1)
		sel = Selection{Anchor: anchor, Head: head}
	}
	return &State{doc: doc, selection: sel}
}

// Doc returns the document.
func (s *State) Doc() *document.Document { return s.doc }

// Selection returns the selection.
func (s *State) Selection() Selection { return s.selection }

// StoredMarks returns the stored marks and whether they are set. Unset
// stored marks are derived from the text at the cursor.
func (s *State) StoredMarks() (document.MarkSet, bool) { return s.stored, s.storedSet }

// ActiveMarks returns the marks the next typed character receives.
func (s *State) ActiveMarks() document.MarkSet {
	if s.storedSet {
		return s.stored
	}
	rp, err := s.doc.Resolve(s.selection.Head)
	if err != nil {
		return nil
	}
	return rp.Marks()
}

// Tr starts a transaction on this state.
func (s *State) Tr() *Transaction { return newTransaction(s) }

// Apply returns the state produced by tr.
func (s *State) Apply(tr *Transaction) (*State, error) {
	if tr.Before() != s.doc {
		return nil, ErrStaleTransaction
	}
	sel, err := tr.Selection()
	if err != nil {
		return nil, fmt.Errorf("apply: %w", err)
	}
	next := &State{doc: tr.Doc(), selection: sel}
	switch {
	case tr.storedSet:
		next.stored, next.storedSet = tr.stored, true
	case tr.DocChanged() || tr.selSet:
	default:
		next.stored, next.storedSet = s.stored, s.storedSet
	}
	return next, nil
}

func (s *State) String() string {
	marks := "derived"
	if s.storedSet {
		marks = s.stored.String()
	}
	return fmt.Sprintf("%s %s marks=%s", s.doc, s.selection, marks)
}
