package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/transform"
)

// ErrNotInTextblock indicates a text operation outside a textblock.
var ErrNotInTextblock = errors.New("position is not inside a textblock")

// Well known metadata keys.
const (
	// MetaAddToHistory holds a bool; false keeps the transaction out of undo history.
	MetaAddToHistory = "addToHistory"
	// MetaOrigin names the input that produced the transaction.
	MetaOrigin = "origin"
)

// Transaction is a Transform with selection, stored mark and metadata
// updates, built against one State.
type Transaction struct {
	*transform.Transform

	start     Selection
	sel       Selection
	selSet    bool
	stored    document.MarkSet
	storedSet bool
	meta      map[string]any

	startStored    document.MarkSet
	startStoredSet bool
}

func newTransaction(s *State) *Transaction {
	return &Transaction{
		Transform: transform.New(s.doc),
		start:     s.selection,
		meta:      map[string]any{},

		startStored:    s.stored,
		startStoredSet: s.storedSet,
	}
}

// StartSelection returns the selection of the state the transaction was
// built on.
func (tr *Transaction) StartSelection() Selection { return tr.start }

// Selection returns the selection after the transaction: the explicitly
// set one, or the start selection mapped through the steps.
func (tr *Transaction) Selection() (Selection, error) {
	if tr.selSet {
		return tr.sel, nil
	}
	if !tr.DocChanged() {
		return tr.start, nil
	}
	return MapSelection(tr.Doc(), tr.start, tr.Mapping())
}

// SetSelection sets the selection, clamping ends that are not valid in
// the current document.
func (tr *Transaction) SetSelection(sel Selection) *Transaction {
	doc := tr.Doc()
	if !sel.Valid(doc) {
		if a, ok := Near(doc, sel.Anchor, 1); ok {
			sel.Anchor = a
		}
		if h, ok := Near(doc, sel.Head, 1); ok {
			sel.Head = h
		}
	}
	tr.sel, tr.selSet = sel, true
	return tr
}

// SelectionSet reports whether the selection was set explicitly.
func (tr *Transaction) SelectionSet() bool { return tr.selSet }

// SetStoredMarks sets the stored marks; nil sets an explicitly empty set.
func (tr *Transaction) SetStoredMarks(marks document.MarkSet) *Transaction {
	tr.stored, tr.storedSet = marks, true
	return tr
}

// ClearStoredMarks sets explicitly empty stored marks.
func (tr *Transaction) ClearStoredMarks() *Transaction {
	return tr.SetStoredMarks(nil)
}

// StoredMarks returns the stored marks set on the transaction.
func (tr *Transaction) StoredMarks() (document.MarkSet, bool) { return tr.stored, tr.storedSet }

// StoredMarksSet reports whether the transaction sets stored marks.
func (tr *Transaction) StoredMarksSet() bool { return tr.storedSet }

// SetMeta attaches metadata.
func (tr *Transaction) SetMeta(key string, value any) *Transaction {
	tr.meta[key] = value
	return tr
}

// Meta returns metadata.
func (tr *Transaction) Meta(key string) any { return tr.meta[key] }

// AddToHistory reports whether the transaction should be recorded for undo.
func (tr *Transaction) AddToHistory() bool {
	v, ok := tr.meta[MetaAddToHistory].(bool)
	return !ok || v
}

// Origin returns the input origin recorded on the transaction.
func (tr *Transaction) Origin() string {
	v, _ := tr.meta[MetaOrigin].(string)
	return v
}

// Changed reports whether the transaction changes anything.
func (tr *Transaction) Changed() bool {
	return tr.DocChanged() || tr.selSet || tr.storedSet
}

// InsertText replaces [from, to) with text carrying the active marks:
// the stored marks if set, otherwise the marks derived at from.
func (tr *Transaction) InsertText(text string, from, to int) error {
	rp, err := tr.Doc().Resolve(from)
	if err != nil {
		return err
	}
	if !rp.InTextblock() {
		return fmt.Errorf("%w: %d", ErrNotInTextblock, from)
	}
	marks := rp.Marks()
	switch {
	case tr.storedSet:
		marks = tr.stored
	case tr.startStoredSet && !tr.DocChanged():
		marks = tr.startStored
	}
	nodes := TextNodes(tr.Doc().Kind(rp.Parent()), text, marks)
	if from != to {
		if err := tr.DeleteRange(from, to); err != nil {
			return err
		}
	}
	if len(nodes) == 0 {
		return nil
	}
	return tr.Insert(from, nodes...)
}

// ReplaceWith replaces [from, to) with nodes.
func (tr *Transaction) ReplaceWith(from, to int, nodes ...document.Node) error {
	return tr.Replace(from, to, nodes...)
}

// TextNodes converts text to inline nodes for a textblock of kind k.
// Newlines become hard breaks where allowed, stay literal in code blocks
// and become spaces elsewhere.
func TextNodes(k document.Kind, text string, marks document.MarkSet) []document.Node {
	if !k.AllowsMarks() {
		marks = nil
	}
	switch {
	case k == document.KindCodeBlock:
	case k.Accepts(document.KindHardBreak):
		var out []document.Node
		for i, line := range strings.Split(text, "\n") {
			if i > 0 {
				out = append(out, document.BR())
			}
			if line != "" {
				out = append(out, document.T(line, marks...))
			}
		}
		return out
	default:
		text = strings.ReplaceAll(text, "\n", " ")
	}
	if text == "" {
		return nil
	}
	return []document.Node{document.T(text, marks...)}
}
