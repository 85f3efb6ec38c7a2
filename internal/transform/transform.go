package transform

import (
	"github.com/nahidnstu12/team-docs-sub001/internal/document"
)

// Transform accumulates steps applied to a document.
type Transform struct {
	before  *document.Document
	doc     *document.Document
	steps   []Step
	docs    []*document.Document
	mapping *Mapping
}

// New returns a transform starting at doc.
func New(doc *document.Document) *Transform {
	return &Transform{before: doc, doc: doc, mapping: NewMapping()}
}

// Before returns the document the transform started from.
func (t *Transform) Before() *document.Document { return t.before }

// Doc returns the current document.
func (t *Transform) Doc() *document.Document { return t.doc }

// Steps returns the applied steps.
func (t *Transform) Steps() []Step { return t.steps }

// Docs returns the document each step was applied to.
func (t *Transform) Docs() []*document.Document { return t.docs }

// Mapping returns the composed mapping of all steps.
func (t *Transform) Mapping() *Mapping { return t.mapping }

// DocChanged reports whether any step was applied.
func (t *Transform) DocChanged() bool { return len(t.steps) > 0 }

// RemovedContent reports whether any applied step removed content.
func (t *Transform) RemovedContent() bool {
	for _, s := range t.steps {
		if s.RemovesContent() {
			return true
		}
	}
	return false
}

// Step applies s. On error the transform is unchanged.
func (t *Transform) Step(s Step) error {
	next, err := s.Apply(t.doc)
	if err != nil {
		return err
	}
	t.steps = append(t.steps, s)
	t.docs = append(t.docs, t.doc)
	t.mapping.Append(s.Map())
	t.doc = next
	return nil
}

// Inverted returns steps that undo the transform, in application order.
func (t *Transform) Inverted() []Step {
	out := make([]Step, len(t.steps))
	for i := range t.steps {
		j := len(t.steps) - 1 - i
		out[i] = t.steps[j].Invert(t.docs[j])
	}
	return out
}

// Replace replaces [from, to) with content.
func (t *Transform) Replace(from, to int, content ...document.Node) error {
	if from == to && len(content) == 0 {
		return nil
	}
	return t.Step(&ReplaceStep{From: from, To: to, Content: content})
}

// Insert inserts content at pos.
func (t *Transform) Insert(pos int, content ...document.Node) error {
	return t.Replace(pos, pos, content...)
}

// Delete removes [from, to).
func (t *Transform) Delete(from, to int) error {
	return t.Replace(from, to)
}

// SetNodeAttrs merges attrs into the node starting at pos.
func (t *Transform) SetNodeAttrs(pos int, attrs document.Attrs) error {
	return t.Step(&AttrStep{Pos: pos, Attrs: attrs})
}

// AddMark adds mark to the text in [from, to).
func (t *Transform) AddMark(from, to int, mark document.Mark) error {
	if from >= to {
		return nil
	}
	return t.Step(&MarkStep{From: from, To: to, Mark: mark})
}

// RemoveMark removes marks of mark's type from the text in [from, to).
func (t *Transform) RemoveMark(from, to int, mark document.Mark) error {
	if from >= to {
		return nil
	}
	return t.Step(&MarkStep{From: from, To: to, Mark: mark, Remove: true})
}
