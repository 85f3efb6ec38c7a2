// Package trailing keeps an empty paragraph at the end of every document so
// the user can always leave a list, quote, toggle or code block at the end
// of the page.
package trailing

import (
	"github.com/rs/zerolog"

	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

// Name identifies the enforcer in the pipeline.
const Name = "trailing"

// Origin is recorded on transactions built by the enforcer.
const Origin = "policy.trailing"

// Enforcer appends the trailing paragraph when it is missing.
type Enforcer struct {
	logger zerolog.Logger
}

// New creates an enforcer logging to l.
func New(l zerolog.Logger) *Enforcer {
	return &Enforcer{logger: l}
}

// Name implements pipeline.Interceptor.
func (e *Enforcer) Name() string { return Name }

// Satisfied reports whether doc ends with an empty paragraph.
func Satisfied(doc *document.Document) bool {
	last := doc.LastChild(doc.Root())
	return last != document.NoNode &&
		doc.Kind(last) == document.KindParagraph &&
		doc.IsEmptyTextblock(last)
}

// Amend appends an empty paragraph when the document does not end with
// one. The selection is mapped through the insertion and clamped when it
// no longer resolves; when even that fails the commit is left alone.
func (e *Enforcer) Amend(_ []*state.Transaction, _, next *state.State) *state.Transaction {
	doc := next.Doc()
	if Satisfied(doc) {
		return nil
	}
	tr := next.Tr()
	if err := tr.Insert(doc.ContentSize(), document.P()); err != nil {
		e.logger.Warn().Err(err).Msg("append trailing paragraph")
		return nil
	}
	sel, err := state.MapSelection(tr.Doc(), next.Selection(), tr.Mapping())
	if err != nil {
		e.logger.Warn().Err(err).Str("selection", next.Selection().String()).Msg("trailing paragraph skipped")
		return nil
	}
	tr.SetSelection(sel)
	if stored, set := next.StoredMarks(); set {
		tr.SetStoredMarks(stored)
	}
	tr.SetMeta(state.MetaOrigin, Origin)
	return tr
}
