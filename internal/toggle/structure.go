package toggle

import (
	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

// Name identifies the structure interceptor in the pipeline.
const Name = "toggle"

// Structure is the pipeline interceptor that gives every toggle at least
// one body block.
type Structure struct {
	c *Controller
}

// Structure returns the interceptor bound to c.
func (c *Controller) Structure() *Structure { return &Structure{c: c} }

// Name implements pipeline.Interceptor.
func (s *Structure) Name() string { return Name }

// Amend appends an empty paragraph to every toggle left without a body.
func (s *Structure) Amend(_ []*state.Transaction, _, next *state.State) *state.Transaction {
	doc := next.Doc()
	var bare []document.NodeID
	doc.Descendants(doc.Root(), func(id document.NodeID, _ int) bool {
		if doc.Kind(id) == document.KindToggle && doc.ChildCount(id) < 2 {
			bare = append(bare, id)
		}
		return !doc.Kind(id).IsTextblock()
	})
	if len(bare) == 0 {
		return nil
	}

	tr := next.Tr()
	// last to first, so earlier positions stay valid
	for i := len(bare) - 1; i >= 0; i-- {
		if err := tr.Insert(doc.ContentEnd(bare[i]), document.P()); err != nil {
			s.c.logger.Warn().Err(err).Int("pos", doc.PosBefore(bare[i])).Msg("toggle body repair")
			return nil
		}
	}
	sel, err := state.MapSelection(tr.Doc(), next.Selection(), tr.Mapping())
	if err != nil {
		s.c.logger.Warn().Err(err).Msg("toggle body repair skipped")
		return nil
	}
	tr.SetSelection(sel)
	if stored, set := next.StoredMarks(); set {
		tr.SetStoredMarks(stored)
	}
	tr.SetMeta(state.MetaOrigin, Origin)
	return tr
}
