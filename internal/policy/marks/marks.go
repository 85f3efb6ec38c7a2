// Package marks keeps inline formatting from leaking into text typed after
// a deletion or a line break.
//
// Two rules apply outside exempt containers (code blocks, quotes, toggles
// and task items by default):
//
//   - after a commit that removed content leaves the cursor in an empty
//     paragraph, stored marks are cleared;
//   - before Enter splits a block, stored marks are set to the empty set
//     so the new block starts unformatted.
package marks

import (
	"github.com/rs/zerolog"

	"github.com/nahidnstu12/team-docs-sub001/internal/command"
	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
	"github.com/nahidnstu12/team-docs-sub001/internal/transform"
)

// Name identifies the policy in the pipeline.
const Name = "marks"

// Origin is recorded on transactions built by the policy.
const Origin = "policy.marks"

// DefaultExempt lists the containers inside which marks are never cleared.
var DefaultExempt = []document.Kind{
	document.KindCodeBlock,
	document.KindBlockquote,
	document.KindToggle,
	document.KindToggleSummary,
	document.KindTaskItem,
}

// Option configures a Policy.
type Option func(*Policy)

// WithExempt replaces the exempt container kinds.
func WithExempt(kinds ...document.Kind) Option {
	return func(p *Policy) {
		p.exempt = make(map[document.Kind]bool, len(kinds))
		for _, k := range kinds {
			p.exempt[k] = true
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Policy) { p.logger = l }
}

// Policy is the mark policy enforcer.
type Policy struct {
	exempt map[document.Kind]bool
	logger zerolog.Logger
}

// New creates a policy.
func New(opts ...Option) *Policy {
	p := &Policy{logger: zerolog.Nop()}
	WithExempt(DefaultExempt...)(p)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements pipeline.Interceptor.
func (p *Policy) Name() string { return Name }

// Exempt reports whether rp lies inside an exempt container.
func (p *Policy) Exempt(rp *document.ResolvedPos) bool {
	doc := rp.Doc()
	for d := rp.Depth(); d >= 0; d-- {
		if p.exempt[doc.Kind(rp.Node(d))] {
			return true
		}
	}
	return false
}

// Amend clears stored marks after a deletion that leaves the cursor in an
// empty paragraph outside exempt containers. It returns nil when there is
// nothing to clear, so an already clean state is never touched again.
func (p *Policy) Amend(trs []*state.Transaction, _, next *state.State) *state.Transaction {
	if !removedContent(trs) {
		return nil
	}
	sel := next.Selection()
	if !sel.Empty() {
		return nil
	}
	doc := next.Doc()
	rp, ok := command.Textblock(doc, sel.Head)
	if !ok {
		return nil
	}
	tb := rp.Parent()
	if doc.Kind(tb) != document.KindParagraph || !doc.IsEmptyTextblock(tb) || p.Exempt(rp) {
		return nil
	}
	stored, set := next.StoredMarks()
	if !set || len(stored) == 0 {
		return nil
	}
	p.logger.Debug().Str("marks", stored.String()).Int("pos", sel.Head).Msg("clearing stored marks after deletion")
	tr := next.Tr().ClearStoredMarks()
	tr.SetMeta(state.MetaOrigin, Origin)
	return tr
}

// PreEnter clears the stored marks before Enter splits a block outside
// exempt containers. It never reports that it applied, so the Enter chain
// always continues to the split.
func (p *Policy) PreEnter(s *state.State, dispatch command.Dispatch) bool {
	sel := s.Selection()
	if !sel.Empty() || dispatch == nil {
		return false
	}
	rp, ok := command.Textblock(s.Doc(), sel.Head)
	if !ok || p.Exempt(rp) {
		return false
	}
	if stored, set := s.StoredMarks(); set && len(stored) == 0 {
		return false
	}
	tr := s.Tr().ClearStoredMarks()
	tr.SetMeta(state.MetaOrigin, Origin)
	dispatch(tr)
	return false
}

// removedContent reports whether any step replaced a range with less
// content than it held.
func removedContent(trs []*state.Transaction) bool {
	for _, tr := range trs {
		for _, s := range tr.Steps() {
			if s.RemovesContent() {
				return true
			}
			if rs, ok := s.(*transform.ReplaceStep); ok && size(rs.Content) < rs.To-rs.From {
				return true
			}
		}
	}
	return false
}

func size(content []document.Node) int {
	n := 0
	for _, c := range content {
		n += c.Size()
	}
	return n
}
