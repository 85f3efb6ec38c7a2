// Package toggle implements collapsible blocks: a summary line followed by
// body blocks that can be shown or hidden.
//
// The open state lives in the toggle's "open" attribute and only ever
// changes through an attribute step, so opening and closing are single
// undo entries. A toggle is open when created and moves between open and
// closed until Backspace removes it or demotes it to a paragraph.
package toggle

import (
	"github.com/rs/zerolog"

	"github.com/nahidnstu12/team-docs-sub001/internal/command"
	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

// DefaultHitZone is the width of the summary header strip, from its left
// edge, in which a click opens or closes the toggle.
const DefaultHitZone = 32

// Origin is recorded on transactions built by the controller.
const Origin = "toggle"

// Action names registered by Register.
const (
	ActionInsert = "toggle.insert"
	ActionToggle = "toggle.toggle"
	ActionOpen   = "toggle.open"
	ActionClose  = "toggle.close"
)

// Option configures a Controller.
type Option func(*Controller)

// WithHitZone sets the click hit zone width.
func WithHitZone(w int) Option {
	return func(c *Controller) { c.hitZone = w }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller holds the toggle commands and their settings.
type Controller struct {
	hitZone int
	logger  zerolog.Logger
}

// New creates a controller.
func New(opts ...Option) *Controller {
	c := &Controller{hitZone: DefaultHitZone, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HitZone returns the click hit zone width.
func (c *Controller) HitZone() int { return c.hitZone }

// SetHitZone changes the click hit zone width.
func (c *Controller) SetHitZone(w int) { c.hitZone = w }

// Register adds the toggle commands to r.
func (c *Controller) Register(r *command.Registry) {
	r.Register(ActionInsert, Insert)
	r.Register(ActionToggle, func(s *state.State, dispatch command.Dispatch) bool {
		return ToggleAt(s.Selection().Head)(s, dispatch)
	})
	r.Register(ActionOpen, func(s *state.State, dispatch command.Dispatch) bool {
		return SetOpen(s.Selection().Head, true)(s, dispatch)
	})
	r.Register(ActionClose, func(s *state.State, dispatch command.Dispatch) bool {
		return SetOpen(s.Selection().Head, false)(s, dispatch)
	})
}

// Find returns the toggle starting at pos or, failing that, the innermost
// toggle containing pos.
func Find(doc *document.Document, pos int) (document.NodeID, bool) {
	rp, err := doc.Resolve(pos)
	if err != nil {
		return document.NoNode, false
	}
	if after := rp.NodeAfter(); after != document.NoNode && doc.Kind(after) == document.KindToggle && !rp.InTextblock() {
		return after, true
	}
	d := rp.Ancestor(func(k document.Kind) bool { return k == document.KindToggle })
	if d < 0 {
		return document.NoNode, false
	}
	return rp.Node(d), true
}

// Summary returns the summary of toggle id.
func Summary(doc *document.Document, id document.NodeID) document.NodeID {
	return doc.Child(id, 0)
}

// IsOpen reports whether toggle id is open.
func IsOpen(doc *document.Document, id document.NodeID) bool {
	return doc.Attrs(id).Bool("open")
}

// Insert creates an open toggle with an empty summary and an empty body
// paragraph. It replaces the cursor's paragraph when that is empty and is
// placed after the cursor's block otherwise. The cursor moves into the
// summary.
func Insert(s *state.State, dispatch command.Dispatch) bool {
	doc := s.Doc()
	rp, ok := command.Textblock(doc, s.Selection().Head)
	if !ok {
		return false
	}
	tb := rp.Parent()
	from := doc.PosBefore(tb) + doc.Size(tb)
	to := from
	// the first paragraph of a list item cannot be swapped for a toggle
	leading := isItem(doc.Kind(doc.Parent(tb))) && doc.Index(tb) == 0
	if doc.Kind(tb) == document.KindParagraph && doc.IsEmptyTextblock(tb) && !leading {
		from = doc.PosBefore(tb)
	}
	tr := s.Tr()
	if err := tr.Replace(from, to, document.Toggle(true, "", document.P())); err != nil {
		return false
	}
	tr.SetSelection(state.Cursor(from + 2))
	tr.SetMeta(state.MetaOrigin, Origin)
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// SetOpen opens or closes the toggle at pos. Closing a toggle whose body
// holds the cursor moves the cursor to the end of the summary.
func SetOpen(pos int, open bool) command.Command {
	return func(s *state.State, dispatch command.Dispatch) bool {
		doc := s.Doc()
		id, ok := Find(doc, pos)
		if !ok || IsOpen(doc, id) == open {
			return false
		}
		tr := s.Tr()
		if err := tr.SetNodeAttrs(doc.PosBefore(id), document.Attrs{"open": open}); err != nil {
			return false
		}
		if !open {
			sel := s.Selection()
			start, end := doc.ContentEnd(Summary(doc, id)), doc.ContentEnd(id)
			if sel.Head > start && sel.Head <= end || sel.Anchor > start && sel.Anchor <= end {
				tr.SetSelection(state.Cursor(start))
			}
		}
		tr.SetMeta(state.MetaOrigin, Origin)
		if dispatch != nil {
			dispatch(tr)
		}
		return true
	}
}

// ToggleAt flips the open state of the toggle at pos.
func ToggleAt(pos int) command.Command {
	return func(s *state.State, dispatch command.Dispatch) bool {
		id, ok := Find(s.Doc(), pos)
		if !ok {
			return false
		}
		return SetOpen(pos, !IsOpen(s.Doc(), id))(s, dispatch)
	}
}

// Click handles a pointer click at document position pos, x units from the
// left edge of the block it landed in. Inside a summary, a click within
// the hit zone flips the toggle and any other click puts the cursor at the
// end of the summary text.
func (c *Controller) Click(pos, x int) command.Command {
	return func(s *state.State, dispatch command.Dispatch) bool {
		doc := s.Doc()
		rp, ok := command.Textblock(doc, pos)
		if !ok || doc.Kind(rp.Parent()) != document.KindToggleSummary {
			return false
		}
		if x < c.hitZone {
			c.logger.Debug().Int("pos", pos).Int("x", x).Msg("toggle hit zone click")
			return ToggleAt(pos)(s, dispatch)
		}
		end := doc.ContentEnd(rp.Parent())
		if dispatch != nil {
			dispatch(s.Tr().SetSelection(state.Cursor(end)).SetMeta(state.MetaOrigin, command.OriginMove))
		}
		return true
	}
}

// Enter moves the cursor from a summary to the start of the first body
// block, opening the toggle when it is closed. Summaries never split.
func Enter(s *state.State, dispatch command.Dispatch) bool {
	doc := s.Doc()
	sel := s.Selection()
	rp, ok := command.Textblock(doc, sel.Head)
	if !ok || doc.Kind(rp.Parent()) != document.KindToggleSummary {
		return false
	}
	id := doc.Parent(rp.Parent())
	tr := s.Tr()
	if !IsOpen(doc, id) {
		if err := tr.SetNodeAttrs(doc.PosBefore(id), document.Attrs{"open": true}); err != nil {
			return false
		}
	}
	body := doc.Child(id, 1)
	var target int
	switch {
	case body == document.NoNode:
		pos := doc.ContentEnd(id)
		if err := tr.Insert(pos, document.P()); err != nil {
			return false
		}
		target = pos + 1
	default:
		first, ok := command.Textblock(doc, doc.ContentStart(body))
		if ok {
			target = first.Pos
		} else if p, ok := state.Near(tr.Doc(), doc.PosBefore(body), 1); ok {
			target = p
		}
	}
	tr.SetSelection(state.Cursor(target))
	tr.SetMeta(state.MetaOrigin, Origin)
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

// Backspace applies the toggle repair rules with the cursor at the start
// of a summary or of the only body block:
//
//   - empty summary: the toggle is removed;
//   - non-empty summary: the toggle becomes a paragraph holding the
//     summary text;
//   - empty sole body block: the toggle is removed.
//
// Removal and demotion discard the body.
func Backspace(s *state.State, dispatch command.Dispatch) bool {
	doc := s.Doc()
	sel := s.Selection()
	if !sel.Empty() {
		return false
	}
	rp, ok := command.Textblock(doc, sel.Head)
	if !ok || !rp.AtStart() {
		return false
	}
	tb := rp.Parent()
	parent := doc.Parent(tb)
	if doc.Kind(parent) != document.KindToggle {
		return false
	}

	var replacement []document.Node
	switch {
	case doc.Kind(tb) == document.KindToggleSummary && doc.IsEmptyTextblock(tb):
		replacement = nil
	case doc.Kind(tb) == document.KindToggleSummary:
		para := document.Node{
			Kind:    document.KindParagraph,
			Content: document.InlineFor(document.KindParagraph, doc.Node(tb).Content),
		}
		replacement = []document.Node{para}
	case doc.ChildCount(parent) == 2 && doc.IsEmptyTextblock(tb):
		replacement = nil
	default:
		return false
	}

	start := doc.PosBefore(parent)
	tr := s.Tr()
	if err := tr.Replace(start, start+doc.Size(parent), replacement...); err != nil {
		return false
	}
	switch {
	case len(replacement) > 0 && replacement[0].Kind.IsTextblock():
		tr.SetSelection(state.Cursor(start + 1))
	default:
		if p, ok := state.Near(tr.Doc(), start, -1); ok {
			tr.SetSelection(state.Cursor(p))
		} else {
			tr.SetSelection(state.Cursor(0))
		}
	}
	tr.SetMeta(state.MetaOrigin, Origin)
	if dispatch != nil {
		dispatch(tr)
	}
	return true
}

func isItem(k document.Kind) bool {
	return k == document.KindListItem || k == document.KindTaskItem
}
