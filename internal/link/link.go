// Package link implements the link dialog: creating a link from the
// selection and editing an existing link in place.
//
// Every link the dialog writes carries the editor's target and rel policy
// (document.LinkTarget, document.LinkRel) whatever the original mark held.
package link

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/nahidnstu12/team-docs-sub001/internal/command"
	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
	"github.com/nahidnstu12/team-docs-sub001/internal/validate"
)

// Errors returned by the controller.
var (
	ErrClosed          = errors.New("link dialog is not open")
	ErrNotInTextblock  = errors.New("link target is not inside a textblock")
	ErrNoLink          = errors.New("no link at position")
	ErrInvalid         = validate.ErrInvalid
	ErrStaleDialogSpan = errors.New("link range no longer fits the document")
)

// Origin is recorded on transactions built by the dialog.
const Origin = "link"

// Mode tells whether the dialog creates a new link or edits one.
type Mode int

// Dialog modes.
const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Field is the dialog input that receives typed text.
type Field int

// Dialog fields.
const (
	FieldText Field = iota
	FieldURL
)

func (f Field) String() string {
	if f == FieldURL {
		return "url"
	}
	return "text"
}

// Dialog is the open dialog's state. From and To delimit the document
// range the submitted link replaces.
type Dialog struct {
	Mode  Mode   `json:"mode"`
	Text  string `json:"text" validate:"required"`
	URL   string `json:"url" validate:"required,safeurl"`
	Field Field  `json:"field"`
	From  int    `json:"from"`
	To    int    `json:"to"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithValidator sets the validator.
func WithValidator(v *validate.Validator) Option {
	return func(c *Controller) { c.validator = v }
}

// Controller owns the link dialog.
type Controller struct {
	validator *validate.Validator
	logger    zerolog.Logger
	dialog    *Dialog
}

// New creates a controller with the dialog closed.
func New(opts ...Option) *Controller {
	c := &Controller{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	if c.validator == nil {
		c.validator = validate.New()
	}
	return c
}

// IsOpen reports whether the dialog is open.
func (c *Controller) IsOpen() bool { return c.dialog != nil }

// Dialog returns a copy of the open dialog.
func (c *Controller) Dialog() (Dialog, bool) {
	if c.dialog == nil {
		return Dialog{}, false
	}
	return *c.dialog, true
}

// OpenCreate opens the dialog in create mode over the selection. The
// selected text, clipped to the first textblock, prefills the text field
// and the URL field takes focus when there is one.
func (c *Controller) OpenCreate(s *state.State) error {
	doc := s.Doc()
	sel := s.Selection()
	rp, ok := command.Textblock(doc, sel.From())
	if !ok {
		return ErrNotInTextblock
	}
	to := min(sel.To(), rp.End(rp.Depth()))
	d := &Dialog{Mode: ModeCreate, From: sel.From(), To: to}
	d.Text = doc.TextBetween(d.From, d.To, " ")
	if d.Text != "" {
		d.Field = FieldURL
	}
	if m, ok := rp.Marks().Get(document.MarkLink); ok && d.From == d.To {
		d.URL = m.Href()
	}
	c.dialog = d
	return nil
}

// OpenEdit opens the dialog for the link under pos. The range covers the
// maximal run of adjacent text carrying the same link.
func (c *Controller) OpenEdit(s *state.State, pos int) error {
	from, to, mark, err := Range(s.Doc(), pos)
	if err != nil {
		return err
	}
	c.dialog = &Dialog{
		Mode:  ModeEdit,
		Text:  s.Doc().TextBetween(from, to, ""),
		URL:   mark.Href(),
		Field: FieldText,
		From:  from,
		To:    to,
	}
	return nil
}

// Cancel closes the dialog without changing the document.
func (c *Controller) Cancel() { c.dialog = nil }

// SetField moves input focus to f.
func (c *Controller) SetField(f Field) {
	if c.dialog != nil {
		c.dialog.Field = f
	}
}

// NextField cycles input focus between the fields.
func (c *Controller) NextField() {
	if c.dialog != nil {
		c.dialog.Field = (c.dialog.Field + 1) % 2
	}
}

// TypeRune appends r to the focused field.
func (c *Controller) TypeRune(r rune) {
	if c.dialog == nil {
		return
	}
	p := c.focused()
	*p += string(r)
}

// Backspace removes the last rune of the focused field.
func (c *Controller) Backspace() {
	if c.dialog == nil {
		return
	}
	p := c.focused()
	_, size := utf8.DecodeLastRuneInString(*p)
	*p = (*p)[:len(*p)-size]
}

// SetText replaces the display text.
func (c *Controller) SetText(text string) {
	if c.dialog != nil {
		c.dialog.Text = text
	}
}

// SetURL replaces the URL.
func (c *Controller) SetURL(u string) {
	if c.dialog != nil {
		c.dialog.URL = u
	}
}

func (c *Controller) focused() *string {
	if c.dialog.Field == FieldURL {
		return &c.dialog.URL
	}
	return &c.dialog.Text
}

// Submit validates the dialog and replaces its range with the display
// text carrying the link. The dialog stays open when validation fails and
// closes otherwise.
func (c *Controller) Submit(s *state.State, dispatch command.Dispatch) error {
	if c.dialog == nil {
		return ErrClosed
	}
	d := *c.dialog
	d.Text = strings.TrimSpace(d.Text)
	d.URL = strings.TrimSpace(d.URL)
	if err := c.validator.Validate(d); err != nil {
		c.logger.Debug().Err(err).Str("mode", d.Mode.String()).Msg("link dialog rejected")
		return err
	}

	tr, err := build(s, d)
	if err != nil {
		c.logger.Warn().Err(err).Int("from", d.From).Int("to", d.To).Msg("link not applied")
		c.dialog = nil
		return err
	}
	c.dialog = nil
	if dispatch != nil {
		dispatch(tr)
	}
	return nil
}

func build(s *state.State, d Dialog) (*state.Transaction, error) {
	doc := s.Doc()
	rp, ok := command.Textblock(doc, d.From)
	if !ok || d.To > rp.End(rp.Depth()) || d.To < d.From {
		return nil, fmt.Errorf("%w: [%d,%d)", ErrStaleDialogSpan, d.From, d.To)
	}
	kind := doc.Kind(rp.Parent())
	if !kind.AllowsMarks() {
		return nil, fmt.Errorf("%w: %s does not take marks", ErrNotInTextblock, kind)
	}
	marks := baseMarks(doc, rp, d).Remove(document.MarkLink).Add(document.Link(d.URL))
	nodes := state.TextNodes(kind, d.Text, marks)

	tr := s.Tr()
	if err := tr.Replace(d.From, d.To, nodes...); err != nil {
		return nil, err
	}
	size := 0
	for _, n := range nodes {
		size += n.Size()
	}
	tr.SetSelection(state.Cursor(d.From + size))
	tr.SetMeta(state.MetaOrigin, Origin)
	return tr, nil
}

// baseMarks returns the non-link formatting the new text inherits: that
// of the first replaced character, or of the text before the insertion
// point when nothing is replaced.
func baseMarks(doc *document.Document, rp *document.ResolvedPos, d Dialog) document.MarkSet {
	if d.To > d.From {
		if after, err := doc.Resolve(d.From + 1); err == nil {
			return after.Marks()
		}
	}
	return rp.Marks()
}

// Range returns the extent of the link under pos: the maximal run of
// adjacent inline nodes in the same textblock carrying an equal link mark.
func Range(doc *document.Document, pos int) (from, to int, mark document.Mark, err error) {
	rp, ok := command.Textblock(doc, pos)
	if !ok {
		return 0, 0, document.Mark{}, ErrNotInTextblock
	}
	tb := rp.Parent()
	children := doc.Children(tb)
	starts := make([]int, len(children)+1)
	starts[0] = doc.ContentStart(tb)
	for i, ch := range children {
		starts[i+1] = starts[i] + doc.Size(ch)
	}

	hit := -1
	for i := range children {
		if starts[i] <= pos && pos < starts[i+1] {
			hit = i
			break
		}
	}
	if m, ok := linkOf(doc, children, hit); ok {
		mark = m
	} else if hit = prevChild(starts, pos); hit >= 0 {
		// a click right after the link's last character
		if m, ok := linkOf(doc, children, hit); ok {
			mark = m
		} else {
			hit = -1
		}
	}
	if hit < 0 {
		return 0, 0, document.Mark{}, ErrNoLink
	}

	first, last := hit, hit
	for first > 0 && hasLink(doc, children[first-1], mark) {
		first--
	}
	for last+1 < len(children) && hasLink(doc, children[last+1], mark) {
		last++
	}
	return starts[first], starts[last+1], mark, nil
}

func linkOf(doc *document.Document, children []document.NodeID, i int) (document.Mark, bool) {
	if i < 0 || i >= len(children) {
		return document.Mark{}, false
	}
	return doc.Marks(children[i]).Get(document.MarkLink)
}

// prevChild returns the index of the child ending at pos, or -1.
func prevChild(starts []int, pos int) int {
	for i := 1; i < len(starts); i++ {
		if starts[i] == pos {
			return i - 1
		}
	}
	return -1
}

func hasLink(doc *document.Document, id document.NodeID, link document.Mark) bool {
	m, ok := doc.Marks(id).Get(document.MarkLink)
	return ok && m.Eq(link)
}

// Open is a command opening the create dialog over the selection. It never
// dispatches.
func (c *Controller) Open(s *state.State, _ command.Dispatch) bool {
	return c.OpenCreate(s) == nil
}
