package palette

import (
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/nahidnstu12/team-docs-sub001/internal/command"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

// DefaultTrigger opens the palette when typed in the document.
const DefaultTrigger = '/'

// Origin is recorded on the transaction deleting the trigger.
const Origin = "palette"

// Anchor is the screen cell the palette is drawn from.
type Anchor struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Option configures a Palette.
type Option func(*Palette)

// WithTrigger sets the trigger character.
func WithTrigger(r rune) Option {
	return func(p *Palette) { p.trigger = r }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Palette) { p.logger = l }
}

// WithHistorySize sets how many recently invoked items are remembered.
func WithHistorySize(n int) Option {
	return func(p *Palette) { p.history = NewHistory(n) }
}

// Palette is the per-editor palette state machine: closed, or open with a
// query, its filtered groups and a (group, item) pointer.
type Palette struct {
	reg     *Registry
	history *History
	logger  zerolog.Logger
	trigger rune

	open       bool
	triggerPos int
	anchor     Anchor
	query      string
	groups     []Group
	gi, ii     int
	suggestion string
}

// New creates a closed palette over reg.
func New(reg *Registry, opts ...Option) *Palette {
	p := &Palette{
		reg:     reg,
		history: NewHistory(0),
		logger:  zerolog.Nop(),
		trigger: DefaultTrigger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the item registry.
func (p *Palette) Registry() *Registry { return p.reg }

// History returns the invocation history.
func (p *Palette) History() *History { return p.history }

// Trigger returns the trigger character.
func (p *Palette) Trigger() rune { return p.trigger }

// SetTrigger changes the trigger character. An open palette keeps the
// trigger it was opened with until it closes.
func (p *Palette) SetTrigger(r rune) { p.trigger = r }

// Open shows the palette for a trigger typed at triggerPos. The query
// starts empty with every item listed.
func (p *Palette) Open(triggerPos int, anchor Anchor) {
	p.open = true
	p.triggerPos = triggerPos
	p.anchor = anchor
	p.setQuery("")
}

// IsOpen reports whether the palette is open.
func (p *Palette) IsOpen() bool { return p.open }

// TriggerPos returns the document position of the trigger character.
func (p *Palette) TriggerPos() int { return p.triggerPos }

// Anchor returns where the palette is drawn.
func (p *Palette) Anchor() Anchor { return p.anchor }

// Query returns the current query.
func (p *Palette) Query() string { return p.query }

// Groups returns the filtered groups.
func (p *Palette) Groups() []Group { return p.groups }

// Suggestion returns the nearest keyword when the query matches nothing.
func (p *Palette) Suggestion() string { return p.suggestion }

// Pointer returns the (group, item) pointer.
func (p *Palette) Pointer() (group, item int) { return p.gi, p.ii }

// SetQuery replaces the query and resets the pointer to the first item.
func (p *Palette) SetQuery(q string) {
	if p.open {
		p.setQuery(q)
	}
}

// AppendQuery adds r to the query.
func (p *Palette) AppendQuery(r rune) {
	if p.open {
		p.setQuery(p.query + string(r))
	}
}

// Backspace removes the last rune of the query. It returns false when the
// query is already empty.
func (p *Palette) Backspace() bool {
	if !p.open || p.query == "" {
		return false
	}
	_, size := utf8.DecodeLastRuneInString(p.query)
	p.setQuery(p.query[:len(p.query)-size])
	return true
}

func (p *Palette) setQuery(q string) {
	p.query = q
	p.groups = p.reg.Filter(q)
	p.gi, p.ii = 0, 0
	p.suggestion = ""
	if len(p.groups) == 0 {
		p.suggestion, _ = p.reg.Suggest(q)
	}
}

// Down moves the pointer to the next item, crossing into the next group
// at the end of a group and staying put on the last item.
func (p *Palette) Down() {
	if !p.open || len(p.groups) == 0 {
		return
	}
	switch {
	case p.ii+1 < len(p.groups[p.gi].Items):
		p.ii++
	case p.gi+1 < len(p.groups):
		p.gi, p.ii = p.gi+1, 0
	}
}

// Up moves the pointer to the previous item, crossing into the previous
// group at the start of a group and staying put on the first item.
func (p *Palette) Up() {
	if !p.open || len(p.groups) == 0 {
		return
	}
	switch {
	case p.ii > 0:
		p.ii--
	case p.gi > 0:
		p.gi--
		p.ii = len(p.groups[p.gi].Items) - 1
	}
}

// Current returns the item under the pointer.
func (p *Palette) Current() (Item, bool) {
	if !p.open || len(p.groups) == 0 {
		return Item{}, false
	}
	return p.groups[p.gi].Items[p.ii], true
}

// Close hides the palette and discards the query and pointer.
func (p *Palette) Close() {
	p.open = false
	p.triggerPos = 0
	p.anchor = Anchor{}
	p.query = ""
	p.groups = nil
	p.gi, p.ii = 0, 0
	p.suggestion = ""
}

// Invoke runs the item under the pointer against s. The palette is closed
// first; the trigger character, when still in place, is then deleted from
// the document together with the character before it, and the item's
// command runs on the resulting state.
// A refusing or panicking command yields an *InvocationError.
func (p *Palette) Invoke(s *state.State, dispatch command.Dispatch) (err error) {
	item, ok := p.Current()
	triggerPos, trigger := p.triggerPos, p.trigger
	p.Close()
	if !ok {
		return ErrNoItem
	}

	if next := p.removeTrigger(s, dispatch, triggerPos, trigger); next != nil {
		s = next
	}

	defer func() {
		if r := recover(); r != nil {
			err = &InvocationError{ItemID: item.ID, Err: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			p.logger.Error().Err(err).Str("item", item.ID).Msg("palette invocation failed")
		}
	}()
	if !item.Command(s, dispatch) {
		return &InvocationError{ItemID: item.ID, Err: ErrNotApplicable}
	}
	p.history.Add(item.ID)
	return nil
}

// removeTrigger deletes the trigger character, the single character
// before it in the same textblock, and anything typed after the trigger up
// to the cursor. It returns nil when the trigger is gone or nothing was
// dispatched.
func (p *Palette) removeTrigger(s *state.State, dispatch command.Dispatch, pos int, trigger rune) *state.State {
	doc := s.Doc()
	end := pos + 1
	if end > doc.ContentSize() || doc.TextBetween(pos, end, "") != string(trigger) {
		return nil
	}
	rp, ok := command.Textblock(doc, pos)
	if !ok {
		return nil
	}
	blockStart := rp.Start(rp.Depth())
	if head := s.Selection().Head; head > end {
		if hp, ok := command.Textblock(doc, head); ok && hp.Start(hp.Depth()) == blockStart {
			end = head
		}
	}
	from := pos
	if from > blockStart {
		from--
	}
	tr := s.Tr()
	if err := tr.Delete(from, end); err != nil {
		p.logger.Warn().Err(err).Int("pos", pos).Msg("remove palette trigger")
		return nil
	}
	tr.SetSelection(state.Cursor(from))
	tr.SetMeta(state.MetaOrigin, Origin)
	if dispatch == nil {
		return nil
	}
	return dispatch(tr)
}
