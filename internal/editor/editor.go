package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nahidnstu12/team-docs-sub001/internal/command"
	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/event"
	"github.com/nahidnstu12/team-docs-sub001/internal/input"
	"github.com/nahidnstu12/team-docs-sub001/internal/input/key"
	"github.com/nahidnstu12/team-docs-sub001/internal/input/mouse"
	"github.com/nahidnstu12/team-docs-sub001/internal/link"
	"github.com/nahidnstu12/team-docs-sub001/internal/palette"
	"github.com/nahidnstu12/team-docs-sub001/internal/pipeline"
	"github.com/nahidnstu12/team-docs-sub001/internal/policy/marks"
	"github.com/nahidnstu12/team-docs-sub001/internal/policy/trailing"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
	"github.com/nahidnstu12/team-docs-sub001/internal/toggle"
)

// Editor is one editing session over one document.
type Editor struct {
	mu sync.Mutex

	id       string
	pipeline *pipeline.Pipeline
	router   *input.Router
	palette  *palette.Palette
	links    *link.Controller
	toggles  *toggle.Controller
	marks    *marks.Policy
	commands *command.Registry

	// lastErr is the error of the most recent overlay action, shown by
	// front ends next to the palette or dialog.
	lastErr error

	trigger         rune
	hitZone         int
	exempt          []document.Kind
	maxUndo         int
	groupDelay      time.Duration
	bus             *event.Bus
	pipelineMetrics *pipeline.Metrics
	inputMetrics    *input.Metrics
	keymaps         []*input.Keymap
	extraItems      []palette.Item
	anchor          func(*state.State) palette.Anchor
	hooks           []func(pipeline.Commit)
	logger          zerolog.Logger
}

// New creates an editor over the JSON payload. An empty payload starts a
// blank document. The loaded document is brought in line with the
// editor's invariants before the first input turn.
func New(payload []byte, opts ...Option) (*Editor, error) {
	e := &Editor{
		id:         newID(),
		trigger:    palette.DefaultTrigger,
		hitZone:    toggle.DefaultHitZone,
		exempt:     marks.DefaultExempt,
		maxUndo:    DefaultMaxUndoEntries,
		groupDelay: DefaultGroupDelay,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With().Str("session", e.id).Logger()

	doc, err := e.parse(payload)
	if err != nil {
		return nil, err
	}

	e.marks = marks.New(marks.WithExempt(e.exempt...), marks.WithLogger(e.logger))
	e.toggles = toggle.New(toggle.WithHitZone(e.hitZone), toggle.WithLogger(e.logger))
	e.links = link.New(link.WithLogger(e.logger))

	e.commands = command.Builtin()
	e.toggles.Register(e.commands)
	e.commands.Register(input.ActionLink, e.links.Open)

	reg := palette.NewRegistry()
	if err := reg.Add(palette.Defaults(e.links.Open)...); err != nil {
		return nil, err
	}
	if len(e.extraItems) > 0 {
		if err := reg.Add(e.extraItems...); err != nil {
			return nil, fmt.Errorf("palette items: %w", err)
		}
	}
	e.palette = palette.New(reg, palette.WithTrigger(e.trigger), palette.WithLogger(e.logger))

	popts := []pipeline.Option{
		pipeline.WithInterceptors(e.marks, trailing.New(e.logger), e.toggles.Structure()),
		pipeline.WithLogger(e.logger),
		pipeline.WithHistory(e.maxUndo, e.groupDelay),
	}
	if e.pipelineMetrics != nil {
		popts = append(popts, pipeline.WithMetrics(e.pipelineMetrics))
	}
	if e.bus != nil {
		popts = append(popts, pipeline.WithEventBus(e.bus, e.id))
	}
	for _, h := range e.hooks {
		popts = append(popts, pipeline.WithCommitHook(h))
	}
	e.pipeline = pipeline.New(state.New(doc, state.AtStart(doc)), popts...)

	ropts := []input.Option{input.WithLogger(e.logger)}
	if e.inputMetrics != nil {
		ropts = append(ropts, input.WithMetrics(e.inputMetrics))
	}
	e.router = input.New(ropts...)
	for _, km := range e.keymaps {
		if err := e.router.Load(km); err != nil {
			return nil, fmt.Errorf("keymap %s: %w", km.Name, err)
		}
	}
	e.bindRouter()

	e.normalize()
	return e, nil
}

func (e *Editor) parse(payload []byte) (*document.Document, error) {
	if len(payload) == 0 {
		return document.Blank(), nil
	}
	doc, err := document.ParseJSON(payload, document.WithWarnings(func(msg string) {
		e.logger.Warn().Str("detail", msg).Msg("payload repaired")
	}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return doc, nil
}

// OriginLoad is recorded on the transaction normalizing a loaded document.
const OriginLoad = "load"

// normalize runs the interceptors over the current state without
// recording an undo entry. A document that needs no repair is not
// committed. It reports whether the document changed.
func (e *Editor) normalize() bool {
	_, repaired, err := e.pipeline.Normalize(OriginLoad)
	if err != nil {
		e.logger.Warn().Err(err).Msg("normalize loaded document")
		return false
	}
	return repaired
}

// ID returns the session id.
func (e *Editor) ID() string { return e.id }

// State returns the committed state.
func (e *Editor) State() *state.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pipeline.State()
}

// Version returns the number of commits since the document was loaded. A
// load that needed no repair does not count.
func (e *Editor) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pipeline.Version()
}

// Focus returns the focused component.
func (e *Editor) Focus() input.Focus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.router.Focus()
}

// Palette returns the command palette. Its registry may be extended while
// the editor runs.
func (e *Editor) Palette() *palette.Palette { return e.palette }

// Commands returns the command registry.
func (e *Editor) Commands() *command.Registry { return e.commands }

// Router returns the input router.
func (e *Editor) Router() *input.Router { return e.router }

// Load replaces the document with payload, closes any overlay and drops
// the undo history.
func (e *Editor) Load(payload []byte) error {
	doc, err := e.parse(payload)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.closeOverlays()
	e.pipeline.Reset(state.New(doc, state.AtStart(doc)))
	repaired := e.normalize()
	e.mu.Unlock()

	if e.bus != nil {
		loaded := event.Loaded{Session: e.id, Repaired: repaired}
		if err := e.bus.Publish(context.Background(), event.NewEvent(event.TopicLoaded, loaded, "editor")); err != nil {
			e.logger.Warn().Err(err).Msg("publish load")
		}
	}
	return nil
}

// Payload returns the JSON encoding of the committed document.
func (e *Editor) Payload() ([]byte, error) {
	return e.State().Doc().MarshalJSON()
}

// Configure changes the trigger character and toggle hit zone of the
// running editor. Zero values leave a setting unchanged.
func (e *Editor) Configure(trigger rune, hitZone int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if trigger != 0 {
		e.trigger = trigger
		e.palette.SetTrigger(trigger)
	}
	if hitZone > 0 {
		e.hitZone = hitZone
		e.toggles.SetHitZone(hitZone)
	}
}

// HandleKey routes one key event.
func (e *Editor) HandleKey(ev key.Event) input.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.router.HandleKey(ev)
}

// HandlePointer routes one pointer event.
func (e *Editor) HandlePointer(ev mouse.Event) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.router.HandlePointerEvent(ev)
}

// HandleClick is a primary button click at document position pos, x
// units from the left edge of the block under the pointer.
func (e *Editor) HandleClick(pos, x int) bool {
	return e.HandlePointer(mouse.Event{
		Button:    mouse.ButtonLeft,
		Action:    mouse.ActionPress,
		Pos:       pos,
		Offset:    x,
		Count:     1,
		Timestamp: time.Now(),
	})
}

// Exec runs the command registered under name against the document.
// Overlays are closed first.
func (e *Editor) Exec(name string) error {
	cmd, ok := e.commands.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeOverlays()
	if !e.run(cmd) {
		return fmt.Errorf("%w: %s", ErrNotApplicable, name)
	}
	e.syncFocus()
	return nil
}

// ExecCommand runs cmd against the document and reports whether it
// applied.
func (e *Editor) ExecCommand(cmd command.Command) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ok := e.run(cmd)
	e.syncFocus()
	return ok
}

// Undo reverts the last undo entry.
func (e *Editor) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.pipeline.Undo()
	return err
}

// Redo reapplies the last undone entry.
func (e *Editor) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.pipeline.Redo()
	return err
}

// LastError returns the error of the most recent palette invocation or
// dialog submission, or nil.
func (e *Editor) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *Editor) run(cmd command.Command) (applied bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Str("panic", fmt.Sprint(r)).Msg("command panicked")
			applied = false
		}
	}()
	return cmd(e.pipeline.State(), e.dispatch)
}

func (e *Editor) dispatch(tr *state.Transaction) *state.State {
	next, err := e.pipeline.Dispatch(tr)
	if err != nil && !errors.Is(err, pipeline.ErrStaleTransaction) {
		e.logger.Warn().Err(err).Str("origin", tr.Origin()).Msg("transaction dropped")
	} else if err != nil {
		e.logger.Debug().Err(err).Str("origin", tr.Origin()).Msg("stale transaction dropped")
	}
	return next
}

// syncFocus moves focus to the dialog when a command opened it.
func (e *Editor) syncFocus() {
	switch {
	case e.links.IsOpen():
		e.router.SetFocus(input.FocusDialog)
	case e.palette.IsOpen():
		e.router.SetFocus(input.FocusPalette)
	default:
		e.router.SetFocus(input.FocusDocument)
	}
}

func (e *Editor) closeOverlays() {
	e.palette.Close()
	e.links.Cancel()
	e.lastErr = nil
	e.router.SetFocus(input.FocusDocument)
}
