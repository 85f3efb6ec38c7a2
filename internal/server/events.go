package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/nahidnstu12/team-docs-sub001/internal/editor"
	"github.com/nahidnstu12/team-docs-sub001/internal/input/key"
	"github.com/nahidnstu12/team-docs-sub001/internal/input/mouse"
	"github.com/nahidnstu12/team-docs-sub001/internal/pipeline"
)

// ErrBadEvent is returned for an input event missing a required field.
var ErrBadEvent = errors.New("invalid input event")

// Input event types.
const (
	EventKey     = "key"
	EventText    = "text"
	EventClick   = "click"
	EventPointer = "pointer"
	EventExec    = "exec"
	EventUndo    = "undo"
	EventRedo    = "redo"
)

// InputEvent is one front end event.
//
//	{"type":"key","key":"Ctrl+B"}
//	{"type":"text","text":"hello"}
//	{"type":"click","pos":4,"offset":12}
//	{"type":"pointer","button":"right","pos":-1}
//	{"type":"exec","command":"block.heading1"}
type InputEvent struct {
	Type      string `json:"type" validate:"required,oneof=key text click pointer exec undo redo"`
	Key       string `json:"key,omitempty"`
	Text      string `json:"text,omitempty"`
	Composing bool   `json:"composing,omitempty"`
	Pos       *int   `json:"pos,omitempty"`
	Offset    int    `json:"offset,omitempty"`
	X         int    `json:"x,omitempty"`
	Y         int    `json:"y,omitempty"`
	Button    string `json:"button,omitempty"`
	Command   string `json:"command,omitempty"`
}

// EventBatch is the body of POST /api/sessions/:sid/events.
type EventBatch struct {
	Events []InputEvent `json:"events" validate:"required,min=1,max=1000,dive"`
}

// apply routes ev into ed. Undo and redo with empty history are not
// errors.
func (ev InputEvent) apply(ed *editor.Editor) error {
	switch ev.Type {
	case EventKey:
		k, err := key.Parse(ev.Key)
		if err != nil {
			return err
		}
		k.Composing = ev.Composing
		ed.HandleKey(k)
	case EventText:
		for _, r := range ev.Text {
			k := key.NewRuneEvent(r, key.ModNone)
			k.Composing = ev.Composing
			ed.HandleKey(k)
		}
	case EventClick:
		if ev.Pos == nil {
			return fmt.Errorf("%w: click without pos", ErrBadEvent)
		}
		ed.HandleClick(*ev.Pos, ev.Offset)
	case EventPointer:
		pos := mouse.NoPos
		if ev.Pos != nil {
			pos = *ev.Pos
		}
		ed.HandlePointer(mouse.Event{
			Position:  mouse.Position{X: ev.X, Y: ev.Y},
			Button:    mouse.ButtonFromName(ev.Button),
			Action:    mouse.ActionPress,
			Pos:       pos,
			Offset:    ev.Offset,
			Timestamp: time.Now(),
		})
	case EventExec:
		if ev.Command == "" {
			return fmt.Errorf("%w: exec without command", ErrBadEvent)
		}
		return ed.Exec(ev.Command)
	case EventUndo:
		if err := ed.Undo(); err != nil && !errors.Is(err, pipeline.ErrNothingToUndo) {
			return err
		}
	case EventRedo:
		if err := ed.Redo(); err != nil && !errors.Is(err, pipeline.ErrNothingToRedo) {
			return err
		}
	default:
		return fmt.Errorf("%w: type %q", ErrBadEvent, ev.Type)
	}
	return nil
}
