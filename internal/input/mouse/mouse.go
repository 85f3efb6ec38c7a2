package mouse

import (
	"time"

	"github.com/nahidnstu12/team-docs-sub001/internal/input/key"
)

// Button represents a mouse button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary button.
	ButtonLeft
	// ButtonMiddle is the middle button.
	ButtonMiddle
	// ButtonRight is the secondary button.
	ButtonRight
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return "none"
	}
}

// ButtonFromName parses a button name as produced by String.
func ButtonFromName(name string) Button {
	switch name {
	case "left", "":
		return ButtonLeft
	case "middle":
		return ButtonMiddle
	case "right":
		return ButtonRight
	default:
		return ButtonNone
	}
}

// Action represents the type of mouse action.
type Action uint8

const (
	// ActionNone indicates no action.
	ActionNone Action = iota
	// ActionPress indicates a button press.
	ActionPress
	// ActionRelease indicates a button release.
	ActionRelease
)

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionRelease:
		return "release"
	default:
		return "none"
	}
}

// Position represents a screen coordinate.
type Position struct {
	X int
	Y int
}

// Equal returns true if two positions are equal.
func (p Position) Equal(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// Distance returns the Manhattan distance between two positions.
func (p Position) Distance(other Position) int {
	dx := p.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// NoPos marks an event that is not over document text.
const NoPos = -1

// Event represents a mouse input event.
type Event struct {
	// Position is the screen coordinates.
	Position Position

	// Button is the mouse button involved.
	Button Button

	// Modifiers are any keyboard modifiers held during the event.
	Modifiers key.Modifier

	// Action is the type of mouse action.
	Action Action

	// Pos is the document position under the pointer, or NoPos.
	Pos int

	// Offset is the horizontal distance from the left edge of the block
	// under the pointer, in the front end's units.
	Offset int

	// Count is 1 for a single click, 2 for a double click and 3 for a
	// triple click. The router fills it in.
	Count int

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// IsClick reports whether the event is a primary button press.
func (e Event) IsClick() bool {
	return e.Action == ActionPress && e.Button == ButtonLeft
}

// OverText reports whether the event carries a document position.
func (e Event) OverText() bool {
	return e.Pos >= 0
}
