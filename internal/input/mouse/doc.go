// Package mouse describes pointer events and detects multi-clicks.
//
// Front ends translate their native mouse events into an Event carrying
// both the screen cell and, when the pointer is over text, the document
// position under it:
//
//	ev := mouse.Event{
//	    Position:  mouse.Position{X: 12, Y: 3},
//	    Button:    mouse.ButtonLeft,
//	    Action:    mouse.ActionPress,
//	    Pos:       17,
//	    Offset:    4,
//	    Timestamp: time.Now(),
//	}
//
// A Tracker assigns click counts so a double click can select a word. Two
// presses over text continue a sequence when their document positions are
// close, even if the text has scrolled or wrapped in between.
package mouse
