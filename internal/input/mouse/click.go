package mouse

import "time"

// Multi-click thresholds. The distance is measured in document positions
// when both clicks land on text and in screen cells otherwise.
const (
	DefaultDoubleClickTime     = 400 * time.Millisecond
	DefaultDoubleClickDistance = 1
)

// Tracker counts consecutive presses on the same spot so a front end can
// tell a word selection from a block selection.
type Tracker struct {
	window time.Duration
	slack  int

	last  Event
	count int
}

// NewTracker creates a tracker. A non-positive window or a negative slack
// selects the default.
func NewTracker(window time.Duration, slack int) *Tracker {
	if window <= 0 {
		window = DefaultDoubleClickTime
	}
	if slack < 0 {
		slack = DefaultDoubleClickDistance
	}
	return &Tracker{window: window, slack: slack}
}

// Record counts ev against the previous press and returns 1, 2 or 3. A
// fourth press starts over at 1. A zero timestamp means now.
func (t *Tracker) Record(ev Event) int {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if t.continues(ev) && t.count < 3 {
		t.count++
	} else {
		t.count = 1
	}
	t.last = ev
	return t.count
}

func (t *Tracker) continues(ev Event) bool {
	if t.count == 0 {
		return false
	}
	elapsed := ev.Timestamp.Sub(t.last.Timestamp)
	if elapsed < 0 || elapsed > t.window {
		return false
	}
	if ev.OverText() != t.last.OverText() {
		return false
	}
	if ev.OverText() {
		gap := ev.Pos - t.last.Pos
		if gap < 0 {
			gap = -gap
		}
		return gap <= t.slack
	}
	return ev.Position.Distance(t.last.Position) <= t.slack
}

// Reset forgets the previous press.
func (t *Tracker) Reset() {
	t.count = 0
	t.last = Event{}
}
