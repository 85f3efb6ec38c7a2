package pipeline

import (
	"errors"
	"sync"
	"time"

	"github.com/nahidnstu12/team-docs-sub001/internal/state"
	"github.com/nahidnstu12/team-docs-sub001/internal/transform"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Values of the MetaHistory transaction metadata.
const (
	MetaHistory = "history"
	historyUndo = "undo"
	historyRedo = "redo"
)

// entry is one undoable commit: the steps that revert it, in application
// order, and the selection to restore.
type entry struct {
	steps     []transform.Step
	selection state.Selection
	origin    string
	timestamp time.Time
}

// History manages undo and redo stacks of committed changes.
type History struct {
	mu sync.Mutex

	undoStack []*entry
	redoStack []*entry

	maxEntries int
	groupDelay time.Duration
	now        func() time.Time
}

// NewHistory creates a history keeping at most maxEntries undo entries.
// Typing commits closer together than groupDelay merge into one entry.
func NewHistory(maxEntries int, groupDelay time.Duration) *History {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &History{maxEntries: maxEntries, groupDelay: groupDelay, now: time.Now}
}

// push records a new undo entry and clears the redo stack. An entry from
// the same grouping origin arriving within the group delay extends the
// previous entry instead.
func (h *History) push(e *entry, groupable bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	e.timestamp = h.now()
	h.redoStack = nil
	if n := len(h.undoStack); groupable && n > 0 {
		last := h.undoStack[n-1]
		if last.origin == e.origin && e.timestamp.Sub(last.timestamp) <= h.groupDelay {
			last.steps = append(e.steps, last.steps...)
			last.timestamp = e.timestamp
			return
		}
	}
	h.pushLocked(&h.undoStack, e)
}

func (h *History) pushLocked(stack *[]*entry, e *entry) {
	*stack = append(*stack, e)
	if len(*stack) > h.maxEntries {
		excess := len(*stack) - h.maxEntries
		*stack = (*stack)[excess:]
	}
}

func (h *History) pushUndo(e *entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e.timestamp = h.now()
	h.pushLocked(&h.undoStack, e)
}

func (h *History) pushRedo(e *entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e.timestamp = h.now()
	h.pushLocked(&h.redoStack, e)
}

func (h *History) popUndo() (*entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return pop(&h.undoStack)
}

func (h *History) popRedo() (*entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return pop(&h.redoStack)
}

func pop(stack *[]*entry) (*entry, bool) {
	n := len(*stack)
	if n == 0 {
		return nil, false
	}
	e := (*stack)[n-1]
	*stack = (*stack)[:n-1]
	return e, true
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo entries.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo entries.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
}
