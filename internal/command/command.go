package command

import (
	"sort"
	"sync"

	"github.com/nahidnstu12/team-docs-sub001/internal/document"
	"github.com/nahidnstu12/team-docs-sub001/internal/state"
)

// Dispatch commits a transaction and returns the resulting state.
type Dispatch func(tr *state.Transaction) *state.State

// Command applies an edit to s. It reports whether it applied; with a nil
// dispatch it only reports whether it would.
type Command func(s *state.State, dispatch Dispatch) bool

// Chain runs cmds in order until one applies. Commands after a dispatch
// see the committed state.
func Chain(cmds ...Command) Command {
	return func(s *state.State, dispatch Dispatch) bool {
		var tracked Dispatch
		if dispatch != nil {
			tracked = func(tr *state.Transaction) *state.State {
				s = dispatch(tr)
				return s
			}
		}
		for _, c := range cmds {
			if c(s, tracked) {
				return true
			}
		}
		return false
	}
}

// Action names of the built-in commands.
const (
	ActionParagraph       = "block.paragraph"
	ActionHeading1        = "block.heading1"
	ActionHeading2        = "block.heading2"
	ActionHeading3        = "block.heading3"
	ActionCodeBlock       = "block.codeBlock"
	ActionBlockquote      = "wrap.blockquote"
	ActionBulletList      = "wrap.bulletList"
	ActionOrderedList     = "wrap.orderedList"
	ActionTaskList        = "wrap.taskList"
	ActionLift            = "wrap.lift"
	ActionDivider         = "insert.divider"
	ActionBold            = "mark.bold"
	ActionItalic          = "mark.italic"
	ActionUnderline       = "mark.underline"
	ActionStrike          = "mark.strike"
	ActionCode            = "mark.code"
	ActionHighlight       = "mark.highlight"
	ActionDeleteBackward  = "edit.deleteBackward"
	ActionDeleteSelection = "edit.deleteSelection"
	ActionSplitBlock      = "edit.splitBlock"
	ActionSelectAll       = "edit.selectAll"
	ActionLeft            = "cursor.left"
	ActionRight           = "cursor.right"
	ActionUp              = "cursor.up"
	ActionDown            = "cursor.down"
	ActionHome            = "cursor.home"
	ActionEnd             = "cursor.end"
	ActionSelectLeft      = "select.left"
	ActionSelectRight     = "select.right"
	ActionSelectUp        = "select.up"
	ActionSelectDown      = "select.down"
	ActionSelectHome      = "select.home"
	ActionSelectEnd       = "select.end"
)

// Registry maps action names to commands.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register binds name to cmd, replacing any previous binding.
func (r *Registry) Register(name string, cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = cmd
}

// Unregister removes the binding for name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.commands, name)
}

// Get returns the command bound to name.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[name]
	return c, ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.commands))
	for n := range r.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Builtin returns a registry holding the built-in commands.
func Builtin() *Registry {
	r := NewRegistry()
	r.Register(ActionParagraph, SetBlockType(document.KindParagraph, nil))
	r.Register(ActionHeading1, SetBlockType(document.KindHeading, document.Attrs{"level": 1}))
	r.Register(ActionHeading2, SetBlockType(document.KindHeading, document.Attrs{"level": 2}))
	r.Register(ActionHeading3, SetBlockType(document.KindHeading, document.Attrs{"level": 3}))
	r.Register(ActionCodeBlock, SetBlockType(document.KindCodeBlock, nil))
	r.Register(ActionBlockquote, WrapIn(document.KindBlockquote))
	r.Register(ActionBulletList, WrapIn(document.KindBulletList))
	r.Register(ActionOrderedList, WrapIn(document.KindOrderedList))
	r.Register(ActionTaskList, WrapIn(document.KindTaskList))
	r.Register(ActionLift, Lift)
	r.Register(ActionDivider, InsertDivider)
	r.Register(ActionBold, ToggleMark(document.NewMark(document.MarkBold, nil)))
	r.Register(ActionItalic, ToggleMark(document.NewMark(document.MarkItalic, nil)))
	r.Register(ActionUnderline, ToggleMark(document.NewMark(document.MarkUnderline, nil)))
	r.Register(ActionStrike, ToggleMark(document.NewMark(document.MarkStrike, nil)))
	r.Register(ActionCode, ToggleMark(document.NewMark(document.MarkCode, nil)))
	r.Register(ActionHighlight, ToggleMark(document.NewMark(document.MarkHighlight, nil)))
	r.Register(ActionDeleteBackward, DeleteBackward)
	r.Register(ActionDeleteSelection, DeleteSelection)
	r.Register(ActionSplitBlock, SplitBlock)
	r.Register(ActionSelectAll, SelectAll)
	r.Register(ActionLeft, Move(Left, false))
	r.Register(ActionRight, Move(Right, false))
	r.Register(ActionUp, Move(Up, false))
	r.Register(ActionDown, Move(Down, false))
	r.Register(ActionHome, Move(Home, false))
	r.Register(ActionEnd, Move(End, false))
	r.Register(ActionSelectLeft, Move(Left, true))
	r.Register(ActionSelectRight, Move(Right, true))
	r.Register(ActionSelectUp, Move(Up, true))
	r.Register(ActionSelectDown, Move(Down, true))
	r.Register(ActionSelectHome, Move(Home, true))
	r.Register(ActionSelectEnd, Move(End, true))
	return r
}
