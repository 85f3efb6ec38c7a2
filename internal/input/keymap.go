package input

import (
	"fmt"

	"github.com/nahidnstu12/team-docs-sub001/internal/input/key"
)

// Binding maps one key to an action.
type Binding struct {
	// Keys is the key spec, e.g. "Ctrl+B" or "<C-k>".
	Keys string `toml:"keys" yaml:"keys" json:"keys"`

	// Action is the action name handed to the router's handler.
	Action string `toml:"action" yaml:"action" json:"action"`

	// Description documents the binding.
	Description string `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty"`
}

// Keymap holds the bindings of one focus mode.
type Keymap struct {
	// Name is the keymap identifier.
	Name string

	// Focus is the mode the keymap applies to.
	Focus Focus

	// Bindings are the key-to-action mappings.
	Bindings []Binding

	// Source indicates where this keymap was defined, e.g. "default" or
	// "user".
	Source string
}

// NewKeymap creates an empty keymap.
func NewKeymap(name string, focus Focus) *Keymap {
	return &Keymap{Name: name, Focus: focus, Source: "default"}
}

// WithSource sets the source for this keymap.
func (k *Keymap) WithSource(source string) *Keymap {
	k.Source = source
	return k
}

// Add adds a binding to this keymap.
func (k *Keymap) Add(keys, action string) *Keymap {
	k.Bindings = append(k.Bindings, Binding{Keys: keys, Action: action})
	return k
}

// AddBinding adds a fully configured binding to this keymap.
func (k *Keymap) AddBinding(b Binding) *Keymap {
	k.Bindings = append(k.Bindings, b)
	return k
}

// Validate checks that all bindings in the keymap are valid.
func (k *Keymap) Validate() error {
	_, err := k.parse()
	return err
}

type parsedBinding struct {
	event  key.Event
	action string
}

func (k *Keymap) parse() ([]parsedBinding, error) {
	out := make([]parsedBinding, 0, len(k.Bindings))
	for i, b := range k.Bindings {
		if b.Action == "" {
			return nil, fmt.Errorf("keymap %s: binding %d (%s): empty action", k.Name, i, b.Keys)
		}
		ev, err := key.Parse(b.Keys)
		if err != nil {
			return nil, fmt.Errorf("keymap %s: binding %d: %w", k.Name, i, err)
		}
		out = append(out, parsedBinding{event: ev, action: b.Action})
	}
	return out, nil
}

// Action names bound by the default keymaps that are not editing
// commands.
const (
	ActionEnter     = "document.enter"
	ActionBackspace = "document.backspace"
	ActionUndo      = "history.undo"
	ActionRedo      = "history.redo"
	ActionLink      = "link.create"

	ActionPaletteClose     = "palette.close"
	ActionPaletteInvoke    = "palette.invoke"
	ActionPaletteUp        = "palette.up"
	ActionPaletteDown      = "palette.down"
	ActionPaletteBackspace = "palette.backspace"

	ActionDialogCancel    = "dialog.cancel"
	ActionDialogSubmit    = "dialog.submit"
	ActionDialogNext      = "dialog.next"
	ActionDialogBackspace = "dialog.backspace"
)

// DefaultKeymaps returns the built-in keymap of every focus mode.
// Document actions without a constant here are command registry names.
func DefaultKeymaps() []*Keymap {
	doc := NewKeymap("document", FocusDocument).
		Add("Enter", ActionEnter).
		Add("Backspace", ActionBackspace).
		Add("Delete", "edit.deleteSelection").
		Add("Left", "cursor.left").
		Add("Right", "cursor.right").
		Add("Up", "cursor.up").
		Add("Down", "cursor.down").
		Add("Home", "cursor.home").
		Add("End", "cursor.end").
		Add("Shift+Left", "select.left").
		Add("Shift+Right", "select.right").
		Add("Shift+Up", "select.up").
		Add("Shift+Down", "select.down").
		Add("Shift+Home", "select.home").
		Add("Shift+End", "select.end").
		Add("Ctrl+A", "edit.selectAll").
		Add("Ctrl+B", "mark.bold").
		Add("Ctrl+I", "mark.italic").
		Add("Ctrl+U", "mark.underline").
		Add("Ctrl+Shift+X", "mark.strike").
		Add("Ctrl+E", "mark.code").
		Add("Ctrl+Shift+H", "mark.highlight").
		Add("Ctrl+K", ActionLink).
		Add("Ctrl+Enter", "toggle.toggle").
		Add("Ctrl+Z", ActionUndo).
		Add("Ctrl+Y", ActionRedo).
		Add("Ctrl+Shift+Z", ActionRedo)

	pal := NewKeymap("palette", FocusPalette).
		Add("Escape", ActionPaletteClose).
		Add("Enter", ActionPaletteInvoke).
		Add("Up", ActionPaletteUp).
		Add("Down", ActionPaletteDown).
		Add("Tab", ActionPaletteDown).
		Add("Shift+Tab", ActionPaletteUp).
		Add("Backspace", ActionPaletteBackspace)

	dlg := NewKeymap("dialog", FocusDialog).
		Add("Escape", ActionDialogCancel).
		Add("Enter", ActionDialogSubmit).
		Add("Tab", ActionDialogNext).
		Add("Shift+Tab", ActionDialogNext).
		Add("Backspace", ActionDialogBackspace)

	return []*Keymap{doc, pal, dlg}
}
