package key

import (
	"strings"
	"unicode"
)

// Event is a single key press.
type Event struct {
	Key       Key
	Rune      rune
	Modifiers Modifier

	// Composing is set while an input method composition is in progress.
	Composing bool
}

// NewRuneEvent returns the event for typing r.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}
}

// NewSpecialEvent returns the event for a named key.
func NewSpecialEvent(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods}
}

// IsRune reports whether e carries a character.
func (e Event) IsRune() bool { return e.Key == KeyRune && e.Rune != 0 }

// IsText reports whether e types a printable character: a rune with no
// modifier other than Shift.
func (e Event) IsText() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune) && !e.Modifiers.Has(ModCtrl|ModAlt|ModMeta)
}

// Equals reports whether e and o are the same key press, ignoring the
// composition flag. Shift is ignored for printable runes since it is
// already part of the character.
func (e Event) Equals(o Event) bool {
	if e.Key != o.Key || e.Rune != o.Rune {
		return false
	}
	a, b := e.Modifiers, o.Modifiers
	if e.IsRune() && unicode.IsPrint(e.Rune) && !unicode.IsLetter(e.Rune) {
		a, b = a.Without(ModShift), b.Without(ModShift)
	}
	return a == b
}

// String renders e as a spec Parse accepts, e.g. "Ctrl+B" or "Shift+Left".
func (e Event) String() string {
	var parts []string
	if m := e.Modifiers; m != ModNone {
		if e.IsRune() && !unicode.IsLetter(e.Rune) {
			m = m.Without(ModShift)
		}
		if s := m.String(); s != "" {
			parts = append(parts, s)
		}
	}
	switch {
	case e.Key == KeyRune && e.Rune == ' ':
		parts = append(parts, "Space")
	case e.Key == KeyRune && e.Modifiers.Has(ModCtrl|ModAlt|ModMeta):
		parts = append(parts, strings.ToUpper(string(e.Rune)))
	case e.Key == KeyRune:
		parts = append(parts, string(e.Rune))
	default:
		parts = append(parts, e.Key.String())
	}
	return strings.Join(parts, "+")
}
