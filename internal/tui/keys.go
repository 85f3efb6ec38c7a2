package tui

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/nahidnstu12/team-docs-sub001/internal/input/key"
	"github.com/nahidnstu12/team-docs-sub001/internal/input/mouse"
)

var specialKeys = map[tcell.Key]key.Key{
	tcell.KeyEscape:     key.KeyEscape,
	tcell.KeyEnter:      key.KeyEnter,
	tcell.KeyTab:        key.KeyTab,
	tcell.KeyBacktab:    key.KeyTab,
	tcell.KeyBackspace:  key.KeyBackspace,
	tcell.KeyBackspace2: key.KeyBackspace,
	tcell.KeyDelete:     key.KeyDelete,
	tcell.KeyHome:       key.KeyHome,
	tcell.KeyEnd:        key.KeyEnd,
	tcell.KeyPgUp:       key.KeyPageUp,
	tcell.KeyPgDn:       key.KeyPageDown,
	tcell.KeyUp:         key.KeyUp,
	tcell.KeyDown:       key.KeyDown,
	tcell.KeyLeft:       key.KeyLeft,
	tcell.KeyRight:      key.KeyRight,
}

// convertKey maps a tcell key event. Events with no counterpart report
// false.
func convertKey(ev *tcell.EventKey) (key.Event, bool) {
	mods := convertMod(ev.Modifiers())
	k := ev.Key()
	if k == tcell.KeyBacktab {
		mods = mods.With(key.ModShift)
	}
	if special, ok := specialKeys[k]; ok {
		return key.NewSpecialEvent(special, mods), true
	}
	switch {
	case k == tcell.KeyRune:
		return chord(ev.Rune(), mods), true
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return chord(rune('a'+(k-tcell.KeyCtrlA)), mods.With(key.ModCtrl)), true
	}
	return key.Event{}, false
}

// chord makes letter case and Shift agree when a command modifier is held,
// so Ctrl+Shift+Z arrives as 'Z' with Ctrl and Shift the way bindings
// spell it. Legacy terminals report Ctrl letters without Shift; there
// Ctrl+Y is the redo key.
func chord(r rune, mods key.Modifier) key.Event {
	if mods.Has(key.ModCtrl | key.ModAlt | key.ModMeta) {
		switch {
		case unicode.IsUpper(r):
			mods = mods.With(key.ModShift)
		case mods.Has(key.ModShift):
			r = unicode.ToUpper(r)
		}
	}
	return key.NewRuneEvent(r, mods)
}

func convertMod(m tcell.ModMask) key.Modifier {
	var out key.Modifier
	if m&tcell.ModShift != 0 {
		out = out.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		out = out.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		out = out.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		out = out.With(key.ModMeta)
	}
	return out
}

func convertButton(b tcell.ButtonMask) mouse.Button {
	switch {
	case b&tcell.Button1 != 0:
		return mouse.ButtonLeft
	case b&tcell.Button2 != 0:
		return mouse.ButtonMiddle
	case b&tcell.Button3 != 0:
		return mouse.ButtonRight
	default:
		return mouse.ButtonNone
	}
}

// isCtrl reports whether ev is Ctrl plus the letter r.
func isCtrl(ev key.Event, r rune) bool {
	return ev.IsRune() && ev.Rune == r && ev.Modifiers.Has(key.ModCtrl)
}
