package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors.
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse reads a key spec such as "a", "Enter", "Ctrl+B", "Shift+Left" or
// the short form "<C-b>". Letters bound with Ctrl, Alt or Meta are
// case-insensitive; Shift must be spelled out.
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}
	sep := "+"
	if len(spec) > 2 && strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		spec, sep = spec[1:len(spec)-1], "-"
	}

	parts := []string{spec}
	if len(spec) > 1 {
		parts = splitSpec(spec, sep)
	}
	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		m := ModifierFromName(p)
		if m == ModNone {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(m)
	}
	return parseKey(parts[len(parts)-1], mods)
}

// splitSpec splits on sep, keeping a trailing sep as the key ("Ctrl++").
func splitSpec(spec, sep string) []string {
	parts := strings.Split(spec, sep)
	if n := len(parts); n >= 2 && parts[n-1] == "" {
		parts = append(parts[:n-2], sep)
	}
	return parts
}

func parseKey(name string, mods Modifier) (Event, error) {
	if name == "" {
		return Event{}, ErrInvalidSpec
	}
	if strings.EqualFold(name, "space") {
		return NewRuneEvent(' ', mods), nil
	}
	if k := FromName(name); k != KeyNone {
		return NewSpecialEvent(k, mods), nil
	}
	runes := []rune(name)
	if len(runes) != 1 {
		return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, name)
	}
	r := runes[0]
	switch {
	case mods.Has(ModCtrl | ModAlt | ModMeta):
		r = unicode.ToLower(r)
		if mods.Has(ModShift) {
			r = unicode.ToUpper(r)
		}
	case unicode.IsUpper(r):
		mods = mods.With(ModShift)
	}
	return NewRuneEvent(r, mods), nil
}

// MustParse is Parse for specs known to be valid; it panics otherwise.
func MustParse(spec string) Event {
	e, err := Parse(spec)
	if err != nil {
		panic("key: " + spec + ": " + err.Error())
	}
	return e
}
